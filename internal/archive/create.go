package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"time"
)

// Entry is a single file written into a package.
type Entry struct {
	// Name is the slash-separated path inside the archive.
	Name string
	// Body is the file content.
	Body []byte
	// Mode holds the permission bits; zero means DefaultFileMode.
	Mode os.FileMode
	// Modified is the modification time recorded in the archive.
	Modified time.Time
}

// Create writes entries as a ZIP archive to w, in the given order.
func Create(w io.Writer, entries []Entry) error {
	writer := zip.NewWriter(w)

	for _, entry := range entries {
		name := path.Clean(entry.Name)

		mode := entry.Mode
		if mode == 0 {
			mode = DefaultFileMode
		}

		header := &zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: entry.Modified,
		}
		header.SetMode(mode)

		out, err := writer.CreateHeader(header)
		if err != nil {
			_ = writer.Close()
			return fmt.Errorf("add %s: %w", name, err)
		}

		if _, err = out.Write(entry.Body); err != nil {
			_ = writer.Close()
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}

	return nil
}
