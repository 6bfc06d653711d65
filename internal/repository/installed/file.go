package installed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/release-installer/internal/config"
)

var errNotString = errors.New("value is not a string")

// FileStore keeps records in a JSON object on disk. The object is
// produced and consumed via protojson as a structpb.Struct.
type FileStore struct {
	// path is the filesystem location of the JSON document.
	path string
	// mu protects concurrent access to the document.
	mu sync.Mutex
}

// NewFileStore creates a store that reads/writes JSON at the provided path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: filepath.Clean(path),
	}
}

// Read returns the value stored under key.
func (s *FileStore) Read(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	document, err := s.load()
	if err != nil {
		return "", err
	}

	value, ok := document.GetFields()[key]
	if !ok {
		return "", ErrNotFound
	}

	if _, isString := value.GetKind().(*structpb.Value_StringValue); !isString {
		return "", fmt.Errorf("%s: %w", key, errNotString)
	}

	return value.GetStringValue(), nil
}

// Write stores value under key, keeping the other keys of the document.
func (s *FileStore) Write(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	document, err := s.load()
	if errors.Is(err, ErrNotFound) {
		document = &structpb.Struct{Fields: make(map[string]*structpb.Value, 1)}
	} else if err != nil {
		return err
	}

	if document.Fields == nil {
		document.Fields = make(map[string]*structpb.Value, 1)
	}

	document.Fields[key] = structpb.NewStringValue(value)

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
		Indent:    "  ",
	}

	data, err := marshalOptions.Marshal(document)
	if err != nil {
		return fmt.Errorf("encode installed version: %w", err)
	}

	if err = os.WriteFile(s.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write installed version file: %w", err)
	}

	return nil
}

// load reads and decodes the document; a missing file is ErrNotFound.
func (s *FileStore) load() (*structpb.Struct, error) {
	contents, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read installed version file: %w", err)
	}

	var document structpb.Struct
	if err = protojson.Unmarshal(contents, &document); err != nil {
		return nil, fmt.Errorf("decode installed version file: %w", err)
	}

	return &document, nil
}
