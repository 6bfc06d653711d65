package ui

import (
	"fmt"

	"github.com/oshokin/release-installer/internal/domain/release"
	"github.com/oshokin/release-installer/internal/service/controller"
)

// releaseItem is a list entry that remembers its snapshot index.
type releaseItem struct {
	index      int
	descriptor release.Descriptor
	relation   controller.Relation
	latest     bool
}

// Title implements list.DefaultItem.
func (i releaseItem) Title() string {
	return fmt.Sprintf("Version %s - released on %s", i.descriptor.Version, i.descriptor.ReleaseDate)
}

// Description implements list.DefaultItem.
func (i releaseItem) Description() string {
	marker := ""

	switch i.relation {
	case controller.RelationInstalled:
		marker = "installed"
	case controller.RelationNewer:
		marker = "newer than installed"
	case controller.RelationOlder:
		marker = "older than installed"
	case controller.RelationUnknown:
	}

	if i.latest {
		if marker != "" {
			marker += ", "
		}

		marker += "latest"
	}

	return marker
}

// FilterValue implements list.Item.
func (i releaseItem) FilterValue() string {
	return i.descriptor.Version
}
