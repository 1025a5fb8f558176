// Package catalog provides a client for the media-library host that owns
// the actual reviewable items. Decks reference catalog folders; the catalog
// resolves those references to item metadata. The catalog is an external
// collaborator: it may be partially unavailable, and a failed folder
// degrades to an empty contribution rather than failing the whole deck.
package catalog

import (
	"context"
	"errors"
)

// Catalog-specific errors
var (
	// ErrFolderUnavailable is returned when a folder's items could not be
	// resolved. Callers listing multiple folders treat the folder as empty
	// and continue.
	ErrFolderUnavailable = errors.New("catalog folder unavailable")

	// ErrItemNotFound is returned when an item update targets an unknown item.
	ErrItemNotFound = errors.New("catalog item not found")

	// ErrCatalogUnavailable is returned when the catalog host cannot be
	// reached at all.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// Item is one reviewable entry in the media library. Only metadata crosses
// this boundary; the item's actual content (the image) stays on the catalog
// host.
type Item struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Ext        string   `json:"ext,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Star       int      `json:"star,omitempty"`
	Annotation string   `json:"annotation,omitempty"`
	FolderIDs  []string `json:"folders,omitempty"`
}

// Folder is one node of the catalog's folder tree.
type Folder struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Children []Folder `json:"children,omitempty"`
}

// ItemUpdate carries the metadata fields an item update may change. Nil
// fields are left untouched.
type ItemUpdate struct {
	Name       *string  `json:"name,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Star       *int     `json:"star,omitempty"`
	Annotation *string  `json:"annotation,omitempty"`
}

// Catalog resolves deck folder references to items and writes item metadata
// back to the media library.
type Catalog interface {
	// ListItems resolves the given folders to a deduplicated item list.
	// Pool order is folder order then catalog order within each folder; an
	// item appearing in several folders keeps its first position. A folder
	// that fails to resolve contributes nothing; the failure is logged, not
	// returned, so one bad folder cannot empty the whole deck.
	ListItems(ctx context.Context, folderIDs []string) ([]Item, error)

	// Folders returns the catalog's folder tree.
	Folders(ctx context.Context) ([]Folder, error)

	// UpdateItem writes metadata changes for one item back to the catalog.
	UpdateItem(ctx context.Context, itemID string, update ItemUpdate) error
}
