package itemstore

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the interface for item persistence
type Store interface {
	// GetItem returns the item with all shared fields and versions.
	// Returns ErrItemNotFound if the item does not exist.
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)

	// ListItemsByTemplate returns every item based on templateID, ordered by name.
	ListItemsByTemplate(ctx context.Context, templateID uuid.UUID) ([]*Item, error)

	// SaveItem inserts or replaces the item, its shared fields and versions.
	SaveItem(ctx context.Context, item *Item) error

	// DeleteItem removes the item and all of its versions.
	DeleteItem(ctx context.Context, id uuid.UUID) error
}
