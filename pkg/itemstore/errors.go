package itemstore

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrItemNotFound indicates an item was not found
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidCulture indicates a culture tag could not be parsed
	ErrInvalidCulture = errors.New("invalid culture")

	// ErrInvalidItem indicates an item failed validation before persistence
	ErrInvalidItem = errors.New("invalid item")
)

// ItemError represents an error related to item operations
type ItemError struct {
	ItemID uuid.UUID
	Op     string
	Err    error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item operation %s failed for item %s: %v", e.Op, e.ItemID, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// Validate checks the structural invariants every store enforces on save.
func Validate(item *Item) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidItem)
	}
	if item.ID == uuid.Nil {
		return fmt.Errorf("%w: item id is required", ErrInvalidItem)
	}
	type key struct {
		culture Culture
		number  int
	}
	seen := make(map[key]struct{}, len(item.Versions))
	for _, v := range item.Versions {
		if v == nil {
			return fmt.Errorf("%w: nil version", ErrInvalidItem)
		}
		if v.Number < 1 {
			return fmt.Errorf("%w: version number must be positive, got %d", ErrInvalidItem, v.Number)
		}
		k := key{v.Culture, v.Number}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: duplicate version %s#%d", ErrInvalidItem, v.Culture, v.Number)
		}
		seen[k] = struct{}{}
	}
	return nil
}
