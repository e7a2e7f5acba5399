package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/outcome-content/pkg/itemstore"
)

// Repository implements itemstore.Store using in-memory storage
type Repository struct {
	mu         sync.RWMutex
	items      map[uuid.UUID]*itemstore.Item
	byTemplate map[uuid.UUID]map[uuid.UUID]struct{} // template_id -> set of item_id
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		items:      make(map[uuid.UUID]*itemstore.Item),
		byTemplate: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

func (r *Repository) GetItem(ctx context.Context, id uuid.UUID) (*itemstore.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[id]
	if !exists {
		return nil, itemstore.ErrItemNotFound
	}
	// Return a copy to prevent external modifications
	return item.Clone(), nil
}

func (r *Repository) ListItemsByTemplate(ctx context.Context, templateID uuid.UUID) ([]*itemstore.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*itemstore.Item
	for id := range r.byTemplate[templateID] {
		result = append(result, r.items[id].Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].ID.String() < result[j].ID.String()
		}
		return result[i].Name < result[j].Name
	})

	return result, nil
}

func (r *Repository) SaveItem(ctx context.Context, item *itemstore.Item) error {
	if err := itemstore.Validate(item); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Create a copy to avoid external modifications
	itemCopy := item.Clone()
	if itemCopy.CreatedAt.IsZero() {
		itemCopy.CreatedAt = time.Now().UTC()
	}
	itemCopy.UpdatedAt = time.Now().UTC()

	if previous, exists := r.items[item.ID]; exists && previous.TemplateID != item.TemplateID {
		delete(r.byTemplate[previous.TemplateID], item.ID)
	}
	r.items[item.ID] = itemCopy
	if r.byTemplate[item.TemplateID] == nil {
		r.byTemplate[item.TemplateID] = make(map[uuid.UUID]struct{})
	}
	r.byTemplate[item.TemplateID][item.ID] = struct{}{}

	return nil
}

func (r *Repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[id]
	if !exists {
		return itemstore.ErrItemNotFound
	}
	delete(r.byTemplate[item.TemplateID], id)
	delete(r.items, id)
	return nil
}
