package itemstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Resolver selects the authoritative version of an item for a culture:
// the highest-numbered version in that culture whose workflow state is
// approved.
type Resolver struct {
	store          Store
	mediaTemplates map[uuid.UUID]struct{}
}

// NewResolver creates a resolver over store. mediaTemplates restricts which
// templates ResolveApprovedMedia accepts; none means any template.
func NewResolver(store Store, mediaTemplates ...uuid.UUID) *Resolver {
	r := &Resolver{
		store:          store,
		mediaTemplates: make(map[uuid.UUID]struct{}, len(mediaTemplates)),
	}
	for _, id := range mediaTemplates {
		r.mediaTemplates[id] = struct{}{}
	}
	return r
}

// ResolveApproved returns the latest approved version of itemID for culture.
// It returns (nil, nil) when the item does not exist, is not based on
// templateID, or has no approved version in that culture. templateID
// uuid.Nil matches any template.
func (r *Resolver) ResolveApproved(ctx context.Context, templateID, itemID uuid.UUID, culture Culture) (*ItemVersion, error) {
	item, err := r.load(ctx, itemID)
	if err != nil || item == nil {
		return nil, err
	}
	if templateID != uuid.Nil && item.TemplateID != templateID {
		return nil, nil
	}
	v := item.LatestApprovedVersion(culture)
	if v == nil {
		return nil, nil
	}
	return &ItemVersion{Item: item, Version: v}, nil
}

// ResolveApprovedMedia is the media variant of ResolveApproved. The item must
// be based on one of the configured media templates. Media is frequently
// stored unversioned, so when culture has no approved version the invariant
// culture is tried as well.
func (r *Resolver) ResolveApprovedMedia(ctx context.Context, itemID uuid.UUID, culture Culture) (*ItemVersion, error) {
	item, err := r.load(ctx, itemID)
	if err != nil || item == nil {
		return nil, err
	}
	if len(r.mediaTemplates) > 0 {
		if _, ok := r.mediaTemplates[item.TemplateID]; !ok {
			return nil, nil
		}
	}
	v := item.LatestApprovedVersion(culture)
	if v == nil && !culture.IsInvariant() {
		v = item.LatestApprovedVersion(InvariantCulture)
	}
	if v == nil {
		return nil, nil
	}
	return &ItemVersion{Item: item, Version: v}, nil
}

func (r *Resolver) load(ctx context.Context, itemID uuid.UUID) (*Item, error) {
	item, err := r.store.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, nil
		}
		return nil, &ItemError{ItemID: itemID, Op: "resolve", Err: err}
	}
	return item, nil
}
