package definitions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tendant/outcome-content/pkg/itemstore"
	"github.com/tendant/outcome-content/pkg/taxonomy"
)

// OutcomeDefinitionType is the flat projection of an outcome group that
// older callers know as an outcome type.
type OutcomeDefinitionType struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// legacyTypes answers outcome type calls from the outcome group taxonomy.
type legacyTypes struct {
	taxonomy taxonomy.Manager
	logger   *slog.Logger
	metrics  *Metrics
}

func (l legacyTypes) deprecated(op, replacement string) {
	l.logger.Warn("deprecated outcome type operation called",
		"operation", op,
		"replacement", replacement)
	l.metrics.IncrementDeprecatedCall(op)
}

func (l legacyTypes) get(ctx context.Context, id uuid.UUID) (*OutcomeDefinitionType, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: type id is required", ErrInvalidArgument)
	}
	l.deprecated("get_type", "taxonomy.Manager.GetOutcomeGroup")

	if l.taxonomy == nil {
		return nil, ErrTaxonomyUnavailable
	}
	group, err := l.taxonomy.GetOutcomeGroup(ctx, id, itemstore.InvariantCulture)
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome group %s: %w", id, err)
	}
	if group == nil {
		return nil, nil
	}
	return &OutcomeDefinitionType{ID: group.ID, Name: group.Name}, nil
}

func (l legacyTypes) getAll(ctx context.Context) ([]*OutcomeDefinitionType, error) {
	l.deprecated("get_all_types", "taxonomy.Manager.GetTaxonomy")

	if l.taxonomy == nil {
		return nil, ErrTaxonomyUnavailable
	}
	tax, err := l.taxonomy.GetTaxonomy(ctx, itemstore.InvariantCulture)
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome group taxonomy: %w", err)
	}
	types := make([]*OutcomeDefinitionType, 0)
	if tax == nil {
		return types, nil
	}
	for _, g := range tax.OutcomeGroups {
		types = append(types, &OutcomeDefinitionType{ID: g.ID, Name: g.Name})
	}
	return types, nil
}

// GetType returns the outcome group with id as an outcome type, or nil.
//
// Deprecated: outcome types are outcome groups; use taxonomy.Manager.
func (r *OutcomeRepository) GetType(ctx context.Context, id uuid.UUID) (*OutcomeDefinitionType, error) {
	return r.types.get(ctx, id)
}

// GetAllTypes returns every outcome group as an outcome type.
//
// Deprecated: outcome types are outcome groups; use taxonomy.Manager.
func (r *OutcomeRepository) GetAllTypes(ctx context.Context) ([]*OutcomeDefinitionType, error) {
	return r.types.getAll(ctx)
}

// SaveType always fails: outcome groups are maintained in the taxonomy.
//
// Deprecated: outcome types are outcome groups.
func (r *OutcomeRepository) SaveType(ctx context.Context, t *OutcomeDefinitionType) error {
	return fmt.Errorf("save outcome type: %w", ErrNotSupported)
}

// DeleteType always fails: outcome groups are maintained in the taxonomy.
//
// Deprecated: outcome types are outcome groups.
func (r *OutcomeRepository) DeleteType(ctx context.Context, id uuid.UUID) error {
	return fmt.Errorf("delete outcome type %s: %w", id, ErrNotSupported)
}
