package definitions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/outcome-content/pkg/itemstore"
	"github.com/tendant/outcome-content/pkg/media"
	"github.com/tendant/outcome-content/pkg/taxonomy"
)

// OutcomeRepository reads and writes outcome definitions stored as items.
type OutcomeRepository struct {
	store    itemstore.Store
	resolver VersionResolver
	media    MediaService
	mapper   Mapper
	logger   *slog.Logger
	metrics  *Metrics
	types    legacyTypes

	templateID    uuid.UUID
	containerID   uuid.UUID
	assumeActive  bool
	maxImageBytes int64
}

var _ Repository = (*OutcomeRepository)(nil)

// Option represents a functional option for configuring the repository
type Option func(*OutcomeRepository)

// WithStore sets the item store. Required.
func WithStore(store itemstore.Store) Option {
	return func(r *OutcomeRepository) {
		r.store = store
	}
}

// WithResolver overrides the version resolver. The default resolves over the
// item store and accepts the media templates.
func WithResolver(resolver VersionResolver) Option {
	return func(r *OutcomeRepository) {
		r.resolver = resolver
	}
}

// WithMediaService sets the media service used by GetImage
func WithMediaService(svc MediaService) Option {
	return func(r *OutcomeRepository) {
		r.media = svc
	}
}

// WithMapper overrides the record mapper
func WithMapper(mapper Mapper) Option {
	return func(r *OutcomeRepository) {
		r.mapper = mapper
	}
}

// WithTaxonomy sets the taxonomy manager backing the outcome type shims
func WithTaxonomy(manager taxonomy.Manager) Option {
	return func(r *OutcomeRepository) {
		r.types.taxonomy = manager
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *OutcomeRepository) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics collectors
func WithMetrics(m *Metrics) Option {
	return func(r *OutcomeRepository) {
		r.metrics = m
	}
}

// WithContainer sets the item new definitions are created under
func WithContainer(id uuid.UUID) Option {
	return func(r *OutcomeRepository) {
		r.containerID = id
	}
}

// WithAssumeActive makes Save create approved versions instead of drafts.
func WithAssumeActive(active bool) Option {
	return func(r *OutcomeRepository) {
		r.assumeActive = active
	}
}

// WithMaxImageBytes bounds the image payload GetImage will buffer. Zero
// means no limit.
func WithMaxImageBytes(n int64) Option {
	return func(r *OutcomeRepository) {
		r.maxImageBytes = n
	}
}

// New creates an outcome definition repository.
func New(options ...Option) (*OutcomeRepository, error) {
	r := &OutcomeRepository{
		templateID:  TemplateOutcomeDefinition,
		containerID: ContainerOutcomes,
	}

	for _, option := range options {
		option(r)
	}

	if r.store == nil {
		return nil, fmt.Errorf("item store is required")
	}
	if r.maxImageBytes < 0 {
		return nil, fmt.Errorf("max image bytes must not be negative, got %d", r.maxImageBytes)
	}
	if r.resolver == nil {
		r.resolver = itemstore.NewResolver(r.store, media.Templates()...)
	}
	if r.mapper == nil {
		r.mapper = DefaultOutcomeMapper()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.metrics == nil {
		r.metrics = NewMetrics(nil)
	}
	r.types.logger = r.logger
	r.types.metrics = r.metrics

	return r, nil
}

// Mapper returns the mapper the repository converts items with.
func (r *OutcomeRepository) Mapper() Mapper {
	return r.mapper
}

// Metrics returns the repository's metrics collectors.
func (r *OutcomeRepository) Metrics() *Metrics {
	return r.metrics
}

// Verify checks that the container item for new definitions exists.
func (r *OutcomeRepository) Verify(ctx context.Context) error {
	if _, err := r.store.GetItem(ctx, r.containerID); err != nil {
		return fmt.Errorf("outcome definition container %s: %w", r.containerID, err)
	}
	return nil
}

// Get returns the latest approved version of a definition in culture.
func (r *OutcomeRepository) Get(ctx context.Context, id uuid.UUID, culture itemstore.Culture, includeCultureSpecific bool) (*OutcomeDefinitionRecord, error) {
	defer r.metrics.ObserveGet(time.Now())

	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: definition id is required", ErrInvalidArgument)
	}
	iv, err := r.resolver.ResolveApproved(ctx, r.templateID, id, culture)
	if err != nil {
		return nil, &DefinitionError{DefinitionID: id, Op: "get", Err: err}
	}
	if iv == nil {
		return nil, &DefinitionError{DefinitionID: id, Op: "get", Err: ErrNotFound}
	}
	return r.mapper.Map(iv.Item, iv.Version, includeCultureSpecific)
}

// GetAll returns every definition with an approved version in culture.
func (r *OutcomeRepository) GetAll(ctx context.Context, culture itemstore.Culture, includeCultureSpecific bool) ([]*OutcomeDefinitionRecord, error) {
	items, err := r.store.ListItemsByTemplate(ctx, r.templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcome definitions: %w", err)
	}

	records := make([]*OutcomeDefinitionRecord, 0, len(items))
	for _, item := range items {
		iv, err := r.resolver.ResolveApproved(ctx, r.templateID, item.ID, culture)
		if err != nil {
			return nil, &DefinitionError{DefinitionID: item.ID, Op: "get_all", Err: err}
		}
		if iv == nil {
			continue
		}
		record, err := r.mapper.Map(iv.Item, iv.Version, includeCultureSpecific)
		if err != nil {
			return nil, &DefinitionError{DefinitionID: item.ID, Op: "get_all", Err: err}
		}
		records = append(records, record)
	}
	return records, nil
}

// Save writes record into the culture version of its item, creating the
// item under the container when it does not exist yet. Approved versions
// are not edited in place: a new version is started from the latest one
// unless the repository assumes definitions are active.
func (r *OutcomeRepository) Save(ctx context.Context, record *OutcomeDefinitionRecord, culture itemstore.Culture) error {
	if record == nil {
		return fmt.Errorf("%w: record is required", ErrInvalidArgument)
	}
	id := record.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	item, err := r.store.GetItem(ctx, id)
	switch {
	case errors.Is(err, itemstore.ErrItemNotFound):
		item = itemstore.NewItem(r.templateID, r.containerID, record.Name)
		item.ID = id
	case err != nil:
		return &DefinitionError{DefinitionID: id, Op: "save", Err: err}
	case item.TemplateID != r.templateID:
		return &DefinitionError{
			DefinitionID: id,
			Op:           "save",
			Err:          fmt.Errorf("%w: item is based on template %s", ErrInvalidArgument, item.TemplateID),
		}
	}

	version := r.editableVersion(item, culture)
	if err := r.mapper.SetCultureInvariantFields(record, item); err != nil {
		return &DefinitionError{DefinitionID: id, Op: "save", Err: err}
	}
	if err := r.mapper.SetCultureSpecificFields(record, version); err != nil {
		return &DefinitionError{DefinitionID: id, Op: "save", Err: err}
	}

	now := time.Now().UTC()
	item.UpdatedAt = now
	version.UpdatedAt = now

	if err := r.store.SaveItem(ctx, item); err != nil {
		return &DefinitionError{DefinitionID: id, Op: "save", Err: err}
	}
	record.ID = id
	record.Culture = culture
	return nil
}

func (r *OutcomeRepository) editableVersion(item *itemstore.Item, culture itemstore.Culture) *itemstore.Version {
	state := itemstore.WorkflowStateDraft
	if r.assumeActive {
		state = itemstore.WorkflowStateApproved
	}

	latest := item.LatestVersion(culture)
	if latest == nil {
		return item.AddVersion(culture, state)
	}
	if latest.State != itemstore.WorkflowStateApproved || r.assumeActive {
		return latest
	}
	next := item.AddVersion(culture, state)
	for k, v := range latest.Fields {
		next.SetField(k, v)
	}
	return next
}

// Delete removes a definition and all of its versions.
func (r *OutcomeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: definition id is required", ErrInvalidArgument)
	}
	item, err := r.store.GetItem(ctx, id)
	if errors.Is(err, itemstore.ErrItemNotFound) || (err == nil && item.TemplateID != r.templateID) {
		return &DefinitionError{DefinitionID: id, Op: "delete", Err: ErrNotFound}
	}
	if err != nil {
		return &DefinitionError{DefinitionID: id, Op: "delete", Err: err}
	}
	if err := r.store.DeleteItem(ctx, id); err != nil {
		return &DefinitionError{DefinitionID: id, Op: "delete", Err: err}
	}
	return nil
}

// CreateDefinitionFromItem maps a definition item including its localized
// attributes.
//
// Deprecated: use Mapper().Map.
func (r *OutcomeRepository) CreateDefinitionFromItem(item *itemstore.Item, version *itemstore.Version) (*OutcomeDefinitionRecord, error) {
	return r.mapper.Map(item, version, true)
}
