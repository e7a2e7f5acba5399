package definitions

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tendant/outcome-content/pkg/itemstore"
)

// DefinitionRecord holds the attributes every definition type shares.
type DefinitionRecord struct {
	ID              uuid.UUID                    `json:"id"`
	Culture         itemstore.Culture            `json:"culture"`
	Classifications map[itemstore.FieldID]string `json:"classifications,omitempty"`
	CustomValues    map[itemstore.FieldID]string `json:"custom_values,omitempty"`
}

// Base returns r itself so embedding types satisfy Record.
func (r *DefinitionRecord) Base() *DefinitionRecord {
	return r
}

// OutcomeDefinitionRecord is the typed view of an outcome definition item.
type OutcomeDefinitionRecord struct {
	DefinitionRecord

	// GroupID is nil when the outcome belongs to no group.
	GroupID *uuid.UUID `json:"group_id"`

	Name        string `json:"name"`
	Description string `json:"description"`

	IsMonetaryValueApplicable         bool `json:"is_monetary_value_applicable"`
	AdditionalRegistrationsAreIgnored bool `json:"additional_registrations_are_ignored"`
}

// Mapper converts between outcome definition items and records.
type Mapper interface {
	Map(item *itemstore.Item, version *itemstore.Version, includeCultureSpecific bool) (*OutcomeDefinitionRecord, error)
	SetCultureInvariantFields(record *OutcomeDefinitionRecord, item *itemstore.Item) error
	SetCultureSpecificFields(record *OutcomeDefinitionRecord, version *itemstore.Version) error
}

// OutcomeMapper is the default Mapper.
type OutcomeMapper struct {
	codec *Codec[*OutcomeDefinitionRecord]
}

var _ Mapper = (*OutcomeMapper)(nil)

// NewOutcomeMapper creates a mapper over the given classification and custom
// value field sets.
func NewOutcomeMapper(classificationFields, customValueFields []itemstore.FieldID) *OutcomeMapper {
	return &OutcomeMapper{
		codec: NewCodec[*OutcomeDefinitionRecord](classificationFields, customValueFields, outcomeBindings()...),
	}
}

// DefaultOutcomeMapper maps with the well-known field sets.
func DefaultOutcomeMapper() *OutcomeMapper {
	return NewOutcomeMapper(ClassificationFields(), CustomValueFields())
}

func outcomeBindings() []FieldBinding[*OutcomeDefinitionRecord] {
	return []FieldBinding[*OutcomeDefinitionRecord]{
		{
			Field: FieldOutcomeGroupID,
			Scope: ScopeInvariant,
			Get:   func(r *OutcomeDefinitionRecord) string { return FormatReference(r.GroupID) },
			Set:   func(r *OutcomeDefinitionRecord, s string) { r.GroupID = ParseReference(s) },
		},
		{
			Field: FieldMonetaryValueApplicable,
			Scope: ScopeInvariant,
			Get:   func(r *OutcomeDefinitionRecord) string { return FormatBool(r.IsMonetaryValueApplicable) },
			Set:   func(r *OutcomeDefinitionRecord, s string) { r.IsMonetaryValueApplicable = ParseBool(s) },
		},
		{
			Field: FieldAdditionalRegistrationsAreIgnored,
			Scope: ScopeInvariant,
			Get:   func(r *OutcomeDefinitionRecord) string { return FormatBool(r.AdditionalRegistrationsAreIgnored) },
			Set:   func(r *OutcomeDefinitionRecord, s string) { r.AdditionalRegistrationsAreIgnored = ParseBool(s) },
		},
		{
			Field: FieldName,
			Scope: ScopeCultureSpecific,
			Get:   func(r *OutcomeDefinitionRecord) string { return r.Name },
			Set:   func(r *OutcomeDefinitionRecord, s string) { r.Name = s },
		},
		{
			Field: FieldDescription,
			Scope: ScopeCultureSpecific,
			Get:   func(r *OutcomeDefinitionRecord) string { return r.Description },
			Set:   func(r *OutcomeDefinitionRecord, s string) { r.Description = s },
		},
	}
}

// Map builds a record from one version of an outcome definition item.
// Malformed stored values degrade to defaults; only a missing item or
// version is an error.
func (m *OutcomeMapper) Map(item *itemstore.Item, version *itemstore.Version, includeCultureSpecific bool) (*OutcomeDefinitionRecord, error) {
	if item == nil {
		return nil, fmt.Errorf("%w: item is required", ErrInvalidArgument)
	}
	if version == nil {
		return nil, fmt.Errorf("%w: version is required", ErrInvalidArgument)
	}
	record := &OutcomeDefinitionRecord{
		DefinitionRecord: DefinitionRecord{ID: item.ID, Culture: version.Culture},
	}
	m.codec.Decode(itemstore.ItemVersion{Item: item, Version: version}, record, includeCultureSpecific)
	return record, nil
}

// SetCultureInvariantFields writes the shared attributes of record to item.
func (m *OutcomeMapper) SetCultureInvariantFields(record *OutcomeDefinitionRecord, item *itemstore.Item) error {
	if record == nil {
		return fmt.Errorf("%w: record is required", ErrInvalidArgument)
	}
	if item == nil {
		return fmt.Errorf("%w: item is required", ErrInvalidArgument)
	}
	m.codec.EncodeInvariant(record, item)
	return nil
}

// SetCultureSpecificFields writes the localized attributes of record to
// version.
func (m *OutcomeMapper) SetCultureSpecificFields(record *OutcomeDefinitionRecord, version *itemstore.Version) error {
	if record == nil {
		return fmt.Errorf("%w: record is required", ErrInvalidArgument)
	}
	if version == nil {
		return fmt.Errorf("%w: version is required", ErrInvalidArgument)
	}
	m.codec.EncodeCultureSpecific(record, version)
	return nil
}
