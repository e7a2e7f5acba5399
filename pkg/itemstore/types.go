package itemstore

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// FieldID identifies a field on an item template.
type FieldID uuid.UUID

// MustField parses a field identifier and panics on malformed input.
// Intended for package-level field constants.
func MustField(s string) FieldID {
	return FieldID(uuid.MustParse(s))
}

func (f FieldID) String() string {
	return uuid.UUID(f).String()
}

// MarshalText lets FieldID key JSON maps.
func (f FieldID) MarshalText() ([]byte, error) {
	return uuid.UUID(f).MarshalText()
}

func (f *FieldID) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(f).UnmarshalText(data)
}

// WorkflowState is the approval state of a single version.
type WorkflowState string

// Workflow state constants (typed).
const (
	WorkflowStateDraft            WorkflowState = "draft"
	WorkflowStateAwaitingApproval WorkflowState = "awaiting_approval"
	WorkflowStateApproved         WorkflowState = "approved"
	WorkflowStateRejected         WorkflowState = "rejected"
)

// Item is a content item with shared fields and per-culture versions.
type Item struct {
	ID           uuid.UUID          `json:"id"`
	TemplateID   uuid.UUID          `json:"template_id"`
	ParentID     uuid.UUID          `json:"parent_id"`
	Name         string             `json:"name"`
	SharedFields map[FieldID]string `json:"shared_fields,omitempty"`
	Versions     []*Version         `json:"versions,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// Version is one numbered version of an item in one culture.
type Version struct {
	Culture   Culture            `json:"culture"`
	Number    int                `json:"number"`
	State     WorkflowState      `json:"state"`
	Fields    map[FieldID]string `json:"fields,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// ItemVersion pairs an item with the version selected for reading.
type ItemVersion struct {
	Item    *Item
	Version *Version
}

// NewItem creates an empty item with a fresh identity.
func NewItem(templateID, parentID uuid.UUID, name string) *Item {
	now := time.Now().UTC()
	return &Item{
		ID:           uuid.New(),
		TemplateID:   templateID,
		ParentID:     parentID,
		Name:         name,
		SharedFields: make(map[FieldID]string),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Shared returns the shared value of a field, or "" when unset.
func (i *Item) Shared(field FieldID) string {
	return i.SharedFields[field]
}

// SetShared writes a culture-invariant field value.
func (i *Item) SetShared(field FieldID, value string) {
	if i.SharedFields == nil {
		i.SharedFields = make(map[FieldID]string)
	}
	i.SharedFields[field] = value
}

// Version returns the version with the given culture and number, or nil.
func (i *Item) Version(culture Culture, number int) *Version {
	for _, v := range i.Versions {
		if v.Culture == culture && v.Number == number {
			return v
		}
	}
	return nil
}

// LatestVersion returns the highest-numbered version for culture regardless
// of workflow state, or nil.
func (i *Item) LatestVersion(culture Culture) *Version {
	var latest *Version
	for _, v := range i.Versions {
		if v.Culture != culture {
			continue
		}
		if latest == nil || v.Number > latest.Number {
			latest = v
		}
	}
	return latest
}

// LatestApprovedVersion returns the highest-numbered approved version for
// culture, or nil.
func (i *Item) LatestApprovedVersion(culture Culture) *Version {
	var latest *Version
	for _, v := range i.Versions {
		if v.Culture != culture || v.State != WorkflowStateApproved {
			continue
		}
		if latest == nil || v.Number > latest.Number {
			latest = v
		}
	}
	return latest
}

// AddVersion appends a new version for culture numbered after the current
// latest one.
func (i *Item) AddVersion(culture Culture, state WorkflowState) *Version {
	number := 1
	if latest := i.LatestVersion(culture); latest != nil {
		number = latest.Number + 1
	}
	v := &Version{
		Culture:   culture,
		Number:    number,
		State:     state,
		Fields:    make(map[FieldID]string),
		UpdatedAt: time.Now().UTC(),
	}
	i.Versions = append(i.Versions, v)
	return v
}

// Cultures lists the distinct cultures the item has versions in, sorted.
func (i *Item) Cultures() []Culture {
	seen := make(map[Culture]struct{})
	var out []Culture
	for _, v := range i.Versions {
		if _, ok := seen[v.Culture]; ok {
			continue
		}
		seen[v.Culture] = struct{}{}
		out = append(out, v.Culture)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	c := *i
	c.SharedFields = cloneFields(i.SharedFields)
	c.Versions = make([]*Version, 0, len(i.Versions))
	for _, v := range i.Versions {
		c.Versions = append(c.Versions, v.Clone())
	}
	return &c
}

// Field returns a culture-specific field value, or "" when unset.
func (v *Version) Field(field FieldID) string {
	return v.Fields[field]
}

// SetField writes a culture-specific field value.
func (v *Version) SetField(field FieldID, value string) {
	if v.Fields == nil {
		v.Fields = make(map[FieldID]string)
	}
	v.Fields[field] = value
}

// Clone returns a deep copy of the version.
func (v *Version) Clone() *Version {
	if v == nil {
		return nil
	}
	c := *v
	c.Fields = cloneFields(v.Fields)
	return &c
}

// Field reads a field the way item[field] does in the store: a value set on
// the version wins, otherwise the shared value is returned.
func (iv ItemVersion) Field(field FieldID) string {
	if iv.Version != nil {
		if value, ok := iv.Version.Fields[field]; ok {
			return value
		}
	}
	if iv.Item == nil {
		return ""
	}
	return iv.Item.SharedFields[field]
}

func cloneFields(in map[FieldID]string) map[FieldID]string {
	out := make(map[FieldID]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
