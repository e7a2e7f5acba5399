package definitions

import (
	"encoding/xml"
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/outcome-content/pkg/itemstore"
)

// Scope tells the codec where a field lives on an item.
type Scope int

const (
	// ScopeInvariant fields are shared by every version of the item.
	ScopeInvariant Scope = iota
	// ScopeCultureSpecific fields belong to a single culture version.
	ScopeCultureSpecific
)

func (s Scope) String() string {
	switch s {
	case ScopeInvariant:
		return "invariant"
	case ScopeCultureSpecific:
		return "culture_specific"
	default:
		return "unknown"
	}
}

// Record is implemented by every definition record type the codec maps.
type Record interface {
	Base() *DefinitionRecord
}

// FieldBinding ties one stored field to one record attribute. Set must
// accept "" and leave the attribute at its zero value.
type FieldBinding[R Record] struct {
	Field itemstore.FieldID
	Scope Scope
	Get   func(R) string
	Set   func(R, string)
}

// Codec translates between items and definition records using a fixed set
// of classification and custom value fields plus typed bindings.
type Codec[R Record] struct {
	classificationFields []itemstore.FieldID
	customValueFields    []itemstore.FieldID
	bindings             []FieldBinding[R]
}

// NewCodec creates a codec. The field slices are copied.
func NewCodec[R Record](classificationFields, customValueFields []itemstore.FieldID, bindings ...FieldBinding[R]) *Codec[R] {
	return &Codec[R]{
		classificationFields: append([]itemstore.FieldID(nil), classificationFields...),
		customValueFields:    append([]itemstore.FieldID(nil), customValueFields...),
		bindings:             append([]FieldBinding[R](nil), bindings...),
	}
}

// Decode populates record from iv. Classification and custom values are
// always copied. Culture-specific bindings are read only when
// includeCultureSpecific is set; otherwise they are reset to zero values.
func (c *Codec[R]) Decode(iv itemstore.ItemVersion, record R, includeCultureSpecific bool) {
	base := record.Base()
	base.Classifications = c.readShared(iv.Item, c.classificationFields)
	base.CustomValues = c.readShared(iv.Item, c.customValueFields)

	for _, b := range c.bindings {
		switch b.Scope {
		case ScopeInvariant:
			b.Set(record, sharedValue(iv.Item, b.Field))
		case ScopeCultureSpecific:
			if includeCultureSpecific && iv.Version != nil {
				b.Set(record, iv.Version.Field(b.Field))
			} else {
				b.Set(record, "")
			}
		}
	}
}

// EncodeInvariant writes the classification, custom value and invariant
// bound attributes of record onto item's shared fields.
func (c *Codec[R]) EncodeInvariant(record R, item *itemstore.Item) {
	base := record.Base()
	for _, f := range c.classificationFields {
		if v, ok := base.Classifications[f]; ok {
			item.SetShared(f, v)
		}
	}
	for _, f := range c.customValueFields {
		if v, ok := base.CustomValues[f]; ok {
			item.SetShared(f, v)
		}
	}
	for _, b := range c.bindings {
		if b.Scope == ScopeInvariant {
			item.SetShared(b.Field, b.Get(record))
		}
	}
}

// EncodeCultureSpecific writes the culture-specific bound attributes of
// record onto version.
func (c *Codec[R]) EncodeCultureSpecific(record R, version *itemstore.Version) {
	for _, b := range c.bindings {
		if b.Scope == ScopeCultureSpecific {
			version.SetField(b.Field, b.Get(record))
		}
	}
}

func (c *Codec[R]) readShared(item *itemstore.Item, fields []itemstore.FieldID) map[itemstore.FieldID]string {
	out := make(map[itemstore.FieldID]string, len(fields))
	for _, f := range fields {
		out[f] = sharedValue(item, f)
	}
	return out
}

func sharedValue(item *itemstore.Item, field itemstore.FieldID) string {
	if item == nil {
		return ""
	}
	return item.Shared(field)
}

// ParseBool reads a stored checkbox value. "1", "true", "yes" and "on" are
// true in any case; everything else, including "", is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// FormatBool encodes a checkbox value the way the store does.
func FormatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ParseReference reads an item reference. Empty, malformed and nil
// identifiers all mean no reference.
func ParseReference(s string) *uuid.UUID {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return nil
	}
	return &id
}

// FormatReference encodes an item reference in the store's braced upper-case
// form. nil encodes to "".
func FormatReference(id *uuid.UUID) string {
	if id == nil || *id == uuid.Nil {
		return ""
	}
	return "{" + strings.ToUpper(id.String()) + "}"
}

type imageFieldValue struct {
	MediaID string `xml:"mediaid,attr"`
}

// ParseMediaReference reads an image field. The field holds either a bare
// item reference or an image element such as <image mediaid="{...}" />.
func ParseMediaReference(s string) *uuid.UUID {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "<") {
		return ParseReference(s)
	}
	var v imageFieldValue
	if err := xml.Unmarshal([]byte(s), &v); err != nil {
		return nil
	}
	return ParseReference(v.MediaID)
}
