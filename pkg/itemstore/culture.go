package itemstore

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Culture is a canonical BCP 47 language tag. The empty Culture is the
// invariant culture.
type Culture string

// InvariantCulture is the culture of unversioned, language-neutral content.
const InvariantCulture Culture = ""

// ParseCulture canonicalizes a language tag ("en-us" -> "en-US"). Empty
// input, "und" and "invariant" map to InvariantCulture.
func ParseCulture(s string) (Culture, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "invariant") {
		return InvariantCulture, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidCulture, s, err)
	}
	if tag == language.Und {
		return InvariantCulture, nil
	}
	return Culture(tag.String()), nil
}

// MustCulture is ParseCulture for constants and tests.
func MustCulture(s string) Culture {
	c, err := ParseCulture(s)
	if err != nil {
		panic(err)
	}
	return c
}

// IsInvariant reports whether c is the invariant culture.
func (c Culture) IsInvariant() bool {
	return c == InvariantCulture
}

func (c Culture) String() string {
	if c == InvariantCulture {
		return "invariant"
	}
	return string(c)
}
