package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/cinedb/internal/shared"
)

// Kind identifies one of the four movie relationship types.
type Kind int

const (
	Genre Kind = iota
	Director
	Actor
	Studio
)

// Kinds lists every relationship kind in a stable order.
var Kinds = []Kind{Genre, Director, Actor, Studio}

func (k Kind) String() string {
	switch k {
	case Genre:
		return "genre"
	case Director:
		return "director"
	case Actor:
		return "actor"
	case Studio:
		return "studio"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= Genre && k <= Studio
}

// ParseKind parses a kind name, case-insensitively, in singular or plural form.
func ParseKind(s string) (Kind, error) {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	for _, k := range Kinds {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown kind %q", shared.ErrValidation, s)
}

// MarshalText implements [encoding.TextMarshaler] so kinds render as names in JSON, including map keys.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
