package naming

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kcd-modkit/modkit/internal/fault"
)

// Names holds both derived forms of one raw mod name.
type Names struct {
	Raw    string
	Slug   string // e.g. "epic_loot"
	Symbol string // e.g. "EpicLoot"
}

// ToSlug replaces runs of whitespace with a single underscore, lowercases the
// result, drops every character outside [a-z_] and trims underscores from
// both ends.
//
//	ToSlug("My Mod 2!") // "my_mod"
func ToSlug(raw string) string {
	var collapsed strings.Builder
	inSpace := false
	for _, r := range raw {
		if unicode.IsSpace(r) {
			if !inSpace {
				collapsed.WriteByte('_')
			}
			inSpace = true
			continue
		}
		inSpace = false
		collapsed.WriteRune(r)
	}

	lower := strings.ToLower(collapsed.String())

	var slug strings.Builder
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || r == '_' {
			slug.WriteRune(r)
		}
	}
	return strings.Trim(slug.String(), "_")
}

// ToSymbol keeps only ASCII letters, whitespace and underscores, splits on runs
// of whitespace or underscores, title-cases each component and concatenates them.
//
//	ToSymbol("my cool mod") // "MyCoolMod"
//	ToSymbol("test_mod_42") // "TestMod"
func ToSymbol(raw string) string {
	var cleaned strings.Builder
	for _, r := range raw {
		if isASCIILetter(r) || unicode.IsSpace(r) || r == '_' {
			cleaned.WriteRune(r)
		}
	}

	components := strings.FieldsFunc(cleaned.String(), func(r rune) bool {
		return unicode.IsSpace(r) || r == '_'
	})

	// Casers carry state, so each call gets its own.
	titler := cases.Title(language.Und)
	var symbol strings.Builder
	for _, c := range components {
		symbol.WriteString(titler.String(c))
	}
	return symbol.String()
}

// Normalize derives both forms and rejects names that normalize to nothing.
func Normalize(raw string) (Names, error) {
	n := Names{
		Raw:    raw,
		Slug:   ToSlug(raw),
		Symbol: ToSymbol(raw),
	}
	if n.Slug == "" || n.Symbol == "" {
		return n, &fault.OpError{
			Op:   "naming.normalize",
			Kind: fault.KindInvalidName,
			Err:  fmt.Errorf("name %q has no letters to build a folder or symbol from", raw),
		}
	}
	return n, nil
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
