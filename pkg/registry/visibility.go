// Package registry implements C3: per-identifier storage layered on top of
// pkg/ident's resolver, plus the Visibility rules that gate cross-module
// access during C5's use-occurrence rewriting.
package registry

import (
	"fmt"

	"jodin.dev/jodinc/pkg/ident"
	"jodin.dev/jodinc/pkg/jerr"
)

// Visibility is the access level of a declared identifier.
type Visibility int

const (
	// Public is visible from any namespace.
	Public Visibility = iota
	// Protected is visible from the declaring namespace and its descendants.
	Protected
	// Private is visible only from exactly the declaring namespace.
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return fmt.Sprintf("visibility(%d)", int(v))
	}
}

// ParseVisibility parses the textual form produced by String, matching the
// grammar a TranslationUnit is serialized with.
func ParseVisibility(s string) (Visibility, error) {
	switch s {
	case "public":
		return Public, nil
	case "protected":
		return Protected, nil
	case "private":
		return Private, nil
	default:
		return 0, jerr.ErrInvalidVisibility.New(s)
	}
}

// VisibleFrom reports whether an identifier declared in declaredIn with
// visibility vis can be referenced from useSite.
func VisibleFrom(vis Visibility, declaredIn, useSite ident.Identifier) bool {
	switch vis {
	case Public:
		return true
	case Protected:
		return declaredIn.IsPrefixOf(useSite) || declaredIn.Equal(useSite)
	case Private:
		return declaredIn.Equal(useSite)
	default:
		return false
	}
}
