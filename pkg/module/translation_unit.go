// Package module implements C8: splitting a resolved AST into per-namespace
// modules, compiling each one down to a set of CompilationObjects, and
// rendering the public/protected surface each file exposes as a list of
// TranslationUnits other files can later resolve against.
package module

import (
	"strings"

	"jodin.dev/jodinc/pkg/ident"
	"jodin.dev/jodinc/pkg/jerr"
	"jodin.dev/jodinc/pkg/registry"
	"jodin.dev/jodinc/pkg/types"
)

// unitSeparator divides translation units within a joined compilation
// unit; fieldSeparator divides a single unit's three fields. Neither may
// appear inside a rendered identifier or type string.
const (
	unitSeparator  = "\n"
	fieldSeparator = "|"
)

// TranslationUnit is the smallest publicly-facing declaration a file
// exposes: a name, its type, and the visibility it was declared with.
type TranslationUnit struct {
	Name       ident.Identifier
	Type       types.IntermediateType
	Visibility registry.Visibility
}

// String renders the "name|type|visibility" grammar.
func (u TranslationUnit) String() string {
	return strings.Join([]string{u.Name.String(), u.Type.String(), u.Visibility.String()}, fieldSeparator)
}

// ParseTranslationUnit parses a single "name|type|visibility" line.
func ParseTranslationUnit(s string) (TranslationUnit, error) {
	fields := strings.Split(s, fieldSeparator)
	if len(fields) != 3 {
		return TranslationUnit{}, jerr.ErrInvalidCompilationUnit.New(s)
	}
	jtype, err := types.ParseIntermediateType(fields[1])
	if err != nil {
		return TranslationUnit{}, err
	}
	vis, err := registry.ParseVisibility(fields[2])
	if err != nil {
		return TranslationUnit{}, err
	}
	return TranslationUnit{Name: ident.FromString(fields[0]), Type: jtype, Visibility: vis}, nil
}

// JoinTranslationUnits renders units as a newline-separated block, the
// form a CompilationObject stores them in.
func JoinTranslationUnits(units []TranslationUnit) string {
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = u.String()
	}
	return strings.Join(parts, unitSeparator)
}

// ParseTranslationUnits is JoinTranslationUnits' inverse. An empty string
// parses to a nil (not a one-element) slice.
func ParseTranslationUnits(s string) ([]TranslationUnit, error) {
	if s == "" {
		return nil, nil
	}
	lines := strings.Split(s, unitSeparator)
	out := make([]TranslationUnit, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		u, err := ParseTranslationUnit(line)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}
