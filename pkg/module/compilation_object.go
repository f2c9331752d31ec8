package module

import (
	"strconv"
	"strings"

	"jodin.dev/jodinc/pkg/ident"
	"jodin.dev/jodinc/pkg/jerr"
)

// MagicNumber opens every on-disk CompilationObject, confirming the file
// is a jodin object before anything else in it is trusted.
const MagicNumber uint64 = 0x4A4F44494E0B0002

// CompilationObject is what C8 produces per compiled unit: either one
// function/struct (carrying its own declaration's TranslationUnit, see
// object.go) or a module's static initializer (carrying the extern
// declarations it exposes, see static.go). CompilationObject.Assembly holds instructions
// already rendered through Instruction.Encode — the object format never
// needs to parse bytecode back into structured form, only replay or
// re-expose the translation units it carries.
type CompilationObject struct {
	MagicNumber uint64
	Path        string
	Module      ident.Identifier
	Units       []TranslationUnit
	Assembly    []string
}

// New builds a CompilationObject with the standard magic number.
func New(path string, mod ident.Identifier, units []TranslationUnit, assembly []string) *CompilationObject {
	return &CompilationObject{MagicNumber: MagicNumber, Path: path, Module: mod, Units: units, Assembly: assembly}
}

// Encode renders the object to its on-disk textual form:
//
//	<magic number>
//	<module identifier>
//	<unit count>
//	<unit> x count
//	<instruction count>
//	<instruction> x count
func (o *CompilationObject) Encode() string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(o.MagicNumber, 16))
	b.WriteByte('\n')
	b.WriteString(o.Module.String())
	b.WriteByte('\n')
	b.WriteString(strconv.Itoa(len(o.Units)))
	b.WriteByte('\n')
	for _, u := range o.Units {
		b.WriteString(u.String())
		b.WriteByte('\n')
	}
	b.WriteString(strconv.Itoa(len(o.Assembly)))
	b.WriteByte('\n')
	for _, line := range o.Assembly {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Decode is Encode's inverse. path is stamped onto the returned object
// rather than re-derived from its contents (a file may have moved since
// it was written).
func Decode(path string, data string) (*CompilationObject, error) {
	obj, _, err := decodeLines(path, strings.Split(data, "\n"), 0)
	return obj, err
}

// decodeLines decodes one object starting at lines[cursor], returning the
// cursor position just past it — the object format is self-delimiting
// (counts precede both variable-length sections), which is what lets an
// archive store objects back to back.
func decodeLines(path string, lines []string, cursor int) (*CompilationObject, int, error) {
	next := func() (string, error) {
		if cursor >= len(lines) {
			return "", jerr.ErrBuildIO.New(path)
		}
		line := lines[cursor]
		cursor++
		return line, nil
	}

	magicLine, err := next()
	if err != nil {
		return nil, cursor, err
	}
	magic, err := strconv.ParseUint(magicLine, 16, 64)
	if err != nil || magic != MagicNumber {
		return nil, cursor, jerr.ErrBuildIO.New(path)
	}

	modLine, err := next()
	if err != nil {
		return nil, cursor, err
	}

	countLine, err := next()
	if err != nil {
		return nil, cursor, err
	}
	unitCount, err := strconv.Atoi(countLine)
	if err != nil {
		return nil, cursor, jerr.ErrBuildIO.New(path)
	}
	var units []TranslationUnit
	for i := 0; i < unitCount; i++ {
		line, err := next()
		if err != nil {
			return nil, cursor, err
		}
		u, err := ParseTranslationUnit(line)
		if err != nil {
			return nil, cursor, err
		}
		units = append(units, u)
	}

	asmCountLine, err := next()
	if err != nil {
		return nil, cursor, err
	}
	asmCount, err := strconv.Atoi(asmCountLine)
	if err != nil {
		return nil, cursor, jerr.ErrBuildIO.New(path)
	}
	var assembly []string
	for i := 0; i < asmCount; i++ {
		line, err := next()
		if err != nil {
			return nil, cursor, err
		}
		assembly = append(assembly, line)
	}

	return &CompilationObject{
		MagicNumber: magic,
		Path:        path,
		Module:      ident.FromString(modLine),
		Units:       units,
		Assembly:    assembly,
	}, cursor, nil
}
