// Package types implements C2: the intermediate type representation that
// sits between surface syntax and the fully resolved types pkg/typeenv
// produces.
package types

import (
	"fmt"
	"strconv"
	"strings"

	"jodin.dev/jodinc/pkg/ident"
)

// Primitive enumerates the built-in scalar types. Order is significant:
// a primitive's declaration position is its stable small id (0–12);
// VaList sits past that range and carries no id of its own.
type Primitive int

const (
	Void Primitive = iota
	Boolean
	Char
	Byte
	Short
	Int
	Long
	UnsignedByte
	UnsignedShort
	UnsignedInt
	UnsignedLong
	Float
	Double
	VaList
)

func (p Primitive) String() string {
	switch p {
	case Void:
		return "void"
	case Boolean:
		return "boolean"
	case Char:
		return "char"
	case Byte:
		return "byte"
	case Short:
		return "short"
	case Int:
		return "int"
	case Long:
		return "long"
	case UnsignedByte:
		return "unsigned byte"
	case UnsignedShort:
		return "unsigned short"
	case UnsignedInt:
		return "unsigned int"
	case UnsignedLong:
		return "unsigned long"
	case Float:
		return "float"
	case Double:
		return "double"
	case VaList:
		return "va_list"
	default:
		return fmt.Sprintf("primitive(%d)", int(p))
	}
}

// SpecifierKind discriminates TypeSpecifier's three shapes.
type SpecifierKind int

const (
	SpecifierPrimitive SpecifierKind = iota
	SpecifierId
	SpecifierGeneric
)

// TypeSpecifier is the base of an IntermediateType before any tails
// (pointer/array/function) are applied to it.
type TypeSpecifier struct {
	Kind      SpecifierKind
	Primitive Primitive
	Id        ident.Identifier
	Generics  []IntermediateType // only meaningful when Kind == SpecifierGeneric
}

// PrimitiveSpecifier builds a TypeSpecifier naming a built-in scalar.
func PrimitiveSpecifier(p Primitive) TypeSpecifier {
	return TypeSpecifier{Kind: SpecifierPrimitive, Primitive: p}
}

// IdSpecifier builds a TypeSpecifier naming a user-defined type.
func IdSpecifier(id ident.Identifier) TypeSpecifier {
	return TypeSpecifier{Kind: SpecifierId, Id: id}
}

// GenericSpecifier builds a TypeSpecifier naming a parameterized type.
func GenericSpecifier(id ident.Identifier, generics ...IntermediateType) TypeSpecifier {
	return TypeSpecifier{Kind: SpecifierGeneric, Id: id, Generics: generics}
}

// GenericParam builds a TypeSpecifier referencing a bare generic parameter
// by name — the form Substitute replaces.
func GenericParam(name string) TypeSpecifier {
	return TypeSpecifier{Kind: SpecifierGeneric, Id: ident.New(name)}
}

func (s TypeSpecifier) String() string {
	switch s.Kind {
	case SpecifierPrimitive:
		return s.Primitive.String()
	case SpecifierId:
		return s.Id.String()
	case SpecifierGeneric:
		// A bare parameter reference has no argument list of its own.
		if len(s.Generics) == 0 {
			return s.Id.String()
		}
		parts := make([]string, len(s.Generics))
		for i, g := range s.Generics {
			parts[i] = g.String()
		}
		return fmt.Sprintf("%s<%s>", s.Id.String(), strings.Join(parts, ", "))
	default:
		return "?"
	}
}

// TailKind discriminates the three ways a type can be wrapped.
type TailKind int

const (
	TailPointer TailKind = iota
	TailArray
	TailFunction
)

// TypeTail is one layer wrapped around a type: pointer-to, array-of, or
// function-returning. ResolveType (pkg/typeenv) walks a type's tails
// left-to-right from its base specifier, wrapping the accumulated type at
// each step — the same order Wrap below renders textually.
type TypeTail struct {
	Kind TailKind

	// ArraySize is the array tail's element count. nil means unsized
	// ("abstract array", e.g. a bare function parameter `[int]`).
	ArraySize *uint64

	// Params are the function tail's parameter types.
	Params []IntermediateType
}

// Pointer builds a pointer tail.
func Pointer() TypeTail { return TypeTail{Kind: TailPointer} }

// Array builds an array tail of the given size, or an abstract
// (unsized) array when size is nil.
func Array(size *uint64) TypeTail { return TypeTail{Kind: TailArray, ArraySize: size} }

// Function builds a function tail with the given parameter types.
func Function(params ...IntermediateType) TypeTail {
	return TypeTail{Kind: TailFunction, Params: params}
}

func (t TypeTail) wrap(inner string) string {
	switch t.Kind {
	case TailPointer:
		return "*" + inner
	case TailArray:
		if t.ArraySize != nil {
			return fmt.Sprintf("[%s: %d]", inner, *t.ArraySize)
		}
		return fmt.Sprintf("[%s]", inner)
	case TailFunction:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), inner)
	default:
		return inner
	}
}

// IntermediateType is a type as written in (or derived directly from)
// source: a base specifier plus zero or more tails.
type IntermediateType struct {
	IsConst   bool
	Specifier TypeSpecifier
	Tails     []TypeTail
}

// FromSpecifier builds a bare IntermediateType with no tails.
func FromSpecifier(spec TypeSpecifier) IntermediateType {
	return IntermediateType{Specifier: spec}
}

// FromPrimitive is shorthand for FromSpecifier(PrimitiveSpecifier(p)).
func FromPrimitive(p Primitive) IntermediateType {
	return FromSpecifier(PrimitiveSpecifier(p))
}

// WithTail returns a copy of t with tail appended (the new outermost wrap).
func (t IntermediateType) WithTail(tail TypeTail) IntermediateType {
	out := t
	out.Tails = append(append([]TypeTail{}, t.Tails...), tail)
	return out
}

// WithPointer is sugar for WithTail(Pointer()).
func (t IntermediateType) WithPointer() IntermediateType { return t.WithTail(Pointer()) }

// WithAbstractArray is sugar for WithTail(Array(nil)).
func (t IntermediateType) WithAbstractArray() IntermediateType { return t.WithTail(Array(nil)) }

// WithArraySize is sugar for WithTail(Array(&size)).
func (t IntermediateType) WithArraySize(size uint64) IntermediateType {
	return t.WithTail(Array(&size))
}

// WithFunctionParams is sugar for WithTail(Function(params...)), used to
// build a function type whose return type is t.
func (t IntermediateType) WithFunctionParams(params ...IntermediateType) IntermediateType {
	return t.WithTail(Function(params...))
}

// String renders the canonical grammar: the const qualifier, the base
// specifier, then each tail wrapping the accumulated string in order, so
// the last tail ends up outermost (e.g. a pointer-to-function-returning-array
// renders "*fn(int) -> [*int: 5]").
func (t IntermediateType) String() string {
	s := t.Specifier.String()
	for _, tail := range t.Tails {
		s = tail.wrap(s)
	}
	if t.IsConst {
		s = "const " + s
	}
	return s
}

// Substitute consumes a {param -> argument} mapping and produces a new
// type with every bare generic-parameter reference replaced by its
// argument. Structure not touched by the mapping is shared with the
// receiver; a substituted parameter's tails are layered under the
// receiver's own (so T* with T -> int becomes int*). Parameters absent
// from the mapping are left as-is.
func (t IntermediateType) Substitute(mapping map[string]IntermediateType) IntermediateType {
	if t.Specifier.Kind == SpecifierGeneric && len(t.Specifier.Generics) == 0 {
		if arg, ok := mapping[t.Specifier.Id.String()]; ok {
			out := arg
			out.IsConst = out.IsConst || t.IsConst
			out.Tails = append(append([]TypeTail{}, arg.Tails...), substituteTails(t.Tails, mapping)...)
			return out
		}
	}

	out := t
	if len(t.Specifier.Generics) > 0 {
		generics := make([]IntermediateType, len(t.Specifier.Generics))
		for i, g := range t.Specifier.Generics {
			generics[i] = g.Substitute(mapping)
		}
		out.Specifier.Generics = generics
	}
	out.Tails = substituteTails(t.Tails, mapping)
	return out
}

func substituteTails(tails []TypeTail, mapping map[string]IntermediateType) []TypeTail {
	out := make([]TypeTail, len(tails))
	for i, tail := range tails {
		out[i] = tail
		if tail.Kind == TailFunction && len(tail.Params) > 0 {
			params := make([]IntermediateType, len(tail.Params))
			for j, p := range tail.Params {
				params[j] = p.Substitute(mapping)
			}
			out[i].Params = params
		}
	}
	return out
}

// Field pairs a name and visibility with a type — the shape both a struct
// member and a TranslationUnit are built from.
type Field[Ty any] struct {
	Name       ident.Identifier
	Visibility string // kept as a string here to avoid an import cycle with pkg/registry
	Jtype      Ty
}

// NewField builds a Field.
func NewField[Ty any](visibility string, jtype Ty, name ident.Identifier) Field[Ty] {
	return Field[Ty]{Name: name, Visibility: visibility, Jtype: jtype}
}

// ParseSize parses an array size literal as it appears inside "[T: N]".
func ParseSize(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
