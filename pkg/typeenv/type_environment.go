// Package typeenv implements C6: the owning store of resolved types, and
// the weak-handle contract pkg/typeenv.ResolvedType exposes to callers
// that shouldn't extend the environment's lifetime.
package typeenv

import (
	"sync"
	"sync/atomic"

	"jodin.dev/jodinc/pkg/ident"
	"jodin.dev/jodinc/pkg/jerr"
	"jodin.dev/jodinc/pkg/types"
)

// Kind discriminates the shapes a JodinType can take.
type Kind int

const (
	KindPrimitive Kind = iota
	KindStruct
	KindFunction
)

// JodinType is a fully named, canonical type owned by a TypeEnvironment.
// Two JodinTypes are the same type iff they are the same pointer; TypeID
// is a process-unique numeric alias for that identity (stable within a
// run, not across runs).
type JodinType struct {
	ID        ident.Identifier
	TypeID    uint32
	Kind      Kind
	Primitive types.Primitive
	Fields    []types.Field[types.IntermediateType]
	Params    []types.IntermediateType // KindFunction only
	Return    *types.IntermediateType  // KindFunction only
}

// nextTypeID backs NextTypeID. Values below 100 are reserved for the
// primitives' own small stable ids.
var nextTypeID uint32 = 100

// NextTypeID mints the next process-unique type id. Atomic so a future
// multi-threaded build doesn't hand the same id to two types.
func NextTypeID() uint32 {
	return atomic.AddUint32(&nextTypeID, 1) - 1
}

// BaseTypeID is the identifier every environment registers its
// always-present root (untyped/`var`) type under.
var BaseTypeID = ident.New("{base_type}")

// The base type itself is created at most once per process and shared by
// every environment, so its TypeID is the same everywhere.
var (
	baseTypeOnce sync.Once
	baseType     *JodinType
)

func generatedBaseType() *JodinType {
	baseTypeOnce.Do(func() {
		baseType = &JodinType{ID: BaseTypeID, TypeID: NextTypeID(), Kind: KindStruct}
	})
	return baseType
}

// TypeEnvironment owns every JodinType produced during compilation of one
// unit of work. Resolved handles obtained from it (ResolvedType) become
// unusable once the environment is Closed, so nothing outside the
// environment can quietly extend the lifetime of a type it owns.
type TypeEnvironment struct {
	types      map[string]*JodinType
	generation uint64
	closed     bool
}

// New builds a TypeEnvironment pre-populated with the base type and every
// primitive.
func New() *TypeEnvironment {
	env := &TypeEnvironment{types: make(map[string]*JodinType)}
	env.mustAdd(generatedBaseType())
	allPrimitives := []types.Primitive{
		types.Void, types.Boolean, types.Char,
		types.Byte, types.Short, types.Int, types.Long,
		types.UnsignedByte, types.UnsignedShort, types.UnsignedInt, types.UnsignedLong,
		types.Float, types.Double, types.VaList,
	}
	for _, p := range allPrimitives {
		env.mustAdd(&JodinType{ID: ident.New(p.String()), Kind: KindPrimitive, Primitive: p})
	}
	return env
}

func (e *TypeEnvironment) mustAdd(jt *JodinType) {
	if jt.TypeID == 0 {
		jt.TypeID = NextTypeID()
	}
	e.types[jt.ID.String()] = jt
}

// Add registers a new named type, assigning it a fresh process-unique
// TypeID if it doesn't already carry one and failing if the identifier is
// already taken.
func (e *TypeEnvironment) Add(jt *JodinType) error {
	key := jt.ID.String()
	if _, exists := e.types[key]; exists {
		return jerr.ErrTypeAlreadyExists.New(key)
	}
	if jt.TypeID == 0 {
		jt.TypeID = NextTypeID()
	}
	e.types[key] = jt
	return nil
}

// Lookup finds a registered type by its identifier.
func (e *TypeEnvironment) Lookup(id ident.Identifier) (*JodinType, bool) {
	jt, ok := e.types[id.String()]
	return jt, ok
}

// LookupPrimitive finds the canonical JodinType for a primitive.
func (e *TypeEnvironment) LookupPrimitive(p types.Primitive) *JodinType {
	jt, ok := e.Lookup(ident.New(p.String()))
	if !ok {
		panic("primitive types are always registered at construction")
	}
	return jt
}

// Close invalidates every ResolvedType handle obtained from this
// environment: each one's Upgrade fails from here on.
func (e *TypeEnvironment) Close() {
	e.closed = true
	e.generation++
}

// ResolveType resolves an IntermediateType's base specifier against this
// environment, returning a handle that also carries the unresolved tails
// (pointer/array/function wrapping) to be applied on Upgrade.
func (e *TypeEnvironment) ResolveType(it types.IntermediateType) (ResolvedType, error) {
	return e.resolveType(it, make(map[string]bool))
}

func (e *TypeEnvironment) resolveType(it types.IntermediateType, visiting map[string]bool) (ResolvedType, error) {
	var base *JodinType
	switch it.Specifier.Kind {
	case types.SpecifierPrimitive:
		base = e.LookupPrimitive(it.Specifier.Primitive)
	case types.SpecifierId, types.SpecifierGeneric:
		found, ok := e.Lookup(it.Specifier.Id)
		if !ok {
			return ResolvedType{}, jerr.ErrUnknownType.New(it.Specifier.Id.String())
		}
		base = found
	}

	var fields []types.Field[ResolvedType]
	// A field's own fields are only expanded when reached directly (no
	// pointer/array/function indirection in between). Reaching a type
	// already on the current expansion path the same direct way means the
	// struct contains itself by value, which has no finite layout; through
	// a pointer/array tail it's the ordinary self-referential case and the
	// expansion just stops there.
	key := base.ID.String()
	if len(it.Tails) == 0 && visiting[key] {
		return ResolvedType{}, jerr.ErrCircularTypeDependency.New(key)
	}
	if len(it.Tails) == 0 {
		visiting[key] = true
		fields = make([]types.Field[ResolvedType], 0, len(base.Fields))
		for _, f := range base.Fields {
			resolvedField, err := e.resolveType(f.Jtype, visiting)
			if err != nil {
				return ResolvedType{}, err
			}
			fields = append(fields, types.Field[ResolvedType]{Name: f.Name, Visibility: f.Visibility, Jtype: resolvedField})
		}
		delete(visiting, key)
	}

	return ResolvedType{
		env:        e,
		generation: e.generation,
		base:       base,
		tails:      it.Tails,
		fields:     fields,
	}, nil
}
