package typeenv

import (
	"jodin.dev/jodinc/pkg/jerr"
	"jodin.dev/jodinc/pkg/types"
)

// ResolvedType is a weak handle into a TypeEnvironment's owned JodinType
// graph. It does not keep the environment alive; Upgrade must be called to
// get at the underlying type, and fails once the environment has been
// Closed. The "has my owner gone away" check works through a generation
// counter: Close bumps the environment's generation, and Upgrade compares
// its captured generation against the environment's current one.
type ResolvedType struct {
	env        *TypeEnvironment
	generation uint64
	base       *JodinType
	tails      []types.TypeTail
	fields     []types.Field[ResolvedType]
}

// Upgrade attempts to strongly resolve the handle, failing with
// ErrTypeEnvironmentUnavailable if the owning environment was closed since
// this handle was created.
func (r ResolvedType) Upgrade() (UpgradedResolvedType, error) {
	if r.env == nil || r.env.closed || r.env.generation != r.generation {
		return UpgradedResolvedType{}, jerr.ErrTypeEnvironmentUnavailable.New()
	}
	fields := make([]UpgradedResolvedType, 0, len(r.fields))
	for _, f := range r.fields {
		upgraded, err := f.Jtype.Upgrade()
		if err != nil {
			return UpgradedResolvedType{}, err
		}
		fields = append(fields, upgraded)
	}
	return UpgradedResolvedType{Base: r.base, Tails: r.tails, Fields: fields}, nil
}

// IntermediateType reconstructs the surface-level type string for this
// handle without requiring a successful Upgrade: it reads only the base
// type's identity fields and the handle's own tails, none of which Close
// changes.
func (r ResolvedType) IntermediateType() types.IntermediateType {
	spec := types.IdSpecifier(r.base.ID)
	if r.base.Kind == KindPrimitive {
		spec = types.PrimitiveSpecifier(r.base.Primitive)
	}
	return types.IntermediateType{Specifier: spec, Tails: r.tails}
}

// Dereference peels the handle's outermost pointer tail, producing the
// pointee's handle. A handle whose outermost tail isn't a pointer (or that
// has no tails at all) can't be dereferenced.
func (r ResolvedType) Dereference() (ResolvedType, error) {
	if len(r.tails) == 0 || r.tails[len(r.tails)-1].Kind != types.TailPointer {
		return ResolvedType{}, jerr.ErrTypeCantBeDereferenced.New(r.IntermediateType().String())
	}
	out := r
	out.tails = r.tails[:len(r.tails)-1]
	return out, nil
}

// UpgradedResolvedType is the strongly resolved form of a ResolvedType,
// valid for as long as the caller holds onto it: it embeds a *JodinType
// pointer directly, so an already-upgraded value keeps working even after
// the environment closes — Close only fences off *new* upgrades.
type UpgradedResolvedType struct {
	Base   *JodinType
	Tails  []types.TypeTail
	Fields []UpgradedResolvedType
}
