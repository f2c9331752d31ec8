package parsing

import (
	"regexp"
	"strings"

	"jodin.dev/jodinc/pkg/ident"
	"jodin.dev/jodinc/pkg/jerr"
	"jodin.dev/jodinc/pkg/types"
)

// suffixTail matches exactly one trailing pointer or array suffix anchored
// to the end of the remaining text: "*" or "[...]" (whose content must
// then parse as a constant size).
var suffixTail = regexp.MustCompile(`\*$|\[[^\[\]]*\]$`)

// parseSourceType parses the surface, C-like suffix notation pType
// captures (base name, then trailing "*"/"[N]" read left to right, nearest
// the base binding tightest) into the prefix-tails canonical form
// pkg/types.IntermediateType works with. This deliberately doesn't reuse
// types.ParseIntermediateType: that parser's grammar is prefix-first
// ("*T", "[T: N]") to match IntermediateType.String's own rendering, while
// the minimal front end's declaration syntax ("let x: int[10];") reads
// suffixes after the base name, so the two need different peeling logic
// even though they build the same result type.
func parseSourceType(raw string) (types.IntermediateType, error) {
	s := strings.TrimSpace(raw)
	isConst := false
	if strings.HasPrefix(s, "const ") {
		isConst = true
		s = strings.TrimSpace(s[len("const "):])
	}

	var tails []types.TypeTail
	for {
		loc := suffixTail.FindStringIndex(s)
		if loc == nil || loc[1] != len(s) {
			break
		}
		tail := s[loc[0]:loc[1]]
		s = s[:loc[0]]

		if tail == "*" {
			tails = append(tails, types.Pointer())
			continue
		}
		inner := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(tail, "["), "]"))
		if inner == "" {
			tails = append(tails, types.Array(nil))
			continue
		}
		size, err := types.ParseSize(inner)
		if err != nil {
			// An array size must be spelled as a literal; anything else
			// (a name, an expression) isn't a compile-time constant here.
			return types.IntermediateType{}, jerr.ErrNotConstantExpression.New(inner)
		}
		tails = append(tails, types.Array(&size))
	}
	// Suffixes were peeled right-to-left (outermost first); the leftmost
	// suffix binds closest to the base name and must be applied first.
	for i, j := 0, len(tails)-1; i < j; i, j = i+1, j-1 {
		tails[i], tails[j] = tails[j], tails[i]
	}

	spec, err := parseBaseSpecifier(s)
	if err != nil {
		return types.IntermediateType{}, err
	}
	result := types.FromSpecifier(spec)
	result.IsConst = isConst
	for _, t := range tails {
		result = result.WithTail(t)
	}
	return result, nil
}

func parseBaseSpecifier(s string) (types.TypeSpecifier, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.TypeSpecifier{}, jerr.ErrParse.New("empty type")
	}
	if p, ok := primitiveKeyword(s); ok {
		return types.PrimitiveSpecifier(p), nil
	}
	if idx := strings.IndexByte(s, '<'); idx >= 0 && strings.HasSuffix(s, ">") {
		name := s[:idx]
		inner := s[idx+1 : len(s)-1]
		var generics []types.IntermediateType
		for _, part := range strings.Split(inner, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			g, err := parseSourceType(part)
			if err != nil {
				return types.TypeSpecifier{}, err
			}
			generics = append(generics, g)
		}
		return types.GenericSpecifier(ident.FromString(name), generics...), nil
	}
	return types.IdSpecifier(ident.FromString(s)), nil
}

// primitiveKeyword recognizes the single-word primitive keywords pType's
// token grammar can actually lex as a bare identifier. The "unsigned ..."
// primitives have two-word canonical names (see Primitive.String) that no
// surface declaration can spell as one TYPE token, so source text can't
// name them directly; they remain reachable through the types API for code
// built by other front ends or constructed directly.
func primitiveKeyword(s string) (types.Primitive, bool) {
	switch s {
	case "void":
		return types.Void, true
	case "boolean":
		return types.Boolean, true
	case "char":
		return types.Char, true
	case "byte":
		return types.Byte, true
	case "short":
		return types.Short, true
	case "int":
		return types.Int, true
	case "long":
		return types.Long, true
	case "float":
		return types.Float, true
	case "double":
		return types.Double, true
	default:
		return 0, false
	}
}
