package types

import (
	"strings"

	"jodin.dev/jodinc/pkg/ident"
	"jodin.dev/jodinc/pkg/jerr"
)

// ParseIntermediateType parses the grammar String renders: an optional
// leading "const ", a base specifier (a primitive keyword, a dotted
// identifier path, or a generic "Id<T, U>"), wrapped by zero or more of
// "*inner" (pointer), "[inner]"/"[inner: N]" (array), or
// "fn(params) -> inner" (function) — read outside-in, so each detected
// wrap recurses on its inner text before the tail is appended, naturally
// rebuilding Tails in application order.
func ParseIntermediateType(s string) (IntermediateType, error) {
	return parseOne(strings.TrimSpace(s))
}

func parseOne(s string) (IntermediateType, error) {
	isConst := false
	if strings.HasPrefix(s, "const ") {
		isConst = true
		s = strings.TrimSpace(s[len("const "):])
	}

	result, err := parseWrapped(s)
	if err != nil {
		return IntermediateType{}, err
	}
	result.IsConst = isConst
	return result, nil
}

func parseWrapped(s string) (IntermediateType, error) {
	switch {
	case strings.HasPrefix(s, "fn("):
		return parseFunction(s)
	case strings.HasPrefix(s, "*"):
		inner, err := parseOne(s[1:])
		if err != nil {
			return IntermediateType{}, err
		}
		return inner.WithPointer(), nil
	case strings.HasPrefix(s, "["):
		return parseArray(s)
	default:
		spec, err := parseSpecifier(s)
		if err != nil {
			return IntermediateType{}, err
		}
		return FromSpecifier(spec), nil
	}
}

func parseFunction(s string) (IntermediateType, error) {
	open := len("fn")
	closeIdx, err := findMatching(s, open, '(', ')')
	if err != nil {
		return IntermediateType{}, jerr.ErrInvalidCompilationUnit.New(s)
	}
	paramsStr := s[open+1 : closeIdx]
	rest := strings.TrimSpace(s[closeIdx+1:])
	rest = strings.TrimPrefix(rest, "->")
	rest = strings.TrimSpace(rest)

	var params []IntermediateType
	for _, p := range splitTopLevel(paramsStr, ',') {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		pt, err := parseOne(p)
		if err != nil {
			return IntermediateType{}, err
		}
		params = append(params, pt)
	}

	ret, err := parseOne(rest)
	if err != nil {
		return IntermediateType{}, err
	}
	return ret.WithFunctionParams(params...), nil
}

func parseArray(s string) (IntermediateType, error) {
	closeIdx, err := findMatching(s, 0, '[', ']')
	if err != nil {
		return IntermediateType{}, jerr.ErrInvalidCompilationUnit.New(s)
	}
	content := s[1:closeIdx]

	elemStr, sizeStr := content, ""
	if idx := lastTopLevelColon(content); idx >= 0 {
		elemStr, sizeStr = content[:idx], content[idx+1:]
	}

	elem, err := parseOne(strings.TrimSpace(elemStr))
	if err != nil {
		return IntermediateType{}, err
	}
	if sizeStr == "" {
		return elem.WithAbstractArray(), nil
	}
	size, err := ParseSize(strings.TrimSpace(sizeStr))
	if err != nil {
		return IntermediateType{}, err
	}
	return elem.WithArraySize(size), nil
}

func parseSpecifier(s string) (TypeSpecifier, error) {
	s = strings.TrimSpace(s)
	if p, ok := parsePrimitive(s); ok {
		return PrimitiveSpecifier(p), nil
	}

	if idx := strings.IndexByte(s, '<'); idx >= 0 && strings.HasSuffix(s, ">") {
		name := s[:idx]
		inner := s[idx+1 : len(s)-1]
		var generics []IntermediateType
		for _, g := range splitTopLevel(inner, ',') {
			g = strings.TrimSpace(g)
			if g == "" {
				continue
			}
			gt, err := parseOne(g)
			if err != nil {
				return TypeSpecifier{}, err
			}
			generics = append(generics, gt)
		}
		return GenericSpecifier(ident.FromString(name), generics...), nil
	}

	if s == "" {
		return TypeSpecifier{}, jerr.ErrInvalidCompilationUnit.New(s)
	}
	return IdSpecifier(ident.FromString(s)), nil
}

func parsePrimitive(s string) (Primitive, bool) {
	switch s {
	case "void":
		return Void, true
	case "boolean":
		return Boolean, true
	case "char":
		return Char, true
	case "byte":
		return Byte, true
	case "short":
		return Short, true
	case "int":
		return Int, true
	case "long":
		return Long, true
	case "unsigned byte":
		return UnsignedByte, true
	case "unsigned short":
		return UnsignedShort, true
	case "unsigned int":
		return UnsignedInt, true
	case "unsigned long":
		return UnsignedLong, true
	case "float":
		return Float, true
	case "double":
		return Double, true
	case "va_list":
		return VaList, true
	default:
		return 0, false
	}
}

// findMatching returns the index of the close rune matching the open rune
// expected at position openIdx in s (i.e. s[openIdx] must equal open),
// accounting for nesting.
func findMatching(s string, openIdx int, open, close rune) (int, error) {
	depth := 0
	for i, r := range s {
		if i < openIdx {
			continue
		}
		switch r {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return -1, jerr.ErrInvalidCompilationUnit.New(s)
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside
// (),[],<> pairs — used to separate function parameters and generic
// arguments, which may themselves contain any of those.
func splitTopLevel(s string, sep rune) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(', '[', '<':
			depth++
		case ')', ']', '>':
			if r == '>' && i > 0 && s[i-1] == '-' {
				// the arrow of "fn(...) -> T", not a closing bracket
				continue
			}
			depth--
		case sep:
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

// lastTopLevelColon returns the index of the last top-level ':' in s, or
// -1 if none — used to split an array tail's "elem: size" content.
func lastTopLevelColon(s string) int {
	depth := 0
	last := -1
	for i, r := range s {
		switch r {
		case '(', '[', '<':
			depth++
		case ')', ']', '>':
			if r == '>' && i > 0 && s[i-1] == '-' {
				// the arrow of "fn(...) -> T", not a closing bracket
				continue
			}
			depth--
		case ':':
			if depth == 0 {
				last = i
			}
		}
	}
	return last
}
