// Package jerr is the compiler's single error taxonomy. Every error kind
// the pipeline can raise is a package-level *errors.Kind; constructing one
// via Kind.New captures a stack trace at the call site, matching the
// contract that every compiler error carries an approximate backtrace.
package jerr

import (
	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// C1 — identifier resolution
	ErrIdentifierDoesNotExist  = errors.NewKind("identifier %q does not exist in this context")
	ErrAmbiguousIdentifier     = errors.NewKind("identifier %q is ambiguous: found %v")
	ErrIdentifierAlreadyExists = errors.NewKind("identifier %q is already registered")

	// C3 — registry / visibility
	ErrVisibilityViolation = errors.NewKind("identifier %q is %s and not visible from %q")

	// C4 — assembly block label normalization
	ErrNonlocalLabelNotFound = errors.NewKind("couldn't find a label in parents named %q")
	ErrDuplicateLabel        = errors.NewKind("label %q is already defined in this block")

	// C5 — two pass identity resolution
	ErrImportNotFound = errors.NewKind("import %q could not be resolved")
	ErrRedeclaration  = errors.NewKind("%q is declared more than once in the same scope")

	// C6 — type environment
	ErrTypeEnvironmentUnavailable = errors.NewKind("type environment for this resolved type has been closed")
	ErrTypeAlreadyExists          = errors.NewKind("type %q is already registered in this environment")
	ErrUnknownType                = errors.NewKind("type %q is not registered in this environment")
	ErrTypeCantBeDereferenced     = errors.NewKind("type %q has no pointer tail to dereference")
	ErrCircularTypeDependency     = errors.NewKind("type %q contains itself by value")

	// C2/ast — tags
	ErrTagCastError     = errors.NewKind("tag %q on node could not be cast to %s")
	ErrTagNotPresent    = errors.NewKind("node has no tag of kind %s")
	ErrMaxNumOfTag      = errors.NewKind("node already carries the maximum number of %q tags")
	ErrStaleNodeAddress = errors.NewKind("node address checksum mismatch: the tree was reshaped since the address was taken")

	// C8 — module splitting / translation units
	ErrInvalidCompilationUnit = errors.NewKind("could not parse %q as a translation unit")
	ErrInvalidVisibility      = errors.NewKind("could not parse %q as a visibility")

	// C9 — incremental build graph
	ErrCyclicalDependency = errors.NewKind("cyclical file dependency detected at %q")
	ErrInvalidObjectPath  = errors.NewKind("object path entry %q does not exist")
	ErrBuildIO            = errors.NewKind("build I/O error for %q")

	// C7 — code generation
	ErrUnsupportedNode     = errors.NewKind("%s node is not supported in this position")
	ErrUninitializedGlobal = errors.NewKind("non-extern value %q must be initialized")

	// pkg/parsing — front end
	ErrParse                 = errors.NewKind("parse error: %s")
	ErrInvalidEscapeSequence = errors.NewKind("invalid escape sequence %q in literal")
	ErrIncorrectLiteralType  = errors.NewKind("literal %q does not fit its declared kind")
	ErrNotConstantExpression = errors.NewKind("%q is not a compile-time constant")
)

// Recoverable reports whether err is one of the kinds the pipeline is
// expected to recover from locally rather than abort the whole build on —
// a failed tag cast, or a missing tag that a caller is allowed to probe for.
func Recoverable(err error) bool {
	return ErrTagCastError.Is(err) || ErrTagNotPresent.Is(err)
}
