package formula

// Grid is the narrow capability the engine requires of its host: read a
// cell's raw text and coerce it to a Token. Modeling it as an interface
// (rather than a concrete grid handle) keeps the engine testable against
// fake grids (§9 Design Notes: "Grid coupling").
type Grid interface {
	// GetCellText returns the raw text stored at addr, or "" if addr is
	// out of range or empty.
	GetCellText(addr Reference) string

	// AsToken coerces the cell at addr to a Token (§4.6), evaluating it
	// first if its raw text is a formula. ctx carries the calling
	// evaluation's cycle guard; implementations that recurse back into the
	// engine to resolve a formula cell must thread ctx through via
	// EvalContext.Enter so diamond-shaped references don't false-positive
	// as cycles.
	AsToken(ctx *EvalContext, addr Reference) (Token, error)
}
