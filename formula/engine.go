package formula

import "strings"

// Evaluate runs the full lex → reorder → evaluate pipeline over a formula
// body (the leading '=' already stripped by the caller), per §6's
// `evaluate(text, grid)`. Every internal failure (LexError, ReorderError,
// EvalError, CycleError) is wrapped in a single *EngineError so callers
// never need to type-switch on the originating stage (§7). A fresh
// EvalContext seeds cycle detection for this top-level call; use
// EvaluateWithContext instead when recursing back into the engine from a
// Grid.AsToken implementation, so the cycle guard survives the recursion.
func Evaluate(text string, grid Grid, registry *Registry) (Token, error) {
	return EvaluateWithContext(text, grid, registry, NewEvalContext())
}

// EvaluateWithContext is Evaluate with an explicit, shared EvalContext. A
// Grid implementation whose AsToken dereferences a formula cell must call
// this (not Evaluate) with the ctx it was given, so the visited-set spans
// the whole recursive chain (§9 Open Question: cycle handling).
func EvaluateWithContext(text string, grid Grid, registry *Registry, ctx *EvalContext) (Token, error) {
	lexer := NewLexer(text, registry)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return Token{}, wrapEngineError(text, err)
	}

	postfix := Reorder(tokens)
	if len(postfix) == 0 && len(tokens) != 0 {
		return Token{}, wrapEngineError(text, &ReorderError{Message: "unbalanced parentheses", Source: text})
	}

	evaluator := NewEvaluator(grid, registry, ctx, text)
	result, err := evaluator.Run(postfix)
	if err != nil {
		return Token{}, wrapEngineError(text, err)
	}
	return result, nil
}

// EvaluateCellText implements §6's `evaluate_cell_text(text, grid)`:
// formulas delegate to Evaluate; everything else is classified as a
// literal per §4.6's cell-to-token coercion.
func EvaluateCellText(text string, grid Grid, registry *Registry) (Token, error) {
	return EvaluateCellTextWithContext(text, grid, registry, NewEvalContext())
}

// EvaluateCellTextWithContext is EvaluateCellText with an explicit, shared
// EvalContext; Grid.AsToken implementations call this with the ctx they
// were given.
func EvaluateCellTextWithContext(text string, grid Grid, registry *Registry, ctx *EvalContext) (Token, error) {
	if strings.HasPrefix(text, "=") {
		return EvaluateWithContext(text[1:], grid, registry, ctx)
	}
	return classifyLiteral(text), nil
}

// classifyLiteral implements §4.6's non-formula branch: an all-digit (and
// '.') run is Number; TRUE/FALSE (uppercased on both sides, per the §9
// Open Question fix to the source's comparison typo) is Boolean; anything
// else is String.
func classifyLiteral(text string) Token {
	if text != "" && isAllDigitsOrDot(text) {
		return NumberToken(text, 0)
	}
	upper := strings.ToUpper(text)
	if upper == "TRUE" || upper == "FALSE" {
		return BooleanToken(upper == "TRUE", 0)
	}
	return StringToken(text, 0)
}

func isAllDigitsOrDot(text string) bool {
	for _, c := range text {
		if !(c >= '0' && c <= '9') && c != '.' {
			return false
		}
	}
	return true
}

// ExtractReferences implements §6's `extract_references(text)`: a lex-only
// pass (no reordering or evaluation) collecting every Reference token's
// set members, for the editor's touched-cell highlight.
func ExtractReferences(text string, registry *Registry) (ReferenceSet, error) {
	body := strings.TrimPrefix(text, "=")
	tokens, err := NewLexer(body, registry).Tokenize()
	if err != nil {
		return ReferenceSet{}, wrapEngineError(text, err)
	}
	var refs []Reference
	for _, tok := range tokens {
		if tok.Kind == RefToken {
			refs = append(refs, tok.Refs.Refs()...)
		}
	}
	return NewReferenceSet(refs...), nil
}

// BalanceParens implements §6's `balance_parens(text)`: appends the
// minimum number of ')' needed so every '(' is matched, never touching the
// existing characters. Idempotent by construction: a second pass finds
// depth zero and appends nothing (Testable Property 5).
func BalanceParens(text string) string {
	depth := 0
	for _, c := range text {
		switch c {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
	}
	if depth == 0 {
		return text
	}
	return text + strings.Repeat(")", depth)
}

// ListFunctionNames implements §6's `list_function_names()`.
func ListFunctionNames(registry *Registry) []string {
	return registry.Names()
}
