package formula

import (
	"math"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// RandomSource abstracts RAND()'s source of entropy so evaluation can be
// tested deterministically, matching the Clock/RandomGenerator seam the
// teacher repo uses for its own volatile built-ins.
type RandomSource interface {
	Float64() float64
}

// systemRandomSource is the default RandomSource, backed by math/rand/v2.
type systemRandomSource struct{}

func (systemRandomSource) Float64() float64 { return rand.Float64() }

// NewDefaultRegistry builds the baseline function registry (§4.7) plus
// the supplemented functions from the teacher's BuiltInFunctions that fit
// this engine's single-grid reference model (SPEC_FULL.md "Supplemented
// Features").
func NewDefaultRegistry() *Registry {
	return NewRegistryWithRandomSource(systemRandomSource{})
}

// NewRegistryWithRandomSource builds the registry with an injected
// RandomSource, for deterministic tests of RAND().
func NewRegistryWithRandomSource(rng RandomSource) *Registry {
	r := NewRegistry()

	r.Register("PI", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		return []Token{NumberToken(formatNumber(math.Pi), 0)}, nil
	}))

	r.Register("RAND", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		return []Token{NumberToken(formatNumber(rng.Float64()), 0)}, nil
	}))

	r.Register("SQRT", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		if len(args) != 1 {
			return nil, &EvalError{Message: "SQRT requires exactly one argument"}
		}
		n, err := requireNumber(args[0], grid, ctx, "SQRT")
		if err != nil {
			return nil, err
		}
		return []Token{NumberToken(formatNumber(math.Sqrt(n)), 0)}, nil
	}))

	r.Register("SUM", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		values, err := gatherNumbers(args, grid, ctx, "SUM")
		if err != nil {
			return nil, err
		}
		sum := lo.Reduce(values, func(acc float64, v float64, _ int) float64 { return acc + v }, 0.0)
		return []Token{NumberToken(formatNumber(sum), 0)}, nil
	}))

	r.Register("AVERAGE", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		values, err := gatherNumbers(args, grid, ctx, "AVERAGE")
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			return nil, &EvalError{Message: "AVERAGE has no numeric values to average"}
		}
		sum := lo.Reduce(values, func(acc float64, v float64, _ int) float64 { return acc + v }, 0.0)
		return []Token{NumberToken(formatNumber(sum/float64(len(values))), 0)}, nil
	}))

	r.Register("MEDIAN", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		values, err := gatherNumbers(args, grid, ctx, "MEDIAN")
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			return nil, &EvalError{Message: "MEDIAN has no numeric values"}
		}
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		mid := len(sorted) / 2
		var median float64
		if len(sorted)%2 == 0 {
			median = (sorted[mid-1] + sorted[mid]) / 2
		} else {
			median = sorted[mid]
		}
		return []Token{NumberToken(formatNumber(median), 0)}, nil
	}))

	r.Register("MAX", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		values, err := gatherNumbers(args, grid, ctx, "MAX")
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			return []Token{NumberToken("0", 0)}, nil
		}
		return []Token{NumberToken(formatNumber(lo.Max(values)), 0)}, nil
	}))

	r.Register("MIN", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		values, err := gatherNumbers(args, grid, ctx, "MIN")
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			return []Token{NumberToken("0", 0)}, nil
		}
		return []Token{NumberToken(formatNumber(lo.Min(values)), 0)}, nil
	}))

	r.Register("COUNT", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		values, err := gatherNumbers(args, grid, ctx, "COUNT")
		if err != nil {
			return nil, err
		}
		return []Token{NumberToken(strconv.Itoa(len(values)), 0)}, nil
	}))

	r.Register("COUNTA", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		count := 0
		for _, arg := range args {
			if arg.Kind == RefToken {
				for _, ref := range arg.Refs.Refs() {
					text := grid.GetCellText(ref)
					if strings.TrimSpace(text) != "" {
						count++
					}
				}
			} else {
				count++
			}
		}
		return []Token{NumberToken(strconv.Itoa(count), 0)}, nil
	}))

	r.Register("IF", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		if len(args) != 2 && len(args) != 3 {
			return nil, &EvalError{Message: "IF requires 2 or 3 arguments"}
		}
		if args[0].Kind != Boolean {
			return nil, &EvalError{Message: "IF requires a boolean first argument"}
		}
		if strings.EqualFold(args[0].Content, "TRUE") {
			return []Token{args[1]}, nil
		}
		if len(args) == 3 {
			return []Token{args[2]}, nil
		}
		return []Token{BooleanToken(false, 0)}, nil
	}))

	r.Register("AND", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		result := true
		for _, arg := range args {
			if arg.Kind != Boolean {
				return nil, &EvalError{Message: "AND requires boolean arguments"}
			}
			result = result && strings.EqualFold(arg.Content, "TRUE")
		}
		return []Token{BooleanToken(result, 0)}, nil
	}))

	r.Register("OR", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		result := false
		for _, arg := range args {
			if arg.Kind != Boolean {
				return nil, &EvalError{Message: "OR requires boolean arguments"}
			}
			result = result || strings.EqualFold(arg.Content, "TRUE")
		}
		return []Token{BooleanToken(result, 0)}, nil
	}))

	r.Register("NOT", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		if len(args) != 1 || args[0].Kind != Boolean {
			return nil, &EvalError{Message: "NOT requires a single boolean argument"}
		}
		return []Token{BooleanToken(!strings.EqualFold(args[0].Content, "TRUE"), 0)}, nil
	}))

	r.Register("CONCATENATE", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		parts, err := gatherText(args, grid, ctx, "CONCATENATE")
		if err != nil {
			return nil, err
		}
		return []Token{StringToken(strings.Join(parts, ""), 0)}, nil
	}))

	r.Register("UPPER", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		if len(args) != 1 {
			return nil, &EvalError{Message: "UPPER requires exactly one argument"}
		}
		text, err := requireText(args[0], grid, ctx, "UPPER")
		if err != nil {
			return nil, err
		}
		return []Token{StringToken(strings.ToUpper(text), 0)}, nil
	}))

	r.Register("LOWER", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		if len(args) != 1 {
			return nil, &EvalError{Message: "LOWER requires exactly one argument"}
		}
		text, err := requireText(args[0], grid, ctx, "LOWER")
		if err != nil {
			return nil, err
		}
		return []Token{StringToken(strings.ToLower(text), 0)}, nil
	}))

	r.Register("TRIM", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		if len(args) != 1 {
			return nil, &EvalError{Message: "TRIM requires exactly one argument"}
		}
		text, err := requireText(args[0], grid, ctx, "TRIM")
		if err != nil {
			return nil, err
		}
		return []Token{StringToken(strings.TrimSpace(text), 0)}, nil
	}))

	r.Register("LEN", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		if len(args) != 1 {
			return nil, &EvalError{Message: "LEN requires exactly one argument"}
		}
		text, err := requireText(args[0], grid, ctx, "LEN")
		if err != nil {
			return nil, err
		}
		return []Token{NumberToken(strconv.Itoa(len([]rune(text))), 0)}, nil
	}))

	r.Register("ABS", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		n, err := requireNumber(singleArg(args), grid, ctx, "ABS")
		if err != nil {
			return nil, err
		}
		return []Token{NumberToken(formatNumber(math.Abs(n)), 0)}, nil
	}))

	r.Register("ROUND", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		if len(args) != 2 {
			return nil, &EvalError{Message: "ROUND requires exactly two arguments"}
		}
		n, err := requireNumber(args[0], grid, ctx, "ROUND")
		if err != nil {
			return nil, err
		}
		digits, err := requireNumber(args[1], grid, ctx, "ROUND")
		if err != nil {
			return nil, err
		}
		factor := math.Pow(10, digits)
		return []Token{NumberToken(formatNumber(math.Round(n*factor) / factor), 0)}, nil
	}))

	r.Register("MOD", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		if len(args) != 2 {
			return nil, &EvalError{Message: "MOD requires exactly two arguments"}
		}
		a, err := requireNumber(args[0], grid, ctx, "MOD")
		if err != nil {
			return nil, err
		}
		b, err := requireNumber(args[1], grid, ctx, "MOD")
		if err != nil {
			return nil, err
		}
		if b == 0 {
			return nil, &EvalError{Message: "MOD division by zero"}
		}
		return []Token{NumberToken(formatNumber(math.Mod(a, b)), 0)}, nil
	}))

	r.Register("POWER", FuncFn(func(args []Token, grid Grid, ctx *EvalContext) ([]Token, error) {
		if len(args) != 2 {
			return nil, &EvalError{Message: "POWER requires exactly two arguments"}
		}
		a, err := requireNumber(args[0], grid, ctx, "POWER")
		if err != nil {
			return nil, err
		}
		b, err := requireNumber(args[1], grid, ctx, "POWER")
		if err != nil {
			return nil, err
		}
		return []Token{NumberToken(formatNumber(math.Pow(a, b)), 0)}, nil
	}))

	return r
}

func singleArg(args []Token) Token {
	if len(args) == 0 {
		return Token{}
	}
	return args[0]
}

// requireNumber coerces a single-value argument to float64, following
// §4.5's numeric coercion rules, failing for arguments that are neither
// numeric nor a numeric reference (§4.7: "non-numeric, non-reference
// arguments cause the function to fail").
func requireNumber(tok Token, grid Grid, ctx *EvalContext, fnName string) (float64, error) {
	switch tok.Kind {
	case Number:
		return strconv.ParseFloat(tok.Content, 64)
	case Boolean:
		if strings.EqualFold(tok.Content, "TRUE") {
			return 1, nil
		}
		return 0, nil
	case String:
		if f, err := strconv.ParseFloat(tok.Content, 64); err == nil {
			return f, nil
		}
		return 0, &EvalError{Message: fnName + " requires a numeric argument"}
	case RefToken:
		single, ok := tok.Refs.Single()
		if !ok {
			return 0, &EvalError{Message: fnName + " requires a single-cell reference"}
		}
		deref, err := grid.AsToken(ctx, single)
		if err != nil {
			return 0, err
		}
		return requireNumber(deref, grid, ctx, fnName)
	default:
		return 0, &EvalError{Message: fnName + " requires a numeric argument"}
	}
}

// gatherNumbers implements the argument-gathering contract shared by
// SUM/AVERAGE/MEDIAN/MAX/MIN/COUNT (§4.7): reference arguments expand and
// silently drop non-numeric cells; non-reference, non-numeric arguments
// fail the whole call.
func gatherNumbers(args []Token, grid Grid, ctx *EvalContext, fnName string) ([]float64, error) {
	var out []float64
	for _, arg := range args {
		if arg.Kind == RefToken {
			for _, ref := range arg.Refs.Refs() {
				deref, err := grid.AsToken(ctx, ref)
				if err != nil {
					return nil, err
				}
				if v, ok := numericValue(deref); ok {
					out = append(out, v)
				}
			}
			continue
		}
		v, ok := numericValue(arg)
		if !ok {
			return nil, &EvalError{Message: fnName + " requires numeric arguments"}
		}
		out = append(out, v)
	}
	return out, nil
}

// requireText coerces a single-value argument to its display text,
// dereferencing a single-cell reference the same way requireNumber does
// for numbers, so text functions see the cell's actual content instead
// of a Reference token's empty Content field (formula/token.go's
// ReferenceToken never populates Content).
func requireText(tok Token, grid Grid, ctx *EvalContext, fnName string) (string, error) {
	if tok.Kind == RefToken {
		single, ok := tok.Refs.Single()
		if !ok {
			return "", &EvalError{Message: fnName + " requires a single-cell reference"}
		}
		deref, err := grid.AsToken(ctx, single)
		if err != nil {
			return "", err
		}
		return requireText(deref, grid, ctx, fnName)
	}
	return tok.Content, nil
}

// gatherText implements CONCATENATE's argument-gathering: reference
// arguments expand over their range and contribute each cell's
// dereferenced text, in address order; non-reference arguments
// contribute their literal text directly.
func gatherText(args []Token, grid Grid, ctx *EvalContext, fnName string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if arg.Kind == RefToken {
			for _, ref := range arg.Refs.Refs() {
				deref, err := grid.AsToken(ctx, ref)
				if err != nil {
					return nil, err
				}
				text, err := requireText(deref, grid, ctx, fnName)
				if err != nil {
					return nil, err
				}
				out = append(out, text)
			}
			continue
		}
		out = append(out, arg.Content)
	}
	return out, nil
}

func numericValue(tok Token) (float64, bool) {
	switch tok.Kind {
	case Number:
		f, err := strconv.ParseFloat(tok.Content, 64)
		return f, err == nil
	case Boolean:
		if strings.EqualFold(tok.Content, "TRUE") {
			return 1, true
		}
		return 0, true
	case String:
		f, err := strconv.ParseFloat(tok.Content, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
