package formula

import "strings"

// operator alphabet recognised by the lexer, longest-first so maximal
// munch can try two-character operators before falling back to one.
var twoCharOperators = map[string]bool{
	">=": true, "<=": true, "<>": true,
}

func isOperatorChar(c byte) bool {
	switch c {
	case '-', '%', '^', '*', '/', '+', '&', '=', '<', '>', '@', '#', ':', ',', ' ':
		return true
	default:
		return false
	}
}

// FunctionNamer reports whether a name is a registered function, so the
// lexer can distinguish `SUM(` (a Function token) from `SUM1` (a
// Reference) or a bare identifier.
type FunctionNamer interface {
	Has(name string) bool
}

// Lexer converts a formula string (the leading '=' already stripped) into
// an ordered Token stream, disambiguating overloaded lexemes and
// annotating functions with argument counts.
type Lexer struct {
	src    string
	names  FunctionNamer
	closer map[int]bool // byte offsets of ')' that close a function call
}

// NewLexer creates a Lexer for src, resolving function names against names.
func NewLexer(src string, names FunctionNamer) *Lexer {
	return &Lexer{src: src, names: names, closer: make(map[int]bool)}
}

// Tokenize runs the full lexing pipeline: raw scan, dual-meaning operator
// resolution, and function arity assignment.
func (l *Lexer) Tokenize() ([]Token, error) {
	raw, err := l.scan()
	if err != nil {
		return nil, err
	}
	tokens, err := l.disambiguate(raw)
	if err != nil {
		return nil, err
	}
	l.assignArity(tokens)
	return tokens, nil
}

// scan performs the raw, one-pass tokenization described in §4.2 steps 1-6.
func (l *Lexer) scan() ([]Token, error) {
	var out []Token
	i := 0
	n := len(l.src)

	for i < n {
		c := l.src[i]

		switch {
		case c >= '0' && c <= '9':
			start := i
			for i < n && (l.src[i] >= '0' && l.src[i] <= '9' || l.src[i] == '.') {
				i++
			}
			out = append(out, NumberToken(l.src[start:i], start))

		case isOperatorChar(c):
			start := i
			if i+1 < n && twoCharOperators[l.src[i:i+2]] {
				out = append(out, Token{Kind: Operator, Content: l.src[i : i+2], Pos: start})
				i += 2
			} else {
				out = append(out, Token{Kind: Operator, Content: string(c), Pos: start})
				i++
			}

		case isLetter(c):
			start := i
			for i < n && isAlphaNumeric(l.src[i]) {
				i++
			}
			word := l.src[start:i]
			upper := strings.ToUpper(word)

			switch {
			case upper == "TRUE" || upper == "FALSE":
				out = append(out, BooleanToken(upper == "TRUE", start))
			case l.names != nil && l.names.Has(upper) && i < n && l.src[i] == '(':
				closeIdx := findMatchingParen(l.src, i)
				if closeIdx >= 0 {
					l.closer[closeIdx] = true
				}
				out = append(out, Token{Kind: Function, Content: upper, Pos: start})
				i++ // consume the '(' opening the call; it is not a separate LeftParen token
			default:
				if l.names != nil && l.names.Has(upper) {
					return nil, &LexError{Message: "function name not followed by '('", Pos: start, Source: l.src}
				}
				ref, ok := ParseReference(word)
				if !ok {
					return nil, &LexError{Message: "not a valid reference or function: " + word, Pos: start, Source: l.src}
				}
				out = append(out, ReferenceToken(NewReferenceSet(ref), start))
			}

		case c == '"':
			start := i
			i++
			var sb strings.Builder
			for i < n && l.src[i] != '"' {
				sb.WriteByte(l.src[i])
				i++
			}
			if i < n {
				i++ // consume closing quote
			}
			out = append(out, StringToken(sb.String(), start))

		case c == '(':
			out = append(out, Token{Kind: LeftParen, Pos: i})
			i++

		case c == ')':
			if l.closer[i] {
				out = append(out, Token{Kind: FuncClose, Pos: i})
			} else {
				out = append(out, Token{Kind: RightParen, Pos: i})
			}
			i++

		default:
			return nil, &LexError{Message: "unexpected character: " + string(c), Pos: i, Source: l.src}
		}
	}

	return out, nil
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isAlphaNumeric(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9')
}

// findMatchingParen returns the byte offset of the ')' that closes the '('
// at openIdx, or -1 if the input runs out first (tolerated per §4.2; an
// unterminated function call is caught later as an unbalanced parens
// ReorderError).
func findMatchingParen(src string, openIdx int) int {
	depth := 0
	for i := openIdx; i < len(src); i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// disambiguate runs the first of §4.2's two disambiguation sweeps:
// dual-meaning operator resolution for '-', ',', and ' '. The arity sweep
// is assignArity.
func (l *Lexer) disambiguate(in []Token) ([]Token, error) {
	out := make([]Token, len(in))
	copy(out, in)

	var drop []int
	for idx, tok := range out {
		if tok.Kind != Operator {
			continue
		}
		switch tok.Content {
		case "-":
			if !validLeftOperandForBinaryMinus(out, idx) {
				out[idx].Content = "-1"
			}
		case ",":
			if idx == 0 {
				return nil, &LexError{Message: "unexpected ',' at start of formula", Pos: tok.Pos, Source: l.src}
			}
			if !(out[idx-1].Kind == RefToken && idx+1 < len(out) && out[idx+1].Kind == RefToken) {
				out[idx].Kind = FuncArgSep
			}
		case " ":
			if idx == 0 {
				drop = append(drop, idx)
				continue
			}
			if !(out[idx-1].Kind == RefToken && idx+1 < len(out) && out[idx+1].Kind == RefToken) {
				drop = append(drop, idx)
			}
		}
	}

	if len(drop) == 0 {
		return out, nil
	}
	dropSet := make(map[int]bool, len(drop))
	for _, idx := range drop {
		dropSet[idx] = true
	}
	filtered := make([]Token, 0, len(out)-len(drop))
	for idx, tok := range out {
		if dropSet[idx] {
			continue
		}
		filtered = append(filtered, tok)
	}
	return filtered, nil
}

// validLeftOperandForBinaryMinus implements the corrected left-operand
// rule from §9's Open Question: Number, Reference, RightParen, FuncClose,
// and postfix '%' are all valid left operands for a binary '-'; anything
// else (including position 0) means this '-' is unary.
func validLeftOperandForBinaryMinus(tokens []Token, idx int) bool {
	if idx == 0 {
		return false
	}
	prev := tokens[idx-1]
	switch prev.Kind {
	case Number, RefToken, RightParen, FuncClose:
		return true
	case Operator:
		return prev.Content == "%"
	default:
		return false
	}
}

// assignArity implements §4.2's function-arity-assignment sweep: for each
// Function token, walk forward at depth 1 counting FuncArgSep tokens at
// that depth; arity is commas+1, or 0 if the function's very next token is
// its FuncClose.
func (l *Lexer) assignArity(tokens []Token) {
	for idx := range tokens {
		if tokens[idx].Kind != Function {
			continue
		}

		depth := 0
		args := 1
		for j := idx; j < len(tokens); j++ {
			switch tokens[j].Kind {
			case Function:
				depth++
			case FuncClose:
				depth--
			}

			if depth == 0 && j == idx+1 {
				// the function opened and immediately closed
				args = 0
				break
			}
			if depth == 0 {
				break
			}
			if depth == 1 && tokens[j].Kind == FuncArgSep {
				args++
			}
		}
		tokens[idx].Arity = args
	}
}
