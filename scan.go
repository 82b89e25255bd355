package gosolve

import (
	"regexp"
	"strconv"
)

// ============================================================
// Tokens
// ============================================================

// TokenKind identifies a lexical token of canonical text.
type TokenKind int

const (
	TokEnd TokenKind = iota
	TokNumber
	TokIdent
	TokFunc
	TokOp
	TokLParen
	TokRParen
	TokEquals
)

type Token struct {
	Kind   TokenKind
	Text   string
	Offset int
}

// ============================================================
// Terms
// ============================================================

// TermClass classifies an identifier run.
type TermClass int

const (
	TermLiteral TermClass = iota
	TermBound
	TermConstant
	TermFunction
	TermUnknown
)

func (c TermClass) String() string {
	switch c {
	case TermLiteral:
		return "literal"
	case TermBound:
		return "bound"
	case TermConstant:
		return "constant"
	case TermFunction:
		return "function"
	case TermUnknown:
		return "unknown"
	}
	return "invalid"
}

// Term is a maximal run of non-delimiter characters.
type Term struct {
	Text   string
	Offset int
	Class  TermClass
}

// Scan is the result of one forward pass over canonical text.
type Scan struct {
	Text   string
	Tokens []Token
	Terms  []Term
	// Equals holds the offsets of every "=".
	Equals []int
}

var (
	literalPattern  = regexp.MustCompile(`^(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:e[+-]?[0-9]+)?$`)
	mantissaPattern = regexp.MustCompile(`^(?:[0-9]+\.?[0-9]*|\.[0-9]+)e$`)
)

func isDelimiter(c byte) bool {
	return c == Sentinel || c == '(' || c == ')' || c == '=' || isOperator(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// ScanText splits canonical text into delimiters and identifier runs,
// classifying each run against bindings. It does no validation.
func ScanText(text string, bindings map[string]float64) *Scan {
	sc := &Scan{Text: text}
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		run := text[start:end]
		class := classifyTerm(run, end, text, bindings)
		sc.Terms = append(sc.Terms, Term{Text: run, Offset: start, Class: class})
		kind := TokIdent
		switch class {
		case TermLiteral:
			kind = TokNumber
		case TermFunction:
			kind = TokFunc
		}
		sc.Tokens = append(sc.Tokens, Token{Kind: kind, Text: run, Offset: start})
		start = -1
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if !isDelimiter(c) {
			if start < 0 {
				start = i
			}
			continue
		}
		// A signed exponent belongs to the literal, as in 1.5e-3.
		if (c == '+' || c == '-') && start >= 0 && mantissaPattern.MatchString(text[start:i]) &&
			i+1 < len(text) && isDigit(text[i+1]) {
			continue
		}
		flush(i)
		switch c {
		case '(':
			sc.Tokens = append(sc.Tokens, Token{Kind: TokLParen, Text: "(", Offset: i})
		case ')':
			sc.Tokens = append(sc.Tokens, Token{Kind: TokRParen, Text: ")", Offset: i})
		case '=':
			sc.Equals = append(sc.Equals, i)
			sc.Tokens = append(sc.Tokens, Token{Kind: TokEquals, Text: "=", Offset: i})
		case Sentinel:
			sc.Tokens = append(sc.Tokens, Token{Kind: TokEnd, Offset: i})
			return sc
		default:
			sc.Tokens = append(sc.Tokens, Token{Kind: TokOp, Text: string(c), Offset: i})
		}
	}
	flush(len(text))
	sc.Tokens = append(sc.Tokens, Token{Kind: TokEnd, Offset: len(text)})
	return sc
}

func classifyTerm(run string, end int, text string, bindings map[string]float64) TermClass {
	if literalPattern.MatchString(run) {
		return TermLiteral
	}
	followedByBracket := end < len(text) && text[end] == '('
	if followedByBracket && lookupFunc(run) {
		return TermFunction
	}
	if _, ok := constants[run]; ok {
		return TermConstant
	}
	if lookupFunc(run) {
		// A function name without its argument; validation rejects it.
		return TermFunction
	}
	if _, ok := bindings[run]; ok {
		return TermBound
	}
	return TermUnknown
}

// parseLiteral converts a literal run; the pattern above guarantees success
// except for overflow.
func parseLiteral(run string) (float64, error) {
	return strconv.ParseFloat(run, 64)
}
