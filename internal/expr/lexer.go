package expr

import (
	"strconv"
	"strings"
)

// tokenKind classifies a token.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokOp
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	case tokIdent:
		return "identifier"
	case tokOp:
		return "operator"
	default:
		return "unknown"
	}
}

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

// operators lists every punctuation token, longest first so that the
// scanner prefers "!==" over "!=" over "!".
var operators = []string{
	"!==", "===",
	"!=", "==", ">=", "<=", "||", "&&",
	">", "<", "-", "+", "/", "*", "!", "?", ":", "(", ")", ".", ",",
}

// lex splits text into tokens. The final token is always tokEOF.
func lex(text string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case isDigit(c) || (c == '.' && i+1 < len(text) && isDigit(text[i+1])):
			start := i
			for i < len(text) && (isDigit(text[i]) || text[i] == '.') {
				i++
			}
			if i < len(text) && (text[i] == 'e' || text[i] == 'E') {
				j := i + 1
				if j < len(text) && (text[j] == '+' || text[j] == '-') {
					j++
				}
				if j < len(text) && isDigit(text[j]) {
					i = j
					for i < len(text) && isDigit(text[i]) {
						i++
					}
				}
			}
			n, err := strconv.ParseFloat(text[start:i], 64)
			if err != nil {
				return nil, &SyntaxError{Text: text, Pos: start, Msg: "invalid number " + strconv.Quote(text[start:i])}
			}
			toks = append(toks, token{kind: tokNumber, text: text[start:i], num: n, pos: start})

		case c == '"' || c == '\'':
			s, end, err := scanString(text, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokString, text: s, pos: i})
			i = end

		case isIdentStart(c):
			start := i
			for i < len(text) && isIdentPart(text[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: text[start:i], pos: start})

		default:
			op := ""
			for _, candidate := range operators {
				if strings.HasPrefix(text[i:], candidate) {
					op = candidate
					break
				}
			}
			if op == "" {
				return nil, &SyntaxError{Text: text, Pos: i, Msg: "unexpected character " + strconv.QuoteRune(rune(c))}
			}
			toks = append(toks, token{kind: tokOp, text: op, pos: i})
			i += len(op)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(text)}), nil
}

// scanString reads a quoted string starting at text[start] and returns its
// value and the offset just past the closing quote.
func scanString(text string, start int) (string, int, error) {
	quote := text[start]
	var b strings.Builder
	for i := start + 1; i < len(text); i++ {
		c := text[i]
		switch c {
		case quote:
			return b.String(), i + 1, nil
		case '\\':
			i++
			if i >= len(text) {
				break
			}
			switch e := text[i]; e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(e)
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, &SyntaxError{Text: text, Pos: start, Msg: "unterminated string"}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
