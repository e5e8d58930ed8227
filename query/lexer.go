package query

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	jerrors "github.com/ediel-queiroz/jnosql/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokInt
	tokFloat
	tokParam
	tokPunct // ( ) , = < > <= >= *
	tokJSON  // balanced {...} or [...] captured raw
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lexer is a single-pass scanner over the query text. JSON object and array
// values are captured as balanced raw segments and decoded by the entity
// package's JSON codec.
type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) errorf(pos int, format string, args ...any) error {
	return jerrors.NewQuery(jerrors.ErrMalformedQuery, "parser", "lex",
		"at position %d: %s", pos, fmt.Sprintf(format, args...))
}

func (l *lexer) skipSpaces() {
	for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
		l.pos++
	}
}

// next returns the following token
func (l *lexer) next() (token, error) {
	l.skipSpaces()
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	ch := l.input[l.pos]

	switch {
	case ch == '(' || ch == ')' || ch == ',' || ch == '=' || ch == '*':
		l.pos++
		return token{kind: tokPunct, text: string(ch), pos: start}, nil

	case ch == '<' || ch == '>':
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '=' {
			l.pos++
			return token{kind: tokPunct, text: string(ch) + "=", pos: start}, nil
		}
		return token{kind: tokPunct, text: string(ch), pos: start}, nil

	case ch == '"':
		return l.scanString()

	case ch == '@':
		l.pos++
		name := l.scanIdentText()
		if name == "" {
			return token{}, l.errorf(start, "parameter name expected after @")
		}
		return token{kind: tokParam, text: name, pos: start}, nil

	case ch == '{' || ch == '[':
		return l.scanBalanced()

	case ch == '-' || (ch >= '0' && ch <= '9'):
		return l.scanNumber()

	case isIdentStart(ch):
		text := l.scanIdentText()
		return token{kind: tokIdent, text: text, pos: start}, nil

	default:
		return token{}, l.errorf(start, "unexpected character %q", ch)
	}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || ch == '.' || (ch >= '0' && ch <= '9')
}

func (l *lexer) scanIdentText() string {
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}
	return l.input[start:l.pos]
}

func (l *lexer) scanString() (token, error) {
	start := l.pos
	l.pos++ // opening quote
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '\\':
			l.pos += 2
		case '"':
			l.pos++
			unquoted, err := strconv.Unquote(l.input[start:l.pos])
			if err != nil {
				return token{}, l.errorf(start, "invalid string literal")
			}
			return token{kind: tokString, text: unquoted, pos: start}, nil
		default:
			l.pos++
		}
	}
	return token{}, l.errorf(start, "unterminated string literal")
}

func (l *lexer) scanNumber() (token, error) {
	start := l.pos
	if l.input[l.pos] == '-' {
		l.pos++
	}
	integral := true
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch >= '0' && ch <= '9' {
			l.pos++
			continue
		}
		if ch == '.' || ch == 'e' || ch == 'E' || ch == '+' ||
			(ch == '-' && (l.input[l.pos-1] == 'e' || l.input[l.pos-1] == 'E')) {
			integral = false
			l.pos++
			continue
		}
		break
	}
	text := l.input[start:l.pos]
	if integral {
		if _, err := strconv.ParseInt(text, 10, 64); err != nil {
			return token{}, l.errorf(start, "invalid number %q", text)
		}
		return token{kind: tokInt, text: text, pos: start}, nil
	}
	if _, err := strconv.ParseFloat(text, 64); err != nil {
		return token{}, l.errorf(start, "invalid number %q", text)
	}
	return token{kind: tokFloat, text: text, pos: start}, nil
}

// scanBalanced captures a raw JSON object or array, tracking nesting depth
// and skipping over string contents
func (l *lexer) scanBalanced() (token, error) {
	start := l.pos
	depth := 0
	inString := false
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if inString {
			switch ch {
			case '\\':
				l.pos++
			case '"':
				inString = false
			}
			l.pos++
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				l.pos++
				return token{kind: tokJSON, text: l.input[start:l.pos], pos: start}, nil
			}
		}
		l.pos++
	}
	return token{}, l.errorf(start, "unbalanced %q", l.input[start])
}

// keyword reports whether an ident token matches a grammar keyword
// (case-insensitive)
func (t token) keyword(word string) bool {
	return t.kind == tokIdent && strings.EqualFold(t.text, word)
}
