// Package query parses the framework's textual query grammar into
// executable store commands. Supported statements:
//
//	update <Entity> (<field> = <value>, ...)
//	update <Entity> { json-object }
//	insert <Entity> (<field> = <value>, ...)
//	insert <Entity> { json-object }
//	delete from <Entity> [where <cond> [and <cond>]...]
//	select <*|field, ...> from <Entity> [where ...] [skip n] [limit n]
//
// Values are quoted strings, bare numerics (integral numbers parse as
// int64, decimals as float64), @parameter placeholders, JSON arrays, and
// JSON objects (which become nested entities). Query either executes
// immediately or prepares a statement that retains placeholders until
// bound.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ediel-queiroz/jnosql/entity"
	jerrors "github.com/ediel-queiroz/jnosql/errors"
)

type verb int

const (
	verbUpdate verb = iota
	verbInsert
	verbDelete
	verbSelect
)

func (v verb) String() string {
	switch v {
	case verbUpdate:
		return "update"
	case verbInsert:
		return "insert"
	case verbDelete:
		return "delete"
	case verbSelect:
		return "select"
	default:
		return "unknown"
	}
}

// paramRef is an unbound placeholder inside a parsed statement
type paramRef struct {
	name string
}

type fieldValue struct {
	field string
	value any
}

// statement is the parsed form of one query. Placeholders stay as paramRef
// values until materialization.
type statement struct {
	verb         verb
	entity       string
	fields       []fieldValue
	conditions   []entity.Condition
	selectFields []string
	skip         int
	limit        int
	params       map[string]struct{}
}

// parser consumes the lexer token stream
type parser struct {
	lex *lexer
	tok token
}

func parse(text string) (*statement, error) {
	p := &parser{lex: newLexer(text)}
	if err := p.advance(); err != nil {
		return nil, err
	}

	stmt := &statement{params: make(map[string]struct{})}
	switch {
	case p.tok.keyword("update"):
		stmt.verb = verbUpdate
	case p.tok.keyword("insert"):
		stmt.verb = verbInsert
	case p.tok.keyword("delete"):
		stmt.verb = verbDelete
	case p.tok.keyword("select"):
		stmt.verb = verbSelect
	default:
		return nil, jerrors.NewQuery(jerrors.ErrUnsupportedVerb, "parser", "parse",
			"token %q at position %d", p.tok.text, p.tok.pos)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	var err error
	switch stmt.verb {
	case verbUpdate, verbInsert:
		err = p.parseChange(stmt)
	case verbDelete:
		err = p.parseDelete(stmt)
	case verbSelect:
		err = p.parseSelect(stmt)
	}
	if err != nil {
		return nil, err
	}

	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected trailing input %q", p.tok.text)
	}
	return stmt, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return jerrors.NewQuery(jerrors.ErrMalformedQuery, "parser", "parse",
		"at position %d: %s", p.tok.pos, fmt.Sprintf(format, args...))
}

func (p *parser) expectIdent(what string) (string, error) {
	if p.tok.kind != tokIdent {
		return "", p.errorf("%s expected, got %q", what, p.tok.text)
	}
	text := p.tok.text
	if err := p.advance(); err != nil {
		return "", err
	}
	return text, nil
}

func (p *parser) expectPunct(text string) error {
	if p.tok.kind != tokPunct || p.tok.text != text {
		return p.errorf("%q expected, got %q", text, p.tok.text)
	}
	return p.advance()
}

// parseChange handles the shared update/insert grammar: an entity name
// followed by a parenthesized assignment list or a JSON object literal
func (p *parser) parseChange(stmt *statement) error {
	name, err := p.expectIdent("entity name")
	if err != nil {
		return err
	}
	stmt.entity = name

	switch {
	case p.tok.kind == tokPunct && p.tok.text == "(":
		if err := p.advance(); err != nil {
			return err
		}
		for {
			field, err := p.expectIdent("field name")
			if err != nil {
				return err
			}
			if err := p.expectPunct("="); err != nil {
				return err
			}
			value, err := p.parseValue(stmt)
			if err != nil {
				return err
			}
			stmt.fields = append(stmt.fields, fieldValue{field: field, value: value})

			if p.tok.kind == tokPunct && p.tok.text == "," {
				if err := p.advance(); err != nil {
					return err
				}
				continue
			}
			return p.expectPunct(")")
		}

	case p.tok.kind == tokJSON && strings.HasPrefix(p.tok.text, "{"):
		docs, err := entity.DocumentsFromJSON([]byte(p.tok.text))
		if err != nil {
			return err
		}
		for _, doc := range docs {
			stmt.fields = append(stmt.fields, fieldValue{field: doc.Name, value: doc.Value})
		}
		return p.advance()

	default:
		return p.errorf("assignment list or JSON object expected, got %q", p.tok.text)
	}
}

// parseValue parses one literal, placeholder, array, or nested object
func (p *parser) parseValue(stmt *statement) (any, error) {
	tok := p.tok
	switch tok.kind {
	case tokString:
		return tok.text, p.advance()
	case tokInt:
		n, _ := strconv.ParseInt(tok.text, 10, 64)
		return n, p.advance()
	case tokFloat:
		f, _ := strconv.ParseFloat(tok.text, 64)
		return f, p.advance()
	case tokParam:
		stmt.params[tok.text] = struct{}{}
		return paramRef{name: tok.text}, p.advance()
	case tokJSON:
		value, err := entity.ValueFromJSON([]byte(tok.text))
		if err != nil {
			return nil, err
		}
		return value, p.advance()
	case tokIdent:
		switch {
		case tok.keyword("true"):
			return true, p.advance()
		case tok.keyword("false"):
			return false, p.advance()
		case tok.keyword("null"):
			return nil, p.advance()
		}
	}
	return nil, p.errorf("value expected, got %q", tok.text)
}

func (p *parser) parseDelete(stmt *statement) error {
	if !p.tok.keyword("from") {
		return p.errorf("\"from\" expected, got %q", p.tok.text)
	}
	if err := p.advance(); err != nil {
		return err
	}
	name, err := p.expectIdent("entity name")
	if err != nil {
		return err
	}
	stmt.entity = name
	return p.parseWhere(stmt)
}

func (p *parser) parseSelect(stmt *statement) error {
	// projection: * or field list
	if p.tok.kind == tokPunct && p.tok.text == "*" {
		if err := p.advance(); err != nil {
			return err
		}
	} else {
		for {
			if p.tok.keyword("from") {
				break
			}
			field, err := p.expectIdent("field name")
			if err != nil {
				return err
			}
			stmt.selectFields = append(stmt.selectFields, field)
			if p.tok.kind == tokPunct && p.tok.text == "," {
				if err := p.advance(); err != nil {
					return err
				}
				continue
			}
			break
		}
	}

	if !p.tok.keyword("from") {
		return p.errorf("\"from\" expected, got %q", p.tok.text)
	}
	if err := p.advance(); err != nil {
		return err
	}
	name, err := p.expectIdent("entity name")
	if err != nil {
		return err
	}
	stmt.entity = name

	if err := p.parseWhere(stmt); err != nil {
		return err
	}

	// skip / limit in either order
	for p.tok.keyword("skip") || p.tok.keyword("limit") {
		isSkip := p.tok.keyword("skip")
		if err := p.advance(); err != nil {
			return err
		}
		if p.tok.kind != tokInt {
			return p.errorf("number expected, got %q", p.tok.text)
		}
		n, _ := strconv.ParseInt(p.tok.text, 10, 64)
		if n < 0 {
			return p.errorf("negative %s", map[bool]string{true: "skip", false: "limit"}[isSkip])
		}
		if isSkip {
			stmt.skip = int(n)
		} else {
			stmt.limit = int(n)
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

// parseWhere parses an optional condition list joined by "and"
func (p *parser) parseWhere(stmt *statement) error {
	if !p.tok.keyword("where") {
		return nil
	}
	if err := p.advance(); err != nil {
		return err
	}
	for {
		cond, err := p.parseCondition(stmt)
		if err != nil {
			return err
		}
		stmt.conditions = append(stmt.conditions, cond)
		if p.tok.keyword("and") {
			if err := p.advance(); err != nil {
				return err
			}
			continue
		}
		return nil
	}
}

func (p *parser) parseCondition(stmt *statement) (entity.Condition, error) {
	field, err := p.expectIdent("field name")
	if err != nil {
		return entity.Condition{}, err
	}

	var op entity.Operator
	switch {
	case p.tok.kind == tokPunct:
		switch p.tok.text {
		case "=":
			op = entity.Eq
		case ">":
			op = entity.Gt
		case ">=":
			op = entity.Gte
		case "<":
			op = entity.Lt
		case "<=":
			op = entity.Lte
		default:
			return entity.Condition{}, p.errorf("operator expected, got %q", p.tok.text)
		}
	case p.tok.keyword("in"):
		op = entity.In
	case p.tok.keyword("like"):
		op = entity.Like
	default:
		return entity.Condition{}, p.errorf("operator expected, got %q", p.tok.text)
	}
	if err := p.advance(); err != nil {
		return entity.Condition{}, err
	}

	value, err := p.parseValue(stmt)
	if err != nil {
		return entity.Condition{}, err
	}
	return entity.Condition{Field: field, Operator: op, Value: value}, nil
}
