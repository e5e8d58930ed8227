package query

import (
	"context"
	"sort"
	"strings"

	"github.com/ediel-queiroz/jnosql/entity"
	jerrors "github.com/ediel-queiroz/jnosql/errors"
)

// Parser turns query text into store operations. The zero value is ready to
// use; parsers are stateless and safe for concurrent use.
type Parser struct{}

// New creates a Parser
func New() Parser {
	return Parser{}
}

// Query parses and executes immediately. A statement containing placeholders
// fails: placeholders require Prepare/Bind. Update and insert return the
// stored entity, select returns the matching entities, delete returns nil.
func (Parser) Query(ctx context.Context, text string, manager entity.Manager, observer Observer) ([]*entity.DocumentEntity, error) {
	stmt, err := parse(text)
	if err != nil {
		return nil, err
	}
	if len(stmt.params) > 0 {
		return nil, jerrors.NewQuery(jerrors.ErrUnboundParameter, "parser", "Query",
			"parameters %s require a prepared statement", paramNames(stmt.params))
	}
	ps := &PreparedStatement{
		stmt:     stmt,
		manager:  manager,
		observer: orDefault(observer),
		bound:    map[string]any{},
	}
	return ps.Result(ctx)
}

// Prepare parses into a statement that retains placeholders until bound
func (Parser) Prepare(text string, manager entity.Manager, observer Observer) (*PreparedStatement, error) {
	stmt, err := parse(text)
	if err != nil {
		return nil, err
	}
	return &PreparedStatement{
		stmt:     stmt,
		manager:  manager,
		observer: orDefault(observer),
		bound:    map[string]any{},
	}, nil
}

// Verb reports the statement verb that leads the query text, or "unknown"
// when the text does not start with a supported verb. It never parses past
// the first token, so even malformed queries classify.
func Verb(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "unknown"
	}
	switch v := strings.ToLower(fields[0]); v {
	case "update", "insert", "delete", "select":
		return v
	default:
		return "unknown"
	}
}

func orDefault(observer Observer) Observer {
	if observer == nil {
		return NewObserver()
	}
	return observer
}

func paramNames(params map[string]struct{}) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, "@"+name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// PreparedStatement is a parsed query whose placeholders bind before
// execution. Result materializes the entity, substitutes bound parameters,
// and invokes the executor; any placeholder still unbound fails with a
// query error.
type PreparedStatement struct {
	stmt     *statement
	manager  entity.Manager
	observer Observer
	bound    map[string]any
}

// Verb reports the statement verb as query text: "update", "insert",
// "delete", or "select".
func (ps *PreparedStatement) Verb() string {
	return ps.stmt.verb.String()
}

// Bind records a parameter value. Binding a name the query does not declare
// is a query error.
func (ps *PreparedStatement) Bind(name string, value any) error {
	if _, declared := ps.stmt.params[name]; !declared {
		return jerrors.NewQuery(jerrors.ErrUnknownParameter, "parser", "Bind",
			"parameter @%s", name)
	}
	ps.bound[name] = value
	return nil
}

// Result executes the statement against the manager
func (ps *PreparedStatement) Result(ctx context.Context) ([]*entity.DocumentEntity, error) {
	if err := ps.checkBound(); err != nil {
		return nil, err
	}

	switch ps.stmt.verb {
	case verbUpdate:
		e, err := ps.materializeEntity()
		if err != nil {
			return nil, err
		}
		updated, err := ps.manager.Update(ctx, e)
		if err != nil {
			return nil, err
		}
		return []*entity.DocumentEntity{updated}, nil

	case verbInsert:
		e, err := ps.materializeEntity()
		if err != nil {
			return nil, err
		}
		inserted, err := ps.manager.Insert(ctx, e)
		if err != nil {
			return nil, err
		}
		return []*entity.DocumentEntity{inserted}, nil

	case verbDelete:
		name, conditions, err := ps.materializeConditions()
		if err != nil {
			return nil, err
		}
		return nil, ps.manager.Delete(ctx, entity.DeleteQuery{
			Entity:     name,
			Conditions: conditions,
		})

	case verbSelect:
		name, conditions, err := ps.materializeConditions()
		if err != nil {
			return nil, err
		}
		return ps.manager.Select(ctx, entity.SelectQuery{
			Entity:     name,
			Fields:     ps.stmt.selectFields,
			Conditions: conditions,
			Skip:       ps.stmt.skip,
			Limit:      ps.stmt.limit,
		})

	default:
		return nil, jerrors.NewQuery(jerrors.ErrUnsupportedVerb, "parser", "Result",
			"verb %s", ps.stmt.verb)
	}
}

func (ps *PreparedStatement) checkBound() error {
	var missing []string
	for name := range ps.stmt.params {
		if _, ok := ps.bound[name]; !ok {
			missing = append(missing, "@"+name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return jerrors.NewQuery(jerrors.ErrUnboundParameter, "parser", "Result",
			"parameters %s", strings.Join(missing, ", "))
	}
	return nil
}

func (ps *PreparedStatement) resolve(v any) any {
	if ref, ok := v.(paramRef); ok {
		return ps.bound[ref.name]
	}
	return v
}

// materializeEntity builds the generic entity of an update/insert,
// substituting bound parameters and running every field and value through
// the observer
func (ps *PreparedStatement) materializeEntity() (*entity.DocumentEntity, error) {
	name := ps.observer.FireEntity(ps.stmt.entity)
	e := entity.Of(name)
	for _, fv := range ps.stmt.fields {
		field := ps.observer.FireField(name, fv.field)
		value := ps.observer.FireValue(name, field, ps.resolve(fv.value))
		e.Add(field, value)
	}
	return e, nil
}

// materializeConditions resolves the where clause of a delete/select
func (ps *PreparedStatement) materializeConditions() (string, []entity.Condition, error) {
	name := ps.observer.FireEntity(ps.stmt.entity)
	conditions := make([]entity.Condition, 0, len(ps.stmt.conditions))
	for _, c := range ps.stmt.conditions {
		field := ps.observer.FireField(name, c.Field)
		value := ps.observer.FireValue(name, field, ps.resolve(c.Value))
		conditions = append(conditions, entity.Condition{
			Field:    field,
			Operator: c.Operator,
			Value:    value,
		})
	}
	return name, conditions, nil
}
