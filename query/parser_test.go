package query

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ediel-queiroz/jnosql/entity"
	jerrors "github.com/ediel-queiroz/jnosql/errors"
)

type mockManager struct {
	mock.Mock
}

func (m *mockManager) Insert(ctx context.Context, e *entity.DocumentEntity) (*entity.DocumentEntity, error) {
	args := m.Called(ctx, e)
	return e, args.Error(1)
}

func (m *mockManager) Update(ctx context.Context, e *entity.DocumentEntity) (*entity.DocumentEntity, error) {
	args := m.Called(ctx, e)
	return e, args.Error(1)
}

func (m *mockManager) Delete(ctx context.Context, q entity.DeleteQuery) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *mockManager) Select(ctx context.Context, q entity.SelectQuery) ([]*entity.DocumentEntity, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.DocumentEntity), args.Error(1)
}

func (m *mockManager) Close() error {
	return nil
}

func captureUpdate(m *mockManager) **entity.DocumentEntity {
	var captured *entity.DocumentEntity
	m.On("Update", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*entity.DocumentEntity)
		}).
		Return(nil, nil)
	return &captured
}

func TestQueryUpdateStringLiteral(t *testing.T) {
	m := &mockManager{}
	captured := captureUpdate(m)

	_, err := New().Query(context.Background(), `update God (name = "Diana")`, m, nil)
	require.NoError(t, err)

	m.AssertNumberOfCalls(t, "Update", 1)
	e := *captured
	assert.Equal(t, "God", e.Name())
	name, ok := e.Find("name")
	require.True(t, ok)
	assert.Equal(t, "Diana", name.Value)
}

func TestQueryUpdateNumericDefaultsToInt64(t *testing.T) {
	m := &mockManager{}
	captured := captureUpdate(m)

	_, err := New().Query(context.Background(), `update God (age = 30, name = "Artemis")`, m, nil)
	require.NoError(t, err)

	e := *captured
	assert.Equal(t, "God", e.Name())
	age, _ := e.Find("age")
	assert.Equal(t, int64(30), age.Value)
	name, _ := e.Find("name")
	assert.Equal(t, "Artemis", name.Value)
}

func TestQueryUpdateDecimalIsFloat(t *testing.T) {
	m := &mockManager{}
	captured := captureUpdate(m)

	_, err := New().Query(context.Background(), `update God (power = 9.75)`, m, nil)
	require.NoError(t, err)

	power, _ := (*captured).Find("power")
	assert.Equal(t, 9.75, power.Value)
}

func TestQueryUpdateWithPlaceholderFails(t *testing.T) {
	m := &mockManager{}

	_, err := New().Query(context.Background(), `update God (name = @name)`, m, nil)
	require.Error(t, err)
	assert.True(t, jerrors.IsQuery(err))
	assert.ErrorIs(t, err, jerrors.ErrUnboundParameter)
	m.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestQueryUpdateJSONObject(t *testing.T) {
	m := &mockManager{}
	captured := captureUpdate(m)

	_, err := New().Query(context.Background(), `update Person {"name":"Ada Lovelace"}`, m, nil)
	require.NoError(t, err)

	e := *captured
	assert.Equal(t, "Person", e.Name())
	name, _ := e.Find("name")
	assert.Equal(t, "Ada Lovelace", name.Value)
}

func TestQueryUpdateJSONObjectNested(t *testing.T) {
	m := &mockManager{}
	captured := captureUpdate(m)

	text := `update Person {"name": "Ada Lovelace", "age": 12, "sibling": ["Ana", "Maria"],` +
		` "address": {"country": "United Kingdom", "city": "London"}}`
	_, err := New().Query(context.Background(), text, m, nil)
	require.NoError(t, err)

	e := *captured
	assert.Equal(t, "Person", e.Name())

	age, _ := e.Find("age")
	assert.Equal(t, int64(12), age.Value)

	sibling, _ := e.Find("sibling")
	list, err := sibling.List()
	require.NoError(t, err)
	assert.Equal(t, []any{"Ana", "Maria"}, list)

	address, _ := e.Find("address")
	docs, err := address.SubDocuments()
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "country", docs[0].Name)
	assert.Equal(t, "United Kingdom", docs[0].Value)
	assert.Equal(t, "London", docs[1].Value)
}

func TestQueryUpdateArrayValueInParenForm(t *testing.T) {
	m := &mockManager{}
	captured := captureUpdate(m)

	_, err := New().Query(context.Background(), `update God (titles = ["huntress", "moon"])`, m, nil)
	require.NoError(t, err)

	titles, _ := (*captured).Find("titles")
	assert.Equal(t, []any{"huntress", "moon"}, titles.Value)
}

func TestPreparedStatementUnboundFails(t *testing.T) {
	m := &mockManager{}

	ps, err := New().Prepare(`update God (name = @name)`, m, nil)
	require.NoError(t, err)

	_, err = ps.Result(context.Background())
	require.Error(t, err)
	assert.True(t, jerrors.IsQuery(err))
	assert.ErrorIs(t, err, jerrors.ErrUnboundParameter)
	m.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestPreparedStatementBindAndResult(t *testing.T) {
	m := &mockManager{}
	captured := captureUpdate(m)

	ps, err := New().Prepare(`update God (name = @name)`, m, nil)
	require.NoError(t, err)
	require.NoError(t, ps.Bind("name", "Diana"))

	results, err := ps.Result(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	e := *captured
	assert.Equal(t, "God", e.Name())
	name, _ := e.Find("name")
	assert.Equal(t, "Diana", name.Value)
}

func TestPreparedStatementBindUnknownParameter(t *testing.T) {
	m := &mockManager{}
	ps, err := New().Prepare(`update God (name = @name)`, m, nil)
	require.NoError(t, err)

	err = ps.Bind("age", 30)
	require.Error(t, err)
	assert.ErrorIs(t, err, jerrors.ErrUnknownParameter)
}

func TestQueryInsert(t *testing.T) {
	m := &mockManager{}
	var captured *entity.DocumentEntity
	m.On("Insert", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*entity.DocumentEntity)
		}).
		Return(nil, nil)

	_, err := New().Query(context.Background(), `insert God (_id = "diana", name = "Diana")`, m, nil)
	require.NoError(t, err)

	m.AssertNumberOfCalls(t, "Insert", 1)
	assert.Equal(t, "God", captured.Name())
	id, _ := captured.Find("_id")
	assert.Equal(t, "diana", id.Value)
}

func TestQueryDeleteWithConditions(t *testing.T) {
	m := &mockManager{}
	var captured entity.DeleteQuery
	m.On("Delete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(entity.DeleteQuery)
		}).
		Return(nil)

	_, err := New().Query(context.Background(),
		`delete from God where name = "Diana" and age > 20`, m, nil)
	require.NoError(t, err)

	assert.Equal(t, "God", captured.Entity)
	require.Len(t, captured.Conditions, 2)
	assert.Equal(t, entity.Condition{Field: "name", Operator: entity.Eq, Value: "Diana"},
		captured.Conditions[0])
	assert.Equal(t, entity.Condition{Field: "age", Operator: entity.Gt, Value: int64(20)},
		captured.Conditions[1])
}

func TestQuerySelect(t *testing.T) {
	m := &mockManager{}
	var captured entity.SelectQuery
	stored := entity.Of("God", entity.NewDocument("name", "Diana"))
	m.On("Select", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(entity.SelectQuery)
		}).
		Return([]*entity.DocumentEntity{stored}, nil)

	results, err := New().Query(context.Background(),
		`select name, age from God where age >= 20 skip 2 limit 5`, m, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "God", captured.Entity)
	assert.Equal(t, []string{"name", "age"}, captured.Fields)
	assert.Equal(t, 2, captured.Skip)
	assert.Equal(t, 5, captured.Limit)
	require.Len(t, captured.Conditions, 1)
	assert.Equal(t, entity.Gte, captured.Conditions[0].Operator)
}

func TestQuerySelectStarWithInAndLike(t *testing.T) {
	m := &mockManager{}
	var captured entity.SelectQuery
	m.On("Select", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(entity.SelectQuery)
		}).
		Return(nil, nil)

	_, err := New().Query(context.Background(),
		`select * from God where name in ["Diana", "Apollo"] and title like "%huntress%"`, m, nil)
	require.NoError(t, err)

	assert.Empty(t, captured.Fields)
	require.Len(t, captured.Conditions, 2)
	assert.Equal(t, entity.In, captured.Conditions[0].Operator)
	assert.Equal(t, []any{"Diana", "Apollo"}, captured.Conditions[0].Value)
	assert.Equal(t, entity.Like, captured.Conditions[1].Operator)
}

func TestPreparedSelectWithBoundCondition(t *testing.T) {
	m := &mockManager{}
	var captured entity.SelectQuery
	m.On("Select", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(entity.SelectQuery)
		}).
		Return(nil, nil)

	ps, err := New().Prepare(`select * from God where name = @name`, m, nil)
	require.NoError(t, err)
	require.NoError(t, ps.Bind("name", "Diana"))
	_, err = ps.Result(context.Background())
	require.NoError(t, err)

	require.Len(t, captured.Conditions, 1)
	assert.Equal(t, "Diana", captured.Conditions[0].Value)
}

type upperObserver struct{}

func (upperObserver) FireEntity(name string) string { return strings.ToUpper(name) }

func (upperObserver) FireField(_, field string) string { return "f_" + field }

func (upperObserver) FireValue(_, _ string, value any) any {
	if s, ok := value.(string); ok {
		return strings.ToUpper(s)
	}
	return value
}

func TestObserverInterceptsFieldsAndValues(t *testing.T) {
	m := &mockManager{}
	captured := captureUpdate(m)

	_, err := New().Query(context.Background(), `update God (name = "Diana")`, m, upperObserver{})
	require.NoError(t, err)

	e := *captured
	assert.Equal(t, "GOD", e.Name())
	name, ok := e.Find("f_name")
	require.True(t, ok)
	assert.Equal(t, "DIANA", name.Value)
}

func TestParseErrors(t *testing.T) {
	m := &mockManager{}
	tests := []struct {
		name string
		text string
	}{
		{"unknown verb", `upsert God (name = "Diana")`},
		{"missing entity", `update (name = "Diana")`},
		{"missing equals", `update God (name "Diana")`},
		{"unterminated list", `update God (name = "Diana"`},
		{"unterminated string", `update God (name = "Diana)`},
		{"trailing garbage", `update God (name = "Diana") extra`},
		{"unbalanced json", `update God {"name": "Diana"`},
		{"delete without from", `delete God`},
		{"select without from", `select * God`},
		{"bad operator", `delete from God where name ~ "Diana"`},
		{"negative limit", `select * from God limit -1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Query(context.Background(), tt.text, m, nil)
			require.Error(t, err)
			assert.True(t, jerrors.IsQuery(err), "expected query error, got %v", err)
		})
	}
}

func TestVerb(t *testing.T) {
	assert.Equal(t, "select", Verb(`select * from God`))
	assert.Equal(t, "insert", Verb(`INSERT God (name = "Diana")`))
	assert.Equal(t, "update", Verb(`update God {"age": 30}`))
	assert.Equal(t, "delete", Verb(`delete from God`))
	assert.Equal(t, "unknown", Verb(`upsert God (name = "Diana")`))
	assert.Equal(t, "unknown", Verb(""))
}

func TestPreparedStatementVerb(t *testing.T) {
	ps, err := New().Prepare(`select * from God where name = @name`, &mockManager{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "select", ps.Verb())
}
