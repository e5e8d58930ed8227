package template

import (
	"context"
	"testing"

	"github.com/google/uuid"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ediel-queiroz/jnosql/entity"
	jerrors "github.com/ediel-queiroz/jnosql/errors"
	"github.com/ediel-queiroz/jnosql/metric"
	"github.com/ediel-queiroz/jnosql/testutil"
)

func newTemplate(opts ...Option) (*Template, *testutil.MemoryManager) {
	manager := testutil.NewMemoryManager()
	return New(manager, testutil.NewRegistry(), opts...), manager
}

func TestInsertAndFindByID(t *testing.T) {
	tpl, manager := newTemplate()
	ctx := context.Background()

	stored, err := tpl.Insert(ctx, &testutil.God{ID: "diana", Name: "Diana", Age: 20})
	require.NoError(t, err)
	assert.Equal(t, "Diana", stored.(*testutil.God).Name)
	assert.Equal(t, 1, manager.Count("God"))

	found, err := tpl.FindByID(ctx, "God", "diana")
	require.NoError(t, err)
	god := found.(*testutil.God)
	assert.Equal(t, "diana", god.ID)
	assert.Equal(t, int64(20), god.Age)
}

func TestFindByIDNotFound(t *testing.T) {
	tpl, _ := newTemplate()

	_, err := tpl.FindByID(context.Background(), "God", "nobody")
	require.Error(t, err)
	assert.ErrorIs(t, err, jerrors.ErrEntityNotFound)
}

func TestInsertFillsGeneratedID(t *testing.T) {
	tpl, _ := newTemplate()

	book := &testutil.Book{Title: "The Shining"}
	stored, err := tpl.Insert(context.Background(), book)
	require.NoError(t, err)

	id := stored.(*testutil.Book).ID
	require.NotEmpty(t, id)
	_, err = uuid.Parse(id)
	assert.NoError(t, err, "generated identifier should be a UUID")
	// The input object carries the assigned identifier too.
	assert.Equal(t, id, book.ID)
}

func TestInsertKeepsExplicitID(t *testing.T) {
	tpl, _ := newTemplate()

	stored, err := tpl.Insert(context.Background(), &testutil.Book{ID: "isbn-42", Title: "Dune"})
	require.NoError(t, err)
	assert.Equal(t, "isbn-42", stored.(*testutil.Book).ID)
}

func TestUpdateOverwrites(t *testing.T) {
	tpl, _ := newTemplate()
	ctx := context.Background()

	_, err := tpl.Insert(ctx, &testutil.God{ID: "diana", Name: "Diana"})
	require.NoError(t, err)

	_, err = tpl.Update(ctx, &testutil.God{ID: "diana", Name: "Artemis", Age: 30})
	require.NoError(t, err)

	found, err := tpl.FindByID(ctx, "God", "diana")
	require.NoError(t, err)
	assert.Equal(t, "Artemis", found.(*testutil.God).Name)
}

func TestDeleteByObject(t *testing.T) {
	tpl, manager := newTemplate()
	ctx := context.Background()

	god := &testutil.God{ID: "diana", Name: "Diana"}
	_, err := tpl.Insert(ctx, god)
	require.NoError(t, err)

	require.NoError(t, tpl.Delete(ctx, god))
	assert.Equal(t, 0, manager.Count("God"))
}

func TestDeleteWhere(t *testing.T) {
	tpl, manager := newTemplate()
	ctx := context.Background()

	for _, g := range []*testutil.God{
		{ID: "diana", Name: "Diana", Age: 20},
		{ID: "apollo", Name: "Apollo", Age: 25},
		{ID: "zeus", Name: "Zeus", Age: 60},
	} {
		_, err := tpl.Insert(ctx, g)
		require.NoError(t, err)
	}

	err := tpl.DeleteWhere(ctx, "God",
		entity.Condition{Field: "age", Operator: entity.Lt, Value: int64(30)})
	require.NoError(t, err)
	assert.Equal(t, 1, manager.Count("God"))

	require.NoError(t, tpl.DeleteWhere(ctx, "God"))
	assert.Equal(t, 0, manager.Count("God"))
}

func TestSelectConverts(t *testing.T) {
	tpl, _ := newTemplate()
	ctx := context.Background()

	for _, g := range []*testutil.God{
		{ID: "diana", Name: "Diana", Age: 20},
		{ID: "apollo", Name: "Apollo", Age: 25},
		{ID: "zeus", Name: "Zeus", Age: 60},
	} {
		_, err := tpl.Insert(ctx, g)
		require.NoError(t, err)
	}

	results, err := tpl.Select(ctx, entity.SelectQuery{
		Entity: "God",
		Conditions: []entity.Condition{
			{Field: "age", Operator: entity.Lt, Value: int64(30)},
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Diana", results[0].(*testutil.God).Name)
	assert.Equal(t, "Apollo", results[1].(*testutil.God).Name)
}

func TestQueryTextRoundTrip(t *testing.T) {
	tpl, manager := newTemplate()
	ctx := context.Background()

	_, err := tpl.Query(ctx, `insert God (_id = "diana", name = "Diana", age = 20)`)
	require.NoError(t, err)
	assert.Equal(t, 1, manager.Count("God"))

	results, err := tpl.Query(ctx, `select * from God where name = "Diana"`)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(20), results[0].(*testutil.God).Age)
}

func TestPreparedQuery(t *testing.T) {
	tpl, _ := newTemplate()
	ctx := context.Background()

	_, err := tpl.Insert(ctx, &testutil.God{ID: "diana", Name: "Diana"})
	require.NoError(t, err)

	ps, err := tpl.Prepare(`select * from God where name = @name`)
	require.NoError(t, err)

	_, err = ps.Result(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, jerrors.ErrUnboundParameter)

	require.NoError(t, ps.Bind("name", "Diana"))
	results, err := ps.Result(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "diana", results[0].(*testutil.God).ID)
}

func TestInheritanceRoundTripThroughTemplate(t *testing.T) {
	tpl, _ := newTemplate()
	ctx := context.Background()

	_, err := tpl.Insert(ctx, &testutil.LargeProject{
		Project: testutil.Project{Name: "Apollo Program"},
		Budget:  25e9,
	})
	require.NoError(t, err)

	found, err := tpl.FindByID(ctx, "Project", "Apollo Program")
	require.NoError(t, err)
	large, ok := found.(*testutil.LargeProject)
	require.True(t, ok, "discriminator should restore the subtype, got %T", found)
	assert.Equal(t, 25e9, large.Budget)
}

func TestTemplateRejectsUnknownType(t *testing.T) {
	tpl, _ := newTemplate()

	type stranger struct{ Name string }
	_, err := tpl.Insert(context.Background(), &stranger{})
	assert.ErrorIs(t, err, jerrors.ErrUnknownEntity)

	_, err = tpl.Insert(context.Background(), nil)
	assert.ErrorIs(t, err, jerrors.ErrNilDomainObject)
}

func TestTemplateRecordsMetrics(t *testing.T) {
	metrics := metric.NewMetrics()
	tpl, _ := newTemplate(WithMetrics(metrics))

	_, err := tpl.Insert(context.Background(), &testutil.God{ID: "diana", Name: "Diana"})
	require.NoError(t, err)

	_, err = tpl.FindByID(context.Background(), "God", "nobody")
	require.Error(t, err)

	assert.Equal(t, 1.0, promtestutil.ToFloat64(
		metrics.OperationsTotal.WithLabelValues("God", "insert", "success")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(
		metrics.OperationsTotal.WithLabelValues("God", "find", "error")))
	// Insert crossed the converter once in each direction.
	assert.Equal(t, 1.0, promtestutil.ToFloat64(
		metrics.ConversionsTotal.WithLabelValues("God", "to_document", "success")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(
		metrics.ConversionsTotal.WithLabelValues("God", "to_entity", "success")))
	// The failed lookup counts under its error class.
	assert.Equal(t, 1.0, promtestutil.ToFloat64(
		metrics.ErrorsTotal.WithLabelValues("template", "invalid")))
}

func TestQueryRecordsMetrics(t *testing.T) {
	metrics := metric.NewMetrics()
	tpl, _ := newTemplate(WithMetrics(metrics))
	ctx := context.Background()

	_, err := tpl.Query(ctx, `insert God (_id = "diana", name = "Diana", age = 20)`)
	require.NoError(t, err)

	_, err = tpl.Query(ctx, `select * from God`)
	require.NoError(t, err)

	_, err = tpl.Query(ctx, `select * from`)
	require.Error(t, err)

	assert.Equal(t, 1.0, promtestutil.ToFloat64(
		metrics.QueriesTotal.WithLabelValues("insert", "success")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(
		metrics.QueriesTotal.WithLabelValues("select", "success")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(
		metrics.QueriesTotal.WithLabelValues("select", "error")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(
		metrics.ErrorsTotal.WithLabelValues("template", "query")))
}

func TestPreparedQueryRecordsMetrics(t *testing.T) {
	metrics := metric.NewMetrics()
	tpl, _ := newTemplate(WithMetrics(metrics))
	ctx := context.Background()

	_, err := tpl.Insert(ctx, &testutil.God{ID: "diana", Name: "Diana"})
	require.NoError(t, err)

	ps, err := tpl.Prepare(`select * from God where name = @name`)
	require.NoError(t, err)

	// Executing with the placeholder unbound fails and counts as an error.
	_, err = ps.Result(ctx)
	require.Error(t, err)

	require.NoError(t, ps.Bind("name", "Diana"))
	_, err = ps.Result(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1.0, promtestutil.ToFloat64(
		metrics.QueriesTotal.WithLabelValues("select", "error")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(
		metrics.QueriesTotal.WithLabelValues("select", "success")))
}
