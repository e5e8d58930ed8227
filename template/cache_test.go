package template

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ediel-queiroz/jnosql/entity"
	jerrors "github.com/ediel-queiroz/jnosql/errors"
	"github.com/ediel-queiroz/jnosql/pkg/cache"
	"github.com/ediel-queiroz/jnosql/testutil"
)

func newCachedTemplate(t *testing.T) (*Template, *testutil.MemoryManager, cache.Cache[any]) {
	t.Helper()
	c, err := cache.New[any](16, 0)
	require.NoError(t, err)
	manager := testutil.NewMemoryManager()
	return New(manager, testutil.NewRegistry(), WithCache(c)), manager, c
}

func TestFindByIDServedFromCache(t *testing.T) {
	tpl, manager, c := newCachedTemplate(t)
	ctx := context.Background()

	_, err := tpl.Insert(ctx, &testutil.God{ID: "diana", Name: "Diana", Age: 20})
	require.NoError(t, err)

	first, err := tpl.FindByID(ctx, "God", "diana")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.Stats().Misses)

	// remove the backing record; the cached object still answers
	err = manager.Delete(ctx, entity.DeleteQuery{
		Entity:     "God",
		Conditions: []entity.Condition{{Field: "_id", Operator: entity.Eq, Value: "diana"}},
	})
	require.NoError(t, err)

	second, err := tpl.FindByID(ctx, "God", "diana")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int64(1), c.Stats().Hits)
}

func TestDeleteByIDInvalidatesCache(t *testing.T) {
	tpl, _, c := newCachedTemplate(t)
	ctx := context.Background()

	_, err := tpl.Insert(ctx, &testutil.God{ID: "diana", Name: "Diana", Age: 20})
	require.NoError(t, err)

	_, err = tpl.FindByID(ctx, "God", "diana")
	require.NoError(t, err)
	require.Equal(t, 1, c.Size())

	require.NoError(t, tpl.DeleteByID(ctx, "God", "diana"))

	_, err = tpl.FindByID(ctx, "God", "diana")
	assert.ErrorIs(t, err, jerrors.ErrEntityNotFound)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	tpl, _, _ := newCachedTemplate(t)
	ctx := context.Background()

	_, err := tpl.Insert(ctx, &testutil.God{ID: "diana", Name: "Diana", Age: 20})
	require.NoError(t, err)

	_, err = tpl.FindByID(ctx, "God", "diana")
	require.NoError(t, err)

	_, err = tpl.Update(ctx, &testutil.God{ID: "diana", Name: "Diana", Age: 21})
	require.NoError(t, err)

	found, err := tpl.FindByID(ctx, "God", "diana")
	require.NoError(t, err)
	assert.Equal(t, int64(21), found.(*testutil.God).Age)
}

func TestUncachedTemplateAlwaysHitsStore(t *testing.T) {
	tpl, manager := newTemplate()
	ctx := context.Background()

	_, err := tpl.Insert(ctx, &testutil.God{ID: "diana", Name: "Diana", Age: 20})
	require.NoError(t, err)

	_, err = tpl.FindByID(ctx, "God", "diana")
	require.NoError(t, err)

	err = manager.Delete(ctx, entity.DeleteQuery{
		Entity:     "God",
		Conditions: []entity.Condition{{Field: "_id", Operator: entity.Eq, Value: "diana"}},
	})
	require.NoError(t, err)

	_, err = tpl.FindByID(ctx, "God", "diana")
	assert.ErrorIs(t, err, jerrors.ErrEntityNotFound)
}
