//go:build integration

package natskv

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ediel-queiroz/jnosql/config"
	"github.com/ediel-queiroz/jnosql/entity"
	jerrors "github.com/ediel-queiroz/jnosql/errors"
	"github.com/ediel-queiroz/jnosql/natsclient"
	"github.com/ediel-queiroz/jnosql/template"
	"github.com/ediel-queiroz/jnosql/testutil"
)

var sharedNATS *natsclient.TestClient

func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION_TESTS") == "" {
		fmt.Println("Skipping integration tests: INTEGRATION_TESTS not set")
		os.Exit(0)
	}

	tc, err := natsclient.NewSharedTestClient()
	if err != nil {
		fmt.Printf("Failed to start shared NATS container: %v\n", err)
		os.Exit(1)
	}
	sharedNATS = tc

	code := m.Run()
	tc.Terminate()
	os.Exit(code)
}

// integrationManager builds a manager on a fresh bucket of the shared
// server, so tests do not see each other's data.
func integrationManager(t *testing.T, bucket string) *Manager {
	t.Helper()
	ctx := context.Background()

	kvBucket, err := sharedNATS.Client.CreateKeyValueBucket(ctx, jetstream.KeyValueConfig{
		Bucket: bucket,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sharedNATS.Client.DeleteKeyValueBucket(context.Background(), bucket)
	})

	cfg := config.DefaultConfig()
	cfg.Store.Bucket = bucket
	cfg.Retry.InitialDelay = 10 * time.Millisecond

	return newManager(sharedNATS.Client.NewKVStore(kvBucket), cfg)
}

func TestManagerRoundTrip(t *testing.T) {
	m := integrationManager(t, "it-roundtrip")
	ctx := context.Background()

	original := entity.Of("God",
		entity.NewDocument("_id", "diana"),
		entity.NewDocument("name", "Diana"),
		entity.NewDocument("age", int64(20)),
	)
	_, err := m.Insert(ctx, original)
	require.NoError(t, err)

	results, err := m.Select(ctx, entity.SelectQuery{Entity: "God"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	name, _ := results[0].Find("name")
	assert.Equal(t, "Diana", name.Value)
	age, _ := results[0].Find("age")
	assert.Equal(t, int64(20), age.Value)

	_, err = m.Insert(ctx, original)
	assert.ErrorIs(t, err, jerrors.ErrEntityExists)
}

func TestManagerDeleteAndScan(t *testing.T) {
	m := integrationManager(t, "it-delete")
	ctx := context.Background()

	for _, g := range []struct {
		id   string
		age  int64
		name string
	}{
		{"diana", 20, "Diana"},
		{"apollo", 25, "Apollo"},
		{"zeus", 60, "Zeus"},
	} {
		_, err := m.Insert(ctx, entity.Of("God",
			entity.NewDocument("_id", g.id),
			entity.NewDocument("name", g.name),
			entity.NewDocument("age", g.age),
		))
		require.NoError(t, err)
	}

	err := m.Delete(ctx, entity.DeleteQuery{
		Entity: "God",
		Conditions: []entity.Condition{
			{Field: "age", Operator: entity.Lt, Value: int64(30)},
		},
	})
	require.NoError(t, err)

	results, err := m.Select(ctx, entity.SelectQuery{Entity: "God"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	name, _ := results[0].Find("name")
	assert.Equal(t, "Zeus", name.Value)
}

func TestTemplateOnRealStore(t *testing.T) {
	m := integrationManager(t, "it-template")
	ctx := context.Background()

	tpl := template.New(m, testutil.NewRegistry())

	_, err := tpl.Insert(ctx, &testutil.Person{
		ID:       1,
		Name:     "Ada Lovelace",
		Age:      36,
		Siblings: []any{"Allegra", "Ralph"},
		Address:  &testutil.Address{Country: "United Kingdom", City: "London"},
	})
	require.NoError(t, err)

	found, err := tpl.FindByID(ctx, "Person", int64(1))
	require.NoError(t, err)

	person := found.(*testutil.Person)
	assert.Equal(t, "Ada Lovelace", person.Name)
	assert.Equal(t, []any{"Allegra", "Ralph"}, person.Siblings)
	require.NotNil(t, person.Address)
	assert.Equal(t, "London", person.Address.City)

	results, err := tpl.Query(ctx, `select * from Person where age > 30`)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestConnectBuildsWorkingManager(t *testing.T) {
	ctx := context.Background()

	cfg := config.DefaultConfig()
	cfg.NATS.URL = sharedNATS.URL
	cfg.Store.Bucket = "it-connect"

	m, err := Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = m.Close()
		_ = sharedNATS.Client.DeleteKeyValueBucket(context.Background(), "it-connect")
	})

	_, err = m.Insert(ctx, entity.Of("Animal",
		entity.NewDocument("_id", "1"),
		entity.NewDocument("name", "lion"),
	))
	require.NoError(t, err)

	results, err := m.Select(ctx, entity.SelectQuery{Entity: "Animal"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
