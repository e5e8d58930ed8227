package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentEntityAddFindRemove(t *testing.T) {
	e := Of("God")
	e.Add("name", "Diana")
	e.Add("age", int64(30))

	doc, ok := e.Find("name")
	require.True(t, ok)
	assert.Equal(t, "Diana", doc.Value)

	// replacement keeps position
	e.Add("name", "Artemis")
	assert.Equal(t, 2, e.Len())
	docs := e.Documents()
	assert.Equal(t, "name", docs[0].Name)
	assert.Equal(t, "Artemis", docs[0].Value)

	assert.True(t, e.Remove("age"))
	assert.False(t, e.Remove("age"))
	_, ok = e.Find("age")
	assert.False(t, ok)
}

func TestDocumentsReturnsCopy(t *testing.T) {
	e := Of("God", NewDocument("name", "Diana"))
	docs := e.Documents()
	docs[0].Value = "changed"

	doc, ok := e.Find("name")
	require.True(t, ok)
	assert.Equal(t, "Diana", doc.Value)
}

func TestDocumentCoercion(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		check   func(t *testing.T, doc Document)
	}{
		{
			name: "int from float",
			doc:  NewDocument("age", 30.0),
			check: func(t *testing.T, doc Document) {
				n, err := doc.Int()
				require.NoError(t, err)
				assert.Equal(t, int64(30), n)
			},
		},
		{
			name: "int from string",
			doc:  NewDocument("age", "42"),
			check: func(t *testing.T, doc Document) {
				n, err := doc.Int()
				require.NoError(t, err)
				assert.Equal(t, int64(42), n)
			},
		},
		{
			name: "non-integral float fails as int",
			doc:  NewDocument("age", 30.5),
			check: func(t *testing.T, doc Document) {
				_, err := doc.Int()
				assert.Error(t, err)
			},
		},
		{
			name: "string from int",
			doc:  NewDocument("id", int64(7)),
			check: func(t *testing.T, doc Document) {
				s, err := doc.String()
				require.NoError(t, err)
				assert.Equal(t, "7", s)
			},
		},
		{
			name: "time from RFC3339 string",
			doc:  NewDocument("createdOn", "2023-04-01T10:30:00Z"),
			check: func(t *testing.T, doc Document) {
				ts, err := doc.Time()
				require.NoError(t, err)
				assert.Equal(t, time.Date(2023, 4, 1, 10, 30, 0, 0, time.UTC), ts)
			},
		},
		{
			name: "subdocuments",
			doc: NewDocument("address", []Document{
				{Name: "city", Value: "London"},
			}),
			check: func(t *testing.T, doc Document) {
				docs, err := doc.SubDocuments()
				require.NoError(t, err)
				require.Len(t, docs, 1)
				assert.Equal(t, "city", docs[0].Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.doc)
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	e := Of("Person")
	e.Add("name", "Ada Lovelace")
	e.Add("age", int64(12))
	e.Add("score", 9.5)
	e.Add("sibling", []any{"Ana", "Maria"})
	e.Add("address", []Document{
		{Name: "country", Value: "United Kingdom"},
		{Name: "city", Value: "London"},
	})

	data, err := e.MarshalJSON()
	require.NoError(t, err)

	decoded, err := FromJSON("Person", data)
	require.NoError(t, err)
	assert.Equal(t, "Person", decoded.Name())

	name, _ := decoded.Find("name")
	assert.Equal(t, "Ada Lovelace", name.Value)

	age, _ := decoded.Find("age")
	assert.Equal(t, int64(12), age.Value)

	score, _ := decoded.Find("score")
	assert.Equal(t, 9.5, score.Value)

	sibling, _ := decoded.Find("sibling")
	assert.Equal(t, []any{"Ana", "Maria"}, sibling.Value)

	address, _ := decoded.Find("address")
	docs, err := address.SubDocuments()
	require.NoError(t, err)
	assert.Equal(t, "country", docs[0].Name)
	assert.Equal(t, "London", docs[1].Value)

	// field order survives encoding
	assert.Equal(t, "name", decoded.Documents()[0].Name)
	assert.Equal(t, "address", decoded.Documents()[4].Name)
}

func TestDocumentsFromJSONRejectsNonObject(t *testing.T) {
	_, err := DocumentsFromJSON([]byte(`[1, 2]`))
	assert.Error(t, err)

	_, err = DocumentsFromJSON([]byte(`{"broken":`))
	assert.Error(t, err)
}

func TestValueFromJSON(t *testing.T) {
	v, err := ValueFromJSON([]byte(`[1, 2.5, "x", {"a": 1}]`))
	require.NoError(t, err)
	list, ok := v.([]any)
	require.True(t, ok)
	assert.Equal(t, int64(1), list[0])
	assert.Equal(t, 2.5, list[1])
	assert.Equal(t, "x", list[2])
	nested, ok := list[3].([]Document)
	require.True(t, ok)
	assert.Equal(t, "a", nested[0].Name)
	assert.Equal(t, int64(1), nested[0].Value)
}

func TestConditionMatches(t *testing.T) {
	e := Of("God")
	e.Add("name", "Diana")
	e.Add("age", int64(30))

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"eq string", Condition{Field: "name", Operator: Eq, Value: "Diana"}, true},
		{"eq mismatch", Condition{Field: "name", Operator: Eq, Value: "Apollo"}, false},
		{"eq numeric cross-type", Condition{Field: "age", Operator: Eq, Value: 30.0}, true},
		{"gt", Condition{Field: "age", Operator: Gt, Value: int64(29)}, true},
		{"gte equal", Condition{Field: "age", Operator: Gte, Value: int64(30)}, true},
		{"lt false", Condition{Field: "age", Operator: Lt, Value: int64(30)}, false},
		{"in", Condition{Field: "name", Operator: In, Value: []any{"Diana", "Apollo"}}, true},
		{"like prefix", Condition{Field: "name", Operator: Like, Value: "Di%"}, true},
		{"like contains", Condition{Field: "name", Operator: Like, Value: "%ian%"}, true},
		{"like no match", Condition{Field: "name", Operator: Like, Value: "%zeus%"}, false},
		{"missing field", Condition{Field: "power", Operator: Eq, Value: "bow"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cond.Matches(e)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectQueryMatchesAll(t *testing.T) {
	e := Of("God")
	e.Add("name", "Diana")
	e.Add("age", int64(30))

	q := SelectQuery{
		Entity: "God",
		Conditions: []Condition{
			{Field: "name", Operator: Eq, Value: "Diana"},
			{Field: "age", Operator: Gt, Value: int64(20)},
		},
	}
	ok, err := q.Matches(e)
	require.NoError(t, err)
	assert.True(t, ok)

	q.Conditions = append(q.Conditions, Condition{Field: "age", Operator: Lt, Value: int64(25)})
	ok, err = q.Matches(e)
	require.NoError(t, err)
	assert.False(t, ok)
}
