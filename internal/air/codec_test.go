package air

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

func fromJSON(t *testing.T, s string) bsoncore.Document {
	vr, err := bsonrw.NewExtJSONValueReader(strings.NewReader(s), false)
	require.NoError(t, err)
	doc, err := bsonrw.NewCopier().CopyDocumentToBytes(vr)
	require.NoError(t, err)
	return doc
}

const (
	fooJSON = `{"$collection": {"db": "test", "collection": "foo"}}`
	barJSON = `{"$collection": {"db": "test", "collection": "bar"}}`
)

func TestCodecRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"collection", fooJSON},
		{"documents", `{"$documents": {"array": [{"$document": {"a": 1, "b": {"$literal": "x"}}}]}}`},
		{"project", `{"$project": {"source": ` + fooJSON + `, "specifications": {
			"x": {"$getField": {"field": "f", "input": "$doc"}},
			"y": {"$literal": "s"},
			"z": ["$a.b", 1.5, null]
		}}}`},
		{"group", `{"$group": {"source": ` + fooJSON + `, "keys": {"k": "$a"}, "aggregations": [
			{"alias": "n", "function": "$count", "distinct": true, "arg": "$b"},
			{"alias": "m", "function": "$max"}
		]}}`},
		{"limit", `{"$limit": {"source": ` + fooJSON + `, "limit": {"$numberLong": "10"}}}`},
		{"skip", `{"$skip": {"source": ` + fooJSON + `, "skip": {"$numberLong": "3"}}}`},
		{"sort", `{"$sort": {"source": ` + fooJSON + `, "specs": {"a": 1, "b": -1}}}`},
		{"unwind", `{"$unwind": {"source": ` + fooJSON + `, "path": "$arr", "index": "i", "outer": true}}`},
		{"replaceWith", `{"$replaceWith": {"source": ` + fooJSON + `, "newRoot": {"$let": {
			"vars": {"v": "$a"},
			"in": {"$sqlNeg": ["$$v"]}
		}}}}`},
		{"lookup", `{"$lookup": {"source": ` + fooJSON + `, "fromDB": "test", "fromColl": "bar",
			"let": {"v": "$a"}, "pipeline": ` + barJSON + `, "as": "out"}}`},
		{"join", `{"$join": {"joinType": "left", "left": ` + fooJSON + `, "right": ` + barJSON + `,
			"let": {"v": "$a"}, "condition": {"$sqlEq": ["$$v", "$b"]}}}`},
		{"unionWith", `{"$unionWith": {"source": ` + fooJSON + `, "pipeline": ` + barJSON + `}}`},
		{"match with switch", `{"$match": {"source": ` + fooJSON + `, "expr": {"$switch": {
			"branches": [{"case": {"$like": {"input": "$s", "pattern": {"$literal": "a%"}, "escape": "!"}}, "then": true}],
			"default": {"$is": {"input": "$n", "type": "null"}}
		}}}}`},
		{"match with sqlConvert", `{"$match": {"source": ` + fooJSON + `, "expr": {"$sqlConvert": {
			"input": "$a", "to": "int", "onNull": null, "onError": {"$literal": "bad"}
		}}}}`},
		{"match with subqueries", `{"$match": {"source": ` + fooJSON + `, "expr": {"$or": [
			{"$eq": [{"$subquery": {"let": {"v": "$a"}, "outputPath": ["x"], "pipeline": ` + barJSON + `}}, 1]},
			{"$subqueryComparison": {"op": "gt", "modifier": "all", "arg": "$a",
				"subquery": {"outputPath": ["x"], "pipeline": ` + barJSON + `}}},
			{"$subqueryExists": {"pipeline": ` + barJSON + `}},
			{"$coalesce": ["$$ROOT.a", {"$nullIf": ["$b", 0]}]}
		]}}}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			input := fromJSON(t, test.json)

			stage, err := ParseStage(input)
			require.NoError(t, err)

			assert.Equal(t, input.String(), DeparseStage(stage).String())
		})
	}
}

func TestCodecMatchQuery(t *testing.T) {
	input := fromJSON(t, `{"$matchQuery": {"source": `+fooJSON+`, "query": {"a": {"$gt": 1}}}}`)

	stage, err := ParseStage(input)
	require.NoError(t, err)

	match, ok := stage.(*MatchLanguage)
	require.True(t, ok)
	require.NotNil(t, match.Filter)

	once := DeparseStage(stage)
	reparsed, err := ParseStage(once)
	require.NoError(t, err)
	assert.Equal(t, once.String(), DeparseStage(reparsed).String())
}

func TestCodecErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"unknown stage", `{"$bogus": {}}`},
		{"multiple keys", `{"$collection": {"db": "test", "collection": "foo"}, "$limit": {}}`},
		{"stage arguments are not a document", `{"$collection": "foo"}`},
		{"missing source", `{"$limit": {"limit": 1}}`},
		{"non-integer limit", `{"$limit": {"source": ` + fooJSON + `, "limit": "ten"}}`},
		{"bare string literal", `{"$match": {"source": ` + fooJSON + `, "expr": "abc"}}`},
		{"unknown expression", `{"$match": {"source": ` + fooJSON + `, "expr": {"$frobnicate": []}}}`},
		{"operator arguments are not an array", `{"$match": {"source": ` + fooJSON + `, "expr": {"$sqlEq": 1}}}`},
		{"invalid join type", `{"$join": {"joinType": "cross", "left": ` + fooJSON + `, "right": ` + barJSON + `}}`},
		{"invalid subquery modifier", `{"$match": {"source": ` + fooJSON + `, "expr": {"$subqueryComparison": {
			"op": "eq", "modifier": "some", "arg": "$a", "subquery": {"pipeline": ` + barJSON + `}}}}}`},
		{"query is not a document", `{"$matchQuery": {"source": ` + fooJSON + `, "query": 1}}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseStage(fromJSON(t, test.json))
			require.Error(t, err)
			assert.True(t, ErrMalformedAIR.Is(err), "unexpected error: %v", err)
		})
	}
}
