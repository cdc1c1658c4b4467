package desugarer

import (
	"testing"

	"github.com/10gen/mongosql-air/internal/air"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

func TestDesugar(t *testing.T) {

	tests := []struct {
		name      string
		file      string
		desugarer Pass
	}{
		{
			name:      "desugarOrExpressions",
			file:      "or_expressions.json",
			desugarer: OrExpressionsPass{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			testCases := LoadTestCases(test.file)

			for _, tc := range testCases {
				t.Run(tc.Name, func(t *testing.T) {
					if tc.Skip != nil {
						t.Skip(*tc.Skip)
					}
					in, err := air.ParseStage(tc.Input)
					if err != nil {
						t.Fatalf("Failed to parse input pipeline: %v", err)
					}
					expected, err := air.ParseStage(tc.Expected)
					if err != nil {
						t.Fatalf("Failed to parse expected pipeline: %v", err)
					}
					actual, err := RunPasses(in, test.desugarer)
					if err != nil {
						t.Fatalf("Failed to desugar pipeline: %v", err)
					}

					expectedStr := air.DeparseStage(expected).String()
					actualStr := air.DeparseStage(actual).String()

					if !cmp.Equal(expectedStr, actualStr) {
						t.Fatalf("\nexpected:\n %s\ngot:\n %s", expectedStr, actualStr)
					}
				})
			}
		})
	}
}

type failingPass struct {
	err error
}

func (failingPass) Name() string { return "failing" }

func (p failingPass) Apply(air.Stage) (air.Stage, error) { return nil, p.err }

type recordingPass struct {
	name string
	seen *[]string
}

func (p recordingPass) Name() string { return p.name }

func (p recordingPass) Apply(pipeline air.Stage) (air.Stage, error) {
	*p.seen = append(*p.seen, p.name)
	return pipeline, nil
}

func TestRunPasses(t *testing.T) {
	collection := &air.Collection{DB: "test", Collection: "foo"}

	t.Run("applies passes in order", func(t *testing.T) {
		var seen []string
		_, err := RunPasses(collection,
			recordingPass{name: "first", seen: &seen},
			recordingPass{name: "second", seen: &seen},
		)
		require.NoError(t, err)
		require.Equal(t, []string{"first", "second"}, seen)
	})

	t.Run("stops at the first failing pass", func(t *testing.T) {
		var seen []string
		cause := ErrUnknownPass.New("cause")
		_, err := RunPasses(collection,
			failingPass{err: cause},
			recordingPass{name: "after", seen: &seen},
		)
		require.Error(t, err)
		require.True(t, ErrPassFailed.Is(err))
		require.Empty(t, seen)
	})

	t.Run("rejects a nil pipeline", func(t *testing.T) {
		_, err := RunPasses(nil, OrExpressionsPass{})
		require.True(t, ErrNilPipeline.Is(err))
	})

	t.Run("no passes returns the input", func(t *testing.T) {
		out, err := RunPasses(collection)
		require.NoError(t, err)
		require.Equal(t, collection, out)
	})
}

func TestPassByName(t *testing.T) {
	p, err := PassByName("orExpressions")
	require.NoError(t, err)
	require.Equal(t, OrExpressionsPass{}, p)

	_, err = PassByName("desugarJoins")
	require.True(t, ErrUnknownPass.Is(err))

	passes, err := PassesByName([]string{"orExpressions"})
	require.NoError(t, err)
	require.Equal(t, DefaultPasses(), passes)
}

func TestDesugarBSON(t *testing.T) {
	input := air.DeparseStage(&air.ExprLanguage{
		Source: &air.Collection{DB: "test", Collection: "foo"},
		Expr: air.NewSqlSemanticOperator(air.SqlOr,
			air.NewSqlSemanticOperator(air.SqlEq, air.NewFieldRef("a"), air.Int32Literal(1)),
			air.NewSqlSemanticOperator(air.SqlLt, air.NewFieldRef("b"), air.Int32Literal(2)),
		),
	})

	out, err := Desugar(input, DefaultPasses()...)
	require.NoError(t, err)

	expected := air.DeparseStage(&air.ExprLanguage{
		Source: &air.Collection{DB: "test", Collection: "foo"},
		Expr: air.NewMqlSemanticOperator(air.MqlOr,
			air.NewMqlSemanticOperator(air.MqlEq, air.NewFieldRef("a"), air.Int32Literal(1)),
			air.NewMqlSemanticOperator(air.MqlLt, air.NewFieldRef("b"), air.Int32Literal(2)),
		),
	})
	require.Equal(t, expected.String(), out.String())

	_, err = Desugar(bsoncore.BuildDocument(nil, bsoncore.AppendStringElement(nil, "$bogus", "x")))
	require.True(t, air.ErrMalformedAIR.Is(err))
}
