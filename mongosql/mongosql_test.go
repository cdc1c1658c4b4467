package mongosql_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/10gen/mongosql-air/internal/desugarer"
	"github.com/10gen/mongosql-air/mongosql"
	"github.com/10gen/mongosql-air/mongosql/internal/util"
	"go.mongodb.org/mongo-driver/bson"
)

func TestVersion(t *testing.T) {
	v := mongosql.Version()

	parts := strings.SplitN(v, "-", 2)

	release := parts[0]
	releaseParts := strings.Split(release, ".")
	if len(releaseParts) != 3 {
		t.Fatalf("expected version %q to have three release parts", v)
	}

	if len(parts) == 2 {
		preRelease := parts[1]
		if len(preRelease) < 1 {
			t.Fatalf("expected version %q to have non-empty pre-release", v)
		}
	}
}

func orMatch(or string, eq string) bson.D {
	return bson.D{{"$match", bson.D{
		{"source", util.CollectionStage("test", "foo")},
		{"expr", bson.D{{or, bson.A{
			bson.D{{eq, bson.A{"$a", int32(1)}}},
		}}}},
	}}}
}

func TestDesugar(t *testing.T) {
	desugaring, err := mongosql.Desugar(mongosql.DesugarArgs{
		Pipeline: util.MarshalPipeline(t, orMatch("$sqlOr", "$sqlEq")),
	})
	if err != nil {
		t.Fatalf("expected err to be nil, got '%s'", err)
	}

	util.CheckPipeline(t, orMatch("$or", "$eq"), desugaring.Pipeline)
}

func TestDesugarNamedPasses(t *testing.T) {
	desugaring, err := mongosql.Desugar(mongosql.DesugarArgs{
		Pipeline: util.MarshalPipeline(t, orMatch("$sqlOr", "$sqlEq")),
		Passes:   []string{"orExpressions", "orExpressions"},
	})
	if err != nil {
		t.Fatalf("expected err to be nil, got '%s'", err)
	}

	util.CheckPipeline(t, orMatch("$or", "$eq"), desugaring.Pipeline)
}

func TestDesugarErrors(t *testing.T) {
	_, err := mongosql.Desugar(mongosql.DesugarArgs{
		Pipeline: util.MarshalPipeline(t, orMatch("$sqlOr", "$sqlEq")),
		Passes:   []string{"desugarJoins"},
	})
	if !desugarer.ErrUnknownPass.Is(err) {
		t.Fatalf("expected an unknown pass error, got '%v'", err)
	}

	_, err = mongosql.Desugar(mongosql.DesugarArgs{
		Pipeline: util.MarshalPipeline(t, bson.D{{"$select", "*"}}),
	})
	var internalErr *mongosql.InternalError
	if !errors.As(err, &internalErr) {
		t.Fatalf("expected an internal error, got '%v'", err)
	}
}
