package air

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLOpToMQLOp(t *testing.T) {
	mapped := map[SqlOperator]MqlOperator{
		SqlAnd:         MqlAnd,
		SqlOr:          MqlOr,
		SqlNot:         MqlNot,
		SqlEq:          MqlEq,
		SqlNe:          MqlNe,
		SqlLt:          MqlLt,
		SqlLte:         MqlLte,
		SqlGt:          MqlGt,
		SqlGte:         MqlGte,
		SqlSize:        MqlSize,
		SqlStrLenBytes: MqlStrLenBytes,
		SqlStrLenCP:    MqlStrLenCP,
		SqlSubstrCP:    MqlSubstrCP,
		SqlToLower:     MqlToLower,
		SqlToUpper:     MqlToUpper,
		SqlIndexOfCP:   MqlIndexOfCP,
	}

	for op := range sqlOperatorNames {
		t.Run(op.String(), func(t *testing.T) {
			mqlOp, ok := SQLOpToMQLOp(op)
			expected, mappable := mapped[op]
			require.Equal(t, mappable, ok)
			if mappable {
				assert.Equal(t, expected, mqlOp)
			}
		})
	}
}

func TestOperatorNames(t *testing.T) {
	assert.Equal(t, "$sqlOr", SqlOr.String())
	assert.Equal(t, "$coalesce", SqlCoalesce.String())
	assert.Equal(t, "$nullIf", SqlNullIf.String())
	assert.Equal(t, "$or", MqlOr.String())
	assert.Equal(t, "$indexOfCP", MqlIndexOfCP.String())

	for op, name := range sqlOperatorNames {
		assert.Equal(t, op, sqlOperatorsByName[name])
	}
	for op, name := range mqlOperatorNames {
		assert.Equal(t, op, mqlOperatorsByName[name])
	}
}
