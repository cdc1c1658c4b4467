package air

// SqlOperator is an operator evaluated with SQL three-valued semantics.
type SqlOperator int

// The SQL semantic operators.
const (
	SqlAnd SqlOperator = iota
	SqlOr
	SqlNot
	SqlEq
	SqlNe
	SqlLt
	SqlLte
	SqlGt
	SqlGte
	SqlBetween
	SqlCoalesce
	SqlNullIf
	SqlNeg
	SqlPos
	SqlSize
	SqlStrLenBytes
	SqlStrLenCP
	SqlSubstrCP
	SqlToLower
	SqlToUpper
	SqlIndexOfCP
	SqlSplit
	SqlSlice
	SqlCos
	SqlSin
	SqlTan
	SqlLog
	SqlMod
	SqlRound
	SqlSqrt
	SqlDivide
	SqlComputedFieldAccess
)

var sqlOperatorNames = map[SqlOperator]string{
	SqlAnd:                 "$sqlAnd",
	SqlOr:                  "$sqlOr",
	SqlNot:                 "$sqlNot",
	SqlEq:                  "$sqlEq",
	SqlNe:                  "$sqlNe",
	SqlLt:                  "$sqlLt",
	SqlLte:                 "$sqlLte",
	SqlGt:                  "$sqlGt",
	SqlGte:                 "$sqlGte",
	SqlBetween:             "$sqlBetween",
	SqlCoalesce:            "$coalesce",
	SqlNullIf:              "$nullIf",
	SqlNeg:                 "$sqlNeg",
	SqlPos:                 "$sqlPos",
	SqlSize:                "$sqlSize",
	SqlStrLenBytes:         "$sqlStrLenBytes",
	SqlStrLenCP:            "$sqlStrLenCP",
	SqlSubstrCP:            "$sqlSubstrCP",
	SqlToLower:             "$sqlToLower",
	SqlToUpper:             "$sqlToUpper",
	SqlIndexOfCP:           "$sqlIndexOfCP",
	SqlSplit:               "$sqlSplit",
	SqlSlice:               "$sqlSlice",
	SqlCos:                 "$sqlCos",
	SqlSin:                 "$sqlSin",
	SqlTan:                 "$sqlTan",
	SqlLog:                 "$sqlLog",
	SqlMod:                 "$sqlMod",
	SqlRound:               "$sqlRound",
	SqlSqrt:                "$sqlSqrt",
	SqlDivide:              "$sqlDivide",
	SqlComputedFieldAccess: "$sqlComputedFieldAccess",
}

func (op SqlOperator) String() string {
	if name, ok := sqlOperatorNames[op]; ok {
		return name
	}
	return "$sqlUnknown"
}

// MqlOperator is an operator evaluated by the MongoDB aggregation engine.
type MqlOperator int

// The native operators.
const (
	MqlAnd MqlOperator = iota
	MqlOr
	MqlNot
	MqlEq
	MqlNe
	MqlLt
	MqlLte
	MqlGt
	MqlGte
	MqlSize
	MqlStrLenBytes
	MqlStrLenCP
	MqlSubstrCP
	MqlToLower
	MqlToUpper
	MqlIndexOfCP
	MqlSplit
	MqlSlice
	MqlCos
	MqlSin
	MqlTan
	MqlLog
	MqlMod
	MqlRound
	MqlSqrt
	MqlAbs
	MqlAdd
	MqlSubtract
	MqlMultiply
	MqlDivide
	MqlConcat
	MqlIfNull
	MqlMergeObjects
	MqlArrayElemAt
)

var mqlOperatorNames = map[MqlOperator]string{
	MqlAnd:          "$and",
	MqlOr:           "$or",
	MqlNot:          "$not",
	MqlEq:           "$eq",
	MqlNe:           "$ne",
	MqlLt:           "$lt",
	MqlLte:          "$lte",
	MqlGt:           "$gt",
	MqlGte:          "$gte",
	MqlSize:         "$size",
	MqlStrLenBytes:  "$strLenBytes",
	MqlStrLenCP:     "$strLenCP",
	MqlSubstrCP:     "$substrCP",
	MqlToLower:      "$toLower",
	MqlToUpper:      "$toUpper",
	MqlIndexOfCP:    "$indexOfCP",
	MqlSplit:        "$split",
	MqlSlice:        "$slice",
	MqlCos:          "$cos",
	MqlSin:          "$sin",
	MqlTan:          "$tan",
	MqlLog:          "$log",
	MqlMod:          "$mod",
	MqlRound:        "$round",
	MqlSqrt:         "$sqrt",
	MqlAbs:          "$abs",
	MqlAdd:          "$add",
	MqlSubtract:     "$subtract",
	MqlMultiply:     "$multiply",
	MqlDivide:       "$divide",
	MqlConcat:       "$concat",
	MqlIfNull:       "$ifNull",
	MqlMergeObjects: "$mergeObjects",
	MqlArrayElemAt:  "$arrayElemAt",
}

func (op MqlOperator) String() string {
	if name, ok := mqlOperatorNames[op]; ok {
		return name
	}
	return "$unknown"
}

var (
	sqlOperatorsByName = make(map[string]SqlOperator, len(sqlOperatorNames))
	mqlOperatorsByName = make(map[string]MqlOperator, len(mqlOperatorNames))
)

func init() {
	for op, name := range sqlOperatorNames {
		sqlOperatorsByName[name] = op
	}
	for op, name := range mqlOperatorNames {
		mqlOperatorsByName[name] = op
	}
}

// sqlToMQLOperators lists the SQL operators whose semantics the native
// engine can express once null and missing operands are ruled out. The
// remaining operators have dedicated desugarers.
var sqlToMQLOperators = map[SqlOperator]MqlOperator{
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

// SQLOpToMQLOp returns the native equivalent of op. The boolean is false
// when op has no native counterpart.
func SQLOpToMQLOp(op SqlOperator) (MqlOperator, bool) {
	mqlOp, ok := sqlToMQLOperators[op]
	return mqlOp, ok
}
