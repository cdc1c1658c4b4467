package air

import (
	"strings"

	"github.com/10gen/mongoast/ast"
	"github.com/10gen/mongoast/parser"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrMalformedAIR is returned when a BSON document is not a valid encoding
// of an AIR stage or expression.
var ErrMalformedAIR = errors.NewKind("malformed AIR: %s")

type stageParser func(args argMap) (Stage, error)

type exprParser func(arg bsoncore.Value) (Expression, error)

var stageParsers map[string]stageParser

var exprParsers map[string]exprParser

func init() {
	stageParsers = map[string]stageParser{
		"$collection":  parseCollection,
		"$documents":   parseDocuments,
		"$project":     parseProject,
		"$group":       parseGroup,
		"$limit":       parseLimit,
		"$skip":        parseSkip,
		"$sort":        parseSort,
		"$unwind":      parseUnwind,
		"$replaceWith": parseReplaceWith,
		"$lookup":      parseLookup,
		"$join":        parseJoin,
		"$unionWith":   parseUnionWith,
		"$match":       parseExprLanguage,
		"$matchQuery":  parseMatchLanguage,
	}

	exprParsers = map[string]exprParser{
		"$literal":            parseLiteral,
		"$document":           parseDocument,
		"$getField":           parseGetField,
		"$let":                parseLet,
		"$switch":             parseSwitch,
		"$like":               parseLike,
		"$is":                 parseIs,
		"$sqlConvert":         parseSQLConvert,
		"$subquery":           parseSubqueryExpr,
		"$subqueryExists":     parseSubqueryExists,
		"$subqueryComparison": parseSubqueryComparison,
	}
}

// ParseStage decodes a pipeline from its BSON form.
func ParseStage(doc bsoncore.Document) (Stage, error) {
	name, body, err := singleElement(doc)
	if err != nil {
		return nil, err
	}

	parse, ok := stageParsers[name]
	if !ok {
		return nil, ErrMalformedAIR.New("unknown stage " + name)
	}

	args, err := parseArgs(body, name)
	if err != nil {
		return nil, err
	}

	return parse(args)
}

// ParseExpression decodes an expression from its BSON form. Strings that
// start with "$$" are variables, other strings that start with "$" are field
// references, and non-string scalars are literals.
func ParseExpression(v bsoncore.Value) (Expression, error) {
	switch v.Type {
	case bsontype.String:
		s := v.StringValue()
		switch {
		case strings.HasPrefix(s, "$$"):
			return NewVariable(s[2:]), nil
		case strings.HasPrefix(s, "$"):
			return NewFieldRef(s[1:]), nil
		default:
			return nil, ErrMalformedAIR.New("string literal " + s + " must be wrapped in $literal")
		}
	case bsontype.Array:
		elements, err := parseExprArray(v, "array")
		if err != nil {
			return nil, err
		}
		return &Array{Elements: elements}, nil
	case bsontype.EmbeddedDocument:
		return parseExprDocument(v.Document())
	default:
		return NewLiteral(v), nil
	}
}

func parseExprDocument(doc bsoncore.Document) (Expression, error) {
	name, body, err := singleElement(doc)
	if err != nil {
		return nil, err
	}

	if parse, ok := exprParsers[name]; ok {
		return parse(body)
	}

	if op, ok := sqlOperatorsByName[name]; ok {
		args, err := parseExprArray(body, name)
		if err != nil {
			return nil, err
		}
		return &SqlSemanticOperator{Op: op, Args: args}, nil
	}

	if op, ok := mqlOperatorsByName[name]; ok {
		args, err := parseExprArray(body, name)
		if err != nil {
			return nil, err
		}
		return &MqlSemanticOperator{Op: op, Args: args}, nil
	}

	return nil, ErrMalformedAIR.New("unknown expression " + name)
}

func singleElement(doc bsoncore.Document) (string, bsoncore.Value, error) {
	elements, err := doc.Elements()
	if err != nil {
		return "", bsoncore.Value{}, ErrMalformedAIR.Wrap(err, "invalid document")
	}
	if len(elements) != 1 {
		return "", bsoncore.Value{}, ErrMalformedAIR.New("expected a single-key document, got " + doc.String())
	}
	return elements[0].Key(), elements[0].Value(), nil
}

func parseExprArray(v bsoncore.Value, context string) ([]Expression, error) {
	arr, ok := v.ArrayOK()
	if !ok {
		return nil, ErrMalformedAIR.New(context + " requires an array")
	}
	values, err := arr.Values()
	if err != nil {
		return nil, ErrMalformedAIR.Wrap(err, context)
	}
	exprs := make([]Expression, len(values))
	for i, value := range values {
		if exprs[i], err = ParseExpression(value); err != nil {
			return nil, err
		}
	}
	return exprs, nil
}

// argMap holds the arguments of a stage or of a document-style expression.
type argMap struct {
	context string
	keys    []string
	values  map[string]bsoncore.Value
}

func parseArgs(v bsoncore.Value, context string) (argMap, error) {
	doc, ok := v.DocumentOK()
	if !ok {
		return argMap{}, ErrMalformedAIR.New(context + " requires a document")
	}
	elements, err := doc.Elements()
	if err != nil {
		return argMap{}, ErrMalformedAIR.Wrap(err, context)
	}
	args := argMap{
		context: context,
		keys:    make([]string, len(elements)),
		values:  make(map[string]bsoncore.Value, len(elements)),
	}
	for i, e := range elements {
		args.keys[i] = e.Key()
		args.values[e.Key()] = e.Value()
	}
	return args, nil
}

func (a argMap) missing(key string) error {
	return ErrMalformedAIR.New(a.context + " requires " + key)
}

func (a argMap) invalid(key, want string) error {
	return ErrMalformedAIR.New(a.context + "." + key + " must be " + want)
}

func (a argMap) stage(key string) (Stage, error) {
	v, ok := a.values[key]
	if !ok {
		return nil, a.missing(key)
	}
	doc, ok := v.DocumentOK()
	if !ok {
		return nil, a.invalid(key, "a stage")
	}
	return ParseStage(doc)
}

func (a argMap) expr(key string) (Expression, error) {
	v, ok := a.values[key]
	if !ok {
		return nil, a.missing(key)
	}
	return ParseExpression(v)
}

func (a argMap) optionalExpr(key string) (Expression, error) {
	if _, ok := a.values[key]; !ok {
		return nil, nil
	}
	return a.expr(key)
}

func (a argMap) str(key string) (string, error) {
	v, ok := a.values[key]
	if !ok {
		return "", a.missing(key)
	}
	s, ok := v.StringValueOK()
	if !ok {
		return "", a.invalid(key, "a string")
	}
	return s, nil
}

func (a argMap) optionalStr(key string) (string, error) {
	if _, ok := a.values[key]; !ok {
		return "", nil
	}
	return a.str(key)
}

func (a argMap) int64(key string) (int64, error) {
	v, ok := a.values[key]
	if !ok {
		return 0, a.missing(key)
	}
	if i, ok := v.Int32OK(); ok {
		return int64(i), nil
	}
	if i, ok := v.Int64OK(); ok {
		return i, nil
	}
	return 0, a.invalid(key, "an integer")
}

func (a argMap) optionalBool(key string) (bool, error) {
	v, ok := a.values[key]
	if !ok {
		return false, nil
	}
	b, ok := v.BooleanOK()
	if !ok {
		return false, a.invalid(key, "a boolean")
	}
	return b, nil
}

func (a argMap) nested(key string) (argMap, error) {
	v, ok := a.values[key]
	if !ok {
		return argMap{}, a.missing(key)
	}
	return parseArgs(v, a.context+"."+key)
}

// namedExprs parses a document of name/expression pairs in key order.
func (a argMap) namedExprs(key string) ([]string, []Expression, error) {
	if _, ok := a.values[key]; !ok {
		return nil, nil, nil
	}
	nested, err := a.nested(key)
	if err != nil {
		return nil, nil, err
	}
	exprs := make([]Expression, len(nested.keys))
	for i, name := range nested.keys {
		if exprs[i], err = nested.expr(name); err != nil {
			return nil, nil, err
		}
	}
	return nested.keys, exprs, nil
}

func (a argMap) letVars(key string) ([]*LetVariable, error) {
	names, exprs, err := a.namedExprs(key)
	if err != nil || names == nil {
		return nil, err
	}
	vars := make([]*LetVariable, len(names))
	for i := range names {
		vars[i] = NewLetVariable(names[i], exprs[i])
	}
	return vars, nil
}

func (a argMap) strings(key string) ([]string, error) {
	v, ok := a.values[key]
	if !ok {
		return nil, nil
	}
	arr, ok := v.ArrayOK()
	if !ok {
		return nil, a.invalid(key, "an array of strings")
	}
	values, err := arr.Values()
	if err != nil {
		return nil, ErrMalformedAIR.Wrap(err, a.context+"."+key)
	}
	out := make([]string, len(values))
	for i, value := range values {
		s, ok := value.StringValueOK()
		if !ok {
			return nil, a.invalid(key, "an array of strings")
		}
		out[i] = s
	}
	return out, nil
}

func parseCollection(args argMap) (Stage, error) {
	db, err := args.str("db")
	if err != nil {
		return nil, err
	}
	coll, err := args.str("collection")
	if err != nil {
		return nil, err
	}
	return &Collection{DB: db, Collection: coll}, nil
}

func parseDocuments(args argMap) (Stage, error) {
	v, ok := args.values["array"]
	if !ok {
		return nil, args.missing("array")
	}
	docs, err := parseExprArray(v, "$documents.array")
	if err != nil {
		return nil, err
	}
	return &Documents{Array: docs}, nil
}

func parseProject(args argMap) (Stage, error) {
	source, err := args.stage("source")
	if err != nil {
		return nil, err
	}
	names, exprs, err := args.namedExprs("specifications")
	if err != nil {
		return nil, err
	}
	specs := make([]*ProjectItem, len(names))
	for i := range names {
		specs[i] = &ProjectItem{Name: names[i], Expr: exprs[i]}
	}
	return &Project{Source: source, Specifications: specs}, nil
}

func parseGroup(args argMap) (Stage, error) {
	source, err := args.stage("source")
	if err != nil {
		return nil, err
	}
	names, exprs, err := args.namedExprs("keys")
	if err != nil {
		return nil, err
	}
	keys := make([]*NameExprPair, len(names))
	for i := range names {
		keys[i] = &NameExprPair{Name: names[i], Expr: exprs[i]}
	}

	var aggs []*AccumulatorExpr
	if v, ok := args.values["aggregations"]; ok {
		arr, ok := v.ArrayOK()
		if !ok {
			return nil, args.invalid("aggregations", "an array")
		}
		values, err := arr.Values()
		if err != nil {
			return nil, ErrMalformedAIR.Wrap(err, "$group.aggregations")
		}
		for _, value := range values {
			agg, err := parseArgs(value, "$group.aggregations")
			if err != nil {
				return nil, err
			}
			alias, err := agg.str("alias")
			if err != nil {
				return nil, err
			}
			function, err := agg.str("function")
			if err != nil {
				return nil, err
			}
			distinct, err := agg.optionalBool("distinct")
			if err != nil {
				return nil, err
			}
			arg, err := agg.optionalExpr("arg")
			if err != nil {
				return nil, err
			}
			aggs = append(aggs, &AccumulatorExpr{Alias: alias, Function: function, Distinct: distinct, Arg: arg})
		}
	}
	return &Group{Source: source, Keys: keys, Aggregations: aggs}, nil
}

func parseLimit(args argMap) (Stage, error) {
	source, err := args.stage("source")
	if err != nil {
		return nil, err
	}
	limit, err := args.int64("limit")
	if err != nil {
		return nil, err
	}
	return &Limit{Source: source, Limit: limit}, nil
}

func parseSkip(args argMap) (Stage, error) {
	source, err := args.stage("source")
	if err != nil {
		return nil, err
	}
	skip, err := args.int64("skip")
	if err != nil {
		return nil, err
	}
	return &Skip{Source: source, Skip: skip}, nil
}

func parseSort(args argMap) (Stage, error) {
	source, err := args.stage("source")
	if err != nil {
		return nil, err
	}
	specArgs, err := args.nested("specs")
	if err != nil {
		return nil, err
	}
	specs := make([]*SortSpecification, len(specArgs.keys))
	for i, field := range specArgs.keys {
		direction, err := specArgs.int64(field)
		if err != nil {
			return nil, err
		}
		specs[i] = &SortSpecification{Field: field, Descending: direction < 0}
	}
	return &Sort{Source: source, Specs: specs}, nil
}

func parseUnwind(args argMap) (Stage, error) {
	source, err := args.stage("source")
	if err != nil {
		return nil, err
	}
	path, err := args.expr("path")
	if err != nil {
		return nil, err
	}
	index, err := args.optionalStr("index")
	if err != nil {
		return nil, err
	}
	outer, err := args.optionalBool("outer")
	if err != nil {
		return nil, err
	}
	return &Unwind{Source: source, Path: path, Index: index, Outer: outer}, nil
}

func parseReplaceWith(args argMap) (Stage, error) {
	source, err := args.stage("source")
	if err != nil {
		return nil, err
	}
	newRoot, err := args.expr("newRoot")
	if err != nil {
		return nil, err
	}
	return &ReplaceWith{Source: source, NewRoot: newRoot}, nil
}

func parseLookup(args argMap) (Stage, error) {
	source, err := args.stage("source")
	if err != nil {
		return nil, err
	}
	fromDB, err := args.optionalStr("fromDB")
	if err != nil {
		return nil, err
	}
	fromColl, err := args.optionalStr("fromColl")
	if err != nil {
		return nil, err
	}
	letVars, err := args.letVars("let")
	if err != nil {
		return nil, err
	}
	pipeline, err := args.stage("pipeline")
	if err != nil {
		return nil, err
	}
	as, err := args.str("as")
	if err != nil {
		return nil, err
	}
	return &Lookup{
		Source:   source,
		FromDB:   fromDB,
		FromColl: fromColl,
		LetVars:  letVars,
		Pipeline: pipeline,
		AsVar:    as,
	}, nil
}

func parseJoin(args argMap) (Stage, error) {
	joinType, err := args.str("joinType")
	if err != nil {
		return nil, err
	}
	if JoinType(joinType) != JoinTypeInner && JoinType(joinType) != JoinTypeLeft {
		return nil, args.invalid("joinType", `"inner" or "left"`)
	}
	left, err := args.stage("left")
	if err != nil {
		return nil, err
	}
	right, err := args.stage("right")
	if err != nil {
		return nil, err
	}
	letVars, err := args.letVars("let")
	if err != nil {
		return nil, err
	}
	condition, err := args.optionalExpr("condition")
	if err != nil {
		return nil, err
	}
	return &Join{
		JoinType:  JoinType(joinType),
		Left:      left,
		Right:     right,
		LetVars:   letVars,
		Condition: condition,
	}, nil
}

func parseUnionWith(args argMap) (Stage, error) {
	source, err := args.stage("source")
	if err != nil {
		return nil, err
	}
	pipeline, err := args.stage("pipeline")
	if err != nil {
		return nil, err
	}
	return &UnionWith{Source: source, Pipeline: pipeline}, nil
}

func parseExprLanguage(args argMap) (Stage, error) {
	source, err := args.stage("source")
	if err != nil {
		return nil, err
	}
	expr, err := args.expr("expr")
	if err != nil {
		return nil, err
	}
	return &ExprLanguage{Source: source, Expr: expr}, nil
}

func parseMatchLanguage(args argMap) (Stage, error) {
	source, err := args.stage("source")
	if err != nil {
		return nil, err
	}
	v, ok := args.values["query"]
	if !ok {
		return nil, args.missing("query")
	}
	query, ok := v.DocumentOK()
	if !ok {
		return nil, args.invalid("query", "a document")
	}
	filter, err := ParseMatchFilter(query)
	if err != nil {
		return nil, err
	}
	return &MatchLanguage{Source: source, Filter: filter}, nil
}

// ParseMatchFilter parses a native query document into a $match stage.
func ParseMatchFilter(query bsoncore.Document) (*ast.MatchStage, error) {
	stageDoc := bsoncore.BuildDocument(nil, bsoncore.AppendDocumentElement(nil, "$match", query))
	stage, err := parser.ParseStage(stageDoc)
	if err != nil {
		return nil, ErrMalformedAIR.Wrap(err, "$matchQuery.query")
	}
	match, ok := stage.(*ast.MatchStage)
	if !ok {
		return nil, ErrMalformedAIR.New("$matchQuery.query is not a $match query")
	}
	return match, nil
}

func parseLiteral(arg bsoncore.Value) (Expression, error) {
	return NewLiteral(arg), nil
}

func parseDocument(arg bsoncore.Value) (Expression, error) {
	args, err := parseArgs(arg, "$document")
	if err != nil {
		return nil, err
	}
	elements := make([]*DocumentElement, len(args.keys))
	for i, key := range args.keys {
		value, err := args.expr(key)
		if err != nil {
			return nil, err
		}
		elements[i] = &DocumentElement{Key: key, Value: value}
	}
	return &Document{Elements: elements}, nil
}

func parseGetField(arg bsoncore.Value) (Expression, error) {
	args, err := parseArgs(arg, "$getField")
	if err != nil {
		return nil, err
	}
	field, err := args.str("field")
	if err != nil {
		return nil, err
	}
	input, err := args.expr("input")
	if err != nil {
		return nil, err
	}
	return &GetField{Field: field, Input: input}, nil
}

func parseLet(arg bsoncore.Value) (Expression, error) {
	args, err := parseArgs(arg, "$let")
	if err != nil {
		return nil, err
	}
	vars, err := args.letVars("vars")
	if err != nil {
		return nil, err
	}
	inside, err := args.expr("in")
	if err != nil {
		return nil, err
	}
	return &Let{Vars: vars, Inside: inside}, nil
}

func parseSwitch(arg bsoncore.Value) (Expression, error) {
	args, err := parseArgs(arg, "$switch")
	if err != nil {
		return nil, err
	}
	v, ok := args.values["branches"]
	if !ok {
		return nil, args.missing("branches")
	}
	arr, ok := v.ArrayOK()
	if !ok {
		return nil, args.invalid("branches", "an array")
	}
	values, err := arr.Values()
	if err != nil {
		return nil, ErrMalformedAIR.Wrap(err, "$switch.branches")
	}
	branches := make([]*SwitchCase, len(values))
	for i, value := range values {
		branch, err := parseArgs(value, "$switch.branches")
		if err != nil {
			return nil, err
		}
		c, err := branch.expr("case")
		if err != nil {
			return nil, err
		}
		then, err := branch.expr("then")
		if err != nil {
			return nil, err
		}
		branches[i] = &SwitchCase{Case: c, Then: then}
	}
	def, err := args.expr("default")
	if err != nil {
		return nil, err
	}
	return &Switch{Branches: branches, Default: def}, nil
}

func parseLike(arg bsoncore.Value) (Expression, error) {
	args, err := parseArgs(arg, "$like")
	if err != nil {
		return nil, err
	}
	input, err := args.expr("input")
	if err != nil {
		return nil, err
	}
	pattern, err := args.expr("pattern")
	if err != nil {
		return nil, err
	}
	escape, err := args.optionalStr("escape")
	if err != nil {
		return nil, err
	}
	return &Like{Expr: input, Pattern: pattern, Escape: escape}, nil
}

func parseIs(arg bsoncore.Value) (Expression, error) {
	args, err := parseArgs(arg, "$is")
	if err != nil {
		return nil, err
	}
	input, err := args.expr("input")
	if err != nil {
		return nil, err
	}
	targetType, err := args.str("type")
	if err != nil {
		return nil, err
	}
	return &Is{Expr: input, TargetType: targetType}, nil
}

func parseSQLConvert(arg bsoncore.Value) (Expression, error) {
	args, err := parseArgs(arg, "$sqlConvert")
	if err != nil {
		return nil, err
	}
	input, err := args.expr("input")
	if err != nil {
		return nil, err
	}
	to, err := args.str("to")
	if err != nil {
		return nil, err
	}
	onNull, err := args.optionalExpr("onNull")
	if err != nil {
		return nil, err
	}
	onError, err := args.optionalExpr("onError")
	if err != nil {
		return nil, err
	}
	return &SqlConvert{Input: input, To: to, OnNull: onNull, OnError: onError}, nil
}

func parseSubqueryExpr(arg bsoncore.Value) (Expression, error) {
	subquery, err := parseSubquery(arg, "$subquery")
	if err != nil {
		return nil, err
	}
	return subquery, nil
}

func parseSubquery(arg bsoncore.Value, context string) (*Subquery, error) {
	args, err := parseArgs(arg, context)
	if err != nil {
		return nil, err
	}
	letVars, err := args.letVars("let")
	if err != nil {
		return nil, err
	}
	outputPath, err := args.strings("outputPath")
	if err != nil {
		return nil, err
	}
	pipeline, err := args.stage("pipeline")
	if err != nil {
		return nil, err
	}
	return &Subquery{LetBindings: letVars, OutputPath: outputPath, Pipeline: pipeline}, nil
}

func parseSubqueryExists(arg bsoncore.Value) (Expression, error) {
	args, err := parseArgs(arg, "$subqueryExists")
	if err != nil {
		return nil, err
	}
	letVars, err := args.letVars("let")
	if err != nil {
		return nil, err
	}
	pipeline, err := args.stage("pipeline")
	if err != nil {
		return nil, err
	}
	return &SubqueryExists{LetBindings: letVars, Pipeline: pipeline}, nil
}

func parseSubqueryComparison(arg bsoncore.Value) (Expression, error) {
	args, err := parseArgs(arg, "$subqueryComparison")
	if err != nil {
		return nil, err
	}
	op, err := args.str("op")
	if err != nil {
		return nil, err
	}
	modifier, err := args.str("modifier")
	if err != nil {
		return nil, err
	}
	if SubqueryModifier(modifier) != SubqueryModifierAny && SubqueryModifier(modifier) != SubqueryModifierAll {
		return nil, args.invalid("modifier", `"any" or "all"`)
	}
	compared, err := args.expr("arg")
	if err != nil {
		return nil, err
	}
	v, ok := args.values["subquery"]
	if !ok {
		return nil, args.missing("subquery")
	}
	subquery, err := parseSubquery(v, "$subqueryComparison.subquery")
	if err != nil {
		return nil, err
	}
	return &SubqueryComparison{
		Op:       SubqueryComparisonOp(op),
		Modifier: SubqueryModifier(modifier),
		Arg:      compared,
		Subquery: subquery,
	}, nil
}
