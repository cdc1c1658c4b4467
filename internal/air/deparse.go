package air

import (
	"fmt"

	"github.com/10gen/mongoast/ast"
	"github.com/10gen/mongoast/parser"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// DeparseStage encodes a pipeline into its BSON form. It is the inverse of
// ParseStage.
func DeparseStage(s Stage) bsoncore.Document {
	switch t := s.(type) {
	case *Collection:
		return namedDoc("$collection",
			bsoncore.AppendStringElement(nil, "db", t.DB),
			bsoncore.AppendStringElement(nil, "collection", t.Collection),
		)
	case *Documents:
		return namedDoc("$documents",
			bsoncore.AppendArrayElement(nil, "array", deparseExprs(t.Array)),
		)
	case *Project:
		names := make([]string, len(t.Specifications))
		exprs := make([]Expression, len(t.Specifications))
		for i, spec := range t.Specifications {
			names[i], exprs[i] = spec.Name, spec.Expr
		}
		return namedDoc("$project",
			sourceElement(t.Source),
			bsoncore.AppendDocumentElement(nil, "specifications", deparseNamedExprs(names, exprs)),
		)
	case *Group:
		return deparseGroup(t)
	case *Limit:
		return namedDoc("$limit",
			sourceElement(t.Source),
			bsoncore.AppendInt64Element(nil, "limit", t.Limit),
		)
	case *Skip:
		return namedDoc("$skip",
			sourceElement(t.Source),
			bsoncore.AppendInt64Element(nil, "skip", t.Skip),
		)
	case *Sort:
		specs := make([][]byte, len(t.Specs))
		for i, spec := range t.Specs {
			direction := int32(1)
			if spec.Descending {
				direction = -1
			}
			specs[i] = bsoncore.AppendInt32Element(nil, spec.Field, direction)
		}
		return namedDoc("$sort",
			sourceElement(t.Source),
			bsoncore.AppendDocumentElement(nil, "specs", bsoncore.BuildDocument(nil, specs...)),
		)
	case *Unwind:
		elems := [][]byte{
			sourceElement(t.Source),
			exprElement("path", t.Path),
		}
		if t.Index != "" {
			elems = append(elems, bsoncore.AppendStringElement(nil, "index", t.Index))
		}
		if t.Outer {
			elems = append(elems, bsoncore.AppendBooleanElement(nil, "outer", true))
		}
		return namedDoc("$unwind", elems...)
	case *ReplaceWith:
		return namedDoc("$replaceWith",
			sourceElement(t.Source),
			exprElement("newRoot", t.NewRoot),
		)
	case *Lookup:
		elems := [][]byte{sourceElement(t.Source)}
		if t.FromDB != "" {
			elems = append(elems, bsoncore.AppendStringElement(nil, "fromDB", t.FromDB))
		}
		if t.FromColl != "" {
			elems = append(elems, bsoncore.AppendStringElement(nil, "fromColl", t.FromColl))
		}
		if t.LetVars != nil {
			elems = append(elems, letElement("let", t.LetVars))
		}
		elems = append(elems,
			bsoncore.AppendDocumentElement(nil, "pipeline", DeparseStage(t.Pipeline)),
			bsoncore.AppendStringElement(nil, "as", t.AsVar),
		)
		return namedDoc("$lookup", elems...)
	case *Join:
		elems := [][]byte{
			bsoncore.AppendStringElement(nil, "joinType", string(t.JoinType)),
			bsoncore.AppendDocumentElement(nil, "left", DeparseStage(t.Left)),
			bsoncore.AppendDocumentElement(nil, "right", DeparseStage(t.Right)),
		}
		if t.LetVars != nil {
			elems = append(elems, letElement("let", t.LetVars))
		}
		if t.Condition != nil {
			elems = append(elems, exprElement("condition", t.Condition))
		}
		return namedDoc("$join", elems...)
	case *UnionWith:
		return namedDoc("$unionWith",
			sourceElement(t.Source),
			bsoncore.AppendDocumentElement(nil, "pipeline", DeparseStage(t.Pipeline)),
		)
	case *ExprLanguage:
		return namedDoc("$match",
			sourceElement(t.Source),
			exprElement("expr", t.Expr),
		)
	case *MatchLanguage:
		return namedDoc("$matchQuery",
			sourceElement(t.Source),
			bsoncore.AppendDocumentElement(nil, "query", DeparseMatchFilter(t.Filter)),
		)
	default:
		panic(fmt.Sprintf("unsupported stage type %T", s))
	}
}

// DeparseMatchFilter returns the native query document of a $match stage.
func DeparseMatchFilter(filter *ast.MatchStage) bsoncore.Document {
	deparsed := parser.DeparsePipeline(ast.NewPipeline(filter))
	stages, err := deparsed.Array().Values()
	if err != nil || len(stages) != 1 {
		panic(fmt.Sprintf("failed to deparse $match filter: %v", err))
	}
	return stages[0].Document().Lookup("$match").Document()
}

func deparseGroup(g *Group) bsoncore.Document {
	names := make([]string, len(g.Keys))
	exprs := make([]Expression, len(g.Keys))
	for i, key := range g.Keys {
		names[i], exprs[i] = key.Name, key.Expr
	}

	aggs := make([]bsoncore.Value, len(g.Aggregations))
	for i, agg := range g.Aggregations {
		elems := [][]byte{
			bsoncore.AppendStringElement(nil, "alias", agg.Alias),
			bsoncore.AppendStringElement(nil, "function", agg.Function),
		}
		if agg.Distinct {
			elems = append(elems, bsoncore.AppendBooleanElement(nil, "distinct", true))
		}
		if agg.Arg != nil {
			elems = append(elems, exprElement("arg", agg.Arg))
		}
		aggs[i] = docValue(bsoncore.BuildDocument(nil, elems...))
	}

	return namedDoc("$group",
		sourceElement(g.Source),
		bsoncore.AppendDocumentElement(nil, "keys", deparseNamedExprs(names, exprs)),
		bsoncore.AppendArrayElement(nil, "aggregations", bsoncore.BuildArray(nil, aggs...)),
	)
}

// DeparseExpression encodes an expression into its BSON form. It is the
// inverse of ParseExpression.
func DeparseExpression(e Expression) bsoncore.Value {
	switch t := e.(type) {
	case *Literal:
		switch t.Value.Type {
		case bsontype.String, bsontype.EmbeddedDocument, bsontype.Array:
			return singleElementValue(bsoncore.AppendValueElement(nil, "$literal", t.Value))
		}
		return t.Value
	case *FieldRef:
		return stringValue("$" + t.DottedName())
	case *Variable:
		return stringValue("$$" + t.DottedName())
	case *Document:
		elems := make([][]byte, len(t.Elements))
		for i, elem := range t.Elements {
			elems[i] = exprElement(elem.Key, elem.Value)
		}
		return singleElementValue(bsoncore.AppendDocumentElement(nil, "$document", bsoncore.BuildDocument(nil, elems...)))
	case *Array:
		return arrayValue(deparseExprs(t.Elements))
	case *SqlSemanticOperator:
		name := t.Op.String()
		return singleElementValue(bsoncore.AppendArrayElement(nil, name, deparseExprs(t.Args)))
	case *MqlSemanticOperator:
		name := t.Op.String()
		return singleElementValue(bsoncore.AppendArrayElement(nil, name, deparseExprs(t.Args)))
	case *GetField:
		return namedArgs("$getField",
			bsoncore.AppendStringElement(nil, "field", t.Field),
			exprElement("input", t.Input),
		)
	case *Let:
		return namedArgs("$let",
			letElement("vars", t.Vars),
			exprElement("in", t.Inside),
		)
	case *Switch:
		branches := make([]bsoncore.Value, len(t.Branches))
		for i, b := range t.Branches {
			branches[i] = docValue(bsoncore.BuildDocument(nil,
				exprElement("case", b.Case),
				exprElement("then", b.Then),
			))
		}
		return namedArgs("$switch",
			bsoncore.AppendArrayElement(nil, "branches", bsoncore.BuildArray(nil, branches...)),
			exprElement("default", t.Default),
		)
	case *Like:
		elems := [][]byte{
			exprElement("input", t.Expr),
			exprElement("pattern", t.Pattern),
		}
		if t.Escape != "" {
			elems = append(elems, bsoncore.AppendStringElement(nil, "escape", t.Escape))
		}
		return namedArgs("$like", elems...)
	case *Is:
		return namedArgs("$is",
			exprElement("input", t.Expr),
			bsoncore.AppendStringElement(nil, "type", t.TargetType),
		)
	case *SqlConvert:
		elems := [][]byte{
			exprElement("input", t.Input),
			bsoncore.AppendStringElement(nil, "to", t.To),
		}
		if t.OnNull != nil {
			elems = append(elems, exprElement("onNull", t.OnNull))
		}
		if t.OnError != nil {
			elems = append(elems, exprElement("onError", t.OnError))
		}
		return namedArgs("$sqlConvert", elems...)
	case *Subquery:
		return namedArgs("$subquery", subqueryElements(t)...)
	case *SubqueryExists:
		elems := make([][]byte, 0, 2)
		if t.LetBindings != nil {
			elems = append(elems, letElement("let", t.LetBindings))
		}
		elems = append(elems, bsoncore.AppendDocumentElement(nil, "pipeline", DeparseStage(t.Pipeline)))
		return namedArgs("$subqueryExists", elems...)
	case *SubqueryComparison:
		return namedArgs("$subqueryComparison",
			bsoncore.AppendStringElement(nil, "op", string(t.Op)),
			bsoncore.AppendStringElement(nil, "modifier", string(t.Modifier)),
			exprElement("arg", t.Arg),
			bsoncore.AppendDocumentElement(nil, "subquery", bsoncore.BuildDocument(nil, subqueryElements(t.Subquery)...)),
		)
	default:
		panic(fmt.Sprintf("unsupported expression type %T", e))
	}
}

func subqueryElements(s *Subquery) [][]byte {
	elems := make([][]byte, 0, 3)
	if s.LetBindings != nil {
		elems = append(elems, letElement("let", s.LetBindings))
	}
	if s.OutputPath != nil {
		path := make([]bsoncore.Value, len(s.OutputPath))
		for i, p := range s.OutputPath {
			path[i] = stringValue(p)
		}
		elems = append(elems, bsoncore.AppendArrayElement(nil, "outputPath", bsoncore.BuildArray(nil, path...)))
	}
	return append(elems, bsoncore.AppendDocumentElement(nil, "pipeline", DeparseStage(s.Pipeline)))
}

func namedDoc(name string, elems ...[]byte) bsoncore.Document {
	return bsoncore.BuildDocument(nil,
		bsoncore.AppendDocumentElement(nil, name, bsoncore.BuildDocument(nil, elems...)))
}

func singleElementValue(elem []byte) bsoncore.Value {
	return docValue(bsoncore.BuildDocument(nil, elem))
}

func namedArgs(name string, elems ...[]byte) bsoncore.Value {
	return docValue(namedDoc(name, elems...))
}

func sourceElement(s Stage) []byte {
	return bsoncore.AppendDocumentElement(nil, "source", DeparseStage(s))
}

func exprElement(key string, e Expression) []byte {
	return bsoncore.AppendValueElement(nil, key, DeparseExpression(e))
}

func letElement(key string, vars []*LetVariable) []byte {
	names := make([]string, len(vars))
	exprs := make([]Expression, len(vars))
	for i, lv := range vars {
		names[i], exprs[i] = lv.Name, lv.Expr
	}
	return bsoncore.AppendDocumentElement(nil, key, deparseNamedExprs(names, exprs))
}

func deparseNamedExprs(names []string, exprs []Expression) bsoncore.Document {
	elems := make([][]byte, len(names))
	for i := range names {
		elems[i] = exprElement(names[i], exprs[i])
	}
	return bsoncore.BuildDocument(nil, elems...)
}

func deparseExprs(exprs []Expression) []byte {
	values := make([]bsoncore.Value, len(exprs))
	for i, e := range exprs {
		values[i] = DeparseExpression(e)
	}
	return bsoncore.BuildArray(nil, values...)
}

func docValue(doc []byte) bsoncore.Value {
	return bsoncore.Value{Type: bsontype.EmbeddedDocument, Data: doc}
}

func arrayValue(arr []byte) bsoncore.Value {
	return bsoncore.Value{Type: bsontype.Array, Data: arr}
}

func stringValue(s string) bsoncore.Value {
	return bsoncore.Value{Type: bsontype.String, Data: bsoncore.AppendString(nil, s)}
}
