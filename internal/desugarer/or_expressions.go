package desugarer

import (
	"github.com/10gen/mongosql-air/internal/air"
)

// OrExpressionsPass rewrites $sqlOr expressions in $match stages into $or,
// along with every $sql-prefixed descendant that has a native equivalent.
// Once a predicate is rooted at a native $or, any mappable SQL operator left
// beneath it would evaluate null and missing differently than the rest of
// the tree, so the whole OR subtree is converted. For example
//
//	{$match: {expr: {$sqlAnd: [
//	    {$sqlOr: [{$sqlEq: ["$a", 1]}, {$sqlEq: ["$b", 2]}]},
//	    {$sqlEq: ["$c", 3]},
//	]}}}
//
// becomes
//
//	{$match: {expr: {$sqlAnd: [
//	    {$or: [{$eq: ["$a", 1]}, {$eq: ["$b", 2]}]},
//	    {$sqlEq: ["$c", 3]},
//	]}}}
//
// Subquery expressions start a new scope: an enclosing $sqlOr has no effect
// on the predicates of the subquery's pipeline.
type OrExpressionsPass struct{}

// Name implements Pass.
func (OrExpressionsPass) Name() string {
	return "orExpressions"
}

// Apply implements Pass. It never fails.
func (OrExpressionsPass) Apply(pipeline air.Stage) (air.Stage, error) {
	return air.Visit(pipeline, desugarMatchStages).(air.Stage), nil
}

// desugarMatchStages finds every $match stage in the pipeline, including
// the ones in sub-pipelines, and desugars the OR expressions in its
// condition. Each condition is desugared independently: the desugarer stops
// at nested pipelines, which this visitor reaches when it walks the
// rewritten condition.
func desugarMatchStages(v air.Visitor, n air.Node) air.Node {
	switch m := n.(type) {
	case *air.MatchLanguage:
		// Native queries are already MQL.
		n = &air.MatchLanguage{Source: m.Source, Filter: m.Filter}
	case *air.ExprLanguage:
		n = &air.ExprLanguage{Source: m.Source, Expr: desugarOrExpressions(m.Expr)}
	}
	return n.Walk(v)
}

// desugarOrExpressions desugars a single $match condition.
func desugarOrExpressions(expr air.Expression) air.Expression {
	return air.Visit(expr, orExpressionsDesugarer{}.visit).(air.Expression)
}

// orExpressionsDesugarer carries whether the node being visited is a
// descendant of a $sqlOr in the current scope. It is never modified; a
// subtree with a different context is walked with a new desugarer, so the
// context of the caller is unchanged once the subtree returns.
type orExpressionsDesugarer struct {
	withinOr bool
}

func (d orExpressionsDesugarer) visit(v air.Visitor, n air.Node) air.Node {
	switch tn := n.(type) {
	case *air.SqlSemanticOperator:
		if tn.Op == air.SqlOr {
			inner := orExpressionsDesugarer{withinOr: true}
			desugared := air.NewMqlSemanticOperator(air.MqlOr, tn.Args...)
			return desugared.Walk(air.NewVisitor(inner.visit))
		}
		return d.desugarSQLOperator(tn).Walk(v)
	case *air.Subquery, *air.SubqueryComparison, *air.SubqueryExists:
		return n.Walk(air.NewVisitor(orExpressionsDesugarer{}.visit))
	case air.Stage:
		return n
	}
	return n.Walk(v)
}

// desugarSQLOperator returns the native form of op when it is within an OR
// and has a native equivalent, and op itself otherwise.
func (d orExpressionsDesugarer) desugarSQLOperator(op *air.SqlSemanticOperator) air.Node {
	if !d.withinOr {
		return op
	}
	mqlOp, ok := air.SQLOpToMQLOp(op.Op)
	if !ok {
		return op
	}
	return air.NewMqlSemanticOperator(mqlOp, op.Args...)
}
