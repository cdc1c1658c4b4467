package air

// Node is any stage or expression in an AIR tree.
type Node interface {
	// Walk returns a copy of the node whose children have been replaced by
	// the result of visiting them with v. The receiver is not modified.
	Walk(v Visitor) Node
}

// Visitor visits a single node and returns its replacement.
type Visitor interface {
	Visit(n Node) Node
}

// VisitFunc is the per-node callback of a function visitor. Implementations
// either return a replacement without descending, or continue the traversal
// by returning n.Walk(v).
type VisitFunc func(v Visitor, n Node) Node

type funcVisitor struct {
	f VisitFunc
}

func (fv *funcVisitor) Visit(n Node) Node {
	if n == nil {
		return nil
	}
	return fv.f(fv, n)
}

// NewVisitor wraps f in a Visitor.
func NewVisitor(f VisitFunc) Visitor {
	return &funcVisitor{f: f}
}

// Visit applies f to n and returns the result.
func Visit(n Node, f VisitFunc) Node {
	return NewVisitor(f).Visit(n)
}

func visitStage(v Visitor, s Stage) Stage {
	if s == nil {
		return nil
	}
	return v.Visit(s).(Stage)
}

func visitExpr(v Visitor, e Expression) Expression {
	if e == nil {
		return nil
	}
	return v.Visit(e).(Expression)
}

func visitExprs(v Visitor, exprs []Expression) []Expression {
	if exprs == nil {
		return nil
	}
	out := make([]Expression, len(exprs))
	for i, e := range exprs {
		out[i] = visitExpr(v, e)
	}
	return out
}

func visitLetVariables(v Visitor, vars []*LetVariable) []*LetVariable {
	if vars == nil {
		return nil
	}
	out := make([]*LetVariable, len(vars))
	for i, lv := range vars {
		out[i] = &LetVariable{Name: lv.Name, Expr: visitExpr(v, lv.Expr)}
	}
	return out
}
