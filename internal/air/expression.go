package air

import (
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// Expression is an AIR expression.
type Expression interface {
	Node
	expression()
}

// Literal is a constant BSON value.
type Literal struct {
	Value bsoncore.Value
}

// NewLiteral makes a Literal.
func NewLiteral(v bsoncore.Value) *Literal {
	return &Literal{Value: v}
}

func (*Literal) expression() {}

func (l *Literal) Walk(_ Visitor) Node {
	return &Literal{Value: l.Value}
}

// FieldRef references a field of the current document. A nil Parent means
// the field is at the root.
type FieldRef struct {
	Parent *FieldRef
	Name   string
}

func (*FieldRef) expression() {}

func (f *FieldRef) Walk(_ Visitor) Node {
	return &FieldRef{Parent: f.Parent, Name: f.Name}
}

// Variable references a $let, $lookup or $reduce variable, or a field
// reachable from one.
type Variable struct {
	Parent *Variable
	Name   string
}

func (*Variable) expression() {}

func (vr *Variable) Walk(_ Visitor) Node {
	return &Variable{Parent: vr.Parent, Name: vr.Name}
}

// DocumentElement is a single key of a Document expression.
type DocumentElement struct {
	Key   string
	Value Expression
}

// Document builds a document from expressions. Key order is preserved.
type Document struct {
	Elements []*DocumentElement
}

func (*Document) expression() {}

func (d *Document) Walk(v Visitor) Node {
	elements := make([]*DocumentElement, len(d.Elements))
	for i, e := range d.Elements {
		elements[i] = &DocumentElement{Key: e.Key, Value: visitExpr(v, e.Value)}
	}
	return &Document{Elements: elements}
}

// Array builds an array from expressions.
type Array struct {
	Elements []Expression
}

func (*Array) expression() {}

func (a *Array) Walk(v Visitor) Node {
	return &Array{Elements: visitExprs(v, a.Elements)}
}

// SqlSemanticOperator applies a SQL operator with three-valued logic and
// null/missing propagation. Args are ordered.
type SqlSemanticOperator struct {
	Op   SqlOperator
	Args []Expression
}

// NewSqlSemanticOperator makes a SqlSemanticOperator.
func NewSqlSemanticOperator(op SqlOperator, args ...Expression) *SqlSemanticOperator {
	return &SqlSemanticOperator{Op: op, Args: args}
}

func (*SqlSemanticOperator) expression() {}

func (s *SqlSemanticOperator) Walk(v Visitor) Node {
	return &SqlSemanticOperator{Op: s.Op, Args: visitExprs(v, s.Args)}
}

// MqlSemanticOperator applies a native operator. Args are ordered.
type MqlSemanticOperator struct {
	Op   MqlOperator
	Args []Expression
}

// NewMqlSemanticOperator makes a MqlSemanticOperator.
func NewMqlSemanticOperator(op MqlOperator, args ...Expression) *MqlSemanticOperator {
	return &MqlSemanticOperator{Op: op, Args: args}
}

func (*MqlSemanticOperator) expression() {}

func (m *MqlSemanticOperator) Walk(v Visitor) Node {
	return &MqlSemanticOperator{Op: m.Op, Args: visitExprs(v, m.Args)}
}

// GetField reads Field from the document produced by Input.
type GetField struct {
	Field string
	Input Expression
}

func (*GetField) expression() {}

func (g *GetField) Walk(v Visitor) Node {
	return &GetField{Field: g.Field, Input: visitExpr(v, g.Input)}
}

// LetVariable binds Name to the value of Expr.
type LetVariable struct {
	Name string
	Expr Expression
}

// NewLetVariable makes a LetVariable.
func NewLetVariable(name string, expr Expression) *LetVariable {
	return &LetVariable{Name: name, Expr: expr}
}

// Let evaluates Inside with Vars in scope.
type Let struct {
	Vars   []*LetVariable
	Inside Expression
}

func (*Let) expression() {}

func (l *Let) Walk(v Visitor) Node {
	return &Let{Vars: visitLetVariables(v, l.Vars), Inside: visitExpr(v, l.Inside)}
}

// SwitchCase is one branch of a Switch.
type SwitchCase struct {
	Case Expression
	Then Expression
}

// Switch evaluates to the Then of the first branch whose Case is true, or
// to Default.
type Switch struct {
	Branches []*SwitchCase
	Default  Expression
}

func (*Switch) expression() {}

func (s *Switch) Walk(v Visitor) Node {
	branches := make([]*SwitchCase, len(s.Branches))
	for i, b := range s.Branches {
		branches[i] = &SwitchCase{Case: visitExpr(v, b.Case), Then: visitExpr(v, b.Then)}
	}
	return &Switch{Branches: branches, Default: visitExpr(v, s.Default)}
}

// Like matches Expr against a SQL LIKE pattern. An empty Escape means the
// pattern has no escape character.
type Like struct {
	Expr    Expression
	Pattern Expression
	Escape  string
}

func (*Like) expression() {}

func (l *Like) Walk(v Visitor) Node {
	return &Like{Expr: visitExpr(v, l.Expr), Pattern: visitExpr(v, l.Pattern), Escape: l.Escape}
}

// Is checks the BSON type (or missing-ness) of Expr.
type Is struct {
	Expr       Expression
	TargetType string
}

func (*Is) expression() {}

func (i *Is) Walk(v Visitor) Node {
	return &Is{Expr: visitExpr(v, i.Expr), TargetType: i.TargetType}
}

// SqlConvert converts Input to the type named by To.
type SqlConvert struct {
	Input   Expression
	To      string
	OnNull  Expression
	OnError Expression
}

func (*SqlConvert) expression() {}

func (c *SqlConvert) Walk(v Visitor) Node {
	return &SqlConvert{
		Input:   visitExpr(v, c.Input),
		To:      c.To,
		OnNull:  visitExpr(v, c.OnNull),
		OnError: visitExpr(v, c.OnError),
	}
}

// Subquery evaluates Pipeline with LetBindings in scope and returns the
// value at OutputPath of its single result document.
type Subquery struct {
	LetBindings []*LetVariable
	OutputPath  []string
	Pipeline    Stage
}

func (*Subquery) expression() {}

func (s *Subquery) Walk(v Visitor) Node {
	return &Subquery{
		LetBindings: visitLetVariables(v, s.LetBindings),
		OutputPath:  copyStrings(s.OutputPath),
		Pipeline:    visitStage(v, s.Pipeline),
	}
}

// SubqueryModifier is the quantifier of a SubqueryComparison.
type SubqueryModifier string

// The subquery comparison modifiers.
const (
	SubqueryModifierAny SubqueryModifier = "any"
	SubqueryModifierAll SubqueryModifier = "all"
)

// SubqueryComparisonOp is the comparison applied between the argument and
// each subquery result.
type SubqueryComparisonOp string

// The subquery comparison operators.
const (
	SubqueryComparisonEq  SubqueryComparisonOp = "eq"
	SubqueryComparisonNe  SubqueryComparisonOp = "ne"
	SubqueryComparisonLt  SubqueryComparisonOp = "lt"
	SubqueryComparisonLte SubqueryComparisonOp = "lte"
	SubqueryComparisonGt  SubqueryComparisonOp = "gt"
	SubqueryComparisonGte SubqueryComparisonOp = "gte"
)

// SubqueryComparison compares Arg against the results of Subquery, e.g.
// `x > ANY (SELECT ...)`.
type SubqueryComparison struct {
	Op       SubqueryComparisonOp
	Modifier SubqueryModifier
	Arg      Expression
	Subquery *Subquery
}

func (*SubqueryComparison) expression() {}

func (s *SubqueryComparison) Walk(v Visitor) Node {
	var subquery *Subquery
	if s.Subquery != nil {
		subquery = v.Visit(s.Subquery).(*Subquery)
	}
	return &SubqueryComparison{
		Op:       s.Op,
		Modifier: s.Modifier,
		Arg:      visitExpr(v, s.Arg),
		Subquery: subquery,
	}
}

// SubqueryExists is true when Pipeline produces at least one document.
type SubqueryExists struct {
	LetBindings []*LetVariable
	Pipeline    Stage
}

func (*SubqueryExists) expression() {}

func (s *SubqueryExists) Walk(v Visitor) Node {
	return &SubqueryExists{
		LetBindings: visitLetVariables(v, s.LetBindings),
		Pipeline:    visitStage(v, s.Pipeline),
	}
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
