package air

import (
	"github.com/10gen/mongoast/ast"
)

// Stage is an AIR pipeline stage. A pipeline is represented by its last
// stage; every stage other than Collection and Documents owns the stage
// that feeds it.
type Stage interface {
	Node
	stage()
}

// Collection reads every document of a collection.
type Collection struct {
	DB         string
	Collection string
}

func (*Collection) stage() {}

func (c *Collection) Walk(_ Visitor) Node {
	return &Collection{DB: c.DB, Collection: c.Collection}
}

// Documents produces a fixed array of documents.
type Documents struct {
	Array []Expression
}

func (*Documents) stage() {}

func (d *Documents) Walk(v Visitor) Node {
	return &Documents{Array: visitExprs(v, d.Array)}
}

// ProjectItem is a single output field of a Project.
type ProjectItem struct {
	Name string
	Expr Expression
}

// Project reshapes each document into Specifications.
type Project struct {
	Source         Stage
	Specifications []*ProjectItem
}

func (*Project) stage() {}

func (p *Project) Walk(v Visitor) Node {
	source := visitStage(v, p.Source)
	specs := make([]*ProjectItem, len(p.Specifications))
	for i, s := range p.Specifications {
		specs[i] = &ProjectItem{Name: s.Name, Expr: visitExpr(v, s.Expr)}
	}
	return &Project{Source: source, Specifications: specs}
}

// NameExprPair is a named group key.
type NameExprPair struct {
	Name string
	Expr Expression
}

// AccumulatorExpr is a named aggregation computed per group.
type AccumulatorExpr struct {
	Alias    string
	Function string
	Distinct bool
	Arg      Expression
}

// Group partitions documents by Keys and computes Aggregations per group.
type Group struct {
	Source       Stage
	Keys         []*NameExprPair
	Aggregations []*AccumulatorExpr
}

func (*Group) stage() {}

func (g *Group) Walk(v Visitor) Node {
	source := visitStage(v, g.Source)
	keys := make([]*NameExprPair, len(g.Keys))
	for i, k := range g.Keys {
		keys[i] = &NameExprPair{Name: k.Name, Expr: visitExpr(v, k.Expr)}
	}
	aggs := make([]*AccumulatorExpr, len(g.Aggregations))
	for i, a := range g.Aggregations {
		aggs[i] = &AccumulatorExpr{
			Alias:    a.Alias,
			Function: a.Function,
			Distinct: a.Distinct,
			Arg:      visitExpr(v, a.Arg),
		}
	}
	return &Group{Source: source, Keys: keys, Aggregations: aggs}
}

// Limit passes at most Limit documents.
type Limit struct {
	Source Stage
	Limit  int64
}

func (*Limit) stage() {}

func (l *Limit) Walk(v Visitor) Node {
	return &Limit{Source: visitStage(v, l.Source), Limit: l.Limit}
}

// Skip drops the first Skip documents.
type Skip struct {
	Source Stage
	Skip   int64
}

func (*Skip) stage() {}

func (s *Skip) Walk(v Visitor) Node {
	return &Skip{Source: visitStage(v, s.Source), Skip: s.Skip}
}

// SortSpecification orders by a single field.
type SortSpecification struct {
	Field      string
	Descending bool
}

// Sort orders documents by Specs.
type Sort struct {
	Source Stage
	Specs  []*SortSpecification
}

func (*Sort) stage() {}

func (s *Sort) Walk(v Visitor) Node {
	specs := make([]*SortSpecification, len(s.Specs))
	for i, spec := range s.Specs {
		specs[i] = &SortSpecification{Field: spec.Field, Descending: spec.Descending}
	}
	return &Sort{Source: visitStage(v, s.Source), Specs: specs}
}

// Unwind emits one document per element of the array at Path.
type Unwind struct {
	Source Stage
	Path   Expression
	Index  string
	Outer  bool
}

func (*Unwind) stage() {}

func (u *Unwind) Walk(v Visitor) Node {
	return &Unwind{
		Source: visitStage(v, u.Source),
		Path:   visitExpr(v, u.Path),
		Index:  u.Index,
		Outer:  u.Outer,
	}
}

// ReplaceWith replaces each document with NewRoot.
type ReplaceWith struct {
	Source  Stage
	NewRoot Expression
}

func (*ReplaceWith) stage() {}

func (r *ReplaceWith) Walk(v Visitor) Node {
	return &ReplaceWith{Source: visitStage(v, r.Source), NewRoot: visitExpr(v, r.NewRoot)}
}

// Lookup runs Pipeline against FromDB.FromColl for each document and stores
// the results in AsVar.
type Lookup struct {
	Source   Stage
	FromDB   string
	FromColl string
	LetVars  []*LetVariable
	Pipeline Stage
	AsVar    string
}

func (*Lookup) stage() {}

func (l *Lookup) Walk(v Visitor) Node {
	return &Lookup{
		Source:   visitStage(v, l.Source),
		FromDB:   l.FromDB,
		FromColl: l.FromColl,
		LetVars:  visitLetVariables(v, l.LetVars),
		Pipeline: visitStage(v, l.Pipeline),
		AsVar:    l.AsVar,
	}
}

// JoinType is the kind of a Join.
type JoinType string

// The join types.
const (
	JoinTypeInner JoinType = "inner"
	JoinTypeLeft  JoinType = "left"
)

// Join combines the documents of Left and Right that satisfy Condition. A
// nil Condition joins every pair.
type Join struct {
	JoinType  JoinType
	Left      Stage
	Right     Stage
	LetVars   []*LetVariable
	Condition Expression
}

func (*Join) stage() {}

func (j *Join) Walk(v Visitor) Node {
	return &Join{
		JoinType:  j.JoinType,
		Left:      visitStage(v, j.Left),
		Right:     visitStage(v, j.Right),
		LetVars:   visitLetVariables(v, j.LetVars),
		Condition: visitExpr(v, j.Condition),
	}
}

// UnionWith appends the results of Pipeline to Source.
type UnionWith struct {
	Source   Stage
	Pipeline Stage
}

func (*UnionWith) stage() {}

func (u *UnionWith) Walk(v Visitor) Node {
	return &UnionWith{Source: visitStage(v, u.Source), Pipeline: visitStage(v, u.Pipeline)}
}

// Match is a predicate site: a stage that filters its source either by a
// native query (MatchLanguage) or by an AIR expression (ExprLanguage).
type Match interface {
	Stage
	MatchSource() Stage
}

// MatchLanguage filters with a native $match query. Filter is opaque to AIR
// passes and is carried through unchanged.
type MatchLanguage struct {
	Source Stage
	Filter *ast.MatchStage
}

func (*MatchLanguage) stage() {}

// MatchSource implements Match.
func (m *MatchLanguage) MatchSource() Stage { return m.Source }

func (m *MatchLanguage) Walk(v Visitor) Node {
	return &MatchLanguage{Source: visitStage(v, m.Source), Filter: m.Filter}
}

// ExprLanguage filters with an AIR expression.
type ExprLanguage struct {
	Source Stage
	Expr   Expression
}

func (*ExprLanguage) stage() {}

// MatchSource implements Match.
func (m *ExprLanguage) MatchSource() Stage { return m.Source }

func (m *ExprLanguage) Walk(v Visitor) Node {
	return &ExprLanguage{Source: visitStage(v, m.Source), Expr: visitExpr(v, m.Expr)}
}
