package air

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// NullLiteral returns a null Literal.
func NullLiteral() *Literal {
	return NewLiteral(bsoncore.Value{Type: bsontype.Null})
}

// BoolLiteral returns a boolean Literal.
func BoolLiteral(b bool) *Literal {
	return NewLiteral(bsoncore.Value{
		Type: bsontype.Boolean,
		Data: bsoncore.AppendBoolean(nil, b),
	})
}

// Int32Literal returns an int32 Literal.
func Int32Literal(i int32) *Literal {
	return NewLiteral(bsoncore.Value{
		Type: bsontype.Int32,
		Data: bsoncore.AppendInt32(nil, i),
	})
}

// StringLiteral returns a string Literal.
func StringLiteral(s string) *Literal {
	return NewLiteral(bsoncore.Value{
		Type: bsontype.String,
		Data: bsoncore.AppendString(nil, s),
	})
}

// NewFieldRef builds a FieldRef from a dotted path such as "a.b.c".
func NewFieldRef(path string) *FieldRef {
	var ref *FieldRef
	for _, part := range strings.Split(path, ".") {
		ref = &FieldRef{Parent: ref, Name: part}
	}
	return ref
}

// NewVariable builds a Variable from a dotted path such as "ROOT.a".
func NewVariable(path string) *Variable {
	var ref *Variable
	for _, part := range strings.Split(path, ".") {
		ref = &Variable{Parent: ref, Name: part}
	}
	return ref
}

// DottedName returns the dotted path of f.
func (f *FieldRef) DottedName() string {
	if f.Parent == nil {
		return f.Name
	}
	return f.Parent.DottedName() + "." + f.Name
}

// DottedName returns the dotted path of vr.
func (vr *Variable) DottedName() string {
	if vr.Parent == nil {
		return vr.Name
	}
	return vr.Parent.DottedName() + "." + vr.Name
}
