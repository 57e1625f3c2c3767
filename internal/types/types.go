// Package types defines the value type algebra of IFJ23: a primitive
// discriminant crossed with a nullability flag.
package types

// Primitive enumerates the primitive types known to the language.
type Primitive int

const (
	PrimitiveInvalid Primitive = iota // never produced by a successful analysis
	PrimitiveUnknown                  // no constraint from context
	PrimitiveVoid
	PrimitiveNil // the type of the literal nil
	PrimitiveInt
	PrimitiveDouble
	PrimitiveBool
	PrimitiveString
)

var primitiveNames = map[Primitive]string{
	PrimitiveInvalid: "<invalid>",
	PrimitiveUnknown: "<unknown>",
	PrimitiveVoid:    "Void",
	PrimitiveNil:     "nil",
	PrimitiveInt:     "Int",
	PrimitiveDouble:  "Double",
	PrimitiveBool:    "Bool",
	PrimitiveString:  "String",
}

func (p Primitive) String() string {
	if s, ok := primitiveNames[p]; ok {
		return s
	}
	return "<invalid>"
}

// ValueType is a primitive paired with a nullability flag.
type ValueType struct {
	Primitive Primitive
	Nullable  bool
}

// Convenience constructors for the common types.
var (
	Invalid = ValueType{Primitive: PrimitiveInvalid}
	Unknown = ValueType{Primitive: PrimitiveUnknown}
	Void    = ValueType{Primitive: PrimitiveVoid}
	Nil     = ValueType{Primitive: PrimitiveNil, Nullable: true}
	Int     = ValueType{Primitive: PrimitiveInt}
	Double  = ValueType{Primitive: PrimitiveDouble}
	Bool    = ValueType{Primitive: PrimitiveBool}
	String  = ValueType{Primitive: PrimitiveString}
)

// New builds a ValueType from a primitive and a nullability flag.
func New(p Primitive, nullable bool) ValueType {
	return ValueType{Primitive: p, Nullable: nullable}
}

// String renders the type the way it is spelled in source ("Int?", "Double").
func (t ValueType) String() string {
	name := t.Primitive.String()
	if t.Nullable && t.Primitive != PrimitiveNil {
		return name + "?"
	}
	return name
}

// NonNullable returns the unwrapped form of the type.
func (t ValueType) NonNullable() ValueType {
	return ValueType{Primitive: t.Primitive}
}

// AsNullable returns the optional form of the type.
func (t ValueType) AsNullable() ValueType {
	return ValueType{Primitive: t.Primitive, Nullable: true}
}

// IsInvalid reports whether the type is the invalid sentinel.
func (t ValueType) IsInvalid() bool { return t.Primitive == PrimitiveInvalid }

// IsUnknown reports whether the type carries no constraint.
func (t ValueType) IsUnknown() bool { return t.Primitive == PrimitiveUnknown }

// IsVoid reports whether the type is Void.
func (t ValueType) IsVoid() bool { return t.Primitive == PrimitiveVoid }

// IsNil reports whether the type is that of the nil literal.
func (t ValueType) IsNil() bool { return t.Primitive == PrimitiveNil }

// IsScalar reports whether the primitive is one of Int, Double, Bool or
// String, ignoring nullability.
func (t ValueType) IsScalar() bool {
	switch t.Primitive {
	case PrimitiveInt, PrimitiveDouble, PrimitiveBool, PrimitiveString:
		return true
	}
	return false
}

// Equal reports exact equality of primitive and nullability.
func (t ValueType) Equal(other ValueType) bool {
	return t.Primitive == other.Primitive && t.Nullable == other.Nullable
}

// AssignableTo reports whether a value of type t may be stored into a slot
// of type target. Nullable slots accept the matching non-nullable primitive
// and nil; variables never promote Int to Double implicitly (only literals
// do, and the analyser rewrites those before asking).
func (t ValueType) AssignableTo(target ValueType) bool {
	if target.IsUnknown() {
		return !t.IsInvalid()
	}
	if t.IsNil() {
		return target.Nullable
	}
	if t.Primitive != target.Primitive {
		return false
	}
	if t.Nullable && !target.Nullable {
		return false
	}
	return true
}

// ParseName maps a type annotation spelling to its primitive. The second
// return value is false for names that denote no known type.
func ParseName(name string) (Primitive, bool) {
	switch name {
	case "Int":
		return PrimitiveInt, true
	case "Double":
		return PrimitiveDouble, true
	case "Bool":
		return PrimitiveBool, true
	case "String":
		return PrimitiveString, true
	case "Void":
		return PrimitiveVoid, true
	}
	return PrimitiveInvalid, false
}
