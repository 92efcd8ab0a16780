package compiler

// TypeKind enumerates the kinds a Type value can take.
type TypeKind int

const (
	// TypeError marks an expression whose type could not be determined.
	// It is assigned silently: the pass that discovered the fault has
	// already reported it, and every rule involving an error operand
	// stays quiet to avoid cascades.
	TypeError TypeKind = iota
	TypeInt
	TypeBool
	TypeVoid
	TypeString
	TypeStruct    // an instance of a struct type
	TypeStructDef // the struct type name itself
	TypeFn
)

// Type is a small value type; the struct name distinguishes otherwise
// identical struct kinds.
type Type struct {
	Kind       TypeKind
	StructName string // set for TypeStruct and TypeStructDef
}

func ErrorType() Type  { return Type{Kind: TypeError} }
func IntType() Type    { return Type{Kind: TypeInt} }
func BoolType() Type   { return Type{Kind: TypeBool} }
func VoidType() Type   { return Type{Kind: TypeVoid} }
func StringType() Type { return Type{Kind: TypeString} }

func StructType(name string) Type {
	return Type{Kind: TypeStruct, StructName: name}
}
func StructDefType(name string) Type {
	return Type{Kind: TypeStructDef, StructName: name}
}
func FnType() Type { return Type{Kind: TypeFn} }

// Equal reports structural equality: same kind, and for struct kinds the
// same struct name.
func (t Type) Equal(o Type) bool {
	return t.Kind == o.Kind && t.StructName == o.StructName
}

func (t Type) IsError() bool     { return t.Kind == TypeError }
func (t Type) IsInt() bool       { return t.Kind == TypeInt }
func (t Type) IsBool() bool      { return t.Kind == TypeBool }
func (t Type) IsVoid() bool      { return t.Kind == TypeVoid }
func (t Type) IsString() bool    { return t.Kind == TypeString }
func (t Type) IsStruct() bool    { return t.Kind == TypeStruct }
func (t Type) IsStructDef() bool { return t.Kind == TypeStructDef }
func (t Type) IsFn() bool        { return t.Kind == TypeFn }

func (t Type) String() string {
	switch t.Kind {
	case TypeError:
		return "error"
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeVoid:
		return "void"
	case TypeString:
		return "string"
	case TypeStruct, TypeStructDef:
		return "struct " + t.StructName
	case TypeFn:
		return "function"
	}
	return "unknown"
}
