package compiler

// The AST is a closed set of node kinds. Passes walk it with type
// switches over the Decl, Stmt and Expr interfaces rather than methods on
// the nodes, so each pass lives in its own file in pass order.

// Program is the root: the top-level declaration list.
type Program struct {
	Decls []Decl
}

// Decl is a top-level or block-local declaration.
type Decl interface {
	declNode()
}

// Stmt is a statement.
type Stmt interface {
	stmtNode()
}

// Expr is an expression. Every expression can report a position for
// diagnostics; for compound nodes it is the position of the leftmost
// interesting leaf, matching where users expect the arrow to point.
type Expr interface {
	exprNode()
	Pos() Pos
}

// TypeSpecKind is the syntactic type written in a declaration.
type TypeSpecKind int

const (
	SpecInt TypeSpecKind = iota
	SpecBool
	SpecVoid
	SpecStruct
)

// TypeSpec is the written form of a type: "int", "bool", "void" or
// "struct name".
type TypeSpec struct {
	Kind     TypeSpecKind
	StructID *Ident // set when Kind is SpecStruct
}

// Type converts the spec into the semantic Type it denotes.
func (ts TypeSpec) Type() Type {
	switch ts.Kind {
	case SpecInt:
		return IntType()
	case SpecBool:
		return BoolType()
	case SpecVoid:
		return VoidType()
	case SpecStruct:
		return StructType(ts.StructID.Name)
	}
	return ErrorType()
}

func (ts TypeSpec) String() string {
	switch ts.Kind {
	case SpecInt:
		return "int"
	case SpecBool:
		return "bool"
	case SpecVoid:
		return "void"
	case SpecStruct:
		return "struct " + ts.StructID.Name
	}
	return "?"
}

// Declarations

// VarDecl declares one variable (or one struct field).
type VarDecl struct {
	Spec TypeSpec
	ID   *Ident
}

// FormalDecl declares one function parameter.
type FormalDecl struct {
	Spec TypeSpec
	ID   *Ident
}

// FnDecl declares a function together with its body. Declarations in the
// body precede statements, per the grammar.
type FnDecl struct {
	Ret     TypeSpec
	ID      *Ident
	Formals []*FormalDecl
	Decls   []Decl
	Stmts   []Stmt
}

// StructDecl declares a struct type and its fields.
type StructDecl struct {
	ID     *Ident
	Fields []*VarDecl
}

func (*VarDecl) declNode()    {}
func (*FnDecl) declNode()     {}
func (*StructDecl) declNode() {}

// Statements

// AssignStmt is an assignment expression in statement position.
type AssignStmt struct {
	Assign *AssignExpr
}

// PostIncStmt is "loc++;".
type PostIncStmt struct {
	Target Expr
}

// PostDecStmt is "loc--;".
type PostDecStmt struct {
	Target Expr
}

// ReadStmt is "cin >> loc;".
type ReadStmt struct {
	Target Expr
}

// WriteStmt is "cout << exp;". The checker records the operand type so
// the generator knows which print syscall to issue.
type WriteStmt struct {
	Value Expr
	typ   Type
}

// IfStmt is an if with no else.
type IfStmt struct {
	Cond  Expr
	Decls []Decl
	Stmts []Stmt
}

// IfElseStmt is an if with an else.
type IfElseStmt struct {
	Cond      Expr
	ThenDecls []Decl
	ThenStmts []Stmt
	ElseDecls []Decl
	ElseStmts []Stmt
}

// WhileStmt is a while loop.
type WhileStmt struct {
	Cond  Expr
	Decls []Decl
	Stmts []Stmt
}

// RepeatStmt runs its body Count times; a non-positive count skips it.
type RepeatStmt struct {
	Count Expr
	Decls []Decl
	Stmts []Stmt
}

// CallStmt is a function call in statement position; the result is
// discarded.
type CallStmt struct {
	Call *CallExpr
}

// ReturnStmt returns from the enclosing function; Value is nil for a
// bare return.
type ReturnStmt struct {
	Value Expr
}

func (*AssignStmt) stmtNode()  {}
func (*PostIncStmt) stmtNode() {}
func (*PostDecStmt) stmtNode() {}
func (*ReadStmt) stmtNode()    {}
func (*WriteStmt) stmtNode()   {}
func (*IfStmt) stmtNode()      {}
func (*IfElseStmt) stmtNode()  {}
func (*WhileStmt) stmtNode()   {}
func (*RepeatStmt) stmtNode()  {}
func (*CallStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode()  {}

// Expressions

// IntLit is an integer literal.
type IntLit struct {
	P     Pos
	Value int
}

// StrLit is a string literal. Raw keeps the quotes and escapes exactly as
// written, which is the form emitted into .asciiz.
type StrLit struct {
	P   Pos
	Raw string
}

// BoolLit is "true" or "false".
type BoolLit struct {
	P     Pos
	Value bool
}

// Ident is a use or declaration of a name. Resolution links Sym; an
// Ident whose Sym is still nil after resolution was undeclared and every
// later pass treats it as the error type.
type Ident struct {
	P    Pos
	Name string
	Sym  *Symbol
}

// DotAccess is "loc.field". Resolution links the field symbol through
// ID.Sym; Def is set to the field's struct definition when the field is
// itself struct-typed, so a chained access can keep resolving. BadAccess
// suppresses cascading diagnostics once the leftmost fault is reported.
type DotAccess struct {
	Loc       Expr
	ID        *Ident
	Def       *Symbol
	BadAccess bool
}

// AssignExpr is "loc = exp"; its value is the assigned value.
type AssignExpr struct {
	Lhs Expr
	Rhs Expr
}

// CallExpr is "f(args)". The callee is always a plain identifier.
type CallExpr struct {
	ID   *Ident
	Args []Expr
}

// UnaryExpr is "-exp" or "!exp"; Op is MINUS or NOT.
type UnaryExpr struct {
	P       Pos
	Op      TokenType
	Operand Expr
}

// BinaryExpr covers the arithmetic, relational, equality and logical
// binary operators.
type BinaryExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

func (*IntLit) exprNode()     {}
func (*StrLit) exprNode()     {}
func (*BoolLit) exprNode()    {}
func (*Ident) exprNode()      {}
func (*DotAccess) exprNode()  {}
func (*AssignExpr) exprNode() {}
func (*CallExpr) exprNode()   {}
func (*UnaryExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}

func (e *IntLit) Pos() Pos     { return e.P }
func (e *StrLit) Pos() Pos     { return e.P }
func (e *BoolLit) Pos() Pos    { return e.P }
func (e *Ident) Pos() Pos      { return e.P }
func (e *DotAccess) Pos() Pos  { return e.Loc.Pos() }
func (e *AssignExpr) Pos() Pos { return e.Lhs.Pos() }
func (e *CallExpr) Pos() Pos   { return e.ID.Pos() }
func (e *UnaryExpr) Pos() Pos  { return e.P }
func (e *BinaryExpr) Pos() Pos { return e.Left.Pos() }

// isArithOp reports whether op is +, -, * or /.
func isArithOp(op TokenType) bool {
	return op == PLUS || op == MINUS || op == STAR || op == SLASH
}

// isRelationalOp reports whether op is <, >, <= or >=.
func isRelationalOp(op TokenType) bool {
	return op == LESS || op == GREATER || op == LESS_EQ || op == GREATER_EQ
}

// isEqualityOp reports whether op is == or !=.
func isEqualityOp(op TokenType) bool {
	return op == EQUALS || op == NOT_EQ
}

// isLogicalOp reports whether op is && or ||.
func isLogicalOp(op TokenType) bool {
	return op == AND_LOGICAL || op == OR_LOGICAL
}
