package compiler

import (
	"fmt"
	"strings"
)

// Unparse pretty-prints the AST back as source. Expressions come out
// fully parenthesised, which makes the parse structure visible; that is
// the point of the CLI's --ast flag.
func Unparse(prog *Program) string {
	u := &unparser{}
	for _, d := range prog.Decls {
		u.decl(d)
	}
	return u.b.String()
}

type unparser struct {
	b      strings.Builder
	indent int
}

func (u *unparser) line(format string, args ...any) {
	u.b.WriteString(strings.Repeat("    ", u.indent))
	fmt.Fprintf(&u.b, format, args...)
	u.b.WriteByte('\n')
}

func (u *unparser) decl(d Decl) {
	switch d := d.(type) {
	case *VarDecl:
		u.line("%s %s;", d.Spec, d.ID.Name)
	case *StructDecl:
		u.line("struct %s {", d.ID.Name)
		u.indent++
		for _, f := range d.Fields {
			u.line("%s %s;", f.Spec, f.ID.Name)
		}
		u.indent--
		u.line("};")
	case *FnDecl:
		formals := make([]string, len(d.Formals))
		for i, f := range d.Formals {
			formals[i] = fmt.Sprintf("%s %s", f.Spec, f.ID.Name)
		}
		u.line("%s %s(%s) {", d.Ret, d.ID.Name, strings.Join(formals, ", "))
		u.indent++
		u.body(d.Decls, d.Stmts)
		u.indent--
		u.line("}")
	}
}

func (u *unparser) body(decls []Decl, stmts []Stmt) {
	for _, d := range decls {
		u.decl(d)
	}
	for _, s := range stmts {
		u.stmt(s)
	}
}

func (u *unparser) stmt(s Stmt) {
	switch s := s.(type) {
	case *AssignStmt:
		// No outer parentheses: a statement cannot start with "(".
		u.line("%s = %s;", exprString(s.Assign.Lhs), exprString(s.Assign.Rhs))
	case *PostIncStmt:
		u.line("%s++;", exprString(s.Target))
	case *PostDecStmt:
		u.line("%s--;", exprString(s.Target))
	case *ReadStmt:
		u.line("cin >> %s;", exprString(s.Target))
	case *WriteStmt:
		u.line("cout << %s;", exprString(s.Value))
	case *IfStmt:
		u.line("if (%s) {", exprString(s.Cond))
		u.indent++
		u.body(s.Decls, s.Stmts)
		u.indent--
		u.line("}")
	case *IfElseStmt:
		u.line("if (%s) {", exprString(s.Cond))
		u.indent++
		u.body(s.ThenDecls, s.ThenStmts)
		u.indent--
		u.line("} else {")
		u.indent++
		u.body(s.ElseDecls, s.ElseStmts)
		u.indent--
		u.line("}")
	case *WhileStmt:
		u.line("while (%s) {", exprString(s.Cond))
		u.indent++
		u.body(s.Decls, s.Stmts)
		u.indent--
		u.line("}")
	case *RepeatStmt:
		u.line("repeat (%s) {", exprString(s.Count))
		u.indent++
		u.body(s.Decls, s.Stmts)
		u.indent--
		u.line("}")
	case *CallStmt:
		u.line("%s;", exprString(s.Call))
	case *ReturnStmt:
		if s.Value == nil {
			u.line("return;")
		} else {
			u.line("return %s;", exprString(s.Value))
		}
	}
}

func exprString(e Expr) string {
	switch e := e.(type) {
	case *IntLit:
		return fmt.Sprintf("%d", e.Value)
	case *StrLit:
		return e.Raw
	case *BoolLit:
		if e.Value {
			return "true"
		}
		return "false"
	case *Ident:
		return e.Name
	case *DotAccess:
		return fmt.Sprintf("%s.%s", exprString(e.Loc), e.ID.Name)
	case *AssignExpr:
		return fmt.Sprintf("(%s = %s)", exprString(e.Lhs), exprString(e.Rhs))
	case *CallExpr:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = exprString(a)
		}
		return fmt.Sprintf("%s(%s)", e.ID.Name, strings.Join(args, ", "))
	case *UnaryExpr:
		if e.Op == MINUS {
			return fmt.Sprintf("(-%s)", exprString(e.Operand))
		}
		return fmt.Sprintf("(!%s)", exprString(e.Operand))
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", exprString(e.Left), e.Op, exprString(e.Right))
	}
	return "?"
}
