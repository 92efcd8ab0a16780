package compiler

// Type checking runs bottom-up over expressions. Faulty subexpressions
// get the error type, which infects enclosing expressions without any
// further diagnostics: one fault, one message.

type checker struct {
	rep *Reporter
}

// Check type-checks the whole program. Resolution must have run first.
func Check(prog *Program, rep *Reporter) {
	c := &checker{rep: rep}
	for _, d := range prog.Decls {
		if fn, ok := d.(*FnDecl); ok {
			c.fnDecl(fn)
		}
	}
}

func (c *checker) fnDecl(d *FnDecl) {
	ret := d.Ret.Type()
	for _, s := range d.Stmts {
		c.stmt(s, ret)
	}
}

func (c *checker) stmts(list []Stmt, ret Type) {
	for _, s := range list {
		c.stmt(s, ret)
	}
}

func (c *checker) stmt(s Stmt, ret Type) {
	switch s := s.(type) {
	case *AssignStmt:
		c.expr(s.Assign)

	case *PostIncStmt:
		t := c.expr(s.Target)
		if !t.IsError() && !t.IsInt() {
			c.rep.FatalAt(s.Target.Pos(), "Arithmetic operator applied to non-numeric operand")
		}

	case *PostDecStmt:
		t := c.expr(s.Target)
		if !t.IsError() && !t.IsInt() {
			c.rep.FatalAt(s.Target.Pos(), "Arithmetic operator applied to non-numeric operand")
		}

	case *ReadStmt:
		t := c.expr(s.Target)
		switch {
		case t.IsFn():
			c.rep.FatalAt(s.Target.Pos(), "Attempt to read a function")
		case t.IsStructDef():
			c.rep.FatalAt(s.Target.Pos(), "Attempt to read a struct name")
		case t.IsStruct():
			c.rep.FatalAt(s.Target.Pos(), "Attempt to read a struct variable")
		}

	case *WriteStmt:
		t := c.expr(s.Value)
		s.typ = t
		switch {
		case t.IsFn():
			c.rep.FatalAt(s.Value.Pos(), "Attempt to write a function")
		case t.IsStructDef():
			c.rep.FatalAt(s.Value.Pos(), "Attempt to write a struct name")
		case t.IsStruct():
			c.rep.FatalAt(s.Value.Pos(), "Attempt to write a struct variable")
		case t.IsVoid():
			c.rep.FatalAt(s.Value.Pos(), "Attempt to write void")
		}

	case *IfStmt:
		t := c.expr(s.Cond)
		if !t.IsError() && !t.IsBool() {
			c.rep.FatalAt(s.Cond.Pos(), "Non-bool expression used as an if condition")
		}
		c.stmts(s.Stmts, ret)

	case *IfElseStmt:
		t := c.expr(s.Cond)
		if !t.IsError() && !t.IsBool() {
			c.rep.FatalAt(s.Cond.Pos(), "Non-bool expression used as an if condition")
		}
		c.stmts(s.ThenStmts, ret)
		c.stmts(s.ElseStmts, ret)

	case *WhileStmt:
		t := c.expr(s.Cond)
		if !t.IsError() && !t.IsBool() {
			c.rep.FatalAt(s.Cond.Pos(), "Non-bool expression used as a while condition")
		}
		c.stmts(s.Stmts, ret)

	case *RepeatStmt:
		t := c.expr(s.Count)
		if !t.IsError() && !t.IsInt() {
			c.rep.FatalAt(s.Count.Pos(), "Non-integer expression used as a repeat clause")
		}
		c.stmts(s.Stmts, ret)

	case *CallStmt:
		c.expr(s.Call)

	case *ReturnStmt:
		if s.Value == nil {
			if !ret.IsVoid() {
				// A bare return has no expression to point at.
				c.rep.Fatal(0, 0, "Missing return value")
			}
			return
		}
		t := c.expr(s.Value)
		if ret.IsVoid() {
			c.rep.FatalAt(s.Value.Pos(), "Return with a value in a void function")
			return
		}
		if !t.IsError() && !ret.IsError() && !ret.Equal(t) {
			c.rep.FatalAt(s.Value.Pos(), "Bad return value")
		}
	}
}

func (c *checker) expr(e Expr) Type {
	switch e := e.(type) {
	case *IntLit:
		return IntType()
	case *StrLit:
		return StringType()
	case *BoolLit:
		return BoolType()

	case *Ident:
		if e.Sym == nil {
			// Undeclared; resolution already complained.
			return ErrorType()
		}
		return e.Sym.Type

	case *DotAccess:
		c.expr(e.Loc)
		if e.BadAccess || e.ID.Sym == nil {
			return ErrorType()
		}
		return e.ID.Sym.Type

	case *AssignExpr:
		return c.assign(e)

	case *CallExpr:
		return c.call(e)

	case *UnaryExpr:
		t := c.expr(e.Operand)
		if t.IsError() {
			return ErrorType()
		}
		if e.Op == MINUS {
			if !t.IsInt() {
				c.rep.FatalAt(e.Operand.Pos(), "Arithmetic operator applied to non-numeric operand")
				return ErrorType()
			}
			return IntType()
		}
		if !t.IsBool() {
			c.rep.FatalAt(e.Operand.Pos(), "Logical operator applied to non-bool operand")
			return ErrorType()
		}
		return BoolType()

	case *BinaryExpr:
		return c.binary(e)
	}
	return ErrorType()
}

func (c *checker) assign(e *AssignExpr) Type {
	t1 := c.expr(e.Lhs)
	t2 := c.expr(e.Rhs)
	ret := t1

	if t1.IsFn() && t2.IsFn() {
		c.rep.FatalAt(e.Lhs.Pos(), "Function assignment")
		ret = ErrorType()
	}
	if t1.IsStructDef() && t2.IsStructDef() {
		c.rep.FatalAt(e.Lhs.Pos(), "Struct name assignment")
		ret = ErrorType()
	}
	if t1.IsStruct() && t2.IsStruct() {
		c.rep.FatalAt(e.Lhs.Pos(), "Struct variable assignment")
		ret = ErrorType()
	}
	if !t1.Equal(t2) && !t1.IsError() && !t2.IsError() {
		c.rep.FatalAt(e.Lhs.Pos(), "Type mismatch")
		ret = ErrorType()
	}
	if t1.IsError() || t2.IsError() {
		ret = ErrorType()
	}
	return ret
}

func (c *checker) call(e *CallExpr) Type {
	sym := e.ID.Sym
	if sym == nil {
		// Undeclared callee; resolution already complained.
		return ErrorType()
	}
	if sym.Kind != SymFn {
		c.rep.FatalAt(e.ID.P, "Attempt to call a non-function")
		return ErrorType()
	}
	if sym.NumFormals != len(e.Args) {
		c.rep.FatalAt(e.ID.P, "Function call with wrong number of args")
		return sym.Ret
	}
	for i, a := range e.Args {
		actual := c.expr(a)
		if i >= len(sym.Formals) {
			// A formal failed to resolve; its declaration already
			// carries the diagnostic.
			continue
		}
		if !actual.IsError() && !actual.Equal(sym.Formals[i]) {
			c.rep.FatalAt(a.Pos(), "Type of actual does not match type of formal")
		}
	}
	return sym.Ret
}

func (c *checker) binary(e *BinaryExpr) Type {
	t1 := c.expr(e.Left)
	t2 := c.expr(e.Right)

	switch {
	case isArithOp(e.Op):
		ret := IntType()
		if !t1.IsError() && !t1.IsInt() {
			c.rep.FatalAt(e.Left.Pos(), "Arithmetic operator applied to non-numeric operand")
			ret = ErrorType()
		}
		if !t2.IsError() && !t2.IsInt() {
			c.rep.FatalAt(e.Right.Pos(), "Arithmetic operator applied to non-numeric operand")
			ret = ErrorType()
		}
		if t1.IsError() || t2.IsError() {
			ret = ErrorType()
		}
		return ret

	case isRelationalOp(e.Op):
		ret := BoolType()
		if !t1.IsError() && !t1.IsInt() {
			c.rep.FatalAt(e.Left.Pos(), "Relational operator applied to non-numeric operand")
			ret = ErrorType()
		}
		if !t2.IsError() && !t2.IsInt() {
			c.rep.FatalAt(e.Right.Pos(), "Relational operator applied to non-numeric operand")
			ret = ErrorType()
		}
		if t1.IsError() || t2.IsError() {
			ret = ErrorType()
		}
		return ret

	case isLogicalOp(e.Op):
		ret := BoolType()
		if !t1.IsError() && !t1.IsBool() {
			c.rep.FatalAt(e.Left.Pos(), "Logical operator applied to non-bool operand")
			ret = ErrorType()
		}
		if !t2.IsError() && !t2.IsBool() {
			c.rep.FatalAt(e.Right.Pos(), "Logical operator applied to non-bool operand")
			ret = ErrorType()
		}
		if t1.IsError() || t2.IsError() {
			ret = ErrorType()
		}
		return ret

	case isEqualityOp(e.Op):
		ret := BoolType()
		switch {
		case t1.IsVoid() && t2.IsVoid():
			c.rep.FatalAt(e.Left.Pos(), "Equality operator applied to void functions")
			ret = ErrorType()
		case t1.IsFn() && t2.IsFn():
			c.rep.FatalAt(e.Left.Pos(), "Equality operator applied to functions")
			ret = ErrorType()
		case t1.IsStructDef() && t2.IsStructDef():
			c.rep.FatalAt(e.Left.Pos(), "Equality operator applied to struct names")
			ret = ErrorType()
		case t1.IsStruct() && t2.IsStruct():
			c.rep.FatalAt(e.Left.Pos(), "Equality operator applied to struct variables")
			ret = ErrorType()
		case !t1.Equal(t2) && !t1.IsError() && !t2.IsError():
			c.rep.FatalAt(e.Left.Pos(), "Type mismatch")
			ret = ErrorType()
		}
		if t1.IsError() || t2.IsError() {
			ret = ErrorType()
		}
		return ret
	}
	return ErrorType()
}
