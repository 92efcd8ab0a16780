package compiler

import (
	"fmt"
	"strings"
)

// Target registers.
const (
	regFP = "$fp"
	regSP = "$sp"
	regRA = "$ra"
	regV0 = "$v0"
	regA0 = "$a0"
	regT0 = "$t0"
	regT1 = "$t1"
)

// Print and exit syscall numbers.
const (
	sysPrintInt = 1
	sysPrintStr = 4
	sysReadInt  = 5
	sysExit     = 10
)

// codeGen holds all emitter state: the output text, the label counter
// and the string-literal pool. Identical literals share one data label.
type codeGen struct {
	out     strings.Builder
	nextLbl int
	strs    map[string]string
	entry   string
}

// Generate emits assembly text for a resolved, checked program. The
// entry function is emitted under the fixed "main" label so the loader
// always finds it.
func Generate(prog *Program, entry string) string {
	g := &codeGen{strs: make(map[string]string), entry: entry}
	for _, d := range prog.Decls {
		switch d := d.(type) {
		case *VarDecl:
			g.globalVar(d)
		case *FnDecl:
			g.fnDecl(d)
		}
	}
	return g.out.String()
}

// Emission helpers

func (g *codeGen) raw(s string) {
	g.out.WriteString(s)
	g.out.WriteByte('\n')
}

func (g *codeGen) instr(op string, args ...string) {
	fmt.Fprintf(&g.out, "\t%s\t%s\n", op, strings.Join(args, ", "))
}

// indexed emits the off(base) addressing form.
func (g *codeGen) indexed(op, reg string, off int, base string) {
	fmt.Fprintf(&g.out, "\t%s\t%s, %d(%s)\n", op, reg, off, base)
}

func (g *codeGen) label(l string) {
	fmt.Fprintf(&g.out, "%s:\n", l)
}

func (g *codeGen) comment(s string) {
	fmt.Fprintf(&g.out, "\t\t# %s\n", s)
}

func (g *codeGen) newLabel() string {
	l := fmt.Sprintf("L%d", g.nextLbl)
	g.nextLbl++
	return l
}

// push spills reg onto the operand stack.
func (g *codeGen) push(reg string) {
	g.indexed("sw", reg, 0, regSP)
	g.instr("subu", regSP, regSP, "4")
}

// pop loads the operand stack top into reg and discards it.
func (g *codeGen) pop(reg string) {
	g.indexed("lw", reg, 4, regSP)
	g.instr("addu", regSP, regSP, "4")
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}

// Declarations

func (g *codeGen) globalVar(d *VarDecl) {
	sym := d.ID.Sym
	if sym == nil {
		return
	}
	size := wordSize
	if sym.Kind == SymStructInstance {
		size = sym.Def.Size
	}
	g.raw("\t.data")
	g.raw("\t.align 2")
	fmt.Fprintf(&g.out, "_%s:\t.space %d\n", d.ID.Name, size)
}

// fnLabel is the label a call to name jumps to.
func (g *codeGen) fnLabel(name string) string {
	if name == g.entry {
		return "main"
	}
	return "_" + name
}

func (g *codeGen) fnDecl(d *FnDecl) {
	sym := d.ID.Sym
	if sym == nil {
		return
	}
	name := d.ID.Name
	exit := "_" + name + "_Exit"

	g.raw("\t.text")
	if name == g.entry {
		g.raw("\t.globl main")
		g.label("main")
		g.label("__start")
	} else {
		g.label("_" + name)
	}

	g.comment("FUNCTION ENTRY")
	g.push(regRA)
	g.push(regFP)
	g.instr("addu", regFP, regSP, itoa(sym.ParamSize+8))
	g.instr("subu", regSP, regSP, itoa(sym.LocalSize))

	for _, s := range d.Stmts {
		g.stmt(s, exit)
	}

	g.comment("FUNCTION EXIT")
	g.label(exit)
	g.indexed("lw", regRA, -sym.ParamSize, regFP)
	g.instr("move", regT0, regFP)
	g.indexed("lw", regFP, -(sym.ParamSize + 4), regFP)
	g.instr("move", regSP, regT0)
	if name == g.entry {
		g.instr("li", regV0, itoa(sysExit))
		g.instr("syscall")
	} else {
		g.instr("jr", regRA)
	}
}

// Statements

func (g *codeGen) stmts(list []Stmt, exit string) {
	for _, s := range list {
		g.stmt(s, exit)
	}
}

func (g *codeGen) stmt(s Stmt, exit string) {
	switch s := s.(type) {
	case *AssignStmt:
		g.expr(s.Assign)
		g.pop(regT0) // discard the value

	case *PostIncStmt:
		g.incDec(s.Target, "add")

	case *PostDecStmt:
		g.incDec(s.Target, "sub")

	case *ReadStmt:
		g.instr("li", regV0, itoa(sysReadInt))
		g.instr("syscall")
		switch t := s.Target.(type) {
		case *Ident:
			if t.Sym.Global {
				g.instr("sw", regV0, "_"+t.Name)
			} else {
				g.indexed("sw", regV0, t.Sym.Offset, regFP)
			}
		case *DotAccess:
			g.addr(t)
			g.pop(regT0)
			g.indexed("sw", regV0, 0, regT0)
		}

	case *WriteStmt:
		g.expr(s.Value)
		g.pop(regA0)
		if s.typ.IsString() {
			g.instr("li", regV0, itoa(sysPrintStr))
		} else {
			g.instr("li", regV0, itoa(sysPrintInt))
		}
		g.instr("syscall")

	case *IfStmt:
		body := g.newLabel()
		done := g.newLabel()
		g.jump(s.Cond, body, done)
		g.label(body)
		g.stmts(s.Stmts, exit)
		g.label(done)

	case *IfElseStmt:
		thenL := g.newLabel()
		elseL := g.newLabel()
		done := g.newLabel()
		g.jump(s.Cond, thenL, elseL)
		g.label(thenL)
		g.stmts(s.ThenStmts, exit)
		g.instr("j", done)
		g.label(elseL)
		g.stmts(s.ElseStmts, exit)
		g.label(done)

	case *WhileStmt:
		entry := g.newLabel()
		body := g.newLabel()
		done := g.newLabel()
		g.label(entry)
		g.jump(s.Cond, body, done)
		g.label(body)
		g.stmts(s.Stmts, exit)
		g.instr("j", entry)
		g.label(done)

	case *RepeatStmt:
		// The remaining count lives on the operand stack across the
		// body, so nothing the body does can clobber it.
		entry := g.newLabel()
		done := g.newLabel()
		g.expr(s.Count)
		g.label(entry)
		g.pop(regT0)
		g.instr("blez", regT0, done)
		g.instr("sub", regT0, regT0, "1")
		g.push(regT0)
		g.stmts(s.Stmts, exit)
		g.instr("j", entry)
		g.label(done)

	case *CallStmt:
		g.expr(s.Call)
		g.pop(regT0) // discard the result

	case *ReturnStmt:
		if s.Value != nil {
			g.expr(s.Value)
			g.pop(regV0)
		}
		g.instr("j", exit)
	}
}

// incDec rewrites "loc++" / "loc--" as a load, adjust, store.
func (g *codeGen) incDec(target Expr, op string) {
	g.expr(target)
	g.addr(target)
	g.pop(regT1) // address
	g.pop(regT0) // value
	g.instr(op, regT0, regT0, "1")
	g.indexed("sw", regT0, 0, regT1)
}

// Expressions. Every expr emission leaves exactly one word pushed.

func (g *codeGen) expr(e Expr) {
	switch e := e.(type) {
	case *IntLit:
		g.instr("li", regT0, itoa(e.Value))
		g.push(regT0)

	case *BoolLit:
		if e.Value {
			g.instr("li", regT0, "1")
		} else {
			g.instr("li", regT0, "0")
		}
		g.push(regT0)

	case *StrLit:
		g.instr("la", regT0, g.strLabel(e.Raw))
		g.push(regT0)

	case *Ident:
		if e.Sym.Global {
			g.instr("lw", regT0, "_"+e.Name)
		} else {
			g.indexed("lw", regT0, e.Sym.Offset, regFP)
		}
		g.push(regT0)

	case *DotAccess:
		g.addr(e)
		g.pop(regT1)
		g.indexed("lw", regT0, 0, regT1)
		g.push(regT0)

	case *AssignExpr:
		g.assign(e)

	case *CallExpr:
		g.call(e)
		g.push(regV0)

	case *UnaryExpr:
		g.expr(e.Operand)
		g.pop(regT0)
		if e.Op == MINUS {
			g.instr("li", regT1, "-1")
			g.instr("mult", regT0, regT1)
			g.instr("mflo", regT0)
		} else {
			g.instr("seq", regT0, regT0, "0")
		}
		g.push(regT0)

	case *BinaryExpr:
		if isLogicalOp(e.Op) {
			g.andOr(e)
			return
		}
		g.expr(e.Left)
		g.expr(e.Right)
		g.pop(regT1)
		g.pop(regT0)
		switch e.Op {
		case PLUS:
			g.instr("add", regT0, regT0, regT1)
		case MINUS:
			g.instr("sub", regT0, regT0, regT1)
		case STAR:
			g.instr("mult", regT0, regT1)
			g.instr("mflo", regT0)
		case SLASH:
			g.instr("div", regT0, regT1)
			g.instr("mflo", regT0)
		case EQUALS:
			g.instr("seq", regT0, regT0, regT1)
		case NOT_EQ:
			g.instr("sne", regT0, regT0, regT1)
		case LESS:
			g.instr("slt", regT0, regT0, regT1)
		case GREATER:
			g.instr("sgt", regT0, regT0, regT1)
		case LESS_EQ:
			g.instr("sle", regT0, regT0, regT1)
		case GREATER_EQ:
			g.instr("sge", regT0, regT0, regT1)
		}
		g.push(regT0)
	}
}

// andOr emits short-circuit && and ||. The left operand is evaluated
// once; when it decides the result, the right operand is skipped and the
// known value is pushed instead.
func (g *codeGen) andOr(e *BinaryExpr) {
	short := g.newLabel()
	done := g.newLabel()
	g.expr(e.Left)
	g.pop(regT0)
	if e.Op == AND_LOGICAL {
		g.instr("bne", regT0, "1", short)
	} else {
		g.instr("bne", regT0, "0", short)
	}
	g.expr(e.Right) // result of the whole expression
	g.instr("j", done)
	g.label(short)
	if e.Op == AND_LOGICAL {
		g.instr("li", regT0, "0")
	} else {
		g.instr("li", regT0, "1")
	}
	g.push(regT0)
	g.label(done)
}

// assign leaves the assigned value pushed, so a = b = c chains.
func (g *codeGen) assign(e *AssignExpr) {
	g.expr(e.Rhs)
	g.addr(e.Lhs)
	g.pop(regT0) // address
	g.pop(regT1) // value
	g.indexed("sw", regT1, 0, regT0)
	g.push(regT1)
}

// call pushes the arguments left to right and jumps; the callee pops
// them. The result is left in $v0.
func (g *codeGen) call(e *CallExpr) {
	for _, a := range e.Args {
		g.expr(a)
	}
	g.comment("FUNCTION CALL")
	g.instr("jal", g.fnLabel(e.ID.Name))
}

// addr pushes the address of an lvalue. For a dot-access chain the field
// offsets accumulate onto the base variable's address: globals grow
// upward from their data label, locals grow downward from their frame
// slot.
func (g *codeGen) addr(e Expr) {
	switch e := e.(type) {
	case *Ident:
		if e.Sym.Global {
			g.instr("la", regT0, "_"+e.Name)
		} else {
			g.instr("addu", regT0, regFP, itoa(e.Sym.Offset))
		}
		g.push(regT0)

	case *DotAccess:
		total := 0
		cur := e
		for {
			total += cur.ID.Sym.Offset
			loc, ok := cur.Loc.(*DotAccess)
			if !ok {
				break
			}
			cur = loc
		}
		base := cur.Loc.(*Ident)
		if base.Sym.Global {
			g.instr("la", regT0, "_"+base.Name)
			if total != 0 {
				g.instr("addu", regT0, regT0, itoa(total))
			}
		} else {
			g.instr("addu", regT0, regFP, itoa(base.Sym.Offset-total))
		}
		g.push(regT0)
	}
}

// jump evaluates e for control flow: execution continues at trueL when e
// is true and falseL otherwise. Compound boolean shapes branch directly
// instead of materialising a value.
func (g *codeGen) jump(e Expr, trueL, falseL string) {
	switch e := e.(type) {
	case *BoolLit:
		if e.Value {
			g.instr("j", trueL)
		} else {
			g.instr("j", falseL)
		}
		return
	case *UnaryExpr:
		if e.Op == NOT {
			g.jump(e.Operand, falseL, trueL)
			return
		}
	case *BinaryExpr:
		switch e.Op {
		case AND_LOGICAL:
			mid := g.newLabel()
			g.jump(e.Left, mid, falseL)
			g.label(mid)
			g.jump(e.Right, trueL, falseL)
			return
		case OR_LOGICAL:
			mid := g.newLabel()
			g.jump(e.Left, trueL, mid)
			g.label(mid)
			g.jump(e.Right, trueL, falseL)
			return
		}
	}
	g.expr(e)
	g.pop(regT0)
	g.instr("beq", regT0, "0", falseL)
	g.instr("j", trueL)
}

// asciizLiteral rewrites the escapes .asciiz does not share with the
// source language: \' and \? are legal in a string literal here but not
// in the assembler's decoder, and both characters are fine unescaped.
func asciizLiteral(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			next := raw[i+1]
			if next != '\'' && next != '?' {
				b.WriteByte('\\')
			}
			b.WriteByte(next)
			i++
			continue
		}
		b.WriteByte(raw[i])
	}
	return b.String()
}

// strLabel interns a string literal into the data section and returns
// its label. Raw keeps the source quotes and escapes; the escapes the
// assembler does not accept are rewritten first.
func (g *codeGen) strLabel(raw string) string {
	raw = asciizLiteral(raw)
	if l, ok := g.strs[raw]; ok {
		return l
	}
	l := g.newLabel()
	g.strs[raw] = l
	g.raw("\t.data")
	fmt.Fprintf(&g.out, "%s:\t.asciiz %s\n", l, raw)
	g.raw("\t.text")
	return l
}
