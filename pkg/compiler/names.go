package compiler

// Name resolution links every identifier use to its Symbol, lays out
// activation records (parameter and local offsets relative to $fp) and
// sizes struct types. Errors are reported through the Reporter; an Ident
// that stays unlinked is treated as the error type by the checker.

// wordSize is the byte width of every scalar on the target.
const wordSize = 4

type resolver struct {
	rep      *Reporter
	offset   int  // next free FP-relative offset inside a function
	global   bool // true while outside any function body
	entry    string
	hasEntry bool
}

// Resolve runs name resolution over the whole program. The entry name is
// the function that must exist for the program to be runnable ("main"
// unless the project file says otherwise). The populated global table is
// returned for dumping and tests.
func Resolve(prog *Program, rep *Reporter, entry string) *SymTable {
	tab := NewSymTable()
	r := &resolver{rep: rep, global: true, entry: entry}
	for _, d := range prog.Decls {
		r.decl(tab, d)
	}
	if !r.hasEntry {
		rep.Fatal(0, 0, "No main function")
	}
	return tab
}

func (r *resolver) decl(tab *SymTable, d Decl) {
	switch d := d.(type) {
	case *VarDecl:
		r.varDecl(tab, tab, d)
	case *FnDecl:
		r.fnDecl(tab, d)
	case *StructDecl:
		r.structDecl(tab, d)
	}
}

// declare inserts sym into tab. The caller has already checked for a
// duplicate, so failure means the resolver itself is broken.
func (r *resolver) declare(tab *SymTable, name string, sym *Symbol) {
	if err := tab.AddDecl(name, sym); err != nil {
		panic("resolver: " + err.Error())
	}
}

// varDecl handles a variable or struct-field declaration. Lookups for a
// struct type name go through global, which differs from tab only while
// resolving the fields of a struct definition. Returns the new symbol,
// or nil when the declaration was faulty.
func (r *resolver) varDecl(tab, global *SymTable, d *VarDecl) *Symbol {
	bad := false
	var def *Symbol

	if d.Spec.Kind == SpecVoid {
		r.rep.FatalAt(d.ID.P, "Non-function declared void")
		bad = true
	} else if d.Spec.Kind == SpecStruct {
		sym, ok, _ := global.LookupGlobal(d.Spec.StructID.Name)
		if !ok || sym.Kind != SymStructDef {
			r.rep.FatalAt(d.Spec.StructID.P, "Invalid name of struct type")
			bad = true
		} else {
			d.Spec.StructID.Sym = sym
			def = sym
		}
	}

	if _, dup, _ := tab.LookupLocal(d.ID.Name); dup {
		r.rep.FatalAt(d.ID.P, "Multiply declared identifier")
		bad = true
	}
	if bad {
		return nil
	}

	var sym *Symbol
	if def != nil {
		sym = NewStructInstanceSymbol(def, d.Spec.StructID.Name)
	} else {
		sym = NewVarSymbol(d.Spec.Type())
	}
	if r.global {
		sym.Global = true
	} else {
		size := wordSize
		if def != nil {
			size = def.Size
		}
		sym.Offset = r.offset
		r.offset -= size
	}
	r.declare(tab, d.ID.Name, sym)
	d.ID.Sym = sym
	return sym
}

// structDecl declares a struct type. Fields live in their own table
// owned by the definition symbol; field offsets grow upward from zero so
// an instance occupies Size contiguous bytes.
func (r *resolver) structDecl(tab *SymTable, d *StructDecl) {
	if _, dup, _ := tab.LookupLocal(d.ID.Name); dup {
		r.rep.FatalAt(d.ID.P, "Multiply declared identifier")
		return
	}

	def := NewStructDefSymbol(d.ID.Name)
	def.Global = r.global
	offset := 0
	for _, f := range d.Fields {
		// Field offsets are laid out here, not by varDecl, so the
		// frame counter is untouched while inside a definition.
		wasGlobal := r.global
		r.global = true
		fsym := r.varDecl(def.Fields, tab, f)
		r.global = wasGlobal
		if fsym == nil {
			continue
		}
		fsym.Global = false
		fsym.Offset = offset
		if fsym.Kind == SymStructInstance {
			offset += fsym.Def.Size
		} else {
			offset += wordSize
		}
	}
	def.Size = offset

	r.declare(tab, d.ID.Name, def)
	d.ID.Sym = def
}

func (r *resolver) fnDecl(tab *SymTable, d *FnDecl) {
	var sym *Symbol
	if _, dup, _ := tab.LookupLocal(d.ID.Name); dup {
		r.rep.FatalAt(d.ID.P, "Multiply declared identifier")
	} else {
		if d.ID.Name == r.entry {
			r.hasEntry = true
		}
		sym = NewFnSymbol(d.Ret.Type(), len(d.Formals))
		sym.Global = true
		r.declare(tab, d.ID.Name, sym)
		d.ID.Sym = sym
	}

	tab.AddScope()
	r.global = false
	r.offset = 0

	var formalTypes []Type
	for _, f := range d.Formals {
		if fsym := r.formalDecl(tab, f); fsym != nil {
			formalTypes = append(formalTypes, fsym.Type)
		}
	}
	if sym != nil {
		sym.Formals = formalTypes
		sym.ParamSize = -r.offset
	}

	// Saved return address and caller frame pointer sit between the
	// parameters and the locals.
	r.offset -= 2 * wordSize
	mark := r.offset

	for _, ld := range d.Decls {
		r.decl(tab, ld)
	}
	for _, s := range d.Stmts {
		r.stmt(tab, s)
	}
	if sym != nil {
		sym.LocalSize = mark - r.offset
	}

	r.global = true
	if err := tab.RemoveScope(); err != nil {
		panic("resolver: " + err.Error())
	}
}

func (r *resolver) formalDecl(tab *SymTable, f *FormalDecl) *Symbol {
	bad := false
	if f.Spec.Kind == SpecVoid {
		r.rep.FatalAt(f.ID.P, "Non-function declared void")
		bad = true
	}
	if _, dup, _ := tab.LookupLocal(f.ID.Name); dup {
		r.rep.FatalAt(f.ID.P, "Multiply declared identifier")
		bad = true
	}
	if bad {
		return nil
	}
	sym := NewVarSymbol(f.Spec.Type())
	sym.Offset = r.offset
	r.offset -= wordSize
	r.declare(tab, f.ID.Name, sym)
	f.ID.Sym = sym
	return sym
}

// block resolves a braced block in its own scope.
func (r *resolver) block(tab *SymTable, decls []Decl, stmts []Stmt) {
	tab.AddScope()
	for _, d := range decls {
		r.decl(tab, d)
	}
	for _, s := range stmts {
		r.stmt(tab, s)
	}
	if err := tab.RemoveScope(); err != nil {
		panic("resolver: " + err.Error())
	}
}

func (r *resolver) stmt(tab *SymTable, s Stmt) {
	switch s := s.(type) {
	case *AssignStmt:
		r.expr(tab, s.Assign)
	case *PostIncStmt:
		r.expr(tab, s.Target)
	case *PostDecStmt:
		r.expr(tab, s.Target)
	case *ReadStmt:
		r.expr(tab, s.Target)
	case *WriteStmt:
		r.expr(tab, s.Value)
	case *IfStmt:
		r.expr(tab, s.Cond)
		r.block(tab, s.Decls, s.Stmts)
	case *IfElseStmt:
		r.expr(tab, s.Cond)
		r.block(tab, s.ThenDecls, s.ThenStmts)
		r.block(tab, s.ElseDecls, s.ElseStmts)
	case *WhileStmt:
		r.expr(tab, s.Cond)
		r.block(tab, s.Decls, s.Stmts)
	case *RepeatStmt:
		r.expr(tab, s.Count)
		r.block(tab, s.Decls, s.Stmts)
	case *CallStmt:
		r.expr(tab, s.Call)
	case *ReturnStmt:
		if s.Value != nil {
			r.expr(tab, s.Value)
		}
	}
}

func (r *resolver) expr(tab *SymTable, e Expr) {
	switch e := e.(type) {
	case *Ident:
		sym, ok, _ := tab.LookupGlobal(e.Name)
		if !ok {
			r.rep.FatalAt(e.P, "Undeclared identifier")
			return
		}
		e.Sym = sym
	case *DotAccess:
		r.dotAccess(tab, e)
	case *AssignExpr:
		r.expr(tab, e.Lhs)
		r.expr(tab, e.Rhs)
	case *CallExpr:
		r.expr(tab, e.ID)
		for _, a := range e.Args {
			r.expr(tab, a)
		}
	case *UnaryExpr:
		r.expr(tab, e.Operand)
	case *BinaryExpr:
		r.expr(tab, e.Left)
		r.expr(tab, e.Right)
	}
}

// dotAccess resolves "loc.field". Once any link of the chain is faulty
// the BadAccess flag rides along so only the leftmost fault is reported.
func (r *resolver) dotAccess(tab *SymTable, n *DotAccess) {
	r.expr(tab, n.Loc)

	var fields *SymTable
	switch loc := n.Loc.(type) {
	case *Ident:
		switch {
		case loc.Sym == nil:
			// Undeclared; already reported.
			n.BadAccess = true
		case loc.Sym.Kind == SymStructInstance:
			fields = loc.Sym.Def.Fields
		default:
			r.rep.FatalAt(loc.P, "Dot-access of non-struct type")
			n.BadAccess = true
		}
	case *DotAccess:
		switch {
		case loc.BadAccess:
			n.BadAccess = true
		case loc.Def == nil:
			r.rep.FatalAt(loc.Pos(), "Dot-access of non-struct type")
			n.BadAccess = true
		default:
			fields = loc.Def.Fields
		}
	default:
		r.rep.FatalAt(n.Loc.Pos(), "Dot-access of non-struct type")
		n.BadAccess = true
	}
	if n.BadAccess {
		return
	}

	fsym, ok, _ := fields.LookupGlobal(n.ID.Name)
	if !ok {
		r.rep.FatalAt(n.ID.P, "Invalid struct field name")
		n.BadAccess = true
		return
	}
	n.ID.Sym = fsym
	if fsym.Kind == SymStructInstance {
		n.Def = fsym.Def
	}
}
