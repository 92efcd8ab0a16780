package compiler

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Structural misuse of a SymTable. Lookups signal "not found" with a bool;
// these errors mean the caller itself is broken, not the program under
// compilation.
var (
	ErrEmptyTable      = errors.New("symbol table has no scopes")
	ErrDuplicateSymbol = errors.New("symbol already declared in scope")
	ErrInvalidArgument = errors.New("invalid symbol table argument")
)

// SymKind says what sort of program entity a Symbol names.
type SymKind int

const (
	SymVar SymKind = iota
	SymFn
	SymStructInstance
	SymStructDef
)

// Symbol is one named entity. A single struct carries the data for every
// kind; the constructors below populate the fields the kind uses.
type Symbol struct {
	Kind   SymKind
	Type   Type
	Offset int  // FP-relative offset of a local; meaningless when Global
	Global bool

	// Function symbols only.
	Ret        Type
	NumFormals int    // declared formal count, used for arity checks
	Formals    []Type // types of the formals that resolved cleanly
	ParamSize  int    // bytes of the parameter area
	LocalSize  int    // bytes of the local area

	// Struct definition symbols only.
	Fields *SymTable // field name -> field symbol
	Size   int       // total bytes of one instance

	// Struct instance symbols only.
	Def *Symbol // the definition this instance is an instance of
}

func NewVarSymbol(t Type) *Symbol {
	return &Symbol{Kind: SymVar, Type: t}
}

func NewFnSymbol(ret Type, numFormals int) *Symbol {
	return &Symbol{Kind: SymFn, Type: FnType(), Ret: ret, NumFormals: numFormals}
}

func NewStructDefSymbol(name string) *Symbol {
	return &Symbol{Kind: SymStructDef, Type: StructDefType(name), Fields: NewSymTable()}
}

func NewStructInstanceSymbol(def *Symbol, name string) *Symbol {
	return &Symbol{Kind: SymStructInstance, Type: StructType(name), Def: def}
}

func (s *Symbol) String() string {
	switch s.Kind {
	case SymFn:
		parts := make([]string, len(s.Formals))
		for i, f := range s.Formals {
			parts[i] = f.String()
		}
		return fmt.Sprintf("%s->%s", strings.Join(parts, ","), s.Ret)
	default:
		return s.Type.String()
	}
}

// SymTable is a stack of scopes, innermost first. A fresh table starts
// with a single scope; every AddScope must be paired with a RemoveScope.
type SymTable struct {
	scopes []map[string]*Symbol
}

func NewSymTable() *SymTable {
	return &SymTable{scopes: []map[string]*Symbol{{}}}
}

// AddScope pushes a new empty innermost scope.
func (t *SymTable) AddScope() {
	t.scopes = append([]map[string]*Symbol{{}}, t.scopes...)
}

// AddDecl binds name to sym in the innermost scope.
func (t *SymTable) AddDecl(name string, sym *Symbol) error {
	if len(t.scopes) == 0 {
		return ErrEmptyTable
	}
	if name == "" || sym == nil {
		return ErrInvalidArgument
	}
	if _, ok := t.scopes[0][name]; ok {
		return ErrDuplicateSymbol
	}
	t.scopes[0][name] = sym
	return nil
}

// LookupLocal searches only the innermost scope.
func (t *SymTable) LookupLocal(name string) (*Symbol, bool, error) {
	if len(t.scopes) == 0 {
		return nil, false, ErrEmptyTable
	}
	sym, ok := t.scopes[0][name]
	return sym, ok, nil
}

// LookupGlobal searches all scopes innermost-first, so a declaration in an
// inner scope shadows one of the same name further out.
func (t *SymTable) LookupGlobal(name string) (*Symbol, bool, error) {
	if len(t.scopes) == 0 {
		return nil, false, ErrEmptyTable
	}
	for _, scope := range t.scopes {
		if sym, ok := scope[name]; ok {
			return sym, true, nil
		}
	}
	return nil, false, nil
}

// RemoveScope pops the innermost scope.
func (t *SymTable) RemoveScope() error {
	if len(t.scopes) == 0 {
		return ErrEmptyTable
	}
	t.scopes = t.scopes[1:]
	return nil
}

// NumScopes reports the current scope depth.
func (t *SymTable) NumScopes() int {
	return len(t.scopes)
}

// String dumps the table one scope per block, names sorted, for debugging.
func (t *SymTable) String() string {
	var b strings.Builder
	for i, scope := range t.scopes {
		fmt.Fprintf(&b, "scope %d:\n", i)
		names := make([]string, 0, len(scope))
		for name := range scope {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "  %s %s\n", name, scope[name])
		}
	}
	return b.String()
}
