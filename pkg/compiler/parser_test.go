package compiler

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func parse(t *testing.T, src string) (*Program, *Reporter) {
	t.Helper()
	var diag bytes.Buffer
	rep := NewReporter(&diag)
	toks := Lex(src, rep)
	prog := Parse(toks, rep)
	return prog, rep
}

func TestParse_Declarations(t *testing.T) {
	prog, rep := parse(t, `
int g;
struct Point {
	int x;
	int y;
};
struct Point p;
void main() {
}
`)
	if rep.Errors != 0 {
		t.Fatalf("unexpected errors: %d", rep.Errors)
	}
	if len(prog.Decls) != 4 {
		t.Fatalf("got %d decls, want 4", len(prog.Decls))
	}
	if _, ok := prog.Decls[0].(*VarDecl); !ok {
		t.Errorf("decl 0: got %T, want *VarDecl", prog.Decls[0])
	}
	sd, ok := prog.Decls[1].(*StructDecl)
	if !ok {
		t.Fatalf("decl 1: got %T, want *StructDecl", prog.Decls[1])
	}
	if len(sd.Fields) != 2 {
		t.Errorf("struct has %d fields, want 2", len(sd.Fields))
	}
	vd, ok := prog.Decls[2].(*VarDecl)
	if !ok {
		t.Fatalf("decl 2: got %T, want *VarDecl", prog.Decls[2])
	}
	if vd.Spec.Kind != SpecStruct || vd.Spec.StructID.Name != "Point" {
		t.Errorf("decl 2 type spec = %s, want struct Point", vd.Spec)
	}
	if _, ok := prog.Decls[3].(*FnDecl); !ok {
		t.Errorf("decl 3: got %T, want *FnDecl", prog.Decls[3])
	}
}

func TestParse_Precedence(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 * 2 + 3", "((1 * 2) + 3)"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"a < b == c < d", "((a < b) == (c < d))"},
		{"a && b || c", "((a && b) || c)"},
		{"!a && b", "((!a) && b)"},
		{"-x + y", "((-x) + y)"},
		{"a = b = c", "(a = (b = c))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			prog, rep := parse(t, "void main() { x = "+tt.expr+"; }")
			if rep.Errors != 0 {
				t.Fatalf("unexpected errors parsing %q", tt.expr)
			}
			fn := prog.Decls[0].(*FnDecl)
			assign := fn.Stmts[0].(*AssignStmt)
			got := exprString(assign.Assign.Rhs)
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParse_Statements(t *testing.T) {
	prog, rep := parse(t, `
void main() {
	int i;
	cin >> i;
	cout << i + 1;
	i++;
	i--;
	if (i < 3) {
		i = 0;
	} else {
		i = 1;
	}
	while (i < 10) {
		i = i + 1;
	}
	repeat (3) {
		cout << i;
	}
	f(i, true);
	return;
}
`)
	if rep.Errors != 0 {
		t.Fatalf("unexpected errors: %d", rep.Errors)
	}
	fn := prog.Decls[0].(*FnDecl)
	if len(fn.Decls) != 1 {
		t.Errorf("got %d local decls, want 1", len(fn.Decls))
	}
	wantKinds := []string{
		"*compiler.ReadStmt", "*compiler.WriteStmt",
		"*compiler.PostIncStmt", "*compiler.PostDecStmt",
		"*compiler.IfElseStmt", "*compiler.WhileStmt",
		"*compiler.RepeatStmt", "*compiler.CallStmt",
		"*compiler.ReturnStmt",
	}
	if len(fn.Stmts) != len(wantKinds) {
		t.Fatalf("got %d stmts, want %d", len(fn.Stmts), len(wantKinds))
	}
	for i, s := range fn.Stmts {
		if got := fmt.Sprintf("%T", s); got != wantKinds[i] {
			t.Errorf("stmt %d: got %s, want %s", i, got, wantKinds[i])
		}
	}
}

func TestParse_DotAccessChain(t *testing.T) {
	prog, rep := parse(t, "void main() { a.b.c = 1; }")
	if rep.Errors != 0 {
		t.Fatalf("unexpected errors: %d", rep.Errors)
	}
	fn := prog.Decls[0].(*FnDecl)
	assign := fn.Stmts[0].(*AssignStmt)
	if got := exprString(assign.Assign.Lhs); got != "a.b.c" {
		t.Errorf("lhs = %s, want a.b.c", got)
	}
}

func TestParse_SyntaxErrorRecovers(t *testing.T) {
	prog, rep := parse(t, `
void main() {
	int x;
	x = ;
	x = 2;
}
`)
	if rep.Errors == 0 {
		t.Fatal("expected a syntax error")
	}
	// The statement after the bad one still parses.
	fn := prog.Decls[0].(*FnDecl)
	found := false
	for _, s := range fn.Stmts {
		if _, ok := s.(*AssignStmt); ok {
			found = true
		}
	}
	if !found {
		t.Errorf("parser did not recover after the bad statement")
	}
}

func TestUnparse_RoundTrip(t *testing.T) {
	src := `int g;
void main() {
    int x;
    x = (1 + (2 * 3));
    cout << x;
}
`
	prog, rep := parse(t, src)
	if rep.Errors != 0 {
		t.Fatalf("unexpected errors: %d", rep.Errors)
	}
	out := Unparse(prog)
	// An assignment statement must not come out wrapped in parentheses;
	// a statement cannot start with "(".
	if !strings.Contains(out, "x = (1 + (2 * 3));") {
		t.Errorf("assignment statement printed in a non-statement form:\n%s", out)
	}
	prog2, rep2 := parse(t, out)
	if rep2.Errors != 0 {
		t.Fatalf("unparsed output does not reparse:\n%s", out)
	}
	if out2 := Unparse(prog2); out2 != out {
		t.Errorf("unparse is not a fixed point:\nfirst:\n%s\nsecond:\n%s", out, out2)
	}
}
