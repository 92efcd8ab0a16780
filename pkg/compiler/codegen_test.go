package compiler

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"gibberish/pkg/asm"
)

// gen compiles src and returns the assembly text.
func gen(t *testing.T, src string) string {
	t.Helper()
	var diag bytes.Buffer
	res, err := Compile(src, &diag, Options{})
	if err != nil {
		t.Fatalf("compile failed:\n%s", diag.String())
	}
	return res.Assembly
}

func TestGen_FunctionLabels(t *testing.T) {
	out := gen(t, `
int f(int a) {
	return a;
}
void main() {
	f(1);
}
`)
	for _, want := range []string{"_f:", "_f_Exit:", "\t.globl main", "main:", "__start:", "_main_Exit:"} {
		if !strings.Contains(out, want) {
			t.Errorf("assembly missing %q", want)
		}
	}
	if !strings.Contains(out, "jal\t_f") {
		t.Errorf("call does not target _f:\n%s", out)
	}
}

func TestGen_AssignmentStoreSequence(t *testing.T) {
	out := gen(t, "void main() { int x; x = 5; }")
	// Value then address are pushed; the store goes through the popped
	// address with the value left for the statement to discard.
	idx := strings.Index(out, "sw\t$t1, 0($t0)")
	if idx < 0 {
		t.Fatalf("missing store through address register:\n%s", out)
	}
	if !strings.Contains(out, "addu\t$t0, $fp, -8") {
		t.Errorf("local address not computed off $fp:\n%s", out)
	}
}

func TestGen_GlobalVsLocalExclusive(t *testing.T) {
	out := gen(t, `
int g;
void main() {
	int l;
	g = 1;
	l = g;
}
`)
	if !strings.Contains(out, "_g:\t.space 4") {
		t.Errorf("global g has no data reservation:\n%s", out)
	}
	if !strings.Contains(out, "lw\t$t0, _g") {
		t.Errorf("global load does not go through the label:\n%s", out)
	}
	if !strings.Contains(out, "la\t$t0, _g") {
		t.Errorf("global address does not use la:\n%s", out)
	}
	// The global must never be addressed off the frame pointer.
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "_g") && strings.Contains(line, "($fp)") {
			t.Errorf("global addressed off $fp: %s", line)
		}
	}
}

func TestGen_LabelsUnique(t *testing.T) {
	out := gen(t, `
void main() {
	int i;
	i = 0;
	while (i < 10) {
		if (i < 5) {
			cout << "low\n";
		} else {
			cout << "high\n";
		}
		repeat (2) {
			i++;
		}
	}
}
`)
	defs := regexp.MustCompile(`(?m)^(L\d+):`).FindAllStringSubmatch(out, -1)
	seen := map[string]bool{}
	for _, d := range defs {
		if seen[d[1]] {
			t.Errorf("label %s defined twice", d[1])
		}
		seen[d[1]] = true
	}
	if len(defs) == 0 {
		t.Fatalf("no generated labels found:\n%s", out)
	}
}

func TestGen_RelationalMnemonics(t *testing.T) {
	out := gen(t, `
void main() {
	bool b;
	b = 1 < 2;
	b = 1 > 2;
	b = 1 <= 2;
	b = 1 >= 2;
	b = 1 == 2;
	b = 1 != 2;
}
`)
	for _, want := range []string{"slt", "sgt", "sle", "sge", "seq", "sne"} {
		if !strings.Contains(out, "\t"+want+"\t") {
			t.Errorf("missing %s in:\n%s", want, out)
		}
	}
}

func TestGen_ShortCircuitEvaluatesLeftOnce(t *testing.T) {
	out := gen(t, `
bool f() {
	return true;
}
bool g() {
	return false;
}
void main() {
	bool b;
	b = f() && g();
	b = f() || g();
}
`)
	// Each call site appears exactly once per use: two uses of f, two
	// of g, nothing re-evaluated.
	if got := strings.Count(out, "jal\t_f"); got != 2 {
		t.Errorf("f called %d times in the text, want 2:\n%s", got, out)
	}
	if got := strings.Count(out, "jal\t_g"); got != 2 {
		t.Errorf("g called %d times in the text, want 2:\n%s", got, out)
	}
}

func TestGen_UnaryResultsArePushed(t *testing.T) {
	out := gen(t, `
void main() {
	int x;
	bool b;
	x = -3;
	b = !true;
}
`)
	// After negation the result must land back on the operand stack.
	negIdx := strings.Index(out, "mflo\t$t0")
	if negIdx < 0 {
		t.Fatalf("missing mflo for unary minus:\n%s", out)
	}
	rest := out[negIdx:]
	if !strings.HasPrefix(rest[strings.Index(rest, "\n")+1:], "\tsw\t$t0, 0($sp)") {
		t.Errorf("unary minus result not pushed:\n%s", out)
	}
	if !strings.Contains(out, "seq\t$t0, $t0, 0") {
		t.Errorf("missing seq lowering for logical not:\n%s", out)
	}
}

func TestGen_RepeatUsesCountedLoop(t *testing.T) {
	out := gen(t, `
void main() {
	repeat (3) {
		cout << 1;
	}
}
`)
	if !strings.Contains(out, "\tblez\t$t0") {
		t.Errorf("repeat does not branch on a non-positive count:\n%s", out)
	}
	if !strings.Contains(out, "sub\t$t0, $t0, 1") {
		t.Errorf("repeat does not decrement the count:\n%s", out)
	}
}

func TestGen_StringLiteralsInterned(t *testing.T) {
	out := gen(t, `
void main() {
	cout << "same";
	cout << "same";
	cout << "other";
}
`)
	if got := strings.Count(out, ".asciiz \"same\""); got != 1 {
		t.Errorf("literal emitted %d times, want 1:\n%s", got, out)
	}
	if got := strings.Count(out, ".asciiz \"other\""); got != 1 {
		t.Errorf("second literal emitted %d times, want 1:\n%s", got, out)
	}
}

func TestGen_StringEscapesAssemble(t *testing.T) {
	// \' and \? are legal in a source literal but not in .asciiz; the
	// emitter writes the characters unescaped.
	out := gen(t, `
void main() {
	cout << "a\'b\?c\n";
}
`)
	if !strings.Contains(out, `.asciiz "a'b?c\n"`) {
		t.Errorf("escapes not rewritten for .asciiz:\n%s", out)
	}
	if _, err := asm.Assemble(out); err != nil {
		t.Errorf("emitted text does not assemble: %v", err)
	}
}

func TestGen_SkippedOnErrors(t *testing.T) {
	var diag bytes.Buffer
	res, err := Compile("void main() { x = 1; }", &diag, Options{})
	if err == nil {
		t.Fatal("expected compile to fail")
	}
	if res.Assembly != "" {
		t.Errorf("assembly generated despite errors")
	}
	if res.Errors == 0 {
		t.Errorf("error count not propagated")
	}
}

func TestGen_StructFieldAddressing(t *testing.T) {
	out := gen(t, `
struct Point {
	int x;
	int y;
};
struct Point gp;
void main() {
	struct Point lp;
	gp.y = 1;
	lp.y = 2;
}
`)
	if !strings.Contains(out, "_gp:\t.space 8") {
		t.Errorf("global struct not sized by its definition:\n%s", out)
	}
	// Global field: label plus upward offset.
	if !strings.Contains(out, "la\t$t0, _gp") || !strings.Contains(out, "addu\t$t0, $t0, 4") {
		t.Errorf("global field address not label+offset:\n%s", out)
	}
	// Local field: frame slot minus downward offset. lp sits at -8,
	// so lp.y is -12.
	if !strings.Contains(out, "addu\t$t0, $fp, -12") {
		t.Errorf("local field address not frame-relative:\n%s", out)
	}
}
