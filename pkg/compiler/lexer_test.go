package compiler

import (
	"bytes"
	"testing"
)

func lex(t *testing.T, src string) ([]Token, *Reporter) {
	t.Helper()
	var diag bytes.Buffer
	rep := NewReporter(&diag)
	toks := Lex(src, rep)
	return toks, rep
}

func types(toks []Token) []TokenType {
	out := make([]TokenType, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestLex_Keywords(t *testing.T) {
	toks, rep := lex(t, "int bool void struct cin cout if else while repeat return true false")
	if rep.Errors != 0 {
		t.Fatalf("unexpected errors: %d", rep.Errors)
	}
	want := []TokenType{INT, BOOL, VOID, STRUCT, CIN, COUT, IF, ELSE, WHILE, REPEAT, RETURN, TRUE, FALSE, EOF}
	got := types(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLex_Operators(t *testing.T) {
	tests := []struct {
		src  string
		want TokenType
	}{
		{"<<", WRITE_OP},
		{">>", READ_OP},
		{"++", PLUS_PLUS},
		{"--", MINUS_MINUS},
		{"<=", LESS_EQ},
		{">=", GREATER_EQ},
		{"==", EQUALS},
		{"!=", NOT_EQ},
		{"&&", AND_LOGICAL},
		{"||", OR_LOGICAL},
		{"=", ASSIGN},
		{"<", LESS},
		{">", GREATER},
		{"!", NOT},
		{"+", PLUS},
		{"-", MINUS},
		{"*", STAR},
		{"/", SLASH},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks, rep := lex(t, tt.src)
			if rep.Errors != 0 {
				t.Fatalf("unexpected errors lexing %q", tt.src)
			}
			if toks[0].Type != tt.want {
				t.Errorf("got %s, want %s", toks[0].Type, tt.want)
			}
		})
	}
}

func TestLex_IntLiteral(t *testing.T) {
	toks, _ := lex(t, "0 7 42")
	wantVals := []int{0, 7, 42}
	for i, want := range wantVals {
		if toks[i].Type != INTLIT || toks[i].IntVal != want {
			t.Errorf("token %d: got %v (%d), want INTLIT %d", i, toks[i].Type, toks[i].IntVal, want)
		}
	}
}

func TestLex_StringLiteralKeepsRawForm(t *testing.T) {
	toks, rep := lex(t, `"hello\n"`)
	if rep.Errors != 0 {
		t.Fatalf("unexpected errors: %d", rep.Errors)
	}
	if toks[0].Type != STRINGLIT {
		t.Fatalf("got %s, want STRINGLIT", toks[0].Type)
	}
	if toks[0].Lexeme != `"hello\n"` {
		t.Errorf("lexeme = %q, want the quotes and escape kept", toks[0].Lexeme)
	}
}

func TestLex_Positions(t *testing.T) {
	toks, _ := lex(t, "int x;\n  x = 2;")
	// int(1:1) x(1:5) ;(1:6) x(2:3) =(2:5) 2(2:7)
	checks := []struct{ idx, line, col int }{
		{0, 1, 1},
		{1, 1, 5},
		{2, 1, 6},
		{3, 2, 3},
		{4, 2, 5},
		{5, 2, 7},
	}
	for _, c := range checks {
		tok := toks[c.idx]
		if tok.Line != c.line || tok.Col != c.col {
			t.Errorf("token %d (%s): at %d:%d, want %d:%d", c.idx, tok, tok.Line, tok.Col, c.line, c.col)
		}
	}
}

func TestLex_Comments(t *testing.T) {
	toks, rep := lex(t, "int // trailing words\n# a whole line\nx")
	if rep.Errors != 0 {
		t.Fatalf("unexpected errors: %d", rep.Errors)
	}
	got := types(toks)
	want := []TokenType{INT, IDENTIFIER, EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLex_IllegalCharacter(t *testing.T) {
	toks, rep := lex(t, "x @ y")
	if rep.Errors != 1 {
		t.Errorf("errors = %d, want 1", rep.Errors)
	}
	// The bad character is dropped; lexing continues.
	got := types(toks)
	want := []TokenType{IDENTIFIER, IDENTIFIER, EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLex_UnterminatedString(t *testing.T) {
	_, rep := lex(t, "\"no closing quote\nint x;")
	if rep.Errors != 1 {
		t.Errorf("errors = %d, want 1", rep.Errors)
	}
}
