package compiler

import (
	"errors"
	"testing"
)

func TestSymTable_AddAndLookup(t *testing.T) {
	tab := NewSymTable()
	sym := NewVarSymbol(IntType())
	if err := tab.AddDecl("x", sym); err != nil {
		t.Fatalf("AddDecl: %v", err)
	}

	got, ok, err := tab.LookupLocal("x")
	if err != nil || !ok {
		t.Fatalf("LookupLocal(x): ok=%v err=%v", ok, err)
	}
	if got != sym {
		t.Errorf("LookupLocal(x) returned a different symbol")
	}

	got, ok, err = tab.LookupGlobal("x")
	if err != nil || !ok || got != sym {
		t.Errorf("LookupGlobal(x): got=%v ok=%v err=%v", got, ok, err)
	}

	if _, ok, _ := tab.LookupLocal("y"); ok {
		t.Errorf("LookupLocal(y) found an undeclared name")
	}
}

func TestSymTable_DuplicateInScope(t *testing.T) {
	tab := NewSymTable()
	if err := tab.AddDecl("x", NewVarSymbol(IntType())); err != nil {
		t.Fatalf("first AddDecl: %v", err)
	}
	err := tab.AddDecl("x", NewVarSymbol(BoolType()))
	if !errors.Is(err, ErrDuplicateSymbol) {
		t.Errorf("second AddDecl: want ErrDuplicateSymbol, got %v", err)
	}
}

func TestSymTable_Shadowing(t *testing.T) {
	tab := NewSymTable()
	outer := NewVarSymbol(IntType())
	inner := NewVarSymbol(BoolType())
	if err := tab.AddDecl("x", outer); err != nil {
		t.Fatal(err)
	}

	tab.AddScope()
	// Same name in a new scope is legal and shadows.
	if err := tab.AddDecl("x", inner); err != nil {
		t.Fatalf("AddDecl in inner scope: %v", err)
	}

	if got, _, _ := tab.LookupGlobal("x"); got != inner {
		t.Errorf("LookupGlobal found %v, want the inner symbol", got)
	}
	if got, _, _ := tab.LookupLocal("x"); got != inner {
		t.Errorf("LookupLocal found %v, want the inner symbol", got)
	}

	if err := tab.RemoveScope(); err != nil {
		t.Fatalf("RemoveScope: %v", err)
	}
	if got, _, _ := tab.LookupGlobal("x"); got != outer {
		t.Errorf("after RemoveScope, LookupGlobal found %v, want the outer symbol", got)
	}
}

func TestSymTable_LocalMissesOuterScope(t *testing.T) {
	tab := NewSymTable()
	if err := tab.AddDecl("x", NewVarSymbol(IntType())); err != nil {
		t.Fatal(err)
	}
	tab.AddScope()
	if _, ok, _ := tab.LookupLocal("x"); ok {
		t.Errorf("LookupLocal saw a name from an outer scope")
	}
	if _, ok, _ := tab.LookupGlobal("x"); !ok {
		t.Errorf("LookupGlobal missed a name from an outer scope")
	}
}

func TestSymTable_EmptyTable(t *testing.T) {
	tab := NewSymTable()
	if err := tab.RemoveScope(); err != nil {
		t.Fatalf("removing the initial scope: %v", err)
	}

	if err := tab.RemoveScope(); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("RemoveScope on empty table: want ErrEmptyTable, got %v", err)
	}
	if err := tab.AddDecl("x", NewVarSymbol(IntType())); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("AddDecl on empty table: want ErrEmptyTable, got %v", err)
	}
	// Emptiness is checked before the arguments.
	if err := tab.AddDecl("", nil); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("AddDecl on empty table with bad args: want ErrEmptyTable, got %v", err)
	}
	if _, _, err := tab.LookupLocal("x"); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("LookupLocal on empty table: want ErrEmptyTable, got %v", err)
	}
	if _, _, err := tab.LookupGlobal("x"); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("LookupGlobal on empty table: want ErrEmptyTable, got %v", err)
	}
}

func TestSymTable_InvalidArguments(t *testing.T) {
	tab := NewSymTable()
	if err := tab.AddDecl("", NewVarSymbol(IntType())); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("AddDecl with empty name: want ErrInvalidArgument, got %v", err)
	}
	if err := tab.AddDecl("x", nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("AddDecl with nil symbol: want ErrInvalidArgument, got %v", err)
	}
}

func TestSymTable_ScopeRoundTrip(t *testing.T) {
	tab := NewSymTable()
	const depth = 5
	for i := 0; i < depth; i++ {
		tab.AddScope()
	}
	if got := tab.NumScopes(); got != depth+1 {
		t.Fatalf("NumScopes = %d, want %d", got, depth+1)
	}
	for i := 0; i < depth; i++ {
		if err := tab.RemoveScope(); err != nil {
			t.Fatalf("RemoveScope %d: %v", i, err)
		}
	}
	if got := tab.NumScopes(); got != 1 {
		t.Errorf("NumScopes after round trip = %d, want 1", got)
	}
}
