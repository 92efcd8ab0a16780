package compiler

import (
	"fmt"
	"io"
)

// Pos is a 1-based source position. Synthesized constructs that have no
// position of their own report 0:0.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Reporter collects diagnostics for one compilation. Every pass writes
// through the same Reporter so the final error count decides whether code
// generation runs at all.
type Reporter struct {
	w        io.Writer
	Errors   int
	Warnings int
}

func NewReporter(w io.Writer) *Reporter {
	if w == nil {
		w = io.Discard
	}
	return &Reporter{w: w}
}

// Fatal records an error diagnostic at the given position.
func (r *Reporter) Fatal(line, col int, msg string) {
	r.Errors++
	fmt.Fprintf(r.w, "%d:%d ***ERROR*** %s\n", line, col, msg)
}

// FatalAt is Fatal with a Pos.
func (r *Reporter) FatalAt(p Pos, msg string) {
	r.Fatal(p.Line, p.Col, msg)
}

// Warn records a warning diagnostic. Warnings never block code generation.
func (r *Reporter) Warn(line, col int, msg string) {
	r.Warnings++
	fmt.Fprintf(r.w, "%d:%d ***WARNING*** %s\n", line, col, msg)
}
