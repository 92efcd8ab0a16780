package compiler

import (
	"errors"
	"io"
)

// ErrCompileFailed is returned when any fatal diagnostic was recorded.
// The diagnostics themselves went to the writer given to Compile.
var ErrCompileFailed = errors.New("compilation failed")

// Options configures one compilation.
type Options struct {
	// Entry is the function the program starts in. Empty means "main".
	Entry string
}

// Result is the output of a successful (or failed) compilation.
type Result struct {
	Assembly string
	Errors   int
	Warnings int
}

// Analyze runs the front half of the pipeline: lex, parse, resolve,
// check. Diagnostics go to diag. The returned Program is nil only when
// the token stream was too broken to parse at all.
func Analyze(src string, diag io.Writer, opts Options) (*Program, *Reporter) {
	if opts.Entry == "" {
		opts.Entry = "main"
	}
	rep := NewReporter(diag)
	tokens := Lex(src, rep)
	prog := Parse(tokens, rep)
	if rep.Errors > 0 {
		// Resolving a broken parse would only manufacture noise.
		return prog, rep
	}
	Resolve(prog, rep, opts.Entry)
	Check(prog, rep)
	return prog, rep
}

// Compile runs the whole pipeline and returns the assembly text. Code
// generation is skipped when any error was reported; the Result still
// carries the diagnostic counts.
func Compile(src string, diag io.Writer, opts Options) (*Result, error) {
	if opts.Entry == "" {
		opts.Entry = "main"
	}
	prog, rep := Analyze(src, diag, opts)
	res := &Result{Errors: rep.Errors, Warnings: rep.Warnings}
	if rep.Errors > 0 {
		return res, ErrCompileFailed
	}
	res.Assembly = Generate(prog, opts.Entry)
	return res, nil
}
