// Package asm assembles the compiler's output text into a Program the
// virtual machine can execute. It is a classic two-pass assembler: pass
// one walks the lines assigning text indices and data addresses to
// labels, pass two parses each instruction and resolves every label
// operand, so the machine never sees a symbolic name.
package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// DataBase is the address the data section is loaded at. Address zero is
// left unmapped so a null-ish pointer faults instead of reading data.
const DataBase = 0x1000

// ArgKind says how an instruction operand is addressed.
type ArgKind int

const (
	ArgReg ArgKind = iota
	ArgImm          // immediate value, also resolved label addresses
	ArgTarget       // branch/jump target, resolved to a text index
	ArgInd          // off(base) indirection
)

// Arg is one decoded operand.
type Arg struct {
	Kind ArgKind
	Reg  string // ArgReg, and the base register of ArgInd
	Imm  int32  // ArgImm value, ArgTarget text index, ArgInd offset
}

// Instr is one decoded instruction.
type Instr struct {
	Op   string
	Args []Arg
	Line int // 1-based source line, for error reports from the machine
}

// Program is a fully assembled unit.
type Program struct {
	Text       []Instr
	Data       []byte
	TextLabels map[string]int
	DataLabels map[string]uint32
}

// Entry returns the text index of the given label.
func (p *Program) Entry(label string) (int, bool) {
	idx, ok := p.TextLabels[label]
	return idx, ok
}

// operand arity and shape for every mnemonic the compiler emits.
var opSpecs = map[string]string{
	"li":      "ri",  // reg, imm
	"la":      "ra",  // reg, address label
	"lw":      "rm",  // reg, mem (label or indexed)
	"sw":      "rm",  // reg, mem
	"move":    "rr",
	"add":     "rrv", // reg, reg, reg-or-imm
	"addu":    "rrv",
	"sub":     "rrv",
	"subu":    "rrv",
	"seq":     "rrv",
	"sne":     "rrv",
	"slt":     "rrv",
	"sgt":     "rrv",
	"sle":     "rrv",
	"sge":     "rrv",
	"mult":    "rr",
	"div":     "rr",
	"mflo":    "r",
	"beq":     "rvt", // reg, reg-or-imm, target
	"bne":     "rvt",
	"blez":    "rt",
	"j":       "t",
	"jal":     "t",
	"jr":      "r",
	"syscall": "",
}

type assembler struct {
	textLabels map[string]int
	dataLabels map[string]uint32
}

// Assemble parses and resolves the given assembly text.
func Assemble(src string) (*Program, error) {
	a := &assembler{
		textLabels: make(map[string]int),
		dataLabels: make(map[string]uint32),
	}
	lines := strings.Split(src, "\n")

	if err := a.passOne(lines); err != nil {
		return nil, err
	}
	return a.passTwo(lines)
}

// stripComment removes a trailing # comment and surrounding space.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// splitLabel peels "name:" off the front of a line, returning the label
// (or "") and the remainder.
func splitLabel(line string) (string, string) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", line
	}
	// A colon inside a string literal is not a label.
	if q := strings.IndexByte(line, '"'); q >= 0 && q < i {
		return "", line
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
}

// passOne records label positions and sizes the data image.
func (a *assembler) passOne(lines []string) error {
	inData := false
	textIdx := 0
	dataAddr := uint32(DataBase)

	for n, rawLine := range lines {
		line := stripComment(rawLine)
		if line == "" {
			continue
		}
		label, rest := splitLabel(line)
		if label != "" {
			if inData {
				if _, dup := a.dataLabels[label]; dup {
					return fmt.Errorf("line %d: duplicate label %q", n+1, label)
				}
				a.dataLabels[label] = dataAddr
			} else {
				if _, dup := a.textLabels[label]; dup {
					return fmt.Errorf("line %d: duplicate label %q", n+1, label)
				}
				a.textLabels[label] = textIdx
			}
		}
		if rest == "" {
			continue
		}

		op := strings.Fields(rest)[0]
		switch op {
		case ".data":
			inData = true
		case ".text":
			inData = false
		case ".globl":
			// Linkage directive; nothing to do.
		case ".align":
			arg := strings.TrimSpace(strings.TrimPrefix(rest, ".align"))
			pow, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("line %d: bad .align operand %q", n+1, arg)
			}
			mask := uint32(1<<pow) - 1
			dataAddr = (dataAddr + mask) &^ mask
			// Realign the label that may have been bound above.
			if label != "" && inData {
				a.dataLabels[label] = dataAddr
			}
		case ".space":
			arg := strings.TrimSpace(strings.TrimPrefix(rest, ".space"))
			size, err := strconv.Atoi(arg)
			if err != nil || size < 0 {
				return fmt.Errorf("line %d: bad .space operand %q", n+1, arg)
			}
			dataAddr += uint32(size)
		case ".word":
			dataAddr += 4
		case ".asciiz":
			arg := strings.TrimSpace(strings.TrimPrefix(rest, ".asciiz"))
			s, err := strconv.Unquote(arg)
			if err != nil {
				return fmt.Errorf("line %d: bad string literal %s", n+1, arg)
			}
			dataAddr += uint32(len(s)) + 1 // NUL terminator
		default:
			if strings.HasPrefix(op, ".") {
				return fmt.Errorf("line %d: unknown directive %q", n+1, op)
			}
			if inData {
				return fmt.Errorf("line %d: instruction in data section", n+1)
			}
			textIdx++
		}
	}
	return nil
}

// passTwo parses instructions and builds the data image.
func (a *assembler) passTwo(lines []string) (*Program, error) {
	prog := &Program{
		TextLabels: a.textLabels,
		DataLabels: a.dataLabels,
	}
	inData := false
	dataAddr := uint32(DataBase)

	writeData := func(addr uint32, bs []byte) {
		end := int(addr) - DataBase + len(bs)
		for len(prog.Data) < end {
			prog.Data = append(prog.Data, 0)
		}
		copy(prog.Data[int(addr)-DataBase:], bs)
	}

	for n, rawLine := range lines {
		line := stripComment(rawLine)
		if line == "" {
			continue
		}
		_, rest := splitLabel(line)
		if rest == "" {
			continue
		}

		op := strings.Fields(rest)[0]
		switch op {
		case ".data":
			inData = true
			continue
		case ".text":
			inData = false
			continue
		case ".globl":
			continue
		case ".align":
			arg := strings.TrimSpace(strings.TrimPrefix(rest, ".align"))
			pow, _ := strconv.Atoi(arg)
			mask := uint32(1<<pow) - 1
			dataAddr = (dataAddr + mask) &^ mask
			continue
		case ".space":
			arg := strings.TrimSpace(strings.TrimPrefix(rest, ".space"))
			size, _ := strconv.Atoi(arg)
			writeData(dataAddr, make([]byte, size))
			dataAddr += uint32(size)
			continue
		case ".word":
			arg := strings.TrimSpace(strings.TrimPrefix(rest, ".word"))
			v, err := strconv.ParseInt(arg, 0, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad .word operand %q", n+1, arg)
			}
			w := uint32(int32(v))
			writeData(dataAddr, []byte{byte(w), byte(w >> 8), byte(w >> 16), byte(w >> 24)})
			dataAddr += 4
			continue
		case ".asciiz":
			arg := strings.TrimSpace(strings.TrimPrefix(rest, ".asciiz"))
			s, _ := strconv.Unquote(arg)
			writeData(dataAddr, append([]byte(s), 0))
			dataAddr += uint32(len(s)) + 1
			continue
		}
		if inData {
			continue // pass one already rejected this
		}

		instr, err := a.parseInstr(op, rest, n+1)
		if err != nil {
			return nil, err
		}
		prog.Text = append(prog.Text, instr)
	}
	return prog, nil
}

func isRegister(s string) bool {
	return strings.HasPrefix(s, "$")
}

// parseInstr decodes one instruction against its operand spec.
func (a *assembler) parseInstr(op, rest string, line int) (Instr, error) {
	spec, ok := opSpecs[op]
	if !ok {
		return Instr{}, fmt.Errorf("line %d: unknown instruction %q", line, op)
	}

	operandText := strings.TrimSpace(strings.TrimPrefix(rest, op))
	var fields []string
	if operandText != "" {
		for _, f := range strings.Split(operandText, ",") {
			fields = append(fields, strings.TrimSpace(f))
		}
	}
	if len(fields) != len(spec) {
		return Instr{}, fmt.Errorf("line %d: %s wants %d operands, found %d",
			line, op, len(spec), len(fields))
	}

	instr := Instr{Op: op, Line: line}
	for i, f := range fields {
		arg, err := a.parseArg(spec[i], f, line)
		if err != nil {
			return Instr{}, err
		}
		instr.Args = append(instr.Args, arg)
	}
	return instr, nil
}

func (a *assembler) parseArg(kind byte, f string, line int) (Arg, error) {
	switch kind {
	case 'r':
		if !isRegister(f) {
			return Arg{}, fmt.Errorf("line %d: expected register, found %q", line, f)
		}
		return Arg{Kind: ArgReg, Reg: f}, nil

	case 'i':
		v, err := strconv.ParseInt(f, 0, 64)
		if err != nil {
			return Arg{}, fmt.Errorf("line %d: bad immediate %q", line, f)
		}
		return Arg{Kind: ArgImm, Imm: int32(v)}, nil

	case 'v': // register or immediate
		if isRegister(f) {
			return Arg{Kind: ArgReg, Reg: f}, nil
		}
		return a.parseArg('i', f, line)

	case 'a': // address label
		addr, ok := a.dataLabels[f]
		if !ok {
			return Arg{}, fmt.Errorf("line %d: undefined label %q", line, f)
		}
		return Arg{Kind: ArgImm, Imm: int32(addr)}, nil

	case 't': // branch or jump target
		idx, ok := a.textLabels[f]
		if !ok {
			return Arg{}, fmt.Errorf("line %d: undefined label %q", line, f)
		}
		return Arg{Kind: ArgTarget, Imm: int32(idx)}, nil

	case 'm': // label or off(base)
		if i := strings.IndexByte(f, '('); i >= 0 {
			if !strings.HasSuffix(f, ")") {
				return Arg{}, fmt.Errorf("line %d: malformed operand %q", line, f)
			}
			offText := strings.TrimSpace(f[:i])
			off := int64(0)
			if offText != "" {
				var err error
				off, err = strconv.ParseInt(offText, 0, 64)
				if err != nil {
					return Arg{}, fmt.Errorf("line %d: bad offset in %q", line, f)
				}
			}
			base := strings.TrimSpace(f[i+1 : len(f)-1])
			if !isRegister(base) {
				return Arg{}, fmt.Errorf("line %d: bad base register in %q", line, f)
			}
			return Arg{Kind: ArgInd, Reg: base, Imm: int32(off)}, nil
		}
		return a.parseArg('a', f, line)
	}
	return Arg{}, fmt.Errorf("line %d: bad operand %q", line, f)
}
