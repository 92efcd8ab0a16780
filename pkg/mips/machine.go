// Package mips executes programs assembled by pkg/asm. The machine is a
// small word-oriented interpreter: eight named registers, a byte-addressed
// little-endian memory holding the data segment and a descending stack,
// and a program counter indexing the decoded instruction slice.
package mips

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"gibberish/pkg/asm"
)

// MemSize is the size of the memory image. The data segment sits at
// asm.DataBase; the stack starts at the top and grows down.
const MemSize = 1 << 16

// DefaultMaxSteps bounds execution so a runaway loop fails a test
// instead of hanging it.
const DefaultMaxSteps = 10_000_000

var (
	ErrNoEntry       = errors.New("program has no main label")
	ErrStepBudget    = errors.New("step budget exhausted")
	ErrDivideByZero  = errors.New("division by zero")
	ErrBadAddress    = errors.New("memory access out of range")
	ErrBadAlignment  = errors.New("unaligned word access")
	ErrBadRegister   = errors.New("unknown register")
	ErrBadSyscall    = errors.New("unknown syscall")
	ErrMissingReturn = errors.New("jump through uninitialised $ra")
)

// Machine is one execution context. Zero value is not usable; call New.
type Machine struct {
	regs map[string]int32
	lo   int32
	mem  []byte

	in  *bufio.Reader
	out io.Writer

	MaxSteps int
}

func New(out io.Writer, in io.Reader) *Machine {
	if out == nil {
		out = io.Discard
	}
	if in == nil {
		in = emptyReader{}
	}
	return &Machine{
		regs: map[string]int32{
			"$fp": 0, "$sp": 0, "$ra": -1,
			"$v0": 0, "$v1": 0, "$a0": 0,
			"$t0": 0, "$t1": 0,
		},
		mem:      make([]byte, MemSize),
		in:       bufio.NewReader(in),
		out:      out,
		MaxSteps: DefaultMaxSteps,
	}
}

// emptyReader is an always-empty reader so a program that unexpectedly
// reads gets EOF, not a nil dereference.
type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, io.EOF }

// Reg returns the value of a register, for tests and the CLI.
func (m *Machine) Reg(name string) int32 {
	return m.regs[name]
}

func (m *Machine) getReg(name string) (int32, error) {
	v, ok := m.regs[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrBadRegister, name)
	}
	return v, nil
}

func (m *Machine) setReg(name string, v int32) error {
	if _, ok := m.regs[name]; !ok {
		return fmt.Errorf("%w: %s", ErrBadRegister, name)
	}
	m.regs[name] = v
	return nil
}

func (m *Machine) loadWord(addr int32) (int32, error) {
	if addr < 0 || int(addr)+4 > len(m.mem) {
		return 0, fmt.Errorf("%w: 0x%x", ErrBadAddress, uint32(addr))
	}
	if addr%4 != 0 {
		return 0, fmt.Errorf("%w: 0x%x", ErrBadAlignment, uint32(addr))
	}
	b := m.mem[addr:]
	return int32(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24), nil
}

func (m *Machine) storeWord(addr, v int32) error {
	if addr < 0 || int(addr)+4 > len(m.mem) {
		return fmt.Errorf("%w: 0x%x", ErrBadAddress, uint32(addr))
	}
	if addr%4 != 0 {
		return fmt.Errorf("%w: 0x%x", ErrBadAlignment, uint32(addr))
	}
	m.mem[addr] = byte(v)
	m.mem[addr+1] = byte(v >> 8)
	m.mem[addr+2] = byte(v >> 16)
	m.mem[addr+3] = byte(v >> 24)
	return nil
}

// value reads an operand that may be a register or an immediate.
func (m *Machine) value(a asm.Arg) (int32, error) {
	switch a.Kind {
	case asm.ArgReg:
		return m.getReg(a.Reg)
	case asm.ArgImm, asm.ArgTarget:
		return a.Imm, nil
	}
	return 0, fmt.Errorf("operand is not a value")
}

// address computes the effective address of a memory operand.
func (m *Machine) address(a asm.Arg) (int32, error) {
	switch a.Kind {
	case asm.ArgInd:
		base, err := m.getReg(a.Reg)
		if err != nil {
			return 0, err
		}
		return base + a.Imm, nil
	case asm.ArgImm:
		return a.Imm, nil
	}
	return 0, fmt.Errorf("operand is not an address")
}

// Run executes the program from its main label until the exit syscall.
func (m *Machine) Run(prog *asm.Program) error {
	entry, ok := prog.Entry("main")
	if !ok {
		return ErrNoEntry
	}
	copy(m.mem[asm.DataBase:], prog.Data)
	m.regs["$sp"] = MemSize - 4
	m.regs["$fp"] = MemSize - 4

	pc := entry
	for steps := 0; ; steps++ {
		if steps >= m.MaxSteps {
			return ErrStepBudget
		}
		if pc < 0 || pc >= len(prog.Text) {
			return fmt.Errorf("program counter out of range: %d", pc)
		}
		in := prog.Text[pc]
		next, halt, err := m.step(in, pc)
		if err != nil {
			return fmt.Errorf("line %d: %s: %w", in.Line, in.Op, err)
		}
		if halt {
			return nil
		}
		pc = next
	}
}

// step executes one instruction and returns the next program counter.
func (m *Machine) step(in asm.Instr, pc int) (next int, halt bool, err error) {
	next = pc + 1
	args := in.Args

	switch in.Op {
	case "li", "la":
		err = m.setReg(args[0].Reg, args[1].Imm)

	case "move":
		var v int32
		if v, err = m.getReg(args[1].Reg); err == nil {
			err = m.setReg(args[0].Reg, v)
		}

	case "lw":
		var addr, v int32
		if addr, err = m.address(args[1]); err == nil {
			if v, err = m.loadWord(addr); err == nil {
				err = m.setReg(args[0].Reg, v)
			}
		}

	case "sw":
		var addr, v int32
		if v, err = m.getReg(args[0].Reg); err == nil {
			if addr, err = m.address(args[1]); err == nil {
				err = m.storeWord(addr, v)
			}
		}

	case "add", "addu", "sub", "subu", "seq", "sne", "slt", "sgt", "sle", "sge":
		var x, y int32
		if x, err = m.value(args[1]); err != nil {
			break
		}
		if y, err = m.value(args[2]); err != nil {
			break
		}
		var r int32
		switch in.Op {
		case "add", "addu":
			r = x + y
		case "sub", "subu":
			r = x - y
		case "seq":
			r = boolWord(x == y)
		case "sne":
			r = boolWord(x != y)
		case "slt":
			r = boolWord(x < y)
		case "sgt":
			r = boolWord(x > y)
		case "sle":
			r = boolWord(x <= y)
		case "sge":
			r = boolWord(x >= y)
		}
		err = m.setReg(args[0].Reg, r)

	case "mult":
		var x, y int32
		if x, err = m.getReg(args[0].Reg); err != nil {
			break
		}
		if y, err = m.getReg(args[1].Reg); err != nil {
			break
		}
		m.lo = x * y

	case "div":
		var x, y int32
		if x, err = m.getReg(args[0].Reg); err != nil {
			break
		}
		if y, err = m.getReg(args[1].Reg); err != nil {
			break
		}
		if y == 0 {
			err = ErrDivideByZero
			break
		}
		m.lo = x / y

	case "mflo":
		err = m.setReg(args[0].Reg, m.lo)

	case "beq", "bne":
		var x, y int32
		if x, err = m.getReg(args[0].Reg); err != nil {
			break
		}
		if y, err = m.value(args[1]); err != nil {
			break
		}
		taken := x == y
		if in.Op == "bne" {
			taken = x != y
		}
		if taken {
			next = int(args[2].Imm)
		}

	case "blez":
		var x int32
		if x, err = m.getReg(args[0].Reg); err != nil {
			break
		}
		if x <= 0 {
			next = int(args[1].Imm)
		}

	case "j":
		next = int(args[0].Imm)

	case "jal":
		// $ra holds a text index, not a byte address; jr knows.
		if err = m.setReg("$ra", int32(pc+1)); err == nil {
			next = int(args[0].Imm)
		}

	case "jr":
		var v int32
		if v, err = m.getReg(args[0].Reg); err != nil {
			break
		}
		if v < 0 {
			err = ErrMissingReturn
			break
		}
		next = int(v)

	case "syscall":
		halt, err = m.syscall()

	default:
		err = fmt.Errorf("unknown instruction %q", in.Op)
	}
	return next, halt, err
}

func boolWord(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func (m *Machine) syscall() (halt bool, err error) {
	switch m.regs["$v0"] {
	case 1: // print integer
		fmt.Fprintf(m.out, "%d", m.regs["$a0"])
		return false, nil

	case 4: // print NUL-terminated string
		addr := m.regs["$a0"]
		for {
			if addr < 0 || int(addr) >= len(m.mem) {
				return false, fmt.Errorf("%w: 0x%x", ErrBadAddress, uint32(addr))
			}
			b := m.mem[addr]
			if b == 0 {
				return false, nil
			}
			fmt.Fprintf(m.out, "%c", b)
			addr++
		}

	case 5: // read integer
		var n int32
		if _, err := fmt.Fscan(m.in, &n); err != nil {
			return false, fmt.Errorf("read int: %w", err)
		}
		m.regs["$v0"] = n
		return false, nil

	case 10: // exit
		return true, nil
	}
	return false, fmt.Errorf("%w: %d", ErrBadSyscall, m.regs["$v0"])
}
