package asm

import (
	"strings"
	"testing"
)

func TestAssemble_LabelsAndSections(t *testing.T) {
	prog, err := Assemble(`
	.data
	.align 2
_g:	.space 4
L0:	.asciiz "hi"
	.text
	.globl main
main:
__start:
	li	$t0, 5
	sw	$t0, _g
	j	done
	li	$t0, 6
done:
	syscall
`)
	if err != nil {
		t.Fatal(err)
	}
	if idx, ok := prog.Entry("main"); !ok || idx != 0 {
		t.Errorf("main entry = %d/%v, want 0/true", idx, ok)
	}
	if idx, ok := prog.TextLabels["done"]; !ok || idx != 4 {
		t.Errorf("done = %d/%v, want 4/true", idx, ok)
	}
	if addr, ok := prog.DataLabels["_g"]; !ok || addr != DataBase {
		t.Errorf("_g = 0x%x/%v, want 0x%x/true", addr, ok, DataBase)
	}
	if addr := prog.DataLabels["L0"]; addr != DataBase+4 {
		t.Errorf("L0 = 0x%x, want 0x%x", addr, DataBase+4)
	}
	// The string bytes land in the image NUL-terminated.
	if got := string(prog.Data[4:7]); got != "hi\x00" {
		t.Errorf("string image = %q, want \"hi\\x00\"", got)
	}
}

func TestAssemble_OperandForms(t *testing.T) {
	prog, err := Assemble(`
	.data
_w:	.word 42
	.text
main:
	lw	$t0, 4($sp)
	lw	$t1, _w
	addu	$fp, $sp, 16
	seq	$t0, $t0, 0
	beq	$t0, 0, main
	bne	$t0, $t1, main
	blez	$t0, main
	jal	main
	jr	$ra
	syscall
`)
	if err != nil {
		t.Fatal(err)
	}

	in := prog.Text[0]
	if in.Op != "lw" || in.Args[1].Kind != ArgInd || in.Args[1].Reg != "$sp" || in.Args[1].Imm != 4 {
		t.Errorf("indexed operand decoded wrong: %+v", in)
	}
	in = prog.Text[1]
	if in.Args[1].Kind != ArgImm || in.Args[1].Imm != DataBase {
		t.Errorf("label operand not resolved to address: %+v", in)
	}
	in = prog.Text[2]
	if in.Args[2].Kind != ArgImm || in.Args[2].Imm != 16 {
		t.Errorf("immediate third operand decoded wrong: %+v", in)
	}
	in = prog.Text[4]
	if in.Args[2].Kind != ArgTarget || in.Args[2].Imm != 0 {
		t.Errorf("branch target not resolved: %+v", in)
	}

	// .word payload
	if got := prog.Data[0]; got != 42 {
		t.Errorf("word image = %d, want 42", got)
	}
}

func TestAssemble_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown instruction", "main:\n\tfrobnicate $t0\n", "unknown instruction"},
		{"undefined label", "main:\n\tj nowhere\n", `undefined label "nowhere"`},
		{"wrong operand count", "main:\n\tli $t0\n", "wants 2 operands"},
		{"bad register", "main:\n\tmove t0, $t1\n", "expected register"},
		{"duplicate label", "main:\nmain:\n\tsyscall\n", "duplicate label"},
		{"instruction in data", "\t.data\n\tli $t0, 1\n", "instruction in data section"},
		{"bad directive", "\t.bogus 4\n", "unknown directive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble(tt.src)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestAssemble_ErrorNamesLine(t *testing.T) {
	_, err := Assemble("main:\n\tsyscall\n\tj nowhere\n")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error = %q, want it to name line 3", err)
	}
}

func TestAssemble_CommentsIgnored(t *testing.T) {
	prog, err := Assemble("main:\t# entry\n\tli\t$t0, 1\t\t# FUNCTION ENTRY\n\tsyscall\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Text) != 2 {
		t.Errorf("got %d instructions, want 2", len(prog.Text))
	}
}
