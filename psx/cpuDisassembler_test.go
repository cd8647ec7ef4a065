package psx

import "testing"

func TestDisassemble(t *testing.T) {
	tests := []struct {
		instr uint32
		pc    uint32
		want  string
	}{
		{0x00000000, 0, "nop"},
		{rType(functSll, GprT0, 0, GprT1, 4), 0, "sll $t0, $t1, 4"},
		{rType(functAddu, GprV0, GprA0, GprA1, 0), 0, "addu $v0, $a0, $a1"},
		{rType(functJr, 0, GprRa, 0, 0), 0, "jr $ra"},
		{rType(functSyscall, 0, 0, 0, 0), 0, "syscall"},
		{iType(opAddiu, GprSp, GprSp, 0xFFF8), 0, "addiu $sp, $sp, 0xFFF8"},
		{iType(opLw, GprT0, GprSp, 0x10), 0, "lw $t0, 0x0010($sp)"},
		{iType(opSw, GprRa, GprSp, 0x1C), 0, "sw $ra, 0x001C($sp)"},
		{iType(opLui, GprT0, 0, 0x8001), 0, "lui $t0, 0x8001"},
		{jType(opJ, 0xBFC00100), 0xBFC00000, "j 0xBFC00100"},
		{jType(opJal, 0x80001000), 0x80000000, "jal 0x80001000"},
		{iType(opBeq, GprT1, GprT0, 4), 0x80000000, "beq $t0, $t1, 0x80000014"},
		{iType(opBcond, 0x00, GprA0, 4), 0x80000000, "bltz $a0, 0x80000014"},
		{iType(opBcond, 0x11, GprA0, 4), 0x80000000, "bgezal $a0, 0x80000014"},
		{opCop0<<26 | copMf<<21 | GprT0<<16 | Cop0Sr<<11, 0, "mfc0 $t0, SR"},
		{opCop0<<26 | 0x10<<21 | cop0FunctRfe, 0, "rfe"},
		{0x4A000000 | gteRtps, 0, "rtps"},
		{0x4A000000 | gteNclip, 0, "nclip"},
		{opCop2<<26 | copMt<<21 | GprT0<<16 | GteSxyp<<11, 0, "mtc2 $t0, r15"},
		{iType(opLwc2, GteVxy0, GprA0, 0), 0, "lwc2 r0, 0x0000($a0)"},
		{0xFC000000, 0, "illegal 0xFC000000"},
	}

	for _, test := range tests {
		if got := Disassemble(test.instr, test.pc); got != test.want {
			t.Errorf("got %q, want %q\n", got, test.want)
		}
	}
}
