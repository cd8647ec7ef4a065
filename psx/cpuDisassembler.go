package psx

import (
	"fmt"
	"strings"
)

// Disassemble MIPS instruction words into human-readable assembly, used
// by the instruction tracer and the debug panel.

var gprNames = [32]string{
	"$zero", "$at", "$v0", "$v1", "$a0", "$a1", "$a2", "$a3",
	"$t0", "$t1", "$t2", "$t3", "$t4", "$t5", "$t6", "$t7",
	"$s0", "$s1", "$s2", "$s3", "$s4", "$s5", "$s6", "$s7",
	"$t8", "$t9", "$k0", "$k1", "$gp", "$sp", "$fp", "$ra",
}

var cop0Names = [32]string{
	Cop0Bpc:   "BPC",
	Cop0Bda:   "BDA",
	Cop0Tar:   "TAR",
	Cop0Dcic:  "DCIC",
	Cop0BadA:  "BadA",
	Cop0Bdam:  "BDAM",
	Cop0Bpcm:  "BPCM",
	Cop0Sr:    "SR",
	Cop0Cause: "CAUSE",
	Cop0Epc:   "EPC",
	Cop0Prid:  "PRID",
}

var gteCommandNames = map[uint32]string{
	gteRtps:  "rtps",
	gteNclip: "nclip",
	gteOp:    "op",
	gteDpcs:  "dpcs",
	gteIntpl: "intpl",
	gteMvmva: "mvmva",
	gteNcds:  "ncds",
	gteCdp:   "cdp",
	gteNcdt:  "ncdt",
	gteNccs:  "nccs",
	gteCc:    "cc",
	gteNcs:   "ncs",
	gteNct:   "nct",
	gteSqr:   "sqr",
	gteDcpl:  "dcpl",
	gteDpct:  "dpct",
	gteAvsz3: "avsz3",
	gteAvsz4: "avsz4",
	gteRtpt:  "rtpt",
	gteGpf:   "gpf",
	gteGpl:   "gpl",
	gteNcct:  "ncct",
}

// Disassemble one instruction word. pc is the address the instruction was
// fetched from; branch and jump targets are resolved against it.
func Disassemble(instr, pc uint32) string {
	rs := instrRs(instr)
	rt := instrRt(instr)
	rd := instrRd(instr)
	imm := instrImm(instr)

	switch instrOp(instr) {
	case opSpecial:
		switch instrFunct(instr) {
		case functSll:
			if instr == 0x00000000 {
				return "nop"
			}
			return fmt.Sprintf("sll %s, %s, %d", gprNames[rd], gprNames[rt], instrShamt(instr))
		case functSrl:
			return fmt.Sprintf("srl %s, %s, %d", gprNames[rd], gprNames[rt], instrShamt(instr))
		case functSra:
			return fmt.Sprintf("sra %s, %s, %d", gprNames[rd], gprNames[rt], instrShamt(instr))
		case functSllv:
			return fmt.Sprintf("sllv %s, %s, %s", gprNames[rd], gprNames[rt], gprNames[rs])
		case functSrlv:
			return fmt.Sprintf("srlv %s, %s, %s", gprNames[rd], gprNames[rt], gprNames[rs])
		case functSrav:
			return fmt.Sprintf("srav %s, %s, %s", gprNames[rd], gprNames[rt], gprNames[rs])
		case functJr:
			return fmt.Sprintf("jr %s", gprNames[rs])
		case functJalr:
			return fmt.Sprintf("jalr %s, %s", gprNames[rd], gprNames[rs])
		case functSyscall:
			return "syscall"
		case functBreak:
			return "break"
		case functMfhi:
			return fmt.Sprintf("mfhi %s", gprNames[rd])
		case functMthi:
			return fmt.Sprintf("mthi %s", gprNames[rs])
		case functMflo:
			return fmt.Sprintf("mflo %s", gprNames[rd])
		case functMtlo:
			return fmt.Sprintf("mtlo %s", gprNames[rs])
		case functMult:
			return fmt.Sprintf("mult %s, %s", gprNames[rs], gprNames[rt])
		case functMultu:
			return fmt.Sprintf("multu %s, %s", gprNames[rs], gprNames[rt])
		case functDiv:
			return fmt.Sprintf("div %s, %s", gprNames[rs], gprNames[rt])
		case functDivu:
			return fmt.Sprintf("divu %s, %s", gprNames[rs], gprNames[rt])
		case functAdd:
			return fmt.Sprintf("add %s, %s, %s", gprNames[rd], gprNames[rs], gprNames[rt])
		case functAddu:
			return fmt.Sprintf("addu %s, %s, %s", gprNames[rd], gprNames[rs], gprNames[rt])
		case functSub:
			return fmt.Sprintf("sub %s, %s, %s", gprNames[rd], gprNames[rs], gprNames[rt])
		case functSubu:
			return fmt.Sprintf("subu %s, %s, %s", gprNames[rd], gprNames[rs], gprNames[rt])
		case functAnd:
			return fmt.Sprintf("and %s, %s, %s", gprNames[rd], gprNames[rs], gprNames[rt])
		case functOr:
			return fmt.Sprintf("or %s, %s, %s", gprNames[rd], gprNames[rs], gprNames[rt])
		case functXor:
			return fmt.Sprintf("xor %s, %s, %s", gprNames[rd], gprNames[rs], gprNames[rt])
		case functNor:
			return fmt.Sprintf("nor %s, %s, %s", gprNames[rd], gprNames[rs], gprNames[rt])
		case functSlt:
			return fmt.Sprintf("slt %s, %s, %s", gprNames[rd], gprNames[rs], gprNames[rt])
		case functSltu:
			return fmt.Sprintf("sltu %s, %s, %s", gprNames[rd], gprNames[rs], gprNames[rt])
		}

	case opBcond:
		name := "bltz"
		if rt&1 != 0 {
			name = "bgez"
		}
		if rt&0x1E == 0x10 {
			name += "al"
		}
		return fmt.Sprintf("%s %s, 0x%08X", name, gprNames[rs], branchTarget(instr, pc))

	case opJ:
		return fmt.Sprintf("j 0x%08X", jmpTarget(instr, pc))
	case opJal:
		return fmt.Sprintf("jal 0x%08X", jmpTarget(instr, pc))
	case opBeq:
		return fmt.Sprintf("beq %s, %s, 0x%08X", gprNames[rs], gprNames[rt], branchTarget(instr, pc))
	case opBne:
		return fmt.Sprintf("bne %s, %s, 0x%08X", gprNames[rs], gprNames[rt], branchTarget(instr, pc))
	case opBlez:
		return fmt.Sprintf("blez %s, 0x%08X", gprNames[rs], branchTarget(instr, pc))
	case opBgtz:
		return fmt.Sprintf("bgtz %s, 0x%08X", gprNames[rs], branchTarget(instr, pc))
	case opAddi:
		return fmt.Sprintf("addi %s, %s, 0x%04X", gprNames[rt], gprNames[rs], imm)
	case opAddiu:
		return fmt.Sprintf("addiu %s, %s, 0x%04X", gprNames[rt], gprNames[rs], imm)
	case opSlti:
		return fmt.Sprintf("slti %s, %s, 0x%04X", gprNames[rt], gprNames[rs], imm)
	case opSltiu:
		return fmt.Sprintf("sltiu %s, %s, 0x%04X", gprNames[rt], gprNames[rs], imm)
	case opAndi:
		return fmt.Sprintf("andi %s, %s, 0x%04X", gprNames[rt], gprNames[rs], imm)
	case opOri:
		return fmt.Sprintf("ori %s, %s, 0x%04X", gprNames[rt], gprNames[rs], imm)
	case opXori:
		return fmt.Sprintf("xori %s, %s, 0x%04X", gprNames[rt], gprNames[rs], imm)
	case opLui:
		return fmt.Sprintf("lui %s, 0x%04X", gprNames[rt], imm)

	case opCop0:
		switch rs {
		case copMf:
			return fmt.Sprintf("mfc0 %s, %s", gprNames[rt], cop0Name(rd))
		case copMt:
			return fmt.Sprintf("mtc0 %s, %s", cop0Name(rd), gprNames[rt])
		default:
			if instrFunct(instr) == cop0FunctRfe {
				return "rfe"
			}
		}

	case opCop2:
		switch rs {
		case copMf:
			return fmt.Sprintf("mfc2 %s, r%d", gprNames[rt], rd)
		case copCf:
			return fmt.Sprintf("cfc2 %s, r%d", gprNames[rt], rd)
		case copMt:
			return fmt.Sprintf("mtc2 %s, r%d", gprNames[rt], rd)
		case copCt:
			return fmt.Sprintf("ctc2 %s, r%d", gprNames[rt], rd)
		default:
			if name, ok := gteCommandNames[instr&0x3F]; ok {
				return name
			}
		}

	case opLb:
		return fmt.Sprintf("lb %s, 0x%04X(%s)", gprNames[rt], imm, gprNames[rs])
	case opLh:
		return fmt.Sprintf("lh %s, 0x%04X(%s)", gprNames[rt], imm, gprNames[rs])
	case opLwl:
		return fmt.Sprintf("lwl %s, 0x%04X(%s)", gprNames[rt], imm, gprNames[rs])
	case opLw:
		return fmt.Sprintf("lw %s, 0x%04X(%s)", gprNames[rt], imm, gprNames[rs])
	case opLbu:
		return fmt.Sprintf("lbu %s, 0x%04X(%s)", gprNames[rt], imm, gprNames[rs])
	case opLhu:
		return fmt.Sprintf("lhu %s, 0x%04X(%s)", gprNames[rt], imm, gprNames[rs])
	case opLwr:
		return fmt.Sprintf("lwr %s, 0x%04X(%s)", gprNames[rt], imm, gprNames[rs])
	case opSb:
		return fmt.Sprintf("sb %s, 0x%04X(%s)", gprNames[rt], imm, gprNames[rs])
	case opSh:
		return fmt.Sprintf("sh %s, 0x%04X(%s)", gprNames[rt], imm, gprNames[rs])
	case opSwl:
		return fmt.Sprintf("swl %s, 0x%04X(%s)", gprNames[rt], imm, gprNames[rs])
	case opSw:
		return fmt.Sprintf("sw %s, 0x%04X(%s)", gprNames[rt], imm, gprNames[rs])
	case opSwr:
		return fmt.Sprintf("swr %s, 0x%04X(%s)", gprNames[rt], imm, gprNames[rs])
	case opLwc2:
		return fmt.Sprintf("lwc2 r%d, 0x%04X(%s)", rt, imm, gprNames[rs])
	case opSwc2:
		return fmt.Sprintf("swc2 r%d, 0x%04X(%s)", rt, imm, gprNames[rs])
	}

	return fmt.Sprintf("illegal 0x%08X", instr)
}

// GprDump formats the full register file, one register per line, for
// host-side error reports.
func GprDump(cpu *Cpu) string {
	var buf strings.Builder

	for reg, name := range gprNames {
		fmt.Fprintf(&buf, "[%s] = 0x%08X\n", name, cpu.Gpr[reg])
	}

	return buf.String()
}

func cop0Name(reg uint32) string {
	if name := cop0Names[reg]; name != "" {
		return name
	}
	return fmt.Sprintf("r%d", reg)
}

// Instruction-trace state: the disassembly is captured before the step
// and emitted after it.
type DisasmTrace struct {
	TraceInstruction bool

	pc  uint32
	str string
}

func (c *Context) disasmTraceBegin() {
	c.Disasm.pc = c.Cpu.Pc

	instr := c.Bus.peekWord(vaddrToPaddr(c.Cpu.Pc))
	c.Disasm.str = Disassemble(instr, c.Cpu.Pc)
}

func (c *Context) disasmTraceEnd() {
	c.Log.msgf(ModDisasm, LogInfo, "0x%08X: %s", c.Disasm.pc, c.Disasm.str)
}
