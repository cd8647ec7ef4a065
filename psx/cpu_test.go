package psx

import "testing"

func TestAddiOverflow(t *testing.T) {
	ctx, _ := newTestContext()
	cpu := ctx.Cpu

	cpu.Gpr[GprT0] = 0x7FFFFFFF
	cpu.Gpr[GprT1] = 0xDEADBEEF

	loadProgram(ctx, testProgAddr, iType(opAddi, GprT1, GprT0, 1))
	ctx.Step()

	tests := []struct {
		got  uint32
		want uint32
	}{
		{cpu.Gpr[GprT1], 0xDEADBEEF}, // destination not written
		{cpu.Cop0[Cop0Epc], testProgAddr},
		{cpu.Pc, exceptionVector},
		{cpu.NextPc, exceptionVector + 4},
		{cpu.Cop0[Cop0Cause] & 0x7C, ExcArithmeticOverflow << 2},
	}

	for _, test := range tests {
		if test.got != test.want {
			t.Errorf("got %#08X, want %#08X\n", test.got, test.want)
		}
	}
}

func TestAddiNoOverflow(t *testing.T) {
	ctx, _ := newTestContext()
	cpu := ctx.Cpu

	cpu.Gpr[GprT0] = 0x7FFFFFFE

	loadProgram(ctx, testProgAddr, iType(opAddi, GprT1, GprT0, 1))
	ctx.Step()

	if cpu.Gpr[GprT1] != 0x7FFFFFFF {
		t.Errorf("got %#08X, want 0x7FFFFFFF\n", cpu.Gpr[GprT1])
	}
	if cpu.Pc != testProgAddr+4 {
		t.Errorf("unexpected exception: pc=%#08X\n", cpu.Pc)
	}
}

func TestLoadDelaySlot(t *testing.T) {
	ctx, _ := newTestContext()
	cpu := ctx.Cpu

	// The instruction after a load must still see the old register
	// value; the one after that sees the loaded value.
	ctx.Bus.StoreWord(0x2000, 0x12345678)
	cpu.Gpr[GprA0] = 0x80002000
	cpu.Gpr[GprT0] = 0x11111111

	loadProgram(ctx, testProgAddr,
		iType(opLw, GprT0, GprA0, 0),
		rType(functAddu, GprT1, GprT0, GprZero, 0), // delay slot: old $t0
		rType(functAddu, GprT2, GprT0, GprZero, 0), // committed $t0
	)

	ctx.Step()
	ctx.Step()
	ctx.Step()

	if cpu.Gpr[GprT1] != 0x11111111 {
		t.Errorf("delay slot saw %#08X, want 0x11111111\n", cpu.Gpr[GprT1])
	}
	if cpu.Gpr[GprT2] != 0x12345678 {
		t.Errorf("post-slot saw %#08X, want 0x12345678\n", cpu.Gpr[GprT2])
	}
}

func TestLoadDelayEviction(t *testing.T) {
	ctx, _ := newTestContext()
	cpu := ctx.Cpu

	ctx.Bus.StoreWord(0x2000, 0xAAAAAAAA)
	ctx.Bus.StoreWord(0x2004, 0xBBBBBBBB)
	cpu.Gpr[GprA0] = 0x80002000

	loadProgram(ctx, testProgAddr,
		iType(opLw, GprT0, GprA0, 0),
		iType(opLw, GprT0, GprA0, 4),
		instrNop,
	)

	ctx.Step()
	ctx.Step()

	// The first load was evicted, never committed.
	if cpu.Gpr[GprT0] != 0 {
		t.Errorf("evicted load committed: $t0=%#08X\n", cpu.Gpr[GprT0])
	}

	ctx.Step()

	if cpu.Gpr[GprT0] != 0xBBBBBBBB {
		t.Errorf("got %#08X, want 0xBBBBBBBB\n", cpu.Gpr[GprT0])
	}
}

func TestStoreLoadRoundTrip(t *testing.T) {
	ctx, _ := newTestContext()
	cpu := ctx.Cpu

	cpu.Gpr[GprA0] = 0x80002000
	cpu.Gpr[GprT0] = 0xCAFEBABE

	loadProgram(ctx, testProgAddr,
		iType(opSw, GprT0, GprA0, 0),
		iType(opLw, GprT1, GprA0, 0),
		instrNop,
	)

	ctx.Step()
	ctx.Step()
	ctx.Step()

	if cpu.Gpr[GprT1] != cpu.Gpr[GprT0] {
		t.Errorf("got %#08X, want %#08X\n", cpu.Gpr[GprT1], cpu.Gpr[GprT0])
	}
}

func TestLwrLwlReconstructsUnalignedWord(t *testing.T) {
	for off := uint32(0); off < 4; off++ {
		ctx, _ := newTestContext()
		cpu := ctx.Cpu

		// Bytes 0x10..0x17 at the base address.
		for i := uint32(0); i < 8; i++ {
			ctx.Bus.StoreByte(0x2000+i, uint8(0x10+i))
		}
		cpu.Gpr[GprA0] = 0x80002000

		loadProgram(ctx, testProgAddr,
			iType(opLwr, GprT0, GprA0, off),
			iType(opLwl, GprT0, GprA0, off+3),
			instrNop,
		)

		ctx.Step()
		ctx.Step()
		ctx.Step()

		base := 0x10 + off
		want := base | (base+1)<<8 | (base+2)<<16 | (base+3)<<24

		if cpu.Gpr[GprT0] != want {
			t.Errorf("offset %d: got %#08X, want %#08X\n", off, cpu.Gpr[GprT0], want)
		}
	}
}

func TestDiv(t *testing.T) {
	tests := []struct {
		rs, rt uint32
		lo, hi uint32
	}{
		{22, 7, 3, 1},
		{0xFFFFFFEA, 7, 0xFFFFFFFD, 0xFFFFFFFF}, // -22 / 7 = -3 rem -1
		{22, 0, 0xFFFFFFFF, 22},                 // div by zero, positive dividend
		{0xFFFFFFEA, 0, 1, 0xFFFFFFEA},          // div by zero, negative dividend
		{0x80000000, 0xFFFFFFFF, 0x80000000, 0}, // INT_MIN / -1
	}

	for _, test := range tests {
		ctx, _ := newTestContext()
		cpu := ctx.Cpu

		cpu.Gpr[GprT0] = test.rs
		cpu.Gpr[GprT1] = test.rt

		loadProgram(ctx, testProgAddr, rType(functDiv, 0, GprT0, GprT1, 0))
		ctx.Step()

		if cpu.Lo != test.lo || cpu.Hi != test.hi {
			t.Errorf("%d/%d: got LO=%#08X HI=%#08X, want LO=%#08X HI=%#08X\n",
				int32(test.rs), int32(test.rt), cpu.Lo, cpu.Hi, test.lo, test.hi)
		}
	}
}

func TestDivuByZero(t *testing.T) {
	ctx, _ := newTestContext()
	cpu := ctx.Cpu

	cpu.Gpr[GprT0] = 1234
	cpu.Gpr[GprT1] = 0

	loadProgram(ctx, testProgAddr, rType(functDivu, 0, GprT0, GprT1, 0))
	ctx.Step()

	if cpu.Lo != 0xFFFFFFFF || cpu.Hi != 1234 {
		t.Errorf("got LO=%#08X HI=%d, want LO=0xFFFFFFFF HI=1234\n", cpu.Lo, cpu.Hi)
	}
}

func TestMultHiLo(t *testing.T) {
	tests := []struct {
		rs, rt uint32
	}{
		{3, 7},
		{0xFFFFFFFF, 0xFFFFFFFF}, // -1 * -1
		{0x7FFFFFFF, 0x7FFFFFFF},
		{0x80000000, 2},
	}

	for _, test := range tests {
		ctx, _ := newTestContext()
		cpu := ctx.Cpu

		cpu.Gpr[GprT0] = test.rs
		cpu.Gpr[GprT1] = test.rt

		loadProgram(ctx, testProgAddr,
			rType(functMult, 0, GprT0, GprT1, 0),
			rType(functMfhi, GprT2, 0, 0, 0),
			rType(functMflo, GprT3, 0, 0, 0),
		)

		ctx.Step()
		ctx.Step()
		ctx.Step()

		prod := int64(int32(test.rs)) * int64(int32(test.rt))
		wantHi := uint32(uint64(prod) >> 32)
		wantLo := uint32(prod)

		if cpu.Gpr[GprT2] != wantHi || cpu.Gpr[GprT3] != wantLo {
			t.Errorf("%#X*%#X: got HI=%#08X LO=%#08X, want HI=%#08X LO=%#08X\n",
				test.rs, test.rt, cpu.Gpr[GprT2], cpu.Gpr[GprT3], wantHi, wantLo)
		}
	}
}

func TestBreakThenRfe(t *testing.T) {
	ctx, _ := newTestContext()
	cpu := ctx.Cpu

	// Interrupt/mode bits whose oldest pair equals the previous pair: the
	// push discards the oldest pair and RFE leaves it as pushed, so all
	// six bits round-trip for this value.
	cpu.Cop0[Cop0Sr] = 0x2B

	loadProgram(ctx, testProgAddr, rType(functBreak, 0, 0, 0, 0))
	ctx.Step()

	if cpu.Pc != exceptionVector {
		t.Fatalf("pc=%#08X, want %#08X\n", cpu.Pc, exceptionVector)
	}
	if cpu.Cop0[Cop0Cause]&0x7C != ExcBreakpoint<<2 {
		t.Errorf("cause=%#08X, want code %d\n", cpu.Cop0[Cop0Cause], ExcBreakpoint)
	}
	if cpu.Cop0[Cop0Sr]&0x3F != 0x2C {
		t.Errorf("SR=%#08X after push, want low bits 0x2C\n", cpu.Cop0[Cop0Sr])
	}

	// The exception vector holds an RFE; the SR stack pops back.
	loadProgram(ctx, exceptionVector, opCop0<<26|0x10<<21|cop0FunctRfe)
	ctx.Step()

	if cpu.Cop0[Cop0Sr]&0x3F != 0x2B {
		t.Errorf("SR=%#08X after rfe, want low bits 0x2B\n", cpu.Cop0[Cop0Sr])
	}
}

func TestJrMisalignedTarget(t *testing.T) {
	ctx, _ := newTestContext()
	cpu := ctx.Cpu

	cpu.Gpr[GprT0] = 0x80002002

	loadProgram(ctx, testProgAddr, rType(functJr, 0, GprT0, 0, 0))
	ctx.Step()

	if cpu.Pc != exceptionVector {
		t.Errorf("pc=%#08X, want %#08X\n", cpu.Pc, exceptionVector)
	}
	if cpu.Cop0[Cop0Cause]&0x7C != ExcAddressErrorLoad<<2 {
		t.Errorf("cause=%#08X, want code %d\n", cpu.Cop0[Cop0Cause], ExcAddressErrorLoad)
	}
	if cpu.Cop0[Cop0BadA] != testProgAddr {
		t.Errorf("BadA=%#08X, want %#08X\n", cpu.Cop0[Cop0BadA], testProgAddr)
	}
}

func TestSwSuppressedWithIsolatedCache(t *testing.T) {
	ctx, _ := newTestContext()
	cpu := ctx.Cpu

	ctx.Bus.StoreWord(0x2000, 0x11111111)
	cpu.Cop0[Cop0Sr] = srIsC
	cpu.Gpr[GprA0] = 0x80002000
	cpu.Gpr[GprT0] = 0x22222222

	loadProgram(ctx, testProgAddr, iType(opSw, GprT0, GprA0, 0))
	ctx.Step()

	if got := ctx.Bus.LoadWord(0x2000); got != 0x11111111 {
		t.Errorf("bus received store with IsC set: %#08X\n", got)
	}
}

func TestBranchDelaySlot(t *testing.T) {
	ctx, _ := newTestContext()
	cpu := ctx.Cpu

	target := uint32(testProgAddr + 0x20)

	loadProgram(ctx, testProgAddr,
		iType(opBeq, GprZero, GprZero, 0x20>>2-1), // to testProgAddr+0x20
		iType(opAddiu, GprT0, GprZero, 1),         // delay slot still runs
	)
	loadProgram(ctx, target, iType(opAddiu, GprT1, GprZero, 2))
	cpu.Pc = testProgAddr
	cpu.NextPc = cpu.Pc + 4

	ctx.Step()

	if cpu.NextPc != target {
		t.Fatalf("next_pc=%#08X, want %#08X\n", cpu.NextPc, target)
	}

	ctx.Step() // delay slot
	if cpu.Gpr[GprT0] != 1 {
		t.Errorf("delay slot did not execute\n")
	}

	ctx.Step() // branch target
	if cpu.Gpr[GprT1] != 2 {
		t.Errorf("branch target did not execute\n")
	}
}

func TestBcond(t *testing.T) {
	tests := []struct {
		rt     uint32
		rsVal  uint32
		taken  bool
		linked bool
	}{
		{0x00, 0xFFFFFFFF, true, false}, // bltz, negative
		{0x00, 1, false, false},         // bltz, positive
		{0x01, 1, true, false},          // bgez, positive
		{0x01, 0xFFFFFFFF, false, false},
		{0x10, 0xFFFFFFFF, true, true}, // bltzal
		{0x11, 0, true, true},          // bgezal
	}

	for _, test := range tests {
		ctx, _ := newTestContext()
		cpu := ctx.Cpu

		cpu.Gpr[GprT0] = test.rsVal

		loadProgram(ctx, testProgAddr, iType(opBcond, test.rt, GprT0, 4))
		ctx.Step()

		wantNext := uint32(testProgAddr + 4 + (4 << 2))
		if !test.taken {
			wantNext = testProgAddr + 8
		}
		if cpu.NextPc != wantNext {
			t.Errorf("rt=%#02X rs=%#X: next_pc=%#08X, want %#08X\n",
				test.rt, test.rsVal, cpu.NextPc, wantNext)
		}

		wantRa := uint32(0)
		if test.linked {
			wantRa = testProgAddr + 8
		}
		if cpu.Gpr[GprRa] != wantRa {
			t.Errorf("rt=%#02X: $ra=%#08X, want %#08X\n", test.rt, cpu.Gpr[GprRa], wantRa)
		}
	}
}

func TestJalWritesLink(t *testing.T) {
	ctx, _ := newTestContext()
	cpu := ctx.Cpu

	target := uint32(0x80004000)

	loadProgram(ctx, testProgAddr, jType(opJal, target))
	ctx.Step()

	if cpu.Gpr[GprRa] != testProgAddr+8 {
		t.Errorf("$ra=%#08X, want %#08X\n", cpu.Gpr[GprRa], uint32(testProgAddr+8))
	}
	if cpu.NextPc != target {
		t.Errorf("next_pc=%#08X, want %#08X\n", cpu.NextPc, target)
	}
}

func TestZeroRegisterStaysZero(t *testing.T) {
	ctx, _ := newTestContext()
	cpu := ctx.Cpu

	ctx.Bus.StoreWord(0x2000, 0x12345678)
	cpu.Gpr[GprA0] = 0x80002000

	loadProgram(ctx, testProgAddr,
		iType(opAddiu, GprZero, GprZero, 5),
		iType(opLw, GprZero, GprA0, 0),
		instrNop,
		instrNop,
	)

	for i := 0; i < 4; i++ {
		ctx.Step()
		if cpu.Gpr[GprZero] != 0 {
			t.Fatalf("step %d: $zero=%#08X\n", i, cpu.Gpr[GprZero])
		}
	}
}

func TestNextPcInvariant(t *testing.T) {
	ctx, _ := newTestContext()
	cpu := ctx.Cpu

	loadProgram(ctx, testProgAddr,
		iType(opAddiu, GprT0, GprZero, 1),
		iType(opOri, GprT1, GprZero, 2),
	)

	ctx.Step()
	if cpu.NextPc != cpu.Pc+4 {
		t.Errorf("next_pc=%#08X, want pc+4=%#08X\n", cpu.NextPc, cpu.Pc+4)
	}
}

func TestMisalignedPcFaultsBeforeFetch(t *testing.T) {
	ctx, _ := newTestContext()
	cpu := ctx.Cpu

	cpu.Pc = 0x80001002
	cpu.NextPc = cpu.Pc + 4

	ctx.Step()

	if cpu.Pc != exceptionVector {
		t.Errorf("pc=%#08X, want %#08X\n", cpu.Pc, exceptionVector)
	}
	if cpu.Cop0[Cop0Epc] != 0x80001002 {
		t.Errorf("EPC=%#08X, want 0x80001002\n", cpu.Cop0[Cop0Epc])
	}
	if cpu.Cop0[Cop0BadA] != 0x80001002 {
		t.Errorf("BadA=%#08X, want 0x80001002\n", cpu.Cop0[Cop0BadA])
	}
}

func TestShiftCountsUseLowFiveBits(t *testing.T) {
	ctx, _ := newTestContext()
	cpu := ctx.Cpu

	cpu.Gpr[GprT0] = 1
	cpu.Gpr[GprT1] = 33 // shifts by 1

	loadProgram(ctx, testProgAddr, rType(functSllv, GprT2, GprT1, GprT0, 0))
	ctx.Step()

	if cpu.Gpr[GprT2] != 2 {
		t.Errorf("got %d, want 2\n", cpu.Gpr[GprT2])
	}
}

func TestExcHaltSkipsServicing(t *testing.T) {
	ctx, ev := newTestContext()
	cpu := ctx.Cpu

	ctx.Log.SetModuleLevel(ModCpu, LogError)
	cpu.ExcHalt = 1 << ExcReservedInstruction

	loadProgram(ctx, testProgAddr, 0xFC000000) // unassigned primary opcode
	ctx.Step()

	if cpu.Pc == exceptionVector {
		t.Errorf("halted exception was serviced\n")
	}
	if !ev.hasLog(ModCpu, LogError) {
		t.Errorf("no error log for halted exception\n")
	}
	if ev.illegal != 1 {
		t.Errorf("CpuIllegal events: got %d, want 1\n", ev.illegal)
	}
}

func TestLhMisalignedAddress(t *testing.T) {
	ctx, _ := newTestContext()
	cpu := ctx.Cpu

	cpu.Gpr[GprA0] = 0x80002001

	loadProgram(ctx, testProgAddr, iType(opLh, GprT0, GprA0, 0))
	ctx.Step()

	if cpu.Cop0[Cop0Cause]&0x7C != ExcAddressErrorLoad<<2 {
		t.Errorf("cause=%#08X, want AdEL\n", cpu.Cop0[Cop0Cause])
	}
}

func TestShMisalignedAddress(t *testing.T) {
	ctx, _ := newTestContext()
	cpu := ctx.Cpu

	cpu.Gpr[GprA0] = 0x80002001

	loadProgram(ctx, testProgAddr, iType(opSh, GprT0, GprA0, 0))
	ctx.Step()

	if cpu.Cop0[Cop0Cause]&0x7C != ExcAddressErrorStore<<2 {
		t.Errorf("cause=%#08X, want AdES\n", cpu.Cop0[Cop0Cause])
	}
}

func TestLbSignExtends(t *testing.T) {
	ctx, _ := newTestContext()
	cpu := ctx.Cpu

	ctx.Bus.StoreByte(0x2000, 0x80)
	cpu.Gpr[GprA0] = 0x80002000

	loadProgram(ctx, testProgAddr,
		iType(opLb, GprT0, GprA0, 0),
		iType(opLbu, GprT1, GprA0, 0),
		instrNop,
	)

	ctx.Step()
	ctx.Step()
	ctx.Step()

	if cpu.Gpr[GprT0] != 0xFFFFFF80 {
		t.Errorf("lb: got %#08X, want 0xFFFFFF80\n", cpu.Gpr[GprT0])
	}
	if cpu.Gpr[GprT1] != 0x80 {
		t.Errorf("lbu: got %#08X, want 0x80\n", cpu.Gpr[GprT1])
	}
}
