package psx

import "encoding/binary"

// Shared test scaffolding: a Context over scratch RAM/BIOS buffers with
// every emitted event captured for inspection.

type testEvents struct {
	logs    []LogMessage
	tty     []string
	illegal int
}

func (ev *testEvents) hasLog(id ModuleID, level LogLevel) bool {
	for _, msg := range ev.logs {
		if msg.Module == id && msg.Level == level {
			return true
		}
	}
	return false
}

func (ev *testEvents) lastLogText() string {
	if len(ev.logs) == 0 {
		return ""
	}
	return ev.logs[len(ev.logs)-1].Text
}

func newTestContext() (*Context, *testEvents) {
	ev := &testEvents{}

	cb := func(kind EventKind, data interface{}) {
		switch kind {
		case EventLogMessage:
			ev.logs = append(ev.logs, *data.(*LogMessage))
		case EventTtyMessage:
			ev.tty = append(ev.tty, data.(string))
		case EventCpuIllegal:
			ev.illegal++
		}
	}

	ctx := NewContext(&Config{
		Ram:     make([]byte, RamSize),
		Bios:    make([]byte, BiosSize),
		EventCb: cb,
	})
	ctx.Log.SetGlobalLevel(LogWarn)

	return ctx, ev
}

// Program placement for CPU tests: a KSEG0 address backed by main RAM.
const testProgAddr = 0x80001000

// loadProgram writes instruction words into RAM at the given virtual
// address and points the CPU there.
func loadProgram(ctx *Context, vaddr uint32, words ...uint32) {
	paddr := vaddrToPaddr(vaddr)
	for i, w := range words {
		binary.LittleEndian.PutUint32(ctx.Bus.Ram[paddr+uint32(i)*4:], w)
	}

	ctx.Cpu.Pc = vaddr
	ctx.Cpu.NextPc = vaddr + 4
}

// Instruction encoders.

func rType(funct, rd, rs, rt, shamt uint32) uint32 {
	return rs<<21 | rt<<16 | rd<<11 | shamt<<6 | funct
}

func iType(op, rt, rs, imm uint32) uint32 {
	return op<<26 | rs<<21 | rt<<16 | imm&0xFFFF
}

func jType(op, target uint32) uint32 {
	return op<<26 | (target>>2)&0x3FFFFFF
}

const instrNop = 0x00000000
