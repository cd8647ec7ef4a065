package psx

import (
	"bytes"
	"fmt"
	"strings"
)

// BIOS call tracer. When the PC reaches one of the three BIOS dispatch
// vectors, $t1 selects a kernel function; known functions are logged with
// their prototype and formatted arguments. Functions that return a value
// are held until the next JR $ra so $v0 can be appended.

const (
	biosVectorA0 = 0xA0
	biosVectorB0 = 0xB0
	biosVectorC0 = 0xC0

	// The opcode word for "jr $ra".
	jrRaInstr = 0x03E00008
)

// Return-value kinds of a BIOS function.
const (
	biosRetNone = iota
	biosRetPtr
	biosRetInt
)

type biosFn struct {
	// The full prototype of the BIOS call. Standard libc functions
	// match the ANSI C prototype as closely as possible.
	prototype string

	retvalType int

	// Whether the call runs through the argument formatter.
	formatArgs bool
}

var biosA0Table = map[uint32]biosFn{
	0x17: {"int strcmp(const char *s1=%ps, const char *s2=%ps)", biosRetInt, true},
	0x25: {"int toupper(int c=%d)", biosRetInt, true},
	0x2A: {"void *memcpy(void *s1=%p, const void *s2=%p, size_t n=%d)", biosRetPtr, true},
	0x3C: {"void putchar(char c=%c)", biosRetNone, true},
	0x3F: {"void printf(const char *format=%ps, ...)", biosRetNone, true},
	0x44: {"void FlushCache(void)", biosRetNone, false},
	0x72: {"void CdRemove(void)", biosRetNone, false},
	0x96: {"void AddCDROMDevice(void)", biosRetNone, false},
	0x97: {"void AddMemCardDevice(void)", biosRetNone, false},
	0x99: {"void AddDummyTtyDevice(void)", biosRetNone, false},
	0xA3: {"void DequeueCdIntr(void)", biosRetNone, false},
}

var biosB0Table = map[uint32]biosFn{
	0x00: {"void alloc_kernel_memory(size_t size=%d)", biosRetNone, true},
	0x09: {"int CloseEvent(struct ev *ev=%p)", biosRetInt, true},
	0x18: {"void *SetDefaultExitFromException(void)", biosRetPtr, false},
	0x19: {"void SetCustomExitFromException(void *buf=%p)", biosRetNone, true},
	0x3D: {"void std_out_putchar(char c=%c)", biosRetNone, true},
	0x47: {"void AddDevice(struct device_info *dev=%p)", biosRetNone, true},
	0x5B: {"void ChangeClearPad(int n=%d)", biosRetNone, true},
}

var biosC0Table = map[uint32]biosFn{
	0x00: {"void EnqueueTimerAndVblankIrqs(int prio=%d)", biosRetNone, true},
	0x01: {"void EnqueueSyscallHandler(int prio=%d)", biosRetNone, true},
	0x03: {"void *SysDeqIntRP(int prio=%d, int struc=%d)", biosRetPtr, true},
	0x07: {"void InstallExceptionHandlers(void)", biosRetNone, false},
	0x08: {"void SysInitMemory(u32 *addr=%p, size_t size=%d)", biosRetNone, true},
	0x0A: {"int ChangeClearRCnt(int t=%d, int flag=%d)", biosRetInt, true},
	0x0C: {"void InitDefInt(int prio=%d)", biosRetNone, true},
	0x12: {"void InstallDevices(int ttyflag=%d)", biosRetNone, true},
	0x1C: {"void AdjustA0Table(void)", biosRetNone, false},
}

const ttyBufSize = 256

type BiosTrace struct {
	Enabled bool

	// Explicit TTY output interception: individual putchar BIOS calls
	// are not logged, each character instead accumulates into a line
	// buffer flushed on newline.
	TtyIntercept bool

	// Whether %ps arguments are dereferenced as guest strings.
	PtrDeref bool

	// Set while waiting on the return value of a non-void call.
	waiting bool

	str string

	ttyBuf [ttyBufSize]byte
	ttyLen int
}

func escSeqConv(c byte) string {
	switch c {
	case '\n':
		return "\\n"
	case '\t':
		return "\\t"
	default:
		return ""
	}
}

// Resolve a guest pointer into the RAM or BIOS backing buffer and read
// the null-terminated string there.
func (c *Context) guestString(addr uint32) string {
	paddr := vaddrToPaddr(addr)

	var buf []byte
	switch {
	case paddr <= ramEndAddr:
		buf = c.Bus.Ram[paddr:]
	case paddr >= biosBegAddr && paddr <= biosEndAddr:
		buf = c.Bus.Bios[paddr&biosMask:]
	default:
		return fmt.Sprintf("<0x%08X>", addr)
	}

	if n := bytes.IndexByte(buf, 0); n >= 0 {
		buf = buf[:n]
	}
	return string(buf)
}

// Format the prototype's %-specifiers from $a0..$a3.
func (c *Context) biosFormat(fn *biosFn) string {
	var sb strings.Builder

	arg := uint32(GprA0)
	proto := fn.prototype

	for i := 0; i < len(proto); i++ {
		if proto[i] != '%' {
			sb.WriteByte(proto[i])
			continue
		}

		i++
		switch proto[i] {
		case 'c':
			ch := byte(c.Cpu.Gpr[arg])
			if esc := escSeqConv(ch); esc != "" {
				fmt.Fprintf(&sb, "'%s'", esc)
			} else {
				fmt.Fprintf(&sb, "'%c'", ch)
			}

		case 'd':
			fmt.Fprintf(&sb, "%d", int32(c.Cpu.Gpr[arg]))

		case 'p':
			deref := false
			if i+1 < len(proto) && proto[i+1] == 's' {
				i++
				deref = c.BiosTrace.PtrDeref
			}
			if deref {
				fmt.Fprintf(&sb, "%q", c.guestString(c.Cpu.Gpr[arg]))
			} else {
				fmt.Fprintf(&sb, "0x%08X", c.Cpu.Gpr[arg])
			}
		}
		arg++
	}

	return sb.String()
}

// Accumulate one putchar character; a newline or a full buffer flushes
// the line as a TTY event.
func (c *Context) ttyIntercept() {
	bt := c.BiosTrace
	ch := byte(c.Cpu.Gpr[GprA0])

	if ch == '\n' {
		c.flushTtyLine()
		return
	}

	bt.ttyBuf[bt.ttyLen] = ch
	bt.ttyLen++

	if bt.ttyLen >= ttyBufSize {
		c.Log.msgf(ModBios, LogWarn,
			"TTY stdout buffer wrapping around, corruption is expected")
		c.flushTtyLine()
	}
}

func (c *Context) flushTtyLine() {
	bt := c.BiosTrace
	line := string(bt.ttyBuf[:bt.ttyLen])

	if c.eventCb != nil {
		c.eventCb(EventTtyMessage, line)
	}
	c.Log.msgf(ModTtyStdout, LogInfo, "%s", line)

	bt.ttyLen = 0
}

// Pre-step hook: detect a dispatch-vector entry and format the call.
func (c *Context) biosTraceBegin() {
	bt := c.BiosTrace

	if !bt.Enabled || bt.waiting {
		return
	}

	var table map[uint32]biosFn
	switch c.Cpu.Pc {
	case biosVectorA0:
		table = biosA0Table
	case biosVectorB0:
		table = biosB0Table
	case biosVectorC0:
		table = biosC0Table
	default:
		return
	}

	funcIdx := c.Cpu.Gpr[GprT1]
	fn, known := table[funcIdx]
	if !known {
		c.Log.msgf(ModBios, LogWarn,
			"Unknown BIOS call (PC=0x%08X, fn=0x%02X)", c.Cpu.Pc, funcIdx)
		return
	}

	if bt.TtyIntercept && c.Cpu.Pc == biosVectorB0 && funcIdx == 0x3D {
		c.ttyIntercept()
		return
	}
	if bt.TtyIntercept && c.Cpu.Pc == biosVectorA0 && funcIdx == 0x3C {
		c.ttyIntercept()
		return
	}

	if fn.formatArgs {
		bt.str = c.biosFormat(&fn)
	} else {
		bt.str = fn.prototype
	}

	if fn.retvalType == biosRetNone {
		c.Log.msgf(ModBios, LogDebug, "BIOS call: %s", bt.str)
		bt.str = ""
	} else {
		bt.waiting = true
	}
}

// Post-step hook: append the return value once the call returns.
func (c *Context) biosTraceEnd() {
	bt := c.BiosTrace

	if bt.waiting && c.Cpu.Instr == jrRaInstr {
		c.Log.msgf(ModBios, LogDebug, "BIOS call: %s -> 0x%08X",
			bt.str, c.Cpu.Gpr[GprV0])

		bt.waiting = false
		bt.str = ""
	}
}
