package psx

// Events the core raises to the host.
type EventKind int

const (
	// The CPU executed an unrecognized instruction and the host asked
	// for reserved-instruction faults to halt; data is nil.
	EventCpuIllegal EventKind = iota

	// A log message was dispatched; data is a *LogMessage.
	EventLogMessage

	// A TTY line was captured; data is the line as a string. Raised when
	// a newline is seen or when the line buffer fills.
	EventTtyMessage
)

// EventCallback receives events inline on the emulation thread. It must
// not call back into Step.
type EventCallback func(kind EventKind, data interface{})

// Config carries everything a Context needs from the host: the backing
// buffers for RAM and BIOS, and the event sink.
type Config struct {
	Ram     []byte // 2 MiB main RAM buffer
	Bios    []byte // 512 KiB BIOS image
	EventCb EventCallback
}

// Context is the emulator aggregate. It exclusively owns the CPU, bus and
// tracer state; the RAM and BIOS buffers are borrowed from the host for
// its lifetime.
type Context struct {
	Cpu *Cpu
	Bus *Bus
	Log *Logger

	Disasm    *DisasmTrace
	BiosTrace *BiosTrace

	eventCb EventCallback
}

// NewContext wires the components together and resets the machine.
// The components are allocated here. Step is not allocation-free: log
// call sites on the step path box their arguments even when the message
// is filtered out.
func NewContext(cfg *Config) *Context {
	log := &Logger{eventCb: cfg.EventCb}

	bus := &Bus{
		Ram:  cfg.Ram,
		Bios: cfg.Bios,
		log:  log,
	}
	bus.Dmac.log = log
	bus.Gpu.log = log

	cpu := &Cpu{
		log:     log,
		eventCb: cfg.EventCb,
	}
	cpu.ConnectBus(bus)

	ctx := &Context{
		Cpu:       cpu,
		Bus:       bus,
		Log:       log,
		Disasm:    &DisasmTrace{},
		BiosTrace: &BiosTrace{},
		eventCb:   cfg.EventCb,
	}
	ctx.Reset()

	return ctx
}

// Reset the machine to the startup state.
func (c *Context) Reset() {
	c.Cpu.Reset()
}

// Step runs one instruction, bracketed by the tracer hooks.
func (c *Context) Step() {
	if c.Disasm.TraceInstruction {
		c.disasmTraceBegin()
	}

	c.biosTraceBegin()

	c.Cpu.Step()

	c.biosTraceEnd()

	if c.Disasm.TraceInstruction {
		c.disasmTraceEnd()
	}
}

// EnableTtyStdout turns the putchar TTY intercept on or off.
func (c *Context) EnableTtyStdout(enable bool) {
	c.BiosTrace.TtyIntercept = enable
}
