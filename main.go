package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/n-ulricksen/psx-emulator/psx"

	"github.com/faiface/pixel/pixelgl"
	"github.com/pkg/errors"
)

// ANSI colors for log output, by level.
const (
	ansiRed     = "\x1b[1;91m"
	ansiYellow  = "\x1b[1;33m"
	ansiMagenta = "\x1b[1;35m"
	ansiWhite   = "\x1b[1;37m"
	ansiReset   = "\x1b[0m"
)

// Command line flags
var (
	flagDebug    bool
	flagTrace    bool
	flagTty      bool
	flagLogLevel string
)

// Instructions executed between debug panel refreshes.
const stepsPerFrame = 100000

var logLevels = map[string]psx.LogLevel{
	"off":   psx.LogOff,
	"info":  psx.LogInfo,
	"warn":  psx.LogWarn,
	"error": psx.LogError,
	"debug": psx.LogDebug,
	"trace": psx.LogTrace,
}

func main() {
	parseFlags()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "syntax: %s <bios_file> [exe_file]\n", os.Args[0])
		os.Exit(1)
	}

	level, ok := logLevels[flagLogLevel]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown log level %q\n", flagLogLevel)
		os.Exit(1)
	}

	bios, err := loadBios(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ram := make([]byte, psx.RamSize)

	var ctx *psx.Context
	var ttyTail string

	onEvent := func(kind psx.EventKind, data interface{}) {
		switch kind {
		case psx.EventLogMessage:
			printLogMessage(ctx, data.(*psx.LogMessage))

		case psx.EventTtyMessage:
			ttyTail += data.(string) + "\n"

		case psx.EventCpuIllegal:
			fmt.Printf(ansiRed+"Illegal instruction trapped: 0x%08X\n"+ansiReset,
				ctx.Cpu.Instr)
			os.Exit(1)
		}
	}

	ctx = psx.NewContext(&psx.Config{
		Ram:     ram,
		Bios:    bios,
		EventCb: onEvent,
	})

	ctx.Log.SetGlobalLevel(level)
	ctx.Disasm.TraceInstruction = flagTrace
	ctx.BiosTrace.Enabled = true
	ctx.EnableTtyStdout(flagTty)

	// Reserved-instruction faults halt rather than vector; a BIOS or
	// test ROM executing garbage is a bug worth stopping on.
	ctx.Cpu.ExcHalt = 1 << psx.ExcReservedInstruction

	if len(args) > 1 {
		exe, err := ioutil.ReadFile(args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, errors.Wrap(err, "reading EXE"))
			os.Exit(1)
		}
		if err := ctx.LoadExe(exe); err != nil {
			fmt.Fprintln(os.Stderr, errors.Wrap(err, "loading EXE"))
			os.Exit(1)
		}
	}

	if flagDebug {
		pixelgl.Run(func() {
			display := psx.NewDisplay()

			for !display.Closed() {
				for i := 0; i < stepsPerFrame; i++ {
					ctx.Step()
				}
				ctx.DrawDebugPanel(display, ttyTail)
			}
		})
		return
	}

	for {
		ctx.Step()
	}
}

func parseFlags() {
	flag.BoolVar(&flagDebug, "d", false, "enable debug panel")
	flag.BoolVar(&flagTrace, "trace", false, "enable instruction trace")
	flag.BoolVar(&flagTty, "t", true, "intercept TTY output")
	// Levels are inclusive from the top of the enum, so "warn" would
	// filter out error reports; "debug" keeps fatals visible.
	flag.StringVar(&flagLogLevel, "l", "debug", "log level (off|info|warn|error|debug|trace)")

	flag.Parse()
}

func loadBios(path string) ([]byte, error) {
	bios, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading BIOS")
	}
	if len(bios) != psx.BiosSize {
		return nil, errors.Errorf("BIOS image %s is %d bytes, want %d",
			path, len(bios), psx.BiosSize)
	}
	return bios, nil
}

func printLogMessage(ctx *psx.Context, msg *psx.LogMessage) {
	switch msg.Level {
	case psx.LogInfo:
		fmt.Println(ansiWhite + msg.Text + ansiReset)

	case psx.LogWarn:
		fmt.Println(ansiYellow + msg.Text + ansiReset)

	case psx.LogError:
		fmt.Println(ansiRed + msg.Text + ansiReset)
		if ctx != nil {
			fmt.Printf(ansiRed+"Last instruction: 0x%08X\t 0x%08X\t %s\n"+ansiReset,
				ctx.Cpu.CurrentPc, ctx.Cpu.Instr,
				psx.Disassemble(ctx.Cpu.Instr, ctx.Cpu.CurrentPc))
			fmt.Println("=============== CPU registers ===============")
			fmt.Print(psx.GprDump(ctx.Cpu))
			fmt.Println(ansiRed + "Emulation halted." + ansiReset)
		}
		os.Exit(1)

	default:
		fmt.Println(ansiMagenta + msg.Text + ansiReset)
	}
}
