package psx

import (
	"fmt"
	"log"
	"strings"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/pixelgl"
	"github.com/faiface/pixel/text"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

// Debug display: a PixelGL window with text panels for the CPU register
// file, the live disassembly feed and the TTY tail. The PSX video output
// itself is not rendered.
type Display struct {
	window *pixelgl.Window

	// Debug text stuff
	debugAtlas    *text.Atlas // Used to load the font
	debugRegText  *text.Text  // CPU register printout
	debugInstText *text.Text  // CPU instruction disassembly
	debugTtyText  *text.Text  // TTY output tail
}

const (
	debugResW float64 = 960
	debugResH float64 = 600

	screenPosX float64 = 600 // Where to render the display on the user's monitor.
	screenPosY float64 = 400
)

func NewDisplay() *Display {
	config := pixelgl.WindowConfig{
		Title:    "PSX Emulator",
		Bounds:   pixel.R(0, 0, debugResW, debugResH),
		Position: pixel.V(screenPosX, screenPosY),
		VSync:    true,
	}
	window, err := pixelgl.NewWindow(config)
	if err != nil {
		log.Fatal("Unable to create new PixelGl window...\n", err)
	}

	debugAtlas := text.NewAtlas(basicfont.Face7x13, text.ASCII)
	debugRegText := text.New(pixel.V(8, debugResH-20), debugAtlas)
	debugInstText := text.New(pixel.V(280, debugResH-20), debugAtlas)
	debugTtyText := text.New(pixel.V(600, debugResH-20), debugAtlas)

	return &Display{
		window,
		debugAtlas,
		debugRegText,
		debugInstText,
		debugTtyText,
	}
}

// Write a string of text to the CPU register section of the debug panel.
func (d *Display) WriteRegDebugString(t string) {
	d.debugRegText.Clear()
	d.debugRegText.WriteString(t)
}

// Write a string of text to the instruction disassembly section of the
// debug panel.
func (d *Display) WriteInstDebugString(t string) {
	d.debugInstText.Clear()
	d.debugInstText.WriteString(t)
}

// Write a string of text to the TTY section of the debug panel.
func (d *Display) WriteTtyDebugString(t string) {
	d.debugTtyText.Clear()
	d.debugTtyText.WriteString(t)
}

// UpdateScreen redraws the debug panels.
func (d *Display) UpdateScreen() {
	d.window.Clear(colornames.Black)

	d.debugRegText.Draw(d.window, pixel.IM)
	d.debugInstText.Draw(d.window, pixel.IM)
	d.debugTtyText.Draw(d.window, pixel.IM)

	d.window.Update()
}

// Closed reports whether the user closed the debug window.
func (d *Display) Closed() bool {
	return d.window.Closed()
}

// DrawDebugPanel refreshes every text panel from the current machine
// state and redraws the window.
func (c *Context) DrawDebugPanel(d *Display, ttyTail string) {
	d.WriteRegDebugString(c.getCpuDebugString())
	d.WriteInstDebugString(c.getDisassemblyLines())
	d.WriteTtyDebugString(ttyTail)

	d.UpdateScreen()
}

func (c *Context) getCpuDebugString() string {
	var buf strings.Builder

	cpu := c.Cpu

	fmt.Fprintf(&buf, "PC: 0x%08X\n", cpu.Pc)
	fmt.Fprintf(&buf, "HI: 0x%08X\n", cpu.Hi)
	fmt.Fprintf(&buf, "LO: 0x%08X\n\n", cpu.Lo)

	for reg, name := range gprNames {
		fmt.Fprintf(&buf, "[%s] = 0x%08X\n", name, cpu.Gpr[reg])
	}

	fmt.Fprintf(&buf, "\nSR: 0x%08X\n", cpu.Cop0[Cop0Sr])
	fmt.Fprintf(&buf, "CAUSE: 0x%08X\n", cpu.Cop0[Cop0Cause])
	fmt.Fprintf(&buf, "EPC: 0x%08X\n", cpu.Cop0[Cop0Epc])

	return buf.String()
}

// The next few instructions at the program counter, disassembled.
func (c *Context) getDisassemblyLines() string {
	var buf strings.Builder

	for i := uint32(0); i < 16; i++ {
		addr := c.Cpu.Pc + i*4
		instr := c.Bus.peekWord(vaddrToPaddr(addr))

		fmt.Fprintf(&buf, "0x%08X: %s\n", addr, Disassemble(instr, addr))
	}

	return buf.String()
}
