package psx

// The GPU appears to the core as its two bus-visible ports (GP0/GP1) and
// the GPUSTAT word; the rendering pipeline behind them is not emulated.
type Gpu struct {
	Gpustat uint32 // GPU status word, read at 0x1F801814.

	log *Logger
}

const (
	gp01CmdShift = 24
	gp01Param    = 0x00FFFFFF

	gp1CmdReset  = 0x00
	gp1CmdDmaDir = 0x04

	gpustatDmaDirMask = (1 << 29) | (1 << 30)

	gpustatResetVal = 0x14802000
)

// GP0 is the render/VRAM command sink. Commands are accepted and dropped;
// there is no command FIFO to fill.
func (g *Gpu) gp0(packet uint32) {
	g.log.msgf(ModBus, LogTrace, "GPU GP0 packet 0x%08X accepted", packet)
}

func (g *Gpu) fifoClear() {}

// GP1 display-control port.
func (g *Gpu) gp1(packet uint32) {
	switch packet >> gp01CmdShift {
	case gp1CmdReset:
		g.fifoClear()
		g.Gpustat = gpustatResetVal

	case gp1CmdDmaDir:
		g.Gpustat = (g.Gpustat &^ gpustatDmaDirMask) |
			((packet & gp01Param) & gpustatDmaDirMask)

		g.log.msgf(ModBus, LogTrace, "DMA direction changed")

	default:
		g.log.msgf(ModBus, LogWarn,
			"Unknown GPU GP1 packet (cmd=0x%02X, param=0x%06X)",
			packet>>gp01CmdShift, packet&gp01Param)
	}
}
