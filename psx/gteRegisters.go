package psx

import "math/bits"

// Geometry Transformation Engine (COP2) register file: 32 data registers
// and 32 control registers, several with read/write quirks that guest
// software depends on.
type Gte struct {
	data [32]uint32
	ctrl [32]uint32
}

// Data register (CPR) indices.
const (
	GteVxy0 = 0
	GteVz0  = 1
	GteVxy1 = 2
	GteVz1  = 3
	GteVxy2 = 4
	GteVz2  = 5
	GteRgbc = 6
	GteOtz  = 7
	GteIr0  = 8
	GteIr1  = 9
	GteIr2  = 10
	GteIr3  = 11
	GteSxy0 = 12
	GteSxy1 = 13
	GteSxy2 = 14
	GteSxyp = 15
	GteSz0  = 16
	GteSz1  = 17
	GteSz2  = 18
	GteSz3  = 19
	GteRgb0 = 20
	GteRgb1 = 21
	GteRgb2 = 22
	GteRes1 = 23
	GteMac0 = 24
	GteMac1 = 25
	GteMac2 = 26
	GteMac3 = 27
	GteIrgb = 28
	GteOrgb = 29
	GteLzcs = 30
	GteLzcr = 31
)

// Control register (CCR) indices.
const (
	GteR11R12 = 0
	GteR13R21 = 1
	GteR22R23 = 2
	GteR31R32 = 3
	GteR33    = 4
	GteTrx    = 5
	GteTry    = 6
	GteTrz    = 7
	GteL11L12 = 8
	GteL33    = 12
	GteRbk    = 13
	GteGbk    = 14
	GteBbk    = 15
	GteLr1Lr2 = 16
	GteLb3    = 20
	GteRfc    = 21
	GteGfc    = 22
	GteBfc    = 23
	GteOfx    = 24
	GteOfy    = 25
	GteH      = 26
	GteDqa    = 27
	GteDqb    = 28
	GteZsf3   = 29
	GteZsf4   = 30
	GteFlag   = 31
)

// FLAG register bits.
const (
	flagErr             = 1 << 31
	flagMac1PosOvf      = 1 << 30
	flagMac2PosOvf      = 1 << 29
	flagMac3PosOvf      = 1 << 28
	flagMac1NegOvf      = 1 << 27
	flagMac2NegOvf      = 1 << 26
	flagMac3NegOvf      = 1 << 25
	flagIr1Saturated    = 1 << 24
	flagIr2Saturated    = 1 << 23
	flagIr3Saturated    = 1 << 22
	flagRgbRSaturated   = 1 << 21
	flagRgbGSaturated   = 1 << 20
	flagRgbBSaturated   = 1 << 19
	flagSz3OtzSaturated = 1 << 18
	flagDivOvf          = 1 << 17
	flagMac0PosOvf      = 1 << 16
	flagMac0NegOvf      = 1 << 15
	flagSx2Saturated    = 1 << 14
	flagSy2Saturated    = 1 << 13
	flagIr0Saturated    = 1 << 12
)

// Bits that contribute to the read-only ERR summary bit.
const flagMaskErr = flagMac1PosOvf | flagMac2PosOvf | flagMac3PosOvf |
	flagMac1NegOvf | flagMac2NegOvf | flagMac3NegOvf |
	flagIr1Saturated | flagIr2Saturated | flagSz3OtzSaturated |
	flagDivOvf | flagMac0PosOvf | flagMac0NegOvf |
	flagSx2Saturated | flagSy2Saturated

// Bits a direct FLAG write may set; ERR itself is read-only.
const flagMaskWrite = flagMaskErr | flagIr3Saturated |
	flagRgbRSaturated | flagRgbGSaturated | flagRgbBSaturated |
	flagIr0Saturated

// Saturation bounds.
const (
	mac0Min = -(int64(1) << 31)
	mac0Max = (int64(1) << 31) - 1

	mac123Min = -(int64(1) << 43)
	mac123Max = (int64(1) << 43) - 1

	ir0Min = 0
	ir0Max = 1 << 12

	ir123LmMin = 0
	ir123Min   = -(1 << 15)
	ir123Max   = (1 << 15) - 1

	sxy2Min = -(1 << 10)
	sxy2Max = (1 << 10) - 1

	sz3OtzMin = 0
	sz3OtzMax = (1 << 16) - 1
)

// GTE instruction bits: lm forces the IR saturation floor to zero, sf
// selects a 12-bit right shift on MAC results.
const (
	gteInstrLmFlag = 1 << 10
	gteInstrSfFlag = 1 << 19
)

// Read a data register, applying the read quirks.
func (g *Gte) ReadData(reg uint32) uint32 {
	switch reg {
	case GteIr0, GteIr1, GteIr2, GteIr3:
		return signExt16(g.data[reg])

	case GteSxyp:
		// SXYP reads as SXY2.
		return g.data[GteSxy2]

	case GteIrgb, GteOrgb:
		r := clamp32(int32(g.ir1())>>7, 0x00, 0x1F)
		gc := clamp32(int32(g.ir2())>>7, 0x00, 0x1F)
		b := clamp32(int32(g.ir3())>>7, 0x00, 0x1F)

		return uint32(b<<10 | gc<<5 | r)

	case GteLzcr:
		lzcs := int32(g.data[GteLzcs])
		if lzcs < 0 {
			return uint32(bits.LeadingZeros32(^uint32(lzcs)))
		}
		return uint32(bits.LeadingZeros32(uint32(lzcs)))

	default:
		return g.data[reg]
	}
}

// Write a data register, applying the write quirks.
func (g *Gte) WriteData(reg, val uint32) {
	switch reg {
	case GteVz0, GteVz1, GteVz2, GteIr0:
		g.data[reg] = signExt16(val)

	case GteOtz, GteSz0, GteSz1, GteSz2, GteSz3:
		g.data[reg] = val & 0xFFFF

	case GteSxyp:
		// Writing SXYP pushes the screen XY history.
		g.data[GteSxy0] = g.data[GteSxy1]
		g.data[GteSxy1] = g.data[GteSxy2]
		g.data[GteSxy2] = val

	case GteIrgb:
		g.data[GteIr1] = signExt16((val & 0x1F) << 7)
		g.data[GteIr2] = signExt16(((val >> 5) & 0x1F) << 7)
		g.data[GteIr3] = signExt16(((val >> 10) & 0x1F) << 7)

	default:
		g.data[reg] = val
	}
}

// Read a control register.
func (g *Gte) ReadCtrl(reg uint32) uint32 {
	switch reg {
	case GteH:
		// H reads back sign-extended, a hardware quirk.
		return signExt16(g.ctrl[reg])

	default:
		return g.ctrl[reg]
	}
}

// Write a control register.
func (g *Gte) WriteCtrl(reg, val uint32) {
	switch reg {
	case GteR33, GteL33, GteLb3, GteDqa, GteZsf3, GteZsf4:
		g.ctrl[reg] = signExt16(val)

	case GteFlag:
		g.ctrl[GteFlag] = val & flagMaskWrite
		g.flagUpdate()

	default:
		g.ctrl[reg] = val
	}
}

// Typed views over the packed register file.

func (g *Gte) ir0() int16 { return int16(g.data[GteIr0]) }
func (g *Gte) ir1() int16 { return int16(g.data[GteIr1]) }
func (g *Gte) ir2() int16 { return int16(g.data[GteIr2]) }
func (g *Gte) ir3() int16 { return int16(g.data[GteIr3]) }

func (g *Gte) setIr(i int, v int16) { g.data[GteIr0+i] = signExt16(uint32(uint16(v))) }
func (g *Gte) ir(i int) int16       { return int16(g.data[GteIr0+i]) }

func (g *Gte) mac(i int) int32       { return int32(g.data[GteMac0+i]) }
func (g *Gte) setMac(i int, v int32) { g.data[GteMac0+i] = uint32(v) }

func (g *Gte) sx(n int) int16 { return int16(g.data[GteSxy0+n]) }
func (g *Gte) sy(n int) int16 { return int16(g.data[GteSxy0+n] >> 16) }

func (g *Gte) sz(n int) uint16 { return uint16(g.data[GteSz0+n]) }

// A vertex (V0/V1/V2) as its three signed 16-bit lanes.
func (g *Gte) vertex(n int) (x, y, z int16) {
	vxy := g.data[GteVxy0+2*n]
	return int16(vxy), int16(vxy >> 16), int16(g.data[GteVz0+2*n])
}

// Rotation/light/color matrix element, from the pair-packed control
// words. base is the first control word of the matrix (R11R12, L11L12 or
// LR1LR2).
func (g *Gte) matEl(base uint32, row, col int) int16 {
	idx := row*3 + col
	word := g.ctrl[base+uint32(idx/2)]
	if idx%2 != 0 {
		return int16(word >> 16)
	}
	return int16(word)
}

func (g *Gte) tr(i int) int32 { return int32(g.ctrl[GteTrx+uint32(i)]) }
func (g *Gte) bk(i int) int32 { return int32(g.ctrl[GteRbk+uint32(i)]) }
func (g *Gte) fc(i int) int32 { return int32(g.ctrl[GteRfc+uint32(i)]) }

func (g *Gte) ofx() int32  { return int32(g.ctrl[GteOfx]) }
func (g *Gte) ofy() int32  { return int32(g.ctrl[GteOfy]) }
func (g *Gte) h() uint16   { return uint16(g.ctrl[GteH]) }
func (g *Gte) dqa() int16  { return int16(g.ctrl[GteDqa]) }
func (g *Gte) dqb() int32  { return int32(g.ctrl[GteDqb]) }
func (g *Gte) zsf3() int16 { return int16(g.ctrl[GteZsf3]) }
func (g *Gte) zsf4() int16 { return int16(g.ctrl[GteZsf4]) }

// RGBC color components and the pass-through code byte.
func (g *Gte) rgbc(i int) uint8 { return uint8(g.data[GteRgbc] >> (8 * uint(i))) }
func (g *Gte) code() uint32     { return g.data[GteRgbc] >> 24 }

// Recompute the read-only ERR bit from the error-contributing flags.
// ERR is a computed view, refreshed after every command and FLAG write.
func (g *Gte) flagUpdate() {
	if g.ctrl[GteFlag]&flagMaskErr != 0 {
		g.ctrl[GteFlag] |= flagErr
	}
}
