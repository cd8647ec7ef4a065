package psx

import "math/bits"

// GTE command function codes (the funct field of a COP2 command word).
const (
	gteRtps  = 0x01
	gteNclip = 0x06
	gteOp    = 0x0C
	gteDpcs  = 0x10
	gteIntpl = 0x11
	gteMvmva = 0x12
	gteNcds  = 0x13
	gteCdp   = 0x14
	gteNcdt  = 0x16
	gteNccs  = 0x1B
	gteCc    = 0x1C
	gteNcs   = 0x1E
	gteNct   = 0x20
	gteSqr   = 0x28
	gteDcpl  = 0x29
	gteDpct  = 0x2A
	gteAvsz3 = 0x2D
	gteAvsz4 = 0x2E
	gteRtpt  = 0x30
	gteGpf   = 0x3D
	gteGpl   = 0x3E
	gteNcct  = 0x3F
)

// The unsigned Newton-Raphson reciprocal table used by the perspective
// division. Its exact contents are part of the hardware contract.
var unrTable = [257]uint8{
	0xFF, 0xFD, 0xFB, 0xF9, 0xF7, 0xF5, 0xF3, 0xF1, 0xEF, 0xEE,
	0xEC, 0xEA, 0xE8, 0xE6, 0xE4, 0xE3, 0xE1, 0xDF, 0xDD, 0xDC,
	0xDA, 0xD8, 0xD6, 0xD5, 0xD3, 0xD1, 0xD0, 0xCE, 0xCD, 0xCB,
	0xC9, 0xC8, 0xC6, 0xC5, 0xC3, 0xC1, 0xC0, 0xBE, 0xBD, 0xBB,
	0xBA, 0xB8, 0xB7, 0xB5, 0xB4, 0xB2, 0xB1, 0xB0, 0xAE, 0xAD,
	0xAB, 0xAA, 0xA9, 0xA7, 0xA6, 0xA4, 0xA3, 0xA2, 0xA0, 0x9F,
	0x9E, 0x9C, 0x9B, 0x9A, 0x99, 0x97, 0x96, 0x95, 0x94, 0x92,
	0x91, 0x90, 0x8F, 0x8D, 0x8C, 0x8B, 0x8A, 0x89, 0x87, 0x86,
	0x85, 0x84, 0x83, 0x82, 0x81, 0x7F, 0x7E, 0x7D, 0x7C, 0x7B,
	0x7A, 0x79, 0x78, 0x77, 0x75, 0x74, 0x73, 0x72, 0x71, 0x70,
	0x6F, 0x6E, 0x6D, 0x6C, 0x6B, 0x6A, 0x69, 0x68, 0x67, 0x66,
	0x65, 0x64, 0x63, 0x62, 0x61, 0x60, 0x5F, 0x5E, 0x5D, 0x5D,
	0x5C, 0x5B, 0x5A, 0x59, 0x58, 0x57, 0x56, 0x55, 0x54, 0x53,
	0x53, 0x52, 0x51, 0x50, 0x4F, 0x4E, 0x4D, 0x4D, 0x4C, 0x4B,
	0x4A, 0x49, 0x48, 0x48, 0x47, 0x46, 0x45, 0x44, 0x43, 0x43,
	0x42, 0x41, 0x40, 0x3F, 0x3F, 0x3E, 0x3D, 0x3C, 0x3C, 0x3B,
	0x3A, 0x39, 0x39, 0x38, 0x37, 0x36, 0x36, 0x35, 0x34, 0x33,
	0x33, 0x32, 0x31, 0x31, 0x30, 0x2F, 0x2E, 0x2E, 0x2D, 0x2C,
	0x2C, 0x2B, 0x2A, 0x2A, 0x29, 0x28, 0x28, 0x27, 0x26, 0x26,
	0x25, 0x24, 0x24, 0x23, 0x22, 0x22, 0x21, 0x20, 0x20, 0x1F,
	0x1E, 0x1E, 0x1D, 0x1D, 0x1C, 0x1B, 0x1B, 0x1A, 0x19, 0x19,
	0x18, 0x18, 0x17, 0x16, 0x16, 0x15, 0x15, 0x14, 0x14, 0x13,
	0x12, 0x12, 0x11, 0x11, 0x10, 0x0F, 0x0F, 0x0E, 0x0E, 0x0D,
	0x0D, 0x0C, 0x0C, 0x0B, 0x0A, 0x0A, 0x09, 0x09, 0x08, 0x08,
	0x07, 0x07, 0x06, 0x06, 0x05, 0x05, 0x04, 0x04, 0x03, 0x03,
	0x02, 0x02, 0x01, 0x01, 0x00, 0x00, 0x00,
}

// Command executes one GTE operation. FLAG is cleared on entry and its
// ERR summary bit recomputed on exit. Returns false for an unrecognized
// function code.
func (g *Gte) Command(instr uint32) bool {
	sf := uint(0)
	if instr&gteInstrSfFlag != 0 {
		sf = 12
	}
	lm := instr&gteInstrLmFlag != 0

	g.ctrl[GteFlag] = 0

	switch instr & 0x3F {
	case gteRtps:
		g.rtp(sf, lm, 0, true)

	case gteRtpt:
		g.rtp(sf, lm, 0, false)
		g.rtp(sf, lm, 1, false)
		g.rtp(sf, lm, 2, true)

	case gteNclip:
		g.nclip()

	case gteOp:
		g.op(sf, lm)

	case gteDpcs:
		g.dpcs(sf, lm, g.data[GteRgbc])

	case gteDpct:
		// Three rounds against the oldest color in the FIFO; each
		// push rotates it.
		for i := 0; i < 3; i++ {
			g.dpcs(sf, lm, g.data[GteRgb0])
		}

	case gteIntpl:
		g.intpl(sf, lm)

	case gteDcpl:
		g.dcpl(sf, lm)

	case gteMvmva:
		g.mvmva(instr, sf, lm)

	case gteNcs:
		g.nc(sf, lm, 0)

	case gteNct:
		g.nc(sf, lm, 0)
		g.nc(sf, lm, 1)
		g.nc(sf, lm, 2)

	case gteNcds:
		g.ncd(sf, lm, 0)

	case gteNcdt:
		g.ncd(sf, lm, 0)
		g.ncd(sf, lm, 1)
		g.ncd(sf, lm, 2)

	case gteNccs:
		g.ncc(sf, lm, 0)

	case gteNcct:
		g.ncc(sf, lm, 0)
		g.ncc(sf, lm, 1)
		g.ncc(sf, lm, 2)

	case gteCc:
		g.cc(sf, lm)

	case gteCdp:
		g.cdp(sf, lm)

	case gteSqr:
		g.sqr(sf, lm)

	case gteAvsz3:
		g.avsz(g.zsf3(), false)

	case gteAvsz4:
		g.avsz(g.zsf4(), true)

	case gteGpf:
		g.gpf(sf, lm)

	case gteGpl:
		g.gpl(sf, lm)

	default:
		return false
	}

	g.flagUpdate()
	return true
}

var mac123PosOvfFlags = [4]uint32{0, flagMac1PosOvf, flagMac2PosOvf, flagMac3PosOvf}
var mac123NegOvfFlags = [4]uint32{0, flagMac1NegOvf, flagMac2NegOvf, flagMac3NegOvf}
var ir123SaturatedFlags = [4]uint32{0, flagIr1Saturated, flagIr2Saturated, flagIr3Saturated}

// Add into the 44-bit MAC1/2/3 accumulator, flagging overflow and
// sign-extending the result back to 44 bits.
func (g *Gte) macAdd(i int, mac, addend int64) int64 {
	sum := mac + addend

	if sum > mac123Max {
		g.ctrl[GteFlag] |= mac123PosOvfFlags[i]
	} else if sum < mac123Min {
		g.ctrl[GteFlag] |= mac123NegOvfFlags[i]
	}

	return (sum << 20) >> 20
}

// Flag a MAC0 overflow; the value itself is kept at full width.
func (g *Gte) mac0Add(sum int64) int64 {
	if sum > mac0Max {
		g.ctrl[GteFlag] |= flagMac0PosOvf
	} else if sum < mac0Min {
		g.ctrl[GteFlag] |= flagMac0NegOvf
	}
	return sum
}

// Saturate a value into IR1/IR2/IR3, flagging on violation. The lm flag
// lifts the floor from -0x8000 to 0.
func (g *Gte) chkIr(i int, value int64, lm bool) int16 {
	min := int64(ir123Min)
	if lm {
		min = ir123LmMin
	}

	if value < min {
		g.ctrl[GteFlag] |= ir123SaturatedFlags[i]
		return int16(min)
	}
	if value > ir123Max {
		g.ctrl[GteFlag] |= ir123SaturatedFlags[i]
		return ir123Max
	}
	return int16(value)
}

func (g *Gte) chkIr0(value int32) int16 {
	if value < ir0Min {
		g.ctrl[GteFlag] |= flagIr0Saturated
		return ir0Min
	}
	if value > ir0Max {
		g.ctrl[GteFlag] |= flagIr0Saturated
		return ir0Max
	}
	return int16(value)
}

func (g *Gte) chkSxy(value int32, flag uint32) int16 {
	if value < sxy2Min {
		g.ctrl[GteFlag] |= flag
		return sxy2Min
	}
	if value > sxy2Max {
		g.ctrl[GteFlag] |= flag
		return sxy2Max
	}
	return int16(value)
}

func (g *Gte) chkSz3Otz(value int32) uint16 {
	if value < sz3OtzMin {
		g.ctrl[GteFlag] |= flagSz3OtzSaturated
		return sz3OtzMin
	}
	if value > sz3OtzMax {
		g.ctrl[GteFlag] |= flagSz3OtzSaturated
		return sz3OtzMax
	}
	return uint16(value)
}

func (g *Gte) chkColor(value int32, flag uint32) uint32 {
	if value < 0 {
		g.ctrl[GteFlag] |= flag
		return 0
	}
	if value > 0xFF {
		g.ctrl[GteFlag] |= flag
		return 0xFF
	}
	return uint32(value)
}

// Push the screen Z history; sum is the unshifted row-3 accumulator.
func (g *Gte) szPush(sum int64) {
	g.data[GteSz0] = g.data[GteSz1]
	g.data[GteSz1] = g.data[GteSz2]
	g.data[GteSz2] = g.data[GteSz3]
	g.data[GteSz3] = uint32(g.chkSz3Otz(int32(sum >> 12)))
}

// Push the screen XY history.
func (g *Gte) sxyPush(x, y int16) {
	g.data[GteSxy0] = g.data[GteSxy1]
	g.data[GteSxy1] = g.data[GteSxy2]
	g.data[GteSxy2] = (uint32(uint16(y)) << 16) | uint32(uint16(x))
}

// Saturate IR1..IR3 from the current MAC1..MAC3 values.
func (g *Gte) irFromMac(lm bool) {
	for i := 1; i <= 3; i++ {
		g.setIr(i, g.chkIr(i, int64(g.mac(i)), lm))
	}
}

// Push the color FIFO from MAC1..MAC3 >> 4, saturating each component.
func (g *Gte) rgbPush() {
	r := g.chkColor(g.mac(1)>>4, flagRgbRSaturated)
	gc := g.chkColor(g.mac(2)>>4, flagRgbGSaturated)
	b := g.chkColor(g.mac(3)>>4, flagRgbBSaturated)

	g.data[GteRgb0] = g.data[GteRgb1]
	g.data[GteRgb1] = g.data[GteRgb2]
	g.data[GteRgb2] = (g.code() << 24) | (b << 16) | (gc << 8) | r
}

// Perspective-transform one vertex: MAC = TR<<12 + RT*v, push SZ, project
// through the reciprocal of SZ3 and push SXY. The last vertex of a
// command also runs the depth-queue interpolation into IR0.
func (g *Gte) rtp(sf uint, lm bool, v int, last bool) {
	x, y, z := g.vertex(v)

	var sum int64
	for i := 1; i <= 3; i++ {
		sum = g.macAdd(i, 0, int64(g.tr(i-1))<<12)
		sum = g.macAdd(i, sum, int64(g.matEl(GteR11R12, i-1, 0))*int64(x))
		sum = g.macAdd(i, sum, int64(g.matEl(GteR11R12, i-1, 1))*int64(y))
		sum = g.macAdd(i, sum, int64(g.matEl(GteR11R12, i-1, 2))*int64(z))
		g.setMac(i, int32(sum>>sf))
	}

	// The Z push uses the unshifted row-3 accumulator.
	g.szPush(sum)

	g.setIr(1, g.chkIr(1, int64(g.mac(1)), lm))
	g.setIr(2, g.chkIr(2, int64(g.mac(2)), lm))

	// IR3 is first range-checked against the unshifted value for its
	// flag side effect, then clamped from MAC3 without flagging.
	g.chkIr(3, int64(int32(sum>>12)), false)
	min := int64(ir123Min)
	if lm {
		min = ir123LmMin
	}
	g.setIr(3, int16(clamp64(int64(g.mac(3)), min, ir123Max)))

	quot := g.divide()

	sum = g.mac0Add(quot*int64(g.ir1()) + int64(g.ofx()))
	sx := g.chkSxy(int32(sum>>16), flagSx2Saturated)

	sum = g.mac0Add(quot*int64(g.ir2()) + int64(g.ofy()))
	sy := g.chkSxy(int32(sum>>16), flagSy2Saturated)

	g.sxyPush(sx, sy)

	if last {
		sum = g.mac0Add(quot*int64(g.dqa()) + int64(g.dqb()))
		g.setMac(0, int32(sum))
		g.data[GteIr0] = signExt16(uint32(uint16(g.chkIr0(int32(sum >> 12)))))
	}
}

// Unsigned reciprocal of SZ3, scaled against the projection-plane
// distance H: a table lookup refined by two Newton-Raphson rounds,
// clamped to 0x1FFFF. Overflows when H >= SZ3*2.
func (g *Gte) divide() int64 {
	h := uint32(g.h())
	sz3 := g.data[GteSz3] & 0xFFFF

	if h >= sz3*2 {
		g.ctrl[GteFlag] |= flagDivOvf
		return 0x1FFFF
	}

	i := uint(bits.LeadingZeros16(uint16(sz3)))

	quot := int64(h) << i
	d := int64(sz3) << i

	u := int64(unrTable[(d-0x7FC0)>>7]) + 0x101
	d = (0x2000080 - d*u) >> 8
	d = (0x0000080 + d*u) >> 8

	quot = (quot*d + 0x8000) >> 16
	if quot > 0x1FFFF {
		quot = 0x1FFFF
	}
	return quot
}

// Winding-order test over the screen XY history.
func (g *Gte) nclip() {
	sum := int64(g.sx(0))*int64(g.sy(1)-g.sy(2)) +
		int64(g.sx(1))*int64(g.sy(2)-g.sy(0)) +
		int64(g.sx(2))*int64(g.sy(0)-g.sy(1))

	g.setMac(0, int32(g.mac0Add(sum)))
}

// Outer-product-like op against the diagonal of the rotation matrix.
func (g *Gte) op(sf uint, lm bool) {
	d1 := int64(g.matEl(GteR11R12, 0, 0))
	d2 := int64(g.matEl(GteR11R12, 1, 1))
	d3 := int64(g.matEl(GteR11R12, 2, 2))

	ir1 := int64(g.ir1())
	ir2 := int64(g.ir2())
	ir3 := int64(g.ir3())

	g.setMac(1, int32(g.macAdd(1, 0, ir3*d2-ir2*d3)>>sf))
	g.setMac(2, int32(g.macAdd(2, 0, ir1*d3-ir3*d1)>>sf))
	g.setMac(3, int32(g.macAdd(3, 0, ir2*d1-ir1*d2)>>sf))

	g.irFromMac(lm)
}

// Interpolate the unshifted MAC1..MAC3 accumulators toward the far color:
// IR = ((FC<<12) - MAC) >> sf saturated without lm, then
// MAC = (IR*IR0 + MAC_prev) >> sf.
func (g *Gte) interpolate(macs *[3]int64, sf uint, lm bool) {
	ir0 := int64(g.ir0())

	for i := 1; i <= 3; i++ {
		tmp := g.macAdd(i, 0, (int64(g.fc(i-1))<<12)-macs[i-1])
		g.setIr(i, g.chkIr(i, tmp>>sf, false))
	}

	for i := 1; i <= 3; i++ {
		sum := g.macAdd(i, 0, int64(g.ir(i))*ir0)
		sum = g.macAdd(i, sum, macs[i-1])
		g.setMac(i, int32(sum>>sf))
	}

	g.irFromMac(lm)
	g.rgbPush()
}

// Depth-cue a packed color (RGBC or the tail of the color FIFO).
func (g *Gte) dpcs(sf uint, lm bool, color uint32) {
	macs := [3]int64{
		int64(color&0xFF) << 16,
		int64((color>>8)&0xFF) << 16,
		int64((color>>16)&0xFF) << 16,
	}
	g.interpolate(&macs, sf, lm)
}

// Interpolate between IR and the far color.
func (g *Gte) intpl(sf uint, lm bool) {
	macs := [3]int64{
		int64(g.ir1()) << 12,
		int64(g.ir2()) << 12,
		int64(g.ir3()) << 12,
	}
	g.interpolate(&macs, sf, lm)
}

// Depth-cue the light-modulated color.
func (g *Gte) dcpl(sf uint, lm bool) {
	macs := g.colorMacs()
	g.interpolate(&macs, sf, lm)
}

// The (RGBC * IR) << 4 products shared by the color primitives.
func (g *Gte) colorMacs() [3]int64 {
	return [3]int64{
		(int64(g.rgbc(0)) * int64(g.ir1())) << 4,
		(int64(g.rgbc(1)) * int64(g.ir2())) << 4,
		(int64(g.rgbc(2)) * int64(g.ir3())) << 4,
	}
}

// MAC = (LLM * v) >> sf; IR = saturate(MAC).
func (g *Gte) lightVertex(sf uint, lm bool, v int) {
	x, y, z := g.vertex(v)

	for i := 1; i <= 3; i++ {
		sum := g.macAdd(i, 0, int64(g.matEl(GteL11L12, i-1, 0))*int64(x))
		sum = g.macAdd(i, sum, int64(g.matEl(GteL11L12, i-1, 1))*int64(y))
		sum = g.macAdd(i, sum, int64(g.matEl(GteL11L12, i-1, 2))*int64(z))
		g.setMac(i, int32(sum>>sf))
	}
	g.irFromMac(lm)
}

// MAC = (BK<<12 + LCM * IR) >> sf; IR = saturate(MAC).
func (g *Gte) lightColor(sf uint, lm bool) {
	ir1 := int64(g.ir1())
	ir2 := int64(g.ir2())
	ir3 := int64(g.ir3())

	for i := 1; i <= 3; i++ {
		sum := g.macAdd(i, 0, int64(g.bk(i-1))<<12)
		sum = g.macAdd(i, sum, int64(g.matEl(GteLr1Lr2, i-1, 0))*ir1)
		sum = g.macAdd(i, sum, int64(g.matEl(GteLr1Lr2, i-1, 1))*ir2)
		sum = g.macAdd(i, sum, int64(g.matEl(GteLr1Lr2, i-1, 2))*ir3)
		g.setMac(i, int32(sum>>sf))
	}
	g.irFromMac(lm)
}

// Normal color: light the vertex, apply the background color, push.
func (g *Gte) nc(sf uint, lm bool, v int) {
	g.lightVertex(sf, lm, v)
	g.lightColor(sf, lm)
	g.rgbPush()
	g.irFromMac(lm)
}

// Normal color-color: like nc, then modulate by RGBC.
func (g *Gte) ncc(sf uint, lm bool, v int) {
	g.lightVertex(sf, lm, v)
	g.lightColor(sf, lm)

	macs := g.colorMacs()
	for i := 1; i <= 3; i++ {
		g.setMac(i, int32(g.macAdd(i, 0, macs[i-1])>>sf))
	}

	g.irFromMac(lm)
	g.rgbPush()
}

// Normal color-depth-cue: like ncc, with the far-color interpolation
// between the modulate and the push.
func (g *Gte) ncd(sf uint, lm bool, v int) {
	g.lightVertex(sf, lm, v)
	g.lightColor(sf, lm)

	macs := g.colorMacs()
	g.interpolate(&macs, sf, lm)
}

// Color-color: the background/light-color stage and RGBC modulate, with
// the current IR as input.
func (g *Gte) cc(sf uint, lm bool) {
	g.lightColor(sf, lm)

	macs := g.colorMacs()
	for i := 1; i <= 3; i++ {
		g.setMac(i, int32(g.macAdd(i, 0, macs[i-1])>>sf))
	}

	g.irFromMac(lm)
	g.rgbPush()
}

// Color-depth-cue: cc with the far-color interpolation.
func (g *Gte) cdp(sf uint, lm bool) {
	g.lightColor(sf, lm)

	macs := g.colorMacs()
	g.interpolate(&macs, sf, lm)
}

// Configurable matrix-vector multiply with translation.
func (g *Gte) mvmva(instr uint32, sf uint, lm bool) {
	mx := (instr >> 17) & 3
	vx := (instr >> 15) & 3
	tx := (instr >> 13) & 3

	var vx0, vy0, vz0 int16
	if vx == 3 {
		vx0, vy0, vz0 = g.ir1(), g.ir2(), g.ir3()
	} else {
		vx0, vy0, vz0 = g.vertex(int(vx))
	}
	v := [3]int64{int64(vx0), int64(vy0), int64(vz0)}

	var m [3][3]int64
	switch mx {
	case 0, 1, 2:
		base := [3]uint32{GteR11R12, GteL11L12, GteLr1Lr2}[mx]
		for row := 0; row < 3; row++ {
			for col := 0; col < 3; col++ {
				m[row][col] = int64(g.matEl(base, row, col))
			}
		}
	default:
		// The "bugged" matrix the hardware selects for mx=3; the row
		// values are reproduced verbatim.
		r := int64(g.rgbc(0)) << 4
		rt13 := int64(g.matEl(GteR11R12, 0, 2))
		rt22 := int64(g.matEl(GteR11R12, 1, 1))
		m = [3][3]int64{
			{-r, r, int64(g.ir0())},
			{rt13, rt13, rt13},
			{rt22, rt22, rt22},
		}
	}

	var t [3]int64
	switch tx {
	case 0:
		t = [3]int64{int64(g.tr(0)), int64(g.tr(1)), int64(g.tr(2))}
	case 1:
		t = [3]int64{int64(g.bk(0)), int64(g.bk(1)), int64(g.bk(2))}
	case 2:
		t = [3]int64{int64(g.fc(0)), int64(g.fc(1)), int64(g.fc(2))}
	}

	for i := 1; i <= 3; i++ {
		var sum int64

		if tx == 2 {
			// Far-color translation bug: the first product is added
			// to the translation, range-checked into IR for its
			// flags, and then discarded.
			tmp := g.macAdd(i, 0, t[i-1]<<12)
			tmp = g.macAdd(i, tmp, m[i-1][0]*v[0])
			g.chkIr(i, tmp>>sf, false)

			sum = g.macAdd(i, 0, m[i-1][1]*v[1])
			sum = g.macAdd(i, sum, m[i-1][2]*v[2])
		} else {
			sum = g.macAdd(i, 0, t[i-1]<<12)
			sum = g.macAdd(i, sum, m[i-1][0]*v[0])
			sum = g.macAdd(i, sum, m[i-1][1]*v[1])
			sum = g.macAdd(i, sum, m[i-1][2]*v[2])
		}

		g.setMac(i, int32(sum>>sf))
	}

	g.irFromMac(lm)
}

// Square of the IR vector.
func (g *Gte) sqr(sf uint, lm bool) {
	for i := 1; i <= 3; i++ {
		ir := int64(g.ir(i))
		g.setMac(i, int32(g.macAdd(i, 0, ir*ir)>>sf))
	}
	g.irFromMac(lm)
}

// Average screen Z: AVSZ3 uses the three most recent entries, AVSZ4 all
// four.
func (g *Gte) avsz(zsf int16, includeSz0 bool) {
	sum := int64(g.sz(1)) + int64(g.sz(2)) + int64(g.sz(3))
	if includeSz0 {
		sum += int64(g.sz(0))
	}

	mac := g.mac0Add(int64(zsf) * sum)
	g.setMac(0, int32(mac))
	g.data[GteOtz] = uint32(g.chkSz3Otz(int32(mac >> 12)))
}

// General-purpose interpolation from zeroed accumulators.
func (g *Gte) gpf(sf uint, lm bool) {
	ir0 := int64(g.ir0())

	for i := 1; i <= 3; i++ {
		g.setMac(i, int32(g.macAdd(i, 0, int64(g.ir(i))*ir0)>>sf))
	}

	g.irFromMac(lm)
	g.rgbPush()
}

// General-purpose interpolation on top of the shifted current
// accumulators.
func (g *Gte) gpl(sf uint, lm bool) {
	ir0 := int64(g.ir0())

	for i := 1; i <= 3; i++ {
		sum := g.macAdd(i, 0, int64(g.mac(i))<<sf)
		sum = g.macAdd(i, sum, int64(g.ir(i))*ir0)
		g.setMac(i, int32(sum>>sf))
	}

	g.irFromMac(lm)
	g.rgbPush()
}
