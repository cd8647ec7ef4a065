package psx

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// PS-X EXE loader: copies a program image into emulator RAM and points
// the CPU at its entry point.

// Loader failures, distinguishable by the host.
var (
	ErrExeSizeBad = errors.New("EXE image smaller than its header")
	ErrExeIdBad   = errors.New("EXE image has a bad id string")
)

// PS-X EXE header layout.
// Reference: https://psx-spx.consoledev.net/cdromdrive/#filenameexe-general-purpose-executable
const (
	exeMinSize = 0x800

	exeOffInitialPc       = 0x010
	exeOffInitialGp       = 0x014
	exeOffDestAddr        = 0x018
	exeOffFileSize        = 0x01C
	exeOffInitialSpFpBase = 0x030
	exeOffInitialSpFpOff  = 0x034
	exeOffCode            = 0x800
)

var exeId = []byte("PS-X EXE")

// LoadExe validates a PS-X EXE image, copies its body into RAM and sets
// up the CPU registers the BIOS would have prepared.
func (c *Context) LoadExe(exeData []byte) error {
	if len(exeData) < exeMinSize {
		return errors.Wrapf(ErrExeSizeBad, "got %d bytes, want at least %d",
			len(exeData), exeMinSize)
	}

	for i, b := range exeId {
		if exeData[i] != b {
			return ErrExeIdBad
		}
	}

	extract := func(off int) uint32 {
		return binary.LittleEndian.Uint32(exeData[off:])
	}

	cpu := c.Cpu

	cpu.Pc = extract(exeOffInitialPc)
	cpu.NextPc = cpu.Pc + 4

	cpu.Gpr[GprGp] = extract(exeOffInitialGp)

	dstAddr := vaddrToPaddr(extract(exeOffDestAddr))
	fileSize := extract(exeOffFileSize)

	body := exeData[exeOffCode:]
	if int(fileSize) < len(body) {
		body = body[:fileSize]
	}
	copy(c.Bus.Ram[dstAddr:], body)

	cpu.Gpr[GprFp] = extract(exeOffInitialSpFpBase)
	if cpu.Gpr[GprFp] != 0 {
		cpu.Gpr[GprSp] = cpu.Gpr[GprFp]
	}

	spFpOff := extract(exeOffInitialSpFpOff)
	cpu.Gpr[GprSp] += spFpOff
	cpu.Gpr[GprFp] += spFpOff

	c.Log.msgf(ModCtx, LogInfo, "EXE loaded (%d bytes)", len(exeData))
	return nil
}
