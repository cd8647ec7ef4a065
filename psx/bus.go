package psx

import "encoding/binary"

// Main system bus. The CPU hands it physical addresses; the bus fans them
// out to RAM, the scratchpad, the BIOS ROM and the memory-mapped device
// registers. Alignment is the CPU's problem, never the bus's.
type Bus struct {
	Ram  []byte // 2 MiB main RAM, borrowed from the host.
	Bios []byte // 512 KiB BIOS ROM, borrowed from the host.
	Spad [SpadSize]byte

	Dmac Dmac
	Gpu  Gpu

	IStat uint32 // Interrupt status
	IMask uint32 // Interrupt mask

	log *Logger
}

const (
	// Backing buffer sizes the host must provide.
	RamSize  = 2 * 1024 * 1024
	BiosSize = 512 * 1024
	SpadSize = 1024

	ramEndAddr = RamSize - 1

	spadBegAddr = 0x1F800000
	spadEndAddr = 0x1F8003FF
	spadMask    = 0x00000FFF

	biosBegAddr = 0x1FC00000
	biosEndAddr = 0x1FC7FFFF
	biosMask    = 0x000FFFFF

	iStatAddr = 0x1F801070
	iMaskAddr = 0x1F801074

	gpuGp0Addr     = 0x1F801810 // GP0 on write
	gpuGpustatAddr = 0x1F801814 // GPUSTAT on read, GP1 on write
)

// Translate a CPU virtual address to the physical address seen by the
// bus. The bus-control register at 0xFFFE0130 passes through unmapped.
func vaddrToPaddr(vaddr uint32) uint32 {
	if vaddr == 0xFFFE0130 {
		return vaddr
	}
	return vaddr & 0x1FFFFFFF
}

// Load a word from the bus. Unmapped regions return an all-ones sentinel
// and record a warning.
func (b *Bus) LoadWord(paddr uint32) uint32 {
	var word uint32

	switch {
	case paddr <= ramEndAddr:
		word = binary.LittleEndian.Uint32(b.Ram[paddr:])

	case paddr >= spadBegAddr && paddr <= spadEndAddr:
		word = binary.LittleEndian.Uint32(b.Spad[paddr&spadMask:])

	case paddr >= dmacChannelBeg && paddr <= dmacChannelEnd:
		word = b.Dmac.channelRead(paddr)

	case paddr == dmacDpcrAddr:
		word = b.Dmac.Dpcr

	case paddr == dmacDicrAddr:
		word = b.Dmac.Dicr

	case paddr == iStatAddr:
		word = b.IStat

	case paddr == iMaskAddr:
		word = b.IMask

	case paddr == gpuGpustatAddr:
		word = b.Gpu.Gpustat

	case paddr >= biosBegAddr && paddr <= biosEndAddr:
		word = binary.LittleEndian.Uint32(b.Bios[paddr&biosMask:])

	default:
		b.log.msgf(ModBus, LogWarn,
			"Unknown physical address 0x%08X when attempting to "+
				"load word; returning 0xFFFFFFFF", paddr)
		return 0xFFFFFFFF
	}

	b.log.msgf(ModBus, LogTrace, "Loaded word 0x%08X from 0x%08X", word, paddr)
	return word
}

// Load a half-word from the bus.
func (b *Bus) LoadHalf(paddr uint32) uint16 {
	var hword uint16

	switch {
	case paddr <= ramEndAddr:
		hword = binary.LittleEndian.Uint16(b.Ram[paddr:])

	case paddr >= spadBegAddr && paddr <= spadEndAddr:
		hword = binary.LittleEndian.Uint16(b.Spad[paddr&spadMask:])

	default:
		b.log.msgf(ModBus, LogWarn,
			"Unknown physical address 0x%08X when attempting to "+
				"load half-word; returning 0xFFFF", paddr)
		return 0xFFFF
	}

	b.log.msgf(ModBus, LogTrace, "Loaded half-word 0x%04X from 0x%08X", hword, paddr)
	return hword
}

// Load a byte from the bus.
func (b *Bus) LoadByte(paddr uint32) uint8 {
	var byt uint8

	switch {
	case paddr <= ramEndAddr:
		byt = b.Ram[paddr]

	case paddr >= spadBegAddr && paddr <= spadEndAddr:
		byt = b.Spad[paddr&spadMask]

	case paddr >= biosBegAddr && paddr <= biosEndAddr:
		byt = b.Bios[paddr&biosMask]

	default:
		b.log.msgf(ModBus, LogWarn,
			"Unknown physical address 0x%08X when attempting to "+
				"load byte; returning 0xFF", paddr)
		return 0xFF
	}

	b.log.msgf(ModBus, LogTrace, "Loaded byte 0x%02X from 0x%08X", byt, paddr)
	return byt
}

// Store a word to the bus. Stores to unmapped regions are dropped with a
// warning.
func (b *Bus) StoreWord(paddr, word uint32) {
	switch {
	case paddr <= ramEndAddr:
		binary.LittleEndian.PutUint32(b.Ram[paddr:], word)

	case paddr >= spadBegAddr && paddr <= spadEndAddr:
		binary.LittleEndian.PutUint32(b.Spad[paddr&spadMask:], word)

	case paddr >= dmacChannelBeg && paddr <= dmacChannelEnd:
		b.Dmac.channelWrite(paddr, word)

	case paddr == dmacDpcrAddr:
		b.Dmac.setDpcr(word)

	case paddr == dmacDicrAddr:
		b.Dmac.Dicr = word

	case paddr == iStatAddr:
		// Writing acknowledges: only the written 1-bits survive.
		b.IStat &= word

	case paddr == iMaskAddr:
		b.IMask = word

	case paddr == gpuGp0Addr:
		b.Gpu.gp0(word)

	case paddr == gpuGpustatAddr:
		b.Gpu.gp1(word)

	default:
		b.log.msgf(ModBus, LogWarn,
			"Unknown physical address 0x%08X when attempting to "+
				"store word 0x%08X; ignoring", paddr, word)
		return
	}

	b.log.msgf(ModBus, LogTrace, "Stored word 0x%08X at 0x%08X", word, paddr)
}

// Store a half-word to the bus.
func (b *Bus) StoreHalf(paddr uint32, hword uint16) {
	switch {
	case paddr <= ramEndAddr:
		binary.LittleEndian.PutUint16(b.Ram[paddr:], hword)

	case paddr >= spadBegAddr && paddr <= spadEndAddr:
		binary.LittleEndian.PutUint16(b.Spad[paddr&spadMask:], hword)

	default:
		b.log.msgf(ModBus, LogWarn,
			"Unknown physical address 0x%08X when attempting to "+
				"store half-word 0x%04X; ignoring", paddr, hword)
		return
	}

	b.log.msgf(ModBus, LogTrace, "Stored half-word 0x%04X at 0x%08X", hword, paddr)
}

// Store a byte to the bus.
func (b *Bus) StoreByte(paddr uint32, byt uint8) {
	switch {
	case paddr <= ramEndAddr:
		b.Ram[paddr] = byt

	case paddr >= spadBegAddr && paddr <= spadEndAddr:
		b.Spad[paddr&spadMask] = byt

	default:
		b.log.msgf(ModBus, LogWarn,
			"Unknown physical address 0x%08X when attempting to "+
				"store byte 0x%02X; ignoring", paddr, byt)
		return
	}

	b.log.msgf(ModBus, LogTrace, "Stored byte 0x%02X at 0x%08X", byt, paddr)
}

// Non-destructive word read for the tracer: no warnings, no trace logs.
func (b *Bus) peekWord(paddr uint32) uint32 {
	switch {
	case paddr <= ramEndAddr:
		return binary.LittleEndian.Uint32(b.Ram[paddr:])

	case paddr >= spadBegAddr && paddr <= spadEndAddr:
		return binary.LittleEndian.Uint32(b.Spad[paddr&spadMask:])

	case paddr >= biosBegAddr && paddr <= biosEndAddr:
		return binary.LittleEndian.Uint32(b.Bios[paddr&biosMask:])
	}
	return 0xFFFFFFFF
}
