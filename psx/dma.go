package psx

// DMA controller register file. Only the bus-visible registers are
// emulated; no transfers are performed.

const (
	dmacChannelBeg = 0x1F801080
	dmacChannelEnd = 0x1F8010EF

	dmacDpcrAddr = 0x1F8010F0
	dmacDicrAddr = 0x1F8010F4

	dmacNumChannels = 7
)

// DMA channel numbers.
const (
	dmacChMdecIn = iota
	dmacChMdecOut
	dmacChGpu
	dmacChCdrom
	dmacChSpu
	dmacChPio
	dmacChOtc
)

// One DMA channel's register triple.
type DmaChannel struct {
	Madr uint32 // Base address
	Bcr  uint32 // Block control
	Chcr uint32 // Channel control
}

type Dmac struct {
	Channels [dmacNumChannels]DmaChannel
	Dpcr     uint32 // Control register
	Dicr     uint32 // Interrupt register

	log *Logger
}

// Register index within a channel (MADR/BCR/CHCR) from a physical address.
func dmacChannelReg(paddr uint32) (ch, reg uint32) {
	return (paddr - dmacChannelBeg) >> 4, (paddr >> 2) & 3
}

func (d *Dmac) channelRead(paddr uint32) uint32 {
	ch, reg := dmacChannelReg(paddr)

	switch reg {
	case 0:
		return d.Channels[ch].Madr
	case 1:
		return d.Channels[ch].Bcr
	default:
		return d.Channels[ch].Chcr
	}
}

func (d *Dmac) channelWrite(paddr, word uint32) {
	ch, reg := dmacChannelReg(paddr)

	switch reg {
	case 0:
		d.Channels[ch].Madr = word
	case 1:
		d.Channels[ch].Bcr = word
	default:
		d.Channels[ch].Chcr = word
	}
}

// A DPCR write carries a 4-bit config nibble per channel; the low 3 bits
// are the channel's priority. Two enabled channels sharing a priority is
// reported as fatal through the event channel.
func (d *Dmac) setDpcr(dpcr uint32) {
	d.Dpcr = dpcr

	prioSeen := uint32(0)

	for ch := 0; ch < dmacNumChannels; ch, dpcr = ch+1, dpcr>>4 {
		chConfig := dpcr & 0x0F
		if chConfig>>3 == 0 {
			d.log.msgf(ModBus, LogDebug, "DMAC: DMA%d channel disabled", ch)
			continue
		}

		d.log.msgf(ModBus, LogDebug, "DMAC: DMA%d channel enabled", ch)

		prio := chConfig & 0x7
		prioMask := uint32(1) << prio

		if prioSeen&prioMask != 0 {
			d.log.msgf(ModBus, LogError,
				"DMAC: DMA%d channel priority %d conflicts with another enabled channel",
				ch, prio)
			return
		}
		d.log.msgf(ModBus, LogDebug,
			"DMAC: DMA%d channel priority set to %d, no conflict", ch, prio)

		prioSeen |= prioMask
	}
}
