// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package imagebuf provides sequential byte access to a linear
// memory-mapped region — a disk image buffer or the CRT DRAM region —
// addressed through shellhw's (device, 4-KiB-window, offset) selector
// bus. It plays the role the teacher's internal/dma block type plays
// for direct-pointer DMA buffers, adapted to a selector-multiplexed bus
// instead of a flat address space: every access group re-selects, and a
// sequential read/write that crosses a 4-KiB boundary advances the
// window selector the same way the Flush Engine's cursor does (§4.5).
package imagebuf

import "github.com/markkrueg/C64MEGA65/internal/shellhw"

const windowSize = 4096

// Cursor is a position inside a linear buffer, expressed as the
// (window, offset) pair the hardware actually uses, plus the device it
// belongs to. Cursor is small and copyable; ReadByte, WriteByte, Read
// and Write advance it in place, and a copy keeps the position it had
// when it was taken.
type Cursor struct {
	bus    shellhw.Bus
	dev    shellhw.Device
	Window shellhw.Window
	Offset uint16
}

// NewCursor returns a Cursor at the start of dev's linear buffer.
func NewCursor(bus shellhw.Bus, dev shellhw.Device) Cursor {
	return Cursor{bus: bus, dev: dev}
}

// At returns a Cursor positioned at a 32-bit linear byte address,
// decomposed into window + offset the way §4.4's win4k/off4k fields
// already arrive decomposed from the emulated core.
func At(bus shellhw.Bus, dev shellhw.Device, linear uint32) Cursor {
	return Cursor{
		bus:    bus,
		dev:    dev,
		Window: shellhw.Window(linear / windowSize),
		Offset: uint16(linear % windowSize),
	}
}

// FromParts returns a Cursor at an explicit (window, offset) pair.
func FromParts(bus shellhw.Bus, dev shellhw.Device, win shellhw.Window, offset uint16) Cursor {
	return Cursor{bus: bus, dev: dev, Window: win, Offset: offset}
}

// Linear returns the cursor's position as a single 32-bit byte address.
func (c Cursor) Linear() uint32 {
	return uint32(c.Window)*windowSize + uint32(c.Offset)
}

// advance moves the cursor forward by one byte, rolling the offset over
// into the next window exactly as §4.5 describes for the flush cursor.
func (c *Cursor) advance() {
	c.Offset++
	if c.Offset >= windowSize {
		c.Offset = 0
		c.Window++
	}
}

// ReadByte selects the cursor's (device, window) and reads one byte at
// its offset, then advances the cursor.
func (c *Cursor) ReadByte() byte {
	c.bus.Select(c.dev, c.Window)
	b := c.bus.ReadByte(c.Offset)
	c.advance()
	return b
}

// WriteByte is the write-side symmetric counterpart of ReadByte.
func (c *Cursor) WriteByte(b byte) {
	c.bus.Select(c.dev, c.Window)
	c.bus.WriteByte(c.Offset, b)
	c.advance()
}

// Read fills buf sequentially, re-selecting the window as needed each
// time the offset wraps. Used for DRAM-to-BRAM bank streaming in bursts
// bounded by shellcfg.StreamBurst.
func (c *Cursor) Read(buf []byte) {
	for i := range buf {
		buf[i] = c.ReadByte()
	}
}

// Write is the write-side symmetric counterpart of Read.
func (c *Cursor) Write(buf []byte) {
	for _, b := range buf {
		c.WriteByte(b)
	}
}
