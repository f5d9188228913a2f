// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build !shell_hw

package shellhw

import "sync"

// SimBus is an in-memory stand-in for the FPGA-mapped register file,
// used for host development and unit tests of every component that
// would otherwise require real hardware. It implements the same Bus
// contract as the mmio backend, including the selector-bus sharing
// rule: a WriteByte/ReadByte always addresses whatever (device, window)
// the most recent Select chose, regardless of which component issued it.
type SimBus struct {
	mu sync.Mutex

	dev Device
	win Window

	// pages holds one WindowSize-byte page per (device, window) pair,
	// allocated lazily on first access.
	pages map[pageKey][]byte

	cycles uint32

	keys [8]byte

	activeSDSlot uint8
}

type pageKey struct {
	dev Device
	win Window
}

// NewSimBus returns a fresh simulated bus with all pages zeroed.
func NewSimBus() *SimBus {
	return &SimBus{pages: make(map[pageKey][]byte)}
}

func (b *SimBus) page() []byte {
	k := pageKey{b.dev, b.win}
	p, ok := b.pages[k]
	if !ok {
		p = make([]byte, windowSize)
		b.pages[k] = p
	}
	return p
}

const windowSize = 4096

func (b *SimBus) Select(dev Device, win Window) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dev, b.win = dev, win
}

func (b *SimBus) ReadByte(offset uint16) byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page()[offset]
}

func (b *SimBus) WriteByte(offset uint16, val byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page()[offset] = val
}

func (b *SimBus) ReadWord(offset uint16) uint16 {
	lo := uint16(b.ReadByte(offset))
	hi := uint16(b.ReadByte(offset + 1))
	return lo | hi<<8
}

func (b *SimBus) WriteWord(offset uint16, val uint16) {
	b.WriteByte(offset, byte(val))
	b.WriteByte(offset+1, byte(val>>8))
}

func (b *SimBus) Cycles() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cycles
}

// Advance moves the simulated cycle counter forward, for tests that
// exercise anti-thrash/debounce timing without a real hardware clock.
func (b *SimBus) Advance(cycles uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cycles += cycles
}

func (b *SimBus) KeyRow(row int) byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.keys[row]
}

// SetKeyRow lets a test drive a simulated keypress.
func (b *SimBus) SetKeyRow(row int, val byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keys[row] = val
}

func (b *SimBus) ActiveSDSlot() uint8 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.activeSDSlot
}

// SetActiveSDSlot lets a test simulate a card hot-swap.
func (b *SimBus) SetActiveSDSlot(slot uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.activeSDSlot = slot
}
