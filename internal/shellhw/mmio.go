// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build shell_hw

package shellhw

import (
	"unsafe"

	"github.com/markkrueg/C64MEGA65/internal/bits"
)

// Peripheral base addresses. Collected here, named, and never referenced
// as bare literals elsewhere (Design Notes §9, "magic hardware
// addresses").
const (
	baseSelDevice  uint32 = 0xFFFE0000
	baseSelWindow  uint32 = 0xFFFE0002
	baseDataWindow uint32 = 0xFFFE1000
	baseCycleMid   uint32 = 0xFFFE0010
	baseCycleHigh  uint32 = 0xFFFE0012
	baseKeyMatrix  uint32 = 0xFFFE0020
	baseCSR        uint32 = 0xFFFE0030
)

const csrActiveSDSlotPos = 8

func reg16(addr uint32) *uint16 {
	return (*uint16)(unsafe.Pointer(uintptr(addr)))
}

func reg8(addr uint32) *uint8 {
	return (*uint8)(unsafe.Pointer(uintptr(addr)))
}

// mmioBus is the real-target implementation of Bus: every access is a
// direct, synchronous load/store against the FPGA-mapped register file.
// There is exactly one control flow in the firmware (§5), so unlike the
// teacher's internal/reg this backend takes no mutex.
type mmioBus struct{}

// NewBus returns the hardware-backed Bus for the real target.
func NewBus() Bus {
	return mmioBus{}
}

func (mmioBus) Select(dev Device, win Window) {
	*reg16(baseSelDevice) = uint16(dev)
	*reg16(baseSelWindow) = uint16(win)
}

func (mmioBus) ReadByte(offset uint16) byte {
	return byte(*reg8(baseDataWindow + uint32(offset)))
}

func (mmioBus) WriteByte(offset uint16, val byte) {
	*reg8(baseDataWindow+uint32(offset)) = val
}

func (b mmioBus) ReadWord(offset uint16) uint16 {
	lo := uint16(b.ReadByte(offset))
	hi := uint16(b.ReadByte(offset + 1))
	return lo | hi<<8
}

func (b mmioBus) WriteWord(offset uint16, val uint16) {
	b.WriteByte(offset, byte(val))
	b.WriteByte(offset+1, byte(val>>8))
}

// Cycles reads the low ("mid") word before the high word, per §4.1, and
// combines them with an unsigned 32-bit add so callers can build a
// wrapping Deadline from the result.
func (mmioBus) Cycles() uint32 {
	lo := uint32(*reg16(baseCycleMid))
	hi := uint32(*reg16(baseCycleHigh))
	return lo | hi<<16
}

func (mmioBus) KeyRow(row int) byte {
	return *reg8(baseKeyMatrix + uint32(row))
}

func (mmioBus) ActiveSDSlot() uint8 {
	csr := uint32(*reg16(baseCSR))
	return uint8(bits.Get(&csr, csrActiveSDSlotPos, 0xFF))
}
