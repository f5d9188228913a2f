// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package shellhw is the Hardware I/O Façade: a thin, synchronous
// abstraction over the four memory-mapped peripherals the Shell shares
// with the emulated core — the paged RAM/ROM data window, the
// Control/Status register, the monotonic 32-bit cycle counter and the
// keyboard matrix.
//
// Every component that touches the selector bus goes through a Bus value.
// Bus is an interface rather than a bare set of package functions (unlike
// the teacher's internal/reg, which addresses memory directly) because
// this firmware's peripherals are reached through a shared (device,
// window) selector pair rather than distinct physical addresses: two
// backends implement Bus, one compiled in for the real target
// (mmio.go, build tag shell_hw) and one for host development and tests
// (simbus.go, the default build).
package shellhw

// Device selects one of the memory-mapped peripherals multiplexed onto
// the data window.
type Device uint16

// Window selects a 4-KiB page within the selected device.
type Window uint16

// Bus is the contract every caller of the selector-addressed data window
// programs against. Callers must call Select before any Read/Write that
// depends on a particular (device, window) pair — no component may rely
// on a previous caller's selection surviving a call into another
// component (§5, shared-resource policy).
type Bus interface {
	// Select atomically writes the device and window selectors. Every
	// subsequent ReadByte/WriteByte addresses the newly selected page
	// until the next Select call.
	Select(dev Device, win Window)

	// ReadByte/WriteByte access the active window at offset, which must
	// be in [0, shellcfg.WindowSize).
	ReadByte(offset uint16) byte
	WriteByte(offset uint16, val byte)

	// ReadWord/WriteWord are a convenience over two consecutive
	// ReadByte/WriteByte calls for 16-bit register fields, low byte
	// first — the wire layout every multi-byte field in §6 uses.
	ReadWord(offset uint16) uint16
	WriteWord(offset uint16, val uint16)

	// Cycles returns the monotonic 32-bit hardware cycle counter, read
	// low word before high word and combined as described in §4.1.
	Cycles() uint32

	// KeyRow returns the raw 8-bit scan of one keyboard matrix row.
	KeyRow(row int) byte

	// ActiveSDSlot reports which physical SD slot the CSR currently
	// observes as active, for hot-swap and ROM-integrity detection.
	ActiveSDSlot() uint8
}

// WithDevice is the Design Notes' with_device wrapper: it selects dev/win,
// runs fn against the bus, and leaves the selection in place afterwards —
// callers that need the selection to persist across several accesses
// should group them inside one WithDevice call rather than re-selecting
// per access; callers that don't nest simply re-select on their next
// access, per the shared-resource policy in §5. WithDevice never restores
// a caller's previous selection: there is no "previous selection" concept
// on this bus, only "the last Select anyone issued".
func WithDevice(bus Bus, dev Device, win Window, fn func(Bus)) {
	bus.Select(dev, win)
	fn(bus)
}

// Deadline is a busy-wait bound expressed in cycle-counter ticks, per
// Design Notes §9: the wrap of the 32-bit counter must be handled with
// wrapping comparisons, never a signed subtraction.
type Deadline struct {
	target uint32
}

// NewDeadline returns a Deadline that elapses after delta cycles have
// passed since now.
func NewDeadline(now uint32, delta uint32) Deadline {
	return Deadline{target: now + delta}
}

// Elapsed reports whether the deadline has passed as of now, using
// wrapping arithmetic so a counter wrap between now and target does not
// produce a false negative.
func (d Deadline) Elapsed(now uint32) bool {
	return int32(now-d.target) >= 0
}
