// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package shellcfg collects the build-time constants that would otherwise
// be scattered magic numbers: drive count, the Flush Engine's bounded
// iteration size, the anti-thrash quiet period, debounce and SD
// stabilisation waits. Keeping them in one place is the Design Notes'
// "magic hardware addresses" rule applied to timing and sizing constants
// as well as addresses.
package shellcfg

import "time"

const (
	// NumDrives is the fixed maximum number of simultaneously-mountable
	// logical drives. One VDR record and one Flush Engine state machine
	// exist per drive, indices [0, NumDrives).
	NumDrives = 4

	// WindowSize is the size, in bytes, of the 4-KiB paged RAM/ROM data
	// window exposed through the selector bus (device, window, offset).
	WindowSize = 4096

	// IterSize is the maximum number of bytes the Flush Engine writes to
	// the SD card in a single bounded iteration (P5).
	IterSize = 100

	// AntiThrash is the minimum quiet period after the most recent write
	// before a flush may begin (P4). Enforced by hardware and surfaced to
	// the firmware as a ready bit; mirrored here so the simulated bus and
	// tests can reproduce the same bound.
	AntiThrash = 2000 * time.Millisecond

	// KeyDebounce is the coarse busy-wait used to debounce a keypress
	// before it is considered a fresh edge.
	KeyDebounce = 333 * time.Millisecond

	// SDStabilise is the wait after a card-present transition before the
	// SD/FAT32 client attempts to mount, giving the card controller time
	// to settle.
	SDStabilise = 100 * time.Millisecond

	// BankSize is the size, in bytes, of one CRT cartridge bank and of
	// each of the two on-chip BRAMs ("lo" and "hi") it is streamed into.
	BankSize = 8192

	// ChipHeaderSize is the size, in bytes, of one CHIP packet header.
	ChipHeaderSize = 0x10

	// CRTHeaderMinLength is the minimum byte length a file must have
	// before the CRT Loader will even attempt to parse it.
	CRTHeaderMinLength = 0x40

	// StreamBurst bounds a single DRAM-to-BRAM transfer burst during bank
	// streaming (state read_lo/read_hi).
	StreamBurst = 256

	// CyclesPerSecond is the free-running cycle counter's tick rate,
	// used to convert the wall-clock durations above into cycle-counter
	// deltas for Deadline (§4.1, §9: busy-wait bounds are expressed in
	// cycles, never wall-clock time, on the real target).
	CyclesPerSecond = 100_000_000
)

// Cycles converts a wall-clock duration into a cycle-counter delta at
// CyclesPerSecond, for constructing a shellhw.Deadline from the
// durations above.
func Cycles(d time.Duration) uint32 {
	return uint32(d.Seconds() * CyclesPerSecond)
}

// CRTSignature is the literal 16-byte ASCII signature every CRT container
// must begin with, trailing spaces included.
var CRTSignature = [16]byte{'C', '6', '4', ' ', 'C', 'A', 'R', 'T', 'R', 'I', 'D', 'G', 'E', ' ', ' ', ' '}

// ChipMagic is the literal 4-byte ASCII tag that introduces a CHIP packet.
var ChipMagic = [4]byte{'C', 'H', 'I', 'P'}
