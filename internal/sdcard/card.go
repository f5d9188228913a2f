// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package sdcard is a thin, no-retry wrapper over an external FAT32
// driver, the way §4.2 specifies: mount, open, seek, read/write a byte,
// flush. The wrapper performs no retries of its own — a failure is
// surfaced verbatim to the caller, which decides (per §7) whether it is
// a recoverable "prompt to retry" condition or a fatal one.
package sdcard

import "errors"

// Sentinel errors a Card implementation returns, mirroring the kind of
// named, pre-allocated error values imx6/usdhc uses for SD command
// failures instead of ad-hoc fmt.Errorf text at every call site.
var (
	ErrNotMounted = errors.New("sdcard: not mounted")
	ErrNoCard     = errors.New("sdcard: no card present")
	ErrOpenFailed = errors.New("sdcard: open failed")
	ErrIO         = errors.New("sdcard: read/write failed")
	ErrEOF        = errors.New("sdcard: end of file")
)

// Handle is the opaque FAT32 file handle, valid only while its owning
// drive record's mounted flag is true (invariant I1).
type Handle struct {
	// SizeLo/SizeHi are the file size in bytes, split the way every
	// other multi-word field in this firmware is: low word then high
	// word, because the emulated core's registers are 16 bits wide.
	SizeLo uint16
	SizeHi uint16

	// backing is opaque to every caller; only a Card implementation in
	// this package ever sets or reads it.
	backing any
}

// Size returns the handle's file size as a single 32-bit value.
func (h Handle) Size() uint32 {
	return uint32(h.SizeLo) | uint32(h.SizeHi)<<16
}

// Card is the external collaborator this package wraps. Production code
// is handed a driver satisfying this interface by board bring-up code;
// tests use the in-memory fake in fake.go.
type Card interface {
	// Mount (re)mounts the given physical partition. Call again after a
	// hot-swap is detected (dispatch.Dispatcher.SDChanged); no
	// implementation in this package retries it on its own.
	Mount(partition int) error

	// Open opens path on the given physical device for read/write.
	// Whether a missing path is created depends on the implementation:
	// FakeCard creates an empty file, FAT32Client leaves it to its
	// RawDriver.
	Open(dev int, path string) (Handle, error)

	// Seek repositions the handle's read/write cursor to a 32-bit byte
	// offset split as lo/hi words.
	Seek(h Handle, lo, hi uint16) error

	ReadByte(h Handle) (byte, error)
	WriteByte(h Handle, b byte) error

	// Flush commits any buffered FAT32 writes for h to the card.
	Flush(h Handle) error
}
