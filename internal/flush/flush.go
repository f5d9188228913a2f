// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package flush is the Flush Engine: the deferred write-back state
// machine of §4.5. The emulated drive writes bursty; flushing on every
// write would thrash the SD card and blow the core's acknowledgement
// deadline, so dirty caches are batched and written back in bounded
// iterations once a quiet period has elapsed.
package flush

import (
	"fmt"

	"github.com/markkrueg/C64MEGA65/internal/imagebuf"
	"github.com/markkrueg/C64MEGA65/internal/sdcard"
	"github.com/markkrueg/C64MEGA65/internal/shellcfg"
	"github.com/markkrueg/C64MEGA65/internal/shellhw"
	"github.com/markkrueg/C64MEGA65/internal/vdrive"
)

// State is the Flush Engine's per-drive position, derived from the VDR
// fields rather than stored separately — per §4.5, "the Clean/Pending
// transitions are implicit in the dispatcher's guard".
type State int

const (
	Clean State = iota
	Pending
	Starting
	Flushing
	Flushed
)

func (s State) String() string {
	switch s {
	case Clean:
		return "clean"
	case Pending:
		return "pending"
	case Starting:
		return "starting"
	case Flushing:
		return "flushing"
	case Flushed:
		return "flushed"
	default:
		return "unknown"
	}
}

// FatalError marks a flush failure as fatal per §7: "a seek, write or
// flush error is fatal — no partial success is hidden". The main loop
// (internal/shell) routes any error satisfying errors.As(err,
// *FatalError) to the halt path instead of retrying.
type FatalError struct {
	Drive int
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("flush: drive %d: fatal: %v", e.Drive, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Engine drives the write-back of every drive's dirty image cache.
type Engine struct {
	bus      shellhw.Bus
	card     sdcard.Card
	registry *vdrive.Registry
}

// NewEngine returns a Flush Engine over registry, using bus for image
// buffer access and card for the destination SD file.
func NewEngine(bus shellhw.Bus, card sdcard.Card, registry *vdrive.Registry) *Engine {
	return &Engine{bus: bus, card: card, registry: registry}
}

// StateOf reports drive n's current position in the state machine,
// without advancing it. Used by internal/diag and by tests.
func (e *Engine) StateOf(n int) (State, error) {
	d, err := e.registry.Drive(n)
	if err != nil {
		return Clean, err
	}
	return stateOf(d), nil
}

func stateOf(d *vdrive.Drive) State {
	switch {
	case !d.CacheDirty:
		return Clean
	case !d.FlushingActive && !d.AntiThrashReady:
		return Pending
	case !d.FlushingActive && d.AntiThrashReady:
		return Starting
	case d.FlushingActive && d.FlushCursor.Remaining() > 0:
		return Flushing
	default:
		return Flushed
	}
}

// Step runs one bounded iteration of drive n's flush state machine, as
// invoked by the Request Dispatcher's flush sweep (§4.4 step 5). It is a
// no-op unless the drive is CacheDirty (the dispatcher only calls Step
// for dirty drives, but Step tolerates being called regardless).
//
// At most shellcfg.IterSize bytes are written to the SD card in this
// call (P5). Any seek, write or flush error aborts immediately and is
// returned wrapped in *FatalError (§7) — the caller must not continue
// servicing this drive's cache as if nothing happened.
func (e *Engine) Step(n int) error {
	d, err := e.registry.Drive(n)
	if err != nil {
		return err
	}

	switch stateOf(d) {
	case Clean, Pending:
		return nil

	case Starting:
		if err := e.start(n, d); err != nil {
			return &FatalError{Drive: n, Err: err}
		}
		fallthrough

	case Flushing:
		done, err := e.flushOnce(n, d)
		if err != nil {
			return &FatalError{Drive: n, Err: err}
		}
		if !done {
			return nil
		}
		fallthrough

	case Flushed:
		if err := e.finish(n, d); err != nil {
			return &FatalError{Drive: n, Err: err}
		}
	}

	return nil
}

func (e *Engine) start(n int, d *vdrive.Drive) error {
	h, err := e.registry.Handle(n)
	if err != nil {
		return err
	}

	if err := e.card.Seek(h, 0, 0); err != nil {
		return err
	}

	d.FlushCursor = vdrive.FlushCursor{}
	d.FlushCursor.SetRemaining(h.Size())
	d.FlushingActive = true

	return nil
}

// flushOnce writes up to shellcfg.IterSize bytes from the image buffer
// to the file handle, advancing the cursor, and reports whether the
// whole image has now been written (remaining == 0).
func (e *Engine) flushOnce(n int, d *vdrive.Drive) (done bool, err error) {
	h, err := e.registry.Handle(n)
	if err != nil {
		return false, err
	}

	remaining := d.FlushCursor.Remaining()
	toWrite := uint32(shellcfg.IterSize)
	if remaining < toWrite {
		toWrite = remaining
	}

	cur := imagebuf.FromParts(e.bus, e.registry.ImageBufferDevice(n), d.FlushCursor.Window, d.FlushCursor.Offset)

	for i := uint32(0); i < toWrite; i++ {
		b := cur.ReadByte()
		if err := e.card.WriteByte(h, b); err != nil {
			return false, err
		}
	}

	d.FlushCursor.Window = cur.Window
	d.FlushCursor.Offset = cur.Offset
	d.FlushCursor.SetRemaining(remaining - toWrite)

	return d.FlushCursor.Remaining() == 0, nil
}

// finish is the Flushed-state entry action: flush the FAT32 buffer, then
// clear cache_dirty and flushing_active, transitioning the drive to
// Clean.
func (e *Engine) finish(n int, d *vdrive.Drive) error {
	if !d.FlushingActive {
		return nil
	}

	h, err := e.registry.Handle(n)
	if err != nil {
		return err
	}

	if err := e.card.Flush(h); err != nil {
		return err
	}

	d.CacheDirty = false
	d.FlushingActive = false
	d.FlushCursor = vdrive.FlushCursor{}

	return nil
}
