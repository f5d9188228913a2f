// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package vdrive is the Virtual-Drive Registry: the per-drive state
// table §3 describes, plus the typed accessors and the mount strobe
// that publish a drive's metadata to the emulated core.
package vdrive

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/markkrueg/C64MEGA65/internal/sdcard"
	"github.com/markkrueg/C64MEGA65/internal/shellcfg"
	"github.com/markkrueg/C64MEGA65/internal/shellhw"
)

// ErrNoSuchDrive is returned by any accessor given an out-of-range
// drive index.
var ErrNoSuchDrive = errors.New("vdrive: no such drive")

// FlushCursor is the saved position inside an image between bounded
// flush iterations (§3).
type FlushCursor struct {
	Window      shellhw.Window
	Offset      uint16
	RemainingLo uint16
	RemainingHi uint16
}

// Remaining returns the cursor's remaining byte count as a single value.
func (c FlushCursor) Remaining() uint32 {
	return uint32(c.RemainingLo) | uint32(c.RemainingHi)<<16
}

// SetRemaining stores v split into the lo/hi word pair.
func (c *FlushCursor) SetRemaining(v uint32) {
	c.RemainingLo = uint16(v)
	c.RemainingHi = uint16(v >> 16)
}

// Drive is one virtual-drive record (§3). The zero value is an unmounted
// drive, matching the at-init lifecycle ("VDR records are created at
// init with mounted=false").
type Drive struct {
	Mounted  bool
	ReadOnly bool

	// ImageType is the format discriminator surfaced to the emulated
	// core on mount (D64, D81, … — the concrete enumeration is owned by
	// the menu/file-browser collaborator, out of scope here).
	ImageType uint8

	handle      sdcard.Handle
	mountedPath string
	mountedDev  int

	CacheDirty      bool
	FlushingActive  bool
	FlushCursor     FlushCursor
	AntiThrashReady bool

	MountStatusSnapshot bool
	MenuGroupIndex      int
}

// Registry is the fixed-size table of virtual-drive records, one per
// logical drive, §3's "one per logical drive, fixed maximum N".
type Registry struct {
	bus    shellhw.Bus
	drives [shellcfg.NumDrives]Drive
	log    *log.Logger
}

// NewRegistry returns a Registry with every drive unmounted and no menu
// group configured (MenuGroupIndex -1). Mount and
// unmount events are logged to io.Discard until SetLogger is called;
// cmd/shell wires a real logger the way example/example.go configures
// one, never a package-level global.
func NewRegistry(bus shellhw.Bus) *Registry {
	r := &Registry{bus: bus, log: log.New(io.Discard, "", 0)}
	for n := range r.drives {
		r.drives[n].MenuGroupIndex = -1
	}
	return r
}

// SetLogger directs mount/unmount logging to l.
func (r *Registry) SetLogger(l *log.Logger) { r.log = l }

// Len returns the fixed drive count.
func (r *Registry) Len() int { return len(r.drives) }

func (r *Registry) get(n int) (*Drive, error) {
	if n < 0 || n >= len(r.drives) {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchDrive, n)
	}
	return &r.drives[n], nil
}

// Drive returns the record for drive n.
func (r *Registry) Drive(n int) (*Drive, error) {
	return r.get(n)
}

// Mounted reports whether drive n is currently mounted.
func (r *Registry) Mounted(n int) (bool, error) {
	d, err := r.get(n)
	if err != nil {
		return false, err
	}
	return d.Mounted, nil
}

// MenuGroupOf returns the menu-item index associated with drive n, or
// ok=false if n has none configured.
func (r *Registry) MenuGroupOf(n int) (idx int, ok bool, err error) {
	d, err := r.get(n)
	if err != nil {
		return 0, false, err
	}
	if d.MenuGroupIndex < 0 {
		return 0, false, nil
	}
	return d.MenuGroupIndex, true, nil
}

// ImageBufferDevice returns the selector-bus device id mapped to drive
// n's linear image buffer.
func (r *Registry) ImageBufferDevice(n int) shellhw.Device {
	return imageBufferDevice(n)
}

// Handle returns drive n's FAT32 file handle, valid only while Mounted.
func (r *Registry) Handle(n int) (sdcard.Handle, error) {
	d, err := r.get(n)
	if err != nil {
		return sdcard.Handle{}, err
	}
	return d.handle, nil
}

// RecordWrite marks drive n's cache dirty and restarts any in-progress
// flush, per invariant I4 ("a write servicing transition always sets
// cache_dirty and clears flushing_active") and P3 ("any write while
// flushing_active transitions the drive to Pending within one loop
// pass; cache_dirty remains true"). The flush cursor is left as-is:
// Pending carries no cursor state of its own, and Starting will
// recompute it from scratch on the next flush attempt.
func (r *Registry) RecordWrite(n int) error {
	d, err := r.get(n)
	if err != nil {
		return err
	}
	d.CacheDirty = true
	d.FlushingActive = false
	return nil
}

// CheckInvariants validates I2 (cache_dirty implies mounted) and the
// cache_dirty half of I3 (flushing_active implies cache_dirty) over
// every drive record, returning the first violation found. I1 is not
// checked. Intended for tests and for defensive assertions
// at main-loop boundaries in debug builds.
func (r *Registry) CheckInvariants() error {
	for n := range r.drives {
		d := &r.drives[n]

		if d.CacheDirty && !d.Mounted { // I2
			return fmt.Errorf("vdrive: drive %d: cache_dirty without mounted", n)
		}
		if d.FlushingActive && !d.CacheDirty { // I3
			return fmt.Errorf("vdrive: drive %d: flushing_active without cache_dirty", n)
		}
	}
	return nil
}
