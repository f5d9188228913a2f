// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package vdrive

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/markkrueg/C64MEGA65/internal/sdcard"
)

// Mount opens path on the SD card via card and transitions drive n from
// unmounted to mounted, publishing its metadata with a mount strobe
// (§3, §4.3, §6).
//
// Mounting the drive that is already mounted with the same (dev, path)
// is a no-op beyond re-publishing the strobe: cache_dirty is left
// exactly as it was and the emulated core still only sees one mount
// pulse's worth of state change per distinct image (P6). Mounting a
// different path while already mounted first unmounts the old image.
func (r *Registry) Mount(n int, card sdcard.Card, dev int, path string, imageType uint8, readOnly bool) error {
	d, err := r.get(n)
	if err != nil {
		return err
	}

	if d.Mounted && d.mountedPath == path && d.mountedDev == dev {
		// Idempotent re-mount of the same image: re-publish the
		// strobe (the emulated core may have just reset) without
		// touching cache_dirty or re-opening the file.
		r.strobeMount(d, imageType, readOnly)
		return nil
	}

	if d.Mounted {
		if err := r.Unmount(n, card); err != nil {
			return err
		}
	}

	h, err := card.Open(dev, path)
	if err != nil {
		return fmt.Errorf("vdrive: mount drive %d: %w", n, err)
	}

	d.handle = h
	d.mountedPath = path
	d.mountedDev = dev
	d.Mounted = true
	d.ReadOnly = readOnly
	d.ImageType = imageType
	d.CacheDirty = false
	d.FlushingActive = false
	d.FlushCursor = FlushCursor{}

	r.strobeMount(d, imageType, readOnly)

	r.log.Printf("vdrive: drive %d mounted %q (%s, read_only=%v)", n, path, humanize.Bytes(uint64(h.Size())), readOnly)

	return nil
}

// Unmount flushes nothing itself (the caller is expected to have run
// the Flush Engine to completion beforehand if cache_dirty was set) and
// transitions drive n back to unmounted, strobing the mount signal with
// image size 0 (§3).
func (r *Registry) Unmount(n int, card sdcard.Card) error {
	d, err := r.get(n)
	if err != nil {
		return err
	}

	if !d.Mounted {
		return nil
	}

	r.log.Printf("vdrive: drive %d unmounted %q (was %s)", n, d.mountedPath, humanize.Bytes(uint64(d.handle.Size())))

	d.Mounted = false
	d.CacheDirty = false
	d.FlushingActive = false
	d.FlushCursor = FlushCursor{}
	d.handle = sdcard.Handle{}
	d.mountedPath = ""

	r.bus.Select(driveRegsDevice(n), mountWindow)
	r.bus.WriteByte(offSizeLo, 0)
	r.bus.WriteByte(offSizeLo+1, 0)
	r.bus.WriteByte(offSizeHi, 0)
	r.bus.WriteByte(offSizeHi+1, 0)
	r.pulseMount(n)

	return nil
}

// strobeMount is §6's "Mount strobe" sequence: write image_type,
// read_only, size_lo, size_hi; pulse mount (1 then 0); clear the
// auxiliaries. The emulated core latches everything on the rising edge
// of mount, so the writes before the pulse and the clears after it must
// not be reordered.
func (r *Registry) strobeMount(d *Drive, imageType uint8, readOnly bool) {
	size := d.handle.Size()

	n := -1
	for i := range r.drives {
		if &r.drives[i] == d {
			n = i
			break
		}
	}
	if n < 0 {
		return
	}

	r.bus.Select(driveRegsDevice(n), mountWindow)

	r.bus.WriteByte(offImageType, imageType)
	if readOnly {
		r.bus.WriteByte(offReadOnly, 1)
	} else {
		r.bus.WriteByte(offReadOnly, 0)
	}
	r.bus.WriteWord(offSizeLo, uint16(size))
	r.bus.WriteWord(offSizeHi, uint16(size>>16))

	r.pulseMount(n)

	r.bus.Select(driveRegsDevice(n), mountWindow)
	r.bus.WriteByte(offSizeLo, 0)
	r.bus.WriteByte(offSizeLo+1, 0)
	r.bus.WriteByte(offSizeHi, 0)
	r.bus.WriteByte(offSizeHi+1, 0)
	r.bus.WriteByte(offReadOnly, 0)
	r.bus.WriteByte(offImageType, 0)

	d.MountStatusSnapshot = d.Mounted
}

// pulseMount asserts the mount bit for one cycle then de-asserts it, the
// "pulse (1 then 0)" §6 specifies. Select must already target
// (driveRegsDevice(n), mountWindow).
func (r *Registry) pulseMount(n int) {
	r.bus.WriteByte(offMount, 1)
	r.bus.WriteByte(offMount, 0)
}
