// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package dispatch is the Request Dispatcher: the cooperative scheduler
// polled once per main-loop pass (§2, §4.4). It detects SD hot-swaps,
// sweeps the Virtual-Drive Registry for pending read/write requests
// from the emulated core, and drives one Flush Engine iteration per
// dirty drive.
package dispatch

import (
	"github.com/markkrueg/C64MEGA65/internal/flush"
	"github.com/markkrueg/C64MEGA65/internal/imagebuf"
	"github.com/markkrueg/C64MEGA65/internal/shellhw"
	"github.com/markkrueg/C64MEGA65/internal/vdrive"
)

// Dispatcher holds the state the poll step needs across passes: the
// startup SD slot (for ROM-integrity checking), the last observed slot
// (for hot-swap detection), and whether configuration persistence is
// currently permitted.
type Dispatcher struct {
	bus      shellhw.Bus
	registry *vdrive.Registry
	engine   *flush.Engine

	startupSlot uint8
	lastSlot    uint8

	configPersistenceEnabled bool
	sdChanged                bool

	passes uint64
}

// New returns a Dispatcher. startupSlot is the active SD slot observed
// at boot, used by the ROM-integrity check (§4.4 step 1).
func New(bus shellhw.Bus, registry *vdrive.Registry, engine *flush.Engine, startupSlot uint8) *Dispatcher {
	return &Dispatcher{
		bus:                      bus,
		registry:                 registry,
		engine:                   engine,
		startupSlot:              startupSlot,
		lastSlot:                 startupSlot,
		configPersistenceEnabled: true,
	}
}

// ConfigPersistenceEnabled reports whether writing the configuration
// file is currently permitted. It is latched false, and never set back
// true, once the active SD slot is observed to differ from the one
// present at startup (§4.4 step 1) — writing settings to a different
// card than the one the Shell booted from would corrupt it.
func (d *Dispatcher) ConfigPersistenceEnabled() bool { return d.configPersistenceEnabled }

// SDChanged reports whether a hot-swap was observed since the last time
// it was cleared. Mount attempts must be inhibited while this is true;
// ClearSDChanged is called by the mount-retry path once it has
// restarted the card (§4.4 step 2).
func (d *Dispatcher) SDChanged() bool { return d.sdChanged }

// ClearSDChanged acknowledges a hot-swap, re-enabling mount attempts.
func (d *Dispatcher) ClearSDChanged() { d.sdChanged = false }

// Passes returns the number of completed Poll calls, for diagnostics.
func (d *Dispatcher) Passes() uint64 { return d.passes }

// Poll runs one dispatcher pass: ROM-integrity check, hot-swap
// detection, read sweep, write sweep, flush sweep (§4.4). The first
// error it meets ends the pass and is returned; the remaining drives are
// not swept. The per-drive registry calls only fail for an out-of-range
// index, which the sweeps never pass, so in practice the only error
// Poll returns is a fatal flush failure (§7).
func (d *Dispatcher) Poll() error {
	d.passes++

	slot := d.bus.ActiveSDSlot()

	if slot != d.startupSlot {
		d.configPersistenceEnabled = false
	}

	if slot != d.lastSlot {
		d.sdChanged = true
	}
	d.lastSlot = slot

	for n := 0; n < d.registry.Len(); n++ {
		if err := d.serviceRead(n); err != nil {
			return err
		}
	}

	for n := 0; n < d.registry.Len(); n++ {
		if err := d.serviceWrite(n); err != nil {
			return err
		}
	}

	for n := 0; n < d.registry.Len(); n++ {
		mounted, err := d.registry.Mounted(n)
		if err != nil {
			return err
		}
		if !mounted {
			continue
		}

		drv, err := d.registry.Drive(n)
		if err != nil {
			return err
		}
		if !drv.CacheDirty {
			continue
		}

		if err := d.registry.SampleAntiThrash(n); err != nil {
			return err
		}
		if err := d.engine.Step(n); err != nil {
			return err
		}
	}

	return nil
}

// serviceRead is §4.4 step 3: transfer size_bytes from the linear image
// buffer into the emulated drive's internal buffer, then acknowledge.
// The acknowledgement of the current request is issued before any other
// drive is considered (§5 ordering guarantee).
func (d *Dispatcher) serviceRead(n int) error {
	if !d.registry.PendingRead(n) {
		return nil
	}

	req := d.registry.RequestParams(n)
	d.registry.AckStart(n)

	src := imagebuf.FromParts(d.bus, d.registry.ImageBufferDevice(n), req.Window, req.Offset)
	for i := uint16(0); i < req.SizeBytes; i++ {
		d.registry.BufferWrite(n, i, src.ReadByte())
	}

	d.registry.AckEnd(n)
	return nil
}

// serviceWrite is §4.4 step 4, the write-side symmetric counterpart,
// which also marks the drive's cache dirty (invariant I4, property P3).
func (d *Dispatcher) serviceWrite(n int) error {
	if !d.registry.PendingWrite(n) {
		return nil
	}

	req := d.registry.RequestParams(n)
	d.registry.AckStart(n)

	dst := imagebuf.FromParts(d.bus, d.registry.ImageBufferDevice(n), req.Window, req.Offset)
	for i := uint16(0); i < req.SizeBytes; i++ {
		dst.WriteByte(d.registry.BufferRead(n, i))
	}

	if err := d.registry.RecordWrite(n); err != nil {
		return err
	}

	d.registry.AckEnd(n)
	return nil
}
