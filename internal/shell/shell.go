// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package shell is the single Shell context Design Notes §9 calls for
// in place of the original's global mutable state: one struct holding
// every component (HIF bus, SD/FAT32 client, Virtual-Drive Registry,
// Request Dispatcher, Flush Engine, CRT Loader, key scanner) and the
// one-pass main-loop Step that drives them in the order §2 fixes —
// dispatcher poll, key scan, CRT housekeeping.
package shell

import (
	"errors"
	"io"
	"log"

	"github.com/markkrueg/C64MEGA65/internal/crt"
	"github.com/markkrueg/C64MEGA65/internal/dispatch"
	"github.com/markkrueg/C64MEGA65/internal/flush"
	"github.com/markkrueg/C64MEGA65/internal/sdcard"
	"github.com/markkrueg/C64MEGA65/internal/shellcfg"
	"github.com/markkrueg/C64MEGA65/internal/shellhw"
	"github.com/markkrueg/C64MEGA65/internal/vdrive"
)

// Shell owns every long-lived component for one running instance. It
// carries no package-level state of its own; everything reachable from
// a running Shell hangs off this struct.
type Shell struct {
	Bus      shellhw.Bus
	Card     sdcard.Card
	Registry *vdrive.Registry
	Dispatch *dispatch.Dispatcher
	Flush    *flush.Engine
	CRT      *crt.Loader
	Keys     *shellhw.KeyScanner

	log *log.Logger

	halted  bool
	haltErr error
}

// New wires a Shell over bus and card. startupSDSlot is the active SD
// slot observed at the moment New is called, fixing the baseline the
// Request Dispatcher's ROM-integrity check (§4.4 step 1) compares
// against for the lifetime of the process. logger receives mount/
// unmount and fatal-halt messages; pass nil to discard them, matching
// example/example.go's verbose-flag-gated logger rather than defaulting
// to stderr.
func New(bus shellhw.Bus, card sdcard.Card, startupSDSlot uint8, logger *log.Logger) *Shell {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	registry := vdrive.NewRegistry(bus)
	registry.SetLogger(logger)

	engine := flush.NewEngine(bus, card, registry)
	disp := dispatch.New(bus, registry, engine, startupSDSlot)
	loader := crt.NewLoader(bus, crtDRAMDevice, crtLoBRAMDevice, crtHiBRAMDevice)
	keys := shellhw.NewKeyScanner(bus, shellcfg.Cycles(shellcfg.KeyDebounce))

	return &Shell{
		Bus:      bus,
		Card:     card,
		Registry: registry,
		Dispatch: disp,
		Flush:    engine,
		CRT:      loader,
		Keys:     keys,
		log:      logger,
	}
}

// Halted reports whether a prior Step hit a fatal condition (§7). Once
// true, it stays true: the caller is expected to stop calling Step and
// run its halt path (a reset prompt on real hardware, a process exit in
// the simulated target).
func (s *Shell) Halted() bool { return s.halted }

// HaltError returns the fatal error that halted the Shell, or nil.
func (s *Shell) HaltError() error { return s.haltErr }

// Step runs one main-loop pass (§2): dispatcher poll (hot-swap
// detection, read/write/flush sweeps), key scan, CRT housekeeping. It
// is a no-op once Halted returns true — the caller must not keep
// driving a halted Shell's components, since they no longer satisfy
// the registry's invariants once a flush has aborted mid-write.
func (s *Shell) Step() error {
	if s.halted {
		return s.haltErr
	}

	if err := s.Dispatch.Poll(); err != nil {
		var fe *flush.FatalError
		if errors.As(err, &fe) {
			s.halted = true
			s.haltErr = err
			s.log.Printf("shell: fatal: %v", err)
			return err
		}
		return err
	}

	s.Keys.Scan()
	s.CRT.Service()
	s.publishCRTStatus()

	return nil
}

// publishCRTStatus writes the loader's current status to the cartridge
// status register every pass, per §6: "the core polls this register
// rather than being interrupted".
func (s *Shell) publishCRTStatus() {
	s.CRT.PublishStatus(crtStatusRegDevice, s.crtFileSize())
}

func (s *Shell) crtFileSize() uint32 {
	banks := s.CRT.Banks()
	if len(banks) == 0 {
		return 0
	}
	last := banks[len(banks)-1]
	return last.RAMOffset + uint32(last.BankSize)
}

// LoadCartridge begins parsing a CRT file already streamed into DRAM at
// baseAddress, running the parser to completion (header parsing is not
// hardware-paced — see crt.Loader.Advance). Any parse error is
// recoverable (§7): the caller may retry with a different file without
// restarting the Shell.
func (s *Shell) LoadCartridge(baseAddress, length uint32) error {
	if err := s.CRT.Start(baseAddress, length); err != nil {
		return err
	}
	return s.CRT.Advance()
}
