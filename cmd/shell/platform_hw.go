// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build shell_hw

package main

import (
	"github.com/markkrueg/C64MEGA65/internal/sdcard"
	"github.com/markkrueg/C64MEGA65/internal/shell"
	"github.com/markkrueg/C64MEGA65/internal/shellhw"
)

// startDiagnosticsIfHost is a no-op on the real target: internal/diag
// does not build under shell_hw at all.
func startDiagnosticsIfHost(s *shell.Shell) {}

func newBus() shellhw.Bus {
	return shellhw.NewBus()
}

// boardFAT32Driver is the seam sdcard.RawDriver describes: a board-level
// FAT32 driver outside this module's scope (§1). The real target wires
// its own driver here at board bring-up; this placeholder only keeps
// the shell_hw build linkable without one.
type boardFAT32Driver struct{}

func (boardFAT32Driver) Mount(partition int) error { return sdcard.ErrNoCard }
func (boardFAT32Driver) Open(dev int, path string) (sdcard.RawHandle, uint32, error) {
	return nil, 0, sdcard.ErrOpenFailed
}
func (boardFAT32Driver) Seek(raw sdcard.RawHandle, offset uint32) error { return sdcard.ErrIO }
func (boardFAT32Driver) ReadByte(raw sdcard.RawHandle) (byte, bool, error) {
	return 0, false, sdcard.ErrIO
}
func (boardFAT32Driver) WriteByte(raw sdcard.RawHandle, b byte) error { return sdcard.ErrIO }
func (boardFAT32Driver) Flush(raw sdcard.RawHandle) error             { return sdcard.ErrIO }

func newCard() sdcard.Card {
	return sdcard.NewFAT32Client(boardFAT32Driver{})
}

func haltLoop() {
	for {
	}
}
