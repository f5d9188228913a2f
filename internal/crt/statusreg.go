// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package crt

import "github.com/markkrueg/C64MEGA65/internal/shellhw"

// Offsets within the cartridge status register device (§6, "Cartridge
// status register", one instance, fixed device id).
const (
	offStatus    uint16 = 0
	offFileSzLo  uint16 = 1
	offFileSzHi  uint16 = 3
	offStartLo   uint16 = 5
	offStartHi   uint16 = 7
	offVHDLErr   uint16 = 9
	offDiagWord0 uint16 = 11
	offDiagWord1 uint16 = 13
)

// VHDL-reported error sentinel values (§6).
const (
	vhdlBusy uint16 = 0xFFFF
	vhdlNone uint16 = 0
)

// PublishStatus writes the loader's current status, file size and DRAM
// start address (in 16-word units, per §6) to the cartridge status
// register at statusDev. The core polls this register rather than
// being interrupted, so Publish is expected to be called once per main
// loop pass for as long as a load is in flight or just completed.
func (l *Loader) PublishStatus(statusDev shellhw.Device, fileSize uint32) {
	var wire uint16
	switch l.status {
	case Idle:
		wire = 0
	case Parsing:
		wire = 1
	case Error:
		wire = 2
	case Ready:
		wire = 3
	}

	// one unit is 16 words of 2 bytes each, i.e. 32 bytes
	startUnits := l.baseRAMAddress / 32

	l.bus.Select(statusDev, 0)
	l.bus.WriteByte(offStatus, byte(wire))
	l.bus.WriteWord(offFileSzLo, uint16(fileSize))
	l.bus.WriteWord(offFileSzHi, uint16(fileSize>>16))
	l.bus.WriteWord(offStartLo, uint16(startUnits))
	l.bus.WriteWord(offStartHi, uint16(startUnits>>16))

	if l.status == Error {
		l.bus.WriteWord(offVHDLErr, uint16(l.errorCode))
		l.bus.WriteWord(offDiagWord0, uint16(l.errorAddr))
		l.bus.WriteWord(offDiagWord1, uint16(l.errorAddr>>16))
	} else {
		l.bus.WriteWord(offVHDLErr, vhdlNone)
	}
}
