// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package vdrive

import "github.com/markkrueg/C64MEGA65/internal/shellhw"

// Request is one pending read or write request from the emulated core
// against a drive's shared register file (§6).
type Request struct {
	Window     shellhw.Window
	Offset     uint16
	SizeBytes  uint16
	BlockCount uint16
	LBALo      uint16
	LBAHi      uint16
}

func (r *Registry) selectDriveRegs(n int) {
	r.bus.Select(driveRegsDevice(n), 0)
}

// PendingRead reports whether the emulated core has raised sd_rd for
// drive n.
func (r *Registry) PendingRead(n int) bool {
	r.selectDriveRegs(n)
	return r.bus.ReadByte(offSDRd) != 0
}

// PendingWrite reports whether the emulated core has raised sd_wr for
// drive n.
func (r *Registry) PendingWrite(n int) bool {
	r.selectDriveRegs(n)
	return r.bus.ReadByte(offSDWr) != 0
}

// RequestParams reads the current request's address/size fields.
func (r *Registry) RequestParams(n int) Request {
	r.selectDriveRegs(n)
	return Request{
		Window:     shellhw.Window(r.bus.ReadWord(offWin4k)),
		Offset:     r.bus.ReadWord(offOff4k),
		SizeBytes:  r.bus.ReadWord(offSizeBytes),
		BlockCount: r.bus.ReadWord(offBlockCount),
		LBALo:      r.bus.ReadWord(offLBALo),
		LBAHi:      r.bus.ReadWord(offLBAHi),
	}
}

// AckStart asserts ack for drive n, signalling the start of transfer
// (§6, §5: "firmware writes 1 to acknowledge start of transfer").
func (r *Registry) AckStart(n int) {
	r.selectDriveRegs(n)
	r.bus.WriteByte(offAck, 1)
}

// AckEnd de-asserts ack for drive n, completing the at-most-one
// assert/de-assert pair P1 requires per request edge.
func (r *Registry) AckEnd(n int) {
	r.selectDriveRegs(n)
	r.bus.WriteByte(offAck, 0)
}

// BufferWrite is the firmware-is-master buffer-port write sequence
// (§6): set buf_addr, set buf_dout, strobe buf_wren high then low. Used
// when servicing a read request to hand bytes to the emulated drive's
// internal buffer.
func (r *Registry) BufferWrite(n int, addr uint16, b byte) {
	r.selectDriveRegs(n)
	r.bus.WriteWord(offBufAddr, addr)
	r.bus.WriteByte(offBufDout, b)
	r.bus.WriteByte(offBufWren, 1)
	r.bus.WriteByte(offBufWren, 0)
}

// BufferRead is the buffer-port read sequence: set buf_addr, read
// buf_din. Used when servicing a write request to pull bytes out of the
// emulated drive's internal buffer.
func (r *Registry) BufferRead(n int, addr uint16) byte {
	r.selectDriveRegs(n)
	r.bus.WriteWord(offBufAddr, addr)
	return r.bus.ReadByte(offBufDin)
}

// SampleAntiThrash refreshes drive n's anti_thrash_ready snapshot from
// the hardware-exposed bit (§3: "exposed by hardware, asserted once the
// configured quiet-period since the last write has elapsed"). Called
// once per main-loop pass, per §5's "sample hardware inputs once per
// loop pass".
func (r *Registry) SampleAntiThrash(n int) error {
	d, err := r.get(n)
	if err != nil {
		return err
	}
	r.selectDriveRegs(n)
	d.AntiThrashReady = r.bus.ReadByte(offAntiThrash) != 0
	return nil
}
