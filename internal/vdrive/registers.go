// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package vdrive

import "github.com/markkrueg/C64MEGA65/internal/shellhw"

// Device layout: every virtual drive owns two device ids on the
// selector bus — its control/request register file (§6) and its image
// buffer (the linear RAM region holding the mounted file's bytes). No
// bare literal appears below a drive index; everything is named here,
// per Design Notes §9.
const (
	driveRegsBase   = shellhw.Device(0x10)
	imageBufferBase = shellhw.Device(0x40)
)

func driveRegsDevice(n int) shellhw.Device   { return driveRegsBase + shellhw.Device(n) }
func imageBufferDevice(n int) shellhw.Device { return imageBufferBase + shellhw.Device(n) }

// Offsets within a drive's control/request register window (§6).
const (
	offSDRd       uint16 = 0
	offSDWr       uint16 = 1
	offAck        uint16 = 2
	offLBALo      uint16 = 3
	offLBAHi      uint16 = 5
	offBlockCount uint16 = 7
	offBytesLo    uint16 = 9
	offBytesHi    uint16 = 11
	offSizeBytes  uint16 = 13
	offWin4k      uint16 = 15
	offOff4k      uint16 = 17
	offBufAddr    uint16 = 19
	offBufDout    uint16 = 21
	offBufDin     uint16 = 22
	offBufWren    uint16 = 23
	offAntiThrash uint16 = 24
)

// Offsets within a drive's mount-strobe register window (§6, "Mount
// strobe"), window 1 of the same device.
const (
	mountWindow shellhw.Window = 1

	offImageType uint16 = 0
	offReadOnly  uint16 = 1
	offSizeLo    uint16 = 2
	offSizeHi    uint16 = 4
	offMount     uint16 = 6
)
