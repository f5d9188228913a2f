// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package shell

import "github.com/markkrueg/C64MEGA65/internal/shellhw"

// Selector-bus device ids owned by the glue layer. internal/vdrive owns
// the device range [0x10, 0x10+NumDrives) for drive control registers
// and [0x40, 0x40+NumDrives) for image buffers (see vdrive/registers.go);
// the CRT loader's devices are assigned here, above that range, so the
// whole firmware's device namespace is declared in exactly two places
// instead of scattered across every package that happens to need an id.
const (
	crtDRAMDevice      = shellhw.Device(0x50)
	crtLoBRAMDevice    = shellhw.Device(0x51)
	crtHiBRAMDevice    = shellhw.Device(0x52)
	crtStatusRegDevice = shellhw.Device(0x53)
)
