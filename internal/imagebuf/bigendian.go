// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package imagebuf

// BE16 assembles a big-endian 16-bit field the way every multi-byte
// field in a CRT file is encoded (§4.6): the first byte read is the most
// significant. Never rely on platform endianness — parse explicitly at
// the field site, per Design Notes §9.
func BE16(b0, b1 byte) uint16 {
	return uint16(b0)<<8 | uint16(b1)
}

// BE32 is the 4-byte counterpart of BE16.
func BE32(b0, b1, b2, b3 byte) uint32 {
	return uint32(b0)<<24 | uint32(b1)<<16 | uint32(b2)<<8 | uint32(b3)
}

// LE16 assembles a little-endian 16-bit word from two consecutive source
// bytes (lo, hi), matching P8: the in-memory/register representation is
// little-endian regardless of how the originating file encoded the
// field.
func LE16(lo, hi byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}
