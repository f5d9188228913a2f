// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sdcard

import "fmt"

// RawDriver is the external FAT32 driver this package wraps. It is the
// board-level collaborator (outside this spec's scope) that actually
// walks FAT32 directory chains and cluster tables; FAT32Client only
// adapts its shape to the Card interface the rest of the Shell programs
// against, the way imx6/usdhc adapts raw SD command sequences to a
// higher-level voltage/bus-width negotiation API.
type RawDriver interface {
	Mount(partition int) error
	Open(dev int, path string) (raw RawHandle, size uint32, err error)
	Seek(raw RawHandle, offset uint32) error
	ReadByte(raw RawHandle) (byte, bool, error) // ok=false at EOF
	WriteByte(raw RawHandle, b byte) error
	Flush(raw RawHandle) error
}

// RawHandle is whatever the external driver uses to identify an open
// file; the Shell never interprets it.
type RawHandle any

// FAT32Client adapts a RawDriver to the Card interface.
type FAT32Client struct {
	drv RawDriver
}

// NewFAT32Client wraps drv.
func NewFAT32Client(drv RawDriver) *FAT32Client {
	return &FAT32Client{drv: drv}
}

func (c *FAT32Client) Mount(partition int) error {
	if err := c.drv.Mount(partition); err != nil {
		return fmt.Errorf("%w: %v", ErrNoCard, err)
	}
	return nil
}

func (c *FAT32Client) Open(dev int, path string) (Handle, error) {
	raw, size, err := c.drv.Open(dev, path)
	if err != nil {
		return Handle{}, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	return Handle{
		SizeLo:  uint16(size),
		SizeHi:  uint16(size >> 16),
		backing: raw,
	}, nil
}

func (c *FAT32Client) Seek(h Handle, lo, hi uint16) error {
	offset := uint32(lo) | uint32(hi)<<16
	if err := c.drv.Seek(h.backing, offset); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func (c *FAT32Client) ReadByte(h Handle) (byte, error) {
	b, ok, err := c.drv.ReadByte(h.backing)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIO, err)
	}
	if !ok {
		return 0, ErrEOF
	}
	return b, nil
}

func (c *FAT32Client) WriteByte(h Handle, b byte) error {
	if err := c.drv.WriteByte(h.backing, b); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func (c *FAT32Client) Flush(h Handle) error {
	if err := c.drv.Flush(h.backing); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}
