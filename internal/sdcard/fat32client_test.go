// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sdcard

import (
	"errors"
	"testing"
)

type stubRawDriver struct {
	mountErr error
	openErr  error
	ioErr    error
	data     []byte
	cursor   int
}

func (s *stubRawDriver) Mount(partition int) error { return s.mountErr }

func (s *stubRawDriver) Open(dev int, path string) (RawHandle, uint32, error) {
	if s.openErr != nil {
		return nil, 0, s.openErr
	}
	return s, uint32(len(s.data)), nil
}

func (s *stubRawDriver) Seek(raw RawHandle, offset uint32) error {
	s.cursor = int(offset)
	return nil
}

func (s *stubRawDriver) ReadByte(raw RawHandle) (byte, bool, error) {
	if s.ioErr != nil {
		return 0, false, s.ioErr
	}
	if s.cursor >= len(s.data) {
		return 0, false, nil
	}
	b := s.data[s.cursor]
	s.cursor++
	return b, true, nil
}

func (s *stubRawDriver) WriteByte(raw RawHandle, b byte) error {
	if s.ioErr != nil {
		return s.ioErr
	}
	for s.cursor >= len(s.data) {
		s.data = append(s.data, 0)
	}
	s.data[s.cursor] = b
	s.cursor++
	return nil
}

func (s *stubRawDriver) Flush(raw RawHandle) error { return s.ioErr }

func TestFAT32ClientOpenWrapsSize(t *testing.T) {
	drv := &stubRawDriver{data: []byte{1, 2, 3, 4, 5}}
	c := NewFAT32Client(drv)

	h, err := c.Open(0, "FILE.D64")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if h.Size() != 5 {
		t.Errorf("Size() = %d, want 5", h.Size())
	}
}

func TestFAT32ClientOpenFailureWrapsSentinel(t *testing.T) {
	drv := &stubRawDriver{openErr: errors.New("boom")}
	c := NewFAT32Client(drv)

	_, err := c.Open(0, "FILE.D64")
	if !errors.Is(err, ErrOpenFailed) {
		t.Errorf("Open error = %v, want wrapped ErrOpenFailed", err)
	}
}

func TestFAT32ClientReadByteEOF(t *testing.T) {
	drv := &stubRawDriver{data: []byte{9}}
	c := NewFAT32Client(drv)

	h, err := c.Open(0, "FILE.D64")
	if err != nil {
		t.Fatal(err)
	}

	b, err := c.ReadByte(h)
	if err != nil || b != 9 {
		t.Fatalf("first ReadByte = %d, %v, want 9, nil", b, err)
	}

	if _, err := c.ReadByte(h); !errors.Is(err, ErrEOF) {
		t.Errorf("ReadByte past end = %v, want ErrEOF", err)
	}
}

func TestFAT32ClientWriteByteWrapsIOError(t *testing.T) {
	drv := &stubRawDriver{data: []byte{0}, ioErr: errors.New("disk full")}
	c := NewFAT32Client(drv)
	h, _ := c.Open(0, "FILE.D64")

	if err := c.WriteByte(h, 1); !errors.Is(err, ErrIO) {
		t.Errorf("WriteByte error = %v, want wrapped ErrIO", err)
	}
}

func TestFAT32ClientMountWrapsNoCard(t *testing.T) {
	drv := &stubRawDriver{mountErr: errors.New("no card")}
	c := NewFAT32Client(drv)

	if err := c.Mount(0); !errors.Is(err, ErrNoCard) {
		t.Errorf("Mount error = %v, want wrapped ErrNoCard", err)
	}
}
