// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sdcard

import "sync"

// FakeCard is an in-memory Card used by unit tests in the dispatch,
// flush, vdrive, shell and diag packages, standing in for a real SD card the same
// way shellhw.SimBus stands in for the FPGA register file.
type FakeCard struct {
	mu sync.Mutex

	mounted   bool
	partition int

	files map[string]*fakeFile

	// FailMount/FailOpen/FailIO, when set, make the next matching
	// operation return that error, for exercising §7's fatal paths.
	FailMount error
	FailOpen  error
	FailIO    error
}

type fakeFile struct {
	data   []byte
	cursor int
}

// NewFakeCard returns an empty fake card.
func NewFakeCard() *FakeCard {
	return &FakeCard{files: make(map[string]*fakeFile)}
}

// PutFile seeds path with initial content, as if it already existed on
// the card before mount.
func (f *FakeCard) PutFile(path string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	f.files[path] = &fakeFile{data: cp}
}

// FileContent returns a copy of path's current bytes, for assertions.
func (f *FakeCard) FileContent(path string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	ff, ok := f.files[path]
	if !ok {
		return nil
	}
	cp := make([]byte, len(ff.data))
	copy(cp, ff.data)
	return cp
}

func (f *FakeCard) Mount(partition int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailMount != nil {
		err := f.FailMount
		f.FailMount = nil
		return err
	}
	f.mounted = true
	f.partition = partition
	return nil
}

func (f *FakeCard) Open(dev int, path string) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailOpen != nil {
		err := f.FailOpen
		f.FailOpen = nil
		return Handle{}, err
	}

	if !f.mounted {
		return Handle{}, ErrNotMounted
	}

	ff, ok := f.files[path]
	if !ok {
		ff = &fakeFile{}
		f.files[path] = ff
	}
	ff.cursor = 0

	size := uint32(len(ff.data))
	return Handle{
		SizeLo:  uint16(size),
		SizeHi:  uint16(size >> 16),
		backing: ff,
	}, nil
}

func (f *FakeCard) Seek(h Handle, lo, hi uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ff := h.backing.(*fakeFile)
	ff.cursor = int(uint32(lo) | uint32(hi)<<16)
	return nil
}

func (f *FakeCard) ReadByte(h Handle) (byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailIO != nil {
		err := f.FailIO
		f.FailIO = nil
		return 0, err
	}

	ff := h.backing.(*fakeFile)
	if ff.cursor >= len(ff.data) {
		return 0, ErrEOF
	}
	b := ff.data[ff.cursor]
	ff.cursor++
	return b, nil
}

func (f *FakeCard) WriteByte(h Handle, b byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailIO != nil {
		err := f.FailIO
		f.FailIO = nil
		return err
	}

	ff := h.backing.(*fakeFile)
	for ff.cursor >= len(ff.data) {
		ff.data = append(ff.data, 0)
	}
	ff.data[ff.cursor] = b
	ff.cursor++
	return nil
}

func (f *FakeCard) Flush(h Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailIO != nil {
		err := f.FailIO
		f.FailIO = nil
		return err
	}
	return nil
}
