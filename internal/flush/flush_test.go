// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package flush

import (
	"errors"
	"testing"

	"github.com/markkrueg/C64MEGA65/internal/imagebuf"
	"github.com/markkrueg/C64MEGA65/internal/sdcard"
	"github.com/markkrueg/C64MEGA65/internal/shellcfg"
	"github.com/markkrueg/C64MEGA65/internal/shellhw"
	"github.com/markkrueg/C64MEGA65/internal/vdrive"
)

func setup(t *testing.T, imageSize int) (*shellhw.SimBus, *sdcard.FakeCard, *vdrive.Registry, *Engine) {
	t.Helper()

	bus := shellhw.NewSimBus()
	card := sdcard.NewFakeCard()
	card.Mount(0)
	card.PutFile("D.D64", make([]byte, imageSize))

	registry := vdrive.NewRegistry(bus)
	if err := registry.Mount(0, card, 0, "D.D64", 1, false); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	engine := NewEngine(bus, card, registry)
	return bus, card, registry, engine
}

func TestStepIsNoopWhenClean(t *testing.T) {
	_, _, _, engine := setup(t, 10)

	st, err := engine.StateOf(0)
	if err != nil || st != Clean {
		t.Fatalf("fresh mount should be Clean, got %v, %v", st, err)
	}

	if err := engine.Step(0); err != nil {
		t.Fatalf("Step on clean drive: %v", err)
	}
}

func TestStepWaitsForAntiThrash(t *testing.T) {
	_, _, registry, engine := setup(t, 10)

	if err := registry.RecordWrite(0); err != nil {
		t.Fatal(err)
	}

	st, err := engine.StateOf(0)
	if err != nil || st != Pending {
		t.Fatalf("after write, expected Pending, got %v, %v", st, err)
	}

	if err := engine.Step(0); err != nil {
		t.Fatalf("Step while pending: %v", err)
	}

	d, _ := registry.Drive(0)
	if d.FlushingActive {
		t.Error("Step must not start flushing before anti-thrash is ready (P4)")
	}
}

func TestBoundedIterationWritesAtMostIterSize(t *testing.T) {
	size := shellcfg.IterSize*2 + 37
	bus, card, registry, engine := setup(t, size)

	// fill the image buffer with a recognizable pattern
	cur := imagebuf.NewCursor(bus, registry.ImageBufferDevice(0))
	pattern := make([]byte, size)
	for i := range pattern {
		pattern[i] = byte(i)
	}
	cur.Write(pattern)

	if err := registry.RecordWrite(0); err != nil {
		t.Fatal(err)
	}
	d, _ := registry.Drive(0)
	d.AntiThrashReady = true

	st, err := engine.StateOf(0)
	if err != nil || st != Starting {
		t.Fatalf("expected Starting once anti-thrash ready, got %v, %v", st, err)
	}

	if err := engine.Step(0); err != nil {
		t.Fatalf("first Step: %v", err)
	}

	got := card.FileContent("D.D64")
	for i := 0; i < shellcfg.IterSize; i++ {
		if got[i] != pattern[i] {
			t.Fatalf("byte %d = %#x, want %#x (within first bounded iteration)", i, got[i], pattern[i])
		}
	}
	for i := shellcfg.IterSize; i < len(got); i++ {
		if got[i] != 0 {
			t.Fatalf("byte %d = %#x, want 0: iteration wrote past its bound (P5)", i, got[i])
		}
	}

	if !d.FlushingActive {
		t.Error("drive should still be flushing_active after a partial iteration")
	}
}

func TestFlushRunsToCompletionAndClearsDirty(t *testing.T) {
	size := shellcfg.IterSize*3 + 1
	bus, card, registry, engine := setup(t, size)

	cur := imagebuf.NewCursor(bus, registry.ImageBufferDevice(0))
	pattern := make([]byte, size)
	for i := range pattern {
		pattern[i] = byte(i + 1)
	}
	cur.Write(pattern)

	registry.RecordWrite(0)
	d, _ := registry.Drive(0)
	d.AntiThrashReady = true

	for i := 0; i < 10 && d.CacheDirty; i++ {
		if err := engine.Step(0); err != nil {
			t.Fatalf("Step iteration %d: %v", i, err)
		}
	}

	if d.CacheDirty {
		t.Fatal("flush did not complete within a reasonable number of iterations")
	}
	if d.FlushingActive {
		t.Error("flushing_active should be cleared once flush completes")
	}

	got := card.FileContent("D.D64")
	if len(got) != size {
		t.Fatalf("flushed file size = %d, want %d", len(got), size)
	}
	for i := range pattern {
		if got[i] != pattern[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, got[i], pattern[i])
		}
	}
}

func TestWriteWhileFlushingRestartsPending(t *testing.T) {
	_, _, registry, engine := setup(t, shellcfg.IterSize*3)

	registry.RecordWrite(0)
	d, _ := registry.Drive(0)
	d.AntiThrashReady = true
	engine.Step(0) // begins flushing

	if !d.FlushingActive {
		t.Fatal("expected flushing_active after first Step")
	}

	if err := registry.RecordWrite(0); err != nil {
		t.Fatal(err)
	}

	if d.FlushingActive {
		t.Error("a write during flushing_active must clear it (P3)")
	}
	if !d.CacheDirty {
		t.Error("cache_dirty must remain true across the restart (P3)")
	}
}

func TestFatalErrorOnWriteFailure(t *testing.T) {
	_, card, registry, engine := setup(t, shellcfg.IterSize)

	registry.RecordWrite(0)
	d, _ := registry.Drive(0)
	d.AntiThrashReady = true

	card.FailIO = errors.New("simulated SD write failure")

	err := engine.Step(0)
	if err == nil {
		t.Fatal("expected a fatal error from a failing write")
	}

	var fe *FatalError
	if !errors.As(err, &fe) {
		t.Fatalf("error %v is not a *FatalError (§7)", err)
	}
	if fe.Drive != 0 {
		t.Errorf("FatalError.Drive = %d, want 0", fe.Drive)
	}
}
