// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package vdrive

import (
	"testing"

	"github.com/markkrueg/C64MEGA65/internal/sdcard"
	"github.com/markkrueg/C64MEGA65/internal/shellhw"
)

func newTestRegistry() (*Registry, *shellhw.SimBus, *sdcard.FakeCard) {
	bus := shellhw.NewSimBus()
	card := sdcard.NewFakeCard()
	card.Mount(0)
	return NewRegistry(bus), bus, card
}

func TestMountPublishesStrobeAndClearsAuxiliaries(t *testing.T) {
	r, bus, card := newTestRegistry()
	card.PutFile("DRIVE0.D64", make([]byte, 174848))

	if err := r.Mount(0, card, 0, "DRIVE0.D64", 1, false); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	mounted, err := r.Mounted(0)
	if err != nil || !mounted {
		t.Fatalf("Mounted(0) = %v, %v, want true, nil", mounted, err)
	}

	// The strobe sequence clears size/type/read-only back to zero after
	// pulsing mount, per strobeMount's documented contract (§6).
	bus.Select(driveRegsDevice(0), mountWindow)
	if got := bus.ReadWord(offSizeLo); got != 0 {
		t.Errorf("size_lo after strobe = %d, want 0", got)
	}
	if got := bus.ReadByte(offImageType); got != 0 {
		t.Errorf("image_type after strobe = %d, want 0", got)
	}
}

func TestMountSameImageIsIdempotent(t *testing.T) {
	r, _, card := newTestRegistry()
	card.PutFile("DRIVE0.D64", make([]byte, 100))

	if err := r.Mount(0, card, 0, "DRIVE0.D64", 1, false); err != nil {
		t.Fatalf("first Mount: %v", err)
	}
	if err := r.RecordWrite(0); err != nil {
		t.Fatalf("RecordWrite: %v", err)
	}

	if err := r.Mount(0, card, 0, "DRIVE0.D64", 1, false); err != nil {
		t.Fatalf("second Mount: %v", err)
	}

	d, err := r.Drive(0)
	if err != nil {
		t.Fatalf("Drive(0): %v", err)
	}
	if !d.CacheDirty {
		t.Error("re-mounting the same image must not clear cache_dirty")
	}
}

func TestMountDifferentImageUnmountsFirst(t *testing.T) {
	r, _, card := newTestRegistry()
	card.PutFile("A.D64", make([]byte, 10))
	card.PutFile("B.D64", make([]byte, 20))

	if err := r.Mount(0, card, 0, "A.D64", 1, false); err != nil {
		t.Fatal(err)
	}
	if err := r.Mount(0, card, 0, "B.D64", 1, false); err != nil {
		t.Fatal(err)
	}

	d, _ := r.Drive(0)
	if d.CacheDirty {
		t.Error("mounting a different image must not carry over cache_dirty")
	}
}

func TestUnmountClearsState(t *testing.T) {
	r, bus, card := newTestRegistry()
	card.PutFile("A.D64", make([]byte, 10))
	r.Mount(0, card, 0, "A.D64", 1, false)
	r.RecordWrite(0)

	if err := r.Unmount(0, card); err != nil {
		t.Fatalf("Unmount: %v", err)
	}

	mounted, _ := r.Mounted(0)
	if mounted {
		t.Error("drive still mounted after Unmount")
	}

	bus.Select(driveRegsDevice(0), mountWindow)
	if got := bus.ReadWord(offSizeLo); got != 0 {
		t.Errorf("size_lo after unmount strobe = %d, want 0", got)
	}
}

func TestRecordWriteSetsI4(t *testing.T) {
	r, _, card := newTestRegistry()
	card.PutFile("A.D64", make([]byte, 10))
	r.Mount(0, card, 0, "A.D64", 1, false)

	d, _ := r.Drive(0)
	d.FlushingActive = true

	if err := r.RecordWrite(0); err != nil {
		t.Fatal(err)
	}

	if !d.CacheDirty {
		t.Error("RecordWrite must set cache_dirty")
	}
	if d.FlushingActive {
		t.Error("RecordWrite must clear flushing_active (P3)")
	}
}

func TestCheckInvariants(t *testing.T) {
	r, _, _ := newTestRegistry()

	if err := r.CheckInvariants(); err != nil {
		t.Fatalf("fresh registry should satisfy invariants: %v", err)
	}

	d, _ := r.Drive(0)
	d.CacheDirty = true // I2 violation: dirty without mounted
	if err := r.CheckInvariants(); err == nil {
		t.Error("expected I2 violation to be detected")
	}
	d.CacheDirty = false

	d.Mounted = true
	d.CacheDirty = true
	d.FlushingActive = false
	if err := r.CheckInvariants(); err != nil {
		t.Errorf("flushing_active=false, cache_dirty=true should be valid (Pending): %v", err)
	}
}

func TestSampleAntiThrash(t *testing.T) {
	r, bus, _ := newTestRegistry()

	bus.Select(driveRegsDevice(1), 0)
	bus.WriteByte(offAntiThrash, 1)

	if err := r.SampleAntiThrash(1); err != nil {
		t.Fatal(err)
	}

	d, _ := r.Drive(1)
	if !d.AntiThrashReady {
		t.Error("SampleAntiThrash must pick up the hardware-exposed ready bit")
	}
}

func TestNoSuchDrive(t *testing.T) {
	r, _, _ := newTestRegistry()

	if _, err := r.Drive(99); err == nil {
		t.Error("expected ErrNoSuchDrive for out-of-range index")
	}
	if _, err := r.Mounted(-1); err == nil {
		t.Error("expected ErrNoSuchDrive for negative index")
	}
}
