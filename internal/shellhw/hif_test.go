// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package shellhw

import "testing"

func TestDeadlineElapsed(t *testing.T) {
	tests := []struct {
		name  string
		now   uint32
		delta uint32
		check uint32
		want  bool
	}{
		{"before", 0, 100, 50, false},
		{"exact", 0, 100, 100, true},
		{"after", 0, 100, 200, true},
		{"wraps around uint32 max", 0xFFFFFFF0, 100, 0x00000060, true},
		{"wraps around uint32 max, not yet", 0xFFFFFFF0, 1000, 0x00000020, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDeadline(tc.now, tc.delta)
			if got := d.Elapsed(tc.check); got != tc.want {
				t.Errorf("Elapsed(%#x) = %v, want %v", tc.check, got, tc.want)
			}
		})
	}
}

func TestWithDeviceSelectsOnce(t *testing.T) {
	b := NewSimBus()

	WithDevice(b, Device(3), Window(7), func(bus Bus) {
		bus.WriteByte(0, 0x42)
	})

	b.Select(Device(3), Window(7))
	if got := b.ReadByte(0); got != 0x42 {
		t.Fatalf("ReadByte = %#x, want 0x42", got)
	}
}

func TestSimBusWordOrder(t *testing.T) {
	b := NewSimBus()
	b.Select(Device(1), Window(0))
	b.WriteWord(10, 0xBEEF)

	if got := b.ReadByte(10); got != 0xEF {
		t.Errorf("low byte = %#x, want 0xEF", got)
	}
	if got := b.ReadByte(11); got != 0xBE {
		t.Errorf("high byte = %#x, want 0xBE", got)
	}
	if got := b.ReadWord(10); got != 0xBEEF {
		t.Errorf("ReadWord = %#x, want 0xBEEF", got)
	}
}
