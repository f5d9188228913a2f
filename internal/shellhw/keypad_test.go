// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package shellhw

import "testing"

func TestKeyScannerDebounce(t *testing.T) {
	b := NewSimBus()
	k := NewKeyScanner(b, 1000)

	if _, edge := k.Scan(); edge {
		t.Fatal("unexpected edge on first scan")
	}

	b.SetKeyRow(2, 0x01)

	if _, edge := k.Scan(); edge {
		t.Fatal("edge reported before debounce elapsed")
	}

	b.Advance(500)
	if _, edge := k.Scan(); edge {
		t.Fatal("edge reported before debounce fully elapsed")
	}

	b.Advance(600)
	rows, edge := k.Scan()
	if !edge {
		t.Fatal("expected edge after debounce elapsed")
	}
	if rows[2] != 0x01 {
		t.Errorf("rows[2] = %#x, want 0x01", rows[2])
	}
}

func TestKeyScannerRestartsOnFurtherChange(t *testing.T) {
	b := NewSimBus()
	k := NewKeyScanner(b, 1000)

	k.Scan()
	b.SetKeyRow(0, 0x01)
	k.Scan()

	b.Advance(500)
	b.SetKeyRow(0, 0x03)
	if _, edge := k.Scan(); edge {
		t.Fatal("edge reported immediately after a further change")
	}

	b.Advance(1100)
	if _, edge := k.Scan(); !edge {
		t.Fatal("expected edge once debounce restarted and elapsed")
	}
}
