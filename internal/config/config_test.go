// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	bits := []bool{true, false, true, true, false}

	raw, err := Encode(bits)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	defaults := make([]bool, len(bits))
	f, err := Decode(raw, defaults)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	for i, want := range bits {
		if f.Bits[i] != want {
			t.Errorf("bit %d = %v, want %v", i, f.Bits[i], want)
		}
	}
}

func TestUnprogrammedByteUsesDefault(t *testing.T) {
	bits := []bool{true, false}
	raw, err := Encode(bits)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// set byte 1 to "unprogrammed" after encoding, then recompute the
	// digest over the modified bit vector so the digest still matches.
	raw[1] = Unprogrammed

	digestOnly, err := digestOf(raw[:len(raw)-digestSize])
	if err != nil {
		t.Fatal(err)
	}
	copy(raw[len(raw)-digestSize:], digestOnly)

	defaults := []bool{false, true}
	f, err := Decode(raw, defaults)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if f.Bits[0] != true {
		t.Errorf("bit 0 = %v, want true (stored)", f.Bits[0])
	}
	if f.Bits[1] != true {
		t.Errorf("bit 1 = %v, want true (default substituted for unprogrammed)", f.Bits[1])
	}
}

func TestCorruptByteIsRejected(t *testing.T) {
	bits := []bool{true, false}
	raw, err := Encode(bits)
	if err != nil {
		t.Fatal(err)
	}

	raw[0] = 7 // not 0, 1 or Unprogrammed
	digestOnly, err := digestOf(raw[:len(raw)-digestSize])
	if err != nil {
		t.Fatal(err)
	}
	copy(raw[len(raw)-digestSize:], digestOnly)

	if _, err := Decode(raw, []bool{false, false}); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Decode with byte=7 error = %v, want ErrCorrupt", err)
	}
}

func TestTamperedBitVectorIsRejected(t *testing.T) {
	bits := []bool{true, false, true}
	raw, err := Encode(bits)
	if err != nil {
		t.Fatal(err)
	}

	raw[0] = 0 // tamper the bit vector without updating the digest

	if _, err := Decode(raw, []bool{false, false, false}); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Decode with tampered bit vector error = %v, want ErrCorrupt", err)
	}
}

func TestTruncatedFileIsRejected(t *testing.T) {
	if _, err := Decode([]byte{1, 2, 3}, []bool{false}); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Decode on a too-short file error = %v, want ErrCorrupt", err)
	}
}

func TestMismatchedMenuItemCountIsRejected(t *testing.T) {
	raw, err := Encode([]bool{true, false})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Decode(raw, []bool{false, false, false}); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Decode with mismatched defaults length error = %v, want ErrCorrupt", err)
	}
}
