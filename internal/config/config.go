// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package config is the configuration-persistence file: one byte per
// menu item, 0 or 1, written lowest-bit-first, with 0xFF reserved to
// mean "unprogrammed — use defaults" (§6). A keyed digest is appended
// after the bit vector so that a torn or partially-written file is
// caught even in the (unlikely but possible) case where every leftover
// byte happens to decode as a valid 0/1/0xFF value.
package config

import (
	"bytes"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// digestSize is the digest length in bytes, kept well below blake2b's
// 64-byte maximum for a file this small. blake2b only lets the size
// vary at construction, not narrow after the fact, so digestSize is
// also the constructor argument.
const digestSize = 16

// digestKey is a fixed, non-secret key: this digest authenticates
// against torn writes, not against tampering, so a shared constant key
// (rather than none) is used purely to get blake2b's keyed-hash
// construction instead of its unkeyed one.
var digestKey = [16]byte{'C', '6', '4', 'M', 'E', 'G', 'A', '6', '5', 's', 'h', 'e', 'l', 'l', 'c', 'f'}

// Unprogrammed marks a menu-item byte that has never been written;
// readers must treat it the same as a decoded default, not as 0 or 1.
const Unprogrammed byte = 0xFF

// ErrCorrupt is returned when a stored byte is not in {0, 1, Unprogrammed}
// or the trailing digest does not match the bit vector (§6: "any other
// value is a corrupt-file error").
var ErrCorrupt = errors.New("config: corrupt configuration file")

// File is the decoded in-memory form of the configuration file: one
// entry per menu item, defaults already substituted for any
// Unprogrammed byte.
type File struct {
	Bits     []bool
	Defaults []bool
}

func digestOf(raw []byte) ([]byte, error) {
	h, err := blake2b.New(digestSize, digestKey[:])
	if err != nil {
		return nil, err
	}
	h.Write(raw)
	return h.Sum(nil), nil
}

// Encode renders bits as a menu-item byte vector followed by its keyed
// digest, writing lowest-bit-first as §6 requires.
func Encode(bits []bool) ([]byte, error) {
	raw := make([]byte, len(bits))
	for i, b := range bits {
		if b {
			raw[i] = 1
		}
	}

	digest, err := digestOf(raw)
	if err != nil {
		return nil, err
	}

	return append(raw, digest...), nil
}

// Decode parses a stored configuration file previously produced by
// Encode, substituting defaults[i] for any byte equal to Unprogrammed.
// defaults must have the same length as the decoded bit vector.
func Decode(stored []byte, defaults []bool) (File, error) {
	if len(stored) < digestSize {
		return File{}, fmt.Errorf("%w: file shorter than digest", ErrCorrupt)
	}

	raw := stored[:len(stored)-digestSize]
	wantDigest := stored[len(stored)-digestSize:]

	gotDigest, err := digestOf(raw)
	if err != nil {
		return File{}, err
	}
	if !bytes.Equal(gotDigest, wantDigest) {
		return File{}, fmt.Errorf("%w: digest mismatch", ErrCorrupt)
	}

	if len(raw) != len(defaults) {
		return File{}, fmt.Errorf("%w: expected %d menu items, got %d", ErrCorrupt, len(defaults), len(raw))
	}

	bits := make([]bool, len(raw))
	for i, b := range raw {
		switch b {
		case 0:
			bits[i] = false
		case 1:
			bits[i] = true
		case Unprogrammed:
			bits[i] = defaults[i]
		default:
			return File{}, fmt.Errorf("%w: item %d has value %#x", ErrCorrupt, i, b)
		}
	}

	return File{Bits: bits, Defaults: defaults}, nil
}
