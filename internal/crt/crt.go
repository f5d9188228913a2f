// C64MEGA65 Shell firmware
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package crt is the CRT Loader: it parses a CRT cartridge container
// streamed into external DRAM, publishes the decoded bank table to the
// emulated core, and services on-demand bank copy-in to the two small
// on-chip BRAMs when the core signals a bank switch (§4.6).
package crt

import (
	"fmt"

	"github.com/markkrueg/C64MEGA65/internal/imagebuf"
	"github.com/markkrueg/C64MEGA65/internal/shellcfg"
	"github.com/markkrueg/C64MEGA65/internal/shellhw"
)

// Status mirrors §3's CRT parse state.status / the cartridge status
// register in §6.
type Status int

const (
	Idle Status = iota
	Parsing
	Ready
	Error
)

// ErrorCode enumerates §3's error_code values.
type ErrorCode int

const (
	NoError ErrorCode = iota
	ErrLengthTooSmall
	ErrMissingCRTHeader
	ErrMissingChipHeader
)

func (c ErrorCode) String() string {
	switch c {
	case NoError:
		return "none"
	case ErrLengthTooSmall:
		return "length_too_small"
	case ErrMissingCRTHeader:
		return "missing_crt_header"
	case ErrMissingChipHeader:
		return "missing_chip_header"
	default:
		return "unknown"
	}
}

// BankEntry is one published row of the bank table (§3).
type BankEntry struct {
	LoadAddress uint16
	BankSize    uint16
	BankNumber  uint16
	RAMOffset   uint32
}

// reader is the internal state-machine position, distinct from the
// publicly reported Status: idle/parsing collapse the several
// sub-states §4.6 lists (header_signature, header_fields, chip_header)
// that are only meaningful mid-parse.
type reader int

const (
	rIdle reader = iota
	rHeaderSignature
	rHeaderFields
	rChipHeader
	rReady
	rReadLo
	rReadHi
)

// Loader holds the one CRT parse-state instance (§3).
type Loader struct {
	bus shellhw.Bus
	dev shellhw.Device // device id for the external DRAM region

	state reader

	baseRAMAddress uint32
	cursor         uint32 // current read position, relative to baseRAMAddress
	fileLength     uint32

	// firstPayloadAddr is §3's actual base_ram_address: the absolute DRAM
	// address where the first CHIP packet's payload begins, established
	// once that packet's header has been parsed. It is distinct from
	// baseRAMAddress above, which is where the file itself starts in
	// DRAM — the two only coincide when the file header is zero-length.
	firstPayloadAddr uint32

	status    Status
	errorCode ErrorCode
	errorAddr uint32

	cartID uint16
	exrom  byte
	game   byte

	fileHeaderLen uint32

	banks []BankEntry

	loActiveBank, hiActiveBank   uint16
	loPendingLoad, hiPendingLoad bool

	loReq, hiReq         uint16
	haveLoReq, haveHiReq bool

	loBram, hiBram shellhw.Device

	streamRemaining int
}

// bankWordStride is the per-bank stride, in 16-bit words, of the
// normalized bank layout the streaming step addresses banks with (§4.6:
// "stream 8 KiB from DRAM offset (0x1008 × bank_req + base)"). In bytes
// this is 0x2010 = 8192 (one bank) + 16 (one CHIP header) — the DRAM
// region's bank slots are laid out contiguously at that stride, and the
// window/offset addressing this firmware uses throughout is word-based
// (§4.1), which is why the constant is expressed in words rather than
// bytes.
const bankWordStride = 0x1008

// NewLoader returns a Loader reading CRT data from dramDev, the
// selector-bus device id mapped to the HyperRAM/DRAM region the file
// streams into, and writing active banks into loBramDev/hiBramDev, the
// two small on-chip BRAM devices the emulated core executes out of.
func NewLoader(bus shellhw.Bus, dramDev, loBramDev, hiBramDev shellhw.Device) *Loader {
	return &Loader{bus: bus, dev: dramDev, loBram: loBramDev, hiBram: hiBramDev, status: Idle}
}

// Status returns the loader's publicly reported state.
func (l *Loader) Status() Status { return l.status }

// ErrorCode returns the latched error, valid only when Status is Error.
func (l *Loader) ErrorCode() ErrorCode { return l.errorCode }

// ErrorAddress returns the byte offset, relative to baseRAMAddress, at
// which parsing failed: for a signature or CHIP-magic mismatch, the
// first byte that does not match.
func (l *Loader) ErrorAddress() uint32 { return l.errorAddr }

// CartID, Exrom and Game are the fields published to the emulated core
// from the CRT's file-header (§3).
func (l *Loader) CartID() uint16 { return l.cartID }
func (l *Loader) Exrom() byte    { return l.exrom }
func (l *Loader) Game() byte     { return l.game }

// Banks returns the bank table published so far, in file order (P7).
func (l *Loader) Banks() []BankEntry {
	out := make([]BankEntry, len(l.banks))
	copy(out, l.banks)
	return out
}

// LoActiveBank and HiActiveBank are the bank numbers currently resident
// in the lo/hi BRAM.
func (l *Loader) LoActiveBank() uint16 { return l.loActiveBank }
func (l *Loader) HiActiveBank() uint16 { return l.hiActiveBank }

// Reset returns the loader to idle (§3: "ready->idle on reset").
func (l *Loader) Reset() {
	*l = Loader{bus: l.bus, dev: l.dev, loBram: l.loBram, hiBram: l.hiBram, status: Idle}
}

func (l *Loader) cur() imagebuf.Cursor {
	return imagebuf.At(l.bus, l.dev, l.baseRAMAddress+l.cursor)
}

func (l *Loader) readBytes(n int) []byte {
	c := l.cur()
	buf := make([]byte, n)
	c.Read(buf)
	l.cursor += uint32(n)
	return buf
}

func (l *Loader) fail(code ErrorCode) error {
	l.status = Error
	l.errorCode = code
	l.errorAddr = l.cursor
	return fmt.Errorf("crt: %s at offset %#x", code, l.cursor)
}

// Start begins parsing a CRT file whose first byte is at baseAddress
// in DRAM and whose total byte length is length. It returns an error
// only for the length_too_small condition (§4.6 state 1); structural
// errors are only discovered as parsing advances via Advance.
func (l *Loader) Start(baseAddress uint32, length uint32) error {
	l.baseRAMAddress = baseAddress
	l.fileLength = length
	l.cursor = 0
	l.banks = nil
	l.status = Parsing

	if length < shellcfg.CRTHeaderMinLength {
		return l.fail(ErrLengthTooSmall)
	}

	l.state = rHeaderSignature
	return nil
}

// Advance runs the parser until it reaches ready or error. Each CHIP
// packet publishes one BankEntry as it is discovered (so a caller that
// wants a live view of Banks() mid-parse can poll between Advance
// calls, though Advance itself runs to completion in one call since
// parsing a header is not a hardware-paced operation).
func (l *Loader) Advance() error {
	for {
		switch l.state {
		case rHeaderSignature:
			sig := l.readBytes(16)
			for i, want := range shellcfg.CRTSignature {
				if sig[i] != want {
					l.cursor -= uint32(len(sig) - i)
					return l.fail(ErrMissingCRTHeader)
				}
			}
			l.state = rHeaderFields

		case rHeaderFields:
			f := l.readBytes(16)
			l.fileHeaderLen = imagebuf.BE32(f[0], f[1], f[2], f[3])
			cartType := imagebuf.BE16(f[4], f[5])
			l.cartID = cartType
			l.exrom = f[6]
			l.game = f[7]

			// advance cursor to the end of the file header, then read
			// the first CHIP packet's header.
			l.cursor = l.fileHeaderLen
			l.state = rChipHeader

		case rChipHeader:
			if err := l.parseChipHeader(); err != nil {
				return err
			}

		case rReady:
			if len(l.banks) > 0 && !l.haveLoReq {
				// "the first LO bank is forced after parse completion
				// so the machine has something to execute from" (§4.6
				// state 5).
				l.loReq = l.banks[0].BankNumber
				l.haveLoReq = true
				l.loPendingLoad = true
			}
			l.status = Ready
			return nil

		default:
			return nil
		}
	}
}

func (l *Loader) parseChipHeader() error {
	magic := l.readBytes(4)
	for i, want := range shellcfg.ChipMagic {
		if magic[i] != want {
			l.cursor -= uint32(len(magic) - i)
			return l.fail(ErrMissingChipHeader)
		}
	}

	// The 16-byte CHIP header is the 4-byte "CHIP" magic followed by:
	// total packet length (4, unused here — the loop below recomputes
	// it from image_size), chip type (2, unused), bank number (2),
	// load address (2), image size (2).
	fields := l.readBytes(12)
	bankNumber := imagebuf.BE16(fields[6], fields[7])
	loadAddress := imagebuf.BE16(fields[8], fields[9])
	imageSize := imagebuf.BE16(fields[10], fields[11])

	ramOffset := l.cursor // payload immediately follows this header

	if len(l.banks) == 0 {
		// §3: "base_ram_address ... established once, after the file
		// header" — that's the first CHIP packet's payload, not the
		// file's own start in DRAM.
		l.firstPayloadAddr = l.baseRAMAddress + ramOffset
	}

	l.banks = append(l.banks, BankEntry{
		LoadAddress: loadAddress,
		BankSize:    imageSize,
		BankNumber:  bankNumber,
		RAMOffset:   ramOffset,
	})

	// §4.6 state 4: "if the file still contains at least (image_size +
	// 0x10) bytes beyond the current read cursor, advance by image_size
	// and re-enter chip_header; otherwise transition to ready."
	if l.fileLength-l.cursor >= uint32(imageSize)+shellcfg.ChipHeaderSize {
		l.cursor += uint32(imageSize)
		l.state = rChipHeader
		return nil
	}

	l.state = rReady
	return nil
}

func (l *Loader) bankByteOffset(bank uint16) uint32 {
	return l.firstPayloadAddr + uint32(bank)*bankWordStride*2
}

// RequestBank edge-detects a bank-change request from the emulated core
// (§4.6 state 5: "on change, queue a load") and latches it. Calling it
// again with the same bank number while a load is already pending or
// in flight for that half is a no-op; calling it mid-stream with a new
// bank number latches the new request, which Service picks up as soon
// as it returns to ready ("new bank-change requests are latched and
// serviced on return to ready").
func (l *Loader) RequestBank(lo bool, bank uint16) {
	if lo {
		if l.haveLoReq && l.loReq == bank && !l.loPendingLoad {
			return
		}
		l.loReq = bank
		l.haveLoReq = true
		l.loPendingLoad = true
		return
	}

	if l.haveHiReq && l.hiReq == bank && !l.hiPendingLoad {
		return
	}
	l.hiReq = bank
	l.haveHiReq = true
	l.hiPendingLoad = true
}

// Service advances bank streaming by at most shellcfg.StreamBurst bytes.
// It is called once per main-loop pass as part of the CRT housekeeping
// step (§2's control flow: "RD -> key scan -> help-menu check -> CL
// housekeeping").
func (l *Loader) Service() {
	switch l.state {
	case rReady:
		switch {
		case l.loPendingLoad:
			l.beginStream(true)
		case l.hiPendingLoad:
			l.beginStream(false)
		}

	case rReadLo:
		l.continueStream(true)

	case rReadHi:
		l.continueStream(false)
	}
}

func (l *Loader) beginStream(lo bool) {
	if lo {
		l.state = rReadLo
		l.loActiveBank = l.loReq
		l.loPendingLoad = false
	} else {
		l.state = rReadHi
		l.hiActiveBank = l.hiReq
		l.hiPendingLoad = false
	}
	l.streamRemaining = shellcfg.BankSize
}

// continueStream copies up to shellcfg.StreamBurst bytes from the
// active bank's DRAM slot into the corresponding BRAM, resuming from
// wherever the previous burst left off.
func (l *Loader) continueStream(lo bool) {
	bank := l.loActiveBank
	dstDev := l.loBram
	if !lo {
		bank = l.hiActiveBank
		dstDev = l.hiBram
	}

	burst := l.streamRemaining
	if burst > shellcfg.StreamBurst {
		burst = shellcfg.StreamBurst
	}

	done := shellcfg.BankSize - l.streamRemaining
	src := imagebuf.At(l.bus, l.dev, l.bankByteOffset(bank)+uint32(done))
	dst := imagebuf.At(l.bus, dstDev, uint32(done))

	buf := make([]byte, burst)
	src.Read(buf)
	dst.Write(buf)

	l.streamRemaining -= burst

	if l.streamRemaining == 0 {
		l.state = rReady
	}
}
