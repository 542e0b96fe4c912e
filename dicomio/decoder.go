package dicomio

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"golang.org/x/text/encoding"

	"github.com/jcupitt/godicom/dcmerr"
)

// VRMode records whether the active transfer syntax encodes elements with
// an explicit VR mnemonic on the wire or relies on the dictionary.
type VRMode int

const (
	ImplicitVR VRMode = iota
	ExplicitVR
)

type transferSyntaxFrame struct {
	bo   binary.ByteOrder
	mode VRMode
}

// CodingSystemType selects which of a CodingSystem's three component
// decoders applies, used for PN's alphabetic/ideographic/phonetic groups.
type CodingSystemType int

const (
	AlphabeticCodingSystem CodingSystemType = iota
	IdeographicCodingSystem
	PhoneticCodingSystem
)

// CodingSystem bundles the three text decoders SpecificCharacterSet may
// select, one per PN component group. Only Ideographic is used for VRs
// other than PN. A nil decoder slot means "assume 7-bit ASCII / UTF-8
// passthrough" for that slot.
type CodingSystem struct {
	Alphabetic  *encoding.Decoder
	Ideographic *encoding.Decoder
	Phonetic    *encoding.Decoder
}

// Decoder is a bounded, sequential byte-order- and charset-aware reader
// over a container of known length, the data element decode helper the
// stream parser drives one element at a time. Every primitive decode
// returns a *dcmerr.Error instead of accumulating it silently, so callers
// can react to the first failure at the point it happens.
type Decoder struct {
	in   io.Reader
	bo   binary.ByteOrder
	mode VRMode

	limit int64
	pos   int64

	codingSystem CodingSystem

	tsStack    []transferSyntaxFrame
	limitStack []int64
}

// NewDecoder wraps in, treating it as exactly limit bytes of container
// content encoded per bo/mode.
func NewDecoder(in io.Reader, limit int64, bo binary.ByteOrder, mode VRMode) *Decoder {
	return &Decoder{in: in, bo: bo, mode: mode, limit: limit}
}

// NewBytesDecoder wraps an in-memory slice, for File Meta and other
// sections the parser has already buffered in full.
func NewBytesDecoder(data []byte, bo binary.ByteOrder, mode VRMode) *Decoder {
	return NewDecoder(bytes.NewReader(data), int64(len(data)), bo, mode)
}

// TransferSyntax reports the byte order and VR mode currently active.
func (d *Decoder) TransferSyntax() (binary.ByteOrder, VRMode) {
	return d.bo, d.mode
}

// PushTransferSyntax temporarily changes byte order and VR mode, e.g. while
// descending into a nested sequence item that (in principle) could carry a
// different encoding. PopTransferSyntax restores the prior setting.
func (d *Decoder) PushTransferSyntax(bo binary.ByteOrder, mode VRMode) {
	d.tsStack = append(d.tsStack, transferSyntaxFrame{d.bo, d.mode})
	d.bo = bo
	d.mode = mode
}

func (d *Decoder) PopTransferSyntax() {
	n := len(d.tsStack) - 1
	f := d.tsStack[n]
	d.bo, d.mode = f.bo, f.mode
	d.tsStack = d.tsStack[:n]
}

// SetCodingSystem overrides the decoders used by DecodeString and
// DecodeStringWithCodingSystem. The zero CodingSystem decodes as ASCII.
func (d *Decoder) SetCodingSystem(cs CodingSystem) {
	d.codingSystem = cs
}

// PushLimit temporarily shrinks the remaining-bytes horizon to n bytes from
// the current position, for entering a sub-container (an element's value,
// a sequence item) whose length is already known. It fails if n would
// extend past the enclosing container.
func (d *Decoder) PushLimit(n int64) *dcmerr.Error {
	newLimit := d.pos + n
	if newLimit > d.limit {
		return dcmerr.New(dcmerr.PARSE, "dicomio: limit overflow",
			"container of %d bytes requested at offset %d exceeds enclosing limit %d", n, d.pos, d.limit)
	}
	d.limitStack = append(d.limitStack, d.limit)
	d.limit = newLimit
	return nil
}

// PopLimit restores the horizon saved by the matching PushLimit.
func (d *Decoder) PopLimit() {
	n := len(d.limitStack) - 1
	d.limit = d.limitStack[n]
	d.limitStack = d.limitStack[:n]
}

// Pos returns the number of bytes consumed since the decoder was created.
func (d *Decoder) Pos() int64 { return d.pos }

// Len returns the number of bytes remaining before the current limit.
func (d *Decoder) Len() int64 { return d.limit - d.pos }

// Read implements io.Reader, bounded by the current limit.
func (d *Decoder) Read(p []byte) (int, error) {
	remaining := d.Len()
	if remaining == 0 {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := d.in.Read(p)
	d.pos += int64(n)
	return n, err
}

func (d *Decoder) fill(buf []byte) *dcmerr.Error {
	if d.Len() < int64(len(buf)) {
		return dcmerr.New(dcmerr.PARSE, "dicomio: short read",
			"wanted %d bytes at offset %d, only %d remain in container", len(buf), d.pos, d.Len())
	}
	n, err := io.ReadFull(d, buf)
	if err != nil {
		return dcmerr.Wrap(err, dcmerr.IO, "dicomio: read failed", "wanted %d bytes, got %d", len(buf), n)
	}
	return nil
}

func (d *Decoder) DecodeByte() (byte, *dcmerr.Error) {
	var buf [1]byte
	if err := d.fill(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (d *Decoder) DecodeUInt16() (uint16, *dcmerr.Error) {
	var buf [2]byte
	if err := d.fill(buf[:]); err != nil {
		return 0, err
	}
	return d.bo.Uint16(buf[:]), nil
}

func (d *Decoder) DecodeUInt32() (uint32, *dcmerr.Error) {
	var buf [4]byte
	if err := d.fill(buf[:]); err != nil {
		return 0, err
	}
	return d.bo.Uint32(buf[:]), nil
}

func (d *Decoder) DecodeInt16() (int16, *dcmerr.Error) {
	v, err := d.DecodeUInt16()
	return int16(v), err
}

func (d *Decoder) DecodeInt32() (int32, *dcmerr.Error) {
	v, err := d.DecodeUInt32()
	return int32(v), err
}

func (d *Decoder) DecodeUInt64() (uint64, *dcmerr.Error) {
	var buf [8]byte
	if err := d.fill(buf[:]); err != nil {
		return 0, err
	}
	return d.bo.Uint64(buf[:]), nil
}

func (d *Decoder) DecodeInt64() (int64, *dcmerr.Error) {
	v, err := d.DecodeUInt64()
	return int64(v), err
}

func (d *Decoder) DecodeFloat32() (float32, *dcmerr.Error) {
	v, err := d.DecodeUInt32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (d *Decoder) DecodeFloat64() (float64, *dcmerr.Error) {
	var buf [8]byte
	if err := d.fill(buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(d.bo.Uint64(buf[:])), nil
}

func (d *Decoder) DecodeBytes(length int) ([]byte, *dcmerr.Error) {
	buf := make([]byte, length)
	if err := d.fill(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *Decoder) Skip(length int64) *dcmerr.Error {
	if d.Len() < length {
		return dcmerr.New(dcmerr.PARSE, "dicomio: short skip",
			"wanted to skip %d bytes at offset %d, only %d remain", length, d.pos, d.Len())
	}
	const chunk = 1 << 16
	remaining := length
	buf := make([]byte, chunk)
	for remaining > 0 {
		n := int64(chunk)
		if remaining < n {
			n = remaining
		}
		if err := d.fill(buf[:n]); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}

func internalDecodeString(d *Decoder, sd *encoding.Decoder, length int) (string, *dcmerr.Error) {
	raw, err := d.DecodeBytes(length)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", nil
	}
	if sd == nil {
		return string(raw), nil
	}
	decoded, decErr := sd.Bytes(raw)
	if decErr != nil {
		return "", dcmerr.Wrap(decErr, dcmerr.PARSE, "dicomio: charset decode failed", "length %d", length)
	}
	return string(decoded), nil
}

// DecodeString decodes length bytes with the Ideographic slot of the
// active coding system. The stream parser uses it for every string VR,
// PN included; PN component groups are not decoded separately.
func (d *Decoder) DecodeString(length int) (string, *dcmerr.Error) {
	return internalDecodeString(d, d.codingSystem.Ideographic, length)
}

// DecodeStringWithCodingSystem decodes length bytes with a specific PN
// component group's decoder.
func (d *Decoder) DecodeStringWithCodingSystem(cs CodingSystemType, length int) (string, *dcmerr.Error) {
	var sd *encoding.Decoder
	switch cs {
	case AlphabeticCodingSystem:
		sd = d.codingSystem.Alphabetic
	case IdeographicCodingSystem:
		sd = d.codingSystem.Ideographic
	case PhoneticCodingSystem:
		sd = d.codingSystem.Phonetic
	}
	return internalDecodeString(d, sd, length)
}
