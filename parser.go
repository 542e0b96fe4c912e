package dicom

// Parser implements the stream parser (C5): given an IO source positioned
// at a known offset and an encoding context, it produces a DataSet by
// repeatedly decoding one Element at a time until end-of-container or a
// matching delimiter. Grounded on the recursive descent in the teacher's
// (now-superseded) element.go ReadElement, generalized to return a
// *dcmerr.Error at every fallible step instead of a panic/recover pair,
// and to stop at PixelData rather than eagerly materializing it.

import (
	"encoding/binary"

	"github.com/jcupitt/godicom/dcmerr"
	"github.com/jcupitt/godicom/dicomio"
)

// maxSequenceDepth bounds recursive Sequence parsing; exceeding it is a
// PARSE error rather than a stack overflow.
const maxSequenceDepth = 128

const undefinedLength = 0xFFFFFFFF

// PixelDataInfo records where the top-level parser stopped upon reaching
// PixelData, per the "stop and record" behavior spec.md requires: the
// parser never materializes pixel bytes itself, leaving that to the
// filehandle's frame index.
type PixelDataInfo struct {
	// Offset is the Decoder position (bytes consumed since the Decoder was
	// created) of the first byte of the value, i.e. immediately after the
	// element header. The filehandle adds the preamble and magic length to
	// turn it into an absolute offset.
	Offset int64
	VR     VR
	// LengthField is the raw 32-bit length field value, which may be
	// undefinedLength for encapsulated pixel data.
	LengthField  uint32
	Encapsulated bool
}

// Parser decodes one Element at a time from a Decoder under a fixed
// encoding context (SQ never changes transfer syntax mid-stream).
type Parser struct {
	dec   *dicomio.Decoder
	mode  dicomio.VRMode
	bo    binary.ByteOrder
	depth int

	// tagPath records the stack of containing tags for error messages.
	tagPath []Tag

	// stopAtPixelData, when true, makes the top-level ParseDataSet call
	// return as soon as it sees (7FE0,0010) instead of decoding its value.
	stopAtPixelData bool
	pixelData       *PixelDataInfo
}

// NewParser creates a Parser reading from dec under the given VR mode and
// byte order. stopAtPixelData should be true for the main Data Set (the
// filehandle's read_metadata stage) and false for File Meta. Sequence items
// are parsed by the same Parser and share its setting.
func NewParser(dec *dicomio.Decoder, mode dicomio.VRMode, bo binary.ByteOrder, stopAtPixelData bool) *Parser {
	return &Parser{dec: dec, mode: mode, bo: bo, stopAtPixelData: stopAtPixelData}
}

// PixelData returns the position recorded when the parser stopped at
// PixelData, or nil if it never encountered one (or stopAtPixelData was
// false).
func (p *Parser) PixelData() *PixelDataInfo { return p.pixelData }

func (p *Parser) currentOffset() int64 {
	return p.dec.Pos()
}

func (p *Parser) errAt(code dcmerr.Code, summary, format string, args ...interface{}) *dcmerr.Error {
	e := dcmerr.New(code, summary, format, args...).AtOffset(p.currentOffset())
	for i := len(p.tagPath) - 1; i >= 0; i-- {
		e = e.WithTag(p.tagPath[i])
	}
	return e
}

func (p *Parser) wrapAt(cause error, code dcmerr.Code, summary, format string, args ...interface{}) *dcmerr.Error {
	e := dcmerr.Wrap(cause, code, summary, format, args...).AtOffset(p.currentOffset())
	for i := len(p.tagPath) - 1; i >= 0; i-- {
		e = e.WithTag(p.tagPath[i])
	}
	return e
}

// ParseDataSet decodes elements until the Decoder's current container is
// exhausted, or, with stopAtPixelData set, until PixelData is recorded. A
// delimiter tag met inside the container is a PARSE error; undefined-length
// items are parsed by ParseUndefinedLengthDataSet instead.
func (p *Parser) ParseDataSet(into *DataSet) *dcmerr.Error {
	for p.dec.Len() > 0 {
		elem, delimiterTag, delimiter, err := p.readElement()
		if err != nil {
			return err
		}
		if delimiter {
			return p.errAt(dcmerr.PARSE, "dicom: unexpected delimiter", "%s inside an explicit-length container", delimiterTag)
		}
		if elem == nil {
			// PixelData was recorded; stop consuming the top-level stream.
			return nil
		}
		if err := into.Insert(elem); err != nil {
			return err
		}
		if elem.Tag == TagSpecificCharacterSet {
			if err := p.applySpecificCharacterSet(elem); err != nil {
				return err
			}
		}
	}
	return nil
}

// applySpecificCharacterSet reconfigures the decoder's string decoding per
// a just-parsed (0008,0005) element, so that subsequent string-VR elements
// in the same Data Set decode with the announced character set. DICOM
// conventionally places SpecificCharacterSet ahead of the text elements it
// governs; a file that violates that ordering decodes its earlier text
// elements as the default (ASCII) coding system.
func (p *Parser) applySpecificCharacterSet(elem *Element) *dcmerr.Error {
	values, err := elem.GetStrings()
	if err != nil {
		return err
	}
	cs, cerr := CodingSystemFromSpecificCharacterSet(values)
	if cerr != nil {
		return cerr
	}
	p.dec.SetCodingSystem(cs)
	return nil
}

// ParseUndefinedLengthDataSet decodes elements until an Item Delimitation
// tag terminates the container, used for an undefined-length sequence
// item's nested Data Set.
func (p *Parser) ParseUndefinedLengthDataSet(into *DataSet) *dcmerr.Error {
	for {
		elem, delimiterTag, delimiter, err := p.readElement()
		if err != nil {
			return err
		}
		if delimiter {
			if delimiterTag == TagItemDelimitationItem {
				return nil
			}
			return p.errAt(dcmerr.PARSE, "dicom: bad delimiter pairing", "expected ItemDelimitationItem, got %s", delimiterTag)
		}
		if elem == nil {
			return p.errAt(dcmerr.PARSE, "dicom: unexpected pixel data", "PixelData inside a nested container")
		}
		if err := into.Insert(elem); err != nil {
			return err
		}
	}
}

// readElement decodes one element. It returns (nil, tag, true, nil) if it
// consumed a delimiter tag; it returns (nil, Tag{}, false, nil) if it
// recorded PixelData and stopped (only possible at the top level with
// stopAtPixelData set).
func (p *Parser) readElement() (*Element, Tag, bool, *dcmerr.Error) {
	startOffset := p.currentOffset()

	group, err := p.dec.DecodeUInt16()
	if err != nil {
		return nil, Tag{}, false, p.wrapAt(err, dcmerr.PARSE, "dicom: short read", "reading tag group")
	}
	element, err := p.dec.DecodeUInt16()
	if err != nil {
		return nil, Tag{}, false, p.wrapAt(err, dcmerr.PARSE, "dicom: short read", "reading tag element")
	}
	tag := Tag{Group: group, Element: element}

	if tag == TagItemDelimitationItem || tag == TagSequenceDelimitationItem {
		length, err := p.dec.DecodeUInt32()
		if err != nil {
			return nil, Tag{}, false, p.wrapAt(err, dcmerr.PARSE, "dicom: short read", "reading delimiter length")
		}
		if length != 0 {
			return nil, Tag{}, false, p.errAt(dcmerr.PARSE, "dicom: bad delimiter", "%s has non-zero length %d", tag, length)
		}
		return nil, tag, true, nil
	}

	var vr VR
	var lengthField uint32

	if p.mode == dicomio.ImplicitVR {
		vr = DefaultVR(tag)
		l, err := p.dec.DecodeUInt32()
		if err != nil {
			return nil, Tag{}, false, p.wrapAt(err, dcmerr.PARSE, "dicom: short read", "reading implicit-VR length for %s", tag)
		}
		lengthField = l
	} else {
		mnemonic, err := p.dec.DecodeString(2)
		if err != nil {
			return nil, Tag{}, false, p.wrapAt(err, dcmerr.PARSE, "dicom: short read", "reading VR for %s", tag)
		}
		vr = ParseVR(mnemonic)
		if vr == ERROR {
			return nil, Tag{}, false, p.errAt(dcmerr.PARSE, "dicom: unknown VR", "tag %s has unrecognized explicit VR %q", tag, mnemonic)
		}
		if vr.HasLongExplicitLength() {
			if _, err := p.dec.DecodeUInt16(); err != nil { // reserved
				return nil, Tag{}, false, p.wrapAt(err, dcmerr.PARSE, "dicom: short read", "reading reserved bytes for %s", tag)
			}
			l, err := p.dec.DecodeUInt32()
			if err != nil {
				return nil, Tag{}, false, p.wrapAt(err, dcmerr.PARSE, "dicom: short read", "reading long length for %s", tag)
			}
			lengthField = l
		} else {
			l, err := p.dec.DecodeUInt16()
			if err != nil {
				return nil, Tag{}, false, p.wrapAt(err, dcmerr.PARSE, "dicom: short read", "reading length for %s", tag)
			}
			lengthField = uint32(l)
		}
	}

	if lengthField == undefinedLength && !vr.AllowsUndefinedLength() && tag != TagPixelData {
		return nil, Tag{}, false, p.errAt(dcmerr.PARSE, "dicom: undefined length not permitted",
			"VR %s for tag %s may not have undefined length", vr, tag)
	}

	if tag == TagPixelData && p.stopAtPixelData {
		p.pixelData = &PixelDataInfo{
			Offset:       p.currentOffset(),
			VR:           vr,
			LengthField:  lengthField,
			Encapsulated: lengthField == undefinedLength,
		}
		// The caller (ParseDataSet) stops immediately; we deliberately do
		// not consume the value here, leaving the stream positioned at
		// the start of PixelData's value for the filehandle to reopen.
		_ = startOffset
		return nil, Tag{}, false, nil
	}

	if vr == SQ {
		seq, err := p.readSequence(tag, lengthField)
		if err != nil {
			return nil, Tag{}, false, err
		}
		e := NewElement(tag, vr)
		if serr := e.SetSequence(seq); serr != nil {
			return nil, Tag{}, false, serr
		}
		return e, Tag{}, false, nil
	}

	if lengthField == undefinedLength {
		// Only SQ, OB, OW, UN, UT may reach here with undefined length;
		// OB/OW/UN/UT undefined length outside of PixelData is the
		// encapsulated-item convention, which readSequence-style framing
		// also covers (treated as an implicit sequence of Items).
		seq, err := p.readSequence(tag, lengthField)
		if err != nil {
			return nil, Tag{}, false, err
		}
		e := NewElement(tag, SQ)
		if serr := e.SetSequence(seq); serr != nil {
			return nil, Tag{}, false, serr
		}
		return e, Tag{}, false, nil
	}

	value, err := p.readPrimitiveValue(tag, vr, int(lengthField))
	if err != nil {
		return nil, Tag{}, false, err
	}
	e := NewElement(tag, vr)
	e.setValue(value)
	return e, Tag{}, false, nil
}

func (p *Parser) readSequence(tag Tag, lengthField uint32) (*Sequence, *dcmerr.Error) {
	if p.depth >= maxSequenceDepth {
		return nil, p.errAt(dcmerr.PARSE, "dicom: recursion overflow", "sequence nesting exceeds %d at %s", maxSequenceDepth, tag)
	}
	p.depth++
	p.tagPath = append(p.tagPath, tag)
	defer func() {
		p.depth--
		p.tagPath = p.tagPath[:len(p.tagPath)-1]
	}()

	seq := NewSequence()

	readItems := func(limit int64) *dcmerr.Error {
		for {
			if limit >= 0 && p.dec.Len() <= 0 {
				return nil
			}
			itemTag, _, lengthField, delimiter, err := p.readItemHeader()
			if err != nil {
				return err
			}
			if delimiter {
				if itemTag == TagSequenceDelimitationItem {
					return nil
				}
				return p.errAt(dcmerr.PARSE, "dicom: bad delimiter pairing", "expected SequenceDelimitationItem, got %s", itemTag)
			}
			if itemTag != TagItem {
				return p.errAt(dcmerr.PARSE, "dicom: bad item framing", "expected Item tag, got %s", itemTag)
			}
			ds := NewDataSet()
			if lengthField == undefinedLength {
				if err := p.ParseUndefinedLengthDataSet(ds); err != nil {
					return err
				}
			} else {
				if err := p.dec.PushLimit(int64(lengthField)); err != nil {
					return err
				}
				err := p.ParseDataSet(ds)
				p.dec.PopLimit()
				if err != nil {
					return err
				}
			}
			if err := seq.Append(ds); err != nil {
				return err
			}
		}
	}

	if lengthField == undefinedLength {
		if err := readItems(-1); err != nil {
			return nil, err
		}
		return seq, nil
	}

	if err := p.dec.PushLimit(int64(lengthField)); err != nil {
		return nil, err
	}
	err := readItems(int64(lengthField))
	p.dec.PopLimit()
	if err != nil {
		return nil, err
	}
	return seq, nil
}

// readItemHeader decodes an Item/ItemDelimitation/SequenceDelimitation
// tag plus its 32-bit length. It reports delimiter=true for either
// delimitation tag (the caller distinguishes by context).
func (p *Parser) readItemHeader() (Tag, *DataSet, uint32, bool, *dcmerr.Error) {
	group, derr := p.dec.DecodeUInt16()
	if derr != nil {
		return Tag{}, nil, 0, false, p.wrapAt(derr, dcmerr.PARSE, "dicom: short read", "reading item tag group")
	}
	element, derr := p.dec.DecodeUInt16()
	if derr != nil {
		return Tag{}, nil, 0, false, p.wrapAt(derr, dcmerr.PARSE, "dicom: short read", "reading item tag element")
	}
	tag := Tag{Group: group, Element: element}
	length, derr := p.dec.DecodeUInt32()
	if derr != nil {
		return Tag{}, nil, 0, false, p.wrapAt(derr, dcmerr.PARSE, "dicom: short read", "reading item length")
	}
	if tag == TagSequenceDelimitationItem || tag == TagItemDelimitationItem {
		if length != 0 {
			return Tag{}, nil, 0, false, p.errAt(dcmerr.PARSE, "dicom: bad delimiter", "%s has non-zero length %d", tag, length)
		}
		return tag, nil, 0, true, nil
	}
	return tag, nil, length, false, nil
}

func (p *Parser) readPrimitiveValue(tag Tag, vr VR, length int) (Value, *dcmerr.Error) {
	switch vr.Category() {
	case CategoryString:
		raw, err := p.dec.DecodeString(length)
		if err != nil {
			return Value{}, err
		}
		parts := splitBackslash(raw)
		return newStringValue(vr, parts)

	case CategoryInteger:
		width := vr.ElementWidth()
		if width == 0 || length%width != 0 {
			return Value{}, p.errAt(dcmerr.PARSE, "dicom: bad length", "length %d not a multiple of element width %d for %s", length, width, vr)
		}
		count := length / width
		values := make([]int64, count)
		for i := 0; i < count; i++ {
			v, err := p.decodeIntOfWidth(width, vr.IsSigned())
			if err != nil {
				return Value{}, err
			}
			values[i] = v
		}
		return newNumericMultiValue(vr, values)

	case CategoryFloat:
		width := vr.ElementWidth()
		count := length / width
		values := make([]float64, count)
		for i := 0; i < count; i++ {
			if width == 4 {
				f, err := p.dec.DecodeFloat32()
				if err != nil {
					return Value{}, err
				}
				values[i] = float64(f)
			} else {
				f, err := p.dec.DecodeFloat64()
				if err != nil {
					return Value{}, err
				}
				values[i] = f
			}
		}
		return newFloatingPointValue(vr, values)

	default: // CategoryBinary
		raw, err := p.dec.DecodeBytes(length)
		if err != nil {
			return Value{}, err
		}
		return newBinaryValueAdopt(vr, raw)
	}
}

func (p *Parser) decodeIntOfWidth(width int, signed bool) (int64, *dcmerr.Error) {
	switch width {
	case 2:
		if signed {
			v, err := p.dec.DecodeInt16()
			return int64(v), err
		}
		v, err := p.dec.DecodeUInt16()
		return int64(v), err
	case 4:
		if signed {
			v, err := p.dec.DecodeInt32()
			return int64(v), err
		}
		v, err := p.dec.DecodeUInt32()
		return int64(v), err
	case 8:
		if signed {
			return p.dec.DecodeInt64()
		}
		v, err := p.dec.DecodeUInt64()
		return int64(v), err
	default:
		return 0, p.errAt(dcmerr.PARSE, "dicom: unsupported integer width", "width %d", width)
	}
}

// splitBackslash splits a DICOM multi-valued string on the standard '\'
// separator, trimming the conventional trailing pad byte (space or NUL)
// DICOM strings carry to keep their length even.
func splitBackslash(s string) []string {
	if len(s) > 0 {
		last := s[len(s)-1]
		if last == ' ' || last == 0 {
			s = s[:len(s)-1]
		}
	}
	if s == "" {
		return nil
	}
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}
