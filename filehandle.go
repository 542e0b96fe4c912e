package dicom

// Filehandle implements the stateful reader (C6): a state machine wrapping
// an IO source through fresh -> meta_read -> metadata_read ->
// pixeldata_indexed, with each stage idempotent. Grounded on the teacher's
// (now-superseded) element.go ParseFileHeader/readBasicOffsetTable pair
// for the preamble/BOT handling, generalized into fallible return values
// and the staged API spec.md names.

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/jcupitt/godicom/dcmerr"
	"github.com/jcupitt/godicom/dicomio"
	"github.com/jcupitt/godicom/dicomlog"
)

type fhState int

const (
	stateFresh fhState = iota
	stateMetaRead
	stateMetadataRead
	statePixelDataIndexed
)

const preambleSize = 128

// fragmentSpan is one encapsulated-pixel-data fragment's absolute
// location in the underlying source.
type fragmentSpan struct {
	offset int64
	length int64
}

// Filehandle is a stateful reader over a single IO source. Not safe for
// concurrent use; callers that need concurrent frame access open distinct
// Filehandles over distinct IO instances, per the concurrency model.
type Filehandle struct {
	src      dicomio.Source
	dec      *dicomio.Decoder
	state    fhState
	totalSize int64

	fileMeta *DataSet
	metadata *DataSet

	transferSyntaxUID string
	byteOrder         binary.ByteOrder
	vrMode            dicomio.VRMode

	pixelData       *PixelDataInfo
	pixelDataAbsoluteOffset int64
	// encapsulated is the transfer-syntax-dictionary-resolved encapsulation
	// decision ReadPixelData settled on; ReadFrame branches on this, not on
	// pixelData.Encapsulated, so the two stay consistent even when the wire
	// length field disagreed with the dictionary.
	encapsulated bool

	// Native frame geometry.
	frameCount     int
	nativeFrameSize int64

	// Encapsulated frame geometry: one []fragmentSpan per frame, in order.
	encapsulatedFrames [][]fragmentSpan

	rows, columns, samplesPerPixel, bitsAllocated int
	planarConfiguration, pixelRepresentation      int
	photometricInterpretation                     string

	// framePositions maps a 0-based (columnTile, rowTile) to a 1-based
	// frame number, built from PerFrameFunctionalGroupSequence when present.
	framePositions map[[2]int]int
}

// Open opens path and returns a fresh Filehandle over it.
func Open(path string) (*Filehandle, *dcmerr.Error) {
	src, err := dicomio.OpenFile(path)
	if err != nil {
		return nil, err.Log()
	}
	return NewFilehandle(src), nil
}

// NewFilehandle wraps an already-constructed IO source. The Filehandle
// takes ownership: Close closes src.
func NewFilehandle(src dicomio.Source) *Filehandle {
	return &Filehandle{src: src}
}

// Close releases the underlying IO source.
func (fh *Filehandle) Close() *dcmerr.Error {
	if err := fh.src.Close(); err != nil {
		return dcmerr.Wrap(err, dcmerr.IO, "dicom: close failed", "")
	}
	return nil
}

func (fh *Filehandle) sizeOfSource() (int64, *dcmerr.Error) {
	if fh.totalSize != 0 {
		return fh.totalSize, nil
	}
	end, err := fh.src.Seek(0, dicomio.SeekEnd)
	if err != nil {
		return 0, dcmerr.Wrap(err, dcmerr.IO, "dicom: seek failed", "measuring source size")
	}
	if _, err := fh.src.Seek(0, dicomio.SeekSet); err != nil {
		return 0, dcmerr.Wrap(err, dcmerr.IO, "dicom: seek failed", "rewinding after size probe")
	}
	fh.totalSize = end
	return end, nil
}

// ReadFileMeta runs the fresh -> meta_read transition: consumes the
// preamble, DICM magic, and group-0002 File Meta, and returns the
// resulting DataSet. Idempotent.
func (fh *Filehandle) ReadFileMeta() (*DataSet, *dcmerr.Error) {
	if fh.state >= stateMetaRead {
		return fh.fileMeta, nil
	}

	size, serr := fh.sizeOfSource()
	if serr != nil {
		return nil, serr
	}

	if _, err := fh.src.Seek(0, dicomio.SeekSet); err != nil {
		return nil, dcmerr.Wrap(err, dcmerr.IO, "dicom: seek failed", "rewinding before preamble")
	}

	preambleAndMagic := preambleSize + 4
	header := make([]byte, preambleAndMagic)
	if _, err := dicomio.ReadFull(fh.src, header); err != nil {
		return nil, err
	}

	headerConsumed := int64(preambleAndMagic)
	if string(header[preambleSize:]) != "DICM" {
		// Lenient mode: retry assuming no 128-byte preamble was present.
		if string(header[:4]) == "DICM" {
			headerConsumed = 4
		} else {
			return nil, dcmerr.New(dcmerr.PARSE, "dicom: missing magic",
				"neither offset 128 nor offset 0 carries the DICM literal")
		}
	}

	fh.dec = dicomio.NewDecoder(fh.src, size-headerConsumed, binary.LittleEndian, dicomio.ExplicitVR)

	groupLengthTag, err := fh.decodeTag()
	if err != nil {
		return nil, err
	}
	if groupLengthTag != TagFileMetaInformationGroupLength {
		return nil, dcmerr.New(dcmerr.PARSE, "dicom: bad file meta",
			"expected %s as first file meta element, got %s", TagFileMetaInformationGroupLength, groupLengthTag)
	}
	if _, err := fh.dec.DecodeString(2); err != nil { // "UL"
		return nil, err
	}
	if _, err := fh.dec.DecodeUInt16(); err != nil { // 16-bit length, value 4
		return nil, err
	}
	groupLength, err := fh.dec.DecodeUInt32()
	if err != nil {
		return nil, err
	}

	if lerr := fh.dec.PushLimit(int64(groupLength)); lerr != nil {
		return nil, lerr
	}
	fileMeta := NewDataSet()
	p := NewParser(fh.dec, dicomio.ExplicitVR, binary.LittleEndian, false)
	perr := p.ParseDataSet(fileMeta)
	fh.dec.PopLimit()
	if perr != nil {
		return nil, perr
	}

	tsElem := fileMeta.Get(TagTransferSyntaxUID)
	if tsElem == nil {
		return nil, dcmerr.New(dcmerr.PARSE, "dicom: missing transfer syntax",
			"file meta has no %s", TagTransferSyntaxUID)
	}
	uid, gerr := tsElem.GetValueString(0)
	if gerr != nil {
		return nil, gerr
	}
	uid = strings.TrimRight(uid, "\x00 ")

	fh.transferSyntaxUID = uid
	fh.byteOrder = ByteOrder(uid)
	fh.vrMode = VRMode(uid)
	fh.fileMeta = fileMeta
	fh.state = stateMetaRead
	return fileMeta, nil
}

func (fh *Filehandle) decodeTag() (Tag, *dcmerr.Error) {
	group, err := fh.dec.DecodeUInt16()
	if err != nil {
		return Tag{}, err
	}
	element, err := fh.dec.DecodeUInt16()
	if err != nil {
		return Tag{}, err
	}
	return Tag{Group: group, Element: element}, nil
}

// TransferSyntaxUID returns the transfer syntax committed by ReadFileMeta.
func (fh *Filehandle) TransferSyntaxUID() string { return fh.transferSyntaxUID }

// ReadMetadata runs the meta_read -> metadata_read transition: parses the
// main Data Set in the transfer syntax named by File Meta, stopping at
// PixelData. Idempotent; calls ReadFileMeta first if needed.
func (fh *Filehandle) ReadMetadata() (*DataSet, *dcmerr.Error) {
	if fh.state >= stateMetadataRead {
		return fh.metadata, nil
	}
	if _, err := fh.ReadFileMeta(); err != nil {
		return nil, err
	}
	if IsDeflated(fh.transferSyntaxUID) {
		return nil, dcmerr.New(dcmerr.PARSE, "dicom: unsupported transfer syntax",
			"%s requires inflating the stream, which godicom does not do", fh.transferSyntaxUID)
	}

	fh.dec.PushTransferSyntax(fh.byteOrder, fh.vrMode)
	defer fh.dec.PopTransferSyntax()

	metadata := NewDataSet()
	p := NewParser(fh.dec, fh.vrMode, fh.byteOrder, true)
	if err := p.ParseDataSet(metadata); err != nil {
		return nil, err
	}

	if info := p.PixelData(); info != nil {
		fh.pixelData = info
		fh.pixelDataAbsoluteOffset = int64(preambleSize+4) + info.Offset
	}

	fh.metadata = metadata
	fh.state = stateMetadataRead
	return metadata, nil
}

func getInt(ds *DataSet, tag Tag, def int) int {
	e := ds.Get(tag)
	if e == nil {
		return def
	}
	v, err := e.GetValueInteger(0)
	if err != nil {
		return def
	}
	return int(v)
}

func getString(ds *DataSet, tag Tag, def string) string {
	e := ds.Get(tag)
	if e == nil {
		return def
	}
	v, err := e.GetValueString(0)
	if err != nil {
		return def
	}
	return v
}

// ReadPixelData runs the metadata_read -> pixeldata_indexed transition:
// builds the frame index, native or encapsulated depending on the
// transfer syntax. Idempotent; calls ReadMetadata first if needed.
func (fh *Filehandle) ReadPixelData() *dcmerr.Error {
	if fh.state >= statePixelDataIndexed {
		return nil
	}
	if _, err := fh.ReadMetadata(); err != nil {
		return err
	}
	if fh.pixelData == nil {
		return dcmerr.New(dcmerr.PARSE, "dicom: no pixel data", "metadata has no %s element", TagPixelData)
	}

	fh.rows = getInt(fh.metadata, TagRows, 0)
	fh.columns = getInt(fh.metadata, TagColumns, 0)
	fh.samplesPerPixel = getInt(fh.metadata, TagSamplesPerPixel, 1)
	fh.bitsAllocated = getInt(fh.metadata, TagBitsAllocated, 8)
	fh.planarConfiguration = getInt(fh.metadata, TagPlanarConfiguration, 0)
	fh.pixelRepresentation = getInt(fh.metadata, TagPixelRepresentation, 0)
	fh.photometricInterpretation = getString(fh.metadata, TagPhotometricInterpretation, "")

	// The transfer syntax dictionary is authoritative on whether Pixel Data
	// is encapsulated; the undefined-length sentinel the stream parser saw
	// on the wire (fh.pixelData.Encapsulated) is cross-checked against it
	// rather than trusted alone, since a conformant encoder never emits an
	// encapsulated-framed Pixel Data element under a native transfer syntax
	// or vice versa.
	encapsulated := IsEncapsulatedTransferSyntax(fh.transferSyntaxUID)
	if encapsulated != fh.pixelData.Encapsulated {
		dicomlog.Warningf("dicom: transfer syntax %s implies encapsulated=%v but pixel data length field implies %v; trusting the transfer syntax dictionary",
			fh.transferSyntaxUID, encapsulated, fh.pixelData.Encapsulated)
	}
	fh.encapsulated = encapsulated

	if encapsulated {
		if err := fh.indexEncapsulatedFrames(); err != nil {
			return err
		}
	} else {
		if err := fh.indexNativeFrames(); err != nil {
			return err
		}
	}

	fh.buildFramePositions()
	fh.state = statePixelDataIndexed
	return nil
}

func (fh *Filehandle) indexNativeFrames() *dcmerr.Error {
	bytesPerSample := int64((fh.bitsAllocated + 7) / 8)
	frameSize := int64(fh.rows) * int64(fh.columns) * int64(fh.samplesPerPixel) * bytesPerSample
	if frameSize <= 0 {
		return dcmerr.New(dcmerr.PARSE, "dicom: bad pixel geometry",
			"rows=%d columns=%d samplesPerPixel=%d bitsAllocated=%d yield zero frame size",
			fh.rows, fh.columns, fh.samplesPerPixel, fh.bitsAllocated)
	}
	total := int64(fh.pixelData.LengthField)
	if total%frameSize != 0 {
		return dcmerr.New(dcmerr.PARSE, "dicom: bad pixel data length",
			"pixel data of %d bytes is not a multiple of frame size %d", total, frameSize)
	}
	fh.nativeFrameSize = frameSize
	fh.frameCount = int(total / frameSize)
	return nil
}

// readRawItemHeader reads a raw (tag, length) pair at the current decoder
// position using the fixed Item/Delimitation framing (no VR field),
// mirroring the stream parser's readItemHeader but operated standalone
// against a decoder scoped to the pixel data region.
func readRawItemHeader(dec *dicomio.Decoder) (Tag, uint32, *dcmerr.Error) {
	group, err := dec.DecodeUInt16()
	if err != nil {
		return Tag{}, 0, err
	}
	element, err := dec.DecodeUInt16()
	if err != nil {
		return Tag{}, 0, err
	}
	length, err := dec.DecodeUInt32()
	if err != nil {
		return Tag{}, 0, err
	}
	return Tag{Group: group, Element: element}, length, nil
}

func (fh *Filehandle) indexEncapsulatedFrames() *dcmerr.Error {
	if _, err := fh.src.Seek(fh.pixelDataAbsoluteOffset, dicomio.SeekSet); err != nil {
		return dcmerr.Wrap(err, dcmerr.IO, "dicom: seek failed", "seeking to pixel data")
	}
	remaining := fh.totalSize - fh.pixelDataAbsoluteOffset
	dec := dicomio.NewDecoder(fh.src, remaining, fh.byteOrder, dicomio.ExplicitVR)

	botTag, botLength, err := readRawItemHeader(dec)
	if err != nil {
		return err
	}
	if botTag != TagItem {
		return dcmerr.New(dcmerr.PARSE, "dicom: bad encapsulated pixel data", "expected Basic Offset Table item, got %s", botTag)
	}
	var botOffsets []uint32
	if botLength > 0 {
		botOffsets = make([]uint32, botLength/4)
		for i := range botOffsets {
			v, err := dec.DecodeUInt32()
			if err != nil {
				return err
			}
			botOffsets[i] = v
		}
	}
	fragmentsBase := dec.Pos()

	var fragments []fragmentSpan
	var fragmentRelOffsets []int64
	for {
		tag, length, err := readRawItemHeader(dec)
		if err != nil {
			return err
		}
		if tag == TagSequenceDelimitationItem {
			break
		}
		if tag != TagItem {
			return dcmerr.New(dcmerr.PARSE, "dicom: bad encapsulated pixel data", "expected fragment Item, got %s", tag)
		}
		relOffset := dec.Pos() - fragmentsBase
		fragments = append(fragments, fragmentSpan{
			offset: fh.pixelDataAbsoluteOffset + dec.Pos(),
			length: int64(length),
		})
		fragmentRelOffsets = append(fragmentRelOffsets, relOffset)
		if err := dec.Skip(int64(length)); err != nil {
			return err
		}
	}

	if len(botOffsets) > 0 {
		frames := make([][]fragmentSpan, len(botOffsets))
		for i := range botOffsets {
			lo := int64(botOffsets[i])
			hi := int64(-1)
			if i+1 < len(botOffsets) {
				hi = int64(botOffsets[i+1])
			}
			var spans []fragmentSpan
			for j, rel := range fragmentRelOffsets {
				if rel < lo {
					continue
				}
				if hi >= 0 && rel >= hi {
					break
				}
				spans = append(spans, fragments[j])
			}
			if len(spans) == 0 {
				return dcmerr.New(dcmerr.PARSE, "dicom: bad basic offset table",
					"no fragment found at offset table entry %d (offset %d)", i, botOffsets[i])
			}
			frames[i] = spans
		}
		fh.encapsulatedFrames = frames
		fh.frameCount = len(frames)
		return nil
	}

	// Empty BOT: fall back to scanning fragments, but only when the
	// fragment count unambiguously resolves to the frame count.
	declaredFrames, ok := intAttr(fh.metadata, TagNumberOfFrames)
	if !ok || declaredFrames != len(fragments) {
		return dcmerr.New(dcmerr.PARSE, "dicom: ambiguous encapsulated pixel data",
			"empty Basic Offset Table with %d fragments and NumberOfFrames=%v cannot be resolved to a frame index",
			len(fragments), declaredFrames)
	}
	frames := make([][]fragmentSpan, len(fragments))
	for i, f := range fragments {
		frames[i] = []fragmentSpan{f}
	}
	fh.encapsulatedFrames = frames
	fh.frameCount = len(frames)
	return nil
}

func intAttr(ds *DataSet, tag Tag) (int, bool) {
	e := ds.Get(tag)
	if e == nil {
		return 0, false
	}
	s, err := e.GetValueString(0)
	if err == nil {
		if n, cerr := strconv.Atoi(strings.TrimSpace(s)); cerr == nil {
			return n, true
		}
	}
	if n, err := e.GetValueInteger(0); err == nil {
		return int(n), true
	}
	return 0, false
}

// buildFramePositions constructs the (columnTile, rowTile) -> frame number
// table from PerFrameFunctionalGroupSequence, when present. Tiles are
// assumed regular and non-overlapping, each Rows x Columns in size;
// irregular or overlapping layouts are not supported.
func (fh *Filehandle) buildFramePositions() {
	elem := fh.metadata.Get(TagPerFrameFunctionalGroupSequence)
	if elem == nil || fh.rows == 0 || fh.columns == 0 {
		return
	}
	seq, err := elem.GetValueSequence()
	if err != nil || seq == nil {
		return
	}
	positions := make(map[[2]int]int)
	_ = seq.Foreach(func(i int, item *DataSet) *dcmerr.Error {
		planeSeqElem := item.Get(TagPlanePositionSlideSequence)
		if planeSeqElem == nil {
			return nil
		}
		planeSeq, err := planeSeqElem.GetValueSequence()
		if err != nil || planeSeq == nil || planeSeq.Count() == 0 {
			return nil
		}
		planeItem, err := planeSeq.Get(0)
		if err != nil {
			return nil
		}
		colElem := planeItem.Get(TagColumnPositionInTotalImagePixelMatrix)
		rowElem := planeItem.Get(TagRowPositionInTotalImagePixelMatrix)
		if colElem == nil || rowElem == nil {
			return nil
		}
		colPos, cerr := colElem.GetValueInteger(0)
		rowPos, rerr := rowElem.GetValueInteger(0)
		if cerr != nil || rerr != nil {
			return nil
		}
		colTile := int((colPos - 1) / int64(fh.columns))
		rowTile := int((rowPos - 1) / int64(fh.rows))
		positions[[2]int{colTile, rowTile}] = i + 1
		return nil
	})
	if len(positions) > 0 {
		fh.framePositions = positions
	}
}

// FrameCount returns the number of frames found by ReadPixelData.
// Requires pixeldata_indexed.
func (fh *Filehandle) FrameCount() int { return fh.frameCount }

// ReadFrame requires pixeldata_indexed. n is 1-based.
func (fh *Filehandle) ReadFrame(n int) (*Frame, *dcmerr.Error) {
	if fh.state < statePixelDataIndexed {
		return nil, dcmerr.New(dcmerr.INVALID, "dicom: wrong state", "ReadFrame requires ReadPixelData to have run")
	}
	if n < 1 || n > fh.frameCount {
		return nil, dcmerr.New(dcmerr.INVALID, "dicom: index out of range", "frame %d not in [1,%d]", n, fh.frameCount)
	}

	var data []byte
	if fh.encapsulated {
		spans := fh.encapsulatedFrames[n-1]
		for _, sp := range spans {
			buf := make([]byte, sp.length)
			if _, err := fh.src.Seek(sp.offset, dicomio.SeekSet); err != nil {
				return nil, dcmerr.Wrap(err, dcmerr.IO, "dicom: seek failed", "reading frame %d fragment", n)
			}
			if _, err := dicomio.ReadFull(fh.src, buf); err != nil {
				return nil, err
			}
			data = append(data, buf...)
		}
	} else {
		offset := fh.pixelDataAbsoluteOffset + int64(n-1)*fh.nativeFrameSize
		buf := make([]byte, fh.nativeFrameSize)
		if _, err := fh.src.Seek(offset, dicomio.SeekSet); err != nil {
			return nil, dcmerr.Wrap(err, dcmerr.IO, "dicom: seek failed", "reading frame %d", n)
		}
		if _, err := dicomio.ReadFull(fh.src, buf); err != nil {
			return nil, err
		}
		data = buf
	}

	return &Frame{
		number:                     n,
		rows:                       fh.rows,
		columns:                    fh.columns,
		samplesPerPixel:            fh.samplesPerPixel,
		bitsAllocated:              fh.bitsAllocated,
		bitsStored:                 getInt(fh.metadata, TagBitsStored, fh.bitsAllocated),
		highBit:                    getInt(fh.metadata, TagHighBit, fh.bitsAllocated-1),
		pixelRepresentation:        fh.pixelRepresentation,
		planarConfiguration:        fh.planarConfiguration,
		photometricInterpretation:  fh.photometricInterpretation,
		transferSyntaxUID:          fh.transferSyntaxUID,
		data:                       data,
	}, nil
}

// ReadFramePosition translates a 0-based (column, row) tile coordinate to
// a frame number via the PerFrameFunctionalGroupSequence position table
// and delegates to ReadFrame. Requires pixeldata_indexed and a file that
// carried per-frame slide positions.
func (fh *Filehandle) ReadFramePosition(column, row int) (*Frame, *dcmerr.Error) {
	if fh.framePositions == nil {
		return nil, dcmerr.New(dcmerr.INVALID, "dicom: no position table",
			"file has no usable PerFrameFunctionalGroupSequence slide positions")
	}
	n, ok := fh.framePositions[[2]int{column, row}]
	if !ok {
		return nil, dcmerr.New(dcmerr.INVALID, "dicom: position not found", "no frame at tile (%d,%d)", column, row)
	}
	return fh.ReadFrame(n)
}
