package dicom

// Dictionary support: the Tag type plus the compile-time tag -> (keyword,
// VR, VM) table the rest of the package treats as a given external
// collaborator. Structured after the teacher's tag.go/dictionary.go pair,
// merged into one file and generalized with glob-matched repeating-group
// entries the teacher's flat map can't express.

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gobwas/glob"

	"github.com/jcupitt/godicom/dicomlog"
)

// Tag is the (group, element) pair identifying an element's meaning.
type Tag struct {
	Group   uint16
	Element uint16
}

// String renders the tag as "(gggg,eeee)" in lowercase hex, the canonical
// form used in TagPath and diagnostic output throughout the package.
func (t Tag) String() string {
	return fmt.Sprintf("(%04x,%04x)", t.Group, t.Element)
}

// IsPrivate reports whether the tag's group is odd, the standard's
// definition of a private (implementation-defined) attribute.
func (t Tag) IsPrivate() bool {
	return t.Group%2 == 1
}

// ParseTagString parses the canonical "(gggg,eeee)" or "gggg,eeee" form.
func ParseTagString(s string) (Tag, error) {
	parts := strings.Split(strings.Trim(s, "() "), ",")
	if len(parts) != 2 {
		return Tag{}, fmt.Errorf("dicom: malformed tag string %q", s)
	}
	group, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 16, 16)
	if err != nil {
		return Tag{}, fmt.Errorf("dicom: malformed tag group in %q: %v", s, err)
	}
	elem, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 16, 16)
	if err != nil {
		return Tag{}, fmt.Errorf("dicom: malformed tag element in %q: %v", s, err)
	}
	return Tag{Group: uint16(group), Element: uint16(elem)}, nil
}

// TagEntry is one row of the dictionary: a tag's keyword, default/primary
// VR, the VRs the standard permits for it, and its value multiplicity rule
// ("1", "1-n", "2-2n", etc. — carried as an opaque string, as spec.md
// treats VM rule interpretation as caller-owned).
type TagEntry struct {
	Tag       Tag
	Keyword   string
	VR        VR
	AllowedVR []VR
	VM        string
}

// Delimiter and item tags used by the stream parser.
var (
	TagItem                    = Tag{0xFFFE, 0xE000}
	TagItemDelimitationItem    = Tag{0xFFFE, 0xE00D}
	TagSequenceDelimitationItem = Tag{0xFFFE, 0xE0DD}
)

// File Meta (group 0002) tags.
var (
	TagFileMetaInformationGroupLength = Tag{0x0002, 0x0000}
	TagFileMetaInformationVersion     = Tag{0x0002, 0x0001}
	TagMediaStorageSOPClassUID        = Tag{0x0002, 0x0002}
	TagMediaStorageSOPInstanceUID     = Tag{0x0002, 0x0003}
	TagTransferSyntaxUID              = Tag{0x0002, 0x0010}
	TagImplementationClassUID         = Tag{0x0002, 0x0012}
	TagImplementationVersionName      = Tag{0x0002, 0x0013}
)

// Pixel geometry and frame-index tags the filehandle reasons about directly.
var (
	TagSpecificCharacterSet            = Tag{0x0008, 0x0005}
	TagSamplesPerPixel                 = Tag{0x0028, 0x0002}
	TagPhotometricInterpretation       = Tag{0x0028, 0x0004}
	TagPlanarConfiguration             = Tag{0x0028, 0x0006}
	TagNumberOfFrames                  = Tag{0x0028, 0x0008}
	TagRows                            = Tag{0x0028, 0x0010}
	TagColumns                         = Tag{0x0028, 0x0011}
	TagBitsAllocated                   = Tag{0x0028, 0x0100}
	TagBitsStored                      = Tag{0x0028, 0x0101}
	TagHighBit                         = Tag{0x0028, 0x0102}
	TagPixelRepresentation             = Tag{0x0028, 0x0103}
	TagPixelData                       = Tag{0x7FE0, 0x0010}
	TagPerFrameFunctionalGroupSequence = Tag{0x5200, 0x9230}
	TagPlanePositionSequence           = Tag{0x0020, 0x9113}
	TagImagePositionPatient            = Tag{0x0020, 0x0032}

	TagPlanePositionSlideSequence                = Tag{0x0048, 0x021A}
	TagColumnPositionInTotalImagePixelMatrix     = Tag{0x0048, 0x021E}
	TagRowPositionInTotalImagePixelMatrix        = Tag{0x0048, 0x021F}
)

// A representative public-dictionary subset. The dictionary is treated as
// an opaque external data table per the design; this covers every tag the
// library's own operations inspect plus a sample of common attributes so
// callers parsing ordinary files see resolved keywords rather than UN
// fallbacks for everyday elements.
var tagDict = map[Tag]TagEntry{
	TagFileMetaInformationGroupLength: {TagFileMetaInformationGroupLength, "FileMetaInformationGroupLength", UL, []VR{UL}, "1"},
	TagFileMetaInformationVersion:     {TagFileMetaInformationVersion, "FileMetaInformationVersion", OB, []VR{OB}, "1"},
	TagMediaStorageSOPClassUID:        {TagMediaStorageSOPClassUID, "MediaStorageSOPClassUID", UI, []VR{UI}, "1"},
	TagMediaStorageSOPInstanceUID:     {TagMediaStorageSOPInstanceUID, "MediaStorageSOPInstanceUID", UI, []VR{UI}, "1"},
	TagTransferSyntaxUID:              {TagTransferSyntaxUID, "TransferSyntaxUID", UI, []VR{UI}, "1"},
	TagImplementationClassUID:         {TagImplementationClassUID, "ImplementationClassUID", UI, []VR{UI}, "1"},
	TagImplementationVersionName:      {TagImplementationVersionName, "ImplementationVersionName", SH, []VR{SH}, "1"},

	TagSpecificCharacterSet: {TagSpecificCharacterSet, "SpecificCharacterSet", CS, []VR{CS}, "1-n"},
	{0x0008, 0x0016}:        {Tag{0x0008, 0x0016}, "SOPClassUID", UI, []VR{UI}, "1"},
	{0x0008, 0x0018}:        {Tag{0x0008, 0x0018}, "SOPInstanceUID", UI, []VR{UI}, "1"},
	{0x0008, 0x0020}:        {Tag{0x0008, 0x0020}, "StudyDate", DA, []VR{DA}, "1"},
	{0x0008, 0x0060}:        {Tag{0x0008, 0x0060}, "Modality", CS, []VR{CS}, "1"},
	{0x0008, 0x0090}:        {Tag{0x0008, 0x0090}, "ReferringPhysicianName", PN, []VR{PN}, "1"},

	{0x0010, 0x0010}: {Tag{0x0010, 0x0010}, "PatientName", PN, []VR{PN}, "1"},
	{0x0010, 0x0020}: {Tag{0x0010, 0x0020}, "PatientID", LO, []VR{LO}, "1"},
	{0x0010, 0x0030}: {Tag{0x0010, 0x0030}, "PatientBirthDate", DA, []VR{DA}, "1"},
	{0x0010, 0x0040}: {Tag{0x0010, 0x0040}, "PatientSex", CS, []VR{CS}, "1"},

	{0x0020, 0x000D}:       {Tag{0x0020, 0x000D}, "StudyInstanceUID", UI, []VR{UI}, "1"},
	{0x0020, 0x000E}:       {Tag{0x0020, 0x000E}, "SeriesInstanceUID", UI, []VR{UI}, "1"},
	{0x0020, 0x0013}:       {Tag{0x0020, 0x0013}, "InstanceNumber", IS, []VR{IS}, "1"},
	TagImagePositionPatient: {TagImagePositionPatient, "ImagePositionPatient", DS, []VR{DS}, "3"},
	TagPlanePositionSequence: {TagPlanePositionSequence, "PlanePositionSequence", SQ, []VR{SQ}, "1"},

	TagSamplesPerPixel:                 {TagSamplesPerPixel, "SamplesPerPixel", US, []VR{US}, "1"},
	TagPhotometricInterpretation:       {TagPhotometricInterpretation, "PhotometricInterpretation", CS, []VR{CS}, "1"},
	TagPlanarConfiguration:             {TagPlanarConfiguration, "PlanarConfiguration", US, []VR{US}, "1"},
	TagNumberOfFrames:                  {TagNumberOfFrames, "NumberOfFrames", IS, []VR{IS}, "1"},
	TagRows:                            {TagRows, "Rows", US, []VR{US}, "1"},
	TagColumns:                         {TagColumns, "Columns", US, []VR{US}, "1"},
	{0x0028, 0x0030}:                   {Tag{0x0028, 0x0030}, "PixelSpacing", DS, []VR{DS}, "2"},
	TagBitsAllocated:                   {TagBitsAllocated, "BitsAllocated", US, []VR{US}, "1"},
	TagBitsStored:                      {TagBitsStored, "BitsStored", US, []VR{US}, "1"},
	TagHighBit:                         {TagHighBit, "HighBit", US, []VR{US}, "1"},
	TagPixelRepresentation:             {TagPixelRepresentation, "PixelRepresentation", US, []VR{US}, "1"},
	TagPixelData:                       {TagPixelData, "PixelData", OW, []VR{OB, OW}, "1"},
	TagPerFrameFunctionalGroupSequence: {TagPerFrameFunctionalGroupSequence, "PerFrameFunctionalGroupSequence", SQ, []VR{SQ}, "1"},
	{0x5200, 0x9229}:                   {Tag{0x5200, 0x9229}, "SharedFunctionalGroupsSequence", SQ, []VR{SQ}, "1"},

	TagPlanePositionSlideSequence:            {TagPlanePositionSlideSequence, "PlanePositionSlideSequence", SQ, []VR{SQ}, "1"},
	TagColumnPositionInTotalImagePixelMatrix: {TagColumnPositionInTotalImagePixelMatrix, "ColumnPositionInTotalImagePixelMatrix", SL, []VR{SL}, "1"},
	TagRowPositionInTotalImagePixelMatrix:    {TagRowPositionInTotalImagePixelMatrix, "RowPositionInTotalImagePixelMatrix", SL, []VR{SL}, "1"},
}

// repeatingGroupEntry describes a tag whose group or element spans a range
// conventionally written "60xx"/"xx00" in the standard's tables. Matched
// against the tag's hex rendering via a glob rather than enumerated
// one-by-one. The table covers overlay planes (60xx) and curve data (50xx)
// only; no other repeating group is matched.
type repeatingGroupEntry struct {
	pattern glob.Glob
	keyword string
	vr      VR
	vm      string
}

var repeatingGroupEntries = []repeatingGroupEntry{
	{glob.MustCompile("60[0-9a-f][0-9a-f],3000"), "OverlayData", OW, "1"},
	{glob.MustCompile("60[0-9a-f][0-9a-f],0010"), "OverlayRows", US, "1"},
	{glob.MustCompile("60[0-9a-f][0-9a-f],0011"), "OverlayColumns", US, "1"},
	{glob.MustCompile("50[0-9a-f][0-9a-f],2000"), "CurveData", OW, "1"},
}

func hexTag(tag Tag) string {
	return fmt.Sprintf("%04x,%04x", tag.Group, tag.Element)
}

func lookupRepeatingGroup(tag Tag) (TagEntry, bool) {
	rendered := hexTag(tag)
	for _, e := range repeatingGroupEntries {
		if e.pattern.Match(rendered) {
			return TagEntry{Tag: tag, Keyword: e.keyword, VR: e.vr, AllowedVR: []VR{e.vr}, VM: e.vm}, true
		}
	}
	return TagEntry{}, false
}

// LookupTag resolves a tag to its dictionary entry. Unknown even-group tags
// with element 0x0000 resolve to the standard's generic group-length rule;
// unknown tags matching a repeating-group pattern resolve via glob; anything
// else falls back to an UN placeholder entry and is logged at DEBUG so a
// caller tracing a noisy file can see dictionary misses without an error.
func LookupTag(tag Tag) TagEntry {
	if e, ok := tagDict[tag]; ok {
		return e
	}
	if tag.Element == 0x0000 && tag.Group%2 == 0 {
		return TagEntry{Tag: tag, Keyword: "GenericGroupLength", VR: UL, AllowedVR: []VR{UL}, VM: "1"}
	}
	if e, ok := lookupRepeatingGroup(tag); ok {
		return e
	}
	dicomlog.Debugf("dicom: tag %s not in dictionary, defaulting to UN", tag.String())
	return TagEntry{Tag: tag, Keyword: "", VR: UN, AllowedVR: []VR{UN}, VM: "1-n"}
}

// LookupTagByKeyword performs the reverse lookup, used by callers that
// build elements programmatically by name instead of by tag.
func LookupTagByKeyword(keyword string) (TagEntry, bool) {
	for _, e := range tagDict {
		if e.Keyword == keyword {
			return e, true
		}
	}
	return TagEntry{}, false
}

// DefaultVR returns the dictionary's primary VR for tag, the VR implicit
// VR Little Endian decoding must assume.
func DefaultVR(tag Tag) VR {
	return LookupTag(tag).VR
}

// VRPermitted reports whether vr is one of the VRs the dictionary allows
// for tag. Unknown tags permit anything, since their entry is a placeholder.
func VRPermitted(tag Tag, vr VR) bool {
	entry := LookupTag(tag)
	if entry.Keyword == "" {
		return true
	}
	for _, allowed := range entry.AllowedVR {
		if allowed == vr {
			return true
		}
	}
	return false
}
