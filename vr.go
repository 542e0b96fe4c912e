package dicom

// VR is the Value Representation of an element: a two-letter mnemonic
// classifying both the value's Go-side shape and how it is framed on the
// wire. The set mirrors PS3.5 table 6.2-1; ERROR is returned by ParseVR
// for anything not in the table, mirroring the teacher's value-representation.go
// NA sentinel under a name that doesn't collide with the dictionary's own
// "not applicable" concept.
type VR int

const (
	ERROR VR = iota
	AE
	AS
	AT
	CS
	DA
	DS
	DT
	FL
	FD
	IS
	LO
	LT
	OB
	OD
	OF
	OL
	OV
	OW
	PN
	SH
	SL
	SQ
	SS
	ST
	SV
	TM
	UC
	UI
	UL
	UN
	UR
	US
	UT
	UV
)

// Category classifies a VR by the shape of value it stores.
type Category int

const (
	CategoryString Category = iota
	CategoryInteger
	CategoryFloat
	CategoryBinary
	CategorySequence
)

var vrNames = map[VR]string{
	ERROR: "ERROR",
	AE:    "AE", AS: "AS", AT: "AT", CS: "CS", DA: "DA", DS: "DS", DT: "DT",
	FL: "FL", FD: "FD", IS: "IS", LO: "LO", LT: "LT", OB: "OB", OD: "OD",
	OF: "OF", OL: "OL", OV: "OV", OW: "OW", PN: "PN", SH: "SH", SL: "SL",
	SQ: "SQ", SS: "SS", ST: "ST", SV: "SV", TM: "TM", UC: "UC", UI: "UI",
	UL: "UL", UN: "UN", UR: "UR", US: "US", UT: "UT", UV: "UV",
}

var vrByName = func() map[string]VR {
	m := make(map[string]VR, len(vrNames))
	for vr, name := range vrNames {
		m[name] = vr
	}
	return m
}()

// ParseVR maps a two-letter mnemonic to its VR, or ERROR if unrecognized.
func ParseVR(s string) VR {
	if vr, ok := vrByName[s]; ok {
		return vr
	}
	return ERROR
}

// String renders the VR's two-letter mnemonic ("ERROR" for the sentinel).
func (vr VR) String() string {
	if name, ok := vrNames[vr]; ok {
		return name
	}
	return "ERROR"
}

// elementWidth is the size in bytes of one value-array element for the
// numeric VRs; zero for VRs whose values aren't a homogeneous numeric array.
var elementWidth = map[VR]int{
	AT: 4,
	FL: 4, FD: 8,
	OB: 1, OD: 8, OF: 4, OL: 4, OV: 8, OW: 2,
	SL: 4, SS: 2, SV: 8,
	UL: 4, US: 2, UV: 8,
}

// ElementWidth returns the byte width of one array element for numeric and
// binary VRs, or 1 for string VRs (byte-oriented), or 0 for SQ.
func (vr VR) ElementWidth() int {
	if vr == SQ {
		return 0
	}
	if w, ok := elementWidth[vr]; ok {
		return w
	}
	return 1
}

var categories = map[VR]Category{
	AE: CategoryString, AS: CategoryString, CS: CategoryString,
	DA: CategoryString, DS: CategoryString, DT: CategoryString,
	IS: CategoryString, LO: CategoryString, LT: CategoryString,
	PN: CategoryString, SH: CategoryString, ST: CategoryString,
	TM: CategoryString, UC: CategoryString, UI: CategoryString,
	UR: CategoryString, UT: CategoryString,

	AT: CategoryInteger, SL: CategoryInteger,
	SS: CategoryInteger, SV: CategoryInteger, UL: CategoryInteger,
	US: CategoryInteger, UV: CategoryInteger,

	FL: CategoryFloat, FD: CategoryFloat,

	OB: CategoryBinary, OD: CategoryBinary, OF: CategoryBinary,
	OL: CategoryBinary, OV: CategoryBinary, OW: CategoryBinary,
	UN: CategoryBinary,

	SQ: CategorySequence,
}

// Category reports which Value shape this VR stores into.
func (vr VR) Category() Category {
	if c, ok := categories[vr]; ok {
		return c
	}
	return CategoryBinary
}

// IsSigned reports whether an integer VR's values are signed.
func (vr VR) IsSigned() bool {
	switch vr {
	case SL, SS, SV:
		return true
	default:
		return false
	}
}

// longLengthVRs is the set of VRs that, in explicit VR encoding, are
// followed by two reserved bytes and a 32-bit length rather than a plain
// 16-bit length.
var longLengthVRs = map[VR]bool{
	OB: true, OD: true, OF: true, OL: true, OV: true, OW: true,
	SQ: true, SV: true, UC: true, UN: true, UR: true, UT: true, UV: true,
}

// HasLongExplicitLength reports whether this VR's explicit-VR length field
// is 32 bits (with two reserved bytes ahead of it) rather than 16 bits.
func (vr VR) HasLongExplicitLength() bool {
	return longLengthVRs[vr]
}

var undefinedLengthAllowed = map[VR]bool{
	OB: true, OW: true, SQ: true, UN: true, UT: true,
}

// AllowsUndefinedLength reports whether a length field of 0xFFFFFFFF is a
// legal encoding for a value of this VR (always true for the VRs the
// standard permits to stream: OB/OW encapsulated pixel data, SQ, UN, UT).
func (vr VR) AllowsUndefinedLength() bool {
	return undefinedLengthAllowed[vr]
}
