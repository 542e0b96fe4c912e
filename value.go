package dicom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jcupitt/godicom/dcmerr"
)

// ValueKind discriminates the tagged union Value implements.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueStrings
	ValueInts
	ValueFloats
	ValueBinary
	ValueSequence
)

// Value is the tagged union an Element's payload is stored as: a string
// list, an integer array (with its source width and signedness recorded
// so the integer getter can widen correctly), a float array, an opaque
// binary blob, or a nested Sequence. Exactly one of the typed fields is
// meaningful, selected by Kind.
type Value struct {
	kind ValueKind

	strings []string

	ints      []int64
	intWidth  int
	intSigned bool

	floats     []float64
	floatWidth int

	binary []byte

	sequence *Sequence
}

// Kind reports which payload this Value carries.
func (v Value) Kind() ValueKind { return v.kind }

// Len reports the value multiplicity (VM) of the stored payload.
func (v Value) Len() int {
	switch v.kind {
	case ValueStrings:
		return len(v.strings)
	case ValueInts:
		return len(v.ints)
	case ValueFloats:
		return len(v.floats)
	case ValueBinary:
		if len(v.binary) == 0 {
			return 0
		}
		return 1
	case ValueSequence:
		if v.sequence == nil {
			return 0
		}
		return v.sequence.Count()
	default:
		return 0
	}
}

func vmAllowsMultiple(vm string) bool {
	if n, err := strconv.Atoi(vm); err == nil {
		return n > 1
	}
	return strings.Contains(vm, "-") || strings.Contains(vm, "n") || vm == ""
}

// newStringValue implements set_string: vr's category must be string. It
// does not check a VM rule; newStringMultiValue does that.
func newStringValue(vr VR, values []string) (Value, *dcmerr.Error) {
	if vr.Category() != CategoryString {
		return Value{}, dcmerr.New(dcmerr.INVALID, "dicom: VR mismatch",
			"%s is not a string VR", vr)
	}
	cp := make([]string, len(values))
	copy(cp, values)
	return Value{kind: ValueStrings, strings: cp}, nil
}

// newStringMultiValue is set_string_multi: like newStringValue but enforces
// that multi-value assignment is only legal when the tag's VM rule allows
// more than one value.
func newStringMultiValue(vr VR, vm string, values []string) (Value, *dcmerr.Error) {
	if len(values) > 1 && !vmAllowsMultiple(vm) {
		return Value{}, dcmerr.New(dcmerr.INVALID, "dicom: VM mismatch",
			"VR %s with VM rule %q does not permit %d values", vr, vm, len(values))
	}
	return newStringValue(vr, values)
}

// newIntegerValue implements set_integer: a single value of an integer VR.
func newIntegerValue(vr VR, value int64) (Value, *dcmerr.Error) {
	if vr.Category() != CategoryInteger {
		return Value{}, dcmerr.New(dcmerr.INVALID, "dicom: VR mismatch",
			"%s is not an integer VR", vr)
	}
	return Value{kind: ValueInts, ints: []int64{value}, intWidth: vr.ElementWidth(), intSigned: vr.IsSigned()}, nil
}

// newNumericMultiValue implements set_numeric_multi: callers pass
// already-byte-order-corrected values, not raw bytes, which keeps this
// independent of the parser's byte order state; vr's element width and
// signedness are recorded alongside them.
func newNumericMultiValue(vr VR, values []int64) (Value, *dcmerr.Error) {
	if vr.Category() != CategoryInteger {
		return Value{}, dcmerr.New(dcmerr.INVALID, "dicom: VR mismatch",
			"%s is not an integer VR", vr)
	}
	cp := make([]int64, len(values))
	copy(cp, values)
	return Value{kind: ValueInts, ints: cp, intWidth: vr.ElementWidth(), intSigned: vr.IsSigned()}, nil
}

// newFloatingPointValue implements set_floatingpoint.
func newFloatingPointValue(vr VR, values []float64) (Value, *dcmerr.Error) {
	if vr.Category() != CategoryFloat {
		return Value{}, dcmerr.New(dcmerr.INVALID, "dicom: VR mismatch",
			"%s is not a floating-point VR", vr)
	}
	cp := make([]float64, len(values))
	copy(cp, values)
	return Value{kind: ValueFloats, floats: cp, floatWidth: vr.ElementWidth()}, nil
}

// newBinaryValueAdopt implements the ownership-adopting half of
// set_binary: raw becomes part of the Value without copying. The caller
// must not retain or mutate raw afterwards.
func newBinaryValueAdopt(vr VR, raw []byte) (Value, *dcmerr.Error) {
	if vr.Category() != CategoryBinary {
		return Value{}, dcmerr.New(dcmerr.INVALID, "dicom: VR mismatch",
			"%s is not a binary VR", vr)
	}
	return Value{kind: ValueBinary, binary: raw}, nil
}

// newBinaryValueCopy implements the copying half of set_binary: godicom
// never retains the caller's slice.
func newBinaryValueCopy(vr VR, raw []byte) (Value, *dcmerr.Error) {
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return newBinaryValueAdopt(vr, cp)
}

// newSequenceValue implements set_sequence: vr must be SQ, and seq is
// adopted (the caller must not mutate it through another reference).
func newSequenceValue(vr VR, seq *Sequence) (Value, *dcmerr.Error) {
	if vr != SQ {
		return Value{}, dcmerr.New(dcmerr.INVALID, "dicom: VR mismatch",
			"%s is not SQ", vr)
	}
	return Value{kind: ValueSequence, sequence: seq}, nil
}

// GetString implements get_value_string: index selects which of a
// multi-valued string element's components to return.
func (v Value) GetString(index int) (string, *dcmerr.Error) {
	if v.kind != ValueStrings {
		return "", dcmerr.New(dcmerr.INVALID, "dicom: wrong value kind", "value is not a string list")
	}
	if index < 0 || index >= len(v.strings) {
		return "", dcmerr.New(dcmerr.INVALID, "dicom: index out of range", "%d not in [0,%d)", index, len(v.strings))
	}
	return v.strings[index], nil
}

// Strings returns every string in a StringList value.
func (v Value) Strings() ([]string, *dcmerr.Error) {
	if v.kind != ValueStrings {
		return nil, dcmerr.New(dcmerr.INVALID, "dicom: wrong value kind", "value is not a string list")
	}
	return v.strings, nil
}

// GetInteger implements get_value_integer: any stored integer width is
// widened to a signed 64-bit value.
func (v Value) GetInteger(index int) (int64, *dcmerr.Error) {
	if v.kind != ValueInts {
		return 0, dcmerr.New(dcmerr.INVALID, "dicom: wrong value kind", "value is not an integer array")
	}
	if index < 0 || index >= len(v.ints) {
		return 0, dcmerr.New(dcmerr.INVALID, "dicom: index out of range", "%d not in [0,%d)", index, len(v.ints))
	}
	return v.ints[index], nil
}

// Integers returns every stored integer.
func (v Value) Integers() ([]int64, *dcmerr.Error) {
	if v.kind != ValueInts {
		return nil, dcmerr.New(dcmerr.INVALID, "dicom: wrong value kind", "value is not an integer array")
	}
	return v.ints, nil
}

// GetFloat implements get_value_floatingpoint.
func (v Value) GetFloat(index int) (float64, *dcmerr.Error) {
	if v.kind != ValueFloats {
		return 0, dcmerr.New(dcmerr.INVALID, "dicom: wrong value kind", "value is not a float array")
	}
	if index < 0 || index >= len(v.floats) {
		return 0, dcmerr.New(dcmerr.INVALID, "dicom: index out of range", "%d not in [0,%d)", index, len(v.floats))
	}
	return v.floats[index], nil
}

// GetBinary implements get_value_binary.
func (v Value) GetBinary() ([]byte, *dcmerr.Error) {
	if v.kind != ValueBinary {
		return nil, dcmerr.New(dcmerr.INVALID, "dicom: wrong value kind", "value is not binary")
	}
	return v.binary, nil
}

// GetSequence implements get_value_sequence.
func (v Value) GetSequence() (*Sequence, *dcmerr.Error) {
	if v.kind != ValueSequence {
		return nil, dcmerr.New(dcmerr.INVALID, "dicom: wrong value kind", "value is not a sequence")
	}
	return v.sequence, nil
}

// clone deep-copies v, recursing into a nested Sequence's own DataSet tree.
func (v Value) clone() Value {
	cp := v
	switch v.kind {
	case ValueStrings:
		cp.strings = append([]string(nil), v.strings...)
	case ValueInts:
		cp.ints = append([]int64(nil), v.ints...)
	case ValueFloats:
		cp.floats = append([]float64(nil), v.floats...)
	case ValueBinary:
		cp.binary = append([]byte(nil), v.binary...)
	case ValueSequence:
		if v.sequence != nil {
			cloned := v.sequence.clone()
			cp.sequence = &cloned
		}
	}
	return cp
}

// render is the truncated single-line rendering used by Element.Print.
func (v Value) render() string {
	const maxLen = 64
	var s string
	switch v.kind {
	case ValueStrings:
		s = strings.Join(v.strings, "\\")
	case ValueInts:
		parts := make([]string, len(v.ints))
		for i, n := range v.ints {
			parts[i] = fmt.Sprintf("%d", n)
		}
		s = strings.Join(parts, "\\")
	case ValueFloats:
		parts := make([]string, len(v.floats))
		for i, f := range v.floats {
			parts[i] = fmt.Sprintf("%g", f)
		}
		s = strings.Join(parts, "\\")
	case ValueBinary:
		s = fmt.Sprintf("<%d bytes>", len(v.binary))
	case ValueSequence:
		n := 0
		if v.sequence != nil {
			n = v.sequence.Count()
		}
		s = fmt.Sprintf("<sequence, %d item(s)>", n)
	default:
		s = "<none>"
	}
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}
