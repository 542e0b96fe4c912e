package dicom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jcupitt/godicom/dcmerr"
)

// Element is one (tag, VR, value) triple, the atomic unit a DataSet holds.
// Length and VM are derived from the stored Value and are not kept as
// independent fields, so they can never drift out of sync with it.
type Element struct {
	Tag   Tag
	VR    VR
	value Value
}

// NewElement builds an empty element of the given tag and VR with no
// value set. Setters below populate it; each fails (leaving the element
// unchanged) if vr is incompatible with the operation.
func NewElement(tag Tag, vr VR) *Element {
	return &Element{Tag: tag, VR: vr}
}

// VM returns the element's current value multiplicity.
func (e *Element) VM() int { return e.value.Len() }

// SetString implements set_string / set_string_multi.
func (e *Element) SetString(values ...string) *dcmerr.Error {
	vm := LookupTag(e.Tag).VM
	v, err := newStringMultiValue(e.VR, vm, values)
	if err != nil {
		return err
	}
	e.value = v
	return nil
}

// SetInteger implements set_integer.
func (e *Element) SetInteger(value int64) *dcmerr.Error {
	v, err := newIntegerValue(e.VR, value)
	if err != nil {
		return err
	}
	e.value = v
	return nil
}

// SetNumericMulti implements set_numeric_multi.
func (e *Element) SetNumericMulti(values ...int64) *dcmerr.Error {
	v, err := newNumericMultiValue(e.VR, values)
	if err != nil {
		return err
	}
	e.value = v
	return nil
}

// SetFloatingPoint implements set_floatingpoint.
func (e *Element) SetFloatingPoint(values ...float64) *dcmerr.Error {
	v, err := newFloatingPointValue(e.VR, values)
	if err != nil {
		return err
	}
	e.value = v
	return nil
}

// SetBinaryAdopt implements the ownership-adopting half of set_binary: raw
// becomes part of the element without copying.
func (e *Element) SetBinaryAdopt(raw []byte) *dcmerr.Error {
	v, err := newBinaryValueAdopt(e.VR, raw)
	if err != nil {
		return err
	}
	e.value = v
	return nil
}

// SetBinaryCopy implements the copying half of set_binary.
func (e *Element) SetBinaryCopy(raw []byte) *dcmerr.Error {
	v, err := newBinaryValueCopy(e.VR, raw)
	if err != nil {
		return err
	}
	e.value = v
	return nil
}

// SetSequence implements set_sequence.
func (e *Element) SetSequence(seq *Sequence) *dcmerr.Error {
	v, err := newSequenceValue(e.VR, seq)
	if err != nil {
		return err
	}
	e.value = v
	return nil
}

// setValue is the parser's untyped path (set_value(raw, len)): it stores a
// Value the parser has already decoded per the element's own VR, without
// re-checking it.
func (e *Element) setValue(v Value) { e.value = v }

// GetValueString implements get_value_string.
func (e *Element) GetValueString(index int) (string, *dcmerr.Error) {
	return e.value.GetString(index)
}

// GetStrings returns every string in a multi-valued string element.
func (e *Element) GetStrings() ([]string, *dcmerr.Error) {
	return e.value.Strings()
}

// GetValueInteger implements get_value_integer, widening to int64. IS
// (Integer String) elements are stored as text per their wire encoding;
// GetValueInteger parses that text rather than requiring callers to know
// which numeric VRs are binary and which are digit strings.
func (e *Element) GetValueInteger(index int) (int64, *dcmerr.Error) {
	if e.VR == IS {
		s, err := e.value.GetString(index)
		if err != nil {
			return 0, err
		}
		n, perr := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if perr != nil {
			return 0, dcmerr.New(dcmerr.PARSE, "dicom: bad integer string", "IS value %q: %v", s, perr)
		}
		return n, nil
	}
	return e.value.GetInteger(index)
}

// GetValueFloatingPoint implements get_value_floatingpoint. DS (Decimal
// String) elements are stored as text and parsed the same way.
func (e *Element) GetValueFloatingPoint(index int) (float64, *dcmerr.Error) {
	if e.VR == DS {
		s, err := e.value.GetString(index)
		if err != nil {
			return 0, err
		}
		f, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if perr != nil {
			return 0, dcmerr.New(dcmerr.PARSE, "dicom: bad decimal string", "DS value %q: %v", s, perr)
		}
		return f, nil
	}
	return e.value.GetFloat(index)
}

// GetValueBinary implements get_value_binary.
func (e *Element) GetValueBinary() ([]byte, *dcmerr.Error) {
	return e.value.GetBinary()
}

// GetValueSequence implements get_value_sequence.
func (e *Element) GetValueSequence() (*Sequence, *dcmerr.Error) {
	return e.value.GetSequence()
}

// Clone performs a deep copy, including any nested Sequence sub-tree.
func (e *Element) Clone() *Element {
	return &Element{Tag: e.Tag, VR: e.VR, value: e.value.clone()}
}

// Print renders one diagnostic line per element, indent-prefixed, recursing
// into nested Sequence items with indent+2.
func (e *Element) Print(w *strings.Builder, indent int) {
	pad := strings.Repeat(" ", indent)
	entry := LookupTag(e.Tag)
	fmt.Fprintf(w, "%s%s %s %s vm=%d %s\n", pad, e.Tag.String(), e.VR, entry.Keyword, e.VM(), e.value.render())
	if e.VR == SQ {
		if seq, err := e.value.GetSequence(); err == nil && seq != nil {
			seq.print(w, indent+2)
		}
	}
}
