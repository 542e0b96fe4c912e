package dicom

import (
	"sort"
	"strings"

	"github.com/jcupitt/godicom/dcmerr"
)

// DataSet is an ordered collection of Elements keyed by Tag. Insertion
// order is preserved for Foreach; ascending tag order is only materialized
// on demand by CopyTags. A DataSet starts mutable and transitions
// one-way to locked via Lock, after which Insert and Remove fail.
type DataSet struct {
	order  []Tag
	byTag  map[Tag]*Element
	locked bool
}

// NewDataSet returns an empty, mutable DataSet.
func NewDataSet() *DataSet {
	return &DataSet{byTag: make(map[Tag]*Element)}
}

// Lock transitions the DataSet to the locked state. Idempotent.
func (d *DataSet) Lock() { d.locked = true }

// IsLocked reports whether Insert/Remove are currently rejected.
func (d *DataSet) IsLocked() bool { return d.locked }

// Insert adopts element into the set, replacing any existing element with
// the same tag while preserving that tag's original position in insertion
// order. Fails on a locked DataSet.
func (d *DataSet) Insert(element *Element) *dcmerr.Error {
	if d.locked {
		return dcmerr.New(dcmerr.INVALID, "dicom: dataset locked", "cannot insert %s into a locked dataset", element.Tag)
	}
	if _, exists := d.byTag[element.Tag]; !exists {
		d.order = append(d.order, element.Tag)
	}
	d.byTag[element.Tag] = element
	return nil
}

// Remove deletes the element with the given tag, if present. Fails on a
// locked DataSet.
func (d *DataSet) Remove(tag Tag) *dcmerr.Error {
	if d.locked {
		return dcmerr.New(dcmerr.INVALID, "dicom: dataset locked", "cannot remove %s from a locked dataset", tag)
	}
	if _, exists := d.byTag[tag]; !exists {
		return nil
	}
	delete(d.byTag, tag)
	for i, t := range d.order {
		if t == tag {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a borrowed pointer to the element with the given tag, or nil.
func (d *DataSet) Get(tag Tag) *Element {
	return d.byTag[tag]
}

// Contains reports whether tag is present.
func (d *DataSet) Contains(tag Tag) bool {
	_, ok := d.byTag[tag]
	return ok
}

// GetClone returns an owned deep copy of the element with the given tag,
// or nil if absent.
func (d *DataSet) GetClone(tag Tag) *Element {
	e, ok := d.byTag[tag]
	if !ok {
		return nil
	}
	return e.Clone()
}

// Count returns the number of elements in the set.
func (d *DataSet) Count() int { return len(d.order) }

// CopyTags fills out, which must have length equal to Count(), with every
// tag in ascending numeric order.
func (d *DataSet) CopyTags(out []Tag) *dcmerr.Error {
	if len(out) != len(d.order) {
		return dcmerr.New(dcmerr.INVALID, "dicom: size mismatch",
			"CopyTags destination has length %d, dataset has %d elements", len(out), len(d.order))
	}
	sorted := append([]Tag(nil), d.order...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Group != sorted[j].Group {
			return sorted[i].Group < sorted[j].Group
		}
		return sorted[i].Element < sorted[j].Element
	})
	copy(out, sorted)
	return nil
}

// Foreach calls fn once per element, in insertion order. Stops early if fn
// returns a non-nil error, which Foreach then returns.
func (d *DataSet) Foreach(fn func(*Element) *dcmerr.Error) *dcmerr.Error {
	for _, tag := range d.order {
		if err := fn(d.byTag[tag]); err != nil {
			return err
		}
	}
	return nil
}

// Clone deep-copies the DataSet, including every element's nested value.
// The clone starts unlocked regardless of the source's lock state.
func (d *DataSet) Clone() *DataSet {
	cp := NewDataSet()
	cp.order = append([]Tag(nil), d.order...)
	cp.byTag = make(map[Tag]*Element, len(d.byTag))
	for tag, e := range d.byTag {
		cp.byTag[tag] = e.Clone()
	}
	return cp
}

// Print renders every element, one per line, indent-prefixed, in
// insertion order.
func (d *DataSet) Print(w *strings.Builder, indent int) {
	for _, tag := range d.order {
		d.byTag[tag].Print(w, indent)
	}
}

// String renders the DataSet for debugging via the diagnostic Print form.
func (d *DataSet) String() string {
	var b strings.Builder
	d.Print(&b, 0)
	return b.String()
}
