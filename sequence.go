package dicom

import (
	"strconv"
	"strings"

	"github.com/jcupitt/godicom/dcmerr"
)

// Sequence is an ordered list of DataSet items, the value an SQ element
// carries. Like DataSet it starts mutable and transitions one-way to
// locked via Lock.
type Sequence struct {
	items  []*DataSet
	locked bool
}

// NewSequence returns an empty, mutable Sequence.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Lock transitions the Sequence to the locked state. Idempotent.
func (s *Sequence) Lock() { s.locked = true }

// IsLocked reports whether Append/Remove are currently rejected.
func (s *Sequence) IsLocked() bool { return s.locked }

// Append adopts item as the new last element of the sequence. Fails on a
// locked Sequence.
func (s *Sequence) Append(item *DataSet) *dcmerr.Error {
	if s.locked {
		return dcmerr.New(dcmerr.INVALID, "dicom: sequence locked", "cannot append to a locked sequence")
	}
	s.items = append(s.items, item)
	return nil
}

// Get returns a borrowed pointer to item i, or an error if out of range.
func (s *Sequence) Get(i int) (*DataSet, *dcmerr.Error) {
	if i < 0 || i >= len(s.items) {
		return nil, dcmerr.New(dcmerr.INVALID, "dicom: index out of range", "%d not in [0,%d)", i, len(s.items))
	}
	return s.items[i], nil
}

// Remove deletes item i. Fails on a locked Sequence or an out-of-range index.
func (s *Sequence) Remove(i int) *dcmerr.Error {
	if s.locked {
		return dcmerr.New(dcmerr.INVALID, "dicom: sequence locked", "cannot remove from a locked sequence")
	}
	if i < 0 || i >= len(s.items) {
		return dcmerr.New(dcmerr.INVALID, "dicom: index out of range", "%d not in [0,%d)", i, len(s.items))
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

// Count returns the number of items.
func (s *Sequence) Count() int { return len(s.items) }

// Foreach calls fn once per item, in order. Stops early if fn returns a
// non-nil error, which Foreach then returns.
func (s *Sequence) Foreach(fn func(int, *DataSet) *dcmerr.Error) *dcmerr.Error {
	for i, item := range s.items {
		if err := fn(i, item); err != nil {
			return err
		}
	}
	return nil
}

// clone deep-copies the sequence and every item's DataSet sub-tree. The
// clone starts unlocked.
func (s *Sequence) clone() Sequence {
	cp := Sequence{items: make([]*DataSet, len(s.items))}
	for i, item := range s.items {
		cp.items[i] = item.Clone()
	}
	return cp
}

func (s *Sequence) print(w *strings.Builder, indent int) {
	for i, item := range s.items {
		pad := strings.Repeat(" ", indent)
		w.WriteString(pad)
		w.WriteString("item ")
		w.WriteString(strconv.Itoa(i))
		w.WriteString("\n")
		item.Print(w, indent+2)
	}
}
