package dicom

import (
	"testing"

	"github.com/jcupitt/godicom/dcmerr"
)

func TestSequenceAppendAndGet(t *testing.T) {
	seq := NewSequence()
	ds1 := NewDataSet()
	ds2 := NewDataSet()
	if err := seq.Append(ds1); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := seq.Append(ds2); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if seq.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", seq.Count())
	}
	got, err := seq.Get(1)
	if err != nil || got != ds2 {
		t.Fatalf("Get(1) = %v, %v, want ds2", got, err)
	}
}

func TestSequenceGetOutOfRange(t *testing.T) {
	seq := NewSequence()
	if _, err := seq.Get(0); err == nil {
		t.Fatalf("Get(0) on an empty sequence should fail")
	}
}

func TestSequenceRemove(t *testing.T) {
	seq := NewSequence()
	_ = seq.Append(NewDataSet())
	_ = seq.Append(NewDataSet())
	if err := seq.Remove(0); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if seq.Count() != 1 {
		t.Fatalf("Count() after Remove = %d, want 1", seq.Count())
	}
}

func TestSequenceLockRejectsMutation(t *testing.T) {
	seq := NewSequence()
	_ = seq.Append(NewDataSet())
	seq.Lock()
	if err := seq.Append(NewDataSet()); err == nil {
		t.Fatalf("Append on a locked sequence should fail")
	}
	if err := seq.Remove(0); err == nil {
		t.Fatalf("Remove on a locked sequence should fail")
	}
}

func TestSequenceForeachStopsOnError(t *testing.T) {
	seq := NewSequence()
	_ = seq.Append(NewDataSet())
	_ = seq.Append(NewDataSet())
	count := 0
	stopErr := seq.Foreach(func(i int, ds *DataSet) *dcmerr.Error {
		count++
		return dcmerr.New(dcmerr.INVALID, "test: stop", "")
	})
	if stopErr == nil {
		t.Fatalf("Foreach should propagate the callback's error")
	}
	if count != 1 {
		t.Fatalf("Foreach should stop after the first error, count = %d", count)
	}
}
