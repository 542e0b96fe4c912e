package dicom

import (
	"strings"
	"testing"
)

func TestElementSetAndGetString(t *testing.T) {
	e := NewElement(Tag{Group: 0x0010, Element: 0x0010}, PN)
	if err := e.SetString("Doe^Jane"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	got, err := e.GetValueString(0)
	if err != nil || got != "Doe^Jane" {
		t.Fatalf("GetValueString(0) = %q, %v", got, err)
	}
	if e.VM() != 1 {
		t.Fatalf("VM() = %d, want 1", e.VM())
	}
}

func TestElementGetValueIntegerParsesIS(t *testing.T) {
	e := NewElement(TagNumberOfFrames, IS)
	if err := e.SetString("12"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	got, err := e.GetValueInteger(0)
	if err != nil || got != 12 {
		t.Fatalf("GetValueInteger(0) = %d, %v, want 12", got, err)
	}
}

func TestElementGetValueIntegerRejectsMalformedIS(t *testing.T) {
	e := NewElement(TagNumberOfFrames, IS)
	if err := e.SetString("not-a-number"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	if _, err := e.GetValueInteger(0); err == nil {
		t.Fatalf("GetValueInteger should fail on a malformed IS string")
	}
}

func TestElementGetValueFloatingPointParsesDS(t *testing.T) {
	e := NewElement(Tag{Group: 0x0028, Element: 0x0030}, DS)
	if err := e.SetString("1.5", "2.5"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	got, err := e.GetValueFloatingPoint(1)
	if err != nil || got != 2.5 {
		t.Fatalf("GetValueFloatingPoint(1) = %v, %v, want 2.5", got, err)
	}
}

func TestElementSetBinaryAdoptVsCopy(t *testing.T) {
	raw := []byte{9, 9, 9}
	e := NewElement(Tag{Group: 0x0002, Element: 0x0001}, OB)
	if err := e.SetBinaryCopy(raw); err != nil {
		t.Fatalf("SetBinaryCopy: %v", err)
	}
	raw[0] = 1
	got, err := e.GetValueBinary()
	if err != nil || got[0] != 9 {
		t.Fatalf("SetBinaryCopy should not alias the caller's slice, got %v", got)
	}
}

func TestElementSetSequenceAndClone(t *testing.T) {
	e := NewElement(TagPerFrameFunctionalGroupSequence, SQ)
	seq := NewSequence()
	if err := seq.Append(NewDataSet()); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := e.SetSequence(seq); err != nil {
		t.Fatalf("SetSequence: %v", err)
	}
	cloned := e.Clone()
	clonedSeq, err := cloned.GetValueSequence()
	if err != nil || clonedSeq.Count() != 1 {
		t.Fatalf("cloned sequence = %v, %v, want 1 item", clonedSeq, err)
	}
	if err := clonedSeq.Append(NewDataSet()); err != nil {
		t.Fatalf("Append to clone: %v", err)
	}
	originalSeq, _ := e.GetValueSequence()
	if originalSeq.Count() != 1 {
		t.Fatalf("mutating the clone's sequence affected the original, Count() = %d", originalSeq.Count())
	}
}

func TestElementPrintIncludesTagAndKeyword(t *testing.T) {
	e := NewElement(TagRows, US)
	if err := e.SetInteger(512); err != nil {
		t.Fatalf("SetInteger: %v", err)
	}
	var b strings.Builder
	e.Print(&b, 0)
	out := b.String()
	if !strings.Contains(out, "Rows") || !strings.Contains(out, "(0028,0010)") {
		t.Fatalf("Print output = %q, missing expected components", out)
	}
}
