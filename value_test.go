package dicom

import "testing"

func TestNewStringValueRejectsNonStringVR(t *testing.T) {
	if _, err := newStringValue(US, []string{"1"}); err == nil {
		t.Fatalf("newStringValue(US, ...) should fail: US is not a string VR")
	}
}

func TestNewStringMultiValueEnforcesVM(t *testing.T) {
	if _, err := newStringMultiValue(UI, "1", []string{"a", "b"}); err == nil {
		t.Fatalf("VM %q should reject multiple values", "1")
	}
	if _, err := newStringMultiValue(CS, "1-n", []string{"a", "b"}); err != nil {
		t.Fatalf("VM %q should allow multiple values: %v", "1-n", err)
	}
}

func TestIntegerValueRoundTrip(t *testing.T) {
	v, err := newIntegerValue(US, 512)
	if err != nil {
		t.Fatalf("newIntegerValue: %v", err)
	}
	got, err := v.GetInteger(0)
	if err != nil || got != 512 {
		t.Fatalf("GetInteger(0) = %d, %v, want 512", got, err)
	}
}

func TestNumericMultiValue(t *testing.T) {
	v, err := newNumericMultiValue(US, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("newNumericMultiValue: %v", err)
	}
	if v.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", v.Len())
	}
	all, err := v.Integers()
	if err != nil || len(all) != 3 {
		t.Fatalf("Integers() = %v, %v", all, err)
	}
}

func TestFloatingPointValue(t *testing.T) {
	v, err := newFloatingPointValue(FD, []float64{1.5, 2.5})
	if err != nil {
		t.Fatalf("newFloatingPointValue: %v", err)
	}
	got, err := v.GetFloat(1)
	if err != nil || got != 2.5 {
		t.Fatalf("GetFloat(1) = %v, %v, want 2.5", got, err)
	}
}

func TestBinaryValueAdoptVsCopy(t *testing.T) {
	raw := []byte{1, 2, 3}
	adopted, err := newBinaryValueAdopt(OB, raw)
	if err != nil {
		t.Fatalf("newBinaryValueAdopt: %v", err)
	}
	copied, err := newBinaryValueCopy(OB, raw)
	if err != nil {
		t.Fatalf("newBinaryValueCopy: %v", err)
	}
	raw[0] = 99
	adoptedBytes, _ := adopted.GetBinary()
	copiedBytes, _ := copied.GetBinary()
	if adoptedBytes[0] != 99 {
		t.Fatalf("adopted value should alias the caller's slice")
	}
	if copiedBytes[0] != 1 {
		t.Fatalf("copied value should not be affected by mutating the source slice")
	}
}

func TestSequenceValueRequiresSQ(t *testing.T) {
	if _, err := newSequenceValue(UI, NewSequence()); err == nil {
		t.Fatalf("newSequenceValue(UI, ...) should fail: UI is not SQ")
	}
}

func TestValueCloneIsDeepForBinary(t *testing.T) {
	raw := []byte{1, 2, 3}
	v, _ := newBinaryValueAdopt(OB, raw)
	cp := v.clone()
	raw[0] = 99
	cpBytes, _ := cp.GetBinary()
	if cpBytes[0] != 1 {
		t.Fatalf("clone() should deep-copy binary payloads")
	}
}

func TestValueCloneIsDeepForSequence(t *testing.T) {
	seq := NewSequence()
	item := NewDataSet()
	e := NewElement(Tag{Group: 0x0010, Element: 0x0010}, PN)
	if err := e.SetString("Doe^Jane"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	if err := item.Insert(e); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := seq.Append(item); err != nil {
		t.Fatalf("Append: %v", err)
	}
	v, err := newSequenceValue(SQ, seq)
	if err != nil {
		t.Fatalf("newSequenceValue: %v", err)
	}
	cp := v.clone()
	cloned, _ := cp.GetSequence()
	clonedItem, _ := cloned.Get(0)
	clonedElem := clonedItem.Get(e.Tag)
	if err := clonedElem.SetString("Smith^John"); err != nil {
		t.Fatalf("SetString on clone: %v", err)
	}
	originalName, _ := e.GetValueString(0)
	if originalName != "Doe^Jane" {
		t.Fatalf("mutating a clone's nested element affected the original: %q", originalName)
	}
}

func TestGetWrongKindIsError(t *testing.T) {
	v, _ := newIntegerValue(US, 1)
	if _, err := v.GetString(0); err == nil {
		t.Fatalf("GetString on an integer value should fail")
	}
}

func TestRenderTruncatesLongStrings(t *testing.T) {
	long := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		long = append(long, "xx")
	}
	v, err := newStringValue(LO, long)
	if err != nil {
		t.Fatalf("newStringValue: %v", err)
	}
	rendered := v.render()
	if len(rendered) > 67 {
		t.Fatalf("render() = %d bytes, want truncated to ~64 plus ellipsis", len(rendered))
	}
}
