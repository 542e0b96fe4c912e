package dicom

import "testing"

func TestParseVRRoundTrips(t *testing.T) {
	for _, name := range []string{"AE", "CS", "OB", "SQ", "US", "UN"} {
		vr := ParseVR(name)
		if vr == ERROR {
			t.Errorf("ParseVR(%q) = ERROR, want a recognized VR", name)
			continue
		}
		if vr.String() != name {
			t.Errorf("ParseVR(%q).String() = %q", name, vr.String())
		}
	}
}

func TestParseVRUnknownMnemonic(t *testing.T) {
	if vr := ParseVR("ZZ"); vr != ERROR {
		t.Errorf("ParseVR(\"ZZ\") = %v, want ERROR", vr)
	}
}

func TestCategoryClassifiesTextVRsAsStrings(t *testing.T) {
	for _, vr := range []VR{IS, DS, CS, LO, PN, UI} {
		if vr.Category() != CategoryString {
			t.Errorf("%s.Category() = %v, want CategoryString", vr, vr.Category())
		}
	}
}

func TestCategoryClassifiesNumericVRs(t *testing.T) {
	for _, vr := range []VR{US, SS, SL, UL, AT} {
		if vr.Category() != CategoryInteger {
			t.Errorf("%s.Category() = %v, want CategoryInteger", vr, vr.Category())
		}
	}
	for _, vr := range []VR{FL, FD} {
		if vr.Category() != CategoryFloat {
			t.Errorf("%s.Category() = %v, want CategoryFloat", vr, vr.Category())
		}
	}
}

func TestHasLongExplicitLength(t *testing.T) {
	for _, vr := range []VR{OB, OW, SQ, UN, UT} {
		if !vr.HasLongExplicitLength() {
			t.Errorf("%s.HasLongExplicitLength() = false, want true", vr)
		}
	}
	for _, vr := range []VR{CS, US, SS} {
		if vr.HasLongExplicitLength() {
			t.Errorf("%s.HasLongExplicitLength() = true, want false", vr)
		}
	}
}

func TestAllowsUndefinedLength(t *testing.T) {
	for _, vr := range []VR{OB, OW, SQ, UN, UT} {
		if !vr.AllowsUndefinedLength() {
			t.Errorf("%s.AllowsUndefinedLength() = false, want true", vr)
		}
	}
	if US.AllowsUndefinedLength() {
		t.Errorf("US.AllowsUndefinedLength() = true, want false")
	}
}

func TestElementWidth(t *testing.T) {
	cases := map[VR]int{US: 2, UL: 4, FD: 8, OB: 1, SQ: 0, CS: 1}
	for vr, want := range cases {
		if got := vr.ElementWidth(); got != want {
			t.Errorf("%s.ElementWidth() = %d, want %d", vr, got, want)
		}
	}
}

func TestIsSignedExcludesIS(t *testing.T) {
	if IS.IsSigned() {
		t.Errorf("IS.IsSigned() = true, want false: IS is text, not binary integer")
	}
	if !SS.IsSigned() {
		t.Errorf("SS.IsSigned() = false, want true")
	}
}
