package dicom

import "testing"

func TestTagString(t *testing.T) {
	tag := Tag{Group: 0x0008, Element: 0x0005}
	if got := tag.String(); got != "(0008,0005)" {
		t.Errorf("String() = %q, want (0008,0005)", got)
	}
}

func TestTagIsPrivate(t *testing.T) {
	if (Tag{Group: 0x0009}).IsPrivate() != true {
		t.Errorf("odd group should be private")
	}
	if (Tag{Group: 0x0008}).IsPrivate() != false {
		t.Errorf("even group should not be private")
	}
}

func TestParseTagStringAcceptsBothForms(t *testing.T) {
	want := Tag{Group: 0x0028, Element: 0x0010}
	for _, s := range []string{"(0028,0010)", "0028,0010"} {
		got, err := ParseTagString(s)
		if err != nil {
			t.Fatalf("ParseTagString(%q): %v", s, err)
		}
		if got != want {
			t.Errorf("ParseTagString(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestParseTagStringRejectsMalformed(t *testing.T) {
	for _, s := range []string{"0028", "zzzz,0010", ""} {
		if _, err := ParseTagString(s); err == nil {
			t.Errorf("ParseTagString(%q) should fail", s)
		}
	}
}

func TestLookupTagKnownEntry(t *testing.T) {
	entry := LookupTag(TagRows)
	if entry.Keyword != "Rows" || entry.VR != US {
		t.Errorf("LookupTag(TagRows) = %+v", entry)
	}
}

func TestLookupTagGenericGroupLength(t *testing.T) {
	entry := LookupTag(Tag{Group: 0x0010, Element: 0x0000})
	if entry.Keyword != "GenericGroupLength" || entry.VR != UL {
		t.Errorf("LookupTag(group-length) = %+v", entry)
	}
}

func TestLookupTagRepeatingGroup(t *testing.T) {
	entry := LookupTag(Tag{Group: 0x60A0, Element: 0x3000})
	if entry.Keyword != "OverlayData" {
		t.Errorf("LookupTag(60A0,3000) = %+v, want OverlayData", entry)
	}
}

func TestLookupTagUnknownFallsBackToUN(t *testing.T) {
	entry := LookupTag(Tag{Group: 0x0009, Element: 0x1234})
	if entry.VR != UN {
		t.Errorf("LookupTag(unknown) = %+v, want UN", entry)
	}
}

func TestDefaultVRMatchesDictionary(t *testing.T) {
	if DefaultVR(TagPixelData) != OW {
		t.Errorf("DefaultVR(TagPixelData) = %v, want OW", DefaultVR(TagPixelData))
	}
}

func TestVRPermitted(t *testing.T) {
	if !VRPermitted(TagPixelData, OB) {
		t.Errorf("VRPermitted(TagPixelData, OB) = false, want true")
	}
	if VRPermitted(TagPixelData, PN) {
		t.Errorf("VRPermitted(TagPixelData, PN) = true, want false")
	}
	if !VRPermitted(Tag{Group: 0x0009, Element: 0x1234}, PN) {
		t.Errorf("VRPermitted for an unknown tag should always be true")
	}
}
