package dcmerr

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/jcupitt/godicom/dicomlog"
)

func TestNewFormatsMessage(t *testing.T) {
	e := New(PARSE, "dicom: bad tag", "tag %s at offset %d", "(0008,0005)", 132)
	if e.Code != PARSE {
		t.Fatalf("Code = %v, want PARSE", e.Code)
	}
	if !strings.Contains(e.Message, "(0008,0005)") {
		t.Fatalf("Message = %q, want it to mention the tag", e.Message)
	}
	if e.Offset != -1 {
		t.Fatalf("Offset = %d, want -1 before AtOffset", e.Offset)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("short read")
	e := Wrap(cause, IO, "dicomio: read failed", "wanted %d bytes", 4)
	if e.Cause() == nil || e.Cause().Error() != "short read" {
		t.Fatalf("Cause() = %v, want %v", e.Cause(), cause)
	}
}

func TestAtOffsetCopiesWithoutMutatingOriginal(t *testing.T) {
	e := New(PARSE, "dicom: short read", "")
	e2 := e.AtOffset(42)
	if e.Offset != -1 {
		t.Fatalf("original Offset mutated to %d", e.Offset)
	}
	if e2.Offset != 42 {
		t.Fatalf("e2.Offset = %d, want 42", e2.Offset)
	}
}

type fakeTag string

func (f fakeTag) String() string { return string(f) }

func TestWithTagPrependsOutermostFirst(t *testing.T) {
	e := New(PARSE, "dicom: bad length", "")
	e = e.WithTag(fakeTag("(0028,9110)"))
	e = e.WithTag(fakeTag("(5200,9229)"))
	want := "(5200,9229)/(0028,9110)"
	if e.TagPath != want {
		t.Fatalf("TagPath = %q, want %q", e.TagPath, want)
	}
}

func TestErrorStringIncludesTagAndOffset(t *testing.T) {
	e := New(PARSE, "dicom: bad length", "got %d", 5).AtOffset(10).WithTag(fakeTag("(0028,0010)"))
	s := e.Error()
	if !strings.Contains(s, "bad length") || !strings.Contains(s, "(0028,0010)") || !strings.Contains(s, "10") {
		t.Fatalf("Error() = %q missing expected components", s)
	}
}

func TestFirstKeepsEarliestError(t *testing.T) {
	var slot *Error
	slot = First(slot, nil)
	if slot != nil {
		t.Fatalf("First(nil, nil) = %v, want nil", slot)
	}
	first := New(PARSE, "first", "")
	slot = First(slot, first)
	if slot != first {
		t.Fatalf("First did not adopt the first candidate")
	}
	second := New(IO, "second", "")
	slot = First(slot, second)
	if slot != first {
		t.Fatalf("First overwrote an existing error with a later one")
	}
}

func TestNilErrorMethodsAreSafe(t *testing.T) {
	var e *Error
	if e.AtOffset(1) != nil {
		t.Fatalf("AtOffset on nil *Error should return nil")
	}
	if e.WithTag(fakeTag("x")) != nil {
		t.Fatalf("WithTag on nil *Error should return nil")
	}
	if e.Cause() != nil {
		t.Fatalf("Cause on nil *Error should return nil")
	}
}

func TestLogRoutesToErrorLevelAndReturnsReceiver(t *testing.T) {
	origLevel := dicomlog.CurrentLevel()
	defer dicomlog.SetLevel(origLevel)
	dicomlog.SetLevel(dicomlog.ERROR)

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	dicomlog.SetLogger(logger)
	defer dicomlog.SetLogger(logrus.StandardLogger())

	e := New(PARSE, "dicom: bad length", "got %d", 5)
	got := e.Log()
	if got != e {
		t.Fatalf("Log() = %v, want the receiver unchanged", got)
	}
	if !strings.Contains(buf.String(), "bad length") {
		t.Fatalf("Log() did not reach the logging collaborator, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "level=error") {
		t.Fatalf("Log() did not log at ERROR, got %q", buf.String())
	}
}

func TestLogOnNilErrorIsSafe(t *testing.T) {
	var e *Error
	if e.Log() != nil {
		t.Fatalf("Log on nil *Error should return nil")
	}
}

func TestCodeString(t *testing.T) {
	cases := map[Code]string{NOMEM: "NOMEM", INVALID: "INVALID", PARSE: "PARSE", IO: "IO", Code(99): "UNKNOWN"}
	for code, want := range cases {
		if got := code.String(); got != want {
			t.Errorf("Code(%d).String() = %q, want %q", code, got, want)
		}
	}
}
