package dicomio

import (
	"io"
	"os"
	"testing"
)

func TestMemorySourceReadAndSeek(t *testing.T) {
	src := NewMemorySource([]byte("hello, world"))
	buf := make([]byte, 5)
	n, err := src.Read(buf)
	if err != nil || n != 5 || string(buf) != "hello" {
		t.Fatalf("Read = %q, %d, %v", buf[:n], n, err)
	}

	pos, err := src.Seek(7, SeekSet)
	if err != nil || pos != 7 {
		t.Fatalf("Seek(7, SeekSet) = %d, %v", pos, err)
	}
	n, err = src.Read(buf)
	if err != nil || string(buf[:n]) != "world" {
		t.Fatalf("Read after seek = %q, %v", buf[:n], err)
	}

	if _, err := src.Seek(0, SeekEnd); err != nil {
		t.Fatalf("Seek(0, SeekEnd) failed: %v", err)
	}
	n, err = src.Read(buf)
	if n != 0 || err != io.EOF {
		t.Fatalf("Read at EOF = %d, %v, want 0, io.EOF", n, err)
	}
}

func TestMemorySourceNegativeSeekFails(t *testing.T) {
	src := NewMemorySource([]byte("abc"))
	if _, err := src.Seek(-1, SeekSet); err == nil {
		t.Fatalf("Seek to negative offset should fail")
	}
}

func TestMemorySourceZeroLengthReadIsNoop(t *testing.T) {
	src := NewMemorySource([]byte("abc"))
	n, err := src.Read(nil)
	if n != 0 || err != nil {
		t.Fatalf("Read(nil) = %d, %v, want 0, nil", n, err)
	}
}

func TestReadFullShortReadIsError(t *testing.T) {
	src := NewMemorySource([]byte("ab"))
	buf := make([]byte, 5)
	if _, err := ReadFull(src, buf); err == nil {
		t.Fatalf("ReadFull past end of source should fail")
	}
}

func TestReadFullExactRead(t *testing.T) {
	src := NewMemorySource([]byte("abcd"))
	buf := make([]byte, 4)
	n, err := ReadFull(src, buf)
	if err != nil || n != 4 || string(buf) != "abcd" {
		t.Fatalf("ReadFull = %q, %d, %v", buf, n, err)
	}
}

func TestCustomSourceDelegatesThroughHandle(t *testing.T) {
	data := []byte("custom")
	pos := 0
	cs := &CustomSource{
		Handle: &pos,
		ReadFn: func(handle interface{}, buf []byte) (int, error) {
			p := handle.(*int)
			n := copy(buf, data[*p:])
			*p += n
			return n, nil
		},
		SeekFn: func(handle interface{}, offset int64, whence Whence) (int64, error) {
			p := handle.(*int)
			*p = int(offset)
			return offset, nil
		},
	}
	buf := make([]byte, 6)
	n, err := cs.Read(buf)
	if err != nil || string(buf[:n]) != "custom" {
		t.Fatalf("CustomSource.Read = %q, %v", buf[:n], err)
	}
	if err := cs.Close(); err != nil {
		t.Fatalf("Close with nil CloseFn should be a no-op, got %v", err)
	}
}

func TestFileSourceRoundTrip(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "dicomio-source-test")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	if _, err := f.Write([]byte("file contents")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f.Close()

	src, derr := OpenFile(f.Name())
	if derr != nil {
		t.Fatalf("OpenFile: %v", derr)
	}
	defer src.Close()

	buf := make([]byte, 4)
	n, err := src.Read(buf)
	if err != nil || string(buf[:n]) != "file" {
		t.Fatalf("Read = %q, %v", buf[:n], err)
	}
}
