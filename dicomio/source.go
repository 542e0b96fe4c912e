// Package dicomio is the pull-based, seekable byte source the stream parser
// and filehandle consume. It never assumes the underlying storage is
// memory-mapped: everything goes through Read/Seek, matching the design's
// IO abstraction (C2) and its vtable-polymorphism redesign note — a Go
// interface stands in for the original's opaque-pointer-plus-vtable, with
// concrete Source implementations for a file, an in-memory buffer, and a
// caller-supplied callback set.
package dicomio

import (
	"io"
	"os"

	"github.com/jcupitt/godicom/dcmerr"
)

// Whence selects the reference point for Seek, mirroring os.File's SEEK_*
// constants without depending on the os package's untyped ints.
type Whence int

const (
	SeekSet     Whence = 0
	SeekCurrent Whence = 1
	SeekEnd     Whence = 2
)

// Source is the capability interface every concrete byte source implements.
// Read(buf, 0) returns 0 bytes and no error. Seeking to a negative absolute
// offset, or past end-of-stream on a source that can detect its own length,
// fails with an IO error.
type Source interface {
	Read(buf []byte) (n int, err error)
	Seek(offset int64, whence Whence) (int64, error)
	Close() error
}

// fileSource wraps an *os.File.
type fileSource struct {
	f *os.File
}

// OpenFile opens path and returns a Source backed by the file descriptor.
func OpenFile(path string) (Source, *dcmerr.Error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dcmerr.Wrap(err, dcmerr.IO, "dicomio: open failed", "%s", path)
	}
	return &fileSource{f: f}, nil
}

// NewFileSource wraps an already-open *os.File.
func NewFileSource(f *os.File) Source {
	return &fileSource{f: f}
}

func (s *fileSource) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	n, err := s.f.Read(buf)
	if err == io.EOF {
		return n, io.EOF
	}
	return n, err
}

func (s *fileSource) Seek(offset int64, whence Whence) (int64, error) {
	return seekFile(s.f, offset, whence)
}

func seekFile(f *os.File, offset int64, whence Whence) (int64, error) {
	prev, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	pos, err := f.Seek(offset, int(whence))
	if err != nil {
		return 0, err
	}
	if pos < 0 {
		return 0, os.ErrInvalid
	}
	if fi, serr := f.Stat(); serr == nil && fi.Mode().IsRegular() && pos > fi.Size() {
		f.Seek(prev, io.SeekStart)
		return 0, os.ErrInvalid
	}
	return pos, nil
}

func (s *fileSource) Close() error { return s.f.Close() }

// memorySource wraps an in-memory buffer the caller already owns.
type memorySource struct {
	data []byte
	pos  int64
}

// NewMemorySource returns a Source that reads from data without copying it.
func NewMemorySource(data []byte) Source {
	return &memorySource{data: data}
}

func (s *memorySource) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(buf, s.data[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func (s *memorySource) Seek(offset int64, whence Whence) (int64, error) {
	var base int64
	switch whence {
	case SeekSet:
		base = 0
	case SeekCurrent:
		base = s.pos
	case SeekEnd:
		base = int64(len(s.data))
	default:
		return 0, os.ErrInvalid
	}
	newPos := base + offset
	if newPos < 0 || newPos > int64(len(s.data)) {
		return 0, os.ErrInvalid
	}
	s.pos = newPos
	return newPos, nil
}

func (s *memorySource) Close() error { return nil }

// CustomSource adapts a caller-supplied vtable of function fields plus an
// opaque client handle, the idiomatic-Go replacement for a C vtable: the
// Handle field is carried purely for the caller's bookkeeping (e.g. closing
// over a network connection or decompression pipe) and godicom never
// inspects it.
type CustomSource struct {
	Handle interface{}
	ReadFn func(handle interface{}, buf []byte) (int, error)
	SeekFn func(handle interface{}, offset int64, whence Whence) (int64, error)
	CloseFn func(handle interface{}) error
}

func (c *CustomSource) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	return c.ReadFn(c.Handle, buf)
}

func (c *CustomSource) Seek(offset int64, whence Whence) (int64, error) {
	return c.SeekFn(c.Handle, offset, whence)
}

func (c *CustomSource) Close() error {
	if c.CloseFn == nil {
		return nil
	}
	return c.CloseFn(c.Handle)
}

// ReadFull reads exactly len(buf) bytes from src, the way the design's
// "partial reads permitted" contract requires callers to loop until
// satisfied or short on EOF.
func ReadFull(src Source, buf []byte) (int, *dcmerr.Error) {
	n, err := io.ReadFull(readerFunc(src.Read), buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return n, dcmerr.Wrap(err, dcmerr.IO, "dicomio: short read", "wanted %d, got %d", len(buf), n)
	}
	if err == io.ErrUnexpectedEOF {
		return n, dcmerr.Wrap(err, dcmerr.IO, "dicomio: short read", "wanted %d, got %d", len(buf), n)
	}
	return n, nil
}

type readerFunc func([]byte) (int, error)

func (f readerFunc) Read(buf []byte) (int, error) { return f(buf) }
