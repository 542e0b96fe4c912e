package dicom

// Frame is the immutable, fully decoded-from-the-container-format (but not
// pixel-decompressed) representation of a single image frame, the value
// Filehandle.ReadFrame hands back. All fields are pure getters' worth of
// plain data; there is no mutation API once constructed.
type Frame struct {
	number int

	rows              int
	columns           int
	samplesPerPixel   int
	bitsAllocated     int
	bitsStored        int
	highBit           int
	pixelRepresentation int
	planarConfiguration int
	photometricInterpretation string
	transferSyntaxUID string

	data []byte
}

// Number returns the 1-based frame number.
func (f *Frame) Number() int { return f.number }

// Rows returns the frame's row count.
func (f *Frame) Rows() int { return f.rows }

// Columns returns the frame's column count.
func (f *Frame) Columns() int { return f.columns }

// SamplesPerPixel returns the number of color/intensity samples per pixel.
func (f *Frame) SamplesPerPixel() int { return f.samplesPerPixel }

// BitsAllocated returns the storage width per sample, in bits.
func (f *Frame) BitsAllocated() int { return f.bitsAllocated }

// BitsStored returns the number of meaningful bits per sample.
func (f *Frame) BitsStored() int { return f.bitsStored }

// HighBit returns the bit position of the most significant stored bit.
func (f *Frame) HighBit() int { return f.highBit }

// PixelRepresentation returns 0 for unsigned, 1 for 2's-complement signed.
func (f *Frame) PixelRepresentation() int { return f.pixelRepresentation }

// PlanarConfiguration returns 0 for interleaved-by-pixel, 1 for
// planar (color-plane-major) sample ordering.
func (f *Frame) PlanarConfiguration() int { return f.planarConfiguration }

// PhotometricInterpretation returns the color model name, e.g. "MONOCHROME2".
func (f *Frame) PhotometricInterpretation() string { return f.photometricInterpretation }

// TransferSyntaxUID returns the transfer syntax Data was encoded with; for
// an encapsulated (compressed) transfer syntax Data is the still-compressed
// fragment concatenation, not raw pixel samples.
func (f *Frame) TransferSyntaxUID() string { return f.transferSyntaxUID }

// Length returns len(Data()).
func (f *Frame) Length() int { return len(f.data) }

// Data returns the frame's raw bytes. The caller must not mutate the
// returned slice; it is the Frame's own owned buffer.
func (f *Frame) Data() []byte { return f.data }
