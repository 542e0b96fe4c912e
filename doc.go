// Package dicom implements the DICOM Part-10 file format: a 128-byte
// preamble, the "DICM" magic, an always-Explicit-VR-Little-Endian File
// Meta group, and a main Data Set encoded per the transfer syntax the
// File Meta names.
//
// Open a file, then read it in stages:
//
//	fh, err := dicom.Open(path)
//	meta, err := fh.ReadFileMeta()
//	ds, err := fh.ReadMetadata()
//	err = fh.ReadPixelData()
//	frame, err := fh.ReadFrame(1)
//
// ReadFileMeta, ReadMetadata and ReadPixelData are idempotent and each runs
// the ones before it when needed; ReadFrame fails unless ReadPixelData has
// already run. DataSet,
// Sequence, and Element model the parsed tree; dicomio and dcmerr are the
// IO and error-carrier collaborators the parser and filehandle build on.
package dicom
