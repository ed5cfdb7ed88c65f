// Package image reads and writes the 40-byte-header .tko container format
// described in §3/§4.7/§8: a fixed header followed by the code words and
// data doublewords it describes. It plays the role the teacher's loader
// package plays for ELF-ish ARM binaries, but Tinker's container has no
// sections beyond the two fixed regions, so one flat struct replaces the
// teacher's section-table walk.
package image

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderSize is the fixed on-disk header length in bytes.
	HeaderSize = 40

	// CodeBegin and DataBegin are the two fixed region bases every valid
	// image must declare (§3).
	CodeBegin = 0x2000
	DataBegin = 0x10000

	// MemorySize is the VM's flat address space (§2, §4.8).
	MemorySize = 512 * 1024

	fileTypeValue = 0
)

// Image is a fully decoded .tko container: the header fields plus the raw
// code and data bytes.
type Image struct {
	CodeBegin uint64
	CodeSize  uint64
	DataBegin uint64
	DataSize  uint64
	Code      []byte // little-endian 4-byte instruction words, CodeSize bytes
	Data      []byte // little-endian 8-byte doublewords, DataSize bytes
}

// Write serializes img into the 40-byte-header + code + data layout of §4.7.
func Write(img Image) ([]byte, error) {
	if img.CodeBegin != CodeBegin {
		return nil, fmt.Errorf("image: code_begin must be 0x%X, got 0x%X", CodeBegin, img.CodeBegin)
	}
	if img.DataBegin != DataBegin {
		return nil, fmt.Errorf("image: data_begin must be 0x%X, got 0x%X", DataBegin, img.DataBegin)
	}
	if img.CodeSize%4 != 0 {
		return nil, fmt.Errorf("image: code_size %d is not a multiple of 4", img.CodeSize)
	}
	if img.DataSize%8 != 0 {
		return nil, fmt.Errorf("image: data_size %d is not a multiple of 8", img.DataSize)
	}
	if uint64(len(img.Code)) != img.CodeSize {
		return nil, fmt.Errorf("image: code buffer length %d does not match code_size %d", len(img.Code), img.CodeSize)
	}
	if uint64(len(img.Data)) != img.DataSize {
		return nil, fmt.Errorf("image: data buffer length %d does not match data_size %d", len(img.Data), img.DataSize)
	}
	if err := checkRegions(img.CodeBegin, img.CodeSize, img.DataBegin, img.DataSize); err != nil {
		return nil, err
	}

	out := make([]byte, HeaderSize+len(img.Code)+len(img.Data))
	binary.LittleEndian.PutUint64(out[0:8], fileTypeValue)
	binary.LittleEndian.PutUint64(out[8:16], img.CodeBegin)
	binary.LittleEndian.PutUint64(out[16:24], img.CodeSize)
	binary.LittleEndian.PutUint64(out[24:32], img.DataBegin)
	binary.LittleEndian.PutUint64(out[32:40], img.DataSize)
	copy(out[HeaderSize:], img.Code)
	copy(out[HeaderSize+len(img.Code):], img.Data)
	return out, nil
}

// Load decodes and validates a .tko container per §8's invariants, returning
// an error naming the first violation found.
func Load(raw []byte) (Image, error) {
	if len(raw) < HeaderSize {
		return Image{}, fmt.Errorf("image: file too short for header (%d bytes)", len(raw))
	}

	fileType := binary.LittleEndian.Uint64(raw[0:8])
	codeBegin := binary.LittleEndian.Uint64(raw[8:16])
	codeSize := binary.LittleEndian.Uint64(raw[16:24])
	dataBegin := binary.LittleEndian.Uint64(raw[24:32])
	dataSize := binary.LittleEndian.Uint64(raw[32:40])

	if fileType != fileTypeValue {
		return Image{}, fmt.Errorf("image: unrecognized file_type %d", fileType)
	}
	if codeBegin != CodeBegin {
		return Image{}, fmt.Errorf("image: code_begin must be 0x%X, got 0x%X", CodeBegin, codeBegin)
	}
	if dataBegin != DataBegin {
		return Image{}, fmt.Errorf("image: data_begin must be 0x%X, got 0x%X", DataBegin, dataBegin)
	}
	if codeSize%4 != 0 {
		return Image{}, fmt.Errorf("image: code_size %d is not a multiple of 4", codeSize)
	}
	if dataSize%8 != 0 {
		return Image{}, fmt.Errorf("image: data_size %d is not a multiple of 8", dataSize)
	}
	if err := checkRegions(codeBegin, codeSize, dataBegin, dataSize); err != nil {
		return Image{}, err
	}

	want := HeaderSize + codeSize + dataSize
	if uint64(len(raw)) != want {
		return Image{}, fmt.Errorf("image: file length %d does not match header-declared %d", len(raw), want)
	}

	code := make([]byte, codeSize)
	copy(code, raw[HeaderSize:HeaderSize+codeSize])
	data := make([]byte, dataSize)
	copy(data, raw[HeaderSize+codeSize:HeaderSize+codeSize+dataSize])

	return Image{
		CodeBegin: codeBegin,
		CodeSize:  codeSize,
		DataBegin: dataBegin,
		DataSize:  dataSize,
		Code:      code,
		Data:      data,
	}, nil
}

// checkRegions enforces the bounds and disjointness invariants of §3: both
// regions must fit inside the flat memory, and when both are nonempty they
// must not overlap.
func checkRegions(codeBegin, codeSize, dataBegin, dataSize uint64) error {
	codeEnd := codeBegin + codeSize
	dataEnd := dataBegin + dataSize

	if codeEnd > MemorySize {
		return fmt.Errorf("image: code region [0x%X,0x%X) exceeds memory size 0x%X", codeBegin, codeEnd, uint64(MemorySize))
	}
	if dataEnd > MemorySize {
		return fmt.Errorf("image: data region [0x%X,0x%X) exceeds memory size 0x%X", dataBegin, dataEnd, uint64(MemorySize))
	}
	if codeSize > 0 && dataSize > 0 {
		if codeBegin < dataEnd && dataBegin < codeEnd {
			return fmt.Errorf("image: code region [0x%X,0x%X) overlaps data region [0x%X,0x%X)", codeBegin, codeEnd, dataBegin, dataEnd)
		}
	}
	return nil
}
