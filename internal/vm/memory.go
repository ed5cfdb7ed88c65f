// Package vm implements the Tinker virtual machine: a flat 512 KiB memory,
// a 32-register file, and the fetch-decode-execute loop of §4.8. It plays
// the role the teacher's vm package plays for the ARM CPU, generalized
// from ARM's many addressing modes to Tinker's single fixed instruction
// word and flat memory model.
package vm

import (
	"encoding/binary"
	"fmt"

	"github.com/mokshshah/tinker/internal/image"
)

// Fault reports an out-of-band VM termination condition (§7's "VM runtime"
// category): illegal opcode, out-of-bounds access, or divide by zero.
type Fault struct {
	Reason string
}

func (f *Fault) Error() string { return f.Reason }

func newFault(format string, args ...any) *Fault {
	return &Fault{Reason: fmt.Sprintf(format, args...)}
}

// Memory is the VM's flat, zero-filled address space (§2, §4.8).
type Memory struct {
	bytes [image.MemorySize]byte
}

// LoadImage copies img's code and data bytes into memory at their declared
// bases, per §4.8's entry conditions.
func (m *Memory) LoadImage(img image.Image) {
	copy(m.bytes[img.CodeBegin:img.CodeBegin+img.CodeSize], img.Code)
	copy(m.bytes[img.DataBegin:img.DataBegin+img.DataSize], img.Data)
}

func (m *Memory) checkRange(addr, size uint64) error {
	if addr+size > uint64(len(m.bytes)) || addr+size < addr {
		return newFault("memory access out of bounds at address 0x%X (size %d)", addr, size)
	}
	return nil
}

// FetchWord reads the 4-byte little-endian instruction word at addr.
func (m *Memory) FetchWord(addr uint64) (uint32, error) {
	if err := m.checkRange(addr, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.bytes[addr : addr+4]), nil
}

// ReadDoubleword reads the 8-byte little-endian value at addr.
func (m *Memory) ReadDoubleword(addr uint64) (uint64, error) {
	if err := m.checkRange(addr, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(m.bytes[addr : addr+8]), nil
}

// WriteDoubleword writes the 8-byte little-endian value v at addr.
func (m *Memory) WriteDoubleword(addr, v uint64) error {
	if err := m.checkRange(addr, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.bytes[addr:addr+8], v)
	return nil
}
