package vm

import (
	"bufio"
	"io"
	"os"

	"github.com/mokshshah/tinker/internal/encoder"
	"github.com/mokshshah/tinker/internal/image"
)

// VM is one Tinker machine: registers, flat memory, and I/O streams. It is
// not safe for concurrent use (§5).
type VM struct {
	Regs [encoder.RegisterCount]uint64
	PC   uint64
	Mem  Memory

	halted bool

	Stdin  io.Reader
	Stdout io.Writer

	tokenReader *bufio.Reader

	Trace *Tracer
}

// New constructs a VM with img loaded and the entry conditions of §4.8:
// pc at code_begin, r31 at memory_size, every other register zero.
func New(img image.Image) *VM {
	v := &VM{
		PC:     img.CodeBegin,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	}
	v.Mem.LoadImage(img)
	v.Regs[encoder.StackPointerReg] = image.MemorySize
	return v
}

// Halted reports whether the VM has executed a halt priv operation.
func (v *VM) Halted() bool { return v.halted }

// Run executes instructions until halt or fault. maxCycles bounds the
// number of instructions executed when nonzero (§10's execution.max_cycles
// diagnostic guard); it never changes fault/halt semantics, only stops a
// runaway program early with a Fault.
func (v *VM) Run(maxCycles uint64) error {
	var cycles uint64
	for !v.halted {
		if maxCycles != 0 && cycles >= maxCycles {
			return newFault("exceeded max_cycles (%d) without halting", maxCycles)
		}
		if err := v.Step(); err != nil {
			return err
		}
		cycles++
	}
	return nil
}
