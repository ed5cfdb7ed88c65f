package vm

import (
	"bufio"
	"fmt"
	"io"
)

// Tracer appends one line per executed instruction to an underlying
// writer. It is purely observational: attaching one never changes
// register, memory, or pc semantics (§12).
type Tracer struct {
	w      *bufio.Writer
	format string
}

// NewTracer wraps w for buffered per-instruction trace output. numberFormat
// selects the field rendering: "hex" (the tkconfig default) prints
// "0x"-prefixed hexadecimal fields; any other value, including "dec",
// prints plain decimal fields (§10, §12).
func NewTracer(w io.Writer, numberFormat string) *Tracer {
	return &Tracer{w: bufio.NewWriter(w), format: numberFormat}
}

// Record appends one trace line for the instruction at pc.
func (t *Tracer) Record(pc uint64, d decoded) {
	if t.format == "hex" {
		fmt.Fprintf(t.w, "0x%X 0x%X 0x%X 0x%X 0x%X 0x%X\n", pc, d.Opcode, d.Rd, d.Rs, d.Rt, d.Imm12)
		return
	}
	fmt.Fprintf(t.w, "%d %d %d %d %d %d\n", pc, d.Opcode, d.Rd, d.Rs, d.Rt, d.Imm12)
}

// Flush flushes any buffered trace output.
func (t *Tracer) Flush() error {
	return t.w.Flush()
}
