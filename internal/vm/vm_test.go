package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mokshshah/tinker/internal/encoder"
	"github.com/mokshshah/tinker/internal/image"
)

func wordLE(w uint32) []byte {
	return []byte{byte(w), byte(w >> 8), byte(w >> 16), byte(w >> 24)}
}

// packR/packI/packP mirror the unexported bit-packing in internal/encoder
// (opcode bits 27-31, rd bits 22-26, rs bits 17-21, rt bits 12-16, imm12
// bits 0-11) so these tests can build raw instruction words directly.
func packR(op, rd, rs, rt uint32) uint32 {
	return (op&0x1F)<<27 | (rd&0x1F)<<22 | (rs&0x1F)<<17 | (rt&0x1F)<<12
}

func packI(op, rd, imm12 uint32) uint32 {
	return (op&0x1F)<<27 | (rd&0x1F)<<22 | (imm12 & 0xFFF)
}

func packP(op, rd, rs, rt, imm12 uint32) uint32 {
	return (op&0x1F)<<27 | (rd&0x1F)<<22 | (rs&0x1F)<<17 | (rt&0x1F)<<12 | (imm12 & 0xFFF)
}

func newTestVM(t *testing.T, code []byte) *VM {
	t.Helper()
	img := image.Image{
		CodeBegin: image.CodeBegin,
		CodeSize:  uint64(len(code)),
		DataBegin: image.DataBegin,
		DataSize:  0,
		Code:      code,
		Data:      nil,
	}
	return New(img)
}

func TestHaltStopsExecution(t *testing.T) {
	code := wordLE(packR(encoder.OpPriv, 0, 0, 0)) // priv r0,r0,r0,0 == halt
	v := newTestVM(t, code)
	if err := v.Run(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Halted() {
		t.Fatalf("expected halted VM")
	}
}

func TestIllegalOpcodeFaults(t *testing.T) {
	code := wordLE(0x1F << 27) // opcode 0x1F is unassigned
	v := newTestVM(t, code)
	if err := v.Run(0); err == nil {
		t.Fatalf("expected fault for illegal opcode")
	}
}

func TestIntegerDivideByZeroFaults(t *testing.T) {
	code := append(wordLE(packR(encoder.OpDiv, 1, 2, 3)), wordLE(packR(encoder.OpPriv, 0, 0, 0))...)
	v := newTestVM(t, code)
	v.Regs[2] = 10
	v.Regs[3] = 0
	if err := v.Run(0); err == nil {
		t.Fatalf("expected divide-by-zero fault")
	}
}

func TestAddiWraps(t *testing.T) {
	code := append(wordLE(packI(encoder.OpAddI, 1, 5)), wordLE(packR(encoder.OpPriv, 0, 0, 0))...)
	v := newTestVM(t, code)
	v.Regs[1] = 0xFFFFFFFFFFFFFFFE // -2
	if err := v.Run(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Regs[1] != 3 {
		t.Fatalf("got %d, want 3", v.Regs[1])
	}
}

func TestMovImmPreservesHighBits(t *testing.T) {
	code := append(wordLE(packI(encoder.OpMovImm, 1, 0x0AB)), wordLE(packR(encoder.OpPriv, 0, 0, 0))...)
	v := newTestVM(t, code)
	v.Regs[1] = 0xFFFFFFFFFFFFF000
	if err := v.Run(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Regs[1] != 0xFFFFFFFFFFFFF0AB {
		t.Fatalf("got 0x%X, want 0xFFFFFFFFFFFFF0AB", v.Regs[1])
	}
}

func TestCallReturnRoundTrip(t *testing.T) {
	// call r2 ; (never reached) ; target: return
	code := append(wordLE(packR(encoder.OpCall, 2, 0, 0)), wordLE(packR(encoder.OpPriv, 0, 0, 0))...)
	code = append(code, wordLE(packR(encoder.OpReturn, 0, 0, 0))...)

	v := newTestVM(t, code)
	v.Regs[2] = image.CodeBegin + 8 // target: the return instruction

	if err := v.Step(); err != nil { // execute call
		t.Fatalf("call failed: %v", err)
	}
	if v.PC != image.CodeBegin+8 {
		t.Fatalf("got pc 0x%X, want 0x%X", v.PC, image.CodeBegin+8)
	}
	if err := v.Step(); err != nil { // execute return
		t.Fatalf("return failed: %v", err)
	}
	if v.PC != image.CodeBegin+4 {
		t.Fatalf("got pc 0x%X, want 0x%X (instruction after call)", v.PC, image.CodeBegin+4)
	}
}

func TestPrivOutputPort1WritesDecimalLine(t *testing.T) {
	code := append(wordLE(packP(encoder.OpPriv, 1, 2, 0, 4)), wordLE(packR(encoder.OpPriv, 0, 0, 0))...)
	v := newTestVM(t, code)
	v.Regs[1] = 1 // port
	v.Regs[2] = 42
	var out bytes.Buffer
	v.Stdout = &out
	if err := v.Run(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "42\n" {
		t.Fatalf("got %q, want \"42\\n\"", out.String())
	}
}

func TestPrivInputPort0ReadsToken(t *testing.T) {
	code := append(wordLE(packP(encoder.OpPriv, 1, 0, 0, 3)), wordLE(packR(encoder.OpPriv, 0, 0, 0))...)
	v := newTestVM(t, code)
	v.Stdin = strings.NewReader("123\n")
	if err := v.Run(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Regs[1] != 123 {
		t.Fatalf("got %d, want 123", v.Regs[1])
	}
}
