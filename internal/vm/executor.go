package vm

import (
	"bufio"
	"fmt"
	"math"

	"github.com/mokshshah/tinker/internal/encoder"
)

// Step fetches, decodes, and executes exactly one instruction (§4.8). It
// returns a *Fault on illegal opcode, out-of-bounds memory access, or
// divide by zero; it returns nil (with v.Halted() true) after a halt priv
// operation.
func (v *VM) Step() error {
	word, err := v.Mem.FetchWord(v.PC)
	if err != nil {
		return err
	}
	d := decode(word)

	op, ok := dispatch[d.Opcode]
	if !ok {
		return newFault("illegal instruction: opcode 0x%02X at pc 0x%X", d.Opcode, v.PC)
	}
	if v.Trace != nil {
		v.Trace.Record(v.PC, d)
	}
	return op(v, d)
}

type opFunc func(v *VM, d decoded) error

var dispatch = map[uint32]opFunc{
	encoder.OpAnd:    opBitwise(func(a, b uint64) uint64 { return a & b }),
	encoder.OpOr:     opBitwise(func(a, b uint64) uint64 { return a | b }),
	encoder.OpXor:    opBitwise(func(a, b uint64) uint64 { return a ^ b }),
	encoder.OpNot:    opNot,
	encoder.OpShftR:  opShiftReg(func(v uint64, n uint) uint64 { return v >> n }),
	encoder.OpShftL:  opShiftReg(func(v uint64, n uint) uint64 { return v << n }),
	encoder.OpShftRI: opShiftImm(func(v uint64, n uint) uint64 { return v >> n }),
	encoder.OpShftLI: opShiftImm(func(v uint64, n uint) uint64 { return v << n }),

	encoder.OpBr:     opBr,
	encoder.OpBrrReg: opBrrReg,
	encoder.OpBrrImm: opBrrImm,
	encoder.OpBrnz:   opBrnz,
	encoder.OpCall:   opCall,
	encoder.OpReturn: opReturn,
	encoder.OpBrgt:   opBrgt,
	encoder.OpPriv:   opPriv,

	encoder.OpMovLoad:  opMovLoad,
	encoder.OpMovReg:   opMovReg,
	encoder.OpMovImm:   opMovImm,
	encoder.OpMovStore: opMovStore,

	encoder.OpAddF: opFloat(func(a, b float64) float64 { return a + b }),
	encoder.OpSubF: opFloat(func(a, b float64) float64 { return a - b }),
	encoder.OpMulF: opFloat(func(a, b float64) float64 { return a * b }),
	encoder.OpDivF: opDivF,

	encoder.OpAdd:  opInt(func(a, b int64) int64 { return a + b }),
	encoder.OpSub:  opInt(func(a, b int64) int64 { return a - b }),
	encoder.OpMul:  opInt(func(a, b int64) int64 { return a * b }),
	encoder.OpDiv:  opDiv,
	encoder.OpAddI: opIntImm(func(a, imm int64) int64 { return a + imm }),
	encoder.OpSubI: opIntImm(func(a, imm int64) int64 { return a - imm }),
}

func advance(v *VM) { v.PC += 4 }

func opBitwise(f func(a, b uint64) uint64) opFunc {
	return func(v *VM, d decoded) error {
		v.Regs[d.Rd] = f(v.Regs[d.Rs], v.Regs[d.Rt])
		advance(v)
		return nil
	}
}

func opNot(v *VM, d decoded) error {
	v.Regs[d.Rd] = ^v.Regs[d.Rs]
	advance(v)
	return nil
}

func opShiftReg(f func(val uint64, n uint) uint64) opFunc {
	return func(v *VM, d decoded) error {
		n := uint(v.Regs[d.Rt] & 63)
		v.Regs[d.Rd] = f(v.Regs[d.Rs], n)
		advance(v)
		return nil
	}
}

// opShiftImm acts in place on rd: rd <- rd shift (imm & 63), per §4.8.
func opShiftImm(f func(val uint64, n uint) uint64) opFunc {
	return func(v *VM, d decoded) error {
		n := uint(d.Imm12 & 63)
		v.Regs[d.Rd] = f(v.Regs[d.Rd], n)
		advance(v)
		return nil
	}
}

func opInt(f func(a, b int64) int64) opFunc {
	return func(v *VM, d decoded) error {
		result := f(int64(v.Regs[d.Rs]), int64(v.Regs[d.Rt]))
		v.Regs[d.Rd] = uint64(result)
		advance(v)
		return nil
	}
}

func opIntImm(f func(a, imm int64) int64) opFunc {
	return func(v *VM, d decoded) error {
		result := f(int64(v.Regs[d.Rd]), int64(d.Imm12))
		v.Regs[d.Rd] = uint64(result)
		advance(v)
		return nil
	}
}

func opDiv(v *VM, d decoded) error {
	divisor := int64(v.Regs[d.Rt])
	if divisor == 0 {
		return newFault("integer division by zero at pc 0x%X", v.PC)
	}
	v.Regs[d.Rd] = uint64(int64(v.Regs[d.Rs]) / divisor)
	advance(v)
	return nil
}

func opFloat(f func(a, b float64) float64) opFunc {
	return func(v *VM, d decoded) error {
		a := math.Float64frombits(v.Regs[d.Rs])
		b := math.Float64frombits(v.Regs[d.Rt])
		v.Regs[d.Rd] = math.Float64bits(f(a, b))
		advance(v)
		return nil
	}
}

func opDivF(v *VM, d decoded) error {
	b := math.Float64frombits(v.Regs[d.Rt])
	if b == 0.0 {
		return newFault("floating division by zero at pc 0x%X", v.PC)
	}
	a := math.Float64frombits(v.Regs[d.Rs])
	v.Regs[d.Rd] = math.Float64bits(a / b)
	advance(v)
	return nil
}

func opBr(v *VM, d decoded) error {
	v.PC = v.Regs[d.Rd]
	return nil
}

func opBrrReg(v *VM, d decoded) error {
	v.PC = v.Regs[d.Rd]
	return nil
}

// opBrrImm: pc <- pc + sext(imm12), relative to the branch instruction
// itself (§4.3, §4.5).
func opBrrImm(v *VM, d decoded) error {
	v.PC = uint64(int64(v.PC) + signExtend12(d.Imm12))
	return nil
}

func opBrnz(v *VM, d decoded) error {
	if v.Regs[d.Rs] != 0 {
		v.PC = v.Regs[d.Rd]
	} else {
		advance(v)
	}
	return nil
}

func opBrgt(v *VM, d decoded) error {
	if int64(v.Regs[d.Rs]) > int64(v.Regs[d.Rt]) {
		v.PC = v.Regs[d.Rd]
	} else {
		advance(v)
	}
	return nil
}

// opCall writes pc+4 to memory at r31-8 and jumps to rd; r31 itself is not
// modified (§4.8's "Call/return").
func opCall(v *VM, d decoded) error {
	retAddr := v.PC + 4
	frame := v.Regs[encoder.StackPointerReg] - 8
	if err := v.Mem.WriteDoubleword(frame, retAddr); err != nil {
		return err
	}
	v.PC = v.Regs[d.Rd]
	return nil
}

func opReturn(v *VM, d decoded) error {
	frame := v.Regs[encoder.StackPointerReg] - 8
	target, err := v.Mem.ReadDoubleword(frame)
	if err != nil {
		return err
	}
	v.PC = target
	return nil
}

func opMovLoad(v *VM, d decoded) error {
	addr := uint64(int64(v.Regs[d.Rs]) + signExtend12(d.Imm12))
	val, err := v.Mem.ReadDoubleword(addr)
	if err != nil {
		return err
	}
	v.Regs[d.Rd] = val
	advance(v)
	return nil
}

func opMovStore(v *VM, d decoded) error {
	addr := uint64(int64(v.Regs[d.Rd]) + signExtend12(d.Imm12))
	if err := v.Mem.WriteDoubleword(addr, v.Regs[d.Rs]); err != nil {
		return err
	}
	advance(v)
	return nil
}

func opMovReg(v *VM, d decoded) error {
	v.Regs[d.Rd] = v.Regs[d.Rs]
	advance(v)
	return nil
}

// opMovImm overwrites only the low 12 bits of rd, preserving the upper 52
// (§4.8, §13 open-question decision).
func opMovImm(v *VM, d decoded) error {
	v.Regs[d.Rd] = (v.Regs[d.Rd] &^ 0xFFF) | uint64(d.Imm12)
	advance(v)
	return nil
}

// opPriv implements the sole privileged-operation channel (§4.5, §4.8):
// halt, input, and output. Any other imm value faults.
func opPriv(v *VM, d decoded) error {
	switch d.Imm12 {
	case 0:
		v.halted = true
		return nil

	case 3:
		if v.Regs[d.Rs] == 0 {
			val, err := v.readInputToken()
			if err != nil {
				return err
			}
			v.Regs[d.Rd] = val
		}
		advance(v)
		return nil

	case 4:
		port := v.Regs[d.Rd]
		switch port {
		case 1:
			fmt.Fprintf(v.Stdout, "%d\n", v.Regs[d.Rs])
		case 3:
			v.Stdout.Write([]byte{byte(v.Regs[d.Rs])})
		}
		advance(v)
		return nil

	default:
		return newFault("unrecognized priv imm %d at pc 0x%X", d.Imm12, v.PC)
	}
}

// readInputToken reads one whitespace-delimited token from stdin and
// parses it as an unsigned base-10 64-bit integer; a leading '+' or '-' is
// a fault (§4.8).
func (v *VM) readInputToken() (uint64, error) {
	if v.tokenReader == nil {
		v.tokenReader = bufio.NewReader(v.Stdin)
	}
	tok, err := readWhitespaceToken(v.tokenReader)
	if err != nil {
		return 0, newFault("failed to read input token: %v", err)
	}
	return parseUnsignedToken(tok)
}
