// Package encoder turns one classified instruction item (mnemonic plus
// operand tokens) into the 32-bit instruction word described in §3,
// following the field layout and per-mnemonic semantics of §4.3. It plays
// the role the teacher's encoder package plays for ARM instructions, but
// Tinker has a single fixed-width word format instead of ARM's several
// addressing-mode encodings, so one dispatch function replaces the
// teacher's family of per-instruction-class encoders.
package encoder

import (
	"github.com/mokshshah/tinker/internal/asmerr"
	"github.com/mokshshah/tinker/internal/symtab"
)

// Request is one instruction item ready to encode: its mnemonic, its
// operand tokens (already comma/whitespace split), the address this
// instruction will occupy, and the position for diagnostics. Label operands
// are resolved against table, which must be final by the time Encode runs.
type Request struct {
	Mnemonic string
	Operands []string
	Address  uint64
	Pos      asmerr.Position
	Table    *symtab.Table
}

// rTypeOps maps a plain "rd, rs, rt" mnemonic to its opcode.
var rTypeOps = map[string]uint32{
	"and":   OpAnd,
	"or":    OpOr,
	"xor":   OpXor,
	"shftr": OpShftR,
	"shftl": OpShftL,
	"add":   OpAdd,
	"sub":   OpSub,
	"mul":   OpMul,
	"div":   OpDiv,
	"addf":  OpAddF,
	"subf":  OpSubF,
	"mulf":  OpMulF,
	"divf":  OpDivF,
	"brgt":  OpBrgt,
}

// iTypeOps maps a "rd, imm" mnemonic to its opcode.
var iTypeOps = map[string]uint32{
	"addi":   OpAddI,
	"subi":   OpSubI,
	"shftri": OpShftRI,
	"shftli": OpShftLI,
}

// Encode produces the 32-bit instruction word for req.
func Encode(req Request) (uint32, error) {
	switch req.Mnemonic {
	case "and", "or", "xor", "shftr", "shftl", "add", "sub", "mul", "div",
		"addf", "subf", "mulf", "divf", "brgt":
		return encodeRType(req)
	case "not":
		return encodeNot(req)
	case "addi", "subi", "shftri", "shftli":
		return encodeIType(req)
	case "br":
		return encodeBr(req)
	case "brr":
		return encodeBrr(req)
	case "brnz":
		return encodeBrnz(req)
	case "call":
		return encodeCall(req)
	case "return":
		return packR(OpReturn, 0, 0, 0), nil
	case "priv":
		return encodePriv(req)
	case "mov":
		return encodeMov(req)
	default:
		return 0, asmerr.New(req.Pos, asmerr.KindUnknownMnemonic, "unknown mnemonic %q", req.Mnemonic)
	}
}

func encodeRType(req Request) (uint32, error) {
	op := rTypeOps[req.Mnemonic]
	if len(req.Operands) != 3 {
		return 0, asmerr.New(req.Pos, asmerr.KindSyntax, "%s requires 3 operands, got %d", req.Mnemonic, len(req.Operands))
	}
	rd, err := parseRegister(req.Operands[0], req.Pos)
	if err != nil {
		return 0, err
	}
	rs, err := parseRegister(req.Operands[1], req.Pos)
	if err != nil {
		return 0, err
	}
	rt, err := parseRegister(req.Operands[2], req.Pos)
	if err != nil {
		return 0, err
	}
	return packR(op, rd, rs, rt), nil
}

func encodeNot(req Request) (uint32, error) {
	if len(req.Operands) != 2 {
		return 0, asmerr.New(req.Pos, asmerr.KindSyntax, "not requires 2 operands, got %d", len(req.Operands))
	}
	rd, err := parseRegister(req.Operands[0], req.Pos)
	if err != nil {
		return 0, err
	}
	rs, err := parseRegister(req.Operands[1], req.Pos)
	if err != nil {
		return 0, err
	}
	return packR(OpNot, rd, rs, 0), nil
}

func encodeIType(req Request) (uint32, error) {
	op := iTypeOps[req.Mnemonic]
	if len(req.Operands) != 2 {
		return 0, asmerr.New(req.Pos, asmerr.KindSyntax, "%s requires 2 operands, got %d", req.Mnemonic, len(req.Operands))
	}
	rd, err := parseRegister(req.Operands[0], req.Pos)
	if err != nil {
		return 0, err
	}
	imm, err := parseUnsigned12(req.Operands[1], req.Pos)
	if err != nil {
		return 0, err
	}
	return packI(op, rd, imm), nil
}

// encodeBr encodes "br rd": an unconditional jump to the address in rd.
func encodeBr(req Request) (uint32, error) {
	if len(req.Operands) != 1 {
		return 0, asmerr.New(req.Pos, asmerr.KindSyntax, "br requires 1 operand, got %d", len(req.Operands))
	}
	rd, err := parseRegister(req.Operands[0], req.Pos)
	if err != nil {
		return 0, err
	}
	return packR(OpBr, rd, 0, 0), nil
}

// encodeBrr encodes "brr rd" (register form) or "brr :label"/"brr imm"
// (pc-relative form), per §4.7. Register form is tried first since a bare
// register token can't also be a label or a numeric literal.
func encodeBrr(req Request) (uint32, error) {
	if len(req.Operands) != 1 {
		return 0, asmerr.New(req.Pos, asmerr.KindSyntax, "brr requires 1 operand, got %d", len(req.Operands))
	}
	tok := req.Operands[0]

	if rd, ok := tryRegister(tok); ok {
		return packR(OpBrrReg, rd, 0, 0), nil
	}

	var delta int64
	if isLabelRef(tok) {
		target, err := req.Table.Get(tok[1:], req.Pos)
		if err != nil {
			return 0, err
		}
		delta = int64(target) - int64(req.Address)
	} else {
		imm, err := parseSigned12(tok, req.Pos)
		if err != nil {
			return 0, err
		}
		delta = int64(imm)
	}

	if delta < -2048 || delta > 2047 {
		return 0, asmerr.New(req.Pos, asmerr.KindRange, "brr displacement %d out of range (-2048..2047)", delta)
	}
	return packI(OpBrrImm, 0, uint32(delta)&0xFFF), nil
}

// encodeBrnz encodes "brnz rd, rs": branch to address in rd if rs != 0.
func encodeBrnz(req Request) (uint32, error) {
	if len(req.Operands) != 2 {
		return 0, asmerr.New(req.Pos, asmerr.KindSyntax, "brnz requires 2 operands, got %d", len(req.Operands))
	}
	rd, err := parseRegister(req.Operands[0], req.Pos)
	if err != nil {
		return 0, err
	}
	rs, err := parseRegister(req.Operands[1], req.Pos)
	if err != nil {
		return 0, err
	}
	return packR(OpBrnz, rd, rs, 0), nil
}

func encodeCall(req Request) (uint32, error) {
	if len(req.Operands) != 1 {
		return 0, asmerr.New(req.Pos, asmerr.KindSyntax, "call requires 1 operand, got %d", len(req.Operands))
	}
	rd, err := parseRegister(req.Operands[0], req.Pos)
	if err != nil {
		return 0, err
	}
	return packR(OpCall, rd, 0, 0), nil
}

// encodePriv encodes "priv rd, rs, rt, imm12": the sole privileged-op
// channel (halt/input/output), per §4.9.
func encodePriv(req Request) (uint32, error) {
	if len(req.Operands) != 4 {
		return 0, asmerr.New(req.Pos, asmerr.KindSyntax, "priv requires 4 operands, got %d", len(req.Operands))
	}
	rd, err := parseRegister(req.Operands[0], req.Pos)
	if err != nil {
		return 0, err
	}
	rs, err := parseRegister(req.Operands[1], req.Pos)
	if err != nil {
		return 0, err
	}
	rt, err := parseRegister(req.Operands[2], req.Pos)
	if err != nil {
		return 0, err
	}
	imm, err := parseUnsigned12(req.Operands[3], req.Pos)
	if err != nil {
		return 0, err
	}
	return packP(OpPriv, rd, rs, rt, imm), nil
}

// encodeMov dispatches "mov"'s four operand forms (§4.6): store to memory,
// load from memory, register-to-register, and a 12-bit immediate load into
// the low bits of rd (leaving the rest of rd untouched — §4.8's load-64
// macro is the only sanctioned way to set an arbitrary 64-bit value).
func encodeMov(req Request) (uint32, error) {
	if len(req.Operands) != 2 {
		return 0, asmerr.New(req.Pos, asmerr.KindSyntax, "mov requires 2 operands, got %d", len(req.Operands))
	}
	dst, src := req.Operands[0], req.Operands[1]

	if isMemOperand(dst) {
		mem, err := parseMemOperand(dst, req.Pos)
		if err != nil {
			return 0, err
		}
		rs, err := parseRegister(src, req.Pos)
		if err != nil {
			return 0, err
		}
		return packP(OpMovStore, mem.Base, rs, 0, uint32(mem.Imm)&0xFFF), nil
	}

	rd, err := parseRegister(dst, req.Pos)
	if err != nil {
		return 0, err
	}

	if isMemOperand(src) {
		mem, err := parseMemOperand(src, req.Pos)
		if err != nil {
			return 0, err
		}
		return packP(OpMovLoad, rd, mem.Base, 0, uint32(mem.Imm)&0xFFF), nil
	}

	if rs, ok := tryRegister(src); ok {
		return packR(OpMovReg, rd, rs, 0), nil
	}

	imm, err := parseUnsigned12(src, req.Pos)
	if err != nil {
		return 0, err
	}
	return packI(OpMovImm, rd, imm), nil
}

func isMemOperand(tok string) bool {
	return len(tok) > 0 && tok[0] == '('
}
