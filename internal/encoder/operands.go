package encoder

import (
	"strconv"
	"strings"

	"github.com/mokshshah/tinker/internal/asmerr"
)

// parseRegister parses "r0".."r31" (case-insensitive), per §3's 32-entry
// register file.
func parseRegister(tok string, pos asmerr.Position) (uint32, error) {
	if len(tok) < 2 || (tok[0] != 'r' && tok[0] != 'R') {
		return 0, asmerr.New(pos, asmerr.KindSyntax, "expected register, got %q", tok)
	}
	n, err := strconv.ParseUint(tok[1:], 10, 32)
	if err != nil || n >= RegisterCount {
		return 0, asmerr.New(pos, asmerr.KindRange, "invalid register %q (must be r0-r31)", tok)
	}
	return uint32(n), nil
}

// tryRegister parses tok as a register without raising an error, for
// operand positions that accept either a register or some other form
// (brr rd vs brr imm/label; mov rd,rs vs mov rd,imm).
func tryRegister(tok string) (uint32, bool) {
	if len(tok) < 2 || (tok[0] != 'r' && tok[0] != 'R') {
		return 0, false
	}
	n, err := strconv.ParseUint(tok[1:], 10, 32)
	if err != nil || n >= RegisterCount {
		return 0, false
	}
	return uint32(n), true
}

// parseSigned12 parses a signed 12-bit immediate (range -2048..2047),
// accepting decimal/hex/octal per the standard numeric-parser convention
// (§6).
func parseSigned12(tok string, pos asmerr.Position) (int32, error) {
	v, err := strconv.ParseInt(tok, 0, 64)
	if err != nil || v < -2048 || v > 2047 {
		return 0, asmerr.New(pos, asmerr.KindRange, "immediate %q out of signed 12-bit range", tok)
	}
	return int32(v), nil
}

// parseUnsigned12 parses an unsigned 12-bit immediate (range 0..4095).
func parseUnsigned12(tok string, pos asmerr.Position) (uint32, error) {
	v, err := strconv.ParseUint(tok, 0, 64)
	if err != nil || v > 0xFFF {
		return 0, asmerr.New(pos, asmerr.KindRange, "immediate %q out of unsigned 12-bit range", tok)
	}
	return uint32(v), nil
}

// memOperand is a parsed "(rBASE)(IMM)" operand (§4.6).
type memOperand struct {
	Base uint32
	Imm  int32
}

// parseMemOperand parses "(rBASE)(IMM)", requiring IMM to be a multiple of 8.
func parseMemOperand(tok string, pos asmerr.Position) (memOperand, error) {
	if !strings.HasPrefix(tok, "(") {
		return memOperand{}, asmerr.New(pos, asmerr.KindSyntax, "expected memory operand (rBASE)(IMM), got %q", tok)
	}
	first := strings.Index(tok, ")")
	if first < 0 || first+1 >= len(tok) || tok[first+1] != '(' {
		return memOperand{}, asmerr.New(pos, asmerr.KindSyntax, "malformed memory operand %q", tok)
	}
	baseTok := tok[1:first]
	rest := tok[first+2:]
	second := strings.Index(rest, ")")
	if second < 0 || second != len(rest)-1 {
		return memOperand{}, asmerr.New(pos, asmerr.KindSyntax, "malformed memory operand %q", tok)
	}
	immTok := rest[:second]

	base, err := parseRegister(baseTok, pos)
	if err != nil {
		return memOperand{}, err
	}
	imm, err := parseSigned12(immTok, pos)
	if err != nil {
		return memOperand{}, err
	}
	if imm%8 != 0 {
		return memOperand{}, asmerr.New(pos, asmerr.KindRange, "memory offset %d must be a multiple of 8", imm)
	}
	return memOperand{Base: base, Imm: imm}, nil
}

func isLabelRef(tok string) bool {
	return len(tok) > 0 && (tok[0] == ':' || tok[0] == '@')
}
