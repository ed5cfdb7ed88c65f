package assembler

import (
	"github.com/mokshshah/tinker/internal/asmerr"
)

// expandedItem is one concrete instruction produced by macro expansion,
// still carrying raw operand tokens so it flows through the same
// encoding path as a non-macro mnemonic.
type expandedItem struct {
	Mnemonic string
	Operands []string
}

// expandMacro expands the clr, halt, in, out, push and pop convenience
// macros named in §4.3 into their constituent concrete instructions. ld is
// not handled here: the builder's visitLoad expands "ld rd, imm64" via
// load64Instructions and defers "ld rd, :label" until the symbol table is
// final.
func expandMacro(mnemonic string, operands []string, pos asmerr.Position) ([]expandedItem, bool, error) {
	switch mnemonic {
	case "clr":
		if len(operands) != 1 {
			return nil, true, asmerr.New(pos, asmerr.KindSyntax, "clr requires 1 operand, got %d", len(operands))
		}
		rd := operands[0]
		return []expandedItem{{"xor", []string{rd, rd, rd}}}, true, nil

	case "halt":
		if len(operands) != 0 {
			return nil, true, asmerr.New(pos, asmerr.KindSyntax, "halt takes no operands")
		}
		return []expandedItem{{"priv", []string{"r0", "r0", "r0", "0"}}}, true, nil

	case "in":
		if len(operands) != 2 {
			return nil, true, asmerr.New(pos, asmerr.KindSyntax, "in requires 2 operands, got %d", len(operands))
		}
		return []expandedItem{{"priv", []string{operands[0], operands[1], "r0", "3"}}}, true, nil

	case "out":
		if len(operands) != 2 {
			return nil, true, asmerr.New(pos, asmerr.KindSyntax, "out requires 2 operands, got %d", len(operands))
		}
		return []expandedItem{{"priv", []string{operands[0], operands[1], "r0", "4"}}}, true, nil

	case "push":
		if len(operands) != 1 {
			return nil, true, asmerr.New(pos, asmerr.KindSyntax, "push requires 1 operand, got %d", len(operands))
		}
		rd := operands[0]
		return []expandedItem{
			{"mov", []string{"(r31)(-8)", rd}},
			{"subi", []string{"r31", "8"}},
		}, true, nil

	case "pop":
		if len(operands) != 1 {
			return nil, true, asmerr.New(pos, asmerr.KindSyntax, "pop requires 1 operand, got %d", len(operands))
		}
		rd := operands[0]
		return []expandedItem{
			{"mov", []string{rd, "(r31)(0)"}},
			{"addi", []string{"r31", "8"}},
		}, true, nil

	default:
		return nil, false, nil
	}
}

// load64Instructions returns the fixed 12-instruction sequence of §4.4 that
// materializes value into rd.
func load64Instructions(rd string, value uint64) []expandedItem {
	imm := func(shift uint, mask uint64) string {
		return itoa((value >> shift) & mask)
	}
	return []expandedItem{
		{"xor", []string{rd, rd, rd}},
		{"addi", []string{rd, imm(52, 0xFFF)}},
		{"shftli", []string{rd, "12"}},
		{"addi", []string{rd, imm(40, 0xFFF)}},
		{"shftli", []string{rd, "12"}},
		{"addi", []string{rd, imm(28, 0xFFF)}},
		{"shftli", []string{rd, "12"}},
		{"addi", []string{rd, imm(16, 0xFFF)}},
		{"shftli", []string{rd, "12"}},
		{"addi", []string{rd, imm(4, 0xFFF)}},
		{"shftli", []string{rd, "4"}},
		{"addi", []string{rd, imm(0, 0xF)}},
	}
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
