package assembler

import (
	"strconv"

	"github.com/mokshshah/tinker/internal/asmerr"
)

// parseDataLiteral parses a data-section literal: an unsigned 64-bit integer
// in any base the standard numeric parser accepts (§4.2). It is also used
// for the "ld rd, imm64" immediate form, before the full encoder.Request
// machinery (and its symbol table) is available.
func parseDataLiteral(tok string, pos asmerr.Position) (uint64, error) {
	v, err := strconv.ParseUint(tok, 0, 64)
	if err != nil {
		return 0, asmerr.New(pos, asmerr.KindSyntax, "invalid data literal %q", tok)
	}
	return v, nil
}

// parseRegisterToken parses "r0".."r31", used for the ld destination
// register before the full encoder.Request machinery is available.
func parseRegisterToken(tok string, pos asmerr.Position) (uint32, error) {
	if len(tok) < 2 || (tok[0] != 'r' && tok[0] != 'R') {
		return 0, asmerr.New(pos, asmerr.KindSyntax, "expected register, got %q", tok)
	}
	n, err := strconv.ParseUint(tok[1:], 10, 32)
	if err != nil || n >= 32 {
		return 0, asmerr.New(pos, asmerr.KindRange, "invalid register %q (must be r0-r31)", tok)
	}
	return uint32(n), nil
}
