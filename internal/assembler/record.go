// Package assembler drives the Tinker assembler pipeline: classify lines,
// expand macros, build instruction/data records while tracking the code
// and data program counters and the pending-label queue, resolve deferred
// loads once the symbol table is final, encode every instruction, and hand
// the result to internal/image for serialization. It plays the role the
// teacher's parser.Parser plays for ARM source, generalized to Tinker's
// two-section, fixed-width-word grammar (§3, §4.2).
package assembler

import (
	"github.com/mokshshah/tinker/internal/asmerr"
)

// recordKind distinguishes a concrete instruction from a deferred load-64
// reservation (§3). Data-section items use the separate dataItem type in
// builder.go, since they never need encoding.
type recordKind int

const (
	recInstruction recordKind = iota
	recDeferredLoad
)

// record is one code-section item destined for the final image: either a
// fully-formed instruction awaiting encoding, or a deferred load-64
// reserving 12 instruction slots until the label table is final.
type record struct {
	Kind     recordKind
	Address  uint64
	Pos      asmerr.Position
	Mnemonic string
	Operands []string

	// recDeferredLoad only: destination register and target label name
	// (without the leading ':'/'@').
	LoadDest  uint32
	LoadLabel string
}
