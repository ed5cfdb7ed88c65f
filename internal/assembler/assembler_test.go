package assembler

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/mokshshah/tinker/internal/image"
	"github.com/mokshshah/tinker/internal/vm"
)

func assembleString(t *testing.T, src string) Result {
	t.Helper()
	res, err := Assemble(strings.NewReader(src), "t.tk")
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	return res
}

// S1 — identity program.
func TestScenarioS1IdentityProgram(t *testing.T) {
	res := assembleString(t, ".code\n\thalt\n")

	img, err := image.Load(res.Image)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if img.CodeSize != 4 || img.DataSize != 0 {
		t.Fatalf("got sizes (%d,%d), want (4,0)", img.CodeSize, img.DataSize)
	}
	word := binary.LittleEndian.Uint32(img.Code)
	if word != 0x78000000 {
		t.Fatalf("got code word 0x%X, want 0x78000000", word)
	}

	machine := vm.New(img)
	var out bytes.Buffer
	machine.Stdout = &out
	if err := machine.Run(0); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

// S2 — print 65 ('A') via output port 3. The port selector (3) and the
// byte value (65) live in separate registers: rd names the port, rs
// carries the value (§4.8).
func TestScenarioS2PrintByte(t *testing.T) {
	src := ".code\n" +
		"\tld r1, 65\n" +
		"\tld r2, 3\n" +
		"\tpriv r2, r1, r0, 4\n" +
		"\thalt\n"
	res := assembleString(t, src)

	img, err := image.Load(res.Image)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	machine := vm.New(img)
	var out bytes.Buffer
	machine.Stdout = &out
	if err := machine.Run(0); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out.String() != "A" {
		t.Fatalf("got %q, want \"A\"", out.String())
	}
}

// S3 — print integer line.
func TestScenarioS3PrintIntegerLine(t *testing.T) {
	src := ".code\n" +
		"\tld r1, 42\n" +
		"\tld r2, 1\n" +
		"\tpriv r2, r1, r0, 4\n" +
		"\thalt\n"
	res := assembleString(t, src)

	img, err := image.Load(res.Image)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	machine := vm.New(img)
	var out bytes.Buffer
	machine.Stdout = &out
	if err := machine.Run(0); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out.String() != "42\n" {
		t.Fatalf("got %q, want \"42\\n\"", out.String())
	}
}

// Testable property 3: macro expansion sizes.
func TestMacroExpansionSizes(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want uint64
	}{
		{"ld immediate", ".code\n\tld r1, 7\n", 48},
		{"push", ".code\n\tpush r1\n", 8},
		{"pop", ".code\n\tpop r1\n", 8},
		{"clr", ".code\n\tclr r1\n", 4},
		{"halt", ".code\n\thalt\n", 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := assembleString(t, tc.src)
			img, err := image.Load(res.Image)
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if img.CodeSize != tc.want {
				t.Fatalf("got code_size %d, want %d", img.CodeSize, tc.want)
			}
		})
	}
}

// Testable property 4: label stability under an additional label definition.
func TestLabelStabilityAcrossExtraLabel(t *testing.T) {
	withoutExtra := ".code\n" +
		"\tld r1, :target\n" +
		":target\n" +
		"\thalt\n"
	withExtra := ".code\n" +
		"\tld r1, :target\n" +
		":unused\n" +
		":target\n" +
		"\thalt\n"

	r1 := assembleString(t, withoutExtra)
	r2 := assembleString(t, withExtra)

	if !bytes.Equal(r1.Image, r2.Image) {
		t.Fatalf("expected identical images, got different bytes")
	}
}

// Testable property 9: idempotent reassembly.
func TestIdempotentReassembly(t *testing.T) {
	src := ".code\n\tld r1, 100\n\thalt\n"
	r1 := assembleString(t, src)
	r2 := assembleString(t, src)
	if !bytes.Equal(r1.Image, r2.Image) {
		t.Fatalf("expected identical images across reassembly")
	}
}

func TestDuplicateLabelIsFatal(t *testing.T) {
	src := ".code\n:here\n\thalt\n:here\n\thalt\n"
	if _, err := Assemble(strings.NewReader(src), "t.tk"); err == nil {
		t.Fatalf("expected duplicate-label error")
	}
}

func TestMissingCodeSectionIsFatal(t *testing.T) {
	src := ".data\n\t1\n"
	if _, err := Assemble(strings.NewReader(src), "t.tk"); err == nil {
		t.Fatalf("expected missing-.code error")
	}
}

func TestPendingLabelAtEOFIsFatal(t *testing.T) {
	src := ".code\n\thalt\n:dangling\n"
	if _, err := Assemble(strings.NewReader(src), "t.tk"); err == nil {
		t.Fatalf("expected pending-label-at-EOF error")
	}
}

func TestBadCommaCountIsFatal(t *testing.T) {
	src := ".code\n\taddi r1 5\n"
	if _, err := Assemble(strings.NewReader(src), "t.tk"); err == nil {
		t.Fatalf("expected bad-comma-count error")
	}
}
