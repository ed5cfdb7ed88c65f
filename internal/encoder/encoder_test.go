package encoder

import (
	"testing"

	"github.com/mokshshah/tinker/internal/asmerr"
	"github.com/mokshshah/tinker/internal/symtab"
)

func req(mnemonic string, operands []string, addr uint64, tbl *symtab.Table) Request {
	return Request{
		Mnemonic: mnemonic,
		Operands: operands,
		Address:  addr,
		Pos:      asmerr.Position{File: "t.tk", Line: 1},
		Table:    tbl,
	}
}

func TestEncodeHalt(t *testing.T) {
	word, err := Encode(req("priv", []string{"r0", "r0", "r0", "0"}, 0x2000, symtab.New()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if word != 0x78000000 {
		t.Fatalf("got 0x%X, want 0x78000000", word)
	}
}

func TestEncodeRType(t *testing.T) {
	word, err := Encode(req("and", []string{"r1", "r2", "r3"}, 0x2000, symtab.New()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := packR(OpAnd, 1, 2, 3)
	if word != want {
		t.Fatalf("got 0x%X, want 0x%X", word, want)
	}
}

func TestEncodeBrrLabelInRange(t *testing.T) {
	tbl := symtab.New()
	if err := tbl.Define("target", 0x2010, asmerr.Position{Line: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	word, err := Encode(req("brr", []string{":target"}, 0x2000, tbl))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := packI(OpBrrImm, 0, uint32(0x10)&0xFFF)
	if word != want {
		t.Fatalf("got 0x%X, want 0x%X", word, want)
	}
}

func TestEncodeBrrLabelOutOfRangeFails(t *testing.T) {
	tbl := symtab.New()
	if err := tbl.Define("far", 0x2000+3000, asmerr.Position{Line: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Encode(req("brr", []string{":far"}, 0x2000, tbl)); err == nil {
		t.Fatalf("expected range error, got none")
	}
}

func TestEncodeMovStore(t *testing.T) {
	word, err := Encode(req("mov", []string{"(r31)(-8)", "r2"}, 0x2000, symtab.New()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := packP(OpMovStore, 31, 2, 0, 0xFF8) // -8 as a 12-bit two's-complement field
	if word != want {
		t.Fatalf("got 0x%X, want 0x%X", word, want)
	}
}

func TestEncodeMovImmUsesMovImmOpcode(t *testing.T) {
	word, err := Encode(req("mov", []string{"r5", "42"}, 0x2000, symtab.New()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := packI(OpMovImm, 5, 42)
	if word != want {
		t.Fatalf("got 0x%X, want 0x%X", word, want)
	}
}

func TestEncodeUnknownMnemonicFails(t *testing.T) {
	if _, err := Encode(req("nope", nil, 0x2000, symtab.New())); err == nil {
		t.Fatalf("expected unknown-mnemonic error, got none")
	}
}
