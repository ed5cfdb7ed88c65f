package assembler

import (
	"fmt"
	"io"
	"sort"
)

// Result is the output of a successful assembly: the finished .tko image
// bytes plus the final name->address symbol table, exposed for the
// "-symbols" introspection flag (§12).
type Result struct {
	Image   []byte
	Symbols map[string]uint64
}

// Assemble reads Tinker assembly from src and produces the finished .tko
// image bytes and final symbol table. filename is used only for diagnostic
// positions.
func Assemble(src io.Reader, filename string) (Result, error) {
	b := newBuilder()

	if err := b.run(src, filename); err != nil {
		return Result{}, err
	}

	syms := make(map[string]uint64, len(b.table.Names()))
	for _, name := range b.table.Names() {
		addr, _ := b.table.Lookup(name)
		syms[name] = addr
	}
	return Result{Image: b.finishedImage, Symbols: syms}, nil
}

// WriteSymbols writes the final symbol table to w, one "name ADDRESS" line
// per entry, sorted by address (then by name for labels sharing an
// address) for stable, readable output. numberFormat
// selects the address rendering: "dec" prints the plain decimal address,
// anything else (including "hex", the default) prints "0xADDRESS" (§10).
func WriteSymbols(w io.Writer, syms map[string]uint64, numberFormat string) error {
	names := make([]string, 0, len(syms))
	for name := range syms {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if syms[names[i]] != syms[names[j]] {
			return syms[names[i]] < syms[names[j]]
		}
		return names[i] < names[j]
	})
	format := "%s 0x%X\n"
	if numberFormat == "dec" {
		format = "%s %d\n"
	}
	for _, name := range names {
		if _, err := fmt.Fprintf(w, format, name, syms[name]); err != nil {
			return err
		}
	}
	return nil
}
