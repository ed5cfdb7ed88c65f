package assembler

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/mokshshah/tinker/internal/asmerr"
	"github.com/mokshshah/tinker/internal/encoder"
	"github.com/mokshshah/tinker/internal/image"
	"github.com/mokshshah/tinker/internal/lexer"
	"github.com/mokshshah/tinker/internal/symtab"
)

type section int

const (
	sectionNone section = iota
	sectionCode
	sectionData
)

// dataItem is one not-yet-resolved data-section entry: either a literal
// value or a label reference awaiting the final symbol table.
type dataItem struct {
	Pos     asmerr.Position
	Address uint64
	Literal uint64
	IsLabel bool
	Label   string
}

// builder accumulates records across the single source walk of §4.2.
type builder struct {
	table   *symtab.Table
	pending symtab.PendingQueue

	section section
	sawCode bool
	codePC  uint64
	dataPC  uint64

	instructions []*record // recInstruction / recDeferredLoad, in address order
	data         []dataItem

	finishedImage []byte
}

func newBuilder() *builder {
	return &builder{
		table:  symtab.New(),
		codePC: image.CodeBegin,
		dataPC: image.DataBegin,
	}
}

// run performs the single-pass record-builder walk over src (§4.2), then
// resolves deferred loads and encodes every instruction (§4.2's second and
// third passes), leaving the finished .tko bytes in b.finishedImage.
func (b *builder) run(src io.Reader, filename string) error {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		pos := asmerr.Position{File: filename, Line: lineNo}
		line, err := lexer.ClassifyLine(scanner.Text(), pos)
		if err != nil {
			return err
		}
		if err := b.visit(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return asmerr.New(asmerr.Position{File: filename}, asmerr.KindIO, "reading source: %v", err)
	}

	if !b.pending.Empty() {
		return symtab.ErrPendingAtEOF(&b.pending)
	}
	if !b.sawCode {
		return asmerr.New(asmerr.Position{File: filename}, asmerr.KindMissingSection, "program has no .code section")
	}

	code, err := b.resolveAndEncode()
	if err != nil {
		return err
	}
	data, err := b.resolveData()
	if err != nil {
		return err
	}

	out, err := image.Write(image.Image{
		CodeBegin: image.CodeBegin,
		CodeSize:  uint64(len(code)),
		DataBegin: image.DataBegin,
		DataSize:  uint64(len(data)),
		Code:      code,
		Data:      data,
	})
	if err != nil {
		return asmerr.New(asmerr.Position{File: filename}, asmerr.KindIO, "%v", err)
	}
	b.finishedImage = out
	return nil
}

func (b *builder) visit(line lexer.Line) error {
	switch line.Kind {
	case lexer.KindBlank:
		return nil

	case lexer.KindSection:
		switch line.Section {
		case ".code":
			b.section = sectionCode
			b.sawCode = true
		case ".data":
			b.section = sectionData
		default:
			return asmerr.New(line.Pos, asmerr.KindSyntax, "unknown section directive %q", line.Section)
		}
		return nil

	case lexer.KindLabel:
		b.pending.Push(line.Label, line.Pos)
		return nil

	case lexer.KindItem:
		switch b.section {
		case sectionCode:
			return b.visitCodeItem(line)
		case sectionData:
			return b.visitDataItem(line)
		default:
			return asmerr.New(line.Pos, asmerr.KindMissingSection, "item outside any section")
		}
	}
	return nil
}

func (b *builder) visitDataItem(line lexer.Line) error {
	if len(line.Tokens) != 1 {
		return asmerr.New(line.Pos, asmerr.KindSyntax, "data item must be a single literal or label reference")
	}
	tok := line.Tokens[0]
	addr := b.dataPC
	if err := b.pending.Flush(b.table, addr); err != nil {
		return err
	}

	item := dataItem{Pos: line.Pos, Address: addr}
	if len(tok) > 0 && (tok[0] == ':' || tok[0] == '@') {
		item.IsLabel = true
		item.Label = tok[1:]
	} else {
		v, err := parseDataLiteral(tok, line.Pos)
		if err != nil {
			return err
		}
		item.Literal = v
	}
	b.data = append(b.data, item)
	b.dataPC += 8
	return nil
}

func (b *builder) visitCodeItem(line lexer.Line) error {
	if len(line.Tokens) == 0 {
		return asmerr.New(line.Pos, asmerr.KindSyntax, "empty code item")
	}
	mnemonic := line.Tokens[0]
	operands := line.Tokens[1:]

	expectedCommas := lexer.ExpectedCommas(mnemonic)
	if got := lexer.CommaCount(line.Content); got != expectedCommas {
		return asmerr.New(line.Pos, asmerr.KindBadCommaCount,
			"%s expects %d comma(s), got %d", mnemonic, expectedCommas, got)
	}

	if mnemonic == "ld" {
		return b.visitLoad(line, operands)
	}

	if items, isMacro, err := expandMacro(mnemonic, operands, line.Pos); err != nil {
		return err
	} else if isMacro {
		addr := b.codePC
		if err := b.pending.Flush(b.table, addr); err != nil {
			return err
		}
		for _, it := range items {
			b.instructions = append(b.instructions, &record{
				Kind:     recInstruction,
				Address:  b.codePC,
				Pos:      line.Pos,
				Mnemonic: it.Mnemonic,
				Operands: it.Operands,
			})
			b.codePC += 4
		}
		return nil
	}

	addr := b.codePC
	if err := b.pending.Flush(b.table, addr); err != nil {
		return err
	}
	b.instructions = append(b.instructions, &record{
		Kind:     recInstruction,
		Address:  addr,
		Pos:      line.Pos,
		Mnemonic: mnemonic,
		Operands: operands,
	})
	b.codePC += 4
	return nil
}

// visitLoad handles "ld rd, imm64" (expanded immediately) and
// "ld rd, :label"/"ld rd, @label" (deferred, reserving 48 bytes; §3, §4.2).
func (b *builder) visitLoad(line lexer.Line, operands []string) error {
	if len(operands) != 2 {
		return asmerr.New(line.Pos, asmerr.KindSyntax, "ld requires 2 operands, got %d", len(operands))
	}
	rd := operands[0]
	src := operands[1]

	addr := b.codePC
	if err := b.pending.Flush(b.table, addr); err != nil {
		return err
	}

	if len(src) > 0 && (src[0] == ':' || src[0] == '@') {
		rdNum, err := encoderParseRegisterForLoad(rd, line.Pos)
		if err != nil {
			return err
		}
		b.instructions = append(b.instructions, &record{
			Kind:      recDeferredLoad,
			Address:   addr,
			Pos:       line.Pos,
			LoadDest:  rdNum,
			LoadLabel: src[1:],
		})
		b.codePC += 48
		return nil
	}

	value, err := parseDataLiteral(src, line.Pos)
	if err != nil {
		return err
	}
	for _, it := range load64Instructions(rd, value) {
		b.instructions = append(b.instructions, &record{
			Kind:     recInstruction,
			Address:  b.codePC,
			Pos:      line.Pos,
			Mnemonic: it.Mnemonic,
			Operands: it.Operands,
		})
		b.codePC += 4
	}
	return nil
}

// resolveAndEncode rewrites deferred-load records into concrete load-64
// sequences using the finalized symbol table, then encodes every
// instruction record into its 32-bit word (§4.2's second and third passes).
func (b *builder) resolveAndEncode() ([]byte, error) {
	var out []byte
	for _, rec := range b.instructions {
		if rec.Kind == recDeferredLoad {
			target, err := b.table.Get(rec.LoadLabel, rec.Pos)
			if err != nil {
				return nil, err
			}
			rdTok := regToken(rec.LoadDest)
			addr := rec.Address
			for _, it := range load64Instructions(rdTok, target) {
				word, err := encoder.Encode(encoder.Request{
					Mnemonic: it.Mnemonic,
					Operands: it.Operands,
					Address:  addr,
					Pos:      rec.Pos,
					Table:    b.table,
				})
				if err != nil {
					return nil, err
				}
				out = append(out, wordBytes(word)...)
				addr += 4
			}
			continue
		}

		word, err := encoder.Encode(encoder.Request{
			Mnemonic: rec.Mnemonic,
			Operands: rec.Operands,
			Address:  rec.Address,
			Pos:      rec.Pos,
			Table:    b.table,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, wordBytes(word)...)
	}
	return out, nil
}

// resolveData substitutes every label-reference data item with its
// resolved address (§4.7); an unresolved reference is a hard error.
func (b *builder) resolveData() ([]byte, error) {
	out := make([]byte, 0, 8*len(b.data))
	for _, item := range b.data {
		v := item.Literal
		if item.IsLabel {
			addr, err := b.table.Get(item.Label, item.Pos)
			if err != nil {
				return nil, err
			}
			v = addr
		}
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], v)
		out = append(out, buf[:]...)
	}
	return out, nil
}

func wordBytes(w uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], w)
	return buf[:]
}

func regToken(n uint32) string {
	return "r" + itoa(uint64(n))
}

// encoderParseRegisterForLoad validates the ld destination register token.
func encoderParseRegisterForLoad(tok string, pos asmerr.Position) (uint32, error) {
	return parseRegisterToken(tok, pos)
}
