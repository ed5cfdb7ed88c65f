// Package lexer turns a line of Tinker assembly source into a classified
// record: section directive, label definition, or code/data item with its
// operand tokens. It mirrors the teacher's per-line Lexer, but Tinker's
// grammar is line-oriented rather than token-stream oriented, so a single
// ClassifyLine pass replaces the teacher's character-at-a-time NextToken
// loop.
package lexer

import (
	"strings"

	"github.com/mokshshah/tinker/internal/asmerr"
)

// Kind identifies what a source line contains.
type Kind int

const (
	KindBlank Kind = iota
	KindSection
	KindLabel
	KindItem
)

// Line is one classified, comment-stripped source line.
type Line struct {
	Kind    Kind
	Pos     asmerr.Position
	Section string // ".code" or ".data", when Kind == KindSection
	Label   string // label name, when Kind == KindLabel
	Content string // tab-stripped item text, when Kind == KindItem
	Tokens  []string
}

// stripComment removes a trailing ";"-to-end-of-line comment.
func stripComment(s string) string {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		return s[:i]
	}
	return s
}

// ClassifyLine strips the comment and trailing whitespace from raw, then
// classifies it per §4.1. Blank lines (after stripping) return KindBlank.
func ClassifyLine(raw string, pos asmerr.Position) (Line, error) {
	stripped := strings.TrimRight(stripComment(raw), " \t\r\n")

	if strings.TrimSpace(stripped) == "" {
		return Line{Kind: KindBlank, Pos: pos}, nil
	}

	switch {
	case stripped[0] == '.':
		return Line{Kind: KindSection, Pos: pos, Section: stripped}, nil

	case stripped[0] == ':' || stripped[0] == '@':
		name := stripped[1:]
		if !isValidLabelName(name) {
			return Line{}, asmerr.New(pos, asmerr.KindSyntax, "invalid label name %q", name)
		}
		return Line{Kind: KindLabel, Pos: pos, Label: name}, nil

	case stripped[0] == '\t':
		content := strings.TrimLeft(stripped, "\t")
		return Line{
			Kind:    KindItem,
			Pos:     pos,
			Content: content,
			Tokens:  Tokenize(content),
		}, nil

	default:
		return Line{}, asmerr.New(pos, asmerr.KindSyntax, "line must start with a section directive, a label, or a tab: %q", stripped)
	}
}

// Tokenize splits s on any run of whitespace or commas.
func Tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

// CommaCount counts the literal commas in s, used for the comma-style check
// in §4.1 — deliberately independent of Tokenize, since a malformed line
// like "addi r1 5" (no comma at all) must still be counted correctly.
func CommaCount(s string) int {
	return strings.Count(s, ",")
}

// ExpectedCommas returns the comma count §4.3 requires for mnemonic
// (case-sensitive, as written in source). Mnemonics absent from the table
// default to 2, the commonest R-form arity. The assembler applies this
// check before the encoder rejects unknown mnemonics, so an unknown
// mnemonic without exactly 2 commas is reported as a comma-count error.
func ExpectedCommas(mnemonic string) int {
	switch mnemonic {
	case "", "halt", "br", "brr", "call", "return", "clr", "push", "pop":
		return 0
	case "not", "addi", "subi", "shftri", "shftli", "brnz", "mov", "in", "out", "ld":
		return 1
	case "priv":
		return 3
	default:
		return 2
	}
}

func isValidLabelName(s string) bool {
	if s == "" {
		return false
	}
	first := s[0]
	if !(isLetter(first) || first == '_' || first == '.') {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !(isLetter(c) || isDigit(c) || c == '_' || c == '.') {
			return false
		}
	}
	return true
}

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
