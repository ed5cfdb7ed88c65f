// Package symtab implements the Tinker symbol table and the pending-label
// queue described in §3 and §4.2, modeled on the teacher's
// parser.SymbolTable but simplified to Tinker's flat name -> address map
// (Tinker has no relocation types or numeric local labels).
package symtab

import (
	"github.com/mokshshah/tinker/internal/asmerr"
)

// Table maps label names to their resolved 64-bit address.
type Table struct {
	addrs map[string]uint64
	pos   map[string]asmerr.Position
}

// New creates an empty symbol table.
func New() *Table {
	return &Table{
		addrs: make(map[string]uint64),
		pos:   make(map[string]asmerr.Position),
	}
}

// Define binds name to address. It is an error to define the same name
// twice (names are globally unique across code and data, per §3).
func (t *Table) Define(name string, address uint64, pos asmerr.Position) error {
	if prior, exists := t.addrs[name]; exists {
		return asmerr.New(pos, asmerr.KindDuplicateLabel,
			"label %q already defined at %s (address 0x%X)", name, t.pos[name], prior)
	}
	t.addrs[name] = address
	t.pos[name] = pos
	return nil
}

// Lookup returns the address bound to name.
func (t *Table) Lookup(name string) (uint64, bool) {
	addr, ok := t.addrs[name]
	return addr, ok
}

// Names returns every defined label name, in no particular order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.addrs))
	for name := range t.addrs {
		names = append(names, name)
	}
	return names
}

// Get returns the address bound to name, or an error naming it undefined.
func (t *Table) Get(name string, pos asmerr.Position) (uint64, error) {
	addr, ok := t.addrs[name]
	if !ok {
		return 0, asmerr.New(pos, asmerr.KindUndefinedLabel, "undefined label %q", name)
	}
	return addr, nil
}

// PendingQueue accumulates label names seen since the last emitted record;
// all of them attach to the next record's starting address (§3, "Pending-
// label queue").
type PendingQueue struct {
	names []string
	first []asmerr.Position
}

// Push enqueues name for attachment to the next emitted record.
func (q *PendingQueue) Push(name string, pos asmerr.Position) {
	q.names = append(q.names, name)
	q.first = append(q.first, pos)
}

// Empty reports whether the queue currently holds no names.
func (q *PendingQueue) Empty() bool {
	return len(q.names) == 0
}

// Flush attaches every queued name to address in table, then clears the
// queue. Flush must be called exactly once per emitted record.
func (q *PendingQueue) Flush(table *Table, address uint64) error {
	for i, name := range q.names {
		if err := table.Define(name, address, q.first[i]); err != nil {
			return err
		}
	}
	q.names = q.names[:0]
	q.first = q.first[:0]
	return nil
}

// ErrPendingAtEOF reports the unanchored-label-at-end-of-file condition
// (§3, §7): the source ended with labels queued but never attached.
func ErrPendingAtEOF(q *PendingQueue) error {
	if q.Empty() {
		return nil
	}
	return asmerr.New(q.first[0], asmerr.KindSyntax,
		"label(s) %v defined at end of file with no following item", q.names)
}
