package symtab

import (
	"testing"

	"github.com/mokshshah/tinker/internal/asmerr"
)

func TestDefineAndLookup(t *testing.T) {
	tbl := New()
	pos := asmerr.Position{File: "t.tk", Line: 3}

	if err := tbl.Define("loop", 0x2000, pos); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	addr, ok := tbl.Lookup("loop")
	if !ok || addr != 0x2000 {
		t.Fatalf("got (%d, %v), want (0x2000, true)", addr, ok)
	}
}

func TestDuplicateDefineFails(t *testing.T) {
	tbl := New()
	pos := asmerr.Position{File: "t.tk", Line: 1}
	if err := tbl.Define("x", 0, pos); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tbl.Define("x", 8, pos); err == nil {
		t.Fatalf("expected duplicate-label error, got none")
	}
}

func TestGetUndefinedFails(t *testing.T) {
	tbl := New()
	if _, err := tbl.Get("missing", asmerr.Position{Line: 1}); err == nil {
		t.Fatalf("expected undefined-label error, got none")
	}
}

func TestPendingQueueFlushAttachesAllToSameAddress(t *testing.T) {
	tbl := New()
	var q PendingQueue
	pos := asmerr.Position{File: "t.tk", Line: 1}

	q.Push("a", pos)
	q.Push("b", pos)
	if q.Empty() {
		t.Fatalf("expected nonempty queue")
	}

	if err := q.Flush(tbl, 0x3000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.Empty() {
		t.Fatalf("expected empty queue after flush")
	}

	for _, name := range []string{"a", "b"} {
		addr, ok := tbl.Lookup(name)
		if !ok || addr != 0x3000 {
			t.Fatalf("label %q: got (%d, %v), want (0x3000, true)", name, addr, ok)
		}
	}
}

func TestErrPendingAtEOF(t *testing.T) {
	var empty PendingQueue
	if err := ErrPendingAtEOF(&empty); err != nil {
		t.Fatalf("expected nil for empty queue, got %v", err)
	}

	var q PendingQueue
	q.Push("dangling", asmerr.Position{Line: 5})
	if err := ErrPendingAtEOF(&q); err == nil {
		t.Fatalf("expected error for nonempty queue at EOF")
	}
}
