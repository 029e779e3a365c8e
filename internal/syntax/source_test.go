package syntax

import (
	"testing"
)

func TestSourceBasic(t *testing.T) {
	src := newSource([]byte("abc"))

	// First character should be 'a'
	if src.ch != 'a' {
		t.Errorf("initial ch = %q, want 'a'", src.ch)
	}
	if src.line != 1 || src.col != 1 {
		t.Errorf("initial pos = %d:%d, want 1:1", src.line, src.col)
	}

	src.nextch()
	if src.ch != 'b' || src.col != 2 {
		t.Errorf("got ch=%q col=%d, want 'b' col=2", src.ch, src.col)
	}

	src.nextch()
	if src.ch != 'c' || src.col != 3 {
		t.Errorf("got ch=%q col=%d, want 'c' col=3", src.ch, src.col)
	}

	// EOF
	src.nextch()
	if src.ch != -1 {
		t.Errorf("ch = %d, want -1 (EOF)", src.ch)
	}
}

func TestSourceNewline(t *testing.T) {
	src := newSource([]byte("a\nb\nc"))

	want := []struct {
		ch        rune
		line, col int
	}{
		{'a', 1, 1},
		{'\n', 1, 2},
		{'b', 2, 1},
		{'\n', 2, 2},
		{'c', 3, 1},
	}
	for i, w := range want {
		if i > 0 {
			src.nextch()
		}
		if src.ch != w.ch || src.line != w.line || src.col != w.col {
			t.Errorf("step %d: got ch=%q pos=%d:%d, want ch=%q pos=%d:%d",
				i, src.ch, src.line, src.col, w.ch, w.line, w.col)
		}
	}
}

func TestSourceUTF8(t *testing.T) {
	src := newSource([]byte("a中b"))

	src.nextch()
	if src.ch != '中' {
		t.Errorf("ch = %q, want '中'", src.ch)
	}

	// Columns count characters, not bytes.
	src.nextch()
	if src.ch != 'b' || src.col != 3 {
		t.Errorf("got ch=%q col=%d, want 'b' col=3", src.ch, src.col)
	}
}

func TestSourceInvalidUTF8(t *testing.T) {
	src := newSource([]byte{'a', 0xff})
	src.nextch()
	if src.err == nil {
		t.Fatal("expected an error for invalid UTF-8")
	}
	if src.err.Pos != MakePos(1, 2) {
		t.Errorf("error pos = %s, want 1:2", src.err.Pos)
	}
}

func TestSourceEmpty(t *testing.T) {
	src := newSource(nil)
	if src.ch != -1 {
		t.Errorf("ch = %d, want -1 (EOF)", src.ch)
	}
	if src.peek() != -1 {
		t.Errorf("peek() = %d, want -1", src.peek())
	}
}

func TestSourcePeek(t *testing.T) {
	src := newSource([]byte("ab"))
	if got := src.peek(); got != 'b' {
		t.Errorf("peek() = %q, want 'b'", got)
	}
	if src.ch != 'a' {
		t.Errorf("peek must not advance; ch = %q", src.ch)
	}
	src.nextch()
	if got := src.peek(); got != -1 {
		t.Errorf("peek() at last char = %d, want -1", got)
	}
}

func TestSourceErrorLatchesFirst(t *testing.T) {
	src := newSource([]byte("abc"))
	src.error("first")
	src.nextch()
	src.errorf("second %d", 2)

	if src.err == nil || src.err.Msg != "first" {
		t.Fatalf("err = %v, want first error", src.err)
	}
	if src.err.Pos != MakePos(1, 1) {
		t.Errorf("err pos = %s, want 1:1", src.err.Pos)
	}
}

func TestIsLetter(t *testing.T) {
	for _, r := range []rune{'a', 'z', 'A', 'Z', '_'} {
		if !isLetter(r) {
			t.Errorf("isLetter(%q) = false, want true", r)
		}
	}
	for _, r := range []rune{'0', '9', ' ', '$', '中', -1} {
		if isLetter(r) {
			t.Errorf("isLetter(%q) = true, want false", r)
		}
	}
}

func TestIsDigit(t *testing.T) {
	for _, r := range "0123456789" {
		if !isDigit(r) {
			t.Errorf("isDigit(%q) = false, want true", r)
		}
	}
	for _, r := range []rune{'a', '.', '-', -1} {
		if isDigit(r) {
			t.Errorf("isDigit(%q) = true, want false", r)
		}
	}
}

func TestIsWhitespace(t *testing.T) {
	for _, r := range []rune{' ', '\t', '\r', '\n', '\f'} {
		if !isWhitespace(r) {
			t.Errorf("isWhitespace(%q) = false, want true", r)
		}
	}
	for _, r := range []rune{'a', '/', -1} {
		if isWhitespace(r) {
			t.Errorf("isWhitespace(%q) = true, want false", r)
		}
	}
}
