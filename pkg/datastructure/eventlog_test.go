package datastructure

import (
	"fmt"
	"testing"
)

func TestEventLogBounded(t *testing.T) {
	l := NewEventLog(8)

	for i := 0; i < 20; i++ {
		l.Append(fmt.Sprintf("event %d", i))
		if l.Len() > 8 {
			t.Fatalf("log grew past capacity: %d", l.Len())
		}
	}

	lines := l.Lines()
	if len(lines) != 8 {
		t.Fatalf("expected 8 lines, got %d", len(lines))
	}

	// oldest first, only the most recent 8 survive
	for i, line := range lines {
		want := fmt.Sprintf("event %d", 12+i)
		if line != want {
			t.Errorf("lines[%d] = %q, want %q", i, line, want)
		}
	}
}

func TestEventLogPartialFill(t *testing.T) {
	l := NewEventLog(8)
	l.Append("a")
	l.Append("b")

	lines := l.Lines()
	if len(lines) != 2 || lines[0] != "a" || lines[1] != "b" {
		t.Errorf("unexpected lines: %v", lines)
	}
}
