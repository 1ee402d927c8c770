package datastructure

// EventLog is a fixed-capacity FIFO ring of human-readable decision lines.
// Append never grows the buffer; once full, the oldest line is evicted.
type EventLog struct {
	buf  []string
	head int // index of the oldest line
	n    int
}

func NewEventLog(capacity int) *EventLog {
	return &EventLog{
		buf: make([]string, capacity),
	}
}

func (l *EventLog) Append(line string) {
	if l.n < len(l.buf) {
		l.buf[(l.head+l.n)%len(l.buf)] = line
		l.n++
		return
	}
	l.buf[l.head] = line
	l.head = (l.head + 1) % len(l.buf)
}

// Lines returns a copy of the log, oldest first.
func (l *EventLog) Lines() []string {
	out := make([]string, l.n)
	for i := 0; i < l.n; i++ {
		out[i] = l.buf[(l.head+i)%len(l.buf)]
	}
	return out
}

func (l *EventLog) Len() int {
	return l.n
}

func (l *EventLog) Cap() int {
	return len(l.buf)
}
