package resolver

import (
	"fmt"
	"sync"
)

// Line is one structured trace entry: which tier ran, over what window, and
// how many records it scanned. The trace is the primary operational signal
// for diagnosing "why didn't it find X".
type Line struct {
	Tier    string `json:"tier"`
	Window  string `json:"window,omitempty"`
	Scanned int    `json:"scanned"`
	Note    string `json:"note,omitempty"`
}

func (l Line) String() string {
	s := l.Tier
	if l.Window != "" {
		s += " window=" + l.Window
	}
	s += fmt.Sprintf(" scanned=%d", l.Scanned)
	if l.Note != "" {
		s += " note=" + l.Note
	}
	return s
}

// Trace is an append-only, line-oriented log sink supplied by the caller.
// Appends are safe under concurrency (the historical-statistics fan-out
// shares a sink across goroutines). A nil *Trace discards appends.
type Trace struct {
	mu    sync.Mutex
	lines []Line
}

// Append adds a line. Safe on a nil receiver.
func (t *Trace) Append(line Line) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
}

// Lines returns a copy of the appended lines in order.
func (t *Trace) Lines() []Line {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Line, len(t.lines))
	copy(out, t.lines)
	return out
}

// Strings renders the trace for persistence and terminal output.
func (t *Trace) Strings() []string {
	lines := t.Lines()
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return out
}
