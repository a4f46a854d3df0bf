// Package logline provides best-effort structured parsing of raw log
// text into leveled entries, used by the demo CLI to colorize the
// tail preview it renders once background indexing finishes.
package logline

import (
	"github.com/charmbracelet/lipgloss"
)

// Level is a coarse severity bucket inferred from a line's content.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Color returns the lipgloss color the CLI uses to render a line at
// this level.
func (l Level) Color() lipgloss.Color {
	switch l {
	case Debug:
		return lipgloss.Color("8")
	case Info:
		return lipgloss.Color("12")
	case Warn:
		return lipgloss.Color("11")
	case Error:
		return lipgloss.Color("9")
	default:
		return lipgloss.Color("15")
	}
}

// Entry is one parsed line.
type Entry struct {
	Timestamp string
	Level     Level
	Message   string
	Raw       string
	Metadata  map[string]interface{}
}

// RingBuffer holds the most recent entries up to a fixed capacity,
// discarding the oldest as new ones arrive.
type RingBuffer struct {
	entries []Entry
	head    int
	size    int
	maxSize int
}

// NewRingBuffer creates a buffer that retains at most maxSize entries.
func NewRingBuffer(maxSize int) *RingBuffer {
	return &RingBuffer{
		entries: make([]Entry, maxSize),
		maxSize: maxSize,
	}
}

// Add appends entry, evicting the oldest entry once the buffer is full.
func (rb *RingBuffer) Add(entry Entry) {
	rb.entries[rb.head] = entry
	rb.head = (rb.head + 1) % rb.maxSize
	if rb.size < rb.maxSize {
		rb.size++
	}
}

// All returns the buffered entries in oldest-first order.
func (rb *RingBuffer) All() []Entry {
	if rb.size == 0 {
		return nil
	}
	result := make([]Entry, rb.size)
	start := (rb.head - rb.size + rb.maxSize) % rb.maxSize
	for i := 0; i < rb.size; i++ {
		result[i] = rb.entries[(start+i)%rb.maxSize]
	}
	return result
}
