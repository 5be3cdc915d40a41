package event

import "time"

// Record is one entry of the recent-event ring.
type Record struct {
	Seq   uint64
	At    time.Time
	Event Event
}

// History is a fixed-capacity ring of recent events.
// Adding to a full ring overwrites the oldest record.
type History struct {
	buf  []Record
	head int // index of the oldest record
	size int
	seq  uint64
}

func newHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]Record, capacity)}
}

func (h *History) add(e Event, at time.Time) {
	h.seq++
	rec := Record{Seq: h.seq, At: at, Event: e}

	if h.size < len(h.buf) {
		h.buf[(h.head+h.size)%len(h.buf)] = rec
		h.size++
		return
	}
	h.buf[h.head] = rec
	h.head = (h.head + 1) % len(h.buf)
}

// Recent returns up to n of the newest records, oldest first.
// n <= 0 returns everything retained.
func (h *History) Recent(n int) []Record {
	if n <= 0 || n > h.size {
		n = h.size
	}
	out := make([]Record, n)
	start := h.size - n
	for i := range n {
		out[i] = h.buf[(h.head+start+i)%len(h.buf)]
	}
	return out
}

// Len returns the number of retained records.
func (h *History) Len() int {
	return h.size
}

// Cap returns the ring capacity.
func (h *History) Cap() int {
	return len(h.buf)
}

func (h *History) clear() {
	for i := range h.buf {
		h.buf[i] = Record{}
	}
	h.head = 0
	h.size = 0
}
