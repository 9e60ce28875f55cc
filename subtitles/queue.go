// Package subtitles provides an ordered, seekable store of timed cues.
// It is format agnostic: a parser inserts cues in source order with opaque
// side data attached, finalizes once, and consumers read them back in
// timestamp order.
package subtitles

import (
	"cmp"
	"slices"
)

// Cue is one timed subtitle line. Start and Duration are milliseconds.
// Meta carries format specific side data the store never looks at; copies
// of a Cue share the same metadata value.
type Cue struct {
	Start    int64
	Duration int64
	Text     string
	Meta     any
}

// Queue accumulates cues during parsing and serves them back sorted.
// Duplicate timestamps are kept, insertion order preserved between equals.
type Queue struct {
	cues      []*Cue
	finalized bool
	pos       int
}

func NewQueue() *Queue {
	return &Queue{}
}

// Insert appends a cue and returns it so the caller can attach metadata.
// Must not be called after Finalize.
func (q *Queue) Insert(text string, start, duration int64) *Cue {
	cue := &Cue{Start: start, Duration: duration, Text: text}
	q.cues = append(q.cues, cue)
	return cue
}

// Finalize sorts the store by (start, duration) and rewinds the read
// position. Idempotent.
func (q *Queue) Finalize() {
	slices.SortStableFunc(q.cues, func(a, b *Cue) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Duration, b.Duration)
	})
	q.finalized = true
	q.pos = 0
}

// Len reports the number of stored cues.
func (q *Queue) Len() int {
	return len(q.cues)
}

// Seek positions the reader at the first cue starting at or after ts and
// returns its index. Valid only after Finalize.
func (q *Queue) Seek(ts int64) int {
	q.pos, _ = slices.BinarySearchFunc(q.cues, ts, func(c *Cue, ts int64) int {
		return cmp.Compare(c.Start, ts)
	})
	return q.pos
}

// ReadNext returns the cue at the current read position and advances it.
// The second result is false once the store is exhausted.
func (q *Queue) ReadNext() (*Cue, bool) {
	if !q.finalized || q.pos >= len(q.cues) {
		return nil, false
	}
	cue := q.cues[q.pos]
	q.pos++
	return cue, true
}
