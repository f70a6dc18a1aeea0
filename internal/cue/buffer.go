package cue

import (
	"time"

	"transcribevtt/internal/timestamp"
)

// Buffer accumulates tokens into the cue currently being built.
// After Reset the next cue starts where the previous one ended, so cues
// produced from one Buffer are contiguous.
type Buffer struct {
	offsetSeconds int
	start         time.Duration
	end           time.Duration
	text          string
}

// NewBuffer creates an empty Buffer whose start and end sit at the configured offset
func NewBuffer(offsetSeconds int) *Buffer {
	origin := timestamp.MustParse(timestamp.DefaultRaw, offsetSeconds)
	return &Buffer{
		offsetSeconds: offsetSeconds,
		start:         origin,
		end:           origin,
	}
}

// AppendText concatenates s onto the buffered text
func (b *Buffer) AppendText(s string) {
	b.text += s
}

// SetEndTime normalizes raw and stores it as the end of the cue
func (b *Buffer) SetEndTime(raw string) error {
	end, err := timestamp.Parse(raw, b.offsetSeconds)
	if err != nil {
		return err
	}
	b.end = end
	return nil
}

// TextLength returns the byte length of the buffered text
func (b *Buffer) TextLength() int {
	return len(b.text)
}

// IsEmpty reports whether no text has been buffered since the last reset
func (b *Buffer) IsEmpty() bool {
	return b.text == ""
}

// SpanSeconds returns the whole seconds between the cue start and either the
// current end, or raw when it is non-empty. The buffer is not modified.
func (b *Buffer) SpanSeconds(raw string) (int, error) {
	end := b.end
	if raw != "" {
		var err error
		end, err = timestamp.Parse(raw, b.offsetSeconds)
		if err != nil {
			return 0, err
		}
	}

	span := end - b.start
	if span < 0 {
		span = -span
	}
	return int(span / time.Second), nil
}

// Cue returns a snapshot of the buffer contents
func (b *Buffer) Cue() Cue {
	return Cue{
		Start: b.start,
		End:   b.end,
		Text:  b.text,
	}
}

// Reset clears the text and moves the start to the current end.
// The end is kept until the next SetEndTime.
func (b *Buffer) Reset() {
	b.start = b.end
	b.text = ""
}

// StartTime returns the start of the cue being built
func (b *Buffer) StartTime() time.Duration {
	return b.start
}

// EndTime returns the end of the cue being built
func (b *Buffer) EndTime() time.Duration {
	return b.end
}
