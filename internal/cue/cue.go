package cue

import (
	"fmt"
	"time"
)

// Cue is one finished subtitle entry: its text and the absolute span it is shown for
type Cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Duration returns how long the cue is displayed
func (c Cue) Duration() time.Duration {
	return c.End - c.Start
}

// Validate checks if the Cue has valid values
func (c Cue) Validate() error {
	if c.Text == "" {
		return fmt.Errorf("text cannot be empty")
	}

	if c.Start < 0 {
		return fmt.Errorf("start cannot be negative")
	}

	if c.End < c.Start {
		return fmt.Errorf("end must not be before start")
	}

	return nil
}

// Sink receives cues as the segmenter completes them
type Sink interface {
	WriteCue(c Cue) error
}

// Collector is a Sink that keeps every cue in memory, in order
type Collector struct {
	Cues []Cue
}

// WriteCue appends the cue to the collection
func (col *Collector) WriteCue(c Cue) error {
	col.Cues = append(col.Cues, c)
	return nil
}
