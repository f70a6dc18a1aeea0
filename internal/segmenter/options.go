package segmenter

import "fmt"

const (
	// DefaultMaxCueStringLength is the character budget per cue
	DefaultMaxCueStringLength = 50
	// DefaultMaxCueTimeLength is the seconds budget per cue
	DefaultMaxCueTimeLength = 30
)

// Options holds the thresholds that decide where cues break
type Options struct {
	MaxCueStringLength int
	MaxCueTimeLength   int
	SecondPostponement int
}

// DefaultOptions returns the stock thresholds with no postponement
func DefaultOptions() Options {
	return Options{
		MaxCueStringLength: DefaultMaxCueStringLength,
		MaxCueTimeLength:   DefaultMaxCueTimeLength,
	}
}

// Validate checks if the Options have usable values
func (o Options) Validate() error {
	if o.MaxCueStringLength <= 0 {
		return fmt.Errorf("max cue string length must be positive")
	}

	if o.MaxCueTimeLength <= 0 {
		return fmt.Errorf("max cue time length must be positive")
	}

	if o.SecondPostponement < 0 {
		return fmt.Errorf("second postponement cannot be negative")
	}

	return nil
}
