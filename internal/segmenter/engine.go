package segmenter

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"transcribevtt/internal/cue"
	"transcribevtt/internal/timestamp"
	"transcribevtt/internal/transcript"
)

// span is a speaker segment with its times normalized
type span struct {
	start time.Duration
	end   time.Duration
	label string
}

func (s span) contains(start, end time.Duration) bool {
	return start >= s.start && end <= s.end
}

// Engine breaks a token stream into cues and hands each finished cue to a Sink.
// An Engine holds the state of one session and is not safe for concurrent use.
type Engine struct {
	opts   Options
	sink   cue.Sink
	logger *zap.Logger

	buffer        *cue.Buffer
	segments      []span
	activeSegment int
	stats         Stats
}

// NewEngine creates an Engine writing to sink
func NewEngine(opts Options, sink cue.Sink) *Engine {
	return NewEngineWithLogger(opts, sink, nil)
}

// NewEngineWithLogger creates an Engine writing to sink and logging flushes to logger
func NewEngineWithLogger(opts Options, sink cue.Sink, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		opts:   opts,
		sink:   sink,
		logger: logger,
	}
	e.reset()
	return e
}

func (e *Engine) reset() {
	e.buffer = cue.NewBuffer(e.opts.SecondPostponement)
	e.segments = nil
	e.activeSegment = 0
	e.stats = newStats()
}

// SetSpeakerSegments installs the diarization segments consulted for speaker
// changes. A nil or empty list disables speaker-change flushing.
func (e *Engine) SetSpeakerSegments(segments []transcript.SpeakerSegment) error {
	spans := make([]span, 0, len(segments))
	for i, seg := range segments {
		start, err := timestamp.Parse(seg.StartTime, 0)
		if err != nil {
			return fmt.Errorf("speaker segment %d start: %w", i, err)
		}
		end, err := timestamp.Parse(seg.EndTime, 0)
		if err != nil {
			return fmt.Errorf("speaker segment %d end: %w", i, err)
		}
		spans = append(spans, span{start: start, end: end, label: seg.SpeakerLabel})
	}
	e.segments = spans
	e.activeSegment = 0
	return nil
}

// Run segments the whole token list, flushing the final cue at the end.
// Any malformed timestamp aborts the run.
func (e *Engine) Run(tokens []transcript.Token, segments []transcript.SpeakerSegment) error {
	e.reset()
	if err := e.SetSpeakerSegments(segments); err != nil {
		return err
	}

	for i, tok := range tokens {
		if err := e.Step(tok); err != nil {
			return fmt.Errorf("token %d (%q): %w", i, tok.Content, err)
		}
	}

	return e.Finish()
}

// Step processes a single token. The boundary checks run in a fixed order:
// speaker change, text length (words only), duration, then the token is
// appended and punctuation closes the cue.
func (e *Engine) Step(tok transcript.Token) error {
	e.stats.Tokens++

	// start times only feed the speaker check, but a malformed one is fatal either way
	if tok.StartTime != "" {
		if _, err := timestamp.Parse(tok.StartTime, 0); err != nil {
			return err
		}
	}

	changed, err := e.speakerChanged(tok)
	if err != nil {
		return err
	}
	if changed && !e.buffer.IsEmpty() {
		if err := e.flush(FlushSpeaker); err != nil {
			return err
		}
	}

	// punctuation stays attached to the word it follows
	if !tok.IsPunctuation() && e.buffer.TextLength()+e.appendedLength(tok) > e.opts.MaxCueStringLength {
		if err := e.flush(FlushLength); err != nil {
			return err
		}
	}

	seconds, err := e.buffer.SpanSeconds(tok.EndTime)
	if err != nil {
		return err
	}
	if seconds > e.opts.MaxCueTimeLength {
		if err := e.flush(FlushDuration); err != nil {
			return err
		}
	}

	if err := e.append(tok); err != nil {
		return err
	}

	if tok.IsPunctuation() {
		return e.flush(FlushPunctuation)
	}
	return nil
}

// Finish flushes whatever remains in the buffer
func (e *Engine) Finish() error {
	if e.buffer.IsEmpty() {
		return nil
	}
	return e.flush(FlushEnd)
}

// Stats returns the counters of the current session
func (e *Engine) Stats() Stats {
	return e.stats
}

// ActiveSpeaker returns the label of the active speaker segment, or "" without diarization
func (e *Engine) ActiveSpeaker() string {
	if len(e.segments) == 0 {
		return ""
	}
	return e.segments[e.activeSegment].label
}

func (e *Engine) append(tok transcript.Token) error {
	if err := e.updateActiveSegment(tok); err != nil {
		return err
	}

	if e.needsSeparator(tok) {
		e.buffer.AppendText(" ")
	}
	e.buffer.AppendText(tok.Content)

	// punctuation has no end time
	if tok.EndTime != "" {
		return e.buffer.SetEndTime(tok.EndTime)
	}
	return nil
}

// appendedLength is how much tok would add to the buffer, separator included
func (e *Engine) appendedLength(tok transcript.Token) int {
	if e.needsSeparator(tok) {
		return len(tok.Content) + 1
	}
	return len(tok.Content)
}

func (e *Engine) needsSeparator(tok transcript.Token) bool {
	return tok.Kind == transcript.KindWord && !e.buffer.IsEmpty()
}

func (e *Engine) flush(reason FlushReason) error {
	defer e.buffer.Reset()

	if e.buffer.IsEmpty() {
		return nil
	}

	c := e.buffer.Cue()
	if err := e.sink.WriteCue(c); err != nil {
		return fmt.Errorf("write cue: %w", err)
	}
	e.stats.recordCue(reason)

	e.logger.Debug("flushed cue",
		zap.String("reason", string(reason)),
		zap.String("text", c.Text),
		zap.Duration("start", c.Start),
		zap.Duration("end", c.End),
		zap.String("speaker", e.ActiveSpeaker()))
	return nil
}

// speakerChanged reports whether tok falls outside the active speaker segment
func (e *Engine) speakerChanged(tok transcript.Token) (bool, error) {
	if len(e.segments) == 0 || !tok.HasTiming() {
		return false, nil
	}

	start, end, err := tokenSpan(tok)
	if err != nil {
		return false, err
	}
	return !e.segments[e.activeSegment].contains(start, end), nil
}

// updateActiveSegment scans every segment; the last one containing tok wins
func (e *Engine) updateActiveSegment(tok transcript.Token) error {
	if len(e.segments) == 0 || !tok.HasTiming() {
		return nil
	}

	start, end, err := tokenSpan(tok)
	if err != nil {
		return err
	}
	for i, seg := range e.segments {
		if seg.contains(start, end) {
			e.activeSegment = i
		}
	}
	return nil
}

func tokenSpan(tok transcript.Token) (time.Duration, time.Duration, error) {
	start, err := timestamp.Parse(tok.StartTime, 0)
	if err != nil {
		return 0, 0, err
	}
	end, err := timestamp.Parse(tok.EndTime, 0)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Segment runs a fresh Engine over tokens and returns the cues it produced.
// It is a convenience wrapper for tests and callers that want the cues in memory;
// the application streams into a sink through Engine.Run instead.
func Segment(tokens []transcript.Token, segments []transcript.SpeakerSegment, opts Options, logger *zap.Logger) ([]cue.Cue, Stats, error) {
	col := &cue.Collector{}
	e := NewEngineWithLogger(opts, col, logger)
	if err := e.Run(tokens, segments); err != nil {
		return nil, e.Stats(), err
	}
	return col.Cues, e.Stats(), nil
}
