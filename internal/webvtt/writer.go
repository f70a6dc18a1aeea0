package webvtt

import (
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"transcribevtt/internal/cue"
)

const (
	// Header opens every WebVTT document
	Header = "WEBVTT"
	// DefaultLineEnding terminates every line of the document
	DefaultLineEnding = "\n"
	// TrackPrefix starts each text line of a cue
	TrackPrefix = "- "
)

// Writer renders cues into a WebVTT document held in memory.
// It implements cue.Sink.
type Writer struct {
	eol    string
	out    strings.Builder
	count  int
	logger *zap.Logger
}

// NewWriter creates a Writer using "\n" line endings
func NewWriter() *Writer {
	return NewWriterWithLogger(DefaultLineEnding, nil)
}

// NewWriterWithLogger creates a Writer with the given line ending and logger
func NewWriterWithLogger(eol string, logger *zap.Logger) *Writer {
	if eol == "" {
		eol = DefaultLineEnding
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Writer{eol: eol, logger: logger}
	w.writeLine(Header)
	w.writeEmptyLine()
	return w
}

// WriteCue appends one cue: a blank separator line, the timing line and the text track
func (w *Writer) WriteCue(c cue.Cue) error {
	if err := c.Validate(); err != nil {
		w.logger.Error("invalid cue", zap.Error(err))
		return fmt.Errorf("invalid cue: %w", err)
	}

	w.writeEmptyLine()
	w.writeLine(FormatTimestamp(c.Start) + " --> " + FormatTimestamp(c.End))
	for _, track := range strings.Split(c.Text, "\n") {
		w.writeLine(TrackPrefix + track)
	}
	w.count++
	return nil
}

// Count returns the number of cues written so far
func (w *Writer) Count() int {
	return w.count
}

// String returns the document rendered so far
func (w *Writer) String() string {
	return w.out.String()
}

// WriteTo writes the document to dst
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	n, err := io.WriteString(dst, w.out.String())
	if err != nil {
		w.logger.Error("failed to write WebVTT document", zap.Error(err))
		return int64(n), fmt.Errorf("failed to write WebVTT document: %w", err)
	}
	w.logger.Debug("wrote WebVTT document", zap.Int("cues", w.count), zap.Int("bytes", n))
	return int64(n), nil
}

func (w *Writer) writeLine(s string) {
	w.out.WriteString(s)
	w.out.WriteString(w.eol)
}

func (w *Writer) writeEmptyLine() {
	w.out.WriteString(w.eol)
}

// FormatTimestamp renders d as HH:MM:SS.mmm, truncating below a millisecond
func FormatTimestamp(d time.Duration) string {
	m := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d:%02d.%03d", m/3600000, (m/60000)%60, (m/1000)%60, m%1000)
}

// Render formats a complete document from cues. The application streams cues
// through a Writer; Render is the one-shot form used in tests.
func Render(cues []cue.Cue, eol string) (string, error) {
	w := NewWriterWithLogger(eol, nil)
	for _, c := range cues {
		if err := w.WriteCue(c); err != nil {
			return "", err
		}
	}
	return w.String(), nil
}
