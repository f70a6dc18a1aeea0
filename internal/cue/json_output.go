package cue

import (
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// record is the JSON line layout of a cue
type record struct {
	Text    string `json:"text"`
	StartMS int64  `json:"start_ms"`
	EndMS   int64  `json:"end_ms"`
}

// JSONOutput writes each cue as one JSON object per line
type JSONOutput struct {
	writer io.Writer
	logger *zap.Logger
	count  int
}

// NewJSONOutput creates a new JSONOutput instance
func NewJSONOutput(writer io.Writer, logger *zap.Logger) *JSONOutput {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONOutput{
		writer: writer,
		logger: logger,
	}
}

// WriteCue writes a cue as JSON to the output writer
func (jo *JSONOutput) WriteCue(c Cue) error {
	if err := c.Validate(); err != nil {
		jo.logger.Error("invalid cue", zap.Error(err))
		return fmt.Errorf("invalid cue: %w", err)
	}

	jsonBytes, err := json.Marshal(record{
		Text:    c.Text,
		StartMS: c.Start.Milliseconds(),
		EndMS:   c.End.Milliseconds(),
	})
	if err != nil {
		jo.logger.Error("failed to marshal cue to JSON", zap.Error(err))
		return fmt.Errorf("failed to marshal cue to JSON: %w", err)
	}

	if _, err := fmt.Fprintf(jo.writer, "%s\n", jsonBytes); err != nil {
		jo.logger.Error("failed to write JSON output", zap.Error(err))
		return fmt.Errorf("failed to write JSON output: %w", err)
	}

	jo.count++
	jo.logger.Debug("output JSON cue",
		zap.String("text", c.Text),
		zap.Duration("start", c.Start),
		zap.Duration("end", c.End))

	return nil
}

// Count returns the number of cues written so far
func (jo *JSONOutput) Count() int {
	return jo.count
}

// Close finishes the output. Nothing is buffered, so it only logs.
func (jo *JSONOutput) Close() error {
	jo.logger.Debug("closing JSON output", zap.Int("cues", jo.count))
	return nil
}
