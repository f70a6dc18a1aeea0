package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"transcribevtt/internal/config"
	"transcribevtt/internal/segmenter"
	"transcribevtt/internal/timestamp"
	"transcribevtt/internal/transcript"
)

const fixturePath = "../transcript/testdata/aws_transcription.json"

func newTestApplication(t *testing.T, overrides map[string]interface{}) *Application {
	t.Helper()
	cfg := config.NewConfiguration()
	for k, v := range overrides {
		cfg.Set(k, v)
	}
	application, err := NewApplicationWithConfig(cfg, zap.NewNop())
	require.NoError(t, err)
	return application
}

func convertFixture(t *testing.T, application *Application) (string, Summary) {
	t.Helper()
	f, err := os.Open(fixturePath)
	require.NoError(t, err)
	defer f.Close()

	var out bytes.Buffer
	summary, err := application.Convert(f, &out)
	require.NoError(t, err)
	return out.String(), summary
}

func TestNewApplicationWithConfig(t *testing.T) {
	t.Run("should return error with nil configuration", func(t *testing.T) {
		// Act
		application, err := NewApplicationWithConfig(nil, zap.NewNop())

		// Assert
		assert.Error(t, err)
		assert.Nil(t, application)
		assert.Contains(t, err.Error(), "configuration cannot be nil")
	})

	t.Run("should reject invalid configuration", func(t *testing.T) {
		// Arrange
		cfg := config.NewConfiguration()
		cfg.Set("output.format", "srt")

		// Act
		application, err := NewApplicationWithConfig(cfg, nil)

		// Assert
		assert.Error(t, err)
		assert.Nil(t, application)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("should default to a no-op logger", func(t *testing.T) {
		// Act
		application, err := NewApplicationWithConfig(config.NewConfiguration(), nil)

		// Assert
		require.NoError(t, err)
		assert.NotNil(t, application.Logger())
		assert.Equal(t, 50, application.Config().GetMaxCueStringLength())
	})
}

func TestNewApplication(t *testing.T) {
	writeConfig := func(t *testing.T, body string) string {
		t.Helper()
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte(body), 0644))
		return configFile
	}

	t.Run("should load configuration from an explicit path", func(t *testing.T) {
		// Arrange
		t.Setenv("CONFIG_PATH", writeConfig(t, "cue:\n  second_postponement: 9\n"))
		configFile := writeConfig(t, "cue:\n  second_postponement: 4\nlog:\n  level: error\n")

		// Act
		application, err := NewApplication(configFile, nil)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 4, application.Config().GetSecondPostponement())
	})

	t.Run("should load configuration from CONFIG_PATH", func(t *testing.T) {
		// Arrange
		t.Setenv("CONFIG_PATH", writeConfig(t, "cue:\n  second_postponement: 4\nlog:\n  level: error\n"))

		// Act
		application, err := NewApplication("", nil)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 4, application.Config().GetSecondPostponement())
	})

	t.Run("should fail for a missing CONFIG_PATH file", func(t *testing.T) {
		// Arrange
		t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

		// Act
		application, err := NewApplication("", nil)

		// Assert
		assert.Error(t, err)
		assert.Nil(t, application)
		assert.Contains(t, err.Error(), "failed to load config from file")
	})

	t.Run("should fall back to environment variables", func(t *testing.T) {
		// Arrange
		t.Setenv("CONFIG_PATH", "")
		t.Setenv("MAX_CUE_TIME_LENGTH", "7")
		t.Setenv("LOG_LEVEL", "error")

		// Act
		application, err := NewApplication("", nil)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 7, application.Config().GetMaxCueTimeLength())
	})

	t.Run("should apply overrides on top of loaded settings", func(t *testing.T) {
		// Arrange
		t.Setenv("CONFIG_PATH", "")
		t.Setenv("MAX_CUE_TIME_LENGTH", "7")
		overrides := map[string]interface{}{
			"cue.max_time_length": 12,
			"log.level":           "error",
		}

		// Act
		application, err := NewApplication("", overrides)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 12, application.Config().GetMaxCueTimeLength())
		assert.Equal(t, "error", application.Config().GetLogLevel())
	})

	t.Run("should reject an invalid log level", func(t *testing.T) {
		// Arrange
		t.Setenv("CONFIG_PATH", "")
		t.Setenv("LOG_LEVEL", "loud")

		// Act
		_, err := NewApplication("", nil)

		// Assert
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create logger")
	})

	t.Run("should reject invalid overrides", func(t *testing.T) {
		// Arrange
		t.Setenv("CONFIG_PATH", "")

		// Act
		_, err := NewApplication("", map[string]interface{}{"output.format": "srt", "log.level": "error"})

		// Assert
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}

func TestApplication_Convert(t *testing.T) {
	t.Run("should render the full document with default settings", func(t *testing.T) {
		// Arrange
		application := newTestApplication(t, nil)
		expected := "WEBVTT\n\n" +
			"\n00:00:00.000 --> 00:00:02.450\n- The bottom line is we have to improve our process.\n" +
			"\n00:00:02.450 --> 00:00:03.600\n- Thank you.\n"

		// Act
		out, summary := convertFixture(t, application)

		// Assert
		assert.Equal(t, expected, out)
		assert.Equal(t, "board-meeting-clip", summary.JobName)
		assert.Equal(t, 14, summary.Tokens)
		assert.Equal(t, 2, summary.Cues)
		assert.Equal(t, len(expected), summary.Bytes)
		assert.Equal(t, 2, summary.Flushes[segmenter.FlushPunctuation])
	})

	t.Run("should postpone every timestamp", func(t *testing.T) {
		// Arrange
		application := newTestApplication(t, map[string]interface{}{"cue.second_postponement": 3})

		// Act
		out, _ := convertFixture(t, application)

		// Assert
		assert.Contains(t, out, "00:00:03.000", "Transcription should start at 3 seconds")
		assert.NotContains(t, out, "00:00:00.000", "Transcription should not start at 0")
	})

	t.Run("should break cues on max time length", func(t *testing.T) {
		// Arrange
		application := newTestApplication(t, map[string]interface{}{"cue.max_time_length": 1})

		// Act
		out, summary := convertFixture(t, application)

		// Assert
		assert.Contains(t, out, "00:00:00.000 --> 00:00:01.900", "Cue is under 2 seconds (rounded down)")
		assert.Equal(t, 1, summary.Flushes[segmenter.FlushDuration])
	})

	t.Run("should break cues on max string length", func(t *testing.T) {
		// Arrange
		application := newTestApplication(t, map[string]interface{}{"cue.max_string_length": 4})

		// Act
		out, _ := convertFixture(t, application)

		// Assert
		assert.Contains(t, out, "\n- The\n")
		assert.Contains(t, out, "\n- bottom\n", "First word is broken immediately")
		assert.NotContains(t, out, "\n- \n", "empty cues are never written")
	})

	t.Run("should write JSON lines when configured", func(t *testing.T) {
		// Arrange
		application := newTestApplication(t, map[string]interface{}{"output.format": config.FormatJSONLines})

		// Act
		out, summary := convertFixture(t, application)

		// Assert
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.JSONEq(t, `{"text":"The bottom line is we have to improve our process.","start_ms":0,"end_ms":2450}`, lines[0])
		assert.JSONEq(t, `{"text":"Thank you.","start_ms":2450,"end_ms":3600}`, lines[1])
		assert.Equal(t, config.FormatJSONLines, summary.Format)
	})

	t.Run("should use CRLF line endings when configured", func(t *testing.T) {
		// Arrange
		application := newTestApplication(t, map[string]interface{}{"output.line_ending": "\r\n"})

		// Act
		out, _ := convertFixture(t, application)

		// Assert
		assert.True(t, strings.HasPrefix(out, "WEBVTT\r\n\r\n\r\n00:00:00.000"))
		assert.NotContains(t, strings.ReplaceAll(out, "\r\n", ""), "\n")
	})

	t.Run("should reject input that is not JSON", func(t *testing.T) {
		// Arrange
		application := newTestApplication(t, nil)
		var out bytes.Buffer

		// Act
		_, err := application.Convert(strings.NewReader("{abcd)"), &out)

		// Assert
		assert.True(t, errors.Is(err, transcript.ErrNotJSON))
		assert.Empty(t, out.String())
	})

	t.Run("should produce no output on malformed timestamps", func(t *testing.T) {
		// Arrange
		core, logs := observer.New(zapcore.ErrorLevel)
		application, err := NewApplicationWithConfig(config.NewConfiguration(), zap.New(core))
		require.NoError(t, err)
		input := `{"results":{"items":[
			{"start_time":"0.0","end_time":"0.5","type":"pronunciation","alternatives":[{"content":"Hello"}]},
			{"start_time":"0.6","end_time":"ab:cd","type":"pronunciation","alternatives":[{"content":"world"}]}
		]}}`
		var out bytes.Buffer

		// Act
		_, err = application.Convert(strings.NewReader(input), &out)

		// Assert
		assert.True(t, errors.Is(err, timestamp.ErrInvalidTimestamp))
		assert.Empty(t, out.String())
		assert.Equal(t, 1, logs.FilterMessage("segmentation failed").Len())
	})
}

func TestApplication_ConvertFile(t *testing.T) {
	t.Run("should write the document to the output path", func(t *testing.T) {
		// Arrange
		application := newTestApplication(t, nil)
		outputPath := filepath.Join(t.TempDir(), "out.vtt")

		// Act
		summary, err := application.ConvertFile(fixturePath, outputPath)

		// Assert
		require.NoError(t, err)
		data, err := os.ReadFile(outputPath)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "WEBVTT"))
		assert.Contains(t, string(data), "The bottom line is we have to improve our")
		assert.Equal(t, len(data), summary.Bytes)
	})

	t.Run("should not create output when the input is missing", func(t *testing.T) {
		// Arrange
		application := newTestApplication(t, nil)
		outputPath := filepath.Join(t.TempDir(), "out.vtt")

		// Act
		_, err := application.ConvertFile(filepath.Join(t.TempDir(), "missing.json"), outputPath)

		// Assert
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load transcription")
		_, statErr := os.Stat(outputPath)
		assert.True(t, os.IsNotExist(statErr))
	})
}
