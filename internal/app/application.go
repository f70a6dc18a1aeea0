package app

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"transcribevtt/internal/config"
	"transcribevtt/internal/cue"
	"transcribevtt/internal/logger"
	"transcribevtt/internal/segmenter"
	"transcribevtt/internal/transcript"
	"transcribevtt/internal/webvtt"
)

// Summary describes one completed conversion
type Summary struct {
	JobName string
	Format  string
	Tokens  int
	Cues    int
	Bytes   int
	Flushes map[segmenter.FlushReason]int
}

// Application wires configuration, parsing, segmentation and rendering together
type Application struct {
	config    *config.Configuration
	zapLogger *zap.Logger
}

// NewApplication loads configuration from configPath, falling back to CONFIG_PATH
// and then environment variables, applies overrides on top and builds the logger
// at the configured level.
func NewApplication(configPath string, overrides map[string]interface{}) (*Application, error) {
	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		return nil, err
	}
	for key, value := range overrides {
		cfg.Set(key, value)
	}

	zapLogger, err := logger.NewLoggerWithLevel(cfg.GetLogLevel())
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return NewApplicationWithConfig(cfg, zapLogger)
}

// LoadConfiguration prefers an explicit file, then CONFIG_PATH, then the environment
func LoadConfiguration(configPath string) (*config.Configuration, error) {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	if configPath != "" {
		cfg, err := config.NewConfigurationFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configPath, err)
		}
		return cfg, nil
	}

	cfg, err := config.NewConfigurationFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	return cfg, nil
}

// NewApplicationWithConfig creates an application from an existing configuration and logger
func NewApplicationWithConfig(cfg *config.Configuration, zapLogger *zap.Logger) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Application{
		config:    cfg,
		zapLogger: zapLogger,
	}, nil
}

// Config returns the configuration the application was built with
func (app *Application) Config() *config.Configuration {
	return app.config
}

// Logger returns the application logger
func (app *Application) Logger() *zap.Logger {
	return app.zapLogger
}

// Render segments a parsed transcription and returns the rendered document.
// Nothing is returned unless the whole transcription converts cleanly.
func (app *Application) Render(tr *transcript.Transcription) ([]byte, Summary, error) {
	var out bytes.Buffer
	summary := Summary{JobName: tr.JobName, Format: app.config.GetOutputFormat()}

	var sink cue.Sink
	var vtt *webvtt.Writer
	switch summary.Format {
	case config.FormatJSONLines:
		sink = cue.NewJSONOutput(&out, app.zapLogger)
	default:
		vtt = webvtt.NewWriterWithLogger(app.config.GetLineEnding(), app.zapLogger)
		sink = vtt
	}

	engine := segmenter.NewEngineWithLogger(app.config.SegmenterOptions(), sink, app.zapLogger)
	if err := engine.Run(tr.Tokens(), tr.SpeakerSegments()); err != nil {
		app.zapLogger.Error("segmentation failed",
			zap.String("job", tr.JobName),
			zap.Error(err))
		return nil, summary, fmt.Errorf("segmentation failed: %w", err)
	}

	if vtt != nil {
		if _, err := vtt.WriteTo(&out); err != nil {
			return nil, summary, err
		}
	}

	stats := engine.Stats()
	summary.Tokens = stats.Tokens
	summary.Cues = stats.Cues
	summary.Flushes = stats.Flushes
	summary.Bytes = out.Len()

	app.zapLogger.Info("transcription converted",
		zap.String("job", summary.JobName),
		zap.String("format", summary.Format),
		zap.Int("tokens", summary.Tokens),
		zap.Int("cues", summary.Cues),
		zap.Int("speaker_flushes", stats.Flushes[segmenter.FlushSpeaker]),
		zap.Int("length_flushes", stats.Flushes[segmenter.FlushLength]),
		zap.Int("duration_flushes", stats.Flushes[segmenter.FlushDuration]),
		zap.Int("punctuation_flushes", stats.Flushes[segmenter.FlushPunctuation]))

	return out.Bytes(), summary, nil
}

// Convert reads a transcription from r and writes the rendered document to w
func (app *Application) Convert(r io.Reader, w io.Writer) (Summary, error) {
	tr, err := transcript.Decode(r)
	if err != nil {
		app.zapLogger.Error("failed to parse transcription", zap.Error(err))
		return Summary{}, fmt.Errorf("failed to parse transcription: %w", err)
	}

	doc, summary, err := app.Render(tr)
	if err != nil {
		return summary, err
	}

	if _, err := w.Write(doc); err != nil {
		return summary, fmt.Errorf("failed to write output: %w", err)
	}
	return summary, nil
}

// ConvertFile converts the transcription at inputPath into outputPath.
// The output file is only created once conversion succeeds.
func (app *Application) ConvertFile(inputPath, outputPath string) (Summary, error) {
	tr, err := transcript.Load(inputPath)
	if err != nil {
		app.zapLogger.Error("failed to load transcription",
			zap.String("path", inputPath),
			zap.Error(err))
		return Summary{}, fmt.Errorf("failed to load transcription: %w", err)
	}

	doc, summary, err := app.Render(tr)
	if err != nil {
		return summary, err
	}

	if err := os.WriteFile(outputPath, doc, 0644); err != nil {
		return summary, fmt.Errorf("failed to write output file %s: %w", outputPath, err)
	}

	app.zapLogger.Info("output written",
		zap.String("input", inputPath),
		zap.String("output", outputPath))
	return summary, nil
}
