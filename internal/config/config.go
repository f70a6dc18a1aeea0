package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"transcribevtt/internal/segmenter"
)

const (
	// FormatVTT renders a WebVTT document
	FormatVTT = "vtt"
	// FormatJSONLines renders one JSON object per cue
	FormatJSONLines = "jsonl"
)

// Configuration provides type-safe access to application settings
type Configuration struct {
	viper *viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cue.max_string_length", segmenter.DefaultMaxCueStringLength)
	v.SetDefault("cue.max_time_length", segmenter.DefaultMaxCueTimeLength)
	v.SetDefault("cue.second_postponement", 0)
	v.SetDefault("output.format", FormatVTT)
	v.SetDefault("output.line_ending", "\n")
	v.SetDefault("log.level", "info")
}

// NewConfiguration creates a new Configuration instance with default settings
func NewConfiguration() *Configuration {
	v := viper.New()
	setDefaults(v)
	return &Configuration{viper: v}
}

// NewConfigurationFromFile creates a Configuration instance from a config file
func NewConfigurationFromFile(configFile string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	return &Configuration{viper: v}, nil
}

// NewConfigurationFromEnv creates a Configuration instance that reads from environment variables
func NewConfigurationFromEnv() (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	// Set up environment variable mapping
	v.SetEnvPrefix("TRANSCRIBEVTT")
	v.AutomaticEnv()

	// Map specific environment variables
	v.BindEnv("cue.max_string_length", "MAX_CUE_STRING_LENGTH")
	v.BindEnv("cue.max_time_length", "MAX_CUE_TIME_LENGTH")
	v.BindEnv("cue.second_postponement", "SECOND_POSTPONEMENT")
	v.BindEnv("output.format", "OUTPUT_FORMAT")
	v.BindEnv("output.line_ending", "LINE_ENDING")
	v.BindEnv("log.level", "LOG_LEVEL")

	return &Configuration{viper: v}, nil
}

// Set overrides a setting, taking precedence over file and environment values
func (c *Configuration) Set(key string, value interface{}) {
	c.viper.Set(key, value)
}

// GetMaxCueStringLength returns the character budget per cue
func (c *Configuration) GetMaxCueStringLength() int {
	return c.viper.GetInt("cue.max_string_length")
}

// GetMaxCueTimeLength returns the seconds budget per cue
func (c *Configuration) GetMaxCueTimeLength() int {
	return c.viper.GetInt("cue.max_time_length")
}

// GetSecondPostponement returns the forward shift applied to every timestamp
func (c *Configuration) GetSecondPostponement() int {
	return c.viper.GetInt("cue.second_postponement")
}

// GetOutputFormat returns the configured output format
func (c *Configuration) GetOutputFormat() string {
	return c.viper.GetString("output.format")
}

// GetLineEnding returns the line terminator used in WebVTT output.
// The names "lf" and "crlf" are accepted so the setting can come from an environment variable.
func (c *Configuration) GetLineEnding() string {
	eol := c.viper.GetString("output.line_ending")
	switch strings.ToLower(eol) {
	case "lf":
		return "\n"
	case "crlf":
		return "\r\n"
	}
	return eol
}

// GetLogLevel returns the configured log level
func (c *Configuration) GetLogLevel() string {
	return c.viper.GetString("log.level")
}

// SegmenterOptions collects the cue thresholds into segmenter.Options
func (c *Configuration) SegmenterOptions() segmenter.Options {
	return segmenter.Options{
		MaxCueStringLength: c.GetMaxCueStringLength(),
		MaxCueTimeLength:   c.GetMaxCueTimeLength(),
		SecondPostponement: c.GetSecondPostponement(),
	}
}

// Validate checks that the configured values are usable
func (c *Configuration) Validate() error {
	if err := c.SegmenterOptions().Validate(); err != nil {
		return fmt.Errorf("invalid cue settings: %w", err)
	}

	switch c.GetOutputFormat() {
	case FormatVTT, FormatJSONLines:
	default:
		return fmt.Errorf("unsupported output format %q", c.GetOutputFormat())
	}

	switch c.GetLineEnding() {
	case "\n", "\r\n":
	default:
		return fmt.Errorf("unsupported line ending %q", c.GetLineEnding())
	}

	return nil
}
