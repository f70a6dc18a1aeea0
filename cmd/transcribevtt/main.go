package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"transcribevtt/internal/app"
)

const version = "1.0"

// main is the application entry point
func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run parses args, converts one transcription and returns the process exit code
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("transcribevtt", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Run 'transcribevtt -help' for usage.")
	}

	var (
		helpFlag    = fs.Bool("help", false, "Show help message")
		versionFlag = fs.Bool("version", false, "Show version information")
		inputPath   = fs.String("input", "", "Transcription JSON file (.json or .json.zst); stdin when empty or -")
		outputPath  = fs.String("output", "", "Output file; stdout when empty or -")
		configPath  = fs.String("config", "", "Configuration file (yaml, toml or json)")
		maxLength   = fs.Int("max-length", 0, "Maximum characters per cue")
		maxTime     = fs.Int("max-time", 0, "Maximum seconds per cue")
		postpone    = fs.Int("postpone", 0, "Seconds added to every timestamp")
		format      = fs.String("format", "", "Output format: vtt or jsonl")
		logLevel    = fs.String("log-level", "", "Log level: debug, info, warn or error")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printHelp(stdout)
			return 0
		}
		return 2
	}

	if *helpFlag {
		printHelp(stdout)
		return 0
	}

	if *versionFlag {
		printVersion(stdout)
		return 0
	}

	// Flags override file and environment settings, but only when given
	overrides := make(map[string]interface{})
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-length":
			overrides["cue.max_string_length"] = *maxLength
		case "max-time":
			overrides["cue.max_time_length"] = *maxTime
		case "postpone":
			overrides["cue.second_postponement"] = *postpone
		case "format":
			overrides["output.format"] = *format
		case "log-level":
			overrides["log.level"] = *logLevel
		}
	})

	application, err := app.NewApplication(*configPath, overrides)
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}
	defer application.Logger().Sync()

	if err := convert(application, *inputPath, *outputPath, stdin, stdout); err != nil {
		fmt.Fprintf(stderr, "Application error: %v\n", err)
		return 1
	}
	return 0
}

func convert(application *app.Application, inputPath, outputPath string, stdin io.Reader, stdout io.Writer) error {
	application.Logger().Debug("starting conversion",
		zap.String("component", "main"),
		zap.String("version", version),
		zap.String("input", inputPath),
		zap.String("output", outputPath))

	var err error
	if isStdio(inputPath) {
		if isStdio(outputPath) {
			_, err = application.Convert(stdin, stdout)
			return err
		}
		out, err := captureTo(application, stdin)
		if err != nil {
			return err
		}
		return os.WriteFile(outputPath, out, 0644)
	}

	if isStdio(outputPath) {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		_, err = application.Convert(f, stdout)
		return err
	}

	_, err = application.ConvertFile(inputPath, outputPath)
	return err
}

// captureTo converts r into memory so a failed run leaves no output file behind
func captureTo(application *app.Application, r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := application.Convert(r, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isStdio(path string) bool {
	return path == "" || path == "-"
}

// printHelp displays command line usage information
func printHelp(w io.Writer) {
	fmt.Fprintln(w, "transcribevtt - AWS Transcribe JSON to WebVTT subtitles")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "    transcribevtt [OPTIONS]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	fmt.Fprintln(w, "    -input PATH        Transcription JSON (.json or .json.zst), default stdin")
	fmt.Fprintln(w, "    -output PATH       Output file, default stdout")
	fmt.Fprintln(w, "    -config PATH       Configuration file (yaml, toml or json)")
	fmt.Fprintln(w, "    -max-length N      Maximum characters per cue (default 50)")
	fmt.Fprintln(w, "    -max-time N        Maximum seconds per cue (default 30)")
	fmt.Fprintln(w, "    -postpone N        Seconds added to every timestamp (default 0)")
	fmt.Fprintln(w, "    -format FORMAT     vtt or jsonl (default vtt)")
	fmt.Fprintln(w, "    -log-level LEVEL   debug, info, warn or error (default info)")
	fmt.Fprintln(w, "    -h, -help          Show this help message")
	fmt.Fprintln(w, "    -version           Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "CONFIGURATION:")
	fmt.Fprintln(w, "    Settings are read from -config, then CONFIG_PATH, then environment")
	fmt.Fprintln(w, "    variables (MAX_CUE_STRING_LENGTH, MAX_CUE_TIME_LENGTH,")
	fmt.Fprintln(w, "    SECOND_POSTPONEMENT, OUTPUT_FORMAT, LINE_ENDING=lf|crlf, LOG_LEVEL).")
	fmt.Fprintln(w, "    Flags win.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, "    transcribevtt -input job.json -output job.vtt")
	fmt.Fprintln(w, "    transcribevtt -postpone 3 < job.json > job.vtt")
	fmt.Fprintln(w, "    transcribevtt -input job.json.zst -format jsonl")
}

// printVersion displays version information
func printVersion(w io.Writer) {
	fmt.Fprintln(w, "transcribevtt")
	fmt.Fprintf(w, "Version: %s\n", version)
}
