package timestamp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultRaw is used when a token carries no timestamp
const DefaultRaw = "00.000"

// fractionDigits is the microsecond resolution fractions are padded to
const fractionDigits = 6

// ErrInvalidTimestamp is returned when a timestamp component is not numeric
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// Parse normalizes a transcription timestamp of the form
// [[hours:]minutes:]seconds[.fraction] into an absolute offset from
// 00:00:00.000, shifted forward by offsetSeconds.
//
// Hours are never read. When three colon-separated components are present the
// leading one replaces the minutes value, so "01:02:03" yields one minute and
// three seconds.
func Parse(raw string, offsetSeconds int) (time.Duration, error) {
	if raw == "" {
		raw = DefaultRaw
	}

	minutes := "00"
	micros := strings.Repeat("0", fractionDigits)

	parts := strings.Split(raw, ".")
	if len(parts) > 1 {
		micros = padRight(parts[len(parts)-1], fractionDigits)
	}

	fields := strings.Split(parts[0], ":")
	seconds := padLeft(fields[len(fields)-1], 2)
	if len(fields) > 1 {
		minutes = padLeft(fields[len(fields)-2], 2)
	}
	if len(fields) > 2 {
		minutes = padLeft(fields[len(fields)-3], 2)
	}

	for _, f := range fields {
		if err := numeric(raw, f); err != nil {
			return 0, err
		}
	}

	mins, err := component(raw, minutes)
	if err != nil {
		return 0, err
	}
	secs, err := component(raw, seconds)
	if err != nil {
		return 0, err
	}
	// digits past microsecond resolution are validated, then dropped
	if err := numeric(raw, micros); err != nil {
		return 0, err
	}
	usec, err := component(raw, micros[:fractionDigits])
	if err != nil {
		return 0, err
	}

	d := time.Duration(mins)*time.Minute +
		time.Duration(secs)*time.Second +
		time.Duration(usec)*time.Microsecond +
		time.Duration(offsetSeconds)*time.Second
	return d, nil
}

// MustParse is like Parse but panics on malformed input. Intended for tests and constants.
func MustParse(raw string, offsetSeconds int) time.Duration {
	d, err := Parse(raw, offsetSeconds)
	if err != nil {
		panic(err)
	}
	return d
}

func numeric(raw, digits string) error {
	for _, r := range digits {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: %q has non-numeric component %q", ErrInvalidTimestamp, raw, digits)
		}
	}
	return nil
}

func component(raw, digits string) (int64, error) {
	if err := numeric(raw, digits); err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimestamp, raw, err)
	}
	return n, nil
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// padRight pads with trailing zeros: "5" is half a second, not five microseconds.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat("0", width-len(s))
}
