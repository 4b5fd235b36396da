package simulator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyInput is returned for a blank target.
	ErrEmptyInput = errors.New("simulator: empty target")

	// ErrInvalidFormat is returned when the target is not shaped like a
	// domain or URL.
	ErrInvalidFormat = errors.New("simulator: invalid target format")

	// ErrBusy is returned by Submit while a simulation is in progress.
	ErrBusy = errors.New("simulator: simulation already running")
)

// targetPattern accepts an optional http(s) scheme, a host whose last label
// is 2-6 letters (a trailing root dot is allowed), and an optional path
// starting with a slash.
var targetPattern = regexp.MustCompile(`(?i)^(https?://)?([\da-z.-]+)\.([a-z]{2,6})\.?(/[/\w .-]*)?$`)

// Validate trims target and checks its shape. Blank input is reported as
// ErrEmptyInput before any format check.
func Validate(target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", ErrEmptyInput
	}
	if !targetPattern.MatchString(target) {
		return "", ErrInvalidFormat
	}
	return target, nil
}

// UserMessage returns the inline message shown for a rejected target.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return "Please enter a valid URL or domain"
	case errors.Is(err, ErrInvalidFormat):
		return "Please enter a valid URL format"
	case errors.Is(err, ErrBusy):
		return "A scan is already running"
	case err == nil:
		return ""
	default:
		return err.Error()
	}
}
