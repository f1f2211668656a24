// Package apperr defines the error kinds the engine and its hosts report, and how they surface
package apperr

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

var (
	ErrInvalidPattern = errors.New("invalid pattern")
	ErrInvalidOption  = errors.New("invalid option")
	ErrPatternTimeout = errors.New("pattern evaluation timed out")
	ErrIO             = errors.New("i/o failure")
)

// InvalidPattern reports a pattern that cannot be compiled or is not acceptable
func InvalidPattern(pattern string, cause error) error {
	var err error
	if cause == nil {
		err = errors.Newf("invalid pattern %q", pattern)
	} else {
		err = errors.Wrapf(cause, "invalid pattern %q", pattern)
	}
	return errors.WithHint(errors.Mark(err, ErrInvalidPattern), "check the regular expression syntax")
}

// InvalidOption reports an unknown mode or style value
func InvalidOption(name, value string) error {
	err := errors.Newf("unsupported %s %q", name, value)
	return errors.WithHint(errors.Mark(err, ErrInvalidOption), "see --help for accepted values")
}

// InvalidValue reports a document or config value that failed validation
func InvalidValue(what string, cause error) error {
	return errors.Mark(errors.Wrapf(cause, "invalid %s", what), ErrInvalidOption)
}

func PatternTimeout(pattern string, cause error) error {
	err := errors.Wrapf(cause, "pattern %q", pattern)
	return errors.WithHint(errors.Mark(err, ErrPatternTimeout), "simplify the pattern or raise regex-timeout")
}

// IO wraps host-level persistence failures
func IO(cause error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(cause, format, args...), ErrIO)
}

// Kind names the error category for API consumers
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidPattern):
		return "InvalidPattern"
	case errors.Is(err, ErrInvalidOption):
		return "InvalidOption"
	case errors.Is(err, ErrPatternTimeout):
		return "PatternTimeout"
	case errors.Is(err, ErrIO):
		return "IOError"
	default:
		return "Internal"
	}
}

func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidPattern), errors.Is(err, ErrInvalidOption):
		return http.StatusBadRequest
	case errors.Is(err, ErrPatternTimeout):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ExitCode - 2 for bad user input, 1 for everything else
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidPattern), errors.Is(err, ErrInvalidOption):
		return 2
	default:
		return 1
	}
}

// FromKind rebuilds an error reported by a remote node from its kind and message
func FromKind(kind, message string) error {
	err := errors.New(message)
	switch kind {
	case "InvalidPattern":
		return errors.Mark(err, ErrInvalidPattern)
	case "InvalidOption":
		return errors.Mark(err, ErrInvalidOption)
	case "PatternTimeout":
		return errors.Mark(err, ErrPatternTimeout)
	case "IOError":
		return errors.Mark(err, ErrIO)
	default:
		return err
	}
}

// Hints returns user-facing remediation attached along the chain
func Hints(err error) []string {
	return errors.GetAllHints(err)
}
