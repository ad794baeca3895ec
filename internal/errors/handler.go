package apperrors

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the ANSI escape sequences used when printing errors.
// The CLI passes its theme-aware implementation; tests can pass NoColor.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

// NoColor is a ColorProvider that emits no escape sequences.
type NoColor struct{}

func (NoColor) Red() string    { return "" }
func (NoColor) Yellow() string { return "" }
func (NoColor) Reset() string  { return "" }

// HandleSearchError prints a user-facing description of a failed search and
// returns the matching exit code. A nil error prints nothing and returns
// ExitSuccess.
func HandleSearchError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	if colors == nil {
		colors = NoColor{}
	}

	code := ExitCodeFor(err)
	var fault WorkerFault
	switch {
	case code == ExitErrorConfig:
		fmt.Fprintf(out, "%sConfiguration error:%s %v\n", colors.Red(), colors.Reset(), err)
	case code == ExitErrorTimeout:
		fmt.Fprintf(out, "%sSearch timed out%s after %s: %v\n", colors.Yellow(), colors.Reset(), duration, err)
	case code == ExitErrorCanceled:
		fmt.Fprintf(out, "%sSearch canceled%s after %s.\n", colors.Yellow(), colors.Reset(), duration)
	case errors.As(err, &fault):
		fmt.Fprintf(out, "%sWorker fault%s in segment %d at index %d: %v\n",
			colors.Red(), colors.Reset(), fault.Segment, fault.Index, fault.Cause)
	default:
		fmt.Fprintf(out, "%sError:%s %v\n", colors.Red(), colors.Reset(), err)
	}
	return code
}
