package zel

import "fmt"

// Result identifies the kind of failure returned by a decoder operation.
//
// Decoder calls fail with an *Error carrying exactly one Result, except that
// Close returns the stream close callback's own error, and Decode and
// DecodeConfig return read errors from their io.Reader unchanged. Use
// errors.As to recover the Result from a returned *Error.
type Result int

const (
	// ResultOK is never returned as an error; it exists so the zero value
	// of Result has a defined, printable name.
	ResultOK Result = iota

	// ResultInvalidArgument covers null pointers, a stride smaller than the
	// width, or an unknown enum value supplied by the caller.
	ResultInvalidArgument

	// ResultInvalidMagic covers a header magic or version mismatch.
	ResultInvalidMagic

	// ResultUnsupportedVersion is reserved for a future file version.
	ResultUnsupportedVersion

	// ResultUnsupportedFormat covers a missing required capability bit, an
	// unknown color format or compression type, or a palette size that
	// exceeds the platform's representable range.
	ResultUnsupportedFormat

	// ResultCorruptData covers any bounds, layout, or structural invariant
	// violation.
	ResultCorruptData

	// ResultOutOfMemory covers a scratch allocation failure.
	ResultOutOfMemory

	// ResultOutOfBounds covers a frame index or zone index that is out of
	// range, or a request for a palette that does not exist.
	ResultOutOfBounds

	// ResultIO covers a short read from a stream callback.
	ResultIO

	// ResultInternal covers a should-be-unreachable condition.
	ResultInternal
)

// ResultToString returns a stable, machine-comparable identifier for r. The
// string form never changes across releases; it is meant for logs and
// diagnostics, not for end-user display.
func ResultToString(r Result) string {
	switch r {
	case ResultOK:
		return "ZEL_OK"
	case ResultInvalidArgument:
		return "ZEL_INVALID_ARGUMENT"
	case ResultInvalidMagic:
		return "ZEL_INVALID_MAGIC"
	case ResultUnsupportedVersion:
		return "ZEL_UNSUPPORTED_VERSION"
	case ResultUnsupportedFormat:
		return "ZEL_UNSUPPORTED_FORMAT"
	case ResultCorruptData:
		return "ZEL_CORRUPT_DATA"
	case ResultOutOfMemory:
		return "ZEL_OUT_OF_MEMORY"
	case ResultOutOfBounds:
		return "ZEL_OUT_OF_BOUNDS"
	case ResultIO:
		return "ZEL_IO"
	case ResultInternal:
		return "ZEL_INTERNAL"
	default:
		return "ZEL_UNKNOWN"
	}
}

// Error is the concrete error type returned by zel operations that fail
// (see Result for the exceptions). The Result identifies the kind of
// failure; Msg carries a
// human-readable detail that may change between releases.
type Error struct {
	Result Result
	Msg    string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return ResultToString(e.Result)
	}
	return fmt.Sprintf("zel: %s: %s", ResultToString(e.Result), e.Msg)
}

// Is reports whether target is the same Result kind, so callers can write
// errors.Is(err, zel.ErrCorruptData) and similar.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Result == e.Result
}

func errf(r Result, format string, args ...interface{}) *Error {
	return &Error{Result: r, Msg: fmt.Sprintf(format, args...)}
}

// Sentinel errors for the common Result kinds, usable with errors.Is.
var (
	ErrInvalidArgument    = &Error{Result: ResultInvalidArgument}
	ErrInvalidMagic       = &Error{Result: ResultInvalidMagic}
	ErrUnsupportedVersion = &Error{Result: ResultUnsupportedVersion}
	ErrUnsupportedFormat  = &Error{Result: ResultUnsupportedFormat}
	ErrCorruptData        = &Error{Result: ResultCorruptData}
	ErrOutOfMemory        = &Error{Result: ResultOutOfMemory}
	ErrOutOfBounds        = &Error{Result: ResultOutOfBounds}
	ErrIO                 = &Error{Result: ResultIO}
	ErrInternal           = &Error{Result: ResultInternal}

	// ErrClosed reports use of a Decoder after Close; it maps to
	// ResultInternal per spec (operations on a closed handle are undefined,
	// the Go binding chooses to fail loudly rather than corrupt memory).
	ErrClosed = &Error{Result: ResultInternal, Msg: "decoder is closed"}
)
