package wac

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the parser, decoder and writer matches
// exactly one of these with errors.Is. ErrDecodeRange is always reported
// together with ErrCorruptFrame.
var (
	// ErrInvalidFormat indicates a missing magic or an impossible header field.
	ErrInvalidFormat = errors.New("invalid WAC format")
	// ErrUnsupportedVersion indicates a WAC file with an unknown version byte.
	ErrUnsupportedVersion = errors.New("unsupported WAC version")
	// ErrTruncatedInput indicates that a read went past the end of the source.
	ErrTruncatedInput = errors.New("truncated input")
	// ErrCorruptFrame indicates a block or frame that violates the format.
	ErrCorruptFrame = errors.New("corrupt frame")
	// ErrDecodeRange indicates a reconstructed sample outside the bit depth.
	ErrDecodeRange = errors.New("sample out of range")
	// ErrSinkWrite indicates that the destination did not accept the output.
	ErrSinkWrite = errors.New("sink write failed")
	// ErrTooLarge indicates a recording above the converter's sample limit.
	ErrTooLarge = errors.New("recording too large")
)

// Error carries the kind of failure and where in the source it happened.
type Error struct {
	Kind error
	// Offset is the byte offset in the source, or -1 when not applicable.
	Offset int64
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s at offset %d (0x%x)", msg, e.Offset, e.Offset)
	}

	if e.Detail != "" {
		msg += ": " + e.Detail
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func newError(kind error, offset int64, format string, args ...any) *Error {
	return &Error{Kind: kind, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}

// corruptFrame marks err as a frame failure at offset, unless it already is.
func corruptFrame(offset int64, err error) error {
	if errors.Is(err, ErrCorruptFrame) {
		return err
	}

	return &Error{Kind: ErrCorruptFrame, Offset: offset, Err: err}
}

func sinkWrite(detail string, err error) error {
	if errors.Is(err, ErrSinkWrite) {
		return err
	}

	return &Error{Kind: ErrSinkWrite, Offset: -1, Detail: detail, Err: err}
}

// IsFormatError reports whether err was caused by the content of the source
// rather than by the destination or the environment.
func IsFormatError(err error) bool {
	return errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrUnsupportedVersion) ||
		errors.Is(err, ErrTruncatedInput) ||
		errors.Is(err, ErrCorruptFrame)
}

// ErrorKind returns a short label for err, used in logs and metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDecodeRange):
		return "decode_range"
	case errors.Is(err, ErrCorruptFrame):
		return "corrupt_frame"
	case errors.Is(err, ErrTruncatedInput):
		return "truncated"
	case errors.Is(err, ErrUnsupportedVersion):
		return "unsupported_version"
	case errors.Is(err, ErrInvalidFormat):
		return "invalid_format"
	case errors.Is(err, ErrSinkWrite):
		return "sink_write"
	case errors.Is(err, ErrTooLarge):
		return "too_large"
	default:
		return "other"
	}
}
