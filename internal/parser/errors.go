package parser

import "fmt"

// ErrorKind categorises a payload-handling failure.
type ErrorKind int

const (
	// ErrKindCorruptFrame indicates the frame itself is unusable: unknown
	// code, illegal sender or destination for the code.
	ErrKindCorruptFrame ErrorKind = iota
	// ErrKindCorruptPayload indicates the frame is well-formed but the
	// payload does not match the shape required by its (code, verb).
	ErrKindCorruptPayload
	// ErrKindDecode indicates a field inside a structurally valid payload
	// could not be decoded.
	ErrKindDecode
	// ErrKindNotImplemented indicates a code with no parser.
	ErrKindNotImplemented
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case ErrKindCorruptFrame:
		return "Corrupt Frame"
	case ErrKindCorruptPayload:
		return "Corrupt Payload"
	case ErrKindDecode:
		return "Decode Error"
	case ErrKindNotImplemented:
		return "Not Implemented"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// ProtocolError represents a failure while validating or decoding a frame
type ProtocolError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface
func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// NewCorruptFrameError creates a frame-level validation error
func NewCorruptFrameError(format string, args ...any) *ProtocolError {
	return &ProtocolError{Kind: ErrKindCorruptFrame, Message: fmt.Sprintf(format, args...)}
}

// NewCorruptPayloadError creates a payload-shape validation error
func NewCorruptPayloadError(format string, args ...any) *ProtocolError {
	return &ProtocolError{Kind: ErrKindCorruptPayload, Message: fmt.Sprintf(format, args...)}
}

// NewDecodeError creates a field decoding error
func NewDecodeError(message string, err error) *ProtocolError {
	return &ProtocolError{Kind: ErrKindDecode, Message: message, Err: err}
}

// NewNotImplementedError creates an error for codes without a parser
func NewNotImplementedError(code string) *ProtocolError {
	return &ProtocolError{
		Kind:    ErrKindNotImplemented,
		Message: fmt.Sprintf("no parser for code %s", code),
	}
}

// IsCorruptFrame checks if an error is a frame-level validation error
func IsCorruptFrame(err error) bool {
	if perr, ok := err.(*ProtocolError); ok {
		return perr.Kind == ErrKindCorruptFrame
	}
	return false
}

// IsCorruptPayload checks if an error is a payload-shape validation error
func IsCorruptPayload(err error) bool {
	if perr, ok := err.(*ProtocolError); ok {
		return perr.Kind == ErrKindCorruptPayload
	}
	return false
}

// IsDecodeError checks if an error is a field decoding error
func IsDecodeError(err error) bool {
	if perr, ok := err.(*ProtocolError); ok {
		return perr.Kind == ErrKindDecode
	}
	return false
}

// IsNotImplemented checks if an error indicates a missing parser
func IsNotImplemented(err error) bool {
	if perr, ok := err.(*ProtocolError); ok {
		return perr.Kind == ErrKindNotImplemented
	}
	return false
}
