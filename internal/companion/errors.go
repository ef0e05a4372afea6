package companion

import (
	"errors"
	"fmt"
)

// Reason classifies a ControlError.
type Reason int

const (
	// ReasonUnspecified is an application failure with no finer category.
	ReasonUnspecified Reason = iota
	// ReasonOutOfRetries means the game API kept failing after every retry.
	ReasonOutOfRetries
	// ReasonInvalidResource means a code did not resolve to a known item or monster.
	ReasonInvalidResource
	// ReasonCommandResponse carries a message meant to be shown to the user as is.
	ReasonCommandResponse
)

var reasonNames = map[Reason]string{
	ReasonUnspecified:     "Unspecified",
	ReasonOutOfRetries:    "OutOfRetries",
	ReasonInvalidResource: "InvalidResource",
	ReasonCommandResponse: "CommandResponse",
}

func (r Reason) String() string {
	if s, ok := reasonNames[r]; ok {
		return s
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// ControlError is an expected failure raised for control-flow reasons rather
// than a bug.
type ControlError struct {
	Reason  Reason
	Message string
	// Err is the underlying cause, if any.
	Err error
}

func (e *ControlError) Error() string {
	return fmt.Sprintf("(%s) %s", e.Reason, e.Message)
}

func (e *ControlError) Unwrap() error { return e.Err }

// respond builds a ControlError whose message is shown to the user.
func respond(format string, args ...any) *ControlError {
	return &ControlError{Reason: ReasonCommandResponse, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) *ControlError {
	return &ControlError{Reason: ReasonInvalidResource, Message: fmt.Sprintf(format, args...)}
}

// UserMessage returns the text to show the user for err and true when err is
// a ControlError with a user-facing message (ReasonCommandResponse or
// ReasonInvalidResource).
func UserMessage(err error) (string, bool) {
	var ce *ControlError
	if errors.As(err, &ce) && (ce.Reason == ReasonCommandResponse || ce.Reason == ReasonInvalidResource) {
		return ce.Message, true
	}
	return "", false
}

// IsInvalidResource reports whether err means a lookup found nothing.
func IsInvalidResource(err error) bool {
	var ce *ControlError
	return errors.As(err, &ce) && ce.Reason == ReasonInvalidResource
}
