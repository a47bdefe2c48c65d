package tripper

import (
	"errors"
	"fmt"
)

var (
	ErrTurnOpen = errors.New("conversation already has an open turn")

	errVoiceDisabled = errors.New("voice replies are not configured")

	ErrMissingDestination = &ValidationError{
		Field:   "destination",
		Message: "Please fill either Destination or Trip Details so we know where you are planning to travel.",
	}
	ErrEmptyMessage = &ValidationError{
		Field:   "message",
		Message: "Please type a message or record your voice.",
	}
)

// FallbackNotice replaces the assistant reply when the completion service
// fails before producing any text.
const FallbackNotice = "Tripper going offline, wait a second"

const oracleMessage = "Tripper could not reach the planning service, please try again."

// ValidationError is a rejected input. Message is safe to show to users.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// OracleError wraps a failure of the completion service.
type OracleError struct {
	Op  string
	Err error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

// ErrorMessage returns the text shown to users for err.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	return oracleMessage
}
