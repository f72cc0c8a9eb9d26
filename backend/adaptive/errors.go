package adaptive

import "fmt"

// Error is a domain error with a stable machine-readable code that the API
// layer maps to a 4xx response.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches errors by code so wrapped and reworded errors still compare
// equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidConfig = &Error{Code: "invalid_config", Message: "invalid session configuration"}
	ErrNotOwner      = &Error{Code: "not_owner", Message: "session belongs to another user"}
	ErrInvalidState  = &Error{Code: "invalid_state", Message: "operation not allowed in the current session state"}
	ErrStaleQuestion = &Error{Code: "stale_question", Message: "answer submitted for a question that is no longer current"}
	ErrInvalidAnswer = &Error{Code: "invalid_answer", Message: "selected option is out of range"}
	ErrNoQuestions   = &Error{Code: "no_questions_available", Message: "no questions available for the requested scope"}
)

// Errorf derives an error that keeps the sentinel's code but carries a
// request-specific message.
func Errorf(base *Error, format string, args ...interface{}) *Error {
	return &Error{Code: base.Code, Message: fmt.Sprintf(format, args...)}
}
