package serrors

import "fmt"

// Base is a coded error carried across service boundaries. Code is stable
// and machine-readable; Message is for humans; Hint is optional guidance.
type Base struct {
	Code    string
	Message string
	Hint    string
}

func NewError(code, message, hint string) *Base {
	return &Base{Code: code, Message: message, Hint: hint}
}

func (e *Base) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Base) Is(target error) bool {
	other, ok := target.(*Base)
	if !ok {
		return false
	}
	return other.Code == e.Code
}
