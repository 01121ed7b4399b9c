package shared

import "fmt"

type ApiErrorType string

const (
	ApiErrorTypeInvalidToken ApiErrorType = "invalid_token"
	ApiErrorTypeNetwork      ApiErrorType = "network"
	ApiErrorTypeValidation   ApiErrorType = "validation"
	ApiErrorTypeServer       ApiErrorType = "server"
	ApiErrorTypeCanceled     ApiErrorType = "canceled"

	ApiErrorTypeOther ApiErrorType = "other"
)

type ApiError struct {
	Type   ApiErrorType `json:"type"`
	Status int          `json:"status"`
	Msg    string       `json:"msg"`

	// only set for validation errors and server errors that name a form field
	Field string `json:"field,omitempty"`
}

func (e *ApiError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d)", e.Msg, e.Status)
	}
	return e.Msg
}

func NewValidationError(field, msg string) *ApiError {
	return &ApiError{Type: ApiErrorTypeValidation, Field: field, Msg: msg}
}
