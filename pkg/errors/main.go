package errors

import (
	"errors"
	"fmt"
	"strings"
)

const (
	ErrorTypeDatabaseError  = "DATABASE_ERROR"
	ErrorTypeInvalidRequest = "INVALID_REQUEST"
	ErrorTypeConflict       = "CONFLICT"
	ErrorTypeUnknown        = "UNKNOWN_ERROR"
)

// AppError tags a failure with a type the handlers map to user-facing messages.
type AppError struct {
	Type    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(errType, message string, err error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

func NewInvalidRequestError(message string, err error) *AppError {
	return NewAppError(ErrorTypeInvalidRequest, message, err)
}

func NewDatabaseError(message string, err error) *AppError {
	return NewAppError(ErrorTypeDatabaseError, message, err)
}

func NewConflictError(message string, err error) *AppError {
	return NewAppError(ErrorTypeConflict, message, err)
}

// GetErrorType returns "" for nil and ErrorTypeUnknown for errors without an AppError in the chain.
func GetErrorType(err error) string {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}

	return ErrorTypeUnknown
}

var duplicateKeyMarkers = []string{
	"duplicate",
	"unique constraint",
}

// IsDuplicateKeyError matches unique violations from both postgres and sqlite drivers by message.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	for _, marker := range duplicateKeyMarkers {
		if strings.Contains(errMsg, marker) {
			return true
		}
	}
	return false
}
