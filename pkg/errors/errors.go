package errors

import "fmt"

// Error codes
const (
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeValidation = "VALIDATION_ERROR"
	CodeAPIError   = "API_ERROR"
	CodeStorage    = "STORAGE_ERROR"
	CodeConfig     = "CONFIG_ERROR"
)

type ImportError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *ImportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ImportError) Unwrap() error {
	return e.Cause
}

func (e *ImportError) WithCause(cause error) *ImportError {
	e.Cause = cause
	return e
}

// NotFoundError marks a page that does not exist on Wikipedia. It is
// user-actionable: retrying with an exact page title may succeed.
type NotFoundError struct {
	*ImportError
	Title string
}

func NewNotFoundError(title string) *NotFoundError {
	return &NotFoundError{
		ImportError: &ImportError{
			Message:    fmt.Sprintf("no page found for %q, try an exact Wikipedia title (name:Exact_Title)", title),
			Code:       CodeNotFound,
			StatusCode: 404,
			Context:    map[string]any{"title": title},
		},
		Title: title,
	}
}

func IsNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// ConflictError marks a profile name the store already holds.
type ConflictError struct {
	*ImportError
	Name string
}

func NewConflictError(name string) *ConflictError {
	return &ConflictError{
		ImportError: &ImportError{
			Message:    fmt.Sprintf("profile %q already exists", name),
			Code:       CodeConflict,
			StatusCode: 409,
			Context:    map[string]any{"name": name},
		},
		Name: name,
	}
}

func IsConflict(err error) bool {
	_, ok := err.(*ConflictError)
	return ok
}

type ValidationError struct {
	*ImportError
	Field string
}

func NewValidationError(message, field string) *ValidationError {
	return &ValidationError{
		ImportError: &ImportError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context:    map[string]any{"field": field},
		},
		Field: field,
	}
}

type APIError struct {
	*ImportError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		ImportError: &ImportError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

type StorageError struct {
	*ImportError
	Operation string
	Key       string
}

func NewStorageError(message, operation, key string, cause error) *StorageError {
	return &StorageError{
		ImportError: &ImportError{
			Message:    message,
			Code:       CodeStorage,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ConfigError struct {
	*ImportError
}

func NewConfigError(message string) *ConfigError {
	return &ConfigError{
		ImportError: &ImportError{
			Message:    message,
			Code:       CodeConfig,
			StatusCode: 500,
		},
	}
}
