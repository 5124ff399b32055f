package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried by AppError.
const (
	CodeNotFound      = 1
	CodeAlreadyExists = 2
	CodeValidation    = 3
	CodeInternal      = 4
	CodeReadOnly      = 5
)

// AppError is the error type returned by record sources, services and handlers.
// The query engine itself never fails; every AppError originates at a boundary.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Category sentinels. Match with the Is* helpers, which compare codes, rather
// than errors.Is, which compares pointers.
var (
	ErrNotFound      = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &AppError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrInternal      = &AppError{Code: CodeInternal, Message: "internal error"}
	ErrReadOnly      = &AppError{Code: CodeReadOnly, Message: "read only"}
)

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// EntityNotFound reports a request for an entity type that is not registered.
func EntityNotFound(name string) *AppError {
	return NewAppError(CodeNotFound, fmt.Sprintf("entity %q not found", name), nil)
}

// RecordNotFound reports a missing record id within an entity collection.
func RecordNotFound(entity, id string) *AppError {
	return NewAppError(CodeNotFound, fmt.Sprintf("%s record %q not found", entity, id), nil)
}

// RecordExists reports a create with an id already present in the collection.
func RecordExists(entity, id string) *AppError {
	return NewAppError(CodeAlreadyExists, fmt.Sprintf("%s record %q already exists", entity, id), nil)
}

// ViewNotFound reports an unknown or expired view id.
func ViewNotFound(id string) *AppError {
	return NewAppError(CodeNotFound, fmt.Sprintf("view %q not found", id), nil)
}

// LoadFailed wraps a record source failure with the message shown to users.
func LoadFailed(entity string, err error) *AppError {
	return NewAppError(CodeInternal, "failed to load "+entity+" records", err)
}

func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

func IsAlreadyExists(err error) bool {
	return hasCode(err, CodeAlreadyExists)
}

func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

func IsInternal(err error) bool {
	return hasCode(err, CodeInternal)
}

func IsReadOnly(err error) bool {
	return hasCode(err, CodeReadOnly)
}

func hasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// HTTPStatusCode maps an error to an HTTP status code. Anything that is not an
// *AppError is a 500.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if err != nil && errors.As(err, &appErr) {
		switch appErr.Code {
		case CodeNotFound:
			return http.StatusNotFound
		case CodeAlreadyExists:
			return http.StatusConflict
		case CodeValidation:
			return http.StatusBadRequest
		case CodeReadOnly:
			return http.StatusMethodNotAllowed
		case CodeInternal:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
