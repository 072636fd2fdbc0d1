package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
)

// ErrorType classifies a failure by the kind of input or resource at fault
type ErrorType string

const (
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeModel      ErrorType = "MODEL"
)

// Sentinels for errors.Is. An AppError matches the sentinel of its type.
var (
	ErrParsing    = &AppError{Type: ErrTypeParsing}
	ErrStorage    = &AppError{Type: ErrTypeStorage}
	ErrValidation = &AppError{Type: ErrTypeValidation}
	ErrConfig     = &AppError{Type: ErrTypeConfig}
	ErrModel      = &AppError{Type: ErrTypeModel}
)

// AppError is a typed pipeline failure. Stage names the pipeline stage that
// produced it once the orchestrator has seen it.
type AppError struct {
	Type    ErrorType
	Stage   string
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	msg := fmt.Sprintf("[%s] ", e.Type)
	if e.Stage != "" {
		msg += e.Stage + ": "
	}
	msg += e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches a bare AppError of the same type, so errors.Is(err, ErrModel)
// holds for every model failure.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Cause == nil && t.Type == e.Type
}

// WithContext records a key/value pair describing the failure
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogAttrs returns the type, stage and context as slog attributes, context
// keys in sorted order
func (e *AppError) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("error_type", string(e.Type))}
	if e.Stage != "" {
		attrs = append(attrs, slog.String("stage", e.Stage))
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, e.Context[k]))
	}
	return attrs
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause}
}

// InStage tags the AppError inside err with stage unless it already has one.
// Errors that are not AppErrors are returned unchanged.
func InStage(err error, stage string) error {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.Stage == "" {
		appErr.Stage = stage
	}
	return err
}

// IsType reports whether err wraps an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Type == errType
}

// NewParsingError reports unreadable input: a workbook, a sheet or a cell value
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError reports a failure writing output files
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError reports input that is readable but does not have
// the expected shape
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError reports an invalid or unreadable configuration
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewModelError reports a failure fitting or applying the classifier
func NewModelError(message string, cause error) *AppError {
	return NewAppError(ErrTypeModel, message, cause)
}
