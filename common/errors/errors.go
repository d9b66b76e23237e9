package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Kind classifies an application error independently of its message.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindForbidden       Kind = "forbidden"
	KindUnauthenticated Kind = "unauthenticated"
	KindEmptyCart       Kind = "empty_cart"
	KindValidation      Kind = "validation"
	KindConflict        Kind = "conflict"
	KindInternal        Kind = "internal"
)

var statusByKind = map[Kind]int{
	KindNotFound:        http.StatusNotFound,
	KindForbidden:       http.StatusForbidden,
	KindUnauthenticated: http.StatusUnauthorized,
	KindEmptyCart:       http.StatusBadRequest,
	KindValidation:      http.StatusBadRequest,
	KindConflict:        http.StatusConflict,
	KindInternal:        http.StatusInternalServerError,
}

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so callers can
// write errors.Is(err, apperrors.ErrNotFound) regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error of the given kind
func New(kind Kind, message string, err error) *Error {
	code, ok := statusByKind[kind]
	if !ok {
		code = http.StatusInternalServerError
	}
	return &Error{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Sentinels for errors.Is comparisons. Never mutate them; build new values
// with New or the helpers below.
var (
	ErrNotFound        = New(KindNotFound, "Not found", nil)
	ErrForbidden       = New(KindForbidden, "Forbidden", nil)
	ErrUnauthenticated = New(KindUnauthenticated, "Authentication required", nil)
	ErrEmptyCart       = New(KindEmptyCart, "No item in cart", nil)
	ErrValidation      = New(KindValidation, "Validation error", nil)
	ErrConflict        = New(KindConflict, "Conflict", nil)
	ErrInternal        = New(KindInternal, "Internal server error", nil)
)

func NotFound(message string) *Error   { return New(KindNotFound, message, nil) }
func Forbidden(message string) *Error  { return New(KindForbidden, message, nil) }
func Validation(message string) *Error { return New(KindValidation, message, nil) }
func Conflict(message string) *Error   { return New(KindConflict, message, nil) }
func Unauthenticated() *Error          { return New(KindUnauthenticated, "Authentication required", nil) }
func EmptyCart() *Error                { return New(KindEmptyCart, "No item in cart", nil) }
func Internal(message string, err error) *Error {
	return New(KindInternal, message, err)
}

// From converts any error into an *Error. Errors that are not application
// errors become internal errors wrapping the original.
func From(err error) *Error {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal("Internal server error", err)
}

// ErrorMiddleware renders the last error pushed with c.Error as JSON.
func ErrorMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := From(c.Errors.Last().Err)
		if appErr.Code >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetString("request_id")),
				zap.Error(appErr),
			)
		}

		c.AbortWithStatusJSON(appErr.Code, gin.H{
			"code":    appErr.Code,
			"kind":    appErr.Kind,
			"message": appErr.Message,
		})
	}
}
