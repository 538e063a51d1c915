package core

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorConfig          = "MESSENGER_CONFIG_ERROR"
	ErrorRequest         = "MESSENGER_REQUEST_ERROR"
	ErrorTransport       = "MESSENGER_TRANSPORT_ERROR"
	ErrorInvalidResponse = "MESSENGER_INVALID_RESPONSE"
	ErrorAPI             = "MESSENGER_API_ERROR"
	ErrorAuth            = "MESSENGER_AUTH_ERROR"
	ErrorInternal        = "MESSENGER_INTERNAL_ERROR"
)

func NewConfigError(message string, metadata map[string]any) error {
	return newError(message, goerrors.CategoryInternal, http.StatusInternalServerError, ErrorConfig, metadata)
}

func WrapConfigError(source error, message string, metadata map[string]any) error {
	return wrapError(source, goerrors.CategoryInternal, message, http.StatusInternalServerError, ErrorConfig, metadata)
}

func NewRequestError(message string, metadata map[string]any) error {
	return newError(message, goerrors.CategoryBadInput, http.StatusBadRequest, ErrorRequest, metadata)
}

// NewValidationError reports a single invalid field using the go-errors
// validation envelope.
func NewValidationError(field string, message string) error {
	return goerrors.NewValidation("validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorRequest).
		WithSeverity(goerrors.SeverityError)
}

func WrapTransportError(source error, message string, metadata map[string]any) error {
	return wrapError(source, goerrors.CategoryExternal, message, http.StatusBadGateway, ErrorTransport, metadata)
}

func NewInvalidResponseError(message string, metadata map[string]any) error {
	return newError(message, goerrors.CategoryExternal, http.StatusBadGateway, ErrorInvalidResponse, metadata)
}

func WrapInvalidResponseError(source error, message string, metadata map[string]any) error {
	return wrapError(source, goerrors.CategoryExternal, message, http.StatusBadGateway, ErrorInvalidResponse, metadata)
}

// NewAPIError records a non-200 Graph API response. The error code is the
// remote status code.
func NewAPIError(statusCode int, method string, url string, metadata map[string]any) error {
	fields := cloneFields(metadata)
	fields["status_code"] = statusCode
	fields["method"] = method
	fields["url"] = url
	message := fmt.Sprintf("received error %d for a %s request to %s", statusCode, method, url)
	return newError(message, goerrors.CategoryExternal, statusCode, ErrorAPI, fields)
}

func NewAuthError(message string, metadata map[string]any) error {
	return newError(message, goerrors.CategoryAuth, http.StatusUnauthorized, ErrorAuth, metadata)
}

func WrapAuthError(source error, message string, metadata map[string]any) error {
	return wrapError(source, goerrors.CategoryAuth, message, http.StatusUnauthorized, ErrorAuth, metadata)
}

func NewInternalError(message string, metadata map[string]any) error {
	return newError(message, goerrors.CategoryInternal, http.StatusInternalServerError, ErrorInternal, metadata)
}

// ErrorKind returns the messenger text code carried by err, or an empty
// string when err is not a go-errors envelope.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return ""
	}
	return strings.TrimSpace(rich.TextCode)
}

func IsErrorKind(err error, textCode string) bool {
	kind := ErrorKind(err)
	return kind != "" && kind == strings.TrimSpace(textCode)
}

// StatusCode returns the code recorded on a go-errors envelope, or 0.
func StatusCode(err error) int {
	var rich *goerrors.Error
	if err == nil || !goerrors.As(err, &rich) {
		return 0
	}
	return rich.Code
}

func newError(
	message string,
	category goerrors.Category,
	code int,
	textCode string,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func wrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	textCode string,
	metadata map[string]any,
) error {
	if source == nil {
		return newError(message, category, code, textCode, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}
