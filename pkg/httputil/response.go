package httputil

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"mime"
	"net/http"

	"github.com/matzehuels/chartkit/pkg/errors"
	chartio "github.com/matzehuels/chartkit/pkg/io"
	"github.com/matzehuels/chartkit/pkg/store"
)

// DefaultMaxBody caps request bodies read by the host.
const DefaultMaxBody = 8 << 20

// ErrorBody is the JSON shape of an error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable code and the user message.
type ErrorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// StatusFor maps err to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig,
		errors.ErrCodeInvalidChartKind, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeDomain, errors.ErrCodeDuplicateKey,
		errors.ErrCodeMissingField, errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeSurfaceUnavailable, errors.ErrCodeUnmounted:
		return http.StatusConflict
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// WriteJSON writes v as the JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err with the status from [StatusFor]. Uncoded server
// errors are reported as INTERNAL_ERROR without their message.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	detail := ErrorDetail{Code: errors.GetCode(err), Message: errors.UserMessage(err)}
	if detail.Code == "" {
		switch status {
		case http.StatusNotFound:
			detail.Code = errors.ErrCodeNotFound
		case http.StatusRequestEntityTooLarge:
			detail.Code = errors.ErrCodeInvalidInput
		default:
			detail.Code = errors.ErrCodeInternal
			detail.Message = http.StatusText(status)
		}
	}
	WriteJSON(w, status, ErrorBody{Error: detail})
}

// ContentFormat returns the input format named by a Content-Type header,
// or "" to let the readers detect it.
func ContentFormat(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch mt {
	case "application/json":
		return chartio.FormatJSON
	case "application/toml":
		return chartio.FormatTOML
	case "text/csv":
		return chartio.FormatCSV
	}
	return ""
}
