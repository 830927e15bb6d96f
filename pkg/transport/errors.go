package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/smithy-go"

	"github.com/rhuss/bedrockgen/pkg/api"
	"github.com/rhuss/bedrockgen/pkg/provider"
)

// Error codes set by APIErrorFrom for conditions without an upstream code.
const (
	CodeTimeout        = "timeout"
	CodeCancelled      = "cancelled"
	CodeMalformedChunk = "malformed_chunk"
)

// modelErrorStatus maps Bedrock runtime error codes to HTTP status codes.
var modelErrorStatus = map[string]int{
	"ValidationException":           http.StatusBadRequest,
	"AccessDeniedException":         http.StatusForbidden,
	"ResourceNotFoundException":     http.StatusNotFound,
	"ThrottlingException":           http.StatusTooManyRequests,
	"ServiceQuotaExceededException": http.StatusTooManyRequests,
	"ModelTimeoutException":         http.StatusGatewayTimeout,
	"ModelNotReadyException":        http.StatusServiceUnavailable,
	"ServiceUnavailableException":   http.StatusServiceUnavailable,
	"ModelErrorException":           http.StatusBadGateway,
	"ModelStreamErrorException":     http.StatusBadGateway,
	"InternalServerException":       http.StatusBadGateway,
	"UnrecognizedClientException":   http.StatusUnauthorized,
	CodeMalformedChunk:              http.StatusBadGateway,
}

// HTTPStatusFromError maps an APIError to the corresponding HTTP status
// code. Transport-level errors (body too large, unsupported content type,
// method not allowed) are handled separately by the HTTP adapter.
func HTTPStatusFromError(err *api.APIError) int {
	switch err.Type {
	case api.ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case api.ErrorTypeNotFound:
		return http.StatusNotFound
	case api.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case api.ErrorTypeTooManyRequests:
		return http.StatusTooManyRequests
	case api.ErrorTypeModelError:
		if status, ok := modelErrorStatus[err.Code]; ok {
			return status
		}
		return http.StatusBadGateway
	case api.ErrorTypeServerError:
		if err.Code == CodeTimeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// APIErrorFrom converts a handler error into an APIError. APIErrors pass
// through unchanged; Bedrock service errors become model errors carrying
// the service error code; context errors and malformed stream chunks get
// dedicated codes. Anything else is a server error.
func APIErrorFrom(err error) *api.APIError {
	if err == nil {
		return nil
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var svcErr smithy.APIError
	if errors.As(err, &svcErr) {
		msg := svcErr.ErrorMessage()
		if msg == "" {
			msg = svcErr.Error()
		}
		return api.NewModelError(svcErr.ErrorCode(), msg)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		e := api.NewServerError("request timed out")
		e.Code = CodeTimeout
		return e
	case errors.Is(err, context.Canceled):
		e := api.NewServerError("request cancelled")
		e.Code = CodeCancelled
		return e
	case errors.Is(err, provider.ErrMalformedChunk):
		return api.NewModelError(CodeMalformedChunk, err.Error())
	}

	return api.NewServerError(err.Error())
}

// WriteErrorResponse writes a JSON error response using the ErrorResponse
// wrapper format from pkg/api. It sets the Content-Type header and writes
// the HTTP status code.
func WriteErrorResponse(w http.ResponseWriter, apiErr *api.APIError, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: apiErr})
}

// WriteAPIError writes an APIError response, deriving the HTTP status code
// from the error type.
func WriteAPIError(w http.ResponseWriter, apiErr *api.APIError) {
	WriteErrorResponse(w, apiErr, HTTPStatusFromError(apiErr))
}
