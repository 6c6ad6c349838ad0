package apierrors

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/openkcm/tenancy/internal/log"
	tenancycontext "github.com/openkcm/tenancy/utils/context"
)

const (
	InternalServerErr = "INTERNAL_SERVER_ERROR"
	NotFoundErr       = "NOT_FOUND"
)

// APIError is the error body returned to clients.
type APIError struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	Status    int             `json:"status"`
	RequestID *string         `json:"requestId,omitempty"`
	Context   *map[string]any `json:"context,omitempty"`
}

func (e *APIError) SetContext(context *map[string]any) {
	e.Context = context
}

func (e *APIError) Clone() *APIError {
	c := *e
	return &c
}

func (e *APIError) DefaultError() *APIError {
	return InternalServerErrorMessage()
}

// ErrorMessage wraps an APIError as {"error": {...}}.
type ErrorMessage struct {
	Error APIError `json:"error"`
}

func InternalServerErrorMessage() *APIError {
	return &APIError{
		Code:    InternalServerErr,
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
	}
}

func NotFoundMessage() *APIError {
	return &APIError{
		Code:    NotFoundErr,
		Message: "Not found",
		Status:  http.StatusNotFound,
	}
}

// ErrorResponse writes an error response to the client
func ErrorResponse(ctx context.Context, w http.ResponseWriter, apiErr *APIError) {
	body := ErrorMessage{Error: *apiErr}

	requestID, err := tenancycontext.GetRequestID(ctx)
	if err == nil {
		body.Error.RequestID = &requestID
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)

	err = json.NewEncoder(w).Encode(&body)
	if err != nil {
		log.Error(ctx, "Failed to encode error response", err)
	}
}

// Write maps err to its APIError and writes it.
func Write(ctx context.Context, w http.ResponseWriter, err error) {
	apiErr := APIErrorMapper.Transform(err)

	if apiErr.Status >= http.StatusInternalServerError {
		log.Error(ctx, "Request failed", err)
	} else {
		log.Debug(ctx, "Request rejected", log.ErrorAttr(err))
	}

	ErrorResponse(ctx, w, apiErr)
}
