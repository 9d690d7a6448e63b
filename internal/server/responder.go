package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cheertower/pkg/errors"
)

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Error     string      `json:"error"`
	Code      errors.Code `json:"code,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *log.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil && logger != nil {
		logger.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *log.Logger) {
	writeJSON(w, status, errorBody{Error: message, RequestID: requestID(r)}, logger)
}

// writeErr maps a pipeline error to its status code. Internal details are
// logged but not returned to the client.
func writeErr(w http.ResponseWriter, r *http.Request, err error, logger *log.Logger) {
	status := errors.HTTPStatus(err)
	body := errorBody{
		Error:     errors.UserMessage(err),
		Code:      errors.GetCode(err),
		RequestID: requestID(r),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "err", err, "request_id", body.RequestID)
		if body.Code == "" || body.Code == errors.ErrCodeInternal {
			body.Error = "internal error"
			body.Code = errors.ErrCodeInternal
		}
	}
	writeJSON(w, status, body, logger)
}

func writeText(w http.ResponseWriter, status int, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return r.Header.Get(middleware.RequestIDHeader)
}
