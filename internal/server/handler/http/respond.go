package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/atinyakov/travelsite/internal/service"
)

// envelope is the JSON body of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok(w http.ResponseWriter, r *http.Request, status int, data any, msg string) {
	render.Status(r, status)
	render.JSON(w, r, envelope{Success: true, Data: data, Message: msg})
}

func fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, envelope{Success: false, Message: msg})
}

// writeError maps service errors to statuses. Anything unclassified is
// logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		switch {
		case errors.Is(err, service.ErrNotFound):
			fail(w, r, http.StatusNotFound, svcErr.Msg)
		case errors.Is(err, service.ErrInvalidCredentials):
			fail(w, r, http.StatusUnauthorized, svcErr.Msg)
		default:
			fail(w, r, http.StatusBadRequest, svcErr.Msg)
		}
		return
	}
	log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	fail(w, r, http.StatusInternalServerError, "Internal server error")
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		fail(w, r, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
