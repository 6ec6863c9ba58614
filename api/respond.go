package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oybek/wellness/entity"
	"github.com/oybek/wellness/lifecycle"
	"github.com/oybek/wellness/model"
)

const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

type envelope struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Token   string `json:"token,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type sessionsData struct {
	Sessions []entity.Session `json:"sessions"`
}

type sessionData struct {
	Session entity.Session `json:"session"`
}

type userData struct {
	User entity.User `json:"user"`
}

func sessionsEnvelope(sessions []entity.Session) envelope {
	if sessions == nil {
		sessions = []entity.Session{}
	}
	n := len(sessions)
	return envelope{Status: statusSuccess, Results: &n, Data: sessionsData{Sessions: sessions}}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeFail(w http.ResponseWriter, code int, message string) {
	status := statusFail
	if code >= http.StatusInternalServerError {
		status = statusError
	}
	writeJSON(w, code, envelope{Status: status, Message: message})
}

func statusFor(err error) int {
	var verr *model.ValidationError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, model.ErrMalformed), errors.As(err, &verr), errors.Is(err, lifecycle.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, lifecycle.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, lifecycle.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error, code int) string {
	if code >= http.StatusInternalServerError {
		return "Something went wrong"
	}
	if code == http.StatusRequestEntityTooLarge {
		return "Request body too large"
	}
	if errors.Is(err, model.ErrMalformed) {
		return "Invalid request payload"
	}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return lifecycle.Message(err, http.StatusText(code))
}

// fail translates a service error into a response. Server-side failures are
// logged with their cause and reported generically.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeFail(w, code, messageFor(err, code))
}
