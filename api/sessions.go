package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/oybek/wellness/entity"
	"github.com/oybek/wellness/model"
)

func (s *Server) listPublished(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessions.ListPublished(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionsEnvelope(sessions))
}

func (s *Server) listOwned(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessions.ListOwned(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionsEnvelope(sessions))
}

func (s *Server) getOwned(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.GetOwned(r.Context(), ownerFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Data: sessionData{Session: sess}})
}

func (s *Server) saveDraft(w http.ResponseWriter, r *http.Request) {
	s.save(w, r, s.sessions.SaveDraft)
}

func (s *Server) publish(w http.ResponseWriter, r *http.Request) {
	s.save(w, r, s.sessions.Publish)
}

type saveFunc func(ctx context.Context, ownerID string, in model.SessionInput) (entity.Session, error)

func (s *Server) save(w http.ResponseWriter, r *http.Request, save saveFunc) {
	in, err := model.Decode[model.SessionInput](r.Body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess, err := save(r.Context(), ownerFrom(r.Context()), *in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Data: sessionData{Session: sess}})
}

func (s *Server) deleteOwned(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.DeleteOwned(r.Context(), ownerFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
