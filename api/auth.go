package api

import (
	"context"
	"net/http"

	"github.com/oybek/wellness/entity"
	"github.com/oybek/wellness/model"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	s.credentials(w, r, http.StatusCreated, s.auth.Register)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	s.credentials(w, r, http.StatusOK, s.auth.Login)
}

func (s *Server) credentials(
	w http.ResponseWriter,
	r *http.Request,
	code int,
	issue func(context.Context, model.Credentials) (string, entity.User, error),
) {
	c, err := model.ParseAndValidate[model.Credentials](r.Body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	token, user, err := issue(r.Context(), *c)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, code, envelope{Status: statusSuccess, Token: token, Data: userData{User: user}})
}
