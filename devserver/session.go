package devserver

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"
)

type sessionResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	ExpiresAt string `json:"expires_at"`
}

func (s *APIServer) login(w http.ResponseWriter, r *http.Request) {
	bodyBytes, e := ioutil.ReadAll(r.Body)
	if e != nil {
		s.fail(w, http.StatusBadRequest, "bad_request", "could not read request body")
		return
	}

	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	e = json.Unmarshal(bodyBytes, &credentials)
	if e != nil {
		s.fail(w, http.StatusBadRequest, "bad_request", "request body was not valid json")
		return
	}

	if credentials.Email != s.userEmail || credentials.Password != s.userPassword {
		s.fail(w, http.StatusUnauthorized, "unauthorized", "wrong email or password")
		return
	}

	token, expiresAt, e := s.issueToken()
	if e != nil {
		s.fail(w, http.StatusInternalServerError, "internal_error", e.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, sessionResponse{
		Token:     token,
		UserID:    s.profile.UserID,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}

func (s *APIServer) logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *APIServer) refreshSession(w http.ResponseWriter, r *http.Request) {
	token, expiresAt, e := s.issueToken()
	if e != nil {
		s.fail(w, http.StatusInternalServerError, "internal_error", e.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, sessionResponse{
		Token:     token,
		UserID:    s.profile.UserID,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}
