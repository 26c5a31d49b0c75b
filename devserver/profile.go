package devserver

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
)

func (s *APIServer) getProfile(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	response := s.profile
	response.EntryCount = int64(len(s.entries))
	s.lock.Unlock()

	s.writeJSON(w, http.StatusOK, response)
}

func (s *APIServer) updateProfile(w http.ResponseWriter, r *http.Request) {
	bodyBytes, e := ioutil.ReadAll(r.Body)
	if e != nil {
		s.fail(w, http.StatusBadRequest, "bad_request", "could not read request body")
		return
	}

	var update struct {
		DisplayName *string `json:"display_name"`
		Email       *string `json:"email"`
	}
	e = json.Unmarshal(bodyBytes, &update)
	if e != nil {
		s.fail(w, http.StatusBadRequest, "bad_request", "request body was not valid json")
		return
	}

	s.lock.Lock()
	if update.DisplayName != nil {
		s.profile.DisplayName = *update.DisplayName
	}
	if update.Email != nil {
		s.profile.Email = *update.Email
	}
	response := s.profile
	response.EntryCount = int64(len(s.entries))
	s.lock.Unlock()

	s.writeJSON(w, http.StatusOK, response)
}
