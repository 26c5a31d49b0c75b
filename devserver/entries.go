package devserver

import (
	"encoding/base64"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

const defaultPageLimit = 20

type entryPageResponse struct {
	Entries    []entry `json:"entries"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

func (s *APIServer) listEntries(w http.ResponseWriter, r *http.Request) {
	limit := defaultPageLimit
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, e := strconv.Atoi(limitParam)
		if e != nil || parsed <= 0 {
			s.fail(w, http.StatusBadRequest, "bad_request", "limit needs to be a positive integer")
			return
		}
		limit = parsed
	}
	cursor := r.URL.Query().Get("cursor")

	s.lock.Lock()
	defer s.lock.Unlock()

	startIdx := 0
	if cursor != "" {
		found := false
		for i, id := range s.order {
			if id == cursor {
				startIdx = i
				found = true
				break
			}
		}
		if !found {
			s.fail(w, http.StatusBadRequest, "bad_request", "unknown cursor")
			return
		}
	}

	page := entryPageResponse{Entries: []entry{}}
	for i := startIdx; i < len(s.order); i++ {
		if len(page.Entries) == limit {
			page.NextCursor = s.order[i]
			break
		}
		page.Entries = append(page.Entries, *s.entries[s.order[i]])
	}

	s.writeJSON(w, http.StatusOK, page)
}

func (s *APIServer) getEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")

	s.lock.Lock()
	found, ok := s.entries[entryID]
	s.lock.Unlock()
	if !ok {
		s.fail(w, http.StatusNotFound, "not_found", "no entry with ID '"+entryID+"'")
		return
	}

	s.writeJSON(w, http.StatusOK, *found)
}

func (s *APIServer) createEntry(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title string   `json:"title"`
		Body  string   `json:"body"`
		Tags  []string `json:"tags"`
	}
	if !s.readJSON(w, r, &input) {
		return
	}
	if input.Title == "" {
		s.fail(w, http.StatusBadRequest, "bad_request", "entry title cannot be empty")
		return
	}

	created := &entry{
		ID:        uuid.New().String(),
		Title:     input.Title,
		Body:      input.Body,
		Tags:      input.Tags,
		Version:   1,
		UpdatedAt: nowTimestamp(),
	}

	s.lock.Lock()
	s.entries[created.ID] = created
	s.order = append(s.order, created.ID)
	s.lock.Unlock()

	s.writeJSON(w, http.StatusCreated, *created)
}

func (s *APIServer) updateEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")

	var input entry
	if !s.readJSON(w, r, &input) {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	existing, ok := s.entries[entryID]
	if !ok {
		s.fail(w, http.StatusNotFound, "not_found", "no entry with ID '"+entryID+"'")
		return
	}
	if input.Version != existing.Version {
		s.fail(w, http.StatusConflict, "conflict", "entry was modified by another device, fetch the latest version and retry")
		return
	}

	existing.Title = input.Title
	existing.Body = input.Body
	existing.Tags = input.Tags
	existing.Version++
	existing.UpdatedAt = nowTimestamp()

	s.writeJSON(w, http.StatusOK, *existing)
}

func (s *APIServer) patchEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")

	var patch struct {
		Title *string   `json:"title"`
		Body  *string   `json:"body"`
		Tags  *[]string `json:"tags"`
	}
	if !s.readJSON(w, r, &patch) {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	existing, ok := s.entries[entryID]
	if !ok {
		s.fail(w, http.StatusNotFound, "not_found", "no entry with ID '"+entryID+"'")
		return
	}

	if patch.Title != nil {
		existing.Title = *patch.Title
	}
	if patch.Body != nil {
		existing.Body = *patch.Body
	}
	if patch.Tags != nil {
		existing.Tags = *patch.Tags
	}
	existing.Version++
	existing.UpdatedAt = nowTimestamp()

	s.writeJSON(w, http.StatusOK, *existing)
}

func (s *APIServer) deleteEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.entries[entryID]; !ok {
		s.fail(w, http.StatusNotFound, "not_found", "no entry with ID '"+entryID+"'")
		return
	}

	delete(s.entries, entryID)
	for i, id := range s.order {
		if id == entryID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *APIServer) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")

	var input struct {
		Filename string `json:"filename"`
		Content  string `json:"content"`
	}
	if !s.readJSON(w, r, &input) {
		return
	}
	if input.Filename == "" {
		s.fail(w, http.StatusBadRequest, "bad_request", "attachment filename cannot be empty")
		return
	}

	content, e := base64.StdEncoding.DecodeString(input.Content)
	if e != nil {
		s.fail(w, http.StatusBadRequest, "bad_request", "attachment content needs to be base64-encoded")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.entries[entryID]; !ok {
		s.fail(w, http.StatusNotFound, "not_found", "no entry with ID '"+entryID+"'")
		return
	}

	stored := &attachment{
		ID:       uuid.New().String(),
		EntryID:  entryID,
		Filename: input.Filename,
		content:  content,
	}
	s.attachments[stored.ID] = stored

	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         stored.ID,
		"entry_id":   stored.EntryID,
		"filename":   stored.Filename,
		"size_bytes": len(stored.content),
		"url":        "http://" + r.Host + "/v1/attachments/" + stored.ID,
	})
}

func (s *APIServer) downloadAttachment(w http.ResponseWriter, r *http.Request) {
	attachmentID := chi.URLParam(r, "attachmentID")

	s.lock.Lock()
	found, ok := s.attachments[attachmentID]
	s.lock.Unlock()
	if !ok {
		s.fail(w, http.StatusNotFound, "not_found", "no attachment with ID '"+attachmentID+"'")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+found.Filename+"\"")
	w.Write(found.content)
}

// readJSON decodes the request body into out, writing the error envelope on failure
func (s *APIServer) readJSON(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	bodyBytes, e := ioutil.ReadAll(r.Body)
	if e != nil {
		s.fail(w, http.StatusBadRequest, "bad_request", "could not read request body")
		return false
	}

	e = json.Unmarshal(bodyBytes, out)
	if e != nil {
		s.fail(w, http.StatusBadRequest, "bad_request", "request body was not valid json")
		return false
	}
	return true
}
