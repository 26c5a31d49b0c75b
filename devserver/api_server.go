package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/plumeapp/plume-go/support/logger"
)

// APIServer is an in-memory stand-in for the Plume backend, used to develop
// the mobile app and this SDK against realistic responses without network
// access. It speaks the same routes, envelopes, and auth scheme as the real
// backend but keeps everything in memory and accepts a single dev user.
type APIServer struct {
	l            logger.Logger
	jwtSecret    []byte
	version      string
	userEmail    string
	userPassword string

	lock        sync.Mutex
	profile     profile
	entries     map[string]*entry
	order       []string
	attachments map[string]*attachment
}

type profile struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	EntryCount  int64  `json:"entry_count"`
}

type entry struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Tags      []string `json:"tags,omitempty"`
	Version   int64    `json:"version"`
	UpdatedAt string   `json:"updated_at"`
}

type attachment struct {
	ID       string
	EntryID  string
	Filename string
	content  []byte
}

// errorResponse is the error envelope the real backend uses
type errorResponse struct {
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// MakeAPIServer is a factory method
func MakeAPIServer(version string, userEmail string, userPassword string, jwtSecret string, l logger.Logger) (*APIServer, error) {
	if userEmail == "" || userPassword == "" {
		return nil, fmt.Errorf("devserver needs a non-empty dev user email and password")
	}
	if jwtSecret == "" {
		return nil, fmt.Errorf("devserver needs a non-empty jwt secret")
	}

	return &APIServer{
		l:            l,
		jwtSecret:    []byte(jwtSecret),
		version:      version,
		userEmail:    userEmail,
		userPassword: userPassword,
		profile: profile{
			UserID:      "dev-user-1",
			DisplayName: "Dev User",
			Email:       userEmail,
		},
		entries:     map[string]*entry{},
		order:       []string{},
		attachments: map[string]*attachment{},
	}, nil
}

func (s *APIServer) writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	jsonBytes, e := json.Marshal(payload)
	if e != nil {
		s.l.Errorf("error marshalling response json: %s\n", e)
		http.Error(w, e.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(jsonBytes)
}

// fail writes the error envelope and logs the failure
func (s *APIServer) fail(w http.ResponseWriter, statusCode int, code string, message string) {
	requestID := uuid.New().String()
	s.l.Errorf("request failed (request_id=%s, code=%s): %s\n", requestID, code, message)
	s.writeJSON(w, statusCode, errorResponse{
		RequestID: requestID,
		Code:      code,
		Message:   message,
	})
}

func nowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
