package reporting

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/plumeapp/plume-go/support/networking"
)

// statusEndpoint represents a monitoring API endpoint that always responds with a JSON
// encoding of the reporter's session summary. The auth level for the endpoint can be
// NoAuth (public access) or TokenAuth which requires a valid access token.
type statusEndpoint struct {
	path      string
	reporter  *Reporter
	authLevel networking.AuthLevel
}

// MakeStatusEndpoint creates an Endpoint for the monitoring server with the desired auth level.
// The endpoint's response is always a JSON dump of the reporter's session summary.
func MakeStatusEndpoint(path string, reporter *Reporter, authLevel networking.AuthLevel) (networking.Endpoint, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("endpoint path must begin with /")
	}
	s := &statusEndpoint{
		path:      path,
		reporter:  reporter,
		authLevel: authLevel,
	}
	return s, nil
}

func (s *statusEndpoint) GetAuthLevel() networking.AuthLevel {
	return s.authLevel
}

func (s *statusEndpoint) GetPath() string {
	return s.path
}

// GetHandlerFunc returns a HandlerFunc that writes the JSON representation of the
// reporter's session summary.
func (s *statusEndpoint) GetHandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jsonBytes, e := json.Marshal(s.reporter.Summarize())
		if e != nil {
			log.Printf("error marshalling status json: %s\n", e)
			http.Error(w, e.Error(), 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(200)
		_, e = w.Write(jsonBytes)
		if e != nil {
			log.Printf("error writing to the response writer: %s\n", e)
		}
	}
}
