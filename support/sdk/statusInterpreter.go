package sdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/plumeapp/plume-go/api"
)

// error codes used by the Plume backend in its error envelope
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"
)

// APIError is the decoded error envelope the Plume backend returns for failed requests
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id"`
}

var _ error = &APIError{}

// Error impl
func (e *APIError) Error() string {
	return fmt.Sprintf("the Plume backend rejected the request (status=%d, code=%s, request_id=%s): %s", e.StatusCode, e.Code, e.RequestID, e.Message)
}

// statusInterpreter decodes the backend's error envelope for non-success
// statuses. 304 is acceptable since conditional fetches use it for "unchanged".
type statusInterpreter struct{}

var _ api.StatusInterpreter = &statusInterpreter{}

func makeStatusInterpreter() api.StatusInterpreter {
	return &statusInterpreter{}
}

// InterpretStatus impl
func (si *statusInterpreter) InterpretStatus(statusCode int, body []byte) error {
	if statusCode == http.StatusNotModified {
		return nil
	}

	apiError := &APIError{
		StatusCode: statusCode,
	}
	e := json.Unmarshal(body, apiError)
	if e != nil || apiError.Code == "" {
		// not the standard envelope, synthesize one from the status
		apiError.Code = codeForStatus(statusCode)
		apiError.Message = string(body)
	}
	return apiError
}

func codeForStatus(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return ErrCodeBadRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusTooManyRequests:
		return ErrCodeRateLimited
	}
	return ErrCodeInternal
}
