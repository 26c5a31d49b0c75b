package networking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// maxErrorBodyBytes limits how much of a response body we carry inside an error
const maxErrorBodyBytes = 512

// ErrorKind classifies the failure of a single request so callers can branch
// on the failure mode without string matching.
type ErrorKind int

const (
	// KindNetwork means the request never produced an HTTP response (DNS, conn refused, etc.)
	KindNetwork ErrorKind = iota
	// KindTimeout means the request timed out before a response was fully received
	KindTimeout
	// KindCanceled means the request's context was canceled
	KindCanceled
	// KindDecode means we received a response but could not decode the body
	KindDecode
	// KindClient means the backend responded with a 4xx status
	KindClient
	// KindServer means the backend responded with a 5xx status
	KindServer
)

// String impl
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	case KindDecode:
		return "decode"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// RequestError is the classified error for a single dispatch against the backend.
type RequestError struct {
	Kind       ErrorKind
	Method     string
	URL        string
	StatusCode int    // 0 when the failure happened before we had a response
	Body       string // truncated response body, empty for pre-response failures
	Cause      error  // underlying error, nil for pure status errors
}

var _ error = &RequestError{}

// Error impl
func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error on %s %s: status code %d, response body: %s", e.Kind, e.Method, e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s error on %s %s: %s", e.Kind, e.Method, e.URL, e.Cause)
}

// Unwrap impl
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Temporary returns true when retrying the same request later could reasonably succeed
func (e *RequestError) Temporary() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout, KindServer:
		return true
	case KindClient:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusRequestTimeout
	}
	return false
}

// classifyDispatchError converts an error from http.Client.Do into a RequestError
func classifyDispatchError(method string, reqURL string, e error) *RequestError {
	kind := KindNetwork
	if errors.Is(e, context.Canceled) {
		kind = KindCanceled
	} else if errors.Is(e, context.DeadlineExceeded) {
		kind = KindTimeout
	} else {
		var uErr *url.Error
		if errors.As(e, &uErr) && uErr.Timeout() {
			kind = KindTimeout
		}
	}

	return &RequestError{
		Kind:   kind,
		Method: method,
		URL:    reqURL,
		Cause:  e,
	}
}

// makeStatusError converts a non-success HTTP status into a RequestError
func makeStatusError(method string, reqURL string, statusCode int, body []byte) *RequestError {
	kind := KindClient
	if statusCode >= 500 {
		kind = KindServer
	}

	return &RequestError{
		Kind:       kind,
		Method:     method,
		URL:        reqURL,
		StatusCode: statusCode,
		Body:       truncateBody(body),
	}
}

// makeDecodeError wraps a body decoding failure
func makeDecodeError(method string, reqURL string, body []byte, e error) *RequestError {
	return &RequestError{
		Kind:   KindDecode,
		Method: method,
		URL:    reqURL,
		Body:   truncateBody(body),
		Cause:  e,
	}
}

func truncateBody(body []byte) string {
	if len(body) > maxErrorBodyBytes {
		return string(body[:maxErrorBodyBytes]) + "..."
	}
	return string(body)
}
