package api

// Authenticator derives the authentication headers for a single request. The
// derivation is opaque to the networking layer, which only injects the
// resulting headers into the outgoing request.
type Authenticator interface {
	// AuthHeaders returns the headers to attach for a request with the given
	// method, request path (including encoded query params), and body.
	AuthHeaders(method string, requestPath string, body string) (map[string]string, error)
}
