package api

// StatusInterpreter maps an HTTP response status and raw body to an error
// decision for a specific backend. A nil return means the status is
// acceptable and the body should be decoded as a success payload.
type StatusInterpreter interface {
	InterpretStatus(statusCode int, body []byte) error
}
