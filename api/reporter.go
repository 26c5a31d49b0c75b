package api

// Reporter collects breadcrumbs and error reports for requests made against
// the backend. Implementations forward to a crash reporting or telemetry
// service; the networking layer treats it as a fire-and-forget sink.
type Reporter interface {
	// Breadcrumb records a single request-level event (method, path, outcome).
	Breadcrumb(category string, message string, details map[string]interface{})

	// Report submits an error report along with any details accumulated so far.
	Report(e error, details map[string]interface{})
}
