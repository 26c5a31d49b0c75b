package api

// ActivityTracker is notified when a network request starts and finishes so
// the app can drive its network activity indicator. Begin and End calls are
// always balanced by the networking layer.
type ActivityTracker interface {
	BeginRequest()
	EndRequest()
}
