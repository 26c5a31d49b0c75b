package activity

import (
	"sync"

	"github.com/plumeapp/plume-go/api"
)

// tracker counts in-flight requests and invokes the visibility callback when
// the network activity indicator should be shown or hidden, i.e. on the
// transitions between zero and non-zero in-flight requests.
type tracker struct {
	lock         sync.Mutex
	inFlight     int
	visibilityFn func(visible bool)
}

// ensure it implements ActivityTracker
var _ api.ActivityTracker = &tracker{}

// MakeTracker is a factory method, visibilityFn can be nil
func MakeTracker(visibilityFn func(visible bool)) api.ActivityTracker {
	return &tracker{
		visibilityFn: visibilityFn,
	}
}

// BeginRequest impl
func (t *tracker) BeginRequest() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.inFlight++
	if t.inFlight == 1 && t.visibilityFn != nil {
		t.visibilityFn(true)
	}
}

// EndRequest impl
func (t *tracker) EndRequest() {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.inFlight == 0 {
		// unbalanced EndRequest, nothing to do
		return
	}

	t.inFlight--
	if t.inFlight == 0 && t.visibilityFn != nil {
		t.visibilityFn(false)
	}
}

// InFlight returns the number of requests currently in flight
func (t *tracker) InFlight() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.inFlight
}
