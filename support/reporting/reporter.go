package reporting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/google/uuid"

	"github.com/plumeapp/plume-go/api"
	"github.com/plumeapp/plume-go/support/logger"
	"github.com/plumeapp/plume-go/support/utils"
)

var (
	telemetryAPIURL string = "https://telemetry.plumeapp.io/v1/events"
	telemetryAPIKey string = os.Getenv("PLUME_TELEMETRY_API_KEY")
)

// maxBreadcrumbs bounds the trail we keep in memory and attach to error reports
const maxBreadcrumbs = 64

// SetTelemetryURL allows overriding where events get posted, used by the devserver setup and tests
func SetTelemetryURL(telemetryURL string) {
	telemetryAPIURL = telemetryURL
}

// Reporter collects breadcrumbs for requests against the backend and posts
// error reports to the Plume telemetry API. It implements api.Reporter and is
// a fire-and-forget sink for the networking layer: a failed upload is logged
// but never propagated back to the caller.
type Reporter struct {
	client *http.Client
	l      logger.Logger
	alert  api.Alert
	props  props
	start  time.Time

	lock        sync.Mutex
	breadcrumbs []breadcrumb
	numReports  int
}

// ensure it implements api.Reporter
var _ api.Reporter = &Reporter{}

type breadcrumb struct {
	ID       string                 `json:"id"`
	Time     string                 `json:"time"`
	Category string                 `json:"category"`
	Message  string                 `json:"message"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// props holds the identity properties attached to every telemetry event
type props struct {
	AppVersion string    `json:"app_version"`
	Os         string    `json:"os"`
	DeviceID   string    `json:"device_id"`
	SessionID  uuid.UUID `json:"session_id"`
}

// errorProps holds the properties for the error report event
type errorProps struct {
	props
	Error             string                 `json:"error"`
	Details           map[string]interface{} `json:"details,omitempty"`
	Breadcrumbs       []breadcrumb           `json:"breadcrumbs"`
	SecondsSinceStart float64                `json:"seconds_since_start"`
}

type event struct {
	DeviceID  string      `json:"device_id"`
	EventType string      `json:"event_type"`
	Props     interface{} `json:"event_properties"`
}

// MakeReporter is a factory method to create a reporting.Reporter
func MakeReporter(appVersion string, osName string, l logger.Logger) *Reporter {
	return &Reporter{
		client: &http.Client{},
		l:      l,
		props: props{
			AppVersion: appVersion,
			Os:         osName,
			DeviceID:   mustDeviceID(),
			SessionID:  mustSessionID(),
		},
		start:       time.Now(),
		breadcrumbs: []breadcrumb{},
	}
}

func mustSessionID() uuid.UUID {
	sessionID, e := uuid.NewRandom()
	if e != nil {
		return [16]byte{}
	}

	return sessionID
}

func newEventID() string {
	id, e := uuid.NewRandom()
	if e != nil {
		return ""
	}
	return id.String()
}

// mustDeviceID hashes the machine id so the raw identifier never leaves the device
func mustDeviceID() string {
	machineID, e := machineid.ID()
	if e != nil {
		return "unknown"
	}

	deviceID, e := utils.HashString(machineID)
	if e != nil {
		return "unknown"
	}
	return fmt.Sprint(deviceID)
}

// SetAlert registers an alert service to be triggered for every reported error
func (r *Reporter) SetAlert(alert api.Alert) {
	r.alert = alert
}

// Breadcrumb impl, records a request-level event in the bounded trail
func (r *Reporter) Breadcrumb(category string, message string, details map[string]interface{}) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.breadcrumbs = append(r.breadcrumbs, breadcrumb{
		ID:       newEventID(),
		Time:     time.Now().UTC().Format(time.RFC3339),
		Category: category,
		Message:  message,
		Details:  details,
	})
	if len(r.breadcrumbs) > maxBreadcrumbs {
		r.breadcrumbs = r.breadcrumbs[len(r.breadcrumbs)-maxBreadcrumbs:]
	}
}

// Report impl, posts the error report along with the breadcrumb trail so far
func (r *Reporter) Report(e error, details map[string]interface{}) {
	r.lock.Lock()
	trail := make([]breadcrumb, len(r.breadcrumbs))
	copy(trail, r.breadcrumbs)
	r.numReports++
	r.lock.Unlock()

	eventProps := errorProps{
		props:             r.props,
		Error:             e.Error(),
		Details:           details,
		Breadcrumbs:       trail,
		SecondsSinceStart: time.Since(r.start).Seconds(),
	}

	uploadError := r.sendEvent("client_error", eventProps)
	if uploadError != nil {
		r.l.Errorf("could not upload error report: %s\n", uploadError)
	}

	if r.alert != nil {
		alertError := r.alert.Trigger(e.Error(), details)
		if alertError != nil {
			r.l.Errorf("could not trigger alert for error report: %s\n", alertError)
		}
	}
}

// SendStartupEvent posts the session startup event
func (r *Reporter) SendStartupEvent() error {
	return r.sendEvent("session_start", r.props)
}

func (r *Reporter) sendEvent(eventType string, eventProps interface{}) error {
	requestBody, e := json.Marshal(map[string]interface{}{
		"api_key": telemetryAPIKey,
		"events": []event{event{
			DeviceID:  r.props.DeviceID,
			EventType: eventType,
			Props:     eventProps,
		}},
	})
	if e != nil {
		return fmt.Errorf("could not marshal json request: %s", e)
	}

	resp, e := r.client.Post(telemetryAPIURL, "application/json", bytes.NewBuffer(requestBody))
	if e != nil {
		return fmt.Errorf("could not post telemetry request: %s", e)
	}
	defer resp.Body.Close()

	body, e := ioutil.ReadAll(resp.Body)
	if e != nil {
		return fmt.Errorf("could not read response body: %s", e)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("telemetry request was rejected with status %d: %s", resp.StatusCode, string(body))
	}

	r.l.Infof("successfully sent '%s' event with response %s\n", eventType, string(body))
	return nil
}

// Summary describes the reporter's session for the status endpoint
type Summary struct {
	SessionID         string  `json:"session_id"`
	DeviceID          string  `json:"device_id"`
	AppVersion        string  `json:"app_version"`
	NumBreadcrumbs    int     `json:"num_breadcrumbs"`
	NumReports        int     `json:"num_reports"`
	SecondsSinceStart float64 `json:"seconds_since_start"`
}

// Summarize returns a snapshot of the reporter's session
func (r *Reporter) Summarize() Summary {
	r.lock.Lock()
	defer r.lock.Unlock()

	return Summary{
		SessionID:         r.props.SessionID.String(),
		DeviceID:          r.props.DeviceID,
		AppVersion:        r.props.AppVersion,
		NumBreadcrumbs:    len(r.breadcrumbs),
		NumReports:        r.numReports,
		SecondsSinceStart: time.Since(r.start).Seconds(),
	}
}
