package networking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/plumeapp/plume-go/support/logger"
	"github.com/plumeapp/plume-go/tests"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	body   string
	header http.Header
}

func makeRecordingServer(statusCode int, responseBody string) (*httptest.Server, *[]recordedRequest) {
	recorded := []recordedRequest{}
	var lock sync.Mutex

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := ioutil.ReadAll(r.Body)
		lock.Lock()
		recorded = append(recorded, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			body:   string(body),
			header: r.Header.Clone(),
		})
		lock.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		w.Write([]byte(responseBody))
	}))
	return ts, &recorded
}

func makeTestClient(t *testing.T, baseURL string) *Client {
	c, e := MakeClient(baseURL, time.Second, logger.MakeBasicLogger())
	if !assert.NoError(t, e) {
		t.FailNow()
	}
	return c
}

func TestMakeClient_InvalidBaseURL(t *testing.T) {
	_, e := MakeClient("api.plumeapp.io", time.Second, logger.MakeBasicLogger())
	assert.Error(t, e)
	assert.Contains(t, e.Error(), "needs to start with http:// or https://")
}

func TestMakeClient_TrimsTrailingSlash(t *testing.T) {
	c := makeTestClient(t, "https://api.plumeapp.io/")
	assert.Equal(t, "https://api.plumeapp.io", c.BaseURL())
}

func TestClientDo_RequiresLeadingSlash(t *testing.T) {
	c := makeTestClient(t, "https://api.plumeapp.io")
	e := c.Do(context.Background(), "GET", "v1/profile", nil, nil, nil)
	assert.Error(t, e)
	assert.Contains(t, e.Error(), "must begin with a '/'")
}

func TestClientVerbWrappers(t *testing.T) {
	testCases := []struct {
		wantMethod string
		wantBody   string
		invoke     func(c *Client) error
	}{
		{
			wantMethod: "GET",
			wantBody:   "",
			invoke: func(c *Client) error {
				return c.Get(context.Background(), "/v1/entries", nil, nil)
			},
		}, {
			wantMethod: "HEAD",
			wantBody:   "",
			invoke: func(c *Client) error {
				return c.Head(context.Background(), "/v1/entries", nil)
			},
		}, {
			wantMethod: "POST",
			wantBody:   `{"title":"hello"}`,
			invoke: func(c *Client) error {
				return c.Post(context.Background(), "/v1/entries", nil, map[string]string{"title": "hello"}, nil)
			},
		}, {
			wantMethod: "PUT",
			wantBody:   `{"title":"hello"}`,
			invoke: func(c *Client) error {
				return c.Put(context.Background(), "/v1/entries", nil, map[string]string{"title": "hello"}, nil)
			},
		}, {
			wantMethod: "PATCH",
			wantBody:   `{"title":"hello"}`,
			invoke: func(c *Client) error {
				return c.Patch(context.Background(), "/v1/entries", nil, map[string]string{"title": "hello"}, nil)
			},
		}, {
			wantMethod: "DELETE",
			wantBody:   "",
			invoke: func(c *Client) error {
				return c.Delete(context.Background(), "/v1/entries", nil, nil)
			},
		},
	}

	for _, kase := range testCases {
		t.Run(kase.wantMethod, func(t *testing.T) {
			ts, recorded := makeRecordingServer(http.StatusOK, "{}")
			defer ts.Close()

			c := makeTestClient(t, ts.URL)
			e := kase.invoke(c)
			if !assert.NoError(t, e) {
				return
			}

			if !assert.Equal(t, 1, len(*recorded)) {
				return
			}
			req := (*recorded)[0]
			assert.Equal(t, kase.wantMethod, req.method)
			assert.Equal(t, "/v1/entries", req.path)
			assert.Equal(t, kase.wantBody, req.body)
			if kase.wantBody != "" {
				assert.Equal(t, "application/json", req.header.Get("Content-Type"))
			}
		})
	}
}

func TestClientDo_EncodesParams(t *testing.T) {
	ts, recorded := makeRecordingServer(http.StatusOK, "{}")
	defer ts.Close()

	c := makeTestClient(t, ts.URL)
	e := c.Get(context.Background(), "/v1/entries", map[string]string{"limit": "20", "cursor": "abc"}, nil)
	assert.NoError(t, e)

	req := (*recorded)[0]
	assert.Equal(t, "cursor=abc&limit=20", req.query)
}

func TestClientDo_StaticAndDerivedHeaders(t *testing.T) {
	ts, recorded := makeRecordingServer(http.StatusOK, "{}")
	defer ts.Close()

	c := makeTestClient(t, ts.URL)
	c.SetHeader("X-Plume-Device-ID", "device-1234")
	c.SetHeaderFn("X-Request-Summary", func(method string, requestPath string, body string) string {
		return fmt.Sprintf("%s|%s", method, requestPath)
	})

	e := c.Get(context.Background(), "/v1/profile", nil, nil)
	assert.NoError(t, e)

	req := (*recorded)[0]
	assert.Equal(t, "device-1234", req.header.Get("X-Plume-Device-ID"))
	assert.Equal(t, "GET|/v1/profile", req.header.Get("X-Request-Summary"))
	assert.Equal(t, "application/json", req.header.Get("Accept"))
}

type testAuthenticator struct {
	lastMethod string
	lastPath   string
	lastBody   string
}

func (a *testAuthenticator) AuthHeaders(method string, requestPath string, body string) (map[string]string, error) {
	a.lastMethod = method
	a.lastPath = requestPath
	a.lastBody = body
	return map[string]string{"Authorization": "Bearer test-token"}, nil
}

func TestClientDo_AuthenticatorHeaders(t *testing.T) {
	ts, recorded := makeRecordingServer(http.StatusOK, "{}")
	defer ts.Close()

	auth := &testAuthenticator{}
	c := makeTestClient(t, ts.URL)
	c.SetAuthenticator(auth)

	e := c.Post(context.Background(), "/v1/entries", map[string]string{"draft": "true"}, map[string]string{"title": "hi"}, nil)
	assert.NoError(t, e)

	req := (*recorded)[0]
	assert.Equal(t, "Bearer test-token", req.header.Get("Authorization"))
	// auth sees the final request path including encoded params and the exact body
	assert.Equal(t, "POST", auth.lastMethod)
	assert.Equal(t, "/v1/entries?draft=true", auth.lastPath)
	assert.Equal(t, `{"title":"hi"}`, auth.lastBody)
}

func TestClientDo_DecodesResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"entry-1","title":"hello"}`))
	}))
	defer ts.Close()

	var response struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	c := makeTestClient(t, ts.URL)
	e := c.Get(context.Background(), "/v1/entries/entry-1", nil, &response)
	assert.NoError(t, e)
	assert.Equal(t, "entry-1", response.ID)
	assert.Equal(t, "hello", response.Title)
}

func TestClientDo_RejectsNonJSONContentType(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer ts.Close()

	var response map[string]interface{}
	c := makeTestClient(t, ts.URL)
	e := c.Get(context.Background(), "/v1/profile", nil, &response)
	assert.Error(t, e)
	assert.Contains(t, e.Error(), "invalid 'Content-Type' header")
}

func TestClientDo_SkipsContentTypeCheckWithoutResponseData(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	c := makeTestClient(t, ts.URL)
	e := c.Get(context.Background(), "/v1/ping", nil, nil)
	assert.NoError(t, e)
}

func TestClientDo_ClassifiesClientError(t *testing.T) {
	ts, _ := makeRecordingServer(http.StatusNotFound, `{"error":"not found"}`)
	defer ts.Close()

	c := makeTestClient(t, ts.URL)
	e := c.Get(context.Background(), "/v1/entries/missing", nil, nil)
	if !assert.Error(t, e) {
		return
	}

	reqErr, ok := e.(*RequestError)
	if !assert.True(t, ok) {
		return
	}
	assert.Equal(t, KindClient, reqErr.Kind)
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	assert.False(t, reqErr.Temporary())
}

func TestClientDo_ClassifiesServerError(t *testing.T) {
	ts, _ := makeRecordingServer(http.StatusInternalServerError, `{"error":"boom"}`)
	defer ts.Close()

	c := makeTestClient(t, ts.URL)
	e := c.Get(context.Background(), "/v1/entries", nil, nil)
	if !assert.Error(t, e) {
		return
	}

	reqErr, ok := e.(*RequestError)
	if !assert.True(t, ok) {
		return
	}
	assert.Equal(t, KindServer, reqErr.Kind)
	assert.True(t, reqErr.Temporary())
}

func TestClientDo_ClassifiesNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // closed on purpose so the dial fails

	c := makeTestClient(t, ts.URL)
	e := c.Get(context.Background(), "/v1/entries", nil, nil)
	if !assert.Error(t, e) {
		return
	}

	reqErr, ok := e.(*RequestError)
	if !assert.True(t, ok) {
		return
	}
	assert.Equal(t, KindNetwork, reqErr.Kind)
	assert.Equal(t, 0, reqErr.StatusCode)
	assert.True(t, reqErr.Temporary())
}

func TestClientDo_ClassifiesCanceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	c := makeTestClient(t, ts.URL)
	e := c.Get(ctx, "/v1/entries", nil, nil)
	if !assert.Error(t, e) {
		return
	}

	reqErr, ok := e.(*RequestError)
	if !assert.True(t, ok) {
		return
	}
	assert.Equal(t, KindCanceled, reqErr.Kind)
}

type testStatusInterpreter struct {
	acceptStatuses map[int]bool
	mappedError    error
}

func (si *testStatusInterpreter) InterpretStatus(statusCode int, body []byte) error {
	if si.acceptStatuses[statusCode] {
		return nil
	}
	return si.mappedError
}

func TestClientDo_StatusInterpreterDecisionIsFinal(t *testing.T) {
	ts, _ := makeRecordingServer(http.StatusConflict, `{"code":"conflict"}`)
	defer ts.Close()

	mappedError := fmt.Errorf("entry was modified on another device")
	c := makeTestClient(t, ts.URL)
	c.SetStatusInterpreter(&testStatusInterpreter{mappedError: mappedError})

	e := c.Put(context.Background(), "/v1/entries/entry-1", nil, map[string]string{"title": "x"}, nil)
	assert.Equal(t, mappedError, e)
}

func TestClientDo_StatusInterpreterCanAcceptStatus(t *testing.T) {
	ts, _ := makeRecordingServer(http.StatusNotModified, "")
	defer ts.Close()

	c := makeTestClient(t, ts.URL)
	c.SetStatusInterpreter(&testStatusInterpreter{acceptStatuses: map[int]bool{http.StatusNotModified: true}})

	e := c.Get(context.Background(), "/v1/profile", nil, nil)
	assert.NoError(t, e)
}

type testReporter struct {
	sync.Mutex
	breadcrumbs []string
	reports     []error
}

func (r *testReporter) Breadcrumb(category string, message string, details map[string]interface{}) {
	r.Lock()
	defer r.Unlock()
	r.breadcrumbs = append(r.breadcrumbs, fmt.Sprintf("%s: %s", category, message))
}

func (r *testReporter) Report(e error, details map[string]interface{}) {
	r.Lock()
	defer r.Unlock()
	r.reports = append(r.reports, e)
}

func TestClientDo_ReportsBreadcrumbsAndFailures(t *testing.T) {
	ts, _ := makeRecordingServer(http.StatusBadGateway, `{"error":"bad gateway"}`)
	defer ts.Close()

	reporter := &testReporter{}
	c := makeTestClient(t, ts.URL)
	c.SetReporter(reporter)

	e := c.Get(context.Background(), "/v1/entries", nil, nil)
	assert.Error(t, e)

	assert.Equal(t, []string{"http: GET /v1/entries"}, reporter.breadcrumbs)
	if assert.Equal(t, 1, len(reporter.reports)) {
		assert.Equal(t, e, reporter.reports[0])
	}
}

func TestClientDo_NoReportOnSuccess(t *testing.T) {
	ts, _ := makeRecordingServer(http.StatusOK, "{}")
	defer ts.Close()

	reporter := &testReporter{}
	c := makeTestClient(t, ts.URL)
	c.SetReporter(reporter)

	e := c.Get(context.Background(), "/v1/entries", nil, nil)
	assert.NoError(t, e)
	assert.Equal(t, 1, len(reporter.breadcrumbs))
	assert.Equal(t, 0, len(reporter.reports))
}

type testActivityTracker struct {
	sync.Mutex
	begins int
	ends   int
}

func (a *testActivityTracker) BeginRequest() {
	a.Lock()
	defer a.Unlock()
	a.begins++
}

func (a *testActivityTracker) EndRequest() {
	a.Lock()
	defer a.Unlock()
	a.ends++
}

func TestClientDo_ActivityTrackerBalanced(t *testing.T) {
	ts, _ := makeRecordingServer(http.StatusInternalServerError, `{"error":"boom"}`)
	defer ts.Close()

	tracker := &testActivityTracker{}
	c := makeTestClient(t, ts.URL)
	c.SetActivityTracker(tracker)

	// begin/end need to be balanced on failures too
	for i := 0; i < 3; i++ {
		c.Get(context.Background(), "/v1/entries", nil, nil)
	}
	assert.Equal(t, 3, tracker.begins)
	assert.Equal(t, 3, tracker.ends)
}

func TestClientDo_RawStringBodyPassesThrough(t *testing.T) {
	ts, recorded := makeRecordingServer(http.StatusOK, "{}")
	defer ts.Close()

	rawBody := fmt.Sprintf(`{"nonce":"%s"}`, tests.RandomString())
	c := makeTestClient(t, ts.URL)
	e := c.Post(context.Background(), "/v1/events", nil, rawBody, nil)
	assert.NoError(t, e)
	assert.Equal(t, rawBody, (*recorded)[0].body)
}

func TestClientDo_DecodeErrorClassified(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("this is not json"))
	}))
	defer ts.Close()

	var response map[string]interface{}
	c := makeTestClient(t, ts.URL)
	e := c.Get(context.Background(), "/v1/profile", nil, &response)
	if !assert.Error(t, e) {
		return
	}

	reqErr, ok := e.(*RequestError)
	if !assert.True(t, ok) {
		return
	}
	assert.Equal(t, KindDecode, reqErr.Kind)

	var jsonErr *json.SyntaxError
	assert.True(t, errors.As(e, &jsonErr))
}
