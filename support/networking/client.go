package networking

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/plumeapp/plume-go/api"
	"github.com/plumeapp/plume-go/support/logger"
)

const defaultTimeout = 10 * time.Second

// Client is a thin request wrapper bound to a single backend API. It builds
// the headers and body for each request, dispatches it via the generic fetch,
// classifies failures, and logs/reports the outcome. The collaborators
// (Authenticator, StatusInterpreter, Reporter, ActivityTracker) are all
// optional and opaque to this layer.
type Client struct {
	httpClient        *http.Client
	baseURL           string
	staticHeaders     map[string]string
	derivedHeaders    map[string]HeaderFn
	auth              api.Authenticator
	statusInterpreter api.StatusInterpreter
	reporter          api.Reporter
	activity          api.ActivityTracker
	l                 logger.Logger
}

// MakeClient is a factory method that creates a Client bound to the passed in base URL
func MakeClient(baseURL string, timeout time.Duration, l logger.Logger) (*Client, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("invalid base URL for client ('%s'), needs to start with http:// or https://", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:        baseURL,
		staticHeaders:  map[string]string{},
		derivedHeaders: map[string]HeaderFn{},
		l:              l,
	}, nil
}

// BaseURL returns the base URL this client is bound to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetHeader registers a static header to be sent with every request
func (c *Client) SetHeader(key string, value string) {
	c.staticHeaders[key] = value
}

// SetHeaderFn registers a derived header to be computed for every request
func (c *Client) SetHeaderFn(key string, fn HeaderFn) {
	c.derivedHeaders[key] = fn
}

// SetAuthenticator registers the authentication collaborator
func (c *Client) SetAuthenticator(auth api.Authenticator) {
	c.auth = auth
}

// SetStatusInterpreter registers the response-status interpretation collaborator
func (c *Client) SetStatusInterpreter(statusInterpreter api.StatusInterpreter) {
	c.statusInterpreter = statusInterpreter
}

// SetReporter registers the breadcrumb/error reporting collaborator
func (c *Client) SetReporter(reporter api.Reporter) {
	c.reporter = reporter
}

// SetActivityTracker registers the activity indicator collaborator
func (c *Client) SetActivityTracker(activity api.ActivityTracker) {
	c.activity = activity
}

// Do builds and dispatches a single request against the backend. path needs to
// begin with a '/'. params can be nil, a map[string]string, or a url-tagged
// struct (see EncodeParams). requestBody can be nil, a raw string, or any
// value to be marshalled as JSON. responseData, when non-nil, should be a
// pointer and receives the decoded JSON success payload.
func (c *Client) Do(ctx context.Context, method string, path string, params interface{}, requestBody interface{}, responseData interface{}) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("request path must begin with a '/', got '%s'", path)
	}

	requestPath, e := EncodeParams(path, params)
	if e != nil {
		return fmt.Errorf("could not build request path for %s %s: %s", method, path, e)
	}

	bodyString, e := encodeBody(requestBody)
	if e != nil {
		return fmt.Errorf("could not build request body for %s %s: %s", method, requestPath, e)
	}

	headers, e := c.buildHeaders(method, requestPath, bodyString)
	if e != nil {
		return fmt.Errorf("could not build request headers for %s %s: %s", method, requestPath, e)
	}

	reqURL := c.baseURL + requestPath
	if c.activity != nil {
		c.activity.BeginRequest()
		defer c.activity.EndRequest()
	}
	if c.reporter != nil {
		c.reporter.Breadcrumb("http", fmt.Sprintf("%s %s", method, requestPath), nil)
	}

	statusCode, respBody, contentType, e := c.fetch(ctx, method, reqURL, bodyString, headers)
	if e != nil {
		return c.fail(method, requestPath, e)
	}

	if statusCode < 200 || statusCode > 299 {
		if c.statusInterpreter != nil {
			// the interpreter's decision is final, a nil error means the status is acceptable
			if interpretedError := c.statusInterpreter.InterpretStatus(statusCode, respBody); interpretedError != nil {
				return c.fail(method, requestPath, interpretedError)
			}
			return nil
		}
		return c.fail(method, requestPath, makeStatusError(method, reqURL, statusCode, respBody))
	}

	if responseData != nil {
		mediaType, _, e := mime.ParseMediaType(contentType)
		if e != nil {
			return c.fail(method, requestPath, fmt.Errorf("could not read 'Content-Type' header in http response: %s", e))
		}
		if mediaType != "application/json" {
			return c.fail(method, requestPath, fmt.Errorf("invalid 'Content-Type' header in http response ('%s'), expecting 'application/json'", mediaType))
		}

		e2 := json.Unmarshal(respBody, responseData)
		if e2 != nil {
			return c.fail(method, requestPath, makeDecodeError(method, reqURL, respBody, e2))
		}
	}

	return nil
}

// Get dispatches a GET request
func (c *Client) Get(ctx context.Context, path string, params interface{}, responseData interface{}) error {
	return c.Do(ctx, http.MethodGet, path, params, nil, responseData)
}

// Head dispatches a HEAD request
func (c *Client) Head(ctx context.Context, path string, params interface{}) error {
	return c.Do(ctx, http.MethodHead, path, params, nil, nil)
}

// Post dispatches a POST request
func (c *Client) Post(ctx context.Context, path string, params interface{}, requestBody interface{}, responseData interface{}) error {
	return c.Do(ctx, http.MethodPost, path, params, requestBody, responseData)
}

// Put dispatches a PUT request
func (c *Client) Put(ctx context.Context, path string, params interface{}, requestBody interface{}, responseData interface{}) error {
	return c.Do(ctx, http.MethodPut, path, params, requestBody, responseData)
}

// Patch dispatches a PATCH request
func (c *Client) Patch(ctx context.Context, path string, params interface{}, requestBody interface{}, responseData interface{}) error {
	return c.Do(ctx, http.MethodPatch, path, params, requestBody, responseData)
}

// Delete dispatches a DELETE request
func (c *Client) Delete(ctx context.Context, path string, params interface{}, responseData interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, params, nil, responseData)
}

// fetch is the generic dispatch for a fully built request. It returns the
// status code, the fully drained response body, and the response Content-Type.
func (c *Client) fetch(ctx context.Context, method string, reqURL string, bodyString string, headers map[string]string) (int, []byte, string, error) {
	req, e := http.NewRequest(method, reqURL, strings.NewReader(bodyString))
	if e != nil {
		return 0, nil, "", fmt.Errorf("could not create http request: %s", e)
	}
	if ctx != nil {
		req = req.WithContext(ctx)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, e := c.httpClient.Do(req)
	if e != nil {
		return 0, nil, "", classifyDispatchError(method, reqURL, e)
	}
	defer resp.Body.Close()

	respBody, e := ioutil.ReadAll(resp.Body)
	if e != nil {
		return 0, nil, "", fmt.Errorf("could not read http response: %s", e)
	}

	return resp.StatusCode, respBody, resp.Header.Get("Content-Type"), nil
}

func (c *Client) buildHeaders(method string, requestPath string, bodyString string) (map[string]string, error) {
	headers := map[string]string{
		"Accept": "application/json",
	}
	if bodyString != "" {
		headers["Content-Type"] = "application/json"
	}

	for key, value := range c.staticHeaders {
		headers[key] = value
	}
	for key, fn := range c.derivedHeaders {
		headers[key] = fn(method, requestPath, bodyString)
	}

	if c.auth != nil {
		authHeaders, e := c.auth.AuthHeaders(method, requestPath, bodyString)
		if e != nil {
			return nil, fmt.Errorf("could not derive auth headers: %s", e)
		}
		for key, value := range authHeaders {
			headers[key] = value
		}
	}

	return headers, nil
}

// fail logs and reports a request failure before returning it to the caller
func (c *Client) fail(method string, requestPath string, e error) error {
	if c.l != nil {
		c.l.Errorf("request failed (%s %s): %s\n", method, requestPath, e)
	}
	if c.reporter != nil {
		c.reporter.Report(e, map[string]interface{}{
			"method": method,
			"path":   requestPath,
		})
	}
	return e
}

func encodeBody(requestBody interface{}) (string, error) {
	if requestBody == nil {
		return "", nil
	}

	switch b := requestBody.(type) {
	case string:
		return b, nil
	case []byte:
		return string(b), nil
	default:
		jsonBytes, e := json.Marshal(requestBody)
		if e != nil {
			return "", fmt.Errorf("could not marshal request body as json: %s", e)
		}
		return string(jsonBytes), nil
	}
}
