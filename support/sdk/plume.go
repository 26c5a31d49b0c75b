package sdk

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/plumeapp/plume-go/support/logger"
	"github.com/plumeapp/plume-go/support/networking"
)

// plumeBaseURL should not have suffix of '/'
var plumeBaseURL = "https://api.plumeapp.io"

// SetBaseURL allows setting the base URL for the Plume backend
func SetBaseURL(baseURL string) error {
	plumeBaseURL = strings.TrimSuffix(baseURL, "/")
	return nil
}

// GetBaseURL returns the base URL for the Plume backend
func GetBaseURL() string {
	return plumeBaseURL
}

// Plume is the typed SDK bound to a single Plume backend. All calls go
// through the networking.Client so header building, dispatch, failure
// classification, and reporting behave the same for every operation.
type Plume struct {
	client  *networking.Client
	l       logger.Logger
	session *Session
}

// Session holds the access token state after a successful login
type Session struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	ExpiresAt string `json:"expires_at"`
}

// Profile represents the user profile on the backend
type Profile struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	EntryCount  int64  `json:"entry_count"`
}

// ProfileUpdate holds the optional fields for a profile update, nil fields are left untouched
type ProfileUpdate struct {
	DisplayName *string `json:"display_name,omitempty"`
	Email       *string `json:"email,omitempty"`
}

// Entry represents a single journal entry
type Entry struct {
	ID        string   `json:"id" mapstructure:"id"`
	Title     string   `json:"title" mapstructure:"title"`
	Body      string   `json:"body" mapstructure:"body"`
	Tags      []string `json:"tags" mapstructure:"tags"`
	Version   int64    `json:"version" mapstructure:"version"`
	UpdatedAt string   `json:"updated_at" mapstructure:"updated_at"`
}

// EntryPatch holds the optional fields for a partial entry update, nil fields are left untouched
type EntryPatch struct {
	Title *string   `json:"title,omitempty"`
	Body  *string   `json:"body,omitempty"`
	Tags  *[]string `json:"tags,omitempty"`
}

// EntryPage is one page of the entry listing along with the cursor for the next page
type EntryPage struct {
	Entries    []Entry
	NextCursor string
}

// listEntriesParams are the query params for the entry listing
type listEntriesParams struct {
	Limit  int    `url:"limit,omitempty"`
	Cursor string `url:"cursor,omitempty"`
}

// MakePlume is a factory method that creates a Plume SDK instance bound to the configured base URL
func MakePlume(appVersion string, deviceID string, timeout time.Duration, l logger.Logger) (*Plume, error) {
	client, e := networking.MakeClient(plumeBaseURL, timeout, l)
	if e != nil {
		return nil, fmt.Errorf("could not make client for the Plume backend: %s", e)
	}
	client.SetHeader("User-Agent", fmt.Sprintf("plume-go/%s", appVersion))
	if deviceID != "" {
		client.SetHeader("X-Plume-Device-ID", deviceID)
	}
	client.SetStatusInterpreter(makeStatusInterpreter())

	return &Plume{
		client: client,
		l:      l,
	}, nil
}

// Client exposes the underlying networking client so callers can attach the
// reporting and activity collaborators
func (p *Plume) Client() *networking.Client {
	return p.client
}

// Login opens a session on the backend and installs the returned token on the client
func (p *Plume) Login(ctx context.Context, email string, password string) (*Session, error) {
	requestBody := map[string]string{
		"email":    email,
		"password": password,
	}

	var session Session
	e := p.client.Post(ctx, "/v1/session", nil, requestBody, &session)
	if e != nil {
		return nil, errors.Wrap(e, "error logging in to the Plume backend")
	}
	if session.Token == "" {
		return nil, fmt.Errorf("login response did not contain a session token")
	}

	p.session = &session
	p.client.SetAuthenticator(makeTokenAuthenticator(session.Token))
	return &session, nil
}

// Logout closes the session on the backend and drops the local token
func (p *Plume) Logout(ctx context.Context) error {
	e := p.client.Delete(ctx, "/v1/session", nil, nil)
	if e != nil {
		return errors.Wrap(e, "error logging out of the Plume backend")
	}

	p.session = nil
	p.client.SetAuthenticator(nil)
	return nil
}

// RefreshSession exchanges the current token for a fresh one
func (p *Plume) RefreshSession(ctx context.Context) (*Session, error) {
	if p.session == nil {
		return nil, fmt.Errorf("cannot refresh a session before logging in")
	}

	var session Session
	e := p.client.Post(ctx, "/v1/session/refresh", nil, nil, &session)
	if e != nil {
		return nil, errors.Wrap(e, "error refreshing the session")
	}

	p.session = &session
	p.client.SetAuthenticator(makeTokenAuthenticator(session.Token))
	return &session, nil
}

// Session returns the current session, nil when logged out
func (p *Plume) Session() *Session {
	return p.session
}

// PingServer checks that the backend is reachable without transferring a body
func (p *Plume) PingServer(ctx context.Context) error {
	e := p.client.Head(ctx, "/v1/ping", nil)
	if e != nil {
		return errors.Wrap(e, "error pinging the Plume backend")
	}
	return nil
}

// GetProfile fetches the user profile
func (p *Plume) GetProfile(ctx context.Context) (*Profile, error) {
	var profile Profile
	e := p.client.Get(ctx, "/v1/profile", nil, &profile)
	if e != nil {
		return nil, errors.Wrap(e, "error fetching profile")
	}
	return &profile, nil
}

// UpdateProfile replaces the mutable profile fields, nil fields in the update are left untouched
func (p *Plume) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Profile, error) {
	var profile Profile
	e := p.client.Put(ctx, "/v1/profile", nil, update, &profile)
	if e != nil {
		return nil, errors.Wrap(e, "error updating profile")
	}
	return &profile, nil
}

// ListEntries fetches one page of entries. limit <= 0 uses the backend default,
// cursor can be empty for the first page.
func (p *Plume) ListEntries(ctx context.Context, limit int, cursor string) (*EntryPage, error) {
	params := listEntriesParams{
		Limit:  limit,
		Cursor: cursor,
	}

	var response map[string]interface{}
	e := p.client.Get(ctx, "/v1/entries", params, &response)
	if e != nil {
		return nil, errors.Wrap(e, "error fetching entries")
	}

	entriesField, ok := response["entries"]
	if !ok {
		return nil, fmt.Errorf("entries field missing in response from listEntries")
	}
	var entries []Entry
	e = mapstructure.Decode(entriesField, &entries)
	if e != nil {
		return nil, fmt.Errorf("error converting listEntries output to a list of entries: %s", e)
	}

	nextCursor := ""
	if _, ok := response["next_cursor"]; ok {
		nextCursor, e = networking.ParseString(response, "next_cursor", "listEntries")
		if e != nil {
			return nil, e
		}
	}

	return &EntryPage{
		Entries:    entries,
		NextCursor: nextCursor,
	}, nil
}

// GetEntry fetches a single entry by ID
func (p *Plume) GetEntry(ctx context.Context, entryID string) (*Entry, error) {
	var entry Entry
	e := p.client.Get(ctx, "/v1/entries/"+entryID, nil, &entry)
	if e != nil {
		return nil, errors.Wrapf(e, "error fetching entry '%s'", entryID)
	}
	return &entry, nil
}

// CreateEntry creates a new entry and returns it with the backend-assigned ID and version
func (p *Plume) CreateEntry(ctx context.Context, title string, body string, tags []string) (*Entry, error) {
	requestBody := map[string]interface{}{
		"title": title,
		"body":  body,
	}
	if len(tags) > 0 {
		requestBody["tags"] = tags
	}

	var entry Entry
	e := p.client.Post(ctx, "/v1/entries", nil, requestBody, &entry)
	if e != nil {
		return nil, errors.Wrap(e, "error creating entry")
	}
	return &entry, nil
}

// UpdateEntry replaces an entry wholesale. version is the last version seen by
// this device so the backend can detect conflicting edits.
func (p *Plume) UpdateEntry(ctx context.Context, entry Entry) (*Entry, error) {
	if entry.ID == "" {
		return nil, fmt.Errorf("cannot update an entry without an ID")
	}

	var updated Entry
	e := p.client.Put(ctx, "/v1/entries/"+entry.ID, nil, entry, &updated)
	if e != nil {
		return nil, errors.Wrapf(e, "error updating entry '%s'", entry.ID)
	}
	return &updated, nil
}

// PatchEntry applies a partial update to an entry, nil fields in the patch are left untouched
func (p *Plume) PatchEntry(ctx context.Context, entryID string, patch EntryPatch) (*Entry, error) {
	var updated Entry
	e := p.client.Patch(ctx, "/v1/entries/"+entryID, nil, patch, &updated)
	if e != nil {
		return nil, errors.Wrapf(e, "error patching entry '%s'", entryID)
	}
	return &updated, nil
}

// DeleteEntry removes an entry from the backend
func (p *Plume) DeleteEntry(ctx context.Context, entryID string) error {
	e := p.client.Delete(ctx, "/v1/entries/"+entryID, nil, nil)
	if e != nil {
		return errors.Wrapf(e, "error deleting entry '%s'", entryID)
	}
	return nil
}

// IsNotFound returns true when the passed in error represents a missing resource
func IsNotFound(e error) bool {
	cause := errors.Cause(e)

	apiError, ok := cause.(*APIError)
	if ok {
		return apiError.StatusCode == http.StatusNotFound
	}

	reqErr, ok := cause.(*networking.RequestError)
	if ok {
		return reqErr.StatusCode == http.StatusNotFound
	}
	return false
}
