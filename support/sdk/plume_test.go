package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/plumeapp/plume-go/support/logger"
)

func makeFakeBackend() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/session", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "POST":
			body, _ := ioutil.ReadAll(r.Body)
			var creds map[string]string
			json.Unmarshal(body, &creds)
			if creds["password"] != "correct-password" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"code":"unauthorized","message":"wrong email or password","request_id":"req-1"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"token":"session-token-1","user_id":"user-1","expires_at":"2026-09-01T00:00:00Z"}`))
		case "DELETE":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/v1/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer session-token-1" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code":"unauthorized","message":"missing token","request_id":"req-2"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user_id":"user-1","display_name":"Casey","email":"casey@example.com","entry_count":3}`))
	})

	mux.HandleFunc("/v1/entries", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			w.Header().Set("Content-Type", "application/json")
			if r.URL.Query().Get("cursor") == "page-2" {
				w.Write([]byte(`{"entries":[{"id":"entry-3","title":"third","body":"c","version":1,"updated_at":"2026-08-01T10:00:00Z"}]}`))
				return
			}
			w.Write([]byte(`{"entries":[` +
				`{"id":"entry-1","title":"first","body":"a","tags":["travel"],"version":2,"updated_at":"2026-08-01T08:00:00Z"},` +
				`{"id":"entry-2","title":"second","body":"b","version":1,"updated_at":"2026-08-01T09:00:00Z"}` +
				`],"next_cursor":"page-2"}`))
		case "POST":
			body, _ := ioutil.ReadAll(r.Body)
			var in map[string]interface{}
			json.Unmarshal(body, &in)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			fmt.Fprintf(w, `{"id":"entry-9","title":"%s","body":"%s","version":1,"updated_at":"2026-08-26T00:00:00Z"}`, in["title"], in["body"])
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/v1/entries/entry-1", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"entry-1","title":"first","body":"a","tags":["travel"],"version":2,"updated_at":"2026-08-01T08:00:00Z"}`))
		case "PUT", "PATCH":
			body, _ := ioutil.ReadAll(r.Body)
			var in map[string]interface{}
			json.Unmarshal(body, &in)
			title := "first"
			if t, ok := in["title"].(string); ok {
				title = t
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"id":"entry-1","title":"%s","body":"a","version":3,"updated_at":"2026-08-26T00:00:00Z"}`, title)
		case "DELETE":
			w.WriteHeader(http.StatusNoContent)
		}
	})

	mux.HandleFunc("/v1/entries/missing", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"not_found","message":"no such entry","request_id":"req-3"}`))
	})

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return httptest.NewServer(mux)
}

func makeTestPlume(t *testing.T, baseURL string) *Plume {
	e := SetBaseURL(baseURL)
	if !assert.NoError(t, e) {
		t.FailNow()
	}

	p, e := MakePlume("1.4.2-test", "test-device", time.Second, logger.MakeBasicLogger())
	if !assert.NoError(t, e) {
		t.FailNow()
	}
	return p
}

func TestPlumeLoginInstallsToken(t *testing.T) {
	ts := makeFakeBackend()
	defer ts.Close()

	p := makeTestPlume(t, ts.URL)
	session, e := p.Login(context.Background(), "casey@example.com", "correct-password")
	if !assert.NoError(t, e) {
		return
	}
	assert.Equal(t, "session-token-1", session.Token)
	assert.Equal(t, "user-1", session.UserID)

	// the profile endpoint requires the installed token
	profile, e := p.GetProfile(context.Background())
	if !assert.NoError(t, e) {
		return
	}
	assert.Equal(t, "Casey", profile.DisplayName)
	assert.Equal(t, int64(3), profile.EntryCount)
}

func TestPlumeLoginRejected(t *testing.T) {
	ts := makeFakeBackend()
	defer ts.Close()

	p := makeTestPlume(t, ts.URL)
	_, e := p.Login(context.Background(), "casey@example.com", "wrong")
	if !assert.Error(t, e) {
		return
	}
	assert.Contains(t, e.Error(), "wrong email or password")
	assert.Nil(t, p.Session())
}

func TestPlumeListEntriesPagination(t *testing.T) {
	ts := makeFakeBackend()
	defer ts.Close()

	p := makeTestPlume(t, ts.URL)
	page, e := p.ListEntries(context.Background(), 2, "")
	if !assert.NoError(t, e) {
		return
	}
	assert.Equal(t, 2, len(page.Entries))
	assert.Equal(t, "entry-1", page.Entries[0].ID)
	assert.Equal(t, []string{"travel"}, page.Entries[0].Tags)
	assert.Equal(t, int64(2), page.Entries[0].Version)
	assert.Equal(t, "page-2", page.NextCursor)

	page, e = p.ListEntries(context.Background(), 2, page.NextCursor)
	if !assert.NoError(t, e) {
		return
	}
	assert.Equal(t, 1, len(page.Entries))
	assert.Equal(t, "", page.NextCursor)
}

func TestPlumeEntryLifecycle(t *testing.T) {
	ts := makeFakeBackend()
	defer ts.Close()

	p := makeTestPlume(t, ts.URL)

	created, e := p.CreateEntry(context.Background(), "a day in lisbon", "sunny", []string{"travel"})
	if !assert.NoError(t, e) {
		return
	}
	assert.Equal(t, "entry-9", created.ID)
	assert.Equal(t, "a day in lisbon", created.Title)

	fetched, e := p.GetEntry(context.Background(), "entry-1")
	if !assert.NoError(t, e) {
		return
	}
	assert.Equal(t, "first", fetched.Title)

	fetched.Title = "first (edited)"
	updated, e := p.UpdateEntry(context.Background(), *fetched)
	if !assert.NoError(t, e) {
		return
	}
	assert.Equal(t, "first (edited)", updated.Title)
	assert.Equal(t, int64(3), updated.Version)

	e = p.DeleteEntry(context.Background(), "entry-1")
	assert.NoError(t, e)
}

func TestPlumeGetEntryNotFound(t *testing.T) {
	ts := makeFakeBackend()
	defer ts.Close()

	p := makeTestPlume(t, ts.URL)
	_, e := p.GetEntry(context.Background(), "missing")
	if !assert.Error(t, e) {
		return
	}
	assert.True(t, IsNotFound(e))
	assert.Contains(t, e.Error(), "no such entry")
}

func TestPlumePingServer(t *testing.T) {
	ts := makeFakeBackend()
	defer ts.Close()

	p := makeTestPlume(t, ts.URL)
	assert.NoError(t, p.PingServer(context.Background()))
}

func TestPlumeUpdateEntryWithoutID(t *testing.T) {
	ts := makeFakeBackend()
	defer ts.Close()

	p := makeTestPlume(t, ts.URL)
	_, e := p.UpdateEntry(context.Background(), Entry{Title: "no id"})
	assert.Error(t, e)
	assert.Contains(t, e.Error(), "without an ID")
}
