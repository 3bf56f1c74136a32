package supabase_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"whisprdraw-backend/internal/config"
	"whisprdraw-backend/internal/supabase"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Auth   string
	Prefer string
	Body   string
}

// fakeSupabase answers PostgREST and Storage calls with canned responses.
type fakeSupabase struct {
	t        *testing.T
	server   *httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func newFakeSupabase(t *testing.T) *fakeSupabase {
	f := &fakeSupabase{t: t, status: http.StatusOK, body: "[]"}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		query := make(map[string]string)
		for key, values := range r.URL.Query() {
			query[key] = values[0]
		}

		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  query,
			Auth:   r.Header.Get("Authorization"),
			Prefer: r.Header.Get("Prefer"),
			Body:   string(body),
		})
		status, respBody := f.status, f.body
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeSupabase) respond(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	f.body = body
}

func (f *fakeSupabase) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		f.t.Fatal("no request recorded")
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeSupabase) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeSupabase) factory(adminAccess bool) *supabase.ClientFactory {
	return supabase.NewClientFactory(&config.Config{
		SupabaseURL: f.server.URL,
		SupabaseKey: "anon-key",
		AdminAccess: adminAccess,
	})
}
