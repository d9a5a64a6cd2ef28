// Package fakecmis provides an in-memory CMIS AtomPub server for tests.
//
// It serves a service document, object and type entries, folder feeds,
// versioning, relationships and queries for one or more repositories whose
// state lives in memory and can be inspected or changed by the test.
// Every request is recorded, and failures can be injected per method and
// path to exercise the client's error mapping.
package fakecmis

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

// Request is a recorded request.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	ContentType string
	Body        []byte
	RequestID   string
}

// Failure makes matching requests fail with Status.
type Failure struct {
	// Method matches any method when empty.
	Method string
	// PathContains matches any path when empty.
	PathContains string
	Status       int
	// Times limits how often the failure fires; 0 means always.
	Times int
}

// Server is a fake CMIS AtomPub service.
type Server struct {
	// URL is the base URL once the server is started.
	URL string
	// Username and Password, when set, are required as basic auth.
	Username string
	Password string
	// IncompleteTemplates advertises an objectbyid template without the
	// includeAllowableActions slot.
	IncompleteTemplates bool
	// EmptyPutResponses answers successful property updates with 204 and
	// no body.
	EmptyPutResponses bool

	mu       sync.Mutex
	repos    []*Repository
	requests []Request
	failures []*Failure
	nextID   int

	router     *mux.Router
	httpServer *httptest.Server
}

// NewServer creates a server with one repository, "repo-1".
func NewServer() *Server {
	s := &Server{}
	s.repos = append(s.repos, newRepository(s, "repo-1", "Main Repository"))
	s.router = s.routes()
	return s
}

// Start starts serving on a random local port.
func (s *Server) Start() {
	s.httpServer = httptest.NewServer(s.router)
	s.URL = s.httpServer.URL
}

// Close stops the server.
func (s *Server) Close() {
	if s.httpServer != nil {
		s.httpServer.Close()
	}
}

// ServiceURL returns the URL of the service document.
func (s *Server) ServiceURL() string {
	return s.URL + "/cmis"
}

// Handler returns the router, for serving without a listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// AddRepository adds a repository to the service document.
func (s *Server) AddRepository(id, name string) *Repository {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := newRepository(s, id, name)
	s.repos = append(s.repos, r)
	return r
}

// Repository returns the repository with the given id, or nil.
func (s *Server) Repository(id string) *Repository {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repository(id)
}

func (s *Server) repository(id string) *Repository {
	for _, r := range s.repos {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Fail registers a failure.
func (s *Server) Fail(f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, &f)
}

// ClearFailures removes every registered failure.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = nil
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestCount returns the number of requests received so far.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// ResetRequests forgets the recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *Server) base(repoID string) string {
	return s.URL + "/cmis/" + repoID
}

// record logs the request, enforces basic auth and applies failures.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       r.URL.Query(),
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
			RequestID:   r.Header.Get("X-Request-Id"),
		})
		status := s.failure(r)
		s.mu.Unlock()

		if s.Username != "" {
			user, pass, ok := r.BasicAuth()
			if !ok || user != s.Username || pass != s.Password {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
		}
		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) failure(r *http.Request) int {
	for i, f := range s.failures {
		if f.Method != "" && f.Method != r.Method {
			continue
		}
		if f.PathContains != "" && !strings.Contains(r.URL.Path, f.PathContains) {
			continue
		}
		if f.Times > 0 {
			f.Times--
			if f.Times == 0 {
				s.failures = append(s.failures[:i], s.failures[i+1:]...)
			}
		}
		return f.Status
	}
	return 0
}
