// Package ledgertest provides a programmable fake ledger API for tests.
// Responses are scripted per transaction; every call is recorded so tests can
// assert on wire-level argument encoding.
package ledgertest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Call is one recorded transaction invocation.
type Call struct {
	Transaction   string
	Username      string
	Channel       string
	SmartContract string
	Args          map[string]string
}

type scripted struct {
	raw  string
	body any
	fn   func(args map[string]string) any
}

// Server is a fake ledger API over httptest. The zero-configuration behavior
// answers every transaction with an empty JSON object, which the gateway
// classifies as success.
type Server struct {
	srv *httptest.Server

	mu      sync.Mutex
	calls   []Call
	scripts map[string]scripted
	enrolls int
}

// New starts the fake ledger. Callers must Close it.
func New() *Server {
	s := &Server{scripts: make(map[string]scripted)}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URL is the base URL to hand to the gateway.
func (s *Server) URL() string { return s.srv.URL }

// Close shuts the fake down. Gateway calls after Close classify as
// unreachable, which some tests rely on.
func (s *Server) Close() { s.srv.Close() }

// Respond scripts a JSON response body for a transaction.
func (s *Server) Respond(transaction string, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[transaction] = scripted{body: body}
}

// RespondFunc scripts a response computed from the call's args.
func (s *Server) RespondFunc(transaction string, fn func(args map[string]string) any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[transaction] = scripted{fn: fn}
}

// RespondRaw scripts a raw (typically non-JSON) response body, for malformed
// classification tests.
func (s *Server) RespondRaw(transaction, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[transaction] = scripted{raw: raw}
}

// Calls returns the recorded invocations of one transaction.
func (s *Server) Calls(transaction string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if c.Transaction == transaction {
			out = append(out, c)
		}
	}
	return out
}

// CallCount returns how many times a transaction was invoked.
func (s *Server) CallCount(transaction string) int {
	return len(s.Calls(transaction))
}

// TotalCalls returns the number of transaction invocations, enrollments
// excluded.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// EnrollCount returns how many admin enrollments the fake has seen.
func (s *Server) EnrollCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enrolls
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	transaction := strings.TrimPrefix(r.URL.Path, "/")

	if transaction == "enrollAdmin" {
		s.mu.Lock()
		s.enrolls++
		s.mu.Unlock()
		w.WriteHeader(http.StatusOK)
		return
	}

	var body struct {
		Username      string            `json:"username"`
		Channel       string            `json:"channel"`
		SmartContract string            `json:"smartcontract"`
		Args          map[string]string `json:"args"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Transaction:   transaction,
		Username:      body.Username,
		Channel:       body.Channel,
		SmartContract: body.SmartContract,
		Args:          body.Args,
	})
	script, ok := s.scripts[transaction]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case !ok:
		_, _ = w.Write([]byte(`{}`))
	case script.raw != "":
		_, _ = w.Write([]byte(script.raw))
	case script.fn != nil:
		_ = json.NewEncoder(w).Encode(script.fn(body.Args))
	default:
		_ = json.NewEncoder(w).Encode(script.body)
	}
}
