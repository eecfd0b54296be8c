package ledger

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"maskchain/internal/platform/metrics"
)

// Session holds process-wide admin enrollment state for the ledger API.
// Enrollment happens once, at the first gateway call, and is re-attempted
// only after an explicit Expire. Enrollment failure is swallowed on purpose:
// the ledger API reports "already enrolled" the same way as real failures, so
// the gateway proceeds either way and exposes the state via Bootstrapped.
type Session struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu           sync.Mutex
	bootstrapped bool
}

// NewSession builds the admin session for the given ledger base URL.
func NewSession(baseURL string, client *http.Client, logger *slog.Logger, m *metrics.Metrics) *Session {
	return &Session{
		baseURL: baseURL,
		http:    client,
		logger:  logger,
		metrics: m,
	}
}

// Ensure enrolls the admin identity if this process has not done so yet.
// It never returns an error; see the type comment for why.
func (s *Session) Ensure(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bootstrapped {
		return
	}

	form := url.Values{
		"adminName": {"admin"},
		"password":  {"adminpw"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/enrollAdmin",
		strings.NewReader(form.Encode()))
	if err != nil {
		s.fail(ctx, err)
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	_ = resp.Body.Close()

	s.bootstrapped = true
	if s.metrics != nil {
		s.metrics.SessionEnrolls.WithLabelValues("ok").Inc()
	}
	s.logger.InfoContext(ctx, "ledger admin session enrolled")
}

// Expire forces re-enrollment on the next gateway call.
func (s *Session) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bootstrapped = false
}

// Bootstrapped reports whether an enrollment attempt has succeeded since the
// last Expire.
func (s *Session) Bootstrapped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bootstrapped
}

func (s *Session) fail(ctx context.Context, err error) {
	if s.metrics != nil {
		s.metrics.SessionEnrolls.WithLabelValues("error").Inc()
	}
	s.logger.WarnContext(ctx, "ledger admin enrollment failed", "error", err)
}
