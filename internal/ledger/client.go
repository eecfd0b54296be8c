// Package ledger is the gateway to the external append-only ledger service.
// The ledger is authoritative for every quantity and status field; the local
// index only holds identifiers and relationships. All transactions go through
// Client.invoke, which owns session bootstrap, serialization and failure
// classification.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"maskchain/internal/platform/metrics"
)

// Wire constants of the ledger protocol. Every call targets the same channel
// and smart contract under the shared admin identity.
const (
	wireUsername      = "admin"
	wireChannel       = "channel1"
	wireSmartContract = "cc"
)

// envelope is the request body of every ledger transaction. All argument
// values are serialized as strings regardless of semantic type; that is the
// ledger's wire convention, not a modeling choice.
type envelope struct {
	Username      string            `json:"username"`
	Channel       string            `json:"channel"`
	SmartContract string            `json:"smartcontract"`
	Args          map[string]string `json:"args,omitempty"`
}

// Response is a parsed ledger response body. Field access must be defensive:
// the gateway guarantees structure, not shape.
type Response map[string]any

// Client issues ledger transactions. Calls are synchronous with one fixed
// timeout, no retry and no backoff; a timeout is a hard failure surfaced to
// the caller.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
	logger  *slog.Logger
	metrics *metrics.Metrics

	// now is swappable in tests that assert wire timestamps.
	now func() time.Time
}

// New builds a ledger client. The timeout applies per call.
func New(baseURL string, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *Client {
	httpClient := &http.Client{Timeout: timeout}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		session: NewSession(baseURL, httpClient, logger, m),
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Session exposes the admin session state (health reporting, explicit expiry).
func (c *Client) Session() *Session {
	return c.session
}

// invoke POSTs one transaction and classifies the result. A response body
// that parses as a JSON object counts as success; the gateway deliberately
// does not look for an embedded ok/error field, so a contract-level rejection
// still classifies as success here. Known gap, kept until the ledger contract
// grows a stable error envelope.
func (c *Client) invoke(ctx context.Context, transaction string, args map[string]string) (Response, error) {
	c.session.Ensure(ctx)

	body, err := json.Marshal(envelope{
		Username:      wireUsername,
		Channel:       wireChannel,
		SmartContract: wireSmartContract,
		Args:          args,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+transaction, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(transaction, "unreachable", start)
		c.logger.WarnContext(ctx, "ledger call failed",
			"transaction", transaction,
			"error", err,
		)
		return nil, ErrUnreachable
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(transaction, "unreachable", start)
		return nil, ErrUnreachable
	}

	var parsed Response
	if err := json.Unmarshal(raw, &parsed); err != nil {
		c.observe(transaction, "malformed", start)
		return nil, &MalformedError{Transaction: transaction, Raw: raw}
	}

	c.observe(transaction, "accepted", start)
	return parsed, nil
}

func (c *Client) observe(transaction, outcome string, start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveLedgerCall(transaction, outcome, c.now().Sub(start))
	}
}

// timestampMillis renders the current time in the ledger's millisecond form.
func (c *Client) timestampMillis() string {
	return strconv.FormatInt(c.now().UnixMilli(), 10)
}

// millisToString renders a ledger millisecond timestamp for display. Lexical
// order of the result matches chronological order, which the hospital order
// listing relies on.
func millisToString(millis int64) string {
	return time.UnixMilli(millis).Format("2006-01-02 15:04")
}

// String reads a string-valued field.
func (r Response) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int reads a numeric field. The ledger emits numbers both as JSON numbers
// and as decimal strings, so both forms are accepted.
func (r Response) Int(key string) (int64, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
