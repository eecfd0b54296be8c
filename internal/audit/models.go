package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Action    string            `json:"action"`
	Subject   string            `json:"subject"`
	Outcome   string            `json:"outcome"`
	Detail    map[string]string `json:"detail,omitempty"`
}

// Actions emitted by the services.
const (
	ActionChainRun      = "settlement_chain_run"
	ActionLedgerSession = "ledger_session"
	ActionOrderCreated  = "order_created"
)
