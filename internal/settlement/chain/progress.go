package chain

import (
	"context"
	"time"
)

// Step marks the last ledger mutation that is known committed for a chain.
// Ids are recorded in the journal before their ledger call goes out, so a
// resumed run reuses them as idempotency keys instead of minting fresh ones.
type Step string

const (
	// StepPending: journal row exists, no ledger mutation committed yet.
	StepPending Step = "pending"
	// StepLetter: createPaymentLetter committed, local letter row written.
	StepLetter Step = "letter"
	// StepDeal: createDeal committed, local deal row written.
	StepDeal Step = "deal"
	// StepDone: createDelivery committed, chain finished.
	StepDone Step = "done"
)

// Progress is the persisted journal row for one chain invocation, keyed by
// the payment that triggered it.
type Progress struct {
	PaymentID  int64     `json:"payment"`
	OrderID    string    `json:"order"`
	BankID     int64     `json:"bank"`
	LetterID   string    `json:"letter,omitempty"`
	DealID     string    `json:"deal,omitempty"`
	DeliveryID string    `json:"delivery,omitempty"`
	Step       Step      `json:"step"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Resolved reports whether the chain ran to completion.
func (p *Progress) Resolved() bool { return p.Step == StepDone }

// ProgressStore persists chain journal rows. Save is an upsert on payment id.
type ProgressStore interface {
	Find(ctx context.Context, paymentID int64) (*Progress, error)
	Save(ctx context.Context, progress *Progress) error
	ListUnresolved(ctx context.Context) ([]*Progress, error)
}
