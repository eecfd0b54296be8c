package chain

import (
	"errors"
	"fmt"
)

// Halt causes that are states of the world rather than transport failures.
var (
	// ErrNoWinner: the order has no accepted offer, so no deal can follow
	// the letter.
	ErrNoWinner = errors.New("order has no winning offer")
	// ErrUnknownProducer: the winning offer names a ledger key no local
	// organization carries.
	ErrUnknownProducer = errors.New("winning offer names an unknown producer")
)

// IncompleteError reports a chain that halted after at least one ledger
// mutation committed. The committed prefix is spelled out so the caller
// knows exactly which entities exist; the journal keeps the same facts for
// a later resume.
type IncompleteError struct {
	PaymentID  int64
	OrderID    string
	LetterID   string
	DealID     string
	DeliveryID string
	Step       Step
	Err        error
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("settlement chain for payment %d halted at step %q (letter=%q deal=%q delivery=%q): %v",
		e.PaymentID, e.Step, e.LetterID, e.DealID, e.DeliveryID, e.Err)
}

func (e *IncompleteError) Unwrap() error { return e.Err }
