package ledger

import (
	"errors"
	"fmt"
)

// ErrUnreachable reports a transport failure or timeout talking to the
// ledger. Calls are never retried; the caller decides what to do.
var ErrUnreachable = errors.New("ledger unreachable")

// ErrBadShape reports a structurally valid response that is missing a field
// the typed wrapper needs. The gateway itself treats any parseable body as
// success, so shape checks happen here, at the wrapper layer.
var ErrBadShape = errors.New("unexpected ledger response shape")

// MalformedError reports a response body that could not be parsed as a JSON
// object. The raw bytes are preserved so callers can log or inspect them.
type MalformedError struct {
	Transaction string
	Raw         []byte
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("ledger %s: malformed response (%d bytes)", e.Transaction, len(e.Raw))
}

func shapeError(transaction, field string) error {
	return fmt.Errorf("ledger %s: missing %q: %w", transaction, field, ErrBadShape)
}
