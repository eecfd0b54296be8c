package ledger

import (
	"errors"

	dErrors "maskchain/pkg/domain-errors"
)

// Translate maps a gateway error to a coded domain error so services do not
// re-derive the classification individually. op names the failed operation in
// the message.
func Translate(err error, op string) error {
	var malformed *MalformedError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnreachable):
		return dErrors.Wrap(dErrors.CodeLedgerUnavailable, op, err)
	case errors.As(err, &malformed):
		return dErrors.Wrap(dErrors.CodeLedgerMalformed, op, err)
	case errors.Is(err, ErrBadShape):
		return dErrors.Wrap(dErrors.CodeLedgerMalformed, op, err)
	default:
		return dErrors.Wrap(dErrors.CodeLedgerFailed, op, err)
	}
}
