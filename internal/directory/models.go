package directory

import (
	"github.com/google/uuid"

	dErrors "maskchain/pkg/domain-errors"
)

// Role classifies an organization's side of the procurement workflow.
// A role never changes after the organization is first persisted.
type Role string

const (
	RoleRegulator Role = "REGULATOR"
	RoleDemand    Role = "DEMAND"
	RoleSupply    Role = "SUPPLY"
	RoleFinance   Role = "FINANCE"
	RoleOther     Role = "OTHER"
)

var validRoles = map[Role]bool{
	RoleRegulator: true,
	RoleDemand:    true,
	RoleSupply:    true,
	RoleFinance:   true,
	RoleOther:     true,
}

// ParseRole constructs a Role from external input.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !validRoles[r] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown role %q", s)
	}
	return r, nil
}

func (r Role) String() string { return string(r) }

// DefaultKeyPrefix is what roles outside the four business roles derive
// their ledger key from. It collides with the regulator prefix; that
// ambiguity is inherited from the ledger contract and deliberately not
// resolved here.
const DefaultKeyPrefix = "Mi"

// KeyPrefix returns the fixed two-letter ledger key prefix for the role.
// The prefix is a pure function of the role.
func (r Role) KeyPrefix() string {
	switch r {
	case RoleDemand:
		return "Ho"
	case RoleSupply:
		return "Co"
	case RoleFinance:
		return "Ba"
	default:
		return DefaultKeyPrefix
	}
}

// Organization is a local index row. LedgerKey is derived once at creation
// (prefix + local sequence id) and is the identity the ledger knows the
// organization by. Role and LedgerKey are immutable after creation.
type Organization struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	LedgerKey string `json:"key"`
}

// User is a directory row tying a login name to an organization.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	OrganizationID int64     `json:"organization"`
	Key            uuid.UUID `json:"key"`
}
