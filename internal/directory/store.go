package directory

import "context"

// OrganizationStore persists organization index rows. Implementations assign
// the sequence ID on Create and enforce that role and ledger key never change
// once set: AssignLedgerKey succeeds exactly once per organization.
type OrganizationStore interface {
	Create(ctx context.Context, org *Organization) error
	AssignLedgerKey(ctx context.Context, id int64, key string) error
	FindByID(ctx context.Context, id int64) (*Organization, error)
	FindByLedgerKey(ctx context.Context, key string) (*Organization, error)
	ListByRole(ctx context.Context, role Role) ([]*Organization, error)
	List(ctx context.Context) ([]*Organization, error)
}

// UserStore persists directory users.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]*User, error)
}
