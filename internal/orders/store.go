package orders

import "context"

// MinistryOrderStore persists regulator order index rows. Rows are append
// only; there is no delete and nothing to update.
type MinistryOrderStore interface {
	Create(ctx context.Context, order *MinistryOrder) error
	FindByID(ctx context.Context, id string) (*MinistryOrder, error)
	List(ctx context.Context) ([]*MinistryOrder, error)
}

// HospitalOrderStore persists demand-side order index rows.
type HospitalOrderStore interface {
	Create(ctx context.Context, order *HospitalOrder) error
	FindByID(ctx context.Context, id string) (*HospitalOrder, error)
	ListByHospital(ctx context.Context, hospitalID int64) ([]*HospitalOrder, error)
}

// PaymentLookup reports which order ids have a local payment recorded. The
// unpaid filter is a deliberate full scan over this list; at the expected
// order/payment volume an index would not pay for itself.
type PaymentLookup interface {
	PaymentOrderIDs(ctx context.Context) ([]string, error)
}
