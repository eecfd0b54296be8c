package settlement

import "context"

// PaymentStore persists local payment records. PaymentOrderIDs feeds the
// unpaid-order filter in the order manager; it is a plain full scan.
type PaymentStore interface {
	Create(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id int64) (*Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]*Payment, error)
	PaymentOrderIDs(ctx context.Context) ([]string, error)
}

// PaymentFilter narrows payment listings. Zero values mean "no constraint".
type PaymentFilter struct {
	Order      string
	ProducerID int64
}

// LetterStore persists payment letter index rows. FindByOrder backs the
// one-letter-per-order invariant, which is checked at the application level
// under the chain lock, not by the schema.
type LetterStore interface {
	Create(ctx context.Context, letter *PaymentLetter) error
	FindByID(ctx context.Context, id string) (*PaymentLetter, error)
	FindByOrder(ctx context.Context, order string) (*PaymentLetter, error)
	List(ctx context.Context, filter LetterFilter) ([]*PaymentLetter, error)
}

// LetterFilter narrows letter listings. Orders restricts to letters settling
// any of the given order ids; nil means "no constraint".
type LetterFilter struct {
	BankID int64
	Orders []string
}

// DealStore persists deal index rows.
type DealStore interface {
	Create(ctx context.Context, deal *Deal) error
	List(ctx context.Context, producerID int64) ([]*Deal, error)
}

// DeliveryStore persists delivery index rows.
type DeliveryStore interface {
	Create(ctx context.Context, delivery *Delivery) error
	FindByID(ctx context.Context, id string) (*Delivery, error)
	FindByDeal(ctx context.Context, dealID string) (*Delivery, error)
	List(ctx context.Context) ([]*Delivery, error)
}
