package offers

import "context"

// Store persists producer offer index rows. Rows are append only.
type Store interface {
	Create(ctx context.Context, offer *ProducerOffer) error
	FindByID(ctx context.Context, id string) (*ProducerOffer, error)
	List(ctx context.Context, filter Filter) ([]*ProducerOffer, error)
}

// Filter narrows offer listings. Zero values mean "no constraint".
type Filter struct {
	ProducerID int64
	Order      string
}
