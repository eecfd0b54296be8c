package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"maskchain/internal/directory"
	"maskchain/internal/ledger"
	dErrors "maskchain/pkg/domain-errors"
	"maskchain/pkg/platform/sentinel"
)

// LedgerAPI is the slice of the ledger gateway the settlement read paths use.
type LedgerAPI interface {
	GetPaymentLetterInfo(ctx context.Context, letterID string) (*ledger.LetterInfo, error)
	GetDeliveryInfo(ctx context.Context, deliveryID string) (*ledger.DeliveryInfo, error)
	UpdateDelivery(ctx context.Context, deliveryID, status string) error
}

// Directory is the slice of the organization directory the settlement
// service uses.
type Directory interface {
	GetOrganization(ctx context.Context, id int64) (*directory.Organization, error)
	ResolveByLedgerKey(ctx context.Context, key string) (*directory.Organization, error)
}

// PaymentView is a payment row with the producer name resolved for display.
type PaymentView struct {
	Payment
	ProducerName string `json:"producerName"`
}

// LetterView merges ledger letter truth with local bank and order references.
type LetterView struct {
	ID    string `json:"id"`
	Bank  string `json:"bank"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Date  string `json:"date"`
	Order string `json:"order"`
}

// DealView is a deal row with its delivery's ledger state attached when the
// delivery can be resolved.
type DealView struct {
	ID       string               `json:"id"`
	Producer int64                `json:"producer"`
	Letter   string               `json:"letter"`
	Delivery *ledger.DeliveryInfo `json:"delivery,omitempty"`
}

// DeliveryView merges ledger delivery truth with the producer organization.
type DeliveryView struct {
	ID       string                  `json:"id"`
	Date     string                  `json:"date"`
	Status   string                  `json:"status"`
	Producer *directory.Organization `json:"producer"`
}

// Service owns the settlement read model: payments, letters, deals and
// deliveries. Letter, deal and delivery rows are only ever written by the
// chain orchestrator; this service creates payments and serves listings.
type Service struct {
	payments   PaymentStore
	letters    LetterStore
	deals      DealStore
	deliveries DeliveryStore
	ledger     LedgerAPI
	directory  Directory
	logger     *slog.Logger
}

func NewService(
	payments PaymentStore,
	letters LetterStore,
	deals DealStore,
	deliveries DeliveryStore,
	ledgerAPI LedgerAPI,
	dir Directory,
	logger *slog.Logger,
) *Service {
	return &Service{
		payments:   payments,
		letters:    letters,
		deals:      deals,
		deliveries: deliveries,
		ledger:     ledgerAPI,
		directory:  dir,
		logger:     logger,
	}
}

// CreatePayment records a local settlement intent for an order. The producer
// is addressed by its ledger key, matching how the winning offer reports it.
// No ledger call happens here; the payment only becomes visible on the ledger
// once the chain issues its letter.
func (s *Service) CreatePayment(ctx context.Context, order string, price int64, producerKey string) (*Payment, error) {
	if order == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "order is required")
	}
	if price <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "price must be positive")
	}
	producer, err := s.directory.ResolveByLedgerKey(ctx, producerKey)
	if err != nil {
		return nil, err
	}

	payment := &Payment{Order: order, Price: price, ProducerID: producer.ID}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("persist payment: %w", err)
	}
	s.logger.InfoContext(ctx, "payment created",
		"payment", payment.ID, "order", order, "producer", producer.ID)
	return payment, nil
}

// GetPayment looks up one local payment.
func (s *Service) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "payment %d not found", id)
		}
		return nil, err
	}
	return payment, nil
}

// ListPayments returns payments, optionally narrowed to one order and
// optionally restricted to unpaid ones. A payment is unpaid iff no letter
// references its order; the predicate is recomputed per query by scanning
// the letter rows, never cached.
func (s *Service) ListPayments(ctx context.Context, order string, unpaidOnly bool) ([]*PaymentView, error) {
	rows, err := s.payments.List(ctx, PaymentFilter{Order: order})
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	if unpaidOnly {
		letters, err := s.letters.List(ctx, LetterFilter{})
		if err != nil {
			return nil, fmt.Errorf("list payment letters: %w", err)
		}
		settled := make(map[string]bool, len(letters))
		for _, letter := range letters {
			settled[letter.Order] = true
		}
		unpaid := rows[:0]
		for _, payment := range rows {
			if !settled[payment.Order] {
				unpaid = append(unpaid, payment)
			}
		}
		rows = unpaid
	}

	result := make([]*PaymentView, 0, len(rows))
	for _, payment := range rows {
		view := &PaymentView{Payment: *payment}
		if producer, err := s.directory.GetOrganization(ctx, payment.ProducerID); err == nil {
			view.ProducerName = producer.Name
		}
		result = append(result, view)
	}
	return result, nil
}

// ListLetters returns ledger truth for payment letters, optionally narrowed
// to one issuing bank or to letters settling a producer's payments.
func (s *Service) ListLetters(ctx context.Context, bankID, producerID int64) ([]*LetterView, error) {
	filter := LetterFilter{BankID: bankID}
	if producerID != 0 {
		payments, err := s.payments.List(ctx, PaymentFilter{ProducerID: producerID})
		if err != nil {
			return nil, fmt.Errorf("list producer payments: %w", err)
		}
		filter.Orders = make([]string, 0, len(payments))
		for _, payment := range payments {
			filter.Orders = append(filter.Orders, payment.Order)
		}
	}

	rows, err := s.letters.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list payment letters: %w", err)
	}

	result := make([]*LetterView, 0, len(rows))
	for _, row := range rows {
		info, err := s.ledger.GetPaymentLetterInfo(ctx, row.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping letter without ledger answer",
				"letter", row.ID, "error", err)
			continue
		}
		view := &LetterView{
			ID:    info.ID,
			Bank:  info.Bank,
			Price: info.Price,
			Date:  info.Date,
			Order: row.Order,
		}
		if bank, err := s.directory.GetOrganization(ctx, row.BankID); err == nil {
			view.Name = bank.Name
		}
		result = append(result, view)
	}
	return result, nil
}

// ListDeals returns deals, optionally narrowed to one producer, with each
// deal's delivery state attached when the delivery resolves on the ledger.
func (s *Service) ListDeals(ctx context.Context, producerID int64) ([]*DealView, error) {
	rows, err := s.deals.List(ctx, producerID)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}

	result := make([]*DealView, 0, len(rows))
	for _, deal := range rows {
		view := &DealView{ID: deal.ID, Producer: deal.ProducerID, Letter: deal.Letter}
		if delivery, err := s.deliveries.FindByDeal(ctx, deal.ID); err == nil {
			if info, err := s.ledger.GetDeliveryInfo(ctx, delivery.ID); err == nil {
				view.Delivery = info
			} else {
				s.logger.WarnContext(ctx, "deal delivery without ledger answer",
					"deal", deal.ID, "delivery", delivery.ID, "error", err)
			}
		}
		result = append(result, view)
	}
	return result, nil
}

// ListDeliveries returns ledger truth for every locally known delivery with
// the producer organization resolved. Deliveries the ledger cannot answer
// for are skipped.
func (s *Service) ListDeliveries(ctx context.Context) ([]*DeliveryView, error) {
	rows, err := s.deliveries.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}

	result := make([]*DeliveryView, 0, len(rows))
	for _, row := range rows {
		info, err := s.ledger.GetDeliveryInfo(ctx, row.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping delivery without ledger answer",
				"delivery", row.ID, "error", err)
			continue
		}
		view := &DeliveryView{ID: row.ID, Date: info.Date, Status: info.Status}
		if producer, err := s.directory.GetOrganization(ctx, row.ProducerID); err == nil {
			view.Producer = producer
		}
		result = append(result, view)
	}
	return result, nil
}

// UpdateDeliveryStatus sets the status of a delivery on the ledger. The
// delivery must exist locally first.
func (s *Service) UpdateDeliveryStatus(ctx context.Context, deliveryID, status string) error {
	if deliveryID == "" || status == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "delivery and status are required")
	}
	if _, err := s.deliveries.FindByID(ctx, deliveryID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "delivery %s not found", deliveryID)
		}
		return err
	}
	if err := s.ledger.UpdateDelivery(ctx, deliveryID, status); err != nil {
		return ledger.Translate(err, "update delivery")
	}
	return nil
}
