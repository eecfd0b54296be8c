package offers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"maskchain/internal/directory"
	"maskchain/internal/ledger"
	dErrors "maskchain/pkg/domain-errors"
	"maskchain/pkg/platform/sentinel"
)

// LedgerAPI is the slice of the ledger gateway the offer manager uses.
type LedgerAPI interface {
	MakeProducerOffer(ctx context.Context, offerID, producerKey, orderID string, offer int64) error
	GetProducerOfferInfo(ctx context.Context, offerID string) (*ledger.OfferInfo, error)
	AcceptOffer(ctx context.Context, offerID, orderID string) error
}

// Directory is the slice of the organization directory the offer manager uses.
type Directory interface {
	RequireRole(ctx context.Context, id int64, role directory.Role) (*directory.Organization, error)
}

// Service owns producer offer creation and acceptance. Acceptance state lives
// only in the ledger; the local row merely ties an offer id to its producer
// and target order.
type Service struct {
	store     Store
	ledger    LedgerAPI
	directory Directory
	logger    *slog.Logger
}

func NewService(store Store, ledgerAPI LedgerAPI, dir Directory, logger *slog.Logger) *Service {
	return &Service{store: store, ledger: ledgerAPI, directory: dir, logger: logger}
}

// Create records a bid by a supply-side organization against an order.
func (s *Service) Create(ctx context.Context, producerID int64, orderID string, offer int64) (string, error) {
	if orderID == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "order is required")
	}
	if offer <= 0 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "offer must be positive")
	}
	producer, err := s.directory.RequireRole(ctx, producerID, directory.RoleSupply)
	if err != nil {
		return "", err
	}

	offerID := uuid.NewString()
	if err := s.ledger.MakeProducerOffer(ctx, offerID, producer.LedgerKey, orderID, offer); err != nil {
		return "", ledger.Translate(err, "make producer offer")
	}

	if err := s.store.Create(ctx, &ProducerOffer{ID: offerID, ProducerID: producerID, Order: orderID}); err != nil {
		return "", fmt.Errorf("persist producer offer %s: %w", offerID, err)
	}
	s.logger.InfoContext(ctx, "producer offer created",
		"offer", offerID, "producer", producerID, "order", orderID)
	return offerID, nil
}

// List returns ledger truth for locally known offers matching the filter.
// Offers the ledger cannot resolve are skipped.
func (s *Service) List(ctx context.Context, filter Filter) ([]*ledger.OfferInfo, error) {
	rows, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list producer offers: %w", err)
	}

	result := make([]*ledger.OfferInfo, 0, len(rows))
	for _, row := range rows {
		info, err := s.ledger.GetProducerOfferInfo(ctx, row.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping offer without ledger answer",
				"offer", row.ID, "error", err)
			continue
		}
		result = append(result, info)
	}
	return result, nil
}

// Get returns ledger truth for one offer.
func (s *Service) Get(ctx context.Context, offerID string) (*ledger.OfferInfo, error) {
	info, err := s.ledger.GetProducerOfferInfo(ctx, offerID)
	if err != nil {
		return nil, ledger.Translate(err, "get producer offer info")
	}
	return info, nil
}

// Accept marks the offer as the winner of its order. The order reference
// comes from the local row, and a missing or mismatched reference is rejected
// before any ledger call goes out.
func (s *Service) Accept(ctx context.Context, offerID, orderID string) error {
	offer, err := s.store.FindByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "offer %s not found", offerID)
		}
		return err
	}
	if offer.Order == "" {
		return dErrors.Newf(dErrors.CodeInvalidInput, "offer %s has no recorded order reference", offerID)
	}
	if orderID != "" && orderID != offer.Order {
		return dErrors.Newf(dErrors.CodeInvalidInput,
			"offer %s targets order %s, not %s", offerID, offer.Order, orderID)
	}

	if err := s.ledger.AcceptOffer(ctx, offerID, offer.Order); err != nil {
		return ledger.Translate(err, "accept offer")
	}
	s.logger.InfoContext(ctx, "offer accepted", "offer", offerID, "order", offer.Order)
	return nil
}
