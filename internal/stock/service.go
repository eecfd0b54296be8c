// Package stock exposes the ledger-held inventory quantities of the
// regulator and the producers. Quantities are never cached locally; every
// read goes to the ledger.
package stock

import (
	"context"
	"log/slog"

	"maskchain/internal/directory"
	"maskchain/internal/ledger"
	dErrors "maskchain/pkg/domain-errors"
)

// LedgerAPI is the slice of the ledger gateway the stock service uses.
type LedgerAPI interface {
	GetMinistryInfo(ctx context.Context) (int64, error)
	GetProducerInfo(ctx context.Context, producerKey string) int64
	UpdateMask(ctx context.Context, producerKey string, amount int64) error
}

// Directory is the slice of the organization directory the stock service uses.
type Directory interface {
	RequireRole(ctx context.Context, id int64, role directory.Role) (*directory.Organization, error)
	ListOrganizations(ctx context.Context, role string) ([]*directory.Organization, error)
}

// ProducerStock pairs a producer with its ledger-held quantity. Masks is
// ledger.AmountUnknown when the ledger could not answer.
type ProducerStock struct {
	Producer *directory.Organization `json:"producer"`
	Masks    int64                   `json:"masks"`
}

type Service struct {
	ledger    LedgerAPI
	directory Directory
	logger    *slog.Logger
}

func NewService(ledgerAPI LedgerAPI, dir Directory, logger *slog.Logger) *Service {
	return &Service{ledger: ledgerAPI, directory: dir, logger: logger}
}

// MinistryStock returns the regulator-held quantity.
func (s *Service) MinistryStock(ctx context.Context) (int64, error) {
	amount, err := s.ledger.GetMinistryInfo(ctx)
	if err != nil {
		return 0, ledger.Translate(err, "get ministry info")
	}
	return amount, nil
}

// ProducerStock returns one producer's quantity. The -1 sentinel passes
// through untouched so callers can distinguish "zero stock" from "unknown".
func (s *Service) ProducerStock(ctx context.Context, producerID int64) (*ProducerStock, error) {
	producer, err := s.directory.RequireRole(ctx, producerID, directory.RoleSupply)
	if err != nil {
		return nil, err
	}
	return &ProducerStock{
		Producer: producer,
		Masks:    s.ledger.GetProducerInfo(ctx, producer.LedgerKey),
	}, nil
}

// AllProducerStock returns quantities for every supply-side organization.
func (s *Service) AllProducerStock(ctx context.Context) ([]*ProducerStock, error) {
	producers, err := s.directory.ListOrganizations(ctx, directory.RoleSupply.String())
	if err != nil {
		return nil, err
	}
	result := make([]*ProducerStock, 0, len(producers))
	for _, producer := range producers {
		result = append(result, &ProducerStock{
			Producer: producer,
			Masks:    s.ledger.GetProducerInfo(ctx, producer.LedgerKey),
		})
	}
	return result, nil
}

// UpdateProducerStock adds stock to a producer's ledger balance.
func (s *Service) UpdateProducerStock(ctx context.Context, producerID, amount int64) (*ProducerStock, error) {
	if amount <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "masks must be positive")
	}
	producer, err := s.directory.RequireRole(ctx, producerID, directory.RoleSupply)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.UpdateMask(ctx, producer.LedgerKey, amount); err != nil {
		return nil, ledger.Translate(err, "update mask stock")
	}
	s.logger.InfoContext(ctx, "producer stock updated", "producer", producerID, "amount", amount)
	return &ProducerStock{Producer: producer, Masks: amount}, nil
}
