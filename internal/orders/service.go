package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"maskchain/internal/audit"
	"maskchain/internal/directory"
	"maskchain/internal/ledger"
	dErrors "maskchain/pkg/domain-errors"
	"maskchain/pkg/platform/sentinel"
)

// hospitalFanout bounds concurrent ledger lookups in the aggregate listing.
const hospitalFanout = 4

// LedgerAPI is the slice of the ledger gateway the order managers use.
type LedgerAPI interface {
	MakeMinistryOrder(ctx context.Context, orderID string, maskAmount int64, endDate string) error
	GetMinistryOrderInfo(ctx context.Context, orderID string) (*ledger.OrderInfo, error)
	MakeHospitalOrder(ctx context.Context, orderID string, maskAmount int64, hospitalKey string, urgency int64) error
	GetHospitalOrderInfo(ctx context.Context, orderID string) (*ledger.HospitalOrderInfo, error)
	UpdateHospitalDelivery(ctx context.Context, orderID, status string) error
}

// Directory is the slice of the organization directory the managers use.
type Directory interface {
	RequireRole(ctx context.Context, id int64, role directory.Role) (*directory.Organization, error)
	ListOrganizations(ctx context.Context, role string) ([]*directory.Organization, error)
}

// Service sequences order creation and read reconciliation for regulator and
// demand-side orders. Local rows are written only after the corresponding
// ledger call reports success, and order ids are generated before the call so
// a retry reuses the same id.
type Service struct {
	ministry  MinistryOrderStore
	hospital  HospitalOrderStore
	payments  PaymentLookup
	ledger    LedgerAPI
	directory Directory
	audit     *audit.Publisher
	logger    *slog.Logger
}

// NewService wires the order managers. auditPub may be nil; emission is a
// no-op then.
func NewService(
	ministry MinistryOrderStore,
	hospital HospitalOrderStore,
	payments PaymentLookup,
	ledgerAPI LedgerAPI,
	dir Directory,
	auditPub *audit.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		ministry:  ministry,
		hospital:  hospital,
		payments:  payments,
		ledger:    ledgerAPI,
		directory: dir,
		audit:     auditPub,
		logger:    logger,
	}
}

// CreateMinistryOrder records a new regulator order on the ledger and mirrors
// it into the local index.
func (s *Service) CreateMinistryOrder(ctx context.Context, maskAmount int64, endDate string) (string, error) {
	if maskAmount <= 0 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "maskAmount must be positive")
	}
	if strings.TrimSpace(endDate) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "endDate is required")
	}

	regulators, err := s.directory.ListOrganizations(ctx, directory.RoleRegulator.String())
	if err != nil {
		return "", err
	}
	if len(regulators) == 0 {
		return "", dErrors.New(dErrors.CodeNotFound, "no regulator organization registered")
	}

	orderID := uuid.NewString()
	if err := s.ledger.MakeMinistryOrder(ctx, orderID, maskAmount, endDate); err != nil {
		return "", ledger.Translate(err, "make ministry order")
	}

	if err := s.ministry.Create(ctx, &MinistryOrder{ID: orderID, MinistryID: regulators[0].ID}); err != nil {
		return "", fmt.Errorf("persist ministry order %s: %w", orderID, err)
	}
	s.audit.Emit(audit.Event{
		Action:  audit.ActionOrderCreated,
		Subject: orderID,
		Outcome: "created",
		Detail:  map[string]string{"kind": "ministry"},
	})
	s.logger.InfoContext(ctx, "ministry order created", "order", orderID, "amount", maskAmount)
	return orderID, nil
}

// ListMinistryOrders returns ledger truth for every locally known regulator
// order. With unpaidOnly set, orders already matched to a local payment are
// filtered out first; the match is a linear scan over payment rows.
// Orders the ledger cannot answer for are skipped, not invented.
func (s *Service) ListMinistryOrders(ctx context.Context, unpaidOnly bool) ([]*ledger.OrderInfo, error) {
	rows, err := s.ministry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ministry orders: %w", err)
	}

	if unpaidOnly {
		paid, err := s.payments.PaymentOrderIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list payment order ids: %w", err)
		}
		rows = filterUnpaid(rows, paid)
	}

	result := make([]*ledger.OrderInfo, 0, len(rows))
	for _, row := range rows {
		info, err := s.ledger.GetMinistryOrderInfo(ctx, row.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping ministry order without ledger answer",
				"order", row.ID, "error", err)
			continue
		}
		result = append(result, info)
	}
	return result, nil
}

func filterUnpaid(rows []*MinistryOrder, paidOrderIDs []string) []*MinistryOrder {
	paid := make(map[string]bool, len(paidOrderIDs))
	for _, id := range paidOrderIDs {
		paid[id] = true
	}
	out := rows[:0]
	for _, row := range rows {
		if !paid[row.ID] {
			out = append(out, row)
		}
	}
	return out
}

// GetMinistryOrder returns ledger truth for one locally known order.
func (s *Service) GetMinistryOrder(ctx context.Context, orderID string) (*ledger.OrderInfo, error) {
	if _, err := s.ministry.FindByID(ctx, orderID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "ministry order %s not found", orderID)
		}
		return nil, err
	}
	info, err := s.ledger.GetMinistryOrderInfo(ctx, orderID)
	if err != nil {
		return nil, ledger.Translate(err, "get ministry order info")
	}
	return info, nil
}

// CreateHospitalOrder records a new demand-side order for the hospital.
func (s *Service) CreateHospitalOrder(ctx context.Context, hospitalID, maskAmount, urgency int64) (string, error) {
	if maskAmount <= 0 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "masks must be positive")
	}
	hospital, err := s.directory.RequireRole(ctx, hospitalID, directory.RoleDemand)
	if err != nil {
		return "", err
	}

	orderID := uuid.NewString()
	if err := s.ledger.MakeHospitalOrder(ctx, orderID, maskAmount, hospital.LedgerKey, urgency); err != nil {
		return "", ledger.Translate(err, "make hospital order")
	}

	if err := s.hospital.Create(ctx, &HospitalOrder{ID: orderID, HospitalID: hospitalID}); err != nil {
		return "", fmt.Errorf("persist hospital order %s: %w", orderID, err)
	}
	s.audit.Emit(audit.Event{
		Action:  audit.ActionOrderCreated,
		Subject: orderID,
		Outcome: "created",
		Detail:  map[string]string{"kind": "hospital", "hospital": strconv.FormatInt(hospitalID, 10)},
	})
	s.logger.InfoContext(ctx, "hospital order created",
		"order", orderID, "hospital", hospitalID, "amount", maskAmount)
	return orderID, nil
}

// ListHospitalOrders reconciles one hospital's orders against the ledger.
// Orders are sorted by ledger date, most recent first; that ordering is part
// of the API contract.
func (s *Service) ListHospitalOrders(ctx context.Context, hospitalID int64) (*HospitalOrders, error) {
	hospital, err := s.directory.RequireRole(ctx, hospitalID, directory.RoleDemand)
	if err != nil {
		return nil, err
	}
	return s.reconcileHospital(ctx, hospital)
}

// ListAllHospitalOrders reconciles every demand-side organization against the
// ledger. The per-hospital lookups fan out with bounded concurrency; each
// hospital entry is independent, so one slow ledger answer does not serialize
// the rest.
func (s *Service) ListAllHospitalOrders(ctx context.Context) ([]*HospitalOrders, error) {
	hospitals, err := s.directory.ListOrganizations(ctx, directory.RoleDemand.String())
	if err != nil {
		return nil, err
	}

	result := make([]*HospitalOrders, len(hospitals))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hospitalFanout)
	for i, hospital := range hospitals {
		g.Go(func() error {
			view, err := s.reconcileHospital(gctx, hospital)
			if err != nil {
				return err
			}
			result[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// reconcileHospital merges local order rows with live ledger lookups. A
// lookup failure or the -1 quantity sentinel marks the hospital dirty and
// drops that order from the view.
func (s *Service) reconcileHospital(ctx context.Context, hospital *directory.Organization) (*HospitalOrders, error) {
	rows, err := s.hospital.ListByHospital(ctx, hospital.ID)
	if err != nil {
		return nil, fmt.Errorf("list hospital orders: %w", err)
	}

	view := &HospitalOrders{
		ID:     hospital.ID,
		Name:   hospital.Name,
		Orders: []*ledger.HospitalOrderInfo{},
	}
	for _, row := range rows {
		info, err := s.ledger.GetHospitalOrderInfo(ctx, row.ID)
		if err != nil || info.Amount == ledger.AmountUnknown {
			view.Dirty = true
			continue
		}
		view.Orders = append(view.Orders, info)
	}
	sort.Slice(view.Orders, func(i, j int) bool {
		return view.Orders[i].DateMillis > view.Orders[j].DateMillis
	})
	return view, nil
}

// UpdateHospitalDeliveryStatus sets the delivery status of a hospital order
// on the ledger. The order must exist locally first.
func (s *Service) UpdateHospitalDeliveryStatus(ctx context.Context, orderID, status string) error {
	if orderID == "" || status == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "order and status are required")
	}
	if _, err := s.hospital.FindByID(ctx, orderID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "hospital order %s not found", orderID)
		}
		return err
	}
	if err := s.ledger.UpdateHospitalDelivery(ctx, orderID, status); err != nil {
		return ledger.Translate(err, "update hospital delivery")
	}
	return nil
}
