package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"maskchain/internal/audit"
	"maskchain/internal/directory"
	"maskchain/internal/ledger"
	"maskchain/internal/platform/metrics"
	"maskchain/internal/settlement"
	dErrors "maskchain/pkg/domain-errors"
	"maskchain/pkg/platform/sentinel"
)

// initialDeliveryStatus is the ledger status a fresh delivery starts in.
const initialDeliveryStatus = "1"

// lockKeyPrefix namespaces per-order lock keys in a shared Redis.
const lockKeyPrefix = "maskchain:chain:order:"

// LedgerAPI is the slice of the ledger gateway the orchestrator drives.
type LedgerAPI interface {
	CreatePaymentLetter(ctx context.Context, letterID, bankKey string, price int64) error
	GetMinistryOrderInfo(ctx context.Context, orderID string) (*ledger.OrderInfo, error)
	GetProducerOfferInfo(ctx context.Context, offerID string) (*ledger.OfferInfo, error)
	CreateDeal(ctx context.Context, dealID, producerKey string, dealPrice int64, letterID string, maskAmount int64) error
	CreateDelivery(ctx context.Context, deliveryID, producerKey, status string) error
}

// Directory is the slice of the organization directory the orchestrator uses.
type Directory interface {
	RequireRole(ctx context.Context, id int64, role directory.Role) (*directory.Organization, error)
	ResolveByLedgerKey(ctx context.Context, key string) (*directory.Organization, error)
}

// Result carries the ids of a fully committed chain.
type Result struct {
	LetterID   string `json:"letter"`
	DealID     string `json:"deal"`
	DeliveryID string `json:"delivery"`
}

// Orchestrator executes the letter, deal, delivery chain for a payment.
//
// Every ledger mutation id is minted and journaled before its call goes out,
// each committed milestone advances the journal, and a re-run with the same
// payment resumes after the last committed step with the journaled ids. Runs
// for the same order are serialized through the Locker, so the one letter
// per order check cannot race.
type Orchestrator struct {
	journal    ProgressStore
	payments   settlement.PaymentStore
	letters    settlement.LetterStore
	deals      settlement.DealStore
	deliveries settlement.DeliveryStore
	ledger     LedgerAPI
	directory  Directory
	locker     Locker
	metrics    *metrics.Metrics
	audit      *audit.Publisher
	logger     *slog.Logger
}

func NewOrchestrator(
	journal ProgressStore,
	payments settlement.PaymentStore,
	letters settlement.LetterStore,
	deals settlement.DealStore,
	deliveries settlement.DeliveryStore,
	ledgerAPI LedgerAPI,
	dir Directory,
	locker Locker,
	m *metrics.Metrics,
	auditPub *audit.Publisher,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		journal:    journal,
		payments:   payments,
		letters:    letters,
		deals:      deals,
		deliveries: deliveries,
		ledger:     ledgerAPI,
		directory:  dir,
		locker:     locker,
		metrics:    m,
		audit:      auditPub,
		logger:     logger,
	}
}

// Run executes or resumes the chain for one payment, issued by the given
// finance organization. A busy per-order lock fails fast with a conflict;
// the caller retries instead of queueing.
func (o *Orchestrator) Run(ctx context.Context, paymentID, bankID int64) (*Result, error) {
	bank, err := o.directory.RequireRole(ctx, bankID, directory.RoleFinance)
	if err != nil {
		return nil, err
	}
	payment, err := o.payments.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "payment %d not found", paymentID)
		}
		return nil, err
	}

	release, err := o.locker.Acquire(ctx, lockKeyPrefix+payment.Order)
	if err != nil {
		if errors.Is(err, ErrLockBusy) {
			return nil, dErrors.Newf(dErrors.CodeConflict,
				"a settlement chain for order %s is already running", payment.Order)
		}
		return nil, fmt.Errorf("acquire order lock: %w", err)
	}
	defer release()

	progress, err := o.journal.Find(ctx, paymentID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, fmt.Errorf("load chain journal: %w", err)
		}
		progress = &Progress{PaymentID: paymentID, OrderID: payment.Order, BankID: bankID, Step: StepPending}
	}
	if progress.Resolved() {
		return &Result{LetterID: progress.LetterID, DealID: progress.DealID, DeliveryID: progress.DeliveryID}, nil
	}

	if progress.Step == StepPending {
		if err := o.letterStep(ctx, progress, bank.LedgerKey, payment.Price); err != nil {
			return nil, err
		}
	}

	orderInfo, producer, err := o.resolveWinner(ctx, progress)
	if err != nil {
		return nil, err
	}

	if progress.Step == StepLetter {
		if err := o.dealStep(ctx, progress, producer, payment.Price, orderInfo.Amount); err != nil {
			return nil, err
		}
	}

	if progress.Step == StepDeal {
		if err := o.deliveryStep(ctx, progress, producer); err != nil {
			return nil, err
		}
	}

	o.metrics.ObserveChainOutcome("completed")
	o.audit.Emit(audit.Event{
		Action:  audit.ActionChainRun,
		Subject: progress.OrderID,
		Outcome: "completed",
		Detail: map[string]string{
			"letter":   progress.LetterID,
			"deal":     progress.DealID,
			"delivery": progress.DeliveryID,
		},
	})
	o.refreshUnresolvedGauge(ctx)
	o.logger.InfoContext(ctx, "settlement chain completed",
		"payment", paymentID, "order", progress.OrderID,
		"letter", progress.LetterID, "deal", progress.DealID, "delivery", progress.DeliveryID)
	return &Result{LetterID: progress.LetterID, DealID: progress.DealID, DeliveryID: progress.DeliveryID}, nil
}

// letterStep issues the payment letter. A failure here leaves nothing
// committed, so it surfaces as a plain ledger failure, not an incomplete
// chain.
func (o *Orchestrator) letterStep(ctx context.Context, progress *Progress, bankKey string, price int64) error {
	existing, err := o.letters.FindByOrder(ctx, progress.OrderID)
	switch {
	case err == nil && existing.ID != progress.LetterID:
		return dErrors.Newf(dErrors.CodeConflict,
			"order %s already has payment letter %s", progress.OrderID, existing.ID)
	case err == nil:
		// Our letter row exists but the step was never journaled: the
		// ledger call committed on an earlier run. Advance and move on.
		progress.Step = StepLetter
		if err := o.journal.Save(ctx, progress); err != nil {
			return fmt.Errorf("save chain journal: %w", err)
		}
		return nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return fmt.Errorf("check order letter: %w", err)
	}

	if progress.LetterID == "" {
		progress.LetterID = uuid.NewString()
		if err := o.journal.Save(ctx, progress); err != nil {
			return fmt.Errorf("save chain journal: %w", err)
		}
	}

	if err := o.ledger.CreatePaymentLetter(ctx, progress.LetterID, bankKey, price); err != nil {
		o.metrics.ObserveChainStep("letter", "fail")
		o.metrics.ObserveChainOutcome("failed")
		return ledger.Translate(err, "create payment letter")
	}

	err = o.letters.Create(ctx, &settlement.PaymentLetter{
		ID:     progress.LetterID,
		BankID: progress.BankID,
		Order:  progress.OrderID,
	})
	if err != nil && !errors.Is(err, sentinel.ErrConflict) {
		return o.halt(ctx, progress, fmt.Errorf("persist payment letter: %w", err))
	}

	progress.Step = StepLetter
	if err := o.journal.Save(ctx, progress); err != nil {
		return o.halt(ctx, progress, fmt.Errorf("save chain journal: %w", err))
	}
	o.metrics.ObserveChainStep("letter", "ok")
	return nil
}

// resolveWinner reads the order's winning offer and maps its producer key to
// a local organization. The letter is committed by now, so every failure
// here is an incomplete chain.
func (o *Orchestrator) resolveWinner(ctx context.Context, progress *Progress) (*ledger.OrderInfo, *directory.Organization, error) {
	orderInfo, err := o.ledger.GetMinistryOrderInfo(ctx, progress.OrderID)
	if err != nil {
		return nil, nil, o.halt(ctx, progress, ledger.Translate(err, "get ministry order info"))
	}
	if orderInfo.Winner == nil {
		return nil, nil, o.halt(ctx, progress, ErrNoWinner)
	}

	offer, err := o.ledger.GetProducerOfferInfo(ctx, *orderInfo.Winner)
	if err != nil {
		return nil, nil, o.halt(ctx, progress, ledger.Translate(err, "get producer offer info"))
	}

	producer, err := o.directory.ResolveByLedgerKey(ctx, offer.Producer)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) {
			return nil, nil, o.halt(ctx, progress, fmt.Errorf("%w: %s", ErrUnknownProducer, offer.Producer))
		}
		return nil, nil, o.halt(ctx, progress, err)
	}
	return orderInfo, producer, nil
}

func (o *Orchestrator) dealStep(ctx context.Context, progress *Progress, producer *directory.Organization, price, orderAmount int64) error {
	if progress.DealID == "" {
		progress.DealID = uuid.NewString()
		if err := o.journal.Save(ctx, progress); err != nil {
			return o.halt(ctx, progress, fmt.Errorf("save chain journal: %w", err))
		}
	}

	if err := o.ledger.CreateDeal(ctx, progress.DealID, producer.LedgerKey, price, progress.LetterID, orderAmount); err != nil {
		o.metrics.ObserveChainStep("deal", "fail")
		return o.halt(ctx, progress, ledger.Translate(err, "create deal"))
	}

	err := o.deals.Create(ctx, &settlement.Deal{
		ID:         progress.DealID,
		ProducerID: producer.ID,
		Letter:     progress.LetterID,
	})
	if err != nil && !errors.Is(err, sentinel.ErrConflict) {
		return o.halt(ctx, progress, fmt.Errorf("persist deal: %w", err))
	}

	progress.Step = StepDeal
	if err := o.journal.Save(ctx, progress); err != nil {
		return o.halt(ctx, progress, fmt.Errorf("save chain journal: %w", err))
	}
	o.metrics.ObserveChainStep("deal", "ok")
	return nil
}

func (o *Orchestrator) deliveryStep(ctx context.Context, progress *Progress, producer *directory.Organization) error {
	if progress.DeliveryID == "" {
		progress.DeliveryID = uuid.NewString()
		if err := o.journal.Save(ctx, progress); err != nil {
			return o.halt(ctx, progress, fmt.Errorf("save chain journal: %w", err))
		}
	}

	if err := o.ledger.CreateDelivery(ctx, progress.DeliveryID, producer.LedgerKey, initialDeliveryStatus); err != nil {
		o.metrics.ObserveChainStep("delivery", "fail")
		return o.halt(ctx, progress, ledger.Translate(err, "create delivery"))
	}

	err := o.deliveries.Create(ctx, &settlement.Delivery{
		ID:         progress.DeliveryID,
		ProducerID: producer.ID,
		Deal:       progress.DealID,
	})
	if err != nil && !errors.Is(err, sentinel.ErrConflict) {
		return o.halt(ctx, progress, fmt.Errorf("persist delivery: %w", err))
	}

	progress.Step = StepDone
	if err := o.journal.Save(ctx, progress); err != nil {
		return o.halt(ctx, progress, fmt.Errorf("save chain journal: %w", err))
	}
	o.metrics.ObserveChainStep("delivery", "ok")
	return nil
}

// halt records an incomplete chain and wraps the cause with the committed
// prefix so the caller sees exactly which entities exist. The journal row
// keeps the same ids for a later resume.
func (o *Orchestrator) halt(ctx context.Context, progress *Progress, cause error) error {
	inc := &IncompleteError{
		PaymentID:  progress.PaymentID,
		OrderID:    progress.OrderID,
		LetterID:   progress.LetterID,
		DealID:     progress.DealID,
		DeliveryID: progress.DeliveryID,
		Step:       progress.Step,
		Err:        cause,
	}
	o.metrics.ObserveChainOutcome("incomplete")
	o.audit.Emit(audit.Event{
		Action:  audit.ActionChainRun,
		Subject: progress.OrderID,
		Outcome: "incomplete",
		Detail: map[string]string{
			"payment": fmt.Sprintf("%d", progress.PaymentID),
			"step":    string(progress.Step),
			"letter":  progress.LetterID,
			"cause":   cause.Error(),
		},
	})
	o.refreshUnresolvedGauge(ctx)
	o.logger.ErrorContext(ctx, "settlement chain halted",
		"payment", progress.PaymentID, "order", progress.OrderID,
		"step", progress.Step, "error", cause)
	return dErrors.Wrap(dErrors.CodeIncompleteChain, "settlement chain halted", inc)
}

func (o *Orchestrator) refreshUnresolvedGauge(ctx context.Context) {
	if o.metrics == nil {
		return
	}
	unresolved, err := o.journal.ListUnresolved(ctx)
	if err != nil {
		return
	}
	o.metrics.UnresolvedChain.Set(float64(len(unresolved)))
}

// Status returns the journal row for one payment's chain.
func (o *Orchestrator) Status(ctx context.Context, paymentID int64) (*Progress, error) {
	progress, err := o.journal.Find(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "no chain recorded for payment %d", paymentID)
		}
		return nil, err
	}
	return progress, nil
}

// Unresolved lists chains that halted after a partial commit and await a
// resume.
func (o *Orchestrator) Unresolved(ctx context.Context) ([]*Progress, error) {
	return o.journal.ListUnresolved(ctx)
}
