package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/host_ledger/internal/apperrors"
	"github.com/SscSPs/host_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/host_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/host_ledger/internal/core/ports/services"
	"github.com/SscSPs/host_ledger/internal/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// settlementService tracks the platform tip debts hosts owe and drives their invoicing.
type settlementService struct {
	BaseService
	txManager      portsrepo.TransactionManager
	settlementRepo portsrepo.SettlementRepositoryFacade
	expenseRepo    portsrepo.ExpenseRepositoryFacade
	activityRepo   portsrepo.ActivityWriter

	platformCollectiveID string
	metrics              *metrics.Registry
	now                  func() time.Time
}

// SettlementOption is a functional option for configuring the settlement service
type SettlementOption func(*settlementService)

// WithSettlementPlatformAccount sets the account that submits settlement expenses.
func WithSettlementPlatformAccount(collectiveID string) SettlementOption {
	return func(s *settlementService) {
		s.platformCollectiveID = collectiveID
	}
}

// WithSettlementMetrics records status changes in reg.
func WithSettlementMetrics(reg *metrics.Registry) SettlementOption {
	return func(s *settlementService) {
		s.metrics = reg
	}
}

// WithSettlementClock overrides the time source.
func WithSettlementClock(now func() time.Time) SettlementOption {
	return func(s *settlementService) {
		s.now = now
	}
}

// NewSettlementService creates a new settlement service with the provided options
func NewSettlementService(
	txManager portsrepo.TransactionManager,
	settlementRepo portsrepo.SettlementRepositoryFacade,
	expenseRepo portsrepo.ExpenseRepositoryFacade,
	activityRepo portsrepo.ActivityWriter,
	options ...SettlementOption,
) portssvc.SettlementSvcFacade {
	svc := &settlementService{
		txManager:      txManager,
		settlementRepo: settlementRepo,
		expenseRepo:    expenseRepo,
		activityRepo:   activityRepo,
		now:            time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.SettlementSvcFacade = (*settlementService)(nil)

// GetHostDebts returns the debts of a host joined with their settlement state.
func (s *settlementService) GetHostDebts(ctx context.Context, hostID string, status *domain.SettlementStatus) ([]domain.HostDebt, error) {
	if hostID == "" {
		return nil, apperrors.NewValidationError("host id is required")
	}
	debts, err := s.settlementRepo.FindHostDebts(ctx, hostID, status)
	if err != nil {
		s.LogError(ctx, err, "Failed to find host debts", slog.String("host_id", hostID))
		return nil, err
	}
	if debts == nil {
		debts = []domain.HostDebt{}
	}
	return debts, nil
}

// GetAccountsWithOwedSettlements returns the hosts with at least one OWED debt.
func (s *settlementService) GetAccountsWithOwedSettlements(ctx context.Context) ([]string, error) {
	hostIDs, err := s.settlementRepo.FindHostIDsWithOwedSettlements(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to find hosts with owed settlements")
		return nil, err
	}
	if hostIDs == nil {
		hostIDs = []string{}
	}
	return hostIDs, nil
}

// UpdateTransactionsSettlementStatus transitions the settlements of the given debt rows.
// The whole batch is rejected when one transition is not allowed.
func (s *settlementService) UpdateTransactionsSettlementStatus(ctx context.Context, transactionIDs []string, status domain.SettlementStatus, settlementExpenseID *string, actorID string) (int, error) {
	ids := uniqueIDs(transactionIDs)
	if len(ids) == 0 {
		return 0, apperrors.NewValidationError("at least one transaction id is required")
	}
	if _, err := domain.ParseSettlementStatus(string(status)); err != nil {
		return 0, apperrors.NewValidationError(err.Error())
	}
	if status == domain.SettlementSettled && settlementExpenseID == nil {
		return 0, apperrors.NewDomainConstraintError("a settlement expense is required to mark debts as SETTLED")
	}
	if settlementExpenseID != nil {
		if _, err := s.expenseRepo.FindExpenseByID(ctx, *settlementExpenseID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return 0, apperrors.NewValidationError(fmt.Sprintf("settlement expense %s not found", *settlementExpenseID))
			}
			return 0, err
		}
	}

	var changed int
	err := s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		var err error
		changed, err = s.transitionInTx(ctx, tx, ids, status, settlementExpenseID, actorID)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrDomainConstraint) && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to update settlement status", slog.String("status", string(status)))
		}
		return 0, err
	}

	s.LogInfo(ctx, "Settlement status updated",
		slog.String("status", string(status)),
		slog.Int("requested", len(ids)),
		slog.Int("changed", changed))
	s.metrics.SettlementsUpdated(string(status), changed)
	return changed, nil
}

// transitionInTx locks the settlements, applies the transition and records one activity per change.
func (s *settlementService) transitionInTx(ctx context.Context, tx pgx.Tx, ids []string, status domain.SettlementStatus, expenseID *string, actorID string) (int, error) {
	settlements, err := s.settlementRepo.FindSettlementsForUpdateInTx(ctx, tx, ids)
	if err != nil {
		return 0, err
	}
	if missing := missingSettlements(ids, settlements); len(missing) > 0 {
		return 0, apperrors.NewNotFoundError(fmt.Sprintf("no debt settlement for transactions %v", missing))
	}
	return s.applyTransitionInTx(ctx, tx, settlements, status, expenseID, actorID)
}

// applyTransitionInTx transitions settlements already locked by tx.
func (s *settlementService) applyTransitionInTx(ctx context.Context, tx pgx.Tx, settlements []domain.TransactionSettlement, status domain.SettlementStatus, expenseID *string, actorID string) (int, error) {
	now := s.now().UTC()
	var updated []domain.TransactionSettlement
	var activities []domain.Activity
	for i := range settlements {
		settlement := &settlements[i]
		previous := settlement.Status
		changed, err := settlement.Transition(status, expenseID, now)
		if err != nil {
			return 0, apperrors.NewDomainConstraintError(err.Error())
		}
		if !changed {
			continue
		}
		updated = append(updated, *settlement)

		hostID := settlement.HostCollectiveID
		transactionID := settlement.TransactionID
		activities = append(activities, domain.Activity{
			ID:               uuid.NewString(),
			Type:             domain.ActivityTransactionSettlementStatusUpdate,
			CollectiveID:     hostID,
			HostCollectiveID: &hostID,
			TransactionID:    &transactionID,
			ExpenseID:        settlement.SettlementExpenseID,
			Data: map[string]any{
				"previousStatus": string(previous),
				"status":         string(settlement.Status),
			},
			CreatedBy: actorID,
			CreatedAt: now,
		})
	}

	if len(updated) == 0 {
		return 0, nil
	}
	if err := s.settlementRepo.UpdateSettlementsInTx(ctx, tx, updated); err != nil {
		return 0, err
	}
	if err := s.activityRepo.CreateActivitiesInTx(ctx, tx, activities); err != nil {
		return 0, err
	}
	return len(updated), nil
}

// InvoiceOwedSettlements submits one settlement expense per host and currency for the
// OWED debts and marks them INVOICED. Running it again finds nothing left to invoice.
func (s *settlementService) InvoiceOwedSettlements(ctx context.Context) (int, error) {
	if s.platformCollectiveID == "" {
		return 0, apperrors.NewValidationError("platform account is not configured, cannot invoice settlements")
	}

	hostIDs, err := s.GetAccountsWithOwedSettlements(ctx)
	if err != nil {
		return 0, err
	}

	owed := domain.SettlementOwed
	var created int
	var errs []error
	for _, hostID := range hostIDs {
		debts, err := s.settlementRepo.FindHostDebts(ctx, hostID, &owed)
		if err != nil {
			errs = append(errs, fmt.Errorf("host %s: %w", hostID, err))
			continue
		}
		for _, batch := range batchDebtsByCurrency(debts) {
			invoiced, err := s.invoiceBatch(ctx, hostID, batch)
			if err != nil {
				s.LogError(ctx, err, "Failed to invoice settlements", slog.String("host_id", hostID))
				errs = append(errs, fmt.Errorf("host %s: %w", hostID, err))
				continue
			}
			if invoiced {
				created++
			}
		}
	}

	if created > 0 {
		s.LogInfo(ctx, "Settlement expenses created", slog.Int("count", created), slog.Int("hosts", len(hostIDs)))
	}
	return created, errors.Join(errs...)
}

type debtBatch struct {
	currency string
	debts    []domain.HostDebt
}

func (b debtBatch) transactionIDs() []string {
	ids := make([]string, len(b.debts))
	for i, debt := range b.debts {
		ids[i] = debt.ID
	}
	return ids
}

var errNothingToInvoice = errors.New("no owed settlement left in batch")

// invoiceBatch locks the batch settlements and invoices the ones still OWED. It reports
// false when another run invoiced them first.
func (s *settlementService) invoiceBatch(ctx context.Context, hostID string, batch debtBatch) (bool, error) {
	now := s.now().UTC()
	var changed int
	err := s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		settlements, err := s.settlementRepo.FindSettlementsForUpdateInTx(ctx, tx, batch.transactionIDs())
		if err != nil {
			return err
		}
		owed := make(map[string]bool, len(settlements))
		var pending []domain.TransactionSettlement
		for _, settlement := range settlements {
			if settlement.Status == domain.SettlementOwed {
				owed[settlement.TransactionID] = true
				pending = append(pending, settlement)
			}
		}

		var amount int64
		var ids []string
		for _, debt := range batch.debts {
			if owed[debt.ID] {
				amount += debt.Amount
				ids = append(ids, debt.ID)
			}
		}
		if len(ids) == 0 {
			return errNothingToInvoice
		}

		expense := domain.Expense{
			ID:               uuid.NewString(),
			Type:             domain.ExpenseTypeSettlement,
			Status:           domain.ExpenseStatusPending,
			CollectiveID:     hostID,
			FromCollectiveID: s.platformCollectiveID,
			Amount:           amount,
			Currency:         batch.currency,
			Description:      fmt.Sprintf("Platform tips collected by the host (%d)", len(ids)),
			Data:             map[string]any{"transactionIds": ids},
			CreatedAt:        now,
		}
		if err := s.expenseRepo.CreateExpenseInTx(ctx, tx, expense); err != nil {
			return err
		}
		changed, err = s.applyTransitionInTx(ctx, tx, pending, domain.SettlementInvoiced, &expense.ID, domain.SystemActor)
		return err
	})
	if errors.Is(err, errNothingToInvoice) {
		s.LogDebug(ctx, "Settlements already invoiced", slog.String("host_id", hostID), slog.String("currency", batch.currency))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.metrics.SettlementsUpdated(string(domain.SettlementInvoiced), changed)
	return true, nil
}

// batchDebtsByCurrency groups debts by currency, in a stable order.
func batchDebtsByCurrency(debts []domain.HostDebt) []debtBatch {
	byCurrency := make(map[string]*debtBatch)
	for _, debt := range debts {
		b, ok := byCurrency[debt.Currency]
		if !ok {
			b = &debtBatch{currency: debt.Currency}
			byCurrency[debt.Currency] = b
		}
		b.debts = append(b.debts, debt)
	}

	batches := make([]debtBatch, 0, len(byCurrency))
	for _, b := range byCurrency {
		batches = append(batches, *b)
	}
	sort.Slice(batches, func(i, j int) bool { return batches[i].currency < batches[j].currency })
	return batches
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingSettlements(ids []string, settlements []domain.TransactionSettlement) []string {
	found := make(map[string]struct{}, len(settlements))
	for _, s := range settlements {
		found[s.TransactionID] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
