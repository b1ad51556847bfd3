package cron

import (
	"context"
	"log/slog"

	portssvc "github.com/SscSPs/host_ledger/internal/core/ports/services"
	"github.com/SscSPs/host_ledger/internal/jobs"
)

// SettlementInvoiceJob bills every host for its OWED platform tip debts.
type SettlementInvoiceJob struct {
	Settlements portssvc.SettlementWriterSvc
}

var _ jobs.Job = (*SettlementInvoiceJob)(nil)

func (j *SettlementInvoiceJob) Name() string { return "settlement_invoice" }

func (j *SettlementInvoiceJob) Process(ctx context.Context) error {
	created, err := j.Settlements.InvoiceOwedSettlements(ctx)
	// Expenses created before a failure are committed, so report them either way.
	if created > 0 {
		slog.InfoContext(ctx, "Created settlement expenses", slog.Int("expenses", created))
	}
	return err
}
