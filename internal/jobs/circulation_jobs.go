package jobs

import (
	"context"
	"time"

	"library-circulation-backend/internal/logger"
)

const jobTimeout = 10 * time.Minute

// MarkOverdueTransactions flags every open loan past its due date and lets
// the circulation service re-evaluate the affected members.
func (jr *JobRunner) MarkOverdueTransactions() {
	jr.runWithRecovery("MarkOverdueTransactions", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		count, err := jr.services.Circulation.UpdateOverdueStatuses(ctx)
		if err != nil {
			logger.Error("Failed to mark overdue transactions", "error", err)
			return
		}
		logger.Info("Marked transactions as overdue", "count", count)
	})
}

// EvaluateSuspensions re-checks every member against the suspension rules.
// Catches members whose fines were settled outside the pay endpoint.
func (jr *JobRunner) EvaluateSuspensions() {
	jr.runWithRecovery("EvaluateSuspensions", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		changed, err := jr.services.Member.EvaluateAllSuspensions(ctx)
		if err != nil {
			logger.Error("Failed to evaluate member suspensions", "error", err)
			return
		}
		logger.Info("Evaluated member suspensions", "changed", changed)
	})
}
