package jobs

import (
	"context"
	"fmt"
	"time"

	"librental-backend/internal/domain"
	"librental-backend/internal/logger"
	"librental-backend/internal/repository"
	"librental-backend/internal/utils"
)

const overdueScanPageSize = 100

// SendDueSoonReminders emails clients whose active loans come due within the
// configured warning window.
func (jr *JobRunner) SendDueSoonReminders() {
	jr.runWithRecovery("SendDueSoonReminders", func() {
		ctx := context.Background()

		cfg, err := jr.services.Configuration.GetCurrent(ctx)
		if err != nil {
			logger.Error("Failed to load configuration", "error", err)
			return
		}

		now := time.Now().UTC()
		until := now.AddDate(0, 0, int(cfg.DueWarningDays))
		loans, err := jr.store.LoanRepository.ListActiveDueBetween(ctx, now, until)
		if err != nil {
			logger.Error("Failed to list loans due soon", "error", err)
			return
		}

		sent := 0
		for i := range loans {
			loan := &loans[i]
			if loan.Client == nil || loan.Client.Email == "" {
				continue
			}
			if err := jr.services.Email.SendDueSoonReminder(ctx, loan.Client.Email, loan.Client.Name, loan.ID, loan.DueDate); err != nil {
				logger.Error("Failed to send due-soon reminder",
					"loan_id", loan.ID, "client_id", loan.ClientID, "error", err)
				continue
			}
			sent++
		}

		logger.Info("Due-soon reminders sent", "count", sent, "window_days", cfg.DueWarningDays)
	})
}

// SendOverdueReminders emails clients with overdue active loans, including
// the outstanding balance.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()
		now := time.Now().UTC()

		sent := 0
		jr.forEachOverdueLoan(ctx, func(loan *domain.Loan) {
			if loan.Client == nil || loan.Client.Email == "" {
				return
			}

			outstanding, err := jr.services.Loan.OutstandingAmount(ctx, loan.ID)
			if err != nil {
				logger.Error("Failed to compute outstanding amount",
					"loan_id", loan.ID, "error", err)
				return
			}

			daysOverdue := utils.DaysLate(loan.DueDate, now)
			if err := jr.services.Email.SendOverdueNotice(ctx, loan.Client.Email, loan.Client.Name, loan.ID, daysOverdue, outstanding); err != nil {
				logger.Error("Failed to send overdue notice",
					"loan_id", loan.ID, "client_id", loan.ClientID, "error", err)
				return
			}
			sent++
		})

		logger.Info("Overdue notices sent", "count", sent)
	})
}

// BlockDelinquentClients deactivates clients who are too far past due or
// carry too much debt, per the configured thresholds, and notifies them.
func (jr *JobRunner) BlockDelinquentClients() {
	jr.runWithRecovery("BlockDelinquentClients", func() {
		ctx := context.Background()

		cfg, err := jr.services.Configuration.GetCurrent(ctx)
		if err != nil {
			logger.Error("Failed to load configuration", "error", err)
			return
		}

		now := time.Now().UTC()
		type delinquency struct {
			client      *domain.Client
			daysOverdue int32
			debtCents   int32
		}
		byClient := make(map[int32]*delinquency)

		jr.forEachOverdueLoan(ctx, func(loan *domain.Loan) {
			if loan.Client == nil || !loan.Client.Active {
				return
			}

			outstanding, err := jr.services.Loan.OutstandingAmount(ctx, loan.ID)
			if err != nil {
				logger.Error("Failed to compute outstanding amount",
					"loan_id", loan.ID, "error", err)
				return
			}

			d := byClient[loan.ClientID]
			if d == nil {
				d = &delinquency{client: loan.Client}
				byClient[loan.ClientID] = d
			}
			if days := utils.DaysLate(loan.DueDate, now); days > d.daysOverdue {
				d.daysOverdue = days
			}
			d.debtCents += outstanding
		})

		blocked := 0
		for clientID, d := range byClient {
			tooLate := d.daysOverdue >= cfg.BlockAfterOverdueDays
			tooDeep := d.debtCents >= cfg.BlockDebtCents
			if !tooLate && !tooDeep {
				continue
			}

			if err := jr.store.ClientRepository.SetActive(ctx, clientID, false); err != nil {
				logger.Error("Failed to block client", "client_id", clientID, "error", err)
				continue
			}
			blocked++

			var reason string
			if tooLate {
				reason = fmt.Sprintf("a loan is %d days overdue", d.daysOverdue)
			} else {
				reason = "your outstanding balance exceeds the allowed limit"
			}
			logger.Info("Client blocked for delinquency",
				"client_id", clientID,
				"days_overdue", d.daysOverdue,
				"debt_cents", d.debtCents)

			if d.client.Email == "" {
				continue
			}
			if err := jr.services.Email.SendAccountBlockedNotice(ctx, d.client.Email, d.client.Name, reason); err != nil {
				logger.Error("Failed to send account-blocked notice",
					"client_id", clientID, "error", err)
			}
		}

		logger.Info("Delinquent client scan completed",
			"clients_considered", len(byClient), "blocked", blocked)
	})
}

// forEachOverdueLoan pages through every overdue active loan.
func (jr *JobRunner) forEachOverdueLoan(ctx context.Context, fn func(loan *domain.Loan)) {
	for page := int32(1); ; page++ {
		loans, _, err := jr.store.LoanRepository.List(ctx, repository.LoanFilter{
			OverdueOnly: true,
			SortBy:      "date",
			Page:        page,
			PageSize:    overdueScanPageSize,
		})
		if err != nil {
			logger.Error("Failed to list overdue loans", "page", page, "error", err)
			return
		}
		for i := range loans {
			fn(&loans[i])
		}
		if int32(len(loans)) < overdueScanPageSize {
			return
		}
	}
}
