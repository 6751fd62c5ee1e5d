package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"librental-backend/internal/domain"
	"librental-backend/internal/logger"
	"librental-backend/internal/repository"
)

type loanService struct {
	tx         TxRunner
	loans      repository.LoanRepository
	books      repository.BookRepository
	clients    repository.ClientRepository
	configSvc  ConfigurationService
	validation LoanValidationService
	pricing    LoanPricingService
}

func NewLoanService(
	tx TxRunner,
	loans repository.LoanRepository,
	books repository.BookRepository,
	clients repository.ClientRepository,
	configSvc ConfigurationService,
	validation LoanValidationService,
	pricing LoanPricingService,
) LoanService {
	return &loanService{
		tx:         tx,
		loans:      loans,
		books:      books,
		clients:    clients,
		configSvc:  configSvc,
		validation: validation,
		pricing:    pricing,
	}
}

// Create validates, prices and persists a new loan. Everything after the
// configuration snapshot runs in one transaction: validation reads, the
// loan and item inserts, and each book's stock decrement. Any failure rolls
// the entire unit back.
func (s *loanService) Create(ctx context.Context, clientID int32, items []LoanItemRequest, notes string) (*domain.Loan, error) {
	cfg, err := s.configSvc.GetCurrent(ctx)
	if err != nil {
		logger.Error("failed to load configuration for loan creation", "error", err)
		return nil, ErrTryAgain
	}

	var loan *domain.Loan
	err = s.tx.ExecTx(ctx, func(ctx context.Context) error {
		if len(items) == 0 {
			return businessRule("a loan requires at least one item")
		}
		if int32(len(items)) > cfg.MaxItemsPerLoan {
			return businessRule("maximum of %d books per loan", cfg.MaxItemsPerLoan)
		}

		seen := make(map[int32]bool, len(items))
		ids := make([]int32, 0, len(items))
		for _, item := range items {
			if seen[item.BookID] {
				return businessRule("book %d is requested more than once", item.BookID)
			}
			seen[item.BookID] = true
			ids = append(ids, item.BookID)
		}

		// Lock the book rows before any availability check, so the
		// check-then-decrement below cannot race a concurrent loan.
		books, err := s.books.GetByIDsForUpdate(ctx, ids)
		if err != nil {
			return err
		}

		if ok, reason, err := s.validation.ValidateClient(ctx, clientID, cfg); err != nil {
			return err
		} else if !ok {
			return businessRule("%s", reason)
		}
		if ok, reason := s.validation.ValidateTerms(items, cfg); !ok {
			return businessRule("%s", reason)
		}
		if ok, reason, err := s.validation.ValidateBooks(ctx, items); err != nil {
			return err
		} else if !ok {
			return businessRule("%s", reason)
		}

		client, err := s.clients.GetByID(ctx, clientID)
		if err != nil {
			return err
		}

		byID := make(map[int32]*domain.Book, len(books))
		for i := range books {
			byID[books[i].ID] = &books[i]
		}

		now := time.Now().UTC()
		loan = &domain.Loan{
			ClientID: clientID,
			LoanDate: now,
			Status:   domain.LoanStatusActive,
			Notes:    notes,
		}

		var maxDays int32
		for _, req := range items {
			book := byID[req.BookID]
			item := domain.LoanItem{
				BookID:         book.ID,
				DaysRented:     req.Days,
				DailyRateCents: book.DailyRateCents,
				SubtotalCents:  book.DailyRateCents * req.Days,
			}
			loan.Items = append(loan.Items, item)
			loan.TotalAmountCents += item.SubtotalCents
			if req.Days > maxDays {
				maxDays = req.Days
			}

			if err := s.books.AdjustAvailable(ctx, book.ID, -1); err != nil {
				return err
			}
		}

		if client.IsVIP() && cfg.VIPDiscountRate > 0 {
			discount := s.pricing.VIPDiscount(loan.TotalAmountCents, cfg)
			loan.TotalAmountCents -= discount
			loan.Notes += fmt.Sprintf(" [VIP discount %.0f%%: %s]", cfg.VIPDiscountRate*100, formatCents(discount))

			logger.Info("VIP discount applied",
				"client_id", client.ID, "discount_cents", discount)
		}

		termDays := s.pricing.TermWithBonus(maxDays, client, cfg)
		if termDays > maxDays {
			loan.Notes += fmt.Sprintf(" [+%d extra VIP days]", termDays-maxDays)

			logger.Info("VIP bonus days applied",
				"client_id", client.ID, "bonus_days", termDays-maxDays)
		}
		loan.DueDate = now.AddDate(0, 0, int(termDays))

		return s.loans.Create(ctx, loan)
	})
	if err != nil {
		return nil, s.translate(err, "failed to create loan", "client_id", clientID)
	}

	full, err := s.loans.GetByIDWithDetails(ctx, loan.ID)
	if err != nil {
		// The loan is committed; fall back to what we built.
		logger.Error("failed to reload created loan", "loan_id", loan.ID, "error", err)
		return loan, nil
	}

	logger.Info("loan created",
		"loan_id", full.ID,
		"client_id", clientID,
		"total_cents", full.TotalAmountCents,
		"due_date", full.DueDate)
	return full, nil
}

// Return resolves the whole loan: stamps the return, computes the capped
// fine, closes every open item and restores each book's stock, atomically.
func (s *loanService) Return(ctx context.Context, loanID int32) error {
	cfg, err := s.configSvc.GetCurrent(ctx)
	if err != nil {
		logger.Error("failed to load configuration for loan return", "error", err)
		return ErrTryAgain
	}

	err = s.tx.ExecTx(ctx, func(ctx context.Context) error {
		loan, err := s.loans.GetByIDWithDetails(ctx, loanID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("loan", loanID)
		}
		if err != nil {
			return err
		}

		if loan.Status == domain.LoanStatusReturned {
			return businessRule("loan has already been returned")
		}

		now := time.Now().UTC()
		loan.ReturnedDate = &now
		fine := s.pricing.Fine(loan, cfg, now)
		loan.FineAmountCents = &fine

		for i := range loan.Items {
			item := &loan.Items[i]
			if item.ReturnedDate != nil {
				continue
			}
			item.ReturnedDate = &now
			if err := s.loans.UpdateItem(ctx, item); err != nil {
				return err
			}
			if err := s.books.AdjustAvailable(ctx, item.BookID, 1); err != nil {
				return err
			}
		}

		loan.Status = domain.LoanStatusReturned
		return s.loans.Update(ctx, loan)
	})
	if err != nil {
		return s.translate(err, "failed to return loan", "loan_id", loanID)
	}

	logger.Info("loan returned", "loan_id", loanID)
	return nil
}

// ReturnItem resolves a single item. When it is the last open item the loan
// itself transitions to RETURNED with the sum of all item fines.
func (s *loanService) ReturnItem(ctx context.Context, itemID int32) error {
	err := s.tx.ExecTx(ctx, func(ctx context.Context) error {
		item, err := s.loans.GetItem(ctx, itemID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("loan item", itemID)
		}
		if err != nil {
			return err
		}

		if item.ReturnedDate != nil {
			return businessRule("item has already been returned")
		}

		loan, err := s.loans.GetByID(ctx, item.LoanID)
		if err != nil {
			return err
		}
		if loan.Status == domain.LoanStatusReturned {
			return businessRule("loan has already been fully returned")
		}

		now := time.Now().UTC()
		item.ReturnedDate = &now

		if now.After(loan.DueDate) {
			cfg, err := s.configSvc.GetCurrent(ctx)
			if err != nil {
				return err
			}
			fine := s.pricing.ItemFine(item, loan, cfg, now)
			item.FineAmountCents = &fine
		}

		if err := s.loans.UpdateItem(ctx, item); err != nil {
			return err
		}
		if err := s.books.AdjustAvailable(ctx, item.BookID, 1); err != nil {
			return err
		}

		allReturned, err := s.loans.AllItemsReturned(ctx, loan.ID)
		if err != nil {
			return err
		}
		if allReturned {
			totalFines, err := s.loans.SumItemFines(ctx, loan.ID)
			if err != nil {
				return err
			}
			loan.Status = domain.LoanStatusReturned
			loan.ReturnedDate = &now
			loan.FineAmountCents = &totalFines
			if err := s.loans.Update(ctx, loan); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return s.translate(err, "failed to return loan item", "item_id", itemID)
	}

	logger.Info("loan item returned", "item_id", itemID)
	return nil
}

// OutstandingAmount returns total plus fine for a finalized loan, or total
// plus the hypothetical fine for an overdue active loan. Purely
// informational; nothing is persisted.
func (s *loanService) OutstandingAmount(ctx context.Context, loanID int32) (int32, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, notFound("loan", loanID)
	}
	if err != nil {
		logger.Error("failed to load loan for outstanding amount", "loan_id", loanID, "error", err)
		return 0, ErrTryAgain
	}

	total := loan.TotalAmountCents
	if loan.FineAmountCents != nil {
		return total + *loan.FineAmountCents, nil
	}

	now := time.Now().UTC()
	if loan.Status == domain.LoanStatusActive && now.After(loan.DueDate) {
		cfg, err := s.configSvc.GetCurrent(ctx)
		if err != nil {
			logger.Error("failed to load configuration for outstanding amount", "error", err)
			return 0, ErrTryAgain
		}
		total += s.pricing.Fine(loan, cfg, now)
	}
	return total, nil
}

// translate maps transaction errors per the propagation policy: business
// rejections and not-found pass through untouched, anything else is logged
// with full context and replaced with the generic retry message.
func (s *loanService) translate(err error, msg string, args ...any) error {
	if IsBusinessRule(err) || IsNotFound(err) {
		return err
	}
	logger.Error(msg, append(args, "error", err)...)
	return ErrTryAgain
}

func formatCents(cents int32) string {
	return fmt.Sprintf("R$ %d.%02d", cents/100, cents%100)
}
