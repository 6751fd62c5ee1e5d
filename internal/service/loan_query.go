package service

import (
	"context"
	"errors"
	"time"

	"librental-backend/internal/domain"
	"librental-backend/internal/logger"
	"librental-backend/internal/repository"
	"librental-backend/internal/utils"
)

// LoanView is the read model served to clients: loan fields denormalized
// with client identity, book details per item and the derived overdue state.
type LoanView struct {
	ID               int32          `json:"id"`
	ClientID         int32          `json:"client_id"`
	ClientName       string         `json:"client_name"`
	ClientTaxID      string         `json:"client_tax_id"`
	ClientEmail      string         `json:"client_email"`
	LoanDate         time.Time      `json:"loan_date"`
	DueDate          time.Time      `json:"due_date"`
	ReturnedDate     *time.Time     `json:"returned_date,omitempty"`
	TotalAmountCents int32          `json:"total_amount_cents"`
	FineAmountCents  *int32         `json:"fine_amount_cents,omitempty"`
	Status           string         `json:"status"`
	Notes            string         `json:"notes,omitempty"`
	IsOverdue        bool           `json:"is_overdue"`
	DaysOverdue      *int32         `json:"days_overdue,omitempty"`
	Items            []LoanItemView `json:"items"`
}

type LoanItemView struct {
	ID              int32      `json:"id"`
	BookID          int32      `json:"book_id"`
	BookTitle       string     `json:"book_title"`
	BookISBN        string     `json:"book_isbn"`
	BookAuthor      string     `json:"book_author"`
	DaysRented      int32      `json:"days_rented"`
	DailyRateCents  int32      `json:"daily_rate_cents"`
	SubtotalCents   int32      `json:"subtotal_cents"`
	ReturnedDate    *time.Time `json:"returned_date,omitempty"`
	FineAmountCents *int32     `json:"fine_amount_cents,omitempty"`
}

type loanQueryService struct {
	loans repository.LoanRepository
}

func NewLoanQueryService(loans repository.LoanRepository) LoanQueryService {
	return &loanQueryService{loans: loans}
}

func (s *loanQueryService) Get(ctx context.Context, loanID int32) (*LoanView, error) {
	loan, err := s.loans.GetByIDWithDetails(ctx, loanID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("loan", loanID)
	}
	if err != nil {
		logger.Error("failed to load loan", "loan_id", loanID, "error", err)
		return nil, ErrTryAgain
	}
	view := toLoanView(loan, time.Now().UTC())
	return &view, nil
}

func (s *loanQueryService) List(ctx context.Context, q LoanListQuery) ([]LoanView, int32, error) {
	return s.list(ctx, repository.LoanFilter{
		Search:   q.Search,
		SortBy:   q.SortBy,
		SortDesc: q.SortDesc,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
}

func (s *loanQueryService) ListActive(ctx context.Context, q LoanListQuery) ([]LoanView, int32, error) {
	return s.list(ctx, repository.LoanFilter{
		Status:   domain.LoanStatusActive,
		Search:   q.Search,
		SortBy:   q.SortBy,
		SortDesc: q.SortDesc,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
}

func (s *loanQueryService) ListOverdue(ctx context.Context, q LoanListQuery) ([]LoanView, int32, error) {
	return s.list(ctx, repository.LoanFilter{
		OverdueOnly: true,
		Search:      q.Search,
		SortBy:      q.SortBy,
		SortDesc:    q.SortDesc,
		Page:        q.Page,
		PageSize:    q.PageSize,
	})
}

func (s *loanQueryService) ListByClient(ctx context.Context, clientID int32, q LoanListQuery) ([]LoanView, int32, error) {
	return s.list(ctx, repository.LoanFilter{
		ClientID: clientID,
		SortBy:   q.SortBy,
		SortDesc: q.SortDesc,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
}

func (s *loanQueryService) list(ctx context.Context, filter repository.LoanFilter) ([]LoanView, int32, error) {
	loans, total, err := s.loans.List(ctx, filter)
	if err != nil {
		logger.Error("failed to list loans", "error", err)
		return nil, 0, ErrTryAgain
	}

	now := time.Now().UTC()
	views := make([]LoanView, 0, len(loans))
	for i := range loans {
		views = append(views, toLoanView(&loans[i], now))
	}
	return views, total, nil
}

func toLoanView(loan *domain.Loan, now time.Time) LoanView {
	view := LoanView{
		ID:               loan.ID,
		ClientID:         loan.ClientID,
		LoanDate:         loan.LoanDate,
		DueDate:          loan.DueDate,
		ReturnedDate:     loan.ReturnedDate,
		TotalAmountCents: loan.TotalAmountCents,
		FineAmountCents:  loan.FineAmountCents,
		Status:           string(loan.Status),
		Notes:            loan.Notes,
	}
	if loan.Client != nil {
		view.ClientName = loan.Client.Name
		view.ClientTaxID = loan.Client.TaxID
		view.ClientEmail = loan.Client.Email
	}

	if loan.IsOverdue(now) {
		view.IsOverdue = true
		days := utils.DaysLate(loan.DueDate, now)
		view.DaysOverdue = &days
	}

	for _, item := range loan.Items {
		iv := LoanItemView{
			ID:              item.ID,
			BookID:          item.BookID,
			DaysRented:      item.DaysRented,
			DailyRateCents:  item.DailyRateCents,
			SubtotalCents:   item.SubtotalCents,
			ReturnedDate:    item.ReturnedDate,
			FineAmountCents: item.FineAmountCents,
		}
		if item.Book != nil {
			iv.BookTitle = item.Book.Title
			iv.BookISBN = item.Book.ISBN
			iv.BookAuthor = item.Book.Author
		}
		view.Items = append(view.Items, iv)
	}
	return view
}
