package service

import (
	"context"
	"io"
	"time"

	"librental-backend/internal/domain"
)

// TxRunner runs a function inside a single storage transaction. The
// transaction is carried by the context given to fn; repository calls made
// with that context join it, and any error rolls the whole unit back.
type TxRunner interface {
	ExecTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// LoanItemRequest is one requested book-with-term in a loan request.
type LoanItemRequest struct {
	BookID int32 `json:"book_id"`
	Days   int32 `json:"days"`
}

// LoanListQuery narrows and pages loan listings.
type LoanListQuery struct {
	Search   string
	SortBy   string // "date", "client", "total"
	SortDesc bool
	Page     int32
	PageSize int32
}

type ConfigurationService interface {
	// GetCurrent returns the most recent configuration, served from an
	// in-process cache valid for five minutes. Creates the default record
	// when none exists.
	GetCurrent(ctx context.Context) (*domain.Configuration, error)
	Update(ctx context.Context, cfg *domain.Configuration, actorID string) (*domain.Configuration, error)
	InvalidateCache()
}

// LoanValidationService checks a loan request against current storage state
// and a configuration snapshot. No method mutates anything. Business
// failures come back as (false, reason); the error return is only for
// storage trouble.
type LoanValidationService interface {
	ValidateClient(ctx context.Context, clientID int32, cfg *domain.Configuration) (bool, string, error)
	ValidateTerms(items []LoanItemRequest, cfg *domain.Configuration) (bool, string)
	ValidateBooks(ctx context.Context, items []LoanItemRequest) (bool, string, error)
}

// LoanPricingService computes loan amounts from snapshots. Pure functions of
// their inputs; the fine cap is applied (and logged) here.
type LoanPricingService interface {
	Fine(loan *domain.Loan, cfg *domain.Configuration, returnedAt time.Time) int32
	ItemFine(item *domain.LoanItem, loan *domain.Loan, cfg *domain.Configuration, returnedAt time.Time) int32
	VIPDiscount(totalCents int32, cfg *domain.Configuration) int32
	TermWithBonus(baseDays int32, client *domain.Client, cfg *domain.Configuration) int32
}

type LoanService interface {
	Create(ctx context.Context, clientID int32, items []LoanItemRequest, notes string) (*domain.Loan, error)
	Return(ctx context.Context, loanID int32) error
	ReturnItem(ctx context.Context, itemID int32) error
	// OutstandingAmount is read-only: total plus persisted fine, or plus the
	// hypothetical fine when the loan is active and overdue.
	OutstandingAmount(ctx context.Context, loanID int32) (int32, error)
}

type LoanQueryService interface {
	Get(ctx context.Context, id int32) (*LoanView, error)
	List(ctx context.Context, q LoanListQuery) ([]LoanView, int32, error)
	ListActive(ctx context.Context, q LoanListQuery) ([]LoanView, int32, error)
	ListOverdue(ctx context.Context, q LoanListQuery) ([]LoanView, int32, error)
	ListByClient(ctx context.Context, clientID int32, q LoanListQuery) ([]LoanView, int32, error)
}

type ClientService interface {
	Create(ctx context.Context, client *domain.Client) error
	Get(ctx context.Context, id int32) (*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	List(ctx context.Context, search string, page, pageSize int32) ([]domain.Client, int32, error)
	// Deactivate soft-deletes the client; rejected while active loans exist.
	Deactivate(ctx context.Context, id int32) error
}

type BookService interface {
	Create(ctx context.Context, book *domain.Book) error
	Get(ctx context.Context, id int32) (*domain.Book, error)
	Update(ctx context.Context, book *domain.Book) error
	List(ctx context.Context, search string, page, pageSize int32) ([]domain.Book, int32, error)
	// Deactivate soft-deletes the book; rejected while copies are out on loan.
	Deactivate(ctx context.Context, id int32) error
	UploadCover(ctx context.Context, bookID int32, filename, contentType string, size int64, content io.Reader) (*CoverUpload, error)
	DeleteCover(ctx context.Context, bookID int32) error
}

type EmailService interface {
	SendDueSoonReminder(ctx context.Context, email, name string, loanID int32, dueDate time.Time) error
	SendOverdueNotice(ctx context.Context, email, name string, loanID int32, daysOverdue int32, outstandingCents int32) error
	SendAccountBlockedNotice(ctx context.Context, email, name, reason string) error
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (access, refresh string, err error)
	Refresh(ctx context.Context, refreshToken string) (access string, err error)
}
