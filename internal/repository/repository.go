package repository

import (
	"context"
	"errors"
	"time"

	"librental-backend/internal/domain"
)

// ErrNotFound is returned by Get* methods when no row matches.
var ErrNotFound = errors.New("not found")

// LoanFilter narrows and orders loan listings. Zero values mean "no filter".
type LoanFilter struct {
	ClientID    int32
	Status      domain.LoanStatus
	OverdueOnly bool   // status ACTIVE and due date in the past
	Search      string // matches client name or tax id
	SortBy      string // "date", "client", "total"; default date
	SortDesc    bool
	Page        int32
	PageSize    int32
}

type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id int32) (*domain.Client, error)
	GetByTaxID(ctx context.Context, taxID string) (*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	SetActive(ctx context.Context, id int32, active bool) error
	List(ctx context.Context, search string, page, pageSize int32) ([]domain.Client, int32, error)
	CountActiveLoans(ctx context.Context, clientID int32) (int32, error)
}

type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	GetByID(ctx context.Context, id int32) (*domain.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*domain.Book, error)
	// GetByIDs loads the given books; the forUpdate variant takes row locks
	// so an availability check-then-decrement cannot race another loan.
	GetByIDs(ctx context.Context, ids []int32) ([]domain.Book, error)
	GetByIDsForUpdate(ctx context.Context, ids []int32) ([]domain.Book, error)
	Update(ctx context.Context, book *domain.Book) error
	SetActive(ctx context.Context, id int32, active bool) error
	SetCoverURL(ctx context.Context, id int32, url string) error
	// AdjustAvailable changes available_copies by delta (±1 per loan item).
	AdjustAvailable(ctx context.Context, id int32, delta int32) error
	CountOpenItems(ctx context.Context, bookID int32) (int32, error)
	List(ctx context.Context, search string, page, pageSize int32) ([]domain.Book, int32, error)
}

type LoanRepository interface {
	// Create persists the loan and all of its items, filling in generated ids.
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id int32) (*domain.Loan, error)
	// GetByIDWithDetails loads the loan plus client, items and item books.
	GetByIDWithDetails(ctx context.Context, id int32) (*domain.Loan, error)
	GetItem(ctx context.Context, itemID int32) (*domain.LoanItem, error)
	Update(ctx context.Context, loan *domain.Loan) error
	UpdateItem(ctx context.Context, item *domain.LoanItem) error
	// AllItemsReturned reports whether every item of the loan has a returned date.
	AllItemsReturned(ctx context.Context, loanID int32) (bool, error)
	// SumItemFines totals the item fines of the loan, treating null as zero.
	SumItemFines(ctx context.Context, loanID int32) (int32, error)
	List(ctx context.Context, filter LoanFilter) ([]domain.Loan, int32, error)
	// ListActiveDueBetween returns active loans whose due date falls in [from, to),
	// with client details, for reminder jobs.
	ListActiveDueBetween(ctx context.Context, from, to time.Time) ([]domain.Loan, error)
}

type ConfigurationRepository interface {
	// GetLatest returns the highest-id record, or ErrNotFound when the table is empty.
	GetLatest(ctx context.Context) (*domain.Configuration, error)
	Create(ctx context.Context, cfg *domain.Configuration) error
	Update(ctx context.Context, cfg *domain.Configuration) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
