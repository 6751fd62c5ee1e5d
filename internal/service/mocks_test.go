package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"librental-backend/internal/domain"
	"librental-backend/internal/repository"
)

// fakeTx runs the transactional function directly, without a database.
type fakeTx struct{}

func (fakeTx) ExecTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type MockClientRepo struct{ mock.Mock }

func (m *MockClientRepo) Create(ctx context.Context, client *domain.Client) error {
	return m.Called(ctx, client).Error(0)
}

func (m *MockClientRepo) GetByID(ctx context.Context, id int32) (*domain.Client, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*domain.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClientRepo) GetByTaxID(ctx context.Context, taxID string) (*domain.Client, error) {
	args := m.Called(ctx, taxID)
	if c := args.Get(0); c != nil {
		return c.(*domain.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClientRepo) Update(ctx context.Context, client *domain.Client) error {
	return m.Called(ctx, client).Error(0)
}

func (m *MockClientRepo) SetActive(ctx context.Context, id int32, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *MockClientRepo) List(ctx context.Context, search string, page, pageSize int32) ([]domain.Client, int32, error) {
	args := m.Called(ctx, search, page, pageSize)
	var clients []domain.Client
	if c := args.Get(0); c != nil {
		clients = c.([]domain.Client)
	}
	return clients, args.Get(1).(int32), args.Error(2)
}

func (m *MockClientRepo) CountActiveLoans(ctx context.Context, clientID int32) (int32, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(int32), args.Error(1)
}

type MockBookRepo struct{ mock.Mock }

func (m *MockBookRepo) Create(ctx context.Context, book *domain.Book) error {
	return m.Called(ctx, book).Error(0)
}

func (m *MockBookRepo) GetByID(ctx context.Context, id int32) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*domain.Book), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookRepo) GetByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	args := m.Called(ctx, isbn)
	if b := args.Get(0); b != nil {
		return b.(*domain.Book), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookRepo) GetByIDs(ctx context.Context, ids []int32) ([]domain.Book, error) {
	args := m.Called(ctx, ids)
	var books []domain.Book
	if b := args.Get(0); b != nil {
		books = b.([]domain.Book)
	}
	return books, args.Error(1)
}

func (m *MockBookRepo) GetByIDsForUpdate(ctx context.Context, ids []int32) ([]domain.Book, error) {
	args := m.Called(ctx, ids)
	var books []domain.Book
	if b := args.Get(0); b != nil {
		books = b.([]domain.Book)
	}
	return books, args.Error(1)
}

func (m *MockBookRepo) Update(ctx context.Context, book *domain.Book) error {
	return m.Called(ctx, book).Error(0)
}

func (m *MockBookRepo) SetActive(ctx context.Context, id int32, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *MockBookRepo) SetCoverURL(ctx context.Context, id int32, url string) error {
	return m.Called(ctx, id, url).Error(0)
}

func (m *MockBookRepo) AdjustAvailable(ctx context.Context, id int32, delta int32) error {
	return m.Called(ctx, id, delta).Error(0)
}

func (m *MockBookRepo) CountOpenItems(ctx context.Context, bookID int32) (int32, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockBookRepo) List(ctx context.Context, search string, page, pageSize int32) ([]domain.Book, int32, error) {
	args := m.Called(ctx, search, page, pageSize)
	var books []domain.Book
	if b := args.Get(0); b != nil {
		books = b.([]domain.Book)
	}
	return books, args.Get(1).(int32), args.Error(2)
}

type MockLoanRepo struct{ mock.Mock }

func (m *MockLoanRepo) Create(ctx context.Context, loan *domain.Loan) error {
	return m.Called(ctx, loan).Error(0)
}

func (m *MockLoanRepo) GetByID(ctx context.Context, id int32) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if l := args.Get(0); l != nil {
		return l.(*domain.Loan), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepo) GetByIDWithDetails(ctx context.Context, id int32) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if l := args.Get(0); l != nil {
		return l.(*domain.Loan), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepo) GetItem(ctx context.Context, itemID int32) (*domain.LoanItem, error) {
	args := m.Called(ctx, itemID)
	if it := args.Get(0); it != nil {
		return it.(*domain.LoanItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepo) Update(ctx context.Context, loan *domain.Loan) error {
	return m.Called(ctx, loan).Error(0)
}

func (m *MockLoanRepo) UpdateItem(ctx context.Context, item *domain.LoanItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockLoanRepo) AllItemsReturned(ctx context.Context, loanID int32) (bool, error) {
	args := m.Called(ctx, loanID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoanRepo) SumItemFines(ctx context.Context, loanID int32) (int32, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockLoanRepo) List(ctx context.Context, filter repository.LoanFilter) ([]domain.Loan, int32, error) {
	args := m.Called(ctx, filter)
	var loans []domain.Loan
	if l := args.Get(0); l != nil {
		loans = l.([]domain.Loan)
	}
	return loans, args.Get(1).(int32), args.Error(2)
}

func (m *MockLoanRepo) ListActiveDueBetween(ctx context.Context, from, to time.Time) ([]domain.Loan, error) {
	args := m.Called(ctx, from, to)
	var loans []domain.Loan
	if l := args.Get(0); l != nil {
		loans = l.([]domain.Loan)
	}
	return loans, args.Error(1)
}

type MockConfigRepo struct{ mock.Mock }

func (m *MockConfigRepo) GetLatest(ctx context.Context) (*domain.Configuration, error) {
	args := m.Called(ctx)
	if c := args.Get(0); c != nil {
		return c.(*domain.Configuration), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockConfigRepo) Create(ctx context.Context, cfg *domain.Configuration) error {
	return m.Called(ctx, cfg).Error(0)
}

func (m *MockConfigRepo) Update(ctx context.Context, cfg *domain.Configuration) error {
	return m.Called(ctx, cfg).Error(0)
}

type MockConfigService struct{ mock.Mock }

func (m *MockConfigService) GetCurrent(ctx context.Context) (*domain.Configuration, error) {
	args := m.Called(ctx)
	if c := args.Get(0); c != nil {
		return c.(*domain.Configuration), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockConfigService) Update(ctx context.Context, cfg *domain.Configuration, actorID string) (*domain.Configuration, error) {
	args := m.Called(ctx, cfg, actorID)
	if c := args.Get(0); c != nil {
		return c.(*domain.Configuration), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockConfigService) InvalidateCache() {
	m.Called()
}

type MockValidation struct{ mock.Mock }

func (m *MockValidation) ValidateClient(ctx context.Context, clientID int32, cfg *domain.Configuration) (bool, string, error) {
	args := m.Called(ctx, clientID, cfg)
	return args.Bool(0), args.String(1), args.Error(2)
}

func (m *MockValidation) ValidateTerms(items []LoanItemRequest, cfg *domain.Configuration) (bool, string) {
	args := m.Called(items, cfg)
	return args.Bool(0), args.String(1)
}

func (m *MockValidation) ValidateBooks(ctx context.Context, items []LoanItemRequest) (bool, string, error) {
	args := m.Called(ctx, items)
	return args.Bool(0), args.String(1), args.Error(2)
}
