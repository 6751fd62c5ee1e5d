package postgres

import (
	"database/sql"

	"librental-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.ClientRepository
	repository.BookRepository
	repository.LoanRepository
	repository.ConfigurationRepository
	repository.UserRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                      db,
		ClientRepository:        NewClientRepository(db),
		BookRepository:          NewBookRepository(db),
		LoanRepository:          NewLoanRepository(db),
		ConfigurationRepository: NewConfigurationRepository(db),
		UserRepository:          NewUserRepository(db),
	}
}
