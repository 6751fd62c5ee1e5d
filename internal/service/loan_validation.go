package service

import (
	"context"
	"errors"
	"fmt"

	"librental-backend/internal/domain"
	"librental-backend/internal/repository"
)

type loanValidationService struct {
	clients repository.ClientRepository
	books   repository.BookRepository
}

func NewLoanValidationService(clients repository.ClientRepository, books repository.BookRepository) LoanValidationService {
	return &loanValidationService{clients: clients, books: books}
}

func (s *loanValidationService) ValidateClient(ctx context.Context, clientID int32, cfg *domain.Configuration) (bool, string, error) {
	client, err := s.clients.GetByID(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, "client not found", nil
	}
	if err != nil {
		return false, "", err
	}

	if !client.Active {
		return false, "client is inactive", nil
	}

	activeLoans, err := s.clients.CountActiveLoans(ctx, clientID)
	if err != nil {
		return false, "", err
	}
	if activeLoans >= cfg.MaxActiveLoansPerClient {
		return false, fmt.Sprintf("client already has %d active loans, maximum allowed: %d",
			activeLoans, cfg.MaxActiveLoansPerClient), nil
	}

	return true, "", nil
}

func (s *loanValidationService) ValidateTerms(items []LoanItemRequest, cfg *domain.Configuration) (bool, string) {
	for _, item := range items {
		if item.Days < cfg.MinRentalDays {
			return false, fmt.Sprintf("minimum rental term: %d days", cfg.MinRentalDays)
		}
		if item.Days > cfg.MaxRentalDays {
			return false, fmt.Sprintf("maximum rental term: %d days", cfg.MaxRentalDays)
		}
	}
	return true, ""
}

func (s *loanValidationService) ValidateBooks(ctx context.Context, items []LoanItemRequest) (bool, string, error) {
	ids := make([]int32, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.BookID)
	}

	books, err := s.books.GetByIDs(ctx, ids)
	if err != nil {
		return false, "", err
	}

	byID := make(map[int32]*domain.Book, len(books))
	for i := range books {
		byID[books[i].ID] = &books[i]
	}

	for _, item := range items {
		book, ok := byID[item.BookID]
		if !ok {
			return false, "one or more books were not found", nil
		}
		if !book.Active {
			return false, fmt.Sprintf("book %q is inactive", book.Title), nil
		}
		if book.AvailableCopies < 1 {
			return false, fmt.Sprintf("book %q is not available", book.Title), nil
		}
	}

	return true, "", nil
}
