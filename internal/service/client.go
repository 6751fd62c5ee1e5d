package service

import (
	"context"
	"errors"

	"librental-backend/internal/domain"
	"librental-backend/internal/logger"
	"librental-backend/internal/repository"
)

type clientService struct {
	clients repository.ClientRepository
}

func NewClientService(clients repository.ClientRepository) ClientService {
	return &clientService{clients: clients}
}

func (s *clientService) Create(ctx context.Context, client *domain.Client) error {
	if client.Name == "" {
		return businessRule("client name is required")
	}
	if client.TaxID == "" {
		return businessRule("client tax id is required")
	}

	existing, err := s.clients.GetByTaxID(ctx, client.TaxID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		logger.Error("failed to check client tax id", "tax_id", client.TaxID, "error", err)
		return ErrTryAgain
	}
	if existing != nil {
		return businessRule("a client with tax id %s already exists", client.TaxID)
	}

	client.Active = true
	if err := s.clients.Create(ctx, client); err != nil {
		logger.Error("failed to create client", "error", err)
		return ErrTryAgain
	}

	logger.Info("client created", "client_id", client.ID, "type", client.ClientType)
	return nil
}

func (s *clientService) Get(ctx context.Context, id int32) (*domain.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("client", id)
	}
	if err != nil {
		logger.Error("failed to load client", "client_id", id, "error", err)
		return nil, ErrTryAgain
	}
	return client, nil
}

func (s *clientService) Update(ctx context.Context, client *domain.Client) error {
	current, err := s.clients.GetByID(ctx, client.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("client", client.ID)
	}
	if err != nil {
		logger.Error("failed to load client", "client_id", client.ID, "error", err)
		return ErrTryAgain
	}

	if client.TaxID != current.TaxID {
		other, err := s.clients.GetByTaxID(ctx, client.TaxID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			logger.Error("failed to check client tax id", "tax_id", client.TaxID, "error", err)
			return ErrTryAgain
		}
		if other != nil {
			return businessRule("a client with tax id %s already exists", client.TaxID)
		}
	}

	if err := s.clients.Update(ctx, client); err != nil {
		logger.Error("failed to update client", "client_id", client.ID, "error", err)
		return ErrTryAgain
	}

	logger.Info("client updated", "client_id", client.ID)
	return nil
}

func (s *clientService) List(ctx context.Context, search string, page, pageSize int32) ([]domain.Client, int32, error) {
	clients, total, err := s.clients.List(ctx, search, page, pageSize)
	if err != nil {
		logger.Error("failed to list clients", "error", err)
		return nil, 0, ErrTryAgain
	}
	return clients, total, nil
}

func (s *clientService) Deactivate(ctx context.Context, id int32) error {
	_, err := s.clients.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("client", id)
	}
	if err != nil {
		logger.Error("failed to load client", "client_id", id, "error", err)
		return ErrTryAgain
	}

	active, err := s.clients.CountActiveLoans(ctx, id)
	if err != nil {
		logger.Error("failed to count active loans", "client_id", id, "error", err)
		return ErrTryAgain
	}
	if active > 0 {
		return businessRule("client has %d active loans and cannot be deactivated", active)
	}

	if err := s.clients.SetActive(ctx, id, false); err != nil {
		logger.Error("failed to deactivate client", "client_id", id, "error", err)
		return ErrTryAgain
	}

	logger.Info("client deactivated", "client_id", id)
	return nil
}
