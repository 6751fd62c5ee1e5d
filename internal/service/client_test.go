package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"librental-backend/internal/domain"
	"librental-backend/internal/repository"
)

func TestClient_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("OK", func(t *testing.T) {
		clients := new(MockClientRepo)
		svc := NewClientService(clients)
		clients.On("GetByTaxID", ctx, "123").Return(nil, repository.ErrNotFound)
		clients.On("Create", ctx, mock.MatchedBy(func(c *domain.Client) bool {
			return c.Active
		})).Return(nil)

		err := svc.Create(ctx, &domain.Client{Name: "Ana", TaxID: "123"})
		assert.NoError(t, err)
		clients.AssertExpectations(t)
	})

	t.Run("DuplicateTaxID", func(t *testing.T) {
		clients := new(MockClientRepo)
		svc := NewClientService(clients)
		clients.On("GetByTaxID", ctx, "123").Return(&domain.Client{ID: 1, TaxID: "123"}, nil)

		err := svc.Create(ctx, &domain.Client{Name: "Ana", TaxID: "123"})
		assert.True(t, IsBusinessRule(err))
		clients.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("MissingFields", func(t *testing.T) {
		svc := NewClientService(new(MockClientRepo))
		assert.True(t, IsBusinessRule(svc.Create(ctx, &domain.Client{TaxID: "123"})))
		assert.True(t, IsBusinessRule(svc.Create(ctx, &domain.Client{Name: "Ana"})))
	})
}

func TestClient_Deactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("OK", func(t *testing.T) {
		clients := new(MockClientRepo)
		svc := NewClientService(clients)
		clients.On("GetByID", ctx, int32(1)).Return(&domain.Client{ID: 1, Active: true}, nil)
		clients.On("CountActiveLoans", ctx, int32(1)).Return(int32(0), nil)
		clients.On("SetActive", ctx, int32(1), false).Return(nil)

		assert.NoError(t, svc.Deactivate(ctx, 1))
		clients.AssertExpectations(t)
	})

	t.Run("BlockedByActiveLoans", func(t *testing.T) {
		clients := new(MockClientRepo)
		svc := NewClientService(clients)
		clients.On("GetByID", ctx, int32(1)).Return(&domain.Client{ID: 1, Active: true}, nil)
		clients.On("CountActiveLoans", ctx, int32(1)).Return(int32(2), nil)

		err := svc.Deactivate(ctx, 1)
		assert.True(t, IsBusinessRule(err))
		clients.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NotFound", func(t *testing.T) {
		clients := new(MockClientRepo)
		svc := NewClientService(clients)
		clients.On("GetByID", ctx, int32(9)).Return(nil, repository.ErrNotFound)

		assert.True(t, IsNotFound(svc.Deactivate(ctx, 9)))
	})
}

func TestClient_UpdateChecksTaxIDCollision(t *testing.T) {
	ctx := context.Background()
	clients := new(MockClientRepo)
	svc := NewClientService(clients)

	clients.On("GetByID", ctx, int32(1)).Return(&domain.Client{ID: 1, TaxID: "123"}, nil)
	clients.On("GetByTaxID", ctx, "456").Return(&domain.Client{ID: 2, TaxID: "456"}, nil)

	err := svc.Update(ctx, &domain.Client{ID: 1, Name: "Ana", TaxID: "456"})
	assert.True(t, IsBusinessRule(err))
	clients.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
