package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"librental-backend/internal/domain"
	"librental-backend/internal/repository"
)

func TestConfigurationRepository_UpdateNoMatchingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewConfigurationRepository(db)
	cfg := domain.DefaultConfiguration()

	// cfg.ID is zero here, so the WHERE clause matches nothing. The update
	// must report that instead of succeeding with an unchanged table.
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE configurations SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Update(context.Background(), cfg)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigurationRepository_UpdateMatchingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewConfigurationRepository(db)
	cfg := domain.DefaultConfiguration()
	cfg.ID = 1

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE configurations SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Update(context.Background(), cfg)
	assert.NoError(t, err)
	assert.NotNil(t, cfg.UpdatedOn)
	assert.NoError(t, mock.ExpectationsWereMet())
}
