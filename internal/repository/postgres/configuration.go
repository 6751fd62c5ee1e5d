package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"librental-backend/internal/domain"
	"librental-backend/internal/repository"
)

type configurationRepository struct {
	db *sql.DB
}

func NewConfigurationRepository(db *sql.DB) repository.ConfigurationRepository {
	return &configurationRepository{db: db}
}

const configColumns = `id, daily_fine_rate, fine_ceiling_cents, max_items_per_loan, max_active_loans_per_client, min_rental_days, max_rental_days, renewal_enabled, max_renewals, renewal_days, reservation_enabled, reservation_validity_days, vip_bonus_days, vip_discount_rate, due_warning_days, block_after_overdue_days, block_debt_cents, created_on, updated_on, updated_by`

func (r *configurationRepository) GetLatest(ctx context.Context) (*domain.Configuration, error) {
	cfg := &domain.Configuration{}
	var updatedBy sql.NullString
	query := `SELECT ` + configColumns + ` FROM configurations ORDER BY id DESC LIMIT 1`
	err := conn(ctx, r.db).QueryRowContext(ctx, query).Scan(
		&cfg.ID, &cfg.DailyFineRate, &cfg.FineCeilingCents, &cfg.MaxItemsPerLoan,
		&cfg.MaxActiveLoansPerClient, &cfg.MinRentalDays, &cfg.MaxRentalDays,
		&cfg.RenewalEnabled, &cfg.MaxRenewals, &cfg.RenewalDays,
		&cfg.ReservationEnabled, &cfg.ReservationValidityDays,
		&cfg.VIPBonusDays, &cfg.VIPDiscountRate, &cfg.DueWarningDays,
		&cfg.BlockAfterOverdueDays, &cfg.BlockDebtCents,
		&cfg.CreatedOn, &cfg.UpdatedOn, &updatedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	cfg.UpdatedBy = updatedBy.String
	return cfg, nil
}

func (r *configurationRepository) Create(ctx context.Context, cfg *domain.Configuration) error {
	query := `INSERT INTO configurations (daily_fine_rate, fine_ceiling_cents, max_items_per_loan, max_active_loans_per_client, min_rental_days, max_rental_days, renewal_enabled, max_renewals, renewal_days, reservation_enabled, reservation_validity_days, vip_bonus_days, vip_discount_rate, due_warning_days, block_after_overdue_days, block_debt_cents, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17) RETURNING id`
	return conn(ctx, r.db).QueryRowContext(ctx, query,
		cfg.DailyFineRate, cfg.FineCeilingCents, cfg.MaxItemsPerLoan,
		cfg.MaxActiveLoansPerClient, cfg.MinRentalDays, cfg.MaxRentalDays,
		cfg.RenewalEnabled, cfg.MaxRenewals, cfg.RenewalDays,
		cfg.ReservationEnabled, cfg.ReservationValidityDays,
		cfg.VIPBonusDays, cfg.VIPDiscountRate, cfg.DueWarningDays,
		cfg.BlockAfterOverdueDays, cfg.BlockDebtCents, cfg.CreatedOn).Scan(&cfg.ID)
}

func (r *configurationRepository) Update(ctx context.Context, cfg *domain.Configuration) error {
	query := `UPDATE configurations SET daily_fine_rate=$1, fine_ceiling_cents=$2, max_items_per_loan=$3, max_active_loans_per_client=$4, min_rental_days=$5, max_rental_days=$6, renewal_enabled=$7, max_renewals=$8, renewal_days=$9, reservation_enabled=$10, reservation_validity_days=$11, vip_bonus_days=$12, vip_discount_rate=$13, due_warning_days=$14, block_after_overdue_days=$15, block_debt_cents=$16, updated_on=$17, updated_by=$18 WHERE id=$19`
	now := time.Now().UTC()
	cfg.UpdatedOn = &now
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		cfg.DailyFineRate, cfg.FineCeilingCents, cfg.MaxItemsPerLoan,
		cfg.MaxActiveLoansPerClient, cfg.MinRentalDays, cfg.MaxRentalDays,
		cfg.RenewalEnabled, cfg.MaxRenewals, cfg.RenewalDays,
		cfg.ReservationEnabled, cfg.ReservationValidityDays,
		cfg.VIPBonusDays, cfg.VIPDiscountRate, cfg.DueWarningDays,
		cfg.BlockAfterOverdueDays, cfg.BlockDebtCents, cfg.UpdatedOn, cfg.UpdatedBy, cfg.ID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
