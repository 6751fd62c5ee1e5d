package domain

import "time"

// Configuration is the single tunable-parameter record governing fines,
// limits and client-type policies. Loaded by highest id; exactly one row
// is expected in practice.
type Configuration struct {
	ID int32 `json:"id"`

	// Fines
	DailyFineRate    float64 `json:"daily_fine_rate"` // fraction per day late, e.g. 0.5
	FineCeilingCents int32   `json:"fine_ceiling_cents"`

	// Limits
	MaxItemsPerLoan         int32 `json:"max_items_per_loan"`
	MaxActiveLoansPerClient int32 `json:"max_active_loans_per_client"`
	MinRentalDays           int32 `json:"min_rental_days"`
	MaxRentalDays           int32 `json:"max_rental_days"`

	// Renewals (policy storage only; renewal execution is not offered)
	RenewalEnabled bool  `json:"renewal_enabled"`
	MaxRenewals    int32 `json:"max_renewals"`
	RenewalDays    int32 `json:"renewal_days"`

	// Reservations (configured but not implemented)
	ReservationEnabled      bool  `json:"reservation_enabled"`
	ReservationValidityDays int32 `json:"reservation_validity_days"`

	// VIP policy
	VIPBonusDays    int32   `json:"vip_bonus_days"`
	VIPDiscountRate float64 `json:"vip_discount_rate"` // fraction, e.g. 0.1

	// Notifications
	DueWarningDays int32 `json:"due_warning_days"`

	// Delinquency blocking
	BlockAfterOverdueDays int32 `json:"block_after_overdue_days"`
	BlockDebtCents        int32 `json:"block_debt_cents"`

	// Audit
	CreatedOn time.Time  `json:"created_on"`
	UpdatedOn *time.Time `json:"updated_on,omitempty"`
	UpdatedBy string     `json:"updated_by,omitempty"`
}

// DefaultConfiguration returns the record created when none exists yet.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		DailyFineRate:           0.5,
		FineCeilingCents:        100000, // R$1000.00
		MaxItemsPerLoan:         5,
		MaxActiveLoansPerClient: 3,
		MinRentalDays:           1,
		MaxRentalDays:           30,
		RenewalEnabled:          true,
		MaxRenewals:             2,
		RenewalDays:             7,
		ReservationEnabled:      true,
		ReservationValidityDays: 3,
		VIPBonusDays:            7,
		VIPDiscountRate:         0.1,
		DueWarningDays:          2,
		BlockAfterOverdueDays:   30,
		BlockDebtCents:          50000, // R$500.00
		CreatedOn:               time.Now().UTC(),
	}
}
