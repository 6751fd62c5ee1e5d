package service

import (
	"math"
	"time"

	"librental-backend/internal/domain"
	"librental-backend/internal/logger"
	"librental-backend/internal/utils"
)

type loanPricingService struct{}

func NewLoanPricingService() LoanPricingService {
	return &loanPricingService{}
}

// Fine computes the late fine for a whole loan returned at returnedAt:
// total × daily rate × calendar days late, capped at the configured ceiling.
// Hitting the cap is logged, not an error.
func (s *loanPricingService) Fine(loan *domain.Loan, cfg *domain.Configuration, returnedAt time.Time) int32 {
	daysLate := utils.DaysLate(loan.DueDate, returnedAt)
	if daysLate == 0 {
		return 0
	}

	fine := roundCents(float64(loan.TotalAmountCents) * cfg.DailyFineRate * float64(daysLate))
	if fine > cfg.FineCeilingCents {
		logger.Warn("computed fine exceeds ceiling, applying ceiling",
			"loan_id", loan.ID,
			"computed_cents", fine,
			"ceiling_cents", cfg.FineCeilingCents)
		fine = cfg.FineCeilingCents
	}
	return fine
}

// ItemFine computes a partially-returned item's fine with the same daily-rate
// formula, but scopes the ceiling to the item's share of the loan total.
func (s *loanPricingService) ItemFine(item *domain.LoanItem, loan *domain.Loan, cfg *domain.Configuration, returnedAt time.Time) int32 {
	daysLate := utils.DaysLate(loan.DueDate, returnedAt)
	if daysLate == 0 {
		return 0
	}

	fine := roundCents(float64(item.SubtotalCents) * cfg.DailyFineRate * float64(daysLate))

	itemCeiling := cfg.FineCeilingCents
	if loan.TotalAmountCents > 0 {
		itemCeiling = roundCents(float64(cfg.FineCeilingCents) *
			float64(item.SubtotalCents) / float64(loan.TotalAmountCents))
	}
	if fine > itemCeiling {
		logger.Warn("computed item fine exceeds prorated ceiling, applying ceiling",
			"item_id", item.ID,
			"loan_id", loan.ID,
			"computed_cents", fine,
			"ceiling_cents", itemCeiling)
		fine = itemCeiling
	}
	return fine
}

// VIPDiscount returns the discount amount for a VIP client on the given total.
func (s *loanPricingService) VIPDiscount(totalCents int32, cfg *domain.Configuration) int32 {
	return roundCents(float64(totalCents) * cfg.VIPDiscountRate)
}

// TermWithBonus extends the base term by the configured VIP bonus days.
// Non-VIP clients, or a non-positive bonus, leave the term unchanged.
func (s *loanPricingService) TermWithBonus(baseDays int32, client *domain.Client, cfg *domain.Configuration) int32 {
	if client.IsVIP() && cfg.VIPBonusDays > 0 {
		return baseDays + cfg.VIPBonusDays
	}
	return baseDays
}

func roundCents(v float64) int32 {
	return int32(math.Round(v))
}
