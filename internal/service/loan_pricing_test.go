package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"librental-backend/internal/domain"
)

func pricingConfig() *domain.Configuration {
	return &domain.Configuration{
		DailyFineRate:    0.5,
		FineCeilingCents: 100000,
		VIPBonusDays:     7,
		VIPDiscountRate:  0.1,
	}
}

func TestPricing_Fine(t *testing.T) {
	svc := NewLoanPricingService()
	cfg := pricingConfig()
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("OnTime", func(t *testing.T) {
		loan := &domain.Loan{TotalAmountCents: 10000, DueDate: due}
		assert.Equal(t, int32(0), svc.Fine(loan, cfg, due))
		assert.Equal(t, int32(0), svc.Fine(loan, cfg, due.AddDate(0, 0, -2)))
	})

	t.Run("LateUncapped", func(t *testing.T) {
		// 2000 × 0.5 × 3 = 3000
		loan := &domain.Loan{TotalAmountCents: 2000, DueDate: due}
		assert.Equal(t, int32(3000), svc.Fine(loan, cfg, due.AddDate(0, 0, 3)))
	})

	t.Run("LateCapped", func(t *testing.T) {
		// 10000 × 0.5 × 50 = 250000, capped at 100000
		loan := &domain.Loan{TotalAmountCents: 10000, DueDate: due}
		assert.Equal(t, int32(100000), svc.Fine(loan, cfg, due.AddDate(0, 0, 50)))
	})

	t.Run("SameCalendarDay", func(t *testing.T) {
		// Past the due instant but within the due date's calendar day.
		loan := &domain.Loan{TotalAmountCents: 10000, DueDate: due}
		assert.Equal(t, int32(0), svc.Fine(loan, cfg, due.Add(5*time.Hour)))
	})
}

func TestPricing_ItemFine(t *testing.T) {
	svc := NewLoanPricingService()
	cfg := pricingConfig()
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	loan := &domain.Loan{TotalAmountCents: 10000, DueDate: due}
	item := &domain.LoanItem{SubtotalCents: 2500}

	t.Run("OnTime", func(t *testing.T) {
		assert.Equal(t, int32(0), svc.ItemFine(item, loan, cfg, due))
	})

	t.Run("Uncapped", func(t *testing.T) {
		// 2500 × 0.5 × 10 = 12500, below the item ceiling of 25000
		assert.Equal(t, int32(12500), svc.ItemFine(item, loan, cfg, due.AddDate(0, 0, 10)))
	})

	t.Run("CappedAtProratedCeiling", func(t *testing.T) {
		// 2500 × 0.5 × 100 = 125000; ceiling prorated to 100000 × 2500/10000 = 25000
		assert.Equal(t, int32(25000), svc.ItemFine(item, loan, cfg, due.AddDate(0, 0, 100)))
	})

	t.Run("ZeroTotalFallsBackToFullCeiling", func(t *testing.T) {
		freeLoan := &domain.Loan{TotalAmountCents: 0, DueDate: due}
		bigItem := &domain.LoanItem{SubtotalCents: 4000}
		// 4000 × 0.5 × 80 = 160000, capped at the full ceiling
		assert.Equal(t, int32(100000), svc.ItemFine(bigItem, freeLoan, cfg, due.AddDate(0, 0, 80)))
	})
}

func TestPricing_VIPDiscount(t *testing.T) {
	svc := NewLoanPricingService()
	cfg := pricingConfig()

	assert.Equal(t, int32(2000), svc.VIPDiscount(20000, cfg))
	assert.Equal(t, int32(0), svc.VIPDiscount(0, cfg))
	// 0.1 × 12345 = 1234.5, rounds to 1235
	assert.Equal(t, int32(1235), svc.VIPDiscount(12345, cfg))
}

func TestPricing_TermWithBonus(t *testing.T) {
	svc := NewLoanPricingService()
	cfg := pricingConfig()
	vip := &domain.Client{ClientType: domain.ClientTypeVIP}
	normal := &domain.Client{ClientType: domain.ClientTypeNormal}

	assert.Equal(t, int32(17), svc.TermWithBonus(10, vip, cfg))
	assert.Equal(t, int32(10), svc.TermWithBonus(10, normal, cfg))

	noBonus := pricingConfig()
	noBonus.VIPBonusDays = 0
	assert.Equal(t, int32(10), svc.TermWithBonus(10, vip, noBonus))
}
