package domain

import "time"

type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "ACTIVE"
	LoanStatusReturned  LoanStatus = "RETURNED"
	LoanStatusCancelled LoanStatus = "CANCELLED"

	// LoanStatusOverdue is a derived view status only; it is never persisted.
	// A loan is overdue when it is ACTIVE and past its due date.
	LoanStatusOverdue LoanStatus = "OVERDUE"
)

type Loan struct {
	ID               int32      `json:"id"`
	ClientID         int32      `json:"client_id"`
	Client           *Client    `json:"client,omitempty"` // Populated when fetching loan details
	LoanDate         time.Time  `json:"loan_date"`
	DueDate          time.Time  `json:"due_date"`
	ReturnedDate     *time.Time `json:"returned_date,omitempty"`
	TotalAmountCents int32      `json:"total_amount_cents"`
	FineAmountCents  *int32     `json:"fine_amount_cents,omitempty"`
	Status           LoanStatus `json:"status"`
	Notes            string     `json:"notes,omitempty"`
	Items            []LoanItem `json:"items,omitempty"`
}

type LoanItem struct {
	ID         int32 `json:"id"`
	LoanID     int32 `json:"loan_id"`
	BookID     int32 `json:"book_id"`
	Book       *Book `json:"book,omitempty"` // Populated when fetching loan details
	DaysRented int32 `json:"days_rented"`
	// DailyRateCents snapshots the book's rate at loan time. Cost and fine
	// calculations use this snapshot, never the live book rate.
	DailyRateCents  int32      `json:"daily_rate_cents"`
	SubtotalCents   int32      `json:"subtotal_cents"`
	ReturnedDate    *time.Time `json:"returned_date,omitempty"`
	FineAmountCents *int32     `json:"fine_amount_cents,omitempty"`
}

// IsOverdue reports whether the loan is active and past due at the given time.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.Status == LoanStatusActive && l.DueDate.Before(now)
}

// AllItemsReturned reports whether every item has a returned date.
func (l *Loan) AllItemsReturned() bool {
	if len(l.Items) == 0 {
		return false
	}
	for _, item := range l.Items {
		if item.ReturnedDate == nil {
			return false
		}
	}
	return true
}
