package domain

import "time"

type Book struct {
	ID              int32     `json:"id"`
	Title           string    `json:"title"`
	ISBN            string    `json:"isbn"` // unique
	Author          string    `json:"author"`
	Publisher       string    `json:"publisher"`
	PublicationYear int32     `json:"publication_year"`
	Category        string    `json:"category"`
	TotalCopies     int32     `json:"total_copies"`
	AvailableCopies int32     `json:"available_copies"`
	DailyRateCents  int32     `json:"daily_rate_cents"`
	CoverURL        string    `json:"cover_url,omitempty"`
	Active          bool      `json:"active"`
	RegisteredOn    time.Time `json:"registered_on"`
}
