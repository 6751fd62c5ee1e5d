package domain

import "time"

type ClientType string

const (
	ClientTypeNormal    ClientType = "NORMAL"
	ClientTypeVIP       ClientType = "VIP"
	ClientTypeCorporate ClientType = "CORPORATE"
)

type Client struct {
	ID           int32      `json:"id"`
	Name         string     `json:"name"`
	TaxID        string     `json:"tax_id"` // CPF, unique
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	MobilePhone  string     `json:"mobile_phone,omitempty"`
	Address      string     `json:"address"`
	City         string     `json:"city"`
	State        string     `json:"state"`
	PostalCode   string     `json:"postal_code"`
	ClientType   ClientType `json:"client_type"`
	Active       bool       `json:"active"`
	RegisteredOn time.Time  `json:"registered_on"`
}

// IsVIP reports whether the client qualifies for VIP pricing.
func (c *Client) IsVIP() bool {
	return c.ClientType == ClientTypeVIP
}
