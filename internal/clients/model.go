// Package clients holds the client registry of the agency.
package clients

import "time"

// Client is a customer of the agency. Document carries the CPF or CNPJ used
// for invoicing.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Document  string    `json:"document,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
