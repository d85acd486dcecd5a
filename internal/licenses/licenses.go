// Package licenses implements the license token engine: issuing signed
// license tokens, validating presented tokens, and managing the stored
// license records.
package licenses

import "time"

// License is a stored license record. The token string is immutable once
// issued; updates touch label and description only.
type License struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customer_id"`
	KeyID       string    `json:"key_id"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	IssuedBy    string    `json:"issued_by"`
	Token       string    `json:"token"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Details is a license record joined with customer display data and the
// feature list recovered from the signed token. CustomerName is nil when
// the referenced customer no longer exists.
type Details struct {
	License
	CustomerName *string   `json:"customer_name"`
	Features     []Feature `json:"features"`
}
