// Package customers manages customer display metadata. License listings
// left-join against it; a deleted customer never invalidates a license.
package customers

import "time"

// Customer is a stored customer record.
type Customer struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Visibility  string    `json:"visibility"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
