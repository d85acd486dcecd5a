// Package skus maintains the product SKU catalog and validates that
// requested feature grants reference provisioned SKUs.
package skus

import "time"

// Sku is a stable catalog entry. Code and name are each globally unique.
// Referenced by license feature grants; never mutated by token issuance,
// only read.
type Sku struct {
	ID          string    `json:"id"`
	Code        string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
