// Package keys implements RSA key-pair custody: generation, persistence,
// redacted retrieval, and transient exposure of raw PEM bytes for signing
// and verification.
package keys

import "time"

// Redacted replaces the private-key field on redacted reads. Applied to
// returned copies only, never to the stored record.
const Redacted = "****** REDACTED ******"

// Key is a persisted RSA key pair. Key material is immutable after
// creation; updates touch label, description, and updated_by only.
type Key struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	UpdatedBy   string    `json:"updated_by"`
	PublicKey   string    `json:"public_key"`
	PrivateKey  string    `json:"private_key"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Redact returns a copy with the private key replaced by the sentinel.
func (k Key) Redact() Key {
	k.PrivateKey = Redacted
	return k
}
