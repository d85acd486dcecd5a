package licenses

// RateLimit is an opaque throttling entry inside a feature grant. The
// token engine performs no validation of its numeric ranges.
type RateLimit struct {
	Name   string `json:"name"`
	Limit  int64  `json:"limit"`
	Period int64  `json:"period"`
}

// Feature is a single grant embedded in the signed token payload: a SKU
// reference, an expiry in seconds since epoch, and optional rate limits.
// Grants exist only inside the token claim, never as stored rows.
type Feature struct {
	Sku        string      `json:"sku"`
	Expiry     int64       `json:"expiry"`
	RateLimits []RateLimit `json:"rateLimits,omitempty"`
}

// DedupFeatures collapses duplicate SKU references, keeping the first
// occurrence per SKU in input order.
func DedupFeatures(features []Feature) []Feature {
	seen := make(map[string]struct{}, len(features))
	out := make([]Feature, 0, len(features))
	for _, f := range features {
		if _, ok := seen[f.Sku]; ok {
			continue
		}
		seen[f.Sku] = struct{}{}
		out = append(out, f)
	}
	return out
}
