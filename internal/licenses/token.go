package licenses

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/brooksyott/licensing-server/internal/config"
	svcerr "github.com/brooksyott/licensing-server/internal/errors"
	"github.com/brooksyott/licensing-server/internal/pemutil"
)

// Subject is the fixed sub claim identifying tokens minted by this
// subsystem.
const Subject = "JSI License"

// TokenTTL is the fixed expiration window. Not configurable per request.
const TokenTTL = 7 * 24 * time.Hour

const featuresClaim = "features"

// KeySource exposes PEM key material for signing and verification.
// Implemented by the key service; material is used transiently and never
// retained past a single operation.
type KeySource interface {
	PublicKeyPEM(ctx context.Context, id string) ([]byte, error)
	PrivateKeyPEM(ctx context.Context, id string) ([]byte, error)
}

// Expectation carries the issuer/audience values to check during
// validation. Checks run only when enabled in TokenConfig and the
// corresponding field is non-empty.
type Expectation struct {
	Issuer   string
	Audience string
}

// Result is the outcome of validating a token.
type Result struct {
	Valid    bool      `json:"valid"`
	Reason   string    `json:"reason,omitempty"`
	Features []Feature `json:"features,omitempty"`
}

func invalid(reason string) Result {
	return Result{Valid: false, Reason: reason}
}

// Engine signs and verifies license tokens. Stateless; concurrent
// signing requests share nothing but read-only key material.
type Engine struct {
	keys KeySource
	cfg  config.TokenConfig
}

// NewEngine creates a token engine.
func NewEngine(keys KeySource, cfg config.TokenConfig) *Engine {
	return &Engine{keys: keys, cfg: cfg}
}

// Sign builds and signs a license token. The features claim carries the
// JSON-serialized grant list as a string; the kid header carries the
// signing key id so a verifier can locate the public key without
// additional input.
func (e *Engine) Sign(ctx context.Context, keyID, customerID, issuer, licenseID string, features []Feature) (string, error) {
	pemBytes, err := e.keys.PrivateKeyPEM(ctx, keyID)
	if err != nil {
		return "", svcerr.Validation("signing key %s is not available", keyID)
	}

	private, err := pemutil.DecodePrivateKey(string(pemBytes))
	if err != nil {
		return "", err
	}

	featureJSON, err := json.Marshal(features)
	if err != nil {
		return "", svcerr.Internal("failed to serialize features", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"aud":         customerID,
		"sub":         Subject,
		"iss":         issuer,
		"jti":         licenseID,
		featuresClaim: string(featureJSON),
		"exp":         now.Add(TokenTTL).Unix(),
		"iat":         now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = keyID

	signed, err := token.SignedString(private)
	if err != nil {
		return "", svcerr.Internal("token signing failed", err)
	}
	return signed, nil
}

// Validate checks a presented token: kid extraction, public key lookup,
// signature, expiry, and the shape of the features claim. Issuer and
// audience are checked only when enabled in config.
func (e *Engine) Validate(ctx context.Context, tokenText string, expect Expectation) Result {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))

	unverified, _, err := parser.ParseUnverified(tokenText, jwt.MapClaims{})
	if err != nil {
		return invalid("malformed token")
	}

	kid, _ := unverified.Header["kid"].(string)
	if kid == "" {
		return invalid("missing kid")
	}

	pemBytes, err := e.keys.PublicKeyPEM(ctx, kid)
	if err != nil {
		return invalid("key not found")
	}
	public, err := pemutil.DecodePublicKey(string(pemBytes))
	if err != nil {
		return invalid("stored public key is not usable")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if e.cfg.ValidateIssuer && expect.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(expect.Issuer))
	}
	if e.cfg.ValidateAudience && expect.Audience != "" {
		opts = append(opts, jwt.WithAudience(expect.Audience))
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.NewParser(opts...).ParseWithClaims(tokenText, claims, func(*jwt.Token) (any, error) {
		return public, nil
	}); err != nil {
		return invalid(verifyReason(err))
	}

	raw, ok := claims[featuresClaim].(string)
	if !ok || raw == "" {
		return invalid("missing features claim")
	}

	var features []Feature
	if err := json.Unmarshal([]byte(raw), &features); err != nil {
		return invalid(err.Error())
	}

	return Result{Valid: true, Features: features}
}

// DecodeFeatures recovers the grant list from a stored token without
// re-verifying the signature. Listings use this so displayed features
// always match what was actually signed.
func DecodeFeatures(tokenText string) ([]Feature, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenText, claims); err != nil {
		return nil, svcerr.Internal("stored token is unreadable", err)
	}

	raw, ok := claims[featuresClaim].(string)
	if !ok || raw == "" {
		return nil, svcerr.Internal("stored token has no features claim", nil)
	}

	var features []Feature
	if err := json.Unmarshal([]byte(raw), &features); err != nil {
		return nil, svcerr.Internal("stored features claim is unreadable", err)
	}
	return features, nil
}

func verifyReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "invalid signature"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "invalid issuer"
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return "invalid audience"
	default:
		return err.Error()
	}
}
