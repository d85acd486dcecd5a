// Package pemutil encodes and decodes RSA key material to and from its
// textual PEM representation.
//
// Private keys travel as PKCS#1 ("RSA PRIVATE KEY") blocks and public keys
// as SubjectPublicKeyInfo ("PUBLIC KEY") blocks, matching what external
// OpenSSL-based tooling expects when the text is written to a .pem file.
package pemutil

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/brooksyott/licensing-server/internal/errors"
)

const pemLineLength = 64

// markerPattern matches BEGIN/END marker lines for both RSA-specific and
// generic block types.
var markerPattern = regexp.MustCompile(`(?m)^-----(?:BEGIN|END) [^-]*-----\r?\n?`)

// ExtractBase64 strips every BEGIN/END marker line from text and removes
// all carriage returns, newlines and spaces from the remainder. Input
// without any markers is returned stripped of whitespace as-is; that
// looseness is deliberate and callers rely on the base64 decode to catch
// genuinely malformed input.
func ExtractBase64(text string) string {
	body := markerPattern.ReplaceAllString(text, "")
	body = strings.ReplaceAll(body, "\r", "")
	body = strings.ReplaceAll(body, "\n", "")
	body = strings.ReplaceAll(body, " ", "")
	return body
}

// DecodePrivateKey parses a PEM-encoded PKCS#1 RSA private key.
func DecodePrivateKey(pemText string) (*rsa.PrivateKey, error) {
	der, err := base64.StdEncoding.DecodeString(ExtractBase64(pemText))
	if err != nil {
		return nil, errors.KeyFormat("private key is not valid base64", err)
	}
	key, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, errors.KeyFormat("failed to parse private key", err)
	}
	return key, nil
}

// DecodePublicKey parses a PEM-encoded SubjectPublicKeyInfo RSA public key.
func DecodePublicKey(pemText string) (*rsa.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(ExtractBase64(pemText))
	if err != nil {
		return nil, errors.KeyFormat("public key is not valid base64", err)
	}
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, errors.KeyFormat("failed to parse public key", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.KeyFormat("public key is not an RSA key", nil)
	}
	return rsaPub, nil
}

// EncodePrivateKey serializes key as a PKCS#1 PEM block.
func EncodePrivateKey(key *rsa.PrivateKey) string {
	return wrapPEM(x509.MarshalPKCS1PrivateKey(key), "RSA PRIVATE KEY")
}

// EncodePublicKey serializes pub as a SubjectPublicKeyInfo PEM block.
// MarshalPKIXPublicKey cannot fail for an *rsa.PublicKey.
func EncodePublicKey(pub *rsa.PublicKey) string {
	der, _ := x509.MarshalPKIXPublicKey(pub)
	return wrapPEM(der, "PUBLIC KEY")
}

// wrapPEM base64-encodes der with 64-character line wrapping and surrounds
// it with BEGIN/END markers of the given block type.
func wrapPEM(der []byte, blockType string) string {
	b64 := base64.StdEncoding.EncodeToString(der)

	var sb strings.Builder
	sb.WriteString("-----BEGIN " + blockType + "-----\n")
	for len(b64) > pemLineLength {
		sb.WriteString(b64[:pemLineLength])
		sb.WriteByte('\n')
		b64 = b64[pemLineLength:]
	}
	sb.WriteString(b64)
	sb.WriteString("\n-----END " + blockType + "-----")
	return sb.String()
}
