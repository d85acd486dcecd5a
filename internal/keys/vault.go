package keys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"
	"strings"

	"golang.org/x/crypto/scrypt"

	svcerr "github.com/brooksyott/licensing-server/internal/errors"
)

// sealedPrefix marks private-key columns that hold ciphertext rather
// than plain PEM text.
const sealedPrefix = "enc:v1:"

const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 16
)

// Vault seals private-key PEM text with AES-GCM under a key derived from
// a passphrase via scrypt. With an empty passphrase both Seal and Open
// are pass-throughs, so enabling the vault later leaves existing
// plaintext rows readable.
type Vault struct {
	passphrase string
}

// NewVault creates a vault. An empty passphrase disables sealing.
func NewVault(passphrase string) *Vault {
	return &Vault{passphrase: passphrase}
}

// Enabled reports whether a passphrase is configured.
func (v *Vault) Enabled() bool {
	return v.passphrase != ""
}

// Seal encrypts plain text for storage. Output layout after the prefix:
// base64(salt || nonce || ciphertext).
func (v *Vault) Seal(plain string) (string, error) {
	if !v.Enabled() {
		return plain, nil
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", svcerr.Internal("failed to generate salt", err)
	}

	gcm, err := v.cipher(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", svcerr.Internal("failed to generate nonce", err)
	}

	sealed := gcm.Seal(nil, nonce, []byte(plain), nil)

	buf := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	buf = append(buf, salt...)
	buf = append(buf, nonce...)
	buf = append(buf, sealed...)

	return sealedPrefix + base64.StdEncoding.EncodeToString(buf), nil
}

// Open decrypts stored text. Text without the sealed prefix is returned
// unchanged.
func (v *Vault) Open(stored string) (string, error) {
	if !strings.HasPrefix(stored, sealedPrefix) {
		return stored, nil
	}
	if !v.Enabled() {
		return "", svcerr.Internal("sealed key material but no vault passphrase configured", nil)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil {
		return "", svcerr.Internal("corrupt sealed key material", err)
	}
	if len(raw) < saltLen {
		return "", svcerr.Internal("corrupt sealed key material", nil)
	}

	salt, rest := raw[:saltLen], raw[saltLen:]
	gcm, err := v.cipher(salt)
	if err != nil {
		return "", err
	}
	if len(rest) < gcm.NonceSize() {
		return "", svcerr.Internal("corrupt sealed key material", nil)
	}

	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", svcerr.Internal("failed to open sealed key material", err)
	}

	return string(plain), nil
}

func (v *Vault) cipher(salt []byte) (cipher.AEAD, error) {
	derived, err := scrypt.Key([]byte(v.passphrase), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, svcerr.Internal("scrypt derivation failed", err)
	}
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, svcerr.Internal("cipher initialization failed", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, svcerr.Internal("cipher initialization failed", err)
	}
	return gcm, nil
}
