package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// saltSeparator joins salt and secret before hashing. Changing it (or the
// key derivation below) invalidates every stored digest, so it is fixed.
const saltSeparator = "/"

// tokenEntropyBytes is the amount of raw entropy behind salts and session
// tokens, before base64 encoding.
const tokenEntropyBytes = 128

var ErrSecretKeyMissing = errors.New("auth secret key is not configured")

// Hasher turns (salt, secret) pairs into hex-encoded HMAC-SHA256 digests.
// The same pair always yields the same digest, which is what makes stored
// password digests and session tokens verifiable across restarts.
type Hasher struct {
	key []byte
}

// NewHasher derives the credential hashing key from the process-wide secret.
func NewHasher(secretKey string) (*Hasher, error) {
	key, err := deriveKey(secretKey, "jobdesk/credentials/v1")
	if err != nil {
		return nil, err
	}
	return &Hasher{key: key}, nil
}

// Hash computes the digest for a (salt, secret) pair.
func (h *Hasher) Hash(salt, secret string) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(salt))
	mac.Write([]byte(saltSeparator))
	mac.Write([]byte(secret))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the digest and compares it in constant time.
func (h *Hasher) Verify(salt, secret, digest string) bool {
	expected := h.Hash(salt, secret)
	return hmac.Equal([]byte(expected), []byte(digest))
}

// RandomToken returns a fresh base64-encoded random string. It backs both
// password salts and session-token entropy.
func RandomToken() (string, error) {
	b := make([]byte, tokenEntropyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DeriveCSRFKey returns a 32-byte key for the CSRF layer, independent of the
// credential hashing key even though both come from the same secret.
func DeriveCSRFKey(secretKey string) ([]byte, error) {
	return deriveKey(secretKey, "jobdesk/csrf/v1")
}

func deriveKey(secretKey, info string) ([]byte, error) {
	if secretKey == "" {
		return nil, ErrSecretKeyMissing
	}
	r := hkdf.New(sha256.New, []byte(secretKey), nil, []byte(info))
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}
