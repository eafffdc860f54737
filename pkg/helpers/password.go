package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords. A configured salt is applied as an
// HMAC pepper before bcrypt; bcrypt keeps its own per-hash salt on top.
type Hasher struct {
	salt []byte
	cost int
}

func NewHasher(salt string, cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{salt: []byte(salt), cost: cost}
}

// pepper keeps the bcrypt input under its 72-byte limit regardless of the
// plain password length.
func (h *Hasher) pepper(plain string) []byte {
	mac := hmac.New(sha256.New, h.salt)
	mac.Write([]byte(plain))
	sum := mac.Sum(nil)
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum)
	return out
}

// Hash hashes the plain text password using bcrypt
func (h *Hasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(h.pepper(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compares a stored hash with a plain password
func (h *Hasher) Verify(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), h.pepper(plain)) == nil
}
