package helpers

import (
	"crypto/rand"
	"encoding/base64"
)

// Redis key builders for single-use security tokens

// KeyConfirmToken maps an email-confirmation token to a user id
func KeyConfirmToken(t string) string { return "confirm:token:" + t }

// KeyResetToken maps a password-reset token to a user id
func KeyResetToken(t string) string { return "pwd:reset:token:" + t }

// KeySession is the Redis hash holding the active session for a user
func KeySession(uid string) string { return "user:session:" + uid }

// GenToken returns n random bytes as a URL-safe string
func GenToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
