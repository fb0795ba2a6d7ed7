package library

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidPIN = errors.New("invalid PIN")

// HashPIN returns a bcrypt hash suitable for storing in a PINBook.
func HashPIN(pin string) (string, error) {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return "", fmt.Errorf("PIN cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash PIN: %w", err)
	}
	return string(hash), nil
}

// PINBook maps patron IDs to bcrypt hashes. Patrons without an entry are not
// protected.
type PINBook map[string]string

// Protected reports whether patronID has a PIN.
func (b PINBook) Protected(patronID string) bool {
	_, ok := b[patronID]
	return ok
}

// Verify checks pin against the stored hash.
func (b PINBook) Verify(patronID, pin string) error {
	hash, ok := b[patronID]
	if !ok {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(strings.TrimSpace(pin))); err != nil {
		return ErrInvalidPIN
	}
	return nil
}
