package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordLen is the number of bytes bcrypt reads; anything past it
// would be silently ignored.
const maxPasswordLen = 72

type Hasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches hash. A non-nil error means
	// the stored hash itself is unusable.
	Verify(hash, password string) (bool, error)
}

// BcryptHasher salts every hash with a fresh random salt.
type BcryptHasher struct{ Cost int }

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h BcryptHasher) Verify(hash, password string) (bool, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return false, err
	}
	if len(password) > maxPasswordLen {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
