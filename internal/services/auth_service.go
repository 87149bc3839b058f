package services

import (
	"context"
	"errors"
	"fmt"

	"hrauth/internal/domain"
	"hrauth/internal/repos"
)

// Accounts is the account store AuthService reads and writes.
type Accounts interface {
	ByEmail(ctx context.Context, email string) (*domain.Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, acc *domain.Account) (string, error)
}

type AuthService struct {
	Accounts Accounts
	Hasher   Hasher
}

type RegisterInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// Login checks the credentials and returns the account's public profile.
// An unknown email and a wrong password fail with the same ErrBadCreds.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Profile, error) {
	acc, err := s.Accounts.ByEmail(ctx, email)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, ErrBadCreds
	}
	if err != nil {
		return nil, internal(msgLoginFailed, fmt.Errorf("lookup %q: %w", email, err))
	}
	ok, err := s.hasher().Verify(acc.Hash, password)
	if err != nil {
		return nil, internal(msgLoginFailed, fmt.Errorf("verify password for %q: %w", email, err))
	}
	if !ok {
		return nil, ErrBadCreds
	}
	p := acc.Profile()
	return &p, nil
}

// Register creates an account and returns its store-assigned id.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	exists, err := s.Accounts.EmailExists(ctx, in.Email)
	if err != nil {
		return "", internal(msgRegisterFailed, fmt.Errorf("existence check %q: %w", in.Email, err))
	}
	if exists {
		return "", ErrEmailTaken
	}

	hash, err := s.hasher().Hash(in.Password)
	if err != nil {
		return "", internal(msgRegisterFailed, fmt.Errorf("hash password: %w", err))
	}

	acc := &domain.Account{
		Email:      in.Email,
		Name:       in.Name,
		Hash:       hash,
		Role:       in.Role,
		Department: in.Department,
	}
	id, err := s.Accounts.Create(ctx, acc)
	if errors.Is(err, repos.ErrDuplicate) {
		// lost a race with a concurrent registration
		return "", ErrEmailTaken
	}
	if err != nil {
		return "", internal(msgRegisterFailed, fmt.Errorf("insert %q: %w", in.Email, err))
	}
	return id, nil
}

func (s *AuthService) hasher() Hasher {
	if s.Hasher == nil {
		return BcryptHasher{}
	}
	return s.Hasher
}
