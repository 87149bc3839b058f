package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"hrauth/internal/domain"
	"hrauth/internal/repos"
	"hrauth/internal/services"
)

func newAuth(t *testing.T) (*services.AuthService, *repos.TableStore) {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := repos.NewTableStore(db)
	return &services.AuthService{
		Accounts: repos.NewAccountRepo(store),
		Hasher:   services.BcryptHasher{Cost: bcrypt.MinCost},
	}, store
}

// faultyAccounts fails the configured calls.
type faultyAccounts struct {
	byEmail, exists, create error
	account                 *domain.Account
	created                 int
}

func (f *faultyAccounts) ByEmail(context.Context, string) (*domain.Account, error) {
	return f.account, f.byEmail
}

func (f *faultyAccounts) EmailExists(context.Context, string) (bool, error) {
	return false, f.exists
}

func (f *faultyAccounts) Create(context.Context, *domain.Account) (string, error) {
	f.created++
	return "new-id", f.create
}

func kindOf(err error) services.Kind {
	k, _ := services.Classify(err)
	return k
}

func register(email, password string) services.RegisterInput {
	return services.RegisterInput{Name: "A", Email: email, Password: password, Role: "eng", Department: "core"}
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	cases := []struct{ email, password string }{
		{"a@x.com", "p1"},
		{"b@x.com", "correct horse battery staple"},
		{"c@x.com", "ünïcødé-pässwörd"},
	}
	for _, tc := range cases {
		id, err := svc.Register(ctx, register(tc.email, tc.password))
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		p, err := svc.Login(ctx, tc.email, tc.password)
		require.NoError(t, err)
		assert.Equal(t, domain.Profile{Email: tc.email, Role: "eng", Department: "core", Name: "A"}, *p)
	}
}

func TestRegisterStoresHashNotPlaintext(t *testing.T) {
	svc, store := newAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, register("a@x.com", "p1"))
	require.NoError(t, err)

	rows, err := store.Select(ctx, "employee", []string{"password"}, repos.Filter{"email": "a@x.com"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	hash := rows[0]["password"].(string)
	assert.NotEqual(t, "p1", hash)
	assert.True(t, strings.HasPrefix(hash, "$2"), "unexpected hash format: %s", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("p1")))
}

func TestLoginBadCredentialsAreIndistinguishable(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, register("a@x.com", "p1"))
	require.NoError(t, err)

	_, wrongPass := svc.Login(ctx, "a@x.com", "wrong")
	_, unknown := svc.Login(ctx, "nobody@x.com", "p1")
	_, empty := svc.Login(ctx, "a@x.com", "")

	for _, err := range []error{wrongPass, unknown, empty} {
		assert.Equal(t, services.Unauthorized, kindOf(err))
		assert.Equal(t, services.ErrBadCreds, err)
	}
	assert.Equal(t, wrongPass.Error(), unknown.Error())
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	svc, store := newAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, register("a@x.com", "p1"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, register("a@x.com", "other"))
	assert.Equal(t, services.Conflict, kindOf(err))
	assert.Equal(t, "Email already exists", services.ErrEmailTaken.Message)

	rows, err := store.Select(ctx, "employee", []string{"id"}, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "no new row on conflict")

	// the original password still works
	_, err = svc.Login(ctx, "a@x.com", "p1")
	assert.NoError(t, err)
}

func TestRegisterLostRaceIsConflict(t *testing.T) {
	f := &faultyAccounts{create: repos.ErrDuplicate}
	svc := &services.AuthService{Accounts: f, Hasher: services.BcryptHasher{Cost: bcrypt.MinCost}}

	_, err := svc.Register(context.Background(), register("a@x.com", "p1"))
	assert.Equal(t, services.Conflict, kindOf(err))
	assert.Equal(t, 1, f.created)
}

func TestStoreFaultsAreInternal(t *testing.T) {
	boom := errors.New("connection refused")
	ctx := context.Background()
	hasher := services.BcryptHasher{Cost: bcrypt.MinCost}

	tests := []struct {
		name    string
		acc     *faultyAccounts
		run     func(*services.AuthService) error
		wantMsg string
	}{
		{
			name:    "login lookup",
			acc:     &faultyAccounts{byEmail: boom},
			run:     func(s *services.AuthService) error { _, err := s.Login(ctx, "a@x.com", "p1"); return err },
			wantMsg: "Something went wrong",
		},
		{
			name:    "login malformed row",
			acc:     &faultyAccounts{byEmail: repos.ErrMalformedRow},
			run:     func(s *services.AuthService) error { _, err := s.Login(ctx, "a@x.com", "p1"); return err },
			wantMsg: "Something went wrong",
		},
		{
			name:    "register existence check",
			acc:     &faultyAccounts{exists: boom},
			run:     func(s *services.AuthService) error { _, err := s.Register(ctx, register("a@x.com", "p1")); return err },
			wantMsg: "Error registering user",
		},
		{
			name:    "register insert",
			acc:     &faultyAccounts{create: boom},
			run:     func(s *services.AuthService) error { _, err := s.Register(ctx, register("a@x.com", "p1")); return err },
			wantMsg: "Error registering user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(&services.AuthService{Accounts: tt.acc, Hasher: hasher})
			require.Error(t, err)

			var se *services.Error
			require.True(t, errors.As(err, &se))
			assert.Equal(t, services.Internal, se.Kind)
			assert.Equal(t, tt.wantMsg, se.Message)
			assert.NotContains(t, se.Message, "connection refused")
			assert.NotNil(t, se.Err, "cause kept for operators")
		})
	}
}

func TestRegisterHashFailureIsInternal(t *testing.T) {
	f := &faultyAccounts{}
	svc := &services.AuthService{Accounts: f, Hasher: services.BcryptHasher{Cost: bcrypt.MinCost}}

	// bcrypt refuses inputs over 72 bytes
	_, err := svc.Register(context.Background(), register("a@x.com", strings.Repeat("x", 73)))
	assert.Equal(t, services.Internal, kindOf(err))
	assert.Equal(t, 0, f.created)
}

func TestClassifyPlainError(t *testing.T) {
	kind, msg := services.Classify(errors.New("dial tcp: connection refused"))
	assert.Equal(t, services.Internal, kind)
	assert.Equal(t, "Something went wrong", msg)
	assert.Equal(t, "unauthorized", services.Unauthorized.String())

	kind, msg = services.Classify(fmt.Errorf("wrapped: %w", services.ErrEmailTaken))
	assert.Equal(t, services.Conflict, kind)
	assert.Equal(t, "Email already exists", msg)
}

func TestLoginRejectsPasswordExtendedPastBcryptLimit(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	plain := strings.Repeat("a", 72)
	_, err := svc.Register(ctx, register("a@x.com", plain))
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@x.com", plain+"WRONG-SUFFIX")
	assert.Equal(t, services.ErrBadCreds, err)

	p, err := svc.Login(ctx, "a@x.com", plain)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", p.Email)
}

func TestLoginUnusableStoredHashIsInternal(t *testing.T) {
	svc, store := newAuth(t)
	ctx := context.Background()
	_, err := store.Insert(ctx, "employee", repos.Row{
		"email": "legacy@x.com", "password": "p1",
		"name": "L", "role": "eng", "department": "core",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "legacy@x.com", "p1")
	require.Error(t, err)
	var se *services.Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, services.Internal, se.Kind)
	assert.Equal(t, "Something went wrong", se.Message)
	assert.NotEqual(t, services.ErrBadCreds, err)
}
