package repos

import (
	"context"
	"errors"
	"fmt"

	"hrauth/internal/domain"
)

const employeeTable = "employee"

var (
	ErrNotFound     = errors.New("account not found")
	ErrMalformedRow = errors.New("malformed account row")
)

// Tables is the row-level contract the account repo needs from a store.
type Tables interface {
	Select(ctx context.Context, table string, columns []string, filter Filter) ([]Row, error)
	Insert(ctx context.Context, table string, row Row) ([]Row, error)
}

type AccountRepo struct{ Tables Tables }

func NewAccountRepo(t Tables) *AccountRepo { return &AccountRepo{Tables: t} }

// ByEmail returns the first account whose email matches exactly.
func (r *AccountRepo) ByEmail(ctx context.Context, email string) (*domain.Account, error) {
	rows, err := r.Tables.Select(ctx, employeeTable, nil, Filter{"email": email})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return accountFromRow(rows[0])
}

func (r *AccountRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	rows, err := r.Tables.Select(ctx, employeeTable, []string{"id"}, Filter{"email": email})
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// Create stores acc and returns the id the store assigned to it.
func (r *AccountRepo) Create(ctx context.Context, acc *domain.Account) (string, error) {
	rows, err := r.Tables.Insert(ctx, employeeTable, Row{
		"name":       acc.Name,
		"email":      acc.Email,
		"password":   acc.Hash,
		"role":       acc.Role,
		"department": acc.Department,
	})
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: insert returned no rows", ErrMalformedRow)
	}
	id, err := field(rows[0], "id")
	if err != nil {
		return "", err
	}
	acc.ID = id
	return id, nil
}

func accountFromRow(row Row) (*domain.Account, error) {
	var a domain.Account
	for col, dst := range map[string]*string{
		"id":         &a.ID,
		"email":      &a.Email,
		"name":       &a.Name,
		"password":   &a.Hash,
		"role":       &a.Role,
		"department": &a.Department,
	} {
		v, err := field(row, col)
		if err != nil {
			return nil, err
		}
		*dst = v
	}
	return &a, nil
}

func field(row Row, col string) (string, error) {
	v, ok := row[col]
	if !ok {
		return "", fmt.Errorf("%w: missing %s", ErrMalformedRow, col)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T", ErrMalformedRow, col, v)
	}
	return s, nil
}
