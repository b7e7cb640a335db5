package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/poker-club/internal/model"
	"github.com/iliyamo/poker-club/internal/utils"
)

const userColumns = "id, email, password_hash, role, is_active, created_at, updated_at"

type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create hashes password and inserts an account.  A taken email yields
// ErrConflict.
func (r *UserRepo) Create(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	return insertID(r.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role) VALUES (?, ?, ?)",
		normalizeEmail(email), hash, role))
}

// EnsureAdmin creates the bootstrap administrator unless the email is
// already registered.  It reports whether a row was inserted.
func (r *UserRepo) EnsureAdmin(ctx context.Context, email, password string, cost int) (bool, error) {
	if _, err := r.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if _, err := r.Create(ctx, email, password, model.RoleAdmin, cost); err != nil {
		if errors.Is(err, ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := getOne(ctx, r.db, &u, "SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", normalizeEmail(email)); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	if err := getOne(ctx, r.db, &u, "SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id); err != nil {
		return nil, err
	}
	return &u, nil
}
