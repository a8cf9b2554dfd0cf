package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blog-service/models"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

const (
	// ErrNotFound is returned when no user matches a lookup.
	ErrNotFound Error = "not found"
	// ErrAlreadyExists is returned when an insert violates the unique username.
	ErrAlreadyExists Error = "already exists"
)

// Error is an error type returned by the user queries.
type Error string

// Error satisfies [error].
func (e Error) Error() string { return string(e) }

// Queryer is satisfied by *sqlx.DB, *sqlx.Conn and *sqlx.Tx.
type Queryer interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

// FindUserByID returns the user with the given id, or ErrNotFound.
func FindUserByID(ctx context.Context, q Queryer, id int64) (models.User, error) {
	var user models.User
	err := sqlx.GetContext(ctx, q, &user, "SELECT id, username, password FROM user WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return user, ErrNotFound
	}
	if err != nil {
		return user, fmt.Errorf("failed to query user %d: %w", id, err)
	}
	return user, nil
}

// FindUserByUsername returns the user with exactly this username, or ErrNotFound.
func FindUserByUsername(ctx context.Context, q Queryer, username string) (models.User, error) {
	var user models.User
	err := sqlx.GetContext(ctx, q, &user, "SELECT id, username, password FROM user WHERE username = ?", username)
	if errors.Is(err, sql.ErrNoRows) {
		return user, ErrNotFound
	}
	if err != nil {
		return user, fmt.Errorf("failed to query user by username: %w", err)
	}
	return user, nil
}

// UsernameTaken reports whether a user with this username exists.
func UsernameTaken(ctx context.Context, q Queryer, username string) (bool, error) {
	var id int64
	err := q.QueryRowxContext(ctx, "SELECT id FROM user WHERE username = ?", username).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return true, nil
}

// CreateUser inserts a user and returns the id the store assigned. The
// statement runs in autocommit mode. ErrAlreadyExists is returned when the
// username is taken, even if a concurrent registration won the race.
func CreateUser(ctx context.Context, q Queryer, username, passwordHash string) (int64, error) {
	result, err := q.ExecContext(ctx, "INSERT INTO user (username, password) VALUES (?, ?)", username, passwordHash)
	if isUniqueViolation(err) {
		return 0, ErrAlreadyExists
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read user id: %w", err)
	}
	return id, nil
}

// DeleteUser removes the user with the given id. Deleting a missing user is
// not an error.
func DeleteUser(ctx context.Context, q Queryer, id int64) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM user WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
