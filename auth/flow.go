// Package auth implements registration, login, the per-request current user
// and the access guard for protected handlers.
package auth

import (
	"context"
	"errors"
	"fmt"

	"blog-service/database"
	"blog-service/models"
)

// Validation failures shown to the user as-is.
const (
	ErrUsernameRequired  ValidationError = "Username is required"
	ErrPasswordRequired  ValidationError = "Password is required"
	ErrIncorrectUsername ValidationError = "Incorrect username."
	ErrIncorrectPassword ValidationError = "Incorrect password."
)

// ValidationError is a user input problem. It is reported back on the form
// and never changes stored state.
type ValidationError string

// Error satisfies [error].
func (e ValidationError) Error() string { return string(e) }

// AlreadyRegistered is the error for a username that is in use.
func AlreadyRegistered(username string) ValidationError {
	return ValidationError(fmt.Sprintf("User %s is already registered", username))
}

// Register validates the credentials and stores a new user, returning its id.
// Checks run in order and the first failure wins: empty username, empty
// password, username already in use.
func Register(ctx context.Context, q database.Queryer, username, password string) (int64, error) {
	switch {
	case username == "":
		return 0, ErrUsernameRequired
	case password == "":
		return 0, ErrPasswordRequired
	}

	taken, err := database.UsernameTaken(ctx, q, username)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, AlreadyRegistered(username)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return 0, err
	}

	id, err := database.CreateUser(ctx, q, username, hash)
	if errors.Is(err, database.ErrAlreadyExists) {
		// lost a race with a concurrent registration
		return 0, AlreadyRegistered(username)
	}
	return id, err
}

// Login returns the user whose credentials match.
func Login(ctx context.Context, q database.Queryer, username, password string) (models.User, error) {
	user, err := database.FindUserByUsername(ctx, q, username)
	if errors.Is(err, database.ErrNotFound) {
		return models.User{}, ErrIncorrectUsername
	}
	if err != nil {
		return models.User{}, err
	}

	if !CheckPassword(user.Password, password) {
		return models.User{}, ErrIncorrectPassword
	}
	return user, nil
}

// IsValidationError reports whether err is a ValidationError and returns it.
func IsValidationError(err error) (ValidationError, bool) {
	var verr ValidationError
	ok := errors.As(err, &verr)
	return verr, ok
}
