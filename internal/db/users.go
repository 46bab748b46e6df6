package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type CreateUserInput struct {
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
}

// CreateUser inserts a user. A duplicate username or email yields ErrConflict.
func (db *DB) CreateUser(input CreateUserInput) (*User, error) {
	createdAt := FormatTime(time.Now())
	res, err := db.Exec(`
		INSERT INTO users (username, email, hashed_password, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?)`, input.Username, input.Email, input.PasswordHash, input.IsAdmin, createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("creating user %q: %w", input.Username, ErrConflict)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading user id: %w", err)
	}
	return &User{
		ID:        id,
		Username:  input.Username,
		Email:     input.Email,
		IsAdmin:   input.IsAdmin,
		CreatedAt: createdAt,
	}, nil
}

// GetUserByUsername returns the user and its password hash.
func (db *DB) GetUserByUsername(username string) (*User, string, error) {
	u := &User{}
	var passwordHash string
	err := db.QueryRow(`
		SELECT id, username, email, hashed_password, is_admin, created_at
		FROM users WHERE username = ?`, username).Scan(
		&u.ID, &u.Username, &u.Email, &passwordHash, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting user %q: %w", username, err)
	}
	return u, passwordHash, nil
}

func (db *DB) GetUserByID(id int64) (*User, error) {
	u := &User{}
	err := db.QueryRow(`
		SELECT id, username, email, is_admin, created_at
		FROM users WHERE id = ?`, id).Scan(
		&u.ID, &u.Username, &u.Email, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}
	return u, nil
}

// DeleteUser removes a user; used by the CLI and tests. Missing users yield ErrNotFound.
func (db *DB) DeleteUser(id int64) error {
	res, err := db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
