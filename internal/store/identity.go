package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"dalchat-backend/internal/models"
	"dalchat-backend/internal/snowflake"
)

// CreateUser inserts a prepared user record. The caller allocates the id and
// hashes the password; the raw password never reaches this layer.
func (s *Store) CreateUser(ctx context.Context, user models.User) error {
	if user.Email == "" || user.DisplayName == "" || len(user.Password) == 0 {
		return ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, display_name, password) VALUES(?, ?, ?, ?)",
		user.ID, user.Email, user.DisplayName, user.Password)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

// EmailTaken reports whether an email is already registered. Registration
// checks this up front so the caller gets ErrDuplicateEmail before doing any
// other work; CreateUser still catches the race on the unique index.
func (s *Store) EmailTaken(ctx context.Context, email string) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)", email).Scan(&taken)
	return taken, err
}

// UserByEmail returns the user including the password hash, for login.
func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, display_name, password FROM users WHERE email = ?", email).
		Scan(&user.ID, &user.Email, &user.DisplayName, &user.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	} else if err != nil {
		return models.User{}, err
	}

	user.CreatedAt = snowflake.Timestamp(user.ID)
	return user, nil
}

func (s *Store) UserByID(ctx context.Context, userID int64) (models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, display_name FROM users WHERE id = ?", userID).
		Scan(&user.ID, &user.Email, &user.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	} else if err != nil {
		return models.User{}, err
	}

	user.CreatedAt = snowflake.Timestamp(user.ID)
	return user, nil
}

func (s *Store) UserExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)", userID).Scan(&exists)
	return exists, err
}

// sqlite reports "UNIQUE constraint failed", mysql "Duplicate entry"
func isDuplicateKey(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}
