// Package storage is the persistence gateway for users, questions and
// questionnaire submissions, backed by Postgres through sqlx.
package storage

import (
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrUserNotFound is returned when no user exists for the given key.
	ErrUserNotFound = errors.New("user not found")
	// ErrQuestionNotFound is returned when no question exists for the given id.
	ErrQuestionNotFound = errors.New("question not found")
)

// Gateway bundles all database operations behind one handle.
type Gateway struct {
	db *sqlx.DB
}

// New wraps an open database handle.
func New(db *sqlx.DB) *Gateway {
	return &Gateway{db: db}
}
