package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "jobboard/internal/errors"
)

// Store groups the repositories that share one database handle. A Store handed to a
// WithTransaction callback is the transactional context: every repository it returns
// runs on that transaction.
type Store interface {
	Users() UserRepository
	Companies() CompanyRepository
	// WithTransaction runs fn in a transaction and commits when fn returns nil.
	// Called on a transactional Store it nests through a savepoint.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type store struct {
	db *gorm.DB
}

// NewStore creates a Store backed by db.
func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Users() UserRepository {
	return NewUserRepository(s.db)
}

func (s *store) Companies() CompanyRepository {
	return NewCompanyRepository(s.db)
}

// WithTransaction executes a function within a database transaction.
func (s *store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &store{db: tx})
	})
}

// translateWriteError maps unique violations to ErrEmailAlreadyExists, the only unique
// column users carry. Drivers that do not implement gorm's error translation are
// recognised by their messages.
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return apperrors.ErrEmailAlreadyExists
	}
	return err
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || // mysql 1062
		strings.Contains(msg, "23505") || // postgres unique_violation
		strings.Contains(msg, "UNIQUE constraint failed") // sqlite
}
