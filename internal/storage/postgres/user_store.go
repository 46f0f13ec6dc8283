// Package postgres implements the stores on top of PostgreSQL. Schema
// lives in db/migrations and is applied at server start.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eskrenkovic/tictactoe-go/internal/modules/auth/domain"
	"github.com/eskrenkovic/tictactoe-go/internal/storage"

	"github.com/eskrenkovic/tql"
	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

var _ storage.UserStore = (*UserStore)(nil)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db}
}

func (s *UserStore) Get(ctx context.Context, username string) (domain.User, error) {
	const query = `
		SELECT
			username, password_hash, display_name, online
		FROM
			users
		WHERE
			username = $1;`

	user, err := tql.QueryFirst[domain.User](ctx, s.db, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, fmt.Errorf("user %q: %w", username, storage.ErrNotFound)
	}

	return user, err
}

func (s *UserStore) Exists(ctx context.Context, username string) (bool, error) {
	const query = `
		SELECT
			count(username)
		FROM
			users
		WHERE
			username = $1;`

	count, err := tql.QueryFirst[int](ctx, s.db, query, username)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (s *UserStore) Create(ctx context.Context, user domain.User) error {
	const stmt = `
		INSERT INTO
			users (username, password_hash, display_name, online)
		VALUES
			(:username, :password_hash, :display_name, :online);`

	if _, err := tql.Exec(ctx, s.db, stmt, user); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
			return fmt.Errorf("user %q: %w", user.Username, storage.ErrAlreadyExists)
		}

		return err
	}

	return nil
}

func (s *UserStore) Update(ctx context.Context, user domain.User) error {
	const stmt = `
		UPDATE
			users
		SET
			password_hash = :password_hash,
			display_name = :display_name,
			online = :online
		WHERE
			username = :username;`

	result, err := tql.Exec(ctx, s.db, stmt, user)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return fmt.Errorf("user %q: %w", user.Username, storage.ErrNotFound)
	}

	return nil
}
