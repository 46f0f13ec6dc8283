package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	authdomain "github.com/eskrenkovic/tictactoe-go/internal/modules/auth/domain"
	"github.com/eskrenkovic/tictactoe-go/internal/modules/core"
	"github.com/eskrenkovic/tictactoe-go/internal/modules/game/domain"
	"github.com/eskrenkovic/tictactoe-go/internal/storage"

	"github.com/eskrenkovic/tql"
)

var _ storage.EventStore = (*EventStore)(nil)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db}
}

func (s *EventStore) Get(ctx context.Context, id int64) (domain.Event, error) {
	const query = `
		SELECT
			id, sender, opponent, status, turn, move, created_at
		FROM
			events
		WHERE
			id = $1;`

	event, err := tql.QueryFirst[domain.Event](ctx, s.db, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, fmt.Errorf("event %d: %w", id, storage.ErrNotFound)
	}

	return event, err
}

func (s *EventStore) Create(ctx context.Context, event domain.Event) (int64, error) {
	const stmt = `
		INSERT INTO
			events (sender, opponent, status, turn, move)
		VALUES
			($1, $2, $3, $4, $5)
		RETURNING
			id;`

	return tql.QueryFirst[int64](
		ctx,
		s.db,
		stmt,
		event.Sender,
		event.Opponent,
		string(event.Status),
		event.Turn,
		event.Move,
	)
}

func (s *EventStore) Update(ctx context.Context, event domain.Event) error {
	const stmt = `
		UPDATE
			events
		SET
			status = $2, turn = $3, move = $4
		WHERE
			id = $1;`

	result, err := tql.Exec(ctx, s.db, stmt, event.ID, string(event.Status), event.Turn, event.Move)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return fmt.Errorf("event %d: %w", event.ID, storage.ErrNotFound)
	}

	return nil
}

func (s *EventStore) InvitationFor(ctx context.Context, username string) (*domain.Event, error) {
	const query = `
		SELECT
			id, sender, opponent, status, turn, move, created_at
		FROM
			events
		WHERE
			opponent = $1 AND status = 'PENDING'
		ORDER BY
			id DESC
		LIMIT 1;`

	return queryOptional(ctx, s.db, query, username)
}

func (s *EventStore) InvitationResponseFor(ctx context.Context, username string) (*domain.Event, error) {
	const query = `
		SELECT
			id, sender, opponent, status, turn, move, created_at
		FROM
			events
		WHERE
			sender = $1 AND status IN ('ACCEPTED', 'DECLINED')
		ORDER BY
			id DESC
		LIMIT 1;`

	return queryOptional(ctx, s.db, query, username)
}

func (s *EventStore) HasActiveGame(ctx context.Context, username string) (bool, error) {
	const query = `
		SELECT
			count(id)
		FROM
			events
		WHERE
			(sender = $1 OR opponent = $1)
			AND status IN ('ACCEPTED', 'PLAYING');`

	count, err := tql.QueryFirst[int](ctx, s.db, query, username)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (s *EventStore) AvailableOpponents(ctx context.Context, username string) ([]authdomain.User, error) {
	const query = `
		SELECT
			u.username, u.password_hash, u.display_name, u.online
		FROM
			users u
		WHERE
			u.online = true
			AND u.username <> $1
			AND NOT EXISTS (
				SELECT
					1
				FROM
					events e
				WHERE
					(e.sender = u.username OR e.opponent = u.username)
					AND e.status IN ('PENDING', 'ACCEPTED', 'PLAYING')
			)
		ORDER BY
			u.username;`

	return tql.Query[authdomain.User](ctx, s.db, query, username)
}

func (s *EventStore) ActiveGameFor(ctx context.Context, username string) (*domain.Event, error) {
	const query = `
		SELECT
			id, sender, opponent, status, turn, move, created_at
		FROM
			events
		WHERE
			(sender = $1 OR opponent = $1) AND status = 'PLAYING'
		ORDER BY
			id DESC
		LIMIT 1;`

	return queryOptional(ctx, s.db, query, username)
}

func (s *EventStore) Promote(ctx context.Context, event domain.Event) error {
	return core.Tx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		const abortStmt = `
			UPDATE
				events
			SET
				status = 'ABORTED'
			WHERE
				(sender = $1 OR opponent = $1)
				AND status IN ('PENDING', 'ACCEPTED', 'PLAYING')
				AND id <> $2;`

		if _, err := tql.Exec(ctx, tx, abortStmt, event.Sender, event.ID); err != nil {
			return err
		}

		const updateStmt = `
			UPDATE
				events
			SET
				status = $2, turn = $3, move = $4
			WHERE
				id = $1;`

		result, err := tql.Exec(ctx, tx, updateStmt, event.ID, string(event.Status), event.Turn, event.Move)
		if err != nil {
			return err
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}

		if affected == 0 {
			return fmt.Errorf("event %d: %w", event.ID, storage.ErrNotFound)
		}

		return nil
	}, core.WithIsolationLevel(sql.LevelSerializable))
}

func queryOptional(ctx context.Context, db *sql.DB, query string, params ...any) (*domain.Event, error) {
	event, err := tql.QueryFirst[domain.Event](ctx, db, query, params...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &event, nil
}
