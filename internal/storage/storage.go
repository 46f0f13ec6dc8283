// Package storage defines the durable collaborator interfaces the protocol
// engine runs against. Two implementations exist: postgres and memory.
package storage

import (
	"context"
	"errors"

	authdomain "github.com/eskrenkovic/tictactoe-go/internal/modules/auth/domain"
	gamedomain "github.com/eskrenkovic/tictactoe-go/internal/modules/game/domain"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// UserStore is the user directory - player accounts keyed by username.
type UserStore interface {
	Get(ctx context.Context, username string) (authdomain.User, error)
	Exists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user authdomain.User) error
	Update(ctx context.Context, user authdomain.User) error
}

// EventStore holds session records keyed by id. Implementations must be
// safe for concurrent use; per-record read-modify-write atomicity is the
// caller's responsibility (see game.SessionGuard).
type EventStore interface {
	Get(ctx context.Context, id int64) (gamedomain.Event, error)

	// Create assigns and returns the record's id.
	Create(ctx context.Context, event gamedomain.Event) (int64, error)
	Update(ctx context.Context, event gamedomain.Event) error

	// InvitationFor returns the newest PENDING event addressed to username,
	// or nil when there is none.
	InvitationFor(ctx context.Context, username string) (*gamedomain.Event, error)

	// InvitationResponseFor returns the newest ACCEPTED or DECLINED event
	// sent by username, or nil when there is none.
	InvitationResponseFor(ctx context.Context, username string) (*gamedomain.Event, error)

	// HasActiveGame reports whether username participates in an event with
	// status ACCEPTED or PLAYING.
	HasActiveGame(ctx context.Context, username string) (bool, error)

	// ActiveGameFor returns the newest PLAYING event username participates
	// in, or nil when there is none.
	ActiveGameFor(ctx context.Context, username string) (*gamedomain.Event, error)

	// AvailableOpponents lists online users, excluding username and anyone
	// participating in a PENDING, ACCEPTED or PLAYING event.
	AvailableOpponents(ctx context.Context, username string) ([]authdomain.User, error)

	// Promote persists an event that has entered PLAYING and marks every
	// other PENDING, ACCEPTED or PLAYING event its sender participates in
	// as ABORTED. The two writes land together or not at all - a fault
	// must never leave the siblings aborted with the game unstarted.
	Promote(ctx context.Context, event gamedomain.Event) error
}
