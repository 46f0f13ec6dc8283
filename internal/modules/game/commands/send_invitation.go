package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/eskrenkovic/tictactoe-go/internal/modules/core"
	"github.com/eskrenkovic/tictactoe-go/internal/modules/game"
	"github.com/eskrenkovic/tictactoe-go/internal/modules/game/domain"
	"github.com/eskrenkovic/tictactoe-go/internal/storage"
)

type SendInvitationCommand struct {
	Sender   string
	Opponent string
}

func (c SendInvitationCommand) Validate() error {
	if c.Sender == "" {
		return fmt.Errorf("invalid Sender - '%s'", c.Sender)
	}

	if c.Opponent == "" {
		return fmt.Errorf("invalid Opponent - '%s'", c.Opponent)
	}

	if c.Sender == c.Opponent {
		return fmt.Errorf("cannot invite yourself")
	}

	return nil
}

type SendInvitationCommandHandler struct {
	users  storage.UserStore
	events storage.EventStore
	guard  *game.SessionGuard
}

func NewSendInvitationCommandHandler(
	users storage.UserStore,
	events storage.EventStore,
	guard *game.SessionGuard,
) *SendInvitationCommandHandler {
	return &SendInvitationCommandHandler{users, events, guard}
}

func (h *SendInvitationCommandHandler) Handle(
	ctx context.Context,
	request SendInvitationCommand,
) (core.Unit, error) {
	h.guard.LockPairing()
	defer h.guard.UnlockPairing()

	opponent, err := h.users.Get(ctx, request.Opponent)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Unit{}, core.NewCommandError(
			fmt.Sprintf("user %q does not exist", request.Opponent), err,
		)
	}
	if err != nil {
		return core.Unit{}, err
	}

	if !opponent.Online {
		return core.Unit{}, core.NewCommandError(
			fmt.Sprintf("user %q is not online", request.Opponent), nil,
		)
	}

	active, err := h.events.HasActiveGame(ctx, request.Sender)
	if err != nil {
		return core.Unit{}, err
	}

	if active {
		return core.Unit{}, core.NewCommandError(
			fmt.Sprintf("user %q is already in a game", request.Sender), nil,
		)
	}

	invitation := domain.NewInvitation(request.Sender, request.Opponent)
	if _, err := h.events.Create(ctx, invitation); err != nil {
		return core.Unit{}, err
	}

	return core.Unit{}, nil
}
