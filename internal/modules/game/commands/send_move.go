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

type SendMoveCommand struct {
	EventID  int64
	Username string
	Move     int
}

func (c SendMoveCommand) Validate() error {
	if c.EventID <= 0 {
		return fmt.Errorf("invalid EventID - '%d'", c.EventID)
	}

	if c.Username == "" {
		return fmt.Errorf("invalid Username - '%s'", c.Username)
	}

	if c.Move < domain.MinCell || c.Move > domain.MaxCell {
		return fmt.Errorf("move %d is outside the board", c.Move)
	}

	return nil
}

type SendMoveCommandHandler struct {
	events storage.EventStore
	guard  *game.SessionGuard
}

func NewSendMoveCommandHandler(
	events storage.EventStore,
	guard *game.SessionGuard,
) *SendMoveCommandHandler {
	return &SendMoveCommandHandler{events, guard}
}

func (h *SendMoveCommandHandler) Handle(
	ctx context.Context,
	request SendMoveCommand,
) (core.Unit, error) {
	h.guard.LockEvent(request.EventID)
	defer h.guard.UnlockEvent(request.EventID)

	event, err := h.events.Get(ctx, request.EventID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Unit{}, core.NewCommandError(
			fmt.Sprintf("game %d does not exist", request.EventID), err,
		)
	}
	if err != nil {
		return core.Unit{}, err
	}

	if event.Status != domain.StatusPlaying {
		return core.Unit{}, core.NewCommandError(
			fmt.Sprintf("cannot send a move in a game with status %s", event.Status), nil,
		)
	}

	if err := event.PostMove(request.Move, request.Username); err != nil {
		return core.Unit{}, core.NewCommandError(err.Error(), err)
	}

	if err := h.events.Update(ctx, event); err != nil {
		return core.Unit{}, err
	}

	return core.Unit{}, nil
}
