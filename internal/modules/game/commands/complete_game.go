package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/eskrenkovic/tictactoe-go/internal/modules/core"
	"github.com/eskrenkovic/tictactoe-go/internal/modules/game"
	"github.com/eskrenkovic/tictactoe-go/internal/storage"
)

type CompleteGameCommand struct {
	EventID  int64
	Username string
}

func (c CompleteGameCommand) Validate() error {
	if c.EventID <= 0 {
		return fmt.Errorf("invalid EventID - '%d'", c.EventID)
	}

	if c.Username == "" {
		return fmt.Errorf("invalid Username - '%s'", c.Username)
	}

	return nil
}

type CompleteGameCommandHandler struct {
	events storage.EventStore
	guard  *game.SessionGuard
}

func NewCompleteGameCommandHandler(
	events storage.EventStore,
	guard *game.SessionGuard,
) *CompleteGameCommandHandler {
	return &CompleteGameCommandHandler{events, guard}
}

func (h *CompleteGameCommandHandler) Handle(
	ctx context.Context,
	request CompleteGameCommand,
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

	if err := event.Complete(request.Username); err != nil {
		return core.Unit{}, core.NewCommandError(err.Error(), err)
	}

	if err := h.events.Update(ctx, event); err != nil {
		return core.Unit{}, err
	}

	return core.Unit{}, nil
}
