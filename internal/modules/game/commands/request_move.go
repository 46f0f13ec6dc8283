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

type RequestMoveCommand struct {
	EventID  int64
	Username string
}

func (c RequestMoveCommand) Validate() error {
	if c.EventID <= 0 {
		return fmt.Errorf("invalid EventID - '%d'", c.EventID)
	}

	if c.Username == "" {
		return fmt.Errorf("invalid Username - '%s'", c.Username)
	}

	return nil
}

// RequestMoveResult carries the opponent's pending move, or NoMove when
// there is nothing to pick up. Active turns false once the game has been
// declined, aborted or completed - that is how the polling side learns the
// game is over.
type RequestMoveResult struct {
	Move   int
	Active bool
}

type RequestMoveCommandHandler struct {
	events storage.EventStore
	guard  *game.SessionGuard
}

func NewRequestMoveCommandHandler(
	events storage.EventStore,
	guard *game.SessionGuard,
) *RequestMoveCommandHandler {
	return &RequestMoveCommandHandler{events, guard}
}

func (h *RequestMoveCommandHandler) Handle(
	ctx context.Context,
	request RequestMoveCommand,
) (RequestMoveResult, error) {
	h.guard.LockEvent(request.EventID)
	defer h.guard.UnlockEvent(request.EventID)

	event, err := h.events.Get(ctx, request.EventID)
	if errors.Is(err, storage.ErrNotFound) {
		return RequestMoveResult{}, core.NewCommandError(
			fmt.Sprintf("game %d does not exist", request.EventID), err,
		)
	}
	if err != nil {
		return RequestMoveResult{}, err
	}

	result := RequestMoveResult{Move: domain.NoMove, Active: event.Live()}

	move := event.TakeMove(request.Username)
	if move == domain.NoMove {
		return result, nil
	}

	// Persisting the emptied mailbox is what makes delivery exactly-once.
	if err := h.events.Update(ctx, event); err != nil {
		return RequestMoveResult{}, err
	}

	result.Move = move
	return result, nil
}
