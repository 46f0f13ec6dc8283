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

type AcknowledgeResponseCommand struct {
	EventID  int64
	Username string
}

func (c AcknowledgeResponseCommand) Validate() error {
	if c.EventID <= 0 {
		return fmt.Errorf("invalid EventID - '%d'", c.EventID)
	}

	if c.Username == "" {
		return fmt.Errorf("invalid Username - '%s'", c.Username)
	}

	return nil
}

type AcknowledgeResponseResult struct {
	Status domain.EventStatus
}

type AcknowledgeResponseCommandHandler struct {
	events storage.EventStore
	guard  *game.SessionGuard
}

func NewAcknowledgeResponseCommandHandler(
	events storage.EventStore,
	guard *game.SessionGuard,
) *AcknowledgeResponseCommandHandler {
	return &AcknowledgeResponseCommandHandler{events, guard}
}

// Handle consumes the opponent's answer to an invitation. When the answer
// was an accept, the promote to PLAYING and the bulk abort of the sender's
// other live sessions land as a single store operation - a player is only
// ever in one active game, and a store fault cannot leave the siblings
// aborted with the game unstarted. The whole sequence runs under the
// pairing lock so no concurrent reader observes the intermediate state.
func (h *AcknowledgeResponseCommandHandler) Handle(
	ctx context.Context,
	request AcknowledgeResponseCommand,
) (AcknowledgeResponseResult, error) {
	h.guard.LockPairing()
	defer h.guard.UnlockPairing()

	h.guard.LockEvent(request.EventID)
	defer h.guard.UnlockEvent(request.EventID)

	event, err := h.events.Get(ctx, request.EventID)
	if errors.Is(err, storage.ErrNotFound) {
		return AcknowledgeResponseResult{}, core.NewCommandError(
			fmt.Sprintf("event %d does not exist", request.EventID), err,
		)
	}
	if err != nil {
		return AcknowledgeResponseResult{}, err
	}

	if err := event.Acknowledge(request.Username); err != nil {
		return AcknowledgeResponseResult{}, core.NewCommandError(err.Error(), err)
	}

	if event.Status == domain.StatusPlaying {
		if err := h.events.Promote(ctx, event); err != nil {
			return AcknowledgeResponseResult{}, err
		}
	} else if err := h.events.Update(ctx, event); err != nil {
		return AcknowledgeResponseResult{}, err
	}

	return AcknowledgeResponseResult{Status: event.Status}, nil
}
