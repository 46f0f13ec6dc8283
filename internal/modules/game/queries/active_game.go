package queries

import (
	"context"
	"fmt"

	"github.com/eskrenkovic/tictactoe-go/internal/modules/game/domain"
	"github.com/eskrenkovic/tictactoe-go/internal/storage"
)

type ActiveGameQuery struct {
	Username string
}

func (q ActiveGameQuery) Validate() error {
	if q.Username == "" {
		return fmt.Errorf("invalid Username - '%s'", q.Username)
	}

	return nil
}

type ActiveGameQueryHandler struct {
	events storage.EventStore
}

func NewActiveGameQueryHandler(events storage.EventStore) *ActiveGameQueryHandler {
	return &ActiveGameQueryHandler{events}
}

// Handle returns the newest PLAYING event the user participates in, or nil
// when the user is not in a running game. Reconnecting clients use this to
// resume where they left off.
func (h *ActiveGameQueryHandler) Handle(
	ctx context.Context,
	request ActiveGameQuery,
) (*domain.Event, error) {
	return h.events.ActiveGameFor(ctx, request.Username)
}
