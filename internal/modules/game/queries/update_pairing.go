package queries

import (
	"context"
	"fmt"

	authdomain "github.com/eskrenkovic/tictactoe-go/internal/modules/auth/domain"
	"github.com/eskrenkovic/tictactoe-go/internal/modules/game/domain"
	"github.com/eskrenkovic/tictactoe-go/internal/storage"
)

type UpdatePairingQuery struct {
	Username string
}

func (q UpdatePairingQuery) Validate() error {
	if q.Username == "" {
		return fmt.Errorf("invalid Username - '%s'", q.Username)
	}

	return nil
}

// PairingResult is one matchmaking snapshot for a logged-in user: who is
// free to play, the newest invitation waiting for the user's answer, and
// the newest answer to an invitation the user sent.
type PairingResult struct {
	AvailableUsers     []authdomain.User
	Invitation         *domain.Event
	InvitationResponse *domain.Event
}

type UpdatePairingQueryHandler struct {
	events storage.EventStore
}

func NewUpdatePairingQueryHandler(events storage.EventStore) *UpdatePairingQueryHandler {
	return &UpdatePairingQueryHandler{events}
}

func (h *UpdatePairingQueryHandler) Handle(
	ctx context.Context,
	request UpdatePairingQuery,
) (PairingResult, error) {
	available, err := h.events.AvailableOpponents(ctx, request.Username)
	if err != nil {
		return PairingResult{}, err
	}

	invitation, err := h.events.InvitationFor(ctx, request.Username)
	if err != nil {
		return PairingResult{}, err
	}

	invitationResponse, err := h.events.InvitationResponseFor(ctx, request.Username)
	if err != nil {
		return PairingResult{}, err
	}

	return PairingResult{
		AvailableUsers:     available,
		Invitation:         invitation,
		InvitationResponse: invitationResponse,
	}, nil
}
