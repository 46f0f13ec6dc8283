package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	authcommands "github.com/eskrenkovic/tictactoe-go/internal/modules/auth/commands"
	authdomain "github.com/eskrenkovic/tictactoe-go/internal/modules/auth/domain"
	"github.com/eskrenkovic/tictactoe-go/internal/modules/core"
	gamecommands "github.com/eskrenkovic/tictactoe-go/internal/modules/game/commands"
	gamedomain "github.com/eskrenkovic/tictactoe-go/internal/modules/game/domain"
	gamequeries "github.com/eskrenkovic/tictactoe-go/internal/modules/game/queries"
	"github.com/eskrenkovic/tictactoe-go/internal/protocol"

	"github.com/eskrenkovic/mediator-go"
)

// dispatcher maps one connection's requests to commands and queries. It
// owns the connection's identity: the authenticated username and, once a
// game engages, the event id the connection plays in.
type dispatcher struct {
	username string
	gameID   int64
}

func (d *dispatcher) Handle(ctx context.Context, request *protocol.Request) protocol.ServerResponse {
	if request == nil || request.Type == "" {
		return protocol.Failure("Request cannot be null")
	}

	if d.username == "" && request.Type != protocol.Login && request.Type != protocol.Register {
		return protocol.Failure("login required")
	}

	switch request.Type {
	case protocol.Register:
		return d.register(ctx, request.Data)
	case protocol.Login:
		return d.login(ctx, request.Data)
	case protocol.UpdatePairing:
		return d.updatePairing(ctx)
	case protocol.SendInvitation:
		return d.sendInvitation(ctx, request.Data)
	case protocol.AcceptInvitation:
		return d.acceptInvitation(ctx, request.Data)
	case protocol.DeclineInvitation:
		return d.declineInvitation(ctx, request.Data)
	case protocol.AcknowledgeResponse:
		return d.acknowledgeResponse(ctx, request.Data)
	case protocol.SendMove:
		return d.sendMove(ctx, request.Data)
	case protocol.RequestMove:
		return d.requestMove(ctx)
	case protocol.AbortGame:
		return d.abortGame(ctx)
	case protocol.CompleteGame:
		return d.completeGame(ctx)
	default:
		return protocol.Failure(fmt.Sprintf("unsupported request type: %s", request.Type))
	}
}

func (d *dispatcher) register(ctx context.Context, data string) protocol.ServerResponse {
	var user protocol.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return protocol.Failure("malformed user payload")
	}

	command := authcommands.RegisterCommand{
		Username:    user.Username,
		Password:    user.Password,
		DisplayName: user.DisplayName,
	}

	if _, err := mediator.Send[authcommands.RegisterCommand, core.Unit](ctx, command); err != nil {
		return failureFrom(err)
	}

	return protocol.Success(fmt.Sprintf("user %s registered", user.Username))
}

func (d *dispatcher) login(ctx context.Context, data string) protocol.ServerResponse {
	var user protocol.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return protocol.Failure("malformed user payload")
	}

	command := authcommands.LoginCommand{
		Username: user.Username,
		Password: user.Password,
	}

	if _, err := mediator.Send[authcommands.LoginCommand, core.Unit](ctx, command); err != nil {
		return failureFrom(err)
	}

	d.username = user.Username
	d.gameID = 0

	// A reconnecting player rejoins their running game, if any.
	query := gamequeries.ActiveGameQuery{Username: user.Username}
	game, err := mediator.Send[gamequeries.ActiveGameQuery, *gamedomain.Event](ctx, query)
	if err != nil {
		return failureFrom(err)
	}
	if game != nil {
		d.gameID = game.ID
	}

	return protocol.Success(fmt.Sprintf("user %s logged in", user.Username))
}

func (d *dispatcher) updatePairing(ctx context.Context) protocol.ServerResponse {
	query := gamequeries.UpdatePairingQuery{Username: d.username}

	result, err := mediator.Send[gamequeries.UpdatePairingQuery, gamequeries.PairingResult](ctx, query)
	if err != nil {
		return failureFrom(err)
	}

	return protocol.PairingResponse{
		Response:           protocol.Success("pairing updated"),
		AvailableUsers:     core.Map(result.AvailableUsers, toWireUser),
		Invitation:         toWireEvent(result.Invitation),
		InvitationResponse: toWireEvent(result.InvitationResponse),
	}
}

func (d *dispatcher) sendInvitation(ctx context.Context, data string) protocol.ServerResponse {
	var opponent string
	if err := json.Unmarshal([]byte(data), &opponent); err != nil {
		return protocol.Failure("malformed opponent username")
	}

	command := gamecommands.SendInvitationCommand{
		Sender:   d.username,
		Opponent: opponent,
	}

	if _, err := mediator.Send[gamecommands.SendInvitationCommand, core.Unit](ctx, command); err != nil {
		return failureFrom(err)
	}

	return protocol.Success(fmt.Sprintf("invitation sent to %s", opponent))
}

func (d *dispatcher) acceptInvitation(ctx context.Context, data string) protocol.ServerResponse {
	eventID, err := parseEventID(data)
	if err != nil {
		return protocol.Failure("malformed event id")
	}

	command := gamecommands.AcceptInvitationCommand{
		EventID:  eventID,
		Username: d.username,
	}

	if _, err := mediator.Send[gamecommands.AcceptInvitationCommand, core.Unit](ctx, command); err != nil {
		return failureFrom(err)
	}

	d.gameID = eventID

	return protocol.Success("invitation accepted")
}

func (d *dispatcher) declineInvitation(ctx context.Context, data string) protocol.ServerResponse {
	eventID, err := parseEventID(data)
	if err != nil {
		return protocol.Failure("malformed event id")
	}

	command := gamecommands.DeclineInvitationCommand{
		EventID:  eventID,
		Username: d.username,
	}

	if _, err := mediator.Send[gamecommands.DeclineInvitationCommand, core.Unit](ctx, command); err != nil {
		return failureFrom(err)
	}

	return protocol.Success("invitation declined")
}

func (d *dispatcher) acknowledgeResponse(ctx context.Context, data string) protocol.ServerResponse {
	eventID, err := parseEventID(data)
	if err != nil {
		return protocol.Failure("malformed event id")
	}

	command := gamecommands.AcknowledgeResponseCommand{
		EventID:  eventID,
		Username: d.username,
	}

	result, err := mediator.Send[gamecommands.AcknowledgeResponseCommand, gamecommands.AcknowledgeResponseResult](
		ctx,
		command,
	)
	if err != nil {
		return failureFrom(err)
	}

	if result.Status == gamedomain.StatusPlaying {
		d.gameID = eventID
	}

	return protocol.Success(fmt.Sprintf("invitation response acknowledged, game is %s", result.Status))
}

func (d *dispatcher) sendMove(ctx context.Context, data string) protocol.ServerResponse {
	if d.gameID == 0 {
		return protocol.Failure("no active game")
	}

	var move int
	if err := json.Unmarshal([]byte(data), &move); err != nil {
		return protocol.Failure("malformed move payload")
	}

	command := gamecommands.SendMoveCommand{
		EventID:  d.gameID,
		Username: d.username,
		Move:     move,
	}

	if _, err := mediator.Send[gamecommands.SendMoveCommand, core.Unit](ctx, command); err != nil {
		return failureFrom(err)
	}

	return protocol.Success("move sent")
}

func (d *dispatcher) requestMove(ctx context.Context) protocol.ServerResponse {
	if d.gameID == 0 {
		return protocol.Failure("no active game")
	}

	command := gamecommands.RequestMoveCommand{
		EventID:  d.gameID,
		Username: d.username,
	}

	result, err := mediator.Send[gamecommands.RequestMoveCommand, gamecommands.RequestMoveResult](
		ctx,
		command,
	)
	if err != nil {
		return failureFrom(err)
	}

	return protocol.GamingResponse{
		Response: protocol.Success("move retrieved"),
		Move:     result.Move,
		Active:   result.Active,
	}
}

func (d *dispatcher) abortGame(ctx context.Context) protocol.ServerResponse {
	if d.gameID == 0 {
		return protocol.Failure("no active game")
	}

	command := gamecommands.AbortGameCommand{
		EventID:  d.gameID,
		Username: d.username,
	}

	if _, err := mediator.Send[gamecommands.AbortGameCommand, core.Unit](ctx, command); err != nil {
		return failureFrom(err)
	}

	d.gameID = 0

	return protocol.Success("game aborted")
}

func (d *dispatcher) completeGame(ctx context.Context) protocol.ServerResponse {
	if d.gameID == 0 {
		return protocol.Failure("no active game")
	}

	command := gamecommands.CompleteGameCommand{
		EventID:  d.gameID,
		Username: d.username,
	}

	if _, err := mediator.Send[gamecommands.CompleteGameCommand, core.Unit](ctx, command); err != nil {
		return failureFrom(err)
	}

	d.gameID = 0

	return protocol.Success("game completed")
}

// failureFrom turns a handler error into a FAILURE response. CommandError
// messages are client-safe; anything else was already logged by the
// pipeline and surfaces generically.
func failureFrom(err error) protocol.Response {
	var commandErr core.CommandError
	if errors.As(err, &commandErr) {
		return protocol.Failure(commandErr.Message)
	}

	return protocol.Failure("internal server error")
}

func parseEventID(data string) (int64, error) {
	var eventID int64
	err := json.Unmarshal([]byte(data), &eventID)
	return eventID, err
}

func toWireUser(user authdomain.User) protocol.User {
	return protocol.User{
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Online:      user.Online,
	}
}

func toWireEvent(event *gamedomain.Event) *protocol.Event {
	if event == nil {
		return nil
	}

	return &protocol.Event{
		EventID:  event.ID,
		Sender:   event.Sender,
		Opponent: event.Opponent,
		Status:   string(event.Status),
		Turn:     event.Turn,
		Move:     event.Move,
	}
}
