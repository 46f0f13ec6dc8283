package commands

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/eskrenkovic/tictactoe-go/internal/modules/core"
	"github.com/eskrenkovic/tictactoe-go/internal/modules/game/domain"

	"github.com/stretchr/testify/require"
)

func Test_SendMove_Rejects_Second_Move_By_Same_User(t *testing.T) {
	// Arrange
	f := newFixture(t, "alice", "bob")
	id := f.startGame(t, "alice", "bob")

	handler := NewSendMoveCommandHandler(f.events, f.guard)

	_, err := handler.Handle(context.Background(), SendMoveCommand{
		EventID:  id,
		Username: "alice",
		Move:     4,
	})
	require.NoError(t, err)

	// Act
	_, err = handler.Handle(context.Background(), SendMoveCommand{
		EventID:  id,
		Username: "alice",
		Move:     5,
	})

	// Assert
	var commandErr core.CommandError
	require.ErrorAs(t, err, &commandErr)
	require.ErrorIs(t, err, domain.ErrConsecutiveMove)

	event, getErr := f.events.Get(context.Background(), id)
	require.NoError(t, getErr)
	require.Equal(t, 4, event.Move)
}

func Test_SendMove_Allows_Alternating_Users(t *testing.T) {
	// Arrange
	f := newFixture(t, "alice", "bob")
	id := f.startGame(t, "alice", "bob")

	send := NewSendMoveCommandHandler(f.events, f.guard)
	request := NewRequestMoveCommandHandler(f.events, f.guard)

	// Act / Assert
	_, err := send.Handle(context.Background(), SendMoveCommand{EventID: id, Username: "alice", Move: 0})
	require.NoError(t, err)

	result, err := request.Handle(context.Background(), RequestMoveCommand{EventID: id, Username: "bob"})
	require.NoError(t, err)
	require.Equal(t, 0, result.Move)

	_, err = send.Handle(context.Background(), SendMoveCommand{EventID: id, Username: "bob", Move: 8})
	require.NoError(t, err)

	result, err = request.Handle(context.Background(), RequestMoveCommand{EventID: id, Username: "alice"})
	require.NoError(t, err)
	require.Equal(t, 8, result.Move)
}

func Test_SendMove_Requires_Playing_Status(t *testing.T) {
	// Arrange
	f := newFixture(t, "alice", "bob")
	id := f.sendInvitation(t, "alice", "bob")

	handler := NewSendMoveCommandHandler(f.events, f.guard)

	// Act
	_, err := handler.Handle(context.Background(), SendMoveCommand{
		EventID:  id,
		Username: "alice",
		Move:     4,
	})

	// Assert
	var commandErr core.CommandError
	require.ErrorAs(t, err, &commandErr)
	require.Contains(t, commandErr.Message, string(domain.StatusPending))
}

func Test_RequestMove_Delivers_Pending_Move_Exactly_Once(t *testing.T) {
	// Arrange
	f := newFixture(t, "alice", "bob")
	id := f.startGame(t, "alice", "bob")

	send := NewSendMoveCommandHandler(f.events, f.guard)
	request := NewRequestMoveCommandHandler(f.events, f.guard)

	_, err := send.Handle(context.Background(), SendMoveCommand{EventID: id, Username: "alice", Move: 6})
	require.NoError(t, err)

	// Act
	first, err1 := request.Handle(context.Background(), RequestMoveCommand{EventID: id, Username: "bob"})
	second, err2 := request.Handle(context.Background(), RequestMoveCommand{EventID: id, Username: "bob"})

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.Equal(t, 6, first.Move)
	require.True(t, first.Active)
	require.Equal(t, domain.NoMove, second.Move)
	require.True(t, second.Active)
}

func Test_RequestMove_Does_Not_Deliver_Callers_Own_Move(t *testing.T) {
	// Arrange
	f := newFixture(t, "alice", "bob")
	id := f.startGame(t, "alice", "bob")

	send := NewSendMoveCommandHandler(f.events, f.guard)
	request := NewRequestMoveCommandHandler(f.events, f.guard)

	_, err := send.Handle(context.Background(), SendMoveCommand{EventID: id, Username: "alice", Move: 2})
	require.NoError(t, err)

	// Act
	result, err := request.Handle(context.Background(), RequestMoveCommand{EventID: id, Username: "alice"})

	// Assert
	require.NoError(t, err)
	require.Equal(t, domain.NoMove, result.Move)

	// the move is still there for the opponent
	delivered, err := request.Handle(context.Background(), RequestMoveCommand{EventID: id, Username: "bob"})
	require.NoError(t, err)
	require.Equal(t, 2, delivered.Move)
}

func Test_RequestMove_Reports_Inactive_After_Abort(t *testing.T) {
	// Arrange
	f := newFixture(t, "alice", "bob")
	id := f.startGame(t, "alice", "bob")

	abort := NewAbortGameCommandHandler(f.events, f.guard)
	_, err := abort.Handle(context.Background(), AbortGameCommand{EventID: id, Username: "alice"})
	require.NoError(t, err)

	request := NewRequestMoveCommandHandler(f.events, f.guard)

	// Act
	result, err := request.Handle(context.Background(), RequestMoveCommand{EventID: id, Username: "bob"})

	// Assert
	require.NoError(t, err)
	require.Equal(t, domain.NoMove, result.Move)
	require.False(t, result.Active)
}

// Two workers hammer the same session concurrently, one per player. Every
// posted move must come out on the other side exactly once and in order,
// regardless of how the goroutines interleave.
func Test_Concurrent_Move_Exchange_Loses_No_Moves(t *testing.T) {
	// Arrange
	f := newFixture(t, "alice", "bob")
	id := f.startGame(t, "alice", "bob")

	send := NewSendMoveCommandHandler(f.events, f.guard)
	request := NewRequestMoveCommandHandler(f.events, f.guard)

	const rounds = 200

	ctx := context.Background()

	post := func(username string, move int) error {
		for {
			_, err := send.Handle(ctx, SendMoveCommand{
				EventID:  id,
				Username: username,
				Move:     move,
			})
			if err == nil || !errors.Is(err, domain.ErrConsecutiveMove) {
				return err
			}

			runtime.Gosched()
		}
	}

	poll := func(username string) (int, error) {
		for {
			result, err := request.Handle(ctx, RequestMoveCommand{
				EventID:  id,
				Username: username,
			})
			if err != nil {
				return domain.NoMove, err
			}

			if result.Move != domain.NoMove {
				return result.Move, nil
			}

			runtime.Gosched()
		}
	}

	aliceMoves := make([]int, rounds)
	bobMoves := make([]int, rounds)
	for i := 0; i < rounds; i++ {
		aliceMoves[i] = i % 9
		bobMoves[i] = (i + 4) % 9
	}

	aliceReceived := make(chan int, rounds)
	bobReceived := make(chan int, rounds)
	done := make(chan error, 2)

	// Act - alice opens every round, bob answers
	go func() {
		for _, move := range aliceMoves {
			if err := post("alice", move); err != nil {
				done <- err
				return
			}

			answer, err := poll("alice")
			if err != nil {
				done <- err
				return
			}

			aliceReceived <- answer
		}

		done <- nil
	}()

	go func() {
		for _, move := range bobMoves {
			opening, err := poll("bob")
			if err != nil {
				done <- err
				return
			}

			bobReceived <- opening

			if err := post("bob", move); err != nil {
				done <- err
				return
			}
		}

		done <- nil
	}()

	require.NoError(t, <-done)
	require.NoError(t, <-done)

	close(aliceReceived)
	close(bobReceived)

	// Assert - alice received exactly bob's moves in order, and vice versa
	i := 0
	for move := range aliceReceived {
		require.Equal(t, bobMoves[i], move)
		i++
	}
	require.Equal(t, rounds, i)

	i = 0
	for move := range bobReceived {
		require.Equal(t, aliceMoves[i], move)
		i++
	}
	require.Equal(t, rounds, i)
}
