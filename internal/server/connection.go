package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"

	"github.com/eskrenkovic/tictactoe-go/internal/modules/core"
	"github.com/eskrenkovic/tictactoe-go/internal/protocol"
	"github.com/eskrenkovic/tictactoe-go/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// connection is one worker per accepted client. It owns the read, decode,
// dispatch, encode, write loop and dies alone - a fault here never touches
// another connection or the listener.
type connection struct {
	id         uuid.UUID
	conn       net.Conn
	reader     *bufio.Reader
	writer     *bufio.Writer
	logger     *zap.Logger
	users      storage.UserStore
	dispatcher *dispatcher
}

func newConnection(conn net.Conn, logger *zap.Logger, users storage.UserStore) *connection {
	id := uuid.New()

	return &connection{
		id:     id,
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
		logger: logger.With(
			zap.String("connection_id", id.String()),
			zap.String("remote_addr", conn.RemoteAddr().String()),
		),
		users:      users,
		dispatcher: &dispatcher{},
	}
}

func (c *connection) run(ctx context.Context) {
	defer c.close()

	c.logger.Info("client connected")

	for {
		payload, err := protocol.ReadFrame(c.reader)
		if errors.Is(err, protocol.ErrEmptyFrame) {
			c.logger.Warn("received empty frame")
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.logger.Info("client disconnected")
			} else {
				c.logger.Error("connection read failed", zap.Error(err))
			}
			return
		}

		// A malformed payload in a well-framed message is the client's
		// problem, not the connection's - dispatch it as a nil request.
		var request *protocol.Request
		if err := json.Unmarshal(payload, &request); err != nil {
			c.logger.Warn("malformed request payload", zap.Error(err))
			request = nil
		}

		requestCtx := context.WithValue(ctx, core.ConnectionIDContextKey, c.id.String())
		requestCtx = context.WithValue(requestCtx, core.UsernameContextKey, c.dispatcher.username)

		response := c.dispatcher.Handle(requestCtx, request)

		responsePayload, err := json.Marshal(response)
		if err != nil {
			c.logger.Error("failed to encode response", zap.Error(err))
			continue
		}

		if err := protocol.WriteFrame(c.writer, responsePayload); err != nil {
			c.logger.Error("connection write failed", zap.Error(err))
			return
		}

		if err := c.writer.Flush(); err != nil {
			c.logger.Error("connection flush failed", zap.Error(err))
			return
		}
	}
}

// close releases the connection's resources. Each release is attempted
// independently so one failure does not skip the others.
func (c *connection) close() {
	if err := c.writer.Flush(); err != nil {
		c.logger.Warn("failed to flush write buffer on close", zap.Error(err))
	}

	if err := c.conn.Close(); err != nil {
		c.logger.Warn("failed to close socket", zap.Error(err))
	}

	// best effort - the user goes offline with its last connection
	if username := c.dispatcher.username; username != "" {
		ctx := context.Background()

		user, err := c.users.Get(ctx, username)
		if err == nil {
			user.Online = false
			err = c.users.Update(ctx, user)
		}

		if err != nil {
			c.logger.Warn("failed to mark user offline", zap.String("username", username), zap.Error(err))
		}
	}

	c.logger.Info("connection closed")
}
