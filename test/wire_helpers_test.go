package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/eskrenkovic/tictactoe-go/internal/protocol"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	waitTimeout  = 5 * time.Second
	pollInterval = 50 * time.Millisecond
)

type wireClient struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
}

func connect(t *testing.T) *wireClient {
	t.Helper()

	conn, err := net.Dial("tcp", fixture.addr)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return &wireClient{
		t:      t,
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
	}
}

func send[T protocol.ServerResponse](c *wireClient, request protocol.Request) T {
	c.t.Helper()

	require.NoError(c.t, protocol.WriteMessage(c.writer, request))
	require.NoError(c.t, c.writer.Flush())

	response, err := protocol.ReadMessage[T](c.reader)
	require.NoError(c.t, err)

	return response
}

func (c *wireClient) register(user protocol.User) protocol.Response {
	c.t.Helper()

	payload, err := json.Marshal(user)
	require.NoError(c.t, err)

	return send[protocol.Response](c, protocol.Request{
		Type: protocol.Register,
		Data: string(payload),
	})
}

func (c *wireClient) login(user protocol.User) protocol.Response {
	c.t.Helper()

	payload, err := json.Marshal(user)
	require.NoError(c.t, err)

	return send[protocol.Response](c, protocol.Request{
		Type: protocol.Login,
		Data: string(payload),
	})
}

func (c *wireClient) registerAndLogin() protocol.User {
	c.t.Helper()

	user := protocol.User{
		Username:    uuid.New().String(),
		Password:    uuid.New().String(),
		DisplayName: "player",
	}

	response := c.register(user)
	require.Equal(c.t, protocol.StatusSuccess, response.Status)

	response = c.login(user)
	require.Equal(c.t, protocol.StatusSuccess, response.Status)

	return user
}

func cleanAfter(t *testing.T) {
	t.Helper()

	t.Cleanup(func() {
		require.NoError(t, cleanDatabase(context.Background()))
	})
}

func eventIDData(id int64) string {
	return fmt.Sprintf("%d", id)
}
