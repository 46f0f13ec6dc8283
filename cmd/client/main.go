package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/eskrenkovic/tictactoe-go/internal/modules/game/domain"
	"github.com/eskrenkovic/tictactoe-go/internal/protocol"

	"github.com/fatih/color"
)

var serverAddr = flag.String("server", "localhost:5000", "server address (host:port)")

var (
	promptColor  = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	failureColor = color.New(color.FgRed)
	infoColor    = color.New(color.FgYellow)
)

type client struct {
	reader *bufio.Reader
	writer *bufio.Writer
}

func main() {
	flag.Parse()

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		failureColor.Fprintf(os.Stderr, "failed to connect to %s: %v\n", *serverAddr, err)
		os.Exit(1)
	}
	defer conn.Close()

	successColor.Printf("connected to %s\n", *serverAddr)
	printHelp()

	c := &client{
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
	}

	stdin := bufio.NewScanner(os.Stdin)

	for {
		promptColor.Print("> ")

		if !stdin.Scan() {
			return
		}

		line := strings.TrimSpace(stdin.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		command, args := fields[0], fields[1:]

		if command == "quit" || command == "exit" {
			return
		}

		if command == "help" {
			printHelp()
			continue
		}

		if err := c.execute(command, args); err != nil {
			failureColor.Printf("error: %v\n", err)
		}
	}
}

func (c *client) execute(command string, args []string) error {
	switch command {
	case "register", "login":
		return c.authenticate(command, args)
	case "invite":
		if len(args) != 1 {
			return fmt.Errorf("usage: invite <username>")
		}
		data, err := json.Marshal(args[0])
		if err != nil {
			return err
		}
		return c.send(protocol.SendInvitation, string(data))
	case "accept":
		return c.sendWithEventID(command, protocol.AcceptInvitation, args)
	case "decline":
		return c.sendWithEventID(command, protocol.DeclineInvitation, args)
	case "ack":
		return c.sendWithEventID(command, protocol.AcknowledgeResponse, args)
	case "pairing":
		return c.pairing()
	case "move":
		if len(args) != 1 {
			return fmt.Errorf("usage: move <cell 0-8>")
		}
		if _, err := strconv.Atoi(args[0]); err != nil {
			return fmt.Errorf("move must be a number: %w", err)
		}
		return c.send(protocol.SendMove, args[0])
	case "poll":
		return c.poll()
	case "abort":
		return c.send(protocol.AbortGame, "")
	case "complete":
		return c.send(protocol.CompleteGame, "")
	default:
		return fmt.Errorf("unknown command %q - type 'help'", command)
	}
}

func (c *client) authenticate(command string, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("usage: %s <username> <password> [display name]", command)
	}

	user := protocol.User{
		Username:    args[0],
		Password:    args[1],
		DisplayName: args[0],
	}
	if len(args) == 3 {
		user.DisplayName = args[2]
	}

	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	requestType := protocol.Register
	if command == "login" {
		requestType = protocol.Login
	}

	return c.send(requestType, string(data))
}

func (c *client) sendWithEventID(command string, requestType protocol.RequestType, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s <event id>", command)
	}
	if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
		return fmt.Errorf("event id must be a number: %w", err)
	}
	return c.send(requestType, args[0])
}

func (c *client) send(requestType protocol.RequestType, data string) error {
	response, err := roundTrip[protocol.Response](c, requestType, data)
	if err != nil {
		return err
	}

	printStatus(response)
	return nil
}

func (c *client) pairing() error {
	response, err := roundTrip[protocol.PairingResponse](c, protocol.UpdatePairing, "")
	if err != nil {
		return err
	}

	printStatus(response.Response)

	if len(response.AvailableUsers) == 0 {
		infoColor.Println("no opponents available")
	}
	for _, user := range response.AvailableUsers {
		fmt.Printf("  %s (%s)\n", user.Username, user.DisplayName)
	}

	if response.Invitation != nil {
		infoColor.Printf(
			"invitation #%d from %s\n",
			response.Invitation.EventID,
			response.Invitation.Sender,
		)
	}

	if response.InvitationResponse != nil {
		infoColor.Printf(
			"%s %s invitation #%d\n",
			response.InvitationResponse.Opponent,
			strings.ToLower(string(response.InvitationResponse.Status)),
			response.InvitationResponse.EventID,
		)
	}

	return nil
}

func (c *client) poll() error {
	response, err := roundTrip[protocol.GamingResponse](c, protocol.RequestMove, "")
	if err != nil {
		return err
	}

	printStatus(response.Response)

	if response.Move != domain.NoMove {
		infoColor.Printf("opponent played cell %d\n", response.Move)
	} else {
		fmt.Println("no move waiting")
	}

	if !response.Active {
		infoColor.Println("the game is over")
	}

	return nil
}

func roundTrip[T protocol.ServerResponse](
	c *client,
	requestType protocol.RequestType,
	data string,
) (T, error) {
	var response T

	request := protocol.Request{Type: requestType, Data: data}
	if err := protocol.WriteMessage(c.writer, request); err != nil {
		return response, err
	}

	if err := c.writer.Flush(); err != nil {
		return response, err
	}

	return protocol.ReadMessage[T](c.reader)
}

func printStatus(response protocol.Response) {
	if response.Status == protocol.StatusSuccess {
		successColor.Println("ok")
		return
	}
	failureColor.Println(response.Message)
}

func printHelp() {
	fmt.Println(`commands:
  register <username> <password> [display name]
  login    <username> <password>
  pairing                 show opponents, invitations and responses
  invite   <username>     invite an opponent
  accept   <event id>     accept an invitation
  decline  <event id>     decline an invitation
  ack      <event id>     acknowledge an invitation response
  move     <cell 0-8>     play a cell
  poll                    ask for the opponent's move
  abort                   abort the current game
  complete                mark the current game finished
  quit`)
}
