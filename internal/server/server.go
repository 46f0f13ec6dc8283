package server

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"net"
	"os"
	"strconv"
	"sync"

	"github.com/eskrenkovic/tictactoe-go/internal/config"
	authcommands "github.com/eskrenkovic/tictactoe-go/internal/modules/auth/commands"
	authdomain "github.com/eskrenkovic/tictactoe-go/internal/modules/auth/domain"
	"github.com/eskrenkovic/tictactoe-go/internal/modules/core"
	"github.com/eskrenkovic/tictactoe-go/internal/modules/game"
	gamecommands "github.com/eskrenkovic/tictactoe-go/internal/modules/game/commands"
	gamedomain "github.com/eskrenkovic/tictactoe-go/internal/modules/game/domain"
	gamequeries "github.com/eskrenkovic/tictactoe-go/internal/modules/game/queries"
	"github.com/eskrenkovic/tictactoe-go/internal/storage"
	"github.com/eskrenkovic/tictactoe-go/internal/storage/memory"
	"github.com/eskrenkovic/tictactoe-go/internal/storage/postgres"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/migrate-go"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Server is the composition root: it wires stores, the mediator pipeline
// and all command handlers, then serves the framed TCP protocol.
type Server struct {
	logger *zap.Logger
	port   int
	users  storage.UserStore

	mu          sync.Mutex
	listener    net.Listener
	connections map[string]*connection
	wg          sync.WaitGroup
}

func New(config config.Config) (*Server, error) {
	baseCtx := context.Background()

	var (
		users  storage.UserStore
		events storage.EventStore
	)

	if config.DatabaseURL != "" {
		db, err := sql.Open("postgres", config.DatabaseURL)
		if err != nil {
			return nil, err
		}

		if err := migrate.Run(baseCtx, db, config.MigrationsPath); err != nil {
			return nil, err
		}

		users = postgres.NewUserStore(db)
		events = postgres.NewEventStore(db)
	} else {
		userStore := memory.NewUserStore()
		users = userStore
		events = memory.NewEventStore(userStore)
	}

	requestLoggingBehavior := core.RequestLoggingBehavior{Logger: config.Logger}
	handlerErrorLoggingBehavior := core.HandlerErrorLoggingBehavior{Logger: config.Logger}
	requestValidationBehavior := core.RequestValidationBehavior{}
	handlerRecoveryBehavior := core.HandlerRecoveryBehavior{Logger: config.Logger}

	mediator.RegisterPipelineBehavior(&requestLoggingBehavior)
	mediator.RegisterPipelineBehavior(&handlerErrorLoggingBehavior)
	mediator.RegisterPipelineBehavior(&requestValidationBehavior)
	mediator.RegisterPipelineBehavior(&handlerRecoveryBehavior)

	// handler registration

	// auth

	passwordHasher := authdomain.NewPasswordHasher(sha256.New)

	registerHandler := authcommands.NewRegisterCommandHandler(users, *passwordHasher)
	err := mediator.RegisterRequestHandler[authcommands.RegisterCommand, core.Unit](
		registerHandler,
	)
	if err != nil {
		return nil, err
	}

	loginHandler := authcommands.NewLoginCommandHandler(users, *passwordHasher)
	err = mediator.RegisterRequestHandler[authcommands.LoginCommand, core.Unit](
		loginHandler,
	)
	if err != nil {
		return nil, err
	}

	// game

	guard := game.NewSessionGuard()

	sendInvitationHandler := gamecommands.NewSendInvitationCommandHandler(users, events, guard)
	err = mediator.RegisterRequestHandler[gamecommands.SendInvitationCommand, core.Unit](
		sendInvitationHandler,
	)
	if err != nil {
		return nil, err
	}

	acceptInvitationHandler := gamecommands.NewAcceptInvitationCommandHandler(events, guard)
	err = mediator.RegisterRequestHandler[gamecommands.AcceptInvitationCommand, core.Unit](
		acceptInvitationHandler,
	)
	if err != nil {
		return nil, err
	}

	declineInvitationHandler := gamecommands.NewDeclineInvitationCommandHandler(events, guard)
	err = mediator.RegisterRequestHandler[gamecommands.DeclineInvitationCommand, core.Unit](
		declineInvitationHandler,
	)
	if err != nil {
		return nil, err
	}

	acknowledgeResponseHandler := gamecommands.NewAcknowledgeResponseCommandHandler(events, guard)
	err = mediator.RegisterRequestHandler[gamecommands.AcknowledgeResponseCommand, gamecommands.AcknowledgeResponseResult](
		acknowledgeResponseHandler,
	)
	if err != nil {
		return nil, err
	}

	sendMoveHandler := gamecommands.NewSendMoveCommandHandler(events, guard)
	err = mediator.RegisterRequestHandler[gamecommands.SendMoveCommand, core.Unit](
		sendMoveHandler,
	)
	if err != nil {
		return nil, err
	}

	requestMoveHandler := gamecommands.NewRequestMoveCommandHandler(events, guard)
	err = mediator.RegisterRequestHandler[gamecommands.RequestMoveCommand, gamecommands.RequestMoveResult](
		requestMoveHandler,
	)
	if err != nil {
		return nil, err
	}

	abortGameHandler := gamecommands.NewAbortGameCommandHandler(events, guard)
	err = mediator.RegisterRequestHandler[gamecommands.AbortGameCommand, core.Unit](
		abortGameHandler,
	)
	if err != nil {
		return nil, err
	}

	completeGameHandler := gamecommands.NewCompleteGameCommandHandler(events, guard)
	err = mediator.RegisterRequestHandler[gamecommands.CompleteGameCommand, core.Unit](
		completeGameHandler,
	)
	if err != nil {
		return nil, err
	}

	updatePairingHandler := gamequeries.NewUpdatePairingQueryHandler(events)
	err = mediator.RegisterRequestHandler[gamequeries.UpdatePairingQuery, gamequeries.PairingResult](
		updatePairingHandler,
	)
	if err != nil {
		return nil, err
	}

	activeGameHandler := gamequeries.NewActiveGameQueryHandler(events)
	err = mediator.RegisterRequestHandler[gamequeries.ActiveGameQuery, *gamedomain.Event](
		activeGameHandler,
	)
	if err != nil {
		return nil, err
	}

	return &Server{
		logger:      config.Logger,
		port:        config.Port,
		users:       users,
		connections: make(map[string]*connection),
	}, nil
}

// Start binds the listening socket and serves connections until Stop is
// called. A bind failure is logged and returned - the server does not
// serve.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(s.port)))
	if err != nil {
		s.logger.Error("failed to bind port", zap.Int("port", s.port), zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	hostname, _ := os.Hostname()
	s.logger.Info("server started",
		zap.Int("port", s.port),
		zap.String("hostname", hostname),
		zap.String("address", listener.Addr().String()),
	)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			s.logger.Error("failed to accept connection", zap.Error(err))
			return err
		}

		c := newConnection(conn, s.logger, s.users)
		s.track(c)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(c)

			c.run(context.Background())
		}()
	}
}

// Addr returns the bound listener address, or nil before Start has bound.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}

	return s.listener.Addr()
}

// Stop closes the listener and every live connection, then waits for the
// connection workers to drain.
func (s *Server) Stop() error {
	s.mu.Lock()

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}

	for _, c := range s.connections {
		_ = c.conn.Close()
	}

	s.mu.Unlock()

	s.wg.Wait()
	return err
}

func (s *Server) track(c *connection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connections[c.id.String()] = c
}

func (s *Server) untrack(c *connection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.connections, c.id.String())
}
