package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/eskrenkovic/tictactoe-go/internal/modules/auth/domain"
	"github.com/eskrenkovic/tictactoe-go/internal/modules/core"
	"github.com/eskrenkovic/tictactoe-go/internal/storage"
)

type LoginCommand struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c LoginCommand) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("invalid Username - '%s'", c.Username)
	}

	if c.Password == "" {
		return fmt.Errorf("invalid Password")
	}

	return nil
}

type LoginCommandHandler struct {
	users          storage.UserStore
	passwordHasher domain.PasswordHasher
}

func NewLoginCommandHandler(
	users storage.UserStore,
	passwordHasher domain.PasswordHasher,
) *LoginCommandHandler {
	return &LoginCommandHandler{users, passwordHasher}
}

func (h *LoginCommandHandler) Handle(ctx context.Context, request LoginCommand) (core.Unit, error) {
	user, err := h.users.Get(ctx, request.Username)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Unit{}, core.NewCommandError("wrong username or password", err)
	}
	if err != nil {
		return core.Unit{}, err
	}

	if err := user.Authenticate(request.Password, h.passwordHasher); err != nil {
		return core.Unit{}, core.NewCommandError("wrong username or password", err)
	}

	user.Online = true
	if err := h.users.Update(ctx, user); err != nil {
		return core.Unit{}, err
	}

	return core.Unit{}, nil
}
