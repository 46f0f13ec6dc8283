package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/eskrenkovic/tictactoe-go/internal/modules/auth/domain"
	"github.com/eskrenkovic/tictactoe-go/internal/modules/core"
	"github.com/eskrenkovic/tictactoe-go/internal/storage"
)

type RegisterCommand struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

func (c RegisterCommand) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("invalid Username - '%s'", c.Username)
	}

	if c.Password == "" {
		return fmt.Errorf("invalid Password")
	}

	if c.DisplayName == "" {
		return fmt.Errorf("invalid DisplayName - '%s'", c.DisplayName)
	}

	return nil
}

type RegisterCommandHandler struct {
	users          storage.UserStore
	passwordHasher domain.PasswordHasher
}

func NewRegisterCommandHandler(
	users storage.UserStore,
	passwordHasher domain.PasswordHasher,
) *RegisterCommandHandler {
	return &RegisterCommandHandler{users, passwordHasher}
}

func (h *RegisterCommandHandler) Handle(
	ctx context.Context,
	request RegisterCommand,
) (core.Unit, error) {
	exists, err := h.users.Exists(ctx, request.Username)
	if err != nil {
		return core.Unit{}, err
	}

	if exists {
		return core.Unit{}, core.NewCommandError(
			fmt.Sprintf("username %q is already taken", request.Username), nil,
		)
	}

	user, err := domain.RegisterUser(
		request.Username,
		request.DisplayName,
		request.Password,
		h.passwordHasher,
	)
	if err != nil {
		return core.Unit{}, err
	}

	if err := h.users.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return core.Unit{}, core.NewCommandError(
				fmt.Sprintf("username %q is already taken", request.Username), err,
			)
		}

		return core.Unit{}, err
	}

	return core.Unit{}, nil
}
