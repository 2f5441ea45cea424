package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/estifie/Expense-Tracker-API/internal/app"
	authUsecase "github.com/estifie/Expense-Tracker-API/internal/auth/usecase"
	"github.com/estifie/Expense-Tracker-API/internal/config"
)

// RunCreateUser registers a new user account from the command line. Useful
// for bootstrapping the first account on a fresh installation.
func RunCreateUser(ctx context.Context, username, password string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()

	defer closeContainer(container, logger)

	authUseCase, err := container.AuthUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize auth use case: %w", err)
	}

	user, err := authUseCase.Register(ctx, authUsecase.RegisterInput{
		Username: username,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("user created", slog.String("username", user.Username))
	return nil
}
