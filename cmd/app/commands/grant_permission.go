package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/estifie/Expense-Tracker-API/internal/app"
	authDomain "github.com/estifie/Expense-Tracker-API/internal/auth/domain"
	"github.com/estifie/Expense-Tracker-API/internal/config"
)

// RunGrantPermission grants a capability to a user from the command line,
// bypassing the HTTP authorization surface. This is how the first
// administrator gets MANAGE_PERMISSIONS.
func RunGrantPermission(ctx context.Context, username, capability string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()

	defer closeContainer(container, logger)

	userUseCase, err := container.UserUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize user use case: %w", err)
	}

	if err := userUseCase.GrantCapability(ctx, username, authDomain.Capability(capability)); err != nil {
		return fmt.Errorf("failed to grant capability: %w", err)
	}

	logger.Info("capability granted",
		slog.String("username", username),
		slog.String("capability", capability))
	return nil
}

// RunRevokePermission revokes a capability from a user from the command line.
func RunRevokePermission(ctx context.Context, username, capability string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()

	defer closeContainer(container, logger)

	userUseCase, err := container.UserUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize user use case: %w", err)
	}

	if err := userUseCase.RevokeCapability(ctx, username, authDomain.Capability(capability)); err != nil {
		return fmt.Errorf("failed to revoke capability: %w", err)
	}

	logger.Info("capability revoked",
		slog.String("username", username),
		slog.String("capability", capability))
	return nil
}
