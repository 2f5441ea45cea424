package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/estifie/Expense-Tracker-API/internal/auth/http/dto"
	authUseCase "github.com/estifie/Expense-Tracker-API/internal/auth/usecase"
	"github.com/estifie/Expense-Tracker-API/internal/httputil"
	customValidation "github.com/estifie/Expense-Tracker-API/internal/validation"
)

// AuthHandler handles HTTP requests for registration and login.
type AuthHandler struct {
	authUseCase authUseCase.AuthUseCase
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler with required dependencies.
func NewAuthHandler(authUseCase authUseCase.AuthUseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

// RegisterHandler creates a new account.
// POST /v1/auth/register
// Returns 201 Created. New accounts start with an empty capability set.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.authUseCase.Register(c.Request.Context(), authUseCase.RegisterInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapUserToRegisterResponse(user))
}

// LoginHandler verifies credentials and issues an access token.
// POST /v1/auth/login
// Returns 200 OK with the signed token. Invalid credentials return 401
// without revealing whether the username exists.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	token, err := h.authUseCase.Login(c.Request.Context(), authUseCase.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewLoginResponse(token))
}
