package dto

import (
	"time"

	userDomain "github.com/estifie/Expense-Tracker-API/internal/user/domain"
)

// RegisterResponse represents a newly registered account in API responses.
type RegisterResponse struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// MapUserToRegisterResponse converts a domain user to a register response.
func MapUserToRegisterResponse(user *userDomain.User) RegisterResponse {
	return RegisterResponse{
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// NewLoginResponse builds a login response for an issued token.
func NewLoginResponse(token string) LoginResponse {
	return LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
	}
}
