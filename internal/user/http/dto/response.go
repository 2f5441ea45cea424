package dto

import (
	"time"

	authDomain "github.com/estifie/Expense-Tracker-API/internal/auth/domain"
	"github.com/estifie/Expense-Tracker-API/internal/user/domain"
)

// UserResponse represents a user in API responses. The password hash and
// internal identifiers never leave the service.
type UserResponse struct {
	Username    string    `json:"username"`
	Deactivated bool      `json:"deactivated"`
	Deleted     bool      `json:"deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MapUserToResponse converts a domain user to a response DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		Username:    user.Username,
		Deactivated: user.IsDeactivated(),
		Deleted:     user.IsDeleted(),
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

// ListUsersResponse represents a paginated list of users in API responses.
type ListUsersResponse struct {
	Data []UserResponse `json:"data"`
}

// MapUsersToListResponse converts a slice of domain users to a list response.
func MapUsersToListResponse(users []*domain.User) ListUsersResponse {
	data := make([]UserResponse, 0, len(users))
	for _, user := range users {
		data = append(data, MapUserToResponse(user))
	}

	return ListUsersResponse{
		Data: data,
	}
}

// CapabilitiesResponse represents a subject's granted capability set.
type CapabilitiesResponse struct {
	Username     string   `json:"username"`
	Capabilities []string `json:"capabilities"`
}

// MapCapabilitiesToResponse converts a granted capability set to a response DTO.
func MapCapabilitiesToResponse(username string, capabilities []authDomain.Capability) CapabilitiesResponse {
	names := make([]string, 0, len(capabilities))
	for _, c := range capabilities {
		names = append(names, string(c))
	}

	return CapabilitiesResponse{
		Username:     username,
		Capabilities: names,
	}
}
