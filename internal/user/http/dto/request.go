// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"
)

// CapabilityRequest contains the capability name for grant and revoke
// operations. The subject username is extracted from the URL parameter.
type CapabilityRequest struct {
	Capability string `json:"capability" binding:"required"`
}

// Validate checks if the capability request is valid. Membership in the known
// capability set is checked by the use case, not here.
func (r *CapabilityRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Capability, validation.Required),
	)
}
