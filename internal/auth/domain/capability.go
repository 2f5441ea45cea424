// Package domain defines the authentication and authorization domain model.
// Access control is capability-based: users hold a set of named capabilities,
// and every protected operation declares a Requirement over capabilities that
// must be satisfied before the operation runs.
package domain

// Capability is a named grant unit controlling access to an operation or
// resource class. Capabilities have no hierarchy; each one is independently
// grantable.
type Capability string

const (
	// CapabilityOwnership is a requirement-only pseudo-capability meaning
	// "the caller is the resource's owning subject". It never appears in a
	// user's granted set and cannot be granted.
	CapabilityOwnership Capability = "OWNERSHIP"

	// Permission management capabilities.
	CapabilityManagePermissions Capability = "MANAGE_PERMISSIONS"
	CapabilityGrantPermission   Capability = "GRANT_PERMISSION"
	CapabilityRevokePermission  Capability = "REVOKE_PERMISSION"
	CapabilityViewPermissions   Capability = "VIEW_PERMISSIONS"

	// User capabilities.
	CapabilityManageUsers    Capability = "MANAGE_USERS"
	CapabilityViewUsers      Capability = "VIEW_USERS"
	CapabilityHardDeleteUser Capability = "HARD_DELETE_USER"

	// Expense capabilities.
	CapabilityManageExpenses    Capability = "MANAGE_EXPENSES"
	CapabilityViewExpenses      Capability = "VIEW_EXPENSES"
	CapabilityHardDeleteExpense Capability = "HARD_DELETE_EXPENSE"

	// Subscription capabilities.
	CapabilityManageSubscriptions    Capability = "MANAGE_SUBSCRIPTIONS"
	CapabilityViewSubscriptions      Capability = "VIEW_SUBSCRIPTIONS"
	CapabilityHardDeleteSubscription Capability = "HARD_DELETE_SUBSCRIPTION"

	// Tag capabilities.
	CapabilityManageTags    Capability = "MANAGE_TAGS"
	CapabilityViewTags      Capability = "VIEW_TAGS"
	CapabilityHardDeleteTag Capability = "HARD_DELETE_TAG"
)

// grantableCapabilities enumerates every capability that can be held by a
// user. CapabilityOwnership is deliberately excluded: it is only meaningful
// inside a Requirement.
var grantableCapabilities = map[Capability]struct{}{
	CapabilityManagePermissions:      {},
	CapabilityGrantPermission:        {},
	CapabilityRevokePermission:       {},
	CapabilityViewPermissions:        {},
	CapabilityManageUsers:            {},
	CapabilityViewUsers:              {},
	CapabilityHardDeleteUser:         {},
	CapabilityManageExpenses:         {},
	CapabilityViewExpenses:           {},
	CapabilityHardDeleteExpense:      {},
	CapabilityManageSubscriptions:    {},
	CapabilityViewSubscriptions:      {},
	CapabilityHardDeleteSubscription: {},
	CapabilityManageTags:             {},
	CapabilityViewTags:               {},
	CapabilityHardDeleteTag:          {},
}

// IsGrantable reports whether the capability name is part of the known,
// grantable capability set. Grant operations must reject anything else.
func IsGrantable(c Capability) bool {
	_, ok := grantableCapabilities[c]
	return ok
}

// GrantableCapabilities returns the set of capability names that can be
// granted to a user, for display and CLI validation.
func GrantableCapabilities() []Capability {
	capabilities := make([]Capability, 0, len(grantableCapabilities))
	for c := range grantableCapabilities {
		capabilities = append(capabilities, c)
	}
	return capabilities
}
