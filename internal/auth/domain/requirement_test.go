package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	alice := NewIdentity("alice", []Capability{CapabilityViewExpenses})
	admin := NewIdentity("admin", []Capability{CapabilityManageUsers, CapabilityManageExpenses})

	tests := []struct {
		name        string
		identity    *Identity
		requirement Requirement
		owner       string
		want        Decision
	}{
		{
			name:        "AnonymousDeniedForSingle",
			identity:    nil,
			requirement: RequireCapability(CapabilityViewExpenses),
			owner:       "",
			want:        Deny,
		},
		{
			name:        "AnonymousDeniedEvenAsOwner",
			identity:    nil,
			requirement: RequireAnyOf(CapabilityOwnership),
			owner:       "alice",
			want:        Deny,
		},
		{
			name:        "SingleHeldCapabilityAllows",
			identity:    alice,
			requirement: RequireCapability(CapabilityViewExpenses),
			owner:       "",
			want:        Allow,
		},
		{
			name:        "SingleMissingCapabilityDenies",
			identity:    alice,
			requirement: RequireCapability(CapabilityManageExpenses),
			owner:       "",
			want:        Deny,
		},
		{
			name:        "OwnershipSatisfiedByMatchingOwner",
			identity:    alice,
			requirement: RequireAnyOf(CapabilityOwnership, CapabilityManageExpenses),
			owner:       "alice",
			want:        Allow,
		},
		{
			name:        "OwnershipDeniedForDifferentOwner",
			identity:    alice,
			requirement: RequireAnyOf(CapabilityOwnership),
			owner:       "bob",
			want:        Deny,
		},
		{
			name:        "OwnershipDeniedWithoutOwnerContext",
			identity:    alice,
			requirement: RequireAnyOf(CapabilityOwnership),
			owner:       "",
			want:        Deny,
		},
		{
			name:        "OwnershipIsCaseSensitive",
			identity:    alice,
			requirement: RequireAnyOf(CapabilityOwnership),
			owner:       "Alice",
			want:        Deny,
		},
		{
			name:        "AnyOfFallsBackToCapability",
			identity:    admin,
			requirement: RequireAnyOf(CapabilityOwnership, CapabilityManageExpenses),
			owner:       "alice",
			want:        Allow,
		},
		{
			name:        "AnyOfDeniesWhenNoSlotMatches",
			identity:    alice,
			requirement: RequireAnyOf(CapabilityManageUsers, CapabilityManageExpenses),
			owner:       "",
			want:        Deny,
		},
		{
			name:        "AllOfRequiresEverySlot",
			identity:    admin,
			requirement: RequireAllOf(CapabilityManageUsers, CapabilityManageExpenses),
			owner:       "",
			want:        Allow,
		},
		{
			name:        "AllOfDeniesOnOneMissingSlot",
			identity:    admin,
			requirement: RequireAllOf(CapabilityManageUsers, CapabilityViewTags),
			owner:       "",
			want:        Deny,
		},
		{
			name:        "AllOfWithOwnershipAndCapability",
			identity:    alice,
			requirement: RequireAllOf(CapabilityOwnership, CapabilityViewExpenses),
			owner:       "alice",
			want:        Allow,
		},
		{
			name:        "AllOfWithOwnershipDeniesNonOwner",
			identity:    alice,
			requirement: RequireAllOf(CapabilityOwnership, CapabilityViewExpenses),
			owner:       "bob",
			want:        Deny,
		},
		{
			name:        "EmptyCapabilityListDenies",
			identity:    admin,
			requirement: Requirement{Kind: RequireAny},
			owner:       "admin",
			want:        Deny,
		},
		{
			name:        "UnknownCapabilityNameNeverMatches",
			identity:    NewIdentity("carol", []Capability{Capability("SUPERPOWER")}),
			requirement: RequireCapability(CapabilityManageUsers),
			owner:       "",
			want:        Deny,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.identity, tt.requirement, tt.owner)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_IsRepeatable(t *testing.T) {
	identity := NewIdentity("alice", []Capability{CapabilityViewExpenses})
	requirement := RequireAnyOf(CapabilityOwnership, CapabilityViewExpenses)

	first := Evaluate(identity, requirement, "alice")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(identity, requirement, "alice"))
	}
}

func TestRequirementConstructors(t *testing.T) {
	single := RequireCapability(CapabilityManageTags)
	assert.Equal(t, RequireSingle, single.Kind)
	assert.Equal(t, []Capability{CapabilityManageTags}, single.Capabilities)

	anyOf := RequireAnyOf(CapabilityOwnership, CapabilityManageUsers)
	assert.Equal(t, RequireAny, anyOf.Kind)
	assert.Len(t, anyOf.Capabilities, 2)

	allOf := RequireAllOf(CapabilityManageUsers, CapabilityManagePermissions)
	assert.Equal(t, RequireAll, allOf.Kind)
	assert.Len(t, allOf.Capabilities, 2)
}
