package domain

// RequirementKind discriminates the variants of a Requirement.
type RequirementKind int

const (
	// RequireSingle requires the caller to hold exactly one named capability.
	RequireSingle RequirementKind = iota

	// RequireAny requires the caller to satisfy at least one listed slot.
	RequireAny

	// RequireAll requires the caller to satisfy every listed slot.
	RequireAll
)

// Requirement is the declarative access rule attached to a protected
// operation. It is defined once at route registration time and never mutated
// at runtime. Any slot may name CapabilityOwnership; that slot is satisfied
// by the caller being the resource's owning subject instead of by the
// capability set.
type Requirement struct {
	Kind         RequirementKind
	Capabilities []Capability
}

// RequireCapability builds a single-capability requirement.
func RequireCapability(c Capability) Requirement {
	return Requirement{Kind: RequireSingle, Capabilities: []Capability{c}}
}

// RequireAnyOf builds a requirement satisfied by at least one of the listed
// capabilities (or ownership, if listed).
func RequireAnyOf(capabilities ...Capability) Requirement {
	return Requirement{Kind: RequireAny, Capabilities: capabilities}
}

// RequireAllOf builds a requirement satisfied only by every listed capability
// (or ownership, if listed).
func RequireAllOf(capabilities ...Capability) Requirement {
	return Requirement{Kind: RequireAll, Capabilities: capabilities}
}

// Decision is the outcome of evaluating a requirement.
type Decision int

const (
	// Deny rejects the operation.
	Deny Decision = iota

	// Allow permits the operation.
	Allow
)

// Evaluate is the single pure decision function for the permission model.
//
// identity is the authenticated caller, or nil for anonymous requests.
// owner is the resource's owning subject resolved by the enforcement point
// (the "username" path parameter, or the owner of a resource loaded by id);
// an empty owner means no ownership context is available, so ownership slots
// can never be satisfied.
//
// Rules:
//   - Anonymous callers are always denied; no requirement variant permits
//     anonymous access.
//   - An ownership slot is satisfied iff owner is non-empty and equal
//     (case-sensitive) to identity.Username.
//   - A concrete capability slot is satisfied iff the identity holds it.
//     Capability names that are not part of the known set never match.
//   - An empty capability list is a configuration error and evaluates to
//     Deny, never to a silent Allow.
//
// Evaluate has no side effects and is repeatable: the same inputs always
// produce the same decision.
func Evaluate(identity *Identity, requirement Requirement, owner string) Decision {
	if identity == nil {
		return Deny
	}

	if len(requirement.Capabilities) == 0 {
		return Deny
	}

	switch requirement.Kind {
	case RequireSingle:
		if slotSatisfied(identity, requirement.Capabilities[0], owner) {
			return Allow
		}

	case RequireAny:
		for _, c := range requirement.Capabilities {
			if slotSatisfied(identity, c, owner) {
				return Allow
			}
		}

	case RequireAll:
		for _, c := range requirement.Capabilities {
			if !slotSatisfied(identity, c, owner) {
				return Deny
			}
		}
		return Allow
	}

	return Deny
}

// slotSatisfied decides a single requirement slot.
func slotSatisfied(identity *Identity, c Capability, owner string) bool {
	if c == CapabilityOwnership {
		return owner != "" && owner == identity.Username
	}
	return identity.HasCapability(c)
}
