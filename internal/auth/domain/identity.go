package domain

import (
	"context"
)

// Identity is the authenticated subject for one request: a username plus the
// capability set resolved at authentication time. Identities are constructed
// fresh per request from a verified token; they are never cached across
// requests.
type Identity struct {
	Username     string
	Capabilities map[Capability]struct{}
}

// NewIdentity builds an Identity from a username and a list of capability
// names. Unknown names are carried verbatim; they simply never satisfy a
// requirement slot.
func NewIdentity(username string, capabilities []Capability) *Identity {
	set := make(map[Capability]struct{}, len(capabilities))
	for _, c := range capabilities {
		set[c] = struct{}{}
	}
	return &Identity{Username: username, Capabilities: set}
}

// HasCapability reports whether the identity holds the given capability.
func (i *Identity) HasCapability(c Capability) bool {
	if i == nil {
		return false
	}
	_, ok := i.Capabilities[c]
	return ok
}

// identityKey is a context key type for storing the authenticated identity.
type identityKey struct{}

// WithIdentity stores an authenticated identity in the context.
// This is called by the authentication middleware after successful token
// verification; identity is always passed explicitly through the request
// context, never through ambient state.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext retrieves the authenticated identity from the context.
// Returns (nil, false) for anonymous requests.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*Identity)
	return identity, ok && identity != nil
}
