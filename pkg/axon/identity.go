package axon

import "context"

// IdentityKey is the RequestContext key holding the authenticated *Identity
const IdentityKey = "axon.identity"

type identityCtxKey struct{}

// WithIdentity returns a copy of ctx carrying identity
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, identity)
}

// IdentityFrom returns the identity stored in ctx by the dispatcher
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey{}).(*Identity)
	return identity, ok && identity != nil
}

// CurrentIdentity returns the identity attached to the request, or nil on public routes
func CurrentIdentity(c RequestContext) *Identity {
	if identity, ok := c.Get(IdentityKey).(*Identity); ok {
		return identity
	}
	return nil
}

func attachIdentity(c RequestContext, identity *Identity) {
	c.Set(IdentityKey, identity)
	c.SetContext(WithIdentity(c.Context(), identity))
}
