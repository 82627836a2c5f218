// Package actorctx carries the authenticated principal on a context.Context so
// code below the HTTP layer can log who acted without depending on gin.
package actorctx

import (
	"context"

	"github.com/geocoder89/storeratings/internal/domain/user"
)

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func PrincipalFrom(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(user.Principal)
	return p, ok && p.ID != ""
}

func UserIDFrom(ctx context.Context) (string, bool) {
	p, ok := PrincipalFrom(ctx)
	return p.ID, ok
}
