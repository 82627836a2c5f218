package handlers

import (
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/geocoder89/storeratings/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// principal reads the caller set by RequireAuth and answers 401 when absent.
func principal(ctx *gin.Context) (user.Principal, bool) {
	p, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return user.Principal{}, false
	}
	return p, true
}
