package handlers

import (
	"github.com/geocoder89/storeratings/internal/utils"
	"github.com/gin-gonic/gin"
)

// uuidParam reads a path id and answers 400 when it is not a UUID, so
// malformed ids never reach the database.
func uuidParam(ctx *gin.Context, name string) (string, bool) {
	id := ctx.Param(name)
	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid id", gin.H{
			"fields": []FieldError{{Field: name, Rule: "uuid", Message: "must be a valid UUID"}},
		})
		return "", false
	}
	return id, true
}

func optionalQuery(ctx *gin.Context, key string) *string {
	v, ok := ctx.GetQuery(key)
	if !ok || v == "" {
		return nil
	}
	return &v
}
