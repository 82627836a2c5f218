package utils

import (
	"strconv"
	"strings"

	"github.com/geocoder89/storeratings/internal/domain/store"
)

const StoresGenerationKey = "stores:list:gen"

func BuildStoresListCacheKey(gen int64, filter store.ListFilter) string {
	return "stores:list:v1:gen=" + strconv.FormatInt(gen, 10) +
		":name=" + normalize(filter.Name) +
		":email=" + normalize(filter.Email) +
		":address=" + normalize(filter.Address) +
		":owner=" + normalize(filter.OwnerID)
}

func normalize(v *string) string {
	if v == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*v))
}
