package stats

// Dashboard holds the admin overview figures. AverageRating is the mean of
// per-store averages over stores with at least one rating.
type Dashboard struct {
	TotalUsers    int      `json:"totalUsers"`
	StoreOwners   int      `json:"storeOwners"`
	TotalStores   int      `json:"totalStores"`
	TotalRatings  int      `json:"totalRatings"`
	AverageRating *float64 `json:"averageRating"`
}
