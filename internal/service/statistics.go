package service

import (
	"context"

	"github.com/geocoder89/storeratings/internal/domain/stats"
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/geocoder89/storeratings/internal/observability"
	"github.com/geocoder89/storeratings/internal/policy"
)

type StatsService struct {
	stats StatsRepository
	prom  *observability.Prom
}

func NewStatsService(repo StatsRepository, prom *observability.Prom) *StatsService {
	return &StatsService{stats: repo, prom: prom}
}

func (s *StatsService) Dashboard(ctx context.Context, p user.Principal) (stats.Dashboard, error) {
	if err := authorize(s.prom, p, policy.StatsView, policy.Target{}); err != nil {
		return stats.Dashboard{}, err
	}

	d, err := s.stats.Dashboard(ctx)
	if err != nil {
		return stats.Dashboard{}, translate(ctx, "stats.dashboard", err)
	}
	return d, nil
}
