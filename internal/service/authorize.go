package service

import (
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/geocoder89/storeratings/internal/observability"
	"github.com/geocoder89/storeratings/internal/policy"
)

// authorize evaluates the policy on every call and records the outcome.
func authorize(prom *observability.Prom, p user.Principal, action policy.Action, target policy.Target) error {
	err := policy.Authorize(p, action, target)
	prom.IncPolicyDecision(string(action), err == nil)
	return err
}
