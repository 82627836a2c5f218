// Package policy decides whether a principal may perform an action on a target.
// Decide is pure: no I/O, no caching, same inputs give the same answer.
package policy

import (
	"github.com/geocoder89/storeratings/internal/apperr"
	"github.com/geocoder89/storeratings/internal/domain/user"
)

type Action string

const (
	ProfileRead    Action = "profile.read"
	ProfileUpdate  Action = "profile.update"
	PasswordChange Action = "password.change"
	StoreCreate    Action = "store.create"
	StoreUpdate    Action = "store.update"
	StoreDelete    Action = "store.delete"
	RatingUpsert   Action = "rating.upsert"
	RatingDelete   Action = "rating.delete"
	UserList       Action = "user.list"
	UserDelete     Action = "user.delete"
	StatsView      Action = "stats.view"
)

// Target carries the ownership facts an action is checked against.
// UserID is the user a profile or rating belongs to, OwnerID the owner of a store.
type Target struct {
	UserID  string
	OwnerID string
}

type Decision bool

const (
	Allow Decision = true
	Deny  Decision = false
)

func Decide(p user.Principal, action Action, target Target) Decision {
	if p.ID == "" || !p.Role.Valid() {
		return Deny
	}

	switch action {
	case ProfileRead, ProfileUpdate, PasswordChange:
		return Decision(target.UserID != "" && p.ID == target.UserID)

	case StoreCreate:
		return Decision(p.Role == user.RoleStoreOwner)

	case StoreUpdate, StoreDelete:
		switch p.Role {
		case user.RoleAdmin:
			return Allow
		case user.RoleStoreOwner:
			return Decision(target.OwnerID != "" && p.ID == target.OwnerID)
		}
		return Deny

	case RatingUpsert:
		return Decision(target.UserID != "" && p.ID == target.UserID)

	case RatingDelete:
		if p.Role == user.RoleAdmin {
			return Allow
		}
		return Decision(target.UserID != "" && p.ID == target.UserID)

	case UserList, UserDelete, StatsView:
		return Decision(p.Role == user.RoleAdmin)
	}

	return Deny
}

// Authorize turns a Deny into an apperr. A principal without an id is unauthenticated.
func Authorize(p user.Principal, action Action, target Target) error {
	if p.ID == "" {
		return apperr.Unauthenticated("unauthorized", "Authentication required")
	}
	if Decide(p, action, target) == Deny {
		return apperr.Forbidden("forbidden", "You are not allowed to perform this action")
	}
	return nil
}
