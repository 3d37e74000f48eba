// Package identity carries the authenticated caller through a request.
package identity

import (
	"context"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"verifyapi/internal/model"
)

// Actor is the authenticated principal performing an operation.
type Actor struct {
	UserID string
	Roles  mapset.Set[string]
}

// NewActor builds an actor; role names are upper-cased.
func NewActor(userID string, roles ...string) Actor {
	set := mapset.NewThreadUnsafeSet[string]()
	for _, r := range roles {
		if r = strings.ToUpper(strings.TrimSpace(r)); r != "" {
			set.Add(r)
		}
	}
	return Actor{UserID: userID, Roles: set}
}

// Has reports whether the actor holds role.
func (a Actor) Has(role model.Role) bool {
	return a.Roles != nil && a.Roles.Contains(string(role))
}

// IsAdmin reports whether the actor may review documents and decide grants.
func (a Actor) IsAdmin() bool {
	return a.Has(model.RoleAdmin)
}

type actorKey struct{}

// WithActor returns a copy of ctx carrying a.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// FromContext returns the actor stored in ctx, if any.
func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || a.UserID == "" {
		return Actor{}, false
	}
	return a, true
}
