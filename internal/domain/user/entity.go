package user

import "context"

type Role string

const (
	RoleAdmin    Role = "admin"    // Full access, including record overrides
	RoleHR       Role = "hr"       // Reviews and corrects attendance
	RoleEmployee Role = "employee" // Owns their own clock sessions
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleEmployee:
		return true
	}
	return false
}

// Actor is an already-authenticated identity on whose behalf an operation
// runs. It is attributed in the audit trail.
type Actor struct {
	ID   string
	Name string
	Role Role
}

// IsAdmin checks if actor may override attendance records
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleHR
}

// System is the actor used by background jobs and the CLI.
func System() Actor {
	return Actor{ID: "system", Name: "System", Role: RoleAdmin}
}

type actorKey struct{}

// WithActor stores the actor in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the actor stored by WithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
