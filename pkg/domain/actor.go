package domain

// ActorKind classifies who (or what) performed an action.
type ActorKind string

const (
	ActorUser      ActorKind = "user"
	ActorSystem    ActorKind = "system"
	ActorAnonymous ActorKind = "anonymous"
)

// Actor is the entity performing an action. It is resolved at the HTTP
// boundary and passed explicitly into every orchestrator call; services never
// read it from ambient state.
type Actor struct {
	ID          string    `json:"id"`
	Kind        ActorKind `json:"kind"`
	DisplayName string    `json:"display_name,omitempty"`
	AuthMethod  string    `json:"auth_method,omitempty"`
	Admin       bool      `json:"admin"`
}

// IsAdmin reports whether the actor holds the admin capability. Only admins
// may invoke destructive operations or decide approvals.
func (a Actor) IsAdmin() bool { return a.Admin }

// AnonymousActor is synthesized when no authenticated session exists. Denied
// attempts by anonymous callers must still be auditable, so the actor carries
// a stable identifier rather than an empty one.
func AnonymousActor() Actor {
	return Actor{
		ID:          "anonymous",
		Kind:        ActorAnonymous,
		DisplayName: "Anonymous",
	}
}

// SystemActor identifies internal jobs acting without a user session.
func SystemActor(name string) Actor {
	return Actor{
		ID:          name,
		Kind:        ActorSystem,
		DisplayName: name,
		AuthMethod:  "internal",
		Admin:       true,
	}
}
