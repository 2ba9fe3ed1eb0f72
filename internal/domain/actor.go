package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ActorKind distinguishes locally registered actors from actors discovered
// through federation. Every actor is exactly one of the two.
type ActorKind string

const (
	ActorKindLocal  ActorKind = "local"
	ActorKindRemote ActorKind = "remote"
)

// InstanceActorName is the reserved username of the instance actor. The
// leading @ makes it unreachable through registration, which only accepts
// plain usernames.
const InstanceActorName = "@@"

const (
	UsernameMaxLength    = 64
	DisplayNameMaxLength = 4096
)

// Actor is a participant, local or remote. Local actors have a username and
// may carry a credential identity; remote actors are addressed by the
// canonical profile URI of their origin instance and can never sign in here.
type Actor struct {
	ID          uuid.UUID
	Kind        ActorKind
	Username    string
	DisplayName string

	// URI is set for remote actors only.
	URI string

	// Identity is set for local actors capable of signing in.
	Identity *CredentialIdentity
}

func (a Actor) IsLocal() bool  { return a.Kind == ActorKindLocal }
func (a Actor) IsRemote() bool { return a.Kind == ActorKindRemote }

// NewLocalActor mints a local actor with a fresh time-ordered ID. The
// display name defaults to the username. Username and display name are
// limited to 64 characters at creation.
func NewLocalActor(username, displayName string, identity *CredentialIdentity) (Actor, error) {
	if len(username) < 1 {
		return Actor{}, ValidationError{Reason: "username too short, must be at least 1 character"}
	}
	if len(username) > UsernameMaxLength {
		return Actor{}, ValidationError{Reason: fmt.Sprintf("username too long, must not be longer than %d characters", UsernameMaxLength)}
	}
	if displayName != "" {
		if len(displayName) > UsernameMaxLength {
			return Actor{}, ValidationError{Reason: fmt.Sprintf("display name too long, must not be longer than %d characters", UsernameMaxLength)}
		}
	} else {
		displayName = username
	}

	return Actor{
		ID:          uuid.Must(uuid.NewV7()),
		Kind:        ActorKindLocal,
		Username:    username,
		DisplayName: displayName,
		Identity:    identity,
	}, nil
}

// NewRemoteActor constructs a remote actor from a fetched profile. The
// result is transient until a repository persists it as part of a larger
// unit of work.
func NewRemoteActor(uri, username, displayName string) Actor {
	if displayName == "" {
		displayName = username
	}
	return Actor{
		ID:          uuid.Must(uuid.NewV7()),
		Kind:        ActorKindRemote,
		Username:    username,
		DisplayName: displayName,
		URI:         uri,
	}
}
