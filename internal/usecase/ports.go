package usecase

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/seabird-social/seabird/internal/domain"
)

// ActorRepository defines persistence and lookup for the actor directory.
// Username lookups are case-insensitive and match local actors only; remote
// usernames are not unique.
type ActorRepository interface {
	GetByUsername(ctx context.Context, username string) (domain.Actor, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Actor, error)
	GetByURI(ctx context.Context, uri string) (domain.Actor, error)
	GetByCredentialID(ctx context.Context, credentialID []byte) (domain.Actor, error)
	IsUsernameTaken(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, actor domain.Actor) error
	Update(ctx context.Context, actor domain.Actor) error
}

// NoteRepository defines persistence for notes and their liked-by relation.
type NoteRepository interface {
	Publish(ctx context.Context, note domain.Note) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Note, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]domain.Note, int64, error)
	// Like inserts the like edge idempotently. A transient remote actor is
	// persisted in the same transaction as the edge.
	Like(ctx context.Context, actor domain.Actor, noteID uuid.UUID) error
	ListLikes(ctx context.Context, noteID uuid.UUID) ([]domain.Actor, error)
}

// CredentialRepository defines persistence for bound authenticator
// credentials and the per-actor signature counter.
type CredentialRepository interface {
	ListDescriptors(ctx context.Context, actorID uuid.UUID) ([]domain.CredentialDescriptor, error)
	Bind(ctx context.Context, actorID uuid.UUID, credential domain.Credential) error
	FindByUserHandle(ctx context.Context, userHandle []byte) (*domain.Credential, error)
	AdvanceCounter(ctx context.Context, actorID uuid.UUID, counter uint32) error
}

// CeremonyStateStore holds at most one serialized pending challenge per
// session and slot. Take must remove the value atomically with the read so
// two racing completions cannot both consume one challenge.
type CeremonyStateStore interface {
	Put(ctx context.Context, sessionID, slot string, payload []byte) error
	Take(ctx context.Context, sessionID, slot string) ([]byte, error)
}

// RemoteActorResolver yields the directory's actor for a remote URI: the
// canonical known record, or a transient one the caller commits as part of
// its own unit of work.
type RemoteActorResolver interface {
	ResolveOrCreateRemoteActor(ctx context.Context, uri, username, displayName string) (domain.Actor, error)
}

// ProfileFetcher retrieves the activity-stream profile document of a remote
// actor.
type ProfileFetcher interface {
	Fetch(ctx context.Context, uri string) (domain.RemoteProfile, error)
}

// RegistrationSubject is the challenge subject of a registration ceremony:
// either the stable byte identity of an existing actor or a transient
// identity synthesized from the raw username bytes.
type RegistrationSubject struct {
	ID          []byte `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// AssertionSubject is everything the verifier needs to check one assertion:
// the credential matching the client response, all credentials of the actor
// for multi-authenticator support, and the known signature counter.
type AssertionSubject struct {
	Identity   domain.CredentialIdentity
	Credential domain.Credential
}

// BoundCredential is the verifier's output for a successful registration.
type BoundCredential struct {
	UserHandle []byte                      `json:"userHandle"`
	PublicKey  []byte                      `json:"publicKey"`
	Descriptor domain.CredentialDescriptor `json:"descriptor"`
}

// AssertionResult reports a successful assertion along with the advanced
// authenticator counter to persist.
type AssertionResult struct {
	NewCounter uint32
}

// CredentialVerifier is the external WebAuthn collaborator. Challenges are
// opaque JSON documents handed to the caller; state is the serialized
// verifier-side half of the ceremony, stored in the CeremonyStateStore
// between the two phases.
type CredentialVerifier interface {
	IssueRegistrationChallenge(ctx context.Context, subject RegistrationSubject, exclude []domain.CredentialDescriptor, attestation string) (challenge json.RawMessage, state []byte, err error)
	// VerifyRegistration checks the client response against the stored state.
	// nameAvailable is evaluated at verification time against the
	// authoritative store; it receives the username decoded from the
	// challenge subject.
	VerifyRegistration(ctx context.Context, clientResponse, state []byte, subject RegistrationSubject, nameAvailable func(context.Context, string) (bool, error)) (*BoundCredential, error)
	IssueAssertionChallenge(ctx context.Context, allow []domain.CredentialDescriptor) (challenge json.RawMessage, state []byte, err error)
	// CredentialIDOf extracts the credential descriptor ID the client claims
	// to have signed with, without verifying anything.
	CredentialIDOf(clientResponse []byte) ([]byte, error)
	// VerifyAssertion checks the client response. ownership decides whether
	// a claimed user handle owns the presented credential ID.
	VerifyAssertion(ctx context.Context, clientResponse, state []byte, subject AssertionSubject, ownership func(ctx context.Context, userHandle, credentialID []byte) (bool, error)) (*AssertionResult, error)
}

// AuthSessionStore issues and resolves opaque authenticated-session tokens.
type AuthSessionStore interface {
	IssueAuthSession(ctx context.Context, username string) (string, error)
	ResolveAuthSession(ctx context.Context, token string) (string, error)
}
