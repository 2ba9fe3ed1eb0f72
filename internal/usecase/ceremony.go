package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/seabird-social/seabird/internal/domain"
)

var ceremonyTracer = otel.Tracer("ceremony")

// registrationEnvelope is the pending state of one registration ceremony:
// the challenge subject plus the verifier's serialized half.
type registrationEnvelope struct {
	Subject RegistrationSubject `json:"subject"`
	State   json.RawMessage     `json:"state"`
}

type assertionEnvelope struct {
	State json.RawMessage `json:"state"`
}

// CeremonyUsecase drives the two-phase registration and authentication
// protocols. Each ceremony is independent and single-use: the pending state
// is consumed on the first complete* call, a second call fails with
// ErrMissingCeremonyState.
type CeremonyUsecase struct {
	actors      ActorRepository
	credentials CredentialRepository
	verifier    CredentialVerifier
	states      CeremonyStateStore
}

func NewCeremonyUsecase(
	actors ActorRepository,
	credentials CredentialRepository,
	verifier CredentialVerifier,
	states CeremonyStateStore,
) *CeremonyUsecase {
	return &CeremonyUsecase{
		actors:      actors,
		credentials: credentials,
		verifier:    verifier,
		states:      states,
	}
}

// BeginRegistration issues a registration challenge. An existing actor
// contributes its stable subject identity and its known descriptors as
// exclusions; an unknown username yields a transient subject from the raw
// username bytes and no actor is created yet.
func (uc *CeremonyUsecase) BeginRegistration(ctx context.Context, sessionID, username, displayName, attestation string) (json.RawMessage, error) {
	ctx, span := ceremonyTracer.Start(ctx, "Ceremony.BeginRegistration")
	defer span.End()

	var subject RegistrationSubject
	var exclude []domain.CredentialDescriptor

	actor, err := uc.actors.GetByUsername(ctx, username)
	switch {
	case err == nil:
		// an actor without an identity cannot be registered against, this
		// might be a system account or one whose way of signing in was removed
		if actor.Identity == nil {
			return nil, domain.ValidationError{Reason: "username not valid"}
		}
		subject = RegistrationSubject{
			ID:          actor.Identity.SubjectID,
			Name:        actor.Username,
			DisplayName: actor.DisplayName,
		}
		exclude = actor.Identity.Descriptors()
	case errors.Is(err, domain.ErrNotFound):
		if displayName == "" {
			displayName = username
		}
		subject = RegistrationSubject{
			ID:          []byte(username),
			Name:        username,
			DisplayName: displayName,
		}
	default:
		return nil, err
	}

	challenge, state, err := uc.verifier.IssueRegistrationChallenge(ctx, subject, exclude, attestation)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	payload, err := json.Marshal(registrationEnvelope{Subject: subject, State: state})
	if err != nil {
		return nil, err
	}
	if err := uc.states.Put(ctx, sessionID, domain.CeremonySlotRegistration, payload); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return challenge, nil
}

// CompleteRegistration consumes the pending registration state, verifies the
// client response, creates the actor if it does not exist yet and binds the
// new credential.
func (uc *CeremonyUsecase) CompleteRegistration(ctx context.Context, sessionID string, clientResponse []byte) (*BoundCredential, domain.Actor, error) {
	ctx, span := ceremonyTracer.Start(ctx, "Ceremony.CompleteRegistration")
	defer span.End()

	payload, err := uc.states.Take(ctx, sessionID, domain.CeremonySlotRegistration)
	if err != nil {
		return nil, domain.Actor{}, err
	}
	var envelope registrationEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, domain.Actor{}, pkgerrors.Wrap(err, "corrupted registration ceremony state")
	}

	// Evaluated against the authoritative store at verification time; this
	// is the serialization point for two racing registrations of one
	// username. The claimed name is the username decoded from the challenge
	// subject, which for an existing identity is not a username at all and
	// therefore never taken.
	nameAvailable := func(ctx context.Context, claimed string) (bool, error) {
		taken, err := uc.actors.IsUsernameTaken(ctx, claimed)
		if err != nil {
			return false, err
		}
		return !taken, nil
	}

	bound, err := uc.verifier.VerifyRegistration(ctx, clientResponse, envelope.State, envelope.Subject, nameAvailable)
	if err != nil {
		span.RecordError(err)
		return nil, domain.Actor{}, err
	}

	actor, err := uc.actors.GetByUsername(ctx, envelope.Subject.Name)
	if errors.Is(err, domain.ErrNotFound) {
		actor, err = domain.NewLocalActor(envelope.Subject.Name, envelope.Subject.DisplayName,
			&domain.CredentialIdentity{SubjectID: envelope.Subject.ID})
		if err != nil {
			return nil, domain.Actor{}, err
		}
		err = uc.actors.Create(ctx, actor)
	}
	if err != nil {
		return nil, domain.Actor{}, err
	}

	credential := domain.Credential{
		UserHandle: bound.UserHandle,
		PublicKey:  bound.PublicKey,
		Descriptor: bound.Descriptor,
	}
	if err := uc.credentials.Bind(ctx, actor.ID, credential); err != nil {
		span.RecordError(err)
		return nil, domain.Actor{}, err
	}

	return bound, actor, nil
}

// BeginAssertion issues an authentication challenge offering the actor's
// known credentials.
func (uc *CeremonyUsecase) BeginAssertion(ctx context.Context, sessionID, username string) (json.RawMessage, error) {
	ctx, span := ceremonyTracer.Start(ctx, "Ceremony.BeginAssertion")
	defer span.End()

	actor, err := uc.actors.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if actor.Identity == nil {
		return nil, domain.NotFoundError{Resource: "username"}
	}

	challenge, state, err := uc.verifier.IssueAssertionChallenge(ctx, actor.Identity.Descriptors())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	payload, err := json.Marshal(assertionEnvelope{State: state})
	if err != nil {
		return nil, err
	}
	if err := uc.states.Put(ctx, sessionID, domain.CeremonySlotAssertion, payload); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return challenge, nil
}

// CompleteAssertion consumes the pending assertion state, resolves the actor
// owning the presented credential, verifies the assertion and persists the
// advanced signature counter.
func (uc *CeremonyUsecase) CompleteAssertion(ctx context.Context, sessionID string, clientResponse []byte) (domain.Actor, error) {
	ctx, span := ceremonyTracer.Start(ctx, "Ceremony.CompleteAssertion")
	defer span.End()

	payload, err := uc.states.Take(ctx, sessionID, domain.CeremonySlotAssertion)
	if err != nil {
		return domain.Actor{}, err
	}
	var envelope assertionEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return domain.Actor{}, pkgerrors.Wrap(err, "corrupted assertion ceremony state")
	}

	credentialID, err := uc.verifier.CredentialIDOf(clientResponse)
	if err != nil {
		return domain.Actor{}, domain.ValidationError{Reason: "could not parse client response"}
	}

	actor, err := uc.actors.GetByCredentialID(ctx, credentialID)
	if err != nil {
		return domain.Actor{}, err
	}
	identity := actor.Identity

	var matched domain.Credential
	for _, c := range identity.Credentials {
		if bytes.Equal(c.Descriptor.ID, credentialID) {
			matched = c
			break
		}
	}

	// A user handle may be claimed by surfaces a different actor controls;
	// accept it only when the credential it maps to is the one presented.
	ownership := func(ctx context.Context, userHandle, credentialID []byte) (bool, error) {
		credential, err := uc.credentials.FindByUserHandle(ctx, userHandle)
		if err != nil {
			return false, err
		}
		return credential != nil && bytes.Equal(credential.Descriptor.ID, credentialID), nil
	}

	result, err := uc.verifier.VerifyAssertion(ctx, clientResponse, envelope.State,
		AssertionSubject{Identity: *identity, Credential: matched}, ownership)
	if err != nil {
		span.RecordError(err)
		return domain.Actor{}, err
	}

	if err := uc.credentials.AdvanceCounter(ctx, actor.ID, result.NewCounter); err != nil {
		span.RecordError(err)
		return domain.Actor{}, err
	}

	return actor, nil
}
