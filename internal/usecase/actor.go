package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/seabird-social/seabird/internal/domain"
)

// ActorUsecase is the actor directory: it owns the canonical record of local
// and remote actors and resolves identifiers.
type ActorUsecase struct {
	repo ActorRepository
}

func NewActorUsecase(repo ActorRepository) *ActorUsecase {
	return &ActorUsecase{repo: repo}
}

// ResolveByIdentifier resolves "@username" by case-insensitive username
// match and ID tokens by exact ID. Anything else fails with
// ErrIdentifierNotRecognized.
func (uc *ActorUsecase) ResolveByIdentifier(ctx context.Context, identifier string) (domain.Actor, error) {
	if strings.HasPrefix(identifier, "@") {
		return uc.repo.GetByUsername(ctx, strings.TrimPrefix(identifier, "@"))
	}
	id, err := uuid.Parse(identifier)
	if err != nil {
		return domain.Actor{}, domain.ErrIdentifierNotRecognized
	}
	return uc.repo.GetByID(ctx, id)
}

func (uc *ActorUsecase) ResolveByUsername(ctx context.Context, username string) (domain.Actor, error) {
	return uc.repo.GetByUsername(ctx, username)
}

func (uc *ActorUsecase) ResolveByID(ctx context.Context, id uuid.UUID) (domain.Actor, error) {
	return uc.repo.GetByID(ctx, id)
}

func (uc *ActorUsecase) ResolveByCredentialID(ctx context.Context, credentialID []byte) (domain.Actor, error) {
	return uc.repo.GetByCredentialID(ctx, credentialID)
}

func (uc *ActorUsecase) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	return uc.repo.IsUsernameTaken(ctx, username)
}

// CreateLocalActor validates, mints and persists a new local actor.
func (uc *ActorUsecase) CreateLocalActor(ctx context.Context, username, displayName string, identity *domain.CredentialIdentity) (domain.Actor, error) {
	actor, err := domain.NewLocalActor(username, displayName, identity)
	if err != nil {
		return domain.Actor{}, err
	}
	if err := uc.repo.Create(ctx, actor); err != nil {
		return domain.Actor{}, err
	}
	return actor, nil
}

// ResolveOrCreateRemoteActor returns the known actor with the given URI, or
// a transient remote actor that is not persisted until a caller commits it
// as part of its own unit of work.
func (uc *ActorUsecase) ResolveOrCreateRemoteActor(ctx context.Context, uri, username, displayName string) (domain.Actor, error) {
	actor, err := uc.repo.GetByURI(ctx, uri)
	if err == nil {
		// TODO refresh cached display metadata from the latest profile
		return actor, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Actor{}, err
	}
	return domain.NewRemoteActor(uri, username, displayName), nil
}

func (uc *ActorUsecase) Update(ctx context.Context, actor domain.Actor) error {
	return uc.repo.Update(ctx, actor)
}

// GetInstanceActor retrieves the reserved instance actor ensured at startup.
func (uc *ActorUsecase) GetInstanceActor(ctx context.Context) (domain.Actor, error) {
	return uc.repo.GetByUsername(ctx, domain.InstanceActorName)
}
