package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/seabird-social/seabird/internal/domain"
	"github.com/seabird-social/seabird/internal/infra/database/models"
)

type CredentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) ListDescriptors(ctx context.Context, actorID uuid.UUID) ([]domain.CredentialDescriptor, error) {
	identity, err := r.identityOf(ctx, actorID)
	if err != nil {
		return nil, err
	}

	descriptors := make([]domain.CredentialDescriptor, 0, len(identity.Credentials))
	for _, c := range identity.Credentials {
		descriptors = append(descriptors, credentialToDomain(c).Descriptor)
	}
	return descriptors, nil
}

// Bind appends a credential to the actor's identity. A descriptor ID already
// bound anywhere in the system fails with ErrDuplicateCredential.
func (r *CredentialRepository) Bind(ctx context.Context, actorID uuid.UUID, credential domain.Credential) error {
	identity, err := r.identityOf(ctx, actorID)
	if err != nil {
		return err
	}

	transports := ""
	if len(credential.Descriptor.Transports) > 0 {
		serialized, err := json.Marshal(credential.Descriptor.Transports)
		if err != nil {
			return err
		}
		transports = string(serialized)
	}

	descriptorType := credential.Descriptor.Type
	if descriptorType == "" {
		descriptorType = "public-key"
	}

	model := models.Credential{
		IdentityID:     identity.ID,
		UserHandle:     credential.UserHandle,
		PublicKey:      credential.PublicKey,
		DescriptorID:   credential.Descriptor.ID,
		DescriptorType: descriptorType,
		Transports:     transports,
	}
	err = r.db.WithContext(ctx).Create(&model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateCredential
	}
	return err
}

// FindByUserHandle looks a credential up globally, not scoped to one actor.
// A missing credential is (nil, nil); the caller decides.
func (r *CredentialRepository) FindByUserHandle(ctx context.Context, userHandle []byte) (*domain.Credential, error) {
	var model models.Credential
	err := r.db.WithContext(ctx).
		Where("user_handle = ?", userHandle).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	credential := credentialToDomain(model)
	return &credential, nil
}

// AdvanceCounter persists the authenticator signature counter after a
// successful assertion.
func (r *CredentialRepository) AdvanceCounter(ctx context.Context, actorID uuid.UUID, counter uint32) error {
	result := r.db.WithContext(ctx).Model(&models.CredentialIdentity{}).
		Where("actor_id = ?", actorID).
		Update("counter", counter)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "credential identity"}
	}
	return nil
}

func (r *CredentialRepository) identityOf(ctx context.Context, actorID uuid.UUID) (models.CredentialIdentity, error) {
	var identity models.CredentialIdentity
	err := r.db.WithContext(ctx).
		Preload("Credentials").
		Where("actor_id = ?", actorID).
		Take(&identity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return identity, domain.NotFoundError{Resource: "credential identity"}
	}
	if err != nil {
		return identity, pkgerrors.Wrap(err, "failed to load credential identity")
	}
	return identity, nil
}
