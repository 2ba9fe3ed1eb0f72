package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seabird-social/seabird/internal/domain"
	"github.com/seabird-social/seabird/internal/infra/database/models"
)

type ActorRepository struct {
	db *gorm.DB
}

func NewActorRepository(db *gorm.DB) *ActorRepository {
	return &ActorRepository{db: db}
}

// EnsureInstanceActor creates the reserved instance actor if it does not
// exist yet. Called once at startup; safe to repeat.
func (r *ActorRepository) EnsureInstanceActor(ctx context.Context) error {
	instance, err := domain.NewLocalActor(domain.InstanceActorName, "Instance Actor", nil)
	if err != nil {
		return err
	}
	model := actorToModel(instance)
	return r.db.WithContext(ctx).
		Where("kind = ? AND username = ?", models.KindLocal, domain.InstanceActorName).
		FirstOrCreate(&model).Error
}

func (r *ActorRepository) GetByUsername(ctx context.Context, username string) (domain.Actor, error) {
	var model models.Actor
	err := r.db.WithContext(ctx).
		Preload("Identity.Credentials").
		Where("kind = ? AND LOWER(username) = LOWER(?)", models.KindLocal, username).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Actor{}, domain.NotFoundError{Resource: "actor"}
		}
		return domain.Actor{}, err
	}
	return actorToDomain(model), nil
}

func (r *ActorRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Actor, error) {
	var model models.Actor
	err := r.db.WithContext(ctx).
		Preload("Identity.Credentials").
		Where("id = ?", id).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Actor{}, domain.NotFoundError{Resource: "actor"}
		}
		return domain.Actor{}, err
	}
	return actorToDomain(model), nil
}

func (r *ActorRepository) GetByURI(ctx context.Context, uri string) (domain.Actor, error) {
	var model models.Actor
	err := r.db.WithContext(ctx).
		Where("uri = ?", uri).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Actor{}, domain.NotFoundError{Resource: "actor"}
		}
		return domain.Actor{}, err
	}
	return actorToDomain(model), nil
}

func (r *ActorRepository) GetByCredentialID(ctx context.Context, credentialID []byte) (domain.Actor, error) {
	var credential models.Credential
	err := r.db.WithContext(ctx).
		Where("descriptor_id = ?", credentialID).
		Take(&credential).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Actor{}, domain.NotFoundError{Resource: "actor"}
		}
		return domain.Actor{}, err
	}

	var identity models.CredentialIdentity
	err = r.db.WithContext(ctx).
		Preload("Credentials").
		Where("id = ?", credential.IdentityID).
		Take(&identity).Error
	if err != nil {
		return domain.Actor{}, err
	}

	var model models.Actor
	err = r.db.WithContext(ctx).
		Where("id = ?", identity.ActorID).
		Take(&model).Error
	if err != nil {
		return domain.Actor{}, err
	}
	model.Identity = &identity
	return actorToDomain(model), nil
}

func (r *ActorRepository) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Actor{}).
		Where("kind = ? AND LOWER(username) = LOWER(?)", models.KindLocal, username).
		Count(&count).Error
	return count > 0, err
}

func (r *ActorRepository) Create(ctx context.Context, actor domain.Actor) error {
	model := actorToModel(actor)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *ActorRepository) Update(ctx context.Context, actor domain.Actor) error {
	model := actorToModel(actor)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&model).Error; err != nil {
			return err
		}
		if model.Identity != nil {
			return tx.Save(model.Identity).Error
		}
		return nil
	})
}

// --- model conversion ---

func actorToModel(actor domain.Actor) models.Actor {
	model := models.Actor{
		ID:          actor.ID,
		Kind:        string(actor.Kind),
		Username:    actor.Username,
		DisplayName: actor.DisplayName,
	}
	if actor.URI != "" {
		uri := actor.URI
		model.URI = &uri
	}
	if actor.Identity != nil {
		model.Identity = &models.CredentialIdentity{
			ActorID:   actor.ID,
			SubjectID: actor.Identity.SubjectID,
			Counter:   actor.Identity.Counter,
		}
	}
	return model
}

func actorToDomain(model models.Actor) domain.Actor {
	actor := domain.Actor{
		ID:          model.ID,
		Kind:        domain.ActorKind(model.Kind),
		Username:    model.Username,
		DisplayName: model.DisplayName,
	}
	if model.URI != nil {
		actor.URI = *model.URI
	}
	if model.Identity != nil {
		identity := identityToDomain(*model.Identity)
		actor.Identity = &identity
	}
	return actor
}

func identityToDomain(model models.CredentialIdentity) domain.CredentialIdentity {
	identity := domain.CredentialIdentity{
		SubjectID: model.SubjectID,
		Counter:   model.Counter,
	}
	for _, c := range model.Credentials {
		identity.Credentials = append(identity.Credentials, credentialToDomain(c))
	}
	return identity
}

func credentialToDomain(model models.Credential) domain.Credential {
	var transports []string
	if model.Transports != "" {
		// ignore malformed hint arrays, they are optional
		_ = json.Unmarshal([]byte(model.Transports), &transports)
	}
	return domain.Credential{
		ID:         model.ID,
		UserHandle: model.UserHandle,
		PublicKey:  model.PublicKey,
		Descriptor: domain.CredentialDescriptor{
			ID:         model.DescriptorID,
			Type:       model.DescriptorType,
			Transports: transports,
		},
	}
}
