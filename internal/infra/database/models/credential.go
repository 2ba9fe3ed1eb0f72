package models

import "github.com/google/uuid"

// CredentialIdentity is the 1:1 sign-in identity of a local actor, holding
// the challenge subject bytes and the authenticator signature counter.
type CredentialIdentity struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	SubjectID []byte    `gorm:"type:bytea;not null"`
	Counter   uint32    `gorm:"not null;default:0"`

	Credentials []Credential `gorm:"foreignKey:IdentityID;constraint:OnDelete:CASCADE;"`
}

// Credential is one bound authenticator. The descriptor ID is unique across
// the whole system: two actors cannot share a registration record.
type Credential struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	IdentityID     int64  `gorm:"not null;index"`
	UserHandle     []byte `gorm:"type:bytea;not null;index"`
	PublicKey      []byte `gorm:"type:bytea;not null"`
	DescriptorID   []byte `gorm:"type:bytea;not null;uniqueIndex"`
	DescriptorType string `gorm:"type:text;not null;default:'public-key'"`
	// Transports is a JSON array of transport hints.
	Transports string `gorm:"type:jsonb;default:null"`
}
