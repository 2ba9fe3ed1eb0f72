package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	KindLocal  = "local"
	KindRemote = "remote"
)

// Actor rows cover both local and remote actors. Username uniqueness is
// enforced case-insensitively for local rows only; remote usernames are
// whatever their origin instance says they are.
type Actor struct {
	ID          uuid.UUID `gorm:"primaryKey;type:uuid"`
	Kind        string    `gorm:"type:text;not null;index"`
	Username    string    `gorm:"type:varchar(256);not null;index:idx_actors_local_username,unique,expression:lower(username),where:kind = 'local'"`
	DisplayName string    `gorm:"type:varchar(4096);not null"`
	URI         *string   `gorm:"type:text;uniqueIndex"`

	Identity *CredentialIdentity `gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE;"`

	CDate time.Time `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
