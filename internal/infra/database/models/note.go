package models

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	ID          uuid.UUID `gorm:"primaryKey;type:uuid"`
	AuthorID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Author      Actor     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Content     string    `gorm:"type:varchar(4096);not null"`
	PublishDate time.Time `gorm:"type:timestamp with time zone;not null"`
}

// Like is the liked-by edge. The composite primary key makes repeated likes
// of one note by one actor a conflict, which the repository turns into a
// no-op.
type Like struct {
	ActorID uuid.UUID `gorm:"primaryKey;type:uuid"`
	Actor   Actor     `gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE;"`
	NoteID  uuid.UUID `gorm:"primaryKey;type:uuid"`
	Note    Note      `gorm:"foreignKey:NoteID;constraint:OnDelete:CASCADE;"`

	CDate time.Time `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
