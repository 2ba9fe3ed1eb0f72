package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const NoteContentMaxLength = 4096

// Note is a local post. Notes are only authored by local actors; remote
// content is never stored here.
type Note struct {
	ID          uuid.UUID
	Author      Actor
	Content     string
	PublishDate time.Time
}

// NewNote mints a note with a fresh time-ordered ID and the current time as
// its immutable publish date.
func NewNote(author Actor, content string) (Note, error) {
	if len(content) < 1 {
		return Note{}, ValidationError{Reason: "note content must not be empty"}
	}
	if len(content) > NoteContentMaxLength {
		return Note{}, ValidationError{Reason: fmt.Sprintf("note content must not be longer than %d characters", NoteContentMaxLength)}
	}
	return Note{
		ID:          uuid.Must(uuid.NewV7()),
		Author:      author,
		Content:     content,
		PublishDate: time.Now().UTC(),
	}, nil
}
