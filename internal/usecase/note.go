package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/seabird-social/seabird/internal/domain"
)

const defaultNotePageSize = 100

// NoteUsecase is the note store: local posts and their liked-by relation.
type NoteUsecase struct {
	repo NoteRepository
}

func NewNoteUsecase(repo NoteRepository) *NoteUsecase {
	return &NoteUsecase{repo: repo}
}

// Publish validates and persists a new note authored by a local actor.
func (uc *NoteUsecase) Publish(ctx context.Context, author domain.Actor, content string) (domain.Note, error) {
	note, err := domain.NewNote(author, content)
	if err != nil {
		return domain.Note{}, err
	}
	if err := uc.repo.Publish(ctx, note); err != nil {
		return domain.Note{}, err
	}
	return note, nil
}

func (uc *NoteUsecase) GetByID(ctx context.Context, id uuid.UUID) (domain.Note, error) {
	return uc.repo.GetByID(ctx, id)
}

// ListByAuthor returns a newest-first page of the actor's notes plus the
// total count of the unpaged set.
func (uc *NoteUsecase) ListByAuthor(ctx context.Context, author domain.Actor, limit, offset int) ([]domain.Note, int64, error) {
	if limit <= 0 {
		limit = defaultNotePageSize
	}
	if offset < 0 {
		offset = 0
	}
	return uc.repo.ListByAuthor(ctx, author.ID, limit, offset)
}

// Like records that the actor likes the note. Liking twice is a no-op; an
// unknown remote actor is persisted together with the edge.
func (uc *NoteUsecase) Like(ctx context.Context, actor domain.Actor, note domain.Note) error {
	return uc.repo.Like(ctx, actor, note.ID)
}

func (uc *NoteUsecase) ListLikes(ctx context.Context, note domain.Note) ([]domain.Actor, error) {
	return uc.repo.ListLikes(ctx, note.ID)
}
