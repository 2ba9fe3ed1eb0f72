package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seabird-social/seabird/internal/domain"
	"github.com/seabird-social/seabird/internal/infra/database/models"
)

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Publish(ctx context.Context, note domain.Note) error {
	model := models.Note{
		ID:          note.ID,
		AuthorID:    note.Author.ID,
		Content:     note.Content,
		PublishDate: note.PublishDate,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *NoteRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Note, error) {
	var model models.Note
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Note{}, domain.NotFoundError{Resource: "note"}
		}
		return domain.Note{}, err
	}
	return noteToDomain(model), nil
}

// ListByAuthor returns a newest-first page by ID, which is time-ordered,
// plus the total count of the author's notes.
func (r *NoteRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]domain.Note, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Note{}).
		Where("author_id = ?", authorID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var rows []models.Note
	err = r.db.WithContext(ctx).
		Preload("Author").
		Where("author_id = ?", authorID).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	notes := make([]domain.Note, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, noteToDomain(row))
	}
	return notes, total, nil
}

// Like inserts the like edge, creating the remote actor in the same
// transaction when it is not known yet. Both inserts tolerate concurrent
// duplicates: actor creation loses to an existing row with the same URI, the
// edge insert is a no-op when the pair already exists.
func (r *NoteRepository) Like(ctx context.Context, actor domain.Actor, noteID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actorID := actor.ID

		if actor.IsRemote() {
			model := actorToModel(actor)
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "uri"}},
				DoNothing: true,
			}).Create(&model).Error
			if err != nil {
				return err
			}

			// the row may predate this call, the edge must reference the
			// canonical ID
			var existing models.Actor
			if err := tx.Where("uri = ?", actor.URI).Take(&existing).Error; err != nil {
				return err
			}
			actorID = existing.ID
		}

		like := models.Like{ActorID: actorID, NoteID: noteID}
		return tx.Clauses(clause.OnConflict{
			DoNothing: true,
		}).Create(&like).Error
	})
}

func (r *NoteRepository) ListLikes(ctx context.Context, noteID uuid.UUID) ([]domain.Actor, error) {
	var rows []models.Actor
	err := r.db.WithContext(ctx).
		Joins("JOIN likes ON likes.actor_id = actors.id").
		Where("likes.note_id = ?", noteID).
		Order("likes.c_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	actors := make([]domain.Actor, 0, len(rows))
	for _, row := range rows {
		actors = append(actors, actorToDomain(row))
	}
	return actors, nil
}

func noteToDomain(model models.Note) domain.Note {
	return domain.Note{
		ID:          model.ID,
		Author:      actorToDomain(model.Author),
		Content:     model.Content,
		PublishDate: model.PublishDate,
	}
}
