package repository

import (
	"context"

	"anoa.com/notevault/internal/entity"
	"anoa.com/notevault/pkg/apperror"
	"anoa.com/notevault/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookmarkRepository interface {
	NoteExists(ctx context.Context, noteID uuid.UUID) (bool, error)
	Create(ctx context.Context, bookmark *entity.Bookmark) error
	Delete(ctx context.Context, userID, noteID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]entity.Bookmark, int64, error)
}

type bookmarkRepository struct {
	db *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

func (r *bookmarkRepository) NoteExists(ctx context.Context, noteID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Note{}).Where("id = ?", noteID).Count(&count).Error
	return count > 0, err
}

// Create relies on the (user_id, note_id) unique index to reject duplicates.
func (r *bookmarkRepository) Create(ctx context.Context, bookmark *entity.Bookmark) error {
	return apperror.FromGorm(r.db.WithContext(ctx).Create(bookmark).Error, "bookmark")
}

func (r *bookmarkRepository) Delete(ctx context.Context, userID, noteID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND note_id = ?", userID, noteID).
		Delete(&entity.Bookmark{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.FromGorm(gorm.ErrRecordNotFound, "bookmark")
	}
	return nil
}

func (r *bookmarkRepository) ListByUser(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]entity.Bookmark, int64, error) {
	var (
		bookmarks []entity.Bookmark
		total     int64
	)

	query := r.db.WithContext(ctx).Model(&entity.Bookmark{}).
		Joins("JOIN notes ON notes.id = bookmarks.note_id").
		Where("bookmarks.user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Note.Subject").
		Preload("Note.Uploader").
		Order("bookmarks.created_at DESC").
		Order("bookmarks.id DESC").
		Limit(p.Limit).
		Offset(p.Offset()).
		Find(&bookmarks).Error
	if err != nil {
		return nil, 0, err
	}

	return bookmarks, total, nil
}
