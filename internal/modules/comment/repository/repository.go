package repository

import (
	"context"

	"anoa.com/notevault/internal/entity"
	"anoa.com/notevault/pkg/apperror"
	"anoa.com/notevault/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentRepository interface {
	FindNote(ctx context.Context, noteID uuid.UUID) (*entity.Note, error)
	Create(ctx context.Context, comment *entity.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error)
	UpdateText(ctx context.Context, id uuid.UUID, text string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByNote(ctx context.Context, noteID uuid.UUID, p pagination.Params) ([]entity.Comment, int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) FindNote(ctx context.Context, noteID uuid.UUID) (*entity.Note, error) {
	var note entity.Note
	if err := r.db.WithContext(ctx).Select("id", "title", "uploaded_by").First(&note, "id = ?", noteID).Error; err != nil {
		return nil, apperror.FromGorm(err, "note")
	}
	return &note, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("User").First(comment, "id = ?", comment.ID).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error) {
	var comment entity.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, "id = ?", id).Error; err != nil {
		return nil, apperror.FromGorm(err, "comment")
	}
	return &comment, nil
}

func (r *commentRepository) UpdateText(ctx context.Context, id uuid.UUID, text string) error {
	res := r.db.WithContext(ctx).Model(&entity.Comment{}).Where("id = ?", id).Update("comment", text)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.FromGorm(gorm.ErrRecordNotFound, "comment")
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entity.Comment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.FromGorm(gorm.ErrRecordNotFound, "comment")
	}
	return nil
}

func (r *commentRepository) ListByNote(ctx context.Context, noteID uuid.UUID, p pagination.Params) ([]entity.Comment, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Comment{}).Where("note_id = ?", noteID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []entity.Comment
	err := query.
		Preload("User").
		Order("created_at ASC").
		Order("id ASC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}
