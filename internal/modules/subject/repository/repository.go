package repository

import (
	"context"
	"strings"

	"anoa.com/notevault/internal/entity"
	"anoa.com/notevault/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubjectRepository interface {
	Create(ctx context.Context, subject *entity.Subject) error
	FindByCode(ctx context.Context, code string) (*entity.Subject, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Subject, error)
	FindAll(ctx context.Context, filter string) ([]entity.Subject, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	CountNotes(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type subjectRepository struct {
	db *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) Create(ctx context.Context, subject *entity.Subject) error {
	return apperror.FromGorm(r.db.WithContext(ctx).Create(subject).Error, "subject")
}

func (r *subjectRepository) FindByCode(ctx context.Context, code string) (*entity.Subject, error) {
	var subject entity.Subject
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&subject).Error; err != nil {
		return nil, apperror.FromGorm(err, "subject")
	}
	return &subject, nil
}

func (r *subjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Subject, error) {
	var subject entity.Subject
	if err := r.db.WithContext(ctx).First(&subject, "id = ?", id).Error; err != nil {
		return nil, apperror.FromGorm(err, "subject")
	}
	return &subject, nil
}

func (r *subjectRepository) FindAll(ctx context.Context, filter string) ([]entity.Subject, error) {
	var subjects []entity.Subject
	query := r.db.WithContext(ctx)

	if filter != "" {
		like := "%" + strings.ToLower(filter) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", like, like)
	}

	if err := query.Order("name ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *subjectRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&entity.Subject{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return apperror.FromGorm(res.Error, "subject")
	}
	if res.RowsAffected == 0 {
		return apperror.FromGorm(gorm.ErrRecordNotFound, "subject")
	}
	return nil
}

func (r *subjectRepository) CountNotes(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Note{}).Where("subject_id = ?", id).Count(&count).Error
	return count, err
}

func (r *subjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entity.Subject{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.FromGorm(gorm.ErrRecordNotFound, "subject")
	}
	return nil
}
