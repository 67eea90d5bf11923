package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"anoa.com/notevault/internal/entity"
	"anoa.com/notevault/pkg/apperror"
	"anoa.com/notevault/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NoteFilter narrows note listings. ListedOnly applies the public listing
// predicate (approved and public); PendingOnly selects the moderation queue.
type NoteFilter struct {
	SubjectID   *uuid.UUID
	Semester    string
	UploadedBy  *uuid.UUID
	Search      string
	ListedOnly  bool
	PendingOnly bool
}

type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Note, error)
	SubjectExists(ctx context.Context, id uuid.UUID) (bool, error)
	Approve(ctx context.Context, id, approverID uuid.UUID, at time.Time) (*entity.Note, error)
	DeleteCascade(ctx context.Context, id uuid.UUID) error
	RecordDownload(ctx context.Context, log *entity.DownloadLog) error
	List(ctx context.Context, filter NoteFilter, p pagination.Params) ([]entity.Note, int64, error)
	ReconcileDownloadCounts(ctx context.Context) (int64, error)
}

type noteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *entity.Note) error {
	return apperror.FromGorm(r.db.WithContext(ctx).Create(note).Error, "note")
}

func (r *noteRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Note, error) {
	var note entity.Note
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Uploader").
		First(&note, "id = ?", id).Error
	if err != nil {
		return nil, apperror.FromGorm(err, "note")
	}
	return &note, nil
}

func (r *noteRepository) SubjectExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Subject{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Approve moves a pending note to approved. The conditional update guards
// against two moderators approving the same note concurrently.
func (r *noteRepository) Approve(ctx context.Context, id, approverID uuid.UUID, at time.Time) (*entity.Note, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var note entity.Note
		if err := tx.Select("id", "is_approved").First(&note, "id = ?", id).Error; err != nil {
			return apperror.FromGorm(err, "note")
		}
		if note.IsApproved {
			return fmt.Errorf("note already approved: %w", apperror.ErrAlreadyApproved)
		}

		res := tx.Model(&entity.Note{}).
			Where("id = ? AND is_approved = ?", id, false).
			Updates(map[string]any{
				"is_approved": true,
				"approved_by": approverID,
				"approved_at": at,
				"updated_at":  at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("note already approved: %w", apperror.ErrAlreadyApproved)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// DeleteCascade removes the note with its download logs, bookmarks, comments
// and notifications in one transaction.
func (r *noteRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dependents := []any{
			&entity.DownloadLog{},
			&entity.Bookmark{},
			&entity.Comment{},
			&entity.Notification{},
		}
		for _, model := range dependents {
			if err := tx.Where("note_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		res := tx.Delete(&entity.Note{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.FromGorm(gorm.ErrRecordNotFound, "note")
		}
		return nil
	})
}

// RecordDownload increments the counter and appends the log in one
// transaction. The increment is conditional on the note still being listed,
// so a note hidden or removed in the meantime yields ErrForbidden and no log.
func (r *noteRepository) RecordDownload(ctx context.Context, log *entity.DownloadLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Note{}).
			Where("id = ? AND is_approved = ? AND is_public = ?", log.NoteID, true, true).
			UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("note not available for download: %w", apperror.ErrForbidden)
		}

		return tx.Create(log).Error
	})
}

func (r *noteRepository) List(ctx context.Context, filter NoteFilter, p pagination.Params) ([]entity.Note, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Note{})

	if filter.ListedOnly {
		query = query.Where("is_approved = ? AND is_public = ?", true, true)
	}
	if filter.PendingOnly {
		query = query.Where("is_approved = ?", false)
	}
	if filter.SubjectID != nil {
		query = query.Where("subject_id = ?", *filter.SubjectID)
	}
	if filter.Semester != "" {
		query = query.Where("semester = ?", filter.Semester)
	}
	if filter.UploadedBy != nil {
		query = query.Where("uploaded_by = ?", *filter.UploadedBy)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notes []entity.Note
	err := query.
		Preload("Subject").
		Preload("Uploader").
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&notes).Error
	if err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

// ReconcileDownloadCounts raises download_count to the number of logged
// downloads wherever it has fallen behind. Counters are never lowered.
func (r *noteRepository) ReconcileDownloadCounts(ctx context.Context) (int64, error) {
	const logged = "(SELECT COUNT(*) FROM download_logs WHERE download_logs.note_id = notes.id)"
	res := r.db.WithContext(ctx).Exec(
		"UPDATE notes SET download_count = " + logged + " WHERE download_count < " + logged,
	)
	return res.RowsAffected, res.Error
}
