package repository

import (
	"context"
	"time"

	"anoa.com/notevault/internal/entity"
	"anoa.com/notevault/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubjectCount struct {
	SubjectID uuid.UUID `json:"subject_id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	NoteCount int64     `json:"note_count"`
}

// Totals are the headline counters of the dashboard.
type Totals struct {
	Students       int64
	Notes          int64
	PendingNotes   int64
	Downloads      int64
	NewUsers       int64
	NewNotes       int64
	RecentDownload int64
}

// StatRepository runs the read-only aggregate queries behind dashboards,
// profiles and activity feeds.
type StatRepository interface {
	Totals(ctx context.Context, since time.Time) (Totals, error)
	TopSubjects(ctx context.Context, limit int) ([]SubjectCount, error)
	RecentNotes(ctx context.Context, limit int) ([]entity.Note, error)

	CountUploads(ctx context.Context, userID uuid.UUID, listedOnly bool) (int64, error)
	CountApproved(ctx context.Context, userID uuid.UUID) (int64, error)
	CountDownloadsReceived(ctx context.Context, userID uuid.UUID, listedOnly bool) (int64, error)
	RecentListedNotes(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Note, error)

	RecentUploads(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Note, error)
	RecentDownloads(ctx context.Context, userID uuid.UUID, limit int) ([]entity.DownloadLog, error)
	DownloadHistory(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]entity.DownloadLog, int64, error)
}

type statRepository struct {
	db *gorm.DB
}

func NewStatRepository(db *gorm.DB) StatRepository {
	return &statRepository{db: db}
}

func (r *statRepository) Totals(ctx context.Context, since time.Time) (Totals, error) {
	var t Totals
	db := r.db.WithContext(ctx)

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&t.Students, db.Model(&entity.User{}).Where("role = ?", entity.RoleStudent)},
		{&t.Notes, db.Model(&entity.Note{})},
		{&t.PendingNotes, db.Model(&entity.Note{}).Where("is_approved = ?", false)},
		{&t.Downloads, db.Model(&entity.DownloadLog{})},
		{&t.NewUsers, db.Model(&entity.User{}).Where("created_at >= ?", since)},
		{&t.NewNotes, db.Model(&entity.Note{}).Where("created_at >= ?", since)},
		{&t.RecentDownload, db.Model(&entity.DownloadLog{}).Where("download_date >= ?", since)},
	}

	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return Totals{}, err
		}
	}
	return t, nil
}

// TopSubjects ranks subjects by note count. Subjects without notes are left out;
// ties are ordered by subject id so the result is stable.
func (r *statRepository) TopSubjects(ctx context.Context, limit int) ([]SubjectCount, error) {
	var out []SubjectCount
	err := r.db.WithContext(ctx).
		Table("subjects").
		Select("subjects.id AS subject_id, subjects.name AS name, subjects.code AS code, COUNT(notes.id) AS note_count").
		Joins("JOIN notes ON notes.subject_id = subjects.id").
		Group("subjects.id, subjects.name, subjects.code").
		Order("note_count DESC").
		Order("subjects.id ASC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *statRepository) RecentNotes(ctx context.Context, limit int) ([]entity.Note, error) {
	var notes []entity.Note
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Uploader").
		Order("created_at DESC").
		Limit(limit).
		Find(&notes).Error
	return notes, err
}

func (r *statRepository) CountUploads(ctx context.Context, userID uuid.UUID, listedOnly bool) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Note{}).Where("uploaded_by = ?", userID)
	if listedOnly {
		query = query.Where("is_approved = ? AND is_public = ?", true, true)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *statRepository) CountApproved(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Note{}).
		Where("uploaded_by = ? AND is_approved = ?", userID, true).
		Count(&count).Error
	return count, err
}

// CountDownloadsReceived counts downloads of notes uploaded by userID, not
// downloads made by them.
func (r *statRepository) CountDownloadsReceived(ctx context.Context, userID uuid.UUID, listedOnly bool) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.DownloadLog{}).
		Joins("JOIN notes ON notes.id = download_logs.note_id").
		Where("notes.uploaded_by = ?", userID)
	if listedOnly {
		query = query.Where("notes.is_approved = ? AND notes.is_public = ?", true, true)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *statRepository) RecentListedNotes(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Note, error) {
	var notes []entity.Note
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Where("uploaded_by = ? AND is_approved = ? AND is_public = ?", userID, true, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&notes).Error
	return notes, err
}

func (r *statRepository) RecentUploads(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Note, error) {
	var notes []entity.Note
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Where("uploaded_by = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notes).Error
	return notes, err
}

func (r *statRepository) RecentDownloads(ctx context.Context, userID uuid.UUID, limit int) ([]entity.DownloadLog, error) {
	var logs []entity.DownloadLog
	err := r.db.WithContext(ctx).
		Preload("Note").
		Preload("Note.Subject").
		Where("downloaded_by = ?", userID).
		Order("download_date DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *statRepository) DownloadHistory(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]entity.DownloadLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.DownloadLog{}).Where("downloaded_by = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []entity.DownloadLog
	err := query.
		Preload("Note").
		Preload("Note.Subject").
		Order("download_date DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
