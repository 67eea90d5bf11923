// Package testutil opens throwaway databases and seeds fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"anoa.com/notevault/internal/bootstrap"
	"anoa.com/notevault/internal/entity"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB returns a migrated in-memory sqlite database private to the test.
// A single connection keeps concurrent transactions serialised.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := bootstrap.Migrate(db); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

type UserOption func(*entity.User)

func WithRole(role entity.Role) UserOption {
	return func(u *entity.User) { u.Role = role }
}

func WithName(first, last string) UserOption {
	return func(u *entity.User) {
		u.FirstName = first
		u.LastName = last
	}
}

func WithCreatedAt(t time.Time) UserOption {
	return func(u *entity.User) { u.CreatedAt = t }
}

func SeedUser(tb testing.TB, db *gorm.DB, opts ...UserOption) *entity.User {
	tb.Helper()

	suffix := uuid.NewString()[:8]
	u := &entity.User{
		Email:        "user-" + suffix + "@example.com",
		Username:     "user_" + suffix,
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		Role:         entity.RoleStudent,
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(u)
	}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("SeedUser: %v", err)
	}
	return u
}

// Deactivate flips is_active off; gorm skips zero values on create.
func Deactivate(tb testing.TB, db *gorm.DB, u *entity.User) {
	tb.Helper()
	if err := db.Model(u).Update("is_active", false).Error; err != nil {
		tb.Fatalf("Deactivate: %v", err)
	}
	u.IsActive = false
}

func SeedSubject(tb testing.TB, db *gorm.DB, name, code string) *entity.Subject {
	tb.Helper()

	s := &entity.Subject{Name: name, Code: code}
	if err := db.Create(s).Error; err != nil {
		tb.Fatalf("SeedSubject: %v", err)
	}
	return s
}

type NoteOption func(*entity.Note)

func Approved(by uuid.UUID) NoteOption {
	return func(n *entity.Note) {
		now := time.Now()
		n.IsApproved = true
		n.ApprovedBy = &by
		n.ApprovedAt = &now
	}
}

func Private() NoteOption {
	return func(n *entity.Note) { n.IsPublic = false }
}

func InSubject(s *entity.Subject) NoteOption {
	return func(n *entity.Note) { n.SubjectID = &s.ID }
}

func WithTitle(title string) NoteOption {
	return func(n *entity.Note) { n.Title = title }
}

func WithTags(tags string) NoteOption {
	return func(n *entity.Note) { n.Tags = tags }
}

func WithSemester(semester string) NoteOption {
	return func(n *entity.Note) { n.Semester = semester }
}

func WithFileRef(ref string) NoteOption {
	return func(n *entity.Note) { n.FileRef = ref }
}

func NoteCreatedAt(t time.Time) NoteOption {
	return func(n *entity.Note) { n.CreatedAt = t }
}

func SeedNote(tb testing.TB, db *gorm.DB, uploader *entity.User, opts ...NoteOption) *entity.Note {
	tb.Helper()

	n := &entity.Note{
		Title:            "Note " + uuid.NewString()[:6],
		FileRef:          uuid.NewString() + ".pdf",
		OriginalFilename: "notes.pdf",
		FileSize:         128,
		FileType:         "pdf",
		UploadedBy:       uploader.ID,
		IsPublic:         true,
	}
	n.FileName = n.FileRef
	for _, opt := range opts {
		opt(n)
	}
	if err := db.Create(n).Error; err != nil {
		tb.Fatalf("SeedNote: %v", err)
	}
	return n
}

func SeedDownload(tb testing.TB, db *gorm.DB, note *entity.Note, by *entity.User, at time.Time) *entity.DownloadLog {
	tb.Helper()

	log := &entity.DownloadLog{NoteID: note.ID, DownloadedBy: by.ID, DownloadDate: at}
	if err := db.Create(log).Error; err != nil {
		tb.Fatalf("SeedDownload: %v", err)
	}
	if err := db.Model(&entity.Note{}).Where("id = ?", note.ID).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1)).Error; err != nil {
		tb.Fatalf("SeedDownload counter: %v", err)
	}
	return log
}
