package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"path"
	"strings"
	"time"

	"anoa.com/notevault/internal/entity"
	"anoa.com/notevault/internal/modules/note/dto"
	noteRepo "anoa.com/notevault/internal/modules/note/repository"
	"anoa.com/notevault/pkg/apperror"
	"anoa.com/notevault/pkg/document"
	commonDto "anoa.com/notevault/pkg/dto"
	"anoa.com/notevault/pkg/logger"
	"anoa.com/notevault/pkg/ratelimiter"
	"anoa.com/notevault/pkg/storage"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

const uploadAction = "upload"

// Indexer keeps the search index in step with approved notes.
type Indexer interface {
	IndexNote(ctx context.Context, note *entity.Note) error
	RemoveNote(ctx context.Context, id uuid.UUID) error
}

// Notifier tells uploaders about moderation decisions.
type Notifier interface {
	Notify(ctx context.Context, notification *entity.Notification) error
}

// DashboardCache drops the cached admin dashboard after pending or listed
// counts change.
type DashboardCache interface {
	InvalidateDashboard(ctx context.Context) error
}

// Viewer is the caller of a read. The zero value is an anonymous caller.
type Viewer struct {
	ID   uuid.UUID
	Role entity.Role
}

type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// Download is an open handle on a note's file. The caller closes Content.
type Download struct {
	Note        *entity.Note
	Content     io.ReadCloser
	ContentType string
	FileName    string
	Size        int64
}

type Config struct {
	MaxUploadBytes int64
	UploadInterval time.Duration
	// Dashboard may be nil.
	Dashboard DashboardCache
}

type NoteService interface {
	Submit(ctx context.Context, uploaderID uuid.UUID, input dto.SubmitNoteInput, file commonDto.UploadFile) (*dto.NoteResponse, error)
	Get(ctx context.Context, id uuid.UUID, viewer Viewer) (*dto.NoteResponse, error)
	Approve(ctx context.Context, id, adminID uuid.UUID) (*dto.NoteResponse, error)
	Reject(ctx context.Context, id, adminID uuid.UUID) error
	Delete(ctx context.Context, id, adminID uuid.UUID) error
	Download(ctx context.Context, id, userID uuid.UUID, meta ClientMeta) (*Download, error)
}

type noteService struct {
	repo      noteRepo.NoteRepository
	blobs     storage.BlobStore
	limiter   *ratelimiter.Limiter
	indexer   Indexer
	notifier  Notifier
	cfg       Config
	log       *logger.Logger
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

// NewNoteService wires the lifecycle manager. limiter, indexer and notifier
// may be nil.
func NewNoteService(
	repo noteRepo.NoteRepository,
	blobs storage.BlobStore,
	limiter *ratelimiter.Limiter,
	indexer Indexer,
	notifier Notifier,
	cfg Config,
	log *logger.Logger,
) NoteService {
	return &noteService{
		repo:      repo,
		blobs:     blobs,
		limiter:   limiter,
		indexer:   indexer,
		notifier:  notifier,
		cfg:       cfg,
		log:       log,
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

func (s *noteService) Submit(ctx context.Context, uploaderID uuid.UUID, input dto.SubmitNoteInput, file commonDto.UploadFile) (*dto.NoteResponse, error) {
	title := s.clean(input.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", apperror.ErrInvalidInput)
	}
	if file.Reader == nil || file.FileName == "" {
		return nil, fmt.Errorf("no file provided: %w", apperror.ErrInvalidInput)
	}
	if !document.IsAllowed(file.FileName) {
		return nil, fmt.Errorf("file type not allowed, expected one of %s: %w",
			strings.Join(document.AllowedExtensions(), ", "), apperror.ErrInvalidInput)
	}
	if s.cfg.MaxUploadBytes > 0 && file.Size > s.cfg.MaxUploadBytes {
		return nil, s.tooLarge()
	}

	var subjectID *uuid.UUID
	if input.SubjectID != "" {
		id, err := uuid.Parse(input.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("invalid subject id: %w", apperror.ErrInvalidInput)
		}
		exists, err := s.repo.SubjectExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("subject not found: %w", apperror.ErrNotFound)
		}
		subjectID = &id
	}

	if err := s.limiter.Allow(ctx, uploaderID, uploadAction, s.cfg.UploadInterval); err != nil {
		return nil, err
	}

	content, err := s.readUpload(file.Reader)
	if err != nil {
		s.releaseLimit(ctx, uploaderID)
		return nil, err
	}

	ext := document.Extension(file.FileName)
	pageCount := 0
	if ext == "pdf" {
		if pageCount, err = document.PageCount(content); err != nil {
			s.log.Warn("could not count pdf pages", "file", file.FileName, "error", err)
			pageCount = 0
		}
	}

	originalName := document.SafeName(file.FileName)
	stored, err := s.blobs.Save(ctx, bytes.NewReader(content), originalName)
	if err != nil {
		s.releaseLimit(ctx, uploaderID)
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}

	note := &entity.Note{
		Title:            title,
		Description:      s.clean(input.Description),
		FileRef:          stored.Ref,
		FileName:         path.Base(stored.Ref),
		OriginalFilename: originalName,
		FileSize:         stored.Size,
		FileType:         ext,
		PageCount:        pageCount,
		SubjectID:        subjectID,
		UploadedBy:       uploaderID,
		Semester:         strings.TrimSpace(input.Semester),
		AcademicYear:     strings.TrimSpace(input.AcademicYear),
		Tags:             entity.JoinTags(strings.Split(s.clean(input.Tags), ",")),
		IsPublic:         isPublic,
	}

	if err := s.repo.Create(ctx, note); err != nil {
		// the blob is not covered by the database transaction
		s.discardBlob(ctx, stored.Ref)
		s.releaseLimit(ctx, uploaderID)
		return nil, fmt.Errorf("failed to save note: %w", err)
	}

	s.log.Info("note submitted", "note_id", note.ID, "uploaded_by", uploaderID, "size", note.FileSize)
	s.invalidateDashboard(ctx)

	res := dto.ToNoteResponse(note)
	return &res, nil
}

// clean strips markup from user supplied text and decodes entities left behind.
func (s *noteService) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(v)))
}

func (s *noteService) readUpload(r io.Reader) ([]byte, error) {
	if s.cfg.MaxUploadBytes <= 0 {
		return io.ReadAll(r)
	}

	content, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(content)) > s.cfg.MaxUploadBytes {
		return nil, s.tooLarge()
	}
	return content, nil
}

func (s *noteService) tooLarge() error {
	return fmt.Errorf("file exceeds the %d MB limit: %w", s.cfg.MaxUploadBytes/(1024*1024), apperror.ErrInvalidInput)
}

func (s *noteService) discardBlob(ctx context.Context, ref string) {
	if _, err := s.blobs.Delete(context.WithoutCancel(ctx), ref); err != nil {
		s.log.Error("failed to remove orphaned file", "ref", ref, "error", err)
	}
}

func (s *noteService) releaseLimit(ctx context.Context, userID uuid.UUID) {
	if err := s.limiter.Clear(ctx, userID, uploadAction); err != nil {
		s.log.Warn("failed to release upload rate limit", "user_id", userID, "error", err)
	}
}

// Get applies the single-note visibility rule. Owners and moderators always
// see the note; everyone else is refused only when it is both private and
// unapproved.
func (s *noteService) Get(ctx context.Context, id uuid.UUID, viewer Viewer) (*dto.NoteResponse, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	owner := viewer.ID != uuid.Nil && viewer.ID == note.UploadedBy
	if !owner && !viewer.Role.CanModerate() && !note.Fetchable() {
		return nil, fmt.Errorf("note not available: %w", apperror.ErrForbidden)
	}

	res := dto.ToNoteResponse(note)
	return &res, nil
}

func (s *noteService) Approve(ctx context.Context, id, adminID uuid.UUID) (*dto.NoteResponse, error) {
	note, err := s.repo.Approve(ctx, id, adminID, s.now())
	if err != nil {
		return nil, err
	}

	s.log.Info("note approved", "note_id", id, "approved_by", adminID)
	s.invalidateDashboard(ctx)

	if s.indexer != nil && note.IsPublic {
		if err := s.indexer.IndexNote(ctx, note); err != nil {
			s.log.Warn("failed to index note", "note_id", id, "error", err)
		}
	}

	noteID := note.ID
	s.notify(ctx, &entity.Notification{
		UserID:  note.UploadedBy,
		ActorID: &adminID,
		NoteID:  &noteID,
		Type:    entity.NotificationNoteApproved,
		Message: fmt.Sprintf("Your note %q has been approved", note.Title),
	})

	res := dto.ToNoteResponse(note)
	return &res, nil
}

// Reject removes the note like Delete and tells the uploader. It is meant for
// pending notes but does not check the state.
func (s *noteService) Reject(ctx context.Context, id, adminID uuid.UUID) error {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.remove(ctx, note); err != nil {
		return err
	}

	s.log.Info("note rejected", "note_id", id, "rejected_by", adminID)
	s.notify(ctx, &entity.Notification{
		UserID:  note.UploadedBy,
		ActorID: &adminID,
		Type:    entity.NotificationNoteRejected,
		Message: fmt.Sprintf("Your note %q was rejected", note.Title),
	})
	return nil
}

func (s *noteService) Delete(ctx context.Context, id, adminID uuid.UUID) error {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.remove(ctx, note); err != nil {
		return err
	}

	s.log.Info("note deleted", "note_id", id, "deleted_by", adminID)
	return nil
}

// remove deletes the stored file, then the note and its dependent rows. A
// missing file is not an error.
func (s *noteService) remove(ctx context.Context, note *entity.Note) error {
	existed, err := s.blobs.Delete(ctx, note.FileRef)
	switch {
	case err != nil:
		s.log.Warn("failed to delete note file", "note_id", note.ID, "ref", note.FileRef, "error", err)
	case !existed:
		s.log.Debug("note file already gone", "note_id", note.ID, "ref", note.FileRef)
	}

	if err := s.repo.DeleteCascade(ctx, note.ID); err != nil {
		return err
	}
	s.invalidateDashboard(ctx)

	if s.indexer != nil {
		if err := s.indexer.RemoveNote(ctx, note.ID); err != nil {
			s.log.Warn("failed to remove note from index", "note_id", note.ID, "error", err)
		}
	}
	return nil
}

func (s *noteService) invalidateDashboard(ctx context.Context) {
	if s.cfg.Dashboard == nil {
		return
	}
	if err := s.cfg.Dashboard.InvalidateDashboard(ctx); err != nil {
		s.log.Warn("failed to invalidate dashboard cache", "error", err)
	}
}

func (s *noteService) notify(ctx context.Context, n *entity.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn("failed to notify uploader", "user_id", n.UserID, "type", n.Type, "error", err)
	}
}

// Download checks the gate, opens the file and only then records the
// download, so a file that cannot be served leaves no log behind.
func (s *noteService) Download(ctx context.Context, id, userID uuid.UUID, meta ClientMeta) (*Download, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !note.Listed() {
		return nil, fmt.Errorf("note not available for download: %w", apperror.ErrForbidden)
	}

	exists, err := s.blobs.Exists(ctx, note.FileRef)
	if err != nil {
		return nil, fmt.Errorf("failed to check note file: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("file not found on server: %w", apperror.ErrNotFound)
	}

	content, err := s.blobs.Open(ctx, note.FileRef)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, fmt.Errorf("file not found on server: %w", apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open note file: %w", err)
	}

	err = s.repo.RecordDownload(ctx, &entity.DownloadLog{
		NoteID:       note.ID,
		DownloadedBy: userID,
		DownloadDate: s.now(),
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	})
	if err != nil {
		_ = content.Close()
		return nil, err
	}
	note.DownloadCount++

	size, err := s.blobs.Size(ctx, note.FileRef)
	if err != nil {
		size = -1
	}

	return &Download{
		Note:        note,
		Content:     content,
		ContentType: document.ContentType(note.OriginalFilename),
		FileName:    note.OriginalFilename,
		Size:        size,
	}, nil
}
