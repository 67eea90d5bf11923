package comment

import (
	"context"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"anoa.com/notevault/internal/entity"
	"anoa.com/notevault/internal/modules/comment/dto"
	"anoa.com/notevault/internal/modules/comment/repository"
	"anoa.com/notevault/pkg/apperror"
	commonDto "anoa.com/notevault/pkg/dto"
	"anoa.com/notevault/pkg/logger"
	"anoa.com/notevault/pkg/pagination"
)

const MaxCommentLength = 2000

type Notifier interface {
	Notify(ctx context.Context, notification *entity.Notification) error
}

type CommentService interface {
	ListComments(ctx context.Context, noteID uuid.UUID, q commonDto.PageQuery) (*commonDto.Paginated[dto.CommentResponse], error)
	CreateComment(ctx context.Context, noteID, userID uuid.UUID, text string) (*dto.CommentResponse, error)
	UpdateComment(ctx context.Context, id, userID uuid.UUID, text string) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, id, userID uuid.UUID, role entity.Role) error
}

type commentService struct {
	repo      repository.CommentRepository
	notifier  Notifier
	log       *logger.Logger
	sanitizer *bluemonday.Policy
}

func NewCommentService(repo repository.CommentRepository, notifier Notifier, log *logger.Logger) CommentService {
	if log == nil {
		log = logger.Nop()
	}
	return &commentService{
		repo:      repo,
		notifier:  notifier,
		log:       log,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *commentService) cleanText(text string) (string, error) {
	cleaned := strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(text)))
	if cleaned == "" {
		return "", fmt.Errorf("comment is required: %w", apperror.ErrInvalidInput)
	}
	if utf8.RuneCountInString(cleaned) > MaxCommentLength {
		return "", fmt.Errorf("comment must be at most %d characters: %w", MaxCommentLength, apperror.ErrInvalidInput)
	}
	return cleaned, nil
}

func (s *commentService) ListComments(ctx context.Context, noteID uuid.UUID, q commonDto.PageQuery) (*commonDto.Paginated[dto.CommentResponse], error) {
	if _, err := s.repo.FindNote(ctx, noteID); err != nil {
		return nil, err
	}

	p := pagination.FromQuery(q)
	comments, total, err := s.repo.ListByNote(ctx, noteID, p)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, dto.ToCommentResponse(&comments[i]))
	}

	page := pagination.Page(items, total, p)
	return &page, nil
}

func (s *commentService) CreateComment(ctx context.Context, noteID, userID uuid.UUID, text string) (*dto.CommentResponse, error) {
	cleaned, err := s.cleanText(text)
	if err != nil {
		return nil, err
	}

	note, err := s.repo.FindNote(ctx, noteID)
	if err != nil {
		return nil, err
	}

	comment := &entity.Comment{NoteID: noteID, UserID: userID, Comment: cleaned}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if s.notifier != nil && note.UploadedBy != userID {
		actor := userID
		n := &entity.Notification{
			UserID:  note.UploadedBy,
			ActorID: &actor,
			NoteID:  &note.ID,
			Type:    entity.NotificationNoteComment,
			Message: fmt.Sprintf("New comment on your note %q", note.Title),
		}
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.log.Warn("failed to notify note owner", "note_id", noteID, "error", err)
		}
	}

	res := dto.ToCommentResponse(comment)
	return &res, nil
}

func (s *commentService) UpdateComment(ctx context.Context, id, userID uuid.UUID, text string) (*dto.CommentResponse, error) {
	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, fmt.Errorf("you can only edit your own comment: %w", apperror.ErrForbidden)
	}

	cleaned, err := s.cleanText(text)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateText(ctx, id, cleaned); err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := dto.ToCommentResponse(updated)
	return &res, nil
}

func (s *commentService) DeleteComment(ctx context.Context, id, userID uuid.UUID, role entity.Role) error {
	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != userID && !role.CanModerate() {
		return fmt.Errorf("you can only delete your own comment: %w", apperror.ErrForbidden)
	}
	return s.repo.Delete(ctx, id)
}
