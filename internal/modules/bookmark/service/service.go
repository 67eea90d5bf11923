package bookmark

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"anoa.com/notevault/internal/entity"
	"anoa.com/notevault/internal/modules/bookmark/dto"
	"anoa.com/notevault/internal/modules/bookmark/repository"
	"anoa.com/notevault/pkg/apperror"
	commonDto "anoa.com/notevault/pkg/dto"
	"anoa.com/notevault/pkg/pagination"
)

type BookmarkService interface {
	AddBookmark(ctx context.Context, userID, noteID uuid.UUID) (*dto.BookmarkResponse, error)
	RemoveBookmark(ctx context.Context, userID, noteID uuid.UUID) error
	ListBookmarks(ctx context.Context, userID uuid.UUID, q commonDto.PageQuery) (*commonDto.Paginated[dto.BookmarkResponse], error)
}

type bookmarkService struct {
	repo repository.BookmarkRepository
}

func NewBookmarkService(repo repository.BookmarkRepository) BookmarkService {
	return &bookmarkService{repo: repo}
}

func (s *bookmarkService) AddBookmark(ctx context.Context, userID, noteID uuid.UUID) (*dto.BookmarkResponse, error) {
	exists, err := s.repo.NoteExists(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("note not found: %w", apperror.ErrNotFound)
	}

	bookmark := &entity.Bookmark{UserID: userID, NoteID: noteID}
	if err := s.repo.Create(ctx, bookmark); err != nil {
		return nil, err
	}

	res := dto.ToBookmarkResponse(bookmark)
	return &res, nil
}

func (s *bookmarkService) RemoveBookmark(ctx context.Context, userID, noteID uuid.UUID) error {
	return s.repo.Delete(ctx, userID, noteID)
}

func (s *bookmarkService) ListBookmarks(ctx context.Context, userID uuid.UUID, q commonDto.PageQuery) (*commonDto.Paginated[dto.BookmarkResponse], error) {
	p := pagination.FromQuery(q)

	bookmarks, total, err := s.repo.ListByUser(ctx, userID, p)
	if err != nil {
		return nil, err
	}

	items := make([]dto.BookmarkResponse, 0, len(bookmarks))
	for i := range bookmarks {
		items = append(items, dto.ToBookmarkResponse(&bookmarks[i]))
	}

	page := pagination.Page(items, total, p)
	return &page, nil
}
