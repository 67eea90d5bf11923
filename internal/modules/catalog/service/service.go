// Package service builds the paginated note and user listings.
package service

import (
	"context"
	"fmt"
	"strings"

	"anoa.com/notevault/internal/entity"
	noteDto "anoa.com/notevault/internal/modules/note/dto"
	noteRepo "anoa.com/notevault/internal/modules/note/repository"
	userDto "anoa.com/notevault/internal/modules/user/dto"
	userRepo "anoa.com/notevault/internal/modules/user/repository"
	"anoa.com/notevault/pkg/apperror"
	commonDto "anoa.com/notevault/pkg/dto"
	"anoa.com/notevault/pkg/pagination"
	"github.com/google/uuid"
)

type CatalogService interface {
	ListPublicNotes(ctx context.Context, query noteDto.NoteListQuery) (*commonDto.Paginated[noteDto.NoteResponse], error)
	ListMyNotes(ctx context.Context, userID uuid.UUID, query commonDto.PageQuery) (*commonDto.Paginated[noteDto.NoteResponse], error)
	ListPendingNotes(ctx context.Context, query commonDto.PageQuery) (*commonDto.Paginated[noteDto.NoteResponse], error)
	ListUsers(ctx context.Context, query userDto.UserSearchQuery) (*commonDto.Paginated[userDto.UserResponse], error)
	SearchUsers(ctx context.Context, query userDto.PublicSearchQuery) (*commonDto.Paginated[userDto.PublicUser], error)
}

type catalogService struct {
	notes noteRepo.NoteRepository
	users userRepo.UserRepository
}

func NewCatalogService(notes noteRepo.NoteRepository, users userRepo.UserRepository) CatalogService {
	return &catalogService{notes: notes, users: users}
}

func (s *catalogService) ListPublicNotes(ctx context.Context, query noteDto.NoteListQuery) (*commonDto.Paginated[noteDto.NoteResponse], error) {
	filter := noteRepo.NoteFilter{
		ListedOnly: true,
		Semester:   strings.TrimSpace(query.Semester),
		Search:     query.Search,
	}

	var err error
	if filter.SubjectID, err = parseOptionalID(query.SubjectID, "subject_id"); err != nil {
		return nil, err
	}
	if filter.UploadedBy, err = parseOptionalID(query.Uploader, "uploaded_by"); err != nil {
		return nil, err
	}

	return s.listNotes(ctx, filter, pagination.New(query.Page, query.PerPage))
}

// ListMyNotes shows the owner every note they uploaded, approved or not.
func (s *catalogService) ListMyNotes(ctx context.Context, userID uuid.UUID, query commonDto.PageQuery) (*commonDto.Paginated[noteDto.NoteResponse], error) {
	return s.listNotes(ctx, noteRepo.NoteFilter{UploadedBy: &userID}, pagination.FromQuery(query))
}

func (s *catalogService) ListPendingNotes(ctx context.Context, query commonDto.PageQuery) (*commonDto.Paginated[noteDto.NoteResponse], error) {
	return s.listNotes(ctx, noteRepo.NoteFilter{PendingOnly: true}, pagination.FromQuery(query))
}

func (s *catalogService) listNotes(ctx context.Context, filter noteRepo.NoteFilter, p pagination.Params) (*commonDto.Paginated[noteDto.NoteResponse], error) {
	notes, total, err := s.notes.List(ctx, filter, p)
	if err != nil {
		return nil, err
	}

	res := pagination.Page(noteDto.ToNoteResponses(notes), total, p)
	return &res, nil
}

func (s *catalogService) ListUsers(ctx context.Context, query userDto.UserSearchQuery) (*commonDto.Paginated[userDto.UserResponse], error) {
	role := entity.Role(query.Role)
	if role != "" && !role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", query.Role, apperror.ErrInvalidInput)
	}

	p := pagination.New(query.Page, query.PerPage)
	users, total, err := s.users.List(ctx, userRepo.UserFilter{
		Search:      strings.TrimSpace(query.Search),
		SearchEmail: true,
		Role:        role,
	}, p)
	if err != nil {
		return nil, err
	}

	items := make([]userDto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userDto.ToUserResponse(&users[i]))
	}
	res := pagination.Page(items, total, p)
	return &res, nil
}

// SearchUsers is the public directory: active students only, matched on
// name or username.
func (s *catalogService) SearchUsers(ctx context.Context, query userDto.PublicSearchQuery) (*commonDto.Paginated[userDto.PublicUser], error) {
	q := strings.TrimSpace(query.Q)
	if q == "" {
		return nil, fmt.Errorf("search query is required: %w", apperror.ErrInvalidInput)
	}

	p := pagination.New(query.Page, query.PerPage)
	users, total, err := s.users.List(ctx, userRepo.UserFilter{
		Search:      q,
		Role:        entity.RoleStudent,
		ActiveOnly:  true,
		OrderByName: true,
	}, p)
	if err != nil {
		return nil, err
	}

	items := make([]userDto.PublicUser, 0, len(users))
	for i := range users {
		items = append(items, userDto.ToPublicUser(&users[i]))
	}
	res := pagination.Page(items, total, p)
	return &res, nil
}

func parseOptionalID(raw, field string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", field, apperror.ErrInvalidInput)
	}
	return &id, nil
}
