package subject

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"anoa.com/notevault/internal/entity"
	"anoa.com/notevault/internal/modules/subject/dto"
	"anoa.com/notevault/internal/modules/subject/repository"
	"anoa.com/notevault/pkg/apperror"
)

type SubjectService interface {
	CreateSubject(ctx context.Context, req dto.CreateSubjectRequest) (*dto.SubjectResponse, error)
	GetAllSubjects(ctx context.Context, filter string) ([]dto.SubjectResponse, error)
	UpdateSubject(ctx context.Context, id uuid.UUID, req dto.UpdateSubjectRequest) (*dto.SubjectResponse, error)
	DeleteSubject(ctx context.Context, id uuid.UUID) error
}

type subjectService struct {
	repo repository.SubjectRepository
}

func NewSubjectService(repo repository.SubjectRepository) SubjectService {
	return &subjectService{repo: repo}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func toResponse(s *entity.Subject) dto.SubjectResponse {
	return dto.SubjectResponse{
		ID:          s.ID,
		Name:        s.Name,
		Code:        s.Code,
		Description: s.Description,
		Department:  s.Department,
		Semester:    s.Semester,
		CreatedAt:   s.CreatedAt,
	}
}

func (s *subjectService) ensureCodeFree(ctx context.Context, code string, self uuid.UUID) error {
	existing, err := s.repo.FindByCode(ctx, code)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return fmt.Errorf("subject with code %s already exists: %w", code, apperror.ErrConflict)
	}
	return nil
}

func (s *subjectService) CreateSubject(ctx context.Context, req dto.CreateSubjectRequest) (*dto.SubjectResponse, error) {
	code := normalizeCode(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("name and code are required: %w", apperror.ErrInvalidInput)
	}

	if err := s.ensureCodeFree(ctx, code, uuid.Nil); err != nil {
		return nil, err
	}

	subject := &entity.Subject{
		Name:        name,
		Code:        code,
		Description: req.Description,
		Department:  req.Department,
		Semester:    req.Semester,
	}
	// the unique index still catches a concurrent insert of the same code
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, err
	}

	res := toResponse(subject)
	return &res, nil
}

func (s *subjectService) GetAllSubjects(ctx context.Context, filter string) ([]dto.SubjectResponse, error) {
	subjects, err := s.repo.FindAll(ctx, strings.TrimSpace(filter))
	if err != nil {
		return nil, err
	}

	out := make([]dto.SubjectResponse, 0, len(subjects))
	for i := range subjects {
		out = append(out, toResponse(&subjects[i]))
	}
	return out, nil
}

func (s *subjectService) UpdateSubject(ctx context.Context, id uuid.UUID, req dto.UpdateSubjectRequest) (*dto.SubjectResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		code := normalizeCode(*req.Code)
		if err := s.ensureCodeFree(ctx, code, id); err != nil {
			return nil, err
		}
		fields["code"] = code
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Department != nil {
		fields["department"] = *req.Department
	}
	if req.Semester != nil {
		fields["semester"] = *req.Semester
	}

	if len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := toResponse(subject)
	return &res, nil
}

// DeleteSubject refuses to remove a subject that notes still point at.
func (s *subjectService) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountNotes(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("cannot delete subject with %d existing notes: %w", count, apperror.ErrInvalidInput)
	}

	return s.repo.Delete(ctx, id)
}
