package subject

import (
	"context"
	"errors"
	"testing"

	"anoa.com/notevault/internal/modules/subject/dto"
	"anoa.com/notevault/internal/modules/subject/repository"
	"anoa.com/notevault/internal/testutil"
	"anoa.com/notevault/pkg/apperror"
	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

func TestSubjectLifecycle(t *testing.T) {
	db := testutil.DB(t)
	svc := NewSubjectService(repository.NewSubjectRepository(db))
	ctx := context.Background()

	created, err := svc.CreateSubject(ctx, dto.CreateSubjectRequest{Name: " Calculus ", Code: "mat101", Department: "Math"})
	if err != nil {
		t.Fatalf("CreateSubject: %v", err)
	}
	if created.Code != "MAT101" || created.Name != "Calculus" {
		t.Fatalf("created: got=%+v", created)
	}

	_, err = svc.CreateSubject(ctx, dto.CreateSubjectRequest{Name: "Other", Code: "MAT101"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("duplicate code: got=%v want=%v", err, apperror.ErrConflict)
	}

	if _, err := svc.CreateSubject(ctx, dto.CreateSubjectRequest{Name: "Algorithms", Code: "CS201"}); err != nil {
		t.Fatalf("CreateSubject: %v", err)
	}

	all, err := svc.GetAllSubjects(ctx, "")
	if err != nil {
		t.Fatalf("GetAllSubjects: %v", err)
	}
	if len(all) != 2 || all[0].Name != "Algorithms" {
		t.Fatalf("ordering: got=%+v", all)
	}

	filtered, err := svc.GetAllSubjects(ctx, "mat")
	if err != nil || len(filtered) != 1 {
		t.Fatalf("filter: got=%d err=%v", len(filtered), err)
	}

	updated, err := svc.UpdateSubject(ctx, created.ID, dto.UpdateSubjectRequest{Description: strPtr("limits"), Code: strPtr("mat101")})
	if err != nil {
		t.Fatalf("UpdateSubject: %v", err)
	}
	if updated.Description != "limits" || updated.Code != "MAT101" {
		t.Fatalf("updated: got=%+v", updated)
	}

	_, err = svc.UpdateSubject(ctx, created.ID, dto.UpdateSubjectRequest{Code: strPtr("CS201")})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("update to taken code: got=%v want=%v", err, apperror.ErrConflict)
	}

	_, err = svc.UpdateSubject(ctx, uuid.New(), dto.UpdateSubjectRequest{Name: strPtr("x")})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("update missing: got=%v want=%v", err, apperror.ErrNotFound)
	}
}

func TestDeleteSubjectWithNotes(t *testing.T) {
	db := testutil.DB(t)
	svc := NewSubjectService(repository.NewSubjectRepository(db))
	ctx := context.Background()

	used := testutil.SeedSubject(t, db, "Physics", "PHY101")
	unused := testutil.SeedSubject(t, db, "Chemistry", "CHE101")
	testutil.SeedNote(t, db, testutil.SeedUser(t, db), testutil.InSubject(used))

	if err := svc.DeleteSubject(ctx, used.ID); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("delete referenced: got=%v want=%v", err, apperror.ErrInvalidInput)
	}
	if err := svc.DeleteSubject(ctx, unused.ID); err != nil {
		t.Fatalf("delete unused: %v", err)
	}
	if err := svc.DeleteSubject(ctx, unused.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("delete twice: got=%v want=%v", err, apperror.ErrNotFound)
	}
}
