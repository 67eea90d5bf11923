package service

import (
	"context"
	"errors"
	"testing"

	"anoa.com/notevault/internal/entity"
	noteDto "anoa.com/notevault/internal/modules/note/dto"
	noteRepo "anoa.com/notevault/internal/modules/note/repository"
	userDto "anoa.com/notevault/internal/modules/user/dto"
	userRepo "anoa.com/notevault/internal/modules/user/repository"
	"anoa.com/notevault/internal/testutil"
	"anoa.com/notevault/pkg/apperror"
	commonDto "anoa.com/notevault/pkg/dto"
	"gorm.io/gorm"
)

func newCatalog(t *testing.T) (CatalogService, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	return NewCatalogService(noteRepo.NewNoteRepository(db), userRepo.NewUserRepository(db)), db
}

func TestListPublicNotesPagination(t *testing.T) {
	svc, db := newCatalog(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, db)

	for i := 0; i < 25; i++ {
		testutil.SeedNote(t, db, u, testutil.Approved(u.ID))
	}
	testutil.SeedNote(t, db, u)
	testutil.SeedNote(t, db, u, testutil.Approved(u.ID), testutil.Private())

	page, err := svc.ListPublicNotes(ctx, noteDto.NoteListQuery{Page: 3, PerPage: 10})
	if err != nil {
		t.Fatalf("ListPublicNotes: %v", err)
	}
	if len(page.Data) != 5 {
		t.Fatalf("items: got=%d want=5", len(page.Data))
	}
	m := page.Meta
	if m.TotalPages != 3 || m.TotalItems != 25 || m.HasNext || !m.HasPrev || m.CurrentPage != 3 {
		t.Fatalf("meta: got=%+v", m)
	}

	beyond, err := svc.ListPublicNotes(ctx, noteDto.NoteListQuery{Page: 99, PerPage: 10})
	if err != nil {
		t.Fatalf("page 99: %v", err)
	}
	if len(beyond.Data) != 0 || beyond.Data == nil {
		t.Fatalf("page 99 must be an empty list, got=%v", beyond.Data)
	}
}

func TestListPublicNotesNewestFirst(t *testing.T) {
	svc, db := newCatalog(t)
	u := testutil.SeedUser(t, db)

	first := testutil.SeedNote(t, db, u, testutil.Approved(u.ID))
	last := testutil.SeedNote(t, db, u, testutil.Approved(u.ID))

	page, err := svc.ListPublicNotes(context.Background(), noteDto.NoteListQuery{})
	if err != nil {
		t.Fatalf("ListPublicNotes: %v", err)
	}
	if len(page.Data) != 2 || page.Data[0].ID != last.ID || page.Data[1].ID != first.ID {
		t.Fatalf("order: got=%v", page.Data)
	}
	if page.Meta.Limit != 10 {
		t.Fatalf("default page size: got=%d want=10", page.Meta.Limit)
	}
}

func TestListPublicNotesFilters(t *testing.T) {
	svc, db := newCatalog(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, db)
	other := testutil.SeedUser(t, db)
	algebra := testutil.SeedSubject(t, db, "Algebra", "MATH1")

	approved := testutil.Approved(u.ID)
	calc := testutil.SeedNote(t, db, u, approved, testutil.WithTitle("Calculus Review"), testutil.InSubject(algebra), testutil.WithSemester("3"))
	tagged := testutil.SeedNote(t, db, other, approved, testutil.WithTitle("Week 4"), testutil.WithTags("integrals,CALCULUS"))
	testutil.SeedNote(t, db, u, approved, testutil.WithTitle("History essay"), testutil.WithSemester("3"))

	cases := []struct {
		name  string
		query noteDto.NoteListQuery
		want  int64
	}{
		{"no filter", noteDto.NoteListQuery{}, 3},
		{"search title and tags", noteDto.NoteListQuery{Search: "calc"}, 2},
		{"subject", noteDto.NoteListQuery{SubjectID: algebra.ID.String()}, 1},
		{"semester", noteDto.NoteListQuery{Semester: "3"}, 2},
		{"uploader", noteDto.NoteListQuery{Uploader: other.ID.String()}, 1},
		{"combined", noteDto.NoteListQuery{Search: "CALC", Semester: "3"}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := svc.ListPublicNotes(ctx, tc.query)
			if err != nil {
				t.Fatalf("ListPublicNotes: %v", err)
			}
			if page.Meta.TotalItems != tc.want {
				t.Fatalf("total: got=%d want=%d", page.Meta.TotalItems, tc.want)
			}
		})
	}

	page, _ := svc.ListPublicNotes(ctx, noteDto.NoteListQuery{Uploader: other.ID.String()})
	if page.Data[0].ID != tagged.ID {
		t.Fatalf("uploader filter: got=%s want=%s", page.Data[0].ID, tagged.ID)
	}
	page, _ = svc.ListPublicNotes(ctx, noteDto.NoteListQuery{SubjectID: algebra.ID.String()})
	if page.Data[0].ID != calc.ID || page.Data[0].Subject == nil || page.Data[0].Subject.Code != "MATH1" {
		t.Fatalf("subject filter: got=%+v", page.Data[0])
	}

	if _, err := svc.ListPublicNotes(ctx, noteDto.NoteListQuery{SubjectID: "bogus"}); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("bad subject id: got=%v want=%v", err, apperror.ErrInvalidInput)
	}
}

func TestListMyNotesIncludesUnlisted(t *testing.T) {
	svc, db := newCatalog(t)
	u := testutil.SeedUser(t, db)
	other := testutil.SeedUser(t, db)

	testutil.SeedNote(t, db, u)
	testutil.SeedNote(t, db, u, testutil.Private())
	testutil.SeedNote(t, db, u, testutil.Approved(u.ID))
	testutil.SeedNote(t, db, other, testutil.Approved(u.ID))

	page, err := svc.ListMyNotes(context.Background(), u.ID, commonDto.PageQuery{})
	if err != nil {
		t.Fatalf("ListMyNotes: %v", err)
	}
	if page.Meta.TotalItems != 3 {
		t.Fatalf("total: got=%d want=3", page.Meta.TotalItems)
	}
}

func TestListPendingNotes(t *testing.T) {
	svc, db := newCatalog(t)
	u := testutil.SeedUser(t, db)

	pending := testutil.SeedNote(t, db, u, testutil.Private())
	testutil.SeedNote(t, db, u, testutil.Approved(u.ID))

	page, err := svc.ListPendingNotes(context.Background(), commonDto.PageQuery{Limit: 500})
	if err != nil {
		t.Fatalf("ListPendingNotes: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].ID != pending.ID {
		t.Fatalf("pending: got=%v", page.Data)
	}
	if page.Meta.Limit != 100 {
		t.Fatalf("page size clamp: got=%d want=100", page.Meta.Limit)
	}
}

func TestListUsers(t *testing.T) {
	svc, db := newCatalog(t)
	ctx := context.Background()

	testutil.SeedUser(t, db, testutil.WithName("Grace", "Hopper"))
	teacher := testutil.SeedUser(t, db, testutil.WithName("Alan", "Turing"), testutil.WithRole(entity.RoleTeacher))
	testutil.Deactivate(t, db, teacher)

	all, err := svc.ListUsers(ctx, userDto.UserSearchQuery{})
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if all.Meta.TotalItems != 2 || all.Data[0].ID != teacher.ID {
		t.Fatalf("all users newest first: got=%+v", all.Data)
	}

	byEmail, err := svc.ListUsers(ctx, userDto.UserSearchQuery{Search: teacher.Email})
	if err != nil {
		t.Fatalf("ListUsers email: %v", err)
	}
	if byEmail.Meta.TotalItems != 1 {
		t.Fatalf("email search: got=%d want=1", byEmail.Meta.TotalItems)
	}

	byRole, _ := svc.ListUsers(ctx, userDto.UserSearchQuery{Role: "teacher"})
	if byRole.Meta.TotalItems != 1 {
		t.Fatalf("role filter: got=%d want=1", byRole.Meta.TotalItems)
	}

	if _, err := svc.ListUsers(ctx, userDto.UserSearchQuery{Role: "root"}); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("bad role: got=%v want=%v", err, apperror.ErrInvalidInput)
	}
}

func TestSearchUsersPublicDirectory(t *testing.T) {
	svc, db := newCatalog(t)
	ctx := context.Background()

	zed := testutil.SeedUser(t, db, testutil.WithName("Zed", "Smith"))
	amy := testutil.SeedUser(t, db, testutil.WithName("Amy", "Smith"))
	testutil.SeedUser(t, db, testutil.WithName("Bob", "Smith"), testutil.WithRole(entity.RoleTeacher))
	gone := testutil.SeedUser(t, db, testutil.WithName("Cat", "Smith"))
	testutil.Deactivate(t, db, gone)

	page, err := svc.SearchUsers(ctx, userDto.PublicSearchQuery{Q: "smith"})
	if err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	if len(page.Data) != 2 || page.Data[0].ID != amy.ID || page.Data[1].ID != zed.ID {
		t.Fatalf("directory: got=%+v", page.Data)
	}

	// email is not searchable from the public directory
	if page, _ := svc.SearchUsers(ctx, userDto.PublicSearchQuery{Q: "@example.com"}); page.Meta.TotalItems != 0 {
		t.Fatalf("email search leaked: got=%d", page.Meta.TotalItems)
	}

	if _, err := svc.SearchUsers(ctx, userDto.PublicSearchQuery{Q: "  "}); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("empty query: got=%v want=%v", err, apperror.ErrInvalidInput)
	}
}
