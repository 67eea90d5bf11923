package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/notevault/internal/entity"
	"anoa.com/notevault/internal/modules/stat/dto"
	statRepo "anoa.com/notevault/internal/modules/stat/repository"
	userRepo "anoa.com/notevault/internal/modules/user/repository"
	"anoa.com/notevault/internal/testutil"
	"anoa.com/notevault/pkg/apperror"
	"anoa.com/notevault/pkg/logger"
	"anoa.com/notevault/pkg/pagination"
	"gorm.io/gorm"
)

func newService(t *testing.T) (StatService, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	svc := NewStatService(statRepo.NewStatRepository(db), userRepo.NewUserRepository(db), nil, time.Minute, logger.Nop())
	return svc, db
}

func TestDashboardAsOf(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	now := time.Now()
	day := 24 * time.Hour

	s1 := testutil.SeedUser(t, db)
	s2 := testutil.SeedUser(t, db, testutil.WithCreatedAt(now.Add(-30*day)))
	teacher := testutil.SeedUser(t, db, testutil.WithRole(entity.RoleTeacher))

	algebra := testutil.SeedSubject(t, db, "Algebra", "MATH101")
	physics := testutil.SeedSubject(t, db, "Physics", "PHY101")

	n1 := testutil.SeedNote(t, db, s1, testutil.InSubject(algebra), testutil.Approved(teacher.ID))
	testutil.SeedNote(t, db, s1, testutil.InSubject(algebra))
	n3 := testutil.SeedNote(t, db, s2, testutil.InSubject(algebra), testutil.Approved(teacher.ID), testutil.NoteCreatedAt(now.Add(-10*day)))
	testutil.SeedNote(t, db, s2, testutil.InSubject(physics))

	testutil.SeedDownload(t, db, n1, s2, now)
	testutil.SeedDownload(t, db, n1, s2, now.Add(-8*day))

	stats, err := svc.DashboardAsOf(ctx, now)
	if err != nil {
		t.Fatalf("DashboardAsOf: %v", err)
	}

	want := dto.DashboardCounters{
		TotalUsers:     2,
		TotalNotes:     4,
		PendingNotes:   2,
		TotalDownloads: 2,
		NewUsersWeek:   2,
		NewNotesWeek:   3,
		DownloadsWeek:  1,
	}
	if stats.Stats != want {
		t.Fatalf("counters: got=%+v want=%+v", stats.Stats, want)
	}

	if len(stats.TopSubjects) != 2 {
		t.Fatalf("top subjects: got=%d want=2", len(stats.TopSubjects))
	}
	if stats.TopSubjects[0].Code != "MATH101" || stats.TopSubjects[0].NoteCount != 3 {
		t.Fatalf("first subject: got=%+v", stats.TopSubjects[0])
	}
	if stats.TopSubjects[1].Code != "PHY101" || stats.TopSubjects[1].NoteCount != 1 {
		t.Fatalf("second subject: got=%+v", stats.TopSubjects[1])
	}

	if len(stats.RecentNotes) != 4 {
		t.Fatalf("recent notes: got=%d want=4", len(stats.RecentNotes))
	}
	if last := stats.RecentNotes[len(stats.RecentNotes)-1]; last.ID != n3.ID {
		t.Fatalf("oldest recent note: got=%s want=%s", last.ID, n3.ID)
	}
}

func TestTopSubjectsTieBreakIsStable(t *testing.T) {
	svc, db := newService(t)
	u := testutil.SeedUser(t, db)

	first := testutil.SeedSubject(t, db, "Zoology", "ZOO1")
	second := testutil.SeedSubject(t, db, "Anatomy", "ANA1")
	testutil.SeedNote(t, db, u, testutil.InSubject(second))
	testutil.SeedNote(t, db, u, testutil.InSubject(first))

	stats, err := svc.DashboardAsOf(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("DashboardAsOf: %v", err)
	}
	if len(stats.TopSubjects) != 2 {
		t.Fatalf("top subjects: got=%d want=2", len(stats.TopSubjects))
	}
	if stats.TopSubjects[0].SubjectID != first.ID {
		t.Fatalf("tie order: got=%s want=%s", stats.TopSubjects[0].Name, first.Name)
	}
}

func TestDashboardWithoutCache(t *testing.T) {
	svc, _ := newService(t)

	stats, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if stats.TopSubjects == nil || stats.RecentNotes == nil {
		t.Fatalf("empty dashboard must use empty lists, got=%+v", stats)
	}
}

func TestInvalidateDashboardWithoutCache(t *testing.T) {
	svc, _ := newService(t)
	if err := svc.InvalidateDashboard(context.Background()); err != nil {
		t.Fatalf("InvalidateDashboard: %v", err)
	}
}

func TestUserStatsCountsDownloadsReceived(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	owner := testutil.SeedUser(t, db)
	reader := testutil.SeedUser(t, db)
	admin := testutil.SeedUser(t, db, testutil.WithRole(entity.RoleAdmin))

	mine := testutil.SeedNote(t, db, owner, testutil.Approved(admin.ID))
	testutil.SeedNote(t, db, owner)
	theirs := testutil.SeedNote(t, db, reader, testutil.Approved(admin.ID))

	testutil.SeedDownload(t, db, mine, reader, time.Now())
	testutil.SeedDownload(t, db, mine, reader, time.Now())
	// the owner's own downloads of other notes do not count
	testutil.SeedDownload(t, db, theirs, owner, time.Now())

	stats, err := svc.UserStats(ctx, owner.ID)
	if err != nil {
		t.Fatalf("UserStats: %v", err)
	}

	want := dto.UserStats{UploadedNotes: 2, ApprovedNotes: 1, TotalDownloads: 2}
	if *stats != want {
		t.Fatalf("stats: got=%+v want=%+v", *stats, want)
	}
}

func TestPublicProfile(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	owner := testutil.SeedUser(t, db, testutil.WithName("Ada", "Lovelace"))
	reader := testutil.SeedUser(t, db)
	admin := testutil.SeedUser(t, db, testutil.WithRole(entity.RoleAdmin))

	listed := testutil.SeedNote(t, db, owner, testutil.Approved(admin.ID))
	hidden := testutil.SeedNote(t, db, owner, testutil.Approved(admin.ID), testutil.Private())
	testutil.SeedNote(t, db, owner)

	testutil.SeedDownload(t, db, listed, reader, time.Now())
	testutil.SeedDownload(t, db, hidden, reader, time.Now())

	profile, err := svc.PublicProfile(ctx, owner.ID)
	if err != nil {
		t.Fatalf("PublicProfile: %v", err)
	}
	if profile.FullName != "Ada Lovelace" {
		t.Fatalf("full name: got=%q", profile.FullName)
	}
	if profile.Stats.TotalNotes != 1 || profile.Stats.TotalDownloads != 1 {
		t.Fatalf("public stats: got=%+v", profile.Stats)
	}
	if len(profile.RecentNotes) != 1 || profile.RecentNotes[0].ID != listed.ID {
		t.Fatalf("recent notes: got=%+v", profile.RecentNotes)
	}

	testutil.Deactivate(t, db, owner)
	if _, err := svc.PublicProfile(ctx, owner.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("inactive user: got=%v want=%v", err, apperror.ErrNotFound)
	}
}

func TestUserActivityMergesNewestFirst(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	now := time.Now()

	u := testutil.SeedUser(t, db)
	other := testutil.SeedUser(t, db)
	admin := testutil.SeedUser(t, db, testutil.WithRole(entity.RoleAdmin))

	for _, age := range []time.Duration{3 * time.Hour, 2 * time.Hour, time.Hour} {
		testutil.SeedNote(t, db, u, testutil.NoteCreatedAt(now.Add(-age)))
	}
	foreign := testutil.SeedNote(t, db, other, testutil.Approved(admin.ID), testutil.NoteCreatedAt(now.Add(-48*time.Hour)))
	testutil.SeedDownload(t, db, foreign, u, now.Add(-90*time.Minute))

	page, err := svc.UserActivity(ctx, u.ID, dto.ActivityAll, 1, 10)
	if err != nil {
		t.Fatalf("UserActivity: %v", err)
	}

	wantTypes := []string{"upload", "download", "upload", "upload"}
	if len(page.Data) != len(wantTypes) {
		t.Fatalf("items: got=%d want=%d", len(page.Data), len(wantTypes))
	}
	for i, a := range page.Data {
		if a.Type != wantTypes[i] {
			t.Fatalf("item %d type: got=%s want=%s", i, a.Type, wantTypes[i])
		}
		if i > 0 && a.Date.After(page.Data[i-1].Date) {
			t.Fatalf("item %d is newer than item %d", i, i-1)
		}
	}
	if page.Meta.TotalItems != 4 || page.Meta.HasNext || page.Meta.HasPrev {
		t.Fatalf("meta: got=%+v", page.Meta)
	}
}

func TestUserActivityPrefetchesHalfPagePerSource(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, db)

	for i := 0; i < 8; i++ {
		testutil.SeedNote(t, db, u, testutil.NoteCreatedAt(time.Now().Add(-time.Duration(i)*time.Minute)))
	}

	all, err := svc.UserActivity(ctx, u.ID, dto.ActivityAll, 1, 10)
	if err != nil {
		t.Fatalf("UserActivity all: %v", err)
	}
	if len(all.Data) != 5 {
		t.Fatalf("combined feed: got=%d want=5", len(all.Data))
	}

	uploads, err := svc.UserActivity(ctx, u.ID, dto.ActivityUploads, 1, 10)
	if err != nil {
		t.Fatalf("UserActivity uploads: %v", err)
	}
	if len(uploads.Data) != 8 {
		t.Fatalf("uploads feed: got=%d want=8", len(uploads.Data))
	}

	if _, err := svc.UserActivity(ctx, u.ID, dto.ActivityKind("likes"), 1, 10); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("unknown kind: got=%v want=%v", err, apperror.ErrInvalidInput)
	}
}

func TestUserActivitySingleItemPageIsEmpty(t *testing.T) {
	svc, db := newService(t)
	u := testutil.SeedUser(t, db)
	testutil.SeedNote(t, db, u)

	// half of a one-item page rounds down to zero per source
	page, err := svc.UserActivity(context.Background(), u.ID, dto.ActivityAll, 1, 1)
	if err != nil {
		t.Fatalf("UserActivity: %v", err)
	}
	if len(page.Data) != 0 || page.Meta.TotalItems != 0 || page.Meta.TotalPages != 1 || page.Meta.CurrentPage != 1 {
		t.Fatalf("combined feed at per_page=1: items=%d meta=%+v", len(page.Data), page.Meta)
	}

	uploads, err := svc.UserActivity(context.Background(), u.ID, dto.ActivityUploads, 1, 1)
	if err != nil {
		t.Fatalf("UserActivity uploads: %v", err)
	}
	if len(uploads.Data) != 1 {
		t.Fatalf("uploads feed at per_page=1: got=%d want=1", len(uploads.Data))
	}
}

func TestDownloadHistoryIsPaged(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, db)
	admin := testutil.SeedUser(t, db, testutil.WithRole(entity.RoleAdmin))
	note := testutil.SeedNote(t, db, admin, testutil.Approved(admin.ID))

	for i := 0; i < 12; i++ {
		testutil.SeedDownload(t, db, note, u, time.Now().Add(-time.Duration(i)*time.Hour))
	}

	page, err := svc.DownloadHistory(ctx, u.ID, pagination.New(2, 5))
	if err != nil {
		t.Fatalf("DownloadHistory: %v", err)
	}
	if len(page.Data) != 5 || page.Meta.TotalItems != 12 || page.Meta.TotalPages != 3 {
		t.Fatalf("page: got items=%d meta=%+v", len(page.Data), page.Meta)
	}
	if !page.Data[0].DownloadDate.After(page.Data[1].DownloadDate) {
		t.Fatalf("history must be newest first")
	}
}

func TestMergeActivity(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(h int, kind string) dto.Activity {
		return dto.Activity{Type: kind, Date: base.Add(time.Duration(h) * time.Hour)}
	}

	a := []dto.Activity{at(5, "upload"), at(3, "upload"), at(1, "upload")}
	b := []dto.Activity{at(4, "download"), at(3, "download"), at(0, "download")}

	got := MergeActivity(a, b)
	want := []dto.Activity{at(5, "upload"), at(4, "download"), at(3, "upload"), at(3, "download"), at(1, "upload"), at(0, "download")}

	if len(got) != len(want) {
		t.Fatalf("len: got=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i].Type != want[i].Type || !got[i].Date.Equal(want[i].Date) {
			t.Fatalf("item %d: got=%+v want=%+v", i, got[i], want[i])
		}
	}

	if out := MergeActivity(nil, nil); len(out) != 0 {
		t.Fatalf("empty merge: got=%d", len(out))
	}
}
