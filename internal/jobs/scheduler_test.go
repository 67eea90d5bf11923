package jobs

import (
	"context"
	"errors"
	"reflect"
	"testing"

	noteRepo "anoa.com/notevault/internal/modules/note/repository"
	statDto "anoa.com/notevault/internal/modules/stat/dto"
	"anoa.com/notevault/internal/testutil"
	"anoa.com/notevault/pkg/logger"
)

type countingRefresher struct {
	calls int
}

func (c *countingRefresher) RefreshDashboard(context.Context) (*statDto.DashboardStats, error) {
	c.calls++
	return &statDto.DashboardStats{}, nil
}

func TestRegisterAndRunByName(t *testing.T) {
	s := NewScheduler(logger.Nop())
	refresher := &countingRefresher{}

	if err := s.Register(NewDashboardJob(refresher)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Register(FuncJob{JobName: "manual", Fn: func(context.Context) error { return errors.New("boom") }}); err != nil {
		t.Fatalf("Register manual: %v", err)
	}
	if err := s.Register(FuncJob{JobName: "broken", Spec: "not a cron spec"}); err == nil {
		t.Fatalf("invalid schedule: want error")
	}

	if got, want := s.Registered(), []string{"dashboard-refresh", "manual"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("registered: got=%v want=%v", got, want)
	}

	ctx := context.Background()
	if err := s.RunByName(ctx, "dashboard-refresh"); err != nil || refresher.calls != 1 {
		t.Fatalf("run dashboard: calls=%d err=%v", refresher.calls, err)
	}
	if err := s.RunByName(ctx, "manual"); err == nil {
		t.Fatalf("manual job error should surface")
	}
	if err := s.RunByName(ctx, "missing"); err == nil {
		t.Fatalf("unknown job: want error")
	}

	s.Start()
	s.Stop(ctx)
}

func TestReconcileJob(t *testing.T) {
	db := testutil.DB(t)
	u := testutil.SeedUser(t, db)
	note := testutil.SeedNote(t, db, u, testutil.Approved(u.ID))
	testutil.SeedDownload(t, db, note, u, note.CreatedAt)
	testutil.SeedDownload(t, db, note, u, note.CreatedAt)

	if err := db.Exec("UPDATE notes SET download_count = 0 WHERE id = ?", note.ID).Error; err != nil {
		t.Fatalf("reset counter: %v", err)
	}

	job := NewReconcileJob(noteRepo.NewNoteRepository(db), logger.Nop())
	if job.Schedule() != ReconcileSchedule {
		t.Fatalf("schedule: got=%q want=%q", job.Schedule(), ReconcileSchedule)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var count int64
	if err := db.Raw("SELECT download_count FROM notes WHERE id = ?", note.ID).Scan(&count).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if count != 2 {
		t.Fatalf("download_count: got=%d want=2", count)
	}
}
