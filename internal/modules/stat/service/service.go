package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	noteDto "anoa.com/notevault/internal/modules/note/dto"
	"anoa.com/notevault/internal/modules/stat/dto"
	statRepo "anoa.com/notevault/internal/modules/stat/repository"
	userDto "anoa.com/notevault/internal/modules/user/dto"
	userRepo "anoa.com/notevault/internal/modules/user/repository"
	"anoa.com/notevault/pkg/apperror"
	commonDto "anoa.com/notevault/pkg/dto"
	"anoa.com/notevault/pkg/logger"
	"anoa.com/notevault/pkg/pagination"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	dashboardCacheKey = "stats:dashboard"
	recentWindow      = 7 * 24 * time.Hour
	topSubjectLimit   = 5
	recentNoteLimit   = 5
)

type StatService interface {
	Dashboard(ctx context.Context) (*dto.DashboardStats, error)
	RefreshDashboard(ctx context.Context) (*dto.DashboardStats, error)
	InvalidateDashboard(ctx context.Context) error
	DashboardAsOf(ctx context.Context, asOf time.Time) (*dto.DashboardStats, error)
	UserStats(ctx context.Context, userID uuid.UUID) (*dto.UserStats, error)
	PublicProfile(ctx context.Context, userID uuid.UUID) (*dto.PublicProfile, error)
	UserActivity(ctx context.Context, userID uuid.UUID, kind dto.ActivityKind, page, perPage int) (*commonDto.Paginated[dto.Activity], error)
	DownloadHistory(ctx context.Context, userID uuid.UUID, p pagination.Params) (*commonDto.Paginated[dto.DownloadEntry], error)
}

type statService struct {
	repo     statRepo.StatRepository
	userRepo userRepo.UserRepository
	rdb      *redis.Client
	cacheTTL time.Duration
	log      *logger.Logger
	now      func() time.Time
}

// NewStatService builds the aggregation service. A nil redis client disables
// the dashboard cache.
func NewStatService(repo statRepo.StatRepository, userRepo userRepo.UserRepository, rdb *redis.Client, cacheTTL time.Duration, log *logger.Logger) StatService {
	return &statService{
		repo:     repo,
		userRepo: userRepo,
		rdb:      rdb,
		cacheTTL: cacheTTL,
		log:      log,
		now:      time.Now,
	}
}

func (s *statService) Dashboard(ctx context.Context) (*dto.DashboardStats, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, dashboardCacheKey).Bytes()
		switch {
		case err == nil:
			var cached dto.DashboardStats
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		case !errors.Is(err, redis.Nil):
			s.log.Warn("dashboard cache read failed", "error", err)
		}
	}
	return s.RefreshDashboard(ctx)
}

// InvalidateDashboard drops the cached copy so the next read recomputes it.
func (s *statService) InvalidateDashboard(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, dashboardCacheKey).Err()
}

// RefreshDashboard recomputes the dashboard and overwrites the cached copy.
func (s *statService) RefreshDashboard(ctx context.Context) (*dto.DashboardStats, error) {
	stats, err := s.DashboardAsOf(ctx, s.now())
	if err != nil {
		return nil, err
	}

	if s.rdb != nil && s.cacheTTL > 0 {
		payload, err := json.Marshal(stats)
		if err == nil {
			err = s.rdb.Set(ctx, dashboardCacheKey, payload, s.cacheTTL).Err()
		}
		if err != nil {
			s.log.Warn("dashboard cache write failed", "error", err)
		}
	}
	return stats, nil
}

func (s *statService) DashboardAsOf(ctx context.Context, asOf time.Time) (*dto.DashboardStats, error) {
	totals, err := s.repo.Totals(ctx, asOf.Add(-recentWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to count dashboard totals: %w", err)
	}

	top, err := s.repo.TopSubjects(ctx, topSubjectLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank subjects: %w", err)
	}
	if top == nil {
		top = []statRepo.SubjectCount{}
	}

	recent, err := s.repo.RecentNotes(ctx, recentNoteLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent notes: %w", err)
	}

	return &dto.DashboardStats{
		Stats: dto.DashboardCounters{
			TotalUsers:     totals.Students,
			TotalNotes:     totals.Notes,
			PendingNotes:   totals.PendingNotes,
			TotalDownloads: totals.Downloads,
			NewUsersWeek:   totals.NewUsers,
			NewNotesWeek:   totals.NewNotes,
			DownloadsWeek:  totals.RecentDownload,
		},
		TopSubjects: top,
		RecentNotes: noteDto.ToNoteResponses(recent),
		GeneratedAt: asOf,
	}, nil
}

func (s *statService) UserStats(ctx context.Context, userID uuid.UUID) (*dto.UserStats, error) {
	uploaded, err := s.repo.CountUploads(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	approved, err := s.repo.CountApproved(ctx, userID)
	if err != nil {
		return nil, err
	}
	downloads, err := s.repo.CountDownloadsReceived(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	return &dto.UserStats{
		UploadedNotes:  uploaded,
		ApprovedNotes:  approved,
		TotalDownloads: downloads,
	}, nil
}

func (s *statService) PublicProfile(ctx context.Context, userID uuid.UUID) (*dto.PublicProfile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}

	notes, err := s.repo.CountUploads(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	downloads, err := s.repo.CountDownloadsReceived(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.RecentListedNotes(ctx, userID, recentNoteLimit)
	if err != nil {
		return nil, err
	}

	return &dto.PublicProfile{
		PublicUser:  userDto.ToPublicUser(user),
		Stats:       dto.PublicStats{TotalNotes: notes, TotalDownloads: downloads},
		RecentNotes: noteDto.ToNoteResponses(recent),
	}, nil
}

// UserActivity merges the caller's uploads and downloads into one feed. Each
// source is fetched with a bounded limit (half a page each for the combined
// feed) and the merged list is paged in memory, so combined pages can be
// under-filled and only the first page is ever populated.
func (s *statService) UserActivity(ctx context.Context, userID uuid.UUID, kind dto.ActivityKind, page, perPage int) (*commonDto.Paginated[dto.Activity], error) {
	if kind == "" {
		kind = dto.ActivityAll
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown activity type %q: %w", kind, apperror.ErrInvalidInput)
	}

	p := pagination.New(page, perPage)
	sourceLimit := p.Limit
	if kind == dto.ActivityAll {
		sourceLimit = p.Limit / 2
	}

	var uploads, downloads []dto.Activity
	if kind != dto.ActivityDownloads && sourceLimit > 0 {
		notes, err := s.repo.RecentUploads(ctx, userID, sourceLimit)
		if err != nil {
			return nil, err
		}
		uploads = uploadActivities(notes)
	}
	if kind != dto.ActivityUploads && sourceLimit > 0 {
		logs, err := s.repo.RecentDownloads(ctx, userID, sourceLimit)
		if err != nil {
			return nil, err
		}
		downloads = downloadActivities(logs)
	}

	merged := MergeActivity(uploads, downloads)
	res := pagination.Page(pagination.Slice(merged, p), int64(len(merged)), p)
	return &res, nil
}

func (s *statService) DownloadHistory(ctx context.Context, userID uuid.UUID, p pagination.Params) (*commonDto.Paginated[dto.DownloadEntry], error) {
	logs, total, err := s.repo.DownloadHistory(ctx, userID, p)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.DownloadEntry, 0, len(logs))
	for _, l := range logs {
		// logs of removed notes are gone with the note, but guard anyway
		if l.Note == nil {
			continue
		}
		entries = append(entries, dto.DownloadEntry{
			ID:           l.ID,
			DownloadDate: l.DownloadDate,
			Note:         noteDto.ToNoteResponse(l.Note),
		})
	}

	res := pagination.Page(entries, total, p)
	return &res, nil
}
