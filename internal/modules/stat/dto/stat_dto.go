package dto

import (
	"time"

	noteDto "anoa.com/notevault/internal/modules/note/dto"
	statRepo "anoa.com/notevault/internal/modules/stat/repository"
	userDto "anoa.com/notevault/internal/modules/user/dto"
	"github.com/google/uuid"
)

type DashboardCounters struct {
	TotalUsers     int64 `json:"total_users"`
	TotalNotes     int64 `json:"total_notes"`
	PendingNotes   int64 `json:"pending_notes"`
	TotalDownloads int64 `json:"total_downloads"`
	NewUsersWeek   int64 `json:"new_users_week"`
	NewNotesWeek   int64 `json:"new_notes_week"`
	DownloadsWeek  int64 `json:"downloads_week"`
}

type DashboardStats struct {
	Stats       DashboardCounters       `json:"stats"`
	TopSubjects []statRepo.SubjectCount `json:"top_subjects"`
	RecentNotes []noteDto.NoteResponse  `json:"recent_notes"`
	GeneratedAt time.Time               `json:"generated_at"`
}

type UserStats struct {
	UploadedNotes  int64 `json:"uploaded_notes"`
	ApprovedNotes  int64 `json:"approved_notes"`
	TotalDownloads int64 `json:"total_downloads"`
}

type PublicStats struct {
	TotalNotes     int64 `json:"total_notes"`
	TotalDownloads int64 `json:"total_downloads"`
}

type PublicProfile struct {
	userDto.PublicUser
	Stats       PublicStats            `json:"stats"`
	RecentNotes []noteDto.NoteResponse `json:"recent_notes"`
}

type ActivityKind string

const (
	ActivityAll       ActivityKind = "all"
	ActivityUploads   ActivityKind = "uploads"
	ActivityDownloads ActivityKind = "downloads"
)

func (k ActivityKind) Valid() bool {
	switch k {
	case ActivityAll, ActivityUploads, ActivityDownloads:
		return true
	}
	return false
}

type ActivityQuery struct {
	Type    string `form:"type" binding:"omitempty,oneof=all uploads downloads"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1"`
}

type Activity struct {
	Type        string                `json:"type"`
	Date        time.Time             `json:"date"`
	Note        *noteDto.NoteResponse `json:"note"`
	Description string                `json:"description"`
}

type DownloadEntry struct {
	ID           uuid.UUID            `json:"id"`
	DownloadDate time.Time            `json:"download_date"`
	Note         noteDto.NoteResponse `json:"note"`
}
