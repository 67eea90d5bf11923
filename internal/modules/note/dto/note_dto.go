package dto

import (
	"time"

	"anoa.com/notevault/internal/entity"
	"github.com/google/uuid"
)

// SubmitNoteInput is bound from the multipart upload form.
type SubmitNoteInput struct {
	Title        string `form:"title" binding:"required,max=200"`
	Description  string `form:"description" binding:"omitempty,max=5000"`
	SubjectID    string `form:"subject_id" binding:"omitempty,uuid"`
	Semester     string `form:"semester" binding:"omitempty,max=20"`
	AcademicYear string `form:"academic_year" binding:"omitempty,max=20"`
	Tags         string `form:"tags" binding:"omitempty,max=500"`
	IsPublic     *bool  `form:"is_public"`
}

type NoteListQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PerPage   int    `form:"per_page" binding:"omitempty,min=1"`
	SubjectID string `form:"subject_id" binding:"omitempty,uuid"`
	Semester  string `form:"semester"`
	Uploader  string `form:"uploaded_by" binding:"omitempty,uuid"`
	Search    string `form:"search"`
}

type SubjectSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Code string    `json:"code"`
}

type UploaderSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
}

type NoteResponse struct {
	ID               uuid.UUID        `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	FileName         string           `json:"file_name"`
	OriginalFilename string           `json:"original_filename"`
	FileSize         int64            `json:"file_size"`
	FileType         string           `json:"file_type"`
	PageCount        int              `json:"page_count"`
	SubjectID        *uuid.UUID       `json:"subject_id"`
	Subject          *SubjectSummary  `json:"subject,omitempty"`
	UploadedBy       uuid.UUID        `json:"uploaded_by"`
	Uploader         *UploaderSummary `json:"uploader,omitempty"`
	Semester         string           `json:"semester"`
	AcademicYear     string           `json:"academic_year"`
	Tags             []string         `json:"tags"`
	DownloadCount    int64            `json:"download_count"`
	IsApproved       bool             `json:"is_approved"`
	ApprovedBy       *uuid.UUID       `json:"approved_by"`
	ApprovedAt       *time.Time       `json:"approved_at"`
	IsPublic         bool             `json:"is_public"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func ToNoteResponse(n *entity.Note) NoteResponse {
	res := NoteResponse{
		ID:               n.ID,
		Title:            n.Title,
		Description:      n.Description,
		FileName:         n.FileName,
		OriginalFilename: n.OriginalFilename,
		FileSize:         n.FileSize,
		FileType:         n.FileType,
		PageCount:        n.PageCount,
		SubjectID:        n.SubjectID,
		UploadedBy:       n.UploadedBy,
		Semester:         n.Semester,
		AcademicYear:     n.AcademicYear,
		Tags:             n.TagList(),
		DownloadCount:    n.DownloadCount,
		IsApproved:       n.IsApproved,
		ApprovedBy:       n.ApprovedBy,
		ApprovedAt:       n.ApprovedAt,
		IsPublic:         n.IsPublic,
		CreatedAt:        n.CreatedAt,
		UpdatedAt:        n.UpdatedAt,
	}

	if n.Subject != nil {
		res.Subject = &SubjectSummary{ID: n.Subject.ID, Name: n.Subject.Name, Code: n.Subject.Code}
	}
	if n.Uploader != nil {
		res.Uploader = &UploaderSummary{
			ID:       n.Uploader.ID,
			Username: n.Uploader.Username,
			FullName: n.Uploader.FullName(),
		}
	}
	return res
}

func ToNoteResponses(notes []entity.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for i := range notes {
		out = append(out, ToNoteResponse(&notes[i]))
	}
	return out
}
