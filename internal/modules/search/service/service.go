package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"anoa.com/notevault/internal/entity"
	"anoa.com/notevault/pkg/logger"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const (
	NotesIndex     = "notes"
	signingKeyName = "NoteVaultTenantSigner"
	tokenTTL       = 24 * time.Hour
)

// NoteIndexer keeps the notes index in step with moderation decisions and
// hands out tenant tokens so clients can query meilisearch directly.
type NoteIndexer interface {
	IndexNote(ctx context.Context, note *entity.Note) error
	RemoveNote(ctx context.Context, id uuid.UUID) error
	GenerateSearchToken(role entity.Role) (string, error)
}

type noteIndexer struct {
	client        meilisearch.ServiceManager
	signingKeyUID string
	signingKey    string
	sanitizer     *bluemonday.Policy
	log           *logger.Logger
}

func NewNoteIndexer(client meilisearch.ServiceManager, log *logger.Logger) NoteIndexer {
	if log == nil {
		log = logger.Nop()
	}
	s := &noteIndexer{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		log:       log,
	}
	s.initIndex()
	s.initSigningKey()
	return s
}

func (s *noteIndexer) initSigningKey() {
	resp, err := s.client.GetKeys(&meilisearch.KeysQuery{Limit: 20})
	if err != nil {
		s.log.Warn("failed to list meilisearch keys", "error", err)
		return
	}

	for _, key := range resp.Results {
		if key.Name == signingKeyName {
			s.signingKeyUID = key.UID
			s.signingKey = key.Key
			s.log.Debug("found existing meilisearch signing key")
			return
		}
	}

	key, err := s.client.CreateKey(&meilisearch.Key{
		Description: "Key to sign note search tenant tokens",
		Name:        signingKeyName,
		Actions:     []string{"search"},
		Indexes:     []string{"*"},
		ExpiresAt:   time.Now().AddDate(100, 0, 0),
	})
	if err != nil {
		s.log.Warn("failed to create meilisearch signing key", "error", err)
		return
	}

	s.signingKeyUID = key.UID
	s.signingKey = key.Key
	s.log.Info("created meilisearch signing key")
}

func (s *noteIndexer) initIndex() {
	filterable := []string{"subject_id", "semester", "file_type", "tags", "uploaded_by"}
	filterableAny := make([]any, len(filterable))
	for i, v := range filterable {
		filterableAny[i] = v
	}
	if _, err := s.client.Index(NotesIndex).UpdateFilterableAttributes(&filterableAny); err != nil {
		s.log.Warn("failed to update notes filterable attributes", "error", err)
	}

	sortable := []string{"approved_at", "created_at", "download_count"}
	if _, err := s.client.Index(NotesIndex).UpdateSortableAttributes(&sortable); err != nil {
		s.log.Warn("failed to update notes sortable attributes", "error", err)
	}

	s.log.Debug("meilisearch notes index initialized")
}

type noteDocument struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	FileType      string   `json:"file_type"`
	Semester      string   `json:"semester"`
	AcademicYear  string   `json:"academic_year"`
	SubjectID     string   `json:"subject_id"`
	SubjectName   string   `json:"subject_name"`
	SubjectCode   string   `json:"subject_code"`
	UploadedBy    string   `json:"uploaded_by"`
	Uploader      string   `json:"uploader"`
	DownloadCount int64    `json:"download_count"`
	CreatedAt     int64    `json:"created_at"`
	ApprovedAt    int64    `json:"approved_at"`
}

func (s *noteIndexer) cleanContentForIndex(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	clean := html.UnescapeString(s.sanitizer.Sanitize(content))
	return strings.Join(strings.Fields(clean), " ")
}

func (s *noteIndexer) buildDocument(note *entity.Note) noteDocument {
	tags := note.TagList()
	for i := range tags {
		tags[i] = s.cleanContentForIndex(tags[i])
	}

	doc := noteDocument{
		ID:            note.ID.String(),
		Title:         s.cleanContentForIndex(note.Title),
		Description:   s.cleanContentForIndex(note.Description),
		Tags:          tags,
		FileType:      note.FileType,
		Semester:      note.Semester,
		AcademicYear:  note.AcademicYear,
		UploadedBy:    note.UploadedBy.String(),
		DownloadCount: note.DownloadCount,
		CreatedAt:     note.CreatedAt.Unix(),
	}
	if note.ApprovedAt != nil {
		doc.ApprovedAt = note.ApprovedAt.Unix()
	}
	if note.SubjectID != nil {
		doc.SubjectID = note.SubjectID.String()
	}
	if note.Subject != nil {
		doc.SubjectName = note.Subject.Name
		doc.SubjectCode = note.Subject.Code
	}
	if note.Uploader != nil {
		doc.Uploader = note.Uploader.Username
	}
	return doc
}

// IndexNote only accepts notes that may be listed publicly.
func (s *noteIndexer) IndexNote(ctx context.Context, note *entity.Note) error {
	if !note.Listed() {
		return fmt.Errorf("note %s is not listed", note.ID)
	}

	doc := s.buildDocument(note)
	task, err := s.client.Index(NotesIndex).AddDocuments([]noteDocument{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	s.log.Debug("indexed note", "note_id", note.ID, "task_uid", task.TaskUID)
	return nil
}

func (s *noteIndexer) RemoveNote(ctx context.Context, id uuid.UUID) error {
	_, err := s.client.Index(NotesIndex).DeleteDocument(id.String())
	return err
}

// searchRules limits ordinary users to the notes index. Moderators get every
// index the signing key covers.
func searchRules(role entity.Role) map[string]any {
	if role.CanModerate() {
		return map[string]any{"*": map[string]any{}}
	}
	return map[string]any{NotesIndex: map[string]any{}}
}

func (s *noteIndexer) GenerateSearchToken(role entity.Role) (string, error) {
	if s.signingKeyUID == "" || s.signingKey == "" {
		return "", fmt.Errorf("signing key not initialized")
	}

	return s.client.GenerateTenantToken(s.signingKeyUID, searchRules(role), &meilisearch.TenantTokenOptions{
		APIKey:    s.signingKey,
		ExpiresAt: time.Now().Add(tokenTTL),
	})
}

func strPtr(s string) *string {
	return &s
}
