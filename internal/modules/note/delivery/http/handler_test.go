package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/notevault/internal/entity"
	catalog "anoa.com/notevault/internal/modules/catalog/service"
	noteRepo "anoa.com/notevault/internal/modules/note/repository"
	noteService "anoa.com/notevault/internal/modules/note/service"
	userRepo "anoa.com/notevault/internal/modules/user/repository"
	"anoa.com/notevault/internal/testutil"
	"anoa.com/notevault/pkg/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type env struct {
	db     *gorm.DB
	blobs  *testutil.Blobs
	router *gin.Engine
	// caller is read per request; nil means anonymous.
	caller *entity.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	blobs := testutil.NewBlobs()
	notes := noteRepo.NewNoteRepository(db)
	svc := noteService.NewNoteService(notes, blobs, nil, nil, nil, noteService.Config{MaxUploadBytes: 1 << 20}, logger.Nop())
	h := NewNoteHandler(svc, catalog.NewCatalogService(notes, userRepo.NewUserRepository(db)))

	e := &env{db: db, blobs: blobs}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if e.caller != nil {
			c.Set("user_id", e.caller.ID.String())
			c.Set("user_role", string(e.caller.Role))
		}
		c.Next()
	})
	r.POST("/notes/upload", h.UploadNote)
	r.GET("/notes", h.ListNotes)
	r.GET("/notes/my-notes", h.ListMyNotes)
	r.GET("/notes/:id", h.GetNote)
	r.GET("/notes/:id/download", h.DownloadNote)
	e.router = r
	return e
}

func (e *env) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func multipartUpload(t *testing.T, fields map[string]string, fileName, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		fw.Write([]byte(body))
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/notes/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadNote(t *testing.T) {
	e := newEnv(t)
	e.caller = testutil.SeedUser(t, e.db)

	w := e.do(multipartUpload(t, map[string]string{"title": "Linear Algebra", "tags": "matrices"}, "la.txt", "vectors"))
	if w.Code != http.StatusCreated {
		t.Fatalf("status: got=%d want=%d body=%s", w.Code, http.StatusCreated, w.Body.String())
	}

	var body struct {
		Note struct {
			Title      string   `json:"title"`
			IsApproved bool     `json:"is_approved"`
			Tags       []string `json:"tags"`
		} `json:"note"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Note.Title != "Linear Algebra" || body.Note.IsApproved || len(body.Note.Tags) != 1 {
		t.Fatalf("note: got=%+v", body.Note)
	}

	cases := []struct {
		name string
		req  *http.Request
		want int
	}{
		{"missing file", multipartUpload(t, map[string]string{"title": "x"}, "", ""), http.StatusBadRequest},
		{"missing title", multipartUpload(t, nil, "a.pdf", "x"), http.StatusBadRequest},
		{"bad extension", multipartUpload(t, map[string]string{"title": "x"}, "a.exe", "x"), http.StatusBadRequest},
	}
	for _, tc := range cases {
		if w := e.do(tc.req); w.Code != tc.want {
			t.Fatalf("%s: got=%d want=%d body=%s", tc.name, w.Code, tc.want, w.Body.String())
		}
	}
}

func TestUploadRequiresCaller(t *testing.T) {
	e := newEnv(t)
	w := e.do(multipartUpload(t, map[string]string{"title": "x"}, "a.pdf", "x"))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: got=%d want=%d", w.Code, http.StatusUnauthorized)
	}
}

func TestDownloadNote(t *testing.T) {
	env := newEnv(t)
	owner := testutil.SeedUser(t, env.db)
	env.caller = testutil.SeedUser(t, env.db)

	pending := testutil.SeedNote(t, env.db, owner)
	env.blobs.Put(pending.FileRef, []byte("draft"))
	listed := testutil.SeedNote(t, env.db, owner, testutil.Approved(owner.ID))
	env.blobs.Put(listed.FileRef, []byte("final"))

	w := env.do(httptest.NewRequest(http.MethodGet, "/notes/"+pending.ID.String()+"/download", nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("pending download: got=%d want=%d", w.Code, http.StatusForbidden)
	}

	w = env.do(httptest.NewRequest(http.MethodGet, "/notes/"+listed.ID.String()+"/download", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("listed download: got=%d body=%s", w.Code, w.Body.String())
	}
	if w.Body.String() != "final" {
		t.Fatalf("body: got=%q", w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="notes.pdf"` {
		t.Fatalf("content disposition: got=%q", cd)
	}

	w = env.do(httptest.NewRequest(http.MethodGet, "/notes/not-a-uuid/download", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: got=%d want=%d", w.Code, http.StatusBadRequest)
	}
}

func TestListAndGetNotes(t *testing.T) {
	e := newEnv(t)
	u := testutil.SeedUser(t, e.db)

	for i := 0; i < 12; i++ {
		testutil.SeedNote(t, e.db, u, testutil.Approved(u.ID))
	}
	hidden := testutil.SeedNote(t, e.db, u, testutil.Private())

	w := e.do(httptest.NewRequest(http.MethodGet, "/notes?page=2&per_page=5", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list: got=%d body=%s", w.Code, w.Body.String())
	}
	var page struct {
		Data []json.RawMessage `json:"data"`
		Meta struct {
			TotalPages int   `json:"total_pages"`
			TotalItems int64 `json:"total_items"`
			HasNext    bool  `json:"has_next"`
			HasPrev    bool  `json:"has_prev"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Data) != 5 || page.Meta.TotalPages != 3 || page.Meta.TotalItems != 12 || !page.Meta.HasNext || !page.Meta.HasPrev {
		t.Fatalf("page: items=%d meta=%+v", len(page.Data), page.Meta)
	}

	w = e.do(httptest.NewRequest(http.MethodGet, "/notes?page=0", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("page=0: got=%d want=%d", w.Code, http.StatusOK)
	}
	var first struct {
		Meta struct {
			CurrentPage int `json:"current_page"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.Meta.CurrentPage != 1 {
		t.Fatalf("page=0 current_page: got=%d want=1", first.Meta.CurrentPage)
	}

	if w := e.do(httptest.NewRequest(http.MethodGet, "/notes/"+hidden.ID.String(), nil)); w.Code != http.StatusForbidden {
		t.Fatalf("hidden note: got=%d want=%d", w.Code, http.StatusForbidden)
	}
}
