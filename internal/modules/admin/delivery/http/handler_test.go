package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/notevault/internal/entity"
	adminService "anoa.com/notevault/internal/modules/admin/service"
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
	caller *entity.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	blobs := testutil.NewBlobs()
	notes := noteRepo.NewNoteRepository(db)
	users := userRepo.NewUserRepository(db)

	h := NewAdminHandler(
		adminService.NewAdminService(users, logger.Nop()),
		catalog.NewCatalogService(notes, users),
		noteService.NewNoteService(notes, blobs, nil, nil, nil, noteService.Config{}, logger.Nop()),
	)

	e := &env{db: db, blobs: blobs}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if e.caller != nil {
			c.Set("user_id", e.caller.ID.String())
			c.Set("user_role", string(e.caller.Role))
		}
		c.Next()
	})
	r.GET("/admin/users", h.GetAllUsers)
	r.POST("/admin/users/:id/toggle-status", h.ToggleUserStatus)
	r.GET("/admin/notes/pending", h.GetPendingNotes)
	r.POST("/admin/notes/:id/approve", h.ApproveNote)
	r.POST("/admin/notes/:id/reject", h.RejectNote)
	r.DELETE("/admin/notes/:id", h.DeleteNote)
	e.router = r
	return e
}

func (e *env) do(method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestModerationFlow(t *testing.T) {
	e := newEnv(t)
	e.caller = testutil.SeedUser(t, e.db, testutil.WithRole(entity.RoleTeacher))
	uploader := testutil.SeedUser(t, e.db)

	first := testutil.SeedNote(t, e.db, uploader)
	e.blobs.Put(first.FileRef, []byte("a"))
	second := testutil.SeedNote(t, e.db, uploader)
	e.blobs.Put(second.FileRef, []byte("b"))

	w := e.do(http.MethodGet, "/admin/notes/pending")
	if w.Code != http.StatusOK {
		t.Fatalf("pending: got=%d body=%s", w.Code, w.Body.String())
	}
	var pending struct {
		Meta struct {
			TotalItems int64 `json:"total_items"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &pending); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pending.Meta.TotalItems != 2 {
		t.Fatalf("pending total: got=%d want=2", pending.Meta.TotalItems)
	}

	if w := e.do(http.MethodPost, "/admin/notes/"+first.ID.String()+"/approve"); w.Code != http.StatusOK {
		t.Fatalf("approve: got=%d body=%s", w.Code, w.Body.String())
	}
	if w := e.do(http.MethodPost, "/admin/notes/"+first.ID.String()+"/approve"); w.Code != http.StatusBadRequest {
		t.Fatalf("approve twice: got=%d want=%d", w.Code, http.StatusBadRequest)
	}
	if w := e.do(http.MethodPost, "/admin/notes/"+second.ID.String()+"/reject"); w.Code != http.StatusOK {
		t.Fatalf("reject: got=%d body=%s", w.Code, w.Body.String())
	}
	if e.blobs.Len() != 1 {
		t.Fatalf("blobs after reject: got=%d want=1", e.blobs.Len())
	}

	if w := e.do(http.MethodDelete, "/admin/notes/"+first.ID.String()); w.Code != http.StatusOK {
		t.Fatalf("delete: got=%d body=%s", w.Code, w.Body.String())
	}
	if w := e.do(http.MethodDelete, "/admin/notes/"+first.ID.String()); w.Code != http.StatusNotFound {
		t.Fatalf("delete twice: got=%d want=%d", w.Code, http.StatusNotFound)
	}
}

func TestAdminUsers(t *testing.T) {
	e := newEnv(t)
	e.caller = testutil.SeedUser(t, e.db, testutil.WithRole(entity.RoleAdmin))
	student := testutil.SeedUser(t, e.db)

	if w := e.do(http.MethodGet, "/admin/users?role=student"); w.Code != http.StatusOK {
		t.Fatalf("users: got=%d body=%s", w.Code, w.Body.String())
	}
	if w := e.do(http.MethodGet, "/admin/users?role=wizard"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad role: got=%d want=%d", w.Code, http.StatusBadRequest)
	}

	if w := e.do(http.MethodPost, "/admin/users/"+student.ID.String()+"/toggle-status"); w.Code != http.StatusOK {
		t.Fatalf("toggle: got=%d body=%s", w.Code, w.Body.String())
	}
	if w := e.do(http.MethodPost, "/admin/users/"+e.caller.ID.String()+"/toggle-status"); w.Code != http.StatusForbidden {
		t.Fatalf("toggle admin: got=%d want=%d", w.Code, http.StatusForbidden)
	}
}
