package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"anoa.com/notevault/internal/config"
	"anoa.com/notevault/internal/jobs"
	"anoa.com/notevault/internal/middleware"
	"anoa.com/notevault/pkg/logger"
	"anoa.com/notevault/pkg/ratelimiter"
	"anoa.com/notevault/pkg/response"
	"anoa.com/notevault/pkg/storage"

	adminHttp "anoa.com/notevault/internal/modules/admin/delivery/http"
	adminService "anoa.com/notevault/internal/modules/admin/service"

	bookmarkHttp "anoa.com/notevault/internal/modules/bookmark/delivery/http"
	bookmarkRepo "anoa.com/notevault/internal/modules/bookmark/repository"
	bookmarkService "anoa.com/notevault/internal/modules/bookmark/service"

	catalogService "anoa.com/notevault/internal/modules/catalog/service"

	commentHttp "anoa.com/notevault/internal/modules/comment/delivery/http"
	commentRepo "anoa.com/notevault/internal/modules/comment/repository"
	commentService "anoa.com/notevault/internal/modules/comment/service"

	noteHttp "anoa.com/notevault/internal/modules/note/delivery/http"
	noteRepo "anoa.com/notevault/internal/modules/note/repository"
	noteService "anoa.com/notevault/internal/modules/note/service"

	notiHttp "anoa.com/notevault/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/notevault/internal/modules/notification/repository"
	notifService "anoa.com/notevault/internal/modules/notification/service"

	searchService "anoa.com/notevault/internal/modules/search/service"

	settingHttp "anoa.com/notevault/internal/modules/setting/delivery/http"
	settingRepo "anoa.com/notevault/internal/modules/setting/repository"
	settingService "anoa.com/notevault/internal/modules/setting/service"

	statHttp "anoa.com/notevault/internal/modules/stat/delivery/http"
	statRepo "anoa.com/notevault/internal/modules/stat/repository"
	statService "anoa.com/notevault/internal/modules/stat/service"

	subjectHttp "anoa.com/notevault/internal/modules/subject/delivery/http"
	subjectRepo "anoa.com/notevault/internal/modules/subject/repository"
	subjectService "anoa.com/notevault/internal/modules/subject/service"

	userHttp "anoa.com/notevault/internal/modules/user/delivery/http"
	userRepo "anoa.com/notevault/internal/modules/user/repository"
	userService "anoa.com/notevault/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the external resources the server is built from. Redis and
// Meili may be nil; the features that need them are switched off.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Meili  meilisearch.ServiceManager
	Blobs  storage.BlobStore
	Logger *logger.Logger
}

type Server struct {
	engine    *gin.Engine
	scheduler *jobs.Scheduler
	http      *http.Server
	log       *logger.Logger
}

func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	db, redisClient, log := deps.DB, deps.Redis, deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	response.SetLogger(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var indexer searchService.NoteIndexer
	if deps.Meili != nil {
		indexer = searchService.NewNoteIndexer(deps.Meili, log.With("component", "search"))
	}

	userRepository := userRepo.NewUserRepository(db)
	noteRepository := noteRepo.NewNoteRepository(db)

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient, log)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient, cfg.AllowedOrigins, log)

	statSvc := statService.NewStatService(statRepo.NewStatRepository(db), userRepository, redisClient, cfg.StatsCacheTTL, log)
	statHandler := statHttp.NewStatHandler(statSvc)

	catalogSvc := catalogService.NewCatalogService(noteRepository, userRepository)

	userSvc := userService.NewUserService(userRepository, statSvc, searchIssuer(indexer), userService.Config{
		JWTSecret: cfg.JWTSecret,
		JWTTTL:    cfg.JWTTTL,
	}, log)
	userHandler := userHttp.NewUserHandler(userSvc, catalogSvc)

	noteSvc := noteService.NewNoteService(
		noteRepository,
		deps.Blobs,
		ratelimiter.New(redisClient),
		noteIndexer(indexer),
		notificationSvc,
		noteService.Config{
			MaxUploadBytes: cfg.MaxUploadBytes(),
			UploadInterval: cfg.RateLimitUpload,
			Dashboard:      statSvc,
		},
		log,
	)
	noteHandler := noteHttp.NewNoteHandler(noteSvc, catalogSvc)

	subjectSvc := subjectService.NewSubjectService(subjectRepo.NewSubjectRepository(db))
	subjectHandler := subjectHttp.NewSubjectHandler(subjectSvc)

	bookmarkSvc := bookmarkService.NewBookmarkService(bookmarkRepo.NewBookmarkRepository(db))
	bookmarkHandler := bookmarkHttp.NewBookmarkHandler(bookmarkSvc)

	commentSvc := commentService.NewCommentService(commentRepo.NewCommentRepository(db), notificationSvc, log)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)

	settingSvc := settingService.NewSettingService(settingRepo.NewSettingRepository(db))
	settingHandler := settingHttp.NewSettingHandler(settingSvc)

	adminSvc := adminService.NewAdminService(userRepository, log)
	adminHandler := adminHttp.NewAdminHandler(adminSvc, catalogSvc, noteSvc)

	scheduler := jobs.NewScheduler(log.With("component", "jobs"))
	for _, job := range []jobs.Job{
		jobs.NewDashboardJob(statSvc),
		jobs.NewReconcileJob(noteRepository, log),
	} {
		if err := scheduler.Register(job); err != nil {
			return nil, err
		}
	}

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health", "/api/notifications/ws"},
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(userRepository, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", userHandler.Register)
		auth.POST("/login", userHandler.Login)
	}

	// Public reads; a valid token still identifies the caller
	public := api.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/notes", noteHandler.ListNotes)
		public.GET("/notes/subjects", subjectHandler.GetAllSubjects)
		public.GET("/notes/:id", noteHandler.GetNote)
		public.GET("/notes/:id/comments", commentHandler.ListComments)
		public.GET("/subjects", subjectHandler.GetAllSubjects)
		public.GET("/users/:id/profile", statHandler.GetPublicProfile)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Note routes
		protected.POST("/notes/upload", noteHandler.UploadNote)
		protected.GET("/notes/my-notes", noteHandler.ListMyNotes)
		protected.GET("/notes/:id/download", noteHandler.DownloadNote)
		protected.POST("/notes/:id/bookmark", bookmarkHandler.AddBookmark)
		protected.DELETE("/notes/:id/bookmark", bookmarkHandler.RemoveBookmark)
		protected.POST("/notes/:id/comments", commentHandler.CreateComment)
		protected.PUT("/comments/:comment_id", commentHandler.UpdateComment)
		protected.DELETE("/comments/:comment_id", commentHandler.DeleteComment)
		protected.GET("/bookmarks", bookmarkHandler.ListBookmarks)

		// Profile routes
		protected.GET("/profile", userHandler.GetProfile)
		protected.PUT("/profile", userHandler.UpdateProfile)
		protected.PUT("/profile/password", userHandler.ChangePassword)
		protected.GET("/profile/stats", statHandler.GetMyStats)
		protected.GET("/profile/activity", statHandler.GetActivity)
		protected.GET("/profile/downloads", statHandler.GetDownloadHistory)
		protected.GET("/users/search", userHandler.SearchUsers)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireModerator())
		{
			adminGroup.GET("/dashboard-stats", statHandler.GetDashboard)
			adminGroup.GET("/users", adminHandler.GetAllUsers)
			adminGroup.POST("/users/:id/toggle-status", adminHandler.ToggleUserStatus)
			adminGroup.GET("/notes/pending", adminHandler.GetPendingNotes)
			adminGroup.POST("/notes/:id/approve", adminHandler.ApproveNote)
			adminGroup.POST("/notes/:id/reject", adminHandler.RejectNote)
			adminGroup.DELETE("/notes/:id", adminHandler.DeleteNote)
			adminGroup.GET("/subjects", subjectHandler.GetAllSubjects)
			adminGroup.POST("/subjects", subjectHandler.CreateSubject)
			adminGroup.PUT("/subjects/:id", subjectHandler.UpdateSubject)
			adminGroup.DELETE("/subjects/:id", subjectHandler.DeleteSubject)
			adminGroup.GET("/settings", settingHandler.GetSettings)
			adminGroup.PUT("/settings/:key", settingHandler.UpdateSetting)
		}
	}

	return &Server{
		engine:    router,
		scheduler: scheduler,
		log:       log,
	}, nil
}

// A missing indexer must reach the services as a nil interface, not as an
// interface holding a nil value.
func searchIssuer(indexer searchService.NoteIndexer) userService.SearchTokenIssuer {
	if indexer == nil {
		return nil
	}
	return indexer
}

func noteIndexer(indexer searchService.NoteIndexer) noteService.Indexer {
	if indexer == nil {
		return nil
	}
	return indexer
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the scheduler and serves until the listener fails or Shutdown
// is called.
func (s *Server) Run(addr string) error {
	s.scheduler.Start()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("http server listening", "addr", addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.scheduler.Stop(ctx)
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
