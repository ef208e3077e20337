package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"campusdesk/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"campusdesk/internal/auth"
	"campusdesk/internal/cache"
	"campusdesk/internal/config"
	"campusdesk/internal/db"
	"campusdesk/internal/handler"
	"campusdesk/internal/notify"
	"campusdesk/internal/repository"
	"campusdesk/internal/router"
	"campusdesk/internal/service"
	"campusdesk/internal/upload"
)

// @title Campus Helpdesk API
// @version 1.0
// @description Student issues, public announcements and project reviews with staff triage.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the identity provider session token.
func main() {
	cfg := config.Load()

	logWriter := io.Writer(os.Stdout)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("open log file: %v", err)
		}
		defer f.Close()
		logWriter = io.MultiWriter(os.Stdout, f)
	}
	log.SetOutput(logWriter)

	e := echo.New()
	e.Logger.SetOutput(logWriter)

	gormDB, err := db.Open(cfg, logWriter)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("%v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.Printf("redis unavailable at %s, continuing without cache: %v", cfg.RedisAddr, err)
	}
	cancel()

	// Initialize repositories
	directoryRepo := repository.NewDirectoryRepository(gormDB)
	issueRepo := repository.NewIssueRepository(gormDB)
	announcementRepo := repository.NewAnnouncementRepository(gormDB)
	projectRepo := repository.NewProjectRepository(gormDB)

	// Initialize auth components
	verifier, err := auth.NewSessionVerifier(cfg.SessionSecret, cfg.SessionPublicKey, cfg.SessionIssuer)
	if err != nil {
		log.Fatalf("session verifier: %v", err)
	}
	resolver := auth.NewResolver(directoryRepo, auth.NewIdentityCache(cacheClient, cfg.IdentityCacheTTL))

	var notifier notify.Notifier = notify.Noop{}
	if cfg.SMTPHost != "" && cfg.SMTPFrom != "" {
		notifier = notify.NewDispatcher(
			notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom),
			100,
		)
	} else {
		log.Println("SMTP not configured, notifications disabled")
	}
	defer notifier.Close()

	storage, filesDir := newStorage(cfg)

	// Initialize services
	directoryService := service.NewDirectoryService(directoryRepo, resolver)
	issueService := service.NewIssueService(issueRepo, notifier, cfg.UpdateMode)
	announcementService := service.NewAnnouncementService(announcementRepo, cacheClient, cfg.AnnouncementFeedSize)
	projectService := service.NewProjectService(projectRepo, notifier)

	// Register routes
	router.Register(e, verifier, resolver, router.Handlers{
		Identity:     handler.NewIdentityHandler(directoryService),
		Staff:        handler.NewStaffHandler(directoryService),
		Issue:        handler.NewIssueHandler(issueService),
		Announcement: handler.NewAnnouncementHandler(announcementService),
		Project:      handler.NewProjectHandler(projectService),
		Upload:       handler.NewUploadHandler(upload.NewGateway(storage)),
	}, router.Options{FilesDir: filesDir})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	log.Printf("Swagger documentation available at: http://%s/swagger/index.html", docs.SwaggerInfo.Host)
	log.Printf("combined issue updates run in %s mode", cfg.UpdateMode)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}

// newStorage selects the upload backend. The returned directory is non-empty only
// for the local backend, whose files the API serves itself.
func newStorage(cfg *config.Config) (upload.Storage, string) {
	switch cfg.UploadBackend {
	case "http":
		if cfg.UploadEndpoint == "" {
			log.Fatalf("UPLOAD_BACKEND=http requires UPLOAD_ENDPOINT")
		}
		return upload.NewHTTPStorage(cfg.UploadEndpoint, cfg.UploadAPIKey), ""
	case "local", "":
		local, err := upload.NewLocalStorage(cfg.UploadDir, cfg.UploadPublicURL)
		if err != nil {
			log.Fatalf("upload storage: %v", err)
		}
		return local, local.Dir()
	default:
		log.Fatalf("unsupported UPLOAD_BACKEND %q", cfg.UploadBackend)
		return nil, ""
	}
}
