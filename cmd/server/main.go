package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"caseflow/internal/auth"
	"caseflow/internal/changefeed"
	"caseflow/internal/config"
	"caseflow/internal/functions"
	"caseflow/internal/handler"
	"caseflow/internal/middleware"
	"caseflow/internal/repository/postgres"
	"caseflow/internal/service"
	"caseflow/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier for Supabase authentication
	jwtVerifier, err := auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Create repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgres.NewDocumentRepository(repoConfig)
	notificationRepo := postgres.NewNotificationRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// External clients
	store := storage.New(cfg.SupabaseURL, cfg.SupabaseKey, cfg.StorageBucket, logger)
	if err := store.EnsureBucket(ctx); err != nil {
		log.Fatalf("Failed to ensure storage bucket: %v", err)
	}
	fns := functions.New(cfg.SupabaseURL, cfg.SupabaseKey, logger)

	// Document change feed (Postgres LISTEN/NOTIFY)
	feed := changefeed.NewFeed(pool, cfg.FeedChannel, logger)

	// Create services
	notificationService := service.NewNotificationService(notificationRepo, logger)
	treeService := service.NewTreeService(docRepo, logger)
	docService := service.NewDocumentService(docRepo, store, fns, notificationService, logger)
	folderService := service.NewFolderService(docRepo, txManager, notificationService, logger)
	changeNotifier := service.NewChangeNotifier(feed, notificationService, logger)

	// Create handlers
	treeHandler := handler.NewTreeHandler(treeService, logger)
	docHandler := handler.NewDocumentHandler(docService, logger)
	folderHandler := handler.NewFolderHandler(folderService, logger)
	clientHandler := handler.NewClientHandler(docService, logger)
	formHandler := handler.NewFormHandler(logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger)
	integrationHandler := handler.NewIntegrationHandler(fns, logger)
	eventsHandler := handler.NewEventsHandler(feed, nil, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Tree endpoint
	mux.HandleFunc("GET /api/tree", treeHandler.GetTree)

	// Document routes
	mux.HandleFunc("GET /api/documents", docHandler.ListDocuments)
	mux.HandleFunc("POST /api/documents", docHandler.UploadDocument)
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("PATCH /api/documents/{id}", docHandler.UpdateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", docHandler.DeleteDocument)
	mux.HandleFunc("POST /api/documents/{id}/analyze", docHandler.AnalyzeDocument)

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("PATCH /api/folders/{id}/rename", folderHandler.RenameFolder)
	mux.HandleFunc("PATCH /api/folders/{id}/move", folderHandler.MoveFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)

	// Client routes
	mux.HandleFunc("GET /api/clients", clientHandler.ListClients)

	// Form routes
	mux.HandleFunc("GET /api/forms", formHandler.ListForms)
	mux.HandleFunc("POST /api/forms/{type}/map", formHandler.MapForm)

	// Notification routes
	mux.HandleFunc("GET /api/notifications", notificationHandler.ListNotifications)
	mux.HandleFunc("POST /api/notifications/read-all", notificationHandler.MarkAllRead)
	mux.HandleFunc("POST /api/notifications/{id}/read", notificationHandler.MarkRead)
	mux.HandleFunc("DELETE /api/notifications/{id}", notificationHandler.DeleteNotification)

	// Platform integration routes
	mux.HandleFunc("POST /api/plaid/exchange", integrationHandler.ExchangePlaidToken)
	mux.HandleFunc("GET /api/regulations/search", integrationHandler.SearchRegulations)

	// Change stream (SSE)
	mux.HandleFunc("GET /api/events", eventsHandler.StreamEvents)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	root = middleware.AuthMiddleware(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	// Run the HTTP server and the change feed listener together; either one
	// failing (or a shutdown signal) stops the other.
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		return feed.Run(groupCtx)
	})

	group.Go(func() error {
		return changeNotifier.Run(groupCtx)
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
	logger.Info("server stopped")
}
