package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"AuxFM/cache"
	"AuxFM/config"
	"AuxFM/core/hub"
	"AuxFM/core/ingest"
	"AuxFM/core/library"
	"AuxFM/core/player"
	"AuxFM/db"
	"AuxFM/logger"
	"AuxFM/model"
	"AuxFM/repository"
	"AuxFM/storage"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
	})

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	blobs, err := newBlobStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize blob storage: %v", err)
	}

	trackRepo, cleanup, err := newTrackRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize catalog: %v", err)
	}
	defer cleanup()

	if cfg.RedisEnabled {
		if err := db.ConnectRedis(cfg); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer db.CloseRedis()
		log.Println("Successfully connected to Redis")
	}
	playlistCache := cache.NewPlaylistCache(db.RedisClient)

	lib := library.NewService(trackRepo, blobs, playlistCache)

	// One authoritative transport clock per process.
	transport := player.NewTransport()
	jukeboxHub := hub.NewHub(transport)
	go jukeboxHub.Run()
	defer jukeboxHub.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IngestDir != "" {
		watcher, err := ingest.NewWatcher(cfg.IngestDir, lib)
		if err != nil {
			log.Fatalf("Failed to start ingest watcher: %v", err)
		}
		go watcher.Run(ctx)
	}

	apiHandler := NewAPIHandler(lib, blobs, cfg)
	wsHandler := NewWSHandler(jukeboxHub)

	router := mux.NewRouter()

	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Filename, Range")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// API endpoints
	router.HandleFunc("/api/upload", apiHandler.UploadTrackHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/playlist", apiHandler.GetPlaylistHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/playlist/rename", apiHandler.RenameTrackHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/playlist/delete", apiHandler.DeleteTrackHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/playlist/reorder", apiHandler.ReorderPlaylistHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/playlist/upload-art", apiHandler.UploadArtHandler).Methods(http.MethodPost)

	// Media endpoints
	router.HandleFunc("/stream/{key:.+}", apiHandler.StreamTrackHandler).Methods(http.MethodGet)
	router.HandleFunc("/art/{id:[0-9]+}.jpg", apiHandler.ArtHandler).Methods(http.MethodGet)

	// Realtime playback channel
	router.Handle("/ws", wsHandler)

	// Frontend UI serving
	uiFileServer := http.FileServer(http.Dir(cfg.WebAppDir))
	router.PathPrefix("/").Handler(uiFileServer)

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s...", cfg.ListenAddr)
		log.Printf("Storage backend: %s, catalog driver: %s", cfg.StorageBackend, cfg.CatalogDriver)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// newBlobStore builds the blob capability selected by configuration.
func newBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.StorageBackend {
	case config.StorageMinio:
		return storage.NewMinioStore(cfg)
	default:
		return storage.NewLocalStore(cfg.MediaDir)
	}
}

// newTrackRepository builds the catalog selected by configuration. The MySQL
// driver connects both the raw connection the repository queries over and
// the GORM connection that migrates the schema.
func newTrackRepository(cfg *config.Config) (repository.TrackRepository, func(), error) {
	switch cfg.CatalogDriver {
	case config.CatalogMySQL:
		if err := db.ConnectDB(cfg); err != nil {
			return nil, nil, err
		}
		if err := db.ConnectGormDB(cfg); err != nil {
			db.CloseDB()
			return nil, nil, err
		}
		if err := db.AutoMigrateModels(&model.Track{}); err != nil {
			db.CloseGormDB()
			db.CloseDB()
			return nil, nil, err
		}
		cleanup := func() {
			db.CloseGormDB()
			db.CloseDB()
		}
		return repository.NewMySQLTrackRepository(), cleanup, nil
	default:
		return repository.NewMemoryTrackRepository(), func() {}, nil
	}
}
