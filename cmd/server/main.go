package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/sync/errgroup"

	"github.com/inamate/slides/internal/applog"
	"github.com/inamate/slides/internal/asset"
	"github.com/inamate/slides/internal/auth"
	"github.com/inamate/slides/internal/collab"
	"github.com/inamate/slides/internal/config"
	"github.com/inamate/slides/internal/deck"
	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/export"
	mw "github.com/inamate/slides/internal/middleware"
	"github.com/inamate/slides/internal/persist"
	"github.com/inamate/slides/internal/presets"
)

const playgroundDeckID = "deck_playground"

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	closer := applog.Init(applog.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	playground := persist.NewFileStore(cfg.PlaygroundPath)

	authService := auth.NewService(repo, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService, applog.WithComponent("auth"))

	assetHandler := asset.NewHandler(cfg.AssetDir, applog.WithComponent("asset"))
	exportHandler := export.NewHandler(assetHandler, applog.WithComponent("export"))

	deckService := deck.NewService(repo, presets.Default())
	deckHandler := deck.NewHandler(deckService, exportHandler, applog.WithComponent("deck"))

	load := func(ctx context.Context, deckID string) (document.Document, error) {
		if deckID == playgroundDeckID {
			return playground.Load()
		}
		return persist.LoadDocument(ctx, repo, deckID)
	}
	newSaver := func(deckID string) persist.Saver {
		if deckID == playgroundDeckID {
			return playground
		}
		return persist.NewDeckSaver(repo, deckID)
	}
	hub := collab.NewHub(load, newSaver, applog.WithComponent("collab"))

	r := mux.NewRouter()

	r.Use(mw.Recovery(slog.Default()))
	r.Use(mw.Logger(applog.WithComponent("http")))
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.HandleFunc("/editor/settings", editorSettings(cfg)).Methods("GET")

	// Assets and ad-hoc export are public so the playground can use them.
	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")
	r.HandleFunc("/export/pdf", exportHandler.ExportPDF).Methods("POST", "OPTIONS")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/assets/{assetId}", assetHandler.Remove).Methods("DELETE")
	api.HandleFunc("/decks", deckHandler.List).Methods("GET")
	api.HandleFunc("/decks", deckHandler.Create).Methods("POST")
	api.HandleFunc("/decks/{deckId}", deckHandler.Get).Methods("GET")
	api.HandleFunc("/decks/{deckId}", deckHandler.Delete).Methods("DELETE")
	api.HandleFunc("/decks/{deckId}/invite", deckHandler.Invite).Methods("POST")
	api.HandleFunc("/decks/{deckId}/members", deckHandler.ListMembers).Methods("GET")
	api.HandleFunc("/decks/{deckId}/members/{userId}", deckHandler.RemoveMember).Methods("DELETE")
	api.HandleFunc("/decks/{deckId}/snapshots/latest", deckHandler.GetLatestSnapshot).Methods("GET")
	api.HandleFunc("/decks/{deckId}/snapshots", deckHandler.PutSnapshot).Methods("PUT")
	api.HandleFunc("/decks/{deckId}/export.pdf", deckHandler.ExportPDF).Methods("GET")

	ws := &wsHandler{
		hub:     hub,
		auth:    authService,
		members: deckService,
		origins: cfg.Origins(),
		logger:  applog.WithComponent("ws"),
	}
	r.Handle("/ws/deck/{deckId}", ws)

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openRepository(ctx context.Context, cfg *config.Config) (persist.Repository, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		repo, err := persist.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return repo, nil
	default:
		repo, err := persist.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return repo, nil
	}
}

type settings struct {
	GridSize        float64 `json:"gridSize"`
	SnapToGrid      bool    `json:"snapToGrid"`
	GestureThrottle int64   `json:"gestureThrottleMs"`
	RotationSnap    float64 `json:"rotationSnap"`
	SlideWidth      float64 `json:"slideWidth"`
	SlideHeight     float64 `json:"slideHeight"`
}

// editorSettings exposes the engine defaults so the browser engine is
// configured the same way as the server.
func editorSettings(cfg *config.Config) http.HandlerFunc {
	s := settings{
		GridSize:        cfg.GridSize,
		SnapToGrid:      cfg.SnapToGrid,
		GestureThrottle: cfg.GestureThrottle.Milliseconds(),
		RotationSnap:    cfg.RotationSnap,
		SlideWidth:      document.SlideWidth,
		SlideHeight:     document.SlideHeight,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s)
	}
}
