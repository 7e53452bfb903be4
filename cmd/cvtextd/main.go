// Command cvtextd runs the résumé text-extraction engine as an internal
// service: raw PDF bytes in, best-effort plain text plus diagnostics out.
//
// Transports:
//   - HTTP (default): POST /api/extract with the PDF as the request body.
//   - MCP over stdio: set MCP_TRANSPORT=stdio.
//
// Configuration comes from CVTEXT_CONFIG (YAML, optional) with env
// overrides for the deployment-specific bits.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/cvtext/cvextract"
	"github.com/hazyhaar/cvtext/dbopen"
	"github.com/hazyhaar/cvtext/journal"
	"github.com/hazyhaar/cvtext/kit"

	_ "modernc.org/sqlite"
)

func main() {
	port := env("PORT", "8086")
	logLevel := env("LOG_LEVEL", "info")
	journalPath := env("JOURNAL_DB", "db/journal.db")
	mcpTransport := env("MCP_TRANSPORT", "")

	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Engine config: YAML file if provided, env overrides for OCR.
	var cfg cvextract.Config
	if path := os.Getenv("CVTEXT_CONFIG"); path != "" {
		var err error
		cfg, err = cvextract.LoadConfig(path)
		if err != nil {
			slog.Error("load config", "error", err)
			os.Exit(1)
		}
	}
	if k := os.Getenv("OCR_API_KEY"); k != "" {
		cfg.OCR.APIKey = k
	}
	if ep := os.Getenv("OCR_ENDPOINT"); ep != "" {
		cfg.OCR.Endpoint = ep
	}
	cfg.Logger = logger

	// Extraction journal.
	journalDB, err := dbopen.Open(journalPath, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("journal db", "error", err)
		os.Exit(1)
	}
	defer journalDB.Close()
	store := journal.NewStore(journalDB)
	if err := store.Init(); err != nil {
		slog.Error("journal init", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	eng := cvextract.New(cfg, cvextract.WithJournal(store))

	if mcpTransport == "stdio" {
		srv := mcp.NewServer(&mcp.Implementation{
			Name:    "cvtext",
			Version: "1.0.0",
		}, nil)
		eng.RegisterMCP(srv)
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("mcp server", "error", err)
			os.Exit(1)
		}
		return
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/extract", extractHandler(eng, 20*1024*1024))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("cvtextd listening", "port", port, "journal", journalPath, "ocr", cfg.OCR.APIKey != "")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server", "error", err)
		os.Exit(1)
	}
}

// extractHandler accepts raw PDF bytes as the request body and responds
// with the extraction result, or 422 plus diagnostics when no strategy
// produced readable text.
func extractHandler(eng *cvextract.Engine, maxBody int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if len(doc) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty request body"})
			return
		}
		if int64(len(doc)) > maxBody {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "document too large"})
			return
		}

		ctx := kit.WithRequestID(kit.WithTransport(r.Context(), "http"), middleware.GetReqID(r.Context()))
		res, err := eng.Extract(ctx, doc)
		if err != nil {
			var noText *cvextract.NoTextError
			if errors.As(err, &noText) {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
					"error":       "no readable text",
					"diagnostics": noText.Diagnostics,
				})
				return
			}
			if errors.Is(err, cvextract.ErrDocumentTooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, err)
				return
			}
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
