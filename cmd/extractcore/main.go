// CLAUDE:SUMMARY Entry point for the extractcore HTTP service — chi router, signal-aware shutdown, registry wiring.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/extractcore/extractcore/audiopipe"
	"github.com/extractcore/extractcore/coretype"
	"github.com/extractcore/extractcore/docengine"
	"github.com/extractcore/extractcore/engineconfig"
	"github.com/extractcore/extractcore/registry"
	"github.com/extractcore/extractcore/router"
	"github.com/extractcore/extractcore/urlengine"
	"github.com/extractcore/extractcore/videopipe"
	"github.com/extractcore/extractcore/ytpipe"
)

func main() {
	port := env("PORT", "8085")
	logLevel := env("LOG_LEVEL", "info")

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: engineconfig.LevelFromString(logLevel)}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := engineconfig.Load(logger)

	reg := buildRegistry(cfg, logger)
	reg.Seal()
	extractRouter := router.New(reg, logger)

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "engines": reg.AvailableEngines()})
	})
	r.Post("/extract", func(w http.ResponseWriter, r *http.Request) {
		handleExtract(w, r, extractRouter, logger)
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      time.Duration(cfg.TimeoutSeconds+30) * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("server stopped")
}

// buildRegistry registers every engine this process knows about. A
// processor whose external dependency (ffmpeg, a browser binary, an API
// key) is missing simply reports IsAvailable()=false; it stays registered
// (name and MIME lookups still return it), while /health and the router's
// available-engine set list only engines that report available, matching the registry's
// "dynamic registration → declarative capability records" design.
func buildRegistry(cfg engineconfig.ExtractionConfig, logger *slog.Logger) *registry.Registry {
	reg := registry.New()

	docPipe := docengine.New(docengine.Config{Logger: logger})
	for _, p := range docengine.NewFormatProcessors(docPipe) {
		must(reg.Register(p))
	}
	must(reg.Register(docengine.NewPdfLlmMarkdown(docPipe)))
	must(reg.Register(docengine.NewPdfVlmLocal(docPipe)))
	must(reg.Register(docengine.NewPdfVlmRemote(docPipe)))
	must(reg.Register(docengine.NewRichDocumentPipeline()))

	must(reg.Register(urlengine.NewHtmlUrlBasic()))
	must(reg.Register(urlengine.NewHtmlUrlHeadless()))
	must(reg.Register(urlengine.NewHtmlUrlFirecrawl()))
	must(reg.Register(urlengine.NewHtmlUrlJina()))

	must(reg.Register(ytpipe.NewYouTubeTranscript(cfg.YouTubeLanguages)))

	audio := audiopipe.NewAudioTranscribe(cfg.Audio)
	must(reg.Register(audio))
	must(reg.Register(videopipe.NewVideoDemux(audio)))

	return reg
}

func must(err error) {
	if err != nil {
		slog.Error("registering processor", "error", err)
		os.Exit(1)
	}
}

type extractRequest struct {
	URL        string         `json:"url"`
	FilePath   string         `json:"file_path"`
	Content    string         `json:"content"`
	Engine     []string       `json:"engine"`
	MimeType   string         `json:"mime_type"`
	TimeoutSec int            `json:"timeout_seconds"`
	Options    map[string]any `json:"options"`
}

func handleExtract(w http.ResponseWriter, r *http.Request, extractRouter *router.ExtractionRouter, logger *slog.Logger) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	source, err := newSource(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	source.Engine = req.Engine
	if req.MimeType != "" {
		source.DeclaredMimeType = coretype.MimeType(req.MimeType)
	}

	cfg := engineconfig.Load(logger)
	if req.TimeoutSec > 0 {
		cfg.TimeoutSeconds = req.TimeoutSec
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	mime, category := detect(source)
	result, err := extractRouter.Extract(ctx, source, mime, category, cfg)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func newSource(req extractRequest) (*coretype.Source, error) {
	switch {
	case req.URL != "":
		return coretype.NewSourceFromURL(req.URL)
	case req.FilePath != "":
		return coretype.NewSourceFromFile(req.FilePath)
	default:
		return coretype.NewSourceFromContent(req.Content)
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
