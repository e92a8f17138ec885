package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"influencer-maker/internal/gemini"
	"influencer-maker/internal/influencer"
)

//go:embed static/*
var staticFS embed.FS

const maxBodyBytes = 64 << 10

// Generator is satisfied by *generation.Service.
type Generator interface {
	Generate(sel influencer.Selection) (influencer.GenerationResult, error)
	GenerateWithFallback(ctx context.Context, sel influencer.Selection) (influencer.GenerationResult, error)
}

type Options struct {
	Generator      Generator
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

type Server struct {
	gen            Generator
	logger         *slog.Logger
	requestTimeout time.Duration
}

type apiError struct {
	Error string `json:"error"`
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}

	return &Server{
		gen:            opts.Generator,
		logger:         logger,
		requestTimeout: timeout,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		AccessLog(s.logger),
	)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/options", s.handleOptions)
		r.Post("/prompts", s.handlePrompts)
		r.Post("/generate", s.handleGenerate)
		r.Post("/generate/gemini", s.handleGenerateGemini)
	})

	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/*", http.FileServer(http.FS(staticSub)))

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, influencer.Catalog())
}

func (s *Server) handlePrompts(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.decodeSelection(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, influencer.BuildPrompts(sel))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.decodeSelection(w, r)
	if !ok {
		return
	}

	res, err := s.gen.Generate(sel)
	if err != nil {
		s.logger.Error("generate failed", "err", err, "request_id", RequestIDFromContext(r.Context()))
		writeJSON(w, http.StatusInternalServerError, apiError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGenerateGemini(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.decodeSelection(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	res, err := s.gen.GenerateWithFallback(ctx, sel)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, gemini.ErrMissingAPIKey) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, apiError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// decodeSelection starts from the default selection so omitted fields keep
// their defaults, then normalizes and validates the result.
func (s *Server) decodeSelection(w http.ResponseWriter, r *http.Request) (influencer.Selection, bool) {
	sel := influencer.DefaultSelection()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid json body"})
		return influencer.Selection{}, false
	}

	sel = influencer.Normalize(sel)
	if err := influencer.Validate(sel); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return influencer.Selection{}, false
	}
	return sel, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
