// Package server exposes the ledger over HTTP: appending actions, scanning
// stored or uploaded chains, and exporting self-verifying artifacts. The
// transport maps classified input errors to 4xx responses; integrity
// anomalies are never errors here, they ride back as findings in a 200.
package server

import (
	"crypto/ed25519"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	coreerrors "github.com/attestlog/attestlog/core/errors"
	"github.com/attestlog/attestlog/core/store"
)

type Options struct {
	Store      *store.Store
	SigningKey ed25519.PrivateKey
	SignerID   string
	Logger     *log.Logger
	Now        func() time.Time
}

type Server struct {
	store      *store.Store
	signingKey ed25519.PrivateKey
	signerID   string
	logger     *log.Logger
	now        func() time.Time
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		store:      opts.Store,
		signingKey: opts.SigningKey,
		signerID:   opts.SignerID,
		logger:     logger,
		now:        now,
	}
}

func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(s.requestLogger)

	router.Get("/healthz", s.handleHealth)
	router.Route("/v1", func(router chi.Router) {
		router.Post("/scan", s.handleScanUpload)
		router.Route("/chains/{chainID}", func(router chi.Router) {
			router.Get("/", s.handleListEntries)
			router.Post("/entries", s.handleAppend)
			router.Post("/scan", s.handleScanChain)
			router.Get("/export", s.handleExport)
		})
	})
	return router
}

// nowEpoch returns the clock reading as epoch seconds, the timestamp unit
// entries carry.
func (s *Server) nowEpoch() float64 {
	return float64(s.now().UnixNano()) / 1e9
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		started := s.now()
		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}
		next.ServeHTTP(recorder, request)
		line, err := json.Marshal(map[string]any{
			"time":        started.UTC().Format(time.RFC3339Nano),
			"method":      request.Method,
			"path":        request.URL.Path,
			"status":      recorder.status,
			"duration_ms": float64(s.now().Sub(started).Microseconds()) / 1000,
		})
		if err != nil {
			return
		}
		s.logger.Println(string(line))
	})
}

type errorEnvelope struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code,omitempty"`
	Hint      string `json:"hint,omitempty"`
}

func (s *Server) writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}

func (s *Server) writeError(writer http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch coreerrors.CategoryOf(err) {
	case coreerrors.CategoryInvalidInput:
		status = http.StatusBadRequest
	case coreerrors.CategoryDependencyMissing:
		status = http.StatusNotImplemented
	case coreerrors.CategoryIOFailure, coreerrors.CategoryInternalFailure:
		status = http.StatusInternalServerError
	}
	s.writeJSON(writer, status, errorEnvelope{
		Error:     err.Error(),
		ErrorCode: coreerrors.CodeOf(err),
		Hint:      coreerrors.HintOf(err),
	})
}
