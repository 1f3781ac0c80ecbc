package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/textlens/ocr-service/internal/logging"
	"github.com/textlens/ocr-service/internal/pipeline"
)

// NewRouter wires the recognition pipeline into the HTTP surface
func NewRouter(p *pipeline.Pipeline, log *logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS([]string{"*"}))

	h := NewOCRHandler(p, log)
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Post("/predict/ocr_system", h.Predict)

	return r
}
