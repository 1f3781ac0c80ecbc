/**
 * HTTP handlers for the OCR service
 *
 * Exposes the recognition pipeline as POST /predict/ocr_system plus two
 * health endpoints. Request parameters arrive either as query parameters
 * or multipart form fields; query parameters win.
 */

package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/textlens/ocr-service/internal/errors"
	"github.com/textlens/ocr-service/internal/logging"
	"github.com/textlens/ocr-service/internal/pipeline"
)

// Uploads beyond this are rejected before decoding
const maxUploadBytes = 32 << 20

// ocrResponse mirrors the engine-style response shape clients expect:
// results always holds exactly one page of line records, possibly empty.
type ocrResponse struct {
	Msg     string                  `json:"msg"`
	Results [][]pipeline.LineRecord `json:"results"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// OCRHandler serves recognition requests
type OCRHandler struct {
	pipeline *pipeline.Pipeline
	log      *logging.Logger
}

// NewOCRHandler creates the handler
func NewOCRHandler(p *pipeline.Pipeline, log *logging.Logger) *OCRHandler {
	return &OCRHandler{pipeline: p, log: log}
}

// Root reports service liveness
func (h *OCRHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "OCR service is running",
	})
}

// Health reports service health
func (h *OCRHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Predict accepts one image under the multipart "images" field and returns
// recognized line records.
func (h *OCRHandler) Predict(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid multipart form: " + err.Error()})
		return
	}

	file, header, err := r.FormFile("images")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "missing image upload field \"images\""})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "failed to read upload: " + err.Error()})
		return
	}

	h.log.Info("received image", "request_id", requestID, "filename", header.Filename, "bytes", len(imageData))

	opts := pipeline.Options{
		ModeHint:    param(r, "mode"),
		PageSegMode: parseMode(param(r, "psm")),
		Whitelist:   param(r, "char_whitelist"),
		Blacklist:   param(r, "char_blacklist"),
	}

	records, err := h.pipeline.Run(r.Context(), imageData, opts, requestID)
	if err != nil {
		status := errors.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			h.log.Error("request failed", "request_id", requestID, "filename", header.Filename, "error", err)
			writeJSON(w, status, errorResponse{Detail: "OCR processing failed: " + err.Error()})
			return
		}
		writeJSON(w, status, errorResponse{Detail: err.Error()})
		return
	}

	if records == nil {
		records = []pipeline.LineRecord{}
	}

	writeJSON(w, http.StatusOK, ocrResponse{
		Msg:     "Success",
		Results: [][]pipeline.LineRecord{records},
	})
}

// param reads a request parameter, query string taking precedence over
// form fields.
func param(r *http.Request, name string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return r.PostFormValue(name)
}

// parseMode parses an explicit page segmentation mode; -1 means unset.
// Mode 0 is orientation detection only and recognizes no text, so it is
// rejected along with malformed and negative values.
func parseMode(raw string) int {
	if raw == "" {
		return -1
	}
	mode, err := strconv.Atoi(raw)
	if err != nil || mode < 1 {
		return -1
	}
	return mode
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
