package handler

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"strconv"

	"squarefit/internal/config"
	"squarefit/internal/pipeline"
)

// SquareImage squares the request body. The target comes from ?target=,
// falling back to the configured default. The response has the same format
// as the upload.
func (h *Handler) SquareImage(w http.ResponseWriter, r *http.Request) {
	target := h.config.Target
	if raw := r.URL.Query().Get("target"); raw != "" {
		t, err := config.ParseTarget(raw)
		if err != nil {
			http.Error(w, "Invalid target resolution. Please enter a valid positive number.", http.StatusBadRequest)
			return
		}
		target = t
	}

	maxBytes := h.config.MaxBytes
	if maxBytes <= 0 {
		maxBytes = pipeline.DefaultMaxBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1)

	// buffer so a failure can still produce a clean error response
	var buf bytes.Buffer
	p, err := pipeline.Process(r.Body, &buf, "", pipeline.Options{
		Target:     target,
		Background: h.background,
		MaxBytes:   maxBytes,
	})
	if err != nil {
		writeProcessError(w, err)
		return
	}

	w.Header().Set("Content-Type", p.Source.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Squarefit-Target", strconv.Itoa(target))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func writeProcessError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	var se *pipeline.StageError
	switch {
	case errors.Is(err, pipeline.ErrTooLarge), errors.As(err, &maxErr):
		http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
	case errors.Is(err, pipeline.ErrNotAnImage):
		http.Error(w, "unsupported file type: only jpeg and png are accepted", http.StatusUnsupportedMediaType)
	case errors.Is(err, pipeline.ErrInvalidDimensions), errors.Is(err, pipeline.ErrContentExceedsCanvas):
		http.Error(w, "image dimensions out of range", http.StatusUnprocessableEntity)
	case errors.As(err, &se) && se.Stage == pipeline.StageDecode:
		log.Printf("decode failed: %v", err)
		http.Error(w, "failed to decode image", http.StatusBadRequest)
	default:
		log.Printf("square failed: %v", err)
		http.Error(w, "failed to square image", http.StatusInternalServerError)
	}
}
