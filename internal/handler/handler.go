package handler

import (
	"image/color"
	"log"
	"time"

	"squarefit/internal/config"
	"squarefit/internal/journal"
	"squarefit/internal/middleware"
	"squarefit/internal/pipeline"
)

type Handler struct {
	journal    *journal.Journal
	config     *config.Config
	background color.Color
	limiter    *middleware.RateLimiter
}

// New builds the HTTP handler. j may be nil, in which case health does not
// check a database and the run history endpoints return 404.
func New(j *journal.Journal, cfg *config.Config) *Handler {
	if cfg == nil {
		cfg = config.Load()
	}
	var bg color.Color = pipeline.DefaultBackground
	if c, err := cfg.BackgroundColor(); err == nil {
		bg = c
	} else {
		log.Printf("invalid background %q, using white: %v", cfg.Background, err)
	}

	h := &Handler{
		journal:    j,
		config:     cfg,
		background: bg,
	}
	if cfg.RateLimit > 0 {
		h.limiter = middleware.NewRateLimiter(cfg.RateLimit, 5*time.Minute)
	}
	return h
}

// Close stops background work started by New.
func (h *Handler) Close() {
	if h.limiter != nil {
		h.limiter.Stop()
	}
}
