package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"squarefit/internal/journal"
)

type runResponse struct {
	ID          int64          `json:"id"`
	InputFolder string         `json:"input_folder"`
	OutputDir   string         `json:"output_dir"`
	Target      int            `json:"target"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  *time.Time     `json:"finished_at,omitempty"`
	Processed   int            `json:"processed"`
	Failed      int            `json:"failed"`
	Files       []fileResponse `json:"files,omitempty"`
}

type fileResponse struct {
	Source string `json:"source"`
	Output string `json:"output,omitempty"`
	Status string `json:"status"`
	Stage  string `json:"stage,omitempty"`
	Error  string `json:"error,omitempty"`
}

func toRunResponse(run journal.Run) runResponse {
	resp := runResponse{
		ID:          run.ID,
		InputFolder: run.InputFolder,
		OutputDir:   run.OutputDir,
		Target:      run.Target,
		StartedAt:   run.StartedAt,
		Processed:   run.Processed,
		Failed:      run.Failed,
	}
	if !run.FinishedAt.IsZero() {
		f := run.FinishedAt
		resp.FinishedAt = &f
	}
	return resp
}

// ListRuns returns the most recent batch runs, newest first. ?limit=
// defaults to 20.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		http.Error(w, "journal disabled", http.StatusNotFound)
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.journal.RecentRuns(r.Context(), limit)
	if err != nil {
		http.Error(w, "failed to load runs", http.StatusInternalServerError)
		return
	}
	out := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, toRunResponse(run))
	}
	writeJSON(w, out)
}

// ViewRun returns one run with its per-file outcomes.
func (h *Handler) ViewRun(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		http.Error(w, "journal disabled", http.StatusNotFound)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid run id", http.StatusBadRequest)
		return
	}

	run, err := h.journal.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, journal.ErrRunNotFound) {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load run", http.StatusInternalServerError)
		return
	}
	files, err := h.journal.RunFiles(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load run files", http.StatusInternalServerError)
		return
	}

	resp := toRunResponse(run)
	for _, f := range files {
		resp.Files = append(resp.Files, fileResponse{
			Source: f.Source,
			Output: f.Output,
			Status: f.Status,
			Stage:  f.Stage,
			Error:  f.ErrorMessage,
		})
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
