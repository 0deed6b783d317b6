package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"squarefit/internal/handler"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /square over HTTP",
		Long: `Start an HTTP server exposing:

  GET  /health
  POST /square?target=N   body: a jpeg or png, response: the squared image
  GET  /runs              recent batch runs (needs a journal)
  GET  /runs/{id}         one run with per-file outcomes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.ServerAddr = addr
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from SERVER_ADDR or :8080)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	j, err := a.openJournal()
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
	}

	h := handler.New(j, a.cfg)
	defer h.Close()

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              a.cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		log.Printf("Shutting down server")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(sctx)
	}()

	log.Printf("Starting squarefit server on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-shutdownErr; err != nil {
		return err
	}
	log.Printf("Server stopped")
	return nil
}
