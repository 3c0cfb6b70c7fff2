package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vanorg/vanorg/job"
	"github.com/vanorg/vanorg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the upload service",
	Long: `Serve the upload form, process uploaded route sheets in the
background, and hand out the built artifacts. The listen port comes
from --port or PORT; job state lives under --state-dir or
VANORG_STATE_DIR.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8000, "listen port")
	serveCmd.Flags().String("state-dir", "/tmp/vanorg_jobs", "job state directory")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("state_dir", serveCmd.Flags().Lookup("state-dir"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := job.NewStore(viper.GetString("state_dir"), nil)
	if err != nil {
		return err
	}

	worker, err := job.NewWorker(store, job.Config{Logger: logger})
	if err != nil {
		return err
	}
	worker.Run()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", viper.GetInt("port")),
		Handler:           server.New(store, worker, server.Config{Logger: logger}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("listening", "addr", srv.Addr, "state_dir", store.Root())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		worker.Stop(false)
		return err
	case <-ctx.Done():
	}

	logger.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("forced shutdown", "error", err)
	}

	// Unprocessed jobs go back to the disk queue for the next start.
	worker.Stop(false)

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
