package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/saulo-duarte/exam-prep-lambda/internal/auth"
	"github.com/saulo-duarte/exam-prep-lambda/internal/config"
	"github.com/saulo-duarte/exam-prep-lambda/internal/container"
	"github.com/saulo-duarte/exam-prep-lambda/internal/database"
	"github.com/saulo-duarte/exam-prep-lambda/internal/router"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		auth.Init()

		settings, err := config.LoadSettings()
		if err != nil {
			return err
		}
		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
			if err := database.AutoMigrate(db); err != nil {
				return err
			}
		}

		c := container.Build(db, settings)
		addr, _ := cmd.Flags().GetString("addr")
		srv := &http.Server{
			Addr:              addr,
			Handler:           router.New(c.RouterConfig()),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			config.Logger.WithField("addr", addr).Info("HTTP server listening")
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		config.Logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().Bool("migrate", false, "Migrate the schema before serving")
}
