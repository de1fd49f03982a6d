package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"turva/internal/service"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}

	st, err := openStores(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.WithError(err).Warn("close database")
		}
	}()

	mailer, err := newMailer(cfg.Mail, log)
	if err != nil {
		return oops.Code("MAILER_INVALID").Wrap(err)
	}
	dispatcher, closeDispatcher := newDispatcher(cfg, mailer, log)
	defer closeDispatcher()

	hasher := service.NewArgon2idHasher(service.DefaultArgon2Params())
	svc := newServices(cfg, st, dispatcher, hasher, service.RealClock{}, log)
	server := newHTTPServer(cfg.App.HTTPAddr, newEcho(cfg, svc, log))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.App.HTTPAddr).Info("server started")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return oops.Code("SERVER_FAILED").Wrap(err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}
