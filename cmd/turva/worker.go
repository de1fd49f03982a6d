package main

import (
	"turva/internal/queue"
	"turva/internal/service"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func NewWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Deliver queued verification emails",
		RunE:  runWorker,
	}
}

func runWorker(_ *cobra.Command, _ []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	if !cfg.Queue.Enabled() {
		return oops.Code("CONFIG_INVALID").Errorf("worker requires REDIS_ADDR")
	}

	mailer, err := newMailer(cfg.Mail, log)
	if err != nil {
		return oops.Code("MAILER_INVALID").Wrap(err)
	}

	worker := queue.NewWorker(redisOpt(cfg.Queue), cfg.Queue.Concurrency, mailer, service.NewVerificationEmail(cfg.App.FrontendBaseURL), log)
	log.WithField("redis", cfg.Queue.RedisAddr).Info("worker started")
	// Run blocks until SIGINT or SIGTERM and shuts the server down itself.
	if err := worker.Run(); err != nil {
		return oops.Code("WORKER_FAILED").Wrap(err)
	}
	return nil
}
