package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"turva/internal/service"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// Worker runs the asynq handlers that deliver queued email.
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	mailer service.Mailer
	email  service.VerificationEmail
	log    logrus.FieldLogger
}

// NewWorker creates an asynq server and registers handlers. Call Run to start.
func NewWorker(redisOpt asynq.RedisClientOpt, concurrency int, mailer service.Mailer, email service.VerificationEmail, log logrus.FieldLogger) *Worker {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		LogLevel:    asynq.InfoLevel,
	})
	w := newHandlers(mailer, email, log)
	w.srv = srv
	return w
}

func newHandlers(mailer service.Mailer, email service.VerificationEmail, log logrus.FieldLogger) *Worker {
	w := &Worker{mux: asynq.NewServeMux(), mailer: mailer, email: email, log: log}
	w.mux.HandleFunc(TypeSendEmailVerification, w.handleSendEmailVerification)
	return w
}

func (w *Worker) handleSendEmailVerification(ctx context.Context, t *asynq.Task) error {
	var p verificationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		w.log.WithError(err).Error("email verification task payload invalid")
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.Email == "" || p.LinkURL == "" {
		w.log.WithField("user_id", p.UserID).Error("email verification task missing recipient or link")
		return fmt.Errorf("incomplete payload: %w", asynq.SkipRetry)
	}

	subject, body := w.email.Compose(p.FirstName, p.LinkURL)
	if err := w.mailer.Send(ctx, p.Email, subject, body); err != nil {
		w.log.WithError(err).WithField("user_id", p.UserID).Warn("verification email failed; asynq will retry")
		return err
	}
	w.log.WithField("user_id", p.UserID).Info("verification email sent")
	return nil
}

// Run blocks until shutdown. Use Shutdown for graceful stop.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

// Shutdown stops the worker.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
