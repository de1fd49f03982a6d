package queue

import (
	"context"
	"encoding/json"

	"turva/internal/entity"
	"turva/internal/service"

	"github.com/hibiken/asynq"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
)

const (
	TypeSendEmailVerification = "email:verification"

	verificationMaxRetry = 5
)

// verificationPayload carries everything the worker needs to render the email,
// so the worker does not read the user table.
type verificationPayload struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LinkURL   string `json:"link_url"`
}

type taskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// TaskEnqueuer hands verification emails to the asynq queue.
type TaskEnqueuer struct {
	client taskClient
	email  service.VerificationEmail
	log    logrus.FieldLogger
}

func NewAsynqEnqueuer(redisOpt asynq.RedisClientOpt, email service.VerificationEmail, log logrus.FieldLogger) *TaskEnqueuer {
	return &TaskEnqueuer{client: asynq.NewClient(redisOpt), email: email, log: log}
}

func (q *TaskEnqueuer) Close() error {
	return q.client.Close()
}

func (q *TaskEnqueuer) DispatchVerification(ctx context.Context, user *entity.User, token string) error {
	payload, err := json.Marshal(verificationPayload{
		UserID:    user.ID.String(),
		Email:     user.Email,
		FirstName: user.FirstName,
		LinkURL:   q.email.Link(user.ID, token),
	})
	if err != nil {
		return oops.Code("VERIFICATION_PAYLOAD_FAILED").Wrap(err)
	}

	task := asynq.NewTask(TypeSendEmailVerification, payload, asynq.MaxRetry(verificationMaxRetry))
	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		q.log.WithError(err).WithField("user_id", user.ID).Warn("enqueue email verification failed")
		return oops.Code("VERIFICATION_ENQUEUE_FAILED").With("user_id", user.ID).Wrap(err)
	}
	q.log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"task_id": info.ID,
	}).Debug("email verification enqueued")
	return nil
}

var _ service.VerificationDispatcher = (*TaskEnqueuer)(nil)
