package service

import (
	"context"
	"sync"
	"time"

	"turva/internal/entity"

	"github.com/sirupsen/logrus"
)

const defaultDispatchTimeout = 30 * time.Second

// AsyncDispatcher sends verification emails on a background goroutine so the
// request that triggered them does not wait on the mail transport.
type AsyncDispatcher struct {
	mailer  Mailer
	email   VerificationEmail
	log     logrus.FieldLogger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsyncDispatcher(mailer Mailer, email VerificationEmail, log logrus.FieldLogger) *AsyncDispatcher {
	return &AsyncDispatcher{
		mailer:  mailer,
		email:   email,
		log:     log,
		timeout: defaultDispatchTimeout,
	}
}

func (d *AsyncDispatcher) DispatchVerification(ctx context.Context, user *entity.User, token string) error {
	subject, body := d.email.Compose(user.FirstName, d.email.Link(user.ID, token))
	to := user.Email
	userID := user.ID

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		if err := d.mailer.Send(sendCtx, to, subject, body); err != nil {
			d.log.WithError(err).WithField("user_id", userID).Error("verification email failed")
			return
		}
		d.log.WithField("user_id", userID).Info("verification email sent")
	}()
	return nil
}

// Close waits for in-flight deliveries.
func (d *AsyncDispatcher) Close() {
	d.wg.Wait()
}
