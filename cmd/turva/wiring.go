package main

import (
	"net/http"
	"time"

	"turva/api/handler"
	apiMiddleware "turva/api/middleware"
	"turva/api/routes"
	"turva/config"
	"turva/internal/queue"
	"turva/internal/repository"
	"turva/internal/repository/memstore"
	"turva/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type stores struct {
	users        repository.UserRepository
	sessions     repository.SessionRepository
	securityLogs repository.SecurityLogRepository
	db           *gorm.DB
}

func openStores(cfg config.Config, log *logrus.Logger) (*stores, error) {
	if cfg.App.StoreDriver == config.StoreDriverMemory {
		log.Warn("using in-memory store; data is lost on exit")
		mem := memstore.New()
		return &stores{users: mem.Users(), sessions: mem.Sessions(), securityLogs: mem.SecurityLogs()}, nil
	}

	db, err := config.ConnectionDB(cfg.DB, log, cfg.App.Debug)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	return &stores{
		users:        repository.NewUserRepository(db),
		sessions:     repository.NewSessionRepository(db),
		securityLogs: repository.NewSecurityLogRepository(db),
		db:           db,
	}, nil
}

func (s *stores) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newMailer(cfg config.Mail, log logrus.FieldLogger) (service.Mailer, error) {
	switch cfg.Driver {
	case config.MailDriverSMTP:
		return service.NewSMTPMailer(service.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPass,
			UseTLS:   cfg.SMTPUseTLS,
			From:     cfg.From(),
		})
	case config.MailDriverResend:
		return service.NewResendMailer(cfg.ResendKey, cfg.From())
	default:
		return service.LogMailer{Log: log}, nil
	}
}

func redisOpt(cfg config.Queue) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
}

// dispatcher picks the queue when Redis is configured and in-process delivery
// otherwise. The returned func drains or closes it.
func newDispatcher(cfg config.Config, mailer service.Mailer, log *logrus.Logger) (service.VerificationDispatcher, func()) {
	email := service.NewVerificationEmail(cfg.App.FrontendBaseURL)
	if cfg.Queue.Enabled() {
		enqueuer := queue.NewAsynqEnqueuer(redisOpt(cfg.Queue), email, log)
		return enqueuer, func() {
			if err := enqueuer.Close(); err != nil {
				log.WithError(err).Warn("close asynq client")
			}
		}
	}
	async := service.NewAsyncDispatcher(mailer, email, log)
	return async, async.Close
}

type services struct {
	auth     *service.AuthService
	gate     *service.AuthenticationGate
	sessions *service.SessionManager
}

func newServices(cfg config.Config, st *stores, dispatcher service.VerificationDispatcher, hasher service.PasswordHasher, clock service.Clock, log *logrus.Logger) *services {
	sessions := service.NewSessionManager(st.sessions, clock, service.AuthConfig{
		SessionLifetime: cfg.App.SessionLifetime(),
	})
	verifications := service.NewVerificationTokenManager(st.users, clock)
	return &services{
		auth:     service.NewAuthService(st.users, sessions, verifications, st.securityLogs, dispatcher, hasher, log),
		gate:     service.NewAuthenticationGate(sessions, st.securityLogs, log),
		sessions: sessions,
	}
}

func newEcho(cfg config.Config, svc *services, log *logrus.Logger) *echo.Echo {
	authHandler := handler.NewAuthHandler(svc.auth, validator.New(), cfg.App.SessionCookieName, log)
	authHandler.CookieDomain = cfg.App.CookieDomain
	authHandler.SecureCookies = cfg.App.CookieSecure

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Debug = cfg.App.Debug
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"status":  v.Status,
				"method":  v.Method,
				"uri":     v.URI,
				"ip":      v.RemoteIP,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	sessionMiddleware := apiMiddleware.SessionMiddleware{
		Gate:       svc.gate,
		CookieName: cfg.App.SessionCookieName,
		Log:        log,
	}
	router := routes.NewRouter(app, authHandler, sessionMiddleware, cfg.App.APIPath, cfg.App.CORSOrigins)
	router.RegisterRoutes()
	return app
}

func newHTTPServer(addr string, app *echo.Echo) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           app,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
