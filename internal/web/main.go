// Package web implements the HTTP service exposing the JSON API.
package web

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/importdesk/importdesk/internal/auth"
	"github.com/importdesk/importdesk/internal/config"
	"github.com/importdesk/importdesk/internal/rules"
	"github.com/importdesk/importdesk/internal/web/handler"
	accesshandler "github.com/importdesk/importdesk/internal/web/handler/api/access"
	dealhandler "github.com/importdesk/importdesk/internal/web/handler/api/deal"
	leadhandler "github.com/importdesk/importdesk/internal/web/handler/api/lead"
	organisationhandler "github.com/importdesk/importdesk/internal/web/handler/api/organisation"
	rulehandler "github.com/importdesk/importdesk/internal/web/handler/api/rule"
	authmw "github.com/importdesk/importdesk/internal/web/middleware/auth"
)

// Service represents the web service.
type Service struct {
	App   *fiber.App
	cfg   *config.Config
	alive atomic.Bool
	db    *gorm.DB
}

// Start starts the web service on the configured port.
func (s *Service) Start() error {
	s.alive.Store(true)

	addr := fmt.Sprintf(":%d", s.cfg.Webserver.Port)

	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for a termination signal, drains load balancer
// traffic and stops the http server.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so
	// checkalive returns fail and the LB removes this instance.
	log.Info().Msgf(
		"graceful shutdown: return 503 for %d seconds to let LB remove this instance from active targets",
		s.cfg.Webserver.ShutDownTime,
	)

	s.alive.Store(false)
	time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		if err := s.App.Shutdown(); err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB, engine *rules.Engine) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "ImportDesk",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	svc := &Service{
		App: app,
		cfg: cfg,
		db:  db,
	}

	app.Get("/checkalive", func(c *fiber.Ctx) error {
		if !svc.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authService := auth.NewService(db)

	// every API route runs behind the principal middleware
	app.Use(handler.APIPath, authmw.Principal(db))

	rulehandler.Handler.Init(app, cfg, db, authService)
	accesshandler.Handler.Init(app, cfg, db, authService)
	organisationhandler.Handler.Init(app, cfg, db, authService)
	leadhandler.Handler.Init(app, cfg, db, authService)
	dealhandler.Handler.Init(app, cfg, db, authService, engine)

	return svc
}
