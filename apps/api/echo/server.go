package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/minicrm/core"
	"github.com/trezcool/minicrm/core/dashboard"
	"github.com/trezcool/minicrm/core/feedback"
	"github.com/trezcool/minicrm/core/order"
	"github.com/trezcool/minicrm/core/product"
	"github.com/trezcool/minicrm/core/student"
	"github.com/trezcool/minicrm/core/user"
	"github.com/trezcool/minicrm/storage/session"
	"github.com/trezcool/minicrm/storage/uploads"
)

type (
	Deps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		Sessions   *session.Manager
		Uploads    *uploads.Store
		// Renderer renders the HTML views; pages are answered as JSON when nil.
		Renderer echo.Renderer

		UserSvc      *user.Service
		StudentSvc   *student.Service
		ProductSvc   *product.Service
		OrderSvc     *order.Service
		FeedbackSvc  *feedback.Service
		DashboardSvc *dashboard.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     *Deps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps *Deps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(sessionMiddleware(s.deps.Sessions, conf.Session.CookieName, !(conf.Debug || conf.TestMode), s.deps.Logger))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.Renderer = s.deps.Renderer

	if s.deps.Uploads != nil {
		s.app.Static("/"+conf.Uploads.URLPrefix, s.deps.Uploads.Dir())
	}

	s.app.GET("/", home)
	authed := requireRole(user.RoleUser)
	admin := requireRole(user.RoleAdmin)

	registerAuthRoutes(s.app, s.deps)
	registerDashboardRoutes(s.app, authed, s.deps)
	registerStudentRoutes(s.app, authed, s.deps)
	registerProductRoutes(s.app, authed, admin, s.deps)
	registerCartRoutes(s.app, authed, s.deps)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Stop(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Errors() <-chan error { return s.errors }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	if getSession(ctx).Principal != nil {
		return redirect(ctx, "/dashboard")
	}
	return redirect(ctx, "/login")
}
