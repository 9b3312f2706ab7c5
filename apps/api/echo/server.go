package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/assignment"
	"github.com/kistconnect/portal/core/engagement"
	"github.com/kistconnect/portal/core/file"
	"github.com/kistconnect/portal/core/note"
	"github.com/kistconnect/portal/core/sitesettings"
	"github.com/kistconnect/portal/core/user"
)

type ServerDeps struct {
	Conf           *core.Config
	Logger         core.Logger
	Translator     ut.Translator
	Registry       prometheus.Registerer
	DisableReqLogs bool

	UserSvc       *user.Service
	NoteSvc       *note.Service
	AssignmentSvc *assignment.Service
	EngagementSvc *engagement.Service
	FileSvc       *file.Service
	SettingsSvc   *sitesettings.Service
}

type Server struct {
	deps     ServerDeps
	app      *echo.Echo
	errors   chan error
	shutdown chan os.Signal
}

func NewServer(deps ServerDeps) (*Server, error) {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	if err := s.setup(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) setup() error {
	conf := s.deps.Conf

	jwtConf, err := newJWTConfig(conf.Identity)
	if err != nil {
		return errors.Wrap(err, "configuring jwt auth")
	}
	m, err := newMetrics(s.deps.Registry)
	if err != nil {
		return err
	}

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	s.app.Use(m.middleware)
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: conf.Server.AllowedOrigins}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	api := s.app.Group("/api")
	authed := []echo.MiddlewareFunc{
		middleware.JWTWithConfig(jwtConf),
		reconcileMiddleware(s.deps.UserSvc, conf.Identity.Issuer),
	}

	registerUserAPI(api, authed, s.deps.UserSvc)
	registerNoteAPI(api, authed, s.deps.NoteSvc, s.deps.UserSvc, s.deps.EngagementSvc)
	registerAssignmentAPI(api, authed, s.deps.AssignmentSvc, s.deps.UserSvc, s.deps.EngagementSvc)
	registerFileAPI(api, authed, s.deps.FileSvc, s.deps.UserSvc, s.deps.Logger)
	registerSiteSettingsAPI(api, authed, s.deps.SettingsSvc, s.deps.UserSvc)
	return nil
}

// Start listens on the configured address; failures are reported on Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	return s.shutdown
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

// chain returns mws followed by more, without touching mws.
func chain(mws []echo.MiddlewareFunc, more ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	all := make([]echo.MiddlewareFunc, 0, len(mws)+len(more))
	all = append(all, mws...)
	return append(all, more...)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to KistConnect API!")
}
