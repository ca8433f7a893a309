package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/core/dizimista"
	"github.com/trezcool/dizimo/core/igreja"
	"github.com/trezcool/dizimo/core/pagamento"
	"github.com/trezcool/dizimo/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Logger       core.Logger
		UserSvc      user.Service
		IgrejaSvc    igreja.Service
		DizimistaSvc dizimista.Service
		PagamentoSvc pagamento.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		opts *Options
		app  *echo.Echo

		errChan      chan error
		shutdownChan chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:         opts,
		app:          echo.New(),
		errChan:      make(chan error, 1),
		shutdownChan: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdownChan, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc)
	registerIgrejaAPI(v1, jwt, s.opts.IgrejaSvc, s.opts.UserSvc)
	registerDizimistaAPI(v1, jwt, s.opts.DizimistaSvc, s.opts.IgrejaSvc, s.opts.UserSvc)
	registerPagamentoAPI(v1, jwt, s.opts.PagamentoSvc, s.opts.IgrejaSvc, s.opts.UserSvc)
	registerRelatorioAPI(v1, jwt, s.opts.PagamentoSvc, s.opts.IgrejaSvc, s.opts.UserSvc)
}

func (s *server) Start() {
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		s.errChan <- err
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Errors() <-chan error { return s.errChan }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdownChan }

// signalShutdown is called by the error handler when an integrity issue is
// detected and the app needs to terminate.
func (s *server) signalShutdown() {
	s.shutdownChan <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Dizimo API!")
}
