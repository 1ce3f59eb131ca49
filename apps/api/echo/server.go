package echoapi

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/agent"
	"github.com/kitobai/kitob/core/assignment"
	"github.com/kitobai/kitob/core/dashboard"
	"github.com/kitobai/kitob/core/feedback"
	"github.com/kitobai/kitob/core/interview"
	"github.com/kitobai/kitob/core/member"
	"github.com/kitobai/kitob/core/permission"
	"github.com/kitobai/kitob/core/school"
	"github.com/kitobai/kitob/core/user"
)

type (
	// SpeechProxy forwards TTS and STT requests to the speech provider.
	SpeechProxy interface {
		agent.Speech
		Configured() bool
		STT(ctx context.Context, audio []byte, filename, contentType string) ([]byte, error)
	}

	// CoverUploader stores book cover images and returns their public URL.
	CoverUploader interface {
		Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	}

	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		UserSvc              user.Service
		BranchSvc            school.NamedService
		SubjectSvc           school.NamedService
		EmployeeTypeSvc      school.NamedService
		ClassSvc             school.ClassService
		AcademicYearSvc      school.AcademicYearService
		StudentSvc           member.PersonService
		TeacherSvc           member.PersonService
		EmployeeSvc          member.EmployeeService
		AssignmentSvc        assignment.Service
		TeacherAssignmentSvc assignment.TeacherService
		PermissionSvc        permission.Service
		Authorizer           permission.Authorizer
		DashboardSvc         dashboard.Service
		AdminInterviewSvc    interview.AdminService
		GeneratedSvc         interview.GeneratedService
		FeedbackSvc          feedback.Service
		ChatSvc              agent.Service

		Mail   core.EmailService
		Speech SpeechProxy
		Covers CoverUploader
		// MediaDir is served at /media when covers are stored locally.
		MediaDir string
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(ctx context.Context) error
		Close() error
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     *authenticator
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		auth:     newAuthenticator(deps.Conf, deps.UserSvc),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
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
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{conf.Server.FrontendBaseURL},
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.Validator = &appValidator{validate: s.deps.Validate}

	s.app.GET("/", home)
	if s.deps.MediaDir != "" {
		s.app.Static("/media", s.deps.MediaDir)
	}

	g := s.app.Group("/api")
	jwt := s.auth.middleware()
	authed := g.Group("", jwt, s.auth.loadUser)

	registerAuthAPI(g, authed, s.deps, s.auth)
	registerAdminAPI(authed.Group("/admin", adminPanelMiddleware), s.deps)
	registerPanelAPI(authed, s.deps)
	registerChatAPI(g, authed, s.deps, s.auth)
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error { return s.errors }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"app": "Kitob AI", "time": time.Now().UTC()})
}

// appValidator plugs the app validator into echo.Context.Validate.
type appValidator struct {
	validate *validator.Validate
}

func (v *appValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
