// Package api HTTP-интерфейс календаря: вход владельца, чтение календаря, бронирование.
package api

import (
	"context"
	"time"

	"github.com/Freeeeeet/fishery_booking/internal/model"
	"github.com/Freeeeeet/fishery_booking/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"go.uber.org/zap"
)

// Calendar операции календаря, которые нужны HTTP-слою
type Calendar interface {
	ReadAll(ctx context.Context) ([]model.Slot, error)
	Toggle(ctx context.Context, date, peg string) (*service.ToggleResult, error)
}

// Options статические настройки сервера
type Options struct {
	CORSOrigin    string
	JWTSecret     string
	OwnerEmail    string
	OwnerPassword string // открытый текст или bcrypt-хеш
	TokenTTL      time.Duration
}

type Server struct {
	app      *iris.Application
	calendar Calendar
	opts     Options
	signer   *jwt.Signer
	logger   *zap.Logger
}

func NewServer(calendar Calendar, opts Options, logger *zap.Logger) *Server {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}

	s := &Server{
		app:      iris.New(),
		calendar: calendar,
		opts:     opts,
		signer:   jwt.NewSigner(jwt.HS256, []byte(opts.JWTSecret), opts.TokenTTL),
		logger:   logger,
	}

	s.app.Validator = validator.New()
	s.app.Logger().SetLevel("disable")
	s.routes()

	return s
}

// App возвращает iris-приложение (нужно для Listen и тестов)
func (s *Server) App() *iris.Application {
	return s.app
}

// Listen запускает HTTP-сервер и блокируется до его остановки
func (s *Server) Listen(addr string) error {
	s.logger.Info("HTTP server listening", zap.String("addr", addr))
	return s.app.Listen(addr, iris.WithoutStartupLog, iris.WithoutServerError(iris.ErrServerClosed))
}

// Shutdown корректно останавливает сервер
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) routes() {
	s.app.UseRouter(s.requestLogger)
	s.app.UseRouter(s.cors)

	verifier := jwt.NewVerifier(jwt.HS256, []byte(s.opts.JWTSecret))
	verifier.ErrorHandler = s.unauthorized
	requireOwner := verifier.Verify(func() interface{} {
		return new(OwnerClaims)
	})

	s.app.Get("/", s.handleRoot)

	apiParty := s.app.Party("/api")
	{
		apiParty.Post("/login", s.handleLogin)
		apiParty.Get("/calendar", s.handleCalendar)
		apiParty.Post("/calendar/book", requireOwner, s.handleBook)
	}
}
