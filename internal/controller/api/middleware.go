package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// requestLogger присваивает запросу id и пишет access-лог
func (s *Server) requestLogger(ctx iris.Context) {
	start := time.Now()

	requestID := ctx.GetHeader(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx.Header(requestIDHeader, requestID)
	ctx.Values().Set("request_id", requestID)

	ctx.Next()

	s.logger.Info("HTTP request",
		zap.String("request_id", requestID),
		zap.String("method", ctx.Method()),
		zap.String("path", ctx.Path()),
		zap.Int("status", ctx.GetStatusCode()),
		zap.Duration("latency", time.Since(start)),
	)
}

// cors разрешает запросы только с сайта клиента
func (s *Server) cors(ctx iris.Context) {
	ctx.Header("Access-Control-Allow-Origin", s.opts.CORSOrigin)
	ctx.Header("Vary", "Origin")
	ctx.Header("Access-Control-Allow-Credentials", "true")
	ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
	ctx.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	if ctx.Method() == iris.MethodOptions {
		ctx.StatusCode(iris.StatusNoContent)
		return
	}
	ctx.Next()
}

// unauthorized отвечает на запрос без токена или с плохим токеном
func (s *Server) unauthorized(ctx iris.Context, err error) {
	message := "Unauthorized, invalid token"
	if ctx.GetHeader("Authorization") == "" {
		message = "Unauthorized, no token provided"
	}

	s.logger.Debug("Rejected token", zap.String("path", ctx.Path()), zap.Error(err))
	jsonError(ctx, iris.StatusUnauthorized, message)
}

func jsonError(ctx iris.Context, status int, message string) {
	ctx.StopWithJSON(status, iris.Map{"error": message})
}
