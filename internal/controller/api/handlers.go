package api

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/Freeeeeet/fishery_booking/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// OwnerClaims содержимое токена владельца
type OwnerClaims struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type bookRequest struct {
	Date string `json:"date" validate:"required"`
	Peg  string `json:"peg" validate:"required"`
}

func (s *Server) handleRoot(ctx iris.Context) {
	ctx.WriteString("Server is up and running!")
}

func (s *Server) handleLogin(ctx iris.Context) {
	var req loginRequest
	if err := ctx.ReadJSON(&req); err != nil {
		jsonError(ctx, iris.StatusBadRequest, "Email and password are required")
		return
	}

	if !s.checkCredentials(req.Email, req.Password) {
		s.logger.Warn("Failed login attempt", zap.String("email", req.Email))
		jsonError(ctx, iris.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := s.signer.Sign(OwnerClaims{Email: req.Email})
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err))
		jsonError(ctx, iris.StatusInternalServerError, "Failed to create token")
		return
	}

	ctx.JSON(iris.Map{"message": "Login successful", "token": string(token)})
}

// checkCredentials сравнивает с учётными данными владельца из конфигурации
func (s *Server) checkCredentials(email, password string) bool {
	if s.opts.OwnerEmail == "" || s.opts.OwnerPassword == "" {
		return false
	}

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.opts.OwnerEmail)) == 1

	var passwordOK bool
	if isBcryptHash(s.opts.OwnerPassword) {
		passwordOK = bcrypt.CompareHashAndPassword([]byte(s.opts.OwnerPassword), []byte(password)) == nil
	} else {
		passwordOK = subtle.ConstantTimeCompare([]byte(password), []byte(s.opts.OwnerPassword)) == 1
	}

	return emailOK && passwordOK
}

func isBcryptHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}

func (s *Server) handleCalendar(ctx iris.Context) {
	slots, err := s.calendar.ReadAll(ctx.Request().Context())
	if err != nil {
		jsonError(ctx, iris.StatusInternalServerError, err.Error())
		return
	}

	ctx.JSON(slots)
}

func (s *Server) handleBook(ctx iris.Context) {
	var req bookRequest
	if err := ctx.ReadJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			s.logger.Debug("Malformed booking request", zap.Error(err))
		}
		jsonError(ctx, iris.StatusBadRequest, "Date and peg are required")
		return
	}

	result, err := s.calendar.Toggle(ctx.Request().Context(), req.Date, req.Peg)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			jsonError(ctx, iris.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrConflict):
			jsonError(ctx, iris.StatusConflict, "Slot was changed by another request, please retry")
		default:
			jsonError(ctx, iris.StatusInternalServerError, err.Error())
		}
		return
	}

	ctx.JSON(iris.Map{
		"message": result.Message(),
		"status":  result.Slot.Status,
	})
}
