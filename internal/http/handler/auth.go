package handler

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"hisapi/internal/http/middleware"
	"hisapi/internal/model"
	"hisapi/internal/service"
)

// RegisterPath is where clients send users whose Google account has no local account yet.
const RegisterPath = "/register"

// Login method labels.
const (
	methodIDToken     = "id_token"
	methodAccessToken = "access_token"
	methodCode        = "code"
)

// authResponse is the envelope used by the Google sign-in endpoints.
type authResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Error     string      `json:"error,omitempty"`
	Redirect  string      `json:"redirect,omitempty"`
	Token     string      `json:"token,omitempty"`
	TokenType string      `json:"token_type,omitempty"`
	ExpiresIn int64       `json:"expires_in,omitempty"`
	User      *model.User `json:"user,omitempty"`
	AuthURL   string      `json:"auth_url,omitempty"`
	State     string      `json:"state,omitempty"`
}

type idTokenRequest struct {
	IDToken string `json:"id_token"`
}

type accessTokenRequest struct {
	AccessToken string `json:"access_token"`
}

type exchangeCodeRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
}

// LoginMetrics counts Google sign-in attempts by method and outcome.
type LoginMetrics struct {
	logins *prometheus.CounterVec
}

// NewLoginMetrics registers auth_google_logins_total on reg.
func NewLoginMetrics(reg prometheus.Registerer) (*LoginMetrics, error) {
	m := &LoginMetrics{
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_google_logins_total",
				Help: "Google sign-in attempts by method and outcome.",
			},
			[]string{"method", "outcome"},
		),
	}
	if err := reg.Register(m.logins); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *LoginMetrics) observe(method, outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(method, outcome).Inc()
}

// GoogleLogin signs a user in with a Google ID token.
func GoogleLogin(svc service.AuthService, metrics *LoginMetrics, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req idTokenRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			metrics.observe(methodIDToken, "bad_request")
			return authFailure(c, fiber.StatusBadRequest, "invalid request body")
		}
		if strings.TrimSpace(req.IDToken) == "" {
			metrics.observe(methodIDToken, "bad_request")
			return authFailure(c, fiber.StatusBadRequest, "id_token is required")
		}
		res, err := svc.LoginWithIDToken(c.UserContext(), req.IDToken)
		return loginResponse(c, log, metrics, methodIDToken, res, err)
	}
}

// GoogleLoginAccessToken signs a user in with a Google OAuth2 access token.
func GoogleLoginAccessToken(svc service.AuthService, metrics *LoginMetrics, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req accessTokenRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			metrics.observe(methodAccessToken, "bad_request")
			return authFailure(c, fiber.StatusBadRequest, "invalid request body")
		}
		if strings.TrimSpace(req.AccessToken) == "" {
			metrics.observe(methodAccessToken, "bad_request")
			return authFailure(c, fiber.StatusBadRequest, "access_token is required")
		}
		res, err := svc.LoginWithAccessToken(c.UserContext(), req.AccessToken)
		return loginResponse(c, log, metrics, methodAccessToken, res, err)
	}
}

// GoogleAuthURL returns the consent screen URL for the authorization code flow.
func GoogleAuthURL(svc service.AuthService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		url, state, err := svc.AuthURL(c.Query("redirect_uri"))
		if errors.Is(err, service.ErrOAuthNotConfigured) {
			log.Error("google oauth is not configured", zap.Error(err))
			return authFailure(c, fiber.StatusInternalServerError, "google sign-in is not configured")
		}
		if err != nil {
			log.Error("build google auth url", zap.Error(err))
			return authFailure(c, fiber.StatusInternalServerError, "internal server error")
		}
		return c.JSON(authResponse{Success: true, AuthURL: url, State: state})
	}
}

// GoogleExchangeCode completes the authorization code flow and signs the user in.
func GoogleExchangeCode(svc service.AuthService, metrics *LoginMetrics, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req exchangeCodeRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			metrics.observe(methodCode, "bad_request")
			return authFailure(c, fiber.StatusBadRequest, "invalid request body")
		}
		if strings.TrimSpace(req.Code) == "" {
			metrics.observe(methodCode, "bad_request")
			return authFailure(c, fiber.StatusBadRequest, "code is required")
		}
		res, err := svc.ExchangeCode(c.UserContext(), req.Code, strings.TrimSpace(req.RedirectURI))
		return loginResponse(c, log, metrics, methodCode, res, err)
	}
}

// CurrentUser returns the account behind the caller's session token.
func CurrentUser(svc service.AuthService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := middleware.ClaimsFrom(c)
		if claims == nil {
			return authFailure(c, fiber.StatusUnauthorized, "missing session token")
		}
		user, err := svc.CurrentUser(c.UserContext(), claims.UserID)
		switch {
		case err == nil:
			return c.JSON(authResponse{Success: true, User: user})
		case errors.Is(err, service.ErrUserNotFound):
			return authFailure(c, fiber.StatusUnauthorized, "account no longer exists")
		case errors.Is(err, service.ErrAccountLocked):
			return authFailure(c, fiber.StatusForbidden, "account is locked")
		case errors.Is(err, service.ErrAccountInactive):
			return authFailure(c, fiber.StatusForbidden, "account is inactive")
		}
		log.Error("load current user",
			zap.String("request_id", requestIDFromCtx(c)),
			zap.Int64("user_id", claims.UserID),
			zap.Error(err),
		)
		return authFailure(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func authFailure(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(authResponse{Success: false, Error: msg})
}

func loginResponse(c *fiber.Ctx, log *zap.Logger, metrics *LoginMetrics, method string, res *service.LoginResult, err error) error {
	if err == nil {
		metrics.observe(method, "success")
		return c.JSON(authResponse{
			Success:   true,
			Message:   "login successful",
			Token:     res.Token,
			TokenType: res.TokenType,
			ExpiresIn: res.ExpiresIn,
			User:      res.User,
		})
	}

	switch {
	case errors.Is(err, service.ErrInvalidToken):
		metrics.observe(method, "invalid_token")
		return authFailure(c, fiber.StatusUnauthorized, "invalid or expired google token")
	case errors.Is(err, service.ErrEmailMissing):
		metrics.observe(method, "email_missing")
		return authFailure(c, fiber.StatusBadRequest, "google account has no email address")
	case errors.Is(err, service.ErrEmailUnverified):
		metrics.observe(method, "email_unverified")
		return authFailure(c, fiber.StatusUnauthorized, "google account email is not verified")
	case errors.Is(err, service.ErrUserNotFound):
		metrics.observe(method, "user_not_found")
		return c.Status(fiber.StatusUnauthorized).JSON(authResponse{
			Success:  false,
			Error:    "no account is registered for this email",
			Redirect: RegisterPath,
		})
	case errors.Is(err, service.ErrAccountLocked):
		metrics.observe(method, "locked")
		return authFailure(c, fiber.StatusForbidden, "account is locked")
	case errors.Is(err, service.ErrAccountInactive):
		metrics.observe(method, "inactive")
		return authFailure(c, fiber.StatusForbidden, "account is inactive")
	case errors.Is(err, service.ErrOAuthNotConfigured):
		metrics.observe(method, "error")
		log.Error("google oauth is not configured", zap.Error(err))
		return authFailure(c, fiber.StatusInternalServerError, "google sign-in is not configured")
	}

	metrics.observe(method, "error")
	log.Error("google login failed",
		zap.String("request_id", requestIDFromCtx(c)),
		zap.String("method", method),
		zap.Error(err),
	)
	return authFailure(c, fiber.StatusInternalServerError, "internal server error")
}
