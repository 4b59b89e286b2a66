package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hisapi/internal/auth"
	"hisapi/internal/google"
	"hisapi/internal/model"
	"hisapi/internal/repository"
)

var (
	ErrInvalidToken       = errors.New("invalid or expired google token")
	ErrEmailMissing       = errors.New("google token carries no email")
	ErrEmailUnverified    = errors.New("google account email is not verified")
	ErrUserNotFound       = errors.New("no account is registered for this email")
	ErrAccountLocked      = errors.New("account is locked")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrOAuthNotConfigured = errors.New("google oauth is not configured")
)

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(u *model.User) (string, time.Time, error)
}

// CodeExchanger runs the Google authorization code flow.
type CodeExchanger interface {
	AuthCodeURL(redirectURI, state string) (string, error)
	Exchange(ctx context.Context, code, redirectURI string) (token string, isIDToken bool, err error)
}

// LoginResult is the session handed to a client after a successful login.
type LoginResult struct {
	Token     string
	TokenType string
	ExpiresAt time.Time
	ExpiresIn int64
	User      *model.User
}

// AuthService maps Google identities onto local accounts and issues session tokens.
type AuthService interface {
	LoginWithIDToken(ctx context.Context, idToken string) (*LoginResult, error)
	LoginWithAccessToken(ctx context.Context, accessToken string) (*LoginResult, error)
	// AuthURL returns the Google consent URL and the state value embedded in it.
	AuthURL(redirectURI string) (url string, state string, err error)
	// ExchangeCode trades an authorization code for a Google token and logs in with it.
	ExchangeCode(ctx context.Context, code, redirectURI string) (*LoginResult, error)
	// CurrentUser reloads the account behind a session token.
	CurrentUser(ctx context.Context, userID int64) (*model.User, error)
}

type authService struct {
	users    repository.UserRepository
	verifier google.Verifier
	oauth    CodeExchanger
	tokens   TokenIssuer
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(users repository.UserRepository, verifier google.Verifier, oauth CodeExchanger, tokens TokenIssuer, log *zap.Logger) AuthService {
	return &authService{users: users, verifier: verifier, oauth: oauth, tokens: tokens, log: log, now: time.Now}
}

func (s *authService) LoginWithIDToken(ctx context.Context, idToken string) (*LoginResult, error) {
	return s.login(ctx, idToken, s.verifier.VerifyIDToken)
}

func (s *authService) LoginWithAccessToken(ctx context.Context, accessToken string) (*LoginResult, error) {
	return s.login(ctx, accessToken, s.verifier.VerifyAccessToken)
}

func (s *authService) login(ctx context.Context, token string, verify func(context.Context, string) (*google.Identity, error)) (*LoginResult, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidToken
	}
	id, err := verify(ctx, token)
	if err != nil {
		if errors.Is(err, google.ErrInvalidToken) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return nil, fmt.Errorf("verify google token: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(id.Email))
	if email == "" {
		return nil, ErrEmailMissing
	}
	if !id.EmailVerified {
		return nil, ErrEmailUnverified
	}
	log := s.log.With(zap.String("email", email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Info("google login for unknown email")
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	now := s.now().UTC()
	if user.LockedAt(now) {
		log.Warn("google login for locked account", zap.Int64("user_id", user.ID))
		return nil, ErrAccountLocked
	}
	if !user.IsActive {
		log.Warn("google login for inactive account", zap.Int64("user_id", user.ID))
		return nil, ErrAccountInactive
	}

	if err := s.users.RecordLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	user.FailedAttempts = 0
	user.LastLoginAt.SetValid(now)

	signed, exp, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	log.Info("google login succeeded", zap.Int64("user_id", user.ID))
	return &LoginResult{
		Token:     signed,
		TokenType: auth.TokenType,
		ExpiresAt: exp,
		ExpiresIn: int64(exp.Sub(now).Seconds()),
		User:      user,
	}, nil
}

func (s *authService) AuthURL(redirectURI string) (string, string, error) {
	if s.oauth == nil {
		return "", "", ErrOAuthNotConfigured
	}
	state := uuid.NewString()
	u, err := s.oauth.AuthCodeURL(redirectURI, state)
	if err != nil {
		if errors.Is(err, google.ErrNotConfigured) {
			return "", "", fmt.Errorf("%w: %v", ErrOAuthNotConfigured, err)
		}
		return "", "", err
	}
	return u, state, nil
}

func (s *authService) ExchangeCode(ctx context.Context, code, redirectURI string) (*LoginResult, error) {
	if s.oauth == nil {
		return nil, ErrOAuthNotConfigured
	}
	token, isIDToken, err := s.oauth.Exchange(ctx, code, redirectURI)
	if err != nil {
		switch {
		case errors.Is(err, google.ErrNotConfigured):
			return nil, fmt.Errorf("%w: %v", ErrOAuthNotConfigured, err)
		case errors.Is(err, google.ErrInvalidToken):
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return nil, err
	}
	if isIDToken {
		return s.LoginWithIDToken(ctx, token)
	}
	return s.LoginWithAccessToken(ctx, token)
}

func (s *authService) CurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	if userID <= 0 {
		return nil, ErrUserNotFound
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.LockedAt(s.now().UTC()) {
		return nil, ErrAccountLocked
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	return user, nil
}
