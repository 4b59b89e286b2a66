// Package auth issues and validates the session tokens handed out after a successful login.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hisapi/internal/config"
	"hisapi/internal/model"
)

// TokenType is the scheme clients use in the Authorization header.
const TokenType = "Bearer"

var (
	ErrSecretMissing = errors.New("jwt secret is not configured")
	ErrInvalidToken  = errors.New("invalid session token")
)

// Claims is the payload of a session token.
type Claims struct {
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	Login       string `json:"login"`
	RoleID      int64  `json:"role_id"`
	RoleName    string `json:"role_name"`
	ProfileID   *int64 `json:"profile_id"`
	ProfileName string `json:"profile_name,omitempty"`
	jwt.RegisteredClaims
}

// JWTIssuer signs and parses HS256 session tokens.
type JWTIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(cfg config.JWTConfig) (*JWTIssuer, error) {
	if cfg.Secret == "" {
		return nil, ErrSecretMissing
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JWTIssuer{secret: []byte(cfg.Secret), issuer: cfg.Issuer, ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime of issued tokens.
func (j *JWTIssuer) TTL() time.Duration { return j.ttl }

// Issue signs a token for the user and returns it with its expiry.
func (j *JWTIssuer) Issue(u *model.User) (string, time.Time, error) {
	now := j.now().UTC()
	exp := now.Add(j.ttl)
	claims := Claims{
		UserID:      u.ID,
		Email:       u.Email,
		Login:       u.Login,
		RoleID:      u.RoleID,
		RoleName:    u.RoleName,
		ProfileID:   u.ProfileID.Ptr(),
		ProfileName: u.ProfileName.String,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse validates signature, signing method, expiry and issuer.
func (j *JWTIssuer) Parse(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
