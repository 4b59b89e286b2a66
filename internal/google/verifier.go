// Package google verifies Google identity and access tokens and drives the OAuth2 code flow.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"hisapi/internal/config"
)

// ErrInvalidToken is returned for tokens Google rejects, expired tokens and tokens minted for
// another client.
var ErrInvalidToken = errors.New("invalid google token")

// Identity is the verified subject of a Google token.
type Identity struct {
	Subject       string    `json:"sub"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	Name          string    `json:"name"`
	Picture       string    `json:"picture"`
	Audience      string    `json:"aud"`
	ExpiresAt     time.Time `json:"exp"`
}

// Verifier checks tokens presented by clients.
type Verifier interface {
	VerifyIDToken(ctx context.Context, token string) (*Identity, error)
	VerifyAccessToken(ctx context.Context, token string) (*Identity, error)
}

// tokenInfo is the tokeninfo response. Google encodes numbers and booleans as strings.
type tokenInfo struct {
	Sub              string `json:"sub"`
	Email            string `json:"email"`
	EmailVerified    string `json:"email_verified"`
	Name             string `json:"name"`
	Picture          string `json:"picture"`
	Aud              string `json:"aud"`
	Azp              string `json:"azp"`
	Exp              string `json:"exp"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// TokenInfoVerifier validates tokens against Google's tokeninfo endpoint.
type TokenInfoVerifier struct {
	client    *http.Client
	endpoint  string
	audiences []string
	now       func() time.Time
}

// defaultHTTPTimeout applies when GOOGLE_HTTP_TIMEOUT is unset or not positive.
const defaultHTTPTimeout = 10 * time.Second

// newHTTPClient returns a traced client for calls to Google.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func NewTokenInfoVerifier(cfg config.GoogleConfig) *TokenInfoVerifier {
	return &TokenInfoVerifier{
		client:    newHTTPClient(cfg.HTTPTimeout),
		endpoint:  cfg.TokenInfoURL,
		audiences: cfg.ClientIDs,
		now:       time.Now,
	}
}

func (v *TokenInfoVerifier) VerifyIDToken(ctx context.Context, token string) (*Identity, error) {
	return v.verify(ctx, "id_token", token)
}

func (v *TokenInfoVerifier) VerifyAccessToken(ctx context.Context, token string) (*Identity, error) {
	return v.verify(ctx, "access_token", token)
}

func (v *TokenInfoVerifier) verify(ctx context.Context, param, token string) (*Identity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidToken
	}
	u := v.endpoint + "?" + url.Values{param: {token}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build tokeninfo request: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call tokeninfo: %w", err)
	}
	defer resp.Body.Close()

	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: tokeninfo status %d", ErrInvalidToken, resp.StatusCode)
		}
		return nil, fmt.Errorf("decode tokeninfo: %w", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("tokeninfo status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || info.ErrorDescription != "" || info.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, firstNonEmpty(info.ErrorDescription, info.Error, resp.Status))
	}

	if len(v.audiences) > 0 && !slices.Contains(v.audiences, info.Aud) && !slices.Contains(v.audiences, info.Azp) {
		return nil, fmt.Errorf("%w: audience %q not accepted", ErrInvalidToken, info.Aud)
	}

	id := &Identity{
		Subject:       info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified == "true",
		Name:          info.Name,
		Picture:       info.Picture,
		Audience:      info.Aud,
	}
	if info.Exp != "" {
		sec, err := strconv.ParseInt(info.Exp, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad exp %q", ErrInvalidToken, info.Exp)
		}
		id.ExpiresAt = time.Unix(sec, 0).UTC()
		if !id.ExpiresAt.After(v.now()) {
			return nil, fmt.Errorf("%w: expired", ErrInvalidToken)
		}
	}
	return id, nil
}

func firstNonEmpty(vals ...string) string {
	for _, s := range vals {
		if s != "" {
			return s
		}
	}
	return ""
}
