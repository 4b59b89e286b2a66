package google

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"hisapi/internal/cache"
)

// CachedVerifier remembers successful verifications until the token expires or maxTTL passes,
// whichever comes first. Cache errors never fail a verification.
type CachedVerifier struct {
	next   Verifier
	cache  cache.Cache
	maxTTL time.Duration
	log    *zap.Logger
	now    func() time.Time
}

func NewCachedVerifier(next Verifier, c cache.Cache, maxTTL time.Duration, log *zap.Logger) *CachedVerifier {
	return &CachedVerifier{next: next, cache: c, maxTTL: maxTTL, log: log, now: time.Now}
}

func (v *CachedVerifier) VerifyIDToken(ctx context.Context, token string) (*Identity, error) {
	return v.verify(ctx, "id", token, v.next.VerifyIDToken)
}

func (v *CachedVerifier) VerifyAccessToken(ctx context.Context, token string) (*Identity, error) {
	return v.verify(ctx, "access", token, v.next.VerifyAccessToken)
}

func (v *CachedVerifier) verify(ctx context.Context, kind, token string, upstream func(context.Context, string) (*Identity, error)) (*Identity, error) {
	key := cacheKey(kind, token)

	raw, err := v.cache.Get(ctx, key)
	switch {
	case err == nil:
		var id Identity
		if jerr := json.Unmarshal([]byte(raw), &id); jerr == nil && (id.ExpiresAt.IsZero() || id.ExpiresAt.After(v.now())) {
			return &id, nil
		}
	case !errors.Is(err, cache.ErrMiss):
		v.log.Warn("token cache read failed", zap.Error(err))
	}

	id, err := upstream(ctx, token)
	if err != nil {
		return nil, err
	}

	ttl := v.maxTTL
	if !id.ExpiresAt.IsZero() {
		if left := id.ExpiresAt.Sub(v.now()); left < ttl {
			ttl = left
		}
	}
	if ttl > 0 {
		b, _ := json.Marshal(id)
		if err := v.cache.Set(ctx, key, b, ttl); err != nil {
			v.log.Warn("token cache write failed", zap.Error(err))
		}
	}
	return id, nil
}

func cacheKey(kind, token string) string {
	sum := sha256.Sum256([]byte(token))
	return "google:tokeninfo:" + kind + ":" + hex.EncodeToString(sum[:])
}
