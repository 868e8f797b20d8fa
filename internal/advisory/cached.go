package advisory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/screening-service/internal/cache"
)

// CachedAdvisor reuses commentary for identical summaries.
type CachedAdvisor struct {
	next   Advisor
	cache  cache.CacheService
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedAdvisor(next Advisor, c cache.CacheService, ttl time.Duration, logger *slog.Logger) *CachedAdvisor {
	return &CachedAdvisor{next: next, cache: c, ttl: ttl, logger: logger}
}

func (a *CachedAdvisor) Name() string { return a.next.Name() + "+cache" }

func (a *CachedAdvisor) Comment(ctx context.Context, s Summary) ([]string, error) {
	key := cacheKey(a.next.Name(), s)

	var lines []string
	err := a.cache.Get(ctx, key, &lines)
	switch {
	case err == nil:
		return lines, nil
	case !errors.Is(err, cache.ErrCacheMiss):
		a.logger.Warn("Advisory cache read failed", "key", key, "error", err)
	}

	lines, err = a.next.Comment(ctx, s)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return lines, nil
	}
	if err := a.cache.Set(ctx, key, lines, a.ttl); err != nil {
		a.logger.Warn("Advisory cache write failed", "key", key, "error", err)
	}
	return lines, nil
}

func cacheKey(provider string, s Summary) string {
	return fmt.Sprintf("advisory:%s:%d:%d:%d:%d:%d:%d",
		provider, s.Total, s.MaxTotal, s.MMSE, s.Clock, s.Memory, s.Moves)
}

// Close closes the wrapped advisor when it holds resources.
func (a *CachedAdvisor) Close() error {
	if c, ok := a.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
