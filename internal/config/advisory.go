package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/screening-service/internal/advisory"
	"github.com/SAP-F-2025/screening-service/internal/cache"
)

// AdvisoryConfig selects the commentary provider for finished screenings.
type AdvisoryConfig struct {
	Provider string // none or gemini
	APIKey   string
	Model    string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// CreateAdvisor builds the configured advisor. A non-nil cache wraps it in
// an advisory.CachedAdvisor.
func (c *AdvisoryConfig) CreateAdvisor(ctx context.Context, cacheSvc cache.CacheService, logger *slog.Logger) (advisory.Advisor, error) {
	var adv advisory.Advisor

	switch c.Provider {
	case "", "none":
		logger.Info("Advisory commentary disabled")
		return advisory.NoopAdvisor{}, nil
	case "gemini":
		g, err := advisory.NewGeminiAdvisor(ctx, c.APIKey, c.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini advisor: %w", err)
		}
		logger.Info("Creating Gemini advisor", "model", c.Model)
		adv = g
	default:
		return nil, fmt.Errorf("unknown advisory provider %q", c.Provider)
	}

	if cacheSvc != nil && c.CacheTTL > 0 {
		adv = advisory.NewCachedAdvisor(adv, cacheSvc, c.CacheTTL, logger)
	}
	return adv, nil
}
