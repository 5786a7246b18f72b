package damage

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"

	"vehicle-damage-analyzer/internal/storage"

	"github.com/rs/zerolog/log"
)

// CachedAnalyzer wraps an ImageAnalyzer with SQLite caching. Identical image
// bytes return the stored assessment without a model call. Cache failures are
// logged and never block an analysis.
type CachedAnalyzer struct {
	inner ImageAnalyzer
	store storage.Store
}

// NewCachedAnalyzer creates a cached analyzer. A nil store disables caching.
func NewCachedAnalyzer(inner ImageAnalyzer, store storage.Store) *CachedAnalyzer {
	return &CachedAnalyzer{inner: inner, store: store}
}

// hashImage creates a SHA256 hash over the image payload.
// The length prefix guards against boundary collisions if the key scheme is
// ever extended to multiple payloads.
func hashImage(img Image) string {
	h := sha256.New()
	binary.Write(h, binary.LittleEndian, int64(len(img.Data)))
	h.Write(img.Data)
	return hex.EncodeToString(h.Sum(nil))
}

// Analyze implements ImageAnalyzer with caching.
func (c *CachedAnalyzer) Analyze(ctx context.Context, img Image) (*DamageAnalysis, error) {
	hash := hashImage(img)

	// Check cache
	if c.store != nil {
		cached, err := c.store.GetAnalysisCache(hash)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check analysis cache")
		} else if cached != nil {
			var analysis DamageAnalysis
			if err := json.Unmarshal(cached, &analysis); err != nil {
				log.Warn().Err(err).Str("hash", hash[:16]).Msg("discarding unreadable cache entry")
			} else {
				log.Debug().Str("hash", hash[:16]).Msg("analysis cache hit")
				return &analysis, nil
			}
		}
	}

	// Call underlying analyzer
	analysis, err := c.inner.Analyze(ctx, img)
	if err != nil {
		return nil, err
	}

	// Cache the result
	if c.store != nil {
		data, err := json.Marshal(analysis)
		if err == nil {
			err = c.store.SetAnalysisCache(hash, data)
		}
		if err != nil {
			log.Warn().Err(err).Msg("failed to cache analysis result")
		} else {
			log.Debug().Str("hash", hash[:16]).Msg("cached analysis result")
		}
	}

	return analysis, nil
}
