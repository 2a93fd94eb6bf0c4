package positionsource

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"position_aggregator/internal/app/port"
	"position_aggregator/internal/domain/entity"
	"position_aggregator/internal/pkg/metrics"
)

// CachedSource decorates a PositionSource with a TTL cache keyed by
// (walletId, networkId) and explicit invalidation. Concurrent fetches for
// the same key are collapsed into one upstream call.
type CachedSource struct {
	inner  port.PositionSource
	cache  *gocache.Cache
	group  singleflight.Group
	logger port.Logger
}

// NewCachedSource creates a new CachedSource around inner.
func NewCachedSource(inner port.PositionSource, ttl, purgeInterval time.Duration, logger port.Logger) *CachedSource {
	return &CachedSource{
		inner:  inner,
		cache:  gocache.New(ttl, purgeInterval),
		logger: logger,
	}
}

func cacheKey(walletID, networkID string) string {
	return strings.ToLower(walletID) + ":" + strings.ToLower(networkID)
}

// GetPositions returns cached raw positions when fresh, otherwise fetches
// from the inner source and caches the result. Failures are not cached.
func (s *CachedSource) GetPositions(ctx context.Context, wallet entity.Wallet, network entity.NetworkDefinition) ([]entity.RawPosition, error) {
	key := cacheKey(wallet.ID, network.Identifier)

	if cached, found := s.cache.Get(key); found {
		metrics.PositionCacheHits.WithLabelValues("hit").Inc()
		s.logger.Debug("Position cache hit", "wallet_id", wallet.ID, "network", network.Identifier)
		return cached.([]entity.RawPosition), nil
	}
	metrics.PositionCacheHits.WithLabelValues("miss").Inc()

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		positions, fetchErr := s.inner.GetPositions(ctx, wallet, network)
		if fetchErr != nil {
			return nil, fetchErr
		}
		s.cache.Set(key, positions, gocache.DefaultExpiration)
		return positions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]entity.RawPosition), nil
}

// Invalidate drops the cached positions for one wallet on one network, or
// for every network of the wallet when networkID is empty.
func (s *CachedSource) Invalidate(walletID, networkID string) {
	if networkID != "" {
		s.cache.Delete(cacheKey(walletID, networkID))
		return
	}
	prefix := strings.ToLower(walletID) + ":"
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Delete(key)
		}
	}
}
