// internal/workers/query-intent/build-query-result/cache.go
package buildqueryresult

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"query-intent-workers/internal/common/errors"
	"query-intent-workers/internal/common/metrics"
	"query-intent-workers/internal/intent"
	"query-intent-workers/internal/vocabulary"
)

const cacheKeyPrefix = "query-intent:record:"

// CacheKey derives the record cache key. A record depends on the vocabulary
// as declared, the builder settings, the reference date and the query text,
// so all of them are hashed together.
func CacheKey(vocab vocabulary.Set, settings, referenceDate, query string) string {
	name := settings + "\x00" + referenceDate + "\x00" + strings.ToLower(query)
	return cacheKeyPrefix + uuid.NewSHA1(vocab.Fingerprint(), []byte(name)).String()
}

type cacheResult string

const (
	cacheHit   cacheResult = "hit"
	cacheMiss  cacheResult = "miss"
	cacheError cacheResult = "error"
)

func (h *Handler) lookupRecord(ctx context.Context, key string) (intent.QueryRecord, cacheResult) {
	var record intent.QueryRecord
	if h.redis == nil {
		return record, cacheMiss
	}

	val, err := h.redis.Get(ctx, key).Bytes()
	switch {
	case stderrors.Is(err, redis.Nil):
		metrics.ResultCacheLookups.WithLabelValues(string(cacheMiss)).Inc()
		return record, cacheMiss
	case err != nil:
		metrics.ResultCacheLookups.WithLabelValues(string(cacheError)).Inc()
		h.logger.Warn("record cache unavailable, rebuilding", map[string]interface{}{
			"key":   key,
			"error": errors.NewCacheUnavailableError(err).Details,
		})
		return record, cacheError
	}

	if err := json.Unmarshal(val, &record); err != nil || record.Entity == "" || record.Parameter == "" {
		metrics.ResultCacheLookups.WithLabelValues(string(cacheMiss)).Inc()
		h.logger.Warn("discarding unreadable cached record", map[string]interface{}{
			"key": key,
		})
		return intent.QueryRecord{}, cacheMiss
	}

	metrics.ResultCacheLookups.WithLabelValues(string(cacheHit)).Inc()
	return record, cacheHit
}

func (h *Handler) storeRecord(ctx context.Context, key string, record intent.QueryRecord) {
	if h.redis == nil {
		return
	}
	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := h.redis.Set(ctx, key, data, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("failed to cache record", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
