package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"meeting-slot-api/core/cache"
	"meeting-slot-api/core/constants"
	"meeting-slot-api/core/logger"
	"meeting-slot-api/modules/scheduling/entity"
)

type Extractor interface {
	Extract(ctx context.Context, input entity.ExtractionInput) (*entity.MeetingProposal, error)
}

// CachedExtractor memoises proposals per message. Cache failures fall through to the wrapped extractor.
type CachedExtractor struct {
	next  Extractor
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedExtractor(next Extractor, c cache.Cache, ttl time.Duration) *CachedExtractor {
	return &CachedExtractor{next: next, cache: c, ttl: ttl}
}

func (e *CachedExtractor) Extract(ctx context.Context, input entity.ExtractionInput) (*entity.MeetingProposal, error) {
	if input.MessageKey == "" {
		return e.next.Extract(ctx, input)
	}
	key := constants.RedisKeyProposal + input.MessageKey

	cached, err := e.cache.Get(ctx, key)
	switch {
	case err == nil:
		var proposal entity.MeetingProposal
		if jsonErr := json.Unmarshal(cached, &proposal); jsonErr == nil {
			logger.Debug("CachedExtractor:Extract:Hit", "key", key)
			return &proposal, nil
		}
		logger.Warn("CachedExtractor:Extract:CorruptEntry", "key", key)
	case !errors.Is(err, cache.ErrCacheMiss):
		logger.Warn("CachedExtractor:Extract:Get", "key", key, "error", err)
	}

	proposal, err := e.next.Extract(ctx, input)
	if err != nil {
		return nil, err
	}

	if body, jsonErr := json.Marshal(proposal); jsonErr == nil {
		if setErr := e.cache.Set(ctx, key, body, e.ttl); setErr != nil {
			logger.Warn("CachedExtractor:Extract:Set", "key", key, "error", setErr)
		}
	}
	return proposal, nil
}
