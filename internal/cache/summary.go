package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vendalytics/backend-go/internal/config"
	"github.com/vendalytics/backend-go/internal/domain"
)

const (
	summaryKeyPrefix  = "analytics:summary"
	scanBatchSize     = 100
	defaultSummaryTTL = 5 * time.Minute
)

// SummaryCache stores computed dashboard summaries. Keys combine the tenant,
// the tenant's dataset version and the filter signature, so a new ingest run
// (which bumps the dataset version) makes every older entry unreachable.
type SummaryCache interface {
	GetSummary(ctx context.Context, tenant, datasetVersion string, filter domain.ReportFilter) (*domain.DashboardSummary, bool, error)
	SetSummary(ctx context.Context, tenant, datasetVersion string, filter domain.ReportFilter, summary *domain.DashboardSummary) error
	InvalidateTenant(ctx context.Context, tenant string) error
}

type redisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopSummaryCache struct{}

func NewSummaryCache(cfg config.CacheConfig) (SummaryCache, error) {
	if !cfg.Enabled {
		return &noopSummaryCache{}, nil
	}

	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(cfg.SummaryTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultSummaryTTL
	}

	return &redisSummaryCache{client: client, ttl: ttl}, nil
}

func NewNoopSummaryCache() SummaryCache {
	return &noopSummaryCache{}
}

func (c *redisSummaryCache) GetSummary(ctx context.Context, tenant, datasetVersion string, filter domain.ReportFilter) (*domain.DashboardSummary, bool, error) {
	key := BuildSummaryKey(tenant, datasetVersion, filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summary domain.DashboardSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, false, fmt.Errorf("decode summary cache: %w", err)
	}

	return &summary, true, nil
}

func (c *redisSummaryCache) SetSummary(ctx context.Context, tenant, datasetVersion string, filter domain.ReportFilter, summary *domain.DashboardSummary) error {
	key := BuildSummaryKey(tenant, datasetVersion, filter)
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisSummaryCache) InvalidateTenant(ctx context.Context, tenant string) error {
	prefix := fmt.Sprintf("%s:%s:", summaryKeyPrefix, tenant)
	return deleteKeysWithPrefix(ctx, c.client, prefix, scanBatchSize)
}

func (n *noopSummaryCache) GetSummary(ctx context.Context, tenant, datasetVersion string, filter domain.ReportFilter) (*domain.DashboardSummary, bool, error) {
	return nil, false, nil
}

func (n *noopSummaryCache) SetSummary(ctx context.Context, tenant, datasetVersion string, filter domain.ReportFilter, summary *domain.DashboardSummary) error {
	return nil
}

func (n *noopSummaryCache) InvalidateTenant(ctx context.Context, tenant string) error {
	return nil
}

// BuildSummaryKey hashes the dataset version together with the filter
// signature so the key stays bounded no matter how long the filter gets.
func BuildSummaryKey(tenant, datasetVersion string, filter domain.ReportFilter) string {
	raw := datasetVersion + "|" + filter.Signature()
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s:%s", summaryKeyPrefix, tenant, hex.EncodeToString(hash[:]))
}
