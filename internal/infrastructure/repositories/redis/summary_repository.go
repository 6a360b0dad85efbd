package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"streamgauge/internal/core/domain"
	"streamgauge/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisSummaryRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisSummaryRepository(client *redis.Client) ports.SummaryRepository {
	return &RedisSummaryRepository{
		client: client,
		prefix: "streamgauge:summary:",
	}
}

func (r *RedisSummaryRepository) summaryKey(id string) string {
	return r.prefix + id
}

// orderKey holds summary IDs in insertion order so List can replay them.
func (r *RedisSummaryRepository) orderKey() string {
	return r.prefix + "order"
}

func (r *RedisSummaryRepository) Save(ctx context.Context, summary *domain.SourceSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	key := r.summaryKey(summary.ID)
	created, err := r.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set summary in Redis: %w", err)
	}
	if !created {
		if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
			return fmt.Errorf("failed to update summary in Redis: %w", err)
		}
		return nil
	}

	if err := r.client.RPush(ctx, r.orderKey(), summary.ID).Err(); err != nil {
		return fmt.Errorf("failed to record summary order: %w", err)
	}
	return nil
}

func (r *RedisSummaryRepository) GetByID(ctx context.Context, id string) (*domain.SourceSummary, error) {
	data, err := r.client.Get(ctx, r.summaryKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrSummaryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary from Redis: %w", err)
	}

	var summary domain.SourceSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &summary, nil
}

func (r *RedisSummaryRepository) List(ctx context.Context) ([]*domain.SourceSummary, error) {
	ids, err := r.client.LRange(ctx, r.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list summary IDs: %w", err)
	}

	out := make([]*domain.SourceSummary, 0, len(ids))
	for _, id := range ids {
		summary, err := r.GetByID(ctx, id)
		if err == domain.ErrSummaryNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}
