package memory

import (
	"context"
	"sync"

	"streamgauge/internal/core/domain"
	"streamgauge/internal/core/ports"
)

type MemorySummaryRepository struct {
	summaries map[string]*domain.SourceSummary
	order     []string
	mu        sync.RWMutex
}

func NewMemorySummaryRepository() ports.SummaryRepository {
	return &MemorySummaryRepository{
		summaries: make(map[string]*domain.SourceSummary),
	}
}

func (r *MemorySummaryRepository) Save(ctx context.Context, summary *domain.SourceSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.summaries[summary.ID]; !exists {
		r.order = append(r.order, summary.ID)
	}
	r.summaries[summary.ID] = summary
	return nil
}

func (r *MemorySummaryRepository) GetByID(ctx context.Context, id string) (*domain.SourceSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summary, exists := r.summaries[id]
	if !exists {
		return nil, domain.ErrSummaryNotFound
	}
	return summary, nil
}

func (r *MemorySummaryRepository) List(ctx context.Context) ([]*domain.SourceSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.SourceSummary, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.summaries[id])
	}
	return out, nil
}
