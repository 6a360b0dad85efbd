package ports

import (
	"context"

	"streamgauge/internal/core/domain"
)

type SummaryRepository interface {
	Save(ctx context.Context, summary *domain.SourceSummary) error
	GetByID(ctx context.Context, id string) (*domain.SourceSummary, error)
	// List returns stored summaries in insertion order.
	List(ctx context.Context) ([]*domain.SourceSummary, error)
}
