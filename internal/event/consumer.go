package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/utafrali/neighborly/pkg/kafka"
)

// SummaryInvalidator drops cached address summaries.
type SummaryInvalidator interface {
	Invalidate(ctx context.Context, addressIDs ...string) error
}

// AddressIndexer refreshes an address in the search index.
type AddressIndexer interface {
	Reindex(ctx context.Context, addressID string) error
}

// Projector keeps derived address state in step with review events.
type Projector struct {
	cache   SummaryInvalidator
	indexer AddressIndexer
	logger  *slog.Logger
}

// NewProjector creates a projector that invalidates cached summaries and,
// when indexer is non-nil, reindexes the address.
func NewProjector(cache SummaryInvalidator, indexer AddressIndexer, logger *slog.Logger) *Projector {
	return &Projector{
		cache:   cache,
		indexer: indexer,
		logger:  logger,
	}
}

// Topics returns the topics the projector consumes.
func (p *Projector) Topics() []string {
	return []string{TopicReviewCreated, TopicReviewDeleted}
}

// Handle dispatches an event by type. Unknown types are ignored.
func (p *Projector) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case "review.created":
		var data ReviewCreatedData
		if err := event.Decode(&data); err != nil {
			return err
		}
		return p.project(ctx, event.EventType, data.ID, data.AddressID)
	case "review.deleted":
		var data ReviewDeletedData
		if err := event.Decode(&data); err != nil {
			return err
		}
		return p.project(ctx, event.EventType, data.ID, data.AddressID)
	default:
		p.logger.DebugContext(ctx, "ignoring event", slog.String("event_type", event.EventType))
		return nil
	}
}

func (p *Projector) project(ctx context.Context, eventType, reviewID, addressID string) error {
	if addressID == "" {
		return fmt.Errorf("%s event %s has no address_id", eventType, reviewID)
	}
	if err := p.cache.Invalidate(ctx, addressID); err != nil {
		return fmt.Errorf("invalidate summary for address %s: %w", addressID, err)
	}

	if p.indexer != nil {
		if err := p.indexer.Reindex(ctx, addressID); err != nil {
			return fmt.Errorf("reindex address %s: %w", addressID, err)
		}
	}

	p.logger.InfoContext(ctx, "address projection refreshed",
		slog.String("event_type", eventType),
		slog.String("review_id", reviewID),
		slog.String("address_id", addressID),
	)
	return nil
}
