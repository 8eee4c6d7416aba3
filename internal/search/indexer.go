package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/neighborly/internal/domain"
)

// AddressReader loads the address being reindexed.
type AddressReader interface {
	GetByID(ctx context.Context, id string) (*domain.Address, error)
}

// ReviewLister lists the reviews stored for an address.
type ReviewLister interface {
	ListByAddress(ctx context.Context, addressID string) ([]domain.Review, error)
}

// Writer is the write side of the index.
type Writer interface {
	Upsert(ctx context.Context, doc Document) error
	Delete(ctx context.Context, id string) error
}

// Indexer refreshes one address document from the database.
type Indexer struct {
	addresses AddressReader
	reviews   ReviewLister
	index     Writer
	logger    *slog.Logger
	now       func() time.Time
}

// NewIndexer creates an indexer writing to index.
func NewIndexer(addresses AddressReader, reviews ReviewLister, index Writer, logger *slog.Logger) *Indexer {
	return &Indexer{
		addresses: addresses,
		reviews:   reviews,
		index:     index,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Reindex writes the current review count of addressID to the index, or
// removes the address once it has no reviews left.
func (i *Indexer) Reindex(ctx context.Context, addressID string) error {
	reviews, err := i.reviews.ListByAddress(ctx, addressID)
	if err != nil {
		return fmt.Errorf("list reviews for address %s: %w", addressID, err)
	}
	if len(reviews) == 0 {
		return i.index.Delete(ctx, addressID)
	}

	address, err := i.addresses.GetByID(ctx, addressID)
	if err != nil {
		return fmt.Errorf("load address %s: %w", addressID, err)
	}

	if err := i.index.Upsert(ctx, NewDocument(address, len(reviews), i.now())); err != nil {
		return err
	}
	i.logger.DebugContext(ctx, "address reindexed",
		slog.String("address_id", addressID),
		slog.Int("review_count", len(reviews)),
	)
	return nil
}
