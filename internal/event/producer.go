package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/utafrali/neighborly/pkg/kafka"

	"github.com/utafrali/neighborly/internal/domain"
)

// Aggregate type constants.
const (
	AggregateTypeReview   = "review"
	AggregateTypeQuestion = "question"
)

// Kafka topic constants for review service events.
var (
	TopicReviewCreated   = pkgkafka.Topic(AggregateTypeReview, "created")
	TopicReviewDeleted   = pkgkafka.Topic(AggregateTypeReview, "deleted")
	TopicQuestionChanged = pkgkafka.Topic(AggregateTypeQuestion, "changed")
)

// Source identifier for events originating from the review service.
const SourceReviewService = "review-service"

// Question change actions.
const (
	QuestionCreated     = "created"
	QuestionUpdated     = "updated"
	QuestionDeactivated = "deactivated"
	QuestionDeleted     = "deleted"
)

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ID           string  `json:"id"`
	AddressID    string  `json:"address_id"`
	UserID       *string `json:"user_id,omitempty"`
	IsAnonymous  bool    `json:"is_anonymous"`
	AnswerCount  int     `json:"answer_count"`
	AverageScore float64 `json:"average_score"`
}

// ReviewDeletedData is the payload for a review.deleted event.
type ReviewDeletedData struct {
	ID        string `json:"id"`
	AddressID string `json:"address_id"`
	DeletedBy string `json:"deleted_by"`
}

// QuestionChangedData is the payload for a question.changed event.
type QuestionChangedData struct {
	ID       string `json:"id"`
	Action   string `json:"action"`
	Category string `json:"category"`
	IsActive bool   `json:"is_active"`
}

type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes review service events to Kafka.
type Producer struct {
	kafka  publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the review service.
func NewProducer(kafka publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateType, aggregateID string, data any) error {
	event, err := pkgkafka.NewEvent(ctx, eventType, aggregateType, aggregateID, SourceReviewService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("event_type", eventType),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

// PublishReviewCreated publishes a review.created event. Anonymous reviews
// carry no user id.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.ScoredReview) error {
	data := ReviewCreatedData{
		ID:           review.ID,
		AddressID:    review.AddressID,
		IsAnonymous:  review.IsAnonymous,
		AnswerCount:  len(review.Answers),
		AverageScore: review.AverageScore,
	}
	if !review.IsAnonymous {
		data.UserID = review.UserID
	}
	return p.publish(ctx, TopicReviewCreated, "review.created", AggregateTypeReview, review.ID, data)
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, review *domain.Review, deletedBy string) error {
	data := ReviewDeletedData{
		ID:        review.ID,
		AddressID: review.AddressID,
		DeletedBy: deletedBy,
	}
	return p.publish(ctx, TopicReviewDeleted, "review.deleted", AggregateTypeReview, review.ID, data)
}

// PublishQuestionChanged publishes a question.changed event.
func (p *Producer) PublishQuestionChanged(ctx context.Context, q *domain.Question, action string) error {
	data := QuestionChangedData{
		ID:       q.ID,
		Action:   action,
		Category: q.Category,
		IsActive: q.IsActive,
	}
	return p.publish(ctx, TopicQuestionChanged, "question.changed", AggregateTypeQuestion, q.ID, data)
}
