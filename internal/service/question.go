package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/neighborly/internal/domain"
	"github.com/utafrali/neighborly/internal/event"
	"github.com/utafrali/neighborly/internal/repository"
	apperrors "github.com/utafrali/neighborly/pkg/errors"
)

// QuestionEvents publishes question catalog changes.
type QuestionEvents interface {
	PublishQuestionChanged(ctx context.Context, q *domain.Question, action string) error
}

// QuestionInput holds the editable fields of a question. A nil IsActive
// means active.
type QuestionInput struct {
	Text        string
	Description *string
	Category    string
	IsActive    *bool
}

// DeleteQuestionResult reports what Delete did. Questions that already have
// answers are deactivated instead of removed.
type DeleteQuestionResult struct {
	Question    *domain.Question `json:"question,omitempty"`
	Deactivated bool             `json:"deactivated"`
	Message     string           `json:"message"`
}

// QuestionService implements the question catalog.
type QuestionService struct {
	repo   repository.QuestionRepository
	events QuestionEvents
	logger *slog.Logger
	now    func() time.Time
}

// NewQuestionService creates a new question service.
func NewQuestionService(repo repository.QuestionRepository, events QuestionEvents, logger *slog.Logger) *QuestionService {
	return &QuestionService{
		repo:   repo,
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ListActive returns the questions shown on the review form.
func (s *QuestionService) ListActive(ctx context.Context) ([]domain.Question, error) {
	questions, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active questions: %w", err)
	}
	return questions, nil
}

// List returns every question, active or not.
func (s *QuestionService) List(ctx context.Context) ([]domain.Question, error) {
	questions, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// Get retrieves a question by its ID.
func (s *QuestionService) Get(ctx context.Context, id string) (*domain.Question, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get question by id: %w", err)
	}
	return q, nil
}

// Create adds a question to the catalog.
func (s *QuestionService) Create(ctx context.Context, input *QuestionInput) (*domain.Question, error) {
	if err := validateQuestion(input); err != nil {
		return nil, err
	}

	now := s.now()
	q := &domain.Question{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyQuestion(q, input)

	if err := s.repo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	s.publish(ctx, q, event.QuestionCreated)
	s.logger.InfoContext(ctx, "question created",
		slog.String("question_id", q.ID),
		slog.String("category", q.Category),
	)
	return q, nil
}

// Update replaces the editable fields of a question.
func (s *QuestionService) Update(ctx context.Context, id string, input *QuestionInput) (*domain.Question, error) {
	if err := validateQuestion(input); err != nil {
		return nil, err
	}

	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get question by id: %w", err)
	}

	applyQuestion(q, input)
	q.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, q); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}

	s.publish(ctx, q, event.QuestionUpdated)
	s.logger.InfoContext(ctx, "question updated", slog.String("question_id", q.ID))
	return q, nil
}

// Delete removes a question, or deactivates it when answers reference it.
func (s *QuestionService) Delete(ctx context.Context, id string) (*DeleteQuestionResult, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get question by id: %w", err)
	}

	answers, err := s.repo.CountAnswers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count answers: %w", err)
	}

	if answers > 0 {
		q.IsActive = false
		q.UpdatedAt = s.now()
		if err := s.repo.Update(ctx, q); err != nil {
			return nil, fmt.Errorf("deactivate question: %w", err)
		}
		s.publish(ctx, q, event.QuestionDeactivated)
		s.logger.InfoContext(ctx, "question deactivated",
			slog.String("question_id", id),
			slog.Int("answers", answers),
		)
		return &DeleteQuestionResult{
			Question:    q,
			Deactivated: true,
			Message:     "question has existing answers and was deactivated instead of deleted",
		}, nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete question: %w", err)
	}
	s.publish(ctx, q, event.QuestionDeleted)
	s.logger.InfoContext(ctx, "question deleted", slog.String("question_id", id))
	return &DeleteQuestionResult{Message: "question deleted"}, nil
}

func (s *QuestionService) publish(ctx context.Context, q *domain.Question, action string) {
	if err := s.events.PublishQuestionChanged(ctx, q, action); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish question.changed event",
			slog.String("question_id", q.ID),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}

func validateQuestion(input *QuestionInput) error {
	if strings.TrimSpace(input.Text) == "" || strings.TrimSpace(input.Category) == "" {
		return apperrors.InvalidInput("question text and category are required")
	}
	if !domain.IsValidCategory(input.Category) {
		return apperrors.InvalidInput(fmt.Sprintf("invalid category %q, must be one of: %s", input.Category, strings.Join(domain.ValidCategories(), ", ")))
	}
	return nil
}

func applyQuestion(q *domain.Question, input *QuestionInput) {
	q.Text = strings.TrimSpace(input.Text)
	q.Category = input.Category
	q.Description = nil
	if input.Description != nil {
		if d := strings.TrimSpace(*input.Description); d != "" {
			q.Description = &d
		}
	}
	q.IsActive = input.IsActive == nil || *input.IsActive
}
