package domain

import "time"

const (
	// MinScore means "not rated" and is ignored by every average.
	MinScore = 0
	MaxScore = 5

	// MaxNotesLength bounds the free-text notes on one answer, in characters.
	MaxNotesLength = 2000

	// AnonymousKey is the identity key of reviews with no usable email.
	AnonymousKey = "anonymous"
)

// Answer is the score a review gives to one question.
type Answer struct {
	ID         string    `json:"id"`
	ReviewID   string    `json:"review_id"`
	QuestionID string    `json:"question_id"`
	Score      int       `json:"score"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Question   *Question `json:"question,omitempty"`
}

// Review is one user's set of answers about an address.
type Review struct {
	ID          string    `json:"id"`
	AddressID   string    `json:"address_id"`
	UserID      *string   `json:"user_id,omitempty"`
	UserEmail   *string   `json:"user_email,omitempty"`
	IsAnonymous bool      `json:"is_anonymous"`
	CreatedAt   time.Time `json:"created_at"`
	Answers     []Answer  `json:"answers"`
	Address     *Address  `json:"address,omitempty"`
}

// IdentityKey returns the email a review is attributed to, or AnonymousKey
// when the review is anonymous or carries no email.
func (r Review) IdentityKey() string {
	if r.IsAnonymous || r.UserEmail == nil || *r.UserEmail == "" {
		return AnonymousKey
	}
	return *r.UserEmail
}

// Redacted returns a copy of r without user id and email when r is anonymous.
func (r Review) Redacted() Review {
	if r.IsAnonymous {
		r.UserID = nil
		r.UserEmail = nil
	}
	return r
}

// OwnedBy reports whether the review belongs to the given user id or email.
func (r Review) OwnedBy(userID, email string) bool {
	if userID != "" && r.UserID != nil && *r.UserID == userID {
		return true
	}
	return email != "" && r.UserEmail != nil && *r.UserEmail == email
}

// ScoredReview is a review with its computed average score.
type ScoredReview struct {
	Review
	AverageScore float64 `json:"average_score"`
}

// Rating is the aggregate over a set of scored reviews.
type Rating struct {
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// Summary is the deduplicated, scored view of an address's reviews.
type Summary struct {
	Reviews []ScoredReview `json:"reviews"`
	Rating
}
