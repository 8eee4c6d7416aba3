package domain

import (
	"math"
	"time"
)

// RatingTrend compares the average answer score of the last month with the
// month before.
type RatingTrend string

const (
	TrendUp     RatingTrend = "up"
	TrendDown   RatingTrend = "down"
	TrendStable RatingTrend = "stable"
)

// TrendBand is the absolute difference below which a trend is stable.
const TrendBand = 0.1

// TrendOf classifies the change from previous to current.
func TrendOf(previous, current float64) RatingTrend {
	diff := current - previous
	switch {
	case diff > -TrendBand && diff < TrendBand:
		return TrendStable
	case diff > 0:
		return TrendUp
	default:
		return TrendDown
	}
}

// GrowthRate is the percentage change from previous to current, rounded to
// the nearest integer. With no previous activity it is 100.
func GrowthRate(previous, current int) int {
	if previous <= 0 {
		return 100
	}
	return int(math.Round(float64(current-previous) / float64(previous) * 100))
}

// DashboardStats are the headline numbers of the admin dashboard.
type DashboardStats struct {
	TotalReviews          int         `json:"total_reviews"`
	ReviewGrowthRate      int         `json:"review_growth_rate"`
	TotalUsers            int         `json:"total_users"`
	UserGrowthRate        int         `json:"user_growth_rate"`
	AverageRating         float64     `json:"average_rating"`
	RatingTrend           RatingTrend `json:"rating_trend"`
	ActiveQuestions       int         `json:"active_questions"`
	NewQuestionsThisMonth int         `json:"new_questions_this_month"`
}

// LatestUser is the most recent reviewer.
type LatestUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// RecentActivity lists the newest review, reviewer and question.
type RecentActivity struct {
	LatestReview   *ScoredReview `json:"latest_review"`
	LatestUser     *LatestUser   `json:"latest_user"`
	LatestQuestion *Question     `json:"latest_question"`
}

// TopAddress is one of the best rated addresses on the dashboard.
type TopAddress struct {
	ID            string         `json:"id"`
	Address       string         `json:"address"`
	City          string         `json:"city"`
	ReviewCount   int            `json:"review_count"`
	AverageRating float64        `json:"average_rating"`
	Reviews       []ScoredReview `json:"reviews"`
}

// Dashboard is the admin dashboard payload.
type Dashboard struct {
	Statistics     DashboardStats `json:"statistics"`
	RecentActivity RecentActivity `json:"recent_activity"`
	TopAddresses   []TopAddress   `json:"top_addresses"`
}
