package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

// ============================================================================
// Review Tests
// ============================================================================

func TestReview_IdentityKey(t *testing.T) {
	tests := []struct {
		name   string
		review Review
		want   string
	}{
		{"email", Review{UserEmail: strPtr("a@x.com")}, "a@x.com"},
		{"no email", Review{}, AnonymousKey},
		{"empty email", Review{UserEmail: strPtr("")}, AnonymousKey},
		{"anonymous with email", Review{UserEmail: strPtr("a@x.com"), IsAnonymous: true}, AnonymousKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.review.IdentityKey())
		})
	}
}

func TestReview_Redacted(t *testing.T) {
	r := Review{ID: "r1", UserID: strPtr("u1"), UserEmail: strPtr("a@x.com"), IsAnonymous: true}
	red := r.Redacted()

	assert.Nil(t, red.UserID)
	assert.Nil(t, red.UserEmail)
	assert.Equal(t, "r1", red.ID)
	// original untouched
	assert.NotNil(t, r.UserEmail)
}

func TestReview_Redacted_NotAnonymous(t *testing.T) {
	r := Review{UserID: strPtr("u1"), UserEmail: strPtr("a@x.com")}
	red := r.Redacted()
	assert.Equal(t, "u1", *red.UserID)
	assert.Equal(t, "a@x.com", *red.UserEmail)
}

func TestReview_OwnedBy(t *testing.T) {
	r := Review{UserID: strPtr("u1"), UserEmail: strPtr("a@x.com")}

	assert.True(t, r.OwnedBy("u1", ""))
	assert.True(t, r.OwnedBy("other", "a@x.com"))
	assert.False(t, r.OwnedBy("other", "b@x.com"))
	assert.False(t, r.OwnedBy("", ""))
	assert.False(t, Review{}.OwnedBy("u1", "a@x.com"))
}

// ============================================================================
// Address Tests
// ============================================================================

func TestFormatAddress(t *testing.T) {
	got := FormatAddress(" 12 Main St ", "Springfield", "IL", "62701")
	assert.Equal(t, "12 main st, springfield, il 62701", got)
}

func TestFormatAddress_Unicode(t *testing.T) {
	assert.Equal(t, "1 straße, münchen, by 80331", FormatAddress("1 Straße", "MÜNCHEN", "BY", "80331"))
}

func TestFormatAddress_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = FormatAddress("1 Straße", "MÜNCHEN", "BY", "80331")
		}()
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, "1 straße, münchen, by 80331", got)
	}
}

// ============================================================================
// Question Tests
// ============================================================================

func TestIsValidCategory(t *testing.T) {
	for _, c := range ValidCategories() {
		assert.True(t, IsValidCategory(c), "expected %q to be valid", c)
	}
	assert.False(t, IsValidCategory("Safety"))
	assert.False(t, IsValidCategory(""))
}

// ============================================================================
// Dashboard Tests
// ============================================================================

func TestTrendOf(t *testing.T) {
	assert.Equal(t, TrendStable, TrendOf(3.0, 3.05))
	assert.Equal(t, TrendStable, TrendOf(3.05, 3.0))
	assert.Equal(t, TrendUp, TrendOf(3.0, 3.2))
	assert.Equal(t, TrendDown, TrendOf(3.2, 3.0))
	assert.Equal(t, TrendUp, TrendOf(0, 4))
}

func TestGrowthRate(t *testing.T) {
	assert.Equal(t, 100, GrowthRate(0, 5))
	assert.Equal(t, 100, GrowthRate(0, 0))
	assert.Equal(t, 50, GrowthRate(10, 15))
	assert.Equal(t, -50, GrowthRate(10, 5))
	assert.Equal(t, 33, GrowthRate(3, 4))
	assert.Equal(t, 0, GrowthRate(4, 4))
}
