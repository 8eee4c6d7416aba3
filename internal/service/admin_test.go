package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminPolicy_IsAdmin(t *testing.T) {
	p := NewAdminPolicy(map[string]struct{}{"Boss@Example.com ": {}, "": {}})

	assert.True(t, p.IsAdmin("boss@example.com"))
	assert.True(t, p.IsAdmin("  BOSS@example.COM"))
	assert.False(t, p.IsAdmin("other@example.com"))
	assert.False(t, p.IsAdmin(""))
	assert.True(t, p.Configured())
}

func TestAdminPolicy_Empty(t *testing.T) {
	p := NewAdminPolicy(nil)
	assert.False(t, p.IsAdmin("boss@example.com"))
	assert.False(t, p.Configured())

	var nilPolicy *AdminPolicy
	assert.False(t, nilPolicy.IsAdmin("boss@example.com"))
}
