package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	k := &APIKey{Permissions: []string{PermAIQuery, PermProductsRead}}

	assert.True(t, k.HasPermission(PermAIQuery))
	assert.True(t, k.HasPermission(PermProductsRead))
	assert.False(t, k.HasPermission(PermAITrain))
	assert.False(t, k.HasPermission(PermAll))
}

func TestHasPermissionWildcard(t *testing.T) {
	k := &APIKey{Permissions: []string{PermAll}}

	for _, p := range ValidPermissions {
		assert.True(t, k.HasPermission(p), "wildcard should grant %s", p)
	}
}

func TestHasPermissionEmpty(t *testing.T) {
	k := &APIKey{}
	assert.False(t, k.HasPermission(PermAIQuery))
}

func TestUsable(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	live := &APIKey{IsActive: true}
	assert.True(t, live.Usable(now))

	revoked := &APIKey{IsActive: false}
	assert.False(t, revoked.Usable(now))

	expired := &APIKey{IsActive: true, ExpiresAt: &past}
	assert.False(t, expired.Usable(now))

	notYetExpired := &APIKey{IsActive: true, ExpiresAt: &future}
	assert.True(t, notYetExpired.Usable(now))

	revokedAndExpired := &APIKey{IsActive: false, ExpiresAt: &past}
	assert.False(t, revokedAndExpired.Usable(now))
}

func TestDefaultDisclaimer(t *testing.T) {
	assert.Equal(t, DisclaimerResearch, DefaultDisclaimer(ProductTypeResearch))
	assert.Equal(t, DisclaimerSupplement, DefaultDisclaimer(ProductTypeSupplement))
	assert.Equal(t, DisclaimerSupplement, DefaultDisclaimer("anything-else"))
}
