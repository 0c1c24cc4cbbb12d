package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLinkGates(t *testing.T) {
	tests := []struct {
		name        string
		link        Link
		hasGate     bool
		fullyPublic bool
	}{
		{
			name:        "public without gates",
			link:        Link{IsPublic: true},
			hasGate:     false,
			fullyPublic: true,
		},
		{
			name:        "private without gates",
			link:        Link{IsPublic: false},
			hasGate:     false,
			fullyPublic: false,
		},
		{
			name:        "public with password",
			link:        Link{IsPublic: true, Password: "$2a$10$hash"},
			hasGate:     true,
			fullyPublic: false,
		},
		{
			name:        "public with visitor fields",
			link:        Link{IsPublic: true, VisitorFields: []string{"email"}},
			hasGate:     true,
			fullyPublic: false,
		},
		{
			name:        "private with both gates",
			link:        Link{Password: "$2a$10$hash", VisitorFields: []string{"email", "name"}},
			hasGate:     true,
			fullyPublic: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.hasGate, tt.link.HasGate())
			assert.Equal(t, tt.fullyPublic, tt.link.IsFullyPublic())
		})
	}
}

func TestLinkIsExpired(t *testing.T) {
	now := time.Now()
	link := Link{ExpiresAt: now}

	assert.False(t, link.IsExpired(now.Add(-time.Second)))
	assert.False(t, link.IsExpired(now))
	assert.True(t, link.IsExpired(now.Add(time.Second)))
}
