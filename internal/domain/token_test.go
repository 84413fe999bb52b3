package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenValidate(t *testing.T) {
	valid := Token{RegistrationID: "reg-1", EventID: "event-123", UserID: "user-123", IssuedAt: 0}
	require.NoError(t, valid.Validate())

	cases := map[string]Token{
		"registration": {EventID: "e", UserID: "u"},
		"event":        {RegistrationID: "r", UserID: "u"},
		"user":         {RegistrationID: "r", EventID: "e", IssuedAt: 5},
		"blank":        {RegistrationID: "  ", EventID: "e", UserID: "u"},
		"negative":     {RegistrationID: "r", EventID: "e", UserID: "u", IssuedAt: -1},
		"beyond json":  {RegistrationID: "r", EventID: "e", UserID: "u", IssuedAt: MaxIssuedAt + 1},
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, tok.Validate(), ErrMalformedToken)
		})
	}
}

func TestTokenExpiryBoundary(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	window := DefaultTokenValidity

	fresh := Token{IssuedAt: now.UnixMilli() - window.Milliseconds() + 1}
	assert.False(t, fresh.Expired(now, window))

	edge := Token{IssuedAt: now.UnixMilli() - window.Milliseconds()}
	assert.True(t, edge.Expired(now, window))

	old := Token{IssuedAt: now.Add(-25 * time.Hour).UnixMilli()}
	assert.True(t, old.Expired(now, window))

	assert.True(t, edge.ExpiresAt(window).Equal(now))
	assert.True(t, edge.IssuedTime().Equal(now.Add(-window)))
}
