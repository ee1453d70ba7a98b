package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager(TokenConfig{Secret: []byte("secret")})

	token, err := m.GenerateAccessToken("admin")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "packadmin", claims.Issuer)
}

func TestTokenRejectsOtherSecret(t *testing.T) {
	token, err := NewManager(TokenConfig{Secret: []byte("one")}).GenerateAccessToken("admin")
	require.NoError(t, err)

	_, err = NewManager(TokenConfig{Secret: []byte("two")}).ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewManager(TokenConfig{Secret: []byte("one")}).ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpires(t *testing.T) {
	m := NewManager(TokenConfig{Secret: []byte("secret"), AccessTTL: time.Minute})
	issued := time.Now()
	m.now = func() time.Time { return issued }

	token, err := m.GenerateAccessToken("admin")
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
