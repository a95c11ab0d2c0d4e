package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")
	actor := user.Actor{ID: "u-1", Name: "Asha", Role: user.RoleEmployee}

	token, expiresAt, err := svc.GenerateAccessToken(actor)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, claims["type"])

	got, err := ActorFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestGenerateAccessToken_InvalidDuration(t *testing.T) {
	svc := NewJWTService("test-secret", "forever")
	_, _, err := svc.GenerateAccessToken(user.Actor{ID: "u-1", Role: user.RoleEmployee})
	assert.Error(t, err)
}

func TestSSEToken(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")
	actor := user.Actor{ID: "u-2", Name: "Ravi", Role: user.RoleAdmin}

	token, expiresIn, err := svc.GenerateSSEToken(actor)
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	got, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor, got)

	access, _, err := svc.GenerateAccessToken(actor)
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(access)
	assert.Error(t, err, "access tokens are not accepted on the stream")
}

func TestSSEToken_Expired(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := svc.GenerateSSEToken(user.Actor{ID: "u-1", Role: user.RoleEmployee})
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestActorFromClaims(t *testing.T) {
	tests := []struct {
		name    string
		claims  map[string]interface{}
		wantErr error
	}{
		{"missing user", map[string]interface{}{"role": "admin"}, ErrInvalidClaims},
		{"unknown role", map[string]interface{}{"user_id": "u-1", "role": "owner"}, user.ErrInvalidRole},
		{"missing role", map[string]interface{}{"user_id": "u-1"}, user.ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ActorFromClaims(tt.claims)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
