package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	id := uuid.New()

	token, err := m.GenerateToken(id, "admin", "Admin Tobaku", "admin", []string{"product:view"})
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "Admin Tobaku", claims.Name)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, []string{"product:view"}, claims.Privileges)
}

func TestManager_WrongSecret(t *testing.T) {
	token, err := NewManager("a", time.Hour).GenerateToken(uuid.New(), "u", "n", "staff", nil)
	require.NoError(t, err)

	_, err = NewManager("b", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Expired(t *testing.T) {
	m := NewManager("s", time.Minute)
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.GenerateToken(uuid.New(), "u", "n", "staff", nil)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Missing(t *testing.T) {
	_, err := NewManager("s", time.Hour).ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}
