package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

func TestManager_IssueAndParse(t *testing.T) {
	m := NewManager("0123456789abcdef", time.Hour)

	raw, issued, err := m.Issue("user-1", "ADMIN", Counts{Orders: 2, LowStock: 5})
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "ADMIN", claims.Role)
	require.Equal(t, Counts{Orders: 2, LowStock: 5}, claims.Counts)
	require.Equal(t, issued.ExpiresAt.Unix(), claims.ExpiresAt.Unix())
	require.False(t, m.ExpiresWithin(claims, 5*time.Minute))
	require.True(t, m.ExpiresWithin(claims, 2*time.Hour))
}

func TestManager_ParseRejects(t *testing.T) {
	m := NewManager("0123456789abcdef", time.Hour)

	t.Run("empty", func(t *testing.T) {
		_, err := m.Parse("")
		require.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewManager("another-secret-value", time.Hour)
		raw, _, err := other.Issue("user-1", "USER", Counts{})
		require.NoError(t, err)
		_, err = m.Parse(raw)
		require.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewManager("0123456789abcdef", time.Hour)
		expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		raw, _, err := expired.Issue("user-1", "USER", Counts{})
		require.NoError(t, err)
		_, err = m.Parse(raw)
		require.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("none algorithm", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Parse(raw)
		require.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not.a.token")
		require.ErrorIs(t, err, ErrInvalid)
	})
}
