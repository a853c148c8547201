package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAccessToken(t *testing.T) {
	t.Run("Cookie Preferred", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie_token"})
		// Add header as well to ensure cookie takes precedence
		req.Header.Set("Authorization", "Bearer header_token")

		token := ExtractAccessToken(req)
		assert.Equal(t, "cookie_token", token)
	})

	t.Run("Header Fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer header_token")

		token := ExtractAccessToken(req)
		assert.Equal(t, "header_token", token)
	})

	t.Run("Empty Cookie Falls Back to Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: ""})
		req.Header.Set("Authorization", "Bearer header_token")

		token := ExtractAccessToken(req)
		assert.Equal(t, "header_token", token)
	})

	t.Run("No Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		token := ExtractAccessToken(req)
		assert.Empty(t, token)
	})

	t.Run("Malformed Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic user:pass")

		token := ExtractAccessToken(req)
		assert.Empty(t, token)
	})
}

func TestIssueAndParseToken(t *testing.T) {
	secret := []byte("test-secret")
	customerID := uuid.New()

	t.Run("RoundTrip", func(t *testing.T) {
		tok, err := IssueToken(secret, customerID, RoleStaff, time.Hour)
		require.NoError(t, err)

		id, err := ParseToken(secret, tok)
		require.NoError(t, err)
		assert.Equal(t, customerID, id.CustomerID)
		assert.True(t, id.IsStaff())
	})

	t.Run("DefaultRoleIsCustomer", func(t *testing.T) {
		tok, err := IssueToken(secret, customerID, "", time.Hour)
		require.NoError(t, err)

		id, err := ParseToken(secret, tok)
		require.NoError(t, err)
		assert.Equal(t, RoleCustomer, id.Role)
		assert.False(t, id.IsStaff())
	})

	t.Run("Expired", func(t *testing.T) {
		tok, err := IssueToken(secret, customerID, RoleCustomer, -time.Minute)
		require.NoError(t, err)

		_, err = ParseToken(secret, tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		tok, err := IssueToken([]byte("other"), customerID, RoleCustomer, time.Hour)
		require.NoError(t, err)

		_, err = ParseToken(secret, tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("BadSubject", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "not-a-uuid",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString(secret)
		require.NoError(t, err)

		_, err = ParseToken(secret, tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := ParseToken(secret, "invalid-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)

	want := Identity{CustomerID: uuid.New(), Role: RoleCustomer}
	got, ok := IdentityFrom(WithIdentity(context.Background(), want))
	assert.True(t, ok)
	assert.Equal(t, want, got)
}
