package authgw

import (
	"testing"
	"time"

	"taskmaster/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	user := &models.User{ID: 7, Name: "Ada", Email: "ada@example.com"}

	raw, err := issuer.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := issuer.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "taskmaster-authgw", claims.Issuer)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", time.Hour)
	other := NewTokenIssuer("secret-b", time.Hour)

	raw, err := issuer.Issue(&models.User{ID: 1, Email: "a@b.c"})
	require.NoError(t, err)

	_, err = other.Verify(raw)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	raw, err := issuer.Issue(&models.User{ID: 1, Email: "a@b.c"})
	require.NoError(t, err)

	_, err = issuer.Verify(raw)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	_, err := issuer.Verify("not.a.jwt")
	assert.Error(t, err)
}
