package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counseldesk/counseldesk/internal/counselsrv/config"
	"github.com/counseldesk/counseldesk/pkg/types"
)

func init() {
	config.TestInit()
}

func TestTokenRoundTrip(t *testing.T) {
	ctx := context.Background()

	signed, expiresAt, err := CreateToken(ctx, "user-1", "TACME1", false)
	require.Nil(t, err)
	require.NotEmpty(t, signed)
	assert.False(t, expiresAt.IsZero())

	principal, err := ValidateToken(ctx, signed)
	require.Nil(t, err)
	assert.Equal(t, types.UserId("user-1"), principal.UserID)
	assert.Equal(t, types.TenantId("TACME1"), principal.TenantID)
	assert.False(t, principal.Elevated)
}

func TestElevatedToken(t *testing.T) {
	ctx := context.Background()

	signed, _, err := CreateToken(ctx, "ops-1", "", true)
	require.Nil(t, err)

	principal, err := ValidateToken(ctx, signed)
	require.Nil(t, err)
	assert.True(t, principal.Elevated)
	assert.True(t, principal.TenantID.IsNil())
}

func TestValidateRejectsGarbage(t *testing.T) {
	ctx := context.Background()

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := ValidateToken(ctx, tok)
		require.NotNil(t, err, "token %q", tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	ctx := context.Background()

	signed, _, err := CreateToken(ctx, "user-1", "TACME1", false)
	require.Nil(t, err)

	tampered := signed[:len(signed)-4] + "AAAA"
	_, err = ValidateToken(ctx, tampered)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-passphrase")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := VerifyPassword("s3cret-passphrase", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong-passphrase", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	_, err := VerifyPassword("anything", "not-an-encoded-hash")
	assert.Error(t, err)
}
