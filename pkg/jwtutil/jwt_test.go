package jwtutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUtil() *JWTUtil {
	return NewJWTUtil(&JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
}

func TestGenerateAndValidateToken(t *testing.T) {
	util := testUtil()
	orgID := "org-1"

	token, err := util.GenerateToken("tech@example.com", "user-1", &orgID, "Hausverwaltung Nord", "technician")
	require.NoError(t, err)

	claims, err := util.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, "tech@example.com", claims.Email)
	assert.Equal(t, "user-1", claims.UserID)
	require.NotNil(t, claims.OrgID)
	assert.Equal(t, orgID, *claims.OrgID)
	assert.Equal(t, "Hausverwaltung Nord", claims.OrgName)
	assert.Equal(t, "technician", claims.Role)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	token, err := testUtil().GenerateToken("a@example.com", "user-1", nil, "", "customer")
	require.NoError(t, err)

	other := NewJWTUtil(&JWTConfig{SigningKey: "different-key", ExpirationHours: 1})
	_, err = other.ValidateToken(token)

	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := testUtil().ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestTokenWithoutOrganization(t *testing.T) {
	util := testUtil()

	token, err := util.GenerateToken("new@example.com", "user-2", nil, "", "customer")
	require.NoError(t, err)

	claims, err := util.ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.OrgID)
}
