package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/marcelarangelrhellorh/rhelloflow/pkg/domain-errors"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-key", "rhelloflow", "rhelloflow-api")

	token, err := svc.GenerateAccessToken("user-42", "Ada Admin", true, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
	assert.Equal(t, "Ada Admin", claims.DisplayName)
	assert.True(t, claims.Admin)
	assert.Equal(t, "rhelloflow", claims.Issuer)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := NewJWTService("test-key", "rhelloflow", "rhelloflow-api")

	token, err := svc.GenerateAccessToken("user-42", "", false, -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Equal(t, "token has expired", dErrors.MessageOf(err))
}

func TestJWTService_WrongKey(t *testing.T) {
	issuer := NewJWTService("key-a", "rhelloflow", "rhelloflow-api")
	verifier := NewJWTService("key-b", "rhelloflow", "rhelloflow-api")

	token, err := issuer.GenerateAccessToken("user-42", "", false, time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestJWTService_AdapterCarriesAdminFlag(t *testing.T) {
	svc := NewJWTService("test-key", "rhelloflow", "rhelloflow-api")
	adapter := NewJWTServiceAdapter(svc)

	token, err := svc.GenerateAccessToken("user-42", "Ada Admin", true, time.Hour)
	require.NoError(t, err)

	claims, err := adapter.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, claims.Admin)
	assert.Equal(t, "user-42", claims.UserID)
}
