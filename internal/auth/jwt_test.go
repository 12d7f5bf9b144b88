package auth_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watify-backend/internal/auth"
	"watify-backend/internal/models"
)

func TestGenerateToken(t *testing.T) {
	secret := "clave-de-prueba-para-tokens-000000"
	user := &models.User{ID: 7, Name: "ch1", Role: models.RoleChofer}

	tokenStr, err := auth.GenerateToken(secret, user)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	claims := &auth.JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "ch1", claims.Name)
	assert.Equal(t, models.RoleChofer, claims.Role)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt.Time))
}

func TestGenerateTokenFirmaIncorrecta(t *testing.T) {
	user := &models.User{ID: 1, Name: "david", Role: models.RoleAdmin}

	tokenStr, err := auth.GenerateToken("secreto-correcto-de-treintaydos-car", user)
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(tokenStr, &auth.JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte("otro-secreto-distinto-de-treintaydos"), nil
	})
	assert.Error(t, err)
}
