// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapcatalog/zapcatalog-backend/internal/apperrors"
	"github.com/zapcatalog/zapcatalog-backend/internal/config"
	"github.com/zapcatalog/zapcatalog-backend/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, testConfig())

	resp, err := auth.Register(&RegisterRequest{
		Name:     "Maria Silva",
		Email:    "maria@auth.test",
		Password: "Password123",
		UserType: models.UserTypeOwner,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, models.UserTypeOwner, resp.User.UserType)

	login, err := auth.Login(&LoginRequest{Email: "maria@auth.test", Password: "Password123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, testConfig())

	req := &RegisterRequest{
		Name:     "Maria Silva",
		Email:    "dup@auth.test",
		Password: "Password123",
		UserType: models.UserTypeCustomer,
	}

	_, err := auth.Register(req)
	require.NoError(t, err)

	_, err = auth.Register(req)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, testConfig())

	_, err := auth.Register(&RegisterRequest{
		Name:     "Maria Silva",
		Email:    "wrongpw@auth.test",
		Password: "Password123",
		UserType: models.UserTypeCustomer,
	})
	require.NoError(t, err)

	_, err = auth.Login(&LoginRequest{Email: "wrongpw@auth.test", Password: "Nope12345"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindAuthorization))
}

func TestLoginSuspendedUser(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, testConfig())

	resp, err := auth.Register(&RegisterRequest{
		Name:     "Maria Silva",
		Email:    "suspended@auth.test",
		Password: "Password123",
		UserType: models.UserTypeCustomer,
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", resp.User.ID).
		Update("status", models.UserStatusSuspended).Error)

	_, err = auth.Login(&LoginRequest{Email: "suspended@auth.test", Password: "Password123"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindAuthorization))
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, testConfig())

	resp, err := auth.Register(&RegisterRequest{
		Name:     "Maria Silva",
		Email:    "refresh@auth.test",
		Password: "Password123",
		UserType: models.UserTypeOwner,
	})
	require.NoError(t, err)

	refreshed, err := auth.RefreshToken(resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.AccessToken)
}
