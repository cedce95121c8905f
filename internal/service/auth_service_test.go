package service

import (
	"testing"

	"github.com/paper-trader/internal/config"
	"github.com/paper-trader/internal/models"
	"github.com/paper-trader/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := setupDB(t)
	svc := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewSettingsRepository(db),
		config.JWTConfig{Secret: "test-secret", ExpireHours: 1},
	)
	return svc, db
}

func TestRegister_ProvisionsDefaultSettings(t *testing.T) {
	svc, db := newAuthService(t)

	user, err := svc.Register(&RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	var settings models.UserSettings
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&settings).Error)
	assert.True(t, settings.PaperBalanceUSDT.Equal(models.DefaultPaperBalance))
	assert.True(t, settings.PaperTradingMode)
	assert.True(t, settings.UseTestnet)
}

func TestRegister_DuplicateIdentifiers(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(&RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(&RegisterRequest{Username: "bob", Email: "other@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Register(&RegisterRequest{Username: "carol", Email: "bob@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginAndValidateToken(t *testing.T) {
	svc, _ := newAuthService(t)

	user, err := svc.Register(&RegisterRequest{Username: "dave", Email: "dave@example.com", Password: "secret123"})
	require.NoError(t, err)

	token, err := svc.Login(&LoginRequest{Username: "dave", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)

	claims, err := svc.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "dave", claims.Username)

	// Email works as the login identifier too.
	_, err = svc.Login(&LoginRequest{Username: "dave@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(&LoginRequest{Username: "dave", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(&RegisterRequest{Username: "erin", Email: "erin@example.com", Password: "secret123"})
	require.NoError(t, err)

	token, err := svc.Login(&LoginRequest{Username: "erin", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(token.AccessToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.RefreshToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
