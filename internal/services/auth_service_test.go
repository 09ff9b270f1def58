package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todoplus/todoplus-backend/internal/config"
	"github.com/todoplus/todoplus-backend/internal/dto"
	"github.com/todoplus/todoplus-backend/internal/models"
	"github.com/todoplus/todoplus-backend/internal/services"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *services.AuthService {
	return services.NewAuthService(db, &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Minute,
		JWTRefreshExpiry: time.Hour,
	})
}

func TestDeleteAccount_RemovesOwnedData(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	resp, err := svc.Register(&dto.RegisterRequest{Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)
	userID := resp.User.ID

	todoSvc := services.NewTodoService(db, stubChecker{})
	_, err = todoSvc.Create(userID.String(), userID, true, &dto.CreateTodoRequest{Title: "todo"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(userID, "password123"))

	var count int64
	db.Model(&models.RefreshToken{}).Where("user_id = ?", userID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Todo{}).Where("owner_id = ?", userID.String()).Count(&count)
	assert.Zero(t, count)

	var user models.User
	err = db.First(&user, "id = ?", userID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteAccount_RollsBackOnCleanupFailure(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	resp, err := svc.Register(&dto.RegisterRequest{Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)
	userID := resp.User.ID

	// Break the todo cleanup step so the delete inside the transaction fails.
	require.NoError(t, db.Exec("DROP TABLE todos").Error)

	require.Error(t, svc.DeleteAccount(userID, "password123"))

	// The whole transaction must roll back: user and tokens survive.
	var user models.User
	require.NoError(t, db.First(&user, "id = ?", userID).Error)

	var count int64
	db.Model(&models.RefreshToken{}).Where("user_id = ?", userID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDeleteAccount_WrongPassword(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	resp, err := svc.Register(&dto.RegisterRequest{Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)

	err = svc.DeleteAccount(resp.User.ID, "not-the-password")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}
