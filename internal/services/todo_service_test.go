package services_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todoplus/todoplus-backend/internal/dto"
	"github.com/todoplus/todoplus-backend/internal/models"
	"github.com/todoplus/todoplus-backend/internal/services"
)

func TestToggle_ResponseMatchesStoredRow(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService(db, stubChecker{})
	ownerID := uuid.NewString()

	created, err := svc.Create(ownerID, uuid.Nil, false, &dto.CreateTodoRequest{Title: "water plants"})
	require.NoError(t, err)
	require.False(t, created.Completed)

	toggled, err := svc.Toggle(ownerID, created.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	var stored models.Todo
	require.NoError(t, db.First(&stored, "id = ?", created.ID).Error)
	assert.Equal(t, stored.Completed, toggled.Completed, "response must report the persisted state")

	back, err := svc.Toggle(ownerID, created.ID)
	require.NoError(t, err)
	assert.False(t, back.Completed)

	require.NoError(t, db.First(&stored, "id = ?", created.ID).Error)
	assert.Equal(t, stored.Completed, back.Completed)
}

func TestToggle_WrongOwner(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService(db, stubChecker{})

	created, err := svc.Create(uuid.NewString(), uuid.Nil, false, &dto.CreateTodoRequest{Title: "mine"})
	require.NoError(t, err)

	_, err = svc.Toggle(uuid.NewString(), created.ID)
	assert.ErrorIs(t, err, services.ErrTodoNotFound)
}

func TestCreate_AnonymousQuota(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService(db, stubChecker{})
	ownerID := uuid.NewString()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ownerID, uuid.Nil, false, &dto.CreateTodoRequest{Title: "todo"})
		require.NoError(t, err)
	}

	_, err := svc.Create(ownerID, uuid.Nil, false, &dto.CreateTodoRequest{Title: "one too many"})
	require.ErrorIs(t, err, services.ErrQuotaExceeded)

	var quotaErr *services.QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, "You can create 0 more todos as an unregistered user.", quotaErr.Quota.Message)
	assert.False(t, quotaErr.Quota.CanAdd)
}

func TestCreate_ProTierUnlimited(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService(db, stubChecker{active: true})
	userID := uuid.New()

	for i := 0; i < 6; i++ {
		_, err := svc.Create(userID.String(), userID, true, &dto.CreateTodoRequest{Title: "todo"})
		require.NoError(t, err)
	}

	list, err := svc.List(userID.String(), userID, true)
	require.NoError(t, err)
	assert.Len(t, list.Todos, 6)
	assert.True(t, list.Quota.CanAdd)
}
