package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/testutil"
)

func TestAuditLogRepositoryListFiltersAndOrders(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewAuditLogRepository(db)
	ctx := context.Background()

	actor := testutil.CreateUser(t, db, models.RoleRegistrar)
	now := time.Now()

	older := models.AuditLog{Entity: "Student", Action: models.AuditActionUpdate, UserID: &actor.ID, Details: datatypes.JSONMap{"method": "PATCH"}, CreatedAt: now.Add(-time.Hour)}
	newer := models.AuditLog{Entity: "Student", Action: models.AuditActionCreate, UserID: &actor.ID, Details: datatypes.JSONMap{"method": "POST"}, CreatedAt: now}
	other := models.AuditLog{Entity: "Enrollment", Action: models.AuditActionDelete, Details: datatypes.JSONMap{}, CreatedAt: now.Add(-time.Minute)}
	require.NoError(t, repo.Create(ctx, &older))
	require.NoError(t, repo.Create(ctx, &newer))
	require.NoError(t, repo.Create(ctx, &other))

	items, total, err := repo.List(ctx, AuditLogFilter{Entity: "stud", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Equal(t, newer.ID, items[0].ID, "expected newest record first")
	require.NotNil(t, items[0].User)
	require.Equal(t, actor.Username, items[0].User.Username)

	items, total, err = repo.List(ctx, AuditLogFilter{Action: models.AuditActionDelete})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Enrollment", items[0].Entity)

	_, total, err = repo.List(ctx, AuditLogFilter{UserID: actor.ID, Page: 2, PageSize: 1})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)

	fetched, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	require.Equal(t, "PATCH", fetched.Details["method"])

	require.NoError(t, repo.Delete(ctx, older.ID))
	err = repo.Delete(ctx, older.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
