package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/utils"
)

func TestUserRoleChanges(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore()
	users := NewUserService(st, testTimeout)

	require.NoError(t, st.Users.Upsert(ctx, &models.User{ID: "admin-1", Email: "admin@example.com", Role: models.RoleAdmin}))
	require.NoError(t, st.Users.Upsert(ctx, &models.User{ID: "u-1", Email: "ana@example.com"}))

	updated, err := users.UpdateUserRole(ctx, "admin-1", "u-1", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	_, err = users.UpdateUserRole(ctx, "admin-1", "admin-1", models.RoleUser)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = users.UpdateUserRole(ctx, "admin-1", "u-1", "owner")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = users.UpdateUserRole(ctx, "admin-1", "ghost", models.RoleUser)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, users.DeleteUser(ctx, "admin-1", "admin-1"), ErrForbidden)
	require.NoError(t, users.DeleteUser(ctx, "admin-1", "u-1"))
	_, err = users.GetUserByID(ctx, "u-1")
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := st.Audit.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionDeleteUser, entries[0].Action)
	assert.Equal(t, ActionUpdateUserRole, entries[1].Action)
}

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore()
	admin := NewAdminService(st, testTimeout)

	seedProduct(st, "a", models.ProductStatusPending)
	seedProduct(st, "b", models.ProductStatusPending)
	seedProduct(st, "c", models.ProductStatusPublished)
	seedProduct(st, "d", models.ProductStatusRejected)
	require.NoError(t, st.Users.Upsert(ctx, &models.User{ID: "u-1", Email: "ana@example.com"}))

	stats, err := admin.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &models.DashboardStats{
		TotalProducts:     4,
		PendingProducts:   2,
		PublishedProducts: 1,
		RejectedProducts:  1,
		TotalUsers:        1,
	}, stats)
}

func TestSyncUserKeepsRole(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore()
	cfg := testConfig()
	auth := NewAuthService(st, cfg)

	identity := &utils.Identity{UID: "u-1", Email: "ana@example.com", Role: "admin"}
	user, err := auth.SyncUser(ctx, identity, &SyncUserRequest{DisplayName: " Ana "})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role, "role never comes from the caller")
	assert.Equal(t, "Ana", user.DisplayName)

	require.NoError(t, st.Users.SetRole(ctx, "u-1", models.RoleAdmin))
	user, err = auth.SyncUser(ctx, identity, &SyncUserRequest{DisplayName: "Ana B"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, "Ana B", user.DisplayName)

	_, err = auth.SyncUser(ctx, nil, &SyncUserRequest{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestIssueToken(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore()
	auth := NewAuthService(st, testConfig())
	require.NoError(t, st.Users.Upsert(ctx, &models.User{ID: "admin-1", Email: "admin@example.com", Role: models.RoleAdmin}))

	token, err := auth.IssueToken(ctx, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Equal(t, 3600, token.ExpiresIn)

	claims, err := utils.ValidateJWT(token.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.Identity().IsAdmin())

	_, err = auth.IssueToken(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
