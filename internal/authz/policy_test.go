package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planlane/planlane/dao/model"
	"github.com/planlane/planlane/internal/util"
)

// fakeStore backs the policy with an in-memory membership table.
type fakeStore struct {
	members map[[2]uint]model.Role // [projectID, userID] -> role
}

func newFakeStore() *fakeStore {
	return &fakeStore{members: map[[2]uint]model.Role{}}
}

func (s *fakeStore) add(projectID, userID uint, role model.Role) {
	s.members[[2]uint{projectID, userID}] = role
}

func (s *fakeStore) Membership(_ context.Context, projectID, userID uint) (*model.ProjectMember, error) {
	role, ok := s.members[[2]uint{projectID, userID}]
	if !ok {
		return nil, nil
	}
	return &model.ProjectMember{ProjectID: projectID, UserID: userID, Role: role}, nil
}

func (s *fakeStore) AdminCount(_ context.Context, projectID, excludeUserID uint) (int64, error) {
	var count int64
	for key, role := range s.members {
		if key[0] == projectID && key[1] != excludeUserID && role == model.RoleAdmin {
			count++
		}
	}
	return count, nil
}

func platformAdmin(id uint) util.JWTMessage {
	return util.JWTMessage{UserID: id, Username: "root", Role: model.GlobalRoleAdmin}
}

func regularUser(id uint) util.JWTMessage {
	return util.JWTMessage{UserID: id, Username: "user", Role: model.GlobalRoleUser}
}

func TestCanView(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.add(1, 10, model.RoleMember)
	svc := NewService(store)

	assert.NoError(t, svc.CanView(ctx, regularUser(10), 1))
	assert.ErrorIs(t, svc.CanView(ctx, regularUser(11), 1), ErrNotMember)

	// Platform admins see every project without a membership row.
	assert.NoError(t, svc.CanView(ctx, platformAdmin(99), 1))
}

func TestRequireRole(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.add(1, 10, model.RoleMember)
	store.add(1, 11, model.RoleManager)
	store.add(1, 12, model.RoleAdmin)
	svc := NewService(store)

	assert.ErrorIs(t, svc.RequireRole(ctx, regularUser(10), 1, model.RoleAdmin), ErrRoleRequired)
	assert.NoError(t, svc.RequireRole(ctx, regularUser(12), 1, model.RoleAdmin))
	assert.ErrorIs(t, svc.RequireRole(ctx, regularUser(20), 1, model.RoleAdmin), ErrNotMember)
	assert.NoError(t, svc.RequireRole(ctx, platformAdmin(99), 1, model.RoleAdmin))
}

func TestCanManage(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.add(1, 10, model.RoleMember)
	store.add(1, 11, model.RoleManager)
	store.add(1, 12, model.RoleAdmin)
	svc := NewService(store)

	assert.ErrorIs(t, svc.CanManage(ctx, regularUser(10), 1), ErrRoleRequired)
	assert.NoError(t, svc.CanManage(ctx, regularUser(11), 1))
	assert.NoError(t, svc.CanManage(ctx, regularUser(12), 1))
}

func TestCanModerate(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.add(1, 10, model.RoleMember)
	store.add(1, 11, model.RoleManager)
	svc := NewService(store)

	// Plain members moderate their own content only.
	assert.NoError(t, svc.CanModerate(ctx, regularUser(10), 1, 10))
	assert.ErrorIs(t, svc.CanModerate(ctx, regularUser(10), 1, 11), ErrRoleRequired)

	// Managers moderate anyone's content in their project.
	assert.NoError(t, svc.CanModerate(ctx, regularUser(11), 1, 10))

	// An owner who lost project access is denied even for own content.
	assert.ErrorIs(t, svc.CanModerate(ctx, regularUser(20), 1, 20), ErrNotMember)
}

func TestEnsureOtherAdmin(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.add(1, 10, model.RoleAdmin)
	store.add(1, 11, model.RoleMember)

	// Removing the only admin is rejected.
	require.ErrorIs(t, EnsureOtherAdmin(ctx, store, 1, 10), ErrLastAdmin)

	// Removing a non-admin is always fine.
	require.NoError(t, EnsureOtherAdmin(ctx, store, 1, 11))

	// With a second admin the first one may leave.
	store.add(1, 12, model.RoleAdmin)
	require.NoError(t, EnsureOtherAdmin(ctx, store, 1, 10))
}

func TestDenied(t *testing.T) {
	assert.True(t, Denied(ErrNotMember))
	assert.True(t, Denied(ErrRoleRequired))
	assert.False(t, Denied(ErrLastAdmin))
	assert.False(t, Denied(assert.AnError))
	assert.False(t, Denied(nil))
}
