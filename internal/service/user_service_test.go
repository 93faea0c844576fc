package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/internal/domain"
)

func newUserFixture() (*UserService, *fakeUserRepo, *recordingEvictor) {
	users := newFakeUserRepo()
	ev := &recordingEvictor{}
	svc := NewUserService(users, &fakeRoleRepo{}, testHasher, nil).WithEvictor(ev)
	return svc, users, ev
}

func Test_UserService_SaveHashesAndAssignsUserRole(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newUserFixture()

	v, err := svc.Save(ctx, AccountData{Username: "ann", Name: "Ann", Email: "ann@example.org", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, UserView{Username: "ann", Name: "Ann", Email: "ann@example.org", ID: v.ID}, v)

	stored, err := users.FindByID(ctx, v.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", stored.PasswordHash)
	assert.True(t, testHasher.Verify("pw1", stored.PasswordHash))
	assert.Equal(t, []string{domain.RoleUser}, stored.RoleNames())
}

func Test_UserService_ShowAndFindAll(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newUserFixture()
	users.add(domain.User{ID: 5, Username: "ann", Email: "a@x", PasswordHash: "h"})

	v, err := svc.ShowByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "ann", v.Username)

	_, err = svc.ShowByID(ctx, 6)
	assert.ErrorIs(t, err, domain.ErrElementNotFound)

	all, err := svc.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func Test_UserService_UpdateOverwritesAllFields(t *testing.T) {
	ctx := context.Background()
	svc, users, ev := newUserFixture()
	created, err := svc.Save(ctx, AccountData{Username: "ann", Name: "Ann", Email: "ann@example.org", Password: "old"})
	require.NoError(t, err)
	ev.forgotten = nil

	err = svc.Update(ctx, created.ID, AccountData{Username: "anna", Name: "", Email: "anna@example.org", Password: "new"})
	require.NoError(t, err)

	u, err := users.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "anna", u.Username)
	assert.Equal(t, "", u.Name)
	assert.Equal(t, "anna@example.org", u.Email)
	assert.True(t, testHasher.Verify("new", u.PasswordHash))
	assert.False(t, testHasher.Verify("old", u.PasswordHash))
	assert.Equal(t, []string{domain.RoleUser}, u.RoleNames())
	assert.Equal(t, []string{"ann", "anna"}, ev.forgotten)
}

func Test_UserService_UpdateMissing(t *testing.T) {
	svc, _, _ := newUserFixture()
	err := svc.Update(context.Background(), 42, AccountData{Username: "x", Email: "x", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrElementNotFound)
}

func Test_UserService_DeleteByID(t *testing.T) {
	ctx := context.Background()
	svc, users, ev := newUserFixture()
	users.add(domain.User{ID: 3, Username: "bob"})

	assert.ErrorIs(t, svc.DeleteByID(ctx, 4), domain.ErrElementNotFound)

	require.NoError(t, svc.DeleteByID(ctx, 3))
	_, err := svc.ShowByID(ctx, 3)
	assert.ErrorIs(t, err, domain.ErrElementNotFound)
	assert.Contains(t, ev.forgotten, "bob")
}

func Test_UserService_SavePropagatesDuplicate(t *testing.T) {
	svc, users, _ := newUserFixture()
	users.saveErr = domain.ErrAlreadyExists

	_, err := svc.Save(context.Background(), AccountData{Username: "ann", Email: "a@x", Password: "pw"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func Test_UserService_GrantRoleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newUserFixture()
	users.add(domain.User{ID: 1, Username: "root"})

	require.NoError(t, svc.GrantRole(ctx, 1, domain.RoleAdmin))
	require.NoError(t, svc.GrantRole(ctx, 1, domain.RoleAdmin))

	u, _ := users.FindByID(ctx, 1)
	assert.Equal(t, []string{domain.RoleAdmin}, u.RoleNames())
	assert.ErrorIs(t, svc.GrantRole(ctx, 2, domain.RoleAdmin), domain.ErrElementNotFound)
}
