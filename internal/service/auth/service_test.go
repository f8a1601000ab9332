package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dairyherd/internal/config"
	"dairyherd/internal/domain/apperr"
	"dairyherd/internal/domain/models"
)

type fakeRepo struct {
	users map[string]*models.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]*models.User{}}
}

func (f *fakeRepo) Insert(_ context.Context, u models.User) error {
	f.users[u.ID] = &u
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}

func (f *fakeRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ExistsByUsernameOrEmail(_ context.Context, orgID, username, email string) (bool, error) {
	for _, u := range f.users {
		if u.OrganizationID == orgID && (u.Username == username || u.Email == email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) UpdateRole(_ context.Context, id string, role models.Role) error {
	f.users[id].Role = role
	return nil
}

type fakeOrgs struct {
	orgs map[string]*models.Organization
}

func (f *fakeOrgs) FindByID(_ context.Context, id string) (*models.Organization, error) {
	return f.orgs[id], nil
}

var admin = models.Actor{UserID: "admin-1", Role: models.RoleAdmin, OrganizationID: "org-1"}

func newTestService(repo *fakeRepo) *Service {
	orgs := &fakeOrgs{orgs: map[string]*models.Organization{
		"org-2": {ID: "org-2", Name: "other farm"},
	}}
	cfg := config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour}
	svc := NewService(repo, orgs, cfg, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestRegister(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	in := RegisterInput{Username: "amadou", Email: "amadou@farm.test", Password: "secret1"}

	_, err := svc.Register(ctx, models.Actor{UserID: "u-1", Role: models.RoleUser, OrganizationID: "org-1"}, in)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	user, err := svc.Register(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "org-1", user.OrganizationID)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	_, err = svc.Register(ctx, admin, in)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, admin, RegisterInput{Username: "a", Email: "a@b.c", Password: "short"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Register(ctx, admin, RegisterInput{Username: "a", Email: "a@b.c", Password: "secret1", Role: "SUPERUSER"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Register(ctx, admin, RegisterInput{Username: "a", Email: "a@b.c", Password: "secret1", OrganizationID: "org-404"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	user, err := svc.Register(ctx, admin, RegisterInput{Username: "a", Email: "a@b.c", Password: "secret1", OrganizationID: "org-2"})
	require.NoError(t, err)
	assert.Equal(t, "org-2", user.OrganizationID)
}

func TestLoginAndResolve_RoundTrip(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, admin, RegisterInput{
		Username: "amadou", Email: "amadou@farm.test", Password: "secret1",
	})
	require.NoError(t, err)

	token, logged, err := svc.Login(ctx, "amadou", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, logged.ID)

	actor, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.UserID)
	assert.Equal(t, models.RoleUser, actor.Role)
	assert.Equal(t, "org-1", actor.OrganizationID)
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, admin, RegisterInput{
		Username: "amadou", Email: "amadou@farm.test", Password: "secret1",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "amadou", "wrong")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, _, err = svc.Login(ctx, "nobody", "secret1")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestResolve_RejectsExpiredToken(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, admin, RegisterInput{
		Username: "amadou", Email: "amadou@farm.test", Password: "secret1",
	})
	require.NoError(t, err)

	token, _, err := svc.Login(ctx, "amadou", "secret1")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC) }
	_, err = svc.Resolve(ctx, token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestResolve_RejectsTamperedToken(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Resolve(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestResolve_ReflectsRoleChangeImmediately(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, admin, RegisterInput{
		Username: "amadou", Email: "amadou@farm.test", Password: "secret1",
	})
	require.NoError(t, err)

	token, _, err := svc.Login(ctx, "amadou", "secret1")
	require.NoError(t, err)

	_, err = svc.UpdateUserRole(ctx, admin, user.ID, models.RoleAdmin)
	require.NoError(t, err)

	actor, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, actor.Role)
}

func TestUpdateUserRole_ScopedToOrganization(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u-1"] = &models.User{ID: "u-1", OrganizationID: "org-2", Role: models.RoleUser}
	svc := newTestService(repo)

	_, err := svc.UpdateUserRole(context.Background(), admin, "u-1", models.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
