package registry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dairyherd/internal/domain/apperr"
	"dairyherd/internal/domain/models"
)

type fakeRepo struct {
	herd map[string]*models.Cattle
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{herd: map[string]*models.Cattle{}}
}

func (f *fakeRepo) Insert(_ context.Context, c models.Cattle) error {
	f.herd[c.ID] = &c
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, orgID, id string) (*models.Cattle, error) {
	c, ok := f.herd[id]
	if !ok || c.OrganizationID != orgID {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (f *fakeRepo) FindByTag(_ context.Context, orgID, tagNumber string) (*models.Cattle, error) {
	for _, c := range f.herd {
		if c.OrganizationID == orgID && c.TagNumber == tagNumber {
			out := *c
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) List(_ context.Context, orgID string, filter models.CattleFilter) ([]models.Cattle, int64, error) {
	var out []models.Cattle
	for _, c := range f.herd {
		if c.OrganizationID != orgID {
			continue
		}
		if filter.AssignedUserID != "" && c.AssignedUserID != filter.AssignedUserID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) Update(_ context.Context, c models.Cattle) error {
	if _, ok := f.herd[c.ID]; !ok {
		return fmt.Errorf("cattle %s not found", c.ID)
	}
	f.herd[c.ID] = &c
	return nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, orgID, id string, status models.CattleStatus) error {
	c, ok := f.herd[id]
	if !ok || c.OrganizationID != orgID {
		return fmt.Errorf("cattle %s not found", id)
	}
	c.Status = status
	return nil
}

func (f *fakeRepo) UpdateAssignment(_ context.Context, orgID, id, userID string) error {
	c, ok := f.herd[id]
	if !ok || c.OrganizationID != orgID {
		return fmt.Errorf("cattle %s not found", id)
	}
	c.AssignedUserID = userID
	return nil
}

func (f *fakeRepo) ListIDsByAssignee(_ context.Context, orgID, userID string) ([]string, error) {
	var ids []string
	for _, c := range f.herd {
		if c.OrganizationID == orgID && c.AssignedUserID == userID {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

type fakeUsers struct {
	users map[string]*models.User
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	return f.users[id], nil
}

var (
	admin  = models.Actor{UserID: "admin-1", Role: models.RoleAdmin, OrganizationID: "org-1"}
	farmer = models.Actor{UserID: "farmer-1", Role: models.RoleUser, OrganizationID: "org-1"}
)

func newTestService(repo *fakeRepo, users *fakeUsers) *Service {
	if users == nil {
		users = &fakeUsers{users: map[string]*models.User{
			"farmer-1": {ID: "farmer-1", OrganizationID: "org-1", Role: models.RoleUser},
		}}
	}
	svc := NewService(repo, users, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return svc
}

func validCreate() CreateInput {
	return CreateInput{
		TagNumber:   "TAG-100",
		Name:        "bella",
		Breed:       "holstein",
		Gender:      models.GenderFemale,
		DateOfBirth: time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreate_AdminOnly(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)

	_, err := svc.Create(context.Background(), farmer, validCreate())
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	cattle, err := svc.Create(context.Background(), admin, validCreate())
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, cattle.Status)
	assert.Equal(t, "org-1", cattle.OrganizationID)
}

func TestCreate_TagMustBeUniquePerOrganization(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)

	_, err := svc.Create(context.Background(), admin, validCreate())
	require.NoError(t, err)

	in := validCreate()
	in.Name = "other cow"
	_, err = svc.Create(context.Background(), admin, in)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// The same tag in another organization is fine.
	otherAdmin := models.Actor{UserID: "admin-2", Role: models.RoleAdmin, OrganizationID: "org-2"}
	_, err = svc.Create(context.Background(), otherAdmin, validCreate())
	require.NoError(t, err)
}

func TestCreate_ValidatesParentAndAssignee(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)

	in := validCreate()
	in.ParentID = "missing"
	_, err := svc.Create(context.Background(), admin, in)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	in = validCreate()
	in.AssignedUserID = "nobody"
	_, err = svc.Create(context.Background(), admin, in)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	in = validCreate()
	in.AssignedUserID = "farmer-1"
	cattle, err := svc.Create(context.Background(), admin, in)
	require.NoError(t, err)
	assert.Equal(t, "farmer-1", cattle.AssignedUserID)
}

func TestGet_UserSeesOnlyAssignedCattle(t *testing.T) {
	repo := newFakeRepo()
	repo.herd["cow-1"] = &models.Cattle{ID: "cow-1", OrganizationID: "org-1", AssignedUserID: "farmer-1"}
	repo.herd["cow-2"] = &models.Cattle{ID: "cow-2", OrganizationID: "org-1", AssignedUserID: "other"}
	svc := newTestService(repo, nil)

	_, err := svc.Get(context.Background(), farmer, "cow-1")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), farmer, "cow-2")
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = svc.Get(context.Background(), admin, "cow-2")
	require.NoError(t, err)
}

func TestGet_CrossOrganizationIsNotFound(t *testing.T) {
	repo := newFakeRepo()
	repo.herd["cow-1"] = &models.Cattle{ID: "cow-1", OrganizationID: "org-2"}
	svc := newTestService(repo, nil)

	_, err := svc.Get(context.Background(), admin, "cow-1")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestList_AutoFiltersForUsers(t *testing.T) {
	repo := newFakeRepo()
	repo.herd["cow-1"] = &models.Cattle{ID: "cow-1", OrganizationID: "org-1", AssignedUserID: "farmer-1"}
	repo.herd["cow-2"] = &models.Cattle{ID: "cow-2", OrganizationID: "org-1", AssignedUserID: "other"}
	svc := newTestService(repo, nil)

	all, total, err := svc.List(context.Background(), admin, models.CattleFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, int64(2), total)

	mine, total, err := svc.List(context.Background(), farmer, models.CattleFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "cow-1", mine[0].ID)
}

func TestDelete_TombstonesInsteadOfRemoving(t *testing.T) {
	repo := newFakeRepo()
	repo.herd["cow-1"] = &models.Cattle{ID: "cow-1", OrganizationID: "org-1", Status: models.StatusActive}
	svc := newTestService(repo, nil)

	err := svc.Delete(context.Background(), farmer, "cow-1")
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	require.NoError(t, svc.Delete(context.Background(), admin, "cow-1"))
	require.Contains(t, repo.herd, "cow-1")
	assert.Equal(t, models.StatusDeceased, repo.herd["cow-1"].Status)
}

func TestAssign(t *testing.T) {
	repo := newFakeRepo()
	repo.herd["cow-1"] = &models.Cattle{ID: "cow-1", OrganizationID: "org-1"}
	svc := newTestService(repo, nil)

	_, err := svc.Assign(context.Background(), admin, "cow-1", "nobody")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	cattle, err := svc.Assign(context.Background(), admin, "cow-1", "farmer-1")
	require.NoError(t, err)
	assert.Equal(t, "farmer-1", cattle.AssignedUserID)
	assert.Equal(t, "farmer-1", repo.herd["cow-1"].AssignedUserID)
}

func TestCreateCalf_EnforcesTagUniquenessOnly(t *testing.T) {
	repo := newFakeRepo()
	repo.herd["cow-1"] = &models.Cattle{ID: "cow-1", OrganizationID: "org-1", TagNumber: "TAG-1"}
	svc := newTestService(repo, nil)

	calf := models.Cattle{ID: "calf-1", TagNumber: "TAG-1", OrganizationID: "org-1"}
	err := svc.CreateCalf(context.Background(), calf)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	calf.TagNumber = "TAG-2"
	require.NoError(t, svc.CreateCalf(context.Background(), calf))
	assert.Contains(t, repo.herd, "calf-1")
}

func TestUpdate_PartialFields(t *testing.T) {
	repo := newFakeRepo()
	repo.herd["cow-1"] = &models.Cattle{
		ID: "cow-1", OrganizationID: "org-1", AssignedUserID: "farmer-1",
		Name: "bella", Breed: "holstein", Status: models.StatusActive,
	}
	svc := newTestService(repo, nil)

	cattle, err := svc.Update(context.Background(), farmer, "cow-1", UpdateInput{Name: "daisy"})
	require.NoError(t, err)
	assert.Equal(t, "daisy", cattle.Name)
	assert.Equal(t, "holstein", cattle.Breed)
	assert.Equal(t, models.StatusActive, cattle.Status)
}
