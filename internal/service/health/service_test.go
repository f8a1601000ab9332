package health

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
	records []models.HealthRecord

	alertsSince  time.Time
	alertsScope  []string
	alertsResult []models.HealthRecord
}

func (f *fakeRepo) Insert(_ context.Context, rec models.HealthRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeRepo) ListByCattle(_ context.Context, orgID, cattleID string, recordType models.HealthRecordType, _, _ int64) ([]models.HealthRecord, int64, error) {
	var out []models.HealthRecord
	for _, rec := range f.records {
		if rec.OrganizationID != orgID || rec.CattleID != cattleID {
			continue
		}
		if recordType != "" && rec.RecordType != recordType {
			continue
		}
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) Stats(_ context.Context, orgID, cattleID string, _, _ *time.Time) (models.HealthStats, error) {
	var stats models.HealthStats
	for _, rec := range f.records {
		if rec.OrganizationID != orgID || rec.CattleID != cattleID {
			continue
		}
		stats.TotalRecords++
		switch rec.RecordType {
		case models.HealthDisease:
			stats.DiseaseCount++
		case models.HealthInjection:
			stats.InjectionCount++
		case models.HealthCheckup:
			stats.CheckupCount++
		}
	}
	return stats, nil
}

func (f *fakeRepo) Recent(_ context.Context, orgID, cattleID string, _, _ *time.Time, limit int64) ([]models.HealthRecord, error) {
	var out []models.HealthRecord
	for _, rec := range f.records {
		if rec.OrganizationID == orgID && rec.CattleID == cattleID && int64(len(out)) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeRepo) Alerts(_ context.Context, _ string, since time.Time, cattleIDs []string) ([]models.HealthRecord, error) {
	f.alertsSince = since
	f.alertsScope = cattleIDs
	return f.alertsResult, nil
}

type fakeCattle struct {
	herd     map[string]*models.Cattle
	assigned []string
}

func (f *fakeCattle) FindByID(_ context.Context, orgID, id string) (*models.Cattle, error) {
	c, ok := f.herd[id]
	if !ok || c.OrganizationID != orgID {
		return nil, nil
	}
	return c, nil
}

func (f *fakeCattle) ListIDsByAssignee(_ context.Context, _, _ string) ([]string, error) {
	return f.assigned, nil
}

var (
	admin  = models.Actor{UserID: "admin-1", Role: models.RoleAdmin, OrganizationID: "org-1"}
	farmer = models.Actor{UserID: "farmer-1", Role: models.RoleUser, OrganizationID: "org-1"}
)

func newTestService(repo *fakeRepo, cattle *fakeCattle) *Service {
	svc := NewService(repo, cattle, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return svc
}

func herdWith(ids ...string) *fakeCattle {
	herd := map[string]*models.Cattle{}
	for _, id := range ids {
		herd[id] = &models.Cattle{ID: id, OrganizationID: "org-1", AssignedUserID: "farmer-1"}
	}
	return &fakeCattle{herd: herd}
}

func TestRecord(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, herdWith("cow-1"))

	rec, err := svc.Record(context.Background(), farmer, RecordInput{
		CattleID:    "cow-1",
		RecordType:  models.HealthInjection,
		Description: "FMD vaccine booster",
		Medication:  "Raksha",
		Dosage:      "2ml",
	})
	require.NoError(t, err)
	assert.Equal(t, "farmer-1", rec.RecordedByID)
	// Unset timestamp defaults to the recording instant.
	assert.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), rec.Timestamp)
	require.Len(t, repo.records, 1)
}

func TestRecord_Validation(t *testing.T) {
	svc := newTestService(&fakeRepo{}, herdWith("cow-1"))
	ctx := context.Background()

	_, err := svc.Record(ctx, farmer, RecordInput{CattleID: "cow-1", RecordType: "SURGERY", Description: "x"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Record(ctx, farmer, RecordInput{CattleID: "cow-1", RecordType: models.HealthCheckup})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRecord_AccessControl(t *testing.T) {
	cattle := herdWith("cow-1")
	cattle.herd["cow-1"].AssignedUserID = "someone-else"
	svc := newTestService(&fakeRepo{}, cattle)
	ctx := context.Background()

	in := RecordInput{CattleID: "cow-1", RecordType: models.HealthCheckup, Description: "routine"}

	_, err := svc.Record(ctx, farmer, in)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = svc.Record(ctx, admin, in)
	require.NoError(t, err)

	_, err = svc.Record(ctx, farmer, RecordInput{CattleID: "missing", RecordType: models.HealthCheckup, Description: "routine"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestHistory_FiltersByType(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, herdWith("cow-1"))
	ctx := context.Background()

	for _, rt := range []models.HealthRecordType{models.HealthDisease, models.HealthInjection, models.HealthInjection} {
		_, err := svc.Record(ctx, farmer, RecordInput{CattleID: "cow-1", RecordType: rt, Description: "entry"})
		require.NoError(t, err)
	}

	all, total, err := svc.History(ctx, farmer, "cow-1", "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	injections, total, err := svc.History(ctx, farmer, "cow-1", models.HealthInjection, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, injections, 2)
}

func TestStats(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, herdWith("cow-1"))
	ctx := context.Background()

	for _, rt := range []models.HealthRecordType{models.HealthDisease, models.HealthCheckup, models.HealthCheckup} {
		_, err := svc.Record(ctx, farmer, RecordInput{CattleID: "cow-1", RecordType: rt, Description: "entry"})
		require.NoError(t, err)
	}

	stats, recent, err := svc.Stats(ctx, farmer, "cow-1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalRecords)
	assert.Equal(t, int64(1), stats.DiseaseCount)
	assert.Equal(t, int64(0), stats.InjectionCount)
	assert.Equal(t, int64(2), stats.CheckupCount)
	assert.Len(t, recent, 3)
}

func TestAlerts_AdminSeesWholeOrg(t *testing.T) {
	repo := &fakeRepo{alertsResult: []models.HealthRecord{{ID: "h-1"}}}
	svc := newTestService(repo, herdWith("cow-1"))

	alerts, err := svc.Alerts(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)

	// Admin scope is unrestricted and the window covers the last 30
	// days.
	assert.Nil(t, repo.alertsScope)
	assert.Equal(t, time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC), repo.alertsSince)
}

func TestAlerts_UserScopedToAssignedCattle(t *testing.T) {
	repo := &fakeRepo{}
	cattle := herdWith("cow-1", "cow-2")
	cattle.assigned = []string{"cow-1", "cow-2"}
	svc := newTestService(repo, cattle)

	_, err := svc.Alerts(context.Background(), farmer)
	require.NoError(t, err)
	assert.Equal(t, []string{"cow-1", "cow-2"}, repo.alertsScope)
}

func TestAlerts_UserWithNoCattleGetsEmptyScope(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, &fakeCattle{herd: map[string]*models.Cattle{}})

	_, err := svc.Alerts(context.Background(), farmer)
	require.NoError(t, err)
	// Non-nil empty scope so the query matches nothing instead of
	// everything.
	require.NotNil(t, repo.alertsScope)
	assert.Empty(t, repo.alertsScope)
}
