package reminders

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dairyherd/internal/domain/models"
)

type fakeBreeding struct {
	checks      []models.SeminationRecord
	separations []models.PregnancyRecord
	deliveries  []models.PregnancyRecord

	checksAsOf       time.Time
	separationCutoff time.Time
	deliveriesFrom   time.Time
	deliveriesTo     time.Time
}

func (f *fakeBreeding) DueChecks(_ context.Context, asOf time.Time) ([]models.SeminationRecord, error) {
	f.checksAsOf = asOf
	return f.checks, nil
}

func (f *fakeBreeding) DueSeparations(_ context.Context, cutoff time.Time) ([]models.PregnancyRecord, error) {
	f.separationCutoff = cutoff
	return f.separations, nil
}

func (f *fakeBreeding) UpcomingDeliveries(_ context.Context, from, to time.Time) ([]models.PregnancyRecord, error) {
	f.deliveriesFrom, f.deliveriesTo = from, to
	return f.deliveries, nil
}

type fakeCattle struct {
	herd map[string]*models.Cattle
}

func (f *fakeCattle) FindByID(_ context.Context, orgID, id string) (*models.Cattle, error) {
	c, ok := f.herd[id]
	if !ok || c.OrganizationID != orgID {
		return nil, nil
	}
	return c, nil
}

type sentNotification struct {
	userID   string
	cattleID string
	typ      models.NotificationType
	title    string
	message  string
}

type fakeDispatcher struct {
	persisted  []sentNotification
	pushed     []sentNotification
	persistErr map[string]error
	deliverErr error
}

func (f *fakeDispatcher) Persist(_ context.Context, userID, cattleID string, typ models.NotificationType, title, message string) (*models.Notification, error) {
	if err := f.persistErr[cattleID]; err != nil {
		return nil, err
	}
	f.persisted = append(f.persisted, sentNotification{userID, cattleID, typ, title, message})
	return &models.Notification{ID: "n-1", UserID: userID, CattleID: cattleID, Type: typ}, nil
}

func (f *fakeDispatcher) Deliver(_ context.Context, userID, title, body string, _ map[string]string) error {
	if f.deliverErr != nil {
		return f.deliverErr
	}
	f.pushed = append(f.pushed, sentNotification{userID: userID, title: title, message: body})
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(breeding *fakeBreeding, cattle *fakeCattle, dispatcher *fakeDispatcher, now time.Time) *Service {
	svc := NewService(breeding, cattle, dispatcher, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func cow(id, orgID, assignee string) *models.Cattle {
	return &models.Cattle{
		ID:             id,
		TagNumber:      "TAG-" + id,
		Name:           "cow " + id,
		AssignedUserID: assignee,
		OrganizationID: orgID,
		Status:         models.StatusActive,
	}
}

func TestSweepPregnancyChecks_NotifiesAssignee(t *testing.T) {
	breeding := &fakeBreeding{checks: []models.SeminationRecord{
		{ID: "sem-1", CattleID: "cow-1", OrganizationID: "org-1", CheckDate: date(2024, 1, 16), CreatedByID: "creator-1"},
	}}
	cattle := &fakeCattle{herd: map[string]*models.Cattle{"cow-1": cow("cow-1", "org-1", "farmer-1")}}
	dispatcher := &fakeDispatcher{}
	svc := newTestService(breeding, cattle, dispatcher, date(2024, 1, 20))

	emitted, err := svc.SweepPregnancyChecks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, emitted)

	require.Len(t, dispatcher.persisted, 1)
	sent := dispatcher.persisted[0]
	assert.Equal(t, "farmer-1", sent.userID)
	assert.Equal(t, "cow-1", sent.cattleID)
	assert.Equal(t, models.NotificationPregnancyCheckDue, sent.typ)
	assert.Contains(t, sent.message, "TAG-cow-1")
	require.Len(t, dispatcher.pushed, 1)

	// The sweep covers anything due today, not just before now.
	assert.Equal(t, time.Date(2024, 1, 20, 23, 59, 59, 0, time.UTC), breeding.checksAsOf)
}

func TestSweepPregnancyChecks_FallsBackToCreator(t *testing.T) {
	breeding := &fakeBreeding{checks: []models.SeminationRecord{
		{ID: "sem-1", CattleID: "cow-1", OrganizationID: "org-1", CreatedByID: "creator-1"},
	}}
	cattle := &fakeCattle{herd: map[string]*models.Cattle{"cow-1": cow("cow-1", "org-1", "")}}
	dispatcher := &fakeDispatcher{}
	svc := newTestService(breeding, cattle, dispatcher, date(2024, 1, 20))

	_, err := svc.SweepPregnancyChecks(context.Background())
	require.NoError(t, err)
	require.Len(t, dispatcher.persisted, 1)
	assert.Equal(t, "creator-1", dispatcher.persisted[0].userID)
}

func TestSweepPregnancyChecks_IsolatesItemFailures(t *testing.T) {
	breeding := &fakeBreeding{checks: []models.SeminationRecord{
		{ID: "sem-1", CattleID: "cow-1", OrganizationID: "org-1"},
		{ID: "sem-2", CattleID: "cow-2", OrganizationID: "org-1"},
		{ID: "sem-3", CattleID: "cow-3", OrganizationID: "org-1"},
	}}
	cattle := &fakeCattle{herd: map[string]*models.Cattle{
		"cow-1": cow("cow-1", "org-1", "farmer-1"),
		"cow-2": cow("cow-2", "org-1", "farmer-1"),
		"cow-3": cow("cow-3", "org-1", "farmer-1"),
	}}
	dispatcher := &fakeDispatcher{persistErr: map[string]error{"cow-2": errors.New("write failed")}}
	svc := newTestService(breeding, cattle, dispatcher, date(2024, 1, 20))

	emitted, err := svc.SweepPregnancyChecks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, emitted)
	assert.Len(t, dispatcher.persisted, 2)
}

func TestSweepPregnancyChecks_SkipsMissingCattle(t *testing.T) {
	breeding := &fakeBreeding{checks: []models.SeminationRecord{
		{ID: "sem-1", CattleID: "gone", OrganizationID: "org-1"},
	}}
	cattle := &fakeCattle{herd: map[string]*models.Cattle{}}
	dispatcher := &fakeDispatcher{}
	svc := newTestService(breeding, cattle, dispatcher, date(2024, 1, 20))

	emitted, err := svc.SweepPregnancyChecks(context.Background())
	require.NoError(t, err)
	assert.Zero(t, emitted)
	assert.Empty(t, dispatcher.persisted)
}

func TestSweepPregnancyChecks_PushFailureKeepsNotification(t *testing.T) {
	breeding := &fakeBreeding{checks: []models.SeminationRecord{
		{ID: "sem-1", CattleID: "cow-1", OrganizationID: "org-1"},
	}}
	cattle := &fakeCattle{herd: map[string]*models.Cattle{"cow-1": cow("cow-1", "org-1", "farmer-1")}}
	dispatcher := &fakeDispatcher{deliverErr: fmt.Errorf("fcm unavailable")}
	svc := newTestService(breeding, cattle, dispatcher, date(2024, 1, 20))

	emitted, err := svc.SweepPregnancyChecks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, emitted)
	assert.Len(t, dispatcher.persisted, 1)
}

func TestSweepSeparations_CutoffIsFifteenDaysBack(t *testing.T) {
	delivered := date(2024, 10, 3)
	breeding := &fakeBreeding{separations: []models.PregnancyRecord{
		{ID: "p-1", CattleID: "cow-1", OrganizationID: "org-1", CalfID: "calf-1",
			ActualDeliveryDate: &delivered, Status: models.PregnancyDelivered},
	}}
	cattle := &fakeCattle{herd: map[string]*models.Cattle{
		"cow-1":  cow("cow-1", "org-1", "farmer-1"),
		"calf-1": cow("calf-1", "org-1", "farmer-1"),
	}}
	dispatcher := &fakeDispatcher{}
	svc := newTestService(breeding, cattle, dispatcher, date(2024, 10, 20))

	emitted, err := svc.SweepSeparations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, emitted)
	assert.Equal(t, time.Date(2024, 10, 5, 23, 59, 59, 0, time.UTC), breeding.separationCutoff)

	require.Len(t, dispatcher.persisted, 1)
	sent := dispatcher.persisted[0]
	assert.Equal(t, models.NotificationSeparationDue, sent.typ)
	assert.Contains(t, sent.message, "cow calf-1")
	assert.Contains(t, sent.message, "cow cow-1")
}

func TestSweepSeparations_UnknownCalfUsesPlaceholder(t *testing.T) {
	delivered := date(2024, 10, 3)
	breeding := &fakeBreeding{separations: []models.PregnancyRecord{
		{ID: "p-1", CattleID: "cow-1", OrganizationID: "org-1",
			ActualDeliveryDate: &delivered, Status: models.PregnancyDelivered},
	}}
	cattle := &fakeCattle{herd: map[string]*models.Cattle{"cow-1": cow("cow-1", "org-1", "farmer-1")}}
	dispatcher := &fakeDispatcher{}
	svc := newTestService(breeding, cattle, dispatcher, date(2024, 10, 20))

	_, err := svc.SweepSeparations(context.Background())
	require.NoError(t, err)
	require.Len(t, dispatcher.persisted, 1)
	assert.Contains(t, dispatcher.persisted[0].message, "separate calf from")
}

func TestSweepMilestones_WindowAndDayCount(t *testing.T) {
	now := date(2024, 9, 25)
	breeding := &fakeBreeding{deliveries: []models.PregnancyRecord{
		{ID: "p-1", CattleID: "cow-1", OrganizationID: "org-1",
			ExpectedDeliveryDate: date(2024, 10, 1), Status: models.PregnancyInProgress},
	}}
	cattle := &fakeCattle{herd: map[string]*models.Cattle{"cow-1": cow("cow-1", "org-1", "farmer-1")}}
	dispatcher := &fakeDispatcher{}
	svc := newTestService(breeding, cattle, dispatcher, now)

	emitted, err := svc.SweepMilestones(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, emitted)
	assert.Equal(t, now, breeding.deliveriesFrom)
	assert.Equal(t, date(2024, 10, 2), breeding.deliveriesTo)

	require.Len(t, dispatcher.persisted, 1)
	sent := dispatcher.persisted[0]
	assert.Equal(t, models.NotificationMilestone, sent.typ)
	assert.Contains(t, sent.message, "6 day(s)")
}

func TestDaysUntil_RoundsUpPartialDays(t *testing.T) {
	now := time.Date(2024, 9, 25, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, daysUntil(now, date(2024, 9, 26)))
	assert.Equal(t, 0, daysUntil(now, now))
	assert.Equal(t, 7, daysUntil(date(2024, 9, 25), date(2024, 10, 2)))
}
