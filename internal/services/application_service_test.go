package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appFixture struct {
	svc      ApplicationService
	apps     *fakeApps
	jobs     *fakeJobs
	profiles *fakeProfiles
	queue    *fakeQueue
}

func newAppFixture(zohoConnected bool) *appFixture {
	employer := &models.Profile{UserID: "emp", Role: models.RoleEmployer, ZohoConnected: zohoConnected}
	f := &appFixture{
		apps: newFakeApps(),
		jobs: newFakeJobs(
			&models.Job{ID: "job1", EmployerID: "emp", Title: "Backend Engineer", Status: models.JobOpen},
			&models.Job{ID: "closed", EmployerID: "emp", Title: "Old", Status: models.JobClosed},
		),
		profiles: newFakeProfiles(employer, applicant("app1")),
		queue:    &fakeQueue{},
	}
	f.svc = NewApplicationService(f.apps, f.jobs, f.profiles, &fakeResume{}, f.queue, quietLogger())
	return f
}

func TestSubmit_CreatesOneRowThenRejectsDuplicate(t *testing.T) {
	f := newAppFixture(false)
	ctx := context.Background()

	app, err := f.svc.Submit(ctx, "app1", "job1", "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, app.Status)
	assert.Equal(t, "hello", app.CoverLetter)
	assert.Equal(t, 1, f.apps.count())

	_, err = f.svc.Submit(ctx, "app1", "job1", "again")
	assert.True(t, utils.IsCode(err, utils.CodeConflict))
	assert.Equal(t, 1, f.apps.count())
}

func TestSubmit_ConcurrentDoubleSubmitRace(t *testing.T) {
	f := newAppFixture(false)
	barrier := &sync.WaitGroup{}
	barrier.Add(2)
	f.apps.existsBarrier = barrier

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Submit(context.Background(), "app1", "job1", "")
		}(i)
	}
	wg.Wait()

	// both submissions pass the pre-check before either inserts
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Equal(t, 2, f.apps.count())
}

func TestSubmit_JobChecks(t *testing.T) {
	f := newAppFixture(false)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, "app1", "missing", "")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	_, err = f.svc.Submit(ctx, "app1", "closed", "")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = f.svc.Submit(ctx, "emp", "job1", "")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestSubmit_EnqueuesLeadSyncWhenEmployerConnected(t *testing.T) {
	f := newAppFixture(true)
	app, err := f.svc.Submit(context.Background(), "app1", "job1", "")
	require.NoError(t, err)
	assert.Equal(t, []string{app.ID}, f.queue.ids)
}

func TestSubmit_NoLeadSyncWhenEmployerNotConnected(t *testing.T) {
	f := newAppFixture(false)
	_, err := f.svc.Submit(context.Background(), "app1", "job1", "")
	require.NoError(t, err)
	assert.Empty(t, f.queue.ids)
}

func TestSubmit_EnqueueFailureIsSwallowed(t *testing.T) {
	f := newAppFixture(true)
	f.queue.err = errors.New("redis down")

	app, err := f.svc.Submit(context.Background(), "app1", "job1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, 1, f.apps.count())
}

func TestChangeStatus_FSM(t *testing.T) {
	f := newAppFixture(false)
	ctx := context.Background()
	app, err := f.svc.Submit(ctx, "app1", "job1", "")
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, "someone-else", app.ID, models.StatusReviewing)
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))

	got, err := f.svc.ChangeStatus(ctx, "emp", app.ID, models.StatusInterview)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInterview, got.Status)

	// same status is a no-op
	got, err = f.svc.ChangeStatus(ctx, "emp", app.ID, models.StatusInterview)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInterview, got.Status)

	_, err = f.svc.ChangeStatus(ctx, "emp", app.ID, models.StatusReviewing)
	assert.True(t, utils.IsCode(err, utils.CodeConflict))

	_, err = f.svc.ChangeStatus(ctx, "emp", app.ID, models.StatusHired)
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, "emp", app.ID, models.StatusNew)
	assert.True(t, utils.IsCode(err, utils.CodeConflict))
	_, err = f.svc.ChangeStatus(ctx, "emp", app.ID, models.StatusRejected)
	assert.True(t, utils.IsCode(err, utils.CodeConflict))

	_, err = f.svc.ChangeStatus(ctx, "emp", app.ID, models.ApplicationStatus("new_cv"))
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestApplicantDetail(t *testing.T) {
	f := newAppFixture(false)
	ctx := context.Background()
	app, err := f.svc.Submit(ctx, "app1", "job1", "")
	require.NoError(t, err)

	d, err := f.svc.ApplicantDetail(ctx, "emp", app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ID, d.Application.ID)
	require.NotNil(t, d.Profile)
	assert.Equal(t, "app1", d.Profile.UserID)

	_, err = f.svc.ApplicantDetail(ctx, "app1", app.ID)
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))
}

func TestListForJob_OwnerOnly(t *testing.T) {
	f := newAppFixture(false)
	ctx := context.Background()
	_, err := f.svc.Submit(ctx, "app1", "job1", "")
	require.NoError(t, err)

	rows, err := f.svc.ListForJob(ctx, "emp", "job1")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = f.svc.ListForJob(ctx, "app1", "job1")
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))
}
