package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/providers/crm"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/providers/payments"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/utils"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func strPtr(s string) *string { return &s }

// callLog records cross-fake call order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(s string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, s)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeProfiles struct {
	mu       sync.Mutex
	rows     map[string]*models.Profile
	applyErr error
}

func newFakeProfiles(ps ...*models.Profile) *fakeProfiles {
	f := &fakeProfiles{rows: map[string]*models.Profile{}}
	for _, p := range ps {
		f.rows[p.UserID] = p
	}
	return f
}

func (f *fakeProfiles) GetByUserID(_ context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) GetByStripeCustomerID(_ context.Context, cid string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.StripeCustomerID == cid {
			cp := *p
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeProfiles) CreateIfMissing(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[p.UserID]; !ok {
		cp := *p
		f.rows[p.UserID] = &cp
	}
	return nil
}

func (f *fakeProfiles) mutate(id string, fn func(p *models.Profile)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return utils.ErrNotFound
	}
	fn(p)
	return nil
}

func (f *fakeProfiles) ApplyDetails(_ context.Context, id string, patch models.ProfileDetailsPatch) error {
	return f.mutate(id, func(p *models.Profile) {
		if patch.FullName != nil {
			p.FullName = *patch.FullName
		}
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Bio != nil {
			p.Bio = *patch.Bio
		}
		if patch.Location != nil {
			p.Location = *patch.Location
		}
		if patch.Phone != nil {
			p.Phone = *patch.Phone
		}
	})
}

func (f *fakeProfiles) ApplyEducation(_ context.Context, id string, patch models.ProfileEducationPatch) error {
	return f.mutate(id, func(p *models.Profile) {
		if patch.University != nil {
			p.University = *patch.University
		}
		if patch.Degree != nil {
			p.Degree = *patch.Degree
		}
		if patch.FieldOfStudy != nil {
			p.FieldOfStudy = *patch.FieldOfStudy
		}
		if patch.GraduationYear != nil {
			p.GraduationYear = patch.GraduationYear
		}
	})
}

func (f *fakeProfiles) SetCVURL(_ context.Context, id, url string) error {
	return f.mutate(id, func(p *models.Profile) { p.CVURL = url })
}

func (f *fakeProfiles) SetRole(_ context.Context, id string, role models.ProfileRole) error {
	return f.mutate(id, func(p *models.Profile) { p.Role = role })
}

func (f *fakeProfiles) ApplySubscription(_ context.Context, id string, patch models.SubscriptionPatch) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	return f.mutate(id, func(p *models.Profile) {
		p.Role = patch.Role
		p.SubscriptionStatus = strPtr(patch.SubscriptionStatus)
		if patch.SubscriptionID != "" {
			p.SubscriptionID = patch.SubscriptionID
		}
		if patch.StripeCustomerID != "" {
			p.StripeCustomerID = patch.StripeCustomerID
		}
	})
}

func (f *fakeProfiles) SetStripeCustomerID(_ context.Context, id, cid string) error {
	return f.mutate(id, func(p *models.Profile) { p.StripeCustomerID = cid })
}

func (f *fakeProfiles) SetZohoConnected(_ context.Context, id string, connected bool) error {
	return f.mutate(id, func(p *models.Profile) { p.ZohoConnected = connected })
}

func (f *fakeProfiles) ListAfter(_ context.Context, after string, limit int) ([]models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.rows))
	for id := range f.rows {
		if id > after {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]models.Profile, 0, len(ids))
	for _, id := range ids {
		out = append(out, *f.rows[id])
	}
	return out, nil
}

type fakeJobs struct {
	mu   sync.Mutex
	rows map[string]*models.Job
	gets int
}

func newFakeJobs(js ...*models.Job) *fakeJobs {
	f := &fakeJobs{rows: map[string]*models.Job{}}
	for _, j := range js {
		f.rows[j.ID] = j
	}
	return f
}

func (f *fakeJobs) Insert(_ context.Context, j *models.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *j
	f.rows[j.ID] = &cp
	return nil
}

func (f *fakeJobs) GetByID(_ context.Context, id string) (*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	j, ok := f.rows[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeJobs) List(_ context.Context, _ models.JobFilter) ([]models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Job
	for _, j := range f.rows {
		if j.Status == models.JobOpen {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (f *fakeJobs) ListByEmployer(_ context.Context, employerID string) ([]models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Job
	for _, j := range f.rows {
		if j.EmployerID == employerID {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (f *fakeJobs) Apply(_ context.Context, id string, patch models.JobPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.rows[id]
	if !ok {
		return utils.ErrNotFound
	}
	if patch.Title != nil {
		j.Title = *patch.Title
	}
	if patch.Status != nil {
		j.Status = *patch.Status
	}
	return nil
}

type fakeApps struct {
	mu   sync.Mutex
	rows map[string]*models.Application
	// existsBarrier, when set, holds every Exists call until all callers arrived.
	existsBarrier *sync.WaitGroup
}

func newFakeApps(as ...*models.Application) *fakeApps {
	f := &fakeApps{rows: map[string]*models.Application{}}
	for _, a := range as {
		f.rows[a.ID] = a
	}
	return f
}

func (f *fakeApps) Exists(_ context.Context, jobID, applicantID string) (bool, error) {
	f.mu.Lock()
	found := false
	for _, a := range f.rows {
		if a.JobID == jobID && a.ApplicantID == applicantID {
			found = true
		}
	}
	f.mu.Unlock()

	if f.existsBarrier != nil {
		f.existsBarrier.Done()
		f.existsBarrier.Wait()
	}
	return found, nil
}

func (f *fakeApps) Insert(_ context.Context, a *models.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.rows[a.ID] = &cp
	return nil
}

func (f *fakeApps) GetByID(_ context.Context, id string) (*models.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeApps) ListByApplicant(_ context.Context, applicantID string) ([]models.Application, error) {
	return f.filter(func(a *models.Application) bool { return a.ApplicantID == applicantID }), nil
}

func (f *fakeApps) ListByJob(_ context.Context, jobID string) ([]models.Application, error) {
	return f.filter(func(a *models.Application) bool { return a.JobID == jobID }), nil
}

func (f *fakeApps) filter(keep func(a *models.Application) bool) []models.Application {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Application
	for _, a := range f.rows {
		if keep(a) {
			out = append(out, *a)
		}
	}
	return out
}

func (f *fakeApps) SetStatus(_ context.Context, id string, status models.ApplicationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return utils.ErrNotFound
	}
	a.Status = status
	return nil
}

func (f *fakeApps) MarkZohoSynced(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return utils.ErrNotFound
	}
	a.ZohoSynced = true
	return nil
}

func (f *fakeApps) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeResume struct {
	education   []models.Education
	experiences []models.Experience
	skills      []models.Skill
}

func (f *fakeResume) ListEducation(context.Context, string) ([]models.Education, error) {
	return f.education, nil
}
func (f *fakeResume) InsertEducation(_ context.Context, e *models.Education) error {
	f.education = append(f.education, *e)
	return nil
}
func (f *fakeResume) UpdateEducation(_ context.Context, e *models.Education) error {
	for i := range f.education {
		if f.education[i].ID == e.ID && f.education[i].ProfileID == e.ProfileID {
			f.education[i] = *e
			return nil
		}
	}
	return utils.ErrNotFound
}
func (f *fakeResume) DeleteEducation(_ context.Context, profileID, id string) error {
	for i := range f.education {
		if f.education[i].ID == id && f.education[i].ProfileID == profileID {
			f.education = append(f.education[:i], f.education[i+1:]...)
			return nil
		}
	}
	return utils.ErrNotFound
}
func (f *fakeResume) ListExperiences(context.Context, string) ([]models.Experience, error) {
	return f.experiences, nil
}
func (f *fakeResume) InsertExperience(_ context.Context, e *models.Experience) error {
	f.experiences = append(f.experiences, *e)
	return nil
}
func (f *fakeResume) UpdateExperience(context.Context, *models.Experience) error { return nil }
func (f *fakeResume) DeleteExperience(context.Context, string, string) error    { return nil }
func (f *fakeResume) ListSkills(context.Context, string) ([]models.Skill, error) {
	return f.skills, nil
}
func (f *fakeResume) InsertSkill(_ context.Context, s *models.Skill) error {
	f.skills = append(f.skills, *s)
	return nil
}
func (f *fakeResume) UpdateSkill(context.Context, *models.Skill) error   { return nil }
func (f *fakeResume) DeleteSkill(context.Context, string, string) error { return nil }

type fakeCreds struct {
	mu      sync.Mutex
	rows    map[string]models.ZohoCredentials
	log     *callLog
	saveErr error
}

func newFakeCreds(log *callLog, cs ...models.ZohoCredentials) *fakeCreds {
	f := &fakeCreds{rows: map[string]models.ZohoCredentials{}, log: log}
	for _, c := range cs {
		f.rows[c.UserID] = c
	}
	return f
}

func (f *fakeCreds) Get(_ context.Context, userID string) (*models.ZohoCredentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[userID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &c, nil
}

func (f *fakeCreds) Save(_ context.Context, c *models.ZohoCredentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.log.add("save:" + c.AccessToken)
	f.rows[c.UserID] = *c
	return nil
}

func (f *fakeCreds) Delete(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log.add("delete:" + userID)
	delete(f.rows, userID)
	return nil
}

type fakeCRM struct {
	mu           sync.Mutex
	log          *callLog
	refreshCalls int
	refreshTok   *crm.Token
	exchangeTok  *crm.Token
	revokeErr    error
	batches      [][]models.Lead
	// failOnBatch makes the n-th CreateLeads call (1-based) fail.
	failOnBatch int
	failErr     error
}

func (f *fakeCRM) AuthURL(state, redirectURL string) string {
	return "https://accounts.example/oauth/v2/auth?state=" + state + "&redirect_uri=" + redirectURL
}

func (f *fakeCRM) Exchange(context.Context, string, string) (*crm.Token, error) {
	if f.exchangeTok == nil {
		return nil, errors.New("exchange failed")
	}
	return f.exchangeTok, nil
}

func (f *fakeCRM) Refresh(_ context.Context, _ string) (*crm.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	f.log.add("refresh")
	return f.refreshTok, nil
}

func (f *fakeCRM) Revoke(context.Context, string) error {
	f.log.add("revoke")
	return f.revokeErr
}

func (f *fakeCRM) CreateLeads(_ context.Context, accessToken, _ string, leads []models.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log.add("leads:" + accessToken)
	f.batches = append(f.batches, leads)
	if f.failOnBatch > 0 && len(f.batches) == f.failOnBatch {
		return f.failErr
	}
	return nil
}

type fakePayments struct {
	customerID     string
	customerUserID string
	checkout       *payments.CheckoutSession
	subscription   *payments.Subscription
	lastCheckout   payments.CheckoutRequest
	ensureCalls    int
	portalURL      string
}

func (f *fakePayments) EnsureCustomer(_ context.Context, _, _, existingID string) (string, error) {
	f.ensureCalls++
	if existingID != "" {
		return existingID, nil
	}
	return f.customerID, nil
}

func (f *fakePayments) CreateCheckoutSession(_ context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	f.lastCheckout = req
	return &payments.CheckoutSession{ID: "cs_1", URL: "https://checkout.example/cs_1"}, nil
}

func (f *fakePayments) GetCheckoutSession(context.Context, string) (*payments.CheckoutSession, error) {
	if f.checkout == nil {
		return nil, errors.New("no such session")
	}
	return f.checkout, nil
}

func (f *fakePayments) CreatePortalSession(context.Context, string, string) (string, error) {
	return f.portalURL, nil
}

func (f *fakePayments) GetSubscription(context.Context, string) (*payments.Subscription, error) {
	if f.subscription == nil {
		return nil, errors.New("no such subscription")
	}
	return f.subscription, nil
}

func (f *fakePayments) CustomerUserID(context.Context, string) (string, error) {
	return f.customerUserID, nil
}

type fakeJournal struct {
	mu      sync.Mutex
	entries []models.BillingEvent
	listErr error
}

func (f *fakeJournal) Record(_ context.Context, e *models.BillingEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeJournal) ListByUser(_ context.Context, userID string, limit int64) ([]models.BillingEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.BillingEvent
	for i := len(f.entries) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if f.entries[i].UserID == userID {
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}

func (f *fakeJournal) Ping(context.Context) error { return nil }

type fakeNotifier struct {
	mu      sync.Mutex
	changes []models.SubscriptionChange
}

func (f *fakeNotifier) PublishSubscription(_ context.Context, c models.SubscriptionChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changes = append(f.changes, c)
	return nil
}

type fakeQueue struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (f *fakeQueue) Enqueue(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.ids = append(f.ids, id)
	return nil
}

type fakeUploader struct {
	name string
}

func (f *fakeUploader) Upload(_ context.Context, objectName, _ string, _ io.Reader) (string, error) {
	f.name = objectName
	return "https://storage.example/" + objectName, nil
}
