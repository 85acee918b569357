package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/api/middleware"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/logger"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/pubsub"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/services"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/utils"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testJobID = "6f1c1c2e-8a4b-4c3e-9d2a-1b7e5f0a9c11"

func init() { gin.SetMode(gin.TestMode) }

// Each mock embeds the service interface so a test only stubs what it calls.

type mockBilling struct {
	services.BillingService
	mock.Mock
}

func (m *mockBilling) HandleWebhook(ctx context.Context, payload []byte, sig string) (models.BillingEventOutcome, error) {
	args := m.Called(ctx, payload, sig)
	return args.Get(0).(models.BillingEventOutcome), args.Error(1)
}

type mockProfiles struct {
	services.ProfileService
	mock.Mock
}

func (m *mockProfiles) ChangeRole(ctx context.Context, userID string, role models.ProfileRole) (*models.Profile, error) {
	args := m.Called(ctx, userID, role)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

type mockApps struct {
	services.ApplicationService
	mock.Mock
}

func (m *mockApps) Submit(ctx context.Context, applicantID, jobID, coverLetter string) (*models.Application, error) {
	args := m.Called(ctx, applicantID, jobID, coverLetter)
	a, _ := args.Get(0).(*models.Application)
	return a, args.Error(1)
}

type mockZoho struct {
	services.ZohoService
	mock.Mock
}

func (m *mockZoho) SyncAllUsers(ctx context.Context, employerID string) (int, error) {
	args := m.Called(ctx, employerID)
	return args.Int(0), args.Error(1)
}

type stubHealth struct{ report services.HealthReport }

func (s stubHealth) Check(context.Context) services.HealthReport { return s.report }

// asUser stands in for JWTAuth.
func asUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, id)
		c.Next()
	}
}

func do(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestBillingWebhook(t *testing.T) {
	tests := []struct {
		name       string
		outcome    models.BillingEventOutcome
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "bad signature",
			outcome:    models.OutcomeRejected,
			err:        utils.E(utils.CodeInvalidArgument, "BillingService.HandleWebhook", "invalid signature", nil),
			wantStatus: http.StatusBadRequest,
			wantCode:   string(utils.CodeInvalidArgument),
		},
		{
			name:       "unresolved linkage is acknowledged",
			outcome:    models.OutcomeDropped,
			wantStatus: http.StatusOK,
		},
		{
			name:       "profile write failed",
			outcome:    models.OutcomeFailed,
			err:        utils.E(utils.CodeInternal, "BillingService.HandleWebhook", "failed to apply", nil),
			wantStatus: http.StatusInternalServerError,
			wantCode:   string(utils.CodeInternal),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBilling{}
			svc.On("HandleWebhook", mock.Anything, []byte(`{"id":"evt_1"}`), "t=1,v1=abc").
				Return(tt.outcome, tt.err).Once()

			r := gin.New()
			r.POST("/billing/webhook", NewBillingHandler(svc).Webhook)

			w := do(r, http.MethodPost, "/billing/webhook", `{"id":"evt_1"}`, map[string]string{"Stripe-Signature": "t=1,v1=abc"})
			assert.Equal(t, tt.wantStatus, w.Code)

			body := decode(t, w)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["code"])
			} else {
				assert.Equal(t, true, body["received"])
				assert.Equal(t, string(tt.outcome), body["outcome"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestChangeRole(t *testing.T) {
	t.Run("employer without subscription is forbidden", func(t *testing.T) {
		svc := &mockProfiles{}
		svc.On("ChangeRole", mock.Anything, "u1", models.RoleEmployer).
			Return(nil, utils.E(utils.CodeForbidden, "ProfileService.ChangeRole", "an active subscription is required", nil))

		r := gin.New()
		r.PUT("/settings/role", asUser("u1"), NewProfileHandler(svc).ChangeRole)

		w := do(r, http.MethodPut, "/settings/role", `{"role":"employer"}`, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, string(utils.CodeForbidden), decode(t, w)["code"])
		svc.AssertExpectations(t)
	})

	t.Run("unknown role never reaches the service", func(t *testing.T) {
		svc := &mockProfiles{}
		r := gin.New()
		r.PUT("/settings/role", asUser("u1"), NewProfileHandler(svc).ChangeRole)

		w := do(r, http.MethodPut, "/settings/role", `{"role":"admin"}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "ChangeRole", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no user", func(t *testing.T) {
		r := gin.New()
		r.PUT("/settings/role", NewProfileHandler(&mockProfiles{}).ChangeRole)

		w := do(r, http.MethodPut, "/settings/role", `{"role":"employer"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestApply(t *testing.T) {
	t.Run("duplicate is a conflict", func(t *testing.T) {
		svc := &mockApps{}
		svc.On("Submit", mock.Anything, "u1", testJobID, "").
			Return(nil, utils.E(utils.CodeConflict, "ApplicationService.Submit", "already applied", nil))

		r := gin.New()
		r.POST("/jobs/:id/apply", asUser("u1"), NewApplicationHandler(svc).Apply)

		w := do(r, http.MethodPost, "/jobs/"+testJobID+"/apply", "", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("created with cover letter", func(t *testing.T) {
		svc := &mockApps{}
		svc.On("Submit", mock.Anything, "u1", testJobID, "hello").
			Return(&models.Application{ID: "a1", JobID: testJobID, ApplicantID: "u1", Status: models.StatusNew}, nil)

		r := gin.New()
		r.POST("/jobs/:id/apply", asUser("u1"), NewApplicationHandler(svc).Apply)

		w := do(r, http.MethodPost, "/jobs/"+testJobID+"/apply", `{"cover_letter":"hello"}`, nil)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "a1", decode(t, w)["id"])
	})
}

func TestZohoSyncAll_ReportsPartialCount(t *testing.T) {
	svc := &mockZoho{}
	svc.On("SyncAllUsers", mock.Anything, "emp-1").
		Return(4, utils.E(utils.CodeRateLimited, "ZohoService.SyncAllUsers", "crm rate limit reached", nil))

	r := gin.New()
	r.POST("/zoho/sync/all", asUser("emp-1"), NewZohoHandler(svc).SyncAll)

	w := do(r, http.MethodPost, "/zoho/sync/all", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.EqualValues(t, 4, body["count"])
	assert.Equal(t, string(utils.CodeRateLimited), body["code"])
}

func TestHealth(t *testing.T) {
	down := services.HealthReport{
		OK: false,
		Dependencies: map[string]services.DependencyStatus{
			"redis": {Connected: false, CheckedAt: time.Now(), Error: "dial tcp: refused"},
		},
	}
	r := gin.New()
	h := NewHealthHandler(stubHealth{report: down})
	r.GET("/health", h.Health)
	r.GET("/ping", h.Ping)

	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "", nil).Code)
}

func TestSubscriptionWS_ForwardsOwnChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.GET("/ws/subscription", asUser("u1"), NewWSHandler(rdb, nil, logger.Discard()).Subscription)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/subscription", nil)
	require.NoError(t, err)
	defer conn.Close()

	ch := pubsub.SubscriptionChannel("u1")
	require.Eventually(t, func() bool { return mr.PubSubNumSub(ch)[ch] == 1 }, 2*time.Second, 10*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, rdb.Publish(ctx, pubsub.SubscriptionChannel("u2"), `{"user_id":"u2"}`).Err())
	require.NoError(t, rdb.Publish(ctx, ch, `{"user_id":"u1","status":"active"}`).Err())

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":"u1","status":"active"}`, string(msg))
}

func TestSubscriptionWS_RejectsForeignOrigin(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.GET("/ws/subscription", asUser("u1"), NewWSHandler(rdb, []string{"https://app.example.com"}, logger.Discard()).Subscription)
	srv := httptest.NewServer(r)
	defer srv.Close()

	hdr := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/subscription", hdr)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestMalformedIDsNeverReachServices(t *testing.T) {
	apps := &mockApps{}
	r := gin.New()
	ah := NewApplicationHandler(apps)
	r.POST("/jobs/:id/apply", asUser("u1"), ah.Apply)
	r.GET("/applicants/:id", asUser("u1"), ah.ApplicantDetail)
	r.GET("/jobs/:id", NewJobHandler(nil, apps).Get)
	r.POST("/admin/zoho/sync/:employer_id", NewZohoHandler(&mockZoho{}).SyncAllFor)

	for _, path := range []string{"/jobs/abc/apply", "/applicants/abc", "/jobs/abc", "/admin/zoho/sync/abc"} {
		method := http.MethodGet
		if strings.HasSuffix(path, "/apply") || strings.HasPrefix(path, "/admin") {
			method = http.MethodPost
		}
		w := do(r, method, path, "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, string(utils.CodeInvalidArgument), decode(t, w)["code"], path)
	}
	apps.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
