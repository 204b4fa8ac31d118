package testprovider_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/config"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/DanielPopoola/billing-reconciler/internal/infrastructure/persistence/memory"
	"github.com/DanielPopoola/billing-reconciler/internal/provider"
	"github.com/DanielPopoola/billing-reconciler/internal/provider/testprovider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type FakeReconciler struct {
	mu          sync.Mutex
	received    []provider.Notification
	ReconcileFn func(ctx context.Context, n provider.Notification) (bool, error)
}

func (f *FakeReconciler) Reconcile(ctx context.Context, n provider.Notification) (bool, error) {
	f.mu.Lock()
	f.received = append(f.received, n)
	f.mu.Unlock()
	if f.ReconcileFn != nil {
		return f.ReconcileFn(ctx, n)
	}
	return true, nil
}

type scheduledJob struct {
	delay time.Duration
	name  string
	job   func(ctx context.Context)
}

// ManualScheduler holds jobs until the test runs them.
type ManualScheduler struct {
	jobs []scheduledJob
}

func (s *ManualScheduler) Schedule(delay time.Duration, name string, job func(ctx context.Context)) {
	s.jobs = append(s.jobs, scheduledJob{delay: delay, name: name, job: job})
}

func (s *ManualScheduler) RunAll(ctx context.Context) {
	jobs := s.jobs
	s.jobs = nil
	for _, j := range jobs {
		j.job(ctx)
	}
}

type fixture struct {
	provider   *testprovider.Provider
	reconciler *FakeReconciler
	scheduler  *ManualScheduler
	payments   application.PaymentRepository
}

func newFixture(t *testing.T, cfg config.TestProviderConfig) *fixture {
	t.Helper()
	f := &fixture{
		provider:   testprovider.New(cfg),
		reconciler: &FakeReconciler{},
		scheduler:  &ManualScheduler{},
		payments:   memory.NewPaymentRepository(),
	}
	err := f.provider.OnInit(context.Background(), provider.Dependencies{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Payments:   f.payments,
		Reconciler: f.reconciler,
		Scheduler:  f.scheduler,
		PublicURL:  "http://localhost:8080/",
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) initPayment(t *testing.T) *domain.Payment {
	t.Helper()
	p, err := domain.NewPayment(testprovider.Key, domain.Money{Amount: 2500, Currency: "eur"}, "Test order", nil)
	require.NoError(t, err)
	require.NoError(t, f.provider.InitPayment(context.Background(), p))
	return p
}

func TestInitPayment(t *testing.T) {
	f := newFixture(t, config.TestProviderConfig{Enabled: true})
	p := f.initPayment(t)

	assert.True(t, strings.HasPrefix(p.ProviderID, "test_pay_"))
	assert.Equal(t, "http://localhost:8080/billing/test/payment/"+p.ProviderID, p.CheckoutURL)
	assert.Equal(t, domain.StatusPending, p.Status)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(p.ProviderData, &raw))
	assert.Equal(t, true, raw["testMode"])
	assert.Equal(t, "pending", raw["status"])
	assert.Len(t, raw["scenarios"], len(testprovider.DefaultScenarios))

	other := f.initPayment(t)
	assert.NotEqual(t, p.ProviderID, other.ProviderID)
}

func TestInitPayment_Modes(t *testing.T) {
	auto := newFixture(t, config.TestProviderConfig{Enabled: true, AutoComplete: true})
	assert.Equal(t, domain.StatusSucceeded, auto.initPayment(t).Status)

	failing := newFixture(t, config.TestProviderConfig{Enabled: true, AutoComplete: true, FailureRate: 1})
	assert.Equal(t, domain.StatusFailed, failing.initPayment(t).Status)

	f := newFixture(t, config.TestProviderConfig{Enabled: true})
	err := f.provider.InitPayment(context.Background(), &domain.Payment{Amount: 0, Currency: "EUR"})
	assert.Equal(t, application.ErrCodeValidation, application.ToErrorCode(err))
}

func TestProcess_DeliversOutcomeThroughReconciler(t *testing.T) {
	tests := []struct {
		scenario   string
		wantStatus domain.PaymentStatus
		wantNative string
	}{
		{"instant-success", domain.StatusSucceeded, "paid"},
		{"declined-payment", domain.StatusFailed, "failed"},
		{"cancelled-payment", domain.StatusCanceled, "cancelled"},
		{"expired-payment", domain.StatusCanceled, "expired"},
		{"pending-payment", domain.StatusPending, "pending"},
	}

	for _, tt := range tests {
		t.Run(tt.scenario, func(t *testing.T) {
			f := newFixture(t, config.TestProviderConfig{Enabled: true, DefaultDelay: 250 * time.Millisecond})
			p := f.initPayment(t)

			result, err := f.provider.Process(context.Background(), testprovider.ProcessRequest{
				PaymentID: p.ProviderID, ScenarioID: tt.scenario, Method: testprovider.MethodIDEAL,
			})
			require.NoError(t, err)
			assert.Equal(t, "processing", result.Status)

			// Nothing is delivered until the scheduled job runs.
			assert.Empty(t, f.reconciler.received)
			status, err := f.provider.Status(p.ProviderID)
			require.NoError(t, err)
			assert.Equal(t, "processing", status.Status)
			assert.Equal(t, "iDEAL", status.Method)

			f.scheduler.RunAll(context.Background())

			require.Len(t, f.reconciler.received, 1)
			n := f.reconciler.received[0]
			assert.Equal(t, testprovider.Key, n.Provider)
			assert.Equal(t, p.ProviderID, n.ProviderPaymentID)
			assert.Equal(t, tt.wantStatus, n.Status)
			assert.Equal(t, tt.wantNative, n.NativeStatus)

			var payload map[string]any
			require.NoError(t, json.Unmarshal(n.Payload, &payload))
			assert.Equal(t, tt.wantNative, payload["status"])
			assert.Equal(t, "ideal", payload["method"])
			assert.Equal(t, true, payload["testMode"])

			status, err = f.provider.Status(p.ProviderID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNative, status.Status)
		})
	}
}

func TestProcess_Delay(t *testing.T) {
	f := newFixture(t, config.TestProviderConfig{Enabled: true, DefaultDelay: 250 * time.Millisecond})
	p := f.initPayment(t)

	_, err := f.provider.Process(context.Background(), testprovider.ProcessRequest{
		PaymentID: p.ProviderID, ScenarioID: "instant-success", Method: testprovider.MethodPayPal,
	})
	require.NoError(t, err)
	_, err = f.provider.Process(context.Background(), testprovider.ProcessRequest{
		PaymentID: p.ProviderID, ScenarioID: "delayed-success", Method: testprovider.MethodPayPal,
	})
	require.NoError(t, err)

	require.Len(t, f.scheduler.jobs, 2)
	assert.Equal(t, 250*time.Millisecond, f.scheduler.jobs[0].delay)
	assert.Equal(t, 3*time.Second, f.scheduler.jobs[1].delay)

	noDefault := newFixture(t, config.TestProviderConfig{Enabled: true})
	q := noDefault.initPayment(t)
	_, err = noDefault.provider.Process(context.Background(), testprovider.ProcessRequest{
		PaymentID: q.ProviderID, ScenarioID: "instant-success", Method: testprovider.MethodPayPal,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Second, noDefault.scheduler.jobs[0].delay)
}

func TestProcess_RejectsBadRequests(t *testing.T) {
	f := newFixture(t, config.TestProviderConfig{Enabled: true})
	p := f.initPayment(t)

	tests := []struct {
		name     string
		req      testprovider.ProcessRequest
		wantCode string
	}{
		{"missing payment id", testprovider.ProcessRequest{ScenarioID: "instant-success", Method: "ideal"}, application.ErrCodeValidation},
		{"missing scenario", testprovider.ProcessRequest{PaymentID: p.ProviderID, Method: "ideal"}, application.ErrCodeValidation},
		{"unknown method", testprovider.ProcessRequest{PaymentID: p.ProviderID, ScenarioID: "instant-success", Method: "cash"}, application.ErrCodeValidation},
		{"foreign id", testprovider.ProcessRequest{PaymentID: "tr_123", ScenarioID: "instant-success", Method: "ideal"}, application.ErrCodeValidation},
		{"unknown scenario", testprovider.ProcessRequest{PaymentID: p.ProviderID, ScenarioID: "lottery", Method: "ideal"}, application.ErrCodeValidation},
		{"unknown session", testprovider.ProcessRequest{PaymentID: "test_pay_1_nobody", ScenarioID: "instant-success", Method: "ideal"}, application.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.provider.Process(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, application.ToErrorCode(err))
		})
	}
	assert.Empty(t, f.scheduler.jobs)
}

func TestProcess_RehydratesSessionFromStore(t *testing.T) {
	f := newFixture(t, config.TestProviderConfig{Enabled: true})
	p := f.initPayment(t)
	require.NoError(t, f.payments.Create(context.Background(), p))

	// Simulate a restart: the new instance shares the store but no sessions.
	restarted := newFixture(t, config.TestProviderConfig{Enabled: true})
	restarted.payments = f.payments
	require.NoError(t, restarted.provider.OnInit(context.Background(), provider.Dependencies{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Payments:   f.payments,
		Reconciler: restarted.reconciler,
		Scheduler:  restarted.scheduler,
	}))

	_, err := restarted.provider.Process(context.Background(), testprovider.ProcessRequest{
		PaymentID: p.ProviderID, ScenarioID: "instant-success", Method: testprovider.MethodCreditCard,
	})
	require.NoError(t, err)

	session, err := restarted.provider.Session(context.Background(), p.ProviderID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), session.Amount)
	assert.Equal(t, "processing", session.Status)
}

func TestProcess_ReconcileFailureMarksSessionFailed(t *testing.T) {
	f := newFixture(t, config.TestProviderConfig{Enabled: true})
	p := f.initPayment(t)
	f.reconciler.ReconcileFn = func(ctx context.Context, n provider.Notification) (bool, error) {
		if n.Status == domain.StatusSucceeded {
			return false, errors.New("store unavailable")
		}
		return true, nil
	}

	_, err := f.provider.Process(context.Background(), testprovider.ProcessRequest{
		PaymentID: p.ProviderID, ScenarioID: "instant-success", Method: testprovider.MethodApplePay,
	})
	require.NoError(t, err)
	f.scheduler.RunAll(context.Background())

	require.Len(t, f.reconciler.received, 2)
	assert.Equal(t, domain.StatusFailed, f.reconciler.received[1].Status)

	status, err := f.provider.Status(p.ProviderID)
	require.NoError(t, err)
	assert.Equal(t, "failed", status.Status)
}

func TestProcess_OutcomeNotAppliedLeavesSessionUnsettled(t *testing.T) {
	f := newFixture(t, config.TestProviderConfig{Enabled: true})
	p := f.initPayment(t)
	f.reconciler.ReconcileFn = func(ctx context.Context, n provider.Notification) (bool, error) {
		return false, nil
	}

	_, err := f.provider.Process(context.Background(), testprovider.ProcessRequest{
		PaymentID: p.ProviderID, ScenarioID: "instant-success", Method: testprovider.MethodIDEAL,
	})
	require.NoError(t, err)
	f.scheduler.RunAll(context.Background())

	require.Len(t, f.reconciler.received, 1)
	status, err := f.provider.Status(p.ProviderID)
	require.NoError(t, err)
	assert.Equal(t, testprovider.SessionNotApplied, status.Status)
}

func TestRefundAndCancel(t *testing.T) {
	f := newFixture(t, config.TestProviderConfig{Enabled: true})
	p := f.initPayment(t)

	refund := &domain.Refund{Amount: 500, Currency: "EUR"}
	result, err := f.provider.RefundPayment(context.Background(), p, refund)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.ProviderID, "test_ref_"))
	assert.Equal(t, domain.RefundSucceeded, result.Status)

	second, err := f.provider.RefundPayment(context.Background(), p, refund)
	require.NoError(t, err)
	assert.NotEqual(t, result.ProviderID, second.ProviderID)

	raw, err := f.provider.CancelPayment(context.Background(), p)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"cancelled"`)

	status, err := f.provider.Status(p.ProviderID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", status.Status)
}

func TestSweepExpired(t *testing.T) {
	f := newFixture(t, config.TestProviderConfig{Enabled: true})
	p := f.initPayment(t)

	assert.Equal(t, 0, f.provider.SweepExpired(time.Hour))
	assert.Equal(t, 1, f.provider.SweepExpired(-time.Second))

	_, err := f.provider.Status(p.ProviderID)
	assert.Equal(t, application.ErrCodeNotFound, application.ToErrorCode(err))
}

func TestOnInit_RequiresDependencies(t *testing.T) {
	err := testprovider.New(config.TestProviderConfig{}).OnInit(context.Background(), provider.Dependencies{})
	assert.Error(t, err)
}

func TestRoutes(t *testing.T) {
	f := newFixture(t, config.TestProviderConfig{Enabled: true, DefaultDelay: time.Second})
	p := f.initPayment(t)

	mux := http.NewServeMux()
	f.provider.OnConfig(&provider.RegistrationContext{
		Mux:      mux,
		BasePath: "/billing",
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	t.Run("config", func(t *testing.T) {
		rec := do(http.MethodGet, "/billing/test/config", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"instant-success"`)
		assert.Contains(t, rec.Body.String(), `"Bank Transfer"`)
	})

	t.Run("checkout page", func(t *testing.T) {
		rec := do(http.MethodGet, "/billing/test/payment/"+p.ProviderID, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"amount":2500`)

		rec = do(http.MethodGet, "/billing/test/payment/test_pay_0_missing", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("process", func(t *testing.T) {
		rec := do(http.MethodPost, "/billing/test/process", `{"paymentId":"`+p.ProviderID+`","scenarioId":"lottery","method":"ideal"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid scenario ID")

		rec = do(http.MethodPost, "/billing/test/process", `{not json`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = do(http.MethodPost, "/billing/test/process", `{"paymentId":"`+p.ProviderID+`","scenarioId":"delayed-success","method":"banktransfer"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"scenario":"Delayed Success"`)
	})

	t.Run("status", func(t *testing.T) {
		rec := do(http.MethodGet, "/billing/test/status/"+p.ProviderID, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"scenario":"Delayed Success"`)
		assert.Contains(t, rec.Body.String(), `"method":"Bank Transfer"`)
	})
}
