package provider_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/DanielPopoola/billing-reconciler/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	key       string
	initErr   error
	initCalls int
	InitPayFn func(ctx context.Context, p *domain.Payment) error
}

func (f *fakeProvider) Key() string { return f.key }

func (f *fakeProvider) InitPayment(ctx context.Context, p *domain.Payment) error {
	if f.InitPayFn != nil {
		return f.InitPayFn(ctx, p)
	}
	return nil
}

func (f *fakeProvider) OnInit(ctx context.Context, deps provider.Dependencies) error {
	f.initCalls++
	return f.initErr
}

func (f *fakeProvider) OnConfig(rc *provider.RegistrationContext) {
	rc.Handle("GET /"+f.key+"/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, f.key)
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	registry := provider.NewRegistry(discardLogger())
	registry.Register(&fakeProvider{key: "stripe"})

	p, err := registry.Lookup("stripe")
	require.NoError(t, err)
	assert.Equal(t, "stripe", p.Key())

	_, err = registry.Lookup("paypal")
	assert.True(t, application.IsCode(err, application.ErrCodeValidation))
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	registry := provider.NewRegistry(discardLogger())
	first := &fakeProvider{key: "test"}
	second := &fakeProvider{key: "test"}

	registry.Register(first)
	registry.Register(second)

	p, ok := registry.Get("test")
	require.True(t, ok)
	assert.Same(t, second, p)
	assert.Equal(t, []string{"test"}, registry.Keys())
}

func TestRegistry_InitAll(t *testing.T) {
	t.Run("runs every hook once", func(t *testing.T) {
		registry := provider.NewRegistry(discardLogger())
		a := &fakeProvider{key: "a"}
		b := &fakeProvider{key: "b"}
		registry.Register(a)
		registry.Register(b)

		err := registry.InitAll(context.Background(), provider.Dependencies{Logger: discardLogger()})

		require.NoError(t, err)
		assert.Equal(t, 1, a.initCalls)
		assert.Equal(t, 1, b.initCalls)
	})

	t.Run("aggregates failures", func(t *testing.T) {
		registry := provider.NewRegistry(discardLogger())
		a := &fakeProvider{key: "a", initErr: errors.New("no key")}
		b := &fakeProvider{key: "b", initErr: errors.New("bad url")}
		c := &fakeProvider{key: "c"}
		registry.Register(a)
		registry.Register(b)
		registry.Register(c)

		err := registry.InitAll(context.Background(), provider.Dependencies{Logger: discardLogger()})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "init a: no key")
		assert.Contains(t, err.Error(), "init b: bad url")
		assert.Equal(t, 1, c.initCalls)
	})
}

func TestRegistry_ConfigureAll(t *testing.T) {
	registry := provider.NewRegistry(discardLogger())
	registry.Register(&fakeProvider{key: "test"})
	mux := http.NewServeMux()

	registry.ConfigureAll(&provider.RegistrationContext{Mux: mux, BasePath: "/billing", Logger: discardLogger()})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/billing/test/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Body.String())
}

func TestStatusMap(t *testing.T) {
	m := provider.StatusMap{"paid": domain.StatusSucceeded}

	assert.Equal(t, domain.StatusSucceeded, m.Map("PAID"))
	assert.Equal(t, domain.StatusProcessing, m.Map("mystery"))
}

func TestValidatePayment(t *testing.T) {
	t.Run("normalizes currency", func(t *testing.T) {
		p := &domain.Payment{Amount: 100, Currency: "eur"}

		require.NoError(t, provider.ValidatePayment(p))
		assert.Equal(t, "EUR", p.Currency)
	})

	t.Run("rejects before any provider call", func(t *testing.T) {
		err := provider.ValidatePayment(&domain.Payment{Amount: -1, Currency: "EUR"})
		assert.True(t, application.IsCode(err, application.ErrCodeValidation))

		err = provider.ValidatePayment(&domain.Payment{Amount: 1, Currency: "EURO"})
		assert.True(t, application.IsCode(err, application.ErrCodeValidation))

		err = provider.ValidatePayment(&domain.Payment{Amount: 1, Currency: "EUR", Description: strings.Repeat("é", 1001)})
		assert.True(t, application.IsCode(err, application.ErrCodeValidation))
	})
}
