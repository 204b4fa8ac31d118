package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/application/services"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusUpdater_VersionAdvancesOncePerAcceptedUpdate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.createPayment(t, 1000)
	require.Equal(t, 1, p.Version)

	steps := []domain.PaymentStatus{domain.StatusProcessing, domain.StatusProcessing, domain.StatusSucceeded}
	version := p.Version
	for _, status := range steps {
		updated, applied, err := h.updater.UpdateStatus(ctx, services.StatusUpdate{
			PaymentID:       p.ID,
			Status:          status,
			ExpectedVersion: version,
			Origin:          domain.OriginWebhook,
		})
		require.NoError(t, err)
		require.True(t, applied)
		assert.Equal(t, version+1, updated.Version)
		version = updated.Version
	}

	stored, err := h.store.Payments.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1+len(steps), stored.Version)
	assert.Equal(t, domain.StatusSucceeded, stored.Status)
	assert.NotNil(t, stored.WebhookProcessedAt)
}

func TestStatusUpdater_StaleVersionIsSkipped(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.createPayment(t, 1000)

	_, applied, err := h.updater.UpdateStatus(ctx, services.StatusUpdate{
		PaymentID: p.ID, Status: domain.StatusProcessing, ExpectedVersion: 1, Origin: domain.OriginWebhook,
	})
	require.NoError(t, err)
	require.True(t, applied)

	current, applied, err := h.updater.UpdateStatus(ctx, services.StatusUpdate{
		PaymentID: p.ID, Status: domain.StatusFailed, ExpectedVersion: 1, Origin: domain.OriginWebhook,
	})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, domain.StatusProcessing, current.Status)
	assert.Equal(t, 2, current.Version)
}

func TestStatusUpdater_IllegalTransitionIsRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.succeed(t, h.createPayment(t, 1000))

	_, applied, err := h.updater.UpdateStatus(ctx, services.StatusUpdate{
		PaymentID: p.ID, Status: domain.StatusPending, ExpectedVersion: p.Version, Origin: domain.OriginWebhook,
	})
	require.Error(t, err)
	assert.False(t, applied)
	assert.True(t, application.IsCode(err, application.ErrCodeDomainInvariant))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	stored, err := h.store.Payments.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Version, stored.Version)
	assert.Equal(t, domain.StatusSucceeded, stored.Status)
}

func TestStatusUpdater_ConcurrentWritersAtMostOneWins(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.createPayment(t, 1000)

	targets := []domain.PaymentStatus{
		domain.StatusSucceeded, domain.StatusFailed, domain.StatusCanceled,
		domain.StatusProcessing, domain.StatusSucceeded, domain.StatusFailed,
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for _, target := range targets {
		wg.Add(1)
		go func(target domain.PaymentStatus) {
			defer wg.Done()
			_, applied, err := h.updater.UpdateStatus(ctx, services.StatusUpdate{
				PaymentID: p.ID, Status: target, ExpectedVersion: 1, Origin: domain.OriginWebhook,
			})
			assert.NoError(t, err)
			if applied {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(target)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	stored, err := h.store.Payments.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
}

func TestStatusUpdater_ApplyManualEdit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.createPayment(t, 1000)

	description := "renamed"
	processing := domain.StatusProcessing
	updated, err := h.updater.ApplyManualEdit(ctx, services.ManualEdit{
		PaymentID:   p.ID,
		Status:      &processing,
		Description: &description,
		Metadata:    map[string]string{"note": "manual"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "renamed", updated.Description)
	assert.Equal(t, domain.StatusProcessing, updated.Status)
	assert.Nil(t, updated.WebhookProcessedAt)

	stale := 1
	_, err = h.updater.ApplyManualEdit(ctx, services.ManualEdit{PaymentID: p.ID, Description: &description, Version: &stale})
	assert.True(t, application.IsCode(err, application.ErrCodeConcurrencyConflict))

	current := 2
	updated, err = h.updater.ApplyManualEdit(ctx, services.ManualEdit{PaymentID: p.ID, Description: &description, Version: &current})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Version)
}

func TestStatusUpdater_MutateLatestGivesUpAfterRepeatedConflicts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.createPayment(t, 1000)

	updater := services.NewStatusUpdater(&ConflictingPaymentRepository{PaymentRepository: h.store.Payments}, discardLogger())
	_, err := updater.MutateLatest(ctx, p.ID, domain.OriginManual, func(p *domain.Payment) error { return nil })

	require.Error(t, err)
	assert.True(t, application.IsCode(err, application.ErrCodeConcurrencyConflict))
	assert.ErrorIs(t, err, application.ErrVersionConflict)
}
