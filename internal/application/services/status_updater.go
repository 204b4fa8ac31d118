package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/google/uuid"
)

const defaultMaxAttempts = 3

// StatusUpdate is a single compare-and-swap request against a payment.
// ExpectedVersion must be the version read when the decision was made.
type StatusUpdate struct {
	PaymentID       uuid.UUID
	Status          domain.PaymentStatus
	ProviderData    json.RawMessage
	ExpectedVersion int
	Origin          domain.Origin
}

// ManualEdit is an administrative change. A nil Version means "whatever is
// stored now".
type ManualEdit struct {
	PaymentID   uuid.UUID
	Status      *domain.PaymentStatus
	Description *string
	Metadata    map[string]string
	Version     *int
}

// StatusUpdater is the only writer of payment rows after creation. Every
// write is conditional on the version the caller read.
type StatusUpdater struct {
	payments    application.PaymentRepository
	logger      *slog.Logger
	maxAttempts int
}

func NewStatusUpdater(payments application.PaymentRepository, logger *slog.Logger) *StatusUpdater {
	return &StatusUpdater{
		payments:    payments,
		logger:      logger,
		maxAttempts: defaultMaxAttempts,
	}
}

// UpdateStatus applies upd if nobody else wrote the payment since
// ExpectedVersion was read. A lost race is reported as applied=false with a
// nil error. An illegal transition is a DomainInvariantViolation.
func (u *StatusUpdater) UpdateStatus(ctx context.Context, upd StatusUpdate) (*domain.Payment, bool, error) {
	return u.Mutate(ctx, upd.PaymentID, upd.ExpectedVersion, upd.Origin, func(p *domain.Payment) error {
		if err := p.TransitionTo(upd.Status); err != nil {
			u.logger.Warn("rejected illegal payment transition",
				"payment_id", p.ID,
				"from", p.Status,
				"to", upd.Status,
				"origin", upd.Origin,
			)
			return application.NewDomainInvariantError(err)
		}
		if upd.ProviderData != nil {
			p.ProviderData = upd.ProviderData
		}
		return nil
	})
}

// Mutate runs fn against the stored payment and writes the result as
// expected+1. fn is not called when the stored version already moved on.
func (u *StatusUpdater) Mutate(
	ctx context.Context,
	id uuid.UUID,
	expected int,
	origin domain.Origin,
	fn func(p *domain.Payment) error,
) (*domain.Payment, bool, error) {
	current, err := u.payments.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if current.Version != expected {
		u.logConflict(id, expected, current.Version, origin)
		return current, false, nil
	}

	previous := current.Status
	if err := fn(current); err != nil {
		return nil, false, err
	}

	if origin == domain.OriginWebhook {
		now := time.Now().UTC()
		current.WebhookProcessedAt = &now
	}

	if err := u.payments.UpdateIfVersion(ctx, current, expected); err != nil {
		if errors.Is(err, application.ErrVersionConflict) {
			u.logConflict(id, expected, -1, origin)
			return nil, false, nil
		}
		return nil, false, err
	}

	u.logger.Info("payment updated",
		"payment_id", id,
		"from", previous,
		"to", current.Status,
		"version", current.Version,
		"origin", origin,
	)
	return current, true, nil
}

// MutateLatest re-reads and retries Mutate until it wins or runs out of
// attempts. It is for writers that have no version of their own to assert.
func (u *StatusUpdater) MutateLatest(
	ctx context.Context,
	id uuid.UUID,
	origin domain.Origin,
	fn func(p *domain.Payment) error,
) (*domain.Payment, error) {
	for attempt := 0; attempt < u.maxAttempts; attempt++ {
		current, err := u.payments.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}

		updated, applied, err := u.Mutate(ctx, id, current.Version, origin, fn)
		if err != nil {
			return nil, err
		}
		if applied {
			return updated, nil
		}
	}
	return nil, application.NewConcurrencyConflictError("payment", id)
}

// ApplyManualEdit applies an administrative edit. Without an explicit
// version it auto-increments from the stored one; with one, a mismatch is
// returned to the caller as a conflict.
func (u *StatusUpdater) ApplyManualEdit(ctx context.Context, edit ManualEdit) (*domain.Payment, error) {
	if edit.Description != nil {
		if err := domain.ValidateDescription(*edit.Description); err != nil {
			return nil, application.NewValidationError(err)
		}
	}

	apply := func(p *domain.Payment) error {
		if edit.Status != nil {
			if err := p.TransitionTo(*edit.Status); err != nil {
				return application.NewDomainInvariantError(err)
			}
		}
		if edit.Description != nil {
			p.Description = *edit.Description
		}
		if edit.Metadata != nil {
			p.Metadata = edit.Metadata
		}
		return nil
	}

	if edit.Version == nil {
		return u.MutateLatest(ctx, edit.PaymentID, domain.OriginManual, apply)
	}

	updated, applied, err := u.Mutate(ctx, edit.PaymentID, *edit.Version, domain.OriginManual, apply)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, application.NewConcurrencyConflictError("payment", edit.PaymentID)
	}
	return updated, nil
}

func (u *StatusUpdater) logConflict(id uuid.UUID, expected, stored int, origin domain.Origin) {
	attrs := []any{
		"payment_id", id,
		"expected_version", expected,
		"origin", origin,
	}
	if stored >= 0 {
		attrs = append(attrs, "stored_version", stored)
	}
	u.logger.Warn("payment version conflict, update skipped", attrs...)
}
