// Package testprovider is a payment provider that never leaves the process.
// Checkouts are completed by posting a scenario to /test/process; the
// outcome is delivered later through the same reconciliation path real
// webhooks use.
package testprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/config"
	"github.com/DanielPopoola/billing-reconciler/internal/domain"
	"github.com/DanielPopoola/billing-reconciler/internal/provider"
	"github.com/go-playground/validator"
)

const (
	Key = "test"

	paymentIDPrefix = "test_pay_"
	refundIDPrefix  = "test_ref_"
	fallbackDelay   = time.Second
)

const (
	SessionPending    = "pending"
	SessionProcessing = "processing"
	// SessionNotApplied means the outcome fired but the payment record did
	// not take it (version conflict, illegal transition or unknown payment).
	SessionNotApplied = "not_applied"
)

type Session struct {
	ID          string
	Amount      int64
	Currency    string
	Description string
	CreatedAt   time.Time
	Status      string
	Scenario    *Scenario
	Method      Method
	RedirectURL string
}

type ProcessRequest struct {
	PaymentID  string `json:"paymentId" validate:"required" example:"test_pay_1718000000000_k3j9x0a2b"`
	ScenarioID string `json:"scenarioId" validate:"required" example:"instant-success"`
	Method     Method `json:"method" validate:"required,oneof=ideal creditcard paypal applepay banktransfer" example:"ideal"`
}

type ProcessResult struct {
	Status   string        `json:"status"`
	Scenario string        `json:"scenario"`
	Delay    time.Duration `json:"delay"`
}

type SessionStatus struct {
	Status   string `json:"status"`
	Scenario string `json:"scenario,omitempty"`
	Method   string `json:"method,omitempty"`
}

type Settings struct {
	Enabled      bool          `json:"enabled"`
	Scenarios    []Scenario    `json:"scenarios"`
	Methods      []MethodInfo  `json:"methods"`
	DefaultDelay time.Duration `json:"defaultDelay"`
}

type Provider struct {
	cfg       config.TestProviderConfig
	scenarios []Scenario
	validate  *validator.Validate

	mu       sync.RWMutex
	sessions map[string]*Session

	deps      provider.Dependencies
	logger    *slog.Logger
	warnOnce  sync.Once
	refundSeq atomic.Int64
	now       func() time.Time
}

func New(cfg config.TestProviderConfig) *Provider {
	return &Provider{
		cfg:       cfg,
		scenarios: DefaultScenarios,
		validate:  validator.New(),
		sessions:  make(map[string]*Session),
		logger:    slog.Default(),
		now:       time.Now,
	}
}

func (p *Provider) Key() string { return Key }

func (p *Provider) OnInit(ctx context.Context, deps provider.Dependencies) error {
	if deps.Reconciler == nil || deps.Scheduler == nil || deps.Payments == nil {
		return errors.New("test provider needs a reconciler, a scheduler and a payment repository")
	}
	p.deps = deps
	if deps.Logger != nil {
		p.logger = deps.Logger
	}
	p.warnOnce.Do(func() {
		p.logger.Warn("test payment provider is enabled; payments are simulated and no money moves")
	})
	return nil
}

func (p *Provider) InitPayment(ctx context.Context, payment *domain.Payment) error {
	if err := provider.ValidatePayment(payment); err != nil {
		return err
	}

	id := p.newPaymentID()
	checkoutURL := fmt.Sprintf("%s/billing/test/payment/%s", strings.TrimSuffix(p.deps.PublicURL, "/"), id)

	status := domain.StatusPending
	native := SessionPending
	switch {
	case p.cfg.FailureRate > 0 && rand.Float64() < p.cfg.FailureRate:
		status = domain.StatusFailed
		native = string(OutcomeFailed)
	case p.cfg.AutoComplete:
		status = domain.StatusSucceeded
		native = string(OutcomePaid)
	}

	raw, err := json.Marshal(map[string]any{
		"id":          id,
		"amount":      payment.Amount,
		"currency":    payment.Currency,
		"description": payment.Description,
		"status":      native,
		"testMode":    true,
		"paymentUrl":  checkoutURL,
		"scenarios":   p.scenarios,
		"methods":     Methods,
	})
	if err != nil {
		return fmt.Errorf("encode provider data: %w", err)
	}

	p.mu.Lock()
	p.sessions[id] = &Session{
		ID:          id,
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		Description: payment.Description,
		CreatedAt:   p.now(),
		Status:      native,
		RedirectURL: payment.RedirectURL,
	}
	p.mu.Unlock()

	payment.ProviderID = id
	payment.ProviderData = raw
	payment.CheckoutURL = checkoutURL
	payment.Status = status
	return nil
}

// Process schedules the chosen scenario's outcome. It returns as soon as
// the job is queued.
func (p *Provider) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	if err := p.validate.Struct(req); err != nil {
		return nil, application.NewValidationError(err)
	}
	if !strings.HasPrefix(req.PaymentID, paymentIDPrefix) {
		return nil, application.NewValidationError(fmt.Errorf("paymentId must start with %s", paymentIDPrefix))
	}

	scenario, ok := p.scenario(req.ScenarioID)
	if !ok {
		return nil, application.NewValidationError(errors.New("invalid scenario ID"))
	}

	session, err := p.session(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	session.Status = SessionProcessing
	session.Scenario = &scenario
	session.Method = req.Method
	p.mu.Unlock()

	delay := scenario.Delay
	if delay == 0 {
		delay = p.cfg.DefaultDelay
	}
	if delay == 0 {
		delay = fallbackDelay
	}

	p.deps.Scheduler.Schedule(delay, "test-provider:"+req.PaymentID, func(ctx context.Context) {
		p.complete(ctx, req.PaymentID, scenario, req.Method)
	})

	p.logger.Info("test payment scheduled",
		"provider_payment_id", req.PaymentID,
		"scenario", scenario.ID,
		"method", req.Method,
		"delay", delay,
	)

	return &ProcessResult{Status: SessionProcessing, Scenario: scenario.Name, Delay: delay}, nil
}

func (p *Provider) complete(ctx context.Context, id string, scenario Scenario, method Method) {
	logger := p.logger.With("provider_payment_id", id, "scenario", scenario.ID)

	n := p.notification(id, scenario.Outcome, scenario, method)
	applied, err := p.deps.Reconciler.Reconcile(ctx, n)
	if err == nil && applied {
		p.setSessionStatus(id, string(scenario.Outcome))
		logger.Info("test payment processed", "outcome", scenario.Outcome)
		return
	}
	if err == nil {
		p.setSessionStatus(id, SessionNotApplied)
		logger.Warn("test payment outcome was not applied to the payment record", "outcome", scenario.Outcome)
		return
	}

	logger.Error("test payment processing failed", "error", err)
	p.setSessionStatus(id, string(OutcomeFailed))

	if scenario.Outcome == OutcomeFailed {
		return
	}
	if _, ferr := p.deps.Reconciler.Reconcile(ctx, p.notification(id, OutcomeFailed, scenario, method)); ferr != nil {
		logger.Warn("could not mark test payment failed", "error", ferr)
	}
}

func (p *Provider) notification(id string, outcome Outcome, scenario Scenario, method Method) provider.Notification {
	payload, _ := json.Marshal(map[string]any{
		"status":      outcome,
		"scenario":    scenario.Name,
		"method":      method,
		"processedAt": p.now().UTC().Format(time.RFC3339),
		"testMode":    true,
	})
	return provider.Notification{
		Provider:          Key,
		ProviderPaymentID: id,
		NativeStatus:      string(outcome),
		Status:            MapOutcome(outcome),
		Payload:           payload,
	}
}

// Status reports the in-memory session state.
func (p *Provider) Status(id string) (*SessionStatus, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	session, ok := p.sessions[id]
	if !ok {
		return nil, application.NewNotFoundError(fmt.Errorf("test session %s", id))
	}
	out := &SessionStatus{Status: session.Status, Method: methodName(session.Method)}
	if session.Scenario != nil {
		out.Scenario = session.Scenario.Name
	}
	return out, nil
}

// Session returns a copy of the session, rehydrating it from the store when
// the process restarted since checkout.
func (p *Provider) Session(ctx context.Context, id string) (Session, error) {
	s, err := p.session(ctx, id)
	if err != nil {
		return Session{}, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return *s, nil
}

func (p *Provider) Settings() Settings {
	return Settings{
		Enabled:      p.cfg.Enabled,
		Scenarios:    p.scenarios,
		Methods:      Methods,
		DefaultDelay: p.cfg.DefaultDelay,
	}
}

func (p *Provider) CancelPayment(ctx context.Context, payment *domain.Payment) (json.RawMessage, error) {
	p.setSessionStatus(payment.ProviderID, string(OutcomeCancelled))
	return json.Marshal(map[string]any{
		"id":       payment.ProviderID,
		"status":   OutcomeCancelled,
		"testMode": true,
	})
}

func (p *Provider) RefundPayment(ctx context.Context, payment *domain.Payment, refund *domain.Refund) (*provider.RefundResult, error) {
	id := fmt.Sprintf("%s%d_%d", refundIDPrefix, p.now().UnixMilli(), p.refundSeq.Add(1))
	raw, err := json.Marshal(map[string]any{
		"id":        id,
		"paymentId": payment.ProviderID,
		"amount":    refund.Amount,
		"currency":  refund.Currency,
		"status":    "refunded",
		"testMode":  true,
	})
	if err != nil {
		return nil, err
	}
	return &provider.RefundResult{
		ProviderID:   id,
		Status:       domain.RefundSucceeded,
		ProviderData: raw,
	}, nil
}

// SweepExpired drops sessions created before now-olderThan and returns how
// many were removed.
func (p *Provider) SweepExpired(olderThan time.Duration) int {
	cutoff := p.now().Add(-olderThan)

	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	for id, s := range p.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(p.sessions, id)
			removed++
		}
	}
	return removed
}

func (p *Provider) session(ctx context.Context, id string) (*Session, error) {
	p.mu.RLock()
	s, ok := p.sessions[id]
	p.mu.RUnlock()
	if ok {
		return s, nil
	}

	payment, err := p.deps.Payments.FindByProviderID(ctx, id)
	if err != nil {
		if errors.Is(err, application.ErrPaymentNotFound) {
			return nil, application.NewNotFoundError(fmt.Errorf("test session %s", id))
		}
		return nil, application.Classify(err)
	}

	rehydrated := &Session{
		ID:          id,
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		Description: payment.Description,
		CreatedAt:   payment.CreatedAt,
		Status:      SessionPending,
		RedirectURL: payment.RedirectURL,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.sessions[id]; ok {
		return existing, nil
	}
	p.sessions[id] = rehydrated
	p.logger.Debug("test session rehydrated from store", "provider_payment_id", id)
	return rehydrated, nil
}

func (p *Provider) setSessionStatus(id, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.sessions[id]; ok {
		s.Status = status
	}
}

func (p *Provider) scenario(id string) (Scenario, bool) {
	for _, s := range p.scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}

func (p *Provider) newPaymentID() string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	var suffix [9]byte
	for i := range suffix {
		suffix[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return paymentIDPrefix + strconv.FormatInt(p.now().UnixMilli(), 10) + "_" + string(suffix[:])
}
