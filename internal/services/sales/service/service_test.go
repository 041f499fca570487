package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tradepost/internal/core/catalog"
	perr "tradepost/internal/platform/errors"
	"tradepost/internal/platform/testkit"
	"tradepost/internal/services/sales/domain"
	"tradepost/internal/services/sales/service"
)

type sellCall struct {
	Token  string
	ItemID string
	Amount int
}

type fakeMarket struct {
	mu      sync.Mutex
	items   []catalog.Item
	listErr error
	receipt domain.Receipt
	sellErr error
	sells   []sellCall
}

func (f *fakeMarket) ListItems(context.Context) ([]catalog.Item, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

func (f *fakeMarket) Sell(_ context.Context, token, itemID string, amount int) (domain.Receipt, error) {
	f.mu.Lock()
	f.sells = append(f.sells, sellCall{Token: token, ItemID: itemID, Amount: amount})
	f.mu.Unlock()
	if f.sellErr != nil {
		return domain.Receipt{}, f.sellErr
	}
	return f.receipt, nil
}

func (f *fakeMarket) sellCalls() []sellCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sellCall(nil), f.sells...)
}

type fakeTokens struct{ tokens map[string]string }

func (f *fakeTokens) Token(_ context.Context, requesterID string) (string, bool, error) {
	tok, ok := f.tokens[requesterID]
	return tok, ok, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []domain.FinalMessage
	fail error
}

func (f *fakeNotifier) FinalOutcome(_ context.Context, msg domain.FinalMessage) error {
	f.mu.Lock()
	f.msgs = append(f.msgs, msg)
	f.mu.Unlock()
	return f.fail
}

func (f *fakeNotifier) finals() []domain.FinalMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.FinalMessage(nil), f.msgs...)
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (f *fakeAudit) Append(_ context.Context, entry domain.AuditEntry) error {
	f.mu.Lock()
	f.entries = append(f.entries, entry)
	f.mu.Unlock()
	return nil
}

func (f *fakeAudit) appended() []domain.AuditEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.AuditEntry(nil), f.entries...)
}

func snapshot() []catalog.Item {
	return []catalog.Item{
		{ID: "sword01", Name: "Iron Sword", Price: 50},
		{ID: "shield01", Name: "Oak Shield", Price: 30},
	}
}

type fixture struct {
	svc      *service.Svc
	market   *fakeMarket
	notifier *fakeNotifier
	audit    *fakeAudit
}

func newFixture(t *testing.T, window time.Duration, market *fakeMarket) fixture {
	t.Helper()
	if market == nil {
		market = &fakeMarket{items: snapshot(), receipt: domain.Receipt{Message: "Sold!"}}
	}
	notifier := &fakeNotifier{}
	audit := &fakeAudit{}
	tokens := &fakeTokens{tokens: map[string]string{"alice": "tok-alice"}}
	svc := service.New(market, tokens, notifier, audit, service.Options{ConfirmWindow: window})
	return fixture{svc: svc, market: market, notifier: notifier, audit: audit}
}

func TestSell_ConfirmExecutesExactlyOnce(t *testing.T) {
	fx := newFixture(t, 5*time.Second, nil)
	amount := 2

	prompt, err := fx.svc.Sell(context.Background(), "alice", "sword01", &amount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prompt.SessionID == "" {
		t.Fatal("expected a session id")
	}
	testkit.MustContain(t, prompt.Content, "Iron Sword")
	testkit.MustContain(t, prompt.Content, "100")
	if len(prompt.Choices) != 2 {
		t.Fatalf("expected 2 choices, got %d", len(prompt.Choices))
	}
	if prompt.ExpiresAt.Before(time.Now()) {
		t.Fatal("expected a future deadline")
	}

	fx.svc.Resolve(context.Background(), prompt.SessionID, "alice", domain.ChoiceConfirm)

	testkit.Eventually(t, time.Second, func() bool { return len(fx.notifier.finals()) == 1 })

	calls := fx.market.sellCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 sell call, got %d", len(calls))
	}
	if calls[0] != (sellCall{Token: "tok-alice", ItemID: "sword01", Amount: 2}) {
		t.Fatalf("unexpected sell call: %+v", calls[0])
	}

	final := fx.notifier.finals()[0]
	if final.Resolution != domain.ResolutionConfirmed {
		t.Fatalf("expected confirmed, got %s", final.Resolution)
	}
	testkit.MustContain(t, final.Content, "Successfully sold `Iron Sword` for 100 credits!")

	entries := fx.audit.appended()
	if len(entries) != 1 || !entries[0].Success {
		t.Fatalf("expected one successful audit entry, got %+v", entries)
	}
}

func TestSell_CancelSkipsExecution(t *testing.T) {
	fx := newFixture(t, 5*time.Second, nil)

	prompt, err := fx.svc.Sell(context.Background(), "alice", "Iron Sword", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fx.svc.Resolve(context.Background(), prompt.SessionID, "alice", domain.ChoiceCancel)

	testkit.Eventually(t, time.Second, func() bool { return len(fx.notifier.finals()) == 1 })

	if calls := fx.market.sellCalls(); len(calls) != 0 {
		t.Fatalf("expected no sell calls, got %d", len(calls))
	}
	final := fx.notifier.finals()[0]
	if final.Resolution != domain.ResolutionCancelled {
		t.Fatalf("expected cancelled, got %s", final.Resolution)
	}
	if final.Content != "Sell cancelled." {
		t.Fatalf("unexpected content %q", final.Content)
	}
}

func TestSell_TimeoutHasDistinctMessage(t *testing.T) {
	fx := newFixture(t, 30*time.Millisecond, nil)

	_, err := fx.svc.Sell(context.Background(), "alice", "sword01", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testkit.Eventually(t, time.Second, func() bool { return len(fx.notifier.finals()) == 1 })

	if calls := fx.market.sellCalls(); len(calls) != 0 {
		t.Fatalf("expected no sell calls, got %d", len(calls))
	}
	final := fx.notifier.finals()[0]
	if final.Resolution != domain.ResolutionTimedOut {
		t.Fatalf("expected timed_out, got %s", final.Resolution)
	}
	if final.Content != "No response. Sell cancelled." {
		t.Fatalf("unexpected content %q", final.Content)
	}
}

func TestResolve_SecondChoiceLosesTheRace(t *testing.T) {
	fx := newFixture(t, 5*time.Second, nil)

	prompt, err := fx.svc.Sell(context.Background(), "alice", "sword01", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fx.svc.Resolve(context.Background(), prompt.SessionID, "alice", domain.ChoiceConfirm)
	fx.svc.Resolve(context.Background(), prompt.SessionID, "alice", domain.ChoiceCancel)
	fx.svc.Resolve(context.Background(), prompt.SessionID, "alice", domain.ChoiceConfirm)

	testkit.Eventually(t, time.Second, func() bool { return len(fx.notifier.finals()) == 1 })

	// give any stray duplicate a moment to surface
	time.Sleep(50 * time.Millisecond)

	if got := len(fx.notifier.finals()); got != 1 {
		t.Fatalf("expected exactly one final message, got %d", got)
	}
	if got := len(fx.market.sellCalls()); got != 1 {
		t.Fatalf("expected exactly one sell call, got %d", got)
	}
	if got := len(fx.audit.appended()); got != 1 {
		t.Fatalf("expected exactly one audit entry, got %d", got)
	}
}

func TestResolve_NonRequesterIgnored(t *testing.T) {
	fx := newFixture(t, 80*time.Millisecond, nil)

	prompt, err := fx.svc.Sell(context.Background(), "alice", "sword01", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fx.svc.Resolve(context.Background(), prompt.SessionID, "mallory", domain.ChoiceConfirm)

	// the session should still run to timeout
	testkit.Eventually(t, time.Second, func() bool { return len(fx.notifier.finals()) == 1 })
	if fx.notifier.finals()[0].Resolution != domain.ResolutionTimedOut {
		t.Fatalf("expected timeout, got %s", fx.notifier.finals()[0].Resolution)
	}
	if calls := fx.market.sellCalls(); len(calls) != 0 {
		t.Fatalf("expected no sell calls, got %d", len(calls))
	}
}

func TestResolve_UnknownSessionIsNoop(t *testing.T) {
	fx := newFixture(t, 5*time.Second, nil)
	testkit.MustNotPanic(t, func() {
		fx.svc.Resolve(context.Background(), "nope", "alice", domain.ChoiceConfirm)
	})
}

func TestSell_ValidationShortCircuits(t *testing.T) {
	market := &fakeMarket{listErr: errors.New("should not be called")}
	fx := newFixture(t, 5*time.Second, market)

	neg := -2000
	_, err := fx.svc.Sell(context.Background(), "alice", "sword01", &neg)
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = fx.svc.Sell(context.Background(), "alice", "   ", nil)
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSell_NegativeAmountIsTakenAbsolute(t *testing.T) {
	fx := newFixture(t, 5*time.Second, nil)

	neg := -5
	prompt, err := fx.svc.Sell(context.Background(), "alice", "sword01", &neg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 5 * 50 credits
	testkit.MustContain(t, prompt.Content, "250")
}

func TestSell_UnknownItem(t *testing.T) {
	fx := newFixture(t, 5*time.Second, nil)

	_, err := fx.svc.Sell(context.Background(), "alice", "axe99", nil)
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSell_CatalogOutageLooksLikeUnknownItem(t *testing.T) {
	market := &fakeMarket{listErr: errors.New("boom")}
	fx := newFixture(t, 5*time.Second, market)

	_, err := fx.svc.Sell(context.Background(), "alice", "sword01", nil)
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSell_UnlinkedRequester(t *testing.T) {
	fx := newFixture(t, 5*time.Second, nil)

	_, err := fx.svc.Sell(context.Background(), "bob", "sword01", nil)
	if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	testkit.MustContain(t, err.Error(), "link your account")
}

func TestSell_RemoteErrorMessageSurfaces(t *testing.T) {
	market := &fakeMarket{
		items:   snapshot(),
		receipt: domain.Receipt{Message: "Error: insufficient stock"},
	}
	fx := newFixture(t, 5*time.Second, market)

	prompt, err := fx.svc.Sell(context.Background(), "alice", "sword01", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fx.svc.Resolve(context.Background(), prompt.SessionID, "alice", domain.ChoiceConfirm)

	testkit.Eventually(t, time.Second, func() bool { return len(fx.notifier.finals()) == 1 })

	final := fx.notifier.finals()[0]
	if final.Content != "Error: insufficient stock" {
		t.Fatalf("unexpected content %q", final.Content)
	}
	entries := fx.audit.appended()
	if len(entries) != 1 || entries[0].Success {
		t.Fatalf("expected one failed audit entry, got %+v", entries)
	}
}

func TestSell_TransportFailureIsGeneric(t *testing.T) {
	market := &fakeMarket{items: snapshot(), sellErr: errors.New("conn reset")}
	fx := newFixture(t, 5*time.Second, market)

	prompt, err := fx.svc.Sell(context.Background(), "alice", "sword01", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fx.svc.Resolve(context.Background(), prompt.SessionID, "alice", domain.ChoiceConfirm)

	testkit.Eventually(t, time.Second, func() bool { return len(fx.notifier.finals()) == 1 })

	if got := fx.notifier.finals()[0].Content; got != "Failed to sell item." {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestAutocomplete_DegradesToEmptyOnOutage(t *testing.T) {
	market := &fakeMarket{listErr: errors.New("boom")}
	fx := newFixture(t, 5*time.Second, market)

	got := fx.svc.Autocomplete(context.Background(), "sword")
	if len(got) != 0 {
		t.Fatalf("expected no suggestions, got %d", len(got))
	}
}

func TestAutocomplete_MatchesIDAndName(t *testing.T) {
	fx := newFixture(t, 5*time.Second, nil)

	got := fx.svc.Autocomplete(context.Background(), "IRON")
	if len(got) != 1 || got[0].Value != "sword01" {
		t.Fatalf("unexpected suggestions: %+v", got)
	}
}

func TestNew_RequiresPorts(t *testing.T) {
	notifier := &fakeNotifier{}
	audit := &fakeAudit{}
	tokens := &fakeTokens{}
	market := &fakeMarket{}

	testkit.MustPanic(t, func() { service.New(nil, tokens, notifier, audit, service.Options{}) })
	testkit.MustPanic(t, func() { service.New(market, nil, notifier, audit, service.Options{}) })
	testkit.MustPanic(t, func() { service.New(market, tokens, nil, audit, service.Options{}) })
	testkit.MustPanic(t, func() { service.New(market, tokens, notifier, nil, service.Options{}) })
}

func TestSell_NotifierFailureStillAudits(t *testing.T) {
	fx := newFixture(t, 5*time.Second, nil)
	fx.notifier.fail = errors.New("webhook down")

	prompt, err := fx.svc.Sell(context.Background(), "alice", "sword01", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fx.svc.Resolve(context.Background(), prompt.SessionID, "alice", domain.ChoiceCancel)

	testkit.Eventually(t, time.Second, func() bool { return len(fx.audit.appended()) == 1 })

	entry := fx.audit.appended()[0]
	if entry.Resolution != domain.ResolutionCancelled {
		t.Fatalf("expected cancelled audit entry, got %+v", entry)
	}
	if entry.SessionID != prompt.SessionID {
		t.Fatalf("audit entry for wrong session: %q", entry.SessionID)
	}
}
