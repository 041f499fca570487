package service_test

import (
	"context"
	"errors"
	"testing"

	"tradepost/internal/modkit/repokit"
	perr "tradepost/internal/platform/errors"
	"tradepost/internal/platform/store"
	"tradepost/internal/platform/testkit"
	"tradepost/internal/services/ident/domain"
	"tradepost/internal/services/ident/service"
)

type memRepo struct {
	links map[string]domain.AccountLink
	fail  error
}

func (m *memRepo) GetToken(_ context.Context, requesterID string) (string, bool, error) {
	if m.fail != nil {
		return "", false, m.fail
	}
	link, ok := m.links[requesterID]
	return link.Token, ok, nil
}

func (m *memRepo) Upsert(_ context.Context, link domain.AccountLink) error {
	if m.fail != nil {
		return m.fail
	}
	m.links[link.RequesterID] = link
	return nil
}

func (m *memRepo) Delete(_ context.Context, requesterID string) error {
	if m.fail != nil {
		return m.fail
	}
	delete(m.links, requesterID)
	return nil
}

// noopTx satisfies TxRunner so the service has a queryer to bind against;
// the in-memory repo ignores it
type noopTx struct{}

func (noopTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (noopTx) Query(context.Context, string, ...any) (store.Rows, error)     { return nil, nil }
func (noopTx) QueryRow(context.Context, string, ...any) store.Row            { return nil }
func (noopTx) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error {
	return fn(noopTx{})
}

func newSvc(repo *memRepo) *service.Svc {
	binder := repokit.BindFunc[domain.Repo](func(repokit.Queryer) domain.Repo { return repo })
	return service.New(noopTx{}, binder)
}

func TestLinkThenToken(t *testing.T) {
	repo := &memRepo{links: map[string]domain.AccountLink{}}
	svc := newSvc(repo)

	if err := svc.Link(context.Background(), "alice", "tok-1"); err != nil {
		t.Fatalf("link failed: %v", err)
	}
	tok, ok, err := svc.Token(context.Background(), "alice")
	if err != nil || !ok || tok != "tok-1" {
		t.Fatalf("expected tok-1, got tok=%q ok=%v err=%v", tok, ok, err)
	}
	if repo.links["alice"].LinkedAt.IsZero() {
		t.Fatal("expected link to carry a linked_at timestamp")
	}
}

func TestToken_AbsentIsNotAnError(t *testing.T) {
	svc := newSvc(&memRepo{links: map[string]domain.AccountLink{}})

	tok, ok, err := svc.Token(context.Background(), "ghost")
	if err != nil || ok || tok != "" {
		t.Fatalf("expected absent, got tok=%q ok=%v err=%v", tok, ok, err)
	}

	// blank requester ids never hit the repo
	_, ok, err = svc.Token(context.Background(), "   ")
	if err != nil || ok {
		t.Fatalf("expected absent for blank id, got ok=%v err=%v", ok, err)
	}
}

func TestLink_ValidatesInput(t *testing.T) {
	svc := newSvc(&memRepo{links: map[string]domain.AccountLink{}})

	if err := svc.Link(context.Background(), "", "tok"); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := svc.Link(context.Background(), "alice", " "); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUnlink(t *testing.T) {
	repo := &memRepo{links: map[string]domain.AccountLink{
		"alice": {RequesterID: "alice", Token: "tok-1"},
	}}
	svc := newSvc(repo)

	if err := svc.Unlink(context.Background(), "alice"); err != nil {
		t.Fatalf("unlink failed: %v", err)
	}
	if _, ok, _ := svc.Token(context.Background(), "alice"); ok {
		t.Fatal("expected link removed")
	}
}

func TestRepoFailuresWrapAsDB(t *testing.T) {
	repo := &memRepo{links: map[string]domain.AccountLink{}, fail: errors.New("down")}
	svc := newSvc(repo)

	if _, _, err := svc.Token(context.Background(), "alice"); !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("expected DB error, got %v", err)
	}
	if err := svc.Link(context.Background(), "alice", "tok"); !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("expected DB error, got %v", err)
	}
	if err := svc.Unlink(context.Background(), "alice"); !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("expected DB error, got %v", err)
	}
}

func TestNew_RequiresDeps(t *testing.T) {
	binder := repokit.BindFunc[domain.Repo](func(repokit.Queryer) domain.Repo { return nil })
	testkit.MustPanic(t, func() { service.New(nil, binder) })
	testkit.MustPanic(t, func() { service.New(noopTx{}, nil) })
}
