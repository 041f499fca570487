//go:build integration_pg
// +build integration_pg

package repo_test

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"tradepost/internal/modkit/repokit"
	"tradepost/internal/platform/store"
	"tradepost/internal/services/ident/domain"
	"tradepost/internal/services/ident/repo"
)

// startPostgres launches a disposable Postgres and returns DSN + stop func
func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

func openStore(t *testing.T, ctx context.Context, dsn string) *store.Store {
	t.Helper()
	st, err := store.Open(ctx, store.Config{
		PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2},
	}, store.WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

func TestRepo_Integration_LinkLifecycle(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st := openStore(t, ctx, dsn)
	binder := repo.NewPG()

	err := repokit.WithTx(ctx, st.PG, func(q repokit.Queryer) error {
		if _, err := q.Exec(ctx, `
			CREATE TABLE account_links (
				requester_id TEXT PRIMARY KEY,
				token        TEXT NOT NULL,
				linked_at    TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`); err != nil {
			return err
		}

		r := binder.Bind(q)

		// missing link reads as absent, not an error
		if _, ok, err := r.GetToken(ctx, "alice"); err != nil || ok {
			return fmt.Errorf("expected absent link, got ok=%v err=%v", ok, err)
		}

		firstLink := time.Now().UTC().Truncate(time.Microsecond)
		if err := r.Upsert(ctx, domain.AccountLink{RequesterID: "alice", Token: "tok-1", LinkedAt: firstLink}); err != nil {
			return err
		}
		tok, ok, err := r.GetToken(ctx, "alice")
		if err != nil || !ok || tok != "tok-1" {
			return fmt.Errorf("expected tok-1, got tok=%q ok=%v err=%v", tok, ok, err)
		}

		// upsert replaces token and timestamp in place
		relink := firstLink.Add(time.Hour)
		if err := r.Upsert(ctx, domain.AccountLink{RequesterID: "alice", Token: "tok-2", LinkedAt: relink}); err != nil {
			return err
		}
		tok, _, err = r.GetToken(ctx, "alice")
		if err != nil || tok != "tok-2" {
			return fmt.Errorf("expected tok-2, got tok=%q err=%v", tok, err)
		}

		var storedAt time.Time
		if err := q.QueryRow(ctx, `SELECT linked_at FROM account_links WHERE requester_id = $1`, "alice").Scan(&storedAt); err != nil {
			return err
		}
		if !storedAt.Equal(relink) {
			return fmt.Errorf("expected linked_at %v, got %v", relink, storedAt)
		}

		if err := r.Delete(ctx, "alice"); err != nil {
			return err
		}
		if _, ok, err := r.GetToken(ctx, "alice"); err != nil || ok {
			return fmt.Errorf("expected link gone, got ok=%v err=%v", ok, err)
		}

		// deleting again stays a no-op
		return r.Delete(ctx, "alice")
	})
	if err != nil {
		t.Fatalf("lifecycle failed: %v", err)
	}
}
