package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"artfolio/internal/core/apperror"
)

// fakeTx implements the pgx.Tx surface the manager touches. Unused
// methods come from the embedded interface and panic if reached.
type fakeTx struct {
	pgx.Tx
	commitErrs []error // consumed one per Commit call
	commits    int
	rollbacks  int
	execs      []string
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, sql)
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.commits++
	if len(t.commitErrs) > 0 {
		err := t.commitErrs[0]
		t.commitErrs = t.commitErrs[1:]
		return err
	}
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rollbacks++
	return pgx.ErrTxClosed
}

type fakeBeginner struct {
	begins  int
	lastOpt pgx.TxOptions
	txs     []*fakeTx
	nextTx  func() *fakeTx
}

func (b *fakeBeginner) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	b.begins++
	b.lastOpt = opts
	tx := &fakeTx{}
	if b.nextTx != nil {
		tx = b.nextTx()
	}
	b.txs = append(b.txs, tx)
	return tx, nil
}

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 5, BaseBackoff: time.Microsecond, MaxBackoff: time.Millisecond}
}

func transientErr() error {
	return &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
}

func TestRunInTransaction_Commits(t *testing.T) {
	db := &fakeBeginner{}
	m := (&TxManager{db: db}).WithRetryConfig(fastRetry())

	calls := 0
	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 || db.begins != 1 {
		t.Fatalf("want 1 call and 1 begin, got %d calls %d begins", calls, db.begins)
	}
	if db.txs[0].commits != 1 {
		t.Fatalf("want 1 commit, got %d", db.txs[0].commits)
	}
}

func TestRunInTransaction_RollsBackOnError(t *testing.T) {
	db := &fakeBeginner{}
	m := (&TxManager{db: db}).WithRetryConfig(fastRetry())

	wantErr := errors.New("business failure")
	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("want business error back, got %v", err)
	}
	if db.txs[0].commits != 0 {
		t.Fatalf("commit must not run after fn error")
	}
	if db.txs[0].rollbacks == 0 {
		t.Fatalf("rollback must run on every non-commit exit")
	}
}

func TestRunInTransaction_RetriesTransientConflict(t *testing.T) {
	db := &fakeBeginner{}
	m := (&TxManager{db: db}).WithRetryConfig(fastRetry())

	attempts := 0
	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return transientErr()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("conflict resolved by retry must not surface, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("want 3 attempts, got %d", attempts)
	}
	if db.begins != 3 {
		t.Fatalf("each attempt needs a fresh transaction, got %d begins", db.begins)
	}
}

func TestRunInTransaction_RetriesCommitConflict(t *testing.T) {
	first := true
	db := &fakeBeginner{nextTx: func() *fakeTx {
		tx := &fakeTx{}
		if first {
			tx.commitErrs = []error{transientErr()}
			first = false
		}
		return tx
	}}
	m := (&TxManager{db: db}).WithRetryConfig(fastRetry())

	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("commit-time conflict must be retried, got %v", err)
	}
	if db.begins != 2 {
		t.Fatalf("want 2 begins, got %d", db.begins)
	}
}

func TestRunInTransaction_NoRetryOnIntegrityViolation(t *testing.T) {
	db := &fakeBeginner{}
	m := (&TxManager{db: db}).WithRetryConfig(fastRetry())

	attempts := 0
	uniqueErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"}
	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		attempts++
		return uniqueErr
	})
	if attempts != 1 {
		t.Fatalf("integrity violations must not be retried, got %d attempts", attempts)
	}
	if !errors.Is(err, uniqueErr) {
		t.Fatalf("want the violation back, got %v", err)
	}
}

func TestRunInTransaction_ExhaustsRetryBudget(t *testing.T) {
	db := &fakeBeginner{}
	m := (&TxManager{db: db}).WithRetryConfig(fastRetry())

	attempts := 0
	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		attempts++
		return transientErr()
	})
	if attempts != 5 {
		t.Fatalf("want 5 attempts, got %d", attempts)
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeDatabase {
		t.Fatalf("exhausted retries must surface as a storage error, got %v", err)
	}
	if appErr.Details["attempts"] != 5 {
		t.Fatalf("want attempts detail 5, got %v", appErr.Details["attempts"])
	}
}

func TestRunInTransaction_NestedReusesTransaction(t *testing.T) {
	db := &fakeBeginner{}
	m := (&TxManager{db: db}).WithRetryConfig(fastRetry())

	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		return m.RunInTransaction(ctx, func(ctx context.Context) error {
			return nil
		})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.begins != 1 {
		t.Fatalf("nested call must reuse the open transaction, got %d begins", db.begins)
	}
}

func TestReadOnly_UsesReadOnlyAccessMode(t *testing.T) {
	db := &fakeBeginner{}
	m := (&TxManager{db: db}).WithRetryConfig(fastRetry())

	err := m.ReadOnly(context.Background(), func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.lastOpt.AccessMode != pgx.ReadOnly {
		t.Fatalf("want read-only access mode, got %v", db.lastOpt.AccessMode)
	}
}

func TestRunInTransaction_SetsStatementTimeout(t *testing.T) {
	db := &fakeBeginner{}
	m := (&TxManager{db: db}).WithRetryConfig(fastRetry())

	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(db.txs[0].execs) == 0 || db.txs[0].execs[0] != "SET LOCAL statement_timeout = '30000ms'" {
		t.Fatalf("want statement timeout set first, got %v", db.txs[0].execs)
	}
}

func TestGetQuerier_ReturnsTxInsideTransaction(t *testing.T) {
	db := &fakeBeginner{}
	m := (&TxManager{db: db}).WithRetryConfig(fastRetry())

	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		if m.GetTx(ctx) == nil {
			t.Fatal("transaction missing from context")
		}
		if m.GetQuerier(ctx) == nil {
			t.Fatal("querier missing inside transaction")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
