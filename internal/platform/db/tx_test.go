package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
)

// fakeTx satisfies pgx.Tx via embedding; no methods are called in tests.
type fakeTx struct{ pgx.Tx }

func TestTxFromContext_Empty(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Errorf("expected nil tx from empty context, got %v", tx)
	}
}

func TestWithTx_NestedJoinsOuter(t *testing.T) {
	// A nil pool would panic on Begin; the nested call must short-circuit
	// before reaching it when a transaction is already in the context.
	ctx := context.WithValue(context.Background(), txKey, fakeTx{})

	called := false
	err := WithTx(ctx, nil, func(inner context.Context) error {
		called = true
		if TxFromContext(inner) == nil {
			t.Error("expected ambient tx inside nested WithTx")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected fn to be called")
	}
}
