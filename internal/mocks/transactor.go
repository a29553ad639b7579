package mocks

import (
	"context"
	"sync/atomic"

	"github.com/usersync/users-service/internal/store"
)

// MockTransactor runs the function directly with a nil transaction. The
// in-memory stores ignore the transaction in WithTx.
type MockTransactor struct {
	// RunInTxFn overrides the default behavior when set
	RunInTxFn func(ctx context.Context, fn store.TxFn) error

	calls atomic.Int32
}

var _ store.Transactor = (*MockTransactor)(nil)

// RunInTx implements store.Transactor.
func (m *MockTransactor) RunInTx(ctx context.Context, fn store.TxFn) error {
	m.calls.Add(1)
	if m.RunInTxFn != nil {
		return m.RunInTxFn(ctx, fn)
	}
	return fn(ctx, nil)
}

// Calls returns the number of transactions started.
func (m *MockTransactor) Calls() int {
	return int(m.calls.Load())
}
