// Package txn runs an ordered list of operations with compensating
// rollbacks, undoing completed work in reverse order when a later step fails.
package txn

import (
	"context"
	"errors"
	"lane-posting-service/internal/domain"
	"lane-posting-service/internal/platform/obs"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrTransactionClosed is returned when adding to or executing a
// transaction that already ran.
var ErrTransactionClosed = errors.New("transaction closed")

type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Terminal reports whether no further work can happen in this state.
func (s State) Terminal() bool { return s == StateCompleted || s == StateFailed }

type operation struct {
	name     string
	do       func(context.Context) error
	rollback func(context.Context) error
}

type Transaction struct {
	id string

	mu    sync.Mutex
	ops   []operation
	state State
}

func New() *Transaction {
	return &Transaction{id: uuid.NewString(), state: StatePending}
}

func (t *Transaction) ID() string { return t.id }

func (t *Transaction) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Add appends an operation and its compensation. rollback may be nil.
func (t *Transaction) Add(name string, do, rollback func(context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StatePending {
		return ErrTransactionClosed
	}
	t.ops = append(t.ops, operation{name: name, do: do, rollback: rollback})
	return nil
}

// Execute runs the operations in order. When one fails, or ctx is done
// before it starts, the completed operations are rolled back newest first
// and the failure is returned as a *domain.TransactionError. Rollback
// failures are logged and do not replace the original error.
func (t *Transaction) Execute(ctx context.Context) (err error) {
	defer obs.Time(ctx, "txn.Execute")(&err)

	t.mu.Lock()
	if t.state != StatePending {
		t.mu.Unlock()
		return ErrTransactionClosed
	}
	t.state = StateRunning
	ops := t.ops
	t.mu.Unlock()

	log := obs.Logger(ctx).With(zap.String("tx_id", t.id))

	for i, op := range ops {
		opErr := ctx.Err()
		if opErr == nil {
			opErr = op.do(ctx)
		}
		if opErr != nil {
			t.rollback(context.WithoutCancel(ctx), log, ops[:i])
			t.finish(StateFailed)
			return &domain.TransactionError{TxID: t.id, Op: op.name, Err: opErr}
		}
	}

	t.finish(StateCompleted)
	log.Debug("transaction committed", zap.Int("operations", len(ops)))
	return nil
}

func (t *Transaction) rollback(ctx context.Context, log *zap.Logger, done []operation) {
	for i := len(done) - 1; i >= 0; i-- {
		op := done[i]
		if op.rollback == nil {
			continue
		}
		if err := op.rollback(ctx); err != nil {
			log.Error("rollback failed", zap.String("op", op.name), zap.Error(err))
			continue
		}
		log.Info("rolled back", zap.String("op", op.name))
	}
}

func (t *Transaction) finish(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}
