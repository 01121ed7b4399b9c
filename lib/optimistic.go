package lib

import (
	"context"
	"sync"
)

type pendingOp[T any] struct {
	seq   uint64
	value T
}

// Optimistic holds a value the user can change ahead of the server. The
// displayed value is the newest unsettled change, or the last confirmed value
// when nothing is in flight. Commits run one at a time in the order the
// changes were made; a failed commit drops only its own change.
type Optimistic[T any] struct {
	mu           sync.Mutex
	confirmed    T
	confirmedSeq uint64
	pending      []pendingOp[T]
	nextSeq      uint64

	// closed by the most recent commit when it settles
	tail chan struct{}

	onChange func()
}

func NewOptimistic[T any](initial T) *Optimistic[T] {
	return &Optimistic[T]{confirmed: initial}
}

// OnChange sets a callback fired whenever the displayed value may have changed.
func (o *Optimistic[T]) OnChange(fn func()) {
	o.mu.Lock()
	o.onChange = fn
	o.mu.Unlock()
}

func (o *Optimistic[T]) Value() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.valueLocked()
}

func (o *Optimistic[T]) Confirmed() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.confirmed
}

func (o *Optimistic[T]) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// Mutate applies next to the displayed value right away, then runs commit
// with the new value once every earlier commit has settled. The commit error
// is returned so the caller can report it.
func (o *Optimistic[T]) Mutate(ctx context.Context, next func(current T) T, commit func(ctx context.Context, value T) error) error {
	o.mu.Lock()
	o.nextSeq++
	op := pendingOp[T]{seq: o.nextSeq, value: next(o.valueLocked())}
	o.pending = append(o.pending, op)

	prev := o.tail
	done := make(chan struct{})
	o.tail = done
	o.mu.Unlock()

	o.notify()

	defer close(done)

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			o.settle(op.seq, ctx.Err())
			return ctx.Err()
		}
	}

	err := commit(ctx, op.value)
	o.settle(op.seq, err)
	return err
}

func (o *Optimistic[T]) settle(seq uint64, err error) {
	o.mu.Lock()
	for i, op := range o.pending {
		if op.seq != seq {
			continue
		}
		o.pending = append(o.pending[:i], o.pending[i+1:]...)
		if err == nil && seq > o.confirmedSeq {
			o.confirmed = op.value
			o.confirmedSeq = seq
		}
		break
	}
	o.mu.Unlock()

	o.notify()
}

func (o *Optimistic[T]) valueLocked() T {
	if n := len(o.pending); n > 0 {
		return o.pending[n-1].value
	}
	return o.confirmed
}

func (o *Optimistic[T]) notify() {
	o.mu.Lock()
	fn := o.onChange
	o.mu.Unlock()

	if fn != nil {
		fn()
	}
}
