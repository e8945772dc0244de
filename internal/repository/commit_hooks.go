package repository

import (
	"context"
	"sync"
)

type hooksKey struct{}

type commitHooks struct {
	mu  sync.Mutex
	fns []func(context.Context)
}

// WithCommitHooks prepares ctx to collect AfterCommit callbacks for a new
// transaction. The returned run func fires them in registration order and
// must be called only after a successful commit. When ctx already collects
// hooks (a nested unit of work), run is a no-op and the outer transaction
// fires them.
func WithCommitHooks(ctx context.Context) (context.Context, func()) {
	if _, ok := ctx.Value(hooksKey{}).(*commitHooks); ok {
		return ctx, func() {}
	}
	h := &commitHooks{}
	ctx = context.WithValue(ctx, hooksKey{}, h)
	return ctx, func() {
		h.mu.Lock()
		fns := h.fns
		h.fns = nil
		h.mu.Unlock()
		runCtx := context.WithoutCancel(ctx)
		for _, fn := range fns {
			fn(runCtx)
		}
	}
}

// AfterCommit defers fn until the transaction carried by ctx commits. Outside
// a transaction fn runs immediately. Rolled back transactions drop fn.
func AfterCommit(ctx context.Context, fn func(context.Context)) {
	h, ok := ctx.Value(hooksKey{}).(*commitHooks)
	if !ok {
		fn(ctx)
		return
	}
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}
