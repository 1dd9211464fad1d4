package provider

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/petasbytes/chain-tools/chain"
)

type limited struct {
	next chain.Completer
	sem  *semaphore.Weighted
}

// Limit caps the number of in-flight requests through c at n. Callers over
// the ceiling block until a slot frees up or their context ends.
// n <= 0 returns c unchanged.
func Limit(c chain.Completer, n int) chain.Completer {
	if n <= 0 {
		return c
	}
	return &limited{next: c, sem: semaphore.NewWeighted(int64(n))}
}

func (l *limited) Complete(ctx context.Context, req chain.Request) (string, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer l.sem.Release(1)
	return l.next.Complete(ctx, req)
}
