package chain

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// InvokeAll invokes t once per input with at most limit invocations in flight
// and returns the outputs in input order. The first failure cancels the
// context passed to the remaining invocations and is returned.
// A limit <= 0 means no limit.
func InvokeAll(ctx context.Context, t Tool, inputs []string, limit int) ([]string, error) {
	out := make([]string, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, in := range inputs {
		g.Go(func() error {
			res, err := t.Invoke(gctx, in)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
