package again

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Mode selects how [FanOut] runs its operations.
type Mode int

const (
	// Sequential runs operations one after another and stops at the first failure.
	Sequential Mode = iota
	// ConcurrentIndependent launches all operations at once. The first failure cancels the
	// others and is returned.
	ConcurrentIndependent
	// ConcurrentCollect launches all operations at once and waits for every one of them,
	// whatever their outcome.
	ConcurrentCollect
)

var modes = []Mode{Sequential, ConcurrentIndependent, ConcurrentCollect}

func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case ConcurrentIndependent:
		return "concurrent-independent"
	case ConcurrentCollect:
		return "concurrent-collect"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode returns the mode named s, as printed by [Mode.String].
func ParseMode(s string) (Mode, error) {
	for _, m := range modes {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown fan-out mode %q", s)
}

// Result is the outcome of the operation at position Index of a fan-out.
type Result[V any] struct {
	Index int
	Value V
	Err   error
}

// FanOut runs ops according to mode and returns their results indexed by input position,
// regardless of completion order.
//
// In the fail-fast modes ([Sequential], [ConcurrentIndependent]) the first error is returned
// together with nil results. In [ConcurrentCollect] individual failures are only reported in the
// results, and the returned error is ctx.Err().
func FanOut[V any](ctx context.Context, mode Mode, ops ...Operation[V]) ([]Result[V], error) {
	switch mode {
	case Sequential:
		return sequential(ctx, ops)
	case ConcurrentIndependent:
		return independent(ctx, ops)
	case ConcurrentCollect:
		return collect(ctx, ops)
	default:
		return nil, fmt.Errorf("unknown fan-out mode %s", mode)
	}
}

// SortResults sorts results in place by cmp, keeping the input order of equal elements.
func SortResults[V any](results []Result[V], cmp func(a, b Result[V]) int) {
	slices.SortStableFunc(results, cmp)
}

func sequential[V any](ctx context.Context, ops []Operation[V]) ([]Result[V], error) {
	results := make([]Result[V], len(ops))
	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		value, err := op(ctx)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		results[i] = Result[V]{Index: i, Value: value}
	}
	return results, nil
}

func independent[V any](ctx context.Context, ops []Operation[V]) ([]Result[V], error) {
	results := make([]Result[V], len(ops))
	group, ctx := errgroup.WithContext(ctx)
	for i, op := range ops {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			value, err := op(ctx)
			if err != nil {
				return fmt.Errorf("operation %d: %w", i, err)
			}
			results[i] = Result[V]{Index: i, Value: value}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func collect[V any](ctx context.Context, ops []Operation[V]) ([]Result[V], error) {
	results := make([]Result[V], len(ops))
	group := new(errgroup.Group)
	for i, op := range ops {
		results[i].Index = i
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		group.Go(func() error {
			results[i].Value, results[i].Err = op(ctx)
			return nil
		})
	}
	_ = group.Wait()
	return results, ctx.Err()
}
