package app

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// BatchItem is the outcome for one input of AppraiseBatch. Exactly one of
// Valuation and Invalid is set.
type BatchItem struct {
	Index     int              `json:"index"`
	Valuation *Valuation       `json:"valuation,omitempty"`
	Invalid   *ValidationError `json:"-"`
}

// AppraiseBatch appraises inputs with at most parallelism concurrent
// valuations. Items keep input order. Invalid attributes are recorded on
// their item; any other failure stops the batch.
func (p *Pipeline) AppraiseBatch(ctx context.Context, inputs []map[string]any, parallelism int) ([]BatchItem, error) {
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	items := make([]BatchItem, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, raw := range inputs {
		items[i].Index = i
		g.Go(func() error {
			v, err := p.Appraise(gctx, raw)
			if err != nil {
				var invalid *ValidationError
				if errors.As(err, &invalid) {
					items[i].Invalid = invalid
					return nil
				}
				return err
			}
			items[i].Valuation = &v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}
