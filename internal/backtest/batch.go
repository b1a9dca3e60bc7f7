package backtest

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"crypto-strategy-lab/internal/domain"
)

// RunAll simulates every configuration against the shared series, up to
// workers strategies at a time. Each simulation owns its portfolio state and
// only reads the series, so no locking is needed beyond the fan-in. Results
// keep the input order regardless of completion order. A failed config does
// not stop the others; all failures come back joined in the returned error,
// with nil placeholders in the result slice.
func RunAll(series *domain.CandleSeries, cfgs []domain.StrategyConfig, workers int) ([]*Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(cfgs))
	errs := make([]error, len(cfgs))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for idx, cfg := range cfgs {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, cfg domain.StrategyConfig) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := Run(series, cfg)
			if err != nil {
				errs[idx] = fmt.Errorf("config %d (%s): %w", idx, cfg.Kind, err)
				return
			}
			results[idx] = res
		}(idx, cfg)
	}
	wg.Wait()

	return results, errors.Join(errs...)
}
