package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dftest-dev/dftest/internal/domain/checks"
	"github.com/dftest-dev/dftest/internal/domain/dataset"
	"github.com/dftest-dev/dftest/internal/domain/rules"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

// task is one binding over a half-open row range.
// errs and errCount are owned by the worker running the task until the pool drains.
type task struct {
	errs     []*checks.CellEvaluationError
	binding  int
	start    int
	end      int
	errCount int
}

// evaluateWithWorkerPool runs tasks on MaxWorkers goroutines.
// Each task writes a disjoint slice of the grid, so the grid needs no locking.
func (e *Engine) evaluateWithWorkerPool(
	ctx context.Context,
	tasks []*task,
	bindings []rules.Binding,
	cells map[string][]dataset.Value,
	grid [][]values.Outcome,
) error {
	g, gCtx := errgroup.WithContext(ctx)

	// Buffered to reduce blocking when the feeder is ahead of the workers
	workChan := make(chan *task, e.config.MaxWorkers)

	numWorkers := min(e.config.MaxWorkers, len(tasks))
	for i := 0; i < numWorkers; i++ {
		g.Go(func() error {
			for t := range workChan {
				if err := gCtx.Err(); err != nil {
					return err
				}
				b := bindings[t.binding]
				e.evaluateTask(t, b, cells[b.Column], grid[t.binding])
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(workChan)
		for _, t := range tasks {
			select {
			case workChan <- t:
			case <-gCtx.Done():
				return gCtx.Err()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if cerr := contextError(ctx); cerr != nil {
			return cerr
		}
		return fmt.Errorf("worker pool evaluation failed: %w", err)
	}
	return nil
}
