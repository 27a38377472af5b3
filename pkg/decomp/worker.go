package decomp

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oisee/shiftaddc/pkg/matrix"
)

// SlicingWorkerPool searches candidate P2D slicings in parallel. Adapted
// from the teacher's pkg/search/worker.go WorkerPool: a buffered channel
// of tasks drained by NumWorkers goroutines, a sync.WaitGroup barrier, and
// a ticker-driven progress reporter — the same shape, repurposed from
// searching instruction replacements to searching slicing vectors.
type SlicingWorkerPool struct {
	NumWorkers int
	mu         sync.Mutex
	best       *SlicingResult
	checked    atomic.Int64
	completed  atomic.Int64
}

// SlicingTask is one candidate slicing to evaluate.
type SlicingTask struct {
	Slicing []int
}

// SlicingResult pairs a candidate slicing with its P2D outcome.
type SlicingResult struct {
	Slicing []int
	Result  P2DResult
}

// NewSlicingWorkerPool creates a pool with the given worker count (0 =
// runtime.NumCPU(), matching the teacher's NewWorkerPool default).
func NewSlicingWorkerPool(numWorkers int) *SlicingWorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &SlicingWorkerPool{NumWorkers: numWorkers}
}

// Best returns the best (fewest total adders) converged result found so
// far, or nil if none converged.
func (wp *SlicingWorkerPool) Best() *SlicingResult {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return wp.best
}

// Stats returns how many candidates have been checked.
func (wp *SlicingWorkerPool) Stats() int64 { return wp.checked.Load() }

// RunSlicingSearch evaluates every candidate slicing against m under cfg,
// keeping the converged result with the fewest total adders. Matches the
// teacher's RunTasks shape: progress ticker every 10s, final summary line.
func (wp *SlicingWorkerPool) RunSlicingSearch(m *matrix.Matrix, candidates [][]int, eBase P2DConfig, verbose bool) *SlicingResult {
	total := int64(len(candidates))
	ch := make(chan SlicingTask, len(candidates))
	for _, c := range candidates {
		ch <- SlicingTask{Slicing: c}
	}
	close(ch)

	done := make(chan struct{})
	start := time.Now()
	if verbose {
		go func() {
			ticker := time.NewTicker(10 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					comp := wp.completed.Load()
					elapsed := time.Since(start)
					pct := float64(comp) / float64(total) * 100
					fmt.Printf("  [%s] %d/%d slicings (%.1f%%) checked\n", elapsed.Round(time.Second), comp, total, pct)
				}
			}
		}()
	}

	var wg sync.WaitGroup
	for i := 0; i < wp.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range ch {
				wp.checked.Add(1)
				cfg := eBase
				cfg.Slices = task.Slicing
				res := DecomposeP2D(m, cfg)
				wp.completed.Add(1)
				if !res.Converged {
					continue
				}
				wp.mu.Lock()
				if wp.best == nil || res.TotalAdds < wp.best.Result.TotalAdds {
					wp.best = &SlicingResult{Slicing: task.Slicing, Result: res}
				}
				wp.mu.Unlock()
			}
		}()
	}
	wg.Wait()
	close(done)

	if verbose {
		fmt.Printf("  [%s] %d/%d slicings (100.0%%) | DONE\n", time.Since(start).Round(time.Second), total, total)
	}
	return wp.Best()
}
