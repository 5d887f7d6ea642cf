package backtest

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/esuzuk/fx-backtest/internal/risk"
	"github.com/esuzuk/fx-backtest/internal/strategy"
	"github.com/esuzuk/fx-backtest/pkg/types"
)

// workerPool runs independent backtest jobs across a fixed set of
// goroutines. Each job owns its own engine and risk manager, so workers
// share nothing but the read-only bar slice.
type workerPool struct {
	workerCount int
	jobQueue    chan runJob
	resultQueue chan runOutcome
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// runJob is one parameter combination to evaluate.
type runJob struct {
	Index      int
	Params     map[string]float64
	Strategy   strategy.Strategy
	Config     Config
	RiskConfig risk.Config
	Bars       []types.Bar
	Pair       types.CurrencyPair
}

// runOutcome carries a finished run back to the collector.
type runOutcome struct {
	Index    int
	Params   map[string]float64
	Result   *Result
	Duration time.Duration
	Err      error
}

func newWorkerPool(workerCount, bufferSize int) *workerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &workerPool{
		workerCount: workerCount,
		jobQueue:    make(chan runJob, bufferSize),
		resultQueue: make(chan runOutcome, bufferSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (wp *workerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Stop drains the pool: no new jobs, workers finish, result channel closes.
func (wp *workerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

func (wp *workerPool) Submit(job runJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

func (wp *workerPool) Results() <-chan runOutcome {
	return wp.resultQueue
}

func (wp *workerPool) worker() {
	defer wp.wg.Done()
	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}
			outcome := wp.process(job)
			select {
			case wp.resultQueue <- outcome:
			case <-wp.ctx.Done():
				return
			}
		case <-wp.ctx.Done():
			return
		}
	}
}

func (wp *workerPool) process(job runJob) runOutcome {
	start := time.Now()
	outcome := runOutcome{Index: job.Index, Params: job.Params}

	engine, err := NewEngine(job.Strategy, job.RiskConfig, job.Config)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	result, err := engine.Run(job.Bars, job.Pair)
	outcome.Result = result
	outcome.Err = err
	outcome.Duration = time.Since(start)
	return outcome
}
