package camunda

import (
	"context"
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"query-intent-workers/internal/common/config"
)

// Workers tracks the job workers opened by Start so they can be
// closed together on shutdown.
type Workers struct {
	mu      sync.Mutex
	client  zbc.Client
	log     *zap.Logger
	opened  map[string]worker.JobWorker
	ordered []string
}

func NewWorkers(client zbc.Client, log *zap.Logger) *Workers {
	return &Workers{
		client: client,
		log:    log,
		opened: make(map[string]worker.JobWorker),
	}
}

// Start opens a job worker for taskType unless it is disabled. It reports
// whether a worker was opened.
func (w *Workers) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) bool {
	if !wcfg.Enabled {
		w.log.Info("worker disabled", zap.String("taskType", taskType))
		return false
	}

	jobWorker := w.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	w.mu.Lock()
	w.opened[taskType] = jobWorker
	w.ordered = append(w.ordered, taskType)
	w.mu.Unlock()

	w.log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return true
}

// Started returns the task types with an open worker, in start order.
func (w *Workers) Started() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.ordered...)
}

// Stop closes every worker, waiting for in-flight jobs until ctx expires.
func (w *Workers) Stop(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, taskType := range w.ordered {
		jobWorker := w.opened[taskType]
		done := make(chan struct{})
		go func() {
			jobWorker.Close()
			jobWorker.AwaitClose()
			close(done)
		}()

		select {
		case <-done:
			w.log.Info("worker stopped", zap.String("taskType", taskType))
		case <-ctx.Done():
			w.log.Warn("worker stop timed out", zap.String("taskType", taskType))
			return
		}
	}
}

// StopTimeout is how long Stop should be given during a normal shutdown.
const StopTimeout = 30 * time.Second
