package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/metrics"
	"alfredoptarigan/resume-screener/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(runID uuid.UUID)
}

type worker struct {
	runRepo      repositories.ScreeningRunRepository
	screening    ScreeningService
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	inFlight     sync.Map
	wg           sync.WaitGroup
	stopChan     chan struct{}
	log          *zap.Logger
}

func NewWorker(
	runRepo repositories.ScreeningRunRepository,
	screening ScreeningService,
	concurrency int,
	pollInterval time.Duration,
	log *zap.Logger,
) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &worker{
		runRepo:      runRepo,
		screening:    screening,
		jobQueue:     make(chan uuid.UUID, 100),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		log:          log.With(zap.String("component", "worker")),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.log.Info("🚀 Starting worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	w.log.Info("✅ Worker started successfully")
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.log.Info("🛑 Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	w.log.Info("✅ Worker stopped")
}

// EnqueueJob implements Worker. A run already queued or in progress is not
// enqueued twice.
func (w *worker) EnqueueJob(runID uuid.UUID) {
	if _, loaded := w.inFlight.LoadOrStore(runID, struct{}{}); loaded {
		return
	}
	select {
	case w.jobQueue <- runID:
		w.log.Info("📥 Run enqueued", zap.String("run_id", runID.String()))
	case <-w.stopChan:
		w.inFlight.Delete(runID)
		w.log.Warn("⚠️  Worker stopped, cannot enqueue run", zap.String("run_id", runID.String()))
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.log.With(zap.Int("worker_id", workerID))
	log.Debug("worker goroutine started")

	for {
		select {
		case <-w.stopChan:
			log.Debug("worker goroutine stopped")
			return
		case <-ctx.Done():
			return
		case runID := <-w.jobQueue:
			w.process(ctx, log, runID)
		}
	}
}

func (w *worker) process(ctx context.Context, log *zap.Logger, runID uuid.UUID) {
	defer w.inFlight.Delete(runID)
	metrics.WorkerJobsActive.Inc()
	defer metrics.WorkerJobsActive.Dec()

	log.Info("👷 Processing run", zap.String("run_id", runID.String()))
	if err := w.screening.ProcessRun(ctx, runID); err != nil {
		log.Error("❌ Failed to process run", zap.String("run_id", runID.String()), zap.Error(err))
		return
	}
	log.Info("✅ Run processed", zap.String("run_id", runID.String()))
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.log.Info("🔄 Starting pending runs poller", zap.Duration("interval", w.pollInterval))

	for {
		select {
		case <-w.stopChan:
			w.log.Info("🔄 Pending runs poller stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := w.runRepo.FindPendingRuns(10)
			if err != nil {
				w.log.Warn("⚠️  Failed to fetch pending runs", zap.Error(err))
				continue
			}

			if len(pending) > 0 {
				w.log.Info("📋 Found pending runs", zap.Int("count", len(pending)))
			}

			for _, run := range pending {
				w.EnqueueJob(run.ID)
			}
		}
	}
}
