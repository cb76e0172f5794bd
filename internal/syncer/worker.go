package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/emberlab/emgsync/internal/domain"
	"github.com/emberlab/emgsync/internal/logger"
	"github.com/emberlab/emgsync/internal/store"
)

// Worker periodically selects the sync worklist and runs the
// coordinator over it with bounded concurrency. Distinct recordings
// sync in parallel; the per-id guard keeps same-id work serial.
type Worker struct {
	coordinator   *Coordinator
	store         *store.DB
	log           *logger.Logger
	interval      time.Duration
	maxConcurrent int
	resyncFailed  bool

	ctx     context.Context
	cancel  context.CancelFunc
	trigger chan struct{}
	wg      sync.WaitGroup
}

func NewWorker(coordinator *Coordinator, db *store.DB, log *logger.Logger, interval time.Duration, maxConcurrent int, resyncFailed bool) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if log == nil {
		log = logger.Default()
	}

	return &Worker{
		coordinator:   coordinator,
		store:         db,
		log:           log.WithComponent("worker"),
		interval:      interval,
		maxConcurrent: maxConcurrent,
		resyncFailed:  resyncFailed,
		ctx:           ctx,
		cancel:        cancel,
		trigger:       make(chan struct{}, 1),
	}
}

func (w *Worker) Start() {
	w.log.Info("Starting sync worker", "interval", w.interval, "concurrency", w.maxConcurrent, "resync_failed", w.resyncFailed)
	w.wg.Add(1)
	go w.run()
}

func (w *Worker) Stop() {
	w.log.Info("Stopping sync worker")
	w.cancel()
	w.wg.Wait()
}

// Trigger requests an immediate pass. A pass already queued is enough;
// extra triggers are dropped.
func (w *Worker) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

func (w *Worker) run() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.runPass()
		case <-w.trigger:
			w.runPass()
		}
	}
}

func (w *Worker) runPass() {
	worklist, err := w.store.ListPendingWithSyncedSession()
	if err != nil {
		w.log.Error("Failed to select sync worklist", "error", err)
		return
	}

	if w.resyncFailed {
		failed, err := w.store.ListFailedWithSyncedSession()
		if err != nil {
			w.log.Error("Failed to select failed recordings", "error", err)
		} else {
			worklist = append(worklist, failed...)
		}
	}

	if len(worklist) == 0 {
		return
	}

	sem := make(chan struct{}, w.maxConcurrent)
	var passWG sync.WaitGroup

	for _, rec := range worklist {
		select {
		case <-w.ctx.Done():
			passWG.Wait()
			return
		case sem <- struct{}{}:
		}

		passWG.Add(1)
		go func(r *domain.Recording) {
			defer passWG.Done()
			defer func() { <-sem }()

			if err := w.coordinator.SyncRecording(w.ctx, r); err != nil {
				w.log.Error("Sync failed", "recording_id", r.ID, "error", err)
			}
		}(rec)
	}

	passWG.Wait()
}
