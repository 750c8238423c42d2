package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/internal/services/queue"
)

const dequeueTimeout = 5 * time.Second

// Worker drains threshold-crossing events from the queue and hands them
// to the processor.
type Worker struct {
	id        string
	queue     *queue.EventQueue
	processor *EventProcessor
	log       *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a new worker instance
func New(eventQueue *queue.EventQueue, processor *EventProcessor, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:        workerID,
		queue:     eventQueue,
		processor: processor,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins processing events from the queue
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id)

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		default:
			if err := w.processNextEvent(); err != nil {
				w.log.Error("Error processing event", "error", err, "worker_id", w.id)
				// Continue processing even on error
				time.Sleep(1 * time.Second)
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

// processNextEvent pulls the next event from the queue and processes it
func (w *Worker) processNextEvent() error {
	// Block waiting for the next event (timeout to check for shutdown)
	ctx, cancel := context.WithTimeout(w.ctx, dequeueTimeout)
	defer cancel()

	ev, err := w.queue.BlockingDequeue(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// Timeout or shutdown - this is normal
			return nil
		}
		return fmt.Errorf("failed to dequeue event: %w", err)
	}
	if ev == nil {
		return nil
	}

	w.log.Debug("Received crossing event",
		"worker_id", w.id,
		"npc_id", ev.NPCID.String(),
		"need", ev.NeedID,
		"old", ev.OldValue,
		"new", ev.NewValue,
	)

	return w.processor.Process(w.ctx, ev)
}
