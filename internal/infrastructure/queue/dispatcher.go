package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/crewboard/crewboard-api/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// ReminderProcessor handles a single due-soon task.
type ReminderProcessor interface {
	Deliver(ctx context.Context, task *domain.Task) error
}

// Dispatcher routes due-soon tasks to a fixed set of workers using consistent
// hashing on the task id, so repeated sweeps evaluate the same task on the
// same worker in order.
type Dispatcher struct {
	workers   []chan *domain.Task
	processor ReminderProcessor
	log       zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, processor ReminderProcessor, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan *domain.Task, numWorkers),
		processor: processor,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan *domain.Task, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a task to the worker responsible for it. Non-blocking up to
// channelBuffer capacity.
func (d *Dispatcher) Enqueue(task *domain.Task) {
	d.workers[d.shardIndex(task.ID)] <- task
}

// shardIndex maps a task id deterministically to a worker index.
func (d *Dispatcher) shardIndex(taskID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(taskID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan *domain.Task) {
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-ch:
			if !ok {
				return
			}
			if err := d.processor.Deliver(ctx, task); err != nil {
				d.log.Error().Err(err).
					Str("task_id", task.ID).
					Int("worker_id", id).
					Msg("reminder delivery failed")
			}
		}
	}
}
