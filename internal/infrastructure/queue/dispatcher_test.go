package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/crewboard/crewboard-api/internal/core/domain"
)

type countingProcessor struct {
	mu        sync.Mutex
	delivered []string
	done      chan struct{}
	expect    int
}

func newCountingProcessor(expect int) *countingProcessor {
	return &countingProcessor{done: make(chan struct{}), expect: expect}
}

func (p *countingProcessor) Deliver(_ context.Context, task *domain.Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delivered = append(p.delivered, task.ID)
	if len(p.delivered) == p.expect {
		close(p.done)
	}
	return nil
}

func TestDispatcher_DeliversEveryTask(t *testing.T) {
	processor := newCountingProcessor(10)
	d := NewDispatcher(4, processor, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < 10; i++ {
		d.Enqueue(&domain.Task{ID: string(rune('a' + i))})
	}

	select {
	case <-processor.done:
	case <-time.After(time.Second):
		t.Fatalf("delivered %d of 10 tasks", len(processor.delivered))
	}
}

func TestDispatcher_SameTaskSameShard(t *testing.T) {
	d := NewDispatcher(8, nil, zerolog.Nop())

	first := d.shardIndex("task-42")
	for i := 0; i < 100; i++ {
		if d.shardIndex("task-42") != first {
			t.Fatal("shard index not deterministic")
		}
	}
}

func TestDispatcher_DefaultWorkerCount(t *testing.T) {
	d := NewDispatcher(0, nil, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("workers = %d, want %d", len(d.workers), defaultWorkers)
	}
}
