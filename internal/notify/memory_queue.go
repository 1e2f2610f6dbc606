package notify

import (
	"context"
	"sync"
	"time"
)

// MemoryQueue is an in-process Queue used in tests and when Redis is not
// configured.
type MemoryQueue struct {
	mu     sync.Mutex
	queues map[string][]Event
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{queues: make(map[string][]Event)}
}

func (q *MemoryQueue) Push(ctx context.Context, userID string, ev Event) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queues[userID] = append(q.queues[userID], ev)
	return nil
}

func (q *MemoryQueue) Drain(ctx context.Context, userID string) ([]Event, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := q.queues[userID]
	delete(q.queues, userID)
	return events, nil
}
