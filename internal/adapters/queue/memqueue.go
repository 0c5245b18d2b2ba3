package queue

import (
	"sync"

	"github.com/adityakaaltatva/ladle-tracking-system/internal/domain"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/ports"
)

// MemQueue is a bounded in-memory queue that preserves FIFO ordering.
type MemQueue struct {
	mu   sync.Mutex
	data []*domain.TickRecord
	cap  int
}

func NewMemQueue(capacity int) *MemQueue {
	return &MemQueue{
		data: make([]*domain.TickRecord, 0, capacity),
		cap:  capacity,
	}
}

func (q *MemQueue) Enqueue(r *domain.TickRecord) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.data) >= q.cap {
		return false
	}
	q.data = append(q.data, r)
	return true
}

func (q *MemQueue) DequeueBatch(max int) []*domain.TickRecord {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.data) == 0 {
		return nil
	}
	if max <= 0 || max > len(q.data) {
		max = len(q.data)
	}
	out := make([]*domain.TickRecord, max)
	copy(out, q.data[:max])
	rest := copy(q.data, q.data[max:])
	clear(q.data[rest:])
	q.data = q.data[:rest]
	return out
}

func (q *MemQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data)
}

var _ ports.RecordQueue = (*MemQueue)(nil)
