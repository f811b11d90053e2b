package transport

import (
	"container/heap"
	"sync"

	"github.com/evohub/ramses/internal/command"
)

// commandHeap orders queued commands by priority, then age.
type commandHeap []*command.Command

func (h commandHeap) Len() int           { return len(h) }
func (h commandHeap) Less(i, j int) bool { return h[i].Less(h[j]) }
func (h commandHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *commandHeap) Push(x any)        { *h = append(*h, x.(*command.Command)) }
func (h *commandHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// sendQueue is the transmit queue: highest-priority command first, FIFO
// within a priority. pop blocks until a command is available or the queue
// is closed.
type sendQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  commandHeap
	closed bool
}

func newSendQueue() *sendQueue {
	q := &sendQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *sendQueue) push(cmd *command.Command) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	heap.Push(&q.items, cmd)
	q.cond.Signal()
	return true
}

func (q *sendQueue) pop() (*command.Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	return heap.Pop(&q.items).(*command.Command), true
}

func (q *sendQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

func (q *sendQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
