package services

import "sync"

// notifyQueue runs jobs one at a time per request, in the order they were
// pushed. Jobs for different requests run concurrently.
type notifyQueue struct {
	mu    sync.Mutex
	lanes map[uint][]func()
	wg    sync.WaitGroup
}

func newNotifyQueue() *notifyQueue {
	return &notifyQueue{lanes: make(map[uint][]func())}
}

// push queues job behind every earlier job for the same request
func (q *notifyQueue) push(id uint, job func()) {
	q.wg.Add(1)

	q.mu.Lock()
	pending, busy := q.lanes[id]
	q.lanes[id] = append(pending, job)
	q.mu.Unlock()

	if !busy {
		go q.drain(id)
	}
}

// drain runs the lane of id until it is empty. A lane stays in the map while
// its worker runs.
func (q *notifyQueue) drain(id uint) {
	for {
		q.mu.Lock()
		jobs := q.lanes[id]
		if len(jobs) == 0 {
			delete(q.lanes, id)
			q.mu.Unlock()
			return
		}
		job := jobs[0]
		q.lanes[id] = jobs[1:]
		q.mu.Unlock()

		job()
		q.wg.Done()
	}
}

// wait blocks until every pushed job has run
func (q *notifyQueue) wait() {
	q.wg.Wait()
}
