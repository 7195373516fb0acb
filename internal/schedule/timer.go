package schedule

import (
	"container/heap"
	"errors"
	"sync"
	"time"
)

// ErrTimerStopped is returned when scheduling on a stopped timer queue.
var ErrTimerStopped = errors.New("timer queue is stopped")

// task is a callback scheduled for a point in time.
type task struct {
	id    string
	runAt time.Time
	fn    func()
	index int // position in the heap
}

type taskHeap []*task

func (h taskHeap) Len() int            { return len(h) }
func (h taskHeap) Less(i, j int) bool  { return h[i].runAt.Before(h[j].runAt) }
func (h *taskHeap) Push(x interface{}) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[0 : n-1]
	return t
}

// TimerQueue runs callbacks at scheduled wall-clock times, ordered by a
// min-heap. It backs calendar-style maintenance work (the daily history
// sweep); the fixed-interval check loop lives in Scheduler. Scheduling a
// task under an existing ID replaces the previous one.
type TimerQueue struct {
	mu      sync.Mutex
	heap    taskHeap
	tasks   map[string]*task
	wakeup  chan struct{}
	stopCh  chan struct{}
	stopped bool
}

// NewTimerQueue creates a stopped timer queue; call Start to run it.
func NewTimerQueue() *TimerQueue {
	tq := &TimerQueue{
		heap:   make(taskHeap, 0),
		tasks:  make(map[string]*task),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
	}
	heap.Init(&tq.heap)
	return tq
}

// Start launches the dispatch loop.
func (tq *TimerQueue) Start() {
	go tq.run()
}

// Stop shuts the queue down. Pending tasks are discarded.
func (tq *TimerQueue) Stop() {
	tq.mu.Lock()
	defer tq.mu.Unlock()
	if tq.stopped {
		return
	}
	tq.stopped = true
	close(tq.stopCh)
}

// Schedule registers fn to run at runAt. An existing task with the same ID
// is replaced.
func (tq *TimerQueue) Schedule(id string, runAt time.Time, fn func()) error {
	tq.mu.Lock()
	defer tq.mu.Unlock()

	if tq.stopped {
		return ErrTimerStopped
	}

	if existing, ok := tq.tasks[id]; ok {
		heap.Remove(&tq.heap, existing.index)
		delete(tq.tasks, id)
	}

	t := &task{id: id, runAt: runAt, fn: fn}
	heap.Push(&tq.heap, t)
	tq.tasks[id] = t

	// Wake the dispatcher if this became the earliest task.
	if tq.heap[0] == t {
		select {
		case tq.wakeup <- struct{}{}:
		default:
		}
	}

	return nil
}

// Cancel removes a scheduled task. Returns false if the ID is unknown.
func (tq *TimerQueue) Cancel(id string) bool {
	tq.mu.Lock()
	defer tq.mu.Unlock()

	t, ok := tq.tasks[id]
	if !ok {
		return false
	}
	heap.Remove(&tq.heap, t.index)
	delete(tq.tasks, id)
	return true
}

// Pending reports the number of scheduled tasks.
func (tq *TimerQueue) Pending() int {
	tq.mu.Lock()
	defer tq.mu.Unlock()
	return len(tq.tasks)
}

func (tq *TimerQueue) run() {
	for {
		tq.mu.Lock()
		if tq.stopped {
			tq.mu.Unlock()
			return
		}

		wait := 24 * time.Hour
		if tq.heap.Len() > 0 {
			next := tq.heap[0]
			wait = time.Until(next.runAt)
			if wait <= 0 {
				t := heap.Pop(&tq.heap).(*task)
				delete(tq.tasks, t.id)
				tq.mu.Unlock()
				go t.fn()
				continue
			}
		}
		tq.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-tq.wakeup:
			timer.Stop()
		case <-tq.stopCh:
			timer.Stop()
			return
		}
	}
}

// NextDailyRun returns the next occurrence of the given "HH:MM" wall-clock
// time after now. A malformed value falls back to the same time tomorrow.
func NextDailyRun(now time.Time, at string) time.Time {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return now.Add(24 * time.Hour)
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
