package reqqueue

import "container/list"

// Queue is a FIFO of Requests, one per generator thread, ported from
// original_source/base/inc/GenRequestQueue.h. PrependRequest is the only reordering primitive: it
// inserts at the front so an Agent processing the current head can schedule sub-requests ahead of
// whatever the front-end already queued.
type Queue struct {
	requests *list.List
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{requests: list.New()}
}

// Len returns the number of requests currently queued.
func (q *Queue) Len() int { return q.requests.Len() }

// Enqueue appends a request to the back of the queue.
func (q *Queue) Enqueue(r Request) {
	q.requests.PushBack(r)
}

// PrependRequest inserts r at the front of the queue.
func (q *Queue) PrependRequest(r Request) {
	q.requests.PushFront(r)
}

// PrependRequests inserts rs at the front of the queue, preserving their relative order (rs[0]
// ends up at the very front).
func (q *Queue) PrependRequests(rs []Request) {
	for i := len(rs) - 1; i >= 0; i-- {
		q.PrependRequest(rs[i])
	}
}

// Round is a snapshot marking "end of this generation round", returned by StartRound. A caller
// drains the queue with PopFront until RoundFinished(round) is true; requests prepended during
// the round are processed before the round ends, but anything prepended before StartRound was
// called is not re-observed within it (spec.md §4.4, §8 scenario 3).
type Round struct {
	end *list.Element // the element that was at the front when the round started, or nil if the queue was empty
}

// StartRound begins a new generation round. The round ends at (and excludes) whatever element is
// currently at the front of the queue -- i.e. everything enqueued before this call is the "round
// boundary", and PopFront will hand back elements newer than it (prepended after StartRound) until
// that boundary element itself comes up.
func (q *Queue) StartRound() Round {
	return Round{end: q.requests.Front()}
}

// RoundFinished reports whether the queue has been drained back to the round's boundary element.
func (q *Queue) RoundFinished(round Round) bool {
	return q.requests.Front() == round.end
}

// PopFront removes and returns the request at the front of the queue, or nil if empty.
func (q *Queue) PopFront() Request {
	e := q.requests.Front()
	if e == nil {
		return nil
	}

	q.requests.Remove(e)

	return e.Value.(Request) //nolint:forcetypeassert // only Requests are ever pushed.
}

// DrainRound pops every request from the front of the queue up to (but not including) round's
// boundary, in FIFO order, processing each with handle. It stops early if handle returns false.
func (q *Queue) DrainRound(round Round, handle func(Request) bool) {
	for !q.RoundFinished(round) {
		req := q.PopFront()
		if req == nil {
			return
		}

		if !handle(req) {
			return
		}
	}
}
