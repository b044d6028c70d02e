package runtime

// MicrotaskQueue is a FIFO of pending jobs: Promise reaction callbacks and
// `queueMicrotask` entries, drained between macrotask boundaries (a
// single-threaded concurrency model — no real event loop, just a queue the embedder
// drains by calling Engine.RunMicrotasks after each top-level Evaluate, or
// the REPL drains after each line).
type MicrotaskQueue struct {
	jobs []func()
}

// NewMicrotaskQueue returns an empty queue.
func NewMicrotaskQueue() *MicrotaskQueue {
	return &MicrotaskQueue{}
}

// Enqueue schedules job to run on the next drain.
func (q *MicrotaskQueue) Enqueue(job func()) {
	q.jobs = append(q.jobs, job)
}

// Drain runs every queued job, including ones newly enqueued by earlier
// jobs in the same drain (Promise reaction chains routinely do this), and
// returns the number executed.
func (q *MicrotaskQueue) Drain() int {
	n := 0
	for len(q.jobs) > 0 {
		job := q.jobs[0]
		q.jobs = q.jobs[1:]
		job()
		n++
	}
	return n
}

// Pending reports whether any microtask is queued.
func (q *MicrotaskQueue) Pending() bool { return len(q.jobs) > 0 }

// PromiseState is the state machine backing a Promise object's
// Internal field: pending, then fulfilled-with-value or rejected-with-reason
// exactly once, fan-out to every reaction registered before or after
// settlement.
type PromiseState struct {
	Status PromiseStatus
	Value  Value

	onFulfilled []func(Value)
	onRejected  []func(Value)

	Handled bool // becomes true once .then/.catch attaches a rejection handler
}

type PromiseStatus int

const (
	PromisePending PromiseStatus = iota
	PromiseFulfilled
	PromiseRejected
)

// NewPromiseObject allocates a pending Promise exotic object.
func NewPromiseObject(proto *Object) *Object {
	return &Object{
		shape:      RootShape,
		prototype:  proto,
		Class:      "Promise",
		Extensible: true,
		Internal:   &PromiseState{Status: PromisePending},
	}
}

// Resolve settles p as fulfilled with value, scheduling its reactions on
// queue. A no-op if p is already settled ("a promise settles at
// most once").
func (p *Object) Resolve(queue *MicrotaskQueue, value Value) {
	st := p.Internal.(*PromiseState)
	if st.Status != PromisePending {
		return
	}
	if inner, ok := value.(*Object); ok && inner.Class == "Promise" {
		inner.Then(queue,
			func(v Value) { p.Resolve(queue, v) },
			func(r Value) { p.Reject(queue, r) })
		return
	}
	st.Status = PromiseFulfilled
	st.Value = value
	for _, cb := range st.onFulfilled {
		cb := cb
		queue.Enqueue(func() { cb(value) })
	}
	st.onFulfilled = nil
	st.onRejected = nil
}

// Reject settles p as rejected with reason, scheduling its reactions.
func (p *Object) Reject(queue *MicrotaskQueue, reason Value) {
	st := p.Internal.(*PromiseState)
	if st.Status != PromisePending {
		return
	}
	st.Status = PromiseRejected
	st.Value = reason
	for _, cb := range st.onRejected {
		cb := cb
		queue.Enqueue(func() { cb(reason) })
	}
	st.onFulfilled = nil
	st.onRejected = nil
}

// Then registers reaction callbacks, invoking immediately (via the queue,
// never synchronously) if p is already settled, or buffering
// them if still pending.
func (p *Object) Then(queue *MicrotaskQueue, onFulfilled, onRejected func(Value)) {
	st := p.Internal.(*PromiseState)
	st.Handled = st.Handled || onRejected != nil
	switch st.Status {
	case PromiseFulfilled:
		v := st.Value
		if onFulfilled != nil {
			queue.Enqueue(func() { onFulfilled(v) })
		}
	case PromiseRejected:
		r := st.Value
		if onRejected != nil {
			queue.Enqueue(func() { onRejected(r) })
		}
	default:
		if onFulfilled != nil {
			st.onFulfilled = append(st.onFulfilled, onFulfilled)
		}
		if onRejected != nil {
			st.onRejected = append(st.onRejected, onRejected)
		}
	}
}
