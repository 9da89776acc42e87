package character

// Handler receives the signals a character produces. Signals queued during a tick are delivered, in the
// order they were queued, only once the tick committed; a faulted tick delivers none of them.
type Handler interface {
	HandleGrounded(grounded bool)
	HandleEdgeFall(falling bool)
	HandleFreeFall(falling bool)
	HandleJump()
	HandleDirectionalSpeed(front, side float32)
	HandleMotionSpeed(speed float32)
	HandleCameraTarget(pitch, yaw float64)

	// HandleTickCommitted is called after the signals of a committed tick were delivered.
	HandleTickCommitted(r Report)
	// HandleTickFault is called when a tick was aborted. Nothing of the tick was committed.
	HandleTickFault(fault *TickFault)
}

// NopHandler implements Handler and does nothing.
type NopHandler struct{}

func (NopHandler) HandleGrounded(bool)                 {}
func (NopHandler) HandleEdgeFall(bool)                 {}
func (NopHandler) HandleFreeFall(bool)                 {}
func (NopHandler) HandleJump()                         {}
func (NopHandler) HandleDirectionalSpeed(_, _ float32) {}
func (NopHandler) HandleMotionSpeed(float32)           {}
func (NopHandler) HandleCameraTarget(_, _ float64)     {}
func (NopHandler) HandleTickCommitted(Report)          {}
func (NopHandler) HandleTickFault(*TickFault)          {}

type signalQueue struct {
	fns []func(Handler)
}

func (q *signalQueue) push(fn func(Handler)) {
	q.fns = append(q.fns, fn)
}

func (q *signalQueue) len() int {
	return len(q.fns)
}

func (q *signalQueue) flush(h Handler) {
	for _, fn := range q.fns {
		fn(h)
	}
	q.discard()
}

func (q *signalQueue) discard() {
	clear(q.fns)
	q.fns = q.fns[:0]
}
