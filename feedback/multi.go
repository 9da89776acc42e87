package feedback

import "github.com/oomph-ac/locomotion/character"

var _ character.Handler = Multi(nil)

// Multi fans every signal out to each of its handlers, in order.
type Multi []character.Handler

func (m Multi) HandleGrounded(grounded bool) {
	for _, h := range m {
		h.HandleGrounded(grounded)
	}
}

func (m Multi) HandleEdgeFall(falling bool) {
	for _, h := range m {
		h.HandleEdgeFall(falling)
	}
}

func (m Multi) HandleFreeFall(falling bool) {
	for _, h := range m {
		h.HandleFreeFall(falling)
	}
}

func (m Multi) HandleJump() {
	for _, h := range m {
		h.HandleJump()
	}
}

func (m Multi) HandleDirectionalSpeed(front, side float32) {
	for _, h := range m {
		h.HandleDirectionalSpeed(front, side)
	}
}

func (m Multi) HandleMotionSpeed(speed float32) {
	for _, h := range m {
		h.HandleMotionSpeed(speed)
	}
}

func (m Multi) HandleCameraTarget(pitch, yaw float64) {
	for _, h := range m {
		h.HandleCameraTarget(pitch, yaw)
	}
}

func (m Multi) HandleTickCommitted(r character.Report) {
	for _, h := range m {
		h.HandleTickCommitted(r)
	}
}

func (m Multi) HandleTickFault(fault *character.TickFault) {
	for _, h := range m {
		h.HandleTickFault(fault)
	}
}
