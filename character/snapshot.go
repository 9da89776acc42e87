package character

// Snapshot is everything a behavior may read during a tick. It is built once before the gate phase and
// never changes afterwards, so every gate and apply of a tick observes the same pre-tick world.
type Snapshot struct {
	State State
	// Staged is the staged buffer as it was before any apply ran. Appliers receive the live buffer
	// separately.
	Staged Staged
	Input  Input

	// Delta is the duration of the tick in seconds.
	Delta float64
	// Time is the character clock in seconds at the start of the tick.
	Time float64
	// Tick is the sequence number of the tick, starting at 1.
	Tick uint64

	// CameraYaw is the heading in degrees movement input is relative to.
	CameraYaw float64
	// Probe answers geometric queries against the world.
	Probe Probe

	signals *signalQueue
}

// EmitGrounded queues the grounded signal.
func (s *Snapshot) EmitGrounded(grounded bool) {
	s.signals.push(func(h Handler) { h.HandleGrounded(grounded) })
}

// EmitEdgeFall queues the edge-falling signal.
func (s *Snapshot) EmitEdgeFall(falling bool) {
	s.signals.push(func(h Handler) { h.HandleEdgeFall(falling) })
}

// EmitFreeFall queues the free-falling signal.
func (s *Snapshot) EmitFreeFall(falling bool) {
	s.signals.push(func(h Handler) { h.HandleFreeFall(falling) })
}

// EmitJump queues the jumped signal.
func (s *Snapshot) EmitJump() {
	s.signals.push(func(h Handler) { h.HandleJump() })
}

// EmitDirectionalSpeed queues the forward/lateral speed pair used by animation blending.
func (s *Snapshot) EmitDirectionalSpeed(front, side float32) {
	s.signals.push(func(h Handler) { h.HandleDirectionalSpeed(front, side) })
}

// EmitMotionSpeed queues the stepping animation speed multiplier.
func (s *Snapshot) EmitMotionSpeed(speed float32) {
	s.signals.push(func(h Handler) { h.HandleMotionSpeed(speed) })
}

// EmitCameraTarget queues the orientation the camera rig should follow.
func (s *Snapshot) EmitCameraTarget(pitch, yaw float64) {
	s.signals.push(func(h Handler) { h.HandleCameraTarget(pitch, yaw) })
}
