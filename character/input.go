package character

import "github.com/go-gl/mathgl/mgl64"

// Input is the decoded device input for a single tick.
type Input struct {
	// Move is the movement stick or keys, with X strafing and Y forward. Its length is the input
	// magnitude in [0, 1].
	Move mgl64.Vec2
	// Look is the camera look delta.
	Look mgl64.Vec2
	// Jump is true on the tick the jump button went down.
	Jump bool
	// Sprint is true while the sprint button is held.
	Sprint bool
	// MouseLook is true when Look comes from a mouse rather than a stick.
	MouseLook bool
}
