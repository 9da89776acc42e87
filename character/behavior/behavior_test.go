package behavior

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/character"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/omath"
	"github.com/sirupsen/logrus"
)

const dt = 0.02

type mockBody struct {
	pos, vel mgl64.Vec3
	rot      mgl64.Quat
	grounded bool
}

func (b *mockBody) Position() mgl64.Vec3     { return b.pos }
func (b *mockBody) Velocity() mgl64.Vec3     { return b.vel }
func (b *mockBody) Rotation() mgl64.Quat     { return b.rot }
func (b *mockBody) Grounded() bool           { return b.grounded }
func (b *mockBody) Radius() float64          { return 0.5 }
func (b *mockBody) Height() float64          { return 2 }
func (b *mockBody) SetRotation(q mgl64.Quat) { b.rot = q }

func (b *mockBody) Move(delta mgl64.Vec3) {
	b.pos = b.pos.Add(delta)
	b.vel = delta.Mul(1 / dt)
}

// mockProbe answers every raycast with floor and replays scripted box checks.
type mockProbe struct {
	floor  bool
	sphere []character.Hit
	boxes  []bool

	boxChecks     int
	boxCenters    []mgl64.Vec3
	boxHalfExtent []mgl64.Vec3
}

func (p *mockProbe) Raycast(origin, _ mgl64.Vec3, _ float64) (character.Hit, bool) {
	if !p.floor {
		return character.Hit{}, false
	}
	return character.Hit{Point: mgl64.Vec3{origin.X(), 0, origin.Z()}, Normal: mgl64.Vec3{0, 1, 0}}, true
}

func (p *mockProbe) SphereCastAll(mgl64.Vec3, float64, mgl64.Vec3, float64) []character.Hit {
	return p.sphere
}

func (p *mockProbe) CheckBox(center, halfExtents mgl64.Vec3, _ mgl64.Quat) bool {
	p.boxChecks++
	p.boxCenters = append(p.boxCenters, center)
	p.boxHalfExtent = append(p.boxHalfExtent, halfExtents)
	if p.boxChecks > len(p.boxes) {
		return false
	}
	return p.boxes[p.boxChecks-1]
}

type signals struct {
	character.NopHandler
	grounded, edgeFall, freeFall []bool
	jumps                        int
	motion                       []float32
	cameraPitch                  []float64
}

func (s *signals) HandleGrounded(v bool)           { s.grounded = append(s.grounded, v) }
func (s *signals) HandleEdgeFall(v bool)           { s.edgeFall = append(s.edgeFall, v) }
func (s *signals) HandleFreeFall(v bool)           { s.freeFall = append(s.freeFall, v) }
func (s *signals) HandleJump()                     { s.jumps++ }
func (s *signals) HandleMotionSpeed(v float32)     { s.motion = append(s.motion, v) }
func (s *signals) HandleCameraTarget(p, _ float64) { s.cameraPitch = append(s.cameraPitch, p) }

func newCharacter(t *testing.T, body *mockBody, probe character.Probe, names ...string) (*character.Character, *signals) {
	t.Helper()
	cfg := config.Default()
	cfg.Pipeline = names

	behaviors, err := Pipeline(decoded(t, cfg))
	if err != nil {
		t.Fatalf("unexpected pipeline error: %v", err)
	}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	c, err := character.New(log, body, behaviors...)
	if err != nil {
		t.Fatalf("unexpected error creating character: %v", err)
	}
	c.SetProbe(probe)

	h := &signals{}
	c.Handle(h)
	return c, h
}

// decoded re-resolves a modified configuration the same way loading one from disk does.
func decoded(t *testing.T, cfg config.Config) config.Config {
	t.Helper()
	data, err := config.Encode(cfg, config.FormatYAML)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	cfg, err = config.Decode(data, config.FormatYAML)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	return cfg
}

func step(t *testing.T, c *character.Character, in character.Input) character.Report {
	t.Helper()
	if err := c.Tick(dt, in); err != nil {
		t.Fatalf("unexpected tick error: %v", err)
	}
	r, _ := c.LastReport()
	return r
}

func TestGroundedIdle(t *testing.T) {
	body := &mockBody{rot: mgl64.QuatIdent(), grounded: true}
	c, h := newCharacter(t, body, &mockProbe{floor: true}, "gravity", "ground", "jump", "automatic_jump", "edge_fall", "walk_run")

	r := step(t, c, character.Input{})
	if !slices.Equal(r.Active, []character.ID{character.IDGround, character.IDWalkRun}) {
		t.Fatalf("expected ground and walk/run to be active, got %v", r.Active)
	}
	if r.Velocity.Y() != -2 {
		t.Fatalf("expected stick velocity -2, got %v", r.Velocity.Y())
	}
	if r.Velocity.X() != 0 || r.Velocity.Z() != 0 {
		t.Fatalf("expected no horizontal velocity, got %v", r.Velocity)
	}
	if !slices.Equal(h.grounded, []bool{true}) {
		t.Fatalf("expected a single grounded=true signal, got %v", h.grounded)
	}
}

func TestAirborne(t *testing.T) {
	body := &mockBody{rot: mgl64.QuatIdent(), vel: mgl64.Vec3{1, 3, 0}}
	c, h := newCharacter(t, body, &mockProbe{}, "gravity", "ground", "jump", "automatic_jump", "edge_fall", "walk_run")

	r := step(t, c, character.Input{Move: mgl64.Vec2{0, 1}})
	if !slices.Equal(r.Active, []character.ID{character.IDGravity}) {
		t.Fatalf("expected only gravity to be active, got %v", r.Active)
	}
	vy, g := 3.0, -15.0
	if want := vy + g*dt; r.Velocity.Y() != want {
		t.Fatalf("expected vertical velocity %v, got %v", want, r.Velocity.Y())
	}
	if r.Velocity.X() != 1 {
		t.Fatalf("expected horizontal velocity to be kept while walk/run is suppressed, got %v", r.Velocity)
	}
	if !slices.Equal(h.grounded, []bool{false}) {
		t.Fatalf("expected a single grounded=false signal, got %v", h.grounded)
	}
}

func TestJumpImpulse(t *testing.T) {
	for _, tc := range []struct{ height, gravity float64 }{{1.2, -15}, {2, -9.81}, {0.5, -30}} {
		want := math.Sqrt(2 * tc.height * math.Abs(tc.gravity))
		if got := Impulse(tc.height, tc.gravity); got != want {
			t.Fatalf("Impulse(%v, %v) = %v, want %v", tc.height, tc.gravity, got, want)
		}
	}

	body := &mockBody{rot: mgl64.QuatIdent(), grounded: true}
	c, h := newCharacter(t, body, &mockProbe{floor: true}, "gravity", "ground", "jump")

	r := step(t, c, character.Input{Jump: true})
	if !slices.Equal(r.Active, []character.ID{character.IDJump}) {
		t.Fatalf("expected jump to suppress ground, got %v", r.Active)
	}
	if math.Abs(r.Velocity.Y()-6) > 1e-9 {
		t.Fatalf("expected jump impulse 6, got %v", r.Velocity.Y())
	}
	if h.jumps != 1 {
		t.Fatalf("expected one jump signal, got %d", h.jumps)
	}

	// Still grounded and still pressing jump: the cooldown holds the next jump back.
	body.grounded = true
	r = step(t, c, character.Input{Jump: true})
	if slices.Contains(r.Active, character.IDJump) || h.jumps != 1 {
		t.Fatalf("expected the jump cooldown to hold, active=%v", r.Active)
	}
}

func TestJumpBuffer(t *testing.T) {
	body := &mockBody{rot: mgl64.QuatIdent(), vel: mgl64.Vec3{0, -1, 0}}
	c, h := newCharacter(t, body, &mockProbe{}, "gravity", "ground", "jump")

	// A request made in the air is kept until the character lands.
	step(t, c, character.Input{Jump: true})
	body.grounded = true
	step(t, c, character.Input{})
	if h.jumps != 1 {
		t.Fatalf("expected the buffered request to jump on landing, got %d jumps", h.jumps)
	}

	// A request older than the timeout is dropped.
	body.grounded = false
	step(t, c, character.Input{Jump: true})
	for i := 0; i < int(0.5/dt)+5; i++ {
		step(t, c, character.Input{})
	}
	body.grounded = true
	step(t, c, character.Input{})
	if h.jumps != 1 {
		t.Fatalf("expected the expired request to be dropped, got %d jumps", h.jumps)
	}
}

func TestWalkRunFloor(t *testing.T) {
	w := NewWalkRun(config.Default().WalkRun)
	for i := 1; i <= 20; i++ {
		m := float64(i) / 20
		speed, motion := w.TargetSpeed(m, false)
		if 3.5*m >= 2 {
			if speed != 3.5*m || motion != 1 {
				t.Fatalf("m=%v: expected walk speed %v, got %v (motion %v)", m, 3.5*m, speed, motion)
			}
			continue
		}
		if speed != 2 {
			t.Fatalf("m=%v: expected the slow walk floor, got %v", m, speed)
		}
		if want := m * 2 / 3.5; motion != want {
			t.Fatalf("m=%v: expected motion speed %v, got %v", m, want, motion)
		}
	}
	if speed, _ := w.TargetSpeed(0, true); speed != 0 {
		t.Fatalf("expected no speed without input, got %v", speed)
	}
	if speed, _ := w.TargetSpeed(1, true); speed != 5.5 {
		t.Fatalf("expected sprint speed, got %v", speed)
	}

	body := &mockBody{rot: mgl64.QuatIdent(), grounded: true}
	c, h := newCharacter(t, body, &mockProbe{floor: true}, "gravity", "ground", "walk_run")
	for i := 0; i < 100; i++ {
		step(t, c, character.Input{Move: mgl64.Vec2{0, 0.2}})
	}
	if got := omath.HorizontalLen(body.vel); math.Abs(got-2) > 1e-9 {
		t.Fatalf("expected the committed speed to settle on the slow walk floor, got %v", got)
	}
	if want := float32(0.11); h.motion[len(h.motion)-1] != want {
		t.Fatalf("expected motion speed %v, got %v", want, h.motion[len(h.motion)-1])
	}
}

func TestWalkRunFacesInput(t *testing.T) {
	body := &mockBody{rot: mgl64.QuatIdent(), grounded: true}
	c, _ := newCharacter(t, body, &mockProbe{floor: true}, "gravity", "ground", "walk_run")
	for i := 0; i < 500; i++ {
		step(t, c, character.Input{Move: mgl64.Vec2{1, 0}})
	}
	facing := body.rot.Rotate(mgl64.Vec3{0, 0, 1})
	if math.Abs(facing.X()-1) > 1e-3 {
		t.Fatalf("expected the character to face +X, faces %v", facing)
	}
	if body.vel.X() <= 0 || math.Abs(body.vel.Z()) > 1e-6 {
		t.Fatalf("expected movement along +X, got %v", body.vel)
	}
}

func TestAutomaticJump(t *testing.T) {
	body := &mockBody{rot: mgl64.QuatIdent(), grounded: true, vel: mgl64.Vec3{0, 0, 5}}
	probe := &mockProbe{floor: true, boxes: []bool{true, true, false, false, false}}
	c, h := newCharacter(t, body, probe, "gravity", "ground", "jump", "automatic_jump")

	r := step(t, c, character.Input{})
	if !slices.Contains(r.Active, character.IDAutomaticJump) || probe.boxChecks != 5 {
		t.Fatalf("expected automatic jump to run after five probes, active=%v probes=%d", r.Active, probe.boxChecks)
	}
	if h.jumps != 0 {
		t.Fatalf("automatic jump should only request a jump")
	}
	// The wall probe spans from 0.1 above the feet up to the jump height.
	jumpH := config.Default().Jump.Height
	if got := probe.boxCenters[1].Y(); math.Abs(got-(jumpH+.1)/2) > 1e-9 {
		t.Fatalf("expected the wall probe centred at %v, got %v", (jumpH+.1)/2, got)
	}
	if got := probe.boxHalfExtent[1].Y(); math.Abs(got-(jumpH-.1)/2) > 1e-9 {
		t.Fatalf("expected the wall probe half height %v, got %v", (jumpH-.1)/2, got)
	}
	body.grounded = true
	step(t, c, character.Input{})
	if h.jumps != 1 {
		t.Fatalf("expected the requested jump on the next tick, got %d jumps", h.jumps)
	}

	// Too slow to clear anything.
	slow := &mockBody{rot: mgl64.QuatIdent(), grounded: true, vel: mgl64.Vec3{0, 0, 1}}
	slowProbe := &mockProbe{floor: true, boxes: []bool{true, true, false, false, false}}
	c, _ = newCharacter(t, slow, slowProbe, "gravity", "ground", "jump", "automatic_jump")
	if r := step(t, c, character.Input{}); slices.Contains(r.Active, character.IDAutomaticJump) || slowProbe.boxChecks != 0 {
		t.Fatalf("expected automatic jump to stay closed below the minimum velocity")
	}
}

func TestEdgeFall(t *testing.T) {
	body := &mockBody{rot: mgl64.QuatIdent(), grounded: true}
	probe := &mockProbe{sphere: []character.Hit{{Point: mgl64.Vec3{0.4, 0.1, 0}}}}
	c, h := newCharacter(t, body, probe, "gravity", "ground", "edge_fall", "walk_run")

	r := step(t, c, character.Input{Move: mgl64.Vec2{0, 1}})
	if !slices.Equal(r.Active, []character.ID{character.IDGround, character.IDEdgeFall}) {
		t.Fatalf("expected edge fall to suppress walk/run, got %v", r.Active)
	}
	if math.Abs(r.Velocity.X()+1) > 1e-9 || r.Velocity.Z() != 0 {
		t.Fatalf("expected a slide away from the edge at slide speed, got %v", r.Velocity)
	}
	if !slices.Equal(h.edgeFall, []bool{true}) {
		t.Fatalf("expected edge fall signal true, got %v", h.edgeFall)
	}

	// Supported right below the centre: the gate closes and signals false.
	probe.floor = true
	r = step(t, c, character.Input{})
	if slices.Contains(r.Active, character.IDEdgeFall) || !slices.Equal(h.edgeFall, []bool{true, false}) {
		t.Fatalf("expected edge fall to stop, active=%v signals=%v", r.Active, h.edgeFall)
	}
}

func TestEdgeFallShallowSupport(t *testing.T) {
	body := &mockBody{rot: mgl64.QuatIdent(), grounded: true}
	probe := &mockProbe{sphere: []character.Hit{{Point: mgl64.Vec3{0.05, 0, 0}}}}
	c, h := newCharacter(t, body, probe, "gravity", "ground", "edge_fall")

	r := step(t, c, character.Input{})
	if r.Velocity.X() != 0 || !slices.Equal(h.edgeFall, []bool{false}) {
		t.Fatalf("expected no slide on nearly vertical support, velocity=%v signals=%v", r.Velocity, h.edgeFall)
	}
}

func TestFreeFall(t *testing.T) {
	body := &mockBody{rot: mgl64.QuatIdent()}
	c, h := newCharacter(t, body, &mockProbe{}, "gravity", "free_fall")

	ticks := int(math.Ceil(0.15/dt)) + 1
	for i := 0; i < ticks; i++ {
		step(t, c, character.Input{})
	}
	if h.freeFall[0] || !h.freeFall[len(h.freeFall)-1] {
		t.Fatalf("expected free fall to start after the timeout, got %v", h.freeFall)
	}
	body.grounded = true
	step(t, c, character.Input{})
	if h.freeFall[len(h.freeFall)-1] {
		t.Fatalf("expected landing to stop free fall")
	}
}

func TestCamera(t *testing.T) {
	body := &mockBody{rot: mgl64.QuatIdent(), grounded: true}
	c, h := newCharacter(t, body, &mockProbe{floor: true}, "gravity", "camera")
	cam, _ := c.Registry().Get(character.IDCamera)

	step(t, c, character.Input{Look: mgl64.Vec2{90, 500}, MouseLook: true})
	if yaw := cam.(*Camera).Yaw(); yaw != 90 {
		t.Fatalf("expected mouse look to be applied raw, got yaw %v", yaw)
	}
	if pitch := h.cameraPitch[0]; pitch != 70 {
		t.Fatalf("expected pitch to be clamped to 70, got %v", pitch)
	}

	step(t, c, character.Input{Look: mgl64.Vec2{100, 0}})
	if yaw := cam.(*Camera).Yaw(); math.Abs(yaw-(90+100*dt)) > 1e-9 {
		t.Fatalf("expected stick look to be scaled by the delta, got yaw %v", yaw)
	}

	step(t, c, character.Input{Look: mgl64.Vec2{0.05, 0.05}, MouseLook: true})
	if yaw := cam.(*Camera).Yaw(); math.Abs(yaw-(90+100*dt)) > 1e-9 {
		t.Fatalf("expected look input under the threshold to be ignored, got yaw %v", yaw)
	}
}

func TestPipeline(t *testing.T) {
	behaviors, err := Pipeline(config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(behaviors) != 8 {
		t.Fatalf("expected 8 behaviors, got %d", len(behaviors))
	}
	if _, err := character.New(nil, &mockBody{rot: mgl64.QuatIdent()}, behaviors...); err != nil {
		t.Fatalf("expected the default pipeline to be valid: %v", err)
	}
	for _, b := range behaviors {
		if !slices.Equal(b.Conflicts(), DefaultConflicts(b.ID())) {
			t.Fatalf("%s: expected default conflicts", b.ID())
		}
	}

	cfg := config.Default()
	cfg.Conflicts = map[string][]string{"gravity": {}, "walk_run": {"edge_fall"}}
	behaviors, err = Pipeline(decoded(t, cfg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, b := range behaviors {
		switch b.ID() {
		case character.IDGravity:
			if len(b.Conflicts()) != 0 {
				t.Fatalf("expected gravity conflicts to be cleared, got %v", b.Conflicts())
			}
		case character.IDWalkRun:
			if !slices.Equal(b.Conflicts(), []character.ID{character.IDEdgeFall}) {
				t.Fatalf("unexpected walk/run conflicts: %v", b.Conflicts())
			}
		}
	}
}

func TestPipelineMissingCompanion(t *testing.T) {
	cfg := config.Default()
	cfg.Pipeline = []string{"ground", "walk_run"}
	behaviors, err := Pipeline(decoded(t, cfg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = character.New(nil, &mockBody{rot: mgl64.QuatIdent()}, behaviors...)
	var cfgErr *character.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Behavior != character.IDGround {
		t.Fatalf("expected ground without gravity to be refused, got %v", err)
	}

	cfg.Pipeline = []string{"gravity", "automatic_jump"}
	if _, err := Pipeline(decoded(t, cfg)); !errors.As(err, &cfgErr) {
		t.Fatalf("expected automatic jump without jump to be refused, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	c, err := character.New(nil, &mockBody{rot: mgl64.QuatIdent(), grounded: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Register(c, config.Default()); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}
	if c.Registry().Len() != 0 || c.Registry().Pending() != 8 {
		t.Fatalf("expected registration to be deferred")
	}
	if err := c.Tick(dt, character.Input{}); err != nil {
		t.Fatalf("unexpected tick error: %v", err)
	}
	if !slices.Equal(c.Registry().IDs(), config.Default().PipelineIDs()) {
		t.Fatalf("unexpected registry order: %v", c.Registry().IDs())
	}
}

// failing returns an error from its apply while fail is set.
type failing struct {
	fail bool
}

func (*failing) ID() character.ID              { return character.ID(99) }
func (*failing) Gate(*character.Snapshot) bool { return true }
func (*failing) Conflicts() []character.ID     { return nil }

func (f *failing) Apply(*character.Snapshot, *character.Staged) error {
	if f.fail {
		return errors.New("apply failed")
	}
	return nil
}

func TestFaultRestoresBehaviors(t *testing.T) {
	body := &mockBody{rot: mgl64.QuatIdent(), grounded: true}
	c, h := newCharacter(t, body, &mockProbe{floor: true}, "gravity", "ground", "jump", "free_fall", "camera")
	f := &failing{fail: true}
	if err := c.Attach(f); err != nil {
		t.Fatalf("unexpected attach error: %v", err)
	}

	err := c.Tick(dt, character.Input{Jump: true, Look: mgl64.Vec2{30, 10}, MouseLook: true})
	var fault *character.TickFault
	if !errors.As(err, &fault) || fault.Behavior != character.ID(99) {
		t.Fatalf("expected an apply fault, got %v", err)
	}
	if h.jumps != 0 || body.vel != (mgl64.Vec3{}) {
		t.Fatalf("expected nothing of the faulted tick to be committed, jumps=%d vel=%v", h.jumps, body.vel)
	}
	b, _ := c.Registry().Get(character.IDCamera)
	if cam := b.(*Camera); cam.Yaw() != 0 || cam.Pitch() != 0 {
		t.Fatalf("expected the camera to be rolled back, yaw=%v pitch=%v", cam.Yaw(), cam.Pitch())
	}
	b, _ = c.Registry().Get(character.IDJump)
	if !b.(*Jump).Requested(c.Clock()) {
		t.Fatalf("expected the jump press of the faulted tick to stay buffered")
	}

	// Once the fault is gone the buffered press jumps without waiting for a cooldown.
	f.fail = false
	r := step(t, c, character.Input{})
	if h.jumps != 1 || !slices.Contains(r.Active, character.IDJump) {
		t.Fatalf("expected the buffered jump after recovery, jumps=%d active=%v", h.jumps, r.Active)
	}
	if math.Abs(r.Velocity.Y()-6) > 1e-9 {
		t.Fatalf("expected jump impulse 6, got %v", r.Velocity.Y())
	}
}
