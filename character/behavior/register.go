package behavior

import (
	"github.com/oomph-ac/locomotion/character"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/oerror"
)

// Pipeline creates the behaviors named by the pipeline of the configuration, in order, with the
// conflict overrides of the configuration applied. The returned behaviors are not validated as a
// pipeline: character.New and (*character.Character).Attach do that.
func Pipeline(cfg config.Config) ([]character.Behavior, error) {
	ids := cfg.PipelineIDs()

	// AutomaticJump requests its jumps from the Jump of the same pipeline, so a jump is built first.
	var jump *Jump
	for _, id := range ids {
		if id == character.IDJump {
			jump = NewJump(cfg.Jump, cfg.Gravity)
		}
	}

	behaviors := make([]character.Behavior, 0, len(ids))
	for _, id := range ids {
		var b character.Behavior
		switch id {
		case character.IDGravity:
			b = NewGravity(cfg.Gravity)
		case character.IDGround:
			b = NewGround(cfg.Ground)
		case character.IDJump:
			b = jump
		case character.IDAutomaticJump:
			if jump == nil {
				return nil, &character.ConfigError{Behavior: id, Missing: []character.ID{character.IDJump}, Reason: "missing required behaviors"}
			}
			b = NewAutomaticJump(cfg.AutomaticJump, jump, cfg.Gravity)
		case character.IDEdgeFall:
			b = NewEdgeFall(cfg.EdgeFall)
		case character.IDWalkRun:
			b = NewWalkRun(cfg.WalkRun)
		case character.IDFreeFall:
			b = NewFreeFall(cfg.FreeFall)
		case character.IDCamera:
			b = NewCamera(cfg.Camera)
		default:
			return nil, oerror.New("no behavior is registered for %s", id)
		}
		if conflicts, ok := cfg.ConflictsOf(id); ok {
			b.(interface{ SetConflicts(...character.ID) }).SetConflicts(conflicts...)
		}
		behaviors = append(behaviors, b)
	}
	return behaviors, nil
}

// Register queues the behaviors of the configured pipeline for attachment to c. The behaviors are
// attached at the start of the next tick of c. Registering stops at the first behavior that cannot be
// attached, leaving the ones before it queued.
func Register(c *character.Character, cfg config.Config) error {
	behaviors, err := Pipeline(cfg)
	if err != nil {
		return err
	}
	for _, b := range behaviors {
		if err := c.Attach(b); err != nil {
			return err
		}
	}
	return nil
}
