package behavior

import "github.com/oomph-ac/locomotion/character"

// defaultConflicts holds the conflict set every behavior starts with.
var defaultConflicts = map[character.ID][]character.ID{
	character.IDGravity:  {character.IDWalkRun},
	character.IDEdgeFall: {character.IDWalkRun},
	character.IDJump:     {character.IDGravity, character.IDGround},
}

// DefaultConflicts returns the conflict set a behavior with the given identity starts with.
func DefaultConflicts(id character.ID) []character.ID {
	return append([]character.ID(nil), defaultConflicts[id]...)
}

// Base holds the conflict set of a behavior. Every behavior of the package embeds it.
type Base struct {
	conflicts []character.ID
}

func newBase(id character.ID) Base {
	return Base{conflicts: DefaultConflicts(id)}
}

func (b *Base) Conflicts() []character.ID {
	return b.conflicts
}

// SetConflicts replaces the conflict set of the behavior. It must not be called while the behavior is
// attached to a character that is ticking.
func (b *Base) SetConflicts(ids ...character.ID) {
	b.conflicts = append([]character.ID(nil), ids...)
}
