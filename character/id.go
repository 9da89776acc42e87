package character

import (
	"fmt"
	"strings"

	"github.com/oomph-ac/locomotion/oerror"
)

// ID is the stable identity of a behavior. A character holds at most one behavior per ID.
type ID uint8

const (
	IDGravity ID = iota + 1
	IDGround
	IDJump
	IDAutomaticJump
	IDEdgeFall
	IDWalkRun
	IDFreeFall
	IDCamera
)

var idNames = map[ID]string{
	IDGravity:       "gravity",
	IDGround:        "ground",
	IDJump:          "jump",
	IDAutomaticJump: "automatic_jump",
	IDEdgeFall:      "edge_fall",
	IDWalkRun:       "walk_run",
	IDFreeFall:      "free_fall",
	IDCamera:        "camera",
}

// String returns the configuration name of the ID.
func (id ID) String() string {
	if name, ok := idNames[id]; ok {
		return name
	}
	return fmt.Sprintf("behavior(%d)", uint8(id))
}

// ParseID resolves a configuration name to a behavior ID. Names are matched case-insensitively and
// dashes are accepted in place of underscores.
func ParseID(name string) (ID, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for id, n := range idNames {
		if n == normalized {
			return id, nil
		}
	}
	return 0, oerror.New("unknown behavior %q", name)
}

// ParseIDs resolves every name in names, failing on the first unknown one.
func ParseIDs(names []string) ([]ID, error) {
	ids := make([]ID, 0, len(names))
	for _, name := range names {
		id, err := ParseID(name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
