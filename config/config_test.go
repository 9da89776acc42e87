package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/oomph-ac/locomotion/character"
	"github.com/sirupsen/logrus"
)

func TestDefault(t *testing.T) {
	c := Default()
	want := []character.ID{
		character.IDGravity, character.IDGround, character.IDJump, character.IDAutomaticJump,
		character.IDEdgeFall, character.IDWalkRun, character.IDFreeFall, character.IDCamera,
	}
	if !slices.Equal(c.PipelineIDs(), want) {
		t.Fatalf("unexpected default pipeline: %v", c.PipelineIDs())
	}
	if c.Gravity.Acceleration != -15 || c.Jump.Height != 1.2 || c.WalkRun.SlowWalkSpeed != 2 {
		t.Fatalf("unexpected default values: %+v", c)
	}
	if _, ok := c.ConflictsOf(character.IDJump); ok {
		t.Fatalf("default config should not override conflicts")
	}
}

func TestDecodeTOML(t *testing.T) {
	data := []byte(`
pipeline = ["gravity", "ground", "walk-run"]

[gravity]
acceleration = -9.81

[conflicts]
gravity = []
jump = ["Gravity"]
`)
	c, err := Decode(data, FormatTOML)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if !slices.Equal(c.PipelineIDs(), []character.ID{character.IDGravity, character.IDGround, character.IDWalkRun}) {
		t.Fatalf("unexpected pipeline: %v", c.PipelineIDs())
	}
	if c.Gravity.Acceleration != -9.81 {
		t.Fatalf("expected gravity -9.81, got %v", c.Gravity.Acceleration)
	}
	if conflicts, ok := c.ConflictsOf(character.IDGravity); !ok || len(conflicts) != 0 {
		t.Fatalf("expected an empty gravity override, got %v %v", conflicts, ok)
	}
	if conflicts, ok := c.ConflictsOf(character.IDJump); !ok || !slices.Equal(conflicts, []character.ID{character.IDGravity}) {
		t.Fatalf("unexpected jump conflicts: %v", conflicts)
	}
}

func TestDecodeYAMLKeepsDefaults(t *testing.T) {
	data := []byte(`
walk_run:
  sprint_speed: 7
simulation:
  log_level: debug
  debug_modes: [gates, commit]
`)
	c, err := Decode(data, FormatYAML)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if c.WalkRun.SprintSpeed != 7 || c.WalkRun.WalkSpeed != 3.5 {
		t.Fatalf("unexpected walk/run section: %+v", c.WalkRun)
	}
	if !slices.Equal(c.PipelineIDs(), Default().PipelineIDs()) {
		t.Fatalf("expected the default pipeline, got %v", c.PipelineIDs())
	}
	if level, _ := c.Simulation.Level(); level != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %v", level)
	}
	modes, _ := c.Simulation.Modes()
	if !slices.Equal(modes, []character.DebugMode{character.DebugModeGates, character.DebugModeCommit}) {
		t.Fatalf("unexpected debug modes: %v", modes)
	}
}

func TestDecodeUnknownNames(t *testing.T) {
	for name, data := range map[string]string{
		"pipeline":        "pipeline: [gravity, teleport]",
		"conflict owner":  "conflicts:\n  teleport: [gravity]",
		"conflict target": "conflicts:\n  jump: [teleport]",
		"debug mode":      "simulation:\n  debug_modes: [everything]",
	} {
		if _, err := Decode([]byte(data), FormatYAML); err == nil {
			t.Fatalf("%s: expected unknown name to fail", name)
		}
	}
}

func TestDecodeInvalidValues(t *testing.T) {
	for name, data := range map[string]string{
		"tick rate": "simulation:\n  tick_rate: 0",
		"gravity":   "gravity:\n  acceleration: 0",
		"capsule":   "body:\n  radius: 2\n  height: 1",
		"camera":    "camera:\n  top_clamp: -40",
	} {
		if _, err := Decode([]byte(data), FormatYAML); err == nil {
			t.Fatalf("%s: expected invalid value to fail", name)
		}
	}
}

func TestSaveDefault(t *testing.T) {
	for _, name := range []string{"locomotion.toml", "locomotion.yaml"} {
		path := filepath.Join(t.TempDir(), name)
		if err := SaveDefault(path); err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if err := SaveDefault(path); err == nil {
			t.Fatalf("%s: expected saving over an existing file to fail", name)
		}
		c, err := Load(path)
		if err != nil {
			t.Fatalf("%s: unexpected load error: %v", name, err)
		}
		if !slices.Equal(c.PipelineIDs(), Default().PipelineIDs()) || c.Camera != Default().Camera {
			t.Fatalf("%s: loaded config differs from the default", name)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("expected a missing file to fail")
	}
	path := filepath.Join(dir, "locomotion.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an unsupported extension to fail")
	}
}
