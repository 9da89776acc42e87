package recording

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/disgoorg/json"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/character"
	"github.com/oomph-ac/locomotion/internal"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/sasha-s/go-deadlock"
)

// CurrentVersion is written as the first line of every recording.
const CurrentVersion = "1"

// Input is the recorded form of a character.Input.
type Input struct {
	Move      [2]float64 `json:"move"`
	Look      [2]float64 `json:"look"`
	Jump      bool       `json:"jump,omitempty"`
	Sprint    bool       `json:"sprint,omitempty"`
	MouseLook bool       `json:"mouse_look,omitempty"`
}

// InputOf converts a tick input into its recorded form.
func InputOf(in character.Input) Input {
	return Input{
		Move:      [2]float64{in.Move.X(), in.Move.Y()},
		Look:      [2]float64{in.Look.X(), in.Look.Y()},
		Jump:      in.Jump,
		Sprint:    in.Sprint,
		MouseLook: in.MouseLook,
	}
}

// Input converts the recorded input back into a tick input.
func (in Input) Input() character.Input {
	return character.Input{
		Move:      mgl64.Vec2{in.Move[0], in.Move[1]},
		Look:      mgl64.Vec2{in.Look[0], in.Look[1]},
		Jump:      in.Jump,
		Sprint:    in.Sprint,
		MouseLook: in.MouseLook,
	}
}

// Frame is a single recorded tick. A faulted tick carries the fault instead of an active set and digest.
type Frame struct {
	Tick   uint64   `json:"tick"`
	Delta  float64  `json:"dt"`
	Input  Input    `json:"input"`
	Active []string `json:"active,omitempty"`
	Digest uint64   `json:"digest,omitempty"`
	Fault  string   `json:"fault,omitempty"`
}

// Recording is a decoded recording file.
type Recording struct {
	Version string
	Frames  []Frame
}

// Recorder ticks a character and appends one line per tick to a writer.
type Recorder struct {
	mu     deadlock.Mutex
	w      io.Writer
	closer io.Closer
	frames int
}

// NewRecorder writes the recording header to w and returns a Recorder appending to it.
func NewRecorder(w io.Writer) (*Recorder, error) {
	if _, err := io.WriteString(w, CurrentVersion+"\n"); err != nil {
		return nil, oerror.New("unable to write recording header: %v", err)
	}
	return &Recorder{w: w}, nil
}

// Create truncates or creates the file at path and returns a Recorder writing to it.
func Create(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, oerror.New("unable to open recording file: %v", err)
	}
	r, err := NewRecorder(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// Tick ticks c and records the outcome. A tick fault is recorded and returned; other errors, such as a
// closed character or an invalid delta, are returned without recording anything.
func (r *Recorder) Tick(c *character.Character, dt float64, in character.Input) error {
	err := c.Tick(dt, in)

	f := Frame{Tick: c.Ticks(), Delta: dt, Input: InputOf(in)}
	if fault, ok := err.(*character.TickFault); ok {
		f.Tick = fault.Tick
		f.Fault = fault.Error()
	} else if err != nil {
		return err
	} else {
		rep, _ := c.LastReport()
		f.Active = names(rep.Active)
		f.Digest = rep.Digest
	}

	if werr := r.write(f); werr != nil {
		return werr
	}
	return err
}

func (r *Recorder) write(f Frame) error {
	enc, err := json.Marshal(f)
	if err != nil {
		return oerror.New("unable to encode frame %d: %v", f.Tick, err)
	}

	buf := internal.BufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer internal.BufferPool.Put(buf)
	buf.Write(enc)
	buf.WriteByte('\n')

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.w.Write(buf.Bytes()); err != nil {
		return oerror.New("unable to write frame %d: %v", f.Tick, err)
	}
	r.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Close closes the underlying file if the Recorder was created with Create.
func (r *Recorder) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Decode reads a recording. It returns an error if a line cannot be parsed or if the version of the
// recording is not supported.
func Decode(r io.Reader) (*Recording, error) {
	s := bufio.NewScanner(r)
	if !s.Scan() {
		if err := s.Err(); err != nil {
			return nil, oerror.New("unable to read recording: %v", err)
		}
		return nil, oerror.New("recording is empty")
	}

	rec := &Recording{Version: strings.TrimSpace(s.Text())}
	if rec.Version != CurrentVersion {
		return nil, oerror.New("unsupported recording version: %s", rec.Version)
	}
	for line := 2; s.Scan(); line++ {
		raw := bytes.TrimSpace(s.Bytes())
		if len(raw) == 0 {
			continue
		}
		var f Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, oerror.New("unable to decode frame on line %d: %v", line, err)
		}
		rec.Frames = append(rec.Frames, f)
	}
	if err := s.Err(); err != nil {
		return nil, oerror.New("unable to read recording: %v", err)
	}
	return rec, nil
}

// Load decodes the recording file at path.
func Load(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, oerror.New("unable to open recording file: %v", err)
	}
	defer f.Close()
	return Decode(f)
}

// Mismatch is returned by Verify when a replayed tick diverges from the recording.
type Mismatch struct {
	Tick     uint64
	Expected Frame
	Actual   Frame
}

func (m *Mismatch) Error() string {
	e, a := m.Expected, m.Actual
	switch {
	case e.Fault != a.Fault:
		return fmt.Sprintf("tick %d: expected fault %q, got %q", m.Tick, e.Fault, a.Fault)
	case !slices.Equal(e.Active, a.Active):
		return fmt.Sprintf("tick %d: expected active set %v, got %v", m.Tick, e.Active, a.Active)
	}
	return fmt.Sprintf("tick %d: expected digest %016x, got %016x", m.Tick, e.Digest, a.Digest)
}

// Verify replays every frame of rec on c, which must be freshly built with the same pipeline and
// physics as the recorded character, and returns a *Mismatch on the first tick that diverges.
func Verify(c *character.Character, rec *Recording) error {
	for _, expected := range rec.Frames {
		err := c.Tick(expected.Delta, expected.Input.Input())

		actual := Frame{Tick: c.Ticks(), Delta: expected.Delta, Input: expected.Input}
		if fault, ok := err.(*character.TickFault); ok {
			actual.Tick = fault.Tick
			actual.Fault = fault.Error()
		} else if err != nil {
			return err
		} else {
			rep, _ := c.LastReport()
			actual.Active = names(rep.Active)
			actual.Digest = rep.Digest
		}

		if actual.Tick != expected.Tick || actual.Fault != expected.Fault || actual.Digest != expected.Digest || !slices.Equal(actual.Active, expected.Active) {
			return &Mismatch{Tick: expected.Tick, Expected: expected, Actual: actual}
		}
	}
	return nil
}

func names(ids []character.ID) []string {
	if len(ids) == 0 {
		return nil
	}
	n := make([]string, len(ids))
	for i, id := range ids {
		n[i] = id.String()
	}
	return n
}
