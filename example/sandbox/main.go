package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/character"
	"github.com/oomph-ac/locomotion/character/behavior"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/feedback"
	"github.com/oomph-ac/locomotion/physics"
	"github.com/oomph-ac/locomotion/recording"
	"github.com/oomph-ac/locomotion/simulation"
	"github.com/sirupsen/logrus"
)

const recordTicks = 500

// The following program runs a few scripted characters around a small obstacle course. Run it with
//
//	sandbox [config]                run the course until interrupted
//	sandbox record <file> [config]  record a single character
//	sandbox verify <file> [config]  replay a recording and check that it still matches
func main() {
	args := os.Args[1:]
	mode := "run"
	if len(args) > 0 && (args[0] == "record" || args[0] == "verify") {
		if len(args) < 2 {
			fmt.Println("Usage: ./bin [record|verify <file>] [config]")
			return
		}
		mode, args = args[0], args[1:]
	}

	var file string
	if mode != "run" {
		file, args = args[0], args[1:]
	}
	path := "locomotion.toml"
	if len(args) > 0 {
		path = args[0]
	}

	cfg, err := loadConfig(path)
	if err != nil {
		panic(err)
	}
	log := newLogger(cfg)

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			log.Errorf("unable to initialize sentry: %v", err)
		}
		defer sentry.Flush(time.Second * 2)
	}
	if os.Getenv("STATSVIEW") != "" {
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr("localhost:8080"))

		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
	}

	switch mode {
	case "record":
		err = record(log, cfg, file)
	case "verify":
		err = verify(log, cfg, file)
	default:
		err = run(log, cfg)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func loadConfig(path string) (config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.SaveDefault(path); err != nil {
			return config.Config{}, err
		}
	}
	return config.Load(path)
}

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	level, err := cfg.Simulation.Level()
	if err != nil {
		log.Warnf("invalid log level, using info: %v", err)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// course builds a floor with a step, a low wall to vault, a raised platform to fall off and a wall.
func course() *physics.World {
	w := physics.Floor(64)
	w.AddBox(mgl64.Vec3{-2, 0, 6}, mgl64.Vec3{2, 0.25, 8})
	w.AddBox(mgl64.Vec3{-2, 0, 14}, mgl64.Vec3{2, 0.9, 15})
	w.AddBox(mgl64.Vec3{6, 0, -4}, mgl64.Vec3{12, 1.5, 4})
	w.AddBox(mgl64.Vec3{-20, 0, -20}, mgl64.Vec3{-19, 4, 20})
	return w
}

// script returns the input of the scripted character with the index passed on the given tick.
func script(index int, tick uint64) character.Input {
	phase := float64(tick)/100 + float64(index)
	in := character.Input{
		Move:      mgl64.Vec2{math.Sin(phase) * 0.4, 1},
		Sprint:    (tick/150)%2 == 1,
		MouseLook: true,
	}
	if tick%120 == uint64(index*30) {
		in.Jump = true
	}
	if (tick/200)%2 == 0 {
		in.Look = mgl64.Vec2{0.5, 0}
	}
	return in
}

func run(log *logrus.Logger, cfg config.Config) error {
	world := course()
	d := simulation.NewDriver(log, cfg)
	defer d.Close()

	starts := []mgl64.Vec3{{0, 0, 0}, {8, 1.5, 0}, {-10, 0, -10}}
	animators := make([]*feedback.Animator, len(starts))
	smoke := make([]*feedback.Smoke, len(starts))
	for i, pos := range starts {
		animators[i], smoke[i] = feedback.NewAnimator(), &feedback.Smoke{}
		body := physics.NewBody(world, cfg.Body, pos, d.Delta())
		if _, _, err := d.Spawn(body, world, feedback.Multi{animators[i], smoke[i]}); err != nil {
			return err
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	go func() {
		t := time.NewTicker(d.Interval())
		defer t.Stop()
		status := time.NewTicker(time.Second)
		defer status.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				for i, id := range d.IDs() {
					_ = d.SetInput(id, script(i, d.Ticks()))
				}
			case <-status.C:
				for i, id := range d.IDs() {
					c, ok := d.Character(id)
					if !ok {
						continue
					}
					s := c.State()
					log.WithFields(logrus.Fields{
						"character": id.String(),
						"position":  s.Position,
						"grounded":  animators[i].Bool(feedback.ParamGrounded),
						"speed":     animators[i].Float(feedback.ParamMotionSpeed),
						"smoke":     smoke[i].Plays(),
					}).Info("status")
				}
			}
		}
	}()

	if err := d.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	log.Infof("stopped after %d ticks with %d faults", d.Ticks(), d.Faults())
	return nil
}

func newCharacter(log *logrus.Logger, cfg config.Config) (*character.Character, error) {
	world := course()
	behaviors, err := behavior.Pipeline(cfg)
	if err != nil {
		return nil, err
	}
	c, err := character.New(log, physics.NewBody(world, cfg.Body, mgl64.Vec3{}, 1/float64(cfg.Simulation.TickRate)), behaviors...)
	if err != nil {
		return nil, err
	}
	c.SetProbe(world)
	return c, nil
}

func record(log *logrus.Logger, cfg config.Config, file string) error {
	c, err := newCharacter(log, cfg)
	if err != nil {
		return err
	}
	r, err := recording.Create(file)
	if err != nil {
		return err
	}
	defer r.Close()

	dt := 1 / float64(cfg.Simulation.TickRate)
	for tick := uint64(0); tick < recordTicks; tick++ {
		if err := r.Tick(c, dt, script(0, tick)); err != nil {
			log.Warnf("recorded fault: %v", err)
		}
	}
	log.Infof("recorded %d frames to %s", r.Frames(), file)
	return nil
}

func verify(log *logrus.Logger, cfg config.Config, file string) error {
	rec, err := recording.Load(file)
	if err != nil {
		return err
	}
	c, err := newCharacter(log, cfg)
	if err != nil {
		return err
	}
	if err := recording.Verify(c, rec); err != nil {
		return err
	}
	log.Infof("replayed %d frames, every tick matched", len(rec.Frames))
	return nil
}
