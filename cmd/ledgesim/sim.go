package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/banshee-data/ledgewalk/internal/catalog"
	"github.com/banshee-data/ledgewalk/internal/config"
	"github.com/banshee-data/ledgewalk/internal/debugview"
	"github.com/banshee-data/ledgewalk/internal/locomotion"
	"github.com/banshee-data/ledgewalk/internal/scene"
	"github.com/banshee-data/ledgewalk/internal/timeutil"
	"gonum.org/v1/gonum/spatial/r3"
)

// moveSegment holds one input direction for a number of frames.
type moveSegment struct {
	Move   r3.Vec
	Frames int
}

// parseVec3 parses "x,y,z".
func parseVec3(s string) (r3.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return r3.Vec{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("invalid coordinate %q: %w", p, err)
		}
		v[i] = f
	}
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
}

// parseMoveScript parses a semicolon-separated list of "x,z*frames"
// segments, e.g. "0,-1*60;0,0*20". A segment without "*frames" lasts one
// frame.
func parseMoveScript(s string) ([]moveSegment, error) {
	var segs []moveSegment
	for _, raw := range strings.Split(s, ";") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		frames := 1
		dir := raw
		if i := strings.IndexByte(raw, '*'); i >= 0 {
			n, err := strconv.Atoi(strings.TrimSpace(raw[i+1:]))
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid frame count in %q", raw)
			}
			frames = n
			dir = raw[:i]
		}
		parts := strings.Split(dir, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("expected x,z in %q", raw)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid x in %q: %w", raw, err)
		}
		z, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid z in %q: %w", raw, err)
		}
		segs = append(segs, moveSegment{Move: r3.Vec{X: x, Z: z}, Frames: frames})
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("empty move script")
	}
	return segs, nil
}

// totalFrames sums the segment lengths.
func totalFrames(segs []moveSegment) int {
	n := 0
	for _, s := range segs {
		n += s.Frames
	}
	return n
}

// countingAnimation tallies the animation events of a run.
type countingAnimation struct {
	locomotion.NopAnimation
	falls    int
	landings int
	climbs   int
}

func (a *countingAnimation) OnFall()          { a.falls++ }
func (a *countingAnimation) OnLanding()       { a.landings++ }
func (a *countingAnimation) OnClimb(_ r3.Vec) { a.climbs++ }

// simOptions controls one simulation run.
type simOptions struct {
	Dt        float64
	Start     *r3.Vec
	Moves     []moveSegment
	PlotDir   string
	PlotEvery int
	Pacer     *timeutil.Pacer
}

// simResult is the outcome of a run.
type simResult struct {
	Final    locomotion.FrameReport
	Frames   int
	Falls    int
	Landings int
	Climbs   int
	Plots    int
	Recorder *debugview.Recorder
}

// runSimulation drives a controller through the move script over the scene.
func runSimulation(sc *scene.Scene, cfg *config.TuningConfig, opts simOptions) (*simResult, error) {
	if opts.Dt <= 0 {
		return nil, fmt.Errorf("dt must be positive, got %f", opts.Dt)
	}
	if len(opts.Moves) == 0 {
		return nil, fmt.Errorf("no moves")
	}

	world := sc.BuildWorld()
	ledges := sc.BuildLedges()
	proximity := catalog.NewProximitySet()
	triggers := scene.NewTriggers(ledges, sc.GetTriggerRadius(), catalog.CapsuleFromTuning(cfg), proximity)

	start := sc.SpawnPoint()
	if opts.Start != nil {
		start = *opts.Start
	}
	// Seed the proximity set before the motor's first ground probe.
	triggers.Update(start)

	anim := &countingAnimation{}
	ctrl := locomotion.NewControllerFromTuning(world, cfg, proximity, anim, start)

	var plotter *debugview.FramePlotter
	if opts.PlotDir != "" {
		var err error
		plotter, err = debugview.NewFramePlotter(opts.PlotDir, world.Boxes(), ledges)
		if err != nil {
			return nil, err
		}
	}

	res := &simResult{Recorder: debugview.NewRecorder()}
	for _, seg := range opts.Moves {
		for i := 0; i < seg.Frames; i++ {
			if opts.Pacer != nil {
				opts.Pacer.Wait()
			}
			triggers.Update(ctrl.Motor.Position())
			rep := ctrl.Tick(opts.Dt, seg.Move)
			res.Recorder.Record(rep)
			res.Final = rep
			res.Frames++

			if plotter != nil && opts.PlotEvery > 0 && rep.Frame%opts.PlotEvery == 0 {
				if _, err := plotter.PlotFrame(rep.Frame, res.Recorder.Path(), ctrl.Catalog.Classified()); err != nil {
					return nil, fmt.Errorf("frame %d: %w", rep.Frame, err)
				}
				res.Plots++
			}
		}
	}

	res.Falls = anim.falls
	res.Landings = anim.landings
	res.Climbs = anim.climbs
	return res, nil
}

// snaps counts the frames that snapped the character back onto its ledge.
// Forced climbs are not snaps.
func (r *simResult) snaps() int {
	return r.Recorder.Count(locomotion.DecisionSnapUp)
}

// toRun converts a result into a stored run summary.
func (r *simResult) toRun(sceneID string, dt float64, cfg *config.TuningConfig) (*scene.Run, error) {
	params, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal tuning: %w", err)
	}
	return &scene.Run{
		SceneID:    sceneID,
		Frames:     r.Frames,
		DtSecs:     dt,
		Final:      scene.FromR3(r.Final.Position),
		FinalState: string(r.Final.State),
		Snaps:      r.snaps(),
		Falls:      r.Falls,
		ParamsJSON: params,
	}, nil
}
