// Command ledgesim runs the ledge locomotion pipeline over a scene and
// optionally stores scenes and run summaries in sqlite, plots frames and
// writes an HTML report.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/ledgewalk/internal/config"
	"github.com/banshee-data/ledgewalk/internal/debugview"
	"github.com/banshee-data/ledgewalk/internal/monitoring"
	"github.com/banshee-data/ledgewalk/internal/scene"
	"github.com/banshee-data/ledgewalk/internal/timeutil"
	"github.com/banshee-data/ledgewalk/internal/version"
)

var (
	scenePath   = flag.String("scene", "", "path to a scene JSON file")
	dbPath      = flag.String("db", "", "path to the sqlite scene store (optional)")
	sceneID     = flag.String("scene-id", "", "run a scene from the store instead of -scene")
	importOnly  = flag.Bool("import", false, "store -scene in -db and exit")
	listScenes  = flag.Bool("list", false, "list scenes (or runs with -scene-id) in -db and exit")
	deleteScene = flag.Bool("delete", false, "delete -scene-id from -db and exit")
	configPath  = flag.String("config", "", "tuning config JSON (defaults to "+config.DefaultConfigPath+" when present)")
	dt          = flag.Float64("dt", 0, "frame step in seconds (defaults to the tuning frame_interval)")
	startFlag   = flag.String("start", "", "start position x,y,z (defaults to the scene spawn)")
	moveFlag    = flag.String("move", "0,-1*120", "move script: x,z*frames segments separated by ';'")
	realtime    = flag.Bool("realtime", false, "pace frames at the tuning frame_interval")
	plotDir     = flag.String("plot-dir", "", "directory for per-frame PNG plots")
	plotEvery   = flag.Int("plot-every", 10, "plot every Nth frame when -plot-dir is set")
	reportPath  = flag.String("report", "", "write an HTML report to this path")
	verbose     = flag.Bool("verbose", false, "enable diagnostic logging")
	trace       = flag.Bool("trace", false, "enable per-frame trace logging")
	showVersion = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("ledgesim", version.String())
		return
	}

	writers := monitoring.LogWriters{Ops: os.Stderr}
	if *verbose || *trace {
		writers.Diag = os.Stderr
	}
	if *trace {
		writers.Trace = os.Stderr
	}
	monitoring.SetLogWriters(writers)

	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

// run executes the command selected by the flags. The store, when opened,
// is closed on every return path.
func run() error {
	var store *scene.Store
	if *dbPath != "" {
		var err error
		store, err = scene.OpenStore(*dbPath)
		if err != nil {
			return fmt.Errorf("open scene store: %w", err)
		}
		defer store.Close()
	}

	switch {
	case *listScenes:
		if store == nil {
			return fmt.Errorf("-list requires -db")
		}
		if err := list(store, *sceneID); err != nil {
			return fmt.Errorf("list: %w", err)
		}
		return nil
	case *deleteScene:
		if store == nil {
			return fmt.Errorf("-delete requires -db")
		}
		if *sceneID == "" {
			return fmt.Errorf("-delete requires -scene-id")
		}
		if err := store.DeleteScene(*sceneID); err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		log.Printf("deleted scene %s", *sceneID)
		return nil
	}

	sc, err := loadScene(store)
	if err != nil {
		return err
	}
	if *importOnly {
		return nil
	}

	cfg, err := loadTuning(*configPath)
	if err != nil {
		return fmt.Errorf("load tuning: %w", err)
	}

	opts := simOptions{
		Dt:        *dt,
		PlotDir:   *plotDir,
		PlotEvery: *plotEvery,
	}
	if opts.Dt == 0 {
		opts.Dt = cfg.GetFrameInterval().Seconds()
	}
	if *startFlag != "" {
		start, err := parseVec3(*startFlag)
		if err != nil {
			return fmt.Errorf("invalid -start: %w", err)
		}
		opts.Start = &start
	}
	if opts.Moves, err = parseMoveScript(*moveFlag); err != nil {
		return fmt.Errorf("invalid -move: %w", err)
	}
	if *realtime {
		opts.Pacer = timeutil.NewPacer(timeutil.RealClock{}, cfg.GetFrameInterval())
	}

	began := time.Now()
	res, err := runSimulation(sc, cfg, opts)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	log.Printf("scene %q: %d frames in %v, final %s at (%.3f, %.3f, %.3f), falls=%d landings=%d climbs=%d snaps=%d",
		sc.Name, res.Frames, time.Since(began).Round(time.Millisecond), res.Final.State,
		res.Final.Position.X, res.Final.Position.Y, res.Final.Position.Z,
		res.Falls, res.Landings, res.Climbs, res.snaps())
	if opts.Pacer != nil && opts.Pacer.Late() > 0 {
		log.Printf("%d frames missed the %v frame interval", opts.Pacer.Late(), opts.Pacer.Interval())
	}
	if res.Plots > 0 {
		log.Printf("wrote %d frame plots to %s", res.Plots, *plotDir)
	}

	if *reportPath != "" {
		if err := debugview.WriteReport(*reportPath, sc.Name, res.Recorder.Samples()); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.Printf("wrote report to %s", *reportPath)
	}

	if store != nil && sc.SceneID != "" {
		rec, err := res.toRun(sc.SceneID, opts.Dt, cfg)
		if err != nil {
			return err
		}
		if err := store.InsertRun(rec); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		log.Printf("recorded run %s", rec.RunID)
	}
	return nil
}

// loadScene reads the scene from -scene or the store. A file scene is
// imported into the store when one is open.
func loadScene(store *scene.Store) (*scene.Scene, error) {
	if *sceneID != "" {
		if store == nil {
			return nil, fmt.Errorf("-scene-id requires -db")
		}
		return store.GetScene(*sceneID)
	}
	if *scenePath == "" {
		return nil, fmt.Errorf("one of -scene or -scene-id is required")
	}
	sc, err := scene.Load(*scenePath)
	if err != nil {
		return nil, err
	}
	if store != nil {
		if err := store.InsertScene(sc); err != nil {
			return nil, fmt.Errorf("import scene: %w", err)
		}
		log.Printf("imported scene %q as %s", sc.Name, sc.SceneID)
	} else if *importOnly {
		return nil, fmt.Errorf("-import requires -db")
	}
	return sc, nil
}

// loadTuning loads path, or the defaults file when present, or the
// built-in defaults.
func loadTuning(path string) (*config.TuningConfig, error) {
	if path != "" {
		return config.LoadTuningConfig(path)
	}
	if _, err := os.Stat(config.DefaultConfigPath); err == nil {
		return config.LoadTuningConfig(config.DefaultConfigPath)
	}
	return config.DefaultTuningConfig(), nil
}

func list(store *scene.Store, id string) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	if id != "" {
		runs, err := store.ListRuns(id)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "RUN\tFRAMES\tDT\tSTATE\tFINAL\tSNAPS\tFALLS\tCREATED")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%d\t%.3f\t%s\t%.2f,%.2f,%.2f\t%d\t%d\t%s\n",
				r.RunID, r.Frames, r.DtSecs, r.FinalState, r.Final[0], r.Final[1], r.Final[2],
				r.Snaps, r.Falls, time.Unix(0, r.CreatedAtNs).Format(time.RFC3339))
		}
		return nil
	}

	scenes, err := store.ListScenes()
	if err != nil {
		return err
	}
	fmt.Fprintln(tw, "SCENE\tNAME\tLEDGES\tCREATED")
	for _, s := range scenes {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.SceneID, s.Name, s.Ledges,
			time.Unix(0, s.CreatedAtNs).Format(time.RFC3339))
	}
	return nil
}
