package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"teleop-logger/controller"
	"teleop-logger/services/actuator"
	"teleop-logger/services/catalog"
	"teleop-logger/services/display"
	"teleop-logger/services/display/gocvwin"
	"teleop-logger/services/gamepad"
	"teleop-logger/services/ingest"
	"teleop-logger/utils"
	"teleop-logger/views"
)

func main() {
	app := cli.NewApp()
	app.Name = "teleop-logger"
	app.Usage = "drive the car with a gamepad and record (image, steering, throttle) samples"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Value: "config/rig.yaml",
			Usage: "path to rig.yaml (built-in defaults when missing)",
		},
		cli.StringFlag{
			Name:  "log",
			Usage: "optional log file path (stdout is always included)",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "teleop-logger:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	// ── Config + logger ──────────────────────────────────────────────
	cfg, err := utils.LoadRigConfig(c.String("config"))
	if err != nil {
		return err
	}
	level, _ := utils.ParseLevel(cfg.Log.Level)
	logFile := c.String("log")
	if logFile == "" {
		logFile = cfg.Log.File
	}
	logger := utils.InitLogger(level, logFile)
	defer logger.Close()

	utils.L().Info("═══════════════════════════════════════════════════")
	utils.L().Info("  Teleop-Logger  ·  Driving Dataset Collection")
	utils.L().Info("  GOMAXPROCS=%d  ·  PID=%d", runtime.GOMAXPROCS(0), os.Getpid())
	utils.L().Info("  actuator=%s  camera=%s  preview=%t", cfg.Actuator.Driver, cfg.Camera.Driver, cfg.Preview.Enabled)
	utils.L().Info("═══════════════════════════════════════════════════")

	// ── Context with OS signal cancellation ──────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Hardware ─────────────────────────────────────────────────────
	driver, err := actuator.Open(cfg.Actuator)
	if err != nil {
		return err
	}
	if cl, ok := driver.(actuator.Closer); ok {
		defer func() {
			if err := cl.Close(); err != nil {
				utils.L().Warn("close actuator: %v", err)
			}
		}()
	}

	cam, err := openCamera(cfg.Camera)
	if err != nil {
		return err
	}

	// ── Persistence ──────────────────────────────────────────────────
	dlog, err := views.OpenDrivingLog(cfg.Recording.CSVPath, cfg.Recording.ImageDir)
	if err != nil {
		_ = cam.Release()
		return err
	}
	defer func() {
		if err := dlog.Close(); err != nil {
			utils.L().Error("close driving log: %v", err)
		}
	}()

	var cat *catalog.Catalog
	if cfg.Recording.CatalogPath != "" {
		cat, err = catalog.Open(cfg.Recording.CatalogPath)
		if err != nil {
			_ = cam.Release()
			return err
		}
		defer cat.Close()
		started := time.Now()
		id, err := cat.StartSession(cfg.Recording.CSVPath, cfg.Recording.ImageDir, started)
		if err != nil {
			_ = cam.Release()
			return err
		}
		dlog.SetIndex(cat)
		utils.L().Info("catalog session %s started %s  (%s)", id, utils.FormatTimestamp(started.UnixNano()), cfg.Recording.CatalogPath)
	}

	// ── Pipeline assembly ────────────────────────────────────────────
	rig := controller.NewRigController(cfg, controller.RigDeps{
		Camera:  cam,
		Display: openerFor(cfg.Preview),
		Driver:  driver,
		Sink:    dlog,
		OpenInput: func(bindings ...string) (controller.EventSource, error) {
			return gamepad.Find(cfg.Gamepad.DeviceName, bindings...)
		},
	})

	utils.L().Info("rig running: hold the trigger past %d to toggle recording, press %q in the preview to quit",
		cfg.Gamepad.TriggerThreshold, cfg.Preview.QuitKey)
	runErr := rig.Run(ctx)

	// ── Summary ──────────────────────────────────────────────────────
	s := rig.Stats()
	if cat != nil {
		err := cat.EndSession(time.Now(), catalog.Totals{
			SamplesLogged:  s.RowsWritten,
			SamplesDropped: s.SamplesDropped,
			FramesCaptured: s.FramesCaptured,
		})
		if err != nil {
			utils.L().Error("close catalog session: %v", err)
		}
	}
	utils.L().Info("frames captured: %d  (missed %d)", s.FramesCaptured, s.FramesMissed)
	utils.L().Info("samples queued: %d  dropped: %d", s.SamplesQueued, s.SamplesDropped)
	utils.L().Info("rows written: %d  no_frame: %d  failed: %d", s.RowsWritten, s.NoFrame, s.PersistFailed)
	utils.L().Info("session saved to: %s  (%d rows appended, images in %s)", cfg.Recording.CSVPath, dlog.Rows(), cfg.Recording.ImageDir)

	if errors.Is(runErr, controller.ErrControllerNotFound) {
		return cli.NewExitError(runErr.Error(), 1)
	}
	if runErr != nil {
		return runErr
	}
	fmt.Println("\n✓ Teleop-Logger finished. Driving log at:", cfg.Recording.CSVPath)
	return nil
}

func openCamera(cfg utils.CameraConfig) (ingest.Camera, error) {
	if cfg.Driver == "sim" {
		utils.L().Info("camera: simulated %dx%d @ %d fps", cfg.Resolution.Width, cfg.Resolution.Height, cfg.FPS)
		return ingest.NewSimCamera(cfg), nil
	}
	cam, err := ingest.OpenV4L2Camera(cfg)
	if err != nil {
		return nil, err
	}
	return cam, nil
}

// openerFor picks the preview sink. Without a display server the preview
// runs headless so the rig still records; quit is then by signal only.
func openerFor(cfg utils.PreviewConfig) display.Opener {
	if !cfg.Enabled {
		return nil
	}
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		utils.L().Warn("no display server, preview runs headless (stop with Ctrl+C)")
		return display.OpenHeadless
	}
	return gocvwin.Opener(cfg.WindowName)
}
