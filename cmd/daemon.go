package cmd

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/b0bbywan/go-hwdiscovery/config"
	"github.com/b0bbywan/go-hwdiscovery/hwcontrol/detect"
	"github.com/b0bbywan/go-hwdiscovery/hwcontrol/system"
	"github.com/b0bbywan/go-hwdiscovery/hwcontrol/tether"
	"github.com/b0bbywan/go-hwdiscovery/hwcontrol/thermal"
	"github.com/b0bbywan/go-hwdiscovery/hwcontrol/v4l2"
	"github.com/b0bbywan/go-hwdiscovery/notifications"
)

type Daemon struct {
	ctx       context.Context
	cancel    context.CancelFunc
	config    *config.DaemonConfig
	detectors []detect.Detector
	handlers  []Handler
	scheduler *scheduler
	Notifier  *notifications.Notifier
	Tether    *tether.Monitor
	Thermal   *thermal.Activator
	Cameras   *CameraService
}

func NewDaemon(ctx context.Context, cancel context.CancelFunc) (*Daemon, error) {
	cfg, err := config.NewDaemonConfig()
	if err != nil {
		return nil, err
	}
	return newDaemon(ctx, cancel, cfg, system.ExecRunner{})
}

func newDaemon(ctx context.Context, cancel context.CancelFunc, cfg *config.DaemonConfig, runner system.Runner) (*Daemon, error) {
	d := &Daemon{
		ctx:      ctx,
		cancel:   cancel,
		config:   cfg,
		Notifier: notifications.NewNotifier(cfg.NotificationConfig),
	}

	d.Tether = tether.New(
		d.onTetherEvent,
		tether.WithInterface(cfg.Tether.Interface),
		tether.WithPollInterval(cfg.Tether.PollInterval),
		tether.WithRunner(runner),
	)

	if cfg.Thermal.Enabled {
		d.Thermal = thermal.New(
			thermal.WithRunner(runner),
			thermal.WithSeekConfigPath(cfg.Thermal.SeekConfigPath),
			thermal.WithSeekDefaults(cfg.Thermal.SeekDeviceNode, cfg.Thermal.SeekColormap, cfg.Thermal.SeekRotate),
		)
	}

	enumerator := v4l2.NewEnumerator(cfg.Video.DeviceDir, system.OSFileSystem{})
	d.Cameras = NewCameraService(
		enumerator,
		v4l2.NewProber(cfg.Platform),
		detect.NewIdentityLookup(runner),
		NewManifest(cfg.Video.ManifestPath),
		d.Notifier,
	)

	if cfg.Video.Hotplug {
		d.detectors = []detect.Detector{
			detect.NewUdevDetector(enumerator.Match),
			detect.NewDirWatcher(cfg.Video.DeviceDir, enumerator.Match),
		}
		d.handlers = []Handler{newVideoHandler(d.Cameras)}
	}

	sched, err := newScheduler(ctx, cfg.Video.RescanSchedule, d.Cameras)
	if err != nil {
		return nil, fmt.Errorf("failed to create camera rescan scheduler: %w", err)
	}
	d.scheduler = sched

	return d, nil
}

// Run activates thermal cameras, takes a first camera inventory and then
// watches the tether link and video nodes until the context is done.
func (d *Daemon) Run() error {
	if d.Thermal != nil {
		if _, err := d.Thermal.Scan(d.ctx); err != nil {
			log.Printf("[thermal] %v", err)
			d.Notifier.PlayError()
		}
	}

	if err := d.Cameras.ScanAll(d.ctx); err != nil {
		log.Printf("[v4l2] %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.Tether.Run(d.ctx)
	}()

	if len(d.detectors) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := runHotplug(d.ctx, d.detectors, d.handlers); err != nil && d.ctx.Err() == nil {
				log.Printf("[hotplug] Video hot-plug disabled: %v", err)
			}
		}()
	}

	d.scheduler.Start()
	log.Println("hwdiscovery started")

	<-d.ctx.Done()
	d.scheduler.Stop()
	wg.Wait()
	log.Println("hwdiscovery stopped")
	return nil
}

func (d *Daemon) onTetherEvent(removed bool, ip string) {
	if removed {
		log.Printf("[tether] %s disconnected (was %s)", d.config.Tether.Interface, ip)
		d.Notifier.PlayEvent(notifications.EventTetherDown)
		return
	}
	log.Printf("[tether] %s connected, gateway %s", d.config.Tether.Interface, ip)
	d.Notifier.PlayEvent(notifications.EventTetherUp)
}

func (d *Daemon) Ctx() context.Context {
	return d.ctx
}

func (d *Daemon) Cancel() {
	d.cancel()
}

func (d *Daemon) Close() {
	d.Notifier.Close()
}
