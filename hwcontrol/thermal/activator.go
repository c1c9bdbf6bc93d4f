// Package thermal finds the supported USB thermal cameras and hands them over
// to their systemd driver units.
package thermal

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/b0bbywan/go-hwdiscovery/hwcontrol/system"
)

const (
	FlirUnit = "flirone"
	SeekUnit = "seekthermal"
)

var ErrUSBInit = errors.New("usb subsystem unavailable")

type Activator struct {
	openBus        BusOpener
	runner         system.Runner
	seekConfigPath string
	seekDefaults   SeekConfig
}

type Option func(*Activator)

func WithBusOpener(open BusOpener) Option {
	return func(a *Activator) { a.openBus = open }
}

func WithRunner(r system.Runner) Option {
	return func(a *Activator) { a.runner = r }
}

func WithSeekConfigPath(path string) Option {
	return func(a *Activator) { a.seekConfigPath = path }
}

// WithSeekDefaults sets the device node, colormap and rotation written for any
// Seek camera. Model and FPS always come from the detected camera.
func WithSeekDefaults(deviceNode string, colormap, rotate int) Option {
	return func(a *Activator) {
		a.seekDefaults.DeviceNode = deviceNode
		a.seekDefaults.Colormap = colormap
		a.seekDefaults.Rotate = rotate
	}
}

func New(opts ...Option) *Activator {
	a := &Activator{
		openBus:        OpenLibUSB,
		runner:         system.ExecRunner{},
		seekConfigPath: DefaultSeekConfigPath,
		seekDefaults: SeekConfig{
			DeviceNode: DefaultSeekDeviceNode,
			Colormap:   DefaultSeekColormap,
			Rotate:     DefaultSeekRotate,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Scan looks for every known thermal camera and starts the matching driver
// units. It returns the cameras found. A USB init failure aborts the scan with
// ErrUSBInit; unit or descriptor failures are joined into the returned error.
func (a *Activator) Scan(ctx context.Context) ([]Model, error) {
	bus, err := a.openBus()
	if err != nil {
		log.Printf("[thermal] Failed to initialize USB: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrUSBInit, err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			log.Printf("[thermal] Failed to close USB context: %v", err)
		}
	}()

	found := detect(bus)
	var errs []error

	if contains(found, FlirOne) {
		log.Printf("[thermal] Found %s", FlirOne)
		if err := system.StartUnit(ctx, a.runner, FlirUnit); err != nil {
			errs = append(errs, err)
		}
	}

	if seek, ok := selectSeek(found); ok {
		if err := a.activateSeek(ctx, seek); err != nil {
			errs = append(errs, err)
		}
	}
	return found, errors.Join(errs...)
}

func (a *Activator) activateSeek(ctx context.Context, m Model) error {
	cfg := a.seekDefaults
	cfg.Model, cfg.FPS = seekSettings(m)
	log.Printf("[thermal] Found %s, model=%s fps=%d", m, cfg.Model, cfg.FPS)

	if err := WriteDescriptor(a.seekConfigPath, cfg); err != nil {
		return err
	}
	return system.StartUnit(ctx, a.runner, SeekUnit)
}

func detect(bus Bus) []Model {
	var found []Model
	for _, m := range Models {
		ok, err := bus.Present(m.ID())
		if err != nil {
			log.Printf("[thermal] %s (%s): %v", m, m.ID(), err)
		}
		if ok {
			found = append(found, m)
		}
	}
	return found
}

// selectSeek picks the Seek camera to drive. The seekthermal unit serves a
// single camera, the Compact Pro takes precedence over the Compact.
func selectSeek(found []Model) (Model, bool) {
	pro, compact := contains(found, SeekCompactPro), contains(found, SeekCompact)
	switch {
	case pro && compact:
		log.Printf("[thermal] Both %s and %s present, ignoring %s", SeekCompactPro, SeekCompact, SeekCompact)
		return SeekCompactPro, true
	case pro:
		return SeekCompactPro, true
	case compact:
		return SeekCompact, true
	}
	return 0, false
}

func contains(models []Model, m Model) bool {
	for _, v := range models {
		if v == m {
			return true
		}
	}
	return false
}
