package detect

import (
	"context"
	"fmt"
	"log"

	"github.com/jochenvg/go-udev"
)

// UdevDetector listens to udev video4linux events and publishes the ones
// concerning capture nodes accepted by match.
type UdevDetector struct {
	match func(devnode string) bool
}

func NewUdevDetector(match func(devnode string) bool) *UdevDetector {
	return &UdevDetector{match: match}
}

func (d *UdevDetector) Run(ctx context.Context, out chan<- DeviceEvent) error {
	u := udev.Udev{}
	monitor := u.NewMonitorFromNetlink("udev")
	if err := monitor.FilterAddMatchSubsystem(SubsystemVideo); err != nil {
		return fmt.Errorf("failed to add filter: %w", err)
	}

	deviceChan, errChan, err := monitor.DeviceChan(ctx)
	if err != nil {
		return fmt.Errorf("failed to create device channel: %w", err)
	}

	log.Println("[hotplug] Listening for udev video events...")

	for {
		select {
		case <-ctx.Done():
			log.Println("[hotplug] Detector stopping due to context cancellation")
			return nil
		case device := <-deviceChan:
			if device == nil {
				continue
			}
			ev := d.convert(device.Action(), device.Devnode())
			if ev == nil {
				continue
			}
			select {
			case out <- *ev:
			case <-ctx.Done():
				return nil
			}
		case err := <-errChan:
			if err != nil {
				log.Printf("[hotplug] udev monitor error: %v", err)
			}
		}
	}
}

func (d *UdevDetector) convert(action, devnode string) *DeviceEvent {
	if devnode == "" || (d.match != nil && !d.match(devnode)) {
		return nil
	}
	evType := detectEvent(action)
	if evType == InvalidEvent {
		return nil
	}
	return &DeviceEvent{
		Type: evType,
		Kind: DeviceVideo,
		Path: devnode,
	}
}

func detectEvent(action string) EventType {
	switch action {
	case EventAdd:
		return DeviceAdded
	case EventRemove:
		return DeviceRemoved
	case EventChange:
		return InvalidEvent
	}
	log.Printf("[hotplug] Unhandled action: %s", action)
	return InvalidEvent
}
