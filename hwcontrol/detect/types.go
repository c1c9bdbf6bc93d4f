package detect

import "context"

type DeviceKind string

type EventType string

const (
	EventAdd    = "add"
	EventChange = "change"
	EventRemove = "remove"

	InvalidEvent  EventType = "invalid"
	DeviceAdded   EventType = EventAdd
	DeviceRemoved EventType = EventRemove

	DeviceVideo DeviceKind = "video"

	SubsystemVideo = "video4linux"
)

type DeviceEvent struct {
	Type EventType
	Kind DeviceKind
	Path string
}

// Detector publishes device events on out until ctx is done.
type Detector interface {
	Run(ctx context.Context, out chan<- DeviceEvent) error
}
