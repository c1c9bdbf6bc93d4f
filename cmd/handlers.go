package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/b0bbywan/go-hwdiscovery/hwcontrol/detect"
)

// Handler defines a stateless handler capable of handling one type of device.
type Handler interface {
	// Handles returns true if the handler can handle that type of device
	Handles(kind detect.DeviceKind) bool
	OnAdd(ctx context.Context, ev detect.DeviceEvent) error
	OnRemove(ctx context.Context, ev detect.DeviceEvent) error
}

type BasicHandler struct {
	kind          detect.DeviceKind
	processAdd    func(context.Context, detect.DeviceEvent) error
	processRemove func(context.Context, detect.DeviceEvent) error
}

func (h *BasicHandler) Handles(kind detect.DeviceKind) bool {
	return h.kind == kind
}

func (h *BasicHandler) OnAdd(ctx context.Context, ev detect.DeviceEvent) error {
	if h.processAdd != nil {
		return h.processAdd(ctx, ev)
	}
	return nil
}

func (h *BasicHandler) OnRemove(ctx context.Context, ev detect.DeviceEvent) error {
	if h.processRemove != nil {
		return h.processRemove(ctx, ev)
	}
	return nil
}

func NewBasicHandler(kind detect.DeviceKind,
	processAdd, processRemove func(context.Context, detect.DeviceEvent) error) *BasicHandler {

	return &BasicHandler{
		kind:          kind,
		processAdd:    processAdd,
		processRemove: processRemove,
	}
}

func newVideoHandler(cameras *CameraService) *BasicHandler {
	return NewBasicHandler(
		detect.DeviceVideo,
		// processAdd
		func(ctx context.Context, ev detect.DeviceEvent) error {
			if err := cameras.ProbeOne(ctx, ev.Path); err != nil {
				return fmt.Errorf("[%s] Error probing %s: %w", detect.DeviceVideo, ev.Path, err)
			}
			return nil
		},
		// processRemove
		func(ctx context.Context, ev detect.DeviceEvent) error {
			if err := cameras.Remove(ev.Path); err != nil {
				return fmt.Errorf("[%s] Error removing %s: %w", detect.DeviceVideo, ev.Path, err)
			}
			return nil
		},
	)
}

func dispatch(ctx context.Context, handlers []Handler, ev detect.DeviceEvent) {
	for _, h := range handlers {
		if !h.Handles(ev.Kind) {
			continue
		}
		var err error
		switch ev.Type {
		case detect.DeviceAdded:
			err = h.OnAdd(ctx, ev)
		case detect.DeviceRemoved:
			err = h.OnRemove(ctx, ev)
		}
		if err != nil {
			log.Printf("[hotplug] %v", err)
		}
	}
}

// runHotplug feeds device events to the handlers until ctx is done. Each
// detector is tried in turn, the next one only when the previous fails.
func runHotplug(ctx context.Context, detectors []detect.Detector, handlers []Handler) error {
	var err error
	for _, detector := range detectors {
		if err = runDetector(ctx, detector, handlers); err == nil || ctx.Err() != nil {
			return nil
		}
		log.Printf("[hotplug] Detector failed, trying next one: %v", err)
	}
	return err
}

func runDetector(ctx context.Context, detector detect.Detector, handlers []Handler) error {
	events := make(chan detect.DeviceEvent)
	errc := make(chan error, 1)
	go func() {
		errc <- detector.Run(ctx, events)
	}()

	for {
		select {
		case ev := <-events:
			dispatch(ctx, handlers, ev)
		case err := <-errc:
			return err
		}
	}
}
