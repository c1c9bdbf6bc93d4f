package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/b0bbywan/go-hwdiscovery/hwcontrol/detect"
)

type recordingHandler struct {
	kind    detect.DeviceKind
	added   []string
	removed []string
}

func (h *recordingHandler) Handles(kind detect.DeviceKind) bool { return kind == h.kind }

func (h *recordingHandler) OnAdd(_ context.Context, ev detect.DeviceEvent) error {
	h.added = append(h.added, ev.Path)
	return nil
}

func (h *recordingHandler) OnRemove(_ context.Context, ev detect.DeviceEvent) error {
	h.removed = append(h.removed, ev.Path)
	return nil
}

func TestDispatch(t *testing.T) {
	video := &recordingHandler{kind: detect.DeviceVideo}
	other := &recordingHandler{kind: "usb"}
	handlers := []Handler{video, other}
	ctx := context.Background()

	dispatch(ctx, handlers, detect.DeviceEvent{Type: detect.DeviceAdded, Kind: detect.DeviceVideo, Path: "/dev/video0"})
	dispatch(ctx, handlers, detect.DeviceEvent{Type: detect.DeviceRemoved, Kind: detect.DeviceVideo, Path: "/dev/video0"})
	dispatch(ctx, handlers, detect.DeviceEvent{Type: detect.InvalidEvent, Kind: detect.DeviceVideo, Path: "/dev/video1"})

	if len(video.added) != 1 || len(video.removed) != 1 {
		t.Errorf("video handler got added=%v removed=%v", video.added, video.removed)
	}
	if len(other.added)+len(other.removed) != 0 {
		t.Errorf("usb handler received video events")
	}
}

func TestVideoHandler(t *testing.T) {
	s, _, path := newTestService(t, nil, "/dev/video0")
	h := newVideoHandler(s)
	ctx := context.Background()

	if !h.Handles(detect.DeviceVideo) {
		t.Fatal("video handler does not handle video devices")
	}
	if err := h.OnAdd(ctx, detect.DeviceEvent{Type: detect.DeviceAdded, Kind: detect.DeviceVideo, Path: "/dev/video0"}); err != nil {
		t.Fatalf("OnAdd: %v", err)
	}
	if err := h.OnAdd(ctx, detect.DeviceEvent{Type: detect.DeviceAdded, Kind: detect.DeviceVideo, Path: "/dev/video1"}); err == nil {
		t.Error("OnAdd accepted a node without usable formats")
	}
	if got := manifestPaths(t, path); len(got) != 1 {
		t.Errorf("manifest = %v", got)
	}
	if err := h.OnRemove(ctx, detect.DeviceEvent{Type: detect.DeviceRemoved, Kind: detect.DeviceVideo, Path: "/dev/video0"}); err != nil {
		t.Fatalf("OnRemove: %v", err)
	}
	if got := manifestPaths(t, path); len(got) != 0 {
		t.Errorf("manifest = %v, want empty", got)
	}
}

func TestBasicHandler_NilCallbacks(t *testing.T) {
	h := NewBasicHandler(detect.DeviceVideo, nil, nil)
	if err := h.OnAdd(context.Background(), detect.DeviceEvent{}); err != nil {
		t.Errorf("OnAdd: %v", err)
	}
	if err := h.OnRemove(context.Background(), detect.DeviceEvent{}); err != nil {
		t.Errorf("OnRemove: %v", err)
	}
}

type failingDetector struct{}

func (failingDetector) Run(context.Context, chan<- detect.DeviceEvent) error {
	return errors.New("netlink unavailable")
}

type scriptedDetector struct {
	events []detect.DeviceEvent
	cancel context.CancelFunc
}

func (d scriptedDetector) Run(ctx context.Context, out chan<- detect.DeviceEvent) error {
	for _, ev := range d.events {
		out <- ev
	}
	d.cancel()
	<-ctx.Done()
	return nil
}

func TestRunHotplug_FallsBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	video := &recordingHandler{kind: detect.DeviceVideo}
	detectors := []detect.Detector{
		failingDetector{},
		scriptedDetector{
			events: []detect.DeviceEvent{{Type: detect.DeviceAdded, Kind: detect.DeviceVideo, Path: "/dev/video0"}},
			cancel: cancel,
		},
	}

	if err := runHotplug(ctx, detectors, []Handler{video}); err != nil {
		t.Fatalf("runHotplug: %v", err)
	}
	if len(video.added) != 1 || video.added[0] != "/dev/video0" {
		t.Errorf("added = %v", video.added)
	}
}

func TestRunHotplug_AllFail(t *testing.T) {
	err := runHotplug(context.Background(), []detect.Detector{failingDetector{}, failingDetector{}}, nil)
	if err == nil {
		t.Fatal("expected error when every detector fails")
	}
}
