package cmd

import (
	"context"
	"fmt"

	"github.com/b0bbywan/go-hwdiscovery/hwcontrol/detect"
	"github.com/b0bbywan/go-hwdiscovery/hwcontrol/v4l2"
)

type fakeLister struct {
	nodes []string
	err   error
}

func (l *fakeLister) List() ([]string, error) {
	return l.nodes, l.err
}

type fakeProber struct {
	reports map[string]*v4l2.DeviceCapabilityReport
	probed  []string
}

func (p *fakeProber) Probe(path string) (*v4l2.DeviceCapabilityReport, error) {
	p.probed = append(p.probed, path)
	if r, ok := p.reports[path]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%s: %w", path, v4l2.ErrNoUsableFormat)
}

type fakeIdentity struct{}

func (fakeIdentity) Lookup(_ context.Context, devnode string) detect.Identity {
	return detect.Identity{Model: "cam" + devnode[len(devnode)-1:], Vendor: "acme"}
}

func usableReport(path string) *v4l2.DeviceCapabilityReport {
	return &v4l2.DeviceCapabilityReport{
		Path:    path,
		Driver:  "uvcvideo",
		Card:    "USB Camera",
		BusInfo: "usb-0000:01:00.0-1.3",
		FormatsByCodec: map[v4l2.Codec][]v4l2.PixelFormat{
			v4l2.CodecMJPEG: {
				{Description: "Motion-JPEG", FourCC: "MJPG", Width: 1280, Height: 720, FPS: 30},
			},
		},
		HasAnyValidFormat: true,
	}
}
