package v4l2

import "fmt"

type Platform string

const (
	PlatformGeneric     Platform = "generic"
	PlatformRaspberryPi Platform = "rpi"
	PlatformJetson      Platform = "jetson"
	PlatformRockchip    Platform = "rockchip"
)

func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(s); p {
	case PlatformGeneric, PlatformRaspberryPi, PlatformJetson, PlatformRockchip:
		return p, nil
	}
	return "", fmt.Errorf("unsupported platform %q", s)
}

// exposesH265 reports whether the platform kernel headers carry the vendor
// H265 fourcc next to the mainline HEVC one.
func (p Platform) exposesH265() bool {
	return p == PlatformRockchip
}

// Opener acquires a device handle for a video node.
type Opener interface {
	Open(path string) (Device, error)
}

// StandardOpener opens nodes read-write through the regular device-control path.
type StandardOpener struct{}

func (StandardOpener) Open(path string) (Device, error) {
	return openDevice(path, false)
}

// NonBlockingOpener uses a plain non-blocking open. The device-control open
// path of the Jetson kernels hangs on some camera drivers.
type NonBlockingOpener struct{}

func (NonBlockingOpener) Open(path string) (Device, error) {
	return openDevice(path, true)
}

func (p Platform) Opener() Opener {
	if p == PlatformJetson {
		return NonBlockingOpener{}
	}
	return StandardOpener{}
}
