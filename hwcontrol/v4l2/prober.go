// Package v4l2 lists video-capture nodes and probes the formats they can
// stream through the V4L2 device-control protocol.
package v4l2

import (
	"errors"
	"fmt"
	"log"
)

var (
	ErrCannotOpen      = errors.New("cannot open device")
	ErrCapabilityQuery = errors.New("capability query failed")
	ErrNoUsableFormat  = errors.New("no usable format")
)

// maxEnumIndex bounds every enumeration level against drivers that never
// answer EINVAL.
const maxEnumIndex = 1024

type PixelFormat struct {
	Description string `yaml:"format"`
	FourCC      string `yaml:"fourcc"`
	Width       uint32 `yaml:"width"`
	Height      uint32 `yaml:"height"`
	FPS         uint32 `yaml:"fps"`
}

func (f PixelFormat) String() string {
	return fmt.Sprintf("%s|%dx%d@%d", f.Description, f.Width, f.Height, f.FPS)
}

// DeviceCapabilityReport is built once per probe and not modified afterwards.
type DeviceCapabilityReport struct {
	Path              string                  `yaml:"path"`
	Driver            string                  `yaml:"driver"`
	Card              string                  `yaml:"card"`
	BusInfo           string                  `yaml:"bus_info"`
	FormatsByCodec    map[Codec][]PixelFormat `yaml:"formats"`
	HasAnyValidFormat bool                    `yaml:"has_any_valid_format"`
}

func (r *DeviceCapabilityReport) Formats(c Codec) []PixelFormat {
	return r.FormatsByCodec[c]
}

func (r *DeviceCapabilityReport) Summary() string {
	return fmt.Sprintf("driver:%s,bus_info:%s", r.Driver, r.BusInfo)
}

type Prober struct {
	platform Platform
	opener   Opener
}

type ProberOption func(*Prober)

// WithOpener overrides the open strategy picked for the platform.
func WithOpener(o Opener) ProberOption {
	return func(p *Prober) { p.opener = o }
}

func NewProber(platform Platform, opts ...ProberOption) *Prober {
	p := &Prober{
		platform: platform,
		opener:   platform.Opener(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe opens path, queries its identity and collects every discrete
// format/size/interval triple. Probes of the same path must not overlap.
func (p *Prober) Probe(path string) (*DeviceCapabilityReport, error) {
	dev, err := p.opener.Open(path)
	if err != nil {
		log.Printf("[v4l2] Can't open %s: %v", path, err)
		return nil, fmt.Errorf("%s: %w: %v", path, ErrCannotOpen, err)
	}
	defer func() {
		if err := dev.Close(); err != nil {
			log.Printf("[v4l2] Failed to close %s: %v", path, err)
		}
	}()

	caps, err := dev.QueryCapability()
	if err != nil {
		log.Printf("[v4l2] Can't get caps for %s: %v", path, err)
		return nil, fmt.Errorf("%s: %w: %v", path, ErrCapabilityQuery, err)
	}

	formats, n := p.enumerate(path, dev)
	if n == 0 {
		return nil, fmt.Errorf("%s (%s): %w", path, caps, ErrNoUsableFormat)
	}
	return &DeviceCapabilityReport{
		Path:              path,
		Driver:            caps.Driver,
		Card:              caps.Card,
		BusInfo:           caps.BusInfo,
		FormatsByCodec:    formats,
		HasAnyValidFormat: true,
	}, nil
}

func (p *Prober) enumerate(path string, dev Device) (map[Codec][]PixelFormat, int) {
	formats := make(map[Codec][]PixelFormat)
	n := 0
	for fi := uint32(0); fi < maxEnumIndex; fi++ {
		desc, err := dev.EnumFormat(fi)
		if err != nil {
			logEnumErr(path, "formats", err)
			break
		}
		codec := p.platform.Classify(desc.PixelFormat)
		for si := uint32(0); si < maxEnumIndex; si++ {
			size, err := dev.EnumFrameSize(desc.PixelFormat, si)
			if err != nil {
				logEnumErr(path, "frame sizes", err)
				break
			}
			if size.Type != EntryDiscrete {
				continue
			}
			for ii := uint32(0); ii < maxEnumIndex; ii++ {
				ival, err := dev.EnumFrameInterval(desc.PixelFormat, size.Width, size.Height, ii)
				if err != nil {
					logEnumErr(path, "frame intervals", err)
					break
				}
				if ival.Type != EntryDiscrete {
					continue
				}
				formats[codec] = append(formats[codec], PixelFormat{
					Description: desc.Description,
					FourCC:      desc.PixelFormat.String(),
					Width:       size.Width,
					Height:      size.Height,
					FPS:         ival.FPS(),
				})
				n++
			}
		}
	}
	return formats, n
}

func logEnumErr(path, what string, err error) {
	if !errors.Is(err, ErrEndOfEnumeration) {
		log.Printf("[v4l2] Enumerating %s of %s stopped: %v", what, path, err)
	}
}
