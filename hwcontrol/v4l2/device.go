package v4l2

import (
	"errors"
	"fmt"
)

// ErrEndOfEnumeration is returned by the Enum* calls once the index runs past
// the last entry.
var ErrEndOfEnumeration = errors.New("end of enumeration")

// Device is an open video-capture node speaking the V4L2 control protocol.
type Device interface {
	QueryCapability() (Capability, error)
	EnumFormat(index uint32) (FormatDesc, error)
	EnumFrameSize(pixfmt FourCC, index uint32) (FrameSize, error)
	EnumFrameInterval(pixfmt FourCC, width, height, index uint32) (FrameInterval, error)
	Close() error
}

type Capability struct {
	Driver       string
	Card         string
	BusInfo      string
	Version      uint32
	Capabilities uint32
	DeviceCaps   uint32
}

func (c Capability) String() string {
	return fmt.Sprintf("driver:%s,bus_info:%s", c.Driver, c.BusInfo)
}

type FormatDesc struct {
	Index       uint32
	Flags       uint32
	Description string
	PixelFormat FourCC
}

// EntryType tells whether a frame size or interval is an exact value or a range.
type EntryType uint32

const (
	EntryDiscrete   EntryType = 1
	EntryContinuous EntryType = 2
	EntryStepwise   EntryType = 3
)

func (t EntryType) String() string {
	switch t {
	case EntryDiscrete:
		return "discrete"
	case EntryContinuous:
		return "continuous"
	case EntryStepwise:
		return "stepwise"
	}
	return fmt.Sprintf("type(%d)", uint32(t))
}

// FrameSize carries Width and Height only for discrete entries.
type FrameSize struct {
	Index  uint32
	Type   EntryType
	Width  uint32
	Height uint32
}

// FrameInterval carries the interval in seconds as Numerator/Denominator,
// only for discrete entries.
type FrameInterval struct {
	Index       uint32
	Type        EntryType
	Numerator   uint32
	Denominator uint32
}

// FPS converts the interval into whole frames per second.
func (i FrameInterval) FPS() uint32 {
	if i.Numerator == 0 {
		return i.Denominator
	}
	return i.Denominator / i.Numerator
}
