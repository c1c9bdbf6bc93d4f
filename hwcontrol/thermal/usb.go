package thermal

import (
	"fmt"

	"github.com/google/gousb"
)

// Bus answers whether a USB device with a given VID/PID can be opened.
type Bus interface {
	Present(id USBID) (bool, error)
	Close() error
}

type BusOpener func() (Bus, error)

type libusbBus struct {
	ctx *gousb.Context
}

// OpenLibUSB initializes libusb. gousb panics when libusb cannot be
// initialized, that panic is turned into an error here.
func OpenLibUSB() (bus Bus, err error) {
	defer func() {
		if r := recover(); r != nil {
			bus = nil
			err = fmt.Errorf("libusb: %v", r)
		}
	}()
	return &libusbBus{ctx: gousb.NewContext()}, nil
}

func (b *libusbBus) Present(id USBID) (bool, error) {
	dev, err := b.ctx.OpenDeviceWithVIDPID(gousb.ID(id.Vendor), gousb.ID(id.Product))
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", id, err)
	}
	if dev == nil {
		return false, nil
	}
	if err := dev.Close(); err != nil {
		return true, fmt.Errorf("failed to close %s: %w", id, err)
	}
	return true, nil
}

func (b *libusbBus) Close() error {
	return b.ctx.Close()
}
