package thermal

import "fmt"

type Model int

const (
	FlirOne Model = iota
	SeekCompact
	SeekCompactPro
)

// Models lists every supported camera in scan order.
var Models = []Model{FlirOne, SeekCompact, SeekCompactPro}

type USBID struct {
	Vendor  uint16
	Product uint16
}

func (id USBID) String() string {
	return fmt.Sprintf("%04x:%04x", id.Vendor, id.Product)
}

var modelIDs = map[Model]USBID{
	FlirOne:        {Vendor: 0x09cb, Product: 0x1996},
	SeekCompact:    {Vendor: 0x289d, Product: 0x0010},
	SeekCompactPro: {Vendor: 0x289d, Product: 0x0011},
}

func (m Model) ID() USBID {
	return modelIDs[m]
}

func (m Model) String() string {
	switch m {
	case FlirOne:
		return "flir-one"
	case SeekCompact:
		return "seek-compact"
	case SeekCompactPro:
		return "seek-compact-pro"
	}
	return fmt.Sprintf("model(%d)", int(m))
}

// seekSettings returns the driver model name and frame rate for a Seek camera.
func seekSettings(m Model) (string, int) {
	if m == SeekCompactPro {
		// not every Compact Pro runs at 15Hz, but the driver defaults to it
		return "seekpro", 15
	}
	return "seek", 7
}
