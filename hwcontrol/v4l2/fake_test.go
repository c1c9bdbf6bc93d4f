package v4l2

import "errors"

type fakeSize struct {
	size      FrameSize
	intervals []FrameInterval
}

type fakeFormat struct {
	desc  FormatDesc
	sizes []fakeSize
}

type fakeDevice struct {
	caps    Capability
	capsErr error
	formats []fakeFormat
	closed  bool
}

func (d *fakeDevice) QueryCapability() (Capability, error) {
	return d.caps, d.capsErr
}

func (d *fakeDevice) format(pixfmt FourCC) *fakeFormat {
	for i := range d.formats {
		if d.formats[i].desc.PixelFormat == pixfmt {
			return &d.formats[i]
		}
	}
	return nil
}

func (d *fakeDevice) EnumFormat(index uint32) (FormatDesc, error) {
	if int(index) >= len(d.formats) {
		return FormatDesc{}, ErrEndOfEnumeration
	}
	desc := d.formats[index].desc
	desc.Index = index
	return desc, nil
}

func (d *fakeDevice) EnumFrameSize(pixfmt FourCC, index uint32) (FrameSize, error) {
	f := d.format(pixfmt)
	if f == nil || int(index) >= len(f.sizes) {
		return FrameSize{}, ErrEndOfEnumeration
	}
	return f.sizes[index].size, nil
}

func (d *fakeDevice) EnumFrameInterval(pixfmt FourCC, width, height, index uint32) (FrameInterval, error) {
	f := d.format(pixfmt)
	if f == nil {
		return FrameInterval{}, ErrEndOfEnumeration
	}
	for _, s := range f.sizes {
		if s.size.Width == width && s.size.Height == height {
			if int(index) >= len(s.intervals) {
				return FrameInterval{}, ErrEndOfEnumeration
			}
			return s.intervals[index], nil
		}
	}
	return FrameInterval{}, ErrEndOfEnumeration
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

type fakeOpener struct {
	dev    *fakeDevice
	err    error
	opened []string
}

func (o *fakeOpener) Open(path string) (Device, error) {
	o.opened = append(o.opened, path)
	if o.err != nil {
		return nil, o.err
	}
	return o.dev, nil
}

var errPermission = errors.New("permission denied")

func discrete(w, h uint32, fps ...uint32) fakeSize {
	s := fakeSize{size: FrameSize{Type: EntryDiscrete, Width: w, Height: h}}
	for _, f := range fps {
		s.intervals = append(s.intervals, FrameInterval{Type: EntryDiscrete, Numerator: 1, Denominator: f})
	}
	return s
}

func format(fourcc FourCC, description string, sizes ...fakeSize) fakeFormat {
	return fakeFormat{
		desc:  FormatDesc{PixelFormat: fourcc, Description: description},
		sizes: sizes,
	}
}
