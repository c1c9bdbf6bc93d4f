//go:build linux

package v4l2

import (
	"bytes"
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	iocWrite = 1
	iocRead  = 2

	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	bufTypeVideoCapture = 1
)

func ioc(dir, nr, size uintptr) uintptr {
	return dir<<iocDirShift | size<<iocSizeShift | uintptr('V')<<iocTypeShift | nr<<iocNRShift
}

// Kernel structs from linux/videodev2.h. Every field is 32 bits wide or a
// byte array so the layout is identical on 32 and 64 bit targets.
type v4l2Capability struct {
	driver       [16]byte
	card         [32]byte
	busInfo      [32]byte
	version      uint32
	capabilities uint32
	deviceCaps   uint32
	reserved     [3]uint32
}

type v4l2Fmtdesc struct {
	index       uint32
	typ         uint32
	flags       uint32
	description [32]byte
	pixelformat uint32
	mbusCode    uint32
	reserved    [3]uint32
}

type v4l2Frmsizeenum struct {
	index       uint32
	pixelFormat uint32
	typ         uint32
	// discrete: width, height. stepwise: min/max/step width then height.
	union    [6]uint32
	reserved [2]uint32
}

type v4l2Frmivalenum struct {
	index       uint32
	pixelFormat uint32
	width       uint32
	height      uint32
	typ         uint32
	// discrete: numerator, denominator. stepwise: min, max, step fractions.
	union    [6]uint32
	reserved [2]uint32
}

var (
	vidiocQueryCap           = ioc(iocRead, 0, unsafe.Sizeof(v4l2Capability{}))
	vidiocEnumFmt            = ioc(iocRead|iocWrite, 2, unsafe.Sizeof(v4l2Fmtdesc{}))
	vidiocEnumFrameSizes     = ioc(iocRead|iocWrite, 74, unsafe.Sizeof(v4l2Frmsizeenum{}))
	vidiocEnumFrameIntervals = ioc(iocRead|iocWrite, 75, unsafe.Sizeof(v4l2Frmivalenum{}))
)

type fileDevice struct {
	fd   int
	path string
}

func openDevice(path string, nonBlocking bool) (Device, error) {
	flags := unix.O_RDWR | unix.O_CLOEXEC
	if nonBlocking {
		flags |= unix.O_NONBLOCK
	}
	fd, err := unix.Open(path, flags, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &fileDevice{fd: fd, path: path}, nil
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	for {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
		switch errno {
		case 0:
			return nil
		case unix.EINTR:
			continue
		default:
			return errno
		}
	}
}

// enumErr maps EINVAL, the kernel's end-of-list answer, to ErrEndOfEnumeration.
func enumErr(err error) error {
	if errors.Is(err, unix.EINVAL) {
		return ErrEndOfEnumeration
	}
	return err
}

func (d *fileDevice) QueryCapability() (Capability, error) {
	var c v4l2Capability
	if err := ioctl(d.fd, vidiocQueryCap, unsafe.Pointer(&c)); err != nil {
		return Capability{}, fmt.Errorf("VIDIOC_QUERYCAP on %s: %w", d.path, err)
	}
	return Capability{
		Driver:       cString(c.driver[:]),
		Card:         cString(c.card[:]),
		BusInfo:      cString(c.busInfo[:]),
		Version:      c.version,
		Capabilities: c.capabilities,
		DeviceCaps:   c.deviceCaps,
	}, nil
}

func (d *fileDevice) EnumFormat(index uint32) (FormatDesc, error) {
	desc := v4l2Fmtdesc{index: index, typ: bufTypeVideoCapture}
	if err := ioctl(d.fd, vidiocEnumFmt, unsafe.Pointer(&desc)); err != nil {
		return FormatDesc{}, enumErr(err)
	}
	return FormatDesc{
		Index:       desc.index,
		Flags:       desc.flags,
		Description: cString(desc.description[:]),
		PixelFormat: FourCC(desc.pixelformat),
	}, nil
}

func (d *fileDevice) EnumFrameSize(pixfmt FourCC, index uint32) (FrameSize, error) {
	size := v4l2Frmsizeenum{index: index, pixelFormat: uint32(pixfmt)}
	if err := ioctl(d.fd, vidiocEnumFrameSizes, unsafe.Pointer(&size)); err != nil {
		return FrameSize{}, enumErr(err)
	}
	fs := FrameSize{Index: size.index, Type: EntryType(size.typ)}
	if fs.Type == EntryDiscrete {
		fs.Width, fs.Height = size.union[0], size.union[1]
	}
	return fs, nil
}

func (d *fileDevice) EnumFrameInterval(pixfmt FourCC, width, height, index uint32) (FrameInterval, error) {
	ival := v4l2Frmivalenum{index: index, pixelFormat: uint32(pixfmt), width: width, height: height}
	if err := ioctl(d.fd, vidiocEnumFrameIntervals, unsafe.Pointer(&ival)); err != nil {
		return FrameInterval{}, enumErr(err)
	}
	fi := FrameInterval{Index: ival.index, Type: EntryType(ival.typ)}
	if fi.Type == EntryDiscrete {
		fi.Numerator, fi.Denominator = ival.union[0], ival.union[1]
	}
	return fi, nil
}

func (d *fileDevice) Close() error {
	return unix.Close(d.fd)
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
