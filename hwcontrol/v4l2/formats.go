package v4l2

import "strings"

// FourCC is a V4L2 pixel format code.
type FourCC uint32

func NewFourCC(code string) FourCC {
	var b [4]byte
	copy(b[:], code)
	return FourCC(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}

func (f FourCC) String() string {
	b := []byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)}
	return strings.TrimRight(string(b), " \x00")
}

var (
	PixFmtH264  = NewFourCC("H264")
	PixFmtHEVC  = NewFourCC("HEVC")
	PixFmtH265  = NewFourCC("H265") // vendor kernels only
	PixFmtMJPEG = NewFourCC("MJPG")
	PixFmtYUYV  = NewFourCC("YUYV")
	PixFmtNV12  = NewFourCC("NV12")
)

type Codec string

const (
	CodecH264  Codec = "H264"
	CodecH265  Codec = "H265"
	CodecMJPEG Codec = "MJPEG"
	CodecRaw   Codec = "RAW"
)

// Codecs lists the buckets in report order.
var Codecs = []Codec{CodecH264, CodecH265, CodecMJPEG, CodecRaw}

// Classify puts a pixel format into its codec bucket. Anything not encoded
// is treated as raw.
func (p Platform) Classify(pixfmt FourCC) Codec {
	switch pixfmt {
	case PixFmtH264:
		return CodecH264
	case PixFmtHEVC:
		return CodecH265
	case PixFmtMJPEG:
		return CodecMJPEG
	case PixFmtH265:
		if p.exposesH265() {
			return CodecH265
		}
	}
	return CodecRaw
}
