//go:build !linux

package v4l2

import (
	"errors"
	"fmt"
)

func openDevice(path string, _ bool) (Device, error) {
	return nil, fmt.Errorf("failed to open %s: %w", path, errors.ErrUnsupported)
}
