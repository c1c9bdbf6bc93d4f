package detect

import (
	"context"
	"log"
	"path/filepath"
	"regexp"

	"github.com/jochenvg/go-udev"

	"github.com/b0bbywan/go-hwdiscovery/hwcontrol/system"
)

const unknownIdentity = "unknown"

var (
	modelRegex  = regexp.MustCompile(`ID_MODEL=(\w+)`)
	vendorRegex = regexp.MustCompile(`ID_VENDOR=(\w+)`)
)

// Identity is the udev model and vendor of a video node.
type Identity struct {
	Model  string `yaml:"model"`
	Vendor string `yaml:"vendor"`
}

func unknown() Identity {
	return Identity{Model: unknownIdentity, Vendor: unknownIdentity}
}

// IdentityLookup reads ID_MODEL and ID_VENDOR from the udev database and
// falls back to `udevadm info` when the database has nothing for the node.
type IdentityLookup struct {
	runner system.Runner
}

func NewIdentityLookup(runner system.Runner) *IdentityLookup {
	return &IdentityLookup{runner: runner}
}

func (l *IdentityLookup) Lookup(ctx context.Context, devnode string) Identity {
	u := udev.Udev{}
	if dev := u.NewDeviceFromSubsystemSysname(SubsystemVideo, filepath.Base(devnode)); dev != nil {
		if id := identityFromProperties(dev.PropertyValue); id != unknown() {
			return id
		}
	}

	out, err := l.runner.Run(ctx, "udevadm", "info", devnode)
	if err != nil {
		log.Printf("[hotplug] udevadm info %s: %v", devnode, err)
		return unknown()
	}
	return ParseUdevadmInfo(out)
}

func identityFromProperties(property func(string) string) Identity {
	id := unknown()
	if model := property("ID_MODEL"); model != "" {
		id.Model = model
	}
	if vendor := property("ID_VENDOR"); vendor != "" {
		id.Vendor = vendor
	}
	return id
}

// ParseUdevadmInfo extracts ID_MODEL and ID_VENDOR from `udevadm info` output.
func ParseUdevadmInfo(info string) Identity {
	id := unknown()
	if m := modelRegex.FindStringSubmatch(info); len(m) == 2 {
		id.Model = m[1]
	}
	if m := vendorRegex.FindStringSubmatch(info); len(m) == 2 {
		id.Vendor = m[1]
	}
	return id
}
