package v4l2

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/b0bbywan/go-hwdiscovery/hwcontrol/system"
)

const DefaultDeviceDir = "/dev"

// Enumerator lists the video-capture nodes of a device directory.
type Enumerator struct {
	dir     string
	fs      system.FileSystem
	pattern *regexp.Regexp
}

func NewEnumerator(dir string, fs system.FileSystem) *Enumerator {
	dir = strings.TrimRight(dir, "/")
	return &Enumerator{
		dir:     dir,
		fs:      fs,
		pattern: regexp.MustCompile(`^` + regexp.QuoteMeta(dir) + `/video[0-9]+$`),
	}
}

// List returns every <dir>/video<N> entry in directory listing order.
func (e *Enumerator) List() ([]string, error) {
	paths, err := e.fs.ReadDir(e.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list video devices: %w", err)
	}
	var nodes []string
	for _, path := range paths {
		if e.Match(path) {
			nodes = append(nodes, path)
		}
	}
	return nodes, nil
}

func (e *Enumerator) Match(path string) bool {
	return e.pattern.MatchString(path)
}
