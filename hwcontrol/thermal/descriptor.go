package thermal

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/subosito/gotenv"
)

const (
	DefaultSeekConfigPath = "/etc/openhd/seekthermal.conf"
	DefaultSeekDeviceNode = "/dev/video4"
	DefaultSeekColormap   = 11
	DefaultSeekRotate     = 11

	keyDeviceNode = "DeviceNode"
	keyModel      = "SeekModel"
	keyFPS        = "FPS"
	keyColormap   = "SeekColormap"
	keyRotate     = "SeekRotate"
)

// SeekConfig is the descriptor handed to the seekthermal service.
type SeekConfig struct {
	DeviceNode string
	Model      string
	FPS        int
	Colormap   int
	Rotate     int
}

func (c SeekConfig) encode() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s=%s\n", keyDeviceNode, c.DeviceNode)
	fmt.Fprintf(&buf, "%s=%s\n", keyModel, c.Model)
	fmt.Fprintf(&buf, "%s=%d\n", keyFPS, c.FPS)
	fmt.Fprintf(&buf, "%s=%d\n", keyColormap, c.Colormap)
	fmt.Fprintf(&buf, "%s=%d\n", keyRotate, c.Rotate)
	return buf.Bytes()
}

// WriteDescriptor replaces the file at path with cfg, one key=value per line.
func WriteDescriptor(path string, cfg SeekConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, cfg.encode(), 0644); err != nil {
		return fmt.Errorf("failed to write seek descriptor %s: %w", path, err)
	}
	return nil
}

func ReadDescriptor(path string) (SeekConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return SeekConfig{}, fmt.Errorf("failed to open seek descriptor %s: %w", path, err)
	}
	defer f.Close()

	env, err := gotenv.StrictParse(f)
	if err != nil {
		return SeekConfig{}, fmt.Errorf("failed to parse seek descriptor %s: %w", path, err)
	}

	cfg := SeekConfig{
		DeviceNode: env[keyDeviceNode],
		Model:      env[keyModel],
	}
	for key, dst := range map[string]*int{
		keyFPS:      &cfg.FPS,
		keyColormap: &cfg.Colormap,
		keyRotate:   &cfg.Rotate,
	} {
		v, ok := env[key]
		if !ok {
			return SeekConfig{}, fmt.Errorf("seek descriptor %s: missing %s", path, key)
		}
		if *dst, err = strconv.Atoi(v); err != nil {
			return SeekConfig{}, fmt.Errorf("seek descriptor %s: invalid %s: %w", path, key, err)
		}
	}
	return cfg, nil
}
