package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/b0bbywan/go-hwdiscovery/hwcontrol/v4l2"
	"github.com/b0bbywan/go-hwdiscovery/notifications"
)

func newTestViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(yaml)); err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := fromViper(newTestViper(t, ""))
	if err != nil {
		t.Fatalf("fromViper failed: %v", err)
	}
	if cfg.Platform != v4l2.PlatformGeneric {
		t.Errorf("Platform = %s", cfg.Platform)
	}
	if cfg.Tether.Interface != "usb0" || cfg.Tether.PollInterval != time.Second {
		t.Errorf("Tether = %+v", cfg.Tether)
	}
	if cfg.Video.DeviceDir != "/dev" || cfg.Video.ManifestPath != "/run/hwdiscovery/cameras.yaml" || !cfg.Video.Hotplug {
		t.Errorf("Video = %+v", cfg.Video)
	}
	want := ThermalConfig{
		Enabled:        true,
		SeekConfigPath: "/etc/openhd/seekthermal.conf",
		SeekDeviceNode: "/dev/video4",
		SeekColormap:   11,
		SeekRotate:     11,
	}
	if cfg.Thermal != want {
		t.Errorf("Thermal = %+v, want %+v", cfg.Thermal, want)
	}
	if cfg.NotificationConfig.AudioBackend != notifications.BackendNone {
		t.Errorf("AudioBackend = %s", cfg.NotificationConfig.AudioBackend)
	}
}

func TestOverrides(t *testing.T) {
	cfg, err := fromViper(newTestViper(t, `
Platform: jetson
Tether:
  Interface: usb1
  PollInterval: 3
Video:
  RescanSchedule: "*/5 * * * *"
  Hotplug: false
Thermal:
  Enabled: false
`))
	if err != nil {
		t.Fatalf("fromViper failed: %v", err)
	}
	if cfg.Platform != v4l2.PlatformJetson {
		t.Errorf("Platform = %s", cfg.Platform)
	}
	if cfg.Tether.Interface != "usb1" || cfg.Tether.PollInterval != 3*time.Second {
		t.Errorf("Tether = %+v", cfg.Tether)
	}
	if cfg.Video.RescanSchedule != "*/5 * * * *" || cfg.Video.Hotplug {
		t.Errorf("Video = %+v", cfg.Video)
	}
	if cfg.Thermal.Enabled {
		t.Error("Thermal should be disabled")
	}
}

func TestInvalidConfig(t *testing.T) {
	tests := map[string]string{
		"platform":      "Platform: amiga\n",
		"poll interval": "Tether:\n  PollInterval: 0\n",
		"interface":     "Tether:\n  Interface: \"\"\n",
		"schedule":      "Video:\n  RescanSchedule: every now and then\n",
		"backend":       "AudioBackend: jack\n",
	}
	for name, yaml := range tests {
		if _, err := fromViper(newTestViper(t, yaml)); err == nil {
			t.Errorf("%s: expected a validation error", name)
		}
	}
}
