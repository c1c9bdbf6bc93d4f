package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/b0bbywan/go-hwdiscovery/hwcontrol/v4l2"
	"github.com/b0bbywan/go-hwdiscovery/notifications"
)

const (
	AppName    = "hwdiscovery"
	AppVersion = "0.1"
)

type TetherConfig struct {
	Interface    string
	PollInterval time.Duration
}

type VideoConfig struct {
	DeviceDir      string
	ManifestPath   string
	RescanSchedule string
	Hotplug        bool
}

type ThermalConfig struct {
	Enabled        bool
	SeekConfigPath string
	SeekDeviceNode string
	SeekColormap   int
	SeekRotate     int
}

type DaemonConfig struct {
	Platform           v4l2.Platform
	Tether             TetherConfig
	Video              VideoConfig
	Thermal            ThermalConfig
	NotificationConfig *notifications.NotificationConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("Platform", string(v4l2.PlatformGeneric))
	v.SetDefault("Tether.Interface", "usb0")
	v.SetDefault("Tether.PollInterval", 1)
	v.SetDefault("Video.DeviceDir", v4l2.DefaultDeviceDir)
	v.SetDefault("Video.ManifestPath", filepath.Join("/run", AppName, "cameras.yaml"))
	v.SetDefault("Video.RescanSchedule", "")
	v.SetDefault("Video.Hotplug", true)
	v.SetDefault("Thermal.Enabled", true)
	v.SetDefault("Thermal.SeekConfigPath", "/etc/openhd/seekthermal.conf")
	v.SetDefault("Thermal.SeekDeviceNode", "/dev/video4")
	v.SetDefault("Thermal.SeekColormap", 11)
	v.SetDefault("Thermal.SeekRotate", 11)
	v.SetDefault("AudioBackend", notifications.BackendNone)
	v.SetDefault("PulseServer", "")
	v.SetDefault("SoundsLocation", filepath.Join("/usr/local/share/", AppName))
}

// NewDaemonConfig loads the configuration from /etc/hwdiscovery,
// ~/.config/hwdiscovery and HWDISCOVERY_* environment variables.
func NewDaemonConfig() (*DaemonConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join("/etc", AppName))
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", AppName))
	}

	v.SetEnvPrefix(strings.ReplaceAll(AppName, "-", "_"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// File not found is acceptable, only raise errors for other issues
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*DaemonConfig, error) {
	platform, err := v4l2.ParsePlatform(v.GetString("Platform"))
	if err != nil {
		return nil, fmt.Errorf("invalid Platform: %w", err)
	}

	pollSeconds := v.GetInt("Tether.PollInterval")
	if pollSeconds <= 0 {
		return nil, fmt.Errorf("invalid Tether.PollInterval: %d, must be positive", pollSeconds)
	}
	if v.GetString("Tether.Interface") == "" {
		return nil, fmt.Errorf("Tether.Interface cannot be empty")
	}

	schedule := v.GetString("Video.RescanSchedule")
	if schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return nil, fmt.Errorf("invalid Video.RescanSchedule %q: %w", schedule, err)
		}
	}

	backend := v.GetString("AudioBackend")
	switch backend {
	case notifications.BackendNone, notifications.BackendAlsa, notifications.BackendPulse:
	default:
		return nil, fmt.Errorf("invalid AudioBackend: %s, must be 'none', 'alsa' or 'pulse'", backend)
	}

	return &DaemonConfig{
		Platform: platform,
		Tether: TetherConfig{
			Interface:    v.GetString("Tether.Interface"),
			PollInterval: time.Duration(pollSeconds) * time.Second,
		},
		Video: VideoConfig{
			DeviceDir:      v.GetString("Video.DeviceDir"),
			ManifestPath:   v.GetString("Video.ManifestPath"),
			RescanSchedule: schedule,
			Hotplug:        v.GetBool("Video.Hotplug"),
		},
		Thermal: ThermalConfig{
			Enabled:        v.GetBool("Thermal.Enabled"),
			SeekConfigPath: v.GetString("Thermal.SeekConfigPath"),
			SeekDeviceNode: v.GetString("Thermal.SeekDeviceNode"),
			SeekColormap:   v.GetInt("Thermal.SeekColormap"),
			SeekRotate:     v.GetInt("Thermal.SeekRotate"),
		},
		NotificationConfig: notifications.NewNotificationConfig(
			backend,
			v.GetString("PulseServer"),
			v.GetString("SoundsLocation"),
		),
	}, nil
}
