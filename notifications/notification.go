package notifications

import (
	"fmt"
	"log"
	"path/filepath"
)

const (
	EventTetherUp   = "tether-up"
	EventTetherDown = "tether-down"
	EventCamera     = "camera"
	EventError      = "error"

	BackendNone  = "none"
	BackendAlsa  = "alsa"
	BackendPulse = "pulse"
)

// Notifier plays a short sound for hardware events. A nil Notifier is valid
// and silent.
type Notifier struct {
	Player
}

type NotificationConfig struct {
	AudioBackend string
	SoundPaths   map[string]string
	PulseServer  string
}

type Player interface {
	Play(name string) error
	Close()
}

func NewNotificationConfig(audioBackend, pulseServer, soundsLocation string) *NotificationConfig {
	return &NotificationConfig{
		AudioBackend: audioBackend,
		PulseServer:  pulseServer,
		SoundPaths: map[string]string{
			EventTetherUp:   filepath.Join(soundsLocation, "tether-up.mp3"),
			EventTetherDown: filepath.Join(soundsLocation, "tether-down.mp3"),
			EventCamera:     filepath.Join(soundsLocation, "camera.mp3"),
			EventError:      filepath.Join(soundsLocation, "error.mp3"),
		},
	}
}

func NewNotifier(config *NotificationConfig) *Notifier {
	if config == nil || config.AudioBackend == BackendNone {
		log.Println("Notifications disabled")
		return nil
	}

	sc, err := NewSoundCache(config.SoundPaths)
	if err != nil {
		log.Printf("Failed to load sound cache: %v", err)
		return nil
	}

	var player Player
	switch config.AudioBackend {
	case BackendAlsa:
		player, err = NewOtoPlayer(sc)
	case BackendPulse:
		player, err = NewPulseAudioPlayer(sc, config.PulseServer)
	default:
		err = fmt.Errorf("unsupported audio backend %q", config.AudioBackend)
	}
	if err != nil {
		sc.Close()
		log.Printf("Failed to initialize player for backend %s: %v\nNotifications disabled", config.AudioBackend, err)
		return nil
	}

	log.Printf("%s notifier initialized", config.AudioBackend)
	return &Notifier{player}
}

func (n *Notifier) PlayEvent(event string) {
	if n != nil && n.Player != nil {
		n.play(event)
	}
}

func (n *Notifier) PlayError() {
	n.PlayEvent(EventError)
}

func (n *Notifier) Close() {
	if n != nil && n.Player != nil {
		n.Player.Close()
	}
}

func (n *Notifier) play(name string) {
	go func() {
		if err := n.Play(name); err != nil {
			log.Printf("Failed to play sound (%s): %v", name, err)
		}
	}()
}
