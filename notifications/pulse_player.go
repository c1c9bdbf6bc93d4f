package notifications

import (
	"fmt"
	"time"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

type PulseAudioPlayer struct {
	sc     *SoundCache
	client *pulse.Client
}

func NewPulseAudioPlayer(sc *SoundCache, pulseServerString string) (*PulseAudioPlayer, error) {
	var opts []pulse.ClientOption
	if pulseServerString != "" {
		opts = append(opts, pulse.ClientServerString(pulseServerString))
	}
	client, err := pulse.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PulseAudio: %w", err)
	}

	return &PulseAudioPlayer{
		sc:     sc,
		client: client,
	}, nil
}

func (p *PulseAudioPlayer) Play(name string) error {
	data, err := p.sc.Get(name)
	if err != nil {
		return fmt.Errorf("could not play %s: %w", name, err)
	}

	reader := pulse.NewReader(data, proto.FormatInt16LE)
	stream, err := p.client.NewPlayback(reader, pulse.PlaybackStereo, pulse.PlaybackSampleRate(data.SampleRate()))
	if err != nil {
		return fmt.Errorf("failed to create PulseAudio playback stream: %w", err)
	}
	defer stream.Close()

	done := make(chan struct{})
	go func() {
		stream.Start()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
	}
	stream.Drain()

	return p.sc.Rewind(name)
}

func (p *PulseAudioPlayer) Close() {
	p.client.Close()
	p.sc.Close()
}
