package notifications

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/oto/v2"
)

const (
	otoSampleRate   = 44100
	otoChannelCount = 2
)

type OtoPlayer struct {
	sc     *SoundCache
	otoCtx *oto.Context
}

func NewOtoPlayer(sc *SoundCache) (*OtoPlayer, error) {
	otoCtx, readyChan, err := oto.NewContext(otoSampleRate, otoChannelCount, oto.FormatSignedInt16LE)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize oto: %w", err)
	}
	<-readyChan

	return &OtoPlayer{
		sc:     sc,
		otoCtx: otoCtx,
	}, nil
}

func (o *OtoPlayer) Play(name string) error {
	sound, err := o.sc.Get(name)
	if err != nil {
		return fmt.Errorf("could not play %s: %w", name, err)
	}

	player := o.otoCtx.NewPlayer(sound)
	defer player.Close()

	player.Play()
	for player.IsPlaying() {
		time.Sleep(time.Millisecond)
	}
	return o.sc.Rewind(name)
}

func (o *OtoPlayer) Close() {
	o.sc.Close()
}
