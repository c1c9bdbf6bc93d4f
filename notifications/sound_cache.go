package notifications

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/hajimehoshi/go-mp3"
)

type SoundEntry struct {
	decoder *mp3.Decoder
	file    *os.File
}

// SoundCache keeps the notification sounds decoded and open. Players must
// hold the entry lock through Get/Rewind while streaming it.
type SoundCache struct {
	sounds map[string]*SoundEntry
	mu     sync.Mutex
}

func NewSoundCache(soundsPath map[string]string) (*SoundCache, error) {
	sc := &SoundCache{
		sounds: make(map[string]*SoundEntry),
	}
	for name, path := range soundsPath {
		if err := sc.loadAudioFile(name, path); err != nil {
			sc.Close()
			return nil, fmt.Errorf("failed to load sound %s from %s: %w", name, path, err)
		}
	}
	return sc, nil
}

func (sc *SoundCache) Get(name string) (*mp3.Decoder, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	data, exists := sc.sounds[name]
	if !exists {
		return nil, fmt.Errorf("sound %s not found", name)
	}
	return data.decoder, nil
}

// Rewind resets a sound to its start after it was played.
func (sc *SoundCache) Rewind(name string) error {
	decoder, err := sc.Get(name)
	if err != nil {
		return err
	}
	if _, err := decoder.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to reset %s: %w", name, err)
	}
	return nil
}

func (sc *SoundCache) Close() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	for name, entry := range sc.sounds {
		if err := entry.file.Close(); err != nil {
			log.Printf("failed to close file for sound %s: %v\n", name, err)
		}
	}
	sc.sounds = nil
}

func (sc *SoundCache) loadAudioFile(name, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}

	decoded, err := mp3.NewDecoder(file)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to decode MP3 file: %w", err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.sounds[name] = &SoundEntry{
		decoder: decoded,
		file:    file,
	}
	return nil
}
