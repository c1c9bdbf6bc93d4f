package detect

import (
	"context"
	"fmt"
	"log"

	"github.com/fsnotify/fsnotify"
)

// DirWatcher reports video nodes appearing and disappearing in a device
// directory. It works without udevd, at the price of no change events.
type DirWatcher struct {
	dir   string
	match func(devnode string) bool
}

func NewDirWatcher(dir string, match func(devnode string) bool) *DirWatcher {
	return &DirWatcher{dir: dir, match: match}
}

func (w *DirWatcher) Run(ctx context.Context, out chan<- DeviceEvent) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new device directory watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	log.Printf("[hotplug] Watching %s for video nodes...", w.dir)

	for {
		select {
		case <-ctx.Done():
			log.Println("[hotplug] Directory watcher stopping due to context cancellation")
			return nil
		case fsEv, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher on %s closed", w.dir)
			}
			ev := w.convert(fsEv)
			if ev == nil {
				continue
			}
			select {
			case out <- *ev:
			case <-ctx.Done():
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher on %s closed", w.dir)
			}
			log.Printf("[hotplug] watcher error: %v", err)
		}
	}
}

func (w *DirWatcher) convert(fsEv fsnotify.Event) *DeviceEvent {
	if w.match != nil && !w.match(fsEv.Name) {
		return nil
	}
	var evType EventType
	switch {
	case fsEv.Has(fsnotify.Create):
		evType = DeviceAdded
	case fsEv.Has(fsnotify.Remove):
		evType = DeviceRemoved
	default:
		return nil
	}
	return &DeviceEvent{
		Type: evType,
		Kind: DeviceVideo,
		Path: fsEv.Name,
	}
}
