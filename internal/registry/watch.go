package registry

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"croprec/internal/classifier"
)

// Watch calls onChange after model files or metadata.json in dir change.
// Bursts of events within debounce are coalesced into one call. Watch blocks
// until ctx is done or the watcher fails.
func Watch(ctx context.Context, dir string, debounce time.Duration, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(event.Name) {
				continue
			}
			log.Debug().Str("event", "registry_fs_event").Str("file", event.Name).Str("op", event.Op.String()).Send()
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Str("event", "registry_watch_error").Send()
		}
	}
}

func relevant(name string) bool {
	base := filepath.Base(name)
	return base == MetadataFile || strings.HasSuffix(base, classifier.BundleExt)
}
