package watcher

import (
	"github.com/fsnotify/fsnotify"
	"go.trai.ch/datanode/internal/core/ports"
)

// ConvertEvent exposes convertEvent for testing.
func ConvertEvent(name string, op fsnotify.Op) (ports.WatchEvent, bool) {
	return convertEvent(fsnotify.Event{Name: name, Op: op})
}
