package main

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/mogaika/gltf_importer/logger"
	"github.com/mogaika/gltf_importer/utils/gltfutils"
)

// editors write files in several steps, wait for them to settle
var watchDebounce = 300 * time.Millisecond

type watchSet struct {
	watcher *fsnotify.Watcher
	files   map[string]bool
	dirs    map[string]bool
}

func newWatchSet(args []string) (*watchSet, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ws := &watchSet{watcher: w, files: make(map[string]bool), dirs: make(map[string]bool)}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			w.Close()
			return nil, err
		}
		dir := arg
		if info.IsDir() {
			ws.dirs[filepath.Clean(arg)] = true
		} else {
			ws.files[filepath.Clean(arg)] = true
			dir = filepath.Dir(arg)
		}
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
	}
	return ws, nil
}

func (ws *watchSet) matches(name string) bool {
	name = filepath.Clean(name)
	if ws.files[name] {
		return true
	}
	return ws.dirs[filepath.Dir(name)] && filepath.Ext(name) != "" && gltfutils.IsSupported(name)
}

func (ws *watchSet) Close() error {
	return ws.watcher.Close()
}

func (c *converter) run(ctx context.Context, ws *watchSet) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-ws.watcher.Events:
			if !ok {
				return nil
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 || !ws.matches(e.Name) {
				continue
			}
			pending[e.Name] = true
			timer.Reset(watchDebounce)
		case err, ok := <-ws.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", zap.Error(err))
		case <-timer.C:
			names := make([]string, 0, len(pending))
			for name := range pending {
				names = append(names, name)
			}
			sort.Strings(names)
			pending = make(map[string]bool)
			for _, name := range names {
				if _, err := c.convert(name); err != nil {
					logger.Error("Conversion failed", zap.String("source", name), zap.Error(err))
				}
			}
		}
	}
}

func (c *converter) watch(ctx context.Context, args []string) error {
	ws, err := newWatchSet(args)
	if err != nil {
		return err
	}
	defer ws.Close()
	logger.Info("Watching for changes", zap.Strings("paths", args))
	return c.run(ctx, ws)
}
