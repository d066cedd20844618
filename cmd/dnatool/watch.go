package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/dnakit/internal/library"
	"github.com/Faultbox/dnakit/internal/logger"
	"github.com/Faultbox/dnakit/pkg/dna"
	"github.com/Faultbox/dnakit/pkg/encoding"
)

func cmdWatch(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: dnatool watch <file.dna>")
	}
	path := args[0]
	layer, err := cfg.DataLayer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	lib := library.New(readerOptions()...)
	defer func() {
		hits, misses := lib.Stats()
		logger.Debug("watch stopped", zap.Int("cache_hits", hits), zap.Int("cache_misses", misses))
		lib.Close()
	}()

	var last *dna.Document
	report := func() {
		doc, err := lib.Load(path, layer)
		stamp := time.Now().Format("15:04:05")
		if err != nil {
			last = nil
			fmt.Fprintf(stdout, "%s FAIL %v\n", stamp, err)
			return
		}
		if doc == last {
			logger.Debug("file unchanged", zap.String("path", path))
			return
		}
		last = doc
		if err := doc.Validate(); err != nil {
			fmt.Fprintf(stdout, "%s FAIL %v\n", stamp, err)
			return
		}
		fmt.Fprintf(stdout, "%s OK   %q: %d joints, %d meshes, %s vertices\n",
			stamp, encoding.DisplayName(doc.Name), len(doc.Joints), len(doc.Meshes), humanize.Comma(int64(doc.TotalVertexCount())))
	}

	report()
	fmt.Fprintf(stderr, "Watching %s (Ctrl+C to stop)\n", path)
	return watchFile(ctx, path, cfg.Watch.Debounce.Std(), report)
}

// watchFile calls onChange after path is written, created or renamed into
// place, once the events have been quiet for the debounce interval. The
// parent directory is watched so that editors that replace the file are
// still followed. It returns when ctx is done.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("file event", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			timer.Reset(debounce)

		case <-timer.C:
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		}
	}
}
