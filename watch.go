package tropiiify

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor or Tropy emits
// when it rewrites an export file.
const DefaultDebounce = 500 * time.Millisecond

// watchDirs returns the sorted, distinct directories holding files.
func watchDirs(files []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range files {
		d := filepath.Dir(f)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	sort.Strings(dirs)
	return dirs
}

// isExportOutput reports whether name lies under the output root without
// being one of the input files, so writes of the export itself are ignored.
func isExportOutput(name, outputRoot string, inputs map[string]bool) bool {
	if outputRoot == "" {
		return false
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	if inputs[abs] {
		return false
	}
	root, err := filepath.Abs(outputRoot)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, abs)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func absSet(files []string) map[string]bool {
	set := make(map[string]bool, len(files))
	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			set[abs] = true
		}
	}
	return set
}

func (a *App) exportPatterns(ctx context.Context, patterns []string) ([]string, error) {
	g, files, err := LoadGraph(patterns...)
	if err != nil {
		return nil, err
	}
	report, err := a.Export(ctx, g)
	if err != nil {
		return files, err
	}
	// Later runs reuse the directory chosen at the first prompt.
	a.Config.OutputRoot = report.OutputRoot
	return files, nil
}

// Watch exports the graph matched by patterns, then re-exports whenever a
// directory holding one of the input files changes, until ctx is done.
// Failed re-exports are logged and the watch continues.
func (a *App) Watch(ctx context.Context, patterns []string, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	files, err := a.exportPatterns(ctx, patterns)
	if err != nil {
		return err
	}

	inputs := absSet(files)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch directories, editors replace files on save.
	for _, d := range watchDirs(files) {
		if err := watcher.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
		a.Log.Info().Str("dir", d).Msg("watching for changes")
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".json" && filepath.Ext(event.Name) != ".jsonld" {
				continue
			}
			if isExportOutput(event.Name, a.Config.OutputRoot, inputs) {
				continue
			}
			a.Log.Debug().Str("event", event.Op.String()).Str("file", event.Name).Msg("input changed")
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.Log.Error().Err(err).Msg("file watcher error")
		case <-timer.C:
			a.InvalidateTemplates()
			files, err := a.exportPatterns(ctx, patterns)
			if len(files) > 0 {
				inputs = absSet(files)
			}
			if err != nil {
				if errors.Is(err, ErrCanceled) {
					return err
				}
				a.Log.Error().Err(err).Msg("re-export failed")
			}
		}
	}
}
