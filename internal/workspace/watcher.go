package workspace

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/devopsascode/bit/internal/legacy"
)

// WatchFunc receives the freshly re-resolved config after a change.
type WatchFunc func(*Config)

// Watcher re-resolves a workspace directory whenever its config file
// changes. Reload failures (a half-written file, a transient parse error)
// are logged and skipped; the next clean write triggers the callback again.
type Watcher struct {
	resolver  *Resolver
	fw        *fsnotify.Watcher
	dir       string
	onChange  WatchFunc
	done      chan struct{}
	closeOnce sync.Once
}

// Watch starts watching dir's workspace config. The callback runs on the
// watcher's goroutine; it must not block for long. Canceling ctx stops the
// watcher, as does Close.
func (r *Resolver) Watch(ctx context.Context, dir string, fn WatchFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// watch the directory, not the file: editors replace files via rename,
	// which drops a per-file watch
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{
		resolver: r,
		fw:       fw,
		dir:      dir,
		onChange: fn,
		done:     make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

// Close stops the watcher. Idempotent.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fw.Close()
	})
	return err
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Close()
			return
		case <-w.done:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !isConfigEvent(event) {
				continue
			}
			cfg, err := w.resolver.LoadIfExist(ctx, w.dir)
			if err != nil {
				w.resolver.log.Debug().Err(err).Str("dir", w.dir).Msg("skipping unreadable config change")
				continue
			}
			if cfg == nil {
				continue
			}
			w.onChange(cfg)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.resolver.log.Debug().Err(err).Msg("watch error")
		}
	}
}

func isConfigEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	return name == WorkspaceConfigFileName || name == legacy.ConfigFileName
}
