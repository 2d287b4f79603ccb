package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/chazu/luabind/generator"
)

// debounceDelay batches the burst of events an editor save produces.
const debounceDelay = 200 * time.Millisecond

var ignoredDirs = map[string]bool{
	".git":         true,
	".idea":        true,
	".vscode":      true,
	"node_modules": true,
	"vendor":       true,
	"testdata":     true,
}

func watchCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [packages...]",
		Short: "Regenerate whenever a Go source file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, opts, patterns, err := f.config(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			log := commonlog.GetLogger("luabind.watch")
			gen := generator.New(afero.NewOsFs(), opts)

			regenerate := func() {
				report, err := gen.Run(ctx, patterns...)
				if report != nil {
					printReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), m.Dir, report)
				}
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
				}
			}

			w, err := newWatcher(m.Dir, opts.AccessPackage, log)
			if err != nil {
				return err
			}
			defer w.Close()

			regenerate()
			fmt.Fprintf(cmd.OutOrStdout(), "watching %s\n", m.Dir)
			return w.Run(ctx, regenerate)
		},
	}
}

type watcher struct {
	fsw       *fsnotify.Watcher
	accessPkg string
	log       commonlog.Logger
}

// newWatcher watches every directory under root that is not ignored.
func newWatcher(root, accessPkg string, log commonlog.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}
	w := &watcher{fsw: fsw, accessPkg: accessPkg, log: log}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.Warningf("cannot watch %s: %v", path, err)
		}
		return nil
	})
}

func (w *watcher) Close() error { return w.fsw.Close() }

// Run calls regenerate after each quiet period following a relevant change.
// Regenerations never overlap. It returns when ctx is done.
func (w *watcher) Run(ctx context.Context, regenerate func()) error {
	pending := make(chan struct{}, 1)
	d := newDebouncer(debounceDelay, func() {
		select {
		case pending <- struct{}{}:
		default:
		}
	})
	defer d.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pending:
			regenerate()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !skipDir(filepath.Base(ev.Name)) {
					if err := w.addTree(ev.Name); err != nil {
						w.log.Warningf("cannot watch %s: %v", ev.Name, err)
					}
					continue
				}
			}
			if relevant(ev, w.accessPkg) {
				w.log.Debugf("change: %s", ev)
				d.Touch()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Errorf("watcher: %v", err)
		}
	}
}

func skipDir(name string) bool {
	return ignoredDirs[name] || (strings.HasPrefix(name, ".") && name != ".")
}

// relevant reports whether ev touches a Go source file luabind reads.
// Generated adapters and tests are ignored.
func relevant(ev fsnotify.Event, accessPkg string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.ToSlash(ev.Name)
	if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
		return false
	}
	if strings.HasSuffix(name, "_access.go") && strings.HasSuffix(filepath.ToSlash(filepath.Dir(ev.Name)), "/"+accessPkg) {
		return false
	}
	return true
}

// debouncer calls fire once touches stop arriving for delay.
type debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fire  func()
	timer *time.Timer
}

func newDebouncer(delay time.Duration, fire func()) *debouncer {
	return &debouncer{delay: delay, fire: fire}
}

func (d *debouncer) Touch() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
