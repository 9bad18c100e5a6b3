package catalog

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a catalog file whenever it changes on disk.
type Watcher struct {
	w    *fsnotify.Watcher
	path string
	catC chan *Catalog
	erC  chan error
	done chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// Watch starts watching the catalog file at path. The directory is watched
// rather than the file so that editors replacing the file are seen.
func Watch(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}
	cw := &Watcher{
		w:    w,
		path: abs,
		catC: make(chan *Catalog, 1),
		erC:  make(chan error, 1),
		done: make(chan struct{}),
	}
	go cw.loop()
	return cw, nil
}

func (cw *Watcher) loop() {
	for {
		select {
		case ev, ok := <-cw.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != cw.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cat, err := Load(cw.path)
			if err != nil {
				cw.sendError(err)
				continue
			}
			select {
			case cw.catC <- cat:
			case <-cw.done:
				return
			}
		case err, ok := <-cw.w.Errors:
			if !ok {
				return
			}
			cw.sendError(err)
		case <-cw.done:
			return
		}
	}
}

// sendError drops the error when the previous one was not read yet.
func (cw *Watcher) sendError(err error) {
	select {
	case cw.erC <- err:
	default:
	}
}

// Catalogs delivers every successfully reloaded catalog.
func (cw *Watcher) Catalogs() <-chan *Catalog { return cw.catC }

// Errors delivers load and watch failures.
func (cw *Watcher) Errors() <-chan error { return cw.erC }

func (cw *Watcher) Path() string { return cw.path }

// Close stops the watcher. Calling it more than once is safe.
func (cw *Watcher) Close() error {
	cw.closeOnce.Do(func() {
		close(cw.done)
		cw.closeErr = cw.w.Close()
	})
	return cw.closeErr
}
