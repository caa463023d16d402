package gw

import (
	"io/ioutil"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// TokenSource supplies the current auth token for new Connections. A
// static string trivially implements it; so does TokenFile below.
type TokenSource interface {
	Token() string
}

// staticToken is a TokenSource over a fixed, unchanging string.
type staticToken string

func (s staticToken) Token() string { return string(s) }

// StaticToken wraps a fixed token value as a TokenSource.
func StaticToken(token string) TokenSource { return staticToken(token) }

// TokenFile is a TokenSource that re-reads its backing file whenever
// fsnotify reports it changed, so a long-lived Client picks up a
// rotated token without a restart. The zero value is not usable; build
// one with NewTokenFile.
type TokenFile struct {
	ShutdownHelper

	path    string
	current atomic.Value // string
	watcher *fsnotify.Watcher
}

// NewTokenFile creates a TokenFile watching path, performing an initial
// synchronous read so Token() is valid immediately after construction.
func NewTokenFile(logger Logger, path string) (*TokenFile, error) {
	t := &TokenFile{path: path}
	t.InitShutdownHelper(logger.Fork("token-file(%s)", path), t)

	if err := t.reload(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, newUsageError("cannot create token file watcher: %s", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, newUsageError("cannot watch token file %q: %s", path, err)
	}
	t.watcher = w

	go t.watchLoop()

	return t, nil
}

// Token returns the most recently loaded token value.
func (t *TokenFile) Token() string {
	return t.current.Load().(string)
}

func (t *TokenFile) reload() error {
	raw, err := ioutil.ReadFile(t.path)
	if err != nil {
		return newUsageError("cannot read token file %q: %s", t.path, err)
	}
	t.current.Store(strings.TrimSpace(string(raw)))
	return nil
}

func (t *TokenFile) watchLoop() {
	for {
		select {
		case event, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := t.reload(); err != nil {
					t.DLogf("token file reload failed, keeping previous token: %s", err)
				} else {
					t.DLogf("token file reloaded")
				}
			}
		case err, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			t.DLogf("token file watcher error: %s", err)
		case <-t.ShutdownStartedChan():
			return
		}
	}
}

// HandleOnceShutdown stops the fsnotify watcher.
func (t *TokenFile) HandleOnceShutdown(completionErr error) error {
	if err := t.watcher.Close(); err != nil && completionErr == nil {
		completionErr = err
	}
	return completionErr
}
