// Copyright 2025 TimeWtr
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package entrypoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	goplugin "plugin"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/TimeWtr/hookit/internal/atomicx"
	"github.com/TimeWtr/hookit/internal/log"
)

// ManifestFormat selects how a manifest file on disk is decoded.
type ManifestFormat string

const (
	FormatYAML ManifestFormat = "YAML"
	FormatJSON ManifestFormat = "JSON"
	FormatTOML ManifestFormat = "TOML"
)

func (f ManifestFormat) valid() bool {
	switch f {
	case FormatYAML, FormatJSON, FormatTOML:
		return true
	default:
		return false
	}
}

// ManifestEntry is one plugin entry as declared in a manifest file: a
// name, the compiled Go plugin (.so) path, and the exported symbol to
// look up in it.
type ManifestEntry struct {
	Name   string `yaml:"name" json:"name" toml:"name"`
	Path   string `yaml:"path" json:"path" toml:"path"`
	Symbol string `yaml:"symbol" json:"symbol" toml:"symbol"`
}

// Manifest maps a hook group name to the entries registered under it.
type Manifest map[string][]ManifestEntry

const (
	stoppedState = iota
	runningState
)

// FileManifestSource watches a manifest file and reloads it on change,
// debouncing bursts of filesystem events the same way a hot-reloaded
// config file would. Entries resolve their Loader via the stdlib plugin
// package against each entry's compiled .so path and exported symbol.
type FileManifestSource struct {
	format   ManifestFormat
	filePath string
	dir      string

	mu       sync.RWMutex
	manifest Manifest

	watcher *fsnotify.Watcher
	closeCh chan struct{}
	state   *atomicx.Int32
	logger  log.Logger

	debounceMu       sync.Mutex
	debounceTimer    *time.Timer
	debounceDuration time.Duration
	debouncePending  *atomicx.Bool

	wg sync.WaitGroup
}

// NewFileManifestSource builds a source backed by the manifest at
// filePath, not yet watching.
func NewFileManifestSource(format ManifestFormat, filePath string, logger log.Logger) (*FileManifestSource, error) {
	if !format.valid() {
		return nil, fmt.Errorf("entrypoint: invalid manifest format %q", format)
	}
	if _, err := os.Stat(filePath); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}

	s := &FileManifestSource{
		format:           format,
		filePath:         filePath,
		dir:              path.Dir(filePath),
		logger:           logger,
		state:            atomicx.NewInt32(stoppedState),
		debounceDuration: 500 * time.Millisecond,
		debouncePending:  atomicx.NewBool(),
		closeCh:          make(chan struct{}),
	}

	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Watch starts the background filesystem watcher. It is idempotent:
// calling it twice returns an error on the second call.
func (s *FileManifestSource) Watch() error {
	if !s.state.CompareAndSwap(stoppedState, runningState) {
		return errors.New("entrypoint: manifest source is already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher
	if err := s.watcher.Add(s.dir); err != nil {
		return err
	}

	s.logger.Info("watching entrypoint manifest", log.StringField("path", s.filePath))

	s.wg.Add(1)
	go s.watchLoop()
	return nil
}

func (s *FileManifestSource) watchLoop() {
	defer func() {
		s.wg.Done()
		if s.watcher != nil {
			if err := s.watcher.Close(); err != nil {
				s.logger.Error("failed to close manifest watcher", log.ErrorField(err))
			}
		}
		if r := recover(); r != nil {
			s.logger.Error("manifest watcher panicked", log.AnyField("cause", r))
		}
	}()

	for {
		select {
		case e, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != filepath.Clean(s.filePath) {
				continue
			}
			s.handleEvent(e)
		case <-s.closeCh:
			return
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("manifest watcher error", log.ErrorField(err))
		}
	}
}

func (s *FileManifestSource) handleEvent(e fsnotify.Event) {
	switch e.Op {
	case fsnotify.Write, fsnotify.Create:
		s.scheduleReload()
	case fsnotify.Remove, fsnotify.Rename:
		s.logger.Warn("entrypoint manifest file removed or renamed", log.StringField("path", s.filePath))
	}
}

func (s *FileManifestSource) scheduleReload() {
	s.debounceMu.Lock()
	defer s.debounceMu.Unlock()

	if s.debounceTimer != nil {
		if !s.debounceTimer.Stop() {
			select {
			case <-s.debounceTimer.C:
			default:
			}
		}
	}
	if s.state.Load() == stoppedState {
		return
	}

	s.debounceTimer = time.AfterFunc(s.debounceDuration, func() {
		s.debouncePending.SetFalse()
		if err := s.reload(); err != nil {
			s.logger.Error("failed to reload entrypoint manifest", log.ErrorField(err))
		}
	})
	s.debouncePending.SetTrue()
}

func (s *FileManifestSource) reload() error {
	bs, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var m Manifest
	switch s.format {
	case FormatYAML:
		err = yaml.Unmarshal(bs, &m)
	case FormatJSON:
		err = json.Unmarshal(bs, &m)
	case FormatTOML:
		err = toml.Unmarshal(bs, &m)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.manifest = m
	s.mu.Unlock()
	return nil
}

// Entries implements entrypoint.Source.
func (s *FileManifestSource) Entries(group string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.manifest[group]
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		e := e
		out = append(out, Entry{
			Name: e.Name,
			Dist: DistInfo{ProjectName: e.Name, Path: e.Path},
			Loader: func() (any, error) {
				p, err := goplugin.Open(e.Path)
				if err != nil {
					return nil, fmt.Errorf("entrypoint: opening plugin %s: %w", e.Path, err)
				}
				sym, err := p.Lookup(e.Symbol)
				if err != nil {
					return nil, fmt.Errorf("entrypoint: looking up symbol %s in %s: %w", e.Symbol, e.Path, err)
				}
				return sym, nil
			},
		})
	}
	return out, nil
}

// Close stops the watcher, if running.
func (s *FileManifestSource) Close() {
	if !s.state.CompareAndSwap(runningState, stoppedState) {
		return
	}
	close(s.closeCh)
	s.wg.Wait()
	s.debounceMu.Lock()
	s.debouncePending.SetFalse()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceMu.Unlock()
}
