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

package hookit

import (
	"sync"

	"github.com/TimeWtr/hookit/internal/log"
)

// HookRelay is the name-indexed surface a host uses to reach a hook:
// relay.Hook("save_config") returns the Caller for that name, creating
// an Unspecified one on first access. This replaces pluggy's dynamic
// manager.hook.<name> attribute access with an explicit typed lookup.
type HookRelay struct {
	mu      sync.RWMutex
	callers map[string]*Caller
	logger  log.Logger
	monitor *monitorState
}

func newHookRelay(logger log.Logger) *HookRelay {
	return &HookRelay{callers: map[string]*Caller{}, logger: logger, monitor: &monitorState{}}
}

// Hook returns the Caller for name, creating an unspecified one if this
// is the first reference to it.
func (r *HookRelay) Hook(name string) *Caller {
	r.mu.RLock()
	c, ok := r.callers[name]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.callers[name]; ok {
		return c
	}
	c = NewCaller(name, r.logger)
	c.monitor = r.monitor
	r.callers[name] = c
	return c
}

// Names returns every hook name known to the relay.
func (r *HookRelay) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.callers))
	for name := range r.callers {
		out = append(out, name)
	}
	return out
}
